package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Catalog struct {
		TTL string `yaml:"ttl"`
	} `yaml:"catalog"`
	Quiz struct {
		RecordTimeout string `yaml:"record_timeout"`
	} `yaml:"quiz"`
}

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error; the service then runs on defaults and
// whatever the environment (or a .env file) provides.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv lets deployment secrets stay out of the YAML file.
func applyEnv(cfg *Config) {
	overrides := []struct {
		key string
		dst *string
	}{
		{"DATABASE_URL", &cfg.Postgres.URL},
		{"REDIS_ADDR", &cfg.Redis.Addr},
		{"REDIS_PASSWORD", &cfg.Redis.Password},
		{"SQLITE_PATH", &cfg.SQLite.Path},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
