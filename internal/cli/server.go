package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizbank-service/internal/app"
	"quizbank-service/internal/clock"
	"quizbank-service/internal/config"
	"quizbank-service/internal/infra/memory"
	"quizbank-service/internal/infra/postgres"
	redisinfra "quizbank-service/internal/infra/redis"
	"quizbank-service/internal/infra/sqlite"
	transport "quizbank-service/internal/transport/http"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var catalog app.CatalogRepository
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		catalog = postgres.NewCatalogLoader(pool)
	} else {
		store, err := memory.NewCatalogStore(memory.SampleCatalog())
		if err != nil {
			return fmt.Errorf("build sample catalog: %w", err)
		}
		catalog = store
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	if redisClient != nil {
		catalog = redisinfra.NewCachedCatalog(redisClient, catalog, catalogTTL)
	} else {
		catalog = memory.NewCachedCatalog(catalog, catalogTTL)
	}

	recorder, closeRecorder, err := newAttemptRecorder(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRecorder()

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	recordTimeout := config.TTLDuration(cfg.Quiz.RecordTimeout, 10*time.Second)
	quiz := app.NewQuizService(catalog, recorder, sessions, clock.Real{}, recordTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	transport.NewRESTHandler(app.NewCatalogService(catalog), app.NewAttemptService(recorder)).Register(mux)
	mux.HandleFunc("GET /ws/quiz", transport.NewWSHandler(quiz).ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newAttemptRecorder picks Postgres, then SQLite, then memory.
func newAttemptRecorder(ctx context.Context, cfg config.Config) (app.AttemptRecorder, func(), error) {
	switch {
	case cfg.Postgres.URL != "":
		db, err := openBunDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("recording attempts in postgres")
		return postgres.NewAttemptRecorder(db), func() { db.Close() }, nil
	case cfg.SQLite.Path != "":
		rec, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("recording attempts in sqlite at %s", cfg.SQLite.Path)
		return rec, func() { rec.Close() }, nil
	default:
		log.Printf("recording attempts in memory")
		return memory.NewAttemptStore(), func() {}, nil
	}
}
