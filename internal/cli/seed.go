package cli

import (
	"context"
	"log"

	"quizbank-service/internal/config"
	"quizbank-service/internal/infra/memory"
	"quizbank-service/internal/infra/postgres"

	"github.com/spf13/cobra"
)

// NewSeedCmd loads the sample catalog into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Migrate and load the sample catalog into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runSeed(cmd.Context(), cfg)
		},
	}
}

func runSeed(ctx context.Context, cfg config.Config) error {
	db, err := openBunDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrateDB(ctx, db); err != nil {
		return err
	}
	catalog := memory.SampleCatalog()
	if err := postgres.Seed(ctx, db, catalog); err != nil {
		return err
	}
	log.Printf("seeded %d subjects, %d question banks, %d questions",
		len(catalog.Subjects), len(catalog.Banks), len(catalog.Questions))
	return nil
}
