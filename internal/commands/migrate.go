package commands

import (
	"context"
	"fmt"

	"dealtracker/internal/logger"
	"dealtracker/pkg/database"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := log.WithContext(context.Background())

	cfg, err := loadConfig(ctx, globals)
	if err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := database.Migrate(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	log.Info().Int("applied", applied).Msg("migrations complete")
	return nil
}
