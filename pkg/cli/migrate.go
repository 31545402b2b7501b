package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/riskregister/pkg/cli/config"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

func cmdMigrate() *cli.Command {
	var dryRun bool
	var appCfg config.AppConfig
	var storageCfg config.Storage

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without rewriting the stored document",
			Destination: &dryRun,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Rewrite the persisted document at the current schema version",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Hydration migrates in memory; closing writes it back
			store, err := buildStore(ctx, &appCfg, &storageCfg)
			if err != nil {
				return err
			}

			logger.Info("Migrate configuration",
				"key", usecase.DefaultStorageKey,
				"version", model.SnapshotVersion,
				"risks", len(store.Risks()),
				"dryRun", dryRun)

			if dryRun {
				return store.Discard()
			}

			if err := store.Close(ctx); err != nil {
				return err
			}

			logger.Info("migration completed", "version", model.SnapshotVersion)
			return nil
		},
	}
}
