package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/riskregister/pkg/cli/config"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

func cmdSeed() *cli.Command {
	var appCfg config.AppConfig
	var storageCfg config.Storage

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:  "seed",
		Usage: "Populate an empty store with demo risks",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := buildStore(ctx, &appCfg, &storageCfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(ctx); err != nil {
					logging.Default().Error("failed to close store", "error", err.Error())
				}
			}()

			count := store.SeedDemoData(ctx)
			if count == 0 {
				logging.Default().Info("store already has risks, nothing seeded")
				return nil
			}

			logging.Default().Info("seeded demo risks", "count", count)
			return nil
		},
	}
}
