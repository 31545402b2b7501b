package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/riskregister/pkg/cli/config"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
	"github.com/secmon-lab/riskregister/pkg/utils/safe"
)

func cmdExport() *cli.Command {
	var output string
	var appCfg config.AppConfig
	var storageCfg config.Storage

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file path ('-' for stdout)",
			Value:       "-",
			Destination: &output,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:  "export",
		Usage: "Export all risks as CSV",
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

			payload := []byte(store.ExportCSV() + "\n")

			if output == "-" {
				safe.Write(ctx, os.Stdout, payload)
				return nil
			}

			if err := os.WriteFile(output, payload, 0o644); err != nil {
				return goerr.Wrap(err, "failed to write export file", goerr.V("path", output))
			}
			logging.Default().Info("exported risks", "path", output, "count", len(store.Risks()))
			return nil
		},
	}
}
