package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/riskregister/pkg/cli/config"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

func cmdImport() *cli.Command {
	var input string
	var appCfg config.AppConfig
	var storageCfg config.Storage

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Input CSV file path ('-' for stdin)",
			Value:       "-",
			Destination: &input,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:  "import",
		Usage: "Import risks from a CSV file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var payload []byte
			var err error
			if input == "-" {
				payload, err = io.ReadAll(os.Stdin)
				if err != nil {
					return goerr.Wrap(err, "failed to read stdin")
				}
			} else {
				// #nosec G304 - path is expected to be provided by CLI argument
				payload, err = os.ReadFile(input)
				if err != nil {
					return goerr.Wrap(err, "failed to read import file", goerr.V("path", input))
				}
			}

			store, err := buildStore(ctx, &appCfg, &storageCfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(ctx); err != nil {
					logging.Default().Error("failed to close store", "error", err.Error())
				}
			}()

			count, err := store.ImportCSV(ctx, string(payload))
			if err != nil {
				return goerr.Wrap(err, "import failed")
			}

			logging.Default().Info("imported risks", "count", count, "total", len(store.Risks()))
			return nil
		},
	}
}
