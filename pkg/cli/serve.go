package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/riskregister/pkg/cli/config"
	httpctrl "github.com/secmon-lab/riskregister/pkg/controller/http"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var seedDemo bool
	var appCfg config.AppConfig
	var storageCfg config.Storage

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("RISKREGISTER_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "seed-demo",
			Usage:       "Seed demo risks when the store is empty",
			Sources:     cli.EnvVars("RISKREGISTER_SEED_DEMO"),
			Destination: &seedDemo,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
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

			if seedDemo {
				store.SeedDemoData(ctx)
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(store),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

// buildStore wires storage and category configuration into a hydrated
// persistent store. Shared by every command that touches risk data.
func buildStore(ctx context.Context, appCfg *config.AppConfig, storageCfg *config.Storage) (*usecase.PersistentStore, error) {
	categories, err := appCfg.CategoryNames()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load application configuration")
	}

	storage, err := storageCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize storage")
	}

	var opts []usecase.Option
	if len(categories) > 0 {
		opts = append(opts, usecase.WithCategories(categories))
	}

	return usecase.NewPersistent(ctx, storage, opts...), nil
}
