package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/repository/badgerdb"
	"github.com/secmon-lab/riskregister/pkg/repository/memory"
	"github.com/secmon-lab/riskregister/pkg/repository/sealed"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for storage backend configuration
type Storage struct {
	backend    string
	badgerPath string
	passphrase string
}

// Flags returns CLI flags for storage configuration
func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Storage backend type (badger or memory)",
			Value:       "badger",
			Sources:     cli.EnvVars("RISKREGISTER_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "badger-path",
			Usage:       "Directory for BadgerDB files (required when using badger backend)",
			Value:       "./data",
			Sources:     cli.EnvVars("RISKREGISTER_BADGER_PATH"),
			Destination: &x.badgerPath,
		},
		&cli.StringFlag{
			Name:        "storage-passphrase",
			Usage:       "Encrypt stored values with this passphrase (disabled when empty)",
			Sources:     cli.EnvVars("RISKREGISTER_STORAGE_PASSPHRASE"),
			Destination: &x.passphrase,
		},
	}
}

// Backend returns the configured backend type
func (x *Storage) Backend() string {
	return x.backend
}

// Configure initializes and returns a storage based on the configured
// backend. The caller is responsible for calling Close() on the result.
func (x *Storage) Configure(ctx context.Context) (interfaces.Storage, error) {
	var storage interfaces.Storage

	switch x.backend {
	case "badger":
		if x.badgerPath == "" {
			return nil, goerr.Wrap(ErrInvalidBackend, "badger-path is required when using badger backend")
		}
		client, err := badgerdb.New(x.badgerPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize badger storage")
		}
		logging.Default().Info("Using BadgerDB storage", "path", x.badgerPath)
		storage = client

	case "memory":
		logging.Default().Info("Using in-memory storage (development mode)")
		storage = memory.New()

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unsupported backend", goerr.V("backend", x.backend))
	}

	if x.passphrase != "" {
		wrapped, err := sealed.New(storage, x.passphrase)
		if err != nil {
			storage.Close() //nolint:errcheck // already failing
			return nil, goerr.Wrap(err, "failed to initialize sealed storage")
		}
		logging.Default().Info("Value encryption enabled")
		storage = wrapped
	}

	return storage, nil
}
