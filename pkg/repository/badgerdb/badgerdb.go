package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// Client is a Storage backed by an embedded BadgerDB instance
type Client struct {
	db *badger.DB
}

var _ interfaces.Storage = (*Client)(nil)

// New opens a BadgerDB at path, creating the directory when absent
func New(path string) (*Client, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create badger directory", goerr.V("path", path))
	}

	opts := badger.DefaultOptions(path).
		WithLogger(&badgerLogger{logger: logging.Default()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open badger database", goerr.V("path", path))
	}

	return &Client{db: db}, nil
}

// NewInMemory opens an ephemeral instance without disk persistence
func NewInMemory() (*Client, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(&badgerLogger{logger: logging.Default()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open in-memory badger database")
	}

	return &Client{db: db}, nil
}

func (x *Client) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := x.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", goerr.Wrap(interfaces.ErrKeyNotFound, "no value in badger store", goerr.V("key", key))
		}
		return "", goerr.Wrap(err, "failed to read from badger", goerr.V("key", key))
	}
	return value, nil
}

func (x *Client) Set(ctx context.Context, key, value string) error {
	err := x.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to write to badger", goerr.V("key", key))
	}
	return nil
}

func (x *Client) Remove(ctx context.Context, key string) error {
	err := x.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return goerr.Wrap(err, "failed to delete from badger", goerr.V("key", key))
	}
	return nil
}

func (x *Client) Clear(ctx context.Context) error {
	if err := x.db.DropAll(); err != nil {
		return goerr.Wrap(err, "failed to clear badger database")
	}
	return nil
}

func (x *Client) Close() error {
	if err := x.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close badger database")
	}
	return nil
}

// badgerLogger routes badger's internal logging onto slog at reduced
// verbosity. Badger is chatty at Info during compaction.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf("badger: "+format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf("badger: "+format, args...))
}
