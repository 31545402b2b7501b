package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
)

// Client is a map-backed Storage for tests and ephemeral deployments
type Client struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ interfaces.Storage = (*Client)(nil)

func New() *Client {
	return &Client{
		values: make(map[string]string),
	}
}

func (x *Client) Get(ctx context.Context, key string) (string, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	value, ok := x.values[key]
	if !ok {
		return "", goerr.Wrap(interfaces.ErrKeyNotFound, "no value in memory store", goerr.V("key", key))
	}
	return value, nil
}

func (x *Client) Set(ctx context.Context, key, value string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.values[key] = value
	return nil
}

func (x *Client) Remove(ctx context.Context, key string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	delete(x.values, key)
	return nil
}

func (x *Client) Clear(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.values = make(map[string]string)
	return nil
}

func (x *Client) Close() error {
	return nil
}
