package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/utils/async"
	"github.com/secmon-lab/riskregister/pkg/utils/errutil"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// DefaultStorageKey is the namespaced key the store document lives under
const DefaultStorageKey = "riskregister.store.v1"

// PersistentStore decorates RiskStore with write-through persistence.
// Mutations complete in memory first; the snapshot write is dispatched in
// the background so persistence latency never blocks a caller. Use Flush
// when a synchronous write is required.
type PersistentStore struct {
	*RiskStore
	storage  interfaces.Storage
	key      string
	hydrated bool
}

// NewPersistent builds a store hydrated from the storage backend. A
// missing or unreadable document starts the store empty; hydration never
// fails the constructor.
func NewPersistent(ctx context.Context, storage interfaces.Storage, opts ...Option) *PersistentStore {
	x := &PersistentStore{
		RiskStore: New(opts...),
		storage:   storage,
		key:       DefaultStorageKey,
	}
	x.hydrate(ctx)
	return x
}

func (x *PersistentStore) hydrate(ctx context.Context) {
	defer func() { x.hydrated = true }()

	raw, err := x.storage.Get(ctx, x.key)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			logging.From(ctx).Debug("no persisted document, starting empty", "key", x.key)
			return
		}
		errutil.Handle(ctx, err, "failed to read persisted document, starting empty")
		return
	}

	var snapshot model.Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		logging.From(ctx).Warn("persisted document is corrupt, starting empty",
			"key", x.key, "error", err.Error())
		return
	}

	x.Restore(ctx, &snapshot)
	logging.From(ctx).Info("hydrated store from persisted document",
		"key", x.key, "risks", len(snapshot.Risks), "version", snapshot.Version)
}

// Hydrated reports whether the initial load has completed
func (x *PersistentStore) Hydrated() bool {
	return x.hydrated
}

// Flush writes the current snapshot synchronously
func (x *PersistentStore) Flush(ctx context.Context) error {
	raw, err := json.Marshal(x.Snapshot())
	if err != nil {
		return goerr.Wrap(err, "failed to marshal store snapshot")
	}
	if err := x.storage.Set(ctx, x.key, string(raw)); err != nil {
		return goerr.Wrap(err, "failed to persist store snapshot", goerr.V("key", x.key))
	}
	return nil
}

func (x *PersistentStore) dispatchFlush(ctx context.Context) {
	async.Dispatch(ctx, func(ctx context.Context) error {
		return x.Flush(ctx)
	})
}

// Close flushes once more and releases the storage backend
func (x *PersistentStore) Close(ctx context.Context) error {
	if err := x.Flush(ctx); err != nil {
		errutil.Handle(ctx, err, "final flush failed")
	}
	return x.storage.Close()
}

// Discard releases the storage backend without a final flush. In-memory
// state that was never flushed is lost.
func (x *PersistentStore) Discard() error {
	return x.storage.Close()
}

func (x *PersistentStore) AddRisk(ctx context.Context, input model.RiskInput) (*model.Risk, error) {
	risk, err := x.RiskStore.AddRisk(ctx, input)
	if err != nil {
		return nil, err
	}
	x.dispatchFlush(ctx)
	return risk, nil
}

func (x *PersistentStore) UpdateRisk(ctx context.Context, id types.RiskID, update model.RiskUpdate) (*model.Risk, error) {
	risk, err := x.RiskStore.UpdateRisk(ctx, id, update)
	if err != nil || risk == nil {
		return risk, err
	}
	x.dispatchFlush(ctx)
	return risk, nil
}

func (x *PersistentStore) DeleteRisk(ctx context.Context, id types.RiskID) {
	x.RiskStore.DeleteRisk(ctx, id)
	x.dispatchFlush(ctx)
}

func (x *PersistentStore) SetFilters(ctx context.Context, update model.FiltersUpdate) model.Filters {
	filters := x.RiskStore.SetFilters(ctx, update)
	x.dispatchFlush(ctx)
	return filters
}

func (x *PersistentStore) AddCategory(ctx context.Context, name string) ([]string, error) {
	categories, err := x.RiskStore.AddCategory(ctx, name)
	if err != nil {
		return categories, err
	}
	x.dispatchFlush(ctx)
	return categories, nil
}

func (x *PersistentStore) ImportCSV(ctx context.Context, payload string) (int, error) {
	count, err := x.RiskStore.ImportCSV(ctx, payload)
	if err != nil || count == 0 {
		return count, err
	}
	x.dispatchFlush(ctx)
	return count, nil
}

func (x *PersistentStore) SeedDemoData(ctx context.Context) int {
	count := x.RiskStore.SeedDemoData(ctx)
	if count > 0 {
		x.dispatchFlush(ctx)
	}
	return count
}
