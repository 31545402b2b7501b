package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/repository/badgerdb"
	"github.com/secmon-lab/riskregister/pkg/repository/memory"
	"github.com/secmon-lab/riskregister/pkg/repository/sealed"
)

func runStorageTest(t *testing.T, newStorage func(t *testing.T) interfaces.Storage) {
	t.Helper()

	t.Run("Get returns not-found for absent key", func(t *testing.T) {
		storage := newStorage(t)
		ctx := context.Background()

		_, err := storage.Get(ctx, "missing")
		gt.B(t, errors.Is(err, interfaces.ErrKeyNotFound)).True()
	})

	t.Run("Set then Get round-trips the value", func(t *testing.T) {
		storage := newStorage(t)
		ctx := context.Background()

		gt.NoError(t, storage.Set(ctx, "doc", `{"version":1}`)).Required()

		got, err := storage.Get(ctx, "doc")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal(`{"version":1}`)
	})

	t.Run("Set overwrites an existing value", func(t *testing.T) {
		storage := newStorage(t)
		ctx := context.Background()

		gt.NoError(t, storage.Set(ctx, "doc", "first")).Required()
		gt.NoError(t, storage.Set(ctx, "doc", "second")).Required()

		got, err := storage.Get(ctx, "doc")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("second")
	})

	t.Run("Remove deletes the key", func(t *testing.T) {
		storage := newStorage(t)
		ctx := context.Background()

		gt.NoError(t, storage.Set(ctx, "doc", "value")).Required()
		gt.NoError(t, storage.Remove(ctx, "doc")).Required()

		_, err := storage.Get(ctx, "doc")
		gt.B(t, errors.Is(err, interfaces.ErrKeyNotFound)).True()
	})

	t.Run("Remove of absent key is a no-op", func(t *testing.T) {
		storage := newStorage(t)
		ctx := context.Background()

		gt.NoError(t, storage.Remove(ctx, "missing")).Required()
	})

	t.Run("Clear removes every key", func(t *testing.T) {
		storage := newStorage(t)
		ctx := context.Background()

		gt.NoError(t, storage.Set(ctx, "a", "1")).Required()
		gt.NoError(t, storage.Set(ctx, "b", "2")).Required()
		gt.NoError(t, storage.Clear(ctx)).Required()

		_, err := storage.Get(ctx, "a")
		gt.B(t, errors.Is(err, interfaces.ErrKeyNotFound)).True()
		_, err = storage.Get(ctx, "b")
		gt.B(t, errors.Is(err, interfaces.ErrKeyNotFound)).True()
	})

	t.Run("empty value round-trips", func(t *testing.T) {
		storage := newStorage(t)
		ctx := context.Background()

		gt.NoError(t, storage.Set(ctx, "empty", "")).Required()
		got, err := storage.Get(ctx, "empty")
		gt.NoError(t, err).Required()
		gt.Value(t, got).Equal("")
	})
}

func TestMemoryStorage(t *testing.T) {
	runStorageTest(t, func(t *testing.T) interfaces.Storage {
		return memory.New()
	})
}

func TestBadgerStorage(t *testing.T) {
	runStorageTest(t, func(t *testing.T) interfaces.Storage {
		client, err := badgerdb.NewInMemory()
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			gt.NoError(t, client.Close())
		})
		return client
	})
}

func TestBadgerStoragePersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	client, err := badgerdb.New(dir)
	gt.NoError(t, err).Required()
	gt.NoError(t, client.Set(ctx, "doc", "survives restart")).Required()
	gt.NoError(t, client.Close()).Required()

	reopened, err := badgerdb.New(dir)
	gt.NoError(t, err).Required()
	defer reopened.Close()

	got, err := reopened.Get(ctx, "doc")
	gt.NoError(t, err).Required()
	gt.Value(t, got).Equal("survives restart")
}

func TestSealedStorage(t *testing.T) {
	runStorageTest(t, func(t *testing.T) interfaces.Storage {
		client, err := sealed.New(memory.New(), "correct horse battery staple")
		gt.NoError(t, err).Required()
		return client
	})
}

func TestSealedStorageEncryption(t *testing.T) {
	ctx := context.Background()
	inner := memory.New()

	client, err := sealed.New(inner, "passphrase")
	gt.NoError(t, err).Required()

	gt.NoError(t, client.Set(ctx, "doc", "secret payload")).Required()

	t.Run("inner value is not plaintext", func(t *testing.T) {
		raw, err := inner.Get(ctx, "doc")
		gt.NoError(t, err).Required()
		gt.B(t, raw == "secret payload").False()
	})

	t.Run("wrong passphrase fails closed", func(t *testing.T) {
		wrong, err := sealed.New(inner, "not the passphrase")
		gt.NoError(t, err).Required()

		_, err = wrong.Get(ctx, "doc")
		gt.Error(t, err).Is(sealed.ErrDecryptFailed)
	})

	t.Run("tampered value fails closed", func(t *testing.T) {
		gt.NoError(t, inner.Set(ctx, "doc", "bm90IHZhbGlkIGNpcGhlcnRleHQ=")).Required()

		_, err := client.Get(ctx, "doc")
		gt.Error(t, err).Is(sealed.ErrDecryptFailed)
	})
}
