package core

import (
	"context"
	"path/filepath"
	"testing"

	"neurocore/pkg/domain"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	t.Setenv("NEUROCORE_STORAGE_DRIVER", "memory")
	store, err := OpenPersistentStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()

	_, err = store.Append(context.Background(), func(c *domain.Container) (domain.Result, error) {
		c.PutDevice(domain.Device{Name: "amp"})
		return domain.Result{}, nil
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestOpenPersistentStoreSQLite(t *testing.T) {
	t.Setenv("NEUROCORE_STORAGE_DRIVER", "sqlite")
	t.Setenv("NEUROCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	store, err := OpenPersistentStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = store.Close()
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv("NEUROCORE_STORAGE_DRIVER", "bogus")
	if _, err := OpenPersistentStore(); err == nil {
		t.Fatal("unknown driver accepted")
	}
}
