package core

import (
	"fmt"
	"os"

	"neurocore/internal/infra/persistence/memory"
	"neurocore/internal/infra/persistence/postgres"
	"neurocore/internal/infra/persistence/sqlite"
	"neurocore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// PersistentStore is re-exported for callers that wire storage through core.
type PersistentStore = domain.PersistentStore

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	NEUROCORE_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	NEUROCORE_SQLITE_PATH: path to sqlite file (default ./neurocore.db)
//	NEUROCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore() (PersistentStore, error) {
	driver := os.Getenv("NEUROCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("NEUROCORE_SQLITE_PATH")
		return sqlite.NewStore(path)
	case StoragePostgres:
		dsn := os.Getenv("NEUROCORE_POSTGRES_DSN")
		return postgres.NewStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
