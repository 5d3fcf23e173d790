package storage

import (
	"context"
	"errors"
	"fmt"
)

// NewStore opens and initializes a store backend: "memory" (the default) or
// "sqlite", which needs a database path. A store that fails to initialize is
// closed before the error is returned.
func NewStore(ctx context.Context, kind, sqlitePath string) (Store, error) {
	var store Store
	switch kind {
	case "", "memory":
		store = NewMemoryStore()
	case "sqlite":
		if sqlitePath == "" {
			return nil, errors.New("sqlite store needs a database path")
		}
		store = NewSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
	if err := store.Init(ctx); err != nil {
		_ = CloseIfSupported(store)
		return nil, fmt.Errorf("init %s store: %w", kind, err)
	}
	return store, nil
}

// CloseIfSupported closes stores that hold resources.
func CloseIfSupported(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
