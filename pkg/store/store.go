// Package store provides the public factory for SnapshotStore backends.
// It exposes Open while keeping the backend implementations internal.
package store

import (
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/strand/internal/jsonl"
	"github.com/mesh-intelligence/strand/internal/sqlite"
	"github.com/mesh-intelligence/strand/pkg/types"
)

// Open validates cfg and opens the backend it names on cfg.DataDir. A nil
// logger discards output. The caller must Close the store.
//
// Example:
//
//	s, err := store.Open(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".strand-db",
//	}, nil)
//	defer s.Close()
func Open(cfg types.Config, log *slog.Logger) (types.SnapshotStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backend %q: %w", cfg.Backend, err)
	}

	switch cfg.Backend {
	case types.BackendSQLite:
		s, err := sqlite.Open(cfg.DataDir, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := jsonl.Open(cfg.DataDir, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}
