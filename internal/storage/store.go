// Package storage persists the tracker's ledger as one whole-document
// snapshot. The default backend is a flat JSON file; a SQLite backend and
// an in-memory backend implement the same interface.
package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

// Snapshot is the full persisted state: both record sequences in insertion
// order plus the category-to-limit budget mapping.
type Snapshot struct {
	Expenses []core.Expense        `json:"expenses"`
	Incomes  []core.Income         `json:"incomes"`
	Budgets  map[string]core.Money `json:"budgets"`
}

// Empty returns a snapshot with initialized (non-nil) collections.
func Empty() Snapshot {
	return Snapshot{
		Expenses: []core.Expense{},
		Incomes:  []core.Income{},
		Budgets:  map[string]core.Money{},
	}
}

// Store loads and saves ledger snapshots. Save overwrites the whole
// document; there are no partial updates.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

// Backend selects a Store implementation.
type Backend string

const (
	JSONBackend   Backend = "json"
	SQLiteBackend Backend = "sqlite"
	MemoryBackend Backend = "memory"
)

func (b Backend) String() string { return string(b) }

// IsValid returns true if the backend type is known.
func (b Backend) IsValid() bool {
	switch b {
	case JSONBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Open creates the Store for the configured backend.
func Open(backend Backend, jsonPath, sqlitePath string) (Store, error) {
	switch backend {
	case JSONBackend:
		return NewJSONFileStore(jsonPath), nil
	case SQLiteBackend:
		return NewSQLiteStore(sqlitePath)
	case MemoryBackend:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backend)
	}
}
