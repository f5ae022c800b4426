package storage

import (
	"context"
	"sync"

	"fintrack/internal/core"
)

// MemoryStore holds a snapshot in memory. Used by tests and as a
// throwaway backend.
type MemoryStore struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snap: Empty()}
}

func (s *MemoryStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySnapshot(s.snap), nil
}

func (s *MemoryStore) Save(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = copySnapshot(snap)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func copySnapshot(snap Snapshot) Snapshot {
	out := Snapshot{
		Expenses: make([]core.Expense, len(snap.Expenses)),
		Incomes:  make([]core.Income, len(snap.Incomes)),
		Budgets:  make(map[string]core.Money, len(snap.Budgets)),
	}
	copy(out.Expenses, snap.Expenses)
	copy(out.Incomes, snap.Incomes)
	for k, v := range snap.Budgets {
		out.Budgets[k] = v
	}
	return out
}
