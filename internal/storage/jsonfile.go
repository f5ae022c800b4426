package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
)

// JSONFileStore persists the ledger as a single JSON document with
// top-level keys "expenses", "incomes" and "budgets". A missing or
// malformed file loads as an empty ledger rather than an error.
type JSONFileStore struct {
	path string
}

func NewJSONFileStore(path string) *JSONFileStore {
	return &JSONFileStore{path: path}
}

func (s *JSONFileStore) Load(ctx context.Context) (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.InfoContext(ctx, "Ledger file not found, starting empty", "path", s.path)
			return Empty(), nil
		}
		return Empty(), fmt.Errorf("read ledger file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		slog.WarnContext(ctx, "Ledger file is malformed, starting empty",
			"path", s.path, "error", err)
		return Empty(), nil
	}
	return normalized(snap), nil
}

func (s *JSONFileStore) Save(ctx context.Context, snap Snapshot) error {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(normalized(snap), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	// Write-then-rename keeps the document whole even if we crash mid-save.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger file: %w", err)
	}
	return nil
}

func (s *JSONFileStore) Close() error { return nil }

// normalized ensures collections are non-nil so callers and the JSON
// encoder see [] and {} instead of null.
func normalized(snap Snapshot) Snapshot {
	out := snap
	if out.Expenses == nil {
		out.Expenses = []core.Expense{}
	}
	if out.Incomes == nil {
		out.Incomes = []core.Income{}
	}
	if out.Budgets == nil {
		out.Budgets = map[string]core.Money{}
	}
	return out
}
