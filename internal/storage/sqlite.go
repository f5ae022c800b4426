package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the ledger in SQLite but exposes the same
// whole-snapshot load/save semantics as the JSON file store: Save
// replaces all rows in one transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (Snapshot, error) {
	snap := Empty()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, date, tag FROM expenses ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("load expenses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			e       core.Expense
			dateStr string
		)
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &e.Category, &dateStr, &e.Tag); err != nil {
			return snap, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = core.ParseDate(dateStr); err != nil {
			return snap, fmt.Errorf("parse expense date: %w", err)
		}
		snap.Expenses = append(snap.Expenses, e)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("iterate expenses: %w", err)
	}

	incRows, err := s.db.QueryContext(ctx,
		`SELECT id, amount_cents, source, date FROM incomes ORDER BY position`)
	if err != nil {
		return snap, fmt.Errorf("load incomes: %w", err)
	}
	defer incRows.Close()
	for incRows.Next() {
		var (
			in      core.Income
			dateStr string
		)
		if err := incRows.Scan(&in.ID, &in.Amount.Cents, &in.Source, &dateStr); err != nil {
			return snap, fmt.Errorf("scan income: %w", err)
		}
		if in.Date, err = core.ParseDate(dateStr); err != nil {
			return snap, fmt.Errorf("parse income date: %w", err)
		}
		snap.Incomes = append(snap.Incomes, in)
	}
	if err := incRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate incomes: %w", err)
	}

	budgetRows, err := s.db.QueryContext(ctx, `SELECT category, limit_cents FROM budgets`)
	if err != nil {
		return snap, fmt.Errorf("load budgets: %w", err)
	}
	defer budgetRows.Close()
	for budgetRows.Next() {
		var (
			category string
			cents    int64
		)
		if err := budgetRows.Scan(&category, &cents); err != nil {
			return snap, fmt.Errorf("scan budget: %w", err)
		}
		snap.Budgets[category] = core.Money{Cents: cents}
	}
	if err := budgetRows.Err(); err != nil {
		return snap, fmt.Errorf("iterate budgets: %w", err)
	}

	return snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"expenses", "incomes", "budgets"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, e := range snap.Expenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (id, position, amount_cents, category, date, tag) VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, i, e.Amount.Cents, e.Category, e.Date.String(), e.Tag)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
	}
	for i, in := range snap.Incomes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO incomes (id, position, amount_cents, source, date) VALUES (?, ?, ?, ?, ?)`,
			in.ID, i, in.Amount.Cents, in.Source, in.Date.String())
		if err != nil {
			return fmt.Errorf("insert income: %w", err)
		}
	}
	for category, limit := range snap.Budgets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (category, limit_cents) VALUES (?, ?)`,
			category, limit.Cents)
		if err != nil {
			return fmt.Errorf("insert budget: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
