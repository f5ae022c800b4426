// Package worker mirrors the ledger to an external spreadsheet. It feeds
// off ledger events published by the tracker and reconciles the full
// export on a schedule.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/sheets"
	"fintrack/internal/storage"
	"fintrack/internal/tracker"
)

// ExportWorker appends newly added records to the export target and can
// rebuild the whole export from the store.
type ExportWorker struct {
	store    storage.Store
	exporter sheets.Exporter
}

func NewExportWorker(store storage.Store, exporter sheets.Exporter) *ExportWorker {
	return &ExportWorker{
		store:    store,
		exporter: exporter,
	}
}

// HandleLedgerEvent processes one event from the queue: it loads the
// record by ID and appends it as a row.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	snap, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	switch msg.Kind {
	case tracker.EventExpenseAdded:
		for _, e := range snap.Expenses {
			if e.ID == msg.RecordID {
				return w.exporter.AppendRow(ctx, expenseRow(e))
			}
		}
	case tracker.EventIncomeAdded:
		for _, in := range snap.Incomes {
			if in.ID == msg.RecordID {
				return w.exporter.AppendRow(ctx, incomeRow(in))
			}
		}
	default:
		slog.WarnContext(ctx, "Unknown ledger event kind", "kind", msg.Kind)
		return nil
	}

	// Record already deleted; nothing to export.
	slog.InfoContext(ctx, "Record gone before export, skipping",
		"kind", msg.Kind, "record_id", msg.RecordID)
	return nil
}

// Reconcile rebuilds the full export from the current snapshot. Runs on
// the worker's cron schedule and once at startup so deletions eventually
// reach the spreadsheet too.
func (w *ExportWorker) Reconcile(ctx context.Context) error {
	snap, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	rows := make([][]string, 0, len(snap.Expenses)+len(snap.Incomes)+1)
	rows = append(rows, []string{"Type", "Date", "Amount", "Name", "Tag"})
	for _, e := range snap.Expenses {
		rows = append(rows, expenseRow(e))
	}
	for _, in := range snap.Incomes {
		rows = append(rows, incomeRow(in))
	}

	if err := w.exporter.ReplaceRows(ctx, rows); err != nil {
		return fmt.Errorf("replace export: %w", err)
	}

	slog.InfoContext(ctx, "Ledger export reconciled",
		"expenses", len(snap.Expenses),
		"incomes", len(snap.Incomes))
	return nil
}

func expenseRow(e core.Expense) []string {
	return []string{"Expense", e.Date.String(), core.FormatUSD(e.Amount), e.Category, e.Tag}
}

func incomeRow(in core.Income) []string {
	return []string{"Income", in.Date.String(), core.FormatUSD(in.Amount), in.Source, ""}
}
