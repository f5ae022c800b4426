// Package sheets defines the ports the export worker writes ledger rows
// through. The google subpackage implements them against the Sheets API.
package sheets

import "context"

// RowAppender appends one ledger row to the export target.
type RowAppender interface {
	AppendRow(ctx context.Context, row []string) error
}

// RowReplacer replaces the full export with the given rows. Used by the
// periodic reconciliation pass.
type RowReplacer interface {
	ReplaceRows(ctx context.Context, rows [][]string) error
}

// Exporter is the combined surface the worker needs.
type Exporter interface {
	RowAppender
	RowReplacer
}
