// Package google exports ledger rows to a Google Sheets spreadsheet.
package google

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config holds the spreadsheet target and credentials. Exactly one of
// CredentialsFile or CredentialsJSON must be set.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// Client appends and replaces rows on a single sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// New builds a Sheets client from the given config.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is required")
	}
	if cfg.SheetName == "" {
		return nil, fmt.Errorf("sheet name is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	default:
		return nil, fmt.Errorf("credentials file or JSON is required")
	}
	opts = append(opts, option.WithScopes(gsheet.SpreadsheetsScope))

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
	}, nil
}

// AppendRow appends one row after the last populated row of the sheet.
func (c *Client) AppendRow(ctx context.Context, row []string) error {
	vr := &gsheet.ValueRange{Values: [][]interface{}{toValues(row)}}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.writeRange(), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	slog.InfoContext(ctx, "Row appended to sheet",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName)
	return nil
}

// ReplaceRows clears the sheet and writes the full export.
func (c *Client) ReplaceRows(ctx context.Context, rows [][]string) error {
	_, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, c.writeRange(), &gsheet.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = toValues(row)
	}
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, c.writeRange(), vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	slog.InfoContext(ctx, "Sheet replaced",
		"spreadsheet_id", c.spreadsheetID,
		"sheet", c.sheetName,
		"rows", len(rows))
	return nil
}

func (c *Client) writeRange() string {
	return c.sheetName + "!A:E"
}

func toValues(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, cell := range row {
		out[i] = cell
	}
	return out
}
