// Package sheets defines the outbound port for the spreadsheet mirror.
// The mirror is write-only: the primary store stays authoritative and
// the sheet is a human-readable copy.
package sheets

import "context"

// Row is one spreadsheet row of a mirrored ledger entry.
type Row struct {
	Date     string
	Amount   string
	Category string
	Username string
	ChatID   int64
}

// RowAppender appends rows to the mirror.
type RowAppender interface {
	Append(ctx context.Context, row Row) error
}
