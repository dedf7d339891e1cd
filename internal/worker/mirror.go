// Package worker turns consumed entry-created events into spreadsheet
// rows. The mirror is append-only; the primary store stays
// authoritative.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"expensebot/internal/amqp"
	applog "expensebot/internal/log"
	"expensebot/internal/sheets"
)

const rowTimeLayout = "2006-01-02 15:04:05"

// Mirror appends consumed ledger events to a spreadsheet.
type Mirror struct {
	appender sheets.RowAppender
}

func NewMirror(appender sheets.RowAppender) *Mirror {
	return &Mirror{appender: appender}
}

// HandleEntryCreated appends one mirrored row. Returning an error
// makes the consumer requeue the message.
func (m *Mirror) HandleEntryCreated(ctx context.Context, msg *amqp.EntryCreatedMessage) error {
	slog.InfoContext(ctx, "Mirroring entry",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpAppend,
		"message_id", msg.MessageID,
		applog.FieldChatID, msg.ChatID,
		applog.FieldCategory, msg.Category)

	row := RowFromMessage(msg)
	if err := m.appender.Append(ctx, row); err != nil {
		return fmt.Errorf("append mirrored row: %w", err)
	}
	return nil
}

// RowFromMessage maps an event to its spreadsheet row.
func RowFromMessage(msg *amqp.EntryCreatedMessage) sheets.Row {
	return sheets.Row{
		Date:     msg.OccurredAt.Format(rowTimeLayout),
		Amount:   msg.Amount.String(),
		Category: msg.Category,
		Username: msg.Username,
		ChatID:   msg.ChatID,
	}
}
