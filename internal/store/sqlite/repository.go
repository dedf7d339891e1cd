// Package sqlite persists the ledger in a local SQLite file. Amounts
// are stored as decimal text and summed client-side, so no float math
// ever touches money.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"expensebot/internal/core"
	applog "expensebot/internal/log"
	"expensebot/internal/store"
)

type Repository struct {
	db *sql.DB
}

var _ store.Store = (*Repository)(nil)

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Insert(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	e.CreatedAt = time.Now()
	if e.OccurredAt.IsZero() {
		e.OccurredAt = e.CreatedAt
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (chat_id, amount, category, username, occurred_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ChatID, e.Amount.String(), e.Category, e.Username, e.OccurredAt, e.CreatedAt)
	if err != nil {
		return core.Entry{}, wrap("insert entry", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Entry{}, wrap("last insert id", err)
	}
	e.ID = strconv.FormatInt(id, 10)

	slog.InfoContext(ctx, "Entry saved",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpCreate,
		applog.FieldEntryID, e.ID,
		applog.FieldChatID, e.ChatID,
		applog.FieldCategory, e.Category,
		applog.FieldAmount, e.Amount.String())

	return e, nil
}

const entryColumns = `id, chat_id, amount, category, username, occurred_at, created_at`

func (r *Repository) Latest(ctx context.Context, chatID int64) (core.Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE chat_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, chatID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, store.ErrNoEntries
	}
	if err != nil {
		return core.Entry{}, wrap("select latest entry", err)
	}
	return e, nil
}

func (r *Repository) DeleteLatest(ctx context.Context, chatID int64) (core.Entry, error) {
	e, err := r.Latest(ctx, chatID)
	if err != nil {
		return core.Entry{}, err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, e.ID); err != nil {
		return core.Entry{}, wrap("delete latest entry", err)
	}
	slog.InfoContext(ctx, "Entry removed",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpDelete,
		applog.FieldEntryID, e.ID,
		applog.FieldChatID, chatID)
	return e, nil
}

func (r *Repository) List(ctx context.Context, chatID int64) ([]core.Entry, error) {
	return r.query(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE chat_id = ?
		 ORDER BY created_at DESC, id DESC`, chatID)
}

func (r *Repository) ListByRange(ctx context.Context, chatID int64, dr core.DateRange) ([]core.Entry, error) {
	return r.query(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE chat_id = ? AND occurred_at >= ? AND occurred_at < ?
		 ORDER BY created_at DESC, id DESC`, chatID, dr.Start, dr.End)
}

func (r *Repository) ListByCategory(ctx context.Context, chatID int64, category string) ([]core.Entry, error) {
	return r.query(ctx,
		`SELECT `+entryColumns+` FROM entries
		 WHERE chat_id = ? AND category = ? COLLATE NOCASE
		 ORDER BY created_at DESC, id DESC`, chatID, category)
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]core.Entry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap("query entries", err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, wrap("scan entry", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate entries", err)
	}
	return out, nil
}

func (r *Repository) TotalSpent(ctx context.Context, chatID int64) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT amount FROM entries WHERE chat_id = ?`, chatID)
	if err != nil {
		return decimal.Zero, wrap("query amounts", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, wrap("scan amount", err)
		}
		// Coercion policy: an unreadable stored amount counts as zero.
		amount, ok := core.AmountOrZero(raw)
		if !ok {
			slog.WarnContext(ctx, "Skipping unparsable amount",
				applog.FieldComponent, applog.ComponentStorage,
				applog.FieldChatID, chatID,
				"raw", raw)
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, wrap("iterate amounts", err)
	}
	return total, nil
}

func (r *Repository) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (chat_id, amount, period, start_date, username)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
		   amount = excluded.amount,
		   period = excluded.period,
		   start_date = excluded.start_date,
		   username = excluded.username`,
		b.ChatID, b.Amount.String(), string(b.Period), b.StartDate, b.Username)
	if err != nil {
		return wrap("upsert budget", err)
	}
	slog.InfoContext(ctx, "Budget updated",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldChatID, b.ChatID,
		applog.FieldAmount, b.Amount.String(),
		applog.FieldUsername, b.Username)
	return nil
}

func (r *Repository) BudgetAmount(ctx context.Context, chatID int64, fallback decimal.Decimal) (decimal.Decimal, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT amount FROM budgets WHERE chat_id = ?`, chatID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return decimal.Zero, wrap("select budget", err)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored budget %q: %w", raw, err)
	}
	return amount, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (core.Entry, error) {
	var (
		e   core.Entry
		id  int64
		raw string
	)
	if err := s.Scan(&id, &e.ChatID, &raw, &e.Category, &e.Username, &e.OccurredAt, &e.CreatedAt); err != nil {
		return core.Entry{}, err
	}
	e.ID = strconv.FormatInt(id, 10)
	amount, ok := core.AmountOrZero(raw)
	e.Amount = amount
	e.AmountCoerced = !ok
	return e, nil
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
}
