// Package services orchestrates ledger commands across the store and
// the event bus. Handlers stay thin; everything that touches more than
// one collaborator lives here.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"expensebot/internal/amqp"
	"expensebot/internal/cache"
	"expensebot/internal/core"
	applog "expensebot/internal/log"
	"expensebot/internal/report"
	"expensebot/internal/split"
	"expensebot/internal/store"
)

// Publisher is the slice of the event bus the ledger needs.
type Publisher interface {
	PublishEntryCreated(ctx context.Context, msg *amqp.EntryCreatedMessage) error
}

// Ledger wires the command surface to a store and an optional event
// bus. A nil bus disables mirroring; commands never fail on it.
type Ledger struct {
	store         store.Store
	bus           Publisher
	defaultBudget decimal.Decimal
	splitLimit    int
	budgets       *cache.LRU[int64, decimal.Decimal]
}

const (
	budgetCacheSize = 1024
	budgetCacheTTL  = 5 * time.Minute
)

func NewLedger(st store.Store, bus Publisher, defaultBudget decimal.Decimal, splitLimit int) *Ledger {
	if splitLimit < 1 {
		splitLimit = 4
	}
	return &Ledger{
		store:         st,
		bus:           bus,
		defaultBudget: defaultBudget,
		splitLimit:    splitLimit,
		budgets:       cache.NewLRU[int64, decimal.Decimal](budgetCacheSize, budgetCacheTTL),
	}
}

// budgetAmount reads the chat's budget through the cache. Writes go
// through SetBudget, which updates the cache, so within one process
// the cached value is never stale.
func (l *Ledger) budgetAmount(ctx context.Context, chatID int64) (decimal.Decimal, error) {
	if amount, ok := l.budgets.Get(chatID); ok {
		return amount, nil
	}
	amount, err := l.store.BudgetAmount(ctx, chatID, l.defaultBudget)
	if err != nil {
		return decimal.Zero, err
	}
	l.budgets.Set(chatID, amount)
	return amount, nil
}

// Confirmation is what the bot echoes back after an insert. TotalSpent
// and Remaining come from reads issued after the insert; a concurrent
// write from the same chat can make them momentarily stale, which is
// acceptable here.
type Confirmation struct {
	Entry      core.Entry
	TotalSpent decimal.Decimal
	Remaining  decimal.Decimal
}

// AddEntry appends one expense and returns the budget figures for the
// confirmation message.
func (l *Ledger) AddEntry(ctx context.Context, e core.Entry) (Confirmation, error) {
	saved, err := l.store.Insert(ctx, e)
	if err != nil {
		return Confirmation{}, fmt.Errorf("add entry: %w", err)
	}
	l.publishCreated(ctx, saved)

	budget, err := l.budgetAmount(ctx, saved.ChatID)
	if err != nil {
		return Confirmation{}, fmt.Errorf("read budget: %w", err)
	}
	total, err := l.store.TotalSpent(ctx, saved.ChatID)
	if err != nil {
		return Confirmation{}, fmt.Errorf("read total spent: %w", err)
	}

	return Confirmation{
		Entry:      saved,
		TotalSpent: total,
		Remaining:  budget.Sub(total),
	}, nil
}

func (l *Ledger) publishCreated(ctx context.Context, e core.Entry) {
	if l.bus == nil {
		return
	}
	msg := amqp.NewEntryCreatedMessage(e.ChatID, e.Amount, e.Category, e.Username, e.OccurredAt)
	if err := l.bus.PublishEntryCreated(ctx, msg); err != nil {
		// The entry is already persisted; the mirror catches up later.
		slog.ErrorContext(ctx, "Failed to publish entry-created event",
			applog.FieldComponent, applog.ComponentLedger,
			applog.FieldChatID, e.ChatID,
			applog.FieldError, err.Error())
	}
}

func (l *Ledger) LastEntry(ctx context.Context, chatID int64) (core.Entry, error) {
	return l.store.Latest(ctx, chatID)
}

func (l *Ledger) RemoveLastEntry(ctx context.Context, chatID int64) (core.Entry, error) {
	return l.store.DeleteLatest(ctx, chatID)
}

func (l *Ledger) Entries(ctx context.Context, chatID int64) ([]core.Entry, error) {
	return l.store.List(ctx, chatID)
}

func (l *Ledger) SetBudget(ctx context.Context, chatID int64, amount decimal.Decimal, username string) error {
	b := core.Budget{
		ChatID:    chatID,
		Amount:    amount,
		Period:    core.Monthly,
		StartDate: time.Now(),
		Username:  username,
	}
	if err := l.store.UpsertBudget(ctx, b); err != nil {
		return fmt.Errorf("set budget: %w", err)
	}
	l.budgets.Set(chatID, amount)
	return nil
}

// Summary aggregates a chat's entries over an arbitrary range.
func (l *Ledger) Summary(ctx context.Context, chatID int64, r core.DateRange) ([]core.Entry, error) {
	entries, err := l.store.ListByRange(ctx, chatID, r)
	if err != nil {
		return nil, fmt.Errorf("summary entries: %w", err)
	}
	return entries, nil
}

// CategoryEntries returns the chat's entries matching the category
// token together with their total.
func (l *Ledger) CategoryEntries(ctx context.Context, chatID int64, category string) ([]core.Entry, decimal.Decimal, error) {
	entries, err := l.store.ListByCategory(ctx, chatID, category)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("category entries: %w", err)
	}
	total, _ := report.Totals(entries)
	return entries, total, nil
}

// MonthEntries returns the chat's entries for a calendar month, newest
// first. Used by the CSV export.
func (l *Ledger) MonthEntries(ctx context.Context, chatID int64, month time.Month, year int) ([]core.Entry, error) {
	entries, err := l.store.ListByRange(ctx, chatID, core.MonthRange(year, month))
	if err != nil {
		return nil, fmt.Errorf("month entries: %w", err)
	}
	return entries, nil
}

// MonthlyStats computes the full monthly aggregate: totals, breakdown,
// budget and remaining. Budget and entries are independent reads; see
// Confirmation for the staleness note.
func (l *Ledger) MonthlyStats(ctx context.Context, chatID int64, month time.Month, year int) (report.MonthStats, error) {
	entries, err := l.store.ListByRange(ctx, chatID, core.MonthRange(year, month))
	if err != nil {
		return report.MonthStats{}, fmt.Errorf("monthly entries: %w", err)
	}
	budget, err := l.budgetAmount(ctx, chatID)
	if err != nil {
		return report.MonthStats{}, fmt.Errorf("read budget: %w", err)
	}
	stats := report.Reduce(entries, month, year, budget)
	if stats.SkippedAmounts > 0 {
		slog.WarnContext(ctx, "Stats include zero-coerced amounts",
			applog.FieldComponent, applog.ComponentLedger,
			applog.FieldChatID, chatID,
			applog.FieldMonth, int(month),
			applog.FieldYear, year,
			"skipped", stats.SkippedAmounts)
	}
	return stats, nil
}

// PartialFailureError reports a split whose inserts partially failed.
// Succeeded inserts are not rolled back; the caller tells the user
// which participants to retry.
type PartialFailureError struct {
	Failed []string
	Errs   []error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("split partially failed for participants %v", e.Failed)
}

func (e *PartialFailureError) Unwrap() []error { return e.Errs }

// SplitExpense validates a split declaration and fans the per-
// participant inserts out concurrently, bounded by the configured
// limit. All inserts are attempted; failures are collected rather than
// short-circuiting.
func (l *Ledger) SplitExpense(ctx context.Context, chatID int64, text string, now time.Time) (*split.Split, error) {
	s, err := split.Parse(text)
	if err != nil {
		return nil, err
	}

	entries := s.Entries(chatID, now)

	var (
		mu     sync.Mutex
		failed []string
		errs   []error
	)
	g := new(errgroup.Group)
	g.SetLimit(l.splitLimit)
	for _, e := range entries {
		e := e
		g.Go(func() error {
			saved, err := l.store.Insert(ctx, e)
			if err != nil {
				mu.Lock()
				failed = append(failed, e.Username)
				errs = append(errs, fmt.Errorf("insert for %s: %w", e.Username, err))
				mu.Unlock()
				return nil
			}
			l.publishCreated(ctx, saved)
			return nil
		})
	}
	g.Wait()

	if len(failed) > 0 {
		return s, &PartialFailureError{Failed: failed, Errs: errs}
	}
	return s, nil
}

// DefaultBudget exposes the configured fallback for callers that only
// need the number.
func (l *Ledger) DefaultBudget() decimal.Decimal { return l.defaultBudget }
