package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensebot/internal/amqp"
	"expensebot/internal/core"
	"expensebot/internal/store"
	"expensebot/internal/store/memory"
)

type fakeBus struct {
	mu   sync.Mutex
	msgs []*amqp.EntryCreatedMessage
}

func (b *fakeBus) PublishEntryCreated(_ context.Context, msg *amqp.EntryCreatedMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.msgs = append(b.msgs, msg)
	return nil
}

// failingStore rejects inserts for selected usernames.
type failingStore struct {
	store.Store
	reject map[string]bool
}

func (f *failingStore) Insert(ctx context.Context, e core.Entry) (core.Entry, error) {
	if f.reject[e.Username] {
		return core.Entry{}, store.ErrUnavailable
	}
	return f.Store.Insert(ctx, e)
}

func testEntry(amount int64) core.Entry {
	return core.Entry{
		ChatID:     42,
		Amount:     decimal.NewFromInt(amount),
		Category:   "Grocery",
		Username:   "alice",
		OccurredAt: time.Now(),
	}
}

func TestAddEntryConfirmation(t *testing.T) {
	bus := &fakeBus{}
	l := NewLedger(memory.New(), bus, decimal.NewFromInt(6000), 4)
	ctx := context.Background()

	conf, err := l.AddEntry(ctx, testEntry(100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Entry.ID == "" {
		t.Fatal("entry should carry store identity")
	}
	if conf.TotalSpent.String() != "100" || conf.Remaining.String() != "5900" {
		t.Fatalf("confirmation = %+v", conf)
	}
	if len(bus.msgs) != 1 || bus.msgs[0].ChatID != 42 {
		t.Fatalf("expected one published event, got %+v", bus.msgs)
	}
}

func TestAddEntryWithoutBus(t *testing.T) {
	l := NewLedger(memory.New(), nil, decimal.NewFromInt(6000), 4)
	if _, err := l.AddEntry(context.Background(), testEntry(50)); err != nil {
		t.Fatalf("nil bus must not fail the command: %v", err)
	}
}

func TestMonthlyStats(t *testing.T) {
	l := NewLedger(memory.New(), nil, decimal.NewFromInt(1000), 4)
	ctx := context.Background()

	march := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)
	for _, amt := range []int64{100, 200} {
		e := testEntry(amt)
		e.OccurredAt = march
		if _, err := l.AddEntry(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	// An April entry must not leak into March.
	outside := testEntry(999)
	outside.OccurredAt = march.AddDate(0, 1, 0)
	l.AddEntry(ctx, outside)

	stats, err := l.MonthlyStats(ctx, 42, time.March, 2025)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalSpent.String() != "300" || stats.TransactionCount != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Remaining.String() != "700" {
		t.Fatalf("remaining = %s", stats.Remaining)
	}
	if stats.AvgTransaction.String() != "150" {
		t.Fatalf("avg = %s", stats.AvgTransaction)
	}
}

func TestSetBudgetRefreshesCachedValue(t *testing.T) {
	l := NewLedger(memory.New(), nil, decimal.NewFromInt(6000), 4)
	ctx := context.Background()
	now := time.Now()

	// Prime the cache with the default.
	stats, err := l.MonthlyStats(ctx, 42, now.Month(), now.Year())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Budget.String() != "6000" {
		t.Fatalf("budget = %s, want default", stats.Budget)
	}

	if err := l.SetBudget(ctx, 42, decimal.NewFromInt(1500), "alice"); err != nil {
		t.Fatal(err)
	}

	stats, err = l.MonthlyStats(ctx, 42, now.Month(), now.Year())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Budget.String() != "1500" {
		t.Fatalf("budget = %s, want updated value", stats.Budget)
	}
}

func TestSplitExpenseFanOut(t *testing.T) {
	st := memory.New()
	bus := &fakeBus{}
	l := NewLedger(st, bus, decimal.NewFromInt(6000), 2)
	ctx := context.Background()

	s, err := l.SplitExpense(ctx, 42, "100 Dinner @alice:50 @bob:50", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Shares) != 2 {
		t.Fatalf("shares = %+v", s.Shares)
	}

	entries, _ := st.List(ctx, 42)
	if len(entries) != 2 {
		t.Fatalf("expected 2 inserted entries, got %d", len(entries))
	}
	names := []string{entries[0].Username, entries[1].Username}
	sort.Strings(names)
	if names[0] != "alice" || names[1] != "bob" {
		t.Fatalf("usernames = %v", names)
	}
	for _, e := range entries {
		if e.Category != "Split: Dinner" {
			t.Fatalf("category = %q", e.Category)
		}
	}
	if len(bus.msgs) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(bus.msgs))
	}
}

func TestSplitExpensePartialFailure(t *testing.T) {
	st := &failingStore{Store: memory.New(), reject: map[string]bool{"bob": true}}
	l := NewLedger(st, nil, decimal.NewFromInt(6000), 4)
	ctx := context.Background()

	_, err := l.SplitExpense(ctx, 42, "100 Dinner @alice:50 @bob:50", time.Now())
	var partial *PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialFailureError, got %v", err)
	}
	if len(partial.Failed) != 1 || partial.Failed[0] != "bob" {
		t.Fatalf("failed = %v", partial.Failed)
	}

	// Alice's insert is not rolled back.
	entries, _ := st.List(ctx, 42)
	if len(entries) != 1 || entries[0].Username != "alice" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestSplitExpenseValidationShortCircuits(t *testing.T) {
	st := memory.New()
	l := NewLedger(st, nil, decimal.NewFromInt(6000), 4)
	ctx := context.Background()

	if _, err := l.SplitExpense(ctx, 42, "100 Dinner @alice:40 @bob:50", time.Now()); err == nil {
		t.Fatal("expected mismatch error")
	}
	if entries, _ := st.List(ctx, 42); len(entries) != 0 {
		t.Fatalf("no inserts should happen on validation failure, got %d", len(entries))
	}
}
