package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"expensebot/internal/core"
	"expensebot/internal/store"
)

func newEntry(chatID int64, amount int64, category string) core.Entry {
	return core.Entry{
		ChatID:     chatID,
		Amount:     decimal.NewFromInt(amount),
		Category:   category,
		Username:   "alice",
		OccurredAt: time.Now(),
	}
}

func TestInsertAssignsIdentity(t *testing.T) {
	s := New()
	got, err := s.Insert(context.Background(), newEntry(1, 100, "Grocery"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Fatalf("identity not assigned: %+v", got)
	}
}

func TestDeleteLatestRemovesMaxCreatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()
	first, _ := s.Insert(ctx, newEntry(1, 10, "a"))
	second, _ := s.Insert(ctx, newEntry(1, 20, "b"))
	// Force distinct creation times regardless of clock resolution.
	s.entries[1].CreatedAt = first.CreatedAt.Add(time.Second)
	second = s.entries[1]

	removed, err := s.DeleteLatest(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed.ID != second.ID {
		t.Fatalf("removed %s, want %s", removed.ID, second.ID)
	}
	left, _ := s.List(ctx, 1)
	if len(left) != 1 || left[0].ID != first.ID {
		t.Fatalf("remaining = %+v", left)
	}
}

func TestDeleteLatestEmpty(t *testing.T) {
	s := New()
	if _, err := s.DeleteLatest(context.Background(), 1); !errors.Is(err, store.ErrNoEntries) {
		t.Fatalf("expected ErrNoEntries, got %v", err)
	}
}

func TestChatPartitioning(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Insert(ctx, newEntry(1, 10, "a"))
	s.Insert(ctx, newEntry(2, 99, "b"))

	entries, _ := s.List(ctx, 1)
	if len(entries) != 1 || entries[0].Category != "a" {
		t.Fatalf("chat 1 sees %+v", entries)
	}
	total, _ := s.TotalSpent(ctx, 2)
	if total.String() != "99" {
		t.Fatalf("chat 2 total = %s", total)
	}
}

func TestListByRangeAndCategory(t *testing.T) {
	s := New()
	ctx := context.Background()

	in := newEntry(1, 10, "Food")
	in.OccurredAt = time.Date(2024, time.January, 15, 0, 0, 0, 0, time.Local)
	out := newEntry(1, 20, "food")
	out.OccurredAt = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.Local)
	s.Insert(ctx, in)
	s.Insert(ctx, out)

	r, _ := core.CustomRange("2024-01-01", "2024-01-31")
	got, _ := s.ListByRange(ctx, 1, r)
	if len(got) != 1 || got[0].Amount.String() != "10" {
		t.Fatalf("ranged = %+v", got)
	}

	byCat, _ := s.ListByCategory(ctx, 1, "FOOD")
	if len(byCat) != 2 {
		t.Fatalf("expected case-insensitive match on both, got %d", len(byCat))
	}
}

func TestBudgetDefault(t *testing.T) {
	s := New()
	ctx := context.Background()
	fallback := decimal.NewFromInt(6000)

	amount, err := s.BudgetAmount(ctx, 1, fallback)
	if err != nil || amount.String() != "6000" {
		t.Fatalf("got %s, %v", amount, err)
	}

	b := core.Budget{ChatID: 1, Amount: decimal.NewFromInt(9000), Period: core.Monthly, StartDate: time.Now(), Username: "alice"}
	if err := s.UpsertBudget(ctx, b); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	amount, _ = s.BudgetAmount(ctx, 1, fallback)
	if amount.String() != "9000" {
		t.Fatalf("got %s after upsert", amount)
	}
	// Fallback still applies to other chats.
	other, _ := s.BudgetAmount(ctx, 2, fallback)
	if other.String() != "6000" {
		t.Fatalf("chat 2 got %s", other)
	}
}
