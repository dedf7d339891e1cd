// Package store defines the ledger port the command handlers talk to.
// Backends (memory, sqlite, mongo) implement it; callers never see
// backend-specific types.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"expensebot/internal/core"
)

var (
	// ErrNoEntries means the chat's ledger is empty for the requested
	// operation. It is data ("nothing there"), not an outage.
	ErrNoEntries = errors.New("no entries found")

	// ErrUnavailable marks a store that could not be reached. Backends
	// wrap their transport errors with it so callers can tell outages
	// apart from empty results.
	ErrUnavailable = errors.New("store unavailable")
)

type (
	// Ledger is the append-only expense collection, partitioned by chat.
	Ledger interface {
		// Insert appends an entry and returns it with the store-assigned
		// ID and creation timestamp filled in.
		Insert(ctx context.Context, e core.Entry) (core.Entry, error)

		// Latest returns the entry with the maximum creation time for
		// the chat, or ErrNoEntries.
		Latest(ctx context.Context, chatID int64) (core.Entry, error)

		// DeleteLatest removes and returns the latest entry for the
		// chat, or ErrNoEntries.
		DeleteLatest(ctx context.Context, chatID int64) (core.Entry, error)

		// List returns every entry for the chat, newest first.
		List(ctx context.Context, chatID int64) ([]core.Entry, error)

		// ListByRange returns the chat's entries whose occurrence time
		// falls in the half-open range, newest first.
		ListByRange(ctx context.Context, chatID int64, r core.DateRange) ([]core.Entry, error)

		// ListByCategory returns the chat's entries whose category
		// equals the token case-insensitively, newest first.
		ListByCategory(ctx context.Context, chatID int64, category string) ([]core.Entry, error)

		// TotalSpent sums every amount the chat ever logged.
		TotalSpent(ctx context.Context, chatID int64) (decimal.Decimal, error)
	}

	// Budgets holds the single mutable budget record per chat.
	Budgets interface {
		UpsertBudget(ctx context.Context, b core.Budget) error

		// BudgetAmount returns the chat's budget, or the fallback when
		// the chat never set one. The fallback comes from configuration,
		// passed in per call.
		BudgetAmount(ctx context.Context, chatID int64, fallback decimal.Decimal) (decimal.Decimal, error)
	}

	// Store is the full persistence surface a backend provides.
	Store interface {
		Ledger
		Budgets
	}
)
