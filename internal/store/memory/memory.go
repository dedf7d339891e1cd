// Package memory is the in-process ledger used for development and
// tests. It mirrors the persistent backends' ordering semantics.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"expensebot/internal/core"
	"expensebot/internal/store"
)

type Store struct {
	mu      sync.Mutex
	seq     int64
	entries []core.Entry
	budgets map[int64]core.Budget
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{budgets: make(map[int64]core.Budget)}
}

func (s *Store) Insert(_ context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	e.ID = fmt.Sprintf("mem:%d", s.seq)
	e.CreatedAt = time.Now()
	if e.OccurredAt.IsZero() {
		e.OccurredAt = e.CreatedAt
	}
	s.entries = append(s.entries, e)
	return e, nil
}

func (s *Store) Latest(_ context.Context, chatID int64) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.latestIndex(chatID)
	if idx < 0 {
		return core.Entry{}, store.ErrNoEntries
	}
	return s.entries[idx], nil
}

func (s *Store) DeleteLatest(_ context.Context, chatID int64) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.latestIndex(chatID)
	if idx < 0 {
		return core.Entry{}, store.ErrNoEntries
	}
	e := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	return e, nil
}

// latestIndex finds the entry with the maximum CreatedAt for the chat.
// Callers must hold the mutex.
func (s *Store) latestIndex(chatID int64) int {
	idx := -1
	for i, e := range s.entries {
		if e.ChatID != chatID {
			continue
		}
		if idx < 0 || e.CreatedAt.After(s.entries[idx].CreatedAt) {
			idx = i
		}
	}
	return idx
}

func (s *Store) List(_ context.Context, chatID int64) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(chatID, func(core.Entry) bool { return true }), nil
}

func (s *Store) ListByRange(_ context.Context, chatID int64, r core.DateRange) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(chatID, func(e core.Entry) bool { return r.Contains(e.OccurredAt) }), nil
}

func (s *Store) ListByCategory(_ context.Context, chatID int64, category string) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(chatID, func(e core.Entry) bool { return strings.EqualFold(e.Category, category) }), nil
}

func (s *Store) collect(chatID int64, keep func(core.Entry) bool) []core.Entry {
	out := make([]core.Entry, 0)
	for _, e := range s.entries {
		if e.ChatID == chatID && keep(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) TotalSpent(_ context.Context, chatID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, e := range s.entries {
		if e.ChatID == chatID {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.ChatID] = b
	return nil
}

func (s *Store) BudgetAmount(_ context.Context, chatID int64, fallback decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.budgets[chatID]; ok {
		return b.Amount, nil
	}
	return fallback, nil
}
