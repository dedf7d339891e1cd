package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Monthly BudgetPeriod = "monthly"
	Weekly  BudgetPeriod = "weekly"
	Daily   BudgetPeriod = "daily"
)

type (
	// BudgetPeriod is informational only; aggregation always works on
	// calendar months or explicit ranges.
	BudgetPeriod string

	// Entry is a single expense logged by a chat member. Entries are
	// append-only: once inserted they are never mutated, only removed by
	// an explicit remove-last operation.
	Entry struct {
		ID         string // store-assigned, opaque
		ChatID     int64
		Amount     decimal.Decimal
		Category   string // free-text label, doubles as description
		Username   string
		OccurredAt time.Time // when the expense happened
		CreatedAt  time.Time // insertion time, drives "latest" ordering
		// AmountCoerced marks a stored amount that could not be parsed
		// and was read back as zero. The row still counts as a
		// transaction.
		AmountCoerced bool
	}

	// Budget is the single mutable record per chat. Upserted by the
	// set-budget command, read with a configured default when absent.
	Budget struct {
		ChatID    int64
		Amount    decimal.Decimal
		Period    BudgetPeriod
		StartDate time.Time
		Username  string // last setter
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyUsername      = errors.New("empty username")
	ErrMissingChat        = errors.New("missing chat id")
	ErrInvalidMonthFormat = errors.New("invalid month format")
	ErrInvalidDateFormat  = errors.New("invalid date format")
)

func (e Entry) Validate() error {
	if e.ChatID == 0 {
		return ErrMissingChat
	}
	if e.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.Username) == "" {
		return ErrEmptyUsername
	}
	return nil
}

func (b Budget) Validate() error {
	if b.ChatID == 0 {
		return ErrMissingChat
	}
	if b.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	switch b.Period {
	case Monthly, Weekly, Daily:
	default:
		return errors.New("invalid budget period")
	}
	if strings.TrimSpace(b.Username) == "" {
		return ErrEmptyUsername
	}
	return nil
}
