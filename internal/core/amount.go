// Package core holds the domain types and the calendar/amount parsing
// shared by every command handler.
//
// This file contains amount parsing. Amounts are decimals end to end;
// float64 never touches money except at the Mongo boundary, where the
// original collection stored plain numbers.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-supplied amount token. It accepts both dot
// and comma decimal separators. Negative amounts are rejected: the
// ledger only records spending.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// AmountOrZero is the lenient variant used when reducing stored rows:
// an unparsable amount is coerced to zero and the row still counts as a
// transaction. The ok flag feeds the skipped-amount diagnostic.
func AmountOrZero(s string) (d decimal.Decimal, ok bool) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
