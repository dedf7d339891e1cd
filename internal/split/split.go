// Package split validates shared-expense declarations of the form
//
//	<total> <description...> @user1:<share1> @user2:<share2> ...
//
// and decomposes them into one ledger entry per participant.
package split

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensebot/internal/core"
)

// tolerance is the absolute slack allowed between the declared total
// and the sum of the shares.
var tolerance = decimal.RequireFromString("0.01")

var (
	ErrMalformedSplit = errors.New("malformed split: need a total, a description and at least one @user:amount")
	ErrNoParticipants = errors.New("no participants: specify at least one @user:amount")
)

// MalformedParticipantError reports a participant token that is not of
// the @user:amount form.
type MalformedParticipantError struct {
	Token string
}

func (e *MalformedParticipantError) Error() string {
	return fmt.Sprintf("malformed participant %q: use @username:amount", e.Token)
}

// MismatchError reports shares that do not add up to the total.
type MismatchError struct {
	Total decimal.Decimal
	Sum   decimal.Decimal
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("split shares sum to %s but the total is %s", e.Sum.StringFixed(2), e.Total.StringFixed(2))
}

// Share is one participant's cut.
type Share struct {
	Username string
	Amount   decimal.Decimal
}

// Split is a validated shared expense.
type Split struct {
	Total       decimal.Decimal
	Description string
	Shares      []Share
}

// Parse tokenizes and validates the text after the /split keyword.
func Parse(text string) (*Split, error) {
	tokens := strings.Fields(strings.TrimSpace(text))
	if len(tokens) < 3 {
		return nil, ErrMalformedSplit
	}

	total, err := core.ParseAmount(tokens[0])
	if err != nil {
		return nil, core.ErrInvalidAmount
	}

	// Every @-token is a participant; everything else, wherever it sits,
	// joins the description in original order.
	var descTokens []string
	var shareTokens []string
	for _, tok := range tokens[1:] {
		if strings.HasPrefix(tok, "@") {
			shareTokens = append(shareTokens, tok)
		} else {
			descTokens = append(descTokens, tok)
		}
	}
	if len(shareTokens) == 0 {
		return nil, ErrNoParticipants
	}

	sum := decimal.Zero
	shares := make([]Share, 0, len(shareTokens))
	for _, tok := range shareTokens {
		parts := strings.Split(strings.TrimPrefix(tok, "@"), ":")
		if len(parts) != 2 || parts[0] == "" {
			return nil, &MalformedParticipantError{Token: tok}
		}
		amount, err := core.ParseAmount(parts[1])
		if err != nil {
			return nil, &MalformedParticipantError{Token: tok}
		}
		sum = sum.Add(amount)
		shares = append(shares, Share{Username: parts[0], Amount: amount})
	}

	if sum.Sub(total).Abs().GreaterThan(tolerance) {
		return nil, &MismatchError{Total: total, Sum: sum}
	}

	return &Split{
		Total:       total,
		Description: strings.Join(descTokens, " "),
		Shares:      shares,
	}, nil
}

// Entries materializes one ledger entry per participant.
func (s *Split) Entries(chatID int64, now time.Time) []core.Entry {
	entries := make([]core.Entry, len(s.Shares))
	for i, sh := range s.Shares {
		entries[i] = core.Entry{
			ChatID:     chatID,
			Amount:     sh.Amount,
			Category:   "Split: " + s.Description,
			Username:   sh.Username,
			OccurredAt: now,
		}
	}
	return entries
}
