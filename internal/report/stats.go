// Package report reduces filtered entry sets into the figures the bot
// replies with: totals, averages, category breakdowns and monthly
// budget status.
package report

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expensebot/internal/core"
)

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
	Count    int
}

// MonthStats is the aggregate view of a chat's month. Recomputed per
// request, never cached, so it always reflects the store at query time.
type MonthStats struct {
	Month             time.Month
	Year              int
	TotalSpent        decimal.Decimal
	TransactionCount  int
	AvgTransaction    decimal.Decimal
	CategoryBreakdown []CategoryTotal
	Budget            decimal.Decimal
	Remaining         decimal.Decimal
	// SkippedAmounts counts rows whose amount could not be parsed and
	// was coerced to zero. Such rows still count as transactions.
	SkippedAmounts int
}

// Totals sums entry amounts and counts entries.
func Totals(entries []core.Entry) (total decimal.Decimal, count int) {
	total = decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total, len(entries)
}

// Average is total/count, or zero for an empty set.
func Average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

// PercentageOf returns part/whole as a percentage, or zero when the
// whole is zero or negative.
func PercentageOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100))
}

// CategoryBreakdown groups entries by their stored category label and
// sorts the groups by descending total. Grouping is exact-match on the
// stored string; ties keep first-seen order.
func CategoryBreakdown(entries []core.Entry) []CategoryTotal {
	totals := make(map[string]*CategoryTotal)
	order := make([]string, 0)
	for _, e := range entries {
		ct, ok := totals[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category, Total: decimal.Zero}
			totals[e.Category] = ct
			order = append(order, e.Category)
		}
		ct.Total = ct.Total.Add(e.Amount)
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, *totals[cat])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total.GreaterThan(out[j].Total)
	})
	return out
}

// FilterByRange keeps entries whose occurrence time falls in the
// half-open range. Filtering an already-filtered set with the same
// range is a no-op.
func FilterByRange(entries []core.Entry, r core.DateRange) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if r.Contains(e.OccurredAt) {
			out = append(out, e)
		}
	}
	return out
}

// FilterByCategory keeps entries whose category equals the token,
// case-insensitively. Zero matches is an empty result, not an error.
func FilterByCategory(entries []core.Entry, token string) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(e.Category, token) {
			out = append(out, e)
		}
	}
	return out
}

// Reduce builds the full monthly aggregate from pre-filtered entries
// and the chat's budget.
func Reduce(entries []core.Entry, month time.Month, year int, budget decimal.Decimal) MonthStats {
	total, count := Totals(entries)
	skipped := 0
	for _, e := range entries {
		if e.AmountCoerced {
			skipped++
		}
	}
	return MonthStats{
		Month:             month,
		Year:              year,
		TotalSpent:        total,
		TransactionCount:  count,
		AvgTransaction:    Average(total, count),
		CategoryBreakdown: CategoryBreakdown(entries),
		Budget:            budget,
		Remaining:         budget.Sub(total),
		SkippedAmounts:    skipped,
	}
}
