package bot

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"expensebot/internal/core"
	"expensebot/internal/report"
	"expensebot/internal/services"
	"expensebot/internal/split"
)

// maxMessageLength is Telegram's hard limit on message text.
const maxMessageLength = 4096

const entryTimeLayout = "2006-01-02 15:04:05"

const instructionsText = "To add an entry, send me the amount and what it was spent on, like this: '100 Grocery'.\n\n" +
	"Available commands:\n" +
	"/start - Start the bot\n" +
	"/instructions - Show instructions\n" +
	"/lastentry - View the last entry\n" +
	"/view - View all entries\n" +
	"/removelastentry - Remove the last entry\n" +
	"/setbudget <amount> - Set your monthly budget\n" +
	"/remaining - Check remaining budget for current month\n" +
	"/export [month] - Export month transactions (e.g., /export Nov or /export for current month)\n" +
	"/compare <month1> <month2> - Compare spending between two months (e.g., /compare Oct Nov)\n" +
	"/category <category> - Filter spending by category (e.g., /category Food)\n" +
	"/summary - Get expense summary (e.g., /summary daily/weekly/monthly or /summary custom 2023-07-01 2023-07-31)\n" +
	"/split <total> <description> @user1:amount @user2:amount - Split an expense\n"

const welcomeText = `Welcome! Send me the amount and what it was spent on, like this: "100 Grocery".`

const unknownCommandText = "Sorry, I didn't understand that. Please use /instructions to see all available commands."

func formatEntryLines(e core.Entry) string {
	return fmt.Sprintf("Date: %s\nAmount: %s\nCategory: %s\nUsername: %s",
		e.OccurredAt.Format(entryTimeLayout), e.Amount, e.Category, e.Username)
}

// FormatLastEntry renders the /lastentry reply.
func FormatLastEntry(e core.Entry) string {
	return "Last entry:\n" + formatEntryLines(e)
}

// FormatRemovedEntry renders the /removelastentry reply.
func FormatRemovedEntry(e core.Entry) string {
	return "✅ Last entry removed:\n\n" + formatEntryLines(e)
}

// FormatViewEntries renders the 20 most recent entries, newest first.
func FormatViewEntries(entries []core.Entry) string {
	sorted := make([]core.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.After(sorted[j].OccurredAt)
	})
	if len(sorted) > 20 {
		sorted = sorted[:20]
	}

	var b strings.Builder
	b.WriteString("Your last 20 spends:\n\n")
	for i, e := range sorted {
		fmt.Fprintf(&b, "%d. Date: %s, Amount: %s, Category: %s, Username: %s\n\n",
			i+1, e.OccurredAt.Format(entryTimeLayout), e.Amount, e.Category, e.Username)
	}
	return b.String()
}

// FormatCategoryEntries renders the /category reply with a running total.
func FormatCategoryEntries(entries []core.Entry, category string, total decimal.Decimal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Entries for category %q:*\n\n", category)
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. Date: %s, Amount: %s, Username: %s\n",
			i+1, e.OccurredAt.Format(entryTimeLayout), e.Amount, e.Username)
	}
	fmt.Fprintf(&b, "\n*Total spent in %q: %s*", category, total)
	return b.String()
}

// FormatEntryConfirmation renders the reply to a plain expense message.
func FormatEntryConfirmation(description string, conf services.Confirmation) string {
	return fmt.Sprintf("Entry added for %s by %s!\nTotal Spent: %s\nLast Amount: %s\nRemaining Amount: %s",
		description, conf.Entry.Username, conf.TotalSpent, conf.Entry.Amount, conf.Remaining)
}

// FormatSummary renders the /summary reply with a category breakdown.
func FormatSummary(period string, r core.DateRange, total decimal.Decimal, breakdown []report.CategoryTotal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Expense Summary (%s)*\n", strings.ToUpper(period))
	// The range is half-open; the last covered day is End minus one.
	fmt.Fprintf(&b, "Period: %s to %s\n",
		r.Start.Format("2006-01-02"), r.End.AddDate(0, 0, -1).Format("2006-01-02"))
	fmt.Fprintf(&b, "Total Expense: %s\n\n", total.StringFixed(2))
	b.WriteString("*Category Breakdown:*\n")
	for _, ct := range breakdown {
		fmt.Fprintf(&b, "- %s: %s  (%s%%)\n",
			ct.Category, ct.Total.StringFixed(2), report.PercentageOf(ct.Total, total).StringFixed(2))
	}
	return b.String()
}

func budgetEmoji(remaining, budget decimal.Decimal) string {
	if remaining.LessThanOrEqual(decimal.Zero) {
		return "🚫"
	}
	if report.PercentageOf(remaining, budget).LessThan(decimal.NewFromInt(20)) {
		return "⚠️"
	}
	return "✅"
}

// FormatRemainingBudget renders the /remaining reply.
func FormatRemainingBudget(stats report.MonthStats) string {
	percentage := report.PercentageOf(stats.Remaining, stats.Budget)
	emoji := budgetEmoji(stats.Remaining, stats.Budget)

	status := "✅ You're doing great! Keep tracking your expenses."
	if stats.Remaining.LessThanOrEqual(decimal.Zero) {
		status = "⚠️ Budget exceeded! Consider reviewing your expenses."
	} else if percentage.LessThan(decimal.NewFromInt(20)) {
		status = "⚠️ Warning: You're approaching your budget limit."
	}

	return fmt.Sprintf("💰 *Budget Status - %s %d* %s\n\n"+
		"Budget: %s\n"+
		"Spent: %s\n"+
		"Remaining: %s (%s%%)\n\n"+
		"%s",
		core.MonthName(stats.Month), stats.Year, emoji,
		stats.Budget, stats.TotalSpent, stats.Remaining, percentage.StringFixed(1), status)
}

// FormatMonthOverview renders the stats message that accompanies an
// /export document.
func FormatMonthOverview(stats report.MonthStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *%s %d Overview*\n\n", core.MonthName(stats.Month), stats.Year)
	fmt.Fprintf(&b, "Total Transactions: %d\n", stats.TransactionCount)
	fmt.Fprintf(&b, "Total Spent: %s\n", stats.TotalSpent)
	fmt.Fprintf(&b, "Budget: %s\n", stats.Budget)
	fmt.Fprintf(&b, "Remaining: %s\n", stats.Remaining)

	if len(stats.CategoryBreakdown) > 0 {
		b.WriteString("\nTop Categories:\n")
		top := stats.CategoryBreakdown
		if len(top) > 5 {
			top = top[:5]
		}
		for _, ct := range top {
			fmt.Fprintf(&b, "• %s: %s (%s%%)\n",
				ct.Category, ct.Total, report.PercentageOf(ct.Total, stats.TotalSpent).StringFixed(1))
		}
	}
	return b.String()
}

// FormatMonthComparison renders the /compare reply.
func FormatMonthComparison(stats1, stats2 report.MonthStats) string {
	difference := stats2.TotalSpent.Sub(stats1.TotalSpent)
	percentChange := report.PercentageOf(difference.Abs(), stats1.TotalSpent)

	trendEmoji := "➡️"
	changeText := "no change"
	switch {
	case difference.IsPositive():
		trendEmoji, changeText = "📈", "increase"
	case difference.IsNegative():
		trendEmoji, changeText = "📉", "decrease"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Comparison: %s %d vs %s %d*\n\n",
		core.MonthName(stats1.Month), stats1.Year, core.MonthName(stats2.Month), stats2.Year)

	for _, s := range []report.MonthStats{stats1, stats2} {
		fmt.Fprintf(&b, "*%s %d:*\n", core.MonthName(s.Month), s.Year)
		fmt.Fprintf(&b, "• Total Spent: %s\n", s.TotalSpent)
		fmt.Fprintf(&b, "• Transactions: %d\n", s.TransactionCount)
		fmt.Fprintf(&b, "• Avg per transaction: %s\n\n", s.AvgTransaction.StringFixed(2))
	}

	fmt.Fprintf(&b, "*Difference:* %s\n", trendEmoji)
	fmt.Fprintf(&b, "%s (%s%% %s)", difference.Abs(), percentChange.StringFixed(1), changeText)
	return b.String()
}

// FormatSplitSummary renders the /split confirmation.
func FormatSplitSummary(s *split.Split) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Split %s for %s:\n", s.Total, s.Description)
	for _, sh := range s.Shares {
		fmt.Fprintf(&b, "• @%s: %s\n", sh.Username, sh.Amount)
	}
	return b.String()
}

// SplitMessage chunks a long message at paragraph boundaries so every
// part fits Telegram's length limit. A single paragraph longer than
// the limit is hard-split at a rune boundary.
func SplitMessage(message string) []string {
	if len(message) <= maxMessageLength {
		return []string{message}
	}

	var parts []string
	current := ""
	flush := func() {
		if current != "" {
			parts = append(parts, strings.TrimRight(current, "\n"))
			current = ""
		}
	}
	for _, para := range strings.Split(message, "\n\n") {
		for len(para) > maxMessageLength {
			flush()
			cut := maxMessageLength
			for cut > 0 && !utf8.RuneStart(para[cut]) {
				cut--
			}
			parts = append(parts, para[:cut])
			para = para[cut:]
		}
		if current != "" && len(current)+len(para)+2 > maxMessageLength {
			flush()
		}
		current += para + "\n\n"
	}
	flush()
	return parts
}
