package bot

import (
	"strings"

	"github.com/shopspring/decimal"

	"expensebot/internal/core"
)

// Kind identifies the command a message maps to.
type Kind int

const (
	KindUnknown Kind = iota
	KindStart
	KindInstructions
	KindLastEntry
	KindView
	KindRemoveLastEntry
	KindSetBudget
	KindRemaining
	KindExport
	KindCompare
	KindCategory
	KindSummary
	KindSplit
	// KindEntry is a plain "100 Grocery" message, no leading slash.
	KindEntry
)

// Command is the parsed form of an incoming message.
type Command struct {
	Kind Kind
	// Args holds whitespace-split tokens after the command name.
	Args []string
	// Rest is the raw text after the command name, untrimmed of
	// interior whitespace. Split parsing needs the original string.
	Rest string
}

var commandKinds = map[string]Kind{
	"start":           KindStart,
	"instructions":    KindInstructions,
	"lastentry":       KindLastEntry,
	"view":            KindView,
	"removelastentry": KindRemoveLastEntry,
	"setbudget":       KindSetBudget,
	"remaining":       KindRemaining,
	"export":          KindExport,
	"compare":         KindCompare,
	"category":        KindCategory,
	"summary":         KindSummary,
	"split":           KindSplit,
}

// ParseMessage classifies a message's text. Slash messages map to a
// command kind or KindUnknown; anything else is a plain entry.
func ParseMessage(text string) Command {
	text = strings.TrimSpace(text)
	if text == "" {
		return Command{Kind: KindUnknown}
	}

	if !strings.HasPrefix(text, "/") {
		return Command{Kind: KindEntry, Rest: text, Args: strings.Fields(text)}
	}

	name := text[1:]
	rest := ""
	if i := strings.IndexAny(name, " \t\n"); i >= 0 {
		rest = strings.TrimSpace(name[i+1:])
		name = name[:i]
	}
	// Group chats address commands as /cmd@botname.
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}

	kind, ok := commandKinds[strings.ToLower(name)]
	if !ok {
		return Command{Kind: KindUnknown, Rest: rest}
	}
	return Command{Kind: kind, Rest: rest, Args: strings.Fields(rest)}
}

// ParseEntry splits a plain expense message into amount and
// description, e.g. "100 Grocery shopping".
func ParseEntry(text string) (decimal.Decimal, string, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) < 2 {
		return decimal.Decimal{}, "", core.ErrInvalidAmount
	}
	amount, err := core.ParseAmount(fields[0])
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	return amount, strings.Join(fields[1:], " "), nil
}
