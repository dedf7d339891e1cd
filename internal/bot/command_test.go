package bot

import (
	"testing"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantKind Kind
		wantRest string
	}{
		{"start", "/start", KindStart, ""},
		{"instructions", "/instructions", KindInstructions, ""},
		{"setbudget with amount", "/setbudget 7000", KindSetBudget, "7000"},
		{"export with month", "/export Nov", KindExport, "Nov"},
		{"export bare", "/export", KindExport, ""},
		{"compare", "/compare Oct Nov", KindCompare, "Oct Nov"},
		{"category multiword", "/category Dining Out", KindCategory, "Dining Out"},
		{"summary custom", "/summary custom 2023-07-01 2023-07-31", KindSummary, "custom 2023-07-01 2023-07-31"},
		{"split", "/split 100 Dinner @alice:50 @bob:50", KindSplit, "100 Dinner @alice:50 @bob:50"},
		{"group-addressed command", "/start@expense_bot", KindStart, ""},
		{"case-insensitive command", "/SetBudget 100", KindSetBudget, "100"},
		{"unknown command", "/frobnicate", KindUnknown, ""},
		{"plain entry", "100 Grocery", KindEntry, "100 Grocery"},
		{"empty", "", KindUnknown, ""},
		{"whitespace only", "   ", KindUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseMessage(tt.text)
			if cmd.Kind != tt.wantKind {
				t.Errorf("ParseMessage(%q) kind = %v, want %v", tt.text, cmd.Kind, tt.wantKind)
			}
			if cmd.Rest != tt.wantRest {
				t.Errorf("ParseMessage(%q) rest = %q, want %q", tt.text, cmd.Rest, tt.wantRest)
			}
		})
	}
}

func TestParseEntry(t *testing.T) {
	amount, desc, err := ParseEntry("100 Grocery shopping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount.String() != "100" {
		t.Errorf("amount = %s, want 100", amount)
	}
	if desc != "Grocery shopping" {
		t.Errorf("description = %q", desc)
	}

	if _, _, err := ParseEntry("Grocery"); err == nil {
		t.Error("expected error for message without amount")
	}
	if _, _, err := ParseEntry("abc Grocery"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
	if _, _, err := ParseEntry("100"); err == nil {
		t.Error("expected error for amount without description")
	}
}
