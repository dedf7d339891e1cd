package mongo

import "testing"

func TestCategoryFilter(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"Grocery", "^Grocery$"},
		{"C++ books", `^C\+\+ books$`},
		{"a.b*c", `^a\.b\*c$`},
		{"(misc)", `^\(misc\)$`},
	}
	for _, tt := range tests {
		got := categoryFilter(tt.category)
		if got.Pattern != tt.want {
			t.Errorf("categoryFilter(%q).Pattern = %q, want %q", tt.category, got.Pattern, tt.want)
		}
		if got.Options != "i" {
			t.Errorf("categoryFilter(%q).Options = %q, want i", tt.category, got.Options)
		}
	}
}
