package core

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestDailyRange(t *testing.T) {
	now := time.Date(2025, time.March, 14, 15, 30, 0, 0, time.Local)
	r := DailyRange(now)
	if !r.Start.Equal(date(2025, time.March, 14)) {
		t.Fatalf("start = %v", r.Start)
	}
	if !r.End.Equal(date(2025, time.March, 15)) {
		t.Fatalf("end = %v", r.End)
	}
}

func TestWeeklyRange(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		start time.Time
	}{
		{"wednesday anchors to preceding monday", date(2025, time.March, 12), date(2025, time.March, 10)},
		{"monday anchors to itself", date(2025, time.March, 10), date(2025, time.March, 10)},
		{"sunday belongs to the week started six days earlier", date(2025, time.March, 16), date(2025, time.March, 10)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := WeeklyRange(tc.now)
			if !r.Start.Equal(tc.start) {
				t.Fatalf("start = %v, want %v", r.Start, tc.start)
			}
			if !r.End.Equal(tc.start.AddDate(0, 0, 7)) {
				t.Fatalf("end = %v", r.End)
			}
			if !r.Contains(tc.start) {
				t.Fatal("range should include its monday")
			}
			if r.Contains(tc.start.AddDate(0, 0, 7)) {
				t.Fatal("range should exclude the following monday")
			}
		})
	}
}

func TestMonthlyRange(t *testing.T) {
	r := MonthlyRange(date(2025, time.January, 20))
	if !r.Start.Equal(date(2025, time.January, 1)) || !r.End.Equal(date(2025, time.February, 1)) {
		t.Fatalf("unexpected range %v..%v", r.Start, r.End)
	}
}

func TestMonthRangeYearRollover(t *testing.T) {
	r := MonthRange(2024, time.December)
	if !r.End.Equal(date(2025, time.January, 1)) {
		t.Fatalf("end = %v", r.End)
	}
}

func TestCustomRange(t *testing.T) {
	r, err := CustomRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lateOnEndDate := time.Date(2024, time.January, 31, 23, 0, 0, 0, time.Local)
	if !r.Contains(lateOnEndDate) {
		t.Fatal("literal end date should be included")
	}
	if r.Contains(date(2024, time.February, 1)) {
		t.Fatal("day after end date should be excluded")
	}

	for _, in := range [][2]string{{"2024-13-01", "2024-01-31"}, {"foo", "2024-01-31"}, {"2024-01-01", "31/01/2024"}} {
		if _, err := CustomRange(in[0], in[1]); !errors.Is(err, ErrInvalidDateFormat) {
			t.Fatalf("%v: expected ErrInvalidDateFormat, got %v", in, err)
		}
	}
}

func TestParseMonth(t *testing.T) {
	now := date(2025, time.June, 15)

	cases := []struct {
		in    string
		month time.Month
	}{
		{"Nov", time.November},
		{"november", time.November},
		{"NOVEMBER", time.November},
		{"11", time.November},
		{"sept", time.September},
		{"sep", time.September},
		{"1", time.January},
		{"12", time.December},
		{"", time.June}, // empty token means current month
	}
	for _, tc := range cases {
		m, y, err := ParseMonth(tc.in, now)
		if err != nil {
			t.Fatalf("ParseMonth(%q): %v", tc.in, err)
		}
		if m != tc.month || y != 2025 {
			t.Fatalf("ParseMonth(%q) = %v %d", tc.in, m, y)
		}
	}

	for _, in := range []string{"13", "0", "-1", "foo", "1.5"} {
		if _, _, err := ParseMonth(in, now); !errors.Is(err, ErrInvalidMonthFormat) {
			t.Fatalf("ParseMonth(%q): expected ErrInvalidMonthFormat, got %v", in, err)
		}
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName(time.November); got != "November" {
		t.Fatalf("got %q", got)
	}
	if got := MonthName(time.Month(13)); got != "" {
		t.Fatalf("expected empty name, got %q", got)
	}
}
