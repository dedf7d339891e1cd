package core

import (
	"strconv"
	"strings"
	"time"
)

// DateRange is a half-open interval [Start, End) over entry occurrence
// times. Every resolver below produces half-open ranges, including
// MonthRange: the upstream bot mixed an inclusive month boundary in with
// half-open everything else, and that asymmetry was a bug, not a contract.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// DailyRange is [today 00:00, tomorrow 00:00) in now's location.
func DailyRange(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return DateRange{Start: start, End: start.AddDate(0, 0, 1)}
}

// WeeklyRange is the Monday-anchored week containing now. Weeks run
// Monday through Sunday regardless of which weekday now falls on.
func WeeklyRange(now time.Time) DateRange {
	offset := int(now.Weekday()) - 1
	if now.Weekday() == time.Sunday {
		offset = 6
	}
	start := time.Date(now.Year(), now.Month(), now.Day()-offset, 0, 0, 0, 0, now.Location())
	return DateRange{Start: start, End: start.AddDate(0, 0, 7)}
}

// MonthlyRange is [first of current month, first of next month).
func MonthlyRange(now time.Time) DateRange {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// MonthRange is the half-open range covering the given calendar month.
func MonthRange(year int, month time.Month) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return DateRange{Start: start, End: start.AddDate(0, 1, 0)}
}

// CustomRange parses two YYYY-MM-DD tokens. The end boundary stays
// exclusive but is pushed one day forward, so the literal end date is
// fully included. Returns ErrInvalidDateFormat when either token does
// not name a valid calendar date.
func CustomRange(startToken, endToken string) (DateRange, error) {
	start, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(startToken), time.Local)
	if err != nil {
		return DateRange{}, ErrInvalidDateFormat
	}
	end, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(endToken), time.Local)
	if err != nil {
		return DateRange{}, ErrInvalidDateFormat
	}
	return DateRange{Start: start, End: end.AddDate(0, 0, 1)}, nil
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ParseMonth resolves a month token against now's year. Accepted forms:
// full English names, 3-letter abbreviations ("sept" included) and the
// numbers 1-12, all case-insensitive. An empty token means the current
// month. Anything else fails with ErrInvalidMonthFormat; there is no
// explicit year input.
func ParseMonth(token string, now time.Time) (time.Month, int, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return now.Month(), now.Year(), nil
	}
	if m, ok := monthNames[token]; ok {
		return m, now.Year(), nil
	}
	if n, err := strconv.Atoi(token); err == nil && n >= 1 && n <= 12 {
		return time.Month(n), now.Year(), nil
	}
	return 0, 0, ErrInvalidMonthFormat
}

// MonthName returns the full English name for a month, or "" outside
// January..December. Callers should only pass validated months.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return m.String()
}
