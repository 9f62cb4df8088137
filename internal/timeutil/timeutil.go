package timeutil

import (
	"fmt"
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30). Bill and entry dates are
// calendar dates in this zone.
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

const (
	DateLayout    = "2006-01-02"
	DisplayLayout = "02 Jan 2006"
)

// Now returns the current time in IST.
func Now() time.Time {
	return time.Now().In(IST)
}

// Today returns the current IST calendar date as YYYY-MM-DD.
func Today() string {
	return Now().Format(DateLayout)
}

// FormatDate formats t as YYYY-MM-DD in IST.
func FormatDate(t time.Time) string {
	return t.In(IST).Format(DateLayout)
}

// ParseDate parses YYYY-MM-DD as midnight IST. Full RFC3339 timestamps are
// accepted too and truncated to their IST date.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, IST); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return StartOfDay(t), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
}

// StartOfDay returns 00:00 IST of t's IST date.
func StartOfDay(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), 0, 0, 0, 0, IST)
}

// DaysBetween returns the number of whole days from a to b (floored).
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// ── Periods ──────────────────────────────────────────────────────────────────

// Period is an inclusive date range in YYYY-MM-DD form.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Contains reports whether date falls inside the period. An empty bound is
// open. A bounded period never contains a date that does not parse.
func (p Period) Contains(date string) bool {
	if p.From == "" && p.To == "" {
		return true
	}
	d, err := ParseDate(date)
	if err != nil {
		return false
	}
	if from, err := ParseDate(p.From); err == nil && d.Before(from) {
		return false
	}
	if to, err := ParseDate(p.To); err == nil && d.After(to) {
		return false
	}
	return true
}

const (
	PresetThisMonth         = "thisMonth"
	PresetLastMonth         = "lastMonth"
	PresetThisFinancialYear = "thisFinancialYear"
	PresetLastFinancialYear = "lastFinancialYear"
)

// FinancialYear returns the April to March year containing t.
func FinancialYear(t time.Time) Period {
	t = t.In(IST)
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return Period{
		From: fmt.Sprintf("%d-04-01", start),
		To:   fmt.Sprintf("%d-03-31", start+1),
	}
}

// PresetPeriod resolves a named preset relative to now. Unknown presets fall
// back to the current financial year.
func PresetPeriod(preset string, now time.Time) Period {
	now = now.In(IST)
	switch preset {
	case PresetThisMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, IST)
		return Period{From: FormatDate(start), To: FormatDate(start.AddDate(0, 1, -1))}
	case PresetLastMonth:
		start := time.Date(now.Year(), now.Month()-1, 1, 0, 0, 0, 0, IST)
		return Period{From: FormatDate(start), To: FormatDate(start.AddDate(0, 1, -1))}
	case PresetLastFinancialYear:
		return FinancialYear(now.AddDate(-1, 0, 0))
	default:
		return FinancialYear(now)
	}
}

// ShiftMonths moves both bounds of p by n months. Days past the end of the
// target month clamp to its last day, so 31 Jul shifted back is 30 Jun.
func (p Period) ShiftMonths(n int) Period {
	shift := func(s string) string {
		if s == "" {
			return ""
		}
		t, err := ParseDate(s)
		if err != nil {
			return s
		}
		first := time.Date(t.Year(), t.Month()+time.Month(n), 1, 0, 0, 0, 0, IST)
		last := first.AddDate(0, 1, -1).Day()
		day := t.Day()
		if day > last {
			day = last
		}
		return FormatDate(time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, IST))
	}
	return Period{From: shift(p.From), To: shift(p.To)}
}
