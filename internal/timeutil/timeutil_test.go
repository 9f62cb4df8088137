package timeutil_test

import (
	"testing"
	"time"

	"invoizo/internal/timeutil"
)

func TestPresetPeriod(t *testing.T) {
	now := time.Date(2024, time.February, 15, 10, 0, 0, 0, timeutil.IST)

	tests := []struct {
		preset string
		want   timeutil.Period
	}{
		{timeutil.PresetThisMonth, timeutil.Period{From: "2024-02-01", To: "2024-02-29"}},
		{timeutil.PresetLastMonth, timeutil.Period{From: "2024-01-01", To: "2024-01-31"}},
		{timeutil.PresetThisFinancialYear, timeutil.Period{From: "2023-04-01", To: "2024-03-31"}},
		{timeutil.PresetLastFinancialYear, timeutil.Period{From: "2022-04-01", To: "2023-03-31"}},
		{"", timeutil.Period{From: "2023-04-01", To: "2024-03-31"}},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			got := timeutil.PresetPeriod(tt.preset, now)
			if got != tt.want {
				t.Errorf("PresetPeriod(%q) = %+v, want %+v", tt.preset, got, tt.want)
			}
		})
	}
}

func TestFinancialYear_AprilBoundary(t *testing.T) {
	april := time.Date(2024, time.April, 1, 0, 0, 0, 0, timeutil.IST)
	if got := timeutil.FinancialYear(april).From; got != "2024-04-01" {
		t.Errorf("April 1 should start a new year, got from=%s", got)
	}
	march := time.Date(2024, time.March, 31, 23, 0, 0, 0, timeutil.IST)
	if got := timeutil.FinancialYear(march).To; got != "2024-03-31" {
		t.Errorf("March 31 should close the year, got to=%s", got)
	}
}

func TestParseDate(t *testing.T) {
	d, err := timeutil.ParseDate("2024-05-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if timeutil.FormatDate(d) != "2024-05-10" {
		t.Errorf("round trip mismatch: %s", timeutil.FormatDate(d))
	}

	ts, err := timeutil.ParseDate("2024-05-10T20:00:00Z")
	if err != nil {
		t.Fatalf("ParseDate RFC3339: %v", err)
	}
	// 20:00 UTC is 01:30 the next day in IST.
	if timeutil.FormatDate(ts) != "2024-05-11" {
		t.Errorf("expected IST date 2024-05-11, got %s", timeutil.FormatDate(ts))
	}

	if _, err := timeutil.ParseDate("10/05/2024"); err == nil {
		t.Error("expected error for non-ISO date")
	}
}

func TestPeriod_ContainsAndShift(t *testing.T) {
	p := timeutil.Period{From: "2024-03-01", To: "2024-03-31"}
	if !p.Contains("2024-03-31") || p.Contains("2024-04-01") {
		t.Error("Contains should be inclusive of both bounds only")
	}
	if !(timeutil.Period{}).Contains("1999-01-01") {
		t.Error("empty period should contain everything")
	}
	upTo := timeutil.Period{To: "2024-03-31"}
	if upTo.Contains("") || upTo.Contains("someday") {
		t.Error("a bounded period should not contain undated values")
	}
	if !upTo.Contains("2024-03-31T10:00:00Z") {
		t.Error("timestamps should compare by their IST date")
	}
	shifted := p.ShiftMonths(-1)
	if shifted.From != "2024-02-01" || shifted.To != "2024-02-29" {
		t.Errorf("shifted: got %+v, want 2024-02-01..2024-02-29", shifted)
	}
}
