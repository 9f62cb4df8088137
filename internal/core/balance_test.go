package core_test

import (
	"testing"

	"invoizo/internal/core"
)

func TestRunningBalance_StableOrder(t *testing.T) {
	records := []core.LedgerRecord{
		{Date: "2024-03-02", Narration: "second day", Debit: amt("50")},
		{Date: "not a date", Narration: "undated", Debit: amt("1")},
		{Date: "2024-03-01", Narration: "first A", Debit: amt("100")},
		{Date: "2024-03-01", Narration: "first B", Credit: amt("30")},
	}
	lines := core.RunningBalance(core.AccountCustomer, records)

	wantOrder := []string{"first A", "first B", "second day", "undated"}
	wantBal := []string{"100", "70", "120", "121"}
	if len(lines) != len(wantOrder) {
		t.Fatalf("want %d lines, got %d", len(wantOrder), len(lines))
	}
	for i, l := range lines {
		if l.Narration != wantOrder[i] {
			t.Errorf("line %d: want %q, got %q", i, wantOrder[i], l.Narration)
		}
		assertAmount(t, l.Narration, l.Balance, wantBal[i])
	}
}

func TestRunningBalance_SignConventions(t *testing.T) {
	records := []core.LedgerRecord{
		{Date: "2024-01-01", Credit: amt("1000")},
		{Date: "2024-01-10", Debit: amt("250")},
	}
	tests := []struct {
		kind core.AccountKind
		want string
	}{
		{core.AccountSupplier, "750"},
		{core.AccountCustomer, "-750"},
		{core.AccountCash, "-750"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			lines := core.RunningBalance(tt.kind, records)
			assertAmount(t, "final", lines[len(lines)-1].Balance, tt.want)
		})
	}
}

// Customer balance equals credit sales minus receipts, whatever the
// interleaving of dates.
func TestRunningBalance_CustomerProperty(t *testing.T) {
	records := []core.LedgerRecord{
		{Date: "2024-05-09", Credit: amt("120")},
		{Date: "2024-05-01", Debit: amt("1000")},
		{Date: "2024-05-03", Credit: amt("400.25")},
		{Date: "2024-05-07", Debit: amt("80.75")},
		{Date: "2024-05-07", Credit: amt("10")},
	}
	lines := core.RunningBalance(core.AccountCustomer, records)
	// (1000 + 80.75) - (120 + 400.25 + 10)
	assertAmount(t, "final", lines[len(lines)-1].Balance, "550.5")
}

func TestAccountKindForCode(t *testing.T) {
	customers := []core.Customer{{ID: "001", Name: "Ravi"}}
	suppliers := []core.Supplier{{ID: "001", Name: "Acme"}, {ID: "S9", Name: "Bolt"}}

	tests := []struct {
		code   string
		kind   core.AccountKind
		id     string
		wantOK bool
	}{
		{"CUST-001", core.AccountCustomer, "001", true},
		{"SUPP-001", core.AccountSupplier, "001", true},
		{"CASH-001", core.AccountCash, "CASH-001", true},
		{"BANK-HDFC", core.AccountBank, "BANK-HDFC", true},
		{"001", core.AccountSupplier, "001", true},
		{"S9", core.AccountSupplier, "S9", true},
		{"cash-petty", core.AccountCash, "cash-petty", true},
		{"Bank2", core.AccountBank, "Bank2", true},
		{"RENT", "", "RENT", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			kind, id, ok := core.AccountKindForCode(tt.code, customers, suppliers)
			if kind != tt.kind || id != tt.id || ok != tt.wantOK {
				t.Errorf("got (%q, %q, %v), want (%q, %q, %v)", kind, id, ok, tt.kind, tt.id, tt.wantOK)
			}
		})
	}
}

func TestDaySummaryAndCashBook(t *testing.T) {
	entries := []core.BookEntry{
		{Date: "2024-04-01", Credit: amt("500")},
		{Date: "2024-04-01", Debit: amt("200")},
		{Date: "2024-04-02", Credit: amt("100")},
		{Date: "2024-04-03", Debit: amt("700")},
	}

	sum := core.DaySummary(entries, "2024-04-02")
	assertAmount(t, "opening", sum.Opening, "300")
	assertAmount(t, "day credit", sum.DayCredit, "100")
	assertAmount(t, "closing", sum.Closing, "400")

	days := core.DailyCashBook(entries, "2024-04-02", "")
	if len(days) != 2 {
		t.Fatalf("want 2 days, got %d", len(days))
	}
	assertAmount(t, "day 2 opening", days[0].Opening, "300")
	assertAmount(t, "day 3 opening", days[1].Opening, "400")
	assertAmount(t, "day 3 closing", days[1].Closing, "-300")
}

func TestDaySummaryAndCashBook_IgnoreUndatedEntries(t *testing.T) {
	entries := []core.BookEntry{
		{Date: "2024-04-01", Credit: amt("500")},
		{Date: "", Credit: amt("7")},
		{Date: "not a date", Debit: amt("9")},
		{Date: "2024-04-02", Credit: amt("100")},
	}

	sum := core.DaySummary(entries, "2024-04-02")
	assertAmount(t, "opening", sum.Opening, "500")
	assertAmount(t, "closing", sum.Closing, "600")

	tests := []struct {
		name         string
		from, to     string
		wantDays     int
		firstOpening string
	}{
		{"from bound", "2024-04-02", "", 1, "500"},
		{"to bound", "", "2024-04-02", 2, "0"},
		{"open range", "", "", 2, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := core.DailyCashBook(entries, tt.from, tt.to)
			if len(days) != tt.wantDays {
				t.Fatalf("want %d days, got %+v", tt.wantDays, days)
			}
			assertAmount(t, "first opening", days[0].Opening, tt.firstOpening)
			assertAmount(t, "last closing", days[len(days)-1].Closing, "600")
		})
	}
}
