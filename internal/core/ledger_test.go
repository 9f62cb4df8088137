package core_test

import (
	"context"
	"errors"
	"testing"

	"invoizo/internal/core"
	"invoizo/internal/store"
)

func TestAccountStatement_CustomerCreditSaleAndPayment(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	seed(t, s, store.KeyCustomers, []core.Customer{{ID: "C001", Name: "Ravi"}})
	seed(t, s, store.KeySalesBills, []core.SalesBill{
		{ID: "b1", InvoiceNo: "001", Date: "2024-01-01", PaymentType: core.PaymentCredit, CustCode: "C001", Total: amt("1000")},
		{ID: "b2", InvoiceNo: "002", Date: "2024-01-02", PaymentType: core.PaymentCash, CustCode: "C001", Total: amt("70")},
	})
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{Date: "2024-01-05", AcCode: "CUST-C001", Narration: "Part payment", Credit: amt("400"), CustCode: "C001"},
	})

	st, err := core.NewLedgerService(s).AccountStatement(ctx, "C001", "", "")
	if err != nil {
		t.Fatalf("AccountStatement: %v", err)
	}
	if st.Kind != core.AccountCustomer || st.Name != "Ravi" {
		t.Errorf("resolved %s %q", st.Kind, st.Name)
	}
	if len(st.Lines) != 2 {
		t.Fatalf("want bill and payment lines, got %d", len(st.Lines))
	}
	assertAmount(t, "after bill", st.Lines[0].Balance, "1000")
	assertAmount(t, "closing", st.ClosingBalance, "600")
	if st.Side != "Dr" {
		t.Errorf("side: want Dr, got %s", st.Side)
	}
}

func TestAccountStatement_RangeCarriesOpeningBalance(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	seed(t, s, store.KeySuppliers, []core.Supplier{{ID: "S01", Name: "Acme"}})
	seed(t, s, store.KeyPurchaseBills, []core.PurchaseBill{
		{ID: "p1", InvoiceNo: "001", Date: "2024-02-01", SupplierCode: "S01", Total: amt("800")},
		{ID: "p2", InvoiceNo: "002", Date: "2024-03-01", SupplierCode: "S01", Total: amt("200")},
	})
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{Date: "2024-02-10", AcCode: "SUPP-S01", Debit: amt("300"), SupplierCode: "S01"},
	})

	st, err := core.NewLedgerService(s).AccountStatement(ctx, "SUPP-S01", "2024-03-01", "2024-03-31")
	if err != nil {
		t.Fatalf("AccountStatement: %v", err)
	}
	assertAmount(t, "opening", st.OpeningBalance, "500")
	assertAmount(t, "closing", st.ClosingBalance, "700")
	if len(st.Lines) != 1 || st.Side != "Cr" {
		t.Errorf("want one line closing Cr, got %d lines side %s", len(st.Lines), st.Side)
	}
}

func TestAccountStatement_UndatedEntryStaysOutOfOpening(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{Date: "2024-01-05", AcCode: "CASH-001", Debit: amt("100")},
		{Date: "2024-02-05", AcCode: "CASH-001", Debit: amt("50")},
		{Date: "", AcCode: "CASH-001", Debit: amt("7")},
	})

	st, err := core.NewLedgerService(s).AccountStatement(context.Background(), "CASH-001", "2024-02-01", "2024-02-29")
	if err != nil {
		t.Fatalf("AccountStatement: %v", err)
	}
	assertAmount(t, "opening", st.OpeningBalance, "100")
	assertAmount(t, "closing", st.ClosingBalance, "150")
	if len(st.Lines) != 1 || st.Lines[0].Date != "2024-02-05" {
		t.Errorf("want only the February line, got %+v", st.Lines)
	}
}

func TestAccountStatement_UnknownAccount(t *testing.T) {
	_, err := core.NewLedgerService(store.NewMemoryStore()).AccountStatement(context.Background(), "NOPE", "", "")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("want ErrNotFound, got %v", err)
	}
}

func TestLedgerBalances_GroupsAndSearch(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	seed(t, s, store.KeyCustomers, []core.Customer{{ID: "001", Name: "Ravi"}, {ID: "002", Name: "Idle"}})
	seed(t, s, store.KeySuppliers, []core.Supplier{{ID: "001", Name: "Acme"}})
	seed(t, s, store.KeySalesBills, []core.SalesBill{
		{Date: "2024-05-01", PaymentType: core.PaymentCredit, CustCode: "001", Total: amt("1000")},
	})
	seed(t, s, store.KeyPurchaseBills, []core.PurchaseBill{
		{Date: "2024-05-02", SupplierCode: "001", Total: amt("600")},
	})
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{Date: "2024-05-03", AcCode: "CASH-001", AcHead: "Cash", Credit: amt("500")},
		{Date: "2024-05-04", AcCode: "cash-001", AcHead: "Cash", Debit: amt("50")},
		{Date: "2024-05-04", AcCode: "BANK-001", AcHead: "HDFC", Debit: amt("200")},
		{Date: "2024-05-05", AcCode: "CUST-001", Credit: amt("300"), CustCode: "001"},
	})

	report, err := core.NewLedgerService(s).LedgerBalances(ctx, core.LedgerBalanceQuery{From: "2024-05-01", To: "2024-05-31"})
	if err != nil {
		t.Fatalf("LedgerBalances: %v", err)
	}
	byCode := map[string]core.LedgerBalanceRow{}
	for _, r := range report.Accounts {
		byCode[string(r.Kind)+":"+r.Code] = r
	}
	if len(report.Accounts) != 5 {
		t.Fatalf("want 5 rows (customer, supplier, 3 cash/bank codes), got %d: %+v", len(report.Accounts), report.Accounts)
	}
	assertAmount(t, "customer", byCode["customer:001"].Balance, "700")
	assertAmount(t, "supplier", byCode["supplier:001"].Balance, "600")
	if byCode["supplier:001"].Side != "Cr" {
		t.Errorf("supplier side: got %s", byCode["supplier:001"].Side)
	}
	assertAmount(t, "cash", byCode["cash:CASH-001"].Balance, "-500")
	assertAmount(t, "bank", byCode["bank:BANK-001"].Balance, "200")

	filtered, err := core.NewLedgerService(s).LedgerBalances(ctx, core.LedgerBalanceQuery{From: "2024-05-01", To: "2024-05-31", Search: "hdfc"})
	if err != nil {
		t.Fatalf("LedgerBalances search: %v", err)
	}
	if len(filtered.Accounts) != 1 || filtered.Accounts[0].Code != "BANK-001" {
		t.Errorf("search should keep only HDFC, got %+v", filtered.Accounts)
	}
}

func TestLedgerBalances_PresetPeriod(t *testing.T) {
	s := store.NewMemoryStore()
	report, err := core.NewLedgerService(s).LedgerBalances(context.Background(), core.LedgerBalanceQuery{Preset: "thisFinancialYear"})
	if err != nil {
		t.Fatalf("LedgerBalances: %v", err)
	}
	fy := report.Period
	if fy.From[5:] != "04-01" || fy.To[5:] != "03-31" {
		t.Errorf("want an April-March period, got %+v", fy)
	}
	if report.Accounts == nil || len(report.Accounts) != 0 {
		t.Errorf("want empty non-nil accounts, got %#v", report.Accounts)
	}
}

func TestCashLedger_DebitBalanceOnly(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{Date: "2024-05-01", Credit: amt("100")},
		{Date: "2024-05-02", Debit: amt("250")},
		{Date: "2024-05-03", Credit: amt("400")},
	})
	ledger := core.NewLedgerService(s)

	all, err := ledger.CashLedger(context.Background(), "", "", false)
	if err != nil {
		t.Fatalf("CashLedger: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("want 3 days, got %d", len(all))
	}
	neg, err := ledger.CashLedger(context.Background(), "", "", true)
	if err != nil {
		t.Fatalf("CashLedger debitOnly: %v", err)
	}
	if len(neg) != 1 || neg[0].Date != "2024-05-02" {
		t.Errorf("want only 2024-05-02, got %+v", neg)
	}
}

func TestCustomerAndSupplierLedger(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, store.KeyCustomers, []core.Customer{{ID: "001", Name: "Ravi"}})
	seed(t, s, store.KeySuppliers, []core.Supplier{{ID: "001", Name: "Acme"}})
	seed(t, s, store.KeySalesBills, []core.SalesBill{
		{Date: "2024-05-01", PaymentType: core.PaymentCredit, CustCode: "001", Total: amt("1000")},
		{Date: "2024-05-01", PaymentType: core.PaymentCredit, CustCode: "001", Total: amt("99"), Cancelled: true},
	})
	seed(t, s, store.KeyPurchaseBills, []core.PurchaseBill{{Date: "2024-05-01", SupplierCode: "001", Total: amt("300")}})
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{Date: "2024-05-09", Credit: amt("250"), CustCode: "001"},
		{Date: "2024-05-09", Debit: amt("300"), SupplierCode: "001"},
	})
	ledger := core.NewLedgerService(s)
	ctx := context.Background()

	cust, err := ledger.CustomerLedger(ctx, "", "")
	if err != nil {
		t.Fatalf("CustomerLedger: %v", err)
	}
	assertAmount(t, "customer billed", cust[0].Billed, "1000")
	assertAmount(t, "customer balance", cust[0].Balance, "750")

	sup, err := ledger.SupplierLedger(ctx, "", "")
	if err != nil {
		t.Fatalf("SupplierLedger: %v", err)
	}
	assertAmount(t, "supplier balance", sup[0].Balance, "0")

}
