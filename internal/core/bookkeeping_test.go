package core_test

import (
	"context"
	"errors"
	"testing"

	"invoizo/internal/core"
	"invoizo/internal/store"
)

func TestLoadDay_InjectsCashSalesEntry(t *testing.T) {
	s := store.NewMemoryStore()
	seed(t, s, store.KeySalesBills, []core.SalesBill{
		{ID: "b1", Date: "2024-07-01", PaymentType: core.PaymentCash, Total: amt("300")},
		{ID: "b2", Date: "2024-07-01", PaymentType: core.PaymentCash, Total: amt("200")},
		{ID: "b3", Date: "2024-07-01", PaymentType: core.PaymentCredit, CustCode: "001", Total: amt("900")},
		{ID: "b4", Date: "2024-07-01", PaymentType: core.PaymentCash, Total: amt("50"), Cancelled: true},
	})

	book, err := core.NewBookKeepingService(s).LoadDay(context.Background(), "2024-07-01")
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(book.Entries) != 1 {
		t.Fatalf("want only the cash-sales entry, got %d entries", len(book.Entries))
	}
	e := book.Entries[0]
	if e.AcCode != "CASH-001" || e.Narration != "Exempted Sales for the day" || e.SlNo != 1 {
		t.Errorf("unexpected cash-sales entry: %+v", e)
	}
	assertAmount(t, "credit", e.Credit, "500")
	assertAmount(t, "day credit", book.Summary.DayCredit, "500")
}

func TestLoadDay_EmptyDayHasOneBlankRow(t *testing.T) {
	book, err := core.NewBookKeepingService(store.NewMemoryStore()).LoadDay(context.Background(), "2024-07-02")
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if len(book.Entries) != 1 || book.Entries[0].AcCode != "" {
		t.Errorf("want one blank row, got %+v", book.Entries)
	}
}

func TestSaveDay_TagsRecomputesAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	seed(t, s, store.KeyCustomers, []core.Customer{{ID: "001", Name: "Ravi"}})
	seed(t, s, store.KeySuppliers, []core.Supplier{{ID: "001", Name: "Acme"}})
	seed(t, s, store.KeySalesBills, []core.SalesBill{
		{ID: "b1", Date: "2024-07-01", PaymentType: core.PaymentCash, Total: amt("500")},
	})
	bk := core.NewBookKeepingService(s)

	rows := []core.BookEntry{
		{AcCode: "CASH-001", AcHead: "Cash Account", Narration: "Exempted Sales for the day", Credit: amt("500")},
		{AcCode: "CUST-001", AcHead: "Ravi", Narration: "Payment received", Credit: amt("400")},
		{AcCode: "SUPP-001", AcHead: "Acme", Narration: "Paid supplier", Debit: amt("250")},
		{AcCode: "BANK-001", AcHead: "HDFC", Narration: "Deposit", Debit: amt("100")},
		{AcCode: "", AcHead: "", Credit: amt("5")},
		{AcCode: "RENT", AcHead: "Rent"},
	}

	first, err := bk.SaveDay(ctx, "2024-07-01", rows)
	if err != nil {
		t.Fatalf("SaveDay: %v", err)
	}
	customers := load[[]core.Customer](t, s, store.KeyCustomers)
	suppliers := load[[]core.Supplier](t, s, store.KeySuppliers)
	assertAmount(t, "customer balance", customers[0].Balance, "-400")
	assertAmount(t, "supplier balance", suppliers[0].Balance, "-250")

	entries := load[[]core.BookEntry](t, s, store.KeyBookEntries)
	if len(entries) != 4 {
		t.Fatalf("want cash-sales entry plus 3 manual entries, got %d", len(entries))
	}
	var tagged int
	for _, e := range entries {
		if e.CustCode == "001" || e.SupplierCode == "001" {
			tagged++
		}
	}
	if tagged != 2 {
		t.Errorf("want 2 party-tagged entries, got %d", tagged)
	}

	ledger := load[[]core.BookEntry](t, s, store.KeyCashLedger)
	if len(ledger) != 1 || ledger[0].AcCode != "BANK-001" {
		t.Errorf("cash ledger should hold the bank row only, got %+v", ledger)
	}

	// Saving the returned grid again changes nothing.
	second, err := bk.SaveDay(ctx, "2024-07-01", first.Entries)
	if err != nil {
		t.Fatalf("second SaveDay: %v", err)
	}
	again := load[[]core.Customer](t, s, store.KeyCustomers)
	assertAmount(t, "customer balance after resave", again[0].Balance, "-400")
	if got := load[[]core.BookEntry](t, s, store.KeyBookEntries); len(got) != 4 {
		t.Errorf("resave should keep 4 entries, got %d", len(got))
	}
	if !second.Summary.Closing.Equal(first.Summary.Closing.Decimal) {
		t.Errorf("closing changed on resave: %s vs %s", first.Summary.Closing, second.Summary.Closing)
	}
	assertAmount(t, "closing", second.Summary.Closing, "550")
}

func TestSaveDay_LeavesOtherDatesAlone(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{ID: "old", SlNo: 1, Date: "2024-06-30", AcCode: "RENT", AcHead: "Rent", Debit: amt("1000")},
	})
	book, err := core.NewBookKeepingService(s).SaveDay(ctx, "2024-07-01", []core.BookEntry{
		{AcCode: "SALARY", AcHead: "Salary", Debit: amt("300")},
	})
	if err != nil {
		t.Fatalf("SaveDay: %v", err)
	}
	entries := load[[]core.BookEntry](t, s, store.KeyBookEntries)
	if len(entries) != 2 || entries[0].ID != "old" {
		t.Fatalf("previous day's entry lost: %+v", entries)
	}
	if entries[1].ID != "entry-2024-07-01-1" {
		t.Errorf("generated id: got %q", entries[1].ID)
	}
	assertAmount(t, "opening", book.Summary.Opening, "-1000")
	assertAmount(t, "closing", book.Summary.Closing, "-1300")
}

func TestSaveDay_KeepsCustomersWithMistypedFields(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	raw := `[{"id":"001","name":"Ravi","phone":9876543210},{"id":"002","name":"Meena","phone":"98450"}]`
	if err := s.Put(ctx, store.KeyCustomers, []byte(raw)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, err := core.NewBookKeepingService(s).SaveDay(ctx, "2024-07-01", []core.BookEntry{
		{AcCode: "CASH-001", AcHead: "Cash Account", Narration: "Counter", Credit: amt("40")},
		{AcCode: "CUST-002", AcHead: "Meena", Narration: "Payment received", Credit: amt("25")},
	})
	if err != nil {
		t.Fatalf("SaveDay: %v", err)
	}

	customers := load[[]core.Customer](t, s, store.KeyCustomers)
	if len(customers) != 2 {
		t.Fatalf("want 2 customers preserved, got %+v", customers)
	}
	if customers[0].Name != "Ravi" || customers[1].Phone != "98450" {
		t.Errorf("customer details lost: %+v", customers)
	}
	assertAmount(t, "meena balance", customers[1].Balance, "-25")

	for _, key := range []string{store.KeySuppliers, store.KeyCashLedger} {
		got, _, _ := s.Get(ctx, key)
		if string(got) == "null" {
			t.Errorf("%s saved as null", key)
		}
	}
}

func TestSaveDay_RefusesToOverwriteUnreadableCustomers(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	if err := s.Put(ctx, store.KeyCustomers, []byte(`[{"id":"001",`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, err := core.NewBookKeepingService(s).SaveDay(ctx, "2024-07-01", []core.BookEntry{
		{AcCode: "CASH-001", AcHead: "Cash Account", Credit: amt("40")},
	})
	if !errors.Is(err, store.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
	if got, _, _ := s.Get(ctx, store.KeyCustomers); string(got) != `[{"id":"001",` {
		t.Errorf("customers overwritten: %s", got)
	}
	if entries := load[[]core.BookEntry](t, s, store.KeyBookEntries); len(entries) != 0 {
		t.Errorf("nothing should be committed, got %d entries", len(entries))
	}
}
