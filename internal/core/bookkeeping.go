package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

const (
	CashSalesAcCode    = "CASH-001"
	CashSalesAcHead    = "Cash Account"
	CashSalesNarration = "Exempted Sales for the day"
)

// DayBook is the book-keeping grid for one date.
type DayBook struct {
	Date      string      `json:"date"`
	CashSales Amount      `json:"cashSales"`
	Entries   []BookEntry `json:"entries"`
	Summary   DayTotals   `json:"summary"`
}

// BookKeepingService maintains the manual journal one date at a time.
type BookKeepingService interface {
	// LoadDay returns the grid for date: the cash-sales entry first when the
	// day has cash sales, then the stored entries in slNo order.
	LoadDay(ctx context.Context, date string) (*DayBook, error)

	// SaveDay replaces every entry of date with the valid rows of entries,
	// re-injects the cash-sales entry and recomputes every customer and
	// supplier balance plus the day's cash-ledger rows, all in one
	// transaction. Saving the same rows twice changes nothing.
	SaveDay(ctx context.Context, date string, entries []BookEntry) (*DayBook, error)
}

type bookKeepingService struct {
	store store.Store
}

// NewBookKeepingService constructs a BookKeepingService over the keyed store.
func NewBookKeepingService(s store.Store) BookKeepingService {
	return &bookKeepingService{store: s}
}

func (s *bookKeepingService) LoadDay(ctx context.Context, date string) (*DayBook, error) {
	if _, err := timeutil.ParseDate(date); err != nil {
		return nil, validationf("Invalid date %q", date)
	}
	var entries []BookEntry
	var bills []SalesBill
	if err := store.Load(ctx, s.store, store.KeyBookEntries, &entries); err != nil {
		return nil, err
	}
	if err := store.Load(ctx, s.store, store.KeySalesBills, &bills); err != nil {
		return nil, err
	}
	return buildDayBook(date, entries, bills), nil
}

func (s *bookKeepingService) SaveDay(ctx context.Context, date string, submitted []BookEntry) (*DayBook, error) {
	if _, err := timeutil.ParseDate(date); err != nil {
		return nil, validationf("Invalid date %q", date)
	}

	var book *DayBook
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var (
			entries   []BookEntry
			bills     []SalesBill
			customers []Customer
			suppliers []Supplier
			ledger    []BookEntry
		)
		if err := store.Load(ctx, tx, store.KeyBookEntries, &entries); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeySalesBills, &bills); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeyCustomers, &customers); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeySuppliers, &suppliers); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeyCashLedger, &ledger); err != nil {
			return err
		}

		cashSales := CashSalesForDate(bills, date)

		all := make([]BookEntry, 0, len(entries)+len(submitted)+1)
		for _, e := range entries {
			if e.Date != date {
				all = append(all, e)
			}
		}

		slNo := 1
		if cashSales.IsPositive() {
			all = append(all, cashSalesEntry(date, cashSales))
			slNo = 2
		}

		valid := make([]BookEntry, 0, len(submitted))
		for _, e := range submitted {
			e.AcCode = strings.TrimSpace(e.AcCode)
			e.AcHead = strings.TrimSpace(e.AcHead)
			if e.AcCode == "" || e.AcHead == "" {
				continue
			}
			if !e.Credit.IsPositive() && !e.Debit.IsPositive() {
				continue
			}
			if isCashSalesEntry(e) && e.Credit.Equal(cashSales.Decimal) {
				continue
			}

			e.Date = date
			e.SlNo = slNo
			if e.ID == "" || strings.HasPrefix(e.ID, "cash-sales-") {
				e.ID = fmt.Sprintf("entry-%s-%d", date, slNo)
			}
			tagEntry(&e)
			valid = append(valid, e)
			slNo++
		}
		all = append(all, valid...)
		all = sortByDate(all, func(e BookEntry) string { return e.Date })

		recomputeBalances(all, customers, suppliers)

		cash := make([]BookEntry, 0, len(ledger)+len(valid))
		for _, e := range ledger {
			if e.Date != date {
				cash = append(cash, e)
			}
		}
		for _, e := range valid {
			if strings.HasPrefix(e.AcCode, PrefixCash) || strings.HasPrefix(e.AcCode, PrefixBank) {
				cash = append(cash, e)
			}
		}
		cash = sortByDate(cash, func(e BookEntry) string { return e.Date })

		if err := store.Save(ctx, tx, store.KeyBookEntries, all); err != nil {
			return err
		}
		if err := store.Save(ctx, tx, store.KeyCustomers, customers); err != nil {
			return err
		}
		if err := store.Save(ctx, tx, store.KeySuppliers, suppliers); err != nil {
			return err
		}
		if err := store.Save(ctx, tx, store.KeyCashLedger, cash); err != nil {
			return err
		}

		book = buildDayBook(date, all, bills)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save book entries for %s: %w", date, err)
	}
	return book, nil
}

// CashSalesForDate sums the totals of the date's non-cancelled cash bills.
func CashSalesForDate(bills []SalesBill, date string) Amount {
	total := decimal.Zero
	for _, b := range bills {
		if b.Date == date && b.PaymentType == PaymentCash && !b.Cancelled {
			total = total.Add(b.Total.Decimal)
		}
	}
	return Amt(total)
}

func cashSalesEntry(date string, cashSales Amount) BookEntry {
	return BookEntry{
		ID:        "cash-sales-" + date,
		SlNo:      1,
		Date:      date,
		AcCode:    CashSalesAcCode,
		AcHead:    CashSalesAcHead,
		Narration: CashSalesNarration,
		Credit:    cashSales,
	}
}

func isCashSalesEntry(e BookEntry) bool {
	return e.Narration == CashSalesNarration && e.AcCode == CashSalesAcCode
}

func isExemptedNarration(narration string) bool {
	return strings.Contains(narration, "Exempted Sales")
}

// tagEntry sets the party tag implied by the account code. Customer entries
// are tagged only when they record a receipt.
func tagEntry(e *BookEntry) {
	e.CustCode, e.SupplierCode = "", ""
	switch {
	case strings.HasPrefix(e.AcCode, PrefixCustomer) && e.Credit.IsPositive() && !isExemptedNarration(e.Narration):
		e.CustCode = strings.TrimPrefix(e.AcCode, PrefixCustomer)
	case strings.HasPrefix(e.AcCode, PrefixSupplier):
		e.SupplierCode = strings.TrimPrefix(e.AcCode, PrefixSupplier)
	}
}

// recomputeBalances overwrites every party balance from the full entry list.
func recomputeBalances(entries []BookEntry, customers []Customer, suppliers []Supplier) {
	for i := range customers {
		id := customers[i].ID
		bal := decimal.Zero
		for _, e := range entries {
			if e.CustCode != id && e.AcCode != PrefixCustomer+id {
				continue
			}
			if !e.Credit.IsPositive() || isExemptedNarration(e.Narration) {
				continue
			}
			bal = bal.Add(e.Debit.Decimal).Sub(e.Credit.Decimal)
		}
		customers[i].Balance = Amt(bal)
	}
	for i := range suppliers {
		id := suppliers[i].ID
		bal := decimal.Zero
		for _, e := range entries {
			if e.SupplierCode != id && e.AcCode != PrefixSupplier+id {
				continue
			}
			bal = bal.Add(e.Credit.Decimal).Sub(e.Debit.Decimal)
		}
		suppliers[i].Balance = Amt(bal)
	}
}

func buildDayBook(date string, entries []BookEntry, bills []SalesBill) *DayBook {
	cashSales := CashSalesForDate(bills, date)

	var day, others []BookEntry
	for _, e := range entries {
		switch {
		case e.Date != date:
			others = append(others, e)
		case !isCashSalesEntry(e):
			day = append(day, e)
		}
	}
	sort.SliceStable(day, func(i, j int) bool { return day[i].SlNo < day[j].SlNo })

	grid := make([]BookEntry, 0, len(day)+1)
	if cashSales.IsPositive() {
		grid = append(grid, cashSalesEntry(date, cashSales))
	}
	for _, e := range day {
		e.SlNo = len(grid) + 1
		grid = append(grid, e)
	}
	summary := DaySummary(append(others, grid...), date)

	if len(grid) == 0 {
		grid = append(grid, BookEntry{SlNo: 1, Date: date})
	}
	return &DayBook{Date: date, CashSales: cashSales, Entries: grid, Summary: summary}
}
