package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

// ── Types ─────────────────────────────────────────────────────────────────────

// AccountStatement is the dated movement of one account with its running
// balance. Balance follows the account's sign convention (see RunningBalance);
// Side reads it as Dr or Cr.
type AccountStatement struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Kind           AccountKind     `json:"kind"`
	From           string          `json:"from,omitempty"`
	To             string          `json:"to,omitempty"`
	OpeningBalance Amount          `json:"openingBalance"`
	Lines          []StatementLine `json:"lines"`
	TotalDebit     Amount          `json:"totalDebit"`
	TotalCredit    Amount          `json:"totalCredit"`
	ClosingBalance Amount          `json:"closingBalance"`
	Side           string          `json:"side"`
}

type LedgerBalanceRow struct {
	Code    string      `json:"code"`
	Name    string      `json:"name"`
	Kind    AccountKind `json:"kind"`
	Debit   Amount      `json:"debit"`
	Credit  Amount      `json:"credit"`
	Balance Amount      `json:"balance"`
	Side    string      `json:"side"`
}

type LedgerBalanceQuery struct {
	Preset string
	From   string
	To     string
	Search string
}

type LedgerBalanceReport struct {
	Period      timeutil.Period    `json:"period"`
	Accounts    []LedgerBalanceRow `json:"accounts"`
	TotalDebit  Amount             `json:"totalDebit"`
	TotalCredit Amount             `json:"totalCredit"`
	// TotalBalance sums each row's Balance as reported, mixed conventions
	// included.
	TotalBalance Amount `json:"totalBalance"`
}

// PartyLedgerRow is one customer or supplier with its billed and paid totals
// for a period. Balance is billed − paid.
type PartyLedgerRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Billed  Amount `json:"billed"`
	Paid    Amount `json:"paid"`
	Balance Amount `json:"balance"`
}

// LedgerService derives statements and balances from bills and book entries
// on every call. Nothing it returns is stored.
type LedgerService interface {
	AccountStatement(ctx context.Context, code, from, to string) (*AccountStatement, error)
	LedgerBalances(ctx context.Context, q LedgerBalanceQuery) (*LedgerBalanceReport, error)
	// CashLedger returns the day-by-day cash book. With debitBalanceOnly set,
	// only days closing below zero are returned.
	CashLedger(ctx context.Context, from, to string, debitBalanceOnly bool) ([]DayTotals, error)
	CustomerLedger(ctx context.Context, from, to string) ([]PartyLedgerRow, error)
	SupplierLedger(ctx context.Context, from, to string) ([]PartyLedgerRow, error)
}

type ledgerService struct {
	store store.Store
	now   func() time.Time
}

// NewLedgerService constructs a LedgerService over the keyed store.
func NewLedgerService(s store.Store) LedgerService {
	return &ledgerService{store: s, now: timeutil.Now}
}

// ── Account statement ─────────────────────────────────────────────────────────

func (s *ledgerService) AccountStatement(ctx context.Context, code, from, to string) (*AccountStatement, error) {
	d, err := loadDataset(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger data: %w", err)
	}

	kind, id, ok := AccountKindForCode(code, d.customers, d.suppliers)
	if !ok {
		return nil, notFoundf("account %s not found", code)
	}

	records, name := accountRecords(d, kind, id)
	all := RunningBalance(kind, records)

	// The balance runs over the full history so the first line in range
	// carries everything before it. Undated lines sort last and belong to
	// neither the opening balance nor a bounded range.
	period := timeutil.Period{From: from, To: to}
	st := &AccountStatement{
		Code:  code,
		Name:  name,
		Kind:  kind,
		From:  from,
		To:    to,
		Lines: make([]StatementLine, 0, len(all)),
	}
	opening, debit, credit := decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range all {
		if from != "" && dateBefore(l.Date, from) {
			opening = l.Balance.Decimal
			continue
		}
		if !period.Contains(l.Date) {
			continue
		}
		st.Lines = append(st.Lines, l)
		debit = debit.Add(l.Debit.Decimal)
		credit = credit.Add(l.Credit.Decimal)
	}
	st.OpeningBalance = Amt(opening)
	st.TotalDebit = Amt(debit)
	st.TotalCredit = Amt(credit)
	st.ClosingBalance = st.OpeningBalance
	if n := len(st.Lines); n > 0 {
		st.ClosingBalance = st.Lines[n-1].Balance
	}
	st.Side = BalanceSide(kind, st.ClosingBalance)
	return st, nil
}

// accountRecords assembles the movements of one account and its display name.
func accountRecords(d *dataset, kind AccountKind, id string) ([]LedgerRecord, string) {
	var records []LedgerRecord
	var name string
	switch kind {
	case AccountCustomer:
		if c, ok := d.customer(id); ok {
			name = c.Name
		}
		for _, b := range d.activeSales() {
			if b.CustCode == id && b.PaymentType == PaymentCredit {
				records = append(records, LedgerRecord{
					Date:      b.Date,
					Narration: "Sales Bill #" + b.InvoiceNo,
					Reference: b.InvoiceNo,
					Debit:     b.Total,
				})
			}
		}
		for _, e := range d.entries {
			if e.CustCode == id {
				records = append(records, LedgerRecord{Date: e.Date, Narration: e.Narration, Credit: e.Credit})
			}
		}
	case AccountSupplier:
		if sp, ok := d.supplier(id); ok {
			name = sp.Name
		}
		for _, b := range d.purchaseBills {
			if b.SupplierCode == id {
				records = append(records, LedgerRecord{
					Date:      b.Date,
					Narration: "Purchase Bill #" + b.InvoiceNo,
					Reference: b.InvoiceNo,
					Credit:    b.Total,
				})
			}
		}
		for _, e := range d.entries {
			if e.SupplierCode == id {
				records = append(records, LedgerRecord{Date: e.Date, Narration: e.Narration, Debit: e.Debit})
			}
		}
	default:
		for _, e := range d.entries {
			if e.AcCode != id {
				continue
			}
			if name == "" {
				name = e.AcHead
			}
			records = append(records, LedgerRecord{Date: e.Date, Narration: e.Narration, Debit: e.Debit, Credit: e.Credit})
		}
	}
	return records, name
}

// BalanceSide reads a balance in the account's convention as Dr or Cr.
func BalanceSide(kind AccountKind, balance Amount) string {
	positive := !balance.IsNegative()
	if kind == AccountSupplier {
		positive = !positive
	}
	if positive {
		return "Dr"
	}
	return "Cr"
}

// ── Ledger balances ───────────────────────────────────────────────────────────

func (s *ledgerService) LedgerBalances(ctx context.Context, q LedgerBalanceQuery) (*LedgerBalanceReport, error) {
	d, err := loadDataset(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger data: %w", err)
	}

	period := timeutil.Period{From: q.From, To: q.To}
	if q.Preset != "" || (q.From == "" && q.To == "") {
		period = timeutil.PresetPeriod(q.Preset, s.now())
	}

	var rows []LedgerBalanceRow

	for _, c := range d.customers {
		bills, paid := decimal.Zero, decimal.Zero
		for _, b := range d.activeSales() {
			if b.CustCode == c.ID && b.PaymentType == PaymentCredit && period.Contains(b.Date) {
				bills = bills.Add(b.Total.Decimal)
			}
		}
		for _, e := range d.entries {
			if e.CustCode == c.ID && period.Contains(e.Date) {
				paid = paid.Add(e.Credit.Decimal)
			}
		}
		if bills.IsPositive() || paid.IsPositive() {
			rows = append(rows, LedgerBalanceRow{
				Code: c.ID, Name: c.Name, Kind: AccountCustomer,
				Debit: Amt(bills), Credit: Amt(paid), Balance: Amt(bills.Sub(paid)),
			})
		}
	}

	for _, sp := range d.suppliers {
		bills, paid := decimal.Zero, decimal.Zero
		for _, b := range d.purchaseBills {
			if b.SupplierCode == sp.ID && period.Contains(b.Date) {
				bills = bills.Add(b.Total.Decimal)
			}
		}
		for _, e := range d.entries {
			if e.SupplierCode == sp.ID && period.Contains(e.Date) {
				paid = paid.Add(e.Debit.Decimal)
			}
		}
		if bills.IsPositive() || paid.IsPositive() {
			rows = append(rows, LedgerBalanceRow{
				Code: sp.ID, Name: sp.Name, Kind: AccountSupplier,
				Debit: Amt(paid), Credit: Amt(bills), Balance: Amt(bills.Sub(paid)),
			})
		}
	}

	groups := map[string]*LedgerBalanceRow{}
	var codes []string
	for _, e := range d.entries {
		lower := strings.ToLower(e.AcCode)
		if !strings.HasPrefix(lower, "cash") && !strings.HasPrefix(lower, "bank") {
			continue
		}
		if !period.Contains(e.Date) {
			continue
		}
		g, ok := groups[e.AcCode]
		if !ok {
			kind := AccountBank
			if strings.HasPrefix(lower, "cash") {
				kind = AccountCash
			}
			g = &LedgerBalanceRow{Code: e.AcCode, Name: e.AcHead, Kind: kind}
			groups[e.AcCode] = g
			codes = append(codes, e.AcCode)
		}
		g.Credit = Amt(g.Credit.Add(e.Credit.Decimal))
		g.Debit = Amt(g.Debit.Add(e.Debit.Decimal))
	}
	sort.Strings(codes)
	for _, code := range codes {
		g := groups[code]
		if !g.Credit.IsPositive() && !g.Debit.IsPositive() {
			continue
		}
		g.Balance = Amt(g.Debit.Sub(g.Credit.Decimal))
		rows = append(rows, *g)
	}

	report := &LedgerBalanceReport{Period: period, Accounts: make([]LedgerBalanceRow, 0, len(rows))}
	debit, credit, balance := decimal.Zero, decimal.Zero, decimal.Zero
	for _, r := range rows {
		if !matchesSearch(q.Search, r.Code, r.Name) {
			continue
		}
		r.Side = BalanceSide(r.Kind, r.Balance)
		report.Accounts = append(report.Accounts, r)
		debit = debit.Add(r.Debit.Decimal)
		credit = credit.Add(r.Credit.Decimal)
		balance = balance.Add(r.Balance.Decimal)
	}
	report.TotalDebit = Amt(debit)
	report.TotalCredit = Amt(credit)
	report.TotalBalance = Amt(balance)
	return report, nil
}

// ── Cash ledger ───────────────────────────────────────────────────────────────

func (s *ledgerService) CashLedger(ctx context.Context, from, to string, debitBalanceOnly bool) ([]DayTotals, error) {
	var entries []BookEntry
	if err := store.Load(ctx, s.store, store.KeyBookEntries, &entries); err != nil {
		return nil, fmt.Errorf("failed to load book entries: %w", err)
	}
	days := DailyCashBook(entries, from, to)
	if !debitBalanceOnly {
		return days, nil
	}
	out := make([]DayTotals, 0, len(days))
	for _, d := range days {
		if d.Closing.IsNegative() {
			out = append(out, d)
		}
	}
	return out, nil
}

// ── Party ledgers ─────────────────────────────────────────────────────────────

func (s *ledgerService) CustomerLedger(ctx context.Context, from, to string) ([]PartyLedgerRow, error) {
	d, err := loadDataset(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger data: %w", err)
	}
	period := timeutil.Period{From: from, To: to}
	rows := make([]PartyLedgerRow, 0, len(d.customers))
	sales := d.activeSales()
	for _, c := range d.customers {
		billed, paid := decimal.Zero, decimal.Zero
		for _, b := range sales {
			if b.CustCode == c.ID && b.PaymentType == PaymentCredit && period.Contains(b.Date) {
				billed = billed.Add(b.Total.Decimal)
			}
		}
		for _, e := range d.entries {
			if e.CustCode == c.ID && period.Contains(e.Date) {
				paid = paid.Add(e.Credit.Decimal)
			}
		}
		rows = append(rows, PartyLedgerRow{
			ID: c.ID, Name: c.Name,
			Billed: Amt(billed), Paid: Amt(paid), Balance: Amt(billed.Sub(paid)),
		})
	}
	return rows, nil
}

func (s *ledgerService) SupplierLedger(ctx context.Context, from, to string) ([]PartyLedgerRow, error) {
	d, err := loadDataset(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger data: %w", err)
	}
	period := timeutil.Period{From: from, To: to}
	rows := make([]PartyLedgerRow, 0, len(d.suppliers))
	for _, sp := range d.suppliers {
		billed, paid := decimal.Zero, decimal.Zero
		for _, b := range d.purchaseBills {
			if b.SupplierCode == sp.ID && period.Contains(b.Date) {
				billed = billed.Add(b.Total.Decimal)
			}
		}
		for _, e := range d.entries {
			if e.SupplierCode == sp.ID && period.Contains(e.Date) {
				paid = paid.Add(e.Debit.Decimal)
			}
		}
		rows = append(rows, PartyLedgerRow{
			ID: sp.ID, Name: sp.Name,
			Billed: Amt(billed), Paid: Amt(paid), Balance: Amt(billed.Sub(paid)),
		})
	}
	return rows, nil
}
