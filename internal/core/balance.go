package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoizo/internal/timeutil"
)

// ── Account kinds ─────────────────────────────────────────────────────────────

type AccountKind string

const (
	AccountCustomer AccountKind = "customer"
	AccountSupplier AccountKind = "supplier"
	AccountCash     AccountKind = "cash"
	AccountBank     AccountKind = "bank"
)

const (
	PrefixCustomer = "CUST-"
	PrefixSupplier = "SUPP-"
	PrefixCash     = "CASH-"
	PrefixBank     = "BANK-"
)

// AccountKindForCode resolves an account code. Prefixed codes map directly and
// return the code without its prefix. A bare id is matched against suppliers
// first, then customers, then a case-insensitive cash/bank prefix. ok is
// false when nothing matches.
func AccountKindForCode(code string, customers []Customer, suppliers []Supplier) (kind AccountKind, id string, ok bool) {
	switch {
	case strings.HasPrefix(code, PrefixCustomer):
		return AccountCustomer, strings.TrimPrefix(code, PrefixCustomer), true
	case strings.HasPrefix(code, PrefixSupplier):
		return AccountSupplier, strings.TrimPrefix(code, PrefixSupplier), true
	case strings.HasPrefix(code, PrefixCash):
		return AccountCash, code, true
	case strings.HasPrefix(code, PrefixBank):
		return AccountBank, code, true
	}
	for _, s := range suppliers {
		if s.ID == code {
			return AccountSupplier, code, true
		}
	}
	for _, c := range customers {
		if c.ID == code {
			return AccountCustomer, code, true
		}
	}
	lower := strings.ToLower(code)
	switch {
	case strings.HasPrefix(lower, "cash"):
		return AccountCash, code, true
	case strings.HasPrefix(lower, "bank"):
		return AccountBank, code, true
	}
	return "", code, false
}

// ── Running balance ───────────────────────────────────────────────────────────

// LedgerRecord is one dated movement on an account before ordering.
type LedgerRecord struct {
	Date      string
	Narration string
	Reference string
	Debit     Amount
	Credit    Amount
}

// StatementLine is a LedgerRecord with the cumulative balance after it.
type StatementLine struct {
	Date      string `json:"date"`
	Narration string `json:"narration"`
	Reference string `json:"reference,omitempty"`
	Debit     Amount `json:"debit"`
	Credit    Amount `json:"credit"`
	Balance   Amount `json:"balance"`
}

// RunningBalance orders records by date and accumulates a balance in the
// account's sign convention: credit − debit for suppliers, debit − credit for
// everything else. Records on the same date keep their input order; records
// with an unparseable date sort after all others.
func RunningBalance(kind AccountKind, records []LedgerRecord) []StatementLine {
	ordered := sortByDate(records, func(r LedgerRecord) string { return r.Date })

	lines := make([]StatementLine, len(ordered))
	running := decimal.Zero
	for i, r := range ordered {
		running = running.Add(signedMovement(kind, r.Debit, r.Credit))
		lines[i] = StatementLine{
			Date:      r.Date,
			Narration: r.Narration,
			Reference: r.Reference,
			Debit:     r.Debit,
			Credit:    r.Credit,
			Balance:   Amt(running),
		}
	}
	return lines
}

func signedMovement(kind AccountKind, debit, credit Amount) decimal.Decimal {
	if kind == AccountSupplier {
		return credit.Sub(debit.Decimal)
	}
	return debit.Sub(credit.Decimal)
}

// sortByDate returns a stably date-ordered copy of xs.
func sortByDate[T any](xs []T, date func(T) string) []T {
	type keyed struct {
		v  T
		t  time.Time
		ok bool
	}
	ks := make([]keyed, len(xs))
	for i, x := range xs {
		t, err := timeutil.ParseDate(date(x))
		ks[i] = keyed{v: x, t: t, ok: err == nil}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return false
		}
		return a.t.Before(b.t)
	})
	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.v
	}
	return out
}

// dateBefore reports whether date is an earlier calendar day than bound. A
// date or bound that does not parse is never before anything.
func dateBefore(date, bound string) bool {
	d, err := timeutil.ParseDate(date)
	if err != nil {
		return false
	}
	b, err := timeutil.ParseDate(bound)
	if err != nil {
		return false
	}
	return d.Before(b)
}

// ── Day book ──────────────────────────────────────────────────────────────────

// DayTotals is the book-keeping summary of one date. Day-book balances are
// receipts-positive: opening and closing accumulate credit − debit.
type DayTotals struct {
	Date      string `json:"date"`
	Opening   Amount `json:"opening"`
	DayCredit Amount `json:"dayCredit"`
	DayDebit  Amount `json:"dayDebit"`
	Closing   Amount `json:"closing"`
}

// DaySummary computes the opening balance from every entry dated before date,
// the day's own totals and the resulting closing balance. Entries without a
// parseable date count toward neither.
func DaySummary(entries []BookEntry, date string) DayTotals {
	opening, credit, debit := decimal.Zero, decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch {
		case dateBefore(e.Date, date):
			opening = opening.Add(e.Credit.Decimal).Sub(e.Debit.Decimal)
		case e.Date == date:
			credit = credit.Add(e.Credit.Decimal)
			debit = debit.Add(e.Debit.Decimal)
		}
	}
	return DayTotals{
		Date:      date,
		Opening:   Amt(opening),
		DayCredit: Amt(credit),
		DayDebit:  Amt(debit),
		Closing:   Amt(opening.Add(credit).Sub(debit)),
	}
}

// DailyCashBook groups entries by date inside [from, to] (empty bounds are
// open) and carries the running balance across days. The first day's opening
// includes every entry before from. Entries without a parseable date are left
// out. Days are returned in date order.
func DailyCashBook(entries []BookEntry, from, to string) []DayTotals {
	period := timeutil.Period{From: from, To: to}

	opening := decimal.Zero
	byDate := map[string]*DayTotals{}
	var dates []string
	for _, e := range entries {
		if _, err := timeutil.ParseDate(e.Date); err != nil {
			continue
		}
		if from != "" && dateBefore(e.Date, from) {
			opening = opening.Add(e.Credit.Decimal).Sub(e.Debit.Decimal)
			continue
		}
		if !period.Contains(e.Date) {
			continue
		}
		d, ok := byDate[e.Date]
		if !ok {
			d = &DayTotals{Date: e.Date}
			byDate[e.Date] = d
			dates = append(dates, e.Date)
		}
		d.DayCredit = Amt(d.DayCredit.Add(e.Credit.Decimal))
		d.DayDebit = Amt(d.DayDebit.Add(e.Debit.Decimal))
	}
	sort.Strings(dates)

	days := make([]DayTotals, 0, len(dates))
	running := opening
	for _, date := range dates {
		d := byDate[date]
		d.Opening = Amt(running)
		running = running.Add(d.DayCredit.Decimal).Sub(d.DayDebit.Decimal)
		d.Closing = Amt(running)
		days = append(days, *d)
	}
	return days
}
