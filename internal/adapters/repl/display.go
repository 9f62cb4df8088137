package repl

import (
	"fmt"
	"strings"

	"invoizo/internal/core"
)

func rule(ch string) {
	fmt.Println(strings.Repeat(ch, 72))
}

// PrintStatement writes an account statement as a table.
func PrintStatement(st *core.AccountStatement) {
	fmt.Println()
	rule("=")
	fmt.Printf("  STATEMENT  %s  %s\n", st.Code, st.Name)
	if st.From != "" || st.To != "" {
		fmt.Printf("  Period   : %s to %s\n", orDash(st.From), orDash(st.To))
	}
	rule("=")
	fmt.Printf("  %-10s %-26s %10s %10s %10s\n", "DATE", "NARRATION", "DEBIT", "CREDIT", "BALANCE")
	rule("-")
	fmt.Printf("  %-10s %-26s %10s %10s %10s\n", "", "Opening balance", "", "", money(st.OpeningBalance))
	for _, l := range st.Lines {
		fmt.Printf("  %-10s %-26s %10s %10s %10s\n",
			l.Date, clip(l.Narration, 26), money(l.Debit), money(l.Credit), money(l.Balance))
	}
	rule("-")
	fmt.Printf("  %-10s %-26s %10s %10s %10s %s\n", "", "Closing balance",
		money(st.TotalDebit), money(st.TotalCredit), money(st.ClosingBalance), st.Side)
	rule("=")
}

func PrintLedgerBalance(r *core.LedgerBalanceReport) {
	fmt.Println()
	rule("=")
	fmt.Printf("  LEDGER BALANCE  %s to %s\n", r.Period.From, r.Period.To)
	rule("=")
	fmt.Printf("  %-10s %-24s %11s %11s %11s %s\n", "CODE", "NAME", "DEBIT", "CREDIT", "BALANCE", "")
	rule("-")
	for _, a := range r.Accounts {
		fmt.Printf("  %-10s %-24s %11s %11s %11s %s\n",
			a.Code, clip(a.Name, 24), money(a.Debit), money(a.Credit), money(a.Balance), a.Side)
	}
	rule("-")
	fmt.Printf("  %-10s %-24s %11s %11s %11s\n", "", "Total",
		money(r.TotalDebit), money(r.TotalCredit), money(r.TotalBalance))
	rule("=")
}

func PrintDay(d *core.DayBook) {
	fmt.Println()
	rule("=")
	fmt.Printf("  DAY BOOK  %s\n", d.Date)
	rule("=")
	fmt.Printf("  %-4s %-10s %-24s %11s %11s\n", "SL", "A/C", "NARRATION", "CREDIT", "DEBIT")
	rule("-")
	for _, e := range d.Entries {
		fmt.Printf("  %-4d %-10s %-24s %11s %11s\n",
			e.SlNo, e.AcCode, clip(e.Narration, 24), money(e.Credit), money(e.Debit))
	}
	rule("-")
	s := d.Summary
	fmt.Printf("  Opening %s   Credit %s   Debit %s   Closing %s\n",
		money(s.Opening), money(s.DayCredit), money(s.DayDebit), money(s.Closing))
	rule("=")
}

func PrintInventory(items []core.InventoryItem) {
	fmt.Println()
	rule("=")
	fmt.Println("  INVENTORY")
	rule("=")
	if len(items) == 0 {
		fmt.Println("  No products found.")
		rule("=")
		return
	}
	fmt.Printf("  %-6s %-28s %-14s %9s %11s\n", "CODE", "NAME", "GROUP", "STOCK", "VALUE")
	rule("-")
	total := core.Zero
	for _, it := range items {
		fmt.Printf("  %-6s %-28s %-14s %9s %11s\n",
			it.ID, clip(it.Name, 28), clip(it.GroupName, 14), it.Stock.String(), money(it.StockValue))
		total = core.Sum(total, it.StockValue)
	}
	rule("-")
	fmt.Printf("  %-6s %-28s %-14s %9s %11s\n", "", "Total stock value", "", "", money(total))
	rule("=")
}

func PrintNotifications(ns []core.Notification) {
	for _, n := range ns {
		mark := " "
		if !n.Read {
			mark = "*"
		}
		fmt.Printf(" %s [%s] %s: %s\n", mark, n.Date, n.Title, n.Message)
	}
}

func printDashboard(m *core.DashboardMetrics) {
	fmt.Println()
	rule("=")
	fmt.Printf("  DASHBOARD %d\n", m.Year)
	rule("=")
	fmt.Printf("  Today's sales       : %s\n", money(m.TodaySales))
	fmt.Printf("  Credit sales        : %s\n", money(m.CreditSales))
	fmt.Printf("  Pending payments    : %s\n", money(m.PendingPayments))
	fmt.Printf("  Sales this year     : %s\n", money(m.CurrentYearSales))
	fmt.Printf("  Orders              : %d (avg %s)\n", m.TotalOrders, money(m.AverageOrderValue))
	fmt.Printf("  Customers           : %d (retention %s%%)\n", m.TotalCustomers, m.CustomerRetentionRate.StringFixed(1))
	fmt.Printf("  Overdue / at risk   : %d / %d\n", m.OverduePayments, m.RiskAccounts)
	rule("=")
}

func printCustomers(list []core.Customer) {
	fmt.Println()
	rule("=")
	fmt.Println("  CUSTOMERS")
	rule("=")
	if len(list) == 0 {
		fmt.Println("  No customers found.")
		rule("=")
		return
	}
	fmt.Printf("  %-6s %-28s %-14s %12s %12s\n", "CODE", "NAME", "PHONE", "CREDIT LIMIT", "BALANCE")
	rule("-")
	for _, c := range list {
		fmt.Printf("  %-6s %-28s %-14s %12s %12s\n",
			c.ID, clip(c.Name, 28), c.Phone, money(c.CreditLimit), money(c.Balance))
	}
	rule("=")
}

func printBills(bills []core.SalesBill) {
	fmt.Println()
	rule("=")
	fmt.Println("  SALES BILLS")
	rule("=")
	if len(bills) == 0 {
		fmt.Println("  No bills found.")
		rule("=")
		return
	}
	fmt.Printf("  %-8s %-10s %-7s %-26s %12s\n", "INVOICE", "DATE", "TYPE", "CUSTOMER", "TOTAL")
	rule("-")
	for _, b := range bills {
		name := b.CustName
		if b.Cancelled {
			name += " (cancelled)"
		}
		fmt.Printf("  %-8s %-10s %-7s %-26s %12s\n", b.InvoiceNo, b.Date, b.PaymentType, clip(name, 26), money(b.Total))
	}
	rule("=")
}

func printBill(b *core.SalesBill) {
	fmt.Printf("\nINVOICE:  %s   DATE: %s   %s\n", b.InvoiceNo, b.Date, strings.ToUpper(string(b.PaymentType)))
	if b.CustName != "" {
		fmt.Printf("CUSTOMER: %s\n", b.CustName)
	}
	for _, it := range b.Items {
		fmt.Printf("  %-6s %-28s %6s x %9s = %11s\n", it.Code, clip(it.Name, 28), it.Qty.String(), money(it.Rate), money(it.Amount))
	}
	fmt.Printf("TOTAL:    %s\n", money(b.Total))
	fmt.Printf("          %s\n", core.RupeesInWords(b.Total))
}

func money(a core.Amount) string {
	return core.FormatINR(a)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
