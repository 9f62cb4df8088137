package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"invoizo/internal/core"
)

// csvSafe neutralises values a spreadsheet would evaluate as a formula.
func csvSafe(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func num(a core.Amount) string { return a.Round2().StringFixed(2) }

// InventoryCSV writes one row per product with its stock and valuation.
func InventoryCSV(items []core.InventoryItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{
		"Code", "Name", "Group", "Packaging", "Stock", "Buying Rate", "Selling Rate",
		"MRP", "Stock Value", "Last Updated", "Last Supplier",
	})
	for _, it := range items {
		w.Write([]string{
			csvSafe(it.ID),
			csvSafe(it.Name),
			csvSafe(it.GroupName),
			csvSafe(it.Packaging),
			it.Stock.String(),
			num(it.BuyingRate),
			num(it.SellingRate),
			num(it.MRP),
			num(it.StockValue),
			it.LastUpdated,
			csvSafe(it.LastSupplier),
		})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write inventory csv: %w", err)
	}
	return buf.Bytes(), nil
}

// StatementCSV writes an account statement, opening and closing rows included.
func StatementCSV(st *core.AccountStatement) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"Account", csvSafe(st.Code), csvSafe(st.Name)})
	w.Write([]string{"Date", "Narration", "Reference", "Debit", "Credit", "Balance"})
	w.Write([]string{st.From, "Opening Balance", "", "", "", num(st.OpeningBalance)})
	for _, l := range st.Lines {
		w.Write([]string{
			l.Date,
			csvSafe(l.Narration),
			csvSafe(l.Reference),
			num(l.Debit),
			num(l.Credit),
			num(l.Balance),
		})
	}
	w.Write([]string{
		st.To, "Closing Balance", "",
		num(st.TotalDebit), num(st.TotalCredit),
		strings.TrimSpace(num(st.ClosingBalance) + " " + st.Side),
	})

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write statement csv: %w", err)
	}
	return buf.Bytes(), nil
}
