package export

import (
	"fmt"

	"invoizo/internal/core"

	"github.com/xuri/excelize/v2"
)

type sheet struct {
	f    *excelize.File
	name string
	row  int
	bold int
}

func newSheet(name string) (*sheet, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &sheet{f: f, name: name, bold: bold}, nil
}

// append writes values to the next row. Amounts are stored as numbers.
func (s *sheet) append(header bool, values ...any) error {
	s.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.row)
		if err != nil {
			return err
		}
		if a, ok := v.(core.Amount); ok {
			v = a.Round2().InexactFloat64()
		}
		if err := s.f.SetCellValue(s.name, cell, v); err != nil {
			return err
		}
	}
	if header {
		end, _ := excelize.CoordinatesToCellName(len(values), s.row)
		start, _ := excelize.CoordinatesToCellName(1, s.row)
		return s.f.SetCellStyle(s.name, start, end, s.bold)
	}
	return nil
}

func (s *sheet) bytes() ([]byte, error) {
	defer s.f.Close()
	buf, err := s.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// LedgerBalanceXLSX renders the ledger balance report as a workbook with a
// totals row.
func LedgerBalanceXLSX(rep *core.LedgerBalanceReport) ([]byte, error) {
	s, err := newSheet("Ledger Balance")
	if err != nil {
		return nil, err
	}
	if err := s.append(true, "Period", rep.Period.From, rep.Period.To); err != nil {
		return nil, err
	}
	if err := s.append(true, "Code", "Name", "Type", "Debit", "Credit", "Balance", "Dr/Cr"); err != nil {
		return nil, err
	}
	for _, r := range rep.Accounts {
		if err := s.append(false, r.Code, r.Name, string(r.Kind), r.Debit, r.Credit, r.Balance, r.Side); err != nil {
			return nil, err
		}
	}
	if err := s.append(true, "", "Total", "", rep.TotalDebit, rep.TotalCredit, rep.TotalBalance, ""); err != nil {
		return nil, err
	}
	return s.bytes()
}

func InventoryXLSX(items []core.InventoryItem) ([]byte, error) {
	s, err := newSheet("Inventory")
	if err != nil {
		return nil, err
	}
	if err := s.append(true, "Code", "Name", "Group", "Packaging", "Stock", "Buying Rate",
		"Selling Rate", "MRP", "Stock Value", "Last Updated", "Last Supplier"); err != nil {
		return nil, err
	}
	total := core.Zero
	for _, it := range items {
		if err := s.append(false, it.ID, it.Name, it.GroupName, it.Packaging, it.Stock,
			it.BuyingRate, it.SellingRate, it.MRP, it.StockValue, it.LastUpdated, it.LastSupplier); err != nil {
			return nil, err
		}
		total = core.Sum(total, it.StockValue)
	}
	if err := s.append(true, "", "Total", "", "", "", "", "", "", total); err != nil {
		return nil, err
	}
	return s.bytes()
}
