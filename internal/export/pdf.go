package export

import (
	"bytes"
	"fmt"
	"strings"

	"invoizo/internal/ai"
	"invoizo/internal/core"
	"invoizo/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// Credit bills fall due this many days after the bill date.
const creditDueDays = 30

// billLayout is the subset of the cash or credit print section a bill uses.
type billLayout struct {
	paperSize   string
	headerText  string
	showAddress bool
	showPhone   bool
	showEmail   bool
	showItems   bool
	showWords   bool
	showDueDate bool
	showTerms   bool
	terms       string
	footerText  string
}

func layoutFor(pt core.PaymentType, ps core.PrinterSettings) billLayout {
	if pt == core.PaymentCredit {
		c := ps.Credit
		return billLayout{
			paperSize: c.PaperSize, headerText: c.HeaderText,
			showAddress: c.ShowAddress, showPhone: c.ShowPhone, showEmail: c.ShowEmail,
			showItems: c.ShowItemDetails, showWords: c.ShowTotalInWords,
			showDueDate: c.ShowDueDate, showTerms: c.ShowTermsAndConditions,
			terms: c.TermsAndConditions, footerText: c.FooterText,
		}
	}
	c := ps.Cash
	return billLayout{
		paperSize: c.PaperSize, headerText: c.HeaderText,
		showAddress: c.ShowAddress, showPhone: c.ShowPhone, showEmail: c.ShowEmail,
		showItems: c.ShowItemDetails, showWords: c.ShowTotalInWords,
		footerText: c.FooterText,
	}
}

func newPDF(paperSize string) *gofpdf.Fpdf {
	switch strings.ToLower(paperSize) {
	case "a5":
		return gofpdf.New("P", "mm", "A5", "")
	case "thermal-80mm", "thermal":
		return gofpdf.NewCustom(&gofpdf.InitType{
			UnitStr: "mm",
			Size:    gofpdf.SizeType{Wd: 80, Ht: 297},
		})
	default:
		return gofpdf.New("P", "mm", "A4", "")
	}
}

func rs(a core.Amount) string { return "Rs. " + core.FormatINR(a.Round2()) }

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BillPDF prints a sales bill using the cash or credit section of the printer
// settings, whichever matches the bill's payment type.
func BillPDF(bill core.SalesBill, biz core.Business, ps core.PrinterSettings) ([]byte, error) {
	l := layoutFor(bill.PaymentType, ps)

	pdf := newPDF(l.paperSize)
	margin := 10.0
	if pw, _ := pdf.GetPageSize(); pw < 100 {
		margin = 4
	}
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pw, _ := pdf.GetPageSize()
	width := pw - 2*margin
	small := width < 100

	title := l.headerText
	if title == "" {
		title = biz.Name
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.MultiCell(width, 7, tr(title), "", "C", false)
	pdf.SetFont("Arial", "", 9)
	if l.showAddress && biz.Address != "" {
		pdf.MultiCell(width, 5, tr(biz.Address), "", "C", false)
	}
	if l.showPhone && biz.Phone != "" {
		pdf.CellFormat(width, 5, tr("Phone: "+biz.Phone), "", 1, "C", false, 0, "")
	}
	if l.showEmail && biz.Email != "" {
		pdf.CellFormat(width, 5, tr("Email: "+biz.Email), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	half := width / 2
	if small {
		half = width
	}
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(half, 6, tr("Invoice No: "+bill.InvoiceNo), "", ln(small), "L", false, 0, "")
	pdf.CellFormat(half, 6, "Date: "+displayDate(bill.Date), "", 1, alignRight(small), false, 0, "")
	pdf.CellFormat(half, 6, tr("Customer: "+bill.CustName), "", ln(small), "L", false, 0, "")
	pdf.CellFormat(half, 6, "Payment Type: "+string(bill.PaymentType), "", 1, alignRight(small), false, 0, "")
	if bill.Address != "" {
		pdf.MultiCell(width, 5, tr(bill.Address), "", "L", false)
	}
	if l.showDueDate && bill.PaymentType == core.PaymentCredit {
		if d, err := timeutil.ParseDate(bill.Date); err == nil {
			due := d.AddDate(0, 0, creditDueDays)
			pdf.CellFormat(width, 6, "Due Date: "+due.Format(timeutil.DisplayLayout), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(3)

	if l.showItems {
		cols := []float64{width * 0.46, width * 0.14, width * 0.18, width * 0.22}
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, h := range []string{"Item", "Qty", "Rate", "Amount"} {
			pdf.CellFormat(cols[i], 7, h, "1", ln(i == 3), "C", true, 0, "")
		}
		pdf.SetFont("Arial", "", 9)
		for _, it := range bill.Items {
			pdf.CellFormat(cols[0], 6, tr(it.Name), "1", 0, "L", false, 0, "")
			pdf.CellFormat(cols[1], 6, it.Qty.String(), "1", 0, "R", false, 0, "")
			pdf.CellFormat(cols[2], 6, core.FormatINR(it.Rate.Round2()), "1", 0, "R", false, 0, "")
			pdf.CellFormat(cols[3], 6, core.FormatINR(it.Amount.Round2()), "1", 1, "R", false, 0, "")
		}
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(width, 8, "Total: "+rs(bill.Total), "", 1, "R", false, 0, "")
	if l.showWords {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(width, 5, "Amount in words: "+core.RupeesInWords(bill.Total), "", "L", false)
	}

	if l.showTerms && bill.PaymentType == core.PaymentCredit && l.terms != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(width, 5, "Terms & Conditions:", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(width, 4, tr(l.terms), "", "L", false)
	}

	footer := l.footerText
	if footer == "" {
		footer = "Thank you for your business!"
	}
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.MultiCell(width, 5, tr(footer), "", "C", false)

	return output(pdf)
}

// CFOReportPDF is the PDF form of ai.ReportText.
func CFOReportPDF(a *ai.Analysis) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(180, 10, "CFO Analysis Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(180, 6, "Date: "+a.GeneratedAt.In(timeutil.IST).Format(timeutil.DisplayLayout), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(180, 8, "Business Metrics", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	m := a.Metrics
	pdf.CellFormat(90, 7, "Revenue: "+rs(m.Revenue), "1", 0, "L", false, 0, "")
	pdf.CellFormat(90, 7, "Expenses: "+rs(m.Expenses), "1", 1, "L", false, 0, "")
	pdf.CellFormat(90, 7, "Profit: "+rs(m.Profit), "1", 0, "L", false, 0, "")
	pdf.CellFormat(90, 7, "Cash Flow: "+rs(m.CashFlow), "1", 1, "L", false, 0, "")
	pdf.Ln(5)

	if a.Query != "" {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(180, 8, "Query", "1", 1, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(180, 6, tr(a.Query), "", "L", false)
		pdf.Ln(3)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(180, 8, "AI Analysis", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(180, 5, tr(a.Text), "", "L", false)

	return output(pdf)
}

func displayDate(s string) string {
	t, err := timeutil.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format(timeutil.DisplayLayout)
}

func ln(last bool) int {
	if last {
		return 1
	}
	return 0
}

func alignRight(stacked bool) string {
	if stacked {
		return "L"
	}
	return "R"
}
