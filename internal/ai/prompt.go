package ai

import (
	"fmt"
	"strings"

	"invoizo/internal/core"
	"invoizo/internal/timeutil"
)

func rupees(a core.Amount) string { return "₹" + core.FormatINR(a) }

// BuildPrompt renders the CFO prompt for query over the metrics snapshot.
func BuildPrompt(query string, m core.BusinessMetrics) string {
	return fmt.Sprintf(`You are an expert CFO analyzing business data. Based on the following financial metrics and data, provide a detailed analysis for this query: %[1]s

Business Context:
Current Business Metrics:
- Revenue: %[2]s
- Expenses: %[3]s
- Profit: %[4]s
- Cash Flow: %[5]s

Business Statistics:
- Total Customers: %[6]d
- Total Active Customers: %[7]d
- Total Products: %[8]d
- Total Sales Bills: %[9]d
- Total Purchase Bills: %[10]d

Please provide a detailed analysis focusing on the specific query: %[1]s

Format your response in clear sections with bullet points where appropriate.
Keep the analysis professional and actionable.`,
		query,
		rupees(m.Revenue), rupees(m.Expenses), rupees(m.Profit), rupees(m.CashFlow),
		m.Customers, m.ActiveCustomers, m.Products, m.SalesBillCount, m.PurchaseBillCount,
	)
}

// ReportText is the plain-text download of an analysis.
func ReportText(a *Analysis) string {
	var b strings.Builder
	b.WriteString("CFO Analysis Report\n")
	b.WriteString("------------------\n")
	fmt.Fprintf(&b, "Date: %s\n\n", a.GeneratedAt.In(timeutil.IST).Format(timeutil.DisplayLayout))

	b.WriteString("Business Metrics\n")
	b.WriteString("---------------\n")
	fmt.Fprintf(&b, "Revenue: %s\n", rupees(a.Metrics.Revenue))
	fmt.Fprintf(&b, "Expenses: %s\n", rupees(a.Metrics.Expenses))
	fmt.Fprintf(&b, "Profit: %s\n", rupees(a.Metrics.Profit))
	fmt.Fprintf(&b, "Cash Flow: %s\n\n", rupees(a.Metrics.CashFlow))

	if a.Query != "" {
		b.WriteString("Query\n")
		b.WriteString("-----\n")
		b.WriteString(a.Query + "\n\n")
	}

	b.WriteString("AI Analysis\n")
	b.WriteString("-----------\n")
	b.WriteString(a.Text)
	return strings.TrimSpace(b.String())
}

// render flattens a structured answer into the sectioned text shown to users.
func (ans Answer) render() string {
	var b strings.Builder
	if ans.Summary != "" {
		b.WriteString(ans.Summary + "\n")
	}
	for _, s := range ans.Sections {
		fmt.Fprintf(&b, "\n%s\n", s.Title)
		for _, p := range s.Points {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if len(ans.Recommendations) > 0 {
		b.WriteString("\nRecommendations\n")
		for _, r := range ans.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return strings.TrimSpace(b.String())
}
