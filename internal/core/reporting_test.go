package core_test

import (
	"context"
	"testing"
	"time"

	"invoizo/internal/core"
	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

var reportNow = time.Date(2024, 7, 31, 12, 0, 0, 0, timeutil.IST)

func reportingFixture(t *testing.T) store.Store {
	t.Helper()
	s := store.NewMemoryStore()
	seed(t, s, store.KeyCustomers, []core.Customer{
		{ID: "001", Name: "Ravi", CreditLimit: amt("1000")},
		{ID: "002", Name: "Meena", CreditLimit: amt("10000")},
	})
	seed(t, s, store.KeySuppliers, []core.Supplier{{ID: "001", Name: "Acme"}, {ID: "002", Name: "Bolt"}})
	seed(t, s, store.KeyProducts, []core.Product{
		{ID: "001", Name: "Soap", Stock: amt("5"), BuyingRate: amt("7"), SellingRate: amt("10")},
		{ID: "002", Name: "Oil", Stock: amt("50"), BuyingRate: amt("120"), SellingRate: amt("150")},
		{ID: "003", Name: "Old stock", Stock: amt("10"), BuyingRate: amt("5"), SellingRate: amt("8")},
	})
	seed(t, s, store.KeySalesBills, []core.SalesBill{
		{ID: "s1", Date: "2024-07-31", PaymentType: core.PaymentCash, Total: amt("240"),
			Items: []core.SalesItem{{Code: "001", Name: "Soap", Qty: amt("20"), Rate: amt("12"), Amount: amt("240")}}},
		{ID: "s2", Date: "2024-06-01", PaymentType: core.PaymentCredit, CustCode: "001", Total: amt("1500"),
			Items: []core.SalesItem{{Code: "001", Name: "Soap", Qty: amt("150"), Rate: amt("10"), Amount: amt("1500")}}},
		{ID: "s3", Date: "2024-07-20", PaymentType: core.PaymentCredit, CustCode: "002", Total: amt("500"), Returned: true,
			Items: []core.SalesItem{{Code: "002", Name: "Oil", Qty: amt("2"), Rate: amt("150"), Amount: amt("300")}}},
		{ID: "s4", Date: "2023-12-01", PaymentType: core.PaymentCash, Total: amt("999")},
		{ID: "s5", Date: "2024-07-31", PaymentType: core.PaymentCash, Total: amt("100"), Cancelled: true},
	})
	seed(t, s, store.KeyPurchaseBills, []core.PurchaseBill{
		{ID: "p1", Date: "2024-07-05", SupplierCode: "001", SupplierName: "Acme", Total: amt("1000")},
		{ID: "p2", Date: "2024-07-10", SupplierCode: "002", SupplierName: "Bolt", Total: amt("3000")},
		{ID: "p3", Date: "2024-06-01", SupplierCode: "001", SupplierName: "Acme", Total: amt("500")},
	})
	seed(t, s, store.KeyBookEntries, []core.BookEntry{
		{Date: "2024-06-02", AcCode: "RENT", AcHead: "Rent", Debit: amt("1500")},
		{Date: "2024-07-02", AcCode: "RENT", AcHead: "Rent", Debit: amt("1000")},
		{Date: "2024-07-03", AcCode: "SALARY", AcHead: "Salary", Debit: amt("2000")},
		{Date: "2024-07-06", AcCode: "SUPP-001", AcHead: "Acme", Debit: amt("1000"), SupplierCode: "001"},
		{Date: "2024-07-15", AcCode: "CUST-001", AcHead: "Ravi", Credit: amt("300"), CustCode: "001"},
	})
	return s
}

func TestDashboardMetrics(t *testing.T) {
	r := core.NewReportingService(reportingFixture(t))
	m, err := r.DashboardMetrics(context.Background(), reportNow, 0)
	if err != nil {
		t.Fatalf("DashboardMetrics: %v", err)
	}
	if m.Year != 2024 {
		t.Errorf("year: want 2024, got %d", m.Year)
	}
	assertAmount(t, "today", m.TodaySales, "240")
	assertAmount(t, "credit", m.CreditSales, "2000")
	assertAmount(t, "pending", m.PendingPayments, "1700")
	assertAmount(t, "year", m.CurrentYearSales, "2240")
	assertAmount(t, "average", m.AverageOrderValue, "560")
	assertAmount(t, "retention", m.CustomerRetentionRate, "100")
	if m.TotalOrders != 4 || m.TotalCustomers != 2 {
		t.Errorf("orders %d customers %d", m.TotalOrders, m.TotalCustomers)
	}
	if m.OverduePayments != 1 || m.RiskAccounts != 1 {
		t.Errorf("overdue %d risk %d", m.OverduePayments, m.RiskAccounts)
	}
}

func TestProjections(t *testing.T) {
	r := core.NewReportingService(reportingFixture(t))
	tests := []struct {
		kind     core.ProjectionType
		wantKind core.ProjectionType
		next     string
		two      string
	}{
		{"", core.ProjectionConservative, "2352", "2469.6"},
		{core.ProjectionModerate, core.ProjectionModerate, "2464", "2710.4"},
		{core.ProjectionAggressive, core.ProjectionAggressive, "2576", "2962.4"},
	}
	for _, tt := range tests {
		t.Run(string(tt.wantKind), func(t *testing.T) {
			p, err := r.Projections(context.Background(), reportNow, 2024, tt.kind)
			if err != nil {
				t.Fatalf("Projections: %v", err)
			}
			if p.Type != tt.wantKind {
				t.Errorf("type: want %s, got %s", tt.wantKind, p.Type)
			}
			assertAmount(t, "next", p.NextYear, tt.next)
			assertAmount(t, "two year", p.TwoYear, tt.two)
		})
	}
}

func TestAuditMetrics(t *testing.T) {
	r := core.NewReportingService(reportingFixture(t))
	m, err := r.AuditMetrics(context.Background(), reportNow, "2024-07-01", "2024-07-31", core.DefaultAuditSettings())
	if err != nil {
		t.Fatalf("AuditMetrics: %v", err)
	}

	if m.Inventory.LowStockItems != 1 {
		t.Errorf("low stock: want 1, got %d", m.Inventory.LowStockItems)
	}
	assertAmount(t, "dead stock", m.Inventory.DeadStockValue, "50")
	assertAmount(t, "stock variance", m.Inventory.StockVariance, "5")

	if m.Purchases.PendingBills != 1 || m.Purchases.TopSuppliers != 1 {
		t.Errorf("purchases: %+v", m.Purchases)
	}
	assertAmount(t, "avg purchase", m.Purchases.AveragePurchaseValue, "2000")

	if m.Sales.CancelledBills != 1 || m.Sales.PriceOverrides != 1 {
		t.Errorf("sales: %+v", m.Sales)
	}
	assertAmount(t, "return rate", m.Sales.ReturnRate, "33.33")

	assertAmount(t, "expenses", m.Expenses.MonthlyExpenses, "3000")
	assertAmount(t, "variance", m.Expenses.ExpenseVariance, "100")
	if m.Expenses.HighExpenseCategories != 1 {
		t.Errorf("high expense categories: want 1, got %d", m.Expenses.HighExpenseCategories)
	}
}

func TestAuditMetrics_DisabledCategoriesAreZero(t *testing.T) {
	r := core.NewReportingService(reportingFixture(t))
	settings := core.DefaultAuditSettings()
	settings.Categories.Sales = false
	settings.Categories.Payments = false

	m, err := r.AuditMetrics(context.Background(), reportNow, "2024-07-01", "2024-07-31", settings)
	if err != nil {
		t.Fatalf("AuditMetrics: %v", err)
	}
	if m.Sales != (core.SalesAudit{}) {
		t.Errorf("sales should be zero, got %+v", m.Sales)
	}
	if !m.Expenses.MonthlyExpenses.IsZero() || m.Expenses.HighExpenseCategories != 0 {
		t.Errorf("expenses should be zero, got %+v", m.Expenses)
	}
	if m.Inventory.LowStockItems != 1 {
		t.Errorf("inventory should still be computed")
	}
}

func TestRunScheduledAudit_Frequency(t *testing.T) {
	tests := []struct {
		name      string
		frequency core.AuditFrequency
		last      string
		wantRan   bool
	}{
		{"never run", core.AuditMonthly, "", true},
		{"monthly same month", core.AuditMonthly, "2024-07-01T04:00:00Z", false},
		{"monthly new month", core.AuditMonthly, "2024-06-30T04:00:00Z", true},
		{"weekly six days", core.AuditWeekly, "2024-07-25T06:30:00Z", false},
		{"weekly seven days", core.AuditWeekly, "2024-07-24T06:30:00Z", true},
		{"daily same day", core.AuditDaily, "2024-07-31T02:00:00Z", false},
		{"daily next day", core.AuditDaily, "2024-07-30T02:00:00Z", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := reportingFixture(t)
			settings := core.DefaultAuditSettings()
			settings.Frequency = tt.frequency
			seed(t, s, store.KeyAuditSettings, settings)
			if tt.last != "" {
				seed(t, s, store.KeyLastAuditDate, tt.last)
			}

			m, ran, err := core.NewReportingService(s).RunScheduledAudit(context.Background(), reportNow)
			if err != nil {
				t.Fatalf("RunScheduledAudit: %v", err)
			}
			if ran != tt.wantRan {
				t.Fatalf("ran: want %v, got %v", tt.wantRan, ran)
			}
			if !ran {
				if got := load[string](t, s, store.KeyLastAuditDate); got != tt.last {
					t.Errorf("last audit date should be unchanged, got %q", got)
				}
				return
			}
			if m.Period.From != "2024-07-01" || m.Period.To != "2024-07-31" {
				t.Errorf("period: %+v", m.Period)
			}
			if got := load[string](t, s, store.KeyLastAuditDate); got == tt.last {
				t.Error("last audit date should be updated")
			}
		})
	}
}

func TestRunScheduledAudit_Disabled(t *testing.T) {
	s := reportingFixture(t)
	settings := core.DefaultAuditSettings()
	settings.AutoAudit = false
	seed(t, s, store.KeyAuditSettings, settings)

	_, ran, err := core.NewReportingService(s).RunScheduledAudit(context.Background(), reportNow)
	if err != nil || ran {
		t.Errorf("want no run, got ran=%v err=%v", ran, err)
	}
}

func TestSalesAndPurchaseSummary(t *testing.T) {
	ctx := context.Background()
	r := core.NewReportingService(reportingFixture(t))

	sales, err := r.SalesSummary(ctx, "2024-07-01", "2024-07-31")
	if err != nil {
		t.Fatalf("SalesSummary: %v", err)
	}
	if sales.Bills != 2 {
		t.Errorf("bills: want 2, got %d", sales.Bills)
	}
	assertAmount(t, "total", sales.TotalSales, "740")
	assertAmount(t, "cash", sales.CashSales, "240")
	assertAmount(t, "avg", sales.AverageOrderValue, "370")
	if len(sales.TopProducts) != 2 || sales.TopProducts[0].Name != "Oil" {
		t.Errorf("top products: %+v", sales.TopProducts)
	}

	purchases, err := r.PurchaseSummary(ctx, "2024-07-01", "2024-07-31")
	if err != nil {
		t.Fatalf("PurchaseSummary: %v", err)
	}
	assertAmount(t, "purchases", purchases.TotalPurchases, "4000")
	if len(purchases.TopSuppliers) != 2 || purchases.TopSuppliers[0].Name != "Bolt" || purchases.TopSuppliers[1].Count != 1 {
		t.Errorf("top suppliers: %+v", purchases.TopSuppliers)
	}
}

func TestBusinessMetrics(t *testing.T) {
	m, err := core.NewReportingService(reportingFixture(t)).BusinessMetrics(context.Background())
	if err != nil {
		t.Fatalf("BusinessMetrics: %v", err)
	}
	assertAmount(t, "revenue", m.Revenue, "3239")
	assertAmount(t, "expenses", m.Expenses, "10000")
	assertAmount(t, "profit", m.Profit, "-6761")
	assertAmount(t, "cash flow", m.CashFlow, "-5200")
	if m.Customers != 2 || m.Products != 3 || m.SalesBillCount != 4 || m.PurchaseBillCount != 3 {
		t.Errorf("counts: %+v", m)
	}
}
