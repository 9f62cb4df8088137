package core

import (
	"context"
	"time"

	"invoizo/internal/timeutil"
)

// ── Report types ──────────────────────────────────────────────────────────────

type DashboardMetrics struct {
	Year                  int    `json:"year"`
	TodaySales            Amount `json:"todaySales"`
	CreditSales           Amount `json:"creditSales"`
	PendingPayments       Amount `json:"pendingPayments"`
	CurrentYearSales      Amount `json:"currentYearSales"`
	TotalOrders           int    `json:"totalOrders"`
	AverageOrderValue     Amount `json:"averageOrderValue"`
	TotalCustomers        int    `json:"totalCustomers"`
	CustomerRetentionRate Amount `json:"customerRetentionRate"`
	OverduePayments       int    `json:"overduePayments"`
	RiskAccounts          int    `json:"riskAccounts"`
}

type ProjectionType string

const (
	ProjectionConservative ProjectionType = "conservative"
	ProjectionModerate     ProjectionType = "moderate"
	ProjectionAggressive   ProjectionType = "aggressive"
)

type Projections struct {
	Type        ProjectionType `json:"type"`
	GrowthRate  Amount         `json:"growthRate"`
	CurrentYear Amount         `json:"currentYear"`
	NextYear    Amount         `json:"nextYear"`
	TwoYear     Amount         `json:"twoYear"`
}

type InventoryAudit struct {
	// StockVariance is the configured threshold; physical counts are not
	// recorded anywhere to measure it against.
	StockVariance  Amount `json:"stockVariance"`
	LowStockItems  int    `json:"lowStockItems"`
	DeadStockValue Amount `json:"deadStockValue"`
}

type PurchaseAudit struct {
	PendingBills         int    `json:"pendingBills"`
	AveragePurchaseValue Amount `json:"averagePurchaseValue"`
	TopSuppliers         int    `json:"topSuppliers"`
}

type SalesAudit struct {
	ReturnRate     Amount `json:"returnRate"`
	CancelledBills int    `json:"cancelledBills"`
	PriceOverrides int    `json:"priceOverrides"`
}

type ExpenseAudit struct {
	MonthlyExpenses       Amount `json:"monthlyExpenses"`
	ExpenseVariance       Amount `json:"expenseVariance"`
	HighExpenseCategories int    `json:"highExpenseCategories"`
}

type AuditMetrics struct {
	Period    timeutil.Period `json:"period"`
	Inventory InventoryAudit  `json:"inventory"`
	Purchases PurchaseAudit   `json:"purchases"`
	Sales     SalesAudit      `json:"sales"`
	Expenses  ExpenseAudit    `json:"expenses"`
}

type ProductSales struct {
	Name     string `json:"name"`
	Quantity Amount `json:"quantity"`
	Revenue  Amount `json:"revenue"`
}

type SalesSummary struct {
	Period            timeutil.Period `json:"period"`
	Bills             int             `json:"bills"`
	TotalSales        Amount          `json:"totalSales"`
	CreditSales       Amount          `json:"creditSales"`
	CashSales         Amount          `json:"cashSales"`
	AverageOrderValue Amount          `json:"averageOrderValue"`
	TopProducts       []ProductSales  `json:"topProducts"`
}

type SupplierPurchases struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Total Amount `json:"total"`
}

type PurchaseSummary struct {
	Period            timeutil.Period     `json:"period"`
	Bills             int                 `json:"bills"`
	TotalPurchases    Amount              `json:"totalPurchases"`
	AverageOrderValue Amount              `json:"averageOrderValue"`
	TopSuppliers      []SupplierPurchases `json:"topSuppliers"`
}

// BusinessMetrics is the all-time snapshot handed to the CFO assistant.
type BusinessMetrics struct {
	Revenue           Amount `json:"revenue"`
	Expenses          Amount `json:"expenses"`
	Profit            Amount `json:"profit"`
	CashFlow          Amount `json:"cashFlow"`
	Customers         int    `json:"customers"`
	ActiveCustomers   int    `json:"activeCustomers"`
	Products          int    `json:"products"`
	SalesBillCount    int    `json:"salesBills"`
	PurchaseBillCount int    `json:"purchaseBills"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService re-derives dashboard, audit and summary figures from the
// stored records on each call.
type ReportingService interface {
	DashboardMetrics(ctx context.Context, now time.Time, year int) (*DashboardMetrics, error)
	Projections(ctx context.Context, now time.Time, year int, kind ProjectionType) (*Projections, error)
	// AuditMetrics evaluates [from, to]; categories disabled in settings are
	// returned zeroed.
	AuditMetrics(ctx context.Context, now time.Time, from, to string, settings AuditSettings) (*AuditMetrics, error)
	// RunScheduledAudit runs the current month's audit when the configured
	// frequency says one is due, and records the run. ran is false when
	// nothing was due.
	RunScheduledAudit(ctx context.Context, now time.Time) (metrics *AuditMetrics, ran bool, err error)
	SalesSummary(ctx context.Context, from, to string) (*SalesSummary, error)
	PurchaseSummary(ctx context.Context, from, to string) (*PurchaseSummary, error)
	BusinessMetrics(ctx context.Context) (*BusinessMetrics, error)
}
