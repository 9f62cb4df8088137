package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

const (
	lowStockThreshold = 10
	deadStockDays     = 90
	creditDueDays     = 30
)

type reportingService struct {
	store store.Store
}

// NewReportingService constructs a ReportingService over the keyed store.
func NewReportingService(s store.Store) ReportingService {
	return &reportingService{store: s}
}

// ── Dashboard ─────────────────────────────────────────────────────────────────

func (s *reportingService) DashboardMetrics(ctx context.Context, now time.Time, year int) (*DashboardMetrics, error) {
	d, err := loadDataset(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard data: %w", err)
	}
	now = now.In(timeutil.IST)
	if year == 0 {
		year = now.Year()
	}
	today := timeutil.FormatDate(now)
	sales := d.activeSales()

	m := &DashboardMetrics{Year: year, TotalOrders: len(sales), TotalCustomers: len(d.customers)}

	todaySales, creditSales, yearSales := decimal.Zero, decimal.Zero, decimal.Zero
	active := map[string]bool{}
	creditByCustomer := map[string]decimal.Decimal{}
	for _, b := range sales {
		if b.Date == today {
			todaySales = todaySales.Add(b.Total.Decimal)
		}
		if b.PaymentType == PaymentCredit {
			creditSales = creditSales.Add(b.Total.Decimal)
			creditByCustomer[b.CustCode] = creditByCustomer[b.CustCode].Add(b.Total.Decimal)
			if t, err := timeutil.ParseDate(b.Date); err == nil && timeutil.DaysBetween(t, now) > creditDueDays {
				m.OverduePayments++
			}
		}
		if t, err := timeutil.ParseDate(b.Date); err == nil && t.Year() == year {
			yearSales = yearSales.Add(b.Total.Decimal)
			if b.CustCode != "" {
				active[b.CustCode] = true
			}
		}
	}

	payments := decimal.Zero
	for _, e := range d.entries {
		if e.CustCode != "" && e.Credit.IsPositive() {
			payments = payments.Add(e.Credit.Decimal)
		}
	}

	m.TodaySales = Amt(todaySales)
	m.CreditSales = Amt(creditSales)
	m.PendingPayments = Amt(creditSales.Sub(payments))
	m.CurrentYearSales = Amt(yearSales)
	if m.TotalOrders > 0 {
		m.AverageOrderValue = Amt(yearSales.Div(decimal.NewFromInt(int64(m.TotalOrders)))).Round2()
	}
	if m.TotalCustomers > 0 {
		m.CustomerRetentionRate = percent(decimal.NewFromInt(int64(len(active))), decimal.NewFromInt(int64(m.TotalCustomers)))
	}
	for _, c := range d.customers {
		if creditByCustomer[c.ID].GreaterThan(c.CreditLimit.Decimal) {
			m.RiskAccounts++
		}
	}
	return m, nil
}

func (s *reportingService) Projections(ctx context.Context, now time.Time, year int, kind ProjectionType) (*Projections, error) {
	m, err := s.DashboardMetrics(ctx, now, year)
	if err != nil {
		return nil, err
	}
	rate := growthRate(kind)
	if kind == "" {
		kind = ProjectionConservative
	}
	factor := decimal.NewFromInt(1).Add(rate)
	next := m.CurrentYearSales.Mul(factor)
	two := next.Mul(factor)
	return &Projections{
		Type:        kind,
		GrowthRate:  Amt(rate),
		CurrentYear: m.CurrentYearSales,
		NextYear:    Amt(next).Round2(),
		TwoYear:     Amt(two).Round2(),
	}, nil
}

func growthRate(kind ProjectionType) decimal.Decimal {
	switch kind {
	case ProjectionModerate:
		return decimal.NewFromFloat(0.10)
	case ProjectionAggressive:
		return decimal.NewFromFloat(0.15)
	default:
		return decimal.NewFromFloat(0.05)
	}
}

// ── Audit ─────────────────────────────────────────────────────────────────────

func (s *reportingService) AuditMetrics(ctx context.Context, now time.Time, from, to string, settings AuditSettings) (*AuditMetrics, error) {
	d, err := loadDataset(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit data: %w", err)
	}
	return computeAudit(d, now, timeutil.Period{From: from, To: to}, settings), nil
}

func computeAudit(d *dataset, now time.Time, period timeutil.Period, settings AuditSettings) *AuditMetrics {
	m := &AuditMetrics{Period: period}

	if settings.Categories.Inventory {
		m.Inventory = inventoryAudit(d, now, settings)
	}
	if settings.Categories.Purchases {
		m.Purchases = purchaseAudit(d, period)
	}
	if settings.Categories.Sales {
		m.Sales = salesAudit(d, period)
	}
	if settings.Categories.Payments {
		m.Expenses = expenseAudit(d, period)
	}
	return m
}

func inventoryAudit(d *dataset, now time.Time, settings AuditSettings) InventoryAudit {
	a := InventoryAudit{StockVariance: settings.Thresholds.StockVariance}

	lastSale := map[string]time.Time{}
	for _, b := range d.activeSales() {
		t, err := timeutil.ParseDate(b.Date)
		if err != nil {
			continue
		}
		for _, it := range b.Items {
			if t.After(lastSale[it.Code]) {
				lastSale[it.Code] = t
			}
		}
	}

	dead := decimal.Zero
	for _, p := range d.products {
		if p.Stock.LessThan(decimal.NewFromInt(lowStockThreshold)) {
			a.LowStockItems++
		}
		last, sold := lastSale[p.ID]
		if !sold || timeutil.DaysBetween(last, now) > deadStockDays {
			dead = dead.Add(p.Stock.Mul(p.BuyingRate.Decimal))
		}
	}
	a.DeadStockValue = Amt(dead).Round2()
	return a
}

func purchaseAudit(d *dataset, period timeutil.Period) PurchaseAudit {
	var a PurchaseAudit
	total := decimal.Zero
	bySupplier := map[string]decimal.Decimal{}
	count := 0
	for _, b := range d.purchaseBills {
		if !period.Contains(b.Date) {
			continue
		}
		count++
		total = total.Add(b.Total.Decimal)
		bySupplier[b.SupplierCode] = bySupplier[b.SupplierCode].Add(b.Total.Decimal)

		settled := false
		for _, e := range d.entries {
			if e.SupplierCode == b.SupplierCode && e.Debit.GreaterThanOrEqual(b.Total.Decimal) {
				settled = true
				break
			}
		}
		if !settled {
			a.PendingBills++
		}
	}
	if count == 0 {
		return a
	}
	avg := total.Div(decimal.NewFromInt(int64(count)))
	a.AveragePurchaseValue = Amt(avg).Round2()
	for _, t := range bySupplier {
		if t.GreaterThan(avg) {
			a.TopSuppliers++
		}
	}
	return a
}

func salesAudit(d *dataset, period timeutil.Period) SalesAudit {
	var a SalesAudit
	bills, returned := 0, 0
	for _, b := range d.salesBills {
		if !period.Contains(b.Date) {
			continue
		}
		bills++
		if b.Cancelled {
			a.CancelledBills++
		}
		if b.Returned {
			returned++
		}
		for _, it := range b.Items {
			i := indexOf(d.products, func(p Product) bool { return p.ID == it.Code })
			if i >= 0 && !it.Rate.Equal(d.products[i].SellingRate.Decimal) {
				a.PriceOverrides++
			}
		}
	}
	if bills > 0 {
		a.ReturnRate = percent(decimal.NewFromInt(int64(returned)), decimal.NewFromInt(int64(bills)))
	}
	return a
}

// expenseAudit treats debits without a supplier tag as expenses and compares
// the period with the same window one month earlier.
func expenseAudit(d *dataset, period timeutil.Period) ExpenseAudit {
	var a ExpenseAudit
	previous := period.ShiftMonths(-1)

	current, prior := decimal.Zero, decimal.Zero
	byHead := map[string]decimal.Decimal{}
	for _, e := range d.entries {
		if !e.Debit.IsPositive() || e.SupplierCode != "" {
			continue
		}
		if period.Contains(e.Date) {
			current = current.Add(e.Debit.Decimal)
			byHead[e.AcHead] = byHead[e.AcHead].Add(e.Debit.Decimal)
		}
		if previous.Contains(e.Date) {
			prior = prior.Add(e.Debit.Decimal)
		}
	}
	a.MonthlyExpenses = Amt(current)
	if prior.IsPositive() {
		a.ExpenseVariance = percent(current.Sub(prior), prior)
	}
	if len(byHead) > 0 {
		avg := current.Div(decimal.NewFromInt(int64(len(byHead))))
		for _, t := range byHead {
			if t.GreaterThan(avg) {
				a.HighExpenseCategories++
			}
		}
	}
	return a
}

func (s *reportingService) RunScheduledAudit(ctx context.Context, now time.Time) (*AuditMetrics, bool, error) {
	settings := DefaultAuditSettings()
	if err := store.Load(ctx, s.store, store.KeyAuditSettings, &settings); err != nil {
		return nil, false, err
	}
	if !settings.Enabled || !settings.AutoAudit {
		return nil, false, nil
	}

	var metrics *AuditMetrics
	ran := false
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var last string
		if err := store.Load(ctx, tx, store.KeyLastAuditDate, &last); err != nil {
			return err
		}
		if !auditDue(settings.Frequency, last, now) {
			return nil
		}
		d, err := loadDataset(ctx, tx)
		if err != nil {
			return err
		}
		ist := now.In(timeutil.IST)
		monthStart := time.Date(ist.Year(), ist.Month(), 1, 0, 0, 0, 0, timeutil.IST)
		period := timeutil.Period{From: timeutil.FormatDate(monthStart), To: timeutil.FormatDate(ist)}
		metrics = computeAudit(d, now, period, settings)
		ran = true
		return store.Save(ctx, tx, store.KeyLastAuditDate, now.UTC().Format(time.RFC3339))
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to run scheduled audit: %w", err)
	}
	return metrics, ran, nil
}

// auditDue compares now with the previous run. An absent or unreadable
// previous run is always due.
func auditDue(freq AuditFrequency, last string, now time.Time) bool {
	if last == "" {
		return true
	}
	prev, err := time.Parse(time.RFC3339, last)
	if err != nil {
		return true
	}
	now, prev = now.In(timeutil.IST), prev.In(timeutil.IST)
	switch freq {
	case AuditDaily:
		return now.Day() != prev.Day()
	case AuditWeekly:
		return now.Sub(prev) >= 7*24*time.Hour
	default:
		return now.Month() != prev.Month()
	}
}

// ── Summaries ─────────────────────────────────────────────────────────────────

func (s *reportingService) SalesSummary(ctx context.Context, from, to string) (*SalesSummary, error) {
	var bills []SalesBill
	if err := store.Load(ctx, s.store, store.KeySalesBills, &bills); err != nil {
		return nil, fmt.Errorf("failed to load sales bills: %w", err)
	}
	period := timeutil.Period{From: from, To: to}
	sum := &SalesSummary{Period: period, TopProducts: []ProductSales{}}

	total, credit := decimal.Zero, decimal.Zero
	byName := map[string]*ProductSales{}
	var names []string
	for _, b := range bills {
		if b.Cancelled || !period.Contains(b.Date) {
			continue
		}
		sum.Bills++
		total = total.Add(b.Total.Decimal)
		if b.PaymentType == PaymentCredit {
			credit = credit.Add(b.Total.Decimal)
		}
		for _, it := range b.Items {
			ps, ok := byName[it.Name]
			if !ok {
				ps = &ProductSales{Name: it.Name}
				byName[it.Name] = ps
				names = append(names, it.Name)
			}
			ps.Quantity = Amt(ps.Quantity.Add(it.Qty.Decimal))
			ps.Revenue = Amt(ps.Revenue.Add(it.Amount.Decimal))
		}
	}
	sum.TotalSales = Amt(total)
	sum.CreditSales = Amt(credit)
	sum.CashSales = Amt(total.Sub(credit))
	if sum.Bills > 0 {
		sum.AverageOrderValue = Amt(total.Div(decimal.NewFromInt(int64(sum.Bills)))).Round2()
	}

	for _, n := range names {
		sum.TopProducts = append(sum.TopProducts, *byName[n])
	}
	sort.SliceStable(sum.TopProducts, func(i, j int) bool {
		return sum.TopProducts[i].Revenue.GreaterThan(sum.TopProducts[j].Revenue.Decimal)
	})
	if len(sum.TopProducts) > 5 {
		sum.TopProducts = sum.TopProducts[:5]
	}
	return sum, nil
}

func (s *reportingService) PurchaseSummary(ctx context.Context, from, to string) (*PurchaseSummary, error) {
	var bills []PurchaseBill
	if err := store.Load(ctx, s.store, store.KeyPurchaseBills, &bills); err != nil {
		return nil, fmt.Errorf("failed to load purchase bills: %w", err)
	}
	period := timeutil.Period{From: from, To: to}
	sum := &PurchaseSummary{Period: period, TopSuppliers: []SupplierPurchases{}}

	total := decimal.Zero
	byName := map[string]*SupplierPurchases{}
	var names []string
	for _, b := range bills {
		if !period.Contains(b.Date) {
			continue
		}
		sum.Bills++
		total = total.Add(b.Total.Decimal)
		sp, ok := byName[b.SupplierName]
		if !ok {
			sp = &SupplierPurchases{Name: b.SupplierName}
			byName[b.SupplierName] = sp
			names = append(names, b.SupplierName)
		}
		sp.Count++
		sp.Total = Amt(sp.Total.Add(b.Total.Decimal))
	}
	sum.TotalPurchases = Amt(total)
	if sum.Bills > 0 {
		sum.AverageOrderValue = Amt(total.Div(decimal.NewFromInt(int64(sum.Bills)))).Round2()
	}
	for _, n := range names {
		sum.TopSuppliers = append(sum.TopSuppliers, *byName[n])
	}
	sort.SliceStable(sum.TopSuppliers, func(i, j int) bool {
		return sum.TopSuppliers[i].Total.GreaterThan(sum.TopSuppliers[j].Total.Decimal)
	})
	if len(sum.TopSuppliers) > 5 {
		sum.TopSuppliers = sum.TopSuppliers[:5]
	}
	return sum, nil
}

func (s *reportingService) BusinessMetrics(ctx context.Context) (*BusinessMetrics, error) {
	d, err := loadDataset(ctx, s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to load business data: %w", err)
	}
	sales := d.activeSales()

	revenue, expenses, cashFlow := decimal.Zero, decimal.Zero, decimal.Zero
	active := map[string]bool{}
	for _, b := range sales {
		revenue = revenue.Add(b.Total.Decimal)
		if b.CustCode != "" {
			active[b.CustCode] = true
		}
	}
	for _, b := range d.purchaseBills {
		expenses = expenses.Add(b.Total.Decimal)
	}
	for _, e := range d.entries {
		if e.Debit.IsPositive() {
			expenses = expenses.Add(e.Debit.Decimal)
		}
		cashFlow = cashFlow.Add(e.Credit.Decimal).Sub(e.Debit.Decimal)
	}

	return &BusinessMetrics{
		Revenue:           Amt(revenue),
		Expenses:          Amt(expenses),
		Profit:            Amt(revenue.Sub(expenses)),
		CashFlow:          Amt(cashFlow),
		Customers:         len(d.customers),
		ActiveCustomers:   len(active),
		Products:          len(d.products),
		SalesBillCount:    len(sales),
		PurchaseBillCount: len(d.purchaseBills),
	}, nil
}

// percent is part/whole × 100 rounded to 2 places.
func percent(part, whole decimal.Decimal) Amount {
	if whole.IsZero() {
		return Zero
	}
	return Amt(part.Mul(decimal.NewFromInt(100)).Div(whole)).Round2()
}
