package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"invoizo/internal/ai"
	"invoizo/internal/core"
	"invoizo/internal/export"
	"invoizo/internal/metrics"
	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

type appService struct {
	users         core.UserService
	masterData    core.MasterDataService
	billing       core.BillingService
	bookKeeping   core.BookKeepingService
	ledger        core.LedgerService
	reporting     core.ReportingService
	notifications core.NotificationService
	settings      core.SettingsService
	analyst       ai.Analyst
	archiver      *export.Archiver
	now           func() time.Time
}

// NewAppService wires every core service over one store. analyst and
// archiver may be nil; the CFO and backup operations then fail with a
// user-facing error.
func NewAppService(s store.Store, analyst ai.Analyst, archiver *export.Archiver) ApplicationService {
	return &appService{
		users:         core.NewUserService(s),
		masterData:    core.NewMasterDataService(s),
		billing:       core.NewBillingService(s),
		bookKeeping:   core.NewBookKeepingService(s),
		ledger:        core.NewLedgerService(s),
		reporting:     core.NewReportingService(s),
		notifications: core.NewNotificationService(s),
		settings:      core.NewSettingsService(s),
		analyst:       analyst,
		archiver:      archiver,
		now:           timeutil.Now,
	}
}

// RecordNotifications counts freshly generated notifications. The poller's
// OnCheck hook calls it too.
func RecordNotifications(ns []core.Notification) {
	for _, n := range ns {
		metrics.NotificationsGenerated.WithLabelValues(n.Title).Inc()
	}
}

// ── Auth and users ────────────────────────────────────────────────────────────

func (s *appService) Signup(ctx context.Context, req SignupRequest) (*core.SignupResult, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.users.Signup(ctx, req.Business, req.Admin)
}

func (s *appService) Login(ctx context.Context, req LoginRequest) (*core.User, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.users.Authenticate(ctx, req.Username, req.Password)
}

func (s *appService) GetUser(ctx context.Context, id string) (*core.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *appService) ListUsers(ctx context.Context) ([]core.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *appService) AddUser(ctx context.Context, req core.NewUserInput) (*core.User, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.users.AddUser(ctx, req)
}

func (s *appService) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	if err := check(req); err != nil {
		return err
	}
	return s.users.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword)
}

// ── Master data ───────────────────────────────────────────────────────────────

func (s *appService) ListCustomers(ctx context.Context, search string) ([]core.Customer, error) {
	return s.masterData.ListCustomers(ctx, search)
}

func (s *appService) GetCustomer(ctx context.Context, id string) (*core.Customer, error) {
	return s.masterData.GetCustomer(ctx, id)
}

func (s *appService) CreateCustomer(ctx context.Context, req core.CustomerInput) (*core.Customer, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.masterData.CreateCustomer(ctx, req)
}

func (s *appService) UpdateCustomer(ctx context.Context, id string, req core.CustomerInput) (*core.Customer, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.masterData.UpdateCustomer(ctx, id, req)
}

func (s *appService) DeleteCustomer(ctx context.Context, id string) error {
	return s.masterData.DeleteCustomer(ctx, id)
}

func (s *appService) ListSuppliers(ctx context.Context, search string) ([]core.Supplier, error) {
	return s.masterData.ListSuppliers(ctx, search)
}

func (s *appService) GetSupplier(ctx context.Context, id string) (*core.Supplier, error) {
	return s.masterData.GetSupplier(ctx, id)
}

func (s *appService) CreateSupplier(ctx context.Context, req core.SupplierInput) (*core.Supplier, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.masterData.CreateSupplier(ctx, req)
}

func (s *appService) UpdateSupplier(ctx context.Context, id string, req core.SupplierInput) (*core.Supplier, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.masterData.UpdateSupplier(ctx, id, req)
}

func (s *appService) DeleteSupplier(ctx context.Context, id string) error {
	return s.masterData.DeleteSupplier(ctx, id)
}

func (s *appService) ListProducts(ctx context.Context, search string) ([]core.Product, error) {
	return s.masterData.ListProducts(ctx, search)
}

func (s *appService) GetProduct(ctx context.Context, id string) (*core.Product, error) {
	return s.masterData.GetProduct(ctx, id)
}

func (s *appService) CreateProduct(ctx context.Context, req core.ProductInput) (*core.Product, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.masterData.CreateProduct(ctx, req)
}

func (s *appService) UpdateProduct(ctx context.Context, id string, req core.ProductInput) (*core.Product, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.masterData.UpdateProduct(ctx, id, req)
}

func (s *appService) DeleteProduct(ctx context.Context, id string) error {
	return s.masterData.DeleteProduct(ctx, id)
}

func (s *appService) ListGroups(ctx context.Context) ([]core.Group, error) {
	return s.masterData.ListGroups(ctx)
}

func (s *appService) CreateGroup(ctx context.Context, req core.GroupInput) (*core.Group, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.masterData.CreateGroup(ctx, req)
}

func (s *appService) UpdateGroup(ctx context.Context, id string, req core.GroupInput) (*core.Group, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.masterData.UpdateGroup(ctx, id, req)
}

func (s *appService) DeleteGroup(ctx context.Context, id string) error {
	return s.masterData.DeleteGroup(ctx, id)
}

func (s *appService) ListInventory(ctx context.Context, search string) ([]core.InventoryItem, error) {
	return s.masterData.ListInventory(ctx, search)
}

func (s *appService) ExportInventory(ctx context.Context, format string) (*File, error) {
	items, err := s.masterData.ListInventory(ctx, "")
	if err != nil {
		return nil, err
	}
	stamp := timeutil.FormatDate(s.now())
	switch strings.ToLower(format) {
	case "", "csv":
		data, err := export.InventoryCSV(items)
		if err != nil {
			return nil, err
		}
		return &File{Name: "inventory_" + stamp + ".csv", ContentType: ContentTypeCSV, Data: data}, nil
	case "xlsx":
		data, err := export.InventoryXLSX(items)
		if err != nil {
			return nil, err
		}
		return &File{Name: "inventory_" + stamp + ".xlsx", ContentType: ContentTypeXLSX, Data: data}, nil
	default:
		return nil, FieldErrors{"format": "must be one of: csv xlsx"}
	}
}

// ── Bills ─────────────────────────────────────────────────────────────────────

func (s *appService) NextInvoiceNo(ctx context.Context, kind core.BillKind) (string, error) {
	return s.billing.NextInvoiceNo(ctx, kind)
}

func (s *appService) CreateSalesBill(ctx context.Context, req core.SalesBillInput) (*core.SalesBill, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	bill, err := s.billing.CreateSalesBill(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.BillsSaved.WithLabelValues(string(core.BillSales)).Inc()
	return bill, nil
}

func (s *appService) UpdateSalesBill(ctx context.Context, id string, req core.SalesBillInput) (*core.SalesBill, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	bill, err := s.billing.UpdateSalesBill(ctx, id, req)
	if err != nil {
		return nil, err
	}
	metrics.BillsSaved.WithLabelValues(string(core.BillSales)).Inc()
	return bill, nil
}

func (s *appService) DeleteSalesBill(ctx context.Context, id string) error {
	return s.billing.DeleteSalesBill(ctx, id)
}

func (s *appService) CancelSalesBill(ctx context.Context, id string) (*core.SalesBill, error) {
	return s.billing.CancelSalesBill(ctx, id)
}

func (s *appService) RestoreSalesBill(ctx context.Context, id string) (*core.SalesBill, error) {
	return s.billing.RestoreSalesBill(ctx, id)
}

func (s *appService) MarkSalesBillReturned(ctx context.Context, id string) (*core.SalesBill, error) {
	return s.billing.MarkSalesBillReturned(ctx, id)
}

func (s *appService) ListSalesBills(ctx context.Context, req BillListRequest) ([]core.SalesBill, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.billing.ListSalesBills(ctx, core.BillFilter{From: req.From, To: req.To, Search: req.Search})
}

func (s *appService) GetSalesBill(ctx context.Context, id string) (*core.SalesBill, error) {
	return s.billing.GetSalesBill(ctx, id)
}

func (s *appService) SalesBillPDF(ctx context.Context, id string) (*File, error) {
	bill, err := s.billing.GetSalesBill(ctx, id)
	if err != nil {
		return nil, err
	}
	biz, err := s.settings.GetBusiness(ctx)
	if errors.Is(err, core.ErrNotFound) {
		biz = &core.Business{}
	} else if err != nil {
		return nil, err
	}
	ps, err := s.settings.GetPrinterSettings(ctx)
	if err != nil {
		return nil, err
	}

	data, err := export.BillPDF(*bill, *biz, *ps)
	if err != nil {
		return nil, err
	}
	return &File{Name: fmt.Sprintf("bill_%s.pdf", bill.InvoiceNo), ContentType: ContentTypePDF, Data: data}, nil
}

func (s *appService) CreatePurchaseBill(ctx context.Context, req core.PurchaseBillInput) (*core.PurchaseBill, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	bill, err := s.billing.CreatePurchaseBill(ctx, req)
	if err != nil {
		return nil, err
	}
	metrics.BillsSaved.WithLabelValues(string(core.BillPurchase)).Inc()
	return bill, nil
}

func (s *appService) UpdatePurchaseBill(ctx context.Context, id string, req core.PurchaseBillInput) (*core.PurchaseBill, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	bill, err := s.billing.UpdatePurchaseBill(ctx, id, req)
	if err != nil {
		return nil, err
	}
	metrics.BillsSaved.WithLabelValues(string(core.BillPurchase)).Inc()
	return bill, nil
}

func (s *appService) DeletePurchaseBill(ctx context.Context, id string) error {
	return s.billing.DeletePurchaseBill(ctx, id)
}

func (s *appService) ListPurchaseBills(ctx context.Context, req BillListRequest) ([]core.PurchaseBill, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.billing.ListPurchaseBills(ctx, core.BillFilter{From: req.From, To: req.To, Search: req.Search})
}

func (s *appService) GetPurchaseBill(ctx context.Context, id string) (*core.PurchaseBill, error) {
	return s.billing.GetPurchaseBill(ctx, id)
}

// ── Book-keeping and ledgers ──────────────────────────────────────────────────

func (s *appService) LoadDay(ctx context.Context, date string) (*core.DayBook, error) {
	if err := check(SaveDayRequest{Date: date}); err != nil {
		return nil, err
	}
	return s.bookKeeping.LoadDay(ctx, date)
}

func (s *appService) SaveDay(ctx context.Context, req SaveDayRequest) (*core.DayBook, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	day, err := s.bookKeeping.SaveDay(ctx, req.Date, req.Entries)
	if err != nil {
		return nil, err
	}
	metrics.DayBookSaves.Inc()
	return day, nil
}

func (s *appService) AccountStatement(ctx context.Context, code string, period PeriodRequest) (*core.AccountStatement, error) {
	if err := check(period); err != nil {
		return nil, err
	}
	return s.ledger.AccountStatement(ctx, code, period.From, period.To)
}

func (s *appService) ExportAccountStatement(ctx context.Context, code string, period PeriodRequest) (*File, error) {
	st, err := s.AccountStatement(ctx, code, period)
	if err != nil {
		return nil, err
	}
	data, err := export.StatementCSV(st)
	if err != nil {
		return nil, err
	}
	return &File{Name: fmt.Sprintf("statement_%s.csv", st.Code), ContentType: ContentTypeCSV, Data: data}, nil
}

func (s *appService) LedgerBalances(ctx context.Context, req LedgerBalanceRequest) (*core.LedgerBalanceReport, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.ledger.LedgerBalances(ctx, core.LedgerBalanceQuery{
		Preset: req.Preset,
		From:   req.From,
		To:     req.To,
		Search: req.Search,
	})
}

func (s *appService) ExportLedgerBalances(ctx context.Context, req LedgerBalanceRequest) (*File, error) {
	rep, err := s.LedgerBalances(ctx, req)
	if err != nil {
		return nil, err
	}
	data, err := export.LedgerBalanceXLSX(rep)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("ledger_balance_%s_%s.xlsx", rep.Period.From, rep.Period.To)
	return &File{Name: name, ContentType: ContentTypeXLSX, Data: data}, nil
}

func (s *appService) CashLedger(ctx context.Context, period PeriodRequest, debitOnly bool) ([]core.DayTotals, error) {
	if err := check(period); err != nil {
		return nil, err
	}
	return s.ledger.CashLedger(ctx, period.From, period.To, debitOnly)
}

func (s *appService) CustomerLedger(ctx context.Context, period PeriodRequest) ([]core.PartyLedgerRow, error) {
	if err := check(period); err != nil {
		return nil, err
	}
	return s.ledger.CustomerLedger(ctx, period.From, period.To)
}

func (s *appService) SupplierLedger(ctx context.Context, period PeriodRequest) ([]core.PartyLedgerRow, error) {
	if err := check(period); err != nil {
		return nil, err
	}
	return s.ledger.SupplierLedger(ctx, period.From, period.To)
}

// ── Dashboard and reports ─────────────────────────────────────────────────────

func (s *appService) Dashboard(ctx context.Context, year int) (*core.DashboardMetrics, error) {
	return s.reporting.DashboardMetrics(ctx, s.now(), year)
}

func (s *appService) Projections(ctx context.Context, year int, kind core.ProjectionType) (*core.Projections, error) {
	return s.reporting.Projections(ctx, s.now(), year, kind)
}

func (s *appService) Audit(ctx context.Context, period PeriodRequest) (*core.AuditMetrics, error) {
	if err := check(period); err != nil {
		return nil, err
	}
	settings, err := s.settings.GetAuditSettings(ctx)
	if err != nil {
		return nil, err
	}
	if period.From == "" && period.To == "" {
		p := timeutil.PresetPeriod(timeutil.PresetThisMonth, s.now())
		period = PeriodRequest{From: p.From, To: p.To}
	}
	return s.reporting.AuditMetrics(ctx, s.now(), period.From, period.To, *settings)
}

func (s *appService) SalesSummary(ctx context.Context, period PeriodRequest) (*core.SalesSummary, error) {
	if err := check(period); err != nil {
		return nil, err
	}
	return s.reporting.SalesSummary(ctx, period.From, period.To)
}

func (s *appService) PurchaseSummary(ctx context.Context, period PeriodRequest) (*core.PurchaseSummary, error) {
	if err := check(period); err != nil {
		return nil, err
	}
	return s.reporting.PurchaseSummary(ctx, period.From, period.To)
}

// ── Notifications ─────────────────────────────────────────────────────────────

func (s *appService) ListNotifications(ctx context.Context) (*NotificationListResult, error) {
	list, err := s.notifications.List(ctx)
	if err != nil {
		return nil, err
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	return &NotificationListResult{Notifications: list, Unread: unread}, nil
}

func (s *appService) CheckNotifications(ctx context.Context) ([]core.Notification, error) {
	created, err := s.notifications.CheckOverdue(ctx, s.now())
	if err != nil {
		return nil, err
	}
	RecordNotifications(created)
	return created, nil
}

func (s *appService) MarkNotificationRead(ctx context.Context, id string) error {
	return s.notifications.MarkRead(ctx, id)
}

func (s *appService) MarkAllNotificationsRead(ctx context.Context) error {
	return s.notifications.MarkAllRead(ctx)
}

func (s *appService) ClearNotifications(ctx context.Context) error {
	return s.notifications.Clear(ctx)
}

// ── Settings ──────────────────────────────────────────────────────────────────

func (s *appService) GetBusiness(ctx context.Context) (*core.Business, error) {
	return s.settings.GetBusiness(ctx)
}

func (s *appService) UpdateBusiness(ctx context.Context, req core.BusinessInput) (*core.Business, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.settings.UpdateBusiness(ctx, req)
}

func (s *appService) GetPrinterSettings(ctx context.Context) (*core.PrinterSettings, error) {
	return s.settings.GetPrinterSettings(ctx)
}

func (s *appService) UpdatePrinterSettings(ctx context.Context, req core.PrinterSettings) (*core.PrinterSettings, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.settings.UpdatePrinterSettings(ctx, req)
}

func (s *appService) GetAuditSettings(ctx context.Context) (*core.AuditSettings, error) {
	return s.settings.GetAuditSettings(ctx)
}

func (s *appService) UpdateAuditSettings(ctx context.Context, req core.AuditSettings) (*core.AuditSettings, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	return s.settings.UpdateAuditSettings(ctx, req)
}

// ── CFO ───────────────────────────────────────────────────────────────────────

func (s *appService) BusinessMetrics(ctx context.Context) (*core.BusinessMetrics, error) {
	return s.reporting.BusinessMetrics(ctx)
}

func (s *appService) AskCFO(ctx context.Context, req CFOQueryRequest) (*ai.Analysis, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	if s.analyst == nil {
		return nil, ai.ErrNotConfigured
	}
	m, err := s.reporting.BusinessMetrics(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.analyst.Analyze(ctx, req.Query, *m)
	if errors.Is(err, ai.ErrEmptyQuery) {
		return nil, core.ValidationError(err.Error())
	}
	return a, err
}

func (s *appService) CFOReport(ctx context.Context, req CFOReportRequest) (*File, error) {
	if err := check(req); err != nil {
		return nil, err
	}
	m, err := s.reporting.BusinessMetrics(ctx)
	if err != nil {
		return nil, err
	}
	a := &ai.Analysis{
		Query:       strings.TrimSpace(req.Query),
		Text:        strings.TrimSpace(req.Analysis),
		Metrics:     *m,
		GeneratedAt: s.now(),
	}

	if req.Format == "pdf" {
		data, err := export.CFOReportPDF(a)
		if err != nil {
			return nil, err
		}
		return &File{Name: "cfo-analysis-report.pdf", ContentType: ContentTypePDF, Data: data}, nil
	}
	return &File{Name: "cfo-analysis-report.txt", ContentType: ContentTypeText, Data: []byte(ai.ReportText(a))}, nil
}

// ── Backup ────────────────────────────────────────────────────────────────────

func (s *appService) Backup(ctx context.Context) (string, error) {
	if s.archiver == nil {
		return "", core.ValidationError("Backup storage is not configured")
	}
	return s.archiver.Backup(ctx)
}

func (s *appService) WriteBackup(ctx context.Context, w io.Writer) error {
	if s.archiver == nil {
		return core.ValidationError("Backup storage is not configured")
	}
	return s.archiver.WriteSnapshot(ctx, w)
}

func (s *appService) RestoreBackup(ctx context.Context, r io.Reader) (int, error) {
	if s.archiver == nil {
		return 0, core.ValidationError("Backup storage is not configured")
	}
	return s.archiver.Restore(ctx, r)
}
