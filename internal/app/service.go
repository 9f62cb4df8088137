package app

import (
	"context"
	"io"

	"invoizo/internal/ai"
	"invoizo/internal/core"
)

// ApplicationService is the single interface all UI adapters (REPL, CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// ── Auth and users ──

	// Signup registers the business and its first admin user. Allowed once.
	Signup(ctx context.Context, req SignupRequest) (*core.SignupResult, error)
	// Login verifies credentials and returns the user on success.
	Login(ctx context.Context, req LoginRequest) (*core.User, error)
	GetUser(ctx context.Context, id string) (*core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)
	AddUser(ctx context.Context, req core.NewUserInput) (*core.User, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error

	// ── Master data ──

	ListCustomers(ctx context.Context, search string) ([]core.Customer, error)
	GetCustomer(ctx context.Context, id string) (*core.Customer, error)
	CreateCustomer(ctx context.Context, req core.CustomerInput) (*core.Customer, error)
	UpdateCustomer(ctx context.Context, id string, req core.CustomerInput) (*core.Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	ListSuppliers(ctx context.Context, search string) ([]core.Supplier, error)
	GetSupplier(ctx context.Context, id string) (*core.Supplier, error)
	CreateSupplier(ctx context.Context, req core.SupplierInput) (*core.Supplier, error)
	UpdateSupplier(ctx context.Context, id string, req core.SupplierInput) (*core.Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error

	ListProducts(ctx context.Context, search string) ([]core.Product, error)
	GetProduct(ctx context.Context, id string) (*core.Product, error)
	CreateProduct(ctx context.Context, req core.ProductInput) (*core.Product, error)
	UpdateProduct(ctx context.Context, id string, req core.ProductInput) (*core.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListGroups(ctx context.Context) ([]core.Group, error)
	CreateGroup(ctx context.Context, req core.GroupInput) (*core.Group, error)
	UpdateGroup(ctx context.Context, id string, req core.GroupInput) (*core.Group, error)
	DeleteGroup(ctx context.Context, id string) error

	ListInventory(ctx context.Context, search string) ([]core.InventoryItem, error)
	// ExportInventory renders the inventory as "csv" or "xlsx".
	ExportInventory(ctx context.Context, format string) (*File, error)

	// ── Bills ──

	NextInvoiceNo(ctx context.Context, kind core.BillKind) (string, error)
	CreateSalesBill(ctx context.Context, req core.SalesBillInput) (*core.SalesBill, error)
	UpdateSalesBill(ctx context.Context, id string, req core.SalesBillInput) (*core.SalesBill, error)
	DeleteSalesBill(ctx context.Context, id string) error
	CancelSalesBill(ctx context.Context, id string) (*core.SalesBill, error)
	RestoreSalesBill(ctx context.Context, id string) (*core.SalesBill, error)
	MarkSalesBillReturned(ctx context.Context, id string) (*core.SalesBill, error)
	ListSalesBills(ctx context.Context, filter BillListRequest) ([]core.SalesBill, error)
	GetSalesBill(ctx context.Context, id string) (*core.SalesBill, error)
	// SalesBillPDF prints a bill with the stored printer settings.
	SalesBillPDF(ctx context.Context, id string) (*File, error)

	CreatePurchaseBill(ctx context.Context, req core.PurchaseBillInput) (*core.PurchaseBill, error)
	UpdatePurchaseBill(ctx context.Context, id string, req core.PurchaseBillInput) (*core.PurchaseBill, error)
	DeletePurchaseBill(ctx context.Context, id string) error
	ListPurchaseBills(ctx context.Context, filter BillListRequest) ([]core.PurchaseBill, error)
	GetPurchaseBill(ctx context.Context, id string) (*core.PurchaseBill, error)

	// ── Book-keeping and ledgers ──

	LoadDay(ctx context.Context, date string) (*core.DayBook, error)
	SaveDay(ctx context.Context, req SaveDayRequest) (*core.DayBook, error)

	// AccountStatement returns the running-balance statement of one account code.
	AccountStatement(ctx context.Context, code string, period PeriodRequest) (*core.AccountStatement, error)
	ExportAccountStatement(ctx context.Context, code string, period PeriodRequest) (*File, error)
	LedgerBalances(ctx context.Context, req LedgerBalanceRequest) (*core.LedgerBalanceReport, error)
	ExportLedgerBalances(ctx context.Context, req LedgerBalanceRequest) (*File, error)
	CashLedger(ctx context.Context, period PeriodRequest, debitOnly bool) ([]core.DayTotals, error)
	CustomerLedger(ctx context.Context, period PeriodRequest) ([]core.PartyLedgerRow, error)
	SupplierLedger(ctx context.Context, period PeriodRequest) ([]core.PartyLedgerRow, error)

	// ── Dashboard and reports ──

	Dashboard(ctx context.Context, year int) (*core.DashboardMetrics, error)
	Projections(ctx context.Context, year int, kind core.ProjectionType) (*core.Projections, error)
	// Audit evaluates the period with the stored audit settings.
	Audit(ctx context.Context, period PeriodRequest) (*core.AuditMetrics, error)
	SalesSummary(ctx context.Context, period PeriodRequest) (*core.SalesSummary, error)
	PurchaseSummary(ctx context.Context, period PeriodRequest) (*core.PurchaseSummary, error)

	// ── Notifications ──

	ListNotifications(ctx context.Context) (*NotificationListResult, error)
	// CheckNotifications runs the overdue check now, outside the poller.
	CheckNotifications(ctx context.Context) ([]core.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
	ClearNotifications(ctx context.Context) error

	// ── Settings ──

	GetBusiness(ctx context.Context) (*core.Business, error)
	UpdateBusiness(ctx context.Context, req core.BusinessInput) (*core.Business, error)
	GetPrinterSettings(ctx context.Context) (*core.PrinterSettings, error)
	UpdatePrinterSettings(ctx context.Context, req core.PrinterSettings) (*core.PrinterSettings, error)
	GetAuditSettings(ctx context.Context) (*core.AuditSettings, error)
	UpdateAuditSettings(ctx context.Context, req core.AuditSettings) (*core.AuditSettings, error)

	// ── CFO ──

	BusinessMetrics(ctx context.Context) (*core.BusinessMetrics, error)
	// AskCFO sends the question with a fresh metrics snapshot to the model.
	AskCFO(ctx context.Context, req CFOQueryRequest) (*ai.Analysis, error)
	// CFOReport renders a previously returned analysis as "txt" or "pdf".
	CFOReport(ctx context.Context, req CFOReportRequest) (*File, error)

	// ── Backup ──

	// Backup uploads a snapshot of every store key and returns the object key.
	Backup(ctx context.Context) (string, error)
	WriteBackup(ctx context.Context, w io.Writer) error
	// RestoreBackup loads a snapshot file and returns the number of keys written.
	RestoreBackup(ctx context.Context, r io.Reader) (int, error)
}
