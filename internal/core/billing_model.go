package core

import "context"

type BillKind string

const (
	BillSales    BillKind = "sales"
	BillPurchase BillKind = "purchase"
)

type SalesBillInput struct {
	InvoiceNo   string      `json:"invoiceNo"`
	Date        string      `json:"date"`
	PaymentType PaymentType `json:"paymentType"`
	CustCode    string      `json:"custCode"`
	CustName    string      `json:"custName"`
	Address     string      `json:"address"`
	Through     string      `json:"through"`
	Items       []SalesItem `json:"items"`
}

type PurchaseBillInput struct {
	InvoiceNo           string         `json:"invoiceNo"`
	SupplierInvoiceNo   string         `json:"supplierInvoiceNo"`
	SupplierInvoiceDate string         `json:"supplierInvoiceDate"`
	Date                string         `json:"date"`
	SupplierCode        string         `json:"supplierCode"`
	SupplierName        string         `json:"supplierName"`
	Address             string         `json:"address"`
	Carton              Amount         `json:"carton"`
	Freight             Amount         `json:"freight"`
	Tax                 Amount         `json:"tax"`
	Items               []PurchaseItem `json:"items"`
}

// BillFilter narrows bill listings. Empty fields do not filter.
type BillFilter struct {
	From   string
	To     string
	Search string
}

// BillingService records sales and purchase bills and keeps product stock in
// step with them. Every bill write and its stock change commit together.
type BillingService interface {
	NextInvoiceNo(ctx context.Context, kind BillKind) (string, error)

	// CreateSalesBill prices the items, decrements stock and stores the bill.
	// It fails without writing anything when any product lacks stock.
	CreateSalesBill(ctx context.Context, input SalesBillInput) (*SalesBill, error)
	UpdateSalesBill(ctx context.Context, id string, input SalesBillInput) (*SalesBill, error)
	DeleteSalesBill(ctx context.Context, id string) error
	CancelSalesBill(ctx context.Context, id string) (*SalesBill, error)
	// RestoreSalesBill reverses a cancellation, taking the stock again.
	RestoreSalesBill(ctx context.Context, id string) (*SalesBill, error)
	MarkSalesBillReturned(ctx context.Context, id string) (*SalesBill, error)
	ListSalesBills(ctx context.Context, filter BillFilter) ([]SalesBill, error)
	GetSalesBill(ctx context.Context, id string) (*SalesBill, error)

	CreatePurchaseBill(ctx context.Context, input PurchaseBillInput) (*PurchaseBill, error)
	UpdatePurchaseBill(ctx context.Context, id string, input PurchaseBillInput) (*PurchaseBill, error)
	DeletePurchaseBill(ctx context.Context, id string) error
	ListPurchaseBills(ctx context.Context, filter BillFilter) ([]PurchaseBill, error)
	GetPurchaseBill(ctx context.Context, id string) (*PurchaseBill, error)
}
