package core

// Records are stored as JSON arrays under their store key. Field names follow
// the stored layout, so existing data decodes unchanged.

type PaymentType string

const (
	PaymentCash   PaymentType = "cash"
	PaymentCredit PaymentType = "credit"
)

type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	State       string `json:"state,omitempty"`
	Category    string `json:"category"`
	CreditLimit Amount `json:"creditLimit"`
	// Balance is derived by the book-keeping save and never edited directly.
	Balance Amount `json:"balance"`
}

type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
	City    string `json:"city"`
	Balance Amount `json:"balance"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Rate        Amount `json:"rate"`
	Packaging   string `json:"packaging"`
	MRP         Amount `json:"mrp"`
	BuyingRate  Amount `json:"buyingRate"`
	SellingRate Amount `json:"sellingRate"`
	Group       string `json:"group"`
	Stock       Amount `json:"stock"`

	LastUpdated      string `json:"lastUpdated,omitempty"`
	LastSupplier     string `json:"lastSupplier,omitempty"`
	LastPurchaseDate string `json:"lastPurchaseDate,omitempty"`
	LastPurchaseRate Amount `json:"lastPurchaseRate"`
}

// PiecesPerCase is the packaging field read as a number, defaulting to 1.
func (p Product) PiecesPerCase() Amount {
	n := ParseAmount(p.Packaging)
	if !n.IsPositive() {
		return AmountFromInt(1)
	}
	return n
}

type Group struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SalesItem struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Qty           Amount `json:"qty"`
	Case          Amount `json:"case"`
	PiecesPerCase Amount `json:"piecesPerCase"`
	Disc          Amount `json:"disc"`
	Rate          Amount `json:"rate"`
	Amount        Amount `json:"amount"`
}

type SalesBill struct {
	ID          string      `json:"id"`
	InvoiceNo   string      `json:"invoiceNo"`
	Date        string      `json:"date"`
	PaymentType PaymentType `json:"paymentType"`
	CustCode    string      `json:"custCode"`
	CustName    string      `json:"custName"`
	Address     string      `json:"address"`
	Through     string      `json:"through"`
	Items       []SalesItem `json:"items"`
	Total       Amount      `json:"total"`
	Timestamp   string      `json:"timestamp"`
	Cancelled   bool        `json:"cancelled,omitempty"`
	Returned    bool        `json:"returned,omitempty"`
}

type PurchaseItem struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Qty           Amount `json:"qty"`
	Case          Amount `json:"case"`
	PiecesPerCase Amount `json:"piecesPerCase"`
	Rate          Amount `json:"rate"`
	Amount        Amount `json:"amount"`
}

type PurchaseBill struct {
	ID                  string         `json:"id"`
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
	Total               Amount         `json:"total"`
	Timestamp           string         `json:"timestamp"`
}

// BookEntry is one manual journal line. CustCode/SupplierCode are set by the
// book-keeping save when the account code names a party.
type BookEntry struct {
	ID           string `json:"id"`
	SlNo         int    `json:"slNo"`
	Date         string `json:"date"`
	AcCode       string `json:"acCode"`
	AcHead       string `json:"acHead"`
	Narration    string `json:"narration"`
	Credit       Amount `json:"credit"`
	Debit        Amount `json:"debit"`
	CustCode     string `json:"custCode,omitempty"`
	SupplierCode string `json:"supplierCode,omitempty"`
}

type Business struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	Country          string `json:"country"`
	Currency         string `json:"currency"`
	RegistrationDate string `json:"registrationDate"`
}

type CashPrintSettings struct {
	PaperSize        string `json:"paperSize"`
	HeaderText       string `json:"headerText"`
	ShowLogo         bool   `json:"showLogo"`
	ShowAddress      bool   `json:"showAddress"`
	ShowPhone        bool   `json:"showPhone"`
	ShowEmail        bool   `json:"showEmail"`
	ShowItemDetails  bool   `json:"showItemDetails"`
	ShowTotalInWords bool   `json:"showTotalInWords"`
	FooterText       string `json:"footerText"`
	Copies           int    `json:"copies"`
}

type CreditPrintSettings struct {
	PaperSize              string `json:"paperSize"`
	HeaderText             string `json:"headerText"`
	ShowLogo               bool   `json:"showLogo"`
	ShowAddress            bool   `json:"showAddress"`
	ShowPhone              bool   `json:"showPhone"`
	ShowEmail              bool   `json:"showEmail"`
	ShowItemDetails        bool   `json:"showItemDetails"`
	ShowTotalInWords       bool   `json:"showTotalInWords"`
	ShowDueDate            bool   `json:"showDueDate"`
	ShowTermsAndConditions bool   `json:"showTermsAndConditions"`
	TermsAndConditions     string `json:"termsAndConditions"`
	FooterText             string `json:"footerText"`
	Copies                 int    `json:"copies"`
}

type PrinterSettings struct {
	Cash   CashPrintSettings   `json:"cash"`
	Credit CreditPrintSettings `json:"credit"`
}

func DefaultPrinterSettings() PrinterSettings {
	return PrinterSettings{
		Cash: CashPrintSettings{
			PaperSize:        "thermal-80mm",
			ShowLogo:         true,
			ShowAddress:      true,
			ShowPhone:        true,
			ShowEmail:        true,
			ShowItemDetails:  true,
			ShowTotalInWords: true,
			FooterText:       "Thank you for your business!",
			Copies:           1,
		},
		Credit: CreditPrintSettings{
			PaperSize:              "a4",
			ShowLogo:               true,
			ShowAddress:            true,
			ShowPhone:              true,
			ShowEmail:              true,
			ShowItemDetails:        true,
			ShowTotalInWords:       true,
			ShowDueDate:            true,
			ShowTermsAndConditions: true,
			TermsAndConditions:     "1. Goods once sold will not be taken back\n2. Interest @18% p.a. will be charged on overdue bills",
			Copies:                 2,
		},
	}
}

type AuditFrequency string

const (
	AuditDaily   AuditFrequency = "daily"
	AuditWeekly  AuditFrequency = "weekly"
	AuditMonthly AuditFrequency = "monthly"
)

type AuditCategories struct {
	Inventory bool `json:"inventory"`
	Sales     bool `json:"sales"`
	Purchases bool `json:"purchases"`
	Payments  bool `json:"payments"`
}

type AuditThresholds struct {
	StockVariance Amount `json:"stockVariance"`
	PaymentDelay  Amount `json:"paymentDelay"`
	CreditLimit   Amount `json:"creditLimit"`
}

type AuditSettings struct {
	Enabled    bool            `json:"enabled"`
	AutoAudit  bool            `json:"autoAudit"`
	Frequency  AuditFrequency  `json:"frequency"`
	Categories AuditCategories `json:"categories"`
	Thresholds AuditThresholds `json:"thresholds"`
}

func DefaultAuditSettings() AuditSettings {
	return AuditSettings{
		Enabled:    true,
		AutoAudit:  true,
		Frequency:  AuditMonthly,
		Categories: AuditCategories{Inventory: true, Sales: true, Purchases: true, Payments: true},
		Thresholds: AuditThresholds{
			StockVariance: AmountFromInt(5),
			PaymentDelay:  AmountFromInt(30),
			CreditLimit:   AmountFromInt(100000),
		},
	}
}

type NotificationType string

const (
	NotifyPaymentDue      NotificationType = "payment_due"
	NotifyPaymentReceived NotificationType = "payment_received"
	NotifyCreditLimit     NotificationType = "credit_limit"
)

type NotificationData struct {
	Amount       *Amount `json:"amount,omitempty"`
	CustomerID   string  `json:"customerId,omitempty"`
	CustomerName string  `json:"customerName,omitempty"`
	SupplierID   string  `json:"supplierId,omitempty"`
	SupplierName string  `json:"supplierName,omitempty"`
	DueDate      string  `json:"dueDate,omitempty"`
}

type Notification struct {
	ID      string            `json:"id"`
	Type    NotificationType  `json:"type"`
	Title   string            `json:"title"`
	Message string            `json:"message"`
	Date    string            `json:"date"`
	Read    bool              `json:"read"`
	Data    *NotificationData `json:"data,omitempty"`
}
