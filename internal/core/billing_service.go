package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

type billingService struct {
	store store.Store
	now   func() time.Time
}

// NewBillingService constructs a BillingService over the keyed store.
func NewBillingService(s store.Store) BillingService {
	return &billingService{store: s, now: timeutil.Now}
}

func (s *billingService) NextInvoiceNo(ctx context.Context, kind BillKind) (string, error) {
	switch kind {
	case BillSales:
		var bills []SalesBill
		if err := store.Load(ctx, s.store, store.KeySalesBills, &bills); err != nil {
			return "", err
		}
		return nextSeqID(salesInvoiceNos(bills), "", 3), nil
	case BillPurchase:
		var bills []PurchaseBill
		if err := store.Load(ctx, s.store, store.KeyPurchaseBills, &bills); err != nil {
			return "", err
		}
		return nextSeqID(purchaseInvoiceNos(bills), "", 3), nil
	default:
		return "", validationf("unknown bill kind %q", kind)
	}
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func (s *billingService) CreateSalesBill(ctx context.Context, input SalesBillInput) (*SalesBill, error) {
	if err := normalizeSalesInput(&input); err != nil {
		return nil, err
	}
	stamp := s.now().Format(time.RFC3339)

	var bill SalesBill
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		var bills []SalesBill
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeySalesBills, &bills); err != nil {
			return err
		}

		items, total := priceSalesItems(input.Items, products)
		if err := moveStock(products, salesMoves(items), -1, stamp); err != nil {
			return err
		}

		invoiceNo := input.InvoiceNo
		if invoiceNo == "" || containsString(salesInvoiceNos(bills), invoiceNo) {
			invoiceNo = nextSeqID(salesInvoiceNos(bills), "", 3)
		}

		bill = SalesBill{
			ID:          uuid.NewString(),
			InvoiceNo:   invoiceNo,
			Date:        input.Date,
			PaymentType: input.PaymentType,
			CustCode:    input.CustCode,
			CustName:    input.CustName,
			Address:     input.Address,
			Through:     input.Through,
			Items:       items,
			Total:       total,
			Timestamp:   stamp,
		}
		if err := fillCustomerName(ctx, tx, &bill); err != nil {
			return err
		}
		bills = append(bills, bill)

		if err := store.Save(ctx, tx, store.KeyProducts, products); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.KeySalesBills, bills)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sales bill: %w", err)
	}
	return &bill, nil
}

func (s *billingService) UpdateSalesBill(ctx context.Context, id string, input SalesBillInput) (*SalesBill, error) {
	if err := normalizeSalesInput(&input); err != nil {
		return nil, err
	}
	stamp := s.now().Format(time.RFC3339)

	var bill SalesBill
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		var bills []SalesBill
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeySalesBills, &bills); err != nil {
			return err
		}
		i := indexOf(bills, func(b SalesBill) bool { return b.ID == id })
		if i < 0 {
			return notFoundf("sales bill %s not found", id)
		}
		old := bills[i]
		if old.Cancelled {
			return validationf("Cancelled bill #%s cannot be edited", old.InvoiceNo)
		}

		// Give back what the old version took before charging the new one.
		if err := moveStock(products, salesMoves(old.Items), +1, stamp); err != nil {
			return err
		}
		items, total := priceSalesItems(input.Items, products)
		if err := moveStock(products, salesMoves(items), -1, stamp); err != nil {
			return err
		}

		invoiceNo := input.InvoiceNo
		if invoiceNo == "" {
			invoiceNo = old.InvoiceNo
		}
		for j, b := range bills {
			if j != i && b.InvoiceNo == invoiceNo {
				return conflictf("Invoice number %s is already used", invoiceNo)
			}
		}

		bill = old
		bill.InvoiceNo = invoiceNo
		bill.Date = input.Date
		bill.PaymentType = input.PaymentType
		bill.CustCode = input.CustCode
		bill.CustName = input.CustName
		bill.Address = input.Address
		bill.Through = input.Through
		bill.Items = items
		bill.Total = total
		bill.Timestamp = stamp
		if err := fillCustomerName(ctx, tx, &bill); err != nil {
			return err
		}
		bills[i] = bill

		if err := store.Save(ctx, tx, store.KeyProducts, products); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.KeySalesBills, bills)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update sales bill %s: %w", id, err)
	}
	return &bill, nil
}

func (s *billingService) DeleteSalesBill(ctx context.Context, id string) error {
	stamp := s.now().Format(time.RFC3339)
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		var bills []SalesBill
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeySalesBills, &bills); err != nil {
			return err
		}
		i := indexOf(bills, func(b SalesBill) bool { return b.ID == id })
		if i < 0 {
			return notFoundf("sales bill %s not found", id)
		}
		if !bills[i].Cancelled {
			if err := moveStock(products, salesMoves(bills[i].Items), +1, stamp); err != nil {
				return err
			}
		}
		bills = append(bills[:i], bills[i+1:]...)

		if err := store.Save(ctx, tx, store.KeyProducts, products); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.KeySalesBills, bills)
	})
	if err != nil {
		return fmt.Errorf("failed to delete sales bill %s: %w", id, err)
	}
	return nil
}

func (s *billingService) CancelSalesBill(ctx context.Context, id string) (*SalesBill, error) {
	return s.setCancelled(ctx, id, true)
}

func (s *billingService) RestoreSalesBill(ctx context.Context, id string) (*SalesBill, error) {
	return s.setCancelled(ctx, id, false)
}

// setCancelled flips the cancelled flag and moves stock accordingly. Setting
// the flag it already has is a no-op.
func (s *billingService) setCancelled(ctx context.Context, id string, cancelled bool) (*SalesBill, error) {
	stamp := s.now().Format(time.RFC3339)
	var bill SalesBill
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		var bills []SalesBill
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeySalesBills, &bills); err != nil {
			return err
		}
		i := indexOf(bills, func(b SalesBill) bool { return b.ID == id })
		if i < 0 {
			return notFoundf("sales bill %s not found", id)
		}
		if bills[i].Cancelled == cancelled {
			bill = bills[i]
			return nil
		}

		sign := int64(-1)
		if cancelled {
			sign = +1
		}
		if err := moveStock(products, salesMoves(bills[i].Items), sign, stamp); err != nil {
			return err
		}
		bills[i].Cancelled = cancelled
		bill = bills[i]

		if err := store.Save(ctx, tx, store.KeyProducts, products); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.KeySalesBills, bills)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update sales bill %s: %w", id, err)
	}
	return &bill, nil
}

func (s *billingService) MarkSalesBillReturned(ctx context.Context, id string) (*SalesBill, error) {
	var bill SalesBill
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var bills []SalesBill
		if err := store.Load(ctx, tx, store.KeySalesBills, &bills); err != nil {
			return err
		}
		i := indexOf(bills, func(b SalesBill) bool { return b.ID == id })
		if i < 0 {
			return notFoundf("sales bill %s not found", id)
		}
		bills[i].Returned = true
		bill = bills[i]
		return store.Save(ctx, tx, store.KeySalesBills, bills)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark sales bill %s returned: %w", id, err)
	}
	return &bill, nil
}

func (s *billingService) ListSalesBills(ctx context.Context, filter BillFilter) ([]SalesBill, error) {
	var bills []SalesBill
	if err := store.Load(ctx, s.store, store.KeySalesBills, &bills); err != nil {
		return nil, err
	}
	period := timeutil.Period{From: filter.From, To: filter.To}
	out := make([]SalesBill, 0, len(bills))
	for _, b := range bills {
		if period.Contains(b.Date) && matchesSearch(filter.Search, b.InvoiceNo, b.CustName, b.CustCode) {
			out = append(out, b)
		}
	}
	return sortByDate(out, func(b SalesBill) string { return b.Date }), nil
}

func (s *billingService) GetSalesBill(ctx context.Context, id string) (*SalesBill, error) {
	var bills []SalesBill
	if err := store.Load(ctx, s.store, store.KeySalesBills, &bills); err != nil {
		return nil, err
	}
	i := indexOf(bills, func(b SalesBill) bool { return b.ID == id })
	if i < 0 {
		return nil, notFoundf("sales bill %s not found", id)
	}
	return &bills[i], nil
}

func normalizeSalesInput(in *SalesBillInput) error {
	if in.Date == "" {
		in.Date = timeutil.Today()
	} else if _, err := timeutil.ParseDate(in.Date); err != nil {
		return validationf("Invalid bill date %q", in.Date)
	}
	switch in.PaymentType {
	case "":
		in.PaymentType = PaymentCash
	case PaymentCash, PaymentCredit:
	default:
		return validationf("Payment type must be cash or credit")
	}
	if in.PaymentType == PaymentCredit && in.CustCode == "" {
		return validationf("Please select a customer for a credit bill")
	}

	items := in.Items[:0:0]
	for _, it := range in.Items {
		if it.Code == "" && it.Name == "" && it.Qty.IsZero() && it.Case.IsZero() {
			continue
		}
		if strings.TrimSpace(it.Code) == "" || strings.TrimSpace(it.Name) == "" {
			return validationf("Please fill in all product details")
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return validationf("Please fill in all product details")
	}
	in.Items = items
	return nil
}

// priceSalesItems fills piecesPerCase from the product when the line has
// none and computes amount = pieces × rate × (1 − disc/100).
func priceSalesItems(items []SalesItem, products []Product) ([]SalesItem, Amount) {
	hundred := decimal.NewFromInt(100)
	out := make([]SalesItem, len(items))
	total := decimal.Zero
	for i, it := range items {
		it.PiecesPerCase = piecesPerCase(it.PiecesPerCase, it.Code, products)
		pieces := itemPieces(it.Qty, it.Case, it.PiecesPerCase)
		factor := decimal.NewFromInt(1).Sub(it.Disc.Div(hundred))
		it.Amount = Amt(pieces.Mul(it.Rate.Decimal).Mul(factor)).Round2()
		total = total.Add(it.Amount.Decimal)
		out[i] = it
	}
	return out, Amt(total).Round2()
}

func fillCustomerName(ctx context.Context, r store.Reader, bill *SalesBill) error {
	if bill.CustCode == "" || bill.CustName != "" {
		return nil
	}
	var customers []Customer
	if err := store.Load(ctx, r, store.KeyCustomers, &customers); err != nil {
		return err
	}
	if i := indexOf(customers, func(c Customer) bool { return c.ID == bill.CustCode }); i >= 0 {
		bill.CustName = customers[i].Name
		if bill.Address == "" {
			bill.Address = customers[i].Address
		}
	}
	return nil
}

// ── Purchases ─────────────────────────────────────────────────────────────────

func (s *billingService) CreatePurchaseBill(ctx context.Context, input PurchaseBillInput) (*PurchaseBill, error) {
	if err := normalizePurchaseInput(&input); err != nil {
		return nil, err
	}
	stamp := s.now().Format(time.RFC3339)

	var bill PurchaseBill
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		var bills []PurchaseBill
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeyPurchaseBills, &bills); err != nil {
			return err
		}

		items, subtotal := pricePurchaseItems(input.Items, products)
		invoiceNo := input.InvoiceNo
		if invoiceNo == "" || containsString(purchaseInvoiceNos(bills), invoiceNo) {
			invoiceNo = nextSeqID(purchaseInvoiceNos(bills), "", 3)
		}

		bill = PurchaseBill{
			ID:                  uuid.NewString(),
			InvoiceNo:           invoiceNo,
			SupplierInvoiceNo:   input.SupplierInvoiceNo,
			SupplierInvoiceDate: input.SupplierInvoiceDate,
			Date:                input.Date,
			SupplierCode:        input.SupplierCode,
			SupplierName:        input.SupplierName,
			Address:             input.Address,
			Carton:              input.Carton,
			Freight:             input.Freight,
			Tax:                 input.Tax,
			Items:               items,
			Total:               Sum(subtotal, input.Freight, input.Tax).Round2(),
			Timestamp:           stamp,
		}
		if err := fillSupplierName(ctx, tx, &bill); err != nil {
			return err
		}

		if err := moveStock(products, purchaseMoves(items), +1, stamp); err != nil {
			return err
		}
		recordLastPurchase(products, bill)
		bills = append(bills, bill)

		if err := store.Save(ctx, tx, store.KeyProducts, products); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.KeyPurchaseBills, bills)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create purchase bill: %w", err)
	}
	return &bill, nil
}

func (s *billingService) UpdatePurchaseBill(ctx context.Context, id string, input PurchaseBillInput) (*PurchaseBill, error) {
	if err := normalizePurchaseInput(&input); err != nil {
		return nil, err
	}
	stamp := s.now().Format(time.RFC3339)

	var bill PurchaseBill
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		var bills []PurchaseBill
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeyPurchaseBills, &bills); err != nil {
			return err
		}
		i := indexOf(bills, func(b PurchaseBill) bool { return b.ID == id })
		if i < 0 {
			return notFoundf("purchase bill %s not found", id)
		}
		old := bills[i]

		// Apply the new receipt before removing the old one so that stock
		// already sold from the old receipt stays covered.
		items, subtotal := pricePurchaseItems(input.Items, products)
		if err := moveStock(products, purchaseMoves(items), +1, stamp); err != nil {
			return err
		}
		if err := moveStock(products, purchaseMoves(old.Items), -1, stamp); err != nil {
			return err
		}

		invoiceNo := input.InvoiceNo
		if invoiceNo == "" {
			invoiceNo = old.InvoiceNo
		}
		for j, b := range bills {
			if j != i && b.InvoiceNo == invoiceNo {
				return conflictf("Invoice number %s is already used", invoiceNo)
			}
		}

		bill = old
		bill.InvoiceNo = invoiceNo
		bill.SupplierInvoiceNo = input.SupplierInvoiceNo
		bill.SupplierInvoiceDate = input.SupplierInvoiceDate
		bill.Date = input.Date
		bill.SupplierCode = input.SupplierCode
		bill.SupplierName = input.SupplierName
		bill.Address = input.Address
		bill.Carton = input.Carton
		bill.Freight = input.Freight
		bill.Tax = input.Tax
		bill.Items = items
		bill.Total = Sum(subtotal, input.Freight, input.Tax).Round2()
		bill.Timestamp = stamp
		if err := fillSupplierName(ctx, tx, &bill); err != nil {
			return err
		}
		recordLastPurchase(products, bill)
		bills[i] = bill

		if err := store.Save(ctx, tx, store.KeyProducts, products); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.KeyPurchaseBills, bills)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase bill %s: %w", id, err)
	}
	return &bill, nil
}

func (s *billingService) DeletePurchaseBill(ctx context.Context, id string) error {
	stamp := s.now().Format(time.RFC3339)
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		var bills []PurchaseBill
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if err := store.Load(ctx, tx, store.KeyPurchaseBills, &bills); err != nil {
			return err
		}
		i := indexOf(bills, func(b PurchaseBill) bool { return b.ID == id })
		if i < 0 {
			return notFoundf("purchase bill %s not found", id)
		}
		if err := moveStock(products, purchaseMoves(bills[i].Items), -1, stamp); err != nil {
			return err
		}
		bills = append(bills[:i], bills[i+1:]...)

		if err := store.Save(ctx, tx, store.KeyProducts, products); err != nil {
			return err
		}
		return store.Save(ctx, tx, store.KeyPurchaseBills, bills)
	})
	if err != nil {
		return fmt.Errorf("failed to delete purchase bill %s: %w", id, err)
	}
	return nil
}

func (s *billingService) ListPurchaseBills(ctx context.Context, filter BillFilter) ([]PurchaseBill, error) {
	var bills []PurchaseBill
	if err := store.Load(ctx, s.store, store.KeyPurchaseBills, &bills); err != nil {
		return nil, err
	}
	period := timeutil.Period{From: filter.From, To: filter.To}
	out := make([]PurchaseBill, 0, len(bills))
	for _, b := range bills {
		if period.Contains(b.Date) && matchesSearch(filter.Search, b.InvoiceNo, b.SupplierName, b.SupplierCode, b.SupplierInvoiceNo) {
			out = append(out, b)
		}
	}
	return sortByDate(out, func(b PurchaseBill) string { return b.Date }), nil
}

func (s *billingService) GetPurchaseBill(ctx context.Context, id string) (*PurchaseBill, error) {
	var bills []PurchaseBill
	if err := store.Load(ctx, s.store, store.KeyPurchaseBills, &bills); err != nil {
		return nil, err
	}
	i := indexOf(bills, func(b PurchaseBill) bool { return b.ID == id })
	if i < 0 {
		return nil, notFoundf("purchase bill %s not found", id)
	}
	return &bills[i], nil
}

func normalizePurchaseInput(in *PurchaseBillInput) error {
	if strings.TrimSpace(in.SupplierCode) == "" || strings.TrimSpace(in.Date) == "" {
		return validationf("Please fill in all required fields")
	}
	if _, err := timeutil.ParseDate(in.Date); err != nil {
		return validationf("Invalid bill date %q", in.Date)
	}
	items := in.Items[:0:0]
	for _, it := range in.Items {
		if it.Code == "" && it.Name == "" && it.Qty.IsZero() && it.Case.IsZero() {
			continue
		}
		if strings.TrimSpace(it.Code) == "" || strings.TrimSpace(it.Name) == "" {
			return validationf("Please fill in all product details")
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return validationf("Please fill in all product details")
	}
	in.Items = items
	return nil
}

func pricePurchaseItems(items []PurchaseItem, products []Product) ([]PurchaseItem, Amount) {
	out := make([]PurchaseItem, len(items))
	total := decimal.Zero
	for i, it := range items {
		it.PiecesPerCase = piecesPerCase(it.PiecesPerCase, it.Code, products)
		pieces := itemPieces(it.Qty, it.Case, it.PiecesPerCase)
		it.Amount = Amt(pieces.Mul(it.Rate.Decimal)).Round2()
		total = total.Add(it.Amount.Decimal)
		out[i] = it
	}
	return out, Amt(total)
}

func fillSupplierName(ctx context.Context, r store.Reader, bill *PurchaseBill) error {
	if bill.SupplierName != "" {
		return nil
	}
	var suppliers []Supplier
	if err := store.Load(ctx, r, store.KeySuppliers, &suppliers); err != nil {
		return err
	}
	if i := indexOf(suppliers, func(sp Supplier) bool { return sp.ID == bill.SupplierCode }); i >= 0 {
		bill.SupplierName = suppliers[i].Name
		if bill.Address == "" {
			bill.Address = suppliers[i].Address
		}
	}
	return nil
}

func recordLastPurchase(products []Product, bill PurchaseBill) {
	for _, it := range bill.Items {
		i := indexOf(products, func(p Product) bool { return p.ID == it.Code })
		if i < 0 {
			continue
		}
		products[i].LastSupplier = bill.SupplierName
		products[i].LastPurchaseDate = bill.Date
		products[i].LastPurchaseRate = it.Rate
	}
}

// ── Stock ─────────────────────────────────────────────────────────────────────

type stockMove struct {
	code   string
	pieces decimal.Decimal
}

func salesMoves(items []SalesItem) []stockMove {
	moves := make([]stockMove, len(items))
	for i, it := range items {
		moves[i] = stockMove{code: it.Code, pieces: itemPieces(it.Qty, it.Case, it.PiecesPerCase)}
	}
	return moves
}

func purchaseMoves(items []PurchaseItem) []stockMove {
	moves := make([]stockMove, len(items))
	for i, it := range items {
		moves[i] = stockMove{code: it.Code, pieces: itemPieces(it.Qty, it.Case, it.PiecesPerCase)}
	}
	return moves
}

// moveStock adds sign × pieces to each referenced product. Unknown product
// codes are skipped. A decrement that would leave stock below zero fails the
// whole move; callers run inside a store transaction so nothing is written.
func moveStock(products []Product, moves []stockMove, sign int64, stamp string) error {
	for _, m := range moves {
		i := indexOf(products, func(p Product) bool { return p.ID == m.code })
		if i < 0 {
			continue
		}
		current := products[i].Stock.Decimal
		next := current.Add(m.pieces.Mul(decimal.NewFromInt(sign)))
		if sign < 0 && next.IsNegative() {
			return validationf("Insufficient stock for %s. Available: %s, Required: %s",
				products[i].Name, current.String(), m.pieces.String())
		}
		products[i].Stock = Amt(next)
		products[i].LastUpdated = stamp
	}
	return nil
}

// itemPieces is qty + case × piecesPerCase.
func itemPieces(qty, cases, perCase Amount) decimal.Decimal {
	return qty.Add(cases.Mul(perCase.Decimal))
}

func piecesPerCase(given Amount, code string, products []Product) Amount {
	if given.IsPositive() {
		return given
	}
	if i := indexOf(products, func(p Product) bool { return p.ID == code }); i >= 0 {
		return products[i].PiecesPerCase()
	}
	return AmountFromInt(1)
}

// ── Invoice numbers ───────────────────────────────────────────────────────────

func salesInvoiceNos(bills []SalesBill) []string {
	nos := make([]string, len(bills))
	for i, b := range bills {
		nos[i] = b.InvoiceNo
	}
	return nos
}

func purchaseInvoiceNos(bills []PurchaseBill) []string {
	nos := make([]string, len(bills))
	for i, b := range bills {
		nos[i] = b.InvoiceNo
	}
	return nos
}

func containsString(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
