package core

import (
	"context"

	"invoizo/internal/store"
)

// dataset is every record the read-side reports scan.
type dataset struct {
	customers     []Customer
	suppliers     []Supplier
	products      []Product
	salesBills    []SalesBill
	purchaseBills []PurchaseBill
	entries       []BookEntry
}

func loadDataset(ctx context.Context, r store.Reader) (*dataset, error) {
	d := &dataset{}
	if err := store.Load(ctx, r, store.KeyCustomers, &d.customers); err != nil {
		return nil, err
	}
	if err := store.Load(ctx, r, store.KeySuppliers, &d.suppliers); err != nil {
		return nil, err
	}
	if err := store.Load(ctx, r, store.KeyProducts, &d.products); err != nil {
		return nil, err
	}
	if err := store.Load(ctx, r, store.KeySalesBills, &d.salesBills); err != nil {
		return nil, err
	}
	if err := store.Load(ctx, r, store.KeyPurchaseBills, &d.purchaseBills); err != nil {
		return nil, err
	}
	if err := store.Load(ctx, r, store.KeyBookEntries, &d.entries); err != nil {
		return nil, err
	}
	return d, nil
}

// activeSales drops cancelled bills.
func (d *dataset) activeSales() []SalesBill {
	out := make([]SalesBill, 0, len(d.salesBills))
	for _, b := range d.salesBills {
		if !b.Cancelled {
			out = append(out, b)
		}
	}
	return out
}

func (d *dataset) customer(id string) (Customer, bool) {
	i := indexOf(d.customers, func(c Customer) bool { return c.ID == id })
	if i < 0 {
		return Customer{}, false
	}
	return d.customers[i], true
}

func (d *dataset) supplier(id string) (Supplier, bool) {
	i := indexOf(d.suppliers, func(s Supplier) bool { return s.ID == id })
	if i < 0 {
		return Supplier{}, false
	}
	return d.suppliers[i], true
}
