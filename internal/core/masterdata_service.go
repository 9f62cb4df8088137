package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"invoizo/internal/store"
	"invoizo/internal/timeutil"
)

type masterDataService struct {
	store store.Store
}

// NewMasterDataService constructs a MasterDataService over the keyed store.
func NewMasterDataService(s store.Store) MasterDataService {
	return &masterDataService{store: s}
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (s *masterDataService) ListCustomers(ctx context.Context, search string) ([]Customer, error) {
	var customers []Customer
	if err := store.Load(ctx, s.store, store.KeyCustomers, &customers); err != nil {
		return nil, err
	}
	out := make([]Customer, 0, len(customers))
	for _, c := range customers {
		if matchesSearch(search, c.ID, c.Name) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *masterDataService) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	var customers []Customer
	if err := store.Load(ctx, s.store, store.KeyCustomers, &customers); err != nil {
		return nil, err
	}
	i := indexOf(customers, func(c Customer) bool { return c.ID == id })
	if i < 0 {
		return nil, notFoundf("customer %s not found", id)
	}
	return &customers[i], nil
}

func (s *masterDataService) CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error) {
	if err := validateCustomer(&input); err != nil {
		return nil, err
	}
	var created Customer
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var customers []Customer
		if err := store.Load(ctx, tx, store.KeyCustomers, &customers); err != nil {
			return err
		}
		created = Customer{ID: nextSeqID(customerIDs(customers), "", 3)}
		applyCustomerInput(&created, input)
		customers = append(customers, created)
		return store.Save(ctx, tx, store.KeyCustomers, customers)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &created, nil
}

func (s *masterDataService) UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*Customer, error) {
	if err := validateCustomer(&input); err != nil {
		return nil, err
	}
	var updated Customer
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var customers []Customer
		if err := store.Load(ctx, tx, store.KeyCustomers, &customers); err != nil {
			return err
		}
		i := indexOf(customers, func(c Customer) bool { return c.ID == id })
		if i < 0 {
			return notFoundf("customer %s not found", id)
		}
		applyCustomerInput(&customers[i], input)
		updated = customers[i]
		return store.Save(ctx, tx, store.KeyCustomers, customers)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update customer %s: %w", id, err)
	}
	return &updated, nil
}

func (s *masterDataService) DeleteCustomer(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.store, store.KeyCustomers, "customer", id, func(c Customer) string { return c.ID })
}

func validateCustomer(in *CustomerInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return validationf("Customer name is required")
	}
	switch in.Category {
	case "":
		in.Category = "wholesale"
	case "regular", "vip", "wholesale":
	default:
		return validationf("Unknown customer category %q", in.Category)
	}
	return nil
}

// applyCustomerInput copies editable fields; Balance stays derived.
func applyCustomerInput(c *Customer, in CustomerInput) {
	c.Name = in.Name
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
	c.State = in.State
	c.Category = in.Category
	c.CreditLimit = in.CreditLimit
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (s *masterDataService) ListSuppliers(ctx context.Context, search string) ([]Supplier, error) {
	var suppliers []Supplier
	if err := store.Load(ctx, s.store, store.KeySuppliers, &suppliers); err != nil {
		return nil, err
	}
	out := make([]Supplier, 0, len(suppliers))
	for _, sp := range suppliers {
		if matchesSearch(search, sp.ID, sp.Name, sp.City) {
			out = append(out, sp)
		}
	}
	return out, nil
}

func (s *masterDataService) GetSupplier(ctx context.Context, id string) (*Supplier, error) {
	var suppliers []Supplier
	if err := store.Load(ctx, s.store, store.KeySuppliers, &suppliers); err != nil {
		return nil, err
	}
	i := indexOf(suppliers, func(sp Supplier) bool { return sp.ID == id })
	if i < 0 {
		return nil, notFoundf("supplier %s not found", id)
	}
	return &suppliers[i], nil
}

func (s *masterDataService) CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationf("Supplier name is required")
	}
	var created Supplier
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var suppliers []Supplier
		if err := store.Load(ctx, tx, store.KeySuppliers, &suppliers); err != nil {
			return err
		}
		created = Supplier{
			ID:      nextSeqID(supplierIDs(suppliers), "", 3),
			Name:    input.Name,
			Contact: input.Contact,
			Address: input.Address,
			City:    input.City,
		}
		suppliers = append(suppliers, created)
		return store.Save(ctx, tx, store.KeySuppliers, suppliers)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	return &created, nil
}

func (s *masterDataService) UpdateSupplier(ctx context.Context, id string, input SupplierInput) (*Supplier, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationf("Supplier name is required")
	}
	var updated Supplier
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var suppliers []Supplier
		if err := store.Load(ctx, tx, store.KeySuppliers, &suppliers); err != nil {
			return err
		}
		i := indexOf(suppliers, func(sp Supplier) bool { return sp.ID == id })
		if i < 0 {
			return notFoundf("supplier %s not found", id)
		}
		suppliers[i].Name = input.Name
		suppliers[i].Contact = input.Contact
		suppliers[i].Address = input.Address
		suppliers[i].City = input.City
		updated = suppliers[i]
		return store.Save(ctx, tx, store.KeySuppliers, suppliers)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update supplier %s: %w", id, err)
	}
	return &updated, nil
}

func (s *masterDataService) DeleteSupplier(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.store, store.KeySuppliers, "supplier", id, func(sp Supplier) string { return sp.ID })
}

// ── Products ──────────────────────────────────────────────────────────────────

func (s *masterDataService) ListProducts(ctx context.Context, search string) ([]Product, error) {
	var products []Product
	if err := store.Load(ctx, s.store, store.KeyProducts, &products); err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if matchesSearch(search, p.ID, p.Name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *masterDataService) GetProduct(ctx context.Context, id string) (*Product, error) {
	var products []Product
	if err := store.Load(ctx, s.store, store.KeyProducts, &products); err != nil {
		return nil, err
	}
	i := indexOf(products, func(p Product) bool { return p.ID == id })
	if i < 0 {
		return nil, notFoundf("product %s not found", id)
	}
	return &products[i], nil
}

func (s *masterDataService) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationf("Product name is required")
	}
	var created Product
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if err := checkGroupExists(ctx, tx, input.Group); err != nil {
			return err
		}
		created = Product{
			ID:          nextSeqID(productIDs(products), "", 3),
			Stock:       input.Stock,
			LastUpdated: timeutil.Now().Format(time.RFC3339),
		}
		applyProductInput(&created, input)
		products = append(products, created)
		return store.Save(ctx, tx, store.KeyProducts, products)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &created, nil
}

func (s *masterDataService) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationf("Product name is required")
	}
	var updated Product
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		i := indexOf(products, func(p Product) bool { return p.ID == id })
		if i < 0 {
			return notFoundf("product %s not found", id)
		}
		if err := checkGroupExists(ctx, tx, input.Group); err != nil {
			return err
		}
		applyProductInput(&products[i], input)
		updated = products[i]
		return store.Save(ctx, tx, store.KeyProducts, products)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}
	return &updated, nil
}

func (s *masterDataService) DeleteProduct(ctx context.Context, id string) error {
	return deleteRecord(ctx, s.store, store.KeyProducts, "product", id, func(p Product) string { return p.ID })
}

// applyProductInput copies editable fields. Stock and the last* purchase
// fields are owned by billing.
func applyProductInput(p *Product, in ProductInput) {
	p.Name = in.Name
	p.Rate = in.Rate
	p.Packaging = in.Packaging
	p.MRP = in.MRP
	p.BuyingRate = in.BuyingRate
	p.SellingRate = in.SellingRate
	p.Group = in.Group
}

func checkGroupExists(ctx context.Context, r store.Reader, groupID string) error {
	if groupID == "" {
		return nil
	}
	var groups []Group
	if err := store.Load(ctx, r, store.KeyProductGroups, &groups); err != nil {
		return err
	}
	if indexOf(groups, func(g Group) bool { return g.ID == groupID }) < 0 {
		return validationf("Unknown product group %s", groupID)
	}
	return nil
}

// ── Groups ────────────────────────────────────────────────────────────────────

func (s *masterDataService) ListGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := store.Load(ctx, s.store, store.KeyProductGroups, &groups); err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups, nil
}

func (s *masterDataService) CreateGroup(ctx context.Context, input GroupInput) (*Group, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationf("Group name is required")
	}
	var created Group
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var groups []Group
		if err := store.Load(ctx, tx, store.KeyProductGroups, &groups); err != nil {
			return err
		}
		created = Group{
			ID:          nextSeqID(groupIDs(groups), "G", 3),
			Name:        input.Name,
			Description: input.Description,
		}
		groups = append(groups, created)
		return store.Save(ctx, tx, store.KeyProductGroups, groups)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return &created, nil
}

func (s *masterDataService) UpdateGroup(ctx context.Context, id string, input GroupInput) (*Group, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, validationf("Group name is required")
	}
	var updated Group
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var groups []Group
		if err := store.Load(ctx, tx, store.KeyProductGroups, &groups); err != nil {
			return err
		}
		i := indexOf(groups, func(g Group) bool { return g.ID == id })
		if i < 0 {
			return notFoundf("group %s not found", id)
		}
		groups[i].Name = input.Name
		groups[i].Description = input.Description
		updated = groups[i]
		return store.Save(ctx, tx, store.KeyProductGroups, groups)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update group %s: %w", id, err)
	}
	return &updated, nil
}

func (s *masterDataService) DeleteGroup(ctx context.Context, id string) error {
	err := s.store.Update(ctx, func(tx store.Tx) error {
		var products []Product
		if err := store.Load(ctx, tx, store.KeyProducts, &products); err != nil {
			return err
		}
		if indexOf(products, func(p Product) bool { return p.Group == id }) >= 0 {
			return conflictf("This group is being used by products and cannot be deleted.")
		}
		var groups []Group
		if err := store.Load(ctx, tx, store.KeyProductGroups, &groups); err != nil {
			return err
		}
		i := indexOf(groups, func(g Group) bool { return g.ID == id })
		if i < 0 {
			return notFoundf("group %s not found", id)
		}
		groups = append(groups[:i], groups[i+1:]...)
		return store.Save(ctx, tx, store.KeyProductGroups, groups)
	})
	if err != nil {
		return fmt.Errorf("failed to delete group %s: %w", id, err)
	}
	return nil
}

// ── Inventory ─────────────────────────────────────────────────────────────────

func (s *masterDataService) ListInventory(ctx context.Context, search string) ([]InventoryItem, error) {
	products, err := s.ListProducts(ctx, search)
	if err != nil {
		return nil, err
	}
	groups, err := s.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(groups))
	for _, g := range groups {
		names[g.ID] = g.Name
	}

	items := make([]InventoryItem, len(products))
	for i, p := range products {
		items[i] = InventoryItem{
			Product:    p,
			GroupName:  names[p.Group],
			StockValue: Amt(p.Stock.Mul(p.BuyingRate.Decimal)).Round2(),
		}
	}
	return items, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func indexOf[T any](xs []T, pred func(T) bool) int {
	for i, x := range xs {
		if pred(x) {
			return i
		}
	}
	return -1
}

// matchesSearch is a case-insensitive substring match over fields. An empty
// search matches everything.
func matchesSearch(search string, fields ...string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), search) {
			return true
		}
	}
	return false
}

func deleteRecord[T any](ctx context.Context, s store.Store, key, label, id string, idOf func(T) string) error {
	err := s.Update(ctx, func(tx store.Tx) error {
		var records []T
		if err := store.Load(ctx, tx, key, &records); err != nil {
			return err
		}
		i := indexOf(records, func(r T) bool { return idOf(r) == id })
		if i < 0 {
			return notFoundf("%s %s not found", label, id)
		}
		records = append(records[:i], records[i+1:]...)
		return store.Save(ctx, tx, key, records)
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", label, id, err)
	}
	return nil
}
