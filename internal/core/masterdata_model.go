package core

import "context"

type CustomerInput struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	State       string `json:"state"`
	Category    string `json:"category"`
	CreditLimit Amount `json:"creditLimit"`
}

type SupplierInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// ProductInput holds the editable product fields. Stock is the opening stock
// and is only honoured on create; afterwards bills own the counter.
type ProductInput struct {
	Name        string `json:"name"`
	Rate        Amount `json:"rate"`
	Packaging   string `json:"packaging"`
	MRP         Amount `json:"mrp"`
	BuyingRate  Amount `json:"buyingRate"`
	SellingRate Amount `json:"sellingRate"`
	Group       string `json:"group"`
	Stock       Amount `json:"stock"`
}

type GroupInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// InventoryItem is a product row with its group name resolved.
type InventoryItem struct {
	Product
	GroupName  string `json:"groupName"`
	StockValue Amount `json:"stockValue"`
}

// MasterDataService maintains customers, suppliers, products and groups.
type MasterDataService interface {
	ListCustomers(ctx context.Context, search string) ([]Customer, error)
	GetCustomer(ctx context.Context, id string) (*Customer, error)
	CreateCustomer(ctx context.Context, input CustomerInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, id string, input CustomerInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, id string) error

	ListSuppliers(ctx context.Context, search string) ([]Supplier, error)
	GetSupplier(ctx context.Context, id string) (*Supplier, error)
	CreateSupplier(ctx context.Context, input SupplierInput) (*Supplier, error)
	UpdateSupplier(ctx context.Context, id string, input SupplierInput) (*Supplier, error)
	DeleteSupplier(ctx context.Context, id string) error

	ListProducts(ctx context.Context, search string) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListGroups(ctx context.Context) ([]Group, error)
	CreateGroup(ctx context.Context, input GroupInput) (*Group, error)
	UpdateGroup(ctx context.Context, id string, input GroupInput) (*Group, error)
	// DeleteGroup refuses with ErrConflict while any product references the group.
	DeleteGroup(ctx context.Context, id string) error

	// ListInventory returns every product with its stock position, optionally
	// filtered by name or id.
	ListInventory(ctx context.Context, search string) ([]InventoryItem, error)
}
