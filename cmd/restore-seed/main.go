// restore-seed loads demo master data into an empty namespace: product groups,
// products with opening stock, customers and suppliers. Run it against a fresh
// database to get a usable shop for manual testing.
//
// Usage: go run ./cmd/restore-seed [--memory]
package main

import (
	"context"
	"flag"
	"os"

	"invoizo/internal/app"
	"invoizo/internal/bootstrap"
	"invoizo/internal/config"
	"invoizo/internal/core"
	"invoizo/internal/logging"
)

type seedProduct struct {
	group     string
	name      string
	packaging string
	mrp       string
	buying    string
	selling   string
	stock     int64
}

var (
	groups = []core.GroupInput{
		{Name: "Biscuits", Description: "Packaged biscuits and cookies"},
		{Name: "Beverages", Description: "Tea, coffee and soft drinks"},
		{Name: "Staples", Description: "Rice, flour, pulses and oil"},
	}

	products = []seedProduct{
		{"Biscuits", "Marie Gold 250g", "24", "40", "31.50", "36", 480},
		{"Biscuits", "Good Day Cashew 200g", "30", "45", "35.20", "40", 300},
		{"Beverages", "Tata Tea Premium 1kg", "10", "560", "468", "520", 60},
		{"Beverages", "Bru Instant 100g", "24", "230", "188", "210", 96},
		{"Staples", "Sona Masoori Rice 25kg", "1", "1650", "1380", "1520", 40},
		{"Staples", "Sunflower Oil 1L", "12", "185", "152", "170", 144},
	}

	customers = []core.CustomerInput{
		{Name: "Sri Lakshmi Stores", Phone: "9845012345", Address: "12 Market Road, Mysuru", State: "Karnataka", Category: "wholesale", CreditLimit: core.AmountFromInt(50000)},
		{Name: "Annapoorna Provisions", Phone: "9880098800", Address: "4th Cross, Hassan", State: "Karnataka", Category: "regular", CreditLimit: core.AmountFromInt(25000)},
		{Name: "Hotel Mayura", Phone: "9611122233", Email: "accounts@mayura.example", Address: "MG Road, Mandya", State: "Karnataka", Category: "vip", CreditLimit: core.AmountFromInt(100000)},
	}

	suppliers = []core.SupplierInput{
		{Name: "Britannia Distributors", Contact: "0821-2440011", Address: "Industrial Area", City: "Mysuru"},
		{Name: "Karnataka Agro Traders", Contact: "080-26601122", Address: "APMC Yard", City: "Bengaluru"},
	}
)

func main() {
	memory := flag.Bool("memory", false, "seed an in-memory store (dry run)")
	flag.Parse()

	log := logging.New("info", "text")
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	ctx := context.Background()
	rt, err := bootstrap.Open(ctx, cfg, log, *memory)
	if err != nil {
		log.WithError(err).Fatal("failed to connect")
	}
	defer rt.Close()

	if err := seed(ctx, rt.Service); err != nil {
		log.WithError(err).Fatal("seed failed")
	}
	log.WithField("namespace", cfg.Store.Namespace).Info("seed data restored")
	os.Exit(0)
}

func seed(ctx context.Context, svc app.ApplicationService) error {
	existing, err := svc.ListProducts(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return core.ValidationError("namespace already has products; refusing to seed")
	}

	groupIDs := make(map[string]string, len(groups))
	for _, g := range groups {
		created, err := svc.CreateGroup(ctx, g)
		if err != nil {
			return err
		}
		groupIDs[g.Name] = created.ID
	}

	for _, p := range products {
		_, err := svc.CreateProduct(ctx, core.ProductInput{
			Name:        p.name,
			Packaging:   p.packaging,
			MRP:         core.ParseAmount(p.mrp),
			Rate:        core.ParseAmount(p.selling),
			BuyingRate:  core.ParseAmount(p.buying),
			SellingRate: core.ParseAmount(p.selling),
			Group:       groupIDs[p.group],
			Stock:       core.AmountFromInt(p.stock),
		})
		if err != nil {
			return err
		}
	}

	for _, c := range customers {
		if _, err := svc.CreateCustomer(ctx, c); err != nil {
			return err
		}
	}
	for _, s := range suppliers {
		if _, err := svc.CreateSupplier(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
