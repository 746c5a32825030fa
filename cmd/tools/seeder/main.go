package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/app"
	"github.com/noah-isme/backend-pos/internal/config"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/products"
	"github.com/noah-isme/backend-pos/internal/repo"
	"github.com/noah-isme/backend-pos/internal/tenant"
	"github.com/noah-isme/backend-pos/internal/tiers"
)

func main() {
	slug := flag.String("tenant", "default", "tenant slug to provision")
	name := flag.String("name", "Default Tenant", "tenant display name")
	demo := flag.Bool("demo", false, "seed demo products with pricing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	pool, queries, err := app.OpenDatabase(ctx, cfg, "pos-seeder")
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer pool.Close()

	row, err := queries.GetTenantBySlug(ctx, *slug)
	if errors.Is(err, pgx.ErrNoRows) {
		row, err = queries.CreateTenant(ctx, dbgen.CreateTenantParams{Slug: *slug, Name: *name})
	}
	if err != nil {
		log.Fatalf("provision tenant %q: %v", *slug, err)
	}
	log.Printf("tenant %q ready (%s)", *slug, repo.UUIDString(row.ID))

	ctx = tenant.With(ctx, *slug)
	tenants := &repo.Tenants{Q: queries}
	tiersSvc := &tiers.Service{Q: queries, DB: pool, Tenants: tenants}
	if _, err := tiersSvc.EnsureDefault(ctx); err != nil {
		log.Fatalf("provision tier configuration: %v", err)
	}
	log.Println("tier configuration ready")

	if *demo {
		seedDemoProducts(ctx, &products.Service{Q: queries, DB: pool, Tenants: tenants, Tiers: tiersSvc})
	}

	log.Println("seeding completed")
}

func seedDemoProducts(ctx context.Context, svc *products.Service) {
	demo := []struct {
		SKU       string
		Name      string
		ListPrice string
		Discounts []string
	}{
		{"POS-0001", "Espresso Beans 1kg", "500.00", []string{"10", "5", "0"}},
		{"POS-0002", "Ceramic Mug", "120.00", []string{"5", "0", "0"}},
		{"POS-0003", "Pour-Over Kettle", "850.00", []string{"15", "10", "5"}},
	}

	log.Println("seeding demo products")
	for _, d := range demo {
		product, err := svc.Create(ctx, products.CreateInput{SKU: d.SKU, Name: d.Name})
		if err != nil {
			log.Printf("seed product %s: %v", d.SKU, err)
			continue
		}
		list := decimal.RequireFromString(d.ListPrice)
		input := products.SetPricingInput{ListPrice: &list, IvaEnabled: true}
		for i, pct := range d.Discounts {
			input.Discounts = append(input.Discounts, products.Discount{
				TierNumber: i + 1,
				Percentage: decimal.RequireFromString(pct),
			})
		}
		if _, err := svc.SetPricing(ctx, product.ID, input); err != nil {
			log.Printf("seed pricing for %s: %v", d.SKU, err)
		}
	}
}
