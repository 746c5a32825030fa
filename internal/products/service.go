package products

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/repo"
	"github.com/noah-isme/backend-pos/internal/tiers"
)

// Product is the public product payload.
type Product struct {
	ID   string `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// Discount is one per-tier discount percentage on a product.
type Discount struct {
	TierNumber int             `json:"tierNumber"`
	Percentage decimal.Decimal `json:"percentage"`
}

// MarginPrice is one derived per-tier price row. Sale prices are nil while
// the product has no list price.
type MarginPrice struct {
	TierNumber       int              `json:"tierNumber"`
	Label            string           `json:"label"`
	MarginPercentage decimal.Decimal  `json:"marginPercentage"`
	SalePrice        *decimal.Decimal `json:"salePrice"`
	PriceWithIva     *decimal.Decimal `json:"priceWithIva"`
}

// PricingView is a product's full pricing breakdown. Derived values are
// recomputed from list price and discounts on every read; stored rows are
// never trusted.
type PricingView struct {
	ProductID     string           `json:"productId"`
	ListPrice     *decimal.Decimal `json:"listPrice"`
	IvaEnabled    bool             `json:"ivaEnabled"`
	IvaPercentage decimal.Decimal  `json:"ivaPercentage"`
	NetCost       *decimal.Decimal `json:"netCost"`
	Discounts     []Discount       `json:"discounts"`
	MarginPrices  []MarginPrice    `json:"marginPrices"`
}

// MarginOverride pins a margin tier to an explicit percentage.
type MarginOverride struct {
	TierNumber       int             `json:"tierNumber"`
	MarginPercentage decimal.Decimal `json:"marginPercentage"`
}

// SetPricingInput replaces a product's stored pricing as a whole.
type SetPricingInput struct {
	ListPrice       *decimal.Decimal
	IvaEnabled      bool
	Discounts       []Discount
	MarginOverrides []MarginOverride
}

// CreateInput describes a new product.
type CreateInput struct {
	SKU  string `json:"sku" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=200"`
}

// Service orchestrates product and pricing record operations.
type Service struct {
	Q       dbgen.Querier
	DB      repo.TxStarter
	Tenants *repo.Tenants
	Tiers   *tiers.Service
}

// Create registers a product and seeds its pricing record with the tenant's
// default VAT applicability and an unset list price.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" {
		return Product{}, common.ValidationError("sku", "sku is required")
	}
	if in.Name == "" {
		return Product{}, common.ValidationError("name", "name is required")
	}
	tid, err := s.Tenants.UUID(ctx)
	if err != nil {
		return Product{}, tenantError(err)
	}
	cfg, err := s.Tiers.Get(ctx)
	if err != nil {
		return Product{}, err
	}

	var created dbgen.Product
	err = repo.InTx(ctx, s.DB, s.Q, func(q dbgen.Querier) error {
		created, err = q.CreateProduct(ctx, dbgen.CreateProductParams{TenantID: tid, Sku: in.SKU, Name: in.Name})
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if err := q.UpsertProductPricing(ctx, dbgen.UpsertProductPricingParams{
			ProductID:  created.ID,
			TenantID:   tid,
			IvaEnabled: cfg.DefaultIvaEnabled,
		}); err != nil {
			return fmt.Errorf("seed product pricing: %w", err)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return toProduct(created), nil
}

// List returns the tenant's products with pagination.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Product, int64, error) {
	tid, err := s.Tenants.UUID(ctx)
	if err != nil {
		return nil, 0, tenantError(err)
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	total, err := s.Q.CountProductsByTenant(ctx, tid)
	if err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}
	rows, err := s.Q.ListProductsByTenant(ctx, dbgen.ListProductsByTenantParams{
		TenantID:    tid,
		LimitValue:  int32(perPage),
		OffsetValue: int32((page - 1) * perPage),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	items := make([]Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, toProduct(row))
	}
	return items, total, nil
}

// Get returns one product by id.
func (s *Service) Get(ctx context.Context, productID string) (Product, error) {
	row, _, err := s.getProduct(ctx, productID)
	if err != nil {
		return Product{}, err
	}
	return toProduct(row), nil
}

// GetPricing materializes the product's full pricing view by combining its
// stored list price and discounts with the tenant configuration and the
// calculation engine.
func (s *Service) GetPricing(ctx context.Context, productID string) (PricingView, error) {
	product, _, err := s.getProduct(ctx, productID)
	if err != nil {
		return PricingView{}, err
	}
	cfg, err := s.Tiers.Get(ctx)
	if err != nil {
		return PricingView{}, err
	}
	record, err := s.loadRecord(ctx, product.ID)
	if err != nil {
		return PricingView{}, err
	}
	return computeView(productID, record, cfg)
}

// SetPricing validates and replaces the product's stored pricing record as a
// whole, recomputing every derived row. No partial tier updates: the full
// derived set is rewritten together.
func (s *Service) SetPricing(ctx context.Context, productID string, in SetPricingInput) (PricingView, error) {
	product, tid, err := s.getProduct(ctx, productID)
	if err != nil {
		return PricingView{}, err
	}
	cfg, err := s.Tiers.Get(ctx)
	if err != nil {
		return PricingView{}, err
	}
	if err := validateSetInput(in, cfg); err != nil {
		return PricingView{}, err
	}

	record := storedRecord{
		listPrice:  in.ListPrice,
		ivaEnabled: in.IvaEnabled,
		discounts:  append([]Discount(nil), in.Discounts...),
		margins:    map[int]decimal.Decimal{},
	}
	for _, o := range in.MarginOverrides {
		record.margins[o.TierNumber] = o.MarginPercentage
	}
	// Tiers without an override keep the configured default margin.
	for _, t := range cfg.MarginTiers {
		if _, ok := record.margins[t.TierNumber]; !ok {
			record.margins[t.TierNumber] = t.DefaultMarginPercentage
		}
	}

	view, err := computeView(productID, record, cfg)
	if err != nil {
		return PricingView{}, err
	}

	err = repo.InTx(ctx, s.DB, s.Q, func(q dbgen.Querier) error {
		if err := q.UpsertProductPricing(ctx, dbgen.UpsertProductPricingParams{
			ProductID:  product.ID,
			TenantID:   tid,
			ListPrice:  repo.NullableNumeric(in.ListPrice),
			IvaEnabled: in.IvaEnabled,
		}); err != nil {
			return fmt.Errorf("upsert pricing: %w", err)
		}
		if err := q.DeleteProductDiscounts(ctx, product.ID); err != nil {
			return fmt.Errorf("delete discounts: %w", err)
		}
		for _, d := range record.discounts {
			if err := q.InsertProductDiscount(ctx, dbgen.InsertProductDiscountParams{
				ProductID:  product.ID,
				TierNumber: int32(d.TierNumber),
				Percentage: repo.Numeric(d.Percentage),
			}); err != nil {
				return fmt.Errorf("insert discount tier %d: %w", d.TierNumber, err)
			}
		}
		if err := q.DeleteProductMarginPrices(ctx, product.ID); err != nil {
			return fmt.Errorf("delete margin prices: %w", err)
		}
		for _, row := range view.MarginPrices {
			if row.SalePrice == nil || row.PriceWithIva == nil {
				continue
			}
			if err := q.InsertProductMarginPrice(ctx, dbgen.InsertProductMarginPriceParams{
				ProductID:        product.ID,
				TierNumber:       int32(row.TierNumber),
				MarginPercentage: repo.Numeric(row.MarginPercentage),
				SalePrice:        repo.Numeric(*row.SalePrice),
				PriceWithIva:     repo.Numeric(*row.PriceWithIva),
			}); err != nil {
				return fmt.Errorf("insert margin price tier %d: %w", row.TierNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return PricingView{}, err
	}
	return view, nil
}

// storedRecord is the persisted pricing state a view is computed from.
type storedRecord struct {
	listPrice  *decimal.Decimal
	ivaEnabled bool
	discounts  []Discount
	margins    map[int]decimal.Decimal
}

func (s *Service) getProduct(ctx context.Context, productID string) (dbgen.Product, pgtype.UUID, error) {
	tid, err := s.Tenants.UUID(ctx)
	if err != nil {
		return dbgen.Product{}, pgtype.UUID{}, tenantError(err)
	}
	parsed, err := uuid.Parse(strings.TrimSpace(productID))
	if err != nil {
		return dbgen.Product{}, pgtype.UUID{}, common.ValidationError("productId", "product id must be a UUID")
	}
	row, err := s.Q.GetProductByTenant(ctx, dbgen.GetProductByTenantParams{ID: repo.UUIDValue(parsed), TenantID: tid})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dbgen.Product{}, pgtype.UUID{}, common.NotFoundError("product not found", err)
		}
		return dbgen.Product{}, pgtype.UUID{}, fmt.Errorf("get product: %w", err)
	}
	return row, tid, nil
}

func (s *Service) loadRecord(ctx context.Context, productID pgtype.UUID) (storedRecord, error) {
	record := storedRecord{margins: map[int]decimal.Decimal{}}

	row, err := s.Q.GetProductPricing(ctx, productID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return storedRecord{}, fmt.Errorf("get product pricing: %w", err)
		}
		// No pricing row yet: an unconfigured record.
		return record, nil
	}
	record.ivaEnabled = row.IvaEnabled
	record.listPrice, err = repo.NullableDecimal(row.ListPrice)
	if err != nil {
		return storedRecord{}, fmt.Errorf("list price: %w", err)
	}

	discountRows, err := s.Q.ListProductDiscounts(ctx, productID)
	if err != nil {
		return storedRecord{}, fmt.Errorf("list discounts: %w", err)
	}
	for _, d := range discountRows {
		pct, err := repo.Decimal(d.Percentage)
		if err != nil {
			return storedRecord{}, fmt.Errorf("discount tier %d: %w", d.TierNumber, err)
		}
		record.discounts = append(record.discounts, Discount{TierNumber: int(d.TierNumber), Percentage: pct})
	}

	marginRows, err := s.Q.ListProductMarginPrices(ctx, productID)
	if err != nil {
		return storedRecord{}, fmt.Errorf("list margin prices: %w", err)
	}
	for _, m := range marginRows {
		pct, err := repo.Decimal(m.MarginPercentage)
		if err != nil {
			return storedRecord{}, fmt.Errorf("margin tier %d: %w", m.TierNumber, err)
		}
		record.margins[int(m.TierNumber)] = pct
	}
	return record, nil
}

// computeView derives the tier-by-tier breakdown. Stored sale prices are
// ignored: everything derived comes from the engine.
func computeView(productID string, record storedRecord, cfg tiers.Configuration) (PricingView, error) {
	view := PricingView{
		ProductID:     productID,
		ListPrice:     record.listPrice,
		IvaEnabled:    record.ivaEnabled,
		IvaPercentage: cfg.IvaPercentage,
		Discounts:     record.discounts,
	}
	if view.Discounts == nil {
		view.Discounts = []Discount{}
	}

	var net *decimal.Decimal
	if record.listPrice != nil {
		percentages := make([]decimal.Decimal, 0, len(record.discounts))
		for _, d := range record.discounts {
			percentages = append(percentages, d.Percentage)
		}
		computed := pricing.NetCost(*record.listPrice, percentages)
		net = &computed
	}
	view.NetCost = net

	view.MarginPrices = make([]MarginPrice, 0, len(cfg.MarginTiers))
	for _, t := range cfg.MarginTiers {
		margin, ok := record.margins[t.TierNumber]
		if !ok {
			margin = t.DefaultMarginPercentage
		}
		row := MarginPrice{TierNumber: t.TierNumber, Label: t.Label, MarginPercentage: margin}
		if net != nil {
			// A stored margin at or above 100 has no finite sale price;
			// the tier is served with null prices instead of failing the view.
			if sale, err := pricing.SalePriceFromMargin(*net, margin); err == nil {
				withIva := sale
				if record.ivaEnabled {
					withIva = pricing.ApplyIva(sale, cfg.IvaPercentage)
				}
				row.SalePrice = &sale
				row.PriceWithIva = &withIva
			}
		}
		view.MarginPrices = append(view.MarginPrices, row)
	}
	return view, nil
}

func validateSetInput(in SetPricingInput, cfg tiers.Configuration) error {
	if in.ListPrice != nil && in.ListPrice.IsNegative() {
		return common.ValidationError("listPrice", "list price must not be negative")
	}
	if len(in.Discounts) != cfg.DiscountTierCount {
		return common.ValidationError("discounts", fmt.Sprintf("exactly %d discount entries required", cfg.DiscountTierCount))
	}
	hundred := decimal.NewFromInt(100)
	for i, d := range in.Discounts {
		if err := cfg.ValidateTierNumber(d.TierNumber, tiers.KindDiscount); err != nil {
			return err
		}
		if d.TierNumber != i+1 {
			return common.ValidationError("discounts", "discount entries must be ordered by tier number starting at 1")
		}
		if d.Percentage.IsNegative() || d.Percentage.GreaterThanOrEqual(hundred) {
			return common.ValidationError("discounts", fmt.Sprintf("discount tier %d must be in [0, 100)", d.TierNumber))
		}
	}
	seen := map[int]bool{}
	for _, o := range in.MarginOverrides {
		if err := cfg.ValidateTierNumber(o.TierNumber, tiers.KindMargin); err != nil {
			return err
		}
		if seen[o.TierNumber] {
			return common.ValidationError("marginOverrides", fmt.Sprintf("margin tier %d overridden twice", o.TierNumber))
		}
		seen[o.TierNumber] = true
		if o.MarginPercentage.GreaterThanOrEqual(hundred) {
			return common.ValidationError("marginOverrides", fmt.Sprintf("margin tier %d must be below 100", o.TierNumber))
		}
	}
	return nil
}

func toProduct(row dbgen.Product) Product {
	return Product{ID: repo.UUIDString(row.ID), SKU: row.Sku, Name: row.Name}
}

func tenantError(err error) error {
	if errors.Is(err, repo.ErrTenantMissing) || errors.Is(err, repo.ErrTenantUnknown) {
		return &common.AppError{
			Code:       common.CodeTenantRequired,
			Message:    "tenant could not be resolved",
			HTTPStatus: http.StatusUnauthorized,
			Err:        err,
		}
	}
	return err
}
