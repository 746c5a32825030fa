package products_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/products"
	"github.com/noah-isme/backend-pos/internal/repo"
	"github.com/noah-isme/backend-pos/internal/tenant"
	"github.com/noah-isme/backend-pos/internal/tiers"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// stubStore backs both the tiers and products services in unit tests.
type stubStore struct {
	dbgen.Querier

	tenantID pgtype.UUID
	config   dbgen.TenantTierConfig
	dTiers   []dbgen.TenantDiscountTier
	mTiers   []dbgen.TenantMarginTier

	products  map[string]dbgen.Product
	pricing   map[string]dbgen.ProductPricing
	discounts map[string][]dbgen.ProductDiscount
	margins   map[string][]dbgen.ProductMarginPrice
}

func key(id pgtype.UUID) string { return repo.UUIDString(id) }

func newStore(discountTiers, marginTiers int) (*stubStore, context.Context) {
	tid := repo.UUIDValue(uuid.New())
	s := &stubStore{
		tenantID: tid,
		config: dbgen.TenantTierConfig{
			TenantID:          tid,
			DiscountTierCount: int32(discountTiers),
			MarginTierCount:   int32(marginTiers),
			DefaultIvaEnabled: true,
			IvaPercentage:     repo.Numeric(dec("16.00")),
		},
		products:  map[string]dbgen.Product{},
		pricing:   map[string]dbgen.ProductPricing{},
		discounts: map[string][]dbgen.ProductDiscount{},
		margins:   map[string][]dbgen.ProductMarginPrice{},
	}
	for i := 1; i <= discountTiers; i++ {
		s.dTiers = append(s.dTiers, dbgen.TenantDiscountTier{
			TenantID: tid, TierNumber: int32(i), Label: "Discount", DefaultPercentage: repo.Numeric(decimal.Zero),
		})
	}
	for i := 1; i <= marginTiers; i++ {
		s.mTiers = append(s.mTiers, dbgen.TenantMarginTier{
			TenantID: tid, TierNumber: int32(i), Label: "Margin", DefaultMarginPercentage: repo.Numeric(dec("25")),
		})
	}
	ctx := tenant.With(context.Background(), repo.UUIDString(tid))
	return s, ctx
}

func (s *stubStore) addProduct() string {
	id := repo.UUIDValue(uuid.New())
	s.products[key(id)] = dbgen.Product{ID: id, TenantID: s.tenantID, Sku: "SKU-1", Name: "Widget"}
	return key(id)
}

func (s *stubStore) GetTierConfig(ctx context.Context, tenantID pgtype.UUID) (dbgen.TenantTierConfig, error) {
	return s.config, nil
}

func (s *stubStore) ListDiscountTiers(ctx context.Context, tenantID pgtype.UUID) ([]dbgen.TenantDiscountTier, error) {
	return s.dTiers, nil
}

func (s *stubStore) ListMarginTiers(ctx context.Context, tenantID pgtype.UUID) ([]dbgen.TenantMarginTier, error) {
	return s.mTiers, nil
}

func (s *stubStore) CreateProduct(ctx context.Context, arg dbgen.CreateProductParams) (dbgen.Product, error) {
	id := repo.UUIDValue(uuid.New())
	row := dbgen.Product{ID: id, TenantID: arg.TenantID, Sku: arg.Sku, Name: arg.Name}
	s.products[key(id)] = row
	return row, nil
}

func (s *stubStore) GetProductByTenant(ctx context.Context, arg dbgen.GetProductByTenantParams) (dbgen.Product, error) {
	row, ok := s.products[key(arg.ID)]
	if !ok || row.TenantID != arg.TenantID {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return row, nil
}

func (s *stubStore) CountProductsByTenant(ctx context.Context, tenantID pgtype.UUID) (int64, error) {
	return int64(len(s.products)), nil
}

func (s *stubStore) ListProductsByTenant(ctx context.Context, arg dbgen.ListProductsByTenantParams) ([]dbgen.Product, error) {
	var out []dbgen.Product
	for _, p := range s.products {
		out = append(out, p)
	}
	return out, nil
}

func (s *stubStore) GetProductPricing(ctx context.Context, productID pgtype.UUID) (dbgen.ProductPricing, error) {
	row, ok := s.pricing[key(productID)]
	if !ok {
		return dbgen.ProductPricing{}, pgx.ErrNoRows
	}
	return row, nil
}

func (s *stubStore) UpsertProductPricing(ctx context.Context, arg dbgen.UpsertProductPricingParams) error {
	s.pricing[key(arg.ProductID)] = dbgen.ProductPricing{
		ProductID:  arg.ProductID,
		TenantID:   arg.TenantID,
		ListPrice:  arg.ListPrice,
		IvaEnabled: arg.IvaEnabled,
	}
	return nil
}

func (s *stubStore) ListProductDiscounts(ctx context.Context, productID pgtype.UUID) ([]dbgen.ProductDiscount, error) {
	return s.discounts[key(productID)], nil
}

func (s *stubStore) DeleteProductDiscounts(ctx context.Context, productID pgtype.UUID) error {
	delete(s.discounts, key(productID))
	return nil
}

func (s *stubStore) InsertProductDiscount(ctx context.Context, arg dbgen.InsertProductDiscountParams) error {
	k := key(arg.ProductID)
	s.discounts[k] = append(s.discounts[k], dbgen.ProductDiscount{
		ProductID: arg.ProductID, TierNumber: arg.TierNumber, Percentage: arg.Percentage,
	})
	return nil
}

func (s *stubStore) ListProductMarginPrices(ctx context.Context, productID pgtype.UUID) ([]dbgen.ProductMarginPrice, error) {
	return s.margins[key(productID)], nil
}

func (s *stubStore) DeleteProductMarginPrices(ctx context.Context, productID pgtype.UUID) error {
	delete(s.margins, key(productID))
	return nil
}

func (s *stubStore) InsertProductMarginPrice(ctx context.Context, arg dbgen.InsertProductMarginPriceParams) error {
	k := key(arg.ProductID)
	s.margins[k] = append(s.margins[k], dbgen.ProductMarginPrice{
		ProductID:        arg.ProductID,
		TierNumber:       arg.TierNumber,
		MarginPercentage: arg.MarginPercentage,
		SalePrice:        arg.SalePrice,
		PriceWithIva:     arg.PriceWithIva,
	})
	return nil
}

func newService(store *stubStore) *products.Service {
	tenants := &repo.Tenants{}
	return &products.Service{
		Q:       store,
		Tenants: tenants,
		Tiers:   &tiers.Service{Q: store, Tenants: tenants},
	}
}

func TestSetPricingEndToEnd(t *testing.T) {
	store, ctx := newStore(2, 1)
	svc := newService(store)
	productID := store.addProduct()

	view, err := svc.SetPricing(ctx, productID, products.SetPricingInput{
		ListPrice:  decPtr("500"),
		IvaEnabled: true,
		Discounts: []products.Discount{
			{TierNumber: 1, Percentage: dec("10")},
			{TierNumber: 2, Percentage: dec("5")},
		},
		MarginOverrides: []products.MarginOverride{{TierNumber: 1, MarginPercentage: dec("20")}},
	})
	require.NoError(t, err)
	require.NotNil(t, view.NetCost)
	require.True(t, view.NetCost.Equal(dec("427.50")), "net cost %s", view.NetCost)

	require.Len(t, view.MarginPrices, 1)
	row := view.MarginPrices[0]
	require.True(t, row.MarginPercentage.Equal(dec("20")))
	require.True(t, row.SalePrice.Equal(dec("534.38")), "sale %s", row.SalePrice)
	require.True(t, row.PriceWithIva.Equal(dec("619.88")), "iva %s", row.PriceWithIva)

	// The whole derived set is persisted together.
	require.Len(t, store.margins[productID], 1)
	require.Len(t, store.discounts[productID], 2)
}

func TestSetPricingWithoutListPrice(t *testing.T) {
	store, ctx := newStore(1, 2)
	svc := newService(store)
	productID := store.addProduct()

	view, err := svc.SetPricing(ctx, productID, products.SetPricingInput{
		Discounts: []products.Discount{{TierNumber: 1, Percentage: dec("10")}},
	})
	require.NoError(t, err)
	require.Nil(t, view.NetCost)
	for _, row := range view.MarginPrices {
		require.Nil(t, row.SalePrice)
		require.Nil(t, row.PriceWithIva)
	}
	// No derived rows to persist without a list price.
	require.Empty(t, store.margins[productID])
}

func TestGetPricingRecomputesDerivedRows(t *testing.T) {
	store, ctx := newStore(1, 1)
	svc := newService(store)
	productID := store.addProduct()

	_, err := svc.SetPricing(ctx, productID, products.SetPricingInput{
		ListPrice:  decPtr("100"),
		IvaEnabled: false,
		Discounts:  []products.Discount{{TierNumber: 1, Percentage: dec("0")}},
		MarginOverrides: []products.MarginOverride{
			{TierNumber: 1, MarginPercentage: dec("28")},
		},
	})
	require.NoError(t, err)

	// Corrupt the stored derived value; the read path must ignore it.
	rows := store.margins[productID]
	rows[0].SalePrice = repo.Numeric(dec("1.00"))

	view, err := svc.GetPricing(ctx, productID)
	require.NoError(t, err)
	require.True(t, view.MarginPrices[0].SalePrice.Equal(dec("138.89")), "sale %s", view.MarginPrices[0].SalePrice)
}

func TestGetPricingServesNullPricesForMarginAtHundred(t *testing.T) {
	store, ctx := newStore(1, 1)
	svc := newService(store)
	productID := store.addProduct()

	// A fixed-amount bulk adjustment on a zero list price back-derives a
	// margin of exactly 100. The read must serve the tier with null sale
	// prices instead of rejecting the whole record.
	pid := store.products[productID].ID
	store.pricing[productID] = dbgen.ProductPricing{
		ProductID:  pid,
		TenantID:   store.tenantID,
		ListPrice:  repo.Numeric(dec("0")),
		IvaEnabled: false,
	}
	store.margins[productID] = []dbgen.ProductMarginPrice{{
		ProductID:        pid,
		TierNumber:       1,
		MarginPercentage: repo.Numeric(dec("100")),
		SalePrice:        repo.Numeric(dec("5.00")),
		PriceWithIva:     repo.Numeric(dec("5.00")),
	}}

	view, err := svc.GetPricing(ctx, productID)
	require.NoError(t, err)
	require.Len(t, view.MarginPrices, 1)
	row := view.MarginPrices[0]
	require.True(t, row.MarginPercentage.Equal(dec("100")))
	require.Nil(t, row.SalePrice)
	require.Nil(t, row.PriceWithIva)
	require.NotNil(t, view.NetCost)
	require.True(t, view.NetCost.IsZero())
}

func TestSetPricingValidation(t *testing.T) {
	store, ctx := newStore(2, 1)
	svc := newService(store)
	productID := store.addProduct()

	cases := []struct {
		name string
		in   products.SetPricingInput
	}{
		{"negative list price", products.SetPricingInput{
			ListPrice: decPtr("-1"),
			Discounts: []products.Discount{{TierNumber: 1}, {TierNumber: 2}},
		}},
		{"wrong discount count", products.SetPricingInput{
			Discounts: []products.Discount{{TierNumber: 1}},
		}},
		{"discount out of range", products.SetPricingInput{
			Discounts: []products.Discount{{TierNumber: 1, Percentage: dec("100")}, {TierNumber: 2}},
		}},
		{"bad margin tier", products.SetPricingInput{
			Discounts:       []products.Discount{{TierNumber: 1}, {TierNumber: 2}},
			MarginOverrides: []products.MarginOverride{{TierNumber: 9, MarginPercentage: dec("20")}},
		}},
		{"margin at hundred", products.SetPricingInput{
			Discounts:       []products.Discount{{TierNumber: 1}, {TierNumber: 2}},
			MarginOverrides: []products.MarginOverride{{TierNumber: 1, MarginPercentage: dec("100")}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SetPricing(ctx, productID, tc.in)
			require.Error(t, err)
			require.True(t, common.IsAppError(err))
		})
	}
}

func TestGetPricingNotFound(t *testing.T) {
	store, ctx := newStore(1, 1)
	svc := newService(store)

	_, err := svc.GetPricing(ctx, uuid.NewString())
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestCreateSeedsPricingRecord(t *testing.T) {
	store, ctx := newStore(1, 1)
	svc := newService(store)

	product, err := svc.Create(ctx, products.CreateInput{SKU: "SKU-9", Name: "Gadget"})
	require.NoError(t, err)
	record, ok := store.pricing[product.ID]
	require.True(t, ok, "pricing record must be seeded on create")
	require.True(t, record.IvaEnabled)
	require.False(t, record.ListPrice.Valid, "list price starts unset")
}
