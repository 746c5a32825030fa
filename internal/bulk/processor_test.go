package bulk_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/bulk"
	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/lock"
	"github.com/noah-isme/backend-pos/internal/repo"
	"github.com/noah-isme/backend-pos/internal/tenant"
	"github.com/noah-isme/backend-pos/internal/tiers"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type stubStore struct {
	dbgen.Querier

	tenantID pgtype.UUID
	config   dbgen.TenantTierConfig
	mTiers   []dbgen.TenantMarginTier

	products  map[string]dbgen.Product
	pricing   map[string]dbgen.ProductPricing
	discounts map[string][]dbgen.ProductDiscount
	margins   map[string][]dbgen.ProductMarginPrice
}

func key(id pgtype.UUID) string { return repo.UUIDString(id) }

func newStore() (*stubStore, context.Context) {
	tid := repo.UUIDValue(uuid.New())
	s := &stubStore{
		tenantID: tid,
		config: dbgen.TenantTierConfig{
			TenantID:          tid,
			DiscountTierCount: 1,
			MarginTierCount:   1,
			IvaPercentage:     repo.Numeric(dec("16.00")),
		},
		mTiers: []dbgen.TenantMarginTier{
			{TenantID: tid, TierNumber: 1, Label: "Retail", DefaultMarginPercentage: repo.Numeric(dec("25"))},
		},
		products:  map[string]dbgen.Product{},
		pricing:   map[string]dbgen.ProductPricing{},
		discounts: map[string][]dbgen.ProductDiscount{},
		margins:   map[string][]dbgen.ProductMarginPrice{},
	}
	return s, tenant.With(context.Background(), repo.UUIDString(tid))
}

// addProduct stores a product whose single margin tier currently sits at the
// given margin. A nil listPrice leaves the pricing record unconfigured.
func (s *stubStore) addProduct(listPrice, margin *decimal.Decimal) string {
	id := repo.UUIDValue(uuid.New())
	s.products[key(id)] = dbgen.Product{ID: id, TenantID: s.tenantID, Sku: "SKU", Name: "Widget"}
	s.pricing[key(id)] = dbgen.ProductPricing{
		ProductID: id, TenantID: s.tenantID,
		ListPrice: repo.NullableNumeric(listPrice),
	}
	if margin != nil {
		s.margins[key(id)] = []dbgen.ProductMarginPrice{{
			ProductID: id, TierNumber: 1,
			MarginPercentage: repo.Numeric(*margin),
			SalePrice:        repo.Numeric(decimal.Zero),
			PriceWithIva:     repo.Numeric(decimal.Zero),
		}}
	}
	return key(id)
}

func (s *stubStore) GetTierConfig(ctx context.Context, tenantID pgtype.UUID) (dbgen.TenantTierConfig, error) {
	return s.config, nil
}

func (s *stubStore) ListDiscountTiers(ctx context.Context, tenantID pgtype.UUID) ([]dbgen.TenantDiscountTier, error) {
	return []dbgen.TenantDiscountTier{
		{TenantID: s.tenantID, TierNumber: 1, Label: "Standard", DefaultPercentage: repo.Numeric(decimal.Zero)},
	}, nil
}

func (s *stubStore) ListMarginTiers(ctx context.Context, tenantID pgtype.UUID) ([]dbgen.TenantMarginTier, error) {
	return s.mTiers, nil
}

func (s *stubStore) GetProductByTenant(ctx context.Context, arg dbgen.GetProductByTenantParams) (dbgen.Product, error) {
	row, ok := s.products[key(arg.ID)]
	if !ok || row.TenantID != arg.TenantID {
		return dbgen.Product{}, pgx.ErrNoRows
	}
	return row, nil
}

func (s *stubStore) GetProductPricing(ctx context.Context, productID pgtype.UUID) (dbgen.ProductPricing, error) {
	row, ok := s.pricing[key(productID)]
	if !ok {
		return dbgen.ProductPricing{}, pgx.ErrNoRows
	}
	return row, nil
}

func (s *stubStore) ListProductDiscounts(ctx context.Context, productID pgtype.UUID) ([]dbgen.ProductDiscount, error) {
	return s.discounts[key(productID)], nil
}

func (s *stubStore) ListProductMarginPrices(ctx context.Context, productID pgtype.UUID) ([]dbgen.ProductMarginPrice, error) {
	return s.margins[key(productID)], nil
}

func (s *stubStore) UpdateProductMarginPrice(ctx context.Context, arg dbgen.UpdateProductMarginPriceParams) (int64, error) {
	rows := s.margins[key(arg.ProductID)]
	for i, row := range rows {
		if row.TierNumber != arg.TierNumber {
			continue
		}
		rows[i].MarginPercentage = arg.MarginPercentage
		rows[i].SalePrice = arg.SalePrice
		rows[i].PriceWithIva = arg.PriceWithIva
		return 1, nil
	}
	return 0, nil
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

func newProcessor(store *stubStore) *bulk.Processor {
	tenants := &repo.Tenants{}
	return &bulk.Processor{
		Q:       store,
		Tenants: tenants,
		Tiers:   &tiers.Service{Q: store, Tenants: tenants},
		Log:     zerolog.Nop(),
	}
}

func storedMargin(t *testing.T, store *stubStore, productID string, tier int32) (margin, sale, withIva decimal.Decimal) {
	t.Helper()
	for _, row := range store.margins[productID] {
		if row.TierNumber != tier {
			continue
		}
		m, err := repo.Decimal(row.MarginPercentage)
		require.NoError(t, err)
		sp, err := repo.Decimal(row.SalePrice)
		require.NoError(t, err)
		iva, err := repo.Decimal(row.PriceWithIva)
		require.NoError(t, err)
		return m, sp, iva
	}
	t.Fatalf("no margin row for tier %d", tier)
	return
}

func TestPercentageIncreaseBackDerivesMargin(t *testing.T) {
	store, ctx := newStore()
	margin := dec("25")
	list := dec("150")
	productID := store.addProduct(&list, &margin)

	report, err := newProcessor(store).Run(ctx, bulk.Spec{
		ProductIDs: []string{productID},
		UpdateType: bulk.PercentageIncrease,
		Value:      dec("10"),
		TierNumber: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Succeeded)
	require.Equal(t, 0, report.Failed)

	// 150 at 25% margin sells for 200; +10% lands at 220 with margin
	// re-derived from net cost: (220-150)/220.
	newMargin, sale, _ := storedMargin(t, store, productID, 1)
	require.True(t, sale.Equal(dec("220.00")), "sale %s", sale)
	require.True(t, newMargin.Equal(dec("31.82")), "margin %s", newMargin)
}

func TestMissingListPriceIsPerItemFailure(t *testing.T) {
	store, ctx := newStore()
	margin := dec("25")
	list := dec("100")
	good := store.addProduct(&list, &margin)
	bad := store.addProduct(nil, nil)

	report, err := newProcessor(store).Run(ctx, bulk.Spec{
		ProductIDs: []string{bad, good},
		UpdateType: bulk.FixedIncrease,
		Value:      dec("5"),
		TierNumber: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Succeeded)
	require.Equal(t, 1, report.Failed)
	require.Equal(t, bulk.StatusFailed, report.Items[0].Status)
	require.Contains(t, report.Items[0].Error, "list price")
	require.Equal(t, bulk.StatusUpdated, report.Items[1].Status)
}

func TestUnknownProductIsPerItemFailure(t *testing.T) {
	store, ctx := newStore()

	report, err := newProcessor(store).Run(ctx, bulk.Spec{
		ProductIDs: []string{uuid.NewString()},
		UpdateType: bulk.PercentageDecrease,
		Value:      dec("5"),
		TierNumber: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
	require.Contains(t, report.Items[0].Error, "not found")
}

func TestSetMarginWritesRequestedMargin(t *testing.T) {
	store, ctx := newStore()
	list := dec("100")
	productID := store.addProduct(&list, nil)

	report, err := newProcessor(store).Run(ctx, bulk.Spec{
		ProductIDs: []string{productID},
		UpdateType: bulk.SetMargin,
		Value:      dec("20"),
		TierNumber: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Succeeded)

	margin, sale, _ := storedMargin(t, store, productID, 1)
	require.True(t, margin.Equal(dec("20")))
	require.True(t, sale.Equal(dec("125.00")), "sale %s", sale)
}

func TestSetMarginRejectsHundred(t *testing.T) {
	store, ctx := newStore()
	_, err := newProcessor(store).Run(ctx, bulk.Spec{
		ProductIDs: []string{uuid.NewString()},
		UpdateType: bulk.SetMargin,
		Value:      dec("100"),
		TierNumber: 1,
	})
	require.True(t, common.IsAppError(err))
}

func TestOutOfRangeTierFailsEveryItem(t *testing.T) {
	store, ctx := newStore()
	margin := dec("25")
	list := dec("100")
	productID := store.addProduct(&list, &margin)

	report, err := newProcessor(store).Run(ctx, bulk.Spec{
		ProductIDs: []string{productID, uuid.NewString()},
		UpdateType: bulk.FixedDecrease,
		Value:      dec("1"),
		TierNumber: 7,
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.Failed)
	require.Equal(t, 0, report.Succeeded)
}

func TestCancellationStopsBetweenItems(t *testing.T) {
	store, ctx := newStore()
	ctx, cancel := context.WithCancel(ctx)
	cancel()

	report, err := newProcessor(store).Run(ctx, bulk.Spec{
		ProductIDs: []string{uuid.NewString(), uuid.NewString()},
		UpdateType: bulk.FixedIncrease,
		Value:      dec("1"),
		TierNumber: 1,
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, report.Items)
}

func TestRunWithRecordLock(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store, ctx := newStore()
	margin := dec("25")
	list := dec("150")
	productID := store.addProduct(&list, &margin)

	p := newProcessor(store)
	p.Locker = &lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond}

	report, err := p.Run(ctx, bulk.Spec{
		ProductIDs: []string{productID},
		UpdateType: bulk.PercentageIncrease,
		Value:      dec("10"),
		TierNumber: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Succeeded)
	require.False(t, mr.Exists("pricing:lock:"+key(store.tenantID)+":"+productID), "lock released after update")
}
