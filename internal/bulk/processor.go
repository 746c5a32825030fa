package bulk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/lock"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
	"github.com/noah-isme/backend-pos/internal/repo"
	"github.com/noah-isme/backend-pos/internal/tiers"
)

// UpdateType names one bulk price adjustment operation.
type UpdateType string

const (
	PercentageIncrease UpdateType = "percentage_increase"
	PercentageDecrease UpdateType = "percentage_decrease"
	FixedIncrease      UpdateType = "fixed_increase"
	FixedDecrease      UpdateType = "fixed_decrease"
	SetMargin          UpdateType = "set_margin"
)

func (t UpdateType) valid() bool {
	switch t {
	case PercentageIncrease, PercentageDecrease, FixedIncrease, FixedDecrease, SetMargin:
		return true
	}
	return false
}

// Spec describes one bulk update across a set of products within one margin tier.
type Spec struct {
	ProductIDs []string        `json:"productIds"`
	UpdateType UpdateType      `json:"updateType"`
	Value      decimal.Decimal `json:"value"`
	TierNumber int             `json:"tierNumber"`
}

// Item statuses reported per product.
const (
	StatusUpdated = "updated"
	StatusFailed  = "failed"
)

// ItemResult is the outcome for a single product.
type ItemResult struct {
	ProductID string `json:"productId"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

// Report summarizes a bulk update run. Items appear in input order.
type Report struct {
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Items     []ItemResult `json:"items"`
}

// Processor applies one Spec across a product set. Each product is independent:
// failures are recorded per item and never abort the batch. Per-record writes
// are serialized through the redis lock when one is configured.
type Processor struct {
	Q       dbgen.Querier
	DB      repo.TxStarter
	Tenants *repo.Tenants
	Tiers   *tiers.Service
	Locker  *lock.Locker
	LockTTL time.Duration
	Log     zerolog.Logger
}

// Run executes the spec. It returns an error only for malformed specs or an
// unresolved tenant; per-product problems land in the report. Cancellation
// stops between items and returns the partial report alongside ctx.Err().
func (p *Processor) Run(ctx context.Context, spec Spec) (Report, error) {
	if err := validateSpec(spec); err != nil {
		return Report{}, err
	}
	tid, err := p.Tenants.UUID(ctx)
	if err != nil {
		return Report{}, tenantError(err)
	}
	cfg, err := p.Tiers.Get(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Items: make([]ItemResult, 0, len(spec.ProductIDs))}
	if err := cfg.ValidateTierNumber(spec.TierNumber, tiers.KindMargin); err != nil {
		// Out-of-range tier fails every item rather than aborting the batch.
		for _, id := range spec.ProductIDs {
			report.fail(id, err.Error())
		}
		return report, nil
	}

	for _, id := range spec.ProductIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := p.applyOne(ctx, tid, cfg, spec, id); err != nil {
			p.Log.Warn().Str("product_id", id).Err(err).Msg("bulk update item failed")
			report.fail(id, itemErrorMessage(err))
			continue
		}
		report.ok(id)
	}
	return report, nil
}

func (p *Processor) applyOne(ctx context.Context, tid pgtype.UUID, cfg tiers.Configuration, spec Spec, productID string) error {
	if p.Locker == nil {
		return p.updateRecord(ctx, tid, cfg, spec, productID)
	}
	ttl := p.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	key := fmt.Sprintf("pricing:lock:%s:%s", repo.UUIDString(tid), productID)
	return p.Locker.WithLock(ctx, key, ttl, func(ctx context.Context) error {
		return p.updateRecord(ctx, tid, cfg, spec, productID)
	})
}

func (p *Processor) updateRecord(ctx context.Context, tid pgtype.UUID, cfg tiers.Configuration, spec Spec, productID string) error {
	parsed, err := uuid.Parse(strings.TrimSpace(productID))
	if err != nil {
		return errors.New("product id must be a UUID")
	}
	pid := repo.UUIDValue(parsed)
	if _, err := p.Q.GetProductByTenant(ctx, dbgen.GetProductByTenantParams{ID: pid, TenantID: tid}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("product not found")
		}
		return fmt.Errorf("get product: %w", err)
	}

	record, err := p.Q.GetProductPricing(ctx, pid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errors.New("list price not set")
		}
		return fmt.Errorf("get product pricing: %w", err)
	}
	listPrice, err := repo.NullableDecimal(record.ListPrice)
	if err != nil {
		return fmt.Errorf("list price: %w", err)
	}
	if listPrice == nil {
		return errors.New("list price not set")
	}

	discountRows, err := p.Q.ListProductDiscounts(ctx, pid)
	if err != nil {
		return fmt.Errorf("list discounts: %w", err)
	}
	discounts := make([]decimal.Decimal, 0, len(discountRows))
	for _, d := range discountRows {
		pct, err := repo.Decimal(d.Percentage)
		if err != nil {
			return fmt.Errorf("discount tier %d: %w", d.TierNumber, err)
		}
		discounts = append(discounts, pct)
	}
	net := pricing.NetCost(*listPrice, discounts)

	currentMargin, err := p.currentMargin(ctx, pid, cfg, spec.TierNumber)
	if err != nil {
		return err
	}

	newSale, newMargin, err := derive(net, currentMargin, spec)
	if err != nil {
		return err
	}
	withIva := newSale
	if record.IvaEnabled {
		withIva = pricing.ApplyIva(newSale, cfg.IvaPercentage)
	}

	return repo.InTx(ctx, p.DB, p.Q, func(q dbgen.Querier) error {
		affected, err := q.UpdateProductMarginPrice(ctx, dbgen.UpdateProductMarginPriceParams{
			ProductID:        pid,
			TierNumber:       int32(spec.TierNumber),
			MarginPercentage: repo.Numeric(newMargin),
			SalePrice:        repo.Numeric(newSale),
			PriceWithIva:     repo.Numeric(withIva),
		})
		if err != nil {
			return fmt.Errorf("update margin price: %w", err)
		}
		if affected == 0 {
			if err := q.InsertProductMarginPrice(ctx, dbgen.InsertProductMarginPriceParams{
				ProductID:        pid,
				TierNumber:       int32(spec.TierNumber),
				MarginPercentage: repo.Numeric(newMargin),
				SalePrice:        repo.Numeric(newSale),
				PriceWithIva:     repo.Numeric(withIva),
			}); err != nil {
				return fmt.Errorf("insert margin price: %w", err)
			}
		}
		return nil
	})
}

// currentMargin returns the product's stored margin for the tier, or the
// configured default when the product has no stored row yet.
func (p *Processor) currentMargin(ctx context.Context, pid pgtype.UUID, cfg tiers.Configuration, tierNumber int) (decimal.Decimal, error) {
	rows, err := p.Q.ListProductMarginPrices(ctx, pid)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("list margin prices: %w", err)
	}
	for _, row := range rows {
		if int(row.TierNumber) != tierNumber {
			continue
		}
		pct, err := repo.Decimal(row.MarginPercentage)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("margin tier %d: %w", tierNumber, err)
		}
		return pct, nil
	}
	for _, t := range cfg.MarginTiers {
		if t.TierNumber == tierNumber {
			return t.DefaultMarginPercentage, nil
		}
	}
	return decimal.Decimal{}, fmt.Errorf("margin tier %d is not configured", tierNumber)
}

// derive computes the new sale price and its implied margin. For set_margin
// the value is the margin itself; every other type adjusts the current sale
// price and back-derives the margin so price, margin and VAT stay consistent.
func derive(net, currentMargin decimal.Decimal, spec Spec) (sale, margin decimal.Decimal, err error) {
	if spec.UpdateType == SetMargin {
		sale, err = pricing.SalePriceFromMargin(net, spec.Value)
		if err != nil {
			return decimal.Decimal{}, decimal.Decimal{}, err
		}
		return sale, spec.Value, nil
	}

	current, err := pricing.SalePriceFromMargin(net, currentMargin)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	hundred := decimal.NewFromInt(100)
	switch spec.UpdateType {
	case PercentageIncrease:
		sale = current.Mul(hundred.Add(spec.Value)).Div(hundred)
	case PercentageDecrease:
		sale = current.Mul(hundred.Sub(spec.Value)).Div(hundred)
	case FixedIncrease:
		sale = current.Add(spec.Value)
	case FixedDecrease:
		sale = current.Sub(spec.Value)
	default:
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("unknown update type %q", spec.UpdateType)
	}
	sale = sale.Round(2)

	margin, err = pricing.MarginFromSalePrice(net, sale)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	return sale, margin, nil
}

func validateSpec(spec Spec) error {
	if len(spec.ProductIDs) == 0 {
		return common.ValidationError("productIds", "at least one product id is required")
	}
	if !spec.UpdateType.valid() {
		return common.ValidationError("updateType", fmt.Sprintf("unknown update type %q", spec.UpdateType))
	}
	if spec.UpdateType == SetMargin && spec.Value.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return common.ValidationError("value", "margin must be below 100")
	}
	return nil
}

func (r *Report) ok(productID string) {
	r.Succeeded++
	r.Items = append(r.Items, ItemResult{ProductID: productID, Status: StatusUpdated})
	if obs.BulkItemsTotal != nil {
		obs.BulkItemsTotal.WithLabelValues(StatusUpdated).Inc()
	}
}

func (r *Report) fail(productID, msg string) {
	r.Failed++
	r.Items = append(r.Items, ItemResult{ProductID: productID, Status: StatusFailed, Error: msg})
	if obs.BulkItemsTotal != nil {
		obs.BulkItemsTotal.WithLabelValues(StatusFailed).Inc()
	}
}

// itemErrorMessage strips the wrapper from engine errors so reports carry the
// stable message.
func itemErrorMessage(err error) string {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

func tenantError(err error) error {
	if errors.Is(err, repo.ErrTenantMissing) || errors.Is(err, repo.ErrTenantUnknown) {
		return common.NewAppError(common.CodeTenantRequired, "tenant could not be resolved", http.StatusUnauthorized, err)
	}
	return err
}
