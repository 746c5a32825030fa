package tiers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/repo"
)

// Kind distinguishes the two tier families.
type Kind string

const (
	KindDiscount Kind = "discount"
	KindMargin   Kind = "margin"
)

// MaxTierCount bounds how many tiers of either kind a tenant may configure.
const MaxTierCount = 10

// DiscountTier describes one configured discount tier.
type DiscountTier struct {
	TierNumber        int             `json:"tierNumber"`
	Label             string          `json:"label"`
	DefaultPercentage decimal.Decimal `json:"defaultPercentage"`
}

// MarginTier describes one configured margin tier.
type MarginTier struct {
	TierNumber              int             `json:"tierNumber"`
	Label                   string          `json:"label"`
	DefaultMarginPercentage decimal.Decimal `json:"defaultMarginPercentage"`
}

// Configuration is the tenant-wide shape of pricing.
type Configuration struct {
	DiscountTierCount int             `json:"discountTierCount"`
	MarginTierCount   int             `json:"marginTierCount"`
	DefaultIvaEnabled bool            `json:"defaultIvaEnabled"`
	IvaPercentage     decimal.Decimal `json:"ivaPercentage"`
	DiscountTiers     []DiscountTier  `json:"discountTiers"`
	MarginTiers       []MarginTier    `json:"marginTiers"`
}

// ValidateTierNumber checks a tier reference against the configured count.
func (c Configuration) ValidateTierNumber(n int, kind Kind) error {
	count := c.DiscountTierCount
	if kind == KindMargin {
		count = c.MarginTierCount
	}
	if n < 1 || n > count {
		return &common.AppError{
			Code:       common.CodeInvalidTier,
			Message:    fmt.Sprintf("%s tier %d is not configured", kind, n),
			HTTPStatus: http.StatusUnprocessableEntity,
			Details:    map[string]any{"tierNumber": n, "kind": string(kind)},
		}
	}
	return nil
}

// Service reads and replaces the tenant tier configuration.
type Service struct {
	Q       dbgen.Querier
	DB      repo.TxStarter
	Tenants *repo.Tenants
}

// Get loads the tenant configuration. A missing configuration after
// provisioning is a broken tenant, not a normal miss, so it surfaces as a
// 500 with its own code.
func (s *Service) Get(ctx context.Context) (Configuration, error) {
	tid, err := s.Tenants.UUID(ctx)
	if err != nil {
		return Configuration{}, tenantError(err)
	}
	return s.load(ctx, s.Q, tid)
}

func (s *Service) load(ctx context.Context, q dbgen.Querier, tid pgtype.UUID) (Configuration, error) {
	row, err := q.GetTierConfig(ctx, tid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Configuration{}, &common.AppError{
				Code:       common.CodeConfigNotFound,
				Message:    "tier configuration missing for tenant",
				HTTPStatus: http.StatusInternalServerError,
				Err:        err,
			}
		}
		return Configuration{}, fmt.Errorf("get tier config: %w", err)
	}
	ivaPct, err := repo.Decimal(row.IvaPercentage)
	if err != nil {
		return Configuration{}, fmt.Errorf("tier config iva percentage: %w", err)
	}
	cfg := Configuration{
		DiscountTierCount: int(row.DiscountTierCount),
		MarginTierCount:   int(row.MarginTierCount),
		DefaultIvaEnabled: row.DefaultIvaEnabled,
		IvaPercentage:     ivaPct,
	}

	discountRows, err := q.ListDiscountTiers(ctx, tid)
	if err != nil {
		return Configuration{}, fmt.Errorf("list discount tiers: %w", err)
	}
	cfg.DiscountTiers = make([]DiscountTier, 0, len(discountRows))
	for _, t := range discountRows {
		pct, err := repo.Decimal(t.DefaultPercentage)
		if err != nil {
			return Configuration{}, fmt.Errorf("discount tier %d: %w", t.TierNumber, err)
		}
		cfg.DiscountTiers = append(cfg.DiscountTiers, DiscountTier{
			TierNumber:        int(t.TierNumber),
			Label:             t.Label,
			DefaultPercentage: pct,
		})
	}

	marginRows, err := q.ListMarginTiers(ctx, tid)
	if err != nil {
		return Configuration{}, fmt.Errorf("list margin tiers: %w", err)
	}
	cfg.MarginTiers = make([]MarginTier, 0, len(marginRows))
	for _, t := range marginRows {
		pct, err := repo.Decimal(t.DefaultMarginPercentage)
		if err != nil {
			return Configuration{}, fmt.Errorf("margin tier %d: %w", t.TierNumber, err)
		}
		cfg.MarginTiers = append(cfg.MarginTiers, MarginTier{
			TierNumber:              int(t.TierNumber),
			Label:                   t.Label,
			DefaultMarginPercentage: pct,
		})
	}

	if len(cfg.DiscountTiers) != cfg.DiscountTierCount || len(cfg.MarginTiers) != cfg.MarginTierCount {
		return Configuration{}, &common.AppError{
			Code:       common.CodeConfigNotFound,
			Message:    "tier configuration is inconsistent",
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return cfg, nil
}

// Update replaces the whole tier configuration after validating it.
func (s *Service) Update(ctx context.Context, in Configuration) (Configuration, error) {
	if err := validateConfiguration(in); err != nil {
		return Configuration{}, err
	}
	tid, err := s.Tenants.UUID(ctx)
	if err != nil {
		return Configuration{}, tenantError(err)
	}

	err = repo.InTx(ctx, s.DB, s.Q, func(q dbgen.Querier) error {
		if _, err := q.UpsertTierConfig(ctx, dbgen.UpsertTierConfigParams{
			TenantID:          tid,
			DiscountTierCount: int32(in.DiscountTierCount),
			MarginTierCount:   int32(in.MarginTierCount),
			DefaultIvaEnabled: in.DefaultIvaEnabled,
			IvaPercentage:     repo.Numeric(in.IvaPercentage),
		}); err != nil {
			return fmt.Errorf("upsert tier config: %w", err)
		}
		if err := q.DeleteDiscountTiers(ctx, tid); err != nil {
			return fmt.Errorf("delete discount tiers: %w", err)
		}
		for _, t := range in.DiscountTiers {
			if err := q.InsertDiscountTier(ctx, dbgen.InsertDiscountTierParams{
				TenantID:          tid,
				TierNumber:        int32(t.TierNumber),
				Label:             t.Label,
				DefaultPercentage: repo.Numeric(t.DefaultPercentage),
			}); err != nil {
				return fmt.Errorf("insert discount tier %d: %w", t.TierNumber, err)
			}
		}
		if err := q.DeleteMarginTiers(ctx, tid); err != nil {
			return fmt.Errorf("delete margin tiers: %w", err)
		}
		for _, t := range in.MarginTiers {
			if err := q.InsertMarginTier(ctx, dbgen.InsertMarginTierParams{
				TenantID:                tid,
				TierNumber:              int32(t.TierNumber),
				Label:                   t.Label,
				DefaultMarginPercentage: repo.Numeric(t.DefaultMarginPercentage),
			}); err != nil {
				return fmt.Errorf("insert margin tier %d: %w", t.TierNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return Configuration{}, err
	}
	return in, nil
}

// EnsureDefault provisions the tenant with the default configuration when it
// has none yet. Existing configurations are returned untouched.
func (s *Service) EnsureDefault(ctx context.Context) (Configuration, error) {
	cfg, err := s.Get(ctx)
	if err == nil {
		return cfg, nil
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != common.CodeConfigNotFound {
		return Configuration{}, err
	}
	return s.Update(ctx, Default())
}

// Default is the configuration every freshly provisioned tenant starts with.
func Default() Configuration {
	return Configuration{
		DiscountTierCount: 3,
		MarginTierCount:   3,
		DefaultIvaEnabled: true,
		IvaPercentage:     decimal.New(1600, -2),
		DiscountTiers: []DiscountTier{
			{TierNumber: 1, Label: "Discount 1", DefaultPercentage: decimal.Zero},
			{TierNumber: 2, Label: "Discount 2", DefaultPercentage: decimal.Zero},
			{TierNumber: 3, Label: "Discount 3", DefaultPercentage: decimal.Zero},
		},
		MarginTiers: []MarginTier{
			{TierNumber: 1, Label: "Retail", DefaultMarginPercentage: decimal.NewFromInt(30)},
			{TierNumber: 2, Label: "Wholesale", DefaultMarginPercentage: decimal.NewFromInt(25)},
			{TierNumber: 3, Label: "Distributor", DefaultMarginPercentage: decimal.NewFromInt(20)},
		},
	}
}

func validateConfiguration(in Configuration) error {
	if in.DiscountTierCount < 1 || in.DiscountTierCount > MaxTierCount {
		return common.ValidationError("discountTierCount", fmt.Sprintf("discount tier count must be between 1 and %d", MaxTierCount))
	}
	if in.MarginTierCount < 1 || in.MarginTierCount > MaxTierCount {
		return common.ValidationError("marginTierCount", fmt.Sprintf("margin tier count must be between 1 and %d", MaxTierCount))
	}
	if in.IvaPercentage.IsNegative() {
		return common.ValidationError("ivaPercentage", "iva percentage must not be negative")
	}
	if len(in.DiscountTiers) != in.DiscountTierCount {
		return common.ValidationError("discountTiers", "discount tiers must match discountTierCount")
	}
	if len(in.MarginTiers) != in.MarginTierCount {
		return common.ValidationError("marginTiers", "margin tiers must match marginTierCount")
	}
	hundred := decimal.NewFromInt(100)
	for i, t := range in.DiscountTiers {
		if t.TierNumber != i+1 {
			return common.ValidationError("discountTiers", "discount tier numbers must be contiguous starting at 1")
		}
		if t.Label == "" {
			return common.ValidationError("discountTiers", fmt.Sprintf("discount tier %d requires a label", t.TierNumber))
		}
		if t.DefaultPercentage.IsNegative() || t.DefaultPercentage.GreaterThanOrEqual(hundred) {
			return common.ValidationError("discountTiers", fmt.Sprintf("discount tier %d default must be in [0, 100)", t.TierNumber))
		}
	}
	for i, t := range in.MarginTiers {
		if t.TierNumber != i+1 {
			return common.ValidationError("marginTiers", "margin tier numbers must be contiguous starting at 1")
		}
		if t.Label == "" {
			return common.ValidationError("marginTiers", fmt.Sprintf("margin tier %d requires a label", t.TierNumber))
		}
		if t.DefaultMarginPercentage.GreaterThanOrEqual(hundred) {
			return common.ValidationError("marginTiers", fmt.Sprintf("margin tier %d default must be below 100", t.TierNumber))
		}
	}
	return nil
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
