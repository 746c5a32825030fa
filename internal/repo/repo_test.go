package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/repo"
	"github.com/noah-isme/backend-pos/internal/tenant"
)

type stubLookup struct {
	row   dbgen.Tenant
	calls int
	err   error
}

func (s *stubLookup) GetTenantBySlug(ctx context.Context, slug string) (dbgen.Tenant, error) {
	s.calls++
	if s.err != nil {
		return dbgen.Tenant{}, s.err
	}
	return s.row, nil
}

func TestTenantsUUIDMissing(t *testing.T) {
	tenants := &repo.Tenants{}
	if _, err := tenants.UUID(context.Background()); !errors.Is(err, repo.ErrTenantMissing) {
		t.Fatalf("expected ErrTenantMissing, got %v", err)
	}
}

func TestTenantsUUIDCachesSlug(t *testing.T) {
	id := repo.UUIDValue(uuid.New())
	lookup := &stubLookup{row: dbgen.Tenant{ID: id, Slug: "acme"}}
	tenants := &repo.Tenants{Q: lookup}
	ctx := tenant.With(context.Background(), "acme")

	for range 3 {
		got, err := tenants.UUID(ctx)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if got != id {
			t.Fatalf("got %v, want %v", got, id)
		}
	}
	if lookup.calls != 1 {
		t.Fatalf("expected 1 lookup, got %d", lookup.calls)
	}
}

func TestTenantsUUIDUnknownSlug(t *testing.T) {
	lookup := &stubLookup{err: pgx.ErrNoRows}
	tenants := &repo.Tenants{Q: lookup}
	ctx := tenant.With(context.Background(), "ghost")
	if _, err := tenants.UUID(ctx); !errors.Is(err, repo.ErrTenantUnknown) {
		t.Fatalf("expected ErrTenantUnknown, got %v", err)
	}
}

func TestTenantsUUIDDirect(t *testing.T) {
	raw := uuid.New()
	tenants := &repo.Tenants{}
	ctx := tenant.With(context.Background(), raw.String())
	got, err := tenants.UUID(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if repo.UUIDString(got) != raw.String() {
		t.Fatalf("got %s", repo.UUIDString(got))
	}
}

func TestNumericRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "534.38", "-0.13", "16.00"} {
		d := decimal.RequireFromString(s)
		back, err := repo.Decimal(repo.Numeric(d))
		if err != nil {
			t.Fatalf("convert %s: %v", s, err)
		}
		if !back.Equal(d) {
			t.Fatalf("round trip %s -> %s", s, back)
		}
	}
}

func TestNullableNumeric(t *testing.T) {
	if repo.NullableNumeric(nil).Valid {
		t.Fatal("nil should map to SQL NULL")
	}
	got, err := repo.NullableDecimal(repo.NullableNumeric(nil))
	if err != nil || got != nil {
		t.Fatalf("expected nil, got %v (%v)", got, err)
	}
}
