package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	dbgen "github.com/noah-isme/backend-pos/internal/db/gen"
	"github.com/noah-isme/backend-pos/internal/tenant"
)

var (
	// ErrTenantMissing indicates no tenant identifier was found in context.
	ErrTenantMissing = errors.New("repo: tenant missing from context")
	// ErrTenantUnknown indicates the tenant slug has no matching row.
	ErrTenantUnknown = errors.New("repo: tenant unknown")
)

// TenantLookup is the subset of queries needed to resolve tenant slugs.
type TenantLookup interface {
	GetTenantBySlug(ctx context.Context, slug string) (dbgen.Tenant, error)
}

// Tenants resolves the context tenant slug to its database UUID. Resolved
// slugs are cached for the process lifetime; tenants are never deleted while
// their data exists, so the mapping is stable.
type Tenants struct {
	Q TenantLookup

	mu    sync.RWMutex
	cache map[string]pgtype.UUID
}

// UUID resolves the tenant from the context to its primary key. Slugs that
// already parse as UUIDs are used directly.
func (t *Tenants) UUID(ctx context.Context) (pgtype.UUID, error) {
	slug, ok := tenant.From(ctx)
	if !ok {
		return pgtype.UUID{}, ErrTenantMissing
	}
	if parsed, err := uuid.Parse(slug); err == nil {
		return UUIDValue(parsed), nil
	}

	t.mu.RLock()
	cached, hit := t.cache[slug]
	t.mu.RUnlock()
	if hit {
		return cached, nil
	}

	if t.Q == nil {
		return pgtype.UUID{}, ErrTenantUnknown
	}
	row, err := t.Q.GetTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgtype.UUID{}, fmt.Errorf("%w: %s", ErrTenantUnknown, slug)
		}
		return pgtype.UUID{}, fmt.Errorf("resolve tenant %s: %w", slug, err)
	}

	t.mu.Lock()
	if t.cache == nil {
		t.cache = make(map[string]pgtype.UUID)
	}
	t.cache[slug] = row.ID
	t.mu.Unlock()
	return row.ID, nil
}

// UUIDValue converts a parsed uuid into its pgtype representation.
func UUIDValue(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

// UUIDString renders a pgtype UUID as its canonical string form.
func UUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	u, err := uuid.FromBytes(id.Bytes[:])
	if err != nil {
		return ""
	}
	return u.String()
}
