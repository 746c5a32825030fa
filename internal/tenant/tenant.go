// Package tenant resolves the calling tenant for every request. Tenant
// identity is taken from trusted transport metadata (header or subdomain),
// never from request bodies.
package tenant

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey struct{}

// HeaderName is the default header carrying the tenant slug.
const HeaderName = "X-Tenant-ID"

// With stores the tenant slug inside the context.
func With(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, contextKey{}, slug)
}

// From extracts the tenant slug from the context if present and non-empty.
func From(ctx context.Context) (string, bool) {
	slug, ok := ctx.Value(contextKey{}).(string)
	slug = strings.TrimSpace(slug)
	if !ok || slug == "" {
		return "", false
	}
	return slug, true
}

// Key namespaces a cache or queue key per tenant.
func Key(slug, key string) string {
	if slug == "" {
		return key
	}
	return slug + ":" + key
}

// Resolver extracts tenant slugs from inbound requests.
type Resolver struct {
	Header     string
	RootDomain string
}

// Middleware injects the resolved tenant into the request context. Requests
// without a resolvable tenant pass through untouched; RequireTenant rejects
// them further down the chain.
func (rs Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slug := rs.Resolve(r); slug != "" {
			r = r.WithContext(With(r.Context(), slug))
		}
		next.ServeHTTP(w, r)
	})
}

// Resolve returns the tenant slug from the header, falling back to the
// request subdomain when a root domain is configured.
func (rs Resolver) Resolve(r *http.Request) string {
	header := rs.Header
	if header == "" {
		header = HeaderName
	}
	if slug := strings.TrimSpace(r.Header.Get(header)); slug != "" {
		return slug
	}
	if rs.RootDomain == "" {
		return ""
	}
	host := hostOnly(r.Host)
	suffix := "." + strings.ToLower(rs.RootDomain)
	if !strings.HasSuffix(strings.ToLower(host), suffix) {
		return ""
	}
	sub := strings.TrimSuffix(strings.ToLower(host), suffix)
	if idx := strings.IndexByte(sub, '.'); idx >= 0 {
		sub = sub[:idx]
	}
	return strings.TrimSpace(sub)
}

func hostOnly(hostport string) string {
	hostport = strings.TrimSpace(hostport)
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return hostport
}
