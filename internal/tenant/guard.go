package tenant

import (
	"net/http"

	"github.com/noah-isme/backend-pos/internal/common"
)

// RequireTenant rejects requests whose context carries no tenant.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := From(r.Context()); !ok {
			common.JSONError(w, http.StatusUnauthorized, common.CodeTenantRequired, "tenant is required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
