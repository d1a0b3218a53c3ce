package middleware

import (
	"context"
	"net/http"

	"trameserve/internal/tenant"
)

// TenantKey carries the resolved *tenant.Domain, when any matched.
const TenantKey contextKey = "tenant"

// ResolveTenant resolves the serving brand from the request host and
// makes it available downstream. No match is not an error: handlers
// that need a tenant decide what to do without one.
func ResolveTenant(resolver *tenant.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if domain, ok := resolver.Resolve(r.Host); ok {
				r = r.WithContext(context.WithValue(r.Context(), TenantKey, domain))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TenantFrom extracts the resolved tenant from a request context.
func TenantFrom(ctx context.Context) (*tenant.Domain, bool) {
	domain, ok := ctx.Value(TenantKey).(*tenant.Domain)
	return domain, ok
}

// CORSMiddleware allows the editor frontends on other origins to call
// the JSON API during development.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
