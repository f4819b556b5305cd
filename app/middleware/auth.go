package middleware

import (
	"net/http"

	"github.com/ivansvit/upgraded-blog/app/auth"
)

// RequireAdmin only lets requests through whose identity the policy allows.
// Everyone else gets 403 and the wrapped handler is not called.
func RequireAdmin(policy auth.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.IdentityFromContext(r.Context())
			if !id.Authenticated() || !policy.Allows(id) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
