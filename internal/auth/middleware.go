package auth

import (
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Identify resolves the bearer token, if any, and stores the identity in the
// request context. Requests without a usable token continue as anonymous.
func Identify(service *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := service.ResolveIdentity(r.Context(), httpx.BearerToken(r))
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
		})
	}
}
