package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/backoffice/internal/accounts"
	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/menus"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/roles"
	"github.com/odyssey-erp/backoffice/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthService     *auth.Service
	AuthHandler     *auth.Handler
	AccountsHandler *accounts.Handler
	RolesHandler    *roles.Handler
	MenusHandler    *menus.Handler
	RBACHandler     *rbac.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with back-office defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	var identify func(http.Handler) http.Handler
	if params.AuthService != nil {
		identify = auth.Identify(params.AuthService)
	}
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:   params.Logger,
		Config:   params.Config,
		Identify: identify,
		Metrics:  params.Metrics,
	}) {
		r.Use(mw)
	}

	if params.Config == nil || !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		if params.AccountsHandler != nil {
			params.AccountsHandler.MountRoutes(r)
		}
	})
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	r.Route("/menu", func(r chi.Router) {
		if params.MenusHandler != nil {
			params.MenusHandler.MountRoutes(r)
		}
		if params.RBACHandler != nil {
			params.RBACHandler.MountMenuRoutes(r)
		}
	})
	if params.RBACHandler != nil {
		r.Route("/role-menu", params.RBACHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
