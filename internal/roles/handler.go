package roles

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Authorizer decides whether the caller in ctx holds a named permission.
type Authorizer interface {
	Allow(ctx context.Context, perm string) error
}

// Handler manages role management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	authz     Authorizer
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz Authorizer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, authz: authz, validator: validator.New()}
}

// MountRoutes registers role routes below /{universe}.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/{universe}", func(r chi.Router) {
		r.Get("/", h.listRoles)
		r.Post("/", h.createRole)
		r.Get("/{id}", h.getRole)
		r.Put("/{id}", h.updateRole)
		r.Delete("/{id}", h.deleteRole)
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	universe, ok := h.authorize(w, r, shared.ActionView)
	if !ok {
		return
	}
	roles, err := h.service.List(r.Context(), universe)
	if err != nil {
		h.fail(w, r, "list roles", err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) getRole(w http.ResponseWriter, r *http.Request) {
	universe, ok := h.authorize(w, r, shared.ActionView)
	if !ok {
		return
	}
	role, err := h.service.Get(r.Context(), universe, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	universe, ok := h.authorize(w, r, shared.ActionCreate)
	if !ok {
		return
	}
	var req CreateRoleRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.Create(r.Context(), universe, req)
	if err != nil {
		h.fail(w, r, "create role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	universe, ok := h.authorize(w, r, shared.ActionUpdate)
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.Update(r.Context(), universe, chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, "update role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	universe, ok := h.authorize(w, r, shared.ActionDelete)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), universe, chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete role", err)
		return
	}
	httpx.NoContent(w)
}

// authorize parses the universe path parameter and checks the per-universe
// permission for action.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action string) (shared.ActorKind, bool) {
	universe, err := shared.ParseActorKind(chi.URLParam(r, "universe"))
	if err != nil {
		httpx.RespondError(w, err)
		return "", false
	}
	if err := h.authz.Allow(r.Context(), shared.RolesPerm(universe, action)); err != nil {
		httpx.RespondError(w, err)
		return "", false
	}
	return universe, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if httpx.IsInternal(err) {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
