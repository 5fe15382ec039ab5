package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Handler exposes the role-menu administration endpoints and the
// permission-annotated menu tree.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	resolver  *Resolver
	guard     *Guard
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, resolver *Resolver, guard *Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, resolver: resolver, guard: guard, validator: validator.New()}
}

// MountRoutes registers /role-menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/role/{roleId}", h.menuPermissions)
	r.Post("/", h.savePermissions)
}

// MountMenuRoutes registers the public authorized-tree route under /menu.
func (h *Handler) MountMenuRoutes(r chi.Router) {
	r.Get("/site/{siteId}/enabled/with-permissions", h.authorizedTree)
}

func (h *Handler) menuPermissions(w http.ResponseWriter, r *http.Request) {
	universe, err := parseUniverse(r.URL.Query().Get("universe"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.guard.Allow(r.Context(), shared.RoleMenuPerm(universe, shared.ActionView)); err != nil {
		h.fail(w, r, "role menu permissions", err)
		return
	}
	list, err := h.service.MenuPermissions(r.Context(), universe, chi.URLParam(r, "roleId"))
	if err != nil {
		h.fail(w, r, "role menu permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) savePermissions(w http.ResponseWriter, r *http.Request) {
	var req SavePermissionsRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	universe, err := parseUniverse(req.Universe)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.guard.Allow(r.Context(), shared.RoleMenuPerm(universe, shared.ActionUpdate)); err != nil {
		h.fail(w, r, "save role menu permissions", err)
		return
	}
	if err := h.service.SavePermissions(r.Context(), universe, req.RoleID, req.MenuPermissions); err != nil {
		h.fail(w, r, "save role menu permissions", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) authorizedTree(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	forest, err := h.resolver.AuthorizedTree(r.Context(), chi.URLParam(r, "siteId"), id)
	if err != nil {
		h.fail(w, r, "authorized menu tree", err)
		return
	}
	httpx.JSON(w, http.StatusOK, forest)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if httpx.IsInternal(err) {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

// parseUniverse defaults to the operator universe.
func parseUniverse(raw string) (shared.ActorKind, error) {
	if raw == "" {
		return shared.ActorOperator, nil
	}
	return shared.ParseActorKind(raw)
}
