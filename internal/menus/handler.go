package menus

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Guard gates routes behind named permissions.
type Guard interface {
	Require(perms ...string) func(http.Handler) http.Handler
}

// Handler exposes menu administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     Guard
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard Guard) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers menu routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(shared.PermMenusView))
		r.Get("/site/{siteId}", h.listBySite)
		r.Get("/site/{siteId}/enabled", h.listEnabled)
		r.Get("/{id}", h.get)
	})
	r.With(h.guard.Require(shared.PermMenusCreate)).Post("/", h.create)
	r.With(h.guard.Require(shared.PermMenusUpdate)).Put("/{id}", h.update)
	r.With(h.guard.Require(shared.PermMenusDelete)).Delete("/{id}", h.delete)
}

func (h *Handler) listBySite(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBySite(r.Context(), chi.URLParam(r, "siteId"))
	if err != nil {
		h.fail(w, r, "list menus", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) listEnabled(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.EnabledBySite(r.Context(), chi.URLParam(r, "siteId"))
	if err != nil {
		h.fail(w, r, "list enabled menus", err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	menu, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get menu", err)
		return
	}
	httpx.JSON(w, http.StatusOK, menu)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateMenuRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	menu, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, r, "create menu", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, menu)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateMenuRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	menu, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.fail(w, r, "update menu", err)
		return
	}
	httpx.JSON(w, http.StatusOK, menu)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "delete menu", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if httpx.IsInternal(err) {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
