package accounts

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

// Handler serves the operator's own profile and password endpoints.
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

// MountRoutes registers profile routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(shared.PermProfileSelf))
		r.Get("/profile", h.profile)
		r.Put("/profile", h.updateProfile)
		r.Put("/password", h.changePassword)
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	id := shared.IdentityFromContext(r.Context())
	account, err := h.service.Profile(r.Context(), id.Subject)
	if err != nil {
		h.fail(w, r, "load profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id := shared.IdentityFromContext(r.Context())
	account, err := h.service.UpdateProfile(r.Context(), id.Subject, req)
	if err != nil {
		h.fail(w, r, "update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := httpx.DecodeAndValidate(r, h.validator, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id := shared.IdentityFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), id.Subject, req); err != nil {
		h.fail(w, r, "change password", err)
		return
	}
	h.logger.Info("password changed", slog.String("subject", id.Subject))
	httpx.NoContent(w)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if httpx.IsInternal(err) {
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
