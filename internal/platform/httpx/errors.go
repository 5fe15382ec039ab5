// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

var mapped = []error{
	shared.ErrInvalidToken,
	shared.ErrInvalidCredentials,
	shared.ErrActorKindMismatch,
	shared.ErrValidation,
	shared.ErrInvalidParent,
	shared.ErrRoleNotFound,
	shared.ErrMenuNotFound,
	shared.ErrSiteNotFound,
	shared.ErrAccountNotFound,
	shared.ErrNotFound,
	shared.ErrDuplicateRoleCode,
	shared.ErrDuplicateAccount,
	shared.ErrMenuHasChildren,
	shared.ErrUnauthorized,
	shared.ErrForbidden,
}

// IsInternal reports whether err falls through to the generic 500 response.
func IsInternal(err error) bool {
	for _, target := range mapped {
		if errors.Is(err, target) {
			return false
		}
	}
	return true
}

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unknown errors surface as a generic 500 without detail.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrInvalidToken):
		// Never leak which token check failed.
		Problem(w, http.StatusBadRequest, "Invalid Token", shared.ErrInvalidToken.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusBadRequest, "Invalid Credentials", shared.ErrInvalidCredentials.Error())
	case errors.Is(err, shared.ErrActorKindMismatch):
		Problem(w, http.StatusBadRequest, "Actor Kind Mismatch", err.Error())
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrInvalidParent):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrRoleNotFound),
		errors.Is(err, shared.ErrMenuNotFound),
		errors.Is(err, shared.ErrSiteNotFound),
		errors.Is(err, shared.ErrAccountNotFound),
		errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicateRoleCode), errors.Is(err, shared.ErrDuplicateAccount):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrMenuHasChildren):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
