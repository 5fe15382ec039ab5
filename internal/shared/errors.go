package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, expired, revoked and rotated tokens alike.
	ErrInvalidToken = errors.New("invalid token")
	// ErrActorKindMismatch occurs when an operator token hits an end-user endpoint or the reverse.
	ErrActorKindMismatch = errors.New("actor kind mismatch")
	// ErrRoleNotFound indicates the referenced role does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrMenuNotFound indicates the referenced menu does not exist.
	ErrMenuNotFound = errors.New("menu not found")
	// ErrSiteNotFound indicates the referenced site does not exist.
	ErrSiteNotFound = errors.New("site not found")
	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateRoleCode occurs when a role code already exists in its universe.
	ErrDuplicateRoleCode = errors.New("duplicate role code")
	// ErrDuplicateAccount occurs when a login name is already taken.
	ErrDuplicateAccount = errors.New("duplicate account")
	// ErrMenuHasChildren rejects deleting a menu that still has children.
	ErrMenuHasChildren = errors.New("menu has children")
	// ErrInvalidParent rejects a parent outside the site or one that would form a cycle.
	ErrInvalidParent = errors.New("invalid parent menu")
	// ErrValidation indicates malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates the request carries no usable identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates the identity lacks the required grant.
	ErrForbidden = errors.New("forbidden")
)
