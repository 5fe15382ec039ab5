package roles

import (
	"time"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Reserved role codes.
const (
	// AdminRoleCode is the operator role granted every enabled menu on creation.
	AdminRoleCode = "ADMIN"
	// GuestRoleCode is the end-user role used for unauthenticated callers.
	GuestRoleCode = "GUEST"
)

// Role belongs to exactly one universe; its code is unique within it.
type Role struct {
	ID          string           `json:"id"`
	Universe    shared.ActorKind `json:"universe"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Enabled     bool             `json:"enabled"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// IsAdmin reports whether the role is the operator administrator.
func (r Role) IsAdmin() bool {
	return r.Universe == shared.ActorOperator && r.Code == AdminRoleCode
}

// CreateRoleRequest carries the fields for a new role.
type CreateRoleRequest struct {
	Code        string `json:"code" validate:"required,max=50"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	Enabled     *bool  `json:"enabled"`
}

// UpdateRoleRequest carries the editable fields of a role.
type UpdateRoleRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	Enabled     *bool  `json:"enabled"`
}
