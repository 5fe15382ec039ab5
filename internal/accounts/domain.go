package accounts

import (
	"time"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Account is a login identity. Kind decides which login endpoint accepts it
// and which role universe RoleID refers to.
type Account struct {
	ID           string           `json:"id"`
	Username     string           `json:"username"`
	PasswordHash string           `json:"-"`
	Kind         shared.ActorKind `json:"kind"`
	RoleID       string           `json:"roleId,omitempty"`
	Name         string           `json:"name"`
	Email        string           `json:"email,omitempty"`
	AvatarURL    string           `json:"avatarUrl,omitempty"`
	Enabled      bool             `json:"enabled"`
	LastLoginAt  *time.Time       `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

// CreateAccountRequest carries the fields for a new account.
type CreateAccountRequest struct {
	Username string           `json:"username" validate:"required,max=50"`
	Password string           `json:"password" validate:"required,min=6"`
	Kind     shared.ActorKind `json:"kind" validate:"required"`
	RoleID   string           `json:"roleId"`
	Name     string           `json:"name" validate:"max=100"`
	Email    string           `json:"email" validate:"omitempty,email"`
}

// UpdateProfileRequest carries the self-editable profile fields.
type UpdateProfileRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,url"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
