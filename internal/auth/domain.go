package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/odyssey-erp/backoffice/internal/accounts"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// TokenKind separates access tokens from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims is the signed claim set. Access tokens carry the actor kind and the
// account's role id; refresh tokens carry neither.
type Claims struct {
	Kind  TokenKind        `json:"kind"`
	Actor shared.ActorKind `json:"actor,omitempty"`
	Role  string           `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// CredentialStore looks up accounts and verifies passwords.
type CredentialStore interface {
	Authenticate(ctx context.Context, username, password string) (*accounts.Account, error)
	FindByUsername(ctx context.Context, username string) (*accounts.Account, error)
}

// LoginStamper records an end user's last login time.
type LoginStamper interface {
	StampLastLogin(ctx context.Context, username string, at time.Time) error
}

// SessionObserver counts session outcomes.
type SessionObserver interface {
	ObserveSession(event, outcome string)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
