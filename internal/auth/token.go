package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Decode failures.
var (
	ErrMalformed        = errors.New("auth: malformed token")
	ErrInvalidSignature = errors.New("auth: invalid token signature")
	ErrExpired          = errors.New("auth: token expired")
)

// Codec signs and verifies HS256 tokens.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewCodec builds a Codec. The secret must not be empty.
func NewCodec(secret, issuer string) (*Codec, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret required")
	}
	return &Codec{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock replaces the time source used for issuing and verifying.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

// Now returns the codec's current time.
func (c *Codec) Now() time.Time {
	return c.now()
}

// IssueAccess signs an access token for subject.
func (c *Codec) IssueAccess(subject string, actor shared.ActorKind, roleID string, ttl time.Duration) (string, time.Time, error) {
	return c.issue(Claims{Kind: KindAccess, Actor: actor, Role: roleID}, subject, ttl)
}

// IssueRefresh signs a refresh token for subject.
func (c *Codec) IssueRefresh(subject string, ttl time.Duration) (string, time.Time, error) {
	return c.issue(Claims{Kind: KindRefresh}, subject, ttl)
}

func (c *Codec) issue(claims Claims, subject string, ttl time.Duration) (string, time.Time, error) {
	now := c.now().UTC()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies signature and expiry and returns the claims. Expiry is
// checked without leeway.
func (c *Codec) Decode(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrMalformed
	}
	if claims.Subject == "" || (claims.Kind != KindAccess && claims.Kind != KindRefresh) {
		return nil, ErrMalformed
	}
	return claims, nil
}

// IsRefreshKind reports whether raw decodes to a refresh token. Decode
// failures yield false.
func (c *Codec) IsRefreshKind(raw string) bool {
	claims, err := c.Decode(raw)
	return err == nil && claims.Kind == KindRefresh
}
