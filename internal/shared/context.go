package shared

import (
	"context"
	"time"
)

// Identity is the caller resolved from an access token. The zero value is
// the anonymous caller.
type Identity struct {
	Subject   string
	Actor     ActorKind
	RoleID    string
	Token     string
	ExpiresAt time.Time
}

// Anonymous reports whether the identity carries no subject.
func (i Identity) Anonymous() bool {
	return i.Subject == ""
}

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context. Missing values
// yield the anonymous identity.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityContextKey{}).(Identity)
	return id
}
