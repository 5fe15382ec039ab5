package shared

import (
	"fmt"
	"strings"
)

// ActorKind partitions accounts into operators and end users. Each kind has
// its own login endpoint, role universe and permission matrix.
type ActorKind string

const (
	ActorOperator ActorKind = "operator"
	ActorEndUser  ActorKind = "enduser"
)

// ActorKinds lists every supported actor kind.
func ActorKinds() []ActorKind {
	return []ActorKind{ActorOperator, ActorEndUser}
}

// Valid reports whether k is a known actor kind.
func (k ActorKind) Valid() bool {
	return k == ActorOperator || k == ActorEndUser
}

func (k ActorKind) String() string {
	return string(k)
}

// ParseActorKind accepts the canonical names plus the legacy path aliases
// ("admin" for operators, "user"/"member" for end users).
func ParseActorKind(raw string) (ActorKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "operator", "admin":
		return ActorOperator, nil
	case "enduser", "end-user", "user", "member":
		return ActorEndUser, nil
	default:
		return "", fmt.Errorf("%w: unknown actor kind %q", ErrValidation, raw)
	}
}
