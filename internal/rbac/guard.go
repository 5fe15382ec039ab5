package rbac

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Requirement is what a named permission demands of a caller: the actor
// kind, and optionally an operation on the menu registered at MenuURL.
type Requirement struct {
	Actor     shared.ActorKind
	MenuURL   string
	Operation Operation
}

// Administration menu URLs that gate the back-office endpoints.
const (
	MenusAdminURL    = "/admin/menus"
	OperatorRolesURL = "/admin/user-roles"
	EndUserRolesURL  = "/admin/member-roles"
)

var actionOperations = map[string]Operation{
	shared.ActionView:   OpRead,
	shared.ActionCreate: OpCreate,
	shared.ActionUpdate: OpUpdate,
	shared.ActionDelete: OpDelete,
}

// DefaultRequirements maps every core permission to its requirement.
func DefaultRequirements() map[string]Requirement {
	reqs := map[string]Requirement{
		shared.PermProfileSelf: {Actor: shared.ActorOperator},
		shared.PermMenusView:   {Actor: shared.ActorOperator, MenuURL: MenusAdminURL, Operation: OpRead},
		shared.PermMenusCreate: {Actor: shared.ActorOperator, MenuURL: MenusAdminURL, Operation: OpCreate},
		shared.PermMenusUpdate: {Actor: shared.ActorOperator, MenuURL: MenusAdminURL, Operation: OpUpdate},
		shared.PermMenusDelete: {Actor: shared.ActorOperator, MenuURL: MenusAdminURL, Operation: OpDelete},
	}
	for _, universe := range shared.ActorKinds() {
		url := roleAdminURL(universe)
		for action, op := range actionOperations {
			reqs[shared.RolesPerm(universe, action)] = Requirement{Actor: shared.ActorOperator, MenuURL: url, Operation: op}
		}
		reqs[shared.RoleMenuPerm(universe, shared.ActionView)] = Requirement{Actor: shared.ActorOperator, MenuURL: url, Operation: OpRead}
		reqs[shared.RoleMenuPerm(universe, shared.ActionUpdate)] = Requirement{Actor: shared.ActorOperator, MenuURL: url, Operation: OpUpdate}
	}
	return reqs
}

func roleAdminURL(universe shared.ActorKind) string {
	if universe == shared.ActorEndUser {
		return EndUserRolesURL
	}
	return OperatorRolesURL
}

// Guard checks callers against a requirement table. Unknown permission
// names are denied.
type Guard struct {
	requirements map[string]Requirement
	resolver     *Resolver
	logger       *slog.Logger
}

// NewGuard constructs a Guard. A nil table uses DefaultRequirements.
func NewGuard(resolver *Resolver, requirements map[string]Requirement, logger *slog.Logger) *Guard {
	if requirements == nil {
		requirements = DefaultRequirements()
	}
	if logger == nil {
		logger = slog.Default()
	}
	normalized := make(map[string]Requirement, len(requirements))
	for name, req := range requirements {
		normalized[normalizePermission(name)] = req
	}
	return &Guard{requirements: normalized, resolver: resolver, logger: logger}
}

// Allow checks the identity stored in ctx against perm.
func (g *Guard) Allow(ctx context.Context, perm string) error {
	return g.Check(ctx, shared.IdentityFromContext(ctx), perm)
}

// Check returns nil when id satisfies perm, or one of ErrUnauthorized,
// ErrActorKindMismatch and ErrForbidden.
func (g *Guard) Check(ctx context.Context, id shared.Identity, perm string) error {
	name := normalizePermission(perm)
	req, ok := g.requirements[name]
	if !ok {
		g.logger.Warn("rbac unknown permission", slog.String("permission", name))
		return fmt.Errorf("%w: %s", shared.ErrForbidden, name)
	}
	if id.Anonymous() {
		return shared.ErrUnauthorized
	}
	if id.Actor != req.Actor {
		return fmt.Errorf("%w: %s requires %s", shared.ErrActorKindMismatch, name, req.Actor)
	}
	if req.MenuURL == "" {
		return nil
	}
	if id.RoleID == "" {
		return fmt.Errorf("%w: %s", shared.ErrForbidden, name)
	}
	allowed, err := g.resolver.Permits(ctx, id.Actor, id.RoleID, req.MenuURL, req.Operation)
	if err != nil {
		return fmt.Errorf("rbac check %s: %w", name, err)
	}
	if !allowed {
		return fmt.Errorf("%w: %s", shared.ErrForbidden, name)
	}
	return nil
}

// Require ensures the current caller holds every listed permission.
func (g *Guard) Require(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, perm := range perms {
				if err := g.Allow(r.Context(), perm); err != nil {
					if httpx.IsInternal(err) {
						g.logger.Error("rbac require", slog.String("permission", perm), slog.Any("error", err))
					}
					httpx.RespondError(w, err)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizePermission(p string) string {
	return strings.TrimSpace(strings.ToLower(p))
}
