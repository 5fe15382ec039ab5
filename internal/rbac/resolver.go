package rbac

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/backoffice/internal/menus"
	"github.com/odyssey-erp/backoffice/internal/roles"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// RoleLookup resolves roles inside a universe.
type RoleLookup interface {
	Get(ctx context.Context, universe shared.ActorKind, id string) (roles.Role, error)
	FindByCode(ctx context.Context, universe shared.ActorKind, code string) (roles.Role, error)
}

// Resolver combines the menu tree with a role's grants to produce the menus
// a caller may see.
type Resolver struct {
	matrices Matrices
	roles    RoleLookup
	menus    MenuCatalog
	logger   *slog.Logger
	group    singleflight.Group
}

// NewResolver constructs a Resolver.
func NewResolver(matrices Matrices, lookup RoleLookup, catalog MenuCatalog, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{matrices: matrices, roles: lookup, menus: catalog, logger: logger}
}

// ResolveRole picks the universe and role whose grants apply to id. Callers
// that are anonymous, carry no role, or whose role is missing or disabled
// fall back to the end-user GUEST role. An empty role id means no GUEST role
// is configured.
func (r *Resolver) ResolveRole(ctx context.Context, id shared.Identity) (shared.ActorKind, string, error) {
	if !id.Anonymous() && id.Actor.Valid() && id.RoleID != "" {
		role, err := r.roles.Get(ctx, id.Actor, id.RoleID)
		switch {
		case err == nil && role.Enabled:
			return id.Actor, role.ID, nil
		case err != nil && !errors.Is(err, shared.ErrRoleNotFound):
			return "", "", err
		}
		r.logger.Debug("role unresolved, using guest", slog.String("subject", id.Subject), slog.String("role_id", id.RoleID))
	}
	guest, err := r.roles.FindByCode(ctx, shared.ActorEndUser, roles.GuestRoleCode)
	if errors.Is(err, shared.ErrRoleNotFound) {
		return shared.ActorEndUser, "", nil
	}
	if err != nil {
		return "", "", err
	}
	if !guest.Enabled {
		return shared.ActorEndUser, "", nil
	}
	return shared.ActorEndUser, guest.ID, nil
}

// AuthorizedTree returns the site's menu forest as visible to id.
func (r *Resolver) AuthorizedTree(ctx context.Context, siteID string, id shared.Identity) ([]AuthorizedNode, error) {
	universe, roleID, err := r.ResolveRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if roleID == "" {
		return []AuthorizedNode{}, nil
	}
	return r.AuthorizedTreeForRole(ctx, siteID, universe, roleID)
}

// AuthorizedTreeForRole returns the site's menu forest filtered by a role's
// grants. Concurrent identical requests share one build; the returned slice
// must be treated as read-only.
func (r *Resolver) AuthorizedTreeForRole(ctx context.Context, siteID string, universe shared.ActorKind, roleID string) ([]AuthorizedNode, error) {
	matrix, err := r.matrices.For(universe)
	if err != nil {
		return nil, err
	}
	// A grant replace bumps the generation, so later callers never join a
	// build that read the old grants.
	key := fmt.Sprintf("%s|%s|%s|%d", siteID, universe, roleID, matrix.Generation())
	v, err := r.sharedBuild(ctx, key, func(ctx context.Context) (any, error) {
		forest, err := r.menus.Tree(ctx, siteID)
		if err != nil {
			return nil, err
		}
		grants, err := matrix.GrantsFor(ctx, roleID)
		if err != nil {
			return nil, err
		}
		return Authorize(forest, grants), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]AuthorizedNode), nil
}

// sharedBuild runs fn once per key among concurrent callers. The build is
// detached from any single caller's cancellation; each caller stops waiting
// when its own ctx is done.
func (r *Resolver) sharedBuild(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Permits reports whether a role may perform op on any enabled menu with the
// given URL.
func (r *Resolver) Permits(ctx context.Context, universe shared.ActorKind, roleID, menuURL string, op Operation) (bool, error) {
	role, err := r.roles.Get(ctx, universe, roleID)
	if errors.Is(err, shared.ErrRoleNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !role.Enabled {
		return false, nil
	}
	matrix, err := r.matrices.For(universe)
	if err != nil {
		return false, err
	}
	candidates, err := r.menus.FindByURL(ctx, menuURL)
	if err != nil {
		return false, err
	}
	if len(candidates) == 0 {
		return false, nil
	}
	grants, err := matrix.GrantsFor(ctx, roleID)
	if err != nil {
		return false, err
	}
	for _, m := range candidates {
		if grants[m.ID].Allows(op) {
			return true, nil
		}
	}
	return false, nil
}

// Authorize filters a menu forest by grants. A node stays only when it has a
// grant with effective read; a dropped node takes its whole subtree with it.
func Authorize(forest []menus.Node, grants map[string]Flags) []AuthorizedNode {
	out := make([]AuthorizedNode, 0, len(forest))
	for _, n := range forest {
		flags, ok := grants[n.ID]
		if !ok || !flags.EffectiveRead() {
			continue
		}
		out = append(out, AuthorizedNode{
			Menu:        n.Menu,
			Permissions: flags.Effective(),
			Children:    Authorize(n.Children, grants),
		})
	}
	return out
}
