package rbac

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/odyssey-erp/backoffice/internal/menus"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// MenuCatalog is the read side of the menu service used for authorization.
type MenuCatalog interface {
	Enabled(ctx context.Context) ([]menus.Menu, error)
	Get(ctx context.Context, id string) (menus.Menu, error)
	Tree(ctx context.Context, siteID string) ([]menus.Node, error)
	FindByURL(ctx context.Context, url string) ([]menus.Menu, error)
}

// Matrix holds the role-to-menu grants of one universe.
type Matrix struct {
	universe shared.ActorKind
	store    GrantStore
	menus    MenuCatalog

	generation atomic.Uint64
}

// NewMatrix constructs a matrix for universe.
func NewMatrix(universe shared.ActorKind, store GrantStore, catalog MenuCatalog) *Matrix {
	return &Matrix{universe: universe, store: store, menus: catalog}
}

// Universe returns the role universe the matrix serves.
func (m *Matrix) Universe() shared.ActorKind {
	return m.universe
}

// Generation counts the grant replaces made through this matrix.
func (m *Matrix) Generation() uint64 {
	return m.generation.Load()
}

// GrantsFor returns the grants of a role keyed by menu id. A role without
// grants yields an empty map.
func (m *Matrix) GrantsFor(ctx context.Context, roleID string) (map[string]Flags, error) {
	grants, err := m.store.GrantsFor(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("rbac: grants for %s: %w", roleID, err)
	}
	return grants, nil
}

// ReplaceAll atomically replaces a role's grants. Entries without any flag
// are dropped; for duplicate menus the last entry wins.
func (m *Matrix) ReplaceAll(ctx context.Context, roleID string, entries []Entry) error {
	kept := make([]Entry, 0, len(entries))
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, seen := index[e.MenuID]; seen {
			kept[i] = e
			continue
		}
		index[e.MenuID] = len(kept)
		kept = append(kept, e)
	}
	compact := kept[:0]
	for _, e := range kept {
		if e.Any() {
			compact = append(compact, e)
		}
	}
	if err := m.store.ReplaceAll(ctx, roleID, compact); err != nil {
		return fmt.Errorf("rbac: replace grants for %s: %w", roleID, err)
	}
	m.generation.Add(1)
	return nil
}

// GrantAllMenus replaces a role's grants with full access to every
// currently enabled menu.
func (m *Matrix) GrantAllMenus(ctx context.Context, roleID string) error {
	list, err := m.menus.Enabled(ctx)
	if err != nil {
		return fmt.Errorf("rbac: list enabled menus: %w", err)
	}
	entries := make([]Entry, 0, len(list))
	for _, menu := range list {
		entries = append(entries, Entry{MenuID: menu.ID, Flags: FullAccess()})
	}
	return m.ReplaceAll(ctx, roleID, entries)
}

// Matrices pairs the operator and end-user matrices. They never share grants.
type Matrices struct {
	Operator *Matrix
	EndUser  *Matrix
}

// NewMatrices builds both universes' matrices from their stores.
func NewMatrices(operator, endUser GrantStore, catalog MenuCatalog) Matrices {
	return Matrices{
		Operator: NewMatrix(shared.ActorOperator, operator, catalog),
		EndUser:  NewMatrix(shared.ActorEndUser, endUser, catalog),
	}
}

// For returns the matrix of a universe.
func (m Matrices) For(universe shared.ActorKind) (*Matrix, error) {
	switch universe {
	case shared.ActorOperator:
		return m.Operator, nil
	case shared.ActorEndUser:
		return m.EndUser, nil
	default:
		return nil, fmt.Errorf("%w: unknown universe %q", shared.ErrValidation, universe)
	}
}

// GrantAllMenus grants an operator role every enabled menu.
func (m Matrices) GrantAllMenus(ctx context.Context, roleID string) error {
	return m.Operator.GrantAllMenus(ctx, roleID)
}

// ClearRole drops every grant of a role.
func (m Matrices) ClearRole(ctx context.Context, universe shared.ActorKind, roleID string) error {
	matrix, err := m.For(universe)
	if err != nil {
		return err
	}
	return matrix.ReplaceAll(ctx, roleID, nil)
}
