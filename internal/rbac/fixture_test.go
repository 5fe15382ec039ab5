package rbac

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/menus"
	"github.com/odyssey-erp/backoffice/internal/roles"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

type fixture struct {
	menus    *menus.Service
	roles    *roles.Service
	matrices Matrices
	resolver *Resolver
	site     menus.Site
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	menuRepo := menus.NewMemoryRepository()
	site, err := menuRepo.CreateSite(context.Background(), menus.Site{Code: "C002", Name: "homepage"})
	require.NoError(t, err)
	menuSvc := menus.NewService(menuRepo)
	matrices := NewMatrices(NewMemoryGrantStore(), NewMemoryGrantStore(), menuSvc)
	roleSvc := roles.NewService(roles.NewMemoryRepository(), matrices, nil)
	return &fixture{
		menus:    menuSvc,
		roles:    roleSvc,
		matrices: matrices,
		resolver: NewResolver(matrices, roleSvc, menuSvc, nil),
		site:     site,
	}
}

func (f *fixture) addMenu(t *testing.T, name, url, parentID string, order int) menus.Menu {
	t.Helper()
	m, err := f.menus.Create(context.Background(), menus.CreateMenuRequest{
		SiteID:       f.site.ID,
		Name:         name,
		URL:          url,
		ParentID:     parentID,
		DisplayOrder: &order,
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) addRole(t *testing.T, universe shared.ActorKind, code string) roles.Role {
	t.Helper()
	role, err := f.roles.Create(context.Background(), universe, roles.CreateRoleRequest{Code: code, Name: code})
	require.NoError(t, err)
	return role
}

func (f *fixture) grant(t *testing.T, universe shared.ActorKind, roleID string, entries ...Entry) {
	t.Helper()
	matrix, err := f.matrices.For(universe)
	require.NoError(t, err)
	require.NoError(t, matrix.ReplaceAll(context.Background(), roleID, entries))
}

func nodeIDs(nodes []AuthorizedNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func menusUpdate(name string, enabled *bool) menus.UpdateMenuRequest {
	return menus.UpdateMenuRequest{Name: name, Enabled: enabled}
}

func rolesUpdate(name string, enabled *bool) roles.UpdateRoleRequest {
	return roles.UpdateRoleRequest{Name: name, Enabled: enabled}
}
