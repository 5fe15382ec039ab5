package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

func TestGuardCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	menusAdmin := f.addMenu(t, "Menus", MenusAdminURL, "", 0)
	f.addMenu(t, "Member roles", EndUserRolesURL, "", 1)
	admin := f.addRole(t, shared.ActorOperator, "ADMIN")
	viewer := f.addRole(t, shared.ActorOperator, "OPERATOR")
	f.grant(t, shared.ActorOperator, viewer.ID, Entry{MenuID: menusAdmin.ID, Flags: Flags{Read: true}})
	guard := NewGuard(f.resolver, nil, nil)

	adminID := shared.Identity{Subject: "admin", Actor: shared.ActorOperator, RoleID: admin.ID}
	viewerID := shared.Identity{Subject: "op", Actor: shared.ActorOperator, RoleID: viewer.ID}
	memberID := shared.Identity{Subject: "member", Actor: shared.ActorEndUser, RoleID: "x"}

	assert.NoError(t, guard.Check(ctx, adminID, shared.PermMenusDelete))
	assert.NoError(t, guard.Check(ctx, adminID, shared.RolesPerm(shared.ActorEndUser, shared.ActionCreate)))
	assert.NoError(t, guard.Check(ctx, viewerID, shared.PermMenusView))
	assert.ErrorIs(t, guard.Check(ctx, viewerID, shared.PermMenusCreate), shared.ErrForbidden)
	assert.ErrorIs(t, guard.Check(ctx, viewerID, shared.RolesPerm(shared.ActorEndUser, shared.ActionView)), shared.ErrForbidden)
	assert.ErrorIs(t, guard.Check(ctx, shared.Identity{}, shared.PermMenusView), shared.ErrUnauthorized)
	assert.ErrorIs(t, guard.Check(ctx, memberID, shared.PermMenusView), shared.ErrActorKindMismatch)
	assert.ErrorIs(t, guard.Check(ctx, adminID, "reports.view"), shared.ErrForbidden)

	noRole := shared.Identity{Subject: "op", Actor: shared.ActorOperator}
	assert.NoError(t, guard.Check(ctx, noRole, shared.PermProfileSelf))
	assert.ErrorIs(t, guard.Check(ctx, noRole, shared.PermMenusView), shared.ErrForbidden)
	assert.ErrorIs(t, guard.Check(ctx, memberID, shared.PermProfileSelf), shared.ErrActorKindMismatch)
}

func TestGuardCheckDisabledRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMenu(t, "Menus", MenusAdminURL, "", 0)
	admin := f.addRole(t, shared.ActorOperator, "ADMIN")
	guard := NewGuard(f.resolver, nil, nil)
	id := shared.Identity{Subject: "admin", Actor: shared.ActorOperator, RoleID: admin.ID}
	require.NoError(t, guard.Check(ctx, id, shared.PermMenusView))

	off := false
	_, err := f.roles.Update(ctx, shared.ActorOperator, admin.ID, rolesUpdate("Admin", &off))
	require.NoError(t, err)

	assert.ErrorIs(t, guard.Check(ctx, id, shared.PermMenusView), shared.ErrForbidden)
}

func TestGuardRequireMiddleware(t *testing.T) {
	f := newFixture(t)
	f.addMenu(t, "Menus", MenusAdminURL, "", 0)
	admin := f.addRole(t, shared.ActorOperator, "ADMIN")
	guard := NewGuard(f.resolver, nil, nil)
	handler := guard.Require(shared.PermMenusView, shared.PermMenusUpdate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), shared.Identity{Subject: "admin", Actor: shared.ActorOperator, RoleID: admin.ID}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestDefaultRequirementsCoverCoreScopes(t *testing.T) {
	reqs := DefaultRequirements()
	for _, scope := range shared.CoreScopes() {
		_, ok := reqs[scope]
		assert.True(t, ok, scope)
	}
}
