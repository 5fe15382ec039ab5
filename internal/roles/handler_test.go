package roles

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

type permSet map[string]bool

func (p permSet) Allow(ctx context.Context, perm string) error {
	if p[perm] {
		return nil
	}
	return shared.ErrForbidden
}

func newRolesRouter(perms permSet) http.Handler {
	r := chi.NewRouter()
	r.Route("/roles", NewHandler(nil, NewService(NewMemoryRepository(), nil, nil), perms).MountRoutes)
	return r
}

func TestHandlerCreateListRoles(t *testing.T) {
	router := newRolesRouter(permSet{"roles.enduser.create": true, "roles.enduser.view": true})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/roles/member", strings.NewReader(`{"code":"vip","name":"VIP"}`)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/roles/enduser", strings.NewReader(`{"code":"VIP","name":"VIP"}`)))
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roles/enduser", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var list []Role
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "VIP", list[0].Code)
}

func TestHandlerChecksPerUniversePermission(t *testing.T) {
	router := newRolesRouter(permSet{"roles.enduser.view": true})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roles/operator", nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roles/robots", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/roles/enduser/missing", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
