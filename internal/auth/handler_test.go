package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/backoffice/internal/accounts"
	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/shared"
	_ "github.com/odyssey-erp/backoffice/testing"
)

func newAuthRouter(t *testing.T) http.Handler {
	t.Helper()
	accountSvc := accounts.NewService(accounts.NewMemoryRepository(), bcrypt.MinCost)
	_, err := accountSvc.Create(t.Context(), accounts.CreateAccountRequest{Username: "admin", Password: "admin123", Kind: shared.ActorOperator})
	require.NoError(t, err)
	codec, err := auth.NewCodec("handler-secret", "")
	require.NoError(t, err)
	svc := auth.NewService(auth.Config{
		Codec:       codec,
		Revocations: auth.NewMemoryRevocations(time.Minute),
		Refresh:     auth.NewMemoryRefreshStore(),
		Credentials: accountSvc,
	})

	r := chi.NewRouter()
	r.Use(auth.Identify(svc))
	r.Route("/auth", auth.NewHandler(nil, svc).MountRoutes)
	r.Get("/whoami", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(shared.IdentityFromContext(r.Context()).Subject))
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestLoginRefreshLogoutFlow(t *testing.T) {
	router := newAuthRouter(t)

	rr := do(t, router, http.MethodPost, "/auth/login/operator", `{"username":"admin","password":"admin123"}`, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.AccessToken)

	rr = do(t, router, http.MethodGet, "/whoami", "", pair.AccessToken)
	assert.Equal(t, "admin", rr.Body.String())

	rr = do(t, router, http.MethodPost, "/auth/refresh", `{"refreshToken":"`+pair.RefreshToken+`"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rotated auth.TokenPair
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rotated))

	rr = do(t, router, http.MethodPost, "/auth/refresh", `{"refreshToken":"`+pair.RefreshToken+`"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/auth/logout/enduser", "", rotated.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/auth/logout/operator", "", rotated.AccessToken)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/whoami", "", rotated.AccessToken)
	assert.Empty(t, rr.Body.String())

	rr = do(t, router, http.MethodPost, "/auth/logout/operator", "", rotated.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginFailures(t *testing.T) {
	router := newAuthRouter(t)

	rr := do(t, router, http.MethodPost, "/auth/login/member", `{"username":"admin","password":"admin123"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/auth/login/operator", `{"username":"admin"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/auth/login/robot", `{"username":"admin","password":"admin123"}`, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/auth/logout/operator", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
