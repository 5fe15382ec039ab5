package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shared.ErrInvalidCredentials, http.StatusBadRequest},
		{shared.ErrInvalidToken, http.StatusBadRequest},
		{fmt.Errorf("%w: operator token", shared.ErrActorKindMismatch), http.StatusBadRequest},
		{fmt.Errorf("%w: role abc", shared.ErrRoleNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: menu abc", shared.ErrMenuNotFound), http.StatusNotFound},
		{shared.ErrDuplicateRoleCode, http.StatusConflict},
		{shared.ErrMenuHasChildren, http.StatusConflict},
		{shared.ErrUnauthorized, http.StatusUnauthorized},
		{shared.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("db exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
	}
}

func TestIsInternal(t *testing.T) {
	assert.True(t, IsInternal(fmt.Errorf("connection reset")))
	assert.False(t, IsInternal(fmt.Errorf("%w: menu x", shared.ErrMenuNotFound)))
	assert.False(t, IsInternal(shared.ErrForbidden))
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("pq: password authentication failed"))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, http.StatusInternalServerError, body.Status)
	assert.Empty(t, body.Detail)
}

func TestRespondErrorInvalidTokenIsUndifferentiated(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("%w: token revoked", shared.ErrInvalidToken))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "invalid token", body.Detail)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", BearerToken(req))

	req.Header.Set("Authorization", "bearer   xyz ")
	assert.Equal(t, "xyz", BearerToken(req))
}

func TestDecodeAndValidate(t *testing.T) {
	type payload struct {
		Username string `json:"username" validate:"required"`
	}
	v := validator.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":""}`))
	var p payload
	err := DecodeAndValidate(req, v, &p)
	require.ErrorIs(t, err, shared.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	require.ErrorIs(t, DecodeAndValidate(req, v, &p), shared.ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"admin"}`))
	require.NoError(t, DecodeAndValidate(req, v, &p))
	assert.Equal(t, "admin", p.Username)
}
