package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCodec(t *testing.T) (*Codec, *clock) {
	t.Helper()
	clk := &clock{t: time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)}
	codec, err := NewCodec("unit-test-secret", "backoffice")
	require.NoError(t, err)
	return codec.WithClock(clk.Now), clk
}

func TestCodecRoundTrip(t *testing.T) {
	codec, _ := newTestCodec(t)

	access, expiresAt, err := codec.IssueAccess("admin", shared.ActorOperator, "role-1", time.Minute)
	require.NoError(t, err)
	claims, err := codec.Decode(access)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.Equal(t, shared.ActorOperator, claims.Actor)
	assert.Equal(t, "role-1", claims.Role)
	assert.True(t, expiresAt.Equal(claims.ExpiresAt.Time))

	refresh, _, err := codec.IssueRefresh("admin", time.Hour)
	require.NoError(t, err)
	claims, err = codec.Decode(refresh)
	require.NoError(t, err)
	assert.Equal(t, KindRefresh, claims.Kind)
	assert.Empty(t, claims.Role)
	assert.Empty(t, claims.Actor)
}

func TestCodecExpiryHasNoLeeway(t *testing.T) {
	codec, clk := newTestCodec(t)
	token, _, err := codec.IssueAccess("admin", shared.ActorOperator, "", time.Minute)
	require.NoError(t, err)

	clk.Advance(59 * time.Second)
	_, err = codec.Decode(token)
	require.NoError(t, err)

	clk.Advance(time.Second)
	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodecRejectsForeignSignature(t *testing.T) {
	codec, clk := newTestCodec(t)
	other, err := NewCodec("another-secret", "backoffice")
	require.NoError(t, err)
	token, _, err := other.WithClock(clk.Now).IssueAccess("admin", shared.ActorOperator, "", time.Minute)
	require.NoError(t, err)

	_, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodecRejectsMalformed(t *testing.T) {
	codec, _ := newTestCodec(t)

	for _, raw := range []string{"", "garbage", "a.b.c", strings.Repeat("x", 40)} {
		_, err := codec.Decode(raw)
		assert.ErrorIs(t, err, ErrMalformed, raw)
	}
}

func TestIsRefreshKind(t *testing.T) {
	codec, clk := newTestCodec(t)
	access, _, err := codec.IssueAccess("admin", shared.ActorOperator, "", time.Minute)
	require.NoError(t, err)
	refresh, _, err := codec.IssueRefresh("admin", time.Minute)
	require.NoError(t, err)

	assert.True(t, codec.IsRefreshKind(refresh))
	assert.False(t, codec.IsRefreshKind(access))
	assert.False(t, codec.IsRefreshKind("not-a-token"))

	clk.Advance(2 * time.Minute)
	assert.False(t, codec.IsRefreshKind(refresh))
}

func TestRefreshTokensAreUniqueWithinOneSecond(t *testing.T) {
	codec, _ := newTestCodec(t)
	first, _, err := codec.IssueRefresh("admin", time.Hour)
	require.NoError(t, err)
	second, _, err := codec.IssueRefresh("admin", time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewCodecRequiresSecret(t *testing.T) {
	_, err := NewCodec("", "backoffice")
	assert.Error(t, err)
}
