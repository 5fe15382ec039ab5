package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/backoffice/internal/accounts"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

type stampRecorder struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stampRecorder) StampLastLogin(ctx context.Context, username string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, username)
	return s.err
}

type outcomeCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *outcomeCounter) ObserveSession(event, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counts[event+"/"+outcome]++
}

func (o *outcomeCounter) count(key string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.counts[key]
}

type sessionFixture struct {
	service  *Service
	codec    *Codec
	clock    *clock
	stamps   *stampRecorder
	outcomes *outcomeCounter
	accounts *accounts.Service
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	ctx := context.Background()
	codec, clk := newTestCodec(t)
	accountSvc := accounts.NewService(accounts.NewMemoryRepository(), bcrypt.MinCost)
	_, err := accountSvc.Create(ctx, accounts.CreateAccountRequest{Username: "admin", Password: "admin123", Kind: shared.ActorOperator, RoleID: "role-admin"})
	require.NoError(t, err)
	_, err = accountSvc.Create(ctx, accounts.CreateAccountRequest{Username: "member", Password: "member123", Kind: shared.ActorEndUser, RoleID: "role-basic"})
	require.NoError(t, err)

	stamps := &stampRecorder{}
	outcomes := &outcomeCounter{counts: make(map[string]int)}
	svc := NewService(Config{
		Codec:       codec,
		Revocations: NewMemoryRevocations(time.Minute),
		Refresh:     NewMemoryRefreshStore(),
		Credentials: accountSvc,
		Stamper:     stamps,
		Observer:    outcomes,
		AccessTTL:   15 * time.Minute,
		RefreshTTL:  time.Hour,
	})
	return &sessionFixture{service: svc, codec: codec, clock: clk, stamps: stamps, outcomes: outcomes, accounts: accountSvc}
}

func TestLoginIssuesDecodableTokens(t *testing.T) {
	f := newSessionFixture(t)

	pair, err := f.service.Login(context.Background(), shared.ActorOperator, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := f.codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "role-admin", claims.Role)
	assert.Equal(t, shared.ActorOperator, claims.Actor)
	assert.True(t, f.codec.IsRefreshKind(pair.RefreshToken))
	assert.Empty(t, f.stamps.calls)
	assert.Equal(t, 1, f.outcomes.count("login/success"))
}

func TestLoginRejectsWrongKindAndPassword(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, shared.ActorEndUser, "admin", "admin123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = f.service.Login(ctx, shared.ActorOperator, "member", "member123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = f.service.Login(ctx, shared.ActorOperator, "admin", "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = f.service.Login(ctx, shared.ActorOperator, "nobody", "x")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
	assert.Equal(t, 4, f.outcomes.count("login/failure"))
}

func TestEndUserLoginStampsLastLogin(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.service.Login(context.Background(), shared.ActorEndUser, "member", "member123")
	require.NoError(t, err)
	assert.Equal(t, []string{"member"}, f.stamps.calls)
}

func TestStampFailureDoesNotFailLogin(t *testing.T) {
	f := newSessionFixture(t)
	f.stamps.err = errors.New("queue unavailable")

	_, err := f.service.Login(context.Background(), shared.ActorEndUser, "member", "member123")
	assert.NoError(t, err)
}

func TestRefreshRotation(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	first, err := f.service.Login(ctx, shared.ActorOperator, "admin", "admin123")
	require.NoError(t, err)

	second, err := f.service.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	_, err = f.service.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)

	third, err := f.service.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
	claims, err := f.codec.Decode(third.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
}

func TestRefreshFailuresAreUndifferentiated(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	pair, err := f.service.Login(ctx, shared.ActorOperator, "admin", "admin123")
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, pair.AccessToken)
	assert.Equal(t, shared.ErrInvalidToken, err)

	_, err = f.service.Refresh(ctx, "garbage")
	assert.Equal(t, shared.ErrInvalidToken, err)

	f.clock.Advance(2 * time.Hour)
	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.Equal(t, shared.ErrInvalidToken, err)
}

func TestConcurrentRefreshHasOneWinner(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	pair, err := f.service.Login(ctx, shared.ActorOperator, "admin", "admin123")
	require.NoError(t, err)

	var (
		mu   sync.Mutex
		wins int
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.Refresh(ctx, pair.RefreshToken); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestLogoutRevokesImmediately(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	pair, err := f.service.Login(ctx, shared.ActorEndUser, "member", "member123")
	require.NoError(t, err)

	id := f.service.ResolveIdentity(ctx, pair.AccessToken)
	require.False(t, id.Anonymous())
	assert.Equal(t, "member", id.Subject)
	assert.Equal(t, "role-basic", id.RoleID)

	require.NoError(t, f.service.Logout(ctx, shared.ActorEndUser, pair.AccessToken))
	assert.True(t, f.service.ResolveIdentity(ctx, pair.AccessToken).Anonymous())

	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestSecondLogoutFails(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	pair, err := f.service.Login(ctx, shared.ActorOperator, "admin", "admin123")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, shared.ActorOperator, pair.AccessToken))
	assert.ErrorIs(t, f.service.Logout(ctx, shared.ActorOperator, pair.AccessToken), shared.ErrInvalidToken)
}

func TestLogoutChecksActorKind(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	pair, err := f.service.Login(ctx, shared.ActorOperator, "admin", "admin123")
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Logout(ctx, shared.ActorEndUser, pair.AccessToken), shared.ErrActorKindMismatch)
	assert.False(t, f.service.ResolveIdentity(ctx, pair.AccessToken).Anonymous())

	assert.ErrorIs(t, f.service.Logout(ctx, shared.ActorOperator, pair.RefreshToken), shared.ErrInvalidToken)
	assert.ErrorIs(t, f.service.Logout(ctx, shared.ActorOperator, "garbage"), shared.ErrInvalidToken)
}

func TestResolveIdentityFailsOpen(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	pair, err := f.service.Login(ctx, shared.ActorOperator, "admin", "admin123")
	require.NoError(t, err)

	assert.True(t, f.service.ResolveIdentity(ctx, "").Anonymous())
	assert.True(t, f.service.ResolveIdentity(ctx, "garbage").Anonymous())
	assert.True(t, f.service.ResolveIdentity(ctx, pair.RefreshToken).Anonymous())

	noActor, _, err := f.codec.IssueAccess("admin", "", "role-admin", time.Minute)
	require.NoError(t, err)
	assert.True(t, f.service.ResolveIdentity(ctx, noActor).Anonymous())

	f.clock.Advance(16 * time.Minute)
	assert.True(t, f.service.ResolveIdentity(ctx, pair.AccessToken).Anonymous())
}
