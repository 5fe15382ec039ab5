package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/odyssey-erp/backoffice/internal/accounts"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Default token lifetimes.
const (
	DefaultAccessTTL  = 30 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Config wires the session service's collaborators.
type Config struct {
	Codec       *Codec
	Revocations RevocationRegistry
	Refresh     RefreshTokenStore
	Credentials CredentialStore
	Stamper     LoginStamper
	Observer    SessionObserver
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	Logger      *slog.Logger
}

// Service issues, rotates and revokes tokens.
type Service struct {
	codec       *Codec
	revocations RevocationRegistry
	refresh     RefreshTokenStore
	credentials CredentialStore
	stamper     LoginStamper
	observer    SessionObserver
	accessTTL   time.Duration
	refreshTTL  time.Duration
	logger      *slog.Logger
}

// NewService constructs a new Service.
func NewService(cfg Config) *Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		codec:       cfg.Codec,
		revocations: cfg.Revocations,
		refresh:     cfg.Refresh,
		credentials: cfg.Credentials,
		stamper:     cfg.Stamper,
		observer:    cfg.Observer,
		accessTTL:   cfg.AccessTTL,
		refreshTTL:  cfg.RefreshTTL,
		logger:      cfg.Logger,
	}
}

// Login authenticates an account of the given kind and starts a session.
// Unknown users, wrong passwords, disabled accounts and accounts of the
// other kind all fail with ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, kind shared.ActorKind, username, password string) (TokenPair, error) {
	account, err := s.credentials.Authenticate(ctx, username, password)
	if err != nil || account.Kind != kind {
		s.observe("login", "failure")
		return TokenPair{}, shared.ErrInvalidCredentials
	}
	pair, err := s.issuePair(account)
	if err != nil {
		s.observe("login", "failure")
		return TokenPair{}, err
	}
	if err := s.refresh.Save(ctx, account.Username, pair.RefreshToken, s.refreshTTL); err != nil {
		s.observe("login", "failure")
		return TokenPair{}, fmt.Errorf("save refresh token: %w", err)
	}
	if kind == shared.ActorEndUser && s.stamper != nil {
		if err := s.stamper.StampLastLogin(ctx, account.Username, s.codec.Now()); err != nil {
			s.logger.Warn("stamp last login", slog.String("subject", account.Username), slog.Any("error", err))
		}
	}
	s.observe("login", "success")
	s.logger.Info("login", slog.String("subject", account.Username), slog.String("actor", kind.String()))
	return pair, nil
}

// Refresh exchanges the current refresh token for a new pair. The presented
// token is consumed. Every failure is reported as ErrInvalidToken.
func (s *Service) Refresh(ctx context.Context, token string) (TokenPair, error) {
	pair, err := s.rotate(ctx, token)
	if err != nil {
		s.observe("refresh", "failure")
		s.logger.Debug("refresh rejected", slog.Any("error", err))
		return TokenPair{}, shared.ErrInvalidToken
	}
	s.observe("refresh", "success")
	return pair, nil
}

func (s *Service) rotate(ctx context.Context, token string) (TokenPair, error) {
	if !s.codec.IsRefreshKind(token) {
		return TokenPair{}, errors.New("not a refresh token")
	}
	claims, err := s.codec.Decode(token)
	if err != nil {
		return TokenPair{}, err
	}
	current, err := s.refresh.IsCurrent(ctx, claims.Subject, token)
	if err != nil {
		return TokenPair{}, err
	}
	if !current {
		return TokenPair{}, errors.New("refresh token is not current")
	}
	account, err := s.credentials.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return TokenPair{}, err
	}
	if !account.Enabled {
		return TokenPair{}, errors.New("account disabled")
	}
	pair, err := s.issuePair(account)
	if err != nil {
		return TokenPair{}, err
	}
	swapped, err := s.refresh.Rotate(ctx, claims.Subject, token, pair.RefreshToken, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	if !swapped {
		return TokenPair{}, errors.New("refresh token consumed concurrently")
	}
	return pair, nil
}

// Logout revokes an access token presented on the endpoint for kind and
// ends the subject's refresh session. A token that is already revoked fails
// with ErrInvalidToken.
func (s *Service) Logout(ctx context.Context, kind shared.ActorKind, token string) error {
	err := s.logout(ctx, kind, token)
	if err != nil {
		s.observe("logout", "failure")
		return err
	}
	s.observe("logout", "success")
	return nil
}

func (s *Service) logout(ctx context.Context, kind shared.ActorKind, token string) error {
	claims, err := s.codec.Decode(token)
	if err != nil || claims.Kind != KindAccess {
		return shared.ErrInvalidToken
	}
	if claims.Actor != kind {
		return fmt.Errorf("%w: %s token on %s endpoint", shared.ErrActorKindMismatch, claims.Actor, kind)
	}
	ttl := claims.ExpiresAt.Sub(s.codec.Now())
	newly, err := s.revocations.Revoke(ctx, token, ttl)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	if !newly {
		return shared.ErrInvalidToken
	}
	if err := s.refresh.Clear(ctx, claims.Subject); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	s.logger.Info("logout", slog.String("subject", claims.Subject), slog.String("actor", kind.String()))
	return nil
}

// ResolveIdentity maps an access token to the caller. Any problem with the
// token yields the anonymous identity instead of an error.
func (s *Service) ResolveIdentity(ctx context.Context, token string) shared.Identity {
	if token == "" {
		return shared.Identity{}
	}
	claims, err := s.codec.Decode(token)
	if err != nil || claims.Kind != KindAccess || !claims.Actor.Valid() {
		return shared.Identity{}
	}
	revoked, err := s.revocations.IsRevoked(ctx, token)
	if err != nil {
		s.logger.Warn("revocation lookup failed", slog.Any("error", err))
		return shared.Identity{}
	}
	if revoked {
		return shared.Identity{}
	}
	return shared.Identity{
		Subject:   claims.Subject,
		Actor:     claims.Actor,
		RoleID:    claims.Role,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}
}

func (s *Service) issuePair(account *accounts.Account) (TokenPair, error) {
	access, _, err := s.codec.IssueAccess(account.Username, account.Kind, account.RoleID, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, _, err := s.codec.IssueRefresh(account.Username, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL / time.Second),
	}, nil
}

func (s *Service) observe(event, outcome string) {
	if s.observer != nil {
		s.observer.ObserveSession(event, outcome)
	}
}
