package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// RepositoryPort defines data access methods for accounts.
type RepositoryPort interface {
	FindByUsername(ctx context.Context, username string) (*Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	UpdateProfile(ctx context.Context, username, name, email, avatarURL string) error
	UpdatePassword(ctx context.Context, username, hash string) error
	StampLastLogin(ctx context.Context, username string, at time.Time) error
}

// Service handles account business logic.
type Service struct {
	repo     RepositoryPort
	hashCost int
}

// NewService builds Service instance. A zero hashCost uses bcrypt.DefaultCost.
func NewService(repo RepositoryPort, hashCost int) *Service {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &Service{repo: repo, hashCost: hashCost}
}

// Authenticate validates username/password credentials. Every failure is
// reported as ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Account, error) {
	account, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !account.Enabled {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return account, nil
}

// FindByUsername fetches an account by login name.
func (s *Service) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return s.repo.FindByUsername(ctx, username)
}

// Create hashes the password and inserts an enabled account.
func (s *Service) Create(ctx context.Context, req CreateAccountRequest) (Account, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return Account{}, fmt.Errorf("%w: username and password required", shared.ErrValidation)
	}
	if !req.Kind.Valid() {
		return Account{}, fmt.Errorf("%w: unknown account kind %q", shared.ErrValidation, req.Kind)
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, Account{
		Username:     username,
		PasswordHash: hash,
		Kind:         req.Kind,
		RoleID:       req.RoleID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Enabled:      true,
	})
}

// EnsureAccount returns the account with the requested username, creating it
// when missing.
func (s *Service) EnsureAccount(ctx context.Context, req CreateAccountRequest) (Account, bool, error) {
	existing, err := s.repo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err == nil {
		return *existing, false, nil
	}
	if !errors.Is(err, shared.ErrAccountNotFound) {
		return Account{}, false, err
	}
	account, err := s.Create(ctx, req)
	if err != nil {
		return Account{}, false, err
	}
	return account, true, nil
}

// Profile returns the account of username.
func (s *Service) Profile(ctx context.Context, username string) (Account, error) {
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return Account{}, err
	}
	return *account, nil
}

// UpdateProfile changes the caller's name, email and avatar.
func (s *Service) UpdateProfile(ctx context.Context, username string, req UpdateProfileRequest) (Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Account{}, fmt.Errorf("%w: name required", shared.ErrValidation)
	}
	if err := s.repo.UpdateProfile(ctx, username, name, strings.TrimSpace(req.Email), strings.TrimSpace(req.AvatarURL)); err != nil {
		return Account{}, err
	}
	return s.Profile(ctx, username)
}

// ChangePassword verifies the current password before storing the new one.
func (s *Service) ChangePassword(ctx context.Context, username string, req ChangePasswordRequest) error {
	if _, err := s.Authenticate(ctx, username, req.CurrentPassword); err != nil {
		return err
	}
	if req.NewPassword == req.CurrentPassword {
		return fmt.Errorf("%w: new password must differ from the current one", shared.ErrValidation)
	}
	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, username, hash)
}

// StampLastLogin records the time of a successful login.
func (s *Service) StampLastLogin(ctx context.Context, username string, at time.Time) error {
	return s.repo.StampLastLogin(ctx, username, at)
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
