package accounts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// MemoryRepository stores accounts in process memory keyed by username.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]Account)}
}

func (r *MemoryRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, username)
	}
	return &account, nil
}

func (r *MemoryRepository) Create(ctx context.Context, account Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.accounts[account.Username]; exists {
		return Account{}, fmt.Errorf("%w: %s", shared.ErrDuplicateAccount, account.Username)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt, account.UpdatedAt = now, now
	r.accounts[account.Username] = account
	return account, nil
}

func (r *MemoryRepository) UpdateProfile(ctx context.Context, username, name, email, avatarURL string) error {
	return r.update(username, func(a *Account) {
		a.Name, a.Email, a.AvatarURL = name, email, avatarURL
		a.UpdatedAt = time.Now().UTC()
	})
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, username, hash string) error {
	return r.update(username, func(a *Account) {
		a.PasswordHash = hash
		a.UpdatedAt = time.Now().UTC()
	})
}

func (r *MemoryRepository) StampLastLogin(ctx context.Context, username string, at time.Time) error {
	return r.update(username, func(a *Account) {
		stamped := at.UTC()
		a.LastLoginAt = &stamped
	})
}

func (r *MemoryRepository) update(username string, apply func(*Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[username]
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, username)
	}
	apply(&account)
	r.accounts[username] = account
	return nil
}

var _ RepositoryPort = (*MemoryRepository)(nil)
