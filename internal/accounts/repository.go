package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, username, password_hash, kind, role_id, name, email, avatar_url, enabled, last_login_at, created_at, updated_at`

// FindByUsername fetches an account by login name.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	var (
		account   Account
		kind      string
		roleID    pgtype.Text
		lastLogin pgtype.Timestamptz
	)
	err := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username).Scan(
		&account.ID, &account.Username, &account.PasswordHash, &kind, &roleID,
		&account.Name, &account.Email, &account.AvatarURL, &account.Enabled, &lastLogin,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrAccountNotFound, username)
	}
	if err != nil {
		return nil, err
	}
	account.Kind = shared.ActorKind(kind)
	if roleID.Valid {
		account.RoleID = roleID.String
	}
	if lastLogin.Valid {
		at := lastLogin.Time
		account.LastLoginAt = &at
	}
	return &account, nil
}

// Create inserts a new account.
func (r *Repository) Create(ctx context.Context, account Account) (Account, error) {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt, account.UpdatedAt = now, now
	_, err := r.pool.Exec(ctx, `INSERT INTO accounts (id, username, password_hash, kind, role_id, name, email, avatar_url, enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		account.ID, account.Username, account.PasswordHash, account.Kind.String(),
		pgtype.Text{String: account.RoleID, Valid: account.RoleID != ""},
		account.Name, account.Email, account.AvatarURL, account.Enabled, account.CreatedAt, account.UpdatedAt)
	if db.IsUniqueViolation(err, "uq_accounts_username") {
		return Account{}, fmt.Errorf("%w: %s", shared.ErrDuplicateAccount, account.Username)
	}
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

// UpdateProfile stores name, email and avatar.
func (r *Repository) UpdateProfile(ctx context.Context, username, name, email, avatarURL string) error {
	return r.exec(ctx, username, `UPDATE accounts SET name = $2, email = $3, avatar_url = $4, updated_at = now() WHERE username = $1`,
		username, name, email, avatarURL)
}

// UpdatePassword stores a new password hash.
func (r *Repository) UpdatePassword(ctx context.Context, username, hash string) error {
	return r.exec(ctx, username, `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE username = $1`, username, hash)
}

// StampLastLogin records the latest login time.
func (r *Repository) StampLastLogin(ctx context.Context, username string, at time.Time) error {
	return r.exec(ctx, username, `UPDATE accounts SET last_login_at = $2 WHERE username = $1`, username, at.UTC())
}

func (r *Repository) exec(ctx context.Context, username, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAccountNotFound, username)
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
