package roles

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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

const roleColumns = `id, universe, code, name, description, enabled, created_at, updated_at`

// List returns the roles of a universe ordered by code.
func (r *Repository) List(ctx context.Context, universe shared.ActorKind) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles WHERE universe = $1 ORDER BY code`, universe.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// Get fetches a role by id within a universe.
func (r *Repository) Get(ctx context.Context, universe shared.ActorKind, id string) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE universe = $1 AND id = $2`, universe.String(), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, fmt.Errorf("%w: %s", shared.ErrRoleNotFound, id)
	}
	return role, err
}

// FindByCode fetches a role by code within a universe.
func (r *Repository) FindByCode(ctx context.Context, universe shared.ActorKind, code string) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE universe = $1 AND code = $2`, universe.String(), code))
	if errors.Is(err, pgx.ErrNoRows) {
		return Role{}, fmt.Errorf("%w: code %s", shared.ErrRoleNotFound, code)
	}
	return role, err
}

// Create inserts a new role.
func (r *Repository) Create(ctx context.Context, role Role) (Role, error) {
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	role.CreatedAt, role.UpdatedAt = now, now
	_, err := r.pool.Exec(ctx, `INSERT INTO roles (`+roleColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		role.ID, role.Universe.String(), role.Code, role.Name, role.Description, role.Enabled, role.CreatedAt, role.UpdatedAt)
	if db.IsUniqueViolation(err, "uq_roles_universe_code") {
		return Role{}, fmt.Errorf("%w: %s", shared.ErrDuplicateRoleCode, role.Code)
	}
	if err != nil {
		return Role{}, err
	}
	return role, nil
}

// Update persists name, description and enabled flag.
func (r *Repository) Update(ctx context.Context, role Role) (Role, error) {
	role.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `UPDATE roles SET name = $3, description = $4, enabled = $5, updated_at = $6 WHERE universe = $1 AND id = $2`,
		role.Universe.String(), role.ID, role.Name, role.Description, role.Enabled, role.UpdatedAt)
	if err != nil {
		return Role{}, err
	}
	if tag.RowsAffected() == 0 {
		return Role{}, fmt.Errorf("%w: %s", shared.ErrRoleNotFound, role.ID)
	}
	return role, nil
}

// Delete removes a role; its grants cascade.
func (r *Repository) Delete(ctx context.Context, universe shared.ActorKind, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE universe = $1 AND id = $2`, universe.String(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRoleNotFound, id)
	}
	return nil
}

func scanRole(row pgx.Row) (Role, error) {
	var (
		role     Role
		universe string
	)
	if err := row.Scan(&role.ID, &universe, &role.Code, &role.Name, &role.Description, &role.Enabled, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return Role{}, err
	}
	role.Universe = shared.ActorKind(universe)
	return role, nil
}

var _ RepositoryPort = (*Repository)(nil)
