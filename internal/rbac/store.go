package rbac

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/backoffice/internal/platform/db"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// GrantStore persists the grants of one role universe.
type GrantStore interface {
	// GrantsFor returns the enabled grants of a role keyed by menu id.
	GrantsFor(ctx context.Context, roleID string) (map[string]Flags, error)
	// ReplaceAll swaps a role's grants for entries in one atomic step.
	ReplaceAll(ctx context.Context, roleID string, entries []Entry) error
}

// MemoryGrantStore keeps grants in process memory. A replace builds the new
// set first and installs it under the write lock, so readers see either the
// old or the new set.
type MemoryGrantStore struct {
	mu     sync.RWMutex
	grants map[string]map[string]Flags
}

// NewMemoryGrantStore constructs an empty store.
func NewMemoryGrantStore() *MemoryGrantStore {
	return &MemoryGrantStore{grants: make(map[string]map[string]Flags)}
}

func (s *MemoryGrantStore) GrantsFor(ctx context.Context, roleID string) (map[string]Flags, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current := s.grants[roleID]
	out := make(map[string]Flags, len(current))
	for menuID, flags := range current {
		out[menuID] = flags
	}
	return out, nil
}

func (s *MemoryGrantStore) ReplaceAll(ctx context.Context, roleID string, entries []Entry) error {
	next := make(map[string]Flags, len(entries))
	for _, e := range entries {
		next[e.MenuID] = e.Flags
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(next) == 0 {
		delete(s.grants, roleID)
		return nil
	}
	s.grants[roleID] = next
	return nil
}

// PGGrantStore stores one universe's grants in role_menu_grants.
type PGGrantStore struct {
	pool     *pgxpool.Pool
	universe shared.ActorKind
}

// NewPGGrantStore constructs a store scoped to universe.
func NewPGGrantStore(pool *pgxpool.Pool, universe shared.ActorKind) *PGGrantStore {
	return &PGGrantStore{pool: pool, universe: universe}
}

func (s *PGGrantStore) GrantsFor(ctx context.Context, roleID string) (map[string]Flags, error) {
	rows, err := s.pool.Query(ctx, `SELECT menu_id, perm_read, perm_create, perm_update, perm_delete, perm_download, perm_all
FROM role_menu_grants WHERE universe = $1 AND role_id = $2 AND enabled`, s.universe.String(), roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]Flags)
	for rows.Next() {
		var (
			menuID string
			f      Flags
		)
		if err := rows.Scan(&menuID, &f.Read, &f.Create, &f.Update, &f.Delete, &f.Download, &f.All); err != nil {
			return nil, err
		}
		out[menuID] = f
	}
	return out, rows.Err()
}

func (s *PGGrantStore) ReplaceAll(ctx context.Context, roleID string, entries []Entry) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_menu_grants WHERE universe = $1 AND role_id = $2`, s.universe.String(), roleID); err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(`INSERT INTO role_menu_grants (universe, role_id, menu_id, perm_read, perm_create, perm_update, perm_delete, perm_download, perm_all, enabled)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)`,
				s.universe.String(), roleID, e.MenuID, e.Read, e.Create, e.Update, e.Delete, e.Download, e.All)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

var (
	_ GrantStore = (*MemoryGrantStore)(nil)
	_ GrantStore = (*PGGrantStore)(nil)
)
