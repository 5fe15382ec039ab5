package roles

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// MemoryRepository stores roles in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	roles map[string]Role
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{roles: make(map[string]Role)}
}

func (r *MemoryRepository) List(ctx context.Context, universe shared.ActorKind) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Role, 0)
	for _, role := range r.roles {
		if role.Universe == universe {
			out = append(out, role)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MemoryRepository) Get(ctx context.Context, universe shared.ActorKind, id string) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[id]
	if !ok || role.Universe != universe {
		return Role{}, fmt.Errorf("%w: %s", shared.ErrRoleNotFound, id)
	}
	return role, nil
}

func (r *MemoryRepository) FindByCode(ctx context.Context, universe shared.ActorKind, code string) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, role := range r.roles {
		if role.Universe == universe && role.Code == code {
			return role, nil
		}
	}
	return Role{}, fmt.Errorf("%w: code %s", shared.ErrRoleNotFound, code)
}

func (r *MemoryRepository) Create(ctx context.Context, role Role) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.roles {
		if existing.Universe == role.Universe && existing.Code == role.Code {
			return Role{}, fmt.Errorf("%w: %s", shared.ErrDuplicateRoleCode, role.Code)
		}
	}
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	role.CreatedAt, role.UpdatedAt = now, now
	r.roles[role.ID] = role
	return role, nil
}

func (r *MemoryRepository) Update(ctx context.Context, role Role) (Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.roles[role.ID]
	if !ok || existing.Universe != role.Universe {
		return Role{}, fmt.Errorf("%w: %s", shared.ErrRoleNotFound, role.ID)
	}
	existing.Name = role.Name
	existing.Description = role.Description
	existing.Enabled = role.Enabled
	existing.UpdatedAt = time.Now().UTC()
	r.roles[role.ID] = existing
	return existing, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, universe shared.ActorKind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.roles[id]
	if !ok || existing.Universe != universe {
		return fmt.Errorf("%w: %s", shared.ErrRoleNotFound, id)
	}
	delete(r.roles, id)
	return nil
}

var _ RepositoryPort = (*MemoryRepository)(nil)
