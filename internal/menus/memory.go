package menus

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// MemoryRepository keeps sites and menus in process memory. Insertion order
// is preserved so display-order ties stay stable.
type MemoryRepository struct {
	mu        sync.RWMutex
	sites     map[string]Site
	siteOrder []string
	menus     map[string]Menu
	menuOrder []string
}

// NewMemoryRepository constructs an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sites: make(map[string]Site),
		menus: make(map[string]Menu),
	}
}

func (r *MemoryRepository) ListSites(ctx context.Context) ([]Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Site, 0, len(r.siteOrder))
	for _, id := range r.siteOrder {
		out = append(out, r.sites[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *MemoryRepository) GetSite(ctx context.Context, id string) (Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	site, ok := r.sites[id]
	if !ok {
		return Site{}, fmt.Errorf("%w: %s", shared.ErrSiteNotFound, id)
	}
	return site, nil
}

func (r *MemoryRepository) FindSiteByContextPath(ctx context.Context, path string) (Site, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.siteOrder {
		if r.sites[id].ContextPath == path {
			return r.sites[id], nil
		}
	}
	return Site{}, fmt.Errorf("%w: context path %q", shared.ErrSiteNotFound, path)
}

func (r *MemoryRepository) CreateSite(ctx context.Context, site Site) (Site, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	site.CreatedAt, site.UpdatedAt = now, now
	if _, exists := r.sites[site.ID]; !exists {
		r.siteOrder = append(r.siteOrder, site.ID)
	}
	r.sites[site.ID] = site
	return site, nil
}

func (r *MemoryRepository) ListBySite(ctx context.Context, siteID string) ([]Menu, error) {
	return r.filter(func(m Menu) bool { return m.SiteID == siteID }), nil
}

func (r *MemoryRepository) ListEnabled(ctx context.Context) ([]Menu, error) {
	return r.filter(func(m Menu) bool { return m.Enabled }), nil
}

func (r *MemoryRepository) FindByURL(ctx context.Context, url string) ([]Menu, error) {
	return r.filter(func(m Menu) bool { return m.Enabled && m.URL == url }), nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	menu, ok := r.menus[id]
	if !ok {
		return Menu{}, fmt.Errorf("%w: %s", shared.ErrMenuNotFound, id)
	}
	return menu, nil
}

func (r *MemoryRepository) Create(ctx context.Context, menu Menu) (Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if menu.ID == "" {
		menu.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	menu.CreatedAt, menu.UpdatedAt = now, now
	if _, exists := r.menus[menu.ID]; !exists {
		r.menuOrder = append(r.menuOrder, menu.ID)
	}
	r.menus[menu.ID] = menu
	return menu, nil
}

func (r *MemoryRepository) Update(ctx context.Context, menu Menu) (Menu, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.menus[menu.ID]
	if !ok {
		return Menu{}, fmt.Errorf("%w: %s", shared.ErrMenuNotFound, menu.ID)
	}
	menu.CreatedAt = existing.CreatedAt
	menu.UpdatedAt = time.Now().UTC()
	r.menus[menu.ID] = menu
	return menu, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.menus[id]; !ok {
		return fmt.Errorf("%w: %s", shared.ErrMenuNotFound, id)
	}
	delete(r.menus, id)
	for i, existing := range r.menuOrder {
		if existing == id {
			r.menuOrder = append(r.menuOrder[:i], r.menuOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryRepository) CountChildren(ctx context.Context, id string) (int, error) {
	return len(r.filter(func(m Menu) bool { return m.ParentID == id })), nil
}

// filter returns matching menus ordered by display order, ties in insertion order.
func (r *MemoryRepository) filter(keep func(Menu) bool) []Menu {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Menu, 0)
	for _, id := range r.menuOrder {
		if m := r.menus[id]; keep(m) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayOrder < out[j].DisplayOrder })
	return out
}

var _ Repository = (*MemoryRepository)(nil)
