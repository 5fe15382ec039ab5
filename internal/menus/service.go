package menus

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Service validates and persists menu changes.
type Service struct {
	repo Repository
}

// NewService builds Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Sites returns all sites.
func (s *Service) Sites(ctx context.Context) ([]Site, error) {
	return s.repo.ListSites(ctx)
}

// Site fetches a site by id.
func (s *Service) Site(ctx context.Context, id string) (Site, error) {
	return s.repo.GetSite(ctx, id)
}

// ListBySite returns every menu of the site, enabled or not.
func (s *Service) ListBySite(ctx context.Context, siteID string) ([]Menu, error) {
	if _, err := s.repo.GetSite(ctx, siteID); err != nil {
		return nil, err
	}
	return s.repo.ListBySite(ctx, siteID)
}

// EnabledBySite returns the enabled menus of the site in display order.
func (s *Service) EnabledBySite(ctx context.Context, siteID string) ([]Menu, error) {
	list, err := s.ListBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	enabled := make([]Menu, 0, len(list))
	for _, m := range list {
		if m.Enabled {
			enabled = append(enabled, m)
		}
	}
	return enabled, nil
}

// Tree returns the enabled menu forest of a site.
func (s *Service) Tree(ctx context.Context, siteID string) ([]Node, error) {
	list, err := s.ListBySite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return Build(list), nil
}

// Enabled returns enabled menus across every site.
func (s *Service) Enabled(ctx context.Context) ([]Menu, error) {
	return s.repo.ListEnabled(ctx)
}

// Get fetches a menu by id.
func (s *Service) Get(ctx context.Context, id string) (Menu, error) {
	return s.repo.Get(ctx, id)
}

// FindByURL returns enabled menus with the given URL.
func (s *Service) FindByURL(ctx context.Context, url string) ([]Menu, error) {
	return s.repo.FindByURL(ctx, url)
}

// Create validates the site and parent, then inserts an enabled menu.
func (s *Service) Create(ctx context.Context, req CreateMenuRequest) (Menu, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Menu{}, fmt.Errorf("%w: menu name required", shared.ErrValidation)
	}
	if _, err := s.repo.GetSite(ctx, req.SiteID); err != nil {
		return Menu{}, err
	}
	menu := Menu{
		SiteID:   req.SiteID,
		Name:     name,
		URL:      strings.TrimSpace(req.URL),
		Icon:     strings.TrimSpace(req.Icon),
		ParentID: strings.TrimSpace(req.ParentID),
		Enabled:  true,
	}
	if req.DisplayOrder != nil {
		menu.DisplayOrder = *req.DisplayOrder
	}
	if err := s.checkParent(ctx, menu); err != nil {
		return Menu{}, err
	}
	return s.repo.Create(ctx, menu)
}

// Update applies the request to an existing menu. Moving a menu under itself
// or one of its descendants is rejected.
func (s *Service) Update(ctx context.Context, id string, req UpdateMenuRequest) (Menu, error) {
	menu, err := s.repo.Get(ctx, id)
	if err != nil {
		return Menu{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Menu{}, fmt.Errorf("%w: menu name required", shared.ErrValidation)
	}
	menu.Name = name
	menu.URL = strings.TrimSpace(req.URL)
	menu.Icon = strings.TrimSpace(req.Icon)
	menu.ParentID = strings.TrimSpace(req.ParentID)
	if req.DisplayOrder != nil {
		menu.DisplayOrder = *req.DisplayOrder
	}
	if req.Enabled != nil {
		menu.Enabled = *req.Enabled
	}
	if err := s.checkParent(ctx, menu); err != nil {
		return Menu{}, err
	}
	return s.repo.Update(ctx, menu)
}

// Delete removes a menu that has no children.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d children", shared.ErrMenuHasChildren, count)
	}
	return s.repo.Delete(ctx, id)
}

// checkParent walks up from the proposed parent. The parent must live in the
// same site and the walk must never reach the menu itself.
func (s *Service) checkParent(ctx context.Context, menu Menu) error {
	if menu.IsRoot() {
		return nil
	}
	if menu.ParentID == menu.ID {
		return fmt.Errorf("%w: menu cannot be its own parent", shared.ErrInvalidParent)
	}
	parent, err := s.parent(ctx, menu.ParentID)
	if err != nil {
		return err
	}
	if parent.SiteID != menu.SiteID {
		return fmt.Errorf("%w: parent belongs to another site", shared.ErrInvalidParent)
	}
	if menu.ID == "" {
		return nil
	}
	seen := map[string]struct{}{menu.ID: {}}
	for current := parent; !current.IsRoot(); {
		if _, loop := seen[current.ID]; loop {
			return fmt.Errorf("%w: parent chain forms a cycle", shared.ErrInvalidParent)
		}
		seen[current.ID] = struct{}{}
		next, err := s.parent(ctx, current.ParentID)
		if err != nil {
			return err
		}
		if next.ID == menu.ID {
			return fmt.Errorf("%w: parent chain forms a cycle", shared.ErrInvalidParent)
		}
		current = next
	}
	return nil
}

// parent loads a menu referenced as a parent. A missing menu is an invalid
// parent; store failures pass through.
func (s *Service) parent(ctx context.Context, id string) (Menu, error) {
	m, err := s.repo.Get(ctx, id)
	if errors.Is(err, shared.ErrMenuNotFound) {
		return Menu{}, fmt.Errorf("%w: parent %s not found", shared.ErrInvalidParent, id)
	}
	if err != nil {
		return Menu{}, fmt.Errorf("load parent %s: %w", id, err)
	}
	return m, nil
}
