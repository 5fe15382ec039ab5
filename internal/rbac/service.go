package rbac

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Service administers role-menu grants.
type Service struct {
	matrices Matrices
	roles    RoleLookup
	menus    MenuCatalog
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(matrices Matrices, lookup RoleLookup, catalog MenuCatalog, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{matrices: matrices, roles: lookup, menus: catalog, logger: logger}
}

// MenuPermissions lists every enabled menu, across all sites and in display
// order, with the raw flags the role holds on it. Menus without a grant
// report all flags false.
func (s *Service) MenuPermissions(ctx context.Context, universe shared.ActorKind, roleID string) ([]MenuPermission, error) {
	matrix, err := s.matrices.For(universe)
	if err != nil {
		return nil, err
	}
	if _, err := s.roles.Get(ctx, universe, roleID); err != nil {
		return nil, err
	}
	list, err := s.menus.Enabled(ctx)
	if err != nil {
		return nil, err
	}
	grants, err := matrix.GrantsFor(ctx, roleID)
	if err != nil {
		return nil, err
	}
	out := make([]MenuPermission, 0, len(list))
	for _, m := range list {
		out = append(out, MenuPermission{
			MenuID:       m.ID,
			SiteID:       m.SiteID,
			MenuName:     m.Name,
			URL:          m.URL,
			ParentID:     m.ParentID,
			DisplayOrder: m.DisplayOrder,
			Flags:        grants[m.ID],
		})
	}
	return out, nil
}

// SavePermissions replaces a role's grants after checking the role and every
// referenced menu exist.
func (s *Service) SavePermissions(ctx context.Context, universe shared.ActorKind, roleID string, entries []Entry) error {
	matrix, err := s.matrices.For(universe)
	if err != nil {
		return err
	}
	if _, err := s.roles.Get(ctx, universe, roleID); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := s.menus.Get(ctx, e.MenuID); err != nil {
			return err
		}
	}
	if err := matrix.ReplaceAll(ctx, roleID, entries); err != nil {
		return fmt.Errorf("save permissions: %w", err)
	}
	s.logger.Info("role permissions replaced",
		slog.String("universe", universe.String()),
		slog.String("role_id", roleID),
		slog.Int("entries", len(entries)))
	return nil
}
