package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	List(ctx context.Context, universe shared.ActorKind) ([]Role, error)
	Get(ctx context.Context, universe shared.ActorKind, id string) (Role, error)
	FindByCode(ctx context.Context, universe shared.ActorKind, code string) (Role, error)
	Create(ctx context.Context, role Role) (Role, error)
	Update(ctx context.Context, role Role) (Role, error)
	Delete(ctx context.Context, universe shared.ActorKind, id string) error
}

// GrantHooks lets the permission matrices follow the role lifecycle.
type GrantHooks interface {
	// GrantAllMenus gives an operator role every operation on every enabled menu.
	GrantAllMenus(ctx context.Context, roleID string) error
	// ClearRole drops every grant a role holds in its universe.
	ClearRole(ctx context.Context, universe shared.ActorKind, roleID string) error
}

// Service handles role business logic.
type Service struct {
	repo   RepositoryPort
	hooks  GrantHooks
	logger *slog.Logger
}

// NewService builds Service instance. hooks may be nil.
func NewService(repo RepositoryPort, hooks GrantHooks, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, hooks: hooks, logger: logger}
}

// List returns the roles of a universe.
func (s *Service) List(ctx context.Context, universe shared.ActorKind) ([]Role, error) {
	if err := checkUniverse(universe); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, universe)
}

// Get fetches a role by id.
func (s *Service) Get(ctx context.Context, universe shared.ActorKind, id string) (Role, error) {
	if err := checkUniverse(universe); err != nil {
		return Role{}, err
	}
	return s.repo.Get(ctx, universe, id)
}

// FindByCode fetches a role by code.
func (s *Service) FindByCode(ctx context.Context, universe shared.ActorKind, code string) (Role, error) {
	if err := checkUniverse(universe); err != nil {
		return Role{}, err
	}
	return s.repo.FindByCode(ctx, universe, normalizeCode(code))
}

// Create inserts a role. Creating the operator administrator role grants it
// every enabled menu in the same call.
func (s *Service) Create(ctx context.Context, universe shared.ActorKind, req CreateRoleRequest) (Role, error) {
	if err := checkUniverse(universe); err != nil {
		return Role{}, err
	}
	code := normalizeCode(req.Code)
	name := strings.TrimSpace(req.Name)
	if code == "" || name == "" {
		return Role{}, fmt.Errorf("%w: role code and name required", shared.ErrValidation)
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	role, err := s.repo.Create(ctx, Role{
		Universe:    universe,
		Code:        code,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Enabled:     enabled,
	})
	if err != nil {
		return Role{}, err
	}
	if role.IsAdmin() && s.hooks != nil {
		if err := s.hooks.GrantAllMenus(ctx, role.ID); err != nil {
			// A failed grant must not leave the role behind.
			if derr := s.repo.Delete(context.WithoutCancel(ctx), universe, role.ID); derr != nil {
				s.logger.Error("administrator role rollback failed", slog.String("role_id", role.ID), slog.Any("error", derr))
			}
			return Role{}, fmt.Errorf("grant administrator menus: %w", err)
		}
		s.logger.Info("administrator role granted all menus", slog.String("role_id", role.ID))
	}
	return role, nil
}

// Update changes name, description and enabled flag.
func (s *Service) Update(ctx context.Context, universe shared.ActorKind, id string, req UpdateRoleRequest) (Role, error) {
	role, err := s.Get(ctx, universe, id)
	if err != nil {
		return Role{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	role.Name = name
	role.Description = strings.TrimSpace(req.Description)
	if req.Enabled != nil {
		role.Enabled = *req.Enabled
	}
	return s.repo.Update(ctx, role)
}

// Delete removes a role and its grants.
func (s *Service) Delete(ctx context.Context, universe shared.ActorKind, id string) error {
	if err := checkUniverse(universe); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, universe, id); err != nil {
		return err
	}
	if s.hooks != nil {
		if err := s.hooks.ClearRole(ctx, universe, id); err != nil {
			return fmt.Errorf("clear role grants: %w", err)
		}
	}
	return nil
}

// EnsureRole returns the role with the given code, creating it when missing.
func (s *Service) EnsureRole(ctx context.Context, universe shared.ActorKind, req CreateRoleRequest) (Role, bool, error) {
	role, err := s.FindByCode(ctx, universe, req.Code)
	if err == nil {
		return role, false, nil
	}
	if !errors.Is(err, shared.ErrRoleNotFound) {
		return Role{}, false, err
	}
	role, err = s.Create(ctx, universe, req)
	if err != nil {
		return Role{}, false, err
	}
	return role, true, nil
}

func checkUniverse(universe shared.ActorKind) error {
	if !universe.Valid() {
		return fmt.Errorf("%w: unknown universe %q", shared.ErrValidation, universe)
	}
	return nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
