// Package seed installs the default roles, sites, menus and accounts on
// startup. Every step checks for existing data first, so running it against
// an initialised store changes nothing.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/backoffice/internal/accounts"
	"github.com/odyssey-erp/backoffice/internal/menus"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/roles"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Data is the bootstrap document.
type Data struct {
	Roles    map[shared.ActorKind][]RoleSeed `yaml:"roles"`
	Sites    []SiteSeed                      `yaml:"sites"`
	Accounts []AccountSeed                   `yaml:"accounts"`
}

// RoleSeed describes one role of a universe.
type RoleSeed struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// SiteSeed describes a site and its menu forest. Sites are matched by
// context path.
type SiteSeed struct {
	Code        string     `yaml:"code"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	ContextPath string     `yaml:"context_path"`
	Version     string     `yaml:"version"`
	Menus       []MenuSeed `yaml:"menus"`
}

// MenuSeed is a menu with optional children. Display order follows the list.
type MenuSeed struct {
	Name     string     `yaml:"name"`
	URL      string     `yaml:"url"`
	Icon     string     `yaml:"icon"`
	Children []MenuSeed `yaml:"children"`
}

// AccountSeed describes a default account. PasswordKey selects the password
// from Passwords; Role is a role code within the account's universe.
type AccountSeed struct {
	Username    string           `yaml:"username"`
	Kind        shared.ActorKind `yaml:"kind"`
	Role        string           `yaml:"role"`
	Name        string           `yaml:"name"`
	Email       string           `yaml:"email"`
	PasswordKey string           `yaml:"password_key"`
}

// Passwords maps AccountSeed.PasswordKey to a clear-text password.
type Passwords map[string]string

// Defaults parses the embedded bootstrap document.
func Defaults() (Data, error) {
	return Parse(defaultsYAML)
}

// Parse decodes a bootstrap document.
func Parse(raw []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("seed: decode: %w", err)
	}
	for kind := range data.Roles {
		if !kind.Valid() {
			return Data{}, fmt.Errorf("seed: unknown role universe %q", kind)
		}
	}
	for _, account := range data.Accounts {
		if !account.Kind.Valid() {
			return Data{}, fmt.Errorf("seed: account %s: unknown kind %q", account.Username, account.Kind)
		}
	}
	return data, nil
}

// SiteStore is the part of the menu repository the seeder needs to find and
// create sites.
type SiteStore interface {
	FindSiteByContextPath(ctx context.Context, path string) (menus.Site, error)
	CreateSite(ctx context.Context, site menus.Site) (menus.Site, error)
}

// Seeder runs the bootstrap steps in order: roles, sites and menus,
// accounts, administrator grants.
type Seeder struct {
	data      Data
	passwords Passwords
	roles     *roles.Service
	sites     SiteStore
	menus     *menus.Service
	accounts  *accounts.Service
	matrices  rbac.Matrices
	logger    *slog.Logger
}

// Deps bundles the services the seeder writes through.
type Deps struct {
	Roles    *roles.Service
	Sites    SiteStore
	Menus    *menus.Service
	Accounts *accounts.Service
	Matrices rbac.Matrices
	Logger   *slog.Logger
}

// New builds a Seeder for data.
func New(data Data, passwords Passwords, deps Deps) *Seeder {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		data:      data,
		passwords: passwords,
		roles:     deps.Roles,
		sites:     deps.Sites,
		menus:     deps.Menus,
		accounts:  deps.Accounts,
		matrices:  deps.Matrices,
		logger:    logger,
	}
}

// Run executes every step. A failing step aborts the run.
func (s *Seeder) Run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"roles", s.seedRoles},
		{"menus", s.seedSites},
		{"accounts", s.seedAccounts},
		{"admin_grants", s.grantAdministrator},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
	}
	return nil
}

func (s *Seeder) seedRoles(ctx context.Context) error {
	for _, universe := range shared.ActorKinds() {
		for _, r := range s.data.Roles[universe] {
			role, created, err := s.roles.EnsureRole(ctx, universe, roles.CreateRoleRequest{
				Code:        r.Code,
				Name:        r.Name,
				Description: r.Description,
			})
			if err != nil {
				return fmt.Errorf("role %s/%s: %w", universe, r.Code, err)
			}
			if created {
				s.logger.Info("seeded role", slog.String("universe", universe.String()), slog.String("code", role.Code))
			}
		}
	}
	return nil
}

func (s *Seeder) seedSites(ctx context.Context) error {
	for _, seed := range s.data.Sites {
		site, err := s.sites.FindSiteByContextPath(ctx, seed.ContextPath)
		switch {
		case errors.Is(err, shared.ErrSiteNotFound):
			site, err = s.sites.CreateSite(ctx, menus.Site{
				Code:        seed.Code,
				Name:        seed.Name,
				Description: seed.Description,
				ContextPath: seed.ContextPath,
				Version:     seed.Version,
			})
			if err != nil {
				return fmt.Errorf("site %s: %w", seed.Code, err)
			}
			s.logger.Info("seeded site", slog.String("code", site.Code), slog.String("site_id", site.ID))
		case err != nil:
			return fmt.Errorf("site %s: %w", seed.Code, err)
		}

		existing, err := s.menus.ListBySite(ctx, site.ID)
		if err != nil {
			return fmt.Errorf("site %s menus: %w", seed.Code, err)
		}
		if len(existing) > 0 {
			continue
		}
		count, err := s.createMenus(ctx, site.ID, "", seed.Menus)
		if err != nil {
			return fmt.Errorf("site %s menus: %w", seed.Code, err)
		}
		s.logger.Info("seeded menus", slog.String("site_id", site.ID), slog.Int("count", count))
	}
	return nil
}

func (s *Seeder) createMenus(ctx context.Context, siteID, parentID string, list []MenuSeed) (int, error) {
	created := 0
	for i, seed := range list {
		order := i + 1
		menu, err := s.menus.Create(ctx, menus.CreateMenuRequest{
			SiteID:       siteID,
			Name:         seed.Name,
			URL:          seed.URL,
			Icon:         seed.Icon,
			DisplayOrder: &order,
			ParentID:     parentID,
		})
		if err != nil {
			return created, fmt.Errorf("menu %s: %w", seed.URL, err)
		}
		created++
		n, err := s.createMenus(ctx, siteID, menu.ID, seed.Children)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

func (s *Seeder) seedAccounts(ctx context.Context) error {
	for _, seed := range s.data.Accounts {
		password := s.passwords[seed.PasswordKey]
		if password == "" {
			s.logger.Warn("seed account skipped: no password configured", slog.String("username", seed.Username))
			continue
		}
		var roleID string
		if seed.Role != "" {
			role, err := s.roles.FindByCode(ctx, seed.Kind, seed.Role)
			if err != nil {
				return fmt.Errorf("account %s role %s: %w", seed.Username, seed.Role, err)
			}
			roleID = role.ID
		}
		account, created, err := s.accounts.EnsureAccount(ctx, accounts.CreateAccountRequest{
			Username: seed.Username,
			Password: password,
			Kind:     seed.Kind,
			RoleID:   roleID,
			Name:     seed.Name,
			Email:    seed.Email,
		})
		if err != nil {
			return fmt.Errorf("account %s: %w", seed.Username, err)
		}
		if created {
			s.logger.Info("seeded account", slog.String("username", account.Username), slog.String("kind", account.Kind.String()))
		}
	}
	return nil
}

// grantAdministrator gives the operator administrator role every enabled menu
// unless it already holds grants. The role is created before any menu exists
// on a fresh store, so its creation-time grant is empty.
func (s *Seeder) grantAdministrator(ctx context.Context) error {
	role, err := s.roles.FindByCode(ctx, shared.ActorOperator, roles.AdminRoleCode)
	if errors.Is(err, shared.ErrRoleNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	grants, err := s.matrices.Operator.GrantsFor(ctx, role.ID)
	if err != nil {
		return err
	}
	if len(grants) > 0 {
		return nil
	}
	if err := s.matrices.GrantAllMenus(ctx, role.ID); err != nil {
		return err
	}
	s.logger.Info("granted administrator all menus", slog.String("role_id", role.ID))
	return nil
}
