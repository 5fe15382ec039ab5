package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/odyssey-erp/backoffice/internal/accounts"
	"github.com/odyssey-erp/backoffice/internal/auth"
	"github.com/odyssey-erp/backoffice/internal/menus"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/roles"
	"github.com/odyssey-erp/backoffice/internal/seed"
	"github.com/odyssey-erp/backoffice/jobs"
)

// Stores bundles the persistence backends selected at startup.
type Stores struct {
	Accounts       accounts.RepositoryPort
	Roles          roles.RepositoryPort
	Menus          menus.Repository
	OperatorGrants rbac.GrantStore
	EndUserGrants  rbac.GrantStore
	Revocations    auth.RevocationRegistry
	Refresh        auth.RefreshTokenStore
}

// MemoryStores returns process-local stores for every component.
func MemoryStores() Stores {
	return Stores{
		Accounts:       accounts.NewMemoryRepository(),
		Roles:          roles.NewMemoryRepository(),
		Menus:          menus.NewMemoryRepository(),
		OperatorGrants: rbac.NewMemoryGrantStore(),
		EndUserGrants:  rbac.NewMemoryGrantStore(),
		Revocations:    auth.NewMemoryRevocations(time.Minute),
		Refresh:        auth.NewMemoryRefreshStore(),
	}
}

// Options carries the optional collaborators of the application.
type Options struct {
	// Stamper replaces the inline last-login write, e.g. with a job client.
	Stamper    auth.LoginStamper
	Metrics    *observability.Metrics
	JobHandler *jobs.Handler
}

// Backoffice is the assembled application.
type Backoffice struct {
	Accounts *accounts.Service
	Roles    *roles.Service
	Menus    *menus.Service
	Matrices rbac.Matrices
	Resolver *rbac.Resolver
	Guard    *rbac.Guard
	Sessions *auth.Service
	Seeder   *seed.Seeder
	Handler  http.Handler
}

// Build wires services, handlers and the router on top of stores.
func Build(cfg *Config, logger *slog.Logger, stores Stores, opts Options) (*Backoffice, error) {
	if logger == nil {
		logger = slog.Default()
	}
	codec, err := auth.NewCodec(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("app: token codec: %w", err)
	}

	menuService := menus.NewService(stores.Menus)
	matrices := rbac.NewMatrices(stores.OperatorGrants, stores.EndUserGrants, menuService)
	roleService := roles.NewService(stores.Roles, matrices, logger)
	accountService := accounts.NewService(stores.Accounts, PasswordHashCost())
	resolver := rbac.NewResolver(matrices, roleService, menuService, logger)
	guard := rbac.NewGuard(resolver, rbac.DefaultRequirements(), logger)

	var stamper auth.LoginStamper = accountService
	if opts.Stamper != nil {
		stamper = opts.Stamper
	}
	sessions := auth.NewService(auth.Config{
		Codec:       codec,
		Revocations: stores.Revocations,
		Refresh:     stores.Refresh,
		Credentials: accountService,
		Stamper:     stamper,
		Observer:    opts.Metrics,
		AccessTTL:   cfg.AccessTokenTTL,
		RefreshTTL:  cfg.RefreshTokenTTL,
		Logger:      logger,
	})

	data, err := seed.Defaults()
	if err != nil {
		return nil, err
	}
	seeder := seed.New(data, cfg.SeedPasswords(), seed.Deps{
		Roles:    roleService,
		Sites:    stores.Menus,
		Menus:    menuService,
		Accounts: accountService,
		Matrices: matrices,
		Logger:   logger,
	})

	handler := NewRouter(RouterParams{
		Logger:          logger,
		Config:          cfg,
		AuthService:     sessions,
		AuthHandler:     auth.NewHandler(logger, sessions),
		AccountsHandler: accounts.NewHandler(logger, accountService, guard),
		RolesHandler:    roles.NewHandler(logger, roleService, guard),
		MenusHandler:    menus.NewHandler(logger, menuService, guard),
		RBACHandler:     rbac.NewHandler(logger, rbac.NewService(matrices, roleService, menuService, logger), resolver, guard),
		JobHandler:      opts.JobHandler,
		Metrics:         opts.Metrics,
	})

	return &Backoffice{
		Accounts: accountService,
		Roles:    roleService,
		Menus:    menuService,
		Matrices: matrices,
		Resolver: resolver,
		Guard:    guard,
		Sessions: sessions,
		Seeder:   seeder,
		Handler:  handler,
	}, nil
}

// Seed runs the bootstrap when enabled.
func (b *Backoffice) Seed(ctx context.Context, cfg *Config) error {
	if cfg != nil && !cfg.SeedEnabled {
		return nil
	}
	return b.Seeder.Run(ctx)
}
