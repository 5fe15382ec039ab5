package menus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Repository defines persistence operations for sites and menus.
type Repository interface {
	ListSites(ctx context.Context) ([]Site, error)
	GetSite(ctx context.Context, id string) (Site, error)
	FindSiteByContextPath(ctx context.Context, path string) (Site, error)
	CreateSite(ctx context.Context, site Site) (Site, error)

	ListBySite(ctx context.Context, siteID string) ([]Menu, error)
	ListEnabled(ctx context.Context) ([]Menu, error)
	FindByURL(ctx context.Context, url string) ([]Menu, error)
	Get(ctx context.Context, id string) (Menu, error)
	Create(ctx context.Context, menu Menu) (Menu, error)
	Update(ctx context.Context, menu Menu) (Menu, error)
	Delete(ctx context.Context, id string) error
	CountChildren(ctx context.Context, id string) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const siteColumns = `id, code, name, description, context_path, version, created_at, updated_at`

const menuColumns = `id, site_id, name, url, icon, display_order, parent_id, enabled, created_at, updated_at`

// ListSites returns every site ordered by code.
func (r *PGRepository) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+siteColumns+` FROM sites ORDER BY code, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sites []Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// GetSite fetches a site by id.
func (r *PGRepository) GetSite(ctx context.Context, id string) (Site, error) {
	site, err := scanSite(r.pool.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Site{}, fmt.Errorf("%w: %s", shared.ErrSiteNotFound, id)
	}
	return site, err
}

// FindSiteByContextPath fetches a site by its context path.
func (r *PGRepository) FindSiteByContextPath(ctx context.Context, path string) (Site, error) {
	site, err := scanSite(r.pool.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE context_path = $1`, path))
	if errors.Is(err, pgx.ErrNoRows) {
		return Site{}, fmt.Errorf("%w: context path %q", shared.ErrSiteNotFound, path)
	}
	return site, err
}

// CreateSite inserts a site, assigning an id when missing.
func (r *PGRepository) CreateSite(ctx context.Context, site Site) (Site, error) {
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	site.CreatedAt, site.UpdatedAt = now, now
	_, err := r.pool.Exec(ctx, `INSERT INTO sites (`+siteColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		site.ID, site.Code, site.Name, site.Description, site.ContextPath, site.Version, site.CreatedAt, site.UpdatedAt)
	if err != nil {
		return Site{}, err
	}
	return site, nil
}

// ListBySite returns every menu of a site in display order.
func (r *PGRepository) ListBySite(ctx context.Context, siteID string) ([]Menu, error) {
	return r.queryMenus(ctx, `SELECT `+menuColumns+` FROM menus WHERE site_id = $1 ORDER BY display_order, created_at, id`, siteID)
}

// ListEnabled returns enabled menus across all sites in display order.
func (r *PGRepository) ListEnabled(ctx context.Context) ([]Menu, error) {
	return r.queryMenus(ctx, `SELECT `+menuColumns+` FROM menus WHERE enabled ORDER BY display_order, created_at, id`)
}

// FindByURL returns enabled menus pointing at url.
func (r *PGRepository) FindByURL(ctx context.Context, url string) ([]Menu, error) {
	return r.queryMenus(ctx, `SELECT `+menuColumns+` FROM menus WHERE url = $1 AND enabled ORDER BY created_at, id`, url)
}

// Get fetches a menu by id.
func (r *PGRepository) Get(ctx context.Context, id string) (Menu, error) {
	menu, err := scanMenu(r.pool.QueryRow(ctx, `SELECT `+menuColumns+` FROM menus WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Menu{}, fmt.Errorf("%w: %s", shared.ErrMenuNotFound, id)
	}
	return menu, err
}

// Create inserts a menu, assigning an id when missing.
func (r *PGRepository) Create(ctx context.Context, menu Menu) (Menu, error) {
	if menu.ID == "" {
		menu.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	menu.CreatedAt, menu.UpdatedAt = now, now
	_, err := r.pool.Exec(ctx, `INSERT INTO menus (`+menuColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		menu.ID, menu.SiteID, menu.Name, menu.URL, menu.Icon, menu.DisplayOrder, nullText(menu.ParentID), menu.Enabled, menu.CreatedAt, menu.UpdatedAt)
	if err != nil {
		return Menu{}, err
	}
	return menu, nil
}

// Update persists the editable fields of a menu.
func (r *PGRepository) Update(ctx context.Context, menu Menu) (Menu, error) {
	menu.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `UPDATE menus SET name = $2, url = $3, icon = $4, display_order = $5, parent_id = $6, enabled = $7, updated_at = $8 WHERE id = $1`,
		menu.ID, menu.Name, menu.URL, menu.Icon, menu.DisplayOrder, nullText(menu.ParentID), menu.Enabled, menu.UpdatedAt)
	if err != nil {
		return Menu{}, err
	}
	if tag.RowsAffected() == 0 {
		return Menu{}, fmt.Errorf("%w: %s", shared.ErrMenuNotFound, menu.ID)
	}
	return menu, nil
}

// Delete removes a menu by id.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM menus WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", shared.ErrMenuNotFound, id)
	}
	return nil
}

// CountChildren returns the number of direct children of a menu.
func (r *PGRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM menus WHERE parent_id = $1`, id).Scan(&count)
	return count, err
}

func (r *PGRepository) queryMenus(ctx context.Context, sql string, args ...any) ([]Menu, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Menu
	for rows.Next() {
		menu, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, menu)
	}
	return list, rows.Err()
}

func scanSite(row pgx.Row) (Site, error) {
	var s Site
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.ContextPath, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func scanMenu(row pgx.Row) (Menu, error) {
	var (
		m      Menu
		parent pgtype.Text
	)
	err := row.Scan(&m.ID, &m.SiteID, &m.Name, &m.URL, &m.Icon, &m.DisplayOrder, &parent, &m.Enabled, &m.CreatedAt, &m.UpdatedAt)
	if parent.Valid {
		m.ParentID = parent.String
	}
	return m, err
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

var _ Repository = (*PGRepository)(nil)
