package menus

import "time"

// Site groups the menus rendered by one front end.
type Site struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ContextPath string    `json:"contextPath"`
	Version     string    `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Menu is a single navigation entry. An empty ParentID marks a root.
type Menu struct {
	ID           string    `json:"id"`
	SiteID       string    `json:"siteId"`
	Name         string    `json:"name"`
	URL          string    `json:"url,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	ParentID     string    `json:"parentId,omitempty"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// IsRoot reports whether the menu has no parent.
func (m Menu) IsRoot() bool {
	return m.ParentID == ""
}

// Node is a menu with its ordered children.
type Node struct {
	Menu
	Children []Node `json:"children"`
}

// CreateMenuRequest carries the fields for a new menu.
type CreateMenuRequest struct {
	SiteID       string `json:"siteId" validate:"required"`
	Name         string `json:"name" validate:"required,max=100"`
	URL          string `json:"url" validate:"max=255"`
	Icon         string `json:"icon" validate:"max=100"`
	DisplayOrder *int   `json:"displayOrder"`
	ParentID     string `json:"parentId"`
}

// UpdateMenuRequest carries the editable fields of a menu. A nil Enabled or
// DisplayOrder keeps the stored value.
type UpdateMenuRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	URL          string `json:"url" validate:"max=255"`
	Icon         string `json:"icon" validate:"max=100"`
	DisplayOrder *int   `json:"displayOrder"`
	ParentID     string `json:"parentId"`
	Enabled      *bool  `json:"enabled"`
}
