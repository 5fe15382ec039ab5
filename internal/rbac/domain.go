package rbac

import (
	"github.com/odyssey-erp/backoffice/internal/menus"
)

// Operation is one of the five grantable menu operations.
type Operation string

const (
	OpRead     Operation = "read"
	OpCreate   Operation = "create"
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
	OpDownload Operation = "download"
)

// Flags are the stored grant bits for one (role, menu) pair. All grants
// every operation regardless of the specific flags.
type Flags struct {
	Read     bool `json:"read"`
	Create   bool `json:"create"`
	Update   bool `json:"update"`
	Delete   bool `json:"delete"`
	Download bool `json:"download"`
	All      bool `json:"all"`
}

// FullAccess returns flags granting every operation.
func FullAccess() Flags {
	return Flags{Read: true, Create: true, Update: true, Delete: true, Download: true, All: true}
}

func (f Flags) EffectiveRead() bool     { return f.Read || f.All }
func (f Flags) EffectiveCreate() bool   { return f.Create || f.All }
func (f Flags) EffectiveUpdate() bool   { return f.Update || f.All }
func (f Flags) EffectiveDelete() bool   { return f.Delete || f.All }
func (f Flags) EffectiveDownload() bool { return f.Download || f.All }

// Allows reports whether the flags permit op.
func (f Flags) Allows(op Operation) bool {
	switch op {
	case OpRead:
		return f.EffectiveRead()
	case OpCreate:
		return f.EffectiveCreate()
	case OpUpdate:
		return f.EffectiveUpdate()
	case OpDelete:
		return f.EffectiveDelete()
	case OpDownload:
		return f.EffectiveDownload()
	default:
		return false
	}
}

// Any reports whether at least one flag is set. An all-false grant is
// equivalent to no grant and is never stored.
func (f Flags) Any() bool {
	return f.Read || f.Create || f.Update || f.Delete || f.Download || f.All
}

// Effective resolves the all shortcut into the five operation flags.
func (f Flags) Effective() EffectiveFlags {
	return EffectiveFlags{
		Read:     f.EffectiveRead(),
		Create:   f.EffectiveCreate(),
		Update:   f.EffectiveUpdate(),
		Delete:   f.EffectiveDelete(),
		Download: f.EffectiveDownload(),
	}
}

// EffectiveFlags are the operations a caller may perform on a menu.
type EffectiveFlags struct {
	Read     bool `json:"read"`
	Create   bool `json:"create"`
	Update   bool `json:"update"`
	Delete   bool `json:"delete"`
	Download bool `json:"download"`
}

// Entry is one menu's grant inside a bulk replace.
type Entry struct {
	MenuID string `json:"menuId" validate:"required"`
	Flags
}

// AuthorizedNode is a visible menu annotated with the caller's permissions.
type AuthorizedNode struct {
	menus.Menu
	Permissions EffectiveFlags   `json:"permissions"`
	Children    []AuthorizedNode `json:"children"`
}

// MenuPermission is a row of the role-menu administration view: every
// enabled menu with the raw flags a role holds on it.
type MenuPermission struct {
	MenuID       string `json:"menuId"`
	SiteID       string `json:"siteId"`
	MenuName     string `json:"menuName"`
	URL          string `json:"url,omitempty"`
	ParentID     string `json:"parentId,omitempty"`
	DisplayOrder int    `json:"displayOrder"`
	Flags
}

// SavePermissionsRequest bulk-replaces a role's grants.
type SavePermissionsRequest struct {
	Universe        string  `json:"universe"`
	RoleID          string  `json:"roleId" validate:"required"`
	MenuPermissions []Entry `json:"menuPermissions" validate:"dive"`
}
