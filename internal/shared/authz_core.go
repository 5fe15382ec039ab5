package shared

// Core back-office permissions. Each name maps to a requirement in the
// rbac guard table.
const (
	PermProfileSelf = "profile.self"

	PermMenusView   = "menus.view"
	PermMenusCreate = "menus.create"
	PermMenusUpdate = "menus.update"
	PermMenusDelete = "menus.delete"
)

// Role administration actions, qualified per universe by RolesPerm and
// RoleMenuPerm.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// RolesPerm names the permission for a role administration action inside a
// universe, e.g. "roles.operator.view".
func RolesPerm(universe ActorKind, action string) string {
	return "roles." + string(universe) + "." + action
}

// RoleMenuPerm names the permission for reading or replacing a universe's
// role-menu grants, e.g. "role_menu.enduser.update".
func RoleMenuPerm(universe ActorKind, action string) string {
	return "role_menu." + string(universe) + "." + action
}

// CoreScopes lists all permissions related to the core platform.
func CoreScopes() []string {
	scopes := []string{
		PermProfileSelf,
		PermMenusView,
		PermMenusCreate,
		PermMenusUpdate,
		PermMenusDelete,
	}
	for _, u := range ActorKinds() {
		for _, action := range []string{ActionView, ActionCreate, ActionUpdate, ActionDelete} {
			scopes = append(scopes, RolesPerm(u, action))
		}
		scopes = append(scopes, RoleMenuPerm(u, ActionView), RoleMenuPerm(u, ActionUpdate))
	}
	return scopes
}
