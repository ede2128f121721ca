package policy

import (
	"fmt"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
)

// Action is a mutating capability checked before any write reaches a service.
type Action string

const (
	ActionEdit      Action = "edit"
	ActionDelete    Action = "delete"
	ActionViewUsers Action = "view_users"
)

// scope tells where an edit/delete capability applies.
type scope int

const (
	scopeNone scope = iota
	scopeOwnMinistry
	scopeGlobal
)

type capability struct {
	Edit      scope
	Delete    scope
	ViewUsers bool
}

// table is the full per-role rule set. Authority is NOT tiered: DEPUTY_ADMIN
// edits globally yet never sees user management, while MINISTRY_ADMIN is
// fenced to its own ministry.
var table = map[models.Role]capability{
	models.RoleSuperAdmin:    {Edit: scopeGlobal, Delete: scopeGlobal, ViewUsers: true},
	models.RoleDeputyAdmin:   {Edit: scopeGlobal, Delete: scopeGlobal, ViewUsers: false},
	models.RoleMinistryAdmin: {Edit: scopeOwnMinistry, Delete: scopeOwnMinistry, ViewUsers: false},
	models.RoleEditor:        {Edit: scopeOwnMinistry, Delete: scopeNone, ViewUsers: false},
	models.RoleViewer:        {Edit: scopeNone, Delete: scopeNone, ViewUsers: false},
}

// ValidateTable checks the capability table against the role enum, so a role
// added to the model cannot fall through to a zero-valued capability
// unnoticed. Run at startup; a failure is a boot error.
func ValidateTable() error {
	for _, r := range models.Roles() {
		if _, ok := table[r]; !ok {
			return fmt.Errorf("capability table has no entry for role %s", r)
		}
	}

	if len(table) != len(models.Roles()) {
		return fmt.Errorf("capability table has %d entries, role enum has %d", len(table), len(models.Roles()))
	}

	return nil
}

// HasPermission reports whether user may perform action on an entity owned
// by ownerMinistryID (empty when the action has no owner, e.g. view_users).
func HasPermission(user models.User, action Action, ownerMinistryID string) bool {
	capab, ok := table[user.Role]
	if !ok {
		return false
	}

	switch action {
	case ActionEdit:
		return inScope(capab.Edit, user, ownerMinistryID)
	case ActionDelete:
		return inScope(capab.Delete, user, ownerMinistryID)
	case ActionViewUsers:
		return capab.ViewUsers
	}

	return false
}

func inScope(s scope, user models.User, ownerMinistryID string) bool {
	switch s {
	case scopeGlobal:
		return true
	case scopeOwnMinistry:
		return ownerMinistryID != "" && ownerMinistryID == user.MinistryID
	case scopeNone:
	}

	return false
}

// CanAccessSection gates navigation. The users and assistant sections are
// hard-restricted to SUPER_ADMIN regardless of what a stored allowed-tabs
// list claims, guarding against stale or tampered snapshots.
func CanAccessSection(user models.User, tab models.Tab) bool {
	if user.Role == models.RoleSuperAdmin {
		return true
	}

	if tab == models.TabUsers || tab == models.TabAssistant {
		return false
	}

	return user.HasTab(tab)
}

// DefaultTabs is the section set granted when provisioning or resetting a
// user of the given role.
func DefaultTabs(role models.Role) []models.Tab {
	switch role {
	case models.RoleSuperAdmin:
		return models.AllTabs()
	case models.RoleDeputyAdmin:
		return []models.Tab{models.TabDashboard, models.TabDirectory, models.TabDeclaration, models.TabMap}
	case models.RoleMinistryAdmin:
		return []models.Tab{models.TabDashboard, models.TabDeclaration}
	case models.RoleEditor:
		return []models.Tab{models.TabDashboard, models.TabDeclaration}
	case models.RoleViewer:
		return []models.Tab{models.TabDashboard, models.TabMap}
	}

	return []models.Tab{models.TabDashboard}
}
