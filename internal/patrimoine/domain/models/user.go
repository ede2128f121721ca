package models

type Role string

const (
	RoleSuperAdmin    Role = "SUPER_ADMIN"
	RoleDeputyAdmin   Role = "DEPUTY_ADMIN"
	RoleMinistryAdmin Role = "MINISTRY_ADMIN"
	RoleEditor        Role = "EDITOR"
	RoleViewer        Role = "VIEWER"
)

// Roles lists every known role, ordered by decreasing global authority.
func Roles() []Role {
	return []Role{RoleSuperAdmin, RoleDeputyAdmin, RoleMinistryAdmin, RoleEditor, RoleViewer}
}

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleDeputyAdmin, RoleMinistryAdmin, RoleEditor, RoleViewer:
		return true
	}

	return false
}

// IsGlobal reports whether the role operates outside a single ministry scope.
func (r Role) IsGlobal() bool {
	return r == RoleSuperAdmin || r == RoleDeputyAdmin
}

// Tab is a navigable section of the application.
type Tab string

const (
	TabDashboard   Tab = "dashboard"
	TabDirectory   Tab = "directory"
	TabDeclaration Tab = "declaration"
	TabMap         Tab = "map"
	TabAssistant   Tab = "assistant"
	TabUsers       Tab = "users"
	TabSettings    Tab = "settings"
)

func AllTabs() []Tab {
	return []Tab{TabDashboard, TabDirectory, TabDeclaration, TabMap, TabAssistant, TabUsers, TabSettings}
}

type User struct {
	ID           string `json:"user_id"`       //nolint:tagliatelle
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"` //nolint:tagliatelle
	// Password carries a legacy plaintext credential found in old snapshots.
	// The directory migration hashes it and clears the field; it is never
	// written back populated.
	Password    string `json:"password,omitempty"`
	FullName    string `json:"full_name"` //nolint:tagliatelle
	Role        Role   `json:"role"`
	MinistryID  string `json:"ministry_id,omitempty"` //nolint:tagliatelle
	AllowedTabs []Tab  `json:"allowed_tabs"`          //nolint:tagliatelle
}

func (u User) HasTab(t Tab) bool {
	for _, at := range u.AllowedTabs {
		if at == t {
			return true
		}
	}

	return false
}
