package policy_test

import (
	"testing"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/stretchr/testify/require"
)

func user(role models.Role, ministryID string, tabs ...models.Tab) models.User {
	return models.User{ //nolint:exhaustruct
		ID:          "u1",
		Username:    "u1",
		Role:        role,
		MinistryID:  ministryID,
		AllowedTabs: tabs,
	}
}

func TestValidateTable(t *testing.T) {
	require.NoError(t, policy.ValidateTable())
}

func TestHasPermissionEdit(t *testing.T) {
	tests := []struct {
		name     string
		u        models.User
		owner    string
		expected bool
	}{
		{"super admin edits anywhere", user(models.RoleSuperAdmin, ""), "m2", true},
		{"deputy edits anywhere", user(models.RoleDeputyAdmin, ""), "m2", true},
		{"ministry admin edits own", user(models.RoleMinistryAdmin, "m1"), "m1", true},
		{"ministry admin blocked elsewhere", user(models.RoleMinistryAdmin, "m1"), "m2", false},
		{"ministry admin blocked on unowned entity", user(models.RoleMinistryAdmin, "m1"), "", false},
		{"editor edits own", user(models.RoleEditor, "m1"), "m1", true},
		{"editor blocked elsewhere", user(models.RoleEditor, "m1"), "m2", false},
		{"viewer never edits", user(models.RoleViewer, "m1"), "m1", false},
		{"unknown role denied", user(models.Role("AUDITOR"), "m1"), "m1", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, policy.HasPermission(tc.u, policy.ActionEdit, tc.owner))
		})
	}
}

func TestHasPermissionDelete(t *testing.T) {
	tests := []struct {
		name     string
		u        models.User
		owner    string
		expected bool
	}{
		{"super admin deletes anywhere", user(models.RoleSuperAdmin, ""), "m2", true},
		{"deputy deletes anywhere", user(models.RoleDeputyAdmin, ""), "m2", true},
		{"ministry admin deletes own", user(models.RoleMinistryAdmin, "m1"), "m1", true},
		{"ministry admin blocked elsewhere", user(models.RoleMinistryAdmin, "m1"), "m2", false},
		{"editor never deletes, even own", user(models.RoleEditor, "m1"), "m1", false},
		{"viewer never deletes", user(models.RoleViewer, "m1"), "m1", false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, policy.HasPermission(tc.u, policy.ActionDelete, tc.owner))
		})
	}
}

func TestHasPermissionViewUsers(t *testing.T) {
	require.True(t, policy.HasPermission(user(models.RoleSuperAdmin, ""), policy.ActionViewUsers, ""))

	for _, r := range []models.Role{
		models.RoleDeputyAdmin, models.RoleMinistryAdmin, models.RoleEditor, models.RoleViewer,
	} {
		require.Falsef(t, policy.HasPermission(user(r, "m1"), policy.ActionViewUsers, ""),
			"role %s must not manage users", r)
	}
}

func TestCanAccessSection(t *testing.T) {
	super := user(models.RoleSuperAdmin, "")
	deputy := user(models.RoleDeputyAdmin, "", models.TabDashboard, models.TabUsers, models.TabAssistant)
	viewer := user(models.RoleViewer, "m1", models.TabDashboard, models.TabMap)

	for _, tab := range models.AllTabs() {
		require.Truef(t, policy.CanAccessSection(super, tab), "super admin must reach %s", tab)
	}

	// Hard restrictions beat a stored allowed-tabs list.
	require.False(t, policy.CanAccessSection(deputy, models.TabUsers))
	require.False(t, policy.CanAccessSection(deputy, models.TabAssistant))
	require.True(t, policy.CanAccessSection(deputy, models.TabDashboard))

	require.True(t, policy.CanAccessSection(viewer, models.TabMap))
	require.False(t, policy.CanAccessSection(viewer, models.TabDeclaration))
}

func TestDefaultTabs(t *testing.T) {
	require.Equal(t, models.AllTabs(), policy.DefaultTabs(models.RoleSuperAdmin))
	require.Equal(t,
		[]models.Tab{models.TabDashboard, models.TabDirectory, models.TabDeclaration, models.TabMap},
		policy.DefaultTabs(models.RoleDeputyAdmin))
	require.Equal(t,
		[]models.Tab{models.TabDashboard, models.TabDeclaration},
		policy.DefaultTabs(models.RoleMinistryAdmin))
	require.Equal(t,
		[]models.Tab{models.TabDashboard, models.TabDeclaration},
		policy.DefaultTabs(models.RoleEditor))
	require.Equal(t,
		[]models.Tab{models.TabDashboard, models.TabMap},
		policy.DefaultTabs(models.RoleViewer))
}
