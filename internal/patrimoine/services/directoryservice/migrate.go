package directoryservice

import (
	"strings"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"golang.org/x/crypto/bcrypt"
)

// Seed account credentials. Operators are expected to rotate them after the
// first login; the records themselves are never recreated once present.
const (
	superAdminUsername = "superadmin"
	superAdminPassword = "superadmin123"

	deputyID       = "adjoint"
	deputyUsername = "adjoint"
	deputyPassword = "adjoint123"
)

// recordRule inspects one user and returns the possibly-corrected copy plus
// whether anything changed. Every rule must be idempotent.
type recordRule func(models.User) (models.User, bool)

var recordRules = []recordRule{
	hashLegacyCredential,
	forceMinistryAdminTabs,
	stripRestrictedTabs,
	ensureDefaultTabs,
}

// migrate runs the collection-level and per-record rules over the snapshot.
func migrate(users []models.User) ([]models.User, bool) {
	users, changed := ensureSeedAccounts(users)

	for i, u := range users {
		healed, c := healRecord(u)
		if c {
			users[i] = healed
			changed = true
		}
	}

	return users, changed
}

func healRecord(u models.User) (models.User, bool) {
	changed := false

	for _, rule := range recordRules {
		var c bool

		u, c = rule(u)
		changed = changed || c
	}

	return u, changed
}

// ensureSeedAccounts inserts the two well-known administrator accounts when
// their usernames are absent.
func ensureSeedAccounts(users []models.User) ([]models.User, bool) {
	changed := false

	if !hasUsername(users, superAdminUsername) {
		users = append(users, seedUser(
			superAdminID, superAdminUsername, superAdminPassword,
			"Administrateur Général", models.RoleSuperAdmin, ""))
		changed = true
	}

	if !hasUsername(users, deputyUsername) {
		users = append(users, seedUser(
			deputyID, deputyUsername, deputyPassword,
			"Administrateur Adjoint", models.RoleDeputyAdmin, ""))
		changed = true
	}

	return users, changed
}

func hasUsername(users []models.User, username string) bool {
	for _, u := range users {
		if strings.ToLower(u.Username) == username {
			return true
		}
	}

	return false
}

func seedUser(id, username, password, fullName string, role models.Role, ministryID string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on oversized input; seed passwords are short.
		panic(err)
	}

	return models.User{ //nolint:exhaustruct
		ID:           id,
		Username:     username,
		PasswordHash: string(hash),
		FullName:     fullName,
		Role:         role,
		MinistryID:   ministryID,
		AllowedTabs:  policy.DefaultTabs(role),
	}
}

// hashLegacyCredential converts a plaintext password left over from earlier
// snapshots into a salted hash and drops the plaintext.
func hashLegacyCredential(u models.User) (models.User, bool) {
	if u.Password == "" {
		return u, false
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(u.Password)), bcrypt.DefaultCost)
	if err != nil {
		return u, false
	}

	u.PasswordHash = string(hash)
	u.Password = ""

	return u, true
}

// forceMinistryAdminTabs pins ministry administrators to their role default,
// discarding whatever was stored.
func forceMinistryAdminTabs(u models.User) (models.User, bool) {
	if u.Role != models.RoleMinistryAdmin {
		return u, false
	}

	want := policy.DefaultTabs(u.Role)
	if tabsEqual(u.AllowedTabs, want) {
		return u, false
	}

	u.AllowedTabs = want

	return u, true
}

// stripRestrictedTabs removes the assistant and user-management sections from
// every non-SUPER_ADMIN record.
func stripRestrictedTabs(u models.User) (models.User, bool) {
	if u.Role == models.RoleSuperAdmin {
		return u, false
	}

	kept := make([]models.Tab, 0, len(u.AllowedTabs))

	for _, t := range u.AllowedTabs {
		if t == models.TabAssistant || t == models.TabUsers {
			continue
		}

		kept = append(kept, t)
	}

	if len(kept) == len(u.AllowedTabs) {
		return u, false
	}

	u.AllowedTabs = kept

	return u, true
}

// ensureDefaultTabs backfills an absent tab set with the role default.
func ensureDefaultTabs(u models.User) (models.User, bool) {
	if len(u.AllowedTabs) > 0 {
		return u, false
	}

	u.AllowedTabs = policy.DefaultTabs(u.Role)

	return u, true
}

func tabsEqual(a, b []models.Tab) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
