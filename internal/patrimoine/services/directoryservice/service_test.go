package directoryservice_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore/memory"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/directoryservice"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDirectory(t *testing.T) (*directoryservice.DirectoryService, *memory.SnapshotStore) {
	t.Helper()

	store := memory.New()

	return directoryservice.New(store, logger.Nop()), store
}

func seedUsers(t *testing.T, store recordstore.Store, blob string) {
	t.Helper()
	require.NoError(t, store.Save(context.Background(), recordstore.CollectionUsers, []byte(blob)))
}

func findUser(users []models.User, username string) (models.User, bool) {
	for _, u := range users {
		if u.Username == username {
			return u, true
		}
	}

	return models.User{}, false //nolint:exhaustruct
}

func TestSeedAccountsOnEmptyStore(t *testing.T) {
	svc, _ := newDirectory(t)

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	super, ok := findUser(users, "superadmin")
	require.True(t, ok)
	require.Equal(t, models.RoleSuperAdmin, super.Role)
	require.Equal(t, models.AllTabs(), super.AllowedTabs)
	require.Empty(t, super.Password)
	require.NotEmpty(t, super.PasswordHash)

	adjoint, ok := findUser(users, "adjoint")
	require.True(t, ok)
	require.Equal(t, models.RoleDeputyAdmin, adjoint.Role)
	require.Equal(t, policy.DefaultTabs(models.RoleDeputyAdmin), adjoint.AllowedTabs)
}

func TestSeedsAuthenticate(t *testing.T) {
	svc, _ := newDirectory(t)

	u, err := svc.Authenticate(context.Background(), "superadmin", "superadmin123")
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperAdmin, u.Role)

	u, err = svc.Authenticate(context.Background(), "adjoint", "adjoint123")
	require.NoError(t, err)
	require.Equal(t, models.RoleDeputyAdmin, u.Role)
}

func TestMigrationIsIdempotent(t *testing.T) {
	svc, store := newDirectory(t)

	_, err := svc.List(context.Background())
	require.NoError(t, err)

	first, err := store.Load(context.Background(), recordstore.CollectionUsers)
	require.NoError(t, err)

	_, err = svc.List(context.Background())
	require.NoError(t, err)

	second, err := store.Load(context.Background(), recordstore.CollectionUsers)
	require.NoError(t, err)

	// A second pass over an already-healed snapshot must not rewrite it.
	require.Equal(t, string(first), string(second))
}

func TestLegacyBareArrayAndPlaintextPassword(t *testing.T) {
	svc, store := newDirectory(t)

	seedUsers(t, store, `[
		{"user_id":"u-old","username":"ancien","password":" motdepasse ","full_name":"Ancien Compte","role":"EDITOR","ministry_id":"m1","allowed_tabs":["dashboard","declaration"]}
	]`)

	users, err := svc.List(context.Background())
	require.NoError(t, err)

	old, ok := findUser(users, "ancien")
	require.True(t, ok)
	require.Empty(t, old.Password)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(old.PasswordHash), []byte("motdepasse")))

	// The rewritten snapshot carries the schema version envelope.
	blob, err := store.Load(context.Background(), recordstore.CollectionUsers)
	require.NoError(t, err)

	var snap struct {
		SchemaVersion int `json:"schema_version"` //nolint:tagliatelle
	}

	require.NoError(t, json.Unmarshal(blob, &snap))
	require.Equal(t, 2, snap.SchemaVersion)

	// And the plaintext password authenticates after hashing.
	_, err = svc.Authenticate(context.Background(), "ancien", "motdepasse")
	require.NoError(t, err)
}

func TestMigrationForcesMinistryAdminTabs(t *testing.T) {
	svc, store := newDirectory(t)

	seedUsers(t, store, `{"schema_version":2,"users":[
		{"user_id":"u-ma","username":"madmin","password_hash":"x","full_name":"MA","role":"MINISTRY_ADMIN","ministry_id":"m1","allowed_tabs":["dashboard","map","assistant","users"]}
	]}`)

	users, err := svc.List(context.Background())
	require.NoError(t, err)

	ma, ok := findUser(users, "madmin")
	require.True(t, ok)
	require.Equal(t, policy.DefaultTabs(models.RoleMinistryAdmin), ma.AllowedTabs)
}

func TestMigrationStripsRestrictedTabs(t *testing.T) {
	svc, store := newDirectory(t)

	seedUsers(t, store, `{"schema_version":2,"users":[
		{"user_id":"u-v","username":"lecteur","password_hash":"x","full_name":"V","role":"VIEWER","ministry_id":"m1","allowed_tabs":["dashboard","map","assistant","users"]}
	]}`)

	users, err := svc.List(context.Background())
	require.NoError(t, err)

	v, ok := findUser(users, "lecteur")
	require.True(t, ok)
	require.NotContains(t, v.AllowedTabs, models.TabAssistant)
	require.NotContains(t, v.AllowedTabs, models.TabUsers)
	require.Contains(t, v.AllowedTabs, models.TabDashboard)
	require.Contains(t, v.AllowedTabs, models.TabMap)
}

func TestMigrationBackfillsMissingTabs(t *testing.T) {
	svc, store := newDirectory(t)

	seedUsers(t, store, `{"schema_version":2,"users":[
		{"user_id":"u-e","username":"agent","password_hash":"x","full_name":"E","role":"EDITOR","ministry_id":"m1","allowed_tabs":[]}
	]}`)

	users, err := svc.List(context.Background())
	require.NoError(t, err)

	e, ok := findUser(users, "agent")
	require.True(t, ok)
	require.Equal(t, policy.DefaultTabs(models.RoleEditor), e.AllowedTabs)
}

func TestAuthenticateTrimsAndLowercases(t *testing.T) {
	svc, _ := newDirectory(t)

	_, err := svc.Authenticate(context.Background(), "  SuperAdmin  ", " superadmin123 ")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), "superadmin", "wrong")
	require.ErrorIs(t, err, directoryservice.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "superadmin123")
	require.ErrorIs(t, err, directoryservice.ErrInvalidCredentials)
}

func TestRegister(t *testing.T) {
	svc, _ := newDirectory(t)

	u, err := svc.Register(context.Background(), directoryservice.RegisterRequest{
		FullName:   "Fatimetou Mint Ahmed",
		Username:   "  FMintAhmed ",
		Password:   "s3cret",
		MinistryID: "m1",
	})
	require.NoError(t, err)
	require.Equal(t, "fmintahmed", u.Username)
	require.Equal(t, models.RoleMinistryAdmin, u.Role)
	require.Equal(t, policy.DefaultTabs(models.RoleMinistryAdmin), u.AllowedTabs)

	_, err = svc.Authenticate(context.Background(), "fmintahmed", "s3cret")
	require.NoError(t, err)

	// Duplicate usernames are rejected case-insensitively.
	_, err = svc.Register(context.Background(), directoryservice.RegisterRequest{
		FullName: "Autre", Username: "FMINTAHMED", Password: "x", MinistryID: "m2",
	})
	require.ErrorIs(t, err, directoryservice.ErrAlreadyExists)
}

func TestSaveRejectsDuplicateUsernameForDifferentID(t *testing.T) {
	svc, _ := newDirectory(t)

	created, err := svc.Save(context.Background(), models.User{ //nolint:exhaustruct
		Username: "agent", Password: "pw", FullName: "Agent", Role: models.RoleEditor, MinistryID: "m1",
	})
	require.NoError(t, err)

	// Same username, same record: allowed.
	created.Password = ""
	_, err = svc.Save(context.Background(), created)
	require.NoError(t, err)

	// Same username, different record: conflict.
	_, err = svc.Save(context.Background(), models.User{ //nolint:exhaustruct
		Username: "AGENT", Password: "pw", FullName: "Imposteur", Role: models.RoleEditor, MinistryID: "m2",
	})
	require.ErrorIs(t, err, directoryservice.ErrAlreadyExists)
}

func TestSaveEnforcesTabRules(t *testing.T) {
	svc, _ := newDirectory(t)

	u, err := svc.Save(context.Background(), models.User{ //nolint:exhaustruct
		Username:    "madmin",
		Password:    "pw",
		FullName:    "MA",
		Role:        models.RoleMinistryAdmin,
		MinistryID:  "m1",
		AllowedTabs: []models.Tab{models.TabUsers, models.TabAssistant, models.TabMap},
	})
	require.NoError(t, err)
	require.Equal(t, policy.DefaultTabs(models.RoleMinistryAdmin), u.AllowedTabs)
}

func TestSaveRejectsUnknownRole(t *testing.T) {
	svc, _ := newDirectory(t)

	_, err := svc.Save(context.Background(), models.User{ //nolint:exhaustruct
		Username: "x", Password: "pw", FullName: "X", Role: models.Role("AUDITOR"),
	})
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	svc, _ := newDirectory(t)

	u, err := svc.Register(context.Background(), directoryservice.RegisterRequest{
		FullName: "Temp", Username: "temp", Password: "pw", MinistryID: "m1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), u.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), u.ID), directoryservice.ErrNotFound)

	// The well-known superadmin account cannot be removed.
	require.ErrorIs(t, svc.Delete(context.Background(), "superadmin"), directoryservice.ErrProtectedAccount)
}
