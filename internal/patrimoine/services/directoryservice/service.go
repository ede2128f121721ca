package directoryservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrProtectedAccount   = errors.New("well-known account cannot be deleted")
)

// schemaVersion is stored in the users snapshot so future migrations can
// branch on it instead of re-deriving what changed.
const schemaVersion = 2

const superAdminID = "superadmin"

type usersSnapshot struct {
	SchemaVersion int           `json:"schema_version"` //nolint:tagliatelle
	Users         []models.User `json:"users"`
}

// DirectoryService is the user directory. Every load runs the self-healing
// migration pipeline, so stored snapshots reconcile themselves with current
// business rules without a one-shot migration step.
type DirectoryService struct {
	store recordstore.Store
	lg    logger.Logger
}

func New(store recordstore.Store, lg logger.Logger) *DirectoryService {
	return &DirectoryService{
		store: store,
		lg:    lg,
	}
}

func (ds *DirectoryService) load(ctx context.Context) ([]models.User, error) {
	blob, err := ds.store.Load(ctx, recordstore.CollectionUsers)

	var users []models.User

	switch {
	case errors.Is(err, recordstore.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load users error: %w", err)
	default:
		users, err = decodeUsers(blob)
		if err != nil {
			return nil, fmt.Errorf("decode users error: %w", err)
		}
	}

	migrated, changed := migrate(users)

	if changed {
		if err := ds.save(ctx, migrated); err != nil {
			return nil, fmt.Errorf("persist migrated users error: %w", err)
		}

		ds.lg.Infof("user directory self-healed, %d records", len(migrated))
	}

	return migrated, nil
}

// decodeUsers accepts the current envelope and the legacy bare array written
// by earlier deployments.
func decodeUsers(blob []byte) ([]models.User, error) {
	var snap usersSnapshot

	if err := json.Unmarshal(blob, &snap); err == nil && snap.Users != nil {
		return snap.Users, nil
	}

	var legacy []models.User

	if err := json.Unmarshal(blob, &legacy); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	return legacy, nil
}

func (ds *DirectoryService) save(ctx context.Context, users []models.User) error {
	blob, err := json.Marshal(usersSnapshot{
		SchemaVersion: schemaVersion,
		Users:         users,
	})
	if err != nil {
		return fmt.Errorf("marshal users error: %w", err)
	}

	if err := ds.store.Save(ctx, recordstore.CollectionUsers, blob); err != nil {
		return fmt.Errorf("save users error: %w", err)
	}

	return nil
}

// List returns all user records after the self-healing pass.
func (ds *DirectoryService) List(ctx context.Context) ([]models.User, error) {
	return ds.load(ctx)
}

// Authenticate matches the username case-insensitively and trimmed, then
// compares the trimmed password against the stored hash. The record rules run
// once more on the returned copy.
func (ds *DirectoryService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	users, err := ds.load(ctx)
	if err != nil {
		return models.User{}, err
	}

	target := strings.ToLower(strings.TrimSpace(username))

	for _, u := range users {
		if strings.ToLower(u.Username) != target {
			continue
		}

		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(strings.TrimSpace(password))) != nil {
			return models.User{}, ErrInvalidCredentials
		}

		healed, _ := healRecord(u)

		return healed, nil
	}

	return models.User{}, ErrInvalidCredentials
}

// Register provisions a ministry-admin account, the only role the public
// registration path may create.
func (ds *DirectoryService) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	users, err := ds.load(ctx)
	if err != nil {
		return models.User{}, err
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))

	if username == "" || strings.TrimSpace(req.Password) == "" {
		return models.User{}, ErrInvalidCredentials
	}

	for _, u := range users {
		if strings.ToLower(u.Username) == username {
			return models.User{}, ErrAlreadyExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.Password)), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("generate from password error: %w", err)
	}

	u := models.User{ //nolint:exhaustruct
		ID:           "user-" + uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.FullName),
		Role:         models.RoleMinistryAdmin,
		MinistryID:   req.MinistryID,
		AllowedTabs:  policy.DefaultTabs(models.RoleMinistryAdmin),
	}

	users = append(users, u)

	if err := ds.save(ctx, users); err != nil {
		return models.User{}, err
	}

	return u, nil
}

// Save creates or replaces a user record. Usernames are normalized, a
// populated plaintext Password field is hashed and dropped, absent tab sets
// get the role default, and the forced per-role tab rules win over whatever
// the caller supplied.
func (ds *DirectoryService) Save(ctx context.Context, user models.User) (models.User, error) {
	users, err := ds.load(ctx)
	if err != nil {
		return models.User{}, err
	}

	user.Username = strings.ToLower(strings.TrimSpace(user.Username))

	if !user.Role.Valid() {
		return models.User{}, fmt.Errorf("unknown role %q", user.Role)
	}

	if user.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(user.Password)), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("generate from password error: %w", err)
		}

		user.PasswordHash = string(hash)
		user.Password = ""
	}

	for _, u := range users {
		if u.ID != user.ID && strings.ToLower(u.Username) == user.Username {
			return models.User{}, ErrAlreadyExists
		}
	}

	user, _ = healRecord(user)

	if user.ID == "" {
		user.ID = "user-" + uuid.NewString()
	}

	replaced := false

	for i, u := range users {
		if u.ID == user.ID {
			users[i] = user
			replaced = true

			break
		}
	}

	if !replaced {
		users = append(users, user)
	}

	if err := ds.save(ctx, users); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Delete removes a record by id. The superadmin well-known account is
// protected.
func (ds *DirectoryService) Delete(ctx context.Context, id string) error {
	if id == superAdminID {
		return ErrProtectedAccount
	}

	users, err := ds.load(ctx)
	if err != nil {
		return err
	}

	kept := users[:0]

	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}

	if len(kept) == len(users) {
		return ErrNotFound
	}

	return ds.save(ctx, kept)
}
