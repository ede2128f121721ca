package recordstore

import (
	"context"
	"errors"
)

// Collection names the persisted snapshots. The version suffix is part of
// the stored key, carried over from the original deployment's storage keys.
type Collection string

const (
	CollectionUsers    Collection = "app_users_v1"
	CollectionAssets   Collection = "app_assets_v1"
	CollectionContacts Collection = "app_contacts_v1"
	CollectionGroups   Collection = "app_groups_v1"
	CollectionTexts    Collection = "app_settings_texts_v1"
	CollectionSheetURL Collection = "app_sheet_url_v1"
)

func Collections() []Collection {
	return []Collection{
		CollectionUsers, CollectionAssets, CollectionContacts,
		CollectionGroups, CollectionTexts, CollectionSheetURL,
	}
}

var ErrNotFound = errors.New("collection not found")

// Store persists each collection as a single opaque blob. There are no
// partial writes and no cross-collection transactions; two writers racing on
// the same collection end in a last-write-wins overwrite, which is the
// accepted concurrency model of the system.
type Store interface {
	Load(ctx context.Context, c Collection) ([]byte, error)
	Save(ctx context.Context, c Collection, blob []byte) error
	Delete(ctx context.Context, c Collection) error
	Shutdown(ctx context.Context) error
}
