package backup_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/codec/backup"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore/memory"
	"github.com/stretchr/testify/require"
)

func TestCreateRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := memory.New()

	require.NoError(t, src.Save(ctx, recordstore.CollectionUsers, []byte(`[{"user_id":"u1"}]`)))
	require.NoError(t, src.Save(ctx, recordstore.CollectionAssets, []byte(`[{"asset_id":"a1"}]`)))
	require.NoError(t, src.Save(ctx, recordstore.CollectionSheetURL, []byte(`"https://example.org/sheet"`)))

	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	blob, err := backup.Create(ctx, src, now)
	require.NoError(t, err)

	var env backup.Envelope

	require.NoError(t, json.Unmarshal(blob, &env))
	require.Equal(t, backup.Version, env.Version)
	require.Equal(t, "2026-08-30T10:00:00Z", env.Timestamp)
	require.NotNil(t, env.Data.Users)
	require.NotNil(t, env.Data.Assets)
	require.NotNil(t, env.Data.SheetURL)
	// Absent collections are recorded as null, not empty strings.
	require.Nil(t, env.Data.Contacts)
	require.Nil(t, env.Data.Texts)

	dst := memory.New()
	require.NoError(t, backup.Restore(ctx, dst, blob))

	users, err := dst.Load(ctx, recordstore.CollectionUsers)
	require.NoError(t, err)
	require.JSONEq(t, `[{"user_id":"u1"}]`, string(users))

	// Null entries must not create collections on restore.
	_, err = dst.Load(ctx, recordstore.CollectionContacts)
	require.ErrorIs(t, err, recordstore.ErrNotFound)
}

func TestRestorePartialKeepsOtherCollections(t *testing.T) {
	ctx := context.Background()
	dst := memory.New()

	require.NoError(t, dst.Save(ctx, recordstore.CollectionContacts, []byte(`[{"contact_id":"c1"}]`)))

	env := `{"timestamp":"2026-08-30T10:00:00Z","version":"1.0","data":{"users":"[]","texts":null,"assets":null,"contacts":null,"sheetUrl":null}}`
	require.NoError(t, backup.Restore(ctx, dst, []byte(env)))

	contacts, err := dst.Load(ctx, recordstore.CollectionContacts)
	require.NoError(t, err)
	require.JSONEq(t, `[{"contact_id":"c1"}]`, string(contacts))

	users, err := dst.Load(ctx, recordstore.CollectionUsers)
	require.NoError(t, err)
	require.Equal(t, "[]", string(users))
}

func TestRestoreInvalid(t *testing.T) {
	ctx := context.Background()
	dst := memory.New()

	require.ErrorIs(t, backup.Restore(ctx, dst, []byte("not json")), backup.ErrInvalid)
	require.ErrorIs(t, backup.Restore(ctx, dst, []byte(`{"timestamp":"x","version":"1.0","data":{}}`)), backup.ErrInvalid)

	// Nothing may have been written by the failed restores.
	for _, c := range recordstore.Collections() {
		_, err := dst.Load(ctx, c)
		require.ErrorIs(t, err, recordstore.ErrNotFound)
	}
}
