// Package backup bundles every persisted collection into a single JSON
// envelope for full export/import.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
)

const Version = "1.0"

var ErrInvalid = errors.New("invalid backup format")

// Envelope carries each collection as its raw serialized blob; a nil entry
// means the collection did not exist when the backup was taken.
type Envelope struct {
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Data      Data   `json:"data"`
}

type Data struct {
	Users    *string `json:"users"`
	Texts    *string `json:"texts"`
	Assets   *string `json:"assets"`
	Contacts *string `json:"contacts"`
	SheetURL *string `json:"sheetUrl"` //nolint:tagliatelle
}

var dataCollections = map[recordstore.Collection]func(*Data) **string{
	recordstore.CollectionUsers:    func(d *Data) **string { return &d.Users },
	recordstore.CollectionTexts:    func(d *Data) **string { return &d.Texts },
	recordstore.CollectionAssets:   func(d *Data) **string { return &d.Assets },
	recordstore.CollectionContacts: func(d *Data) **string { return &d.Contacts },
	recordstore.CollectionSheetURL: func(d *Data) **string { return &d.SheetURL },
}

// Create reads every collection through the store and serializes the
// envelope. Collections that do not exist yet are recorded as null.
func Create(ctx context.Context, store recordstore.Store, now time.Time) ([]byte, error) {
	env := Envelope{
		Timestamp: now.UTC().Format(time.RFC3339),
		Version:   Version,
		Data:      Data{}, //nolint:exhaustruct
	}

	for c, slot := range dataCollections {
		blob, err := store.Load(ctx, c)
		if errors.Is(err, recordstore.ErrNotFound) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("load %s error: %w", c, err)
		}

		raw := string(blob)
		*slot(&env.Data) = &raw
	}

	out, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal envelope error: %w", err)
	}

	return out, nil
}

// Restore replaces each target collection whose key is present in the
// envelope. Nothing is applied on a malformed payload; callers must reload
// their in-memory state afterwards for the restore to take effect.
func Restore(ctx context.Context, store recordstore.Store, blob []byte) error {
	var env Envelope

	if err := json.Unmarshal(blob, &env); err != nil {
		return ErrInvalid
	}

	if env.Data == (Data{}) { //nolint:exhaustruct
		return ErrInvalid
	}

	for c, slot := range dataCollections {
		raw := *slot(&env.Data)
		if raw == nil {
			continue
		}

		if err := store.Save(ctx, c, []byte(*raw)); err != nil {
			return fmt.Errorf("save %s error: %w", c, err)
		}
	}

	return nil
}
