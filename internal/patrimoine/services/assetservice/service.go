package assetservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/integrations/sheetsync"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("declaration not found")
	ErrForbidden = errors.New("operation not permitted for this role")
)

// MinistryDirectory is the slice of the contact directory the asset flow
// needs: resolving a ministry's display name for the sheet row, and creating
// a ministry on the fly when a global admin types one in manually.
type MinistryDirectory interface {
	FindMinistry(ctx context.Context, id string) (models.MinistryContact, error)
	CreateMinistry(ctx context.Context, name models.BilingualText) (models.MinistryContact, error)
}

// SheetURLSource yields the operator-configured sheet endpoint; empty means
// sync is off.
type SheetURLSource interface {
	SheetURL(ctx context.Context) (string, error)
}

type AssetService struct {
	store      recordstore.Store
	ministries MinistryDirectory
	settings   SheetURLSource
	sheets     *sheetsync.Client
	lg         logger.Logger
	now        func() time.Time
}

func New(store recordstore.Store, ministries MinistryDirectory, settings SheetURLSource,
	sheets *sheetsync.Client, lg logger.Logger,
) *AssetService {
	return &AssetService{
		store:      store,
		ministries: ministries,
		settings:   settings,
		sheets:     sheets,
		lg:         lg,
		now:        time.Now,
	}
}

func (as *AssetService) load(ctx context.Context) ([]models.AssetDeclaration, error) {
	blob, err := as.store.Load(ctx, recordstore.CollectionAssets)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("load assets error: %w", err)
	}

	var assets []models.AssetDeclaration

	if err := json.Unmarshal(blob, &assets); err != nil {
		return nil, fmt.Errorf("unmarshal assets error: %w", err)
	}

	return assets, nil
}

func (as *AssetService) save(ctx context.Context, assets []models.AssetDeclaration) error {
	blob, err := json.Marshal(assets)
	if err != nil {
		return fmt.Errorf("marshal assets error: %w", err)
	}

	if err := as.store.Save(ctx, recordstore.CollectionAssets, blob); err != nil {
		return fmt.Errorf("save assets error: %w", err)
	}

	return nil
}

// ListFor returns the declarations the viewer may see: everything for global
// roles, the viewer's own ministry otherwise.
func (as *AssetService) ListFor(ctx context.Context, viewer models.User) ([]models.AssetDeclaration, error) {
	assets, err := as.load(ctx)
	if err != nil {
		return nil, err
	}

	if viewer.Role.IsGlobal() {
		return assets, nil
	}

	scoped := make([]models.AssetDeclaration, 0, len(assets))

	for _, a := range assets {
		if viewer.MinistryID != "" && a.MinistryID == viewer.MinistryID {
			scoped = append(scoped, a)
		}
	}

	return scoped, nil
}

// Search filters the viewer-visible declarations by a case-insensitive
// substring over the text-bearing fields. An empty query returns everything.
func (as *AssetService) Search(ctx context.Context, viewer models.User, query string) ([]models.AssetDeclaration, error) {
	assets, err := as.ListFor(ctx, viewer)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return assets, nil
	}

	matched := make([]models.AssetDeclaration, 0, len(assets))

	for _, a := range assets {
		if matchesQuery(a, query) {
			matched = append(matched, a)
		}
	}

	return matched, nil
}

func matchesQuery(a models.AssetDeclaration, query string) bool {
	for _, field := range []string{
		a.Reference, a.Description, a.LocationDetails,
		a.SubEntity, string(a.Wilaya), string(a.Type),
	} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}

	return false
}

// Get returns one viewer-visible declaration.
func (as *AssetService) Get(ctx context.Context, viewer models.User, id string) (models.AssetDeclaration, error) {
	assets, err := as.ListFor(ctx, viewer)
	if err != nil {
		return models.AssetDeclaration{}, err
	}

	for _, a := range assets {
		if a.ID == id {
			return a, nil
		}
	}

	return models.AssetDeclaration{}, ErrNotFound
}

// Save creates or updates a declaration on behalf of actor. The record is
// fully validated, the depreciated value is snapshotted at save time, and a
// successful write triggers a best-effort sheet push in the background.
func (as *AssetService) Save(ctx context.Context, actor models.User, req SaveRequest) (models.AssetDeclaration, error) {
	a := req.Declaration

	if flags := Validate(a, actor, req.ManualMinistryName); len(flags) > 0 {
		return models.AssetDeclaration{}, &ValidationError{Fields: flags}
	}

	a.Specifics = narrowSpecifics(a.Specifics, a.Type)

	if err := a.Specifics.Validate(a.Type); err != nil {
		return models.AssetDeclaration{}, fmt.Errorf("specific details error: %w", err)
	}

	if a.MinistryID == "" && !req.ManualMinistryName.Empty() {
		if !actor.Role.IsGlobal() {
			return models.AssetDeclaration{}, ErrForbidden
		}

		contact, err := as.ministries.CreateMinistry(ctx, req.ManualMinistryName)
		if err != nil {
			return models.AssetDeclaration{}, fmt.Errorf("create ministry error: %w", err)
		}

		a.MinistryID = contact.ID
	}

	assets, err := as.load(ctx)
	if err != nil {
		return models.AssetDeclaration{}, err
	}

	owner := a.MinistryID

	idx := -1

	for i, existing := range assets {
		if a.ID != "" && existing.ID == a.ID {
			idx = i
			owner = existing.MinistryID

			break
		}
	}

	if !policy.HasPermission(actor, policy.ActionEdit, owner) {
		return models.AssetDeclaration{}, ErrForbidden
	}

	if a.ID == "" {
		a.ID = "asset-" + uuid.NewString()
	}

	a.CurrentValue = CurrentValue(a, as.now())

	if idx >= 0 {
		assets[idx] = a
	} else {
		assets = append(assets, a)
	}

	if err := as.save(ctx, assets); err != nil {
		return models.AssetDeclaration{}, err
	}

	as.pushToSheet(a)

	return a, nil
}

// pushToSheet fires the sheet sync in the background. Failures are logged
// and never surfaced to the save flow.
func (as *AssetService) pushToSheet(a models.AssetDeclaration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*15) //nolint:gomnd
		defer cancel()

		url, err := as.settings.SheetURL(ctx)
		if err != nil {
			as.lg.Warnf("sheet sync skipped, url lookup failed: %s", err.Error())

			return
		}

		if url == "" {
			return
		}

		var name models.BilingualText

		if contact, err := as.ministries.FindMinistry(ctx, a.MinistryID); err == nil {
			name = contact.Name
		}

		payload := sheetsync.BuildPayload(a, name, as.now())

		if err := as.sheets.Push(ctx, url, payload); err != nil {
			as.lg.Warnf("sheet sync failed for %s: %s", a.ID, err.Error())
		}
	}()
}

// Delete removes one declaration after a per-record permission check.
func (as *AssetService) Delete(ctx context.Context, actor models.User, id string) error {
	return as.BulkDelete(ctx, actor, []string{id})
}

// BulkDelete removes the given declarations in one snapshot write. The call
// is all-or-nothing: an unknown id or a single denied record fails the whole
// batch.
func (as *AssetService) BulkDelete(ctx context.Context, actor models.User, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	assets, err := as.load(ctx)
	if err != nil {
		return err
	}

	doomed := make(map[string]bool, len(ids))

	for _, id := range ids {
		doomed[id] = false
	}

	for _, a := range assets {
		if _, ok := doomed[a.ID]; !ok {
			continue
		}

		if !policy.HasPermission(actor, policy.ActionDelete, a.MinistryID) {
			return ErrForbidden
		}

		doomed[a.ID] = true
	}

	for id, found := range doomed {
		if !found {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}

	kept := assets[:0]

	for _, a := range assets {
		if _, ok := doomed[a.ID]; !ok {
			kept = append(kept, a)
		}
	}

	return as.save(ctx, kept)
}

// DeleteByMinistry drops every declaration belonging to the ministry. Used
// by the directory when a ministry record is removed.
func (as *AssetService) DeleteByMinistry(ctx context.Context, ministryID string) error {
	assets, err := as.load(ctx)
	if err != nil {
		return err
	}

	kept := assets[:0]

	for _, a := range assets {
		if a.MinistryID != ministryID {
			kept = append(kept, a)
		}
	}

	if len(kept) == len(assets) {
		return nil
	}

	return as.save(ctx, kept)
}
