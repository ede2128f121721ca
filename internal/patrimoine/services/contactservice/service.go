package contactservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("contact not found")

// ContactService owns the ministry directory and its work groups. Compliance
// status is derived from the asset snapshot on every read, never trusted
// from storage.
type ContactService struct {
	store recordstore.Store
	lg    logger.Logger
	now   func() time.Time
}

func New(store recordstore.Store, lg logger.Logger) *ContactService {
	return &ContactService{
		store: store,
		lg:    lg,
		now:   time.Now,
	}
}

func (cs *ContactService) loadContacts(ctx context.Context) ([]models.MinistryContact, error) {
	blob, err := cs.store.Load(ctx, recordstore.CollectionContacts)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("load contacts error: %w", err)
	}

	var contacts []models.MinistryContact

	if err := json.Unmarshal(blob, &contacts); err != nil {
		return nil, fmt.Errorf("unmarshal contacts error: %w", err)
	}

	return contacts, nil
}

func (cs *ContactService) saveContacts(ctx context.Context, contacts []models.MinistryContact) error {
	blob, err := json.Marshal(contacts)
	if err != nil {
		return fmt.Errorf("marshal contacts error: %w", err)
	}

	if err := cs.store.Save(ctx, recordstore.CollectionContacts, blob); err != nil {
		return fmt.Errorf("save contacts error: %w", err)
	}

	return nil
}

// ListContacts returns the directory with each entry's compliance status and
// last-submission date recomputed from the current asset snapshot.
func (cs *ContactService) ListContacts(ctx context.Context) ([]models.MinistryContact, error) {
	contacts, err := cs.loadContacts(ctx)
	if err != nil {
		return nil, err
	}

	assets, err := cs.loadAssets(ctx)
	if err != nil {
		return nil, err
	}

	for i, c := range contacts {
		status, last := deriveCompliance(assets, c.ID, cs.now())
		contacts[i].ComplianceStatus = status
		contacts[i].LastSubmission = last
	}

	return contacts, nil
}

// SaveContact creates or replaces one directory entry.
func (cs *ContactService) SaveContact(ctx context.Context, contact models.MinistryContact) (models.MinistryContact, error) {
	contacts, err := cs.loadContacts(ctx)
	if err != nil {
		return models.MinistryContact{}, err
	}

	if contact.ID == "" {
		contact.ID = "contact-" + uuid.NewString()
	}

	if contact.ComplianceStatus == "" {
		contact.ComplianceStatus = models.CompliancePending
	}

	replaced := false

	for i, c := range contacts {
		if c.ID == contact.ID {
			contacts[i] = contact
			replaced = true

			break
		}
	}

	if !replaced {
		contacts = append(contacts, contact)
	}

	if err := cs.saveContacts(ctx, contacts); err != nil {
		return models.MinistryContact{}, err
	}

	return contact, nil
}

// FindMinistry looks one entry up by id.
func (cs *ContactService) FindMinistry(ctx context.Context, id string) (models.MinistryContact, error) {
	contacts, err := cs.loadContacts(ctx)
	if err != nil {
		return models.MinistryContact{}, err
	}

	for _, c := range contacts {
		if c.ID == id {
			return c, nil
		}
	}

	return models.MinistryContact{}, ErrNotFound
}

// CreateMinistry provisions a minimal directory entry for a ministry typed
// in manually on the declaration form. It starts out pending until its first
// submission ages in.
func (cs *ContactService) CreateMinistry(ctx context.Context, name models.BilingualText) (models.MinistryContact, error) {
	if name.Empty() {
		return models.MinistryContact{}, fmt.Errorf("ministry name required")
	}

	return cs.SaveContact(ctx, models.MinistryContact{ //nolint:exhaustruct
		ID:               "contact-" + uuid.NewString(),
		Name:             name,
		ComplianceStatus: models.CompliancePending,
	})
}

// DeleteMinistry removes the directory entry, detaches it from every work
// group, and drops all of its asset declarations.
func (cs *ContactService) DeleteMinistry(ctx context.Context, id string) error {
	contacts, err := cs.loadContacts(ctx)
	if err != nil {
		return err
	}

	kept := contacts[:0]

	for _, c := range contacts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}

	if len(kept) == len(contacts) {
		return ErrNotFound
	}

	if err := cs.saveContacts(ctx, kept); err != nil {
		return err
	}

	if err := cs.detachFromGroups(ctx, id); err != nil {
		return err
	}

	if err := cs.purgeAssets(ctx, id); err != nil {
		return err
	}

	cs.lg.Infof("ministry %s removed with its declarations", id)

	return nil
}

// purgeAssets drops the deleted ministry's declarations from the asset
// snapshot so the catalog never shows orphaned records.
func (cs *ContactService) purgeAssets(ctx context.Context, ministryID string) error {
	assets, err := cs.loadAssets(ctx)
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

	blob, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("marshal assets error: %w", err)
	}

	if err := cs.store.Save(ctx, recordstore.CollectionAssets, blob); err != nil {
		return fmt.Errorf("save assets error: %w", err)
	}

	return nil
}

func (cs *ContactService) loadAssets(ctx context.Context) ([]models.AssetDeclaration, error) {
	blob, err := cs.store.Load(ctx, recordstore.CollectionAssets)
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

func trimmed(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(row[k]); v != "" {
			return v
		}
	}

	return ""
}
