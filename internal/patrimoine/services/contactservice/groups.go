package contactservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/google/uuid"
)

var ErrGroupNotFound = errors.New("group not found")

func (cs *ContactService) loadGroups(ctx context.Context) ([]models.WorkGroup, error) {
	blob, err := cs.store.Load(ctx, recordstore.CollectionGroups)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("load groups error: %w", err)
	}

	var groups []models.WorkGroup

	if err := json.Unmarshal(blob, &groups); err != nil {
		return nil, fmt.Errorf("unmarshal groups error: %w", err)
	}

	return groups, nil
}

func (cs *ContactService) saveGroups(ctx context.Context, groups []models.WorkGroup) error {
	blob, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("marshal groups error: %w", err)
	}

	if err := cs.store.Save(ctx, recordstore.CollectionGroups, blob); err != nil {
		return fmt.Errorf("save groups error: %w", err)
	}

	return nil
}

// ListGroups returns every work group.
func (cs *ContactService) ListGroups(ctx context.Context) ([]models.WorkGroup, error) {
	return cs.loadGroups(ctx)
}

// SaveGroup creates or replaces a work group. Member ids are de-duplicated
// preserving first occurrence.
func (cs *ContactService) SaveGroup(ctx context.Context, group models.WorkGroup) (models.WorkGroup, error) {
	groups, err := cs.loadGroups(ctx)
	if err != nil {
		return models.WorkGroup{}, err
	}

	if group.ID == "" {
		group.ID = "group-" + uuid.NewString()
	}

	group.ContactIDs = dedupe(group.ContactIDs)

	replaced := false

	for i, g := range groups {
		if g.ID == group.ID {
			groups[i] = group
			replaced = true

			break
		}
	}

	if !replaced {
		groups = append(groups, group)
	}

	if err := cs.saveGroups(ctx, groups); err != nil {
		return models.WorkGroup{}, err
	}

	return group, nil
}

// DeleteGroup removes a work group by id.
func (cs *ContactService) DeleteGroup(ctx context.Context, id string) error {
	groups, err := cs.loadGroups(ctx)
	if err != nil {
		return err
	}

	kept := groups[:0]

	for _, g := range groups {
		if g.ID != id {
			kept = append(kept, g)
		}
	}

	if len(kept) == len(groups) {
		return ErrGroupNotFound
	}

	return cs.saveGroups(ctx, kept)
}

// detachFromGroups removes a deleted contact from every group member list.
func (cs *ContactService) detachFromGroups(ctx context.Context, contactID string) error {
	groups, err := cs.loadGroups(ctx)
	if err != nil {
		return err
	}

	changed := false

	for i, g := range groups {
		kept := g.ContactIDs[:0]

		for _, id := range g.ContactIDs {
			if id != contactID {
				kept = append(kept, id)
			}
		}

		if len(kept) != len(g.ContactIDs) {
			groups[i].ContactIDs = kept
			changed = true
		}
	}

	if !changed {
		return nil
	}

	return cs.saveGroups(ctx, groups)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
