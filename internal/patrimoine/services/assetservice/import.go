package assetservice

import (
	"context"
	"fmt"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/codec/tabular"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/google/uuid"
)

// ImportCSV merges declarations from an uploaded CSV export. Rows keep their
// id when present, so re-importing an export updates records in place.
// Every touched record must fall inside the actor's edit scope; a single
// denied or incomplete row fails the batch before anything is written.
func (as *AssetService) ImportCSV(ctx context.Context, actor models.User, data []byte) (int, error) {
	rows, err := tabular.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("parse csv error: %w", err)
	}

	incoming := tabular.UnmarshalAssets(rows)
	if len(incoming) == 0 {
		return 0, nil
	}

	assets, err := as.load(ctx)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]int, len(assets))
	for i, a := range assets {
		byID[a.ID] = i
	}

	now := as.now()

	for i, a := range incoming {
		if a.Reference == "" || !a.Type.Valid() {
			return 0, fmt.Errorf("%w: row %d incomplete", tabular.ErrMalformed, i+1)
		}

		// A row reusing a stored id is an update: the permission check runs
		// against the stored owner, never the ministry the row claims.
		owner := a.MinistryID

		if j, ok := byID[a.ID]; ok && a.ID != "" {
			owner = assets[j].MinistryID
		}

		if !policy.HasPermission(actor, policy.ActionEdit, owner) {
			return 0, ErrForbidden
		}

		if a.ID == "" {
			incoming[i].ID = "asset-" + uuid.NewString()
		}

		incoming[i].CurrentValue = CurrentValue(incoming[i], now)
	}

	for _, a := range incoming {
		if j, ok := byID[a.ID]; ok {
			assets[j] = a
		} else {
			byID[a.ID] = len(assets)
			assets = append(assets, a)
		}
	}

	if err := as.save(ctx, assets); err != nil {
		return 0, err
	}

	return len(incoming), nil
}
