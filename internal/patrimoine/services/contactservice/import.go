package contactservice

import (
	"context"
	"fmt"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/codec/tabular"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/google/uuid"
)

// ImportCSV merges directory rows from an uploaded CSV file. Rows with an
// existing id replace the stored entry; rows without one are created.
// Imported entries always start pending, whatever the file claims: status is
// derived, not declared. Header aliases from older export formats are
// accepted for the name columns.
func (cs *ContactService) ImportCSV(ctx context.Context, data []byte) (int, error) {
	rows, err := tabular.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("parse csv error: %w", err)
	}

	contacts, err := cs.loadContacts(ctx)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]int, len(contacts))
	for i, c := range contacts {
		byID[c.ID] = i
	}

	imported := 0

	for _, row := range rows {
		name := models.BilingualText{
			FR: trimmed(row, "MinistryFR", "NameFR", "Nom"),
			AR: trimmed(row, "MinistryAR", "NameAR"),
		}

		if name.Empty() {
			continue
		}

		c := models.MinistryContact{ //nolint:exhaustruct
			ID:               trimmed(row, "ID"),
			Name:             name,
			Representative:   trimmed(row, "Representative"),
			Role:             models.BilingualText{FR: trimmed(row, "RoleFR"), AR: trimmed(row, "RoleAR")},
			Phone:            trimmed(row, "Phone"),
			Email:            trimmed(row, "Email"),
			ComplianceStatus: models.CompliancePending,
		}

		if c.ID == "" {
			c.ID = "contact-" + uuid.NewString()
		}

		if i, ok := byID[c.ID]; ok {
			contacts[i] = c
		} else {
			byID[c.ID] = len(contacts)
			contacts = append(contacts, c)
		}

		imported++
	}

	if imported == 0 {
		return 0, nil
	}

	if err := cs.saveContacts(ctx, contacts); err != nil {
		return 0, err
	}

	return imported, nil
}
