package contactservice

import (
	"context"
	"math"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
)

const (
	overdueAfterDays = 180
	pendingAfterDays = 90

	dateLayout = "2006-01-02"
)

// deriveCompliance grades a ministry by the age of its newest declaration.
// No declarations at all means overdue. The age is taken as an absolute
// difference so a (bad) future-dated submission does not mark the ministry
// compliant forever.
func deriveCompliance(assets []models.AssetDeclaration, ministryID string, now time.Time) (models.ComplianceStatus, string) {
	var latest time.Time

	found := false

	for _, a := range assets {
		if a.MinistryID != ministryID {
			continue
		}

		t, err := time.Parse(dateLayout, a.AcquisitionDate)
		if err != nil {
			continue
		}

		if !found || t.After(latest) {
			latest = t
			found = true
		}
	}

	if !found {
		return models.ComplianceOverdue, ""
	}

	ageDays := math.Abs(now.Sub(latest).Hours() / 24) //nolint:gomnd

	switch {
	case ageDays > overdueAfterDays:
		return models.ComplianceOverdue, latest.Format(dateLayout)
	case ageDays > pendingAfterDays:
		return models.CompliancePending, latest.Format(dateLayout)
	default:
		return models.ComplianceCompliant, latest.Format(dateLayout)
	}
}

// ComplianceFor grades a single ministry against the current asset snapshot.
func (cs *ContactService) ComplianceFor(ctx context.Context, ministryID string) (models.ComplianceStatus, error) {
	assets, err := cs.loadAssets(ctx)
	if err != nil {
		return "", err
	}

	status, _ := deriveCompliance(assets, ministryID, cs.now())

	return status, nil
}
