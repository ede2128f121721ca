package assetservice_test

import (
	"testing"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/assetservice"
	"github.com/stretchr/testify/require"
)

func TestCurrentValue(t *testing.T) {
	asOf := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		at       models.AssetType
		value    float64
		acquired string
		expected float64
	}{
		// 730 days -> exactly 2 depreciation years.
		{"vehicle two years at 20%", models.AssetVehicle, 600000, "2024-01-02", 360000},
		{"it two years at 20%", models.AssetIT, 600000, "2024-01-02", 360000},
		// 365 days -> one year at the default 5%.
		{"real estate one year at 5%", models.AssetRealEstate, 900000, "2025-01-01", 855000},
		{"furniture one year at 5%", models.AssetFurniture, 900000, "2025-01-01", 855000},
		// Fully depreciated assets clamp at zero instead of going negative.
		{"old it clamps to zero", models.AssetIT, 600000, "2015-01-01", 0},
		{"unparseable date keeps declared value", models.AssetVehicle, 500000, "not-a-date", 500000},
		{"empty date keeps declared value", models.AssetVehicle, 500000, "", 500000},
		{"future date keeps declared value", models.AssetVehicle, 500000, "2027-06-01", 500000},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			a := models.AssetDeclaration{ //nolint:exhaustruct
				Type:            tc.at,
				Value:           tc.value,
				AcquisitionDate: tc.acquired,
			}

			require.InDelta(t, tc.expected, assetservice.CurrentValue(a, asOf), 0.001)
		})
	}
}
