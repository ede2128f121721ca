package tabular_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/codec/tabular"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/stretchr/testify/require"
)

func TestMarshalAssetsAlwaysQuotesText(t *testing.T) {
	assets := []models.AssetDeclaration{
		{ //nolint:exhaustruct
			ID:              "a1",
			Reference:       "REF-1",
			MinistryID:      "m1",
			Type:            models.AssetVehicle,
			Condition:       models.ConditionGood,
			Value:           600000,
			AcquisitionDate: "2024-01-02",
			Wilaya:          "Trarza",
			LocationDetails: "Garage, central",
			Description:     `Berline "de service"`,
		},
	}

	out := string(tabular.MarshalAssets(assets))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(tabular.AssetHeaders, ","), lines[0])

	// Embedded comma survives inside the quoted span, embedded quotes double.
	require.Contains(t, lines[1], `"Garage, central"`)
	require.Contains(t, lines[1], `"Berline ""de service"""`)
	// Reference is text, so it is quoted even without special characters.
	require.Contains(t, lines[1], `"REF-1"`)
}

func TestParseRoundTrip(t *testing.T) {
	assets := []models.AssetDeclaration{
		{ //nolint:exhaustruct
			ID:              "a1",
			Reference:       "REF-1",
			MinistryID:      "m1",
			Type:            models.AssetVehicle,
			Condition:       models.ConditionGood,
			Value:           600000,
			AcquisitionDate: "2024-01-02",
			Wilaya:          "Trarza",
			LocationDetails: "Garage, central",
			Description:     `Berline "de service"`,
			Coordinates:     &models.Coordinates{Lat: 18.08, Lng: -15.97},
			Specifics: models.SpecificDetails{ //nolint:exhaustruct
				Vehicle: &models.VehicleDetails{Brand: "Toyota", Model: "Hilux", PlateNumber: "1234 AB 00"}, //nolint:exhaustruct
			},
		},
	}

	rows, err := tabular.Parse(tabular.MarshalAssets(assets))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := tabular.UnmarshalAssets(rows)
	require.Len(t, got, 1)
	require.Equal(t, "a1", got[0].ID)
	require.Equal(t, "Garage, central", got[0].LocationDetails)
	require.Equal(t, `Berline "de service"`, got[0].Description)
	require.Equal(t, float64(600000), got[0].Value)
	require.NotNil(t, got[0].Coordinates)
	require.InDelta(t, 18.08, got[0].Coordinates.Lat, 0.0001)
	require.NotNil(t, got[0].Specifics.Vehicle)
	require.Equal(t, "1234 AB 00", got[0].Specifics.Vehicle.PlateNumber)
}

func TestParseShortAndLongRows(t *testing.T) {
	data := "A,B,C\n1,2\nx,y,z,extra\n"

	rows, err := tabular.Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Short rows pad missing trailing columns with the empty string.
	require.Equal(t, map[string]string{"A": "1", "B": "2", "C": ""}, rows[0])
	// Columns beyond the header are dropped.
	require.Equal(t, map[string]string{"A": "x", "B": "y", "C": "z"}, rows[1])
}

func TestParseSkipsBlankLinesAndCR(t *testing.T) {
	data := "A,B\r\n\r\n1,2\r\n   \n3,4"

	rows, err := tabular.Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "1", rows[0]["A"])
	require.Equal(t, "4", rows[1]["B"])
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unterminated quote", "A,B\n\"open,2"},
		{"quote mid field", "A,B\nab\"c,2"},
		{"garbage after closing quote", "A,B\n\"ok\"junk,2"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := tabular.Parse([]byte(tc.data))
			require.ErrorIs(t, err, tabular.ErrMalformed)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	rows, err := tabular.Parse(nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestMarshalContacts(t *testing.T) {
	contacts := []models.MinistryContact{
		{ //nolint:exhaustruct
			ID:               "c1",
			Name:             models.BilingualText{FR: "Ministère de l'Économie", AR: "وزارة الاقتصاد"},
			Representative:   "A. Diallo",
			Phone:            "+222 45 25 25 25",
			Email:            "contact@economie.gov.mr",
			Role:             models.BilingualText{FR: "Point focal", AR: "نقطة اتصال"},
			ComplianceStatus: models.ComplianceCompliant,
		},
	}

	out := string(tabular.MarshalContacts(contacts))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	require.Equal(t, strings.Join(tabular.ContactHeaders, ","), lines[0])
	require.Contains(t, lines[1], `"Ministère de l'Économie"`)
	require.Contains(t, lines[1], "compliant")
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.Equal(t, "patrimoine_2026-08-30.csv", tabular.ExportFilename("patrimoine", "csv", now))
	require.Equal(t, "annuaire_2026-08-30.xlsx", tabular.ExportFilename("annuaire", "xlsx", now))
}
