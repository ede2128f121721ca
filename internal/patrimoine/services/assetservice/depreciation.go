package assetservice

import (
	"math"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
)

const (
	rateFast    = 0.20
	rateDefault = 0.05

	hoursPerDay = 24
	daysPerYear = 365
	dateLayout  = "2006-01-02"
)

// CurrentValue applies straight-line depreciation to the declared value as
// of asOf. Vehicles and IT equipment lose 20% a year, everything else 5%,
// with fractional years counted day by day. The result never goes below
// zero. An unparseable or future acquisition date yields the declared value
// unchanged.
func CurrentValue(a models.AssetDeclaration, asOf time.Time) float64 {
	acquired, err := time.Parse(dateLayout, a.AcquisitionDate)
	if err != nil {
		return a.Value
	}

	years := asOf.Sub(acquired).Hours() / hoursPerDay / daysPerYear
	if years <= 0 {
		return a.Value
	}

	rate := rateDefault
	if a.Type == models.AssetVehicle || a.Type == models.AssetIT {
		rate = rateFast
	}

	current := math.Round(a.Value * (1 - rate*years))

	return math.Max(0, current)
}
