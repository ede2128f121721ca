package assetservice

import (
	"sort"
	"strings"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
)

// SaveRequest carries the declaration plus the manual ministry name a global
// administrator may supply instead of picking an existing directory entry.
type SaveRequest struct {
	Declaration        models.AssetDeclaration `json:"declaration"`
	ManualMinistryName models.BilingualText    `json:"manual_ministry_name"` //nolint:tagliatelle
}

// ValidationError lists the rejected fields. Each key maps to true; the map
// form mirrors the per-field flag set the declaration form renders.
type ValidationError struct {
	Fields map[string]bool
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return "invalid fields: " + strings.Join(keys, ", ")
}

// Steps of the declaration wizard. Step 3 (documents and specifics) has no
// required fields of its own.
const (
	StepIdentification = 1
	StepValuation      = 2
	StepDetails        = 3
)

// ValidateStep checks the fields belonging to one wizard step and returns a
// flag per rejected field.
func ValidateStep(a models.AssetDeclaration, actor models.User, manualName models.BilingualText, step int) map[string]bool {
	flags := map[string]bool{}

	switch step {
	case StepIdentification:
		if strings.TrimSpace(a.Reference) == "" {
			flags["reference"] = true
		}

		if strings.TrimSpace(a.AcquisitionDate) == "" {
			flags["acquisition_date"] = true
		}

		if !a.Type.Valid() {
			flags["type"] = true
		}

		if !a.Condition.Valid() {
			flags["condition"] = true
		}

		if actor.Role.IsGlobal() {
			if a.MinistryID == "" && manualName.Empty() {
				flags["ministry_id"] = true
			}
		} else if a.MinistryID == "" || a.MinistryID != actor.MinistryID {
			flags["ministry_id"] = true
		}
	case StepValuation:
		if a.Value <= 0 {
			flags["value"] = true
		}

		if !a.Wilaya.Valid() {
			flags["wilaya"] = true
		}

		if strings.TrimSpace(a.LocationDetails) == "" {
			flags["location_details"] = true
		}
	case StepDetails:
	}

	return flags
}

// Validate runs every wizard step against the full declaration.
func Validate(a models.AssetDeclaration, actor models.User, manualName models.BilingualText) map[string]bool {
	flags := map[string]bool{}

	for _, step := range []int{StepIdentification, StepValuation, StepDetails} {
		for field := range ValidateStep(a, actor, manualName, step) {
			flags[field] = true
		}
	}

	return flags
}

// narrowSpecifics drops every variant that does not belong to the asset
// type, mirroring the form resetting its detail section on a type switch.
func narrowSpecifics(sd models.SpecificDetails, at models.AssetType) models.SpecificDetails {
	out := models.SpecificDetails{} //nolint:exhaustruct

	switch at {
	case models.AssetVehicle:
		out.Vehicle = sd.Vehicle
	case models.AssetRealEstate:
		out.RealEstate = sd.RealEstate
	case models.AssetIT:
		out.IT = sd.IT
	case models.AssetFurniture:
		out.Furniture = sd.Furniture
	case models.AssetEquipment:
		out.Equipment = sd.Equipment
	}

	return out
}
