package models

import (
	"errors"
	"fmt"
	"strconv"
)

type AssetType string

const (
	AssetRealEstate AssetType = "RealEstate"
	AssetVehicle    AssetType = "Vehicle"
	AssetIT         AssetType = "IT"
	AssetFurniture  AssetType = "Furniture"
	AssetEquipment  AssetType = "Equipment"
)

func AssetTypes() []AssetType {
	return []AssetType{AssetRealEstate, AssetVehicle, AssetIT, AssetFurniture, AssetEquipment}
}

func (at AssetType) Valid() bool {
	switch at {
	case AssetRealEstate, AssetVehicle, AssetIT, AssetFurniture, AssetEquipment:
		return true
	}

	return false
}

type AssetCondition string

const (
	ConditionNew         AssetCondition = "New"
	ConditionGood        AssetCondition = "Good"
	ConditionNeedsRepair AssetCondition = "NeedsRepair"
	ConditionDamaged     AssetCondition = "Damaged"
	ConditionObsolete    AssetCondition = "Obsolete"
)

func (ac AssetCondition) Valid() bool {
	switch ac {
	case ConditionNew, ConditionGood, ConditionNeedsRepair, ConditionDamaged, ConditionObsolete:
		return true
	}

	return false
}

// Wilaya is one of the fifteen administrative regions.
type Wilaya string

func Wilayas() []Wilaya {
	return []Wilaya{
		"Adrar", "Assaba", "Brakna", "Dakhlet Nouadhibou", "Gorgol",
		"Guidimaka", "Hodh Ech Chargui", "Hodh El Gharbi", "Inchiri",
		"Nouakchott Nord", "Nouakchott Ouest", "Nouakchott Sud",
		"Tagant", "Tiris Zemmour", "Trarza",
	}
}

func (w Wilaya) Valid() bool {
	for _, known := range Wilayas() {
		if w == known {
			return true
		}
	}

	return false
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type DocumentKind string

const (
	DocPhoto   DocumentKind = "Photo"
	DocInvoice DocumentKind = "Invoice"
	DocLegal   DocumentKind = "Legal"
	DocOther   DocumentKind = "Other"
)

// AssetDocument is an uploaded evidence file; Data holds the
// base64-encoded payload produced by the upload collaborator.
type AssetDocument struct {
	ID   string       `json:"document_id"` //nolint:tagliatelle
	Name string       `json:"name"`
	Kind DocumentKind `json:"kind"`
	Data string       `json:"data"`
}

type AssetDeclaration struct {
	ID              string           `json:"asset_id"` //nolint:tagliatelle
	Reference       string           `json:"reference"`
	MinistryID      string           `json:"ministry_id"`          //nolint:tagliatelle
	SubEntity       string           `json:"sub_entity,omitempty"` //nolint:tagliatelle
	Type            AssetType        `json:"type"`
	Condition       AssetCondition   `json:"condition"`
	Description     string           `json:"description"`
	AcquisitionDate string           `json:"acquisition_date"` //nolint:tagliatelle
	Value           float64          `json:"value"`
	CurrentValue    float64          `json:"current_value"` //nolint:tagliatelle
	Wilaya          Wilaya           `json:"wilaya"`
	Coordinates     *Coordinates     `json:"coordinates,omitempty"`
	LocationDetails string           `json:"location_details"` //nolint:tagliatelle
	Documents       []AssetDocument  `json:"documents,omitempty"`
	Specifics       SpecificDetails  `json:"specific_details"` //nolint:tagliatelle
}

var ErrSpecificsMismatch = errors.New("specific details do not match asset type")

type FuelType string

const (
	FuelDiesel FuelType = "Diesel"
	FuelPetrol FuelType = "Petrol"
	FuelHybrid FuelType = "Hybrid"
)

type Transmission string

const (
	TransmissionManual Transmission = "Manual"
	TransmissionAuto   Transmission = "Auto"
)

type DeviceType string

const (
	DeviceLaptop  DeviceType = "Laptop"
	DeviceDesktop DeviceType = "Desktop"
	DeviceServer  DeviceType = "Server"
	DevicePrinter DeviceType = "Printer"
)

type VehicleDetails struct {
	Brand         string       `json:"brand,omitempty"`
	Model         string       `json:"model,omitempty"`
	PlateNumber   string       `json:"plate_number,omitempty"`   //nolint:tagliatelle
	ChassisNumber string       `json:"chassis_number,omitempty"` //nolint:tagliatelle
	Mileage       float64      `json:"mileage,omitempty"`
	Fuel          FuelType     `json:"fuel,omitempty"`
	Transmission  Transmission `json:"transmission,omitempty"`
	PowerCV       string       `json:"power_cv,omitempty"` //nolint:tagliatelle
}

type RealEstateDetails struct {
	SurfaceArea      float64 `json:"surface_area,omitempty"`  //nolint:tagliatelle
	LandTitle        string  `json:"land_title,omitempty"`    //nolint:tagliatelle
	CadastralRef     string  `json:"cadastral_ref,omitempty"` //nolint:tagliatelle
	Usage            string  `json:"usage,omitempty"`
	Floors           string  `json:"floors,omitempty"`
	ConstructionYear string  `json:"construction_year,omitempty"` //nolint:tagliatelle
}

type ITDetails struct {
	DeviceType   DeviceType `json:"device_type,omitempty"` //nolint:tagliatelle
	Brand        string     `json:"brand,omitempty"`
	Model        string     `json:"model,omitempty"`
	Specs        string     `json:"specs,omitempty"`
	RAM          string     `json:"ram,omitempty"`
	Storage      string     `json:"storage,omitempty"`
	SerialNumber string     `json:"serial_number,omitempty"` //nolint:tagliatelle
	OS           string     `json:"os,omitempty"`
}

type FurnitureDetails struct {
	Category   string  `json:"category,omitempty"`
	Material   string  `json:"material,omitempty"`
	Color      string  `json:"color,omitempty"`
	Dimensions string  `json:"dimensions,omitempty"`
	Quantity   float64 `json:"quantity,omitempty"`
}

type EquipmentDetails struct {
	Manufacturer    string `json:"manufacturer,omitempty"`
	Model           string `json:"model,omitempty"`
	ModelNumber     string `json:"model_number,omitempty"`     //nolint:tagliatelle
	PowerSupply     string `json:"power_supply,omitempty"`     //nolint:tagliatelle
	MaintenanceFreq string `json:"maintenance_freq,omitempty"` //nolint:tagliatelle
	Warranty        string `json:"warranty,omitempty"`
}

// SpecificDetails is a tagged union: at most one variant may be populated,
// and it must match the declaration's Type. The original stored these as an
// open string map; the closed shape keeps stale cross-type fields out of
// saved records.
type SpecificDetails struct {
	Vehicle    *VehicleDetails    `json:"vehicle,omitempty"`
	RealEstate *RealEstateDetails `json:"real_estate,omitempty"` //nolint:tagliatelle
	IT         *ITDetails         `json:"it,omitempty"`
	Furniture  *FurnitureDetails  `json:"furniture,omitempty"`
	Equipment  *EquipmentDetails  `json:"equipment,omitempty"`
}

func (sd SpecificDetails) populated() []AssetType {
	var kinds []AssetType

	if sd.Vehicle != nil {
		kinds = append(kinds, AssetVehicle)
	}

	if sd.RealEstate != nil {
		kinds = append(kinds, AssetRealEstate)
	}

	if sd.IT != nil {
		kinds = append(kinds, AssetIT)
	}

	if sd.Furniture != nil {
		kinds = append(kinds, AssetFurniture)
	}

	if sd.Equipment != nil {
		kinds = append(kinds, AssetEquipment)
	}

	return kinds
}

// Validate checks that only the variant belonging to at is populated and
// that its closed-set fields hold known values. An entirely empty union is
// always valid: every specific field is optional.
func (sd SpecificDetails) Validate(at AssetType) error {
	kinds := sd.populated()
	if len(kinds) == 0 {
		return nil
	}

	if len(kinds) > 1 || kinds[0] != at {
		return fmt.Errorf("%w: have %v, want %s", ErrSpecificsMismatch, kinds, at)
	}

	if v := sd.Vehicle; v != nil {
		if v.Fuel != "" && v.Fuel != FuelDiesel && v.Fuel != FuelPetrol && v.Fuel != FuelHybrid {
			return fmt.Errorf("%w: unknown fuel %q", ErrSpecificsMismatch, v.Fuel)
		}

		if v.Transmission != "" && v.Transmission != TransmissionManual && v.Transmission != TransmissionAuto {
			return fmt.Errorf("%w: unknown transmission %q", ErrSpecificsMismatch, v.Transmission)
		}
	}

	if it := sd.IT; it != nil && it.DeviceType != "" {
		switch it.DeviceType {
		case DeviceLaptop, DeviceDesktop, DeviceServer, DevicePrinter:
		default:
			return fmt.Errorf("%w: unknown device type %q", ErrSpecificsMismatch, it.DeviceType)
		}
	}

	return nil
}

// Empty reports whether no variant is populated.
func (sd SpecificDetails) Empty() bool {
	return len(sd.populated()) == 0
}

// Flatten renders the populated variant as the flat key set used by the
// tabular export and the sheet sync payload. Zero-valued fields are omitted.
func (sd SpecificDetails) Flatten() map[string]string {
	out := map[string]string{}

	put := func(key, val string) {
		if val != "" {
			out[key] = val
		}
	}

	putNum := func(key string, val float64) {
		if val != 0 {
			out[key] = strconv.FormatFloat(val, 'f', -1, 64)
		}
	}

	if v := sd.Vehicle; v != nil {
		put("brand", v.Brand)
		put("model", v.Model)
		put("plateNumber", v.PlateNumber)
		put("chassisNumber", v.ChassisNumber)
		putNum("mileage", v.Mileage)
		put("fuel", string(v.Fuel))
		put("transmission", string(v.Transmission))
		put("powerCV", v.PowerCV)
	}

	if re := sd.RealEstate; re != nil {
		putNum("surfaceArea", re.SurfaceArea)
		put("landTitle", re.LandTitle)
		put("cadastralRef", re.CadastralRef)
		put("usage", re.Usage)
		put("floors", re.Floors)
		put("constructionYear", re.ConstructionYear)
	}

	if it := sd.IT; it != nil {
		put("deviceType", string(it.DeviceType))
		put("brand", it.Brand)
		put("model", it.Model)
		put("specs", it.Specs)
		put("ram", it.RAM)
		put("storage", it.Storage)
		put("serialNumber", it.SerialNumber)
		put("os", it.OS)
	}

	if f := sd.Furniture; f != nil {
		put("category", f.Category)
		put("material", f.Material)
		put("color", f.Color)
		put("dimensions", f.Dimensions)
		putNum("quantity", f.Quantity)
	}

	if e := sd.Equipment; e != nil {
		put("manufacturer", e.Manufacturer)
		put("model", e.Model)
		put("modelNumber", e.ModelNumber)
		put("powerSupply", e.PowerSupply)
		put("maintenanceFreq", e.MaintenanceFreq)
		put("warranty", e.Warranty)
	}

	return out
}
