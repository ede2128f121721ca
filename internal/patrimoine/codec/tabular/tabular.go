// Package tabular implements the comma-separated wire format used to move
// asset and contact records in and out of the system. Text fields are always
// quoted with internal quotes doubled; ids and numerics stay bare. The format
// predates this service, so it is reproduced byte for byte rather than built
// on encoding/csv, whose writer quotes conditionally and whose reader
// enforces uniform field counts.
package tabular

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
)

var ErrMalformed = errors.New("malformed tabular data")

// AssetHeaders is the fixed asset column order.
var AssetHeaders = []string{
	"ID", "Reference", "MinistryID", "Type", "Condition",
	"Value", "AcquisitionDate", "Wilaya", "Location", "Lat", "Lng", "Description",
	"Spec_Brand", "Spec_Model", "Spec_Plate", "Spec_Surface", "Spec_Serial",
	"Spec_Material", "Spec_Dimensions", "Spec_Manufacturer", "Spec_Warranty",
}

// ContactHeaders is the fixed contact column order.
var ContactHeaders = []string{
	"ID", "MinistryFR", "MinistryAR", "Representative", "Phone", "Email", "RoleFR", "Status",
}

func quote(val string) string {
	return `"` + strings.ReplaceAll(val, `"`, `""`) + `"`
}

func num(val float64) string {
	if val == 0 {
		return ""
	}

	return strconv.FormatFloat(val, 'f', -1, 64)
}

// MarshalAssets renders assets in the fixed column order.
func MarshalAssets(assets []models.AssetDeclaration) []byte {
	var sb strings.Builder

	sb.WriteString(strings.Join(AssetHeaders, ","))

	for _, a := range assets {
		var lat, lng string
		if a.Coordinates != nil {
			lat = num(a.Coordinates.Lat)
			lng = num(a.Coordinates.Lng)
		}

		specs := a.Specifics.Flatten()

		row := []string{
			a.ID,
			quote(a.Reference),
			a.MinistryID,
			string(a.Type),
			string(a.Condition),
			num(a.Value),
			a.AcquisitionDate,
			string(a.Wilaya),
			quote(a.LocationDetails),
			lat,
			lng,
			quote(a.Description),
			quote(specs["brand"]),
			quote(specs["model"]),
			quote(specs["plateNumber"]),
			quote(specs["surfaceArea"]),
			quote(specs["serialNumber"]),
			quote(specs["material"]),
			quote(specs["dimensions"]),
			quote(specs["manufacturer"]),
			quote(specs["warranty"]),
		}

		sb.WriteString("\n")
		sb.WriteString(strings.Join(row, ","))
	}

	return []byte(sb.String())
}

// MarshalContacts renders ministry contacts in the fixed column order.
// Status is the caller-derived compliance value.
func MarshalContacts(contacts []models.MinistryContact) []byte {
	var sb strings.Builder

	sb.WriteString(strings.Join(ContactHeaders, ","))

	for _, c := range contacts {
		row := []string{
			c.ID,
			quote(c.Name.FR),
			quote(c.Name.AR),
			quote(c.Representative),
			quote(c.Phone),
			quote(c.Email),
			quote(c.Role.FR),
			string(c.ComplianceStatus),
		}

		sb.WriteString("\n")
		sb.WriteString(strings.Join(row, ","))
	}

	return []byte(sb.String())
}

// Parse reads a comma-separated payload whose first row names the columns.
// Rows shorter than the header pad missing trailing values with the empty
// string; columns beyond the header are dropped. Any structural defect
// surfaces as ErrMalformed with no partial result.
func Parse(data []byte) ([]map[string]string, error) {
	var lines []string

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) == 0 {
		return nil, nil
	}

	headerFields, err := splitLine(lines[0])
	if err != nil {
		return nil, err
	}

	headers := make([]string, len(headerFields))
	for i, h := range headerFields {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]map[string]string, 0, len(lines)-1)

	for _, line := range lines[1:] {
		fields, err := splitLine(line)
		if err != nil {
			return nil, err
		}

		row := make(map[string]string, len(headers))

		for i, h := range headers {
			if i < len(fields) {
				row[h] = fields[i]
			} else {
				row[h] = ""
			}
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// splitLine tokenizes one row. A comma delimits fields only outside an open
// quoted span; a doubled quote inside a span is a literal quote character.
func splitLine(line string) ([]string, error) {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
		quoted   bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]

		switch {
		case inQuotes:
			if ch != '"' {
				field.WriteByte(ch)

				continue
			}

			if i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++

				continue
			}

			inQuotes = false
		case ch == '"':
			if field.Len() != 0 || quoted {
				return nil, ErrMalformed
			}

			inQuotes = true
			quoted = true
		case ch == ',':
			fields = append(fields, field.String())
			field.Reset()
			quoted = false
		default:
			if quoted {
				// Trailing garbage after a closing quote.
				return nil, ErrMalformed
			}

			field.WriteByte(ch)
		}
	}

	if inQuotes {
		return nil, ErrMalformed
	}

	fields = append(fields, field.String())

	return fields, nil
}

// UnmarshalAssets maps parsed rows back onto declarations using the export
// header names, case-sensitively. Unrecognized columns are ignored; numeric
// fields that fail to parse stay zero. Validation is the catalog's job.
func UnmarshalAssets(rows []map[string]string) []models.AssetDeclaration {
	assets := make([]models.AssetDeclaration, 0, len(rows))

	for _, row := range rows {
		a := models.AssetDeclaration{ //nolint:exhaustruct
			ID:              row["ID"],
			Reference:       row["Reference"],
			MinistryID:      row["MinistryID"],
			Type:            models.AssetType(row["Type"]),
			Condition:       models.AssetCondition(row["Condition"]),
			Value:           parseNum(row["Value"]),
			AcquisitionDate: row["AcquisitionDate"],
			Wilaya:          models.Wilaya(row["Wilaya"]),
			LocationDetails: row["Location"],
			Description:     row["Description"],
		}

		lat, lng := parseNum(row["Lat"]), parseNum(row["Lng"])
		if lat != 0 || lng != 0 {
			a.Coordinates = &models.Coordinates{Lat: lat, Lng: lng}
		}

		a.Specifics = specificsFromRow(a.Type, row)

		assets = append(assets, a)
	}

	return assets
}

func specificsFromRow(at models.AssetType, row map[string]string) models.SpecificDetails {
	var sd models.SpecificDetails

	switch at {
	case models.AssetVehicle:
		v := models.VehicleDetails{ //nolint:exhaustruct
			Brand:       row["Spec_Brand"],
			Model:       row["Spec_Model"],
			PlateNumber: row["Spec_Plate"],
		}
		if v != (models.VehicleDetails{}) { //nolint:exhaustruct
			sd.Vehicle = &v
		}
	case models.AssetRealEstate:
		re := models.RealEstateDetails{ //nolint:exhaustruct
			SurfaceArea: parseNum(row["Spec_Surface"]),
		}
		if re != (models.RealEstateDetails{}) { //nolint:exhaustruct
			sd.RealEstate = &re
		}
	case models.AssetIT:
		it := models.ITDetails{ //nolint:exhaustruct
			Brand:        row["Spec_Brand"],
			Model:        row["Spec_Model"],
			SerialNumber: row["Spec_Serial"],
		}
		if it != (models.ITDetails{}) { //nolint:exhaustruct
			sd.IT = &it
		}
	case models.AssetFurniture:
		f := models.FurnitureDetails{ //nolint:exhaustruct
			Material:   row["Spec_Material"],
			Dimensions: row["Spec_Dimensions"],
		}
		if f != (models.FurnitureDetails{}) { //nolint:exhaustruct
			sd.Furniture = &f
		}
	case models.AssetEquipment:
		e := models.EquipmentDetails{ //nolint:exhaustruct
			Manufacturer: row["Spec_Manufacturer"],
			Model:        row["Spec_Model"],
			Warranty:     row["Spec_Warranty"],
		}
		if e != (models.EquipmentDetails{}) { //nolint:exhaustruct
			sd.Equipment = &e
		}
	}

	return sd
}

func parseNum(val string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0
	}

	return f
}

// ExportFilename stamps the prefix with the ISO date, matching the names the
// original export dialog produced.
func ExportFilename(prefix, ext string, now time.Time) string {
	return prefix + "_" + now.UTC().Format("2006-01-02") + "." + ext
}
