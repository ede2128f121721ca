package tabular

import (
	"bytes"
	"fmt"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/xuri/excelize/v2"
)

const assetSheet = "Biens"

// MarshalAssetsXLSX renders the same asset column set as a workbook, for the
// "Excel" side of the export dialog.
func MarshalAssetsXLSX(assets []models.AssetDeclaration) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(assetSheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet error: %w", err)
	}

	f.SetActiveSheet(idx)

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet error: %w", err)
	}

	headers := make([]interface{}, len(AssetHeaders))
	for i, h := range AssetHeaders {
		headers[i] = h
	}

	if err := f.SetSheetRow(assetSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("set header row error: %w", err)
	}

	for i, a := range assets {
		var lat, lng string
		if a.Coordinates != nil {
			lat = num(a.Coordinates.Lat)
			lng = num(a.Coordinates.Lng)
		}

		specs := a.Specifics.Flatten()

		row := []interface{}{
			a.ID, a.Reference, a.MinistryID, string(a.Type), string(a.Condition),
			a.Value, a.AcquisitionDate, string(a.Wilaya), a.LocationDetails, lat, lng, a.Description,
			specs["brand"], specs["model"], specs["plateNumber"], specs["surfaceArea"], specs["serialNumber"],
			specs["material"], specs["dimensions"], specs["manufacturer"], specs["warranty"],
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2) //nolint:gomnd
		if err != nil {
			return nil, fmt.Errorf("cell name error: %w", err)
		}

		if err := f.SetSheetRow(assetSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("set row error: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook error: %w", err)
	}

	return buf.Bytes(), nil
}
