// Package sheetsync pushes saved declarations to an operator-configured
// sheet endpoint. The call is answer-blind: the response is neither read nor
// validated, and failures must never reach the save flow.
package sheetsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/pkg/config"
)

type Client struct {
	httpc *http.Client
}

func New(cfg config.Sync) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = time.Second * 10 //nolint:gomnd
	}

	return &Client{
		httpc: &http.Client{Timeout: timeout}, //nolint:exhaustruct
	}
}

// Payload is the flattened asset+ministry row appended to the sheet.
type Payload struct {
	ID             string  `json:"id"`
	Reference      string  `json:"reference"`
	MinistryID     string  `json:"ministryId"`     //nolint:tagliatelle
	MinistryNameFR string  `json:"ministryNameFR"` //nolint:tagliatelle
	MinistryNameAR string  `json:"ministryNameAR"` //nolint:tagliatelle
	SubEntity      string  `json:"subEntity"`      //nolint:tagliatelle
	Type           string  `json:"type"`
	Condition      string  `json:"condition"`
	Value          float64 `json:"value"`
	AcquisitionDate string `json:"acquisitionDate"` //nolint:tagliatelle
	Wilaya          string `json:"wilaya"`
	LocationDetails string `json:"locationDetails"` //nolint:tagliatelle
	Lat             string `json:"lat"`
	Lng             string `json:"lng"`
	Description     string `json:"description"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	PlateNumber     string `json:"plateNumber"`  //nolint:tagliatelle
	SerialNumber    string `json:"serialNumber"` //nolint:tagliatelle
	SurfaceArea     string `json:"surfaceArea"`  //nolint:tagliatelle
	LandTitle       string `json:"landTitle"`    //nolint:tagliatelle
	Timestamp       string `json:"timestamp"`
}

// BuildPayload flattens a declaration and its ministry name into a sheet row.
func BuildPayload(a models.AssetDeclaration, ministryName models.BilingualText, now time.Time) Payload {
	specs := a.Specifics.Flatten()

	var lat, lng string
	if a.Coordinates != nil {
		lat = strconv.FormatFloat(a.Coordinates.Lat, 'f', -1, 64)
		lng = strconv.FormatFloat(a.Coordinates.Lng, 'f', -1, 64)
	}

	return Payload{
		ID:              a.ID,
		Reference:       a.Reference,
		MinistryID:      a.MinistryID,
		MinistryNameFR:  ministryName.FR,
		MinistryNameAR:  ministryName.AR,
		SubEntity:       a.SubEntity,
		Type:            string(a.Type),
		Condition:       string(a.Condition),
		Value:           a.Value,
		AcquisitionDate: a.AcquisitionDate,
		Wilaya:          string(a.Wilaya),
		LocationDetails: a.LocationDetails,
		Lat:             lat,
		Lng:             lng,
		Description:     a.Description,
		Brand:           specs["brand"],
		Model:           specs["model"],
		PlateNumber:     specs["plateNumber"],
		SerialNumber:    specs["serialNumber"],
		SurfaceArea:     specs["surfaceArea"],
		LandTitle:       specs["landTitle"],
		Timestamp:       now.UTC().Format(time.RFC3339),
	}
}

// Push POSTs the payload to url and drains the response without reading it.
// An empty url is a configured-off no-op.
func (c *Client) Push(ctx context.Context, url string, p Payload) error {
	if url == "" {
		return nil
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request error: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("post error: %w", err)
	}

	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}
