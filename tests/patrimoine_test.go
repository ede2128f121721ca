package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/api/server"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/integrations/sheetsync"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/integrations/textgen"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore/memory"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/assetservice"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/contactservice"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/directoryservice"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/settingsservice"
	"github.com/dgpe-mr/patrimoine_control/internal/pkg/config"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"

	"github.com/stretchr/testify/suite"
)

const (
	superUsername = "superadmin"
	superPassword = "superadmin123"

	deputyUsername = "adjoint"
	deputyPassword = "adjoint123"
)

type PatrimoineSuite struct {
	suite.Suite
	ts *httptest.Server
}

func (ps *PatrimoineSuite) SetupSuite() {
	lg := logger.Nop()
	store := memory.New()

	directory := directoryservice.New(store, lg)
	contacts := contactservice.New(store, lg)
	settings := settingsservice.New(store, "", lg)
	sheets := sheetsync.New(config.Sync{SheetURL: "", Timeout: time.Second})
	assets := assetservice.New(store, contacts, settings, sheets, lg)
	assistant := textgen.New(config.TextGen{URL: "", APIKey: "", Timeout: time.Second})

	srv := server.New(config.Server{
		Addr:         ":0",
		ReadTimeout:  time.Second * 5,
		WriteTimeout: time.Second * 5,
		IdleTimeout:  time.Second * 5,
	}, directory, assets, contacts, settings, assistant, store, lg)

	ps.ts = httptest.NewServer(srv.Handler())
}

func (ps *PatrimoineSuite) TearDownSuite() {
	ps.ts.Close()
}

func (ps *PatrimoineSuite) do(method, path, username, password string, body interface{}) *http.Response {
	ps.T().Helper()

	var rd io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		blob, err := json.Marshal(b)
		ps.Require().NoError(err)
		rd = bytes.NewReader(blob)
	}

	req, err := http.NewRequest(method, ps.ts.URL+path, rd) //nolint:noctx
	ps.Require().NoError(err)

	if username != "" {
		req.SetBasicAuth(username, password)
	}

	resp, err := ps.ts.Client().Do(req)
	ps.Require().NoError(err)

	return resp
}

func (ps *PatrimoineSuite) decode(resp *http.Response, v interface{}) {
	ps.T().Helper()

	defer resp.Body.Close()
	ps.Require().NoError(json.NewDecoder(resp.Body).Decode(v))
}

func (ps *PatrimoineSuite) TestLoginSeededAccounts() {
	resp := ps.do(http.MethodPost, "/v1/auth/login", "", "",
		map[string]string{"username": superUsername, "password": superPassword})
	ps.Require().Equal(http.StatusOK, resp.StatusCode)

	var view struct {
		Role models.Role `json:"role"`
	}

	ps.decode(resp, &view)
	ps.Require().Equal(models.RoleSuperAdmin, view.Role)

	resp = ps.do(http.MethodPost, "/v1/auth/login", "", "",
		map[string]string{"username": superUsername, "password": "wrong"})
	ps.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (ps *PatrimoineSuite) TestAuthRequired() {
	resp := ps.do(http.MethodGet, "/v1/assets", "", "", nil)
	ps.Require().Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (ps *PatrimoineSuite) TestRegisterAndAssetLifecycle() {
	resp := ps.do(http.MethodPost, "/v1/auth/register", "", "", map[string]string{
		"full_name":   "Admin Santé",
		"username":    "sante_admin",
		"password":    "pw12345",
		"ministry_id": "m-sante",
	})
	ps.Require().Equal(http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	decl := map[string]interface{}{
		"declaration": map[string]interface{}{
			"reference":        "SANTE-001",
			"ministry_id":      "m-sante",
			"type":             "Vehicle",
			"condition":        "Good",
			"acquisition_date": "2024-01-02",
			"value":            600000,
			"wilaya":           "Trarza",
			"location_details": "Garage ministériel",
			"specific_details": map[string]interface{}{
				"vehicle": map[string]interface{}{"brand": "Toyota", "plate_number": "1234 AB 00"},
			},
		},
	}

	resp = ps.do(http.MethodPost, "/v1/assets", "sante_admin", "pw12345", decl)
	ps.Require().Equal(http.StatusCreated, resp.StatusCode)

	var saved models.AssetDeclaration

	ps.decode(resp, &saved)
	ps.Require().NotEmpty(saved.ID)
	ps.Require().NotZero(saved.CurrentValue)

	// The ministry admin sees only its own ministry's records.
	resp = ps.do(http.MethodGet, "/v1/assets?q=sante-001", "sante_admin", "pw12345", nil)
	ps.Require().Equal(http.StatusOK, resp.StatusCode)

	var listed []models.AssetDeclaration

	ps.decode(resp, &listed)
	ps.Require().Len(listed, 1)

	// Ministry admins may delete within their ministry.
	resp = ps.do(http.MethodDelete, "/v1/assets/"+saved.ID, "sante_admin", "pw12345", nil)
	ps.Require().Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func (ps *PatrimoineSuite) TestAssetValidationFlags() {
	decl := map[string]interface{}{
		"declaration": map[string]interface{}{
			"reference": "",
			"type":      "Vehicle",
			"condition": "Good",
			"value":     0,
			"wilaya":    "Trarza",
		},
	}

	resp := ps.do(http.MethodPost, "/v1/assets", deputyUsername, deputyPassword, decl)
	ps.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Fields map[string]bool `json:"fields"`
	}

	ps.decode(resp, &body)
	ps.Require().True(body.Fields["reference"])
	ps.Require().True(body.Fields["value"])
	ps.Require().True(body.Fields["location_details"])
}

func (ps *PatrimoineSuite) TestUserManagementRestrictedToSuperAdmin() {
	resp := ps.do(http.MethodGet, "/v1/users", deputyUsername, deputyPassword, nil)
	ps.Require().Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = ps.do(http.MethodGet, "/v1/users", superUsername, superPassword, nil)
	ps.Require().Equal(http.StatusOK, resp.StatusCode)

	var users []struct {
		Username string `json:"username"`
	}

	ps.decode(resp, &users)
	ps.Require().GreaterOrEqual(len(users), 2)

	resp = ps.do(http.MethodDelete, "/v1/users/superadmin", superUsername, superPassword, nil)
	ps.Require().Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func (ps *PatrimoineSuite) TestAssistantRestrictedAndDegraded() {
	resp := ps.do(http.MethodPost, "/v1/assistant", deputyUsername, deputyPassword,
		map[string]string{"prompt": "Rédiger une note", "language": "fr"})
	ps.Require().Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// No collaborator configured: the fallback text comes back with 200.
	resp = ps.do(http.MethodPost, "/v1/assistant", superUsername, superPassword,
		map[string]string{"prompt": "Rédiger une note", "language": "fr"})
	ps.Require().Equal(http.StatusOK, resp.StatusCode)

	var body struct {
		Text string `json:"text"`
	}

	ps.decode(resp, &body)
	ps.Require().Equal("Service indisponible.", body.Text)
}

func (ps *PatrimoineSuite) TestExportCSV() {
	resp := ps.do(http.MethodGet, "/v1/assets/export?format=csv", superUsername, superPassword, nil)
	ps.Require().Equal(http.StatusOK, resp.StatusCode)
	ps.Require().Contains(resp.Header.Get("Content-Type"), "text/csv")
	ps.Require().Contains(resp.Header.Get("Content-Disposition"), "patrimoine_")

	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	ps.Require().NoError(err)
	ps.Require().True(strings.HasPrefix(string(data), "ID,Reference,MinistryID"))
}

func (ps *PatrimoineSuite) TestBackupRestrictedToSettingsScope() {
	resp := ps.do(http.MethodGet, "/v1/backup", deputyUsername, deputyPassword, nil)
	ps.Require().Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = ps.do(http.MethodGet, "/v1/backup", superUsername, superPassword, nil)
	ps.Require().Equal(http.StatusOK, resp.StatusCode)

	var env struct {
		Version string `json:"version"`
	}

	ps.decode(resp, &env)
	ps.Require().Equal("1.0", env.Version)

	resp = ps.do(http.MethodPost, "/v1/restore", superUsername, superPassword, "not json")
	ps.Require().Equal(http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (ps *PatrimoineSuite) TestSettingsTexts() {
	resp := ps.do(http.MethodPut, "/v1/settings/texts/app_title", superUsername, superPassword,
		map[string]string{"fr": "Titre", "ar": "عنوان"})
	ps.Require().Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ps.do(http.MethodGet, "/v1/settings/texts", deputyUsername, deputyPassword, nil)
	ps.Require().Equal(http.StatusOK, resp.StatusCode)

	var texts map[string]models.BilingualText

	ps.decode(resp, &texts)
	ps.Require().Equal("Titre", texts["app_title"].FR)

	resp = ps.do(http.MethodPut, "/v1/settings/texts/unknown_key", superUsername, superPassword,
		map[string]string{"fr": "x", "ar": "y"})
	ps.Require().Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = ps.do(http.MethodPost, "/v1/settings/texts/reset", superUsername, superPassword, nil)
	ps.Require().Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func (ps *PatrimoineSuite) TestContactsAndGroups() {
	contact := map[string]interface{}{
		"name": map[string]string{"fr": fmt.Sprintf("Ministère E2E %d", time.Now().UnixNano()), "ar": ""},
	}

	resp := ps.do(http.MethodPost, "/v1/contacts", superUsername, superPassword, contact)
	ps.Require().Equal(http.StatusCreated, resp.StatusCode)

	var saved models.MinistryContact

	ps.decode(resp, &saved)
	ps.Require().NotEmpty(saved.ID)

	group := map[string]interface{}{
		"name":        "Commission E2E",
		"contact_ids": []string{saved.ID, saved.ID},
	}

	resp = ps.do(http.MethodPost, "/v1/groups", superUsername, superPassword, group)
	ps.Require().Equal(http.StatusCreated, resp.StatusCode)

	var g models.WorkGroup

	ps.decode(resp, &g)
	ps.Require().Equal([]string{saved.ID}, g.ContactIDs)

	resp = ps.do(http.MethodGet, "/v1/contacts/export", superUsername, superPassword, nil)
	ps.Require().Equal(http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	ps.Require().NoError(err)
	resp.Body.Close()
	ps.Require().True(strings.HasPrefix(string(body), "ID,MinistryFR,MinistryAR"))

	resp = ps.do(http.MethodDelete, "/v1/contacts/"+saved.ID, superUsername, superPassword, nil)
	ps.Require().Equal(http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestPatrimoineSuite(t *testing.T) {
	suite.Run(t, new(PatrimoineSuite))
}
