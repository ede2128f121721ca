package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/codec/tabular"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/contactservice"
	"github.com/go-chi/chi/v5"
)

// requireGlobalEdit gates directory mutations: ministry records and work
// groups are global entities, so an empty owner scope only passes for the
// globally-scoped roles.
func requireGlobalEdit(w http.ResponseWriter, r *http.Request) bool {
	if !policy.HasPermission(caller(r), policy.ActionEdit, "") {
		handleError(w, errForbidden, http.StatusForbidden)

		return false
	}

	return true
}

// Annuaire des ministères avec statut de conformité dérivé
// (GET /contacts).
func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	contacts, err := s.contacts.ListContacts(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("list contacts error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(contacts); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Création ou mise à jour d'une fiche ministère
// (POST /contacts).
func (s *Server) saveContact(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireGlobalEdit(w, r) {
		return
	}

	var c models.MinistryContact

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&c); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	saved, err := s.contacts.SaveContact(r.Context(), c)
	if err != nil {
		handleError(w, fmt.Errorf("save contact error: %w", err), http.StatusInternalServerError)

		return
	}

	bts, err := json.Marshal(saved)
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write(bts) //nolint:errcheck
}

// Suppression d'un ministère et de toutes ses déclarations
// (DELETE /contacts/{id}).
func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireGlobalEdit(w, r) {
		return
	}

	err := s.contacts.DeleteMinistry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, contactservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("delete contact error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export CSV de l'annuaire
// (GET /contacts/export).
func (s *Server) exportContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.contacts.ListContacts(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("export contacts error: %w", err), http.StatusInternalServerError)

		return
	}

	filename := tabular.ExportFilename("annuaire", "csv", time.Now())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(tabular.MarshalContacts(contacts)) //nolint:errcheck
}

// Import CSV de l'annuaire
// (POST /contacts/import).
func (s *Server) importContacts(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireGlobalEdit(w, r) {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		handleError(w, fmt.Errorf("read body error: %w", err), http.StatusBadRequest)

		return
	}

	n, err := s.contacts.ImportCSV(r.Context(), data)
	if err != nil {
		if errors.Is(err, tabular.ErrMalformed) {
			handleError(w, err, http.StatusBadRequest)

			return
		}

		handleError(w, fmt.Errorf("import error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(ImportResponse{Imported: n}); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Groupes de travail
// (GET /groups).
func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	groups, err := s.contacts.ListGroups(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("list groups error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(groups); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Création ou mise à jour d'un groupe de travail
// (POST /groups).
func (s *Server) saveGroup(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireGlobalEdit(w, r) {
		return
	}

	var g models.WorkGroup

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&g); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	saved, err := s.contacts.SaveGroup(r.Context(), g)
	if err != nil {
		handleError(w, fmt.Errorf("save group error: %w", err), http.StatusInternalServerError)

		return
	}

	bts, err := json.Marshal(saved)
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write(bts) //nolint:errcheck
}

// Suppression d'un groupe de travail
// (DELETE /groups/{id}).
func (s *Server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireGlobalEdit(w, r) {
		return
	}

	err := s.contacts.DeleteGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, contactservice.ErrGroupNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("delete group error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
