package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/codec/backup"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/settingsservice"
	"github.com/go-chi/chi/v5"
)

// requireSettings gates the settings, backup and restore handlers behind the
// settings section.
func requireSettings(w http.ResponseWriter, r *http.Request) bool {
	if !policy.CanAccessSection(caller(r), models.TabSettings) {
		handleError(w, errForbidden, http.StatusForbidden)

		return false
	}

	return true
}

// Textes d'interface effectifs, valeurs par défaut plus surcharges
// (GET /settings/texts).
func (s *Server) getTexts(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	texts, err := s.settings.Texts(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("get texts error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(texts); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Surcharge d'un texte d'interface
// (PUT /settings/texts/{key}).
func (s *Server) setText(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireSettings(w, r) {
		return
	}

	var value models.BilingualText

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&value); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	err := s.settings.SetText(r.Context(), chi.URLParam(r, "key"), value)
	if err != nil {
		if errors.Is(err, settingsservice.ErrUnknownKey) {
			handleError(w, err, http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("set text error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Retour aux textes par défaut
// (POST /settings/texts/reset).
func (s *Server) resetTexts(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireSettings(w, r) {
		return
	}

	if err := s.settings.ResetTexts(r.Context()); err != nil {
		handleError(w, fmt.Errorf("reset texts error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Adresse du point de synchronisation tableur
// (GET /settings/sheet-url).
func (s *Server) getSheetURL(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireSettings(w, r) {
		return
	}

	url, err := s.settings.SheetURL(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("get sheet url error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(SheetURLResponse{URL: url}); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Modification de l'adresse de synchronisation; vide pour désactiver
// (PUT /settings/sheet-url).
func (s *Server) setSheetURL(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireSettings(w, r) {
		return
	}

	var b SheetURLResponse

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if err := s.settings.SetSheetURL(r.Context(), b.URL); err != nil {
		handleError(w, fmt.Errorf("set sheet url error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export complet de toutes les collections
// (GET /backup).
func (s *Server) createBackup(w http.ResponseWriter, r *http.Request) {
	if !requireSettings(w, r) {
		return
	}

	blob, err := backup.Create(r.Context(), s.store, time.Now())
	if err != nil {
		handleError(w, fmt.Errorf("create backup error: %w", err), http.StatusInternalServerError)

		return
	}

	filename := fmt.Sprintf("patrimoine_backup_%s.json", time.Now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(blob) //nolint:errcheck
}

// Restauration d'un export complet
// (POST /restore).
func (s *Server) restoreBackup(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireSettings(w, r) {
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		handleError(w, fmt.Errorf("read body error: %w", err), http.StatusBadRequest)

		return
	}

	if err := backup.Restore(r.Context(), s.store, data); err != nil {
		if errors.Is(err, backup.ErrInvalid) {
			handleError(w, err, http.StatusBadRequest)

			return
		}

		handleError(w, fmt.Errorf("restore error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language"`
	Context  string `json:"context,omitempty"`
}

// Rédaction assistée, réservée au SUPER_ADMIN; la réponse de repli est
// renvoyée telle quelle quand le collaborateur est indisponible
// (POST /assistant).
func (s *Server) generateText(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !policy.CanAccessSection(caller(r), models.TabAssistant) {
		handleError(w, errForbidden, http.StatusForbidden)

		return
	}

	var b generateRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	text, err := s.assistant.Generate(r.Context(), b.Prompt, b.Language, b.Context)
	if err != nil {
		s.lg.Warnf("assistant degraded: %s", err.Error())
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(TextResponse{Text: text}); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}
