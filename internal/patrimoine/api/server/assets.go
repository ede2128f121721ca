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
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/assetservice"
	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 10 << 20

// Déclarations visibles par l'appelant, filtrées par ?q=
// (GET /assets).
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	assets, err := s.assets.Search(r.Context(), caller(r), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, fmt.Errorf("list assets error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(assets); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Une déclaration
// (GET /assets/{id}).
func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	a, err := s.assets.Get(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, assetservice.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)

			return
		}

		handleError(w, fmt.Errorf("get asset error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(a); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Création ou mise à jour d'une déclaration
// (POST /assets).
func (s *Server) saveAsset(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var req assetservice.SaveRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	saved, err := s.assets.Save(r.Context(), caller(r), req)
	if err != nil {
		var ve *assetservice.ValidationError

		switch {
		case errors.As(err, &ve):
			w.WriteHeader(http.StatusUnprocessableEntity)

			enc := json.NewEncoder(w)
			enc.Encode(ValidationResponse{Fields: ve.Fields}) //nolint:errcheck,errchkjson
		case errors.Is(err, models.ErrSpecificsMismatch):
			handleError(w, err, http.StatusBadRequest)
		case errors.Is(err, assetservice.ErrForbidden):
			handleError(w, err, http.StatusForbidden)
		default:
			handleError(w, fmt.Errorf("save asset error: %w", err), http.StatusInternalServerError)
		}

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

// Suppression d'une déclaration
// (DELETE /assets/{id}).
func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	err := s.assets.Delete(r.Context(), caller(r), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, assetservice.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, assetservice.ErrForbidden):
			handleError(w, err, http.StatusForbidden)
		default:
			handleError(w, fmt.Errorf("delete asset error: %w", err), http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// Suppression en lot, tout ou rien
// (POST /assets/bulk-delete).
func (s *Server) bulkDeleteAssets(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var b bulkDeleteRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	err := s.assets.BulkDelete(r.Context(), caller(r), b.IDs)
	if err != nil {
		switch {
		case errors.Is(err, assetservice.ErrNotFound):
			handleError(w, err, http.StatusNotFound)
		case errors.Is(err, assetservice.ErrForbidden):
			handleError(w, err, http.StatusForbidden)
		default:
			handleError(w, fmt.Errorf("bulk delete error: %w", err), http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Export des déclarations visibles, CSV par défaut ou XLSX
// (GET /assets/export?format=).
func (s *Server) exportAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := s.assets.ListFor(r.Context(), caller(r))
	if err != nil {
		handleError(w, fmt.Errorf("export assets error: %w", err), http.StatusInternalServerError)

		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	var (
		data        []byte
		contentType string
	)

	switch format {
	case "csv":
		data = tabular.MarshalAssets(assets)
		contentType = "text/csv; charset=utf-8"
	case "xlsx":
		data, err = tabular.MarshalAssetsXLSX(assets)
		if err != nil {
			handleError(w, fmt.Errorf("xlsx export error: %w", err), http.StatusInternalServerError)

			return
		}

		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		handleError(w, fmt.Errorf("unknown export format %q", format), http.StatusBadRequest)

		return
	}

	filename := tabular.ExportFilename("patrimoine", format, time.Now())

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(data) //nolint:errcheck
}

// Import CSV de déclarations
// (POST /assets/import).
func (s *Server) importAssets(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	data, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		handleError(w, fmt.Errorf("read body error: %w", err), http.StatusBadRequest)

		return
	}

	n, err := s.assets.ImportCSV(r.Context(), caller(r), data)
	if err != nil {
		switch {
		case errors.Is(err, tabular.ErrMalformed):
			handleError(w, err, http.StatusBadRequest)
		case errors.Is(err, assetservice.ErrForbidden):
			handleError(w, err, http.StatusForbidden)
		default:
			handleError(w, fmt.Errorf("import error: %w", err), http.StatusInternalServerError)
		}

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(ImportResponse{Imported: n}); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}
