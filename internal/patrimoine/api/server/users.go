package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/directoryservice"
	"github.com/go-chi/chi/v5"
)

// Liste des comptes, réservée au SUPER_ADMIN
// (GET /users).
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireUserManagement(w, r) {
		return
	}

	users, err := s.directory.List(r.Context())
	if err != nil {
		handleError(w, fmt.Errorf("list users error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toUserViews(users)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Création ou remplacement d'un compte
// (POST /users).
func (s *Server) saveUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireUserManagement(w, r) {
		return
	}

	var u models.User

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&u); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	saved, err := s.directory.Save(r.Context(), u)
	if err != nil {
		if errors.Is(err, directoryservice.ErrAlreadyExists) {
			handleError(w, err, http.StatusConflict)

			return
		}

		handleError(w, fmt.Errorf("save user error: %w", err), http.StatusBadRequest)

		return
	}

	bts, err := json.Marshal(toUserView(saved))
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write(bts) //nolint:errcheck
}

// Suppression d'un compte; le compte superadmin est protégé
// (DELETE /users/{id}).
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	if !requireUserManagement(w, r) {
		return
	}

	err := s.directory.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch {
		case errors.Is(err, directoryservice.ErrProtectedAccount):
			handleError(w, err, http.StatusForbidden)
		case errors.Is(err, directoryservice.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
		default:
			handleError(w, fmt.Errorf("delete user error: %w", err), http.StatusInternalServerError)
		}

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
