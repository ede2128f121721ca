package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/directoryservice"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Connexion par identifiant et mot de passe. Pas de session: le même
// en-tête Basic accompagne chaque requête suivante
// (POST /auth/login).
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var b loginRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	user, err := s.directory.Authenticate(r.Context(), b.Username, b.Password)
	if err != nil {
		if errors.Is(err, directoryservice.ErrInvalidCredentials) {
			handleError(w, err, http.StatusUnauthorized)

			return
		}

		handleError(w, fmt.Errorf("login error: %w", err), http.StatusInternalServerError)

		return
	}

	enc := json.NewEncoder(w)

	if err := enc.Encode(toUserView(user)); err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}
}

// Auto-inscription d'un administrateur de ministère
// (POST /auth/register).
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Content-Type", "application/json")

	var b directoryservice.RegisterRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&b); err != nil {
		handleError(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	user, err := s.directory.Register(r.Context(), b)
	if err != nil {
		switch {
		case errors.Is(err, directoryservice.ErrAlreadyExists):
			handleError(w, err, http.StatusConflict)
		case errors.Is(err, directoryservice.ErrInvalidCredentials):
			handleError(w, err, http.StatusBadRequest)
		default:
			handleError(w, fmt.Errorf("register error: %w", err), http.StatusInternalServerError)
		}

		return
	}

	bts, err := json.Marshal(toUserView(user))
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err), http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write(bts) //nolint:errcheck
}

// requireUserManagement gates the user-administration handlers.
func requireUserManagement(w http.ResponseWriter, r *http.Request) bool {
	if !policy.HasPermission(caller(r), policy.ActionViewUsers, "") {
		handleError(w, errForbidden, http.StatusForbidden)

		return false
	}

	return true
}
