package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"
)

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := httptest.NewRecorder()

			defer func() {
				latency := time.Since(start).String()

				logg.Infof("METHOD %s URI %s %s	STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					rr.Code,
					latency,
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(rr, r)

			for k, v := range rr.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(rr.Code)

			if rr.Code >= 400 && rr.Body.Len() != 0 {
				logg.Errorf("error: %s", rr.Body)
			}

			_, err := rr.Body.WriteTo(w)
			if err != nil {
				logg.Errorf("middleware write error: %w", err)
			}
		})
	}
}

type ctxKey int

const callerKey ctxKey = iota

// withCaller resolves the request's basic-auth credentials against the user
// directory and stows the caller record in the context. Every authorization
// decision downstream starts from this record, never from request data.
func (s *Server) withCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="patrimoine"`)
			handleError(w, errAuthRequired, http.StatusUnauthorized)

			return
		}

		user, err := s.directory.Authenticate(r.Context(), username, password)
		if err != nil {
			handleError(w, errAuthRequired, http.StatusUnauthorized)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, user)))
	})
}

func caller(r *http.Request) models.User {
	u, _ := r.Context().Value(callerKey).(models.User)

	return u
}
