package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/domain/models"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/assetservice"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/directoryservice"
	"github.com/dgpe-mr/patrimoine_control/internal/pkg/config"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	serv      *http.Server
	directory Directory
	assets    AssetCatalog
	contacts  ContactDirectory
	settings  Settings
	assistant Assistant
	store     recordstore.Store
	lg        logger.Logger
}

type Directory interface {
	Authenticate(context.Context, string, string) (models.User, error)
	List(context.Context) ([]models.User, error)
	Register(context.Context, directoryservice.RegisterRequest) (models.User, error)
	Save(context.Context, models.User) (models.User, error)
	Delete(context.Context, string) error
}

type AssetCatalog interface {
	ListFor(context.Context, models.User) ([]models.AssetDeclaration, error)
	Search(context.Context, models.User, string) ([]models.AssetDeclaration, error)
	Get(context.Context, models.User, string) (models.AssetDeclaration, error)
	Save(context.Context, models.User, assetservice.SaveRequest) (models.AssetDeclaration, error)
	Delete(context.Context, models.User, string) error
	BulkDelete(context.Context, models.User, []string) error
	ImportCSV(context.Context, models.User, []byte) (int, error)
}

type ContactDirectory interface {
	ListContacts(context.Context) ([]models.MinistryContact, error)
	SaveContact(context.Context, models.MinistryContact) (models.MinistryContact, error)
	DeleteMinistry(context.Context, string) error
	ImportCSV(context.Context, []byte) (int, error)
	ListGroups(context.Context) ([]models.WorkGroup, error)
	SaveGroup(context.Context, models.WorkGroup) (models.WorkGroup, error)
	DeleteGroup(context.Context, string) error
}

type Settings interface {
	Texts(context.Context) (map[string]models.BilingualText, error)
	SetText(context.Context, string, models.BilingualText) error
	ResetTexts(context.Context) error
	SheetURL(context.Context) (string, error)
	SetSheetURL(context.Context, string) error
}

type Assistant interface {
	Generate(ctx context.Context, prompt, language, contextText string) (string, error)
}

func New(cfg config.Server, d Directory, a AssetCatalog, c ContactDirectory,
	st Settings, as Assistant, store recordstore.Store, lg logger.Logger,
) *Server {
	s := &Server{ //nolint:exhaustruct
		directory: d,
		assets:    a,
		contacts:  c,
		settings:  st,
		assistant: as,
		store:     store,
		lg:        lg,
	}

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      s.routes(lg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) routes(lg logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware(lg))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", s.login)
		r.Post("/auth/register", s.register)

		r.Group(func(r chi.Router) {
			r.Use(s.withCaller)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", s.listUsers)
				r.Post("/", s.saveUser)
				r.Delete("/{id}", s.deleteUser)
			})

			r.Route("/assets", func(r chi.Router) {
				r.Get("/", s.listAssets)
				r.Post("/", s.saveAsset)
				r.Get("/export", s.exportAssets)
				r.Post("/import", s.importAssets)
				r.Post("/bulk-delete", s.bulkDeleteAssets)
				r.Get("/{id}", s.getAsset)
				r.Delete("/{id}", s.deleteAsset)
			})

			r.Route("/contacts", func(r chi.Router) {
				r.Get("/", s.listContacts)
				r.Post("/", s.saveContact)
				r.Get("/export", s.exportContacts)
				r.Post("/import", s.importContacts)
				r.Delete("/{id}", s.deleteContact)
			})

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", s.listGroups)
				r.Post("/", s.saveGroup)
				r.Delete("/{id}", s.deleteGroup)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/texts", s.getTexts)
				r.Put("/texts/{key}", s.setText)
				r.Post("/texts/reset", s.resetTexts)
				r.Get("/sheet-url", s.getSheetURL)
				r.Put("/sheet-url", s.setSheetURL)
			})

			r.Get("/backup", s.createBackup)
			r.Post("/restore", s.restoreBackup)
			r.Post("/assistant", s.generateText)
		})
	})

	return r
}

// Handler exposes the route tree for in-process test servers.
func (s *Server) Handler() http.Handler {
	return s.serv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}

func handleError(w http.ResponseWriter, err error, code int) {
	w.WriteHeader(code)

	e := Error{err.Error()}

	w.Write(e.ToJSON()) //nolint:errcheck
}
