package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/api/server"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/integrations/sheetsync"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/integrations/textgen"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/policy"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore/postgres"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/repository/recordstore/redis"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/assetservice"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/contactservice"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/directoryservice"
	"github.com/dgpe-mr/patrimoine_control/internal/patrimoine/services/settingsservice"
	"github.com/dgpe-mr/patrimoine_control/internal/pkg/config"
	"github.com/dgpe-mr/patrimoine_control/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type PatrimoineApp struct {
	s     Server
	store recordstore.Store
	lg    logger.Logger
	cfg   config.Config
}

func New(ctx context.Context, cfg config.Config) (PatrimoineApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return PatrimoineApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	// A role added to the model without a capability entry must fail the
	// boot, not fall through to a zero capability at request time.
	if err := policy.ValidateTable(); err != nil {
		return PatrimoineApp{}, fmt.Errorf("capability table error: %w", err)
	}

	var store recordstore.Store

	switch cfg.Store.Backend {
	case "redis":
		store, err = redis.New(ctx, cfg.RedisStore)
		if err != nil {
			return PatrimoineApp{}, fmt.Errorf("redis store initializing error: %w", err)
		}
	case "postgres", "":
		store, err = postgres.New(ctx, cfg.PostgresDB)
		if err != nil {
			return PatrimoineApp{}, fmt.Errorf("postgres store initializing error: %w", err)
		}
	default:
		return PatrimoineApp{}, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	directory := directoryservice.New(store, lg)

	// First load seeds the well-known accounts and heals stale records
	// before the server takes traffic.
	if _, err := directory.List(ctx); err != nil {
		return PatrimoineApp{}, fmt.Errorf("user directory initializing error: %w", err)
	}

	contacts := contactservice.New(store, lg)
	settings := settingsservice.New(store, cfg.Sync.SheetURL, lg)
	sheets := sheetsync.New(cfg.Sync)
	assets := assetservice.New(store, contacts, settings, sheets, lg)
	assistant := textgen.New(cfg.TextGen)

	s := server.New(cfg.Server, directory, assets, contacts, settings, assistant, store, lg)

	return PatrimoineApp{
		s:     s,
		store: store,
		lg:    lg,
		cfg:   cfg,
	}, nil
}

func (pa *PatrimoineApp) Run(ctx context.Context) {
	pa.lg.Infof("STARTED SERVER ON %s", pa.cfg.Server.Addr)

	go func() {
		if err := pa.s.Start(ctx); err != nil {
			pa.lg.Errorf("server start error: %s", err.Error())
			ctx.Done()

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := pa.Stop(ctxS); err != nil { //nolint:contextcheck
		pa.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (pa *PatrimoineApp) Stop(ctx context.Context) error {
	if err := pa.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := pa.store.Shutdown(ctx); err != nil {
		return fmt.Errorf("store shutdown error: %w", err)
	}

	pa.lg.Info("Shutdowned successfully")

	return nil
}
