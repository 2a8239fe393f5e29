// Package app assembles the store, the domain services and the router
// from a Config. Both the server and quizctl start from here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SlpAus/quiz-share-backend/internal/api"
	"github.com/SlpAus/quiz-share-backend/internal/bookmark"
	"github.com/SlpAus/quiz-share-backend/internal/platform/backup"
	"github.com/SlpAus/quiz-share-backend/internal/platform/config"
	"github.com/SlpAus/quiz-share-backend/internal/platform/database"
	"github.com/SlpAus/quiz-share-backend/internal/platform/health"
	"github.com/SlpAus/quiz-share-backend/internal/platform/kvstore"
	"github.com/SlpAus/quiz-share-backend/internal/platform/startup"
	"github.com/SlpAus/quiz-share-backend/internal/question"
	"github.com/SlpAus/quiz-share-backend/internal/user"
	"github.com/SlpAus/quiz-share-backend/internal/vote"
)

// App holds everything built from a Config.
type App struct {
	Config   *config.Config
	Store    kvstore.Store
	KV       *kvstore.Adapter
	Services api.Services
	Router   *api.Router
	Status   *health.Status
	// Backup is nil unless backup.enabled is set.
	Backup *backup.Service

	closers []func() error
}

// New opens the configured backend, seeds missing collections and builds
// the router.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, closeStore, err := database.OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:  cfg,
		Store:   store,
		KV:      kvstore.NewAdapter(store),
		Status:  health.NewStatus(),
		closers: []func() error{closeStore},
	}

	if cfg.Backup.Enabled {
		mirror, err := database.OpenSqlite(cfg.Backup.SqlitePath)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() error { return database.Close(mirror) })
		a.Backup, err = backup.NewService(a.KV, mirror, startup.CollectionKeys())
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		// a fresh backend picks up the last snapshot before seeding
		if _, err := a.Backup.Restore(ctx); err != nil {
			slog.Warn("failed to restore snapshot at startup", "err", err)
		}
	}

	if err := startup.InitializeApplication(ctx, a.KV); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}

	questions := question.NewService(a.KV)
	a.Services = api.Services{
		Users:     user.NewService(a.KV),
		Questions: questions,
		Votes:     vote.NewService(a.KV),
		Bookmarks: bookmark.NewService(a.KV, questions),
	}
	a.Router, err = api.New(a.Services, api.WithAvailability(a.Status.Healthy))
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// Rebuild refills the store after a backend restart.
func (a *App) Rebuild(ctx context.Context) error {
	if a.Backup == nil {
		return startup.RebuildStore(ctx, a.KV, nil)
	}
	return startup.RebuildStore(ctx, a.KV, a.Backup)
}

// NewChecker builds the health checker for the store.
func (a *App) NewChecker() *health.Checker {
	return health.NewChecker(a.Store, a.Status, a.Config.Health.Interval, a.Config.Health.Timeout, a.Rebuild)
}

// Close releases every connection in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
