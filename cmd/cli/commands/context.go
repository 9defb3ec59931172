package commands

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jakechorley/tour-desk/internal/config"
	"github.com/jakechorley/tour-desk/pkg/core/tours"
	"github.com/jakechorley/tour-desk/pkg/db"
	"github.com/jakechorley/tour-desk/pkg/notify"
)

// Migrator applies pending schema migrations; nil in in-memory mode
type Migrator interface {
	RunMigrations(ctx context.Context) (int, error)
}

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Store    db.TourStore
	Feed     db.ChangeFeed
	Seeder   db.TourSeeder
	Migrator Migrator
	Notifier notify.Notifier
	Registry *prometheus.Registry
	Metrics  *tours.Metrics
	Logger   *zap.Logger
	In       io.Reader
	Out      io.Writer
	Ctx      context.Context
}

// NewController builds a tour list controller from the app dependencies
func (app *AppContext) NewController(opts ...tours.Option) *tours.Controller {
	base := []tours.Option{
		tours.WithTables(app.Cfg.WatchTables...),
		tours.WithRequestTimeout(app.Cfg.RequestTimeout),
		tours.WithMetrics(app.Metrics),
	}
	return tours.NewController(app.Store, app.Feed, app.Notifier, app.Logger, append(base, opts...)...)
}

// mount starts a controller and blocks until its first fetch resolves.
// A subscription failure is reported but does not stop the command.
func mount(ctx context.Context, app *AppContext, c *tours.Controller) {
	if err := c.Start(ctx); err != nil {
		app.Logger.Warn("Live updates unavailable", zap.Error(err))
	}
	select {
	case <-c.Ready():
	case <-ctx.Done():
	}
}
