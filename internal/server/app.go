// Package server wires and runs the gate server: storage for the
// verification audit, the site configuration watcher, the content
// loader and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/passgate/internal/logging"
	"github.com/dmitrijs2005/passgate/internal/server/config"
	"github.com/dmitrijs2005/passgate/internal/server/content"
	"github.com/dmitrijs2005/passgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/passgate/internal/server/services"
	"github.com/dmitrijs2005/passgate/internal/server/siteconfig"

	gs "github.com/dmitrijs2005/passgate/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	site        *siteconfig.Provider
	gateService *services.GateService
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	return newApp(context.Background(), c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	var db *sql.DB
	var rm repomanager.RepositoryManager

	if c.DatabaseDSN != "" {
		var err error
		db, err = repomanager.OpenPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	} else {
		logger.Warn(ctx, "no database configured, verification audit kept in memory")
		rm = repomanager.NewInMemoryRepositoryManager()
	}

	site, err := siteconfig.Load(c.SiteConfigPath, logger)
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("site config error: %w", err)
	}

	var loader content.Loader
	if c.UseS3() {
		loader, err = content.NewS3LoaderFromConfig(ctx, c)
		if err != nil {
			closeDB(db)
			return nil, fmt.Errorf("content store error: %w", err)
		}
	} else {
		loader = content.NewDirLoader(c.ContentDir)
	}

	limiter := services.NewLimiter(c.RateLimitPerMinute, c.RateLimitBurst)
	gateService := services.NewGateService(db, rm, site, loader, limiter, c, logger)

	return &App{config: c, logger: logger, db: db, site: site, gateService: gateService}, nil
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.gateService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) watchSiteConfig(ctx context.Context) {
	if err := app.site.Watch(ctx); err != nil {
		app.logger.Warn(ctx, "site config is not watched", "error", err)
	}
}

// Run blocks until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.watchSiteConfig(ctx)
	}()

	wg.Wait()

	closeDB(app.db)
	app.logger.Info(ctx, "App stopped")
}
