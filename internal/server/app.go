// Package server wires the trophyshop back end: configuration, database,
// blob storage, the upload pipelines, the catalog cache and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
	"github.com/dmitrijs2005/trophyshop/internal/server/blob"
	"github.com/dmitrijs2005/trophyshop/internal/server/cleanup"
	"github.com/dmitrijs2005/trophyshop/internal/server/config"
	"github.com/dmitrijs2005/trophyshop/internal/server/httpapi"
	"github.com/dmitrijs2005/trophyshop/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/trophyshop/internal/server/services"
	"github.com/dmitrijs2005/trophyshop/internal/server/staging"
)

// Image areas, each with its own pipeline and permanent prefix.
const (
	AreaProducts = "products"
	AreaGallery  = "gallery"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	store   blob.Store
	users   *services.UserService
	catalog *services.CatalogService
	uploads map[string]*staging.Pipeline
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSON(os.Stdout, c.LogLevel)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newStore(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	uploads := make(map[string]*staging.Pipeline, 2)
	for _, area := range []string{AreaProducts, AreaGallery} {
		uploads[area] = staging.New(store, staging.Config{
			TempPrefix:      path.Join(c.TempPrefix, area) + "/",
			PermanentPrefix: area,
			MaxFileSize:     c.MaxUploadSize,
			AllowedTypes:    c.AllowedContentTypes,
		}, logger)
	}

	cache := catalogcache.New(catalogcache.NewMemoryStore(c.CacheFreshnessWindow),
		catalogcache.WithFreshnessWindow(c.CacheFreshnessWindow),
		catalogcache.WithLogger(logger))

	us := services.NewUserService(db, rm, c, logger)
	cs := services.NewCatalogService(db, rm, cache, uploads[AreaProducts], uploads[AreaGallery], logger)

	if created, err := us.EnsureAdmin(ctx, c.AdminUsername, c.AdminPassword); err != nil {
		db.Close()
		return nil, fmt.Errorf("admin bootstrap error: %w", err)
	} else if !created && c.AdminPassword == "" {
		logger.Info(ctx, "admin bootstrap disabled: no admin password configured")
	}

	return &App{config: c, logger: logger, db: db, store: store, users: us, catalog: cs, uploads: uploads}, nil
}

func newStore(ctx context.Context, c *config.Config) (blob.Store, error) {
	switch c.StorageBackend {
	case config.StorageS3:
		return blob.NewS3(ctx, blob.S3Config{
			AccessKey:     c.S3RootUser,
			SecretKey:     c.S3RootPassword,
			Bucket:        c.S3Bucket,
			Region:        c.S3Region,
			Endpoint:      c.S3BaseEndpoint,
			PublicBaseURL: c.S3PublicBaseURL,
		})
	case config.StorageLocal:
		return blob.NewLocal(c.MediaRoot, c.MediaBaseURL)
	}
	return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
}

func (app *App) handler() http.Handler {
	deps := httpapi.Deps{
		Users:   app.users,
		Catalog: app.catalog,
		Uploads: make(map[string]httpapi.UploadPipeline, len(app.uploads)),
		Logger:  app.logger,
	}
	for area, p := range app.uploads {
		deps.Uploads[area] = p
	}
	// Local media is served by the API itself when its URLs are relative.
	if local, ok := app.store.(*blob.Local); ok && strings.HasPrefix(app.config.MediaBaseURL, "/") {
		deps.Media = http.FileServer(http.Dir(local.Root()))
		deps.MediaPrefix = app.config.MediaBaseURL
	}
	return httpapi.New(deps)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewHTTPServer(app.config.HTTPAddr, app.logger, app.handler())
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startSweeper(ctx context.Context) {
	sweepers := make(map[string]cleanup.Sweeper, len(app.uploads))
	for area, p := range app.uploads {
		sweepers[area] = p
	}
	cleanup.RunPeriodic(ctx, sweepers, app.config.TempTTL, app.config.SweepInterval, app.logger)
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startSweeper(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
