package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/trophyshop/internal/catalogcache"
	"github.com/dmitrijs2005/trophyshop/internal/client/client"
	"github.com/dmitrijs2005/trophyshop/internal/client/config"
	"github.com/dmitrijs2005/trophyshop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/trophyshop/internal/client/services"
	"github.com/dmitrijs2005/trophyshop/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	api      client.Client
	catalog  services.CatalogService
	admin    services.AdminService
	reader   *bufio.Reader
	out      io.Writer
	userName string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.CachePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing cache database: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	cache := catalogcache.New(metadata.NewSQLiteRepository(db),
		catalogcache.WithFreshnessWindow(c.CacheFreshnessWindow),
		catalogcache.WithLogger(logger),
	)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		api:     api,
		catalog: services.NewCatalogService(api, cache, metadata.NewSQLiteRepository(db)),
		admin:   services.NewAdminService(api, cache, logger),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run starts the REPL and blocks until the user exits or stdin closes.
func (a *App) Run(ctx context.Context) {
	defer a.db.Close()

	fmt.Fprintf(a.out, "Trophy shop CLI, server %s (type 'help' for commands)\n", a.config.ServerURL)
	a.checkServer(ctx)

	runREPL(ctx, a, a.status, a.reader)

	if a.admin.LoggedIn() {
		_ = a.admin.Logout(context.WithoutCancel(ctx))
	}
}

func (a *App) checkServer(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.api.Ping(ctx); err != nil {
		fmt.Fprintf(a.out, "Server is not reachable (%v); cached listings are still available.\n", err)
	}
}

func (a *App) status() string {
	if a.admin.LoggedIn() && a.userName != "" {
		return "(" + a.userName + ")"
	}
	return ""
}

func (a *App) isLoggedIn() bool { return a.admin.LoggedIn() }
