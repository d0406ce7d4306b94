// Package server wires the booklib backend together: configuration, logging,
// the PostgreSQL store and its migrations, the services, the REST API and the
// gRPC health endpoint. It also owns graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/config"
	"github.com/dmitrijs2005/booklib/internal/server/health"
	"github.com/dmitrijs2005/booklib/internal/server/httpapi"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/booklib/internal/server/services"
)

const dbPingTimeout = 5 * time.Second

// Seams for tests.
var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	http   *httpapi.Server
	health *health.Server
}

// NewApp connects to the database, applies pending migrations and builds the
// services and transports. The database is closed again if any step fails.
func NewApp(c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(c, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	m := newRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	tokens := auth.NewTokenService([]byte(c.SecretKey), c.TokenTTL)
	hasher := auth.NewPasswordHasher(c.BcryptCost)

	accounts := services.NewAccountService(db, m, tokens, hasher, logger)
	books := services.NewBookService(db, m, c.DefaultCoverImage, logger)
	covers := services.NewCoverService(c)

	app := &App{config: c, logger: logger, db: db}

	app.http = httpapi.NewServer(httpapi.Options{
		Address:         c.HTTPAddr,
		CORSOrigins:     c.CORSOrigins,
		AuthRateLimit:   c.AuthRateLimit,
		AuthRateBurst:   c.AuthRateBurst,
		ShutdownTimeout: c.ShutdownTimeout,
	}, logger, tokens, accounts, books, covers)

	if c.GRPCHealthAddr != "" {
		app.health = health.NewServer(c.GRPCHealthAddr, logger)
	}

	if !covers.Enabled() {
		logger.Info(ctx, "cover uploads disabled, no S3 bucket configured")
	}

	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, "gRPC health server error", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a termination signal arrives or a
// transport fails, then closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.health != nil {
		app.health.SetServing()

		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx, cancelFunc)
		}()
	}

	<-ctx.Done()
	if app.health != nil {
		app.health.SetNotServing()
	}

	wg.Wait()

	app.logger.Info(context.Background(), "Closing database...")
	return app.db.Close()
}
