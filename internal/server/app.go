// Package server wires configuration, storage, services and transports
// together and runs the HTTP API and the gRPC health endpoint until the
// process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/auth"
	"github.com/dmitrijs2005/carmodpicker/internal/server/config"
	"github.com/dmitrijs2005/carmodpicker/internal/server/mail"
	"github.com/dmitrijs2005/carmodpicker/internal/server/ownership"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/memory"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/carmodpicker/internal/server/rest"
	"github.com/dmitrijs2005/carmodpicker/internal/server/services"

	gs "github.com/dmitrijs2005/carmodpicker/internal/server/grpc"
)

const (
	shutdownTimeout     = 10 * time.Second
	healthCheckInterval = 5 * time.Second
)

var (
	logOutput io.Writer = os.Stdout

	// openDB is a seam for testing; the pgx driver is registered by repomanager.
	openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	runner      dbx.Runner
	services    rest.Services
	resolver    *auth.Resolver
}

func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{config: c, logger: logging.New(logOutput, c.LogLevel, c.LogFormat)}

	if c.InMemory() {
		app.repomanager = repomanager.NewMemoryRepositoryManager(memory.NewStore())
		app.runner = dbx.NopRunner{}
	} else {
		db, err := openDB(c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.repomanager = repomanager.NewPostgresRepositoryManager()
		app.runner = dbx.NewSQLRunner(db)
	}

	tokens, err := auth.NewTokenIssuer(c.SecretKey, c.Algorithm, c.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	mailer, err := mail.NewSender(c, app.logger)
	if err != nil {
		return nil, err
	}
	verifier := ownership.NewVerifier(ownership.DefaultSteps(app.repomanager), app.logger)

	app.services = rest.Services{
		Users:      services.NewUserService(app.runner, app.repomanager, app.logger),
		Auth:       services.NewAuthService(app.runner, app.repomanager, tokens, mailer, c.FrontendURL, c.EmailTokenTTL, app.logger),
		Cars:       services.NewCarService(app.runner, app.repomanager, verifier, app.logger),
		BuildLists: services.NewBuildListService(app.runner, app.repomanager, verifier, app.logger),
		Parts:      services.NewPartService(app.runner, app.repomanager, verifier, app.logger),
		Images:     services.NewImageService(app.runner, app.repomanager, verifier, c, app.logger),
	}
	app.resolver = auth.NewResolver(tokens, app.repomanager.Users(app.runner.Conn()), app.logger)

	return app, nil
}

// Users exposes the account service to the admin tool.
func (app *App) Users() *services.UserService { return app.services.Users }

// Migrate brings the database schema up to date. It does nothing for the
// in-memory store.
func (app *App) Migrate(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}

func (app *App) ping(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	return app.db.PingContext(ctx)
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
	srv := &http.Server{
		Addr:              app.config.HTTPAddr,
		Handler:           rest.NewServer(app.services, app.resolver, app.config, app.ping, app.logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "HTTP server failed", "error", err)
		}
		cancelFunc()
	case <-ctx.Done():
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.ping, healthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates the schema and serves until ctx is cancelled, a termination
// signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "in_memory", app.config.InMemory())

	app.initSignalHandler(ctx, cancelFunc)

	if err := app.Migrate(ctx); err != nil {
		_ = app.Close()
		return err
	}

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	return app.Close()
}
