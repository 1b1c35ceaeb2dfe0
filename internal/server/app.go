// Package server initializes and runs the MeshMart gateway.
// It opens the database, applies migrations, connects to object storage and
// serves the HTTP API until the process is signalled to stop.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/server/config"
	"github.com/dmitrijs2005/meshmart/internal/server/httpapi"
	"github.com/dmitrijs2005/meshmart/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/meshmart/internal/server/services"
	"github.com/dmitrijs2005/meshmart/internal/server/storage"
)

const pingTimeout = 5 * time.Second

// openDB is a test seam.
var openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := db.PingContext(pctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Presigner(ctx, c)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	us := services.NewUserService(db, rm, c)
	ps := services.NewProductService(db, rm, store, logger)
	ords := services.NewOrderService(db, rm, store, logger)

	srv := &http.Server{
		Addr:              c.HTTPAddr,
		Handler:           httpapi.NewRouter(logger, []byte(c.SecretKey), us, ps, ords),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

// Run serves until SIGINT/SIGTERM or ctx is done, then shuts the server
// down within the configured timeout.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...", "addr", app.config.HTTPAddr)

	return serve(ctx, app.server, app.config.ShutdownTimeout, app.logger)
}

func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger logging.Logger) error {
	errc := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errc <- err
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "gracefully shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errc
}
