package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/meshmart/internal/client/archive"
	"github.com/dmitrijs2005/meshmart/internal/client/client"
	"github.com/dmitrijs2005/meshmart/internal/client/config"
	"github.com/dmitrijs2005/meshmart/internal/client/services"
	"github.com/dmitrijs2005/meshmart/internal/client/staging"
	"github.com/dmitrijs2005/meshmart/internal/client/upload"
	"github.com/dmitrijs2005/meshmart/internal/logging"
	"github.com/dmitrijs2005/meshmart/internal/netx"

	_ "modernc.org/sqlite"
)

var (
	ErrNotAdmin     = errors.New("this command is available to administrators only")
	ErrNoProduct    = errors.New("no product is open, use 'edit <productID>' first")
	ErrNothingRetry = errors.New("nothing to retry")
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App holds everything one CLI run needs. Commands are driven from the REPL
// goroutine only; the connectivity mode is the one field the status watcher
// touches.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	authService services.AuthService
	api         client.Client
	uploads     *upload.Orchestrator
	publisher   *upload.Publisher
	archives    *archive.Orchestrator
	previews    staging.Previewer

	staging    *staging.Session
	lastResult *upload.Result

	modeMu sync.RWMutex
	mode   Mode

	reader *bufio.Reader
	out    io.Writer
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	storage := &http.Client{}

	uploads := upload.New(api, api, netx.NewPresignedPutter(storage),
		upload.WithConcurrency(c.UploadConcurrency),
		upload.WithLogger(log.With("component", "upload")))

	archives := archive.New(api, netx.NewPresignedGetter(storage, 0), archive.DirSink{Dir: c.DownloadDir},
		archive.WithBatchSize(c.DownloadBatchSize),
		archive.WithLogger(log.With("component", "archive")))

	return &App{
		config:      c,
		log:         log,
		db:          db,
		authService: services.NewAuthService(api, db),
		api:         api,
		uploads:     uploads,
		publisher:   upload.NewPublisher(api, uploads, log.With("component", "publish")),
		archives:    archives,
		previews:    staging.NewMemoryPreviews(),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

// Run blocks until the user leaves the REPL or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.close()
	a.Root(ctx)
}

func (a *App) close() {
	if a.staging != nil {
		a.staging.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.Session() != nil
}

func (a *App) isAdmin() bool {
	return a.authService.Session().IsAdmin()
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pctx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
