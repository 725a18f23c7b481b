package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/dmitrijs2005/wilt/internal/client/client"
	"github.com/dmitrijs2005/wilt/internal/client/config"
	"github.com/dmitrijs2005/wilt/internal/client/metrics"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/client/services"
	"github.com/dmitrijs2005/wilt/internal/client/session"
	"github.com/dmitrijs2005/wilt/internal/logging"
)

// View is the screen the REPL is on.
type View string

const (
	ViewLogin    View = "login"
	ViewRegister View = "register"
	ViewEntries  View = "entries"
)

type App struct {
	config       *config.Config
	authService  services.AuthService
	entryService services.EntryService
	apiClient    client.Client
	metrics      *metrics.Metrics
	logger       logging.Logger
	db           *sql.DB

	reader *bufio.Reader
	out    io.Writer

	view     View
	loggedIn bool
	userName string
	entries  []models.Entry
	draft    models.EntryDraft

	sessionExpired atomic.Bool
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.SessionDB)
	if err != nil {
		return nil, fmt.Errorf("init session database: %w", err)
	}

	store := session.NewStore(db, logger)
	m := metrics.New()

	a := &App{
		config:  c,
		metrics: m,
		logger:  logger,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		view:    ViewLogin,
	}

	apiClient, err := client.NewHTTPClient(client.Options{
		BaseURL: c.BaseURL,
		Timeout: c.RequestTimeout,
		Store:   store,
		Breaker: client.BreakerConfig{
			Name:     "wilt-api",
			Failures: c.BreakerFailures,
			Timeout:  c.BreakerTimeout,
		},
		OnSessionExpired: a.onSessionExpired,
		Logger:           logger,
		Metrics:          m,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	a.apiClient = apiClient
	a.authService = services.NewAuthService(apiClient, store, logger)
	a.entryService = services.NewEntryService(apiClient, store, logger)
	return a, nil
}

// Run resumes a stored session if there is one and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	fmt.Fprintln(a.out, "Welcome to WILT - What I Learned Today (type 'help' for commands)")
	a.resume(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Warn(ctx, "close api client", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "close session database", "error", err)
		}
	}
}

// resume picks up a session left by a previous run.
func (a *App) resume(ctx context.Context) {
	if !a.authService.IsLoggedIn(ctx) {
		return
	}
	a.loggedIn = true
	a.view = ViewEntries
	a.userName = a.authService.Username(ctx)

	fmt.Fprintf(a.out, "Resuming session of %s\n", a.userName)
	_ = a.List(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}

// onSessionExpired runs when the gateway gave up on a 401. It may be called
// from any goroutine; the REPL picks the flag up before the next prompt.
func (a *App) onSessionExpired() {
	a.sessionExpired.Store(true)
}

// applyExpiry moves the REPL back to the login view after the session was
// ended underneath it.
func (a *App) applyExpiry() {
	if !a.sessionExpired.Swap(false) {
		return
	}
	if a.loggedIn {
		fmt.Fprintln(a.out, msgSessionExpired)
	}
	a.resetSession()
}

// resetSession drops everything tied to the logged-in user.
func (a *App) resetSession() {
	a.loggedIn = false
	a.userName = ""
	a.entries = nil
	a.draft = models.EntryDraft{}
	a.view = ViewLogin
}

func (a *App) getStatus() string {
	a.applyExpiry()

	s := string(a.view)
	if a.userName != "" {
		s = a.userName + " " + s
	}
	if a.apiClient != nil {
		if state := a.apiClient.State(); state != client.StateOnline {
			s = s + " " + state
		}
	}
	return fmt.Sprintf("(%s)", s)
}
