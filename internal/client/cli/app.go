package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/passgate/internal/client/client"
	"github.com/dmitrijs2005/passgate/internal/client/config"
	"github.com/dmitrijs2005/passgate/internal/client/services"
	"github.com/dmitrijs2005/passgate/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	logger logging.Logger
	gate   services.AccessGate
	Mode   Mode
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	apiClient, err := client.NewGateClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: c,
		logger: logger.With("module", "cli"),
		gate:   services.NewAccessGate(apiClient, db),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(ctx, "switched mode", "mode", string(mode))
	}
}

// checkOnline pings the server and records the outcome in Mode. Unlocked
// resources stay readable from local records while offline.
func (a *App) checkOnline(ctx context.Context) {
	if err := a.gate.Ping(ctx); err != nil {
		a.logger.Debug(ctx, "ping failed", "error", err)
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

func (a *App) getStatus() string {
	if a.Mode == "" {
		return ""
	}
	return "(" + string(a.Mode) + ")"
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.gate.Close(ctx) }()

	printlnFn("Welcome to passgate (type 'help' for commands)")
	a.checkOnline(ctx)

	runREPL(ctx, a, a.getStatus, a.reader)
}
