// Package cli implements the atelier command-line client: operator login,
// bulk image uploads and ERP order inspection.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mkraev/atelier/internal/client/api"
	"github.com/mkraev/atelier/internal/client/config"
	"github.com/mkraev/atelier/internal/erp"
	"github.com/mkraev/atelier/internal/filex"
	"github.com/mkraev/atelier/internal/logging"
)

const tokenFileName = "token"

// App holds the CLI's collaborators and per-invocation state.
type App struct {
	config *config.Config
	logger logging.Logger
	api    *api.Client
	erp    *erp.Client
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) *App {
	sl := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	logger := logging.NewSlogLogger(sl)

	app := &App{
		config: c,
		logger: logger,
		api:    api.NewClient(c.ServerURL),
		erp:    erp.NewClient(c.ERPHost, logger),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	app.restoreToken()
	return app
}

// Run dispatches the subcommand in args (already stripped of the binary
// name and global flags).
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.printUsage()
		return nil
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "upload":
		return a.Upload(ctx, args[1:])
	case "orders":
		return a.Orders(ctx, args[1:])
	case "help":
		a.printUsage()
		return nil
	default:
		a.printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *App) printUsage() {
	fmt.Fprintln(a.out, `Usage: atelier <command> [options]

Commands:
  register                       create an operator account
  login                          authenticate against the control plane
  upload -dir DIR -folder NAME   upload a directory of images
         [-mode override|copy]
  orders [-state STATE]          list ERP orders
  help                           show this help`)
}

// tokenPath returns the path the access token is persisted under,
// creating the state directory when needed.
func (a *App) tokenPath() (string, error) {
	dir, err := filex.EnsureStateDir(".atelier")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokenFileName), nil
}

func (a *App) restoreToken() {
	path, err := a.tokenPath()
	if err != nil {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	a.api.SetToken(string(raw))
}

func (a *App) saveToken() error {
	path, err := a.tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(a.api.Token()), 0o600)
}
