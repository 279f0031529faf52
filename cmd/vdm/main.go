package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/voltgrid/vdm/internal/bootstrap"
	"github.com/voltgrid/vdm/internal/config"
	"github.com/voltgrid/vdm/internal/daemon"
	"github.com/voltgrid/vdm/internal/version"
)

// cliOptions is the option surface: two optional value flags plus the
// standard help/version flags. Absent flags stay nil; default substitution
// is the bootstrap controller's job.
type cliOptions struct {
	Path    *string          `short:"p" help:"State directory for daemon data (default: <home>/.vdm)."`
	Server  *string          `short:"s" help:"Bind address for the management listener."`
	Verbose bool             `short:"v" help:"Enable verbose logging."`
	Version kong.VersionFlag `help:"Print version and quit."`
}

var CLI cliOptions

func main() {
	// .env supplies local environment overrides; absence is fine.
	_ = godotenv.Load()

	kong.Parse(&CLI,
		kong.Name("vdm"),
		kong.Description("Management daemon for database deployments."),
		kong.Vars{"version": version.Version},
	)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := config.Options{Path: CLI.Path, Server: CLI.Server}
	if err := bootstrap.Run(ctx, opts, daemon.New()); err != nil {
		fmt.Fprintln(os.Stderr, diagnostic(err))
		os.Exit(1)
	}
}

// diagnostic renders a startup failure for the error stream.
func diagnostic(err error) string {
	var initErr *bootstrap.InitError
	if stderrors.As(err, &initErr) {
		if initErr.Kind == bootstrap.FailurePermission {
			return "Error: no permission to write to the state directory. Unable to start vdm."
		}
		return fmt.Sprintf("Error (%s): %v", initErr.Kind, initErr.Err)
	}
	return fmt.Sprintf("Error: %v", err)
}
