// Package daemon implements the service entry point: the long-running
// management service that owns the process lifecycle once the bootstrap
// hands over a validated runtime.
package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/voltgrid/vdm/internal/bootstrap"
	"github.com/voltgrid/vdm/internal/config"
	"github.com/voltgrid/vdm/internal/dispatch"
	vdmerrors "github.com/voltgrid/vdm/internal/errors"
	"github.com/voltgrid/vdm/internal/metrics"
	"github.com/voltgrid/vdm/internal/server/httpserver"
	"github.com/voltgrid/vdm/internal/state"
)

// Status represents the current state of the daemon
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusError    Status = "error"
)

// stopTimeout bounds the graceful shutdown of all components.
const stopTimeout = 30 * time.Second

// Daemon is the management service. It implements
// bootstrap.ServiceEntryPoint.
type Daemon struct {
	status    atomic.Value // Status
	startTime time.Time
	cfg       atomic.Pointer[config.Config]
	runtime   *bootstrap.Runtime

	registry   *dispatch.Registry
	catalog    *state.Catalog
	recorder   *metrics.Recorder
	httpServer *httpserver.Server
	scheduler  *snapshotScheduler
	watcher    *configWatcher
}

// New creates a daemon instance. All wiring happens in Start, once the
// bootstrap has resolved the runtime.
func New() *Daemon {
	d := &Daemon{}
	d.status.Store(StatusStopped)
	return d
}

// Start runs the daemon until ctx is cancelled or a component fails. This
// call blocks; it is the daemon's main loop.
func (d *Daemon) Start(ctx context.Context, rt *bootstrap.Runtime) error {
	d.runtime = rt
	d.startTime = time.Now()
	d.status.Store(StatusStarting)

	cfg, err := config.Load(rt.StatePath)
	if err != nil {
		d.status.Store(StatusError)
		return err
	}
	d.cfg.Store(cfg)

	registry, err := dispatch.Load(rt.Install.Dir)
	if err != nil {
		d.status.Store(StatusError)
		return err
	}
	d.registry = registry

	catalog, err := state.Open(filepath.Join(rt.StatePath, state.CatalogFileName))
	if err != nil {
		d.status.Store(StatusError)
		return vdmerrors.DaemonStartFailed(err)
	}
	d.catalog = catalog
	if err := catalog.RecordStartup(ctx, rt.Version, os.Getpid(), d.startTime); err != nil {
		d.status.Store(StatusError)
		_ = catalog.Close()
		return vdmerrors.DaemonStartFailed(err)
	}

	// An explicit --server address wins over the configured bind.
	bind := cfg.Server.Bind
	if rt.Server != nil {
		bind = *rt.Server
	}

	d.recorder = metrics.NewRecorder(nil, d.startTime)
	d.httpServer = httpserver.New(httpserver.Config{Bind: bind}, d, d.recorder)
	if err := d.httpServer.Start(ctx); err != nil {
		d.status.Store(StatusError)
		_ = catalog.Close()
		return vdmerrors.DaemonStartFailed(err)
	}

	scheduler, err := newSnapshotScheduler(cfg.SnapshotInterval(), d.takeSnapshot)
	if err != nil {
		d.status.Store(StatusError)
		d.shutdown()
		return vdmerrors.DaemonStartFailed(err)
	}
	d.scheduler = scheduler
	d.scheduler.start()

	watcher, err := newConfigWatcher(filepath.Join(rt.StatePath, config.ConfigFileName), d.reloadConfig)
	if err != nil {
		// Config reload is a convenience; the daemon runs without it.
		slog.Warn("Configuration watcher unavailable", "error", err)
	} else {
		d.watcher = watcher
		d.watcher.start(ctx)
	}

	d.status.Store(StatusRunning)
	slog.Info("Daemon running",
		"state_path", rt.StatePath,
		"bind", d.httpServer.Addr(),
		"version", rt.Version,
		"verbs", registry.Len())

	var runErr error
	select {
	case err := <-d.httpServer.Err():
		d.status.Store(StatusError)
		runErr = vdmerrors.Wrap(err, vdmerrors.CategoryDaemon, vdmerrors.SeverityFatal, "management listener failed")
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon")
		d.status.Store(StatusStopping)
	}

	d.shutdown()
	d.status.Store(StatusStopped)
	slog.Info("Daemon stopped")
	return runErr
}

// shutdown tears components down in reverse start order.
func (d *Daemon) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if d.watcher != nil {
		d.watcher.stop()
	}
	if d.scheduler != nil {
		if err := d.scheduler.stop(); err != nil {
			slog.Warn("Scheduler shutdown failed", "error", err)
		}
	}
	if d.httpServer != nil {
		if err := d.httpServer.Stop(ctx); err != nil {
			slog.Warn("Listener shutdown failed", "error", err)
		}
	}
	if d.catalog != nil {
		if err := d.catalog.RecordSnapshot(ctx, string(d.currentStatus()), time.Since(d.startTime)); err != nil {
			slog.Warn("Final snapshot failed", "error", err)
		}
		if err := d.catalog.Close(); err != nil {
			slog.Warn("State catalog close failed", "error", err)
		}
	}
}

// takeSnapshot records the current runtime state in the catalog.
func (d *Daemon) takeSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := d.catalog.RecordSnapshot(ctx, string(d.currentStatus()), time.Since(d.startTime)); err != nil {
		slog.Warn("State snapshot failed", "error", err)
		return
	}
	d.recorder.SnapshotTaken()
	slog.Debug("State snapshot recorded")
}

// reloadConfig re-reads config.yaml and swaps the active configuration.
// A reload never interrupts a running daemon: invalid files keep the
// previous configuration, and bind changes take effect on restart only.
func (d *Daemon) reloadConfig() {
	cfg, err := config.Load(d.runtime.StatePath)
	if err != nil {
		slog.Warn("Configuration reload failed, keeping previous configuration", "error", err)
		return
	}
	prev := d.cfg.Swap(cfg)
	if prev != nil && prev.Server.Bind != cfg.Server.Bind {
		slog.Warn("Listener bind change requires a restart", "old", prev.Server.Bind, "new", cfg.Server.Bind)
	}
	slog.Info("Configuration reloaded")
}

func (d *Daemon) currentStatus() Status {
	return d.status.Load().(Status)
}

// GetStatus implements handlers.DaemonInterface.
func (d *Daemon) GetStatus() string {
	return string(d.currentStatus())
}

// GetStartTime implements handlers.DaemonInterface.
func (d *Daemon) GetStartTime() time.Time {
	return d.startTime
}

// GetVersion implements handlers.DaemonInterface.
func (d *Daemon) GetVersion() string {
	if d.runtime == nil {
		return ""
	}
	return d.runtime.Version
}

// GetStatePath implements handlers.DaemonInterface.
func (d *Daemon) GetStatePath() string {
	if d.runtime == nil {
		return ""
	}
	return d.runtime.StatePath
}

// VerbNames implements handlers.DaemonInterface.
func (d *Daemon) VerbNames() []string {
	if d.registry == nil {
		return nil
	}
	return d.registry.Names()
}

// ListenerAddr returns the bound listener address once running.
func (d *Daemon) ListenerAddr() string {
	if d.httpServer == nil {
		return ""
	}
	return d.httpServer.Addr()
}
