// Package bootstrap turns parsed options into a validated, ready-to-use
// state directory and hands control to the service entry point. All
// failures here are terminal to the process: the daemon either starts with
// a confirmed-usable state directory or does not start at all.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/voltgrid/vdm/internal/config"
	vdmerrors "github.com/voltgrid/vdm/internal/errors"
	"github.com/voltgrid/vdm/internal/version"
)

// StateDirName is the default state directory under the user's home.
const StateDirName = ".vdm"

// stateDirPerm is the mode for a freshly created state directory.
const stateDirPerm = 0o755

// FailureKind tags the closed set of bootstrap failures.
type FailureKind string

const (
	FailureIO         FailureKind = "io"
	FailurePermission FailureKind = "permission"
	FailureLoad       FailureKind = "load"
)

// InitError is a tagged bootstrap failure. None are retried; the caller
// maps them to a diagnostic on stderr and exit code 1.
type InitError struct {
	Kind FailureKind
	Err  *vdmerrors.VDMError
}

func (e *InitError) Error() string {
	return fmt.Sprintf("bootstrap %s failure: %v", e.Kind, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Runtime carries everything the bootstrap resolved for the service: the
// install root, the runtime version string, the validated state directory,
// and the pass-through server address.
type Runtime struct {
	Install   InstallRoot
	Version   string
	StatePath string

	// Server is forwarded verbatim; nil means the listener picks its own
	// default.
	Server *string
}

// ServiceEntryPoint owns the process lifecycle once invoked. Start blocks
// for the life of the daemon.
type ServiceEntryPoint interface {
	Start(ctx context.Context, rt *Runtime) error
}

// ResolveStatePath returns the state directory, preferring the explicit
// override and falling back to <home>/.vdm. The result is independent of
// the process working directory.
func ResolveStatePath(override *string) (string, *InitError) {
	if override != nil && *override != "" {
		return *override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", &InitError{
			Kind: FailureIO,
			Err:  vdmerrors.Wrap(err, vdmerrors.CategoryFileSystem, vdmerrors.SeverityFatal, "cannot determine home directory"),
		}
	}
	return filepath.Join(home, StateDirName), nil
}

// EnsureStateDir confirms the path is a writable directory, creating it
// (including missing parents) when absent. The service never starts without
// this confirmation.
func EnsureStateDir(path string) *InitError {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return &InitError{Kind: FailureIO, Err: vdmerrors.StateDirNotDirectory(path)}
		}
		if !writable(path) {
			return &InitError{Kind: FailurePermission, Err: vdmerrors.PermissionDenied(path)}
		}
		return nil
	case os.IsNotExist(err):
		if mkErr := os.MkdirAll(path, stateDirPerm); mkErr != nil {
			return &InitError{Kind: FailureIO, Err: vdmerrors.StateDirCreateFailed(path, mkErr)}
		}
		return nil
	default:
		return &InitError{Kind: FailureIO, Err: vdmerrors.StateDirStatFailed(path, err)}
	}
}

// Init resolves the runtime from parsed options: install root, version
// string, and a confirmed-usable state directory. It never mutates the
// process working directory; downstream path computations receive the
// install root explicitly.
func Init(opts config.Options) (*Runtime, *InitError) {
	strategies := defaultStrategies()
	install, ok := resolveInstallRoot(strategies)
	if !ok {
		return nil, &InitError{Kind: FailureLoad, Err: vdmerrors.InstallRootNotFound(candidateNames(strategies))}
	}

	statePath, initErr := ResolveStatePath(opts.Path)
	if initErr != nil {
		return nil, initErr
	}
	if initErr := EnsureStateDir(statePath); initErr != nil {
		return nil, initErr
	}

	rt := &Runtime{
		Install:   install,
		Version:   version.Resolve(install.Dir),
		StatePath: statePath,
		Server:    opts.Server,
	}
	slog.Debug("Bootstrap resolved",
		"install_root", install.Dir,
		"install_source", install.Source,
		"state_path", statePath,
		"version", rt.Version)
	return rt, nil
}

// Run performs Init and invokes the service entry point with the resolved
// runtime. The entry point call blocks; process lifetime belongs to the
// service from that call onward.
func Run(ctx context.Context, opts config.Options, entry ServiceEntryPoint) error {
	rt, initErr := Init(opts)
	if initErr != nil {
		return initErr
	}
	return entry.Start(ctx, rt)
}
