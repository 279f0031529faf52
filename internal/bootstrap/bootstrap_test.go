package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltgrid/vdm/internal/config"
)

// fakeEntryPoint records the runtime it was started with.
type fakeEntryPoint struct {
	started bool
	rt      *Runtime
}

func (f *fakeEntryPoint) Start(_ context.Context, rt *Runtime) error {
	f.started = true
	f.rt = rt
	return nil
}

func strPtr(s string) *string { return &s }

func TestResolveStatePath_DefaultsToHomeDotVDM(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, initErr := ResolveStatePath(nil)
	require.Nil(t, initErr)
	require.Equal(t, filepath.Join(home, StateDirName), path)
}

func TestResolveStatePath_IndependentOfWorkingDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	origWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(origWD) })

	path, initErr := ResolveStatePath(nil)
	require.Nil(t, initErr)
	require.Equal(t, filepath.Join(home, StateDirName), path)
}

func TestResolveStatePath_OverrideUsedVerbatim(t *testing.T) {
	path, initErr := ResolveStatePath(strPtr("/some/abs/path"))
	require.Nil(t, initErr)
	require.Equal(t, "/some/abs/path", path)
}

func TestEnsureStateDir_ExistingWritable(t *testing.T) {
	require.Nil(t, EnsureStateDir(t.TempDir()))
}

func TestEnsureStateDir_ExistingNotWritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))

	initErr := EnsureStateDir(dir)
	require.NotNil(t, initErr)
	require.Equal(t, FailurePermission, initErr.Kind)
}

func TestEnsureStateDir_CreatesMissingWithParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", StateDirName)

	require.Nil(t, EnsureStateDir(path))
	require.DirExists(t, path)
}

func TestEnsureStateDir_CreationFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o500))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })

	initErr := EnsureStateDir(filepath.Join(parent, "child"))
	require.NotNil(t, initErr)
	require.Equal(t, FailureIO, initErr.Kind)
}

func TestEnsureStateDir_PathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	initErr := EnsureStateDir(file)
	require.NotNil(t, initErr)
	require.Equal(t, FailureIO, initErr.Kind)
}

func TestRun_CreatesDirAndInvokesEntryPoint(t *testing.T) {
	t.Setenv("VDM_HOME", t.TempDir())
	statePath := filepath.Join(t.TempDir(), "testvdm")

	entry := &fakeEntryPoint{}
	opts := config.Options{Path: strPtr(statePath), Server: strPtr("localhost:8080")}
	require.NoError(t, Run(context.Background(), opts, entry))

	require.DirExists(t, statePath)
	require.True(t, entry.started)
	require.Equal(t, statePath, entry.rt.StatePath)
	require.NotNil(t, entry.rt.Server)
	require.Equal(t, "localhost:8080", *entry.rt.Server)
}

func TestRun_NoFlagsUsesExistingHomeDir(t *testing.T) {
	install := t.TempDir()
	t.Setenv("VDM_HOME", install)
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, StateDirName), 0o755))

	entry := &fakeEntryPoint{}
	require.NoError(t, Run(context.Background(), config.Options{}, entry))

	require.True(t, entry.started)
	require.Equal(t, filepath.Join(home, StateDirName), entry.rt.StatePath)
	require.Nil(t, entry.rt.Server)
	require.Equal(t, install, entry.rt.Install.Dir)
}

func TestRun_PermissionFailureNeverStartsService(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	t.Setenv("VDM_HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o500))

	entry := &fakeEntryPoint{}
	err := Run(context.Background(), config.Options{Path: strPtr(dir)}, entry)

	require.Error(t, err)
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	require.Equal(t, FailurePermission, initErr.Kind)
	require.False(t, entry.started)
}

func TestRun_CreationFailureNeverStartsService(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses directory permissions")
	}
	t.Setenv("VDM_HOME", t.TempDir())
	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o500))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })

	entry := &fakeEntryPoint{}
	err := Run(context.Background(), config.Options{Path: strPtr(filepath.Join(parent, "child"))}, entry)

	require.Error(t, err)
	var initErr *InitError
	require.ErrorAs(t, err, &initErr)
	require.Equal(t, FailureIO, initErr.Kind)
	require.False(t, entry.started)
}

func TestInit_ResolvesVersionFromInstallRoot(t *testing.T) {
	install := t.TempDir()
	t.Setenv("VDM_HOME", install)
	require.NoError(t, os.WriteFile(filepath.Join(install, "version.txt"), []byte("6.4\n"), 0o644))

	rt, initErr := Init(config.Options{Path: strPtr(filepath.Join(t.TempDir(), StateDirName))})
	require.Nil(t, initErr)
	require.Equal(t, "6.4", rt.Version)
	require.Equal(t, install, rt.Install.Dir)
}
