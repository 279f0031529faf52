package state

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), CatalogFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCatalog_RecordStartupAndInfo(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	require.NoError(t, c.RecordStartup(ctx, "6.4", 4242, started))

	version, ok, err := c.Info(ctx, "version")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "6.4", version)

	pid, ok, err := c.Info(ctx, "pid")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "4242", pid)

	startedAt, ok, err := c.Info(ctx, "started_at")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, started.Format(time.RFC3339), startedAt)
}

func TestCatalog_InfoMissingKey(t *testing.T) {
	c := openTestCatalog(t)

	_, ok, err := c.Info(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCatalog_SetInfoOverwrites(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.SetInfo(ctx, "status", "starting"))
	require.NoError(t, c.SetInfo(ctx, "status", "running"))

	value, ok, err := c.Info(ctx, "status")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "running", value)
}

func TestCatalog_SnapshotsNewestFirst(t *testing.T) {
	c := openTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, c.RecordSnapshot(ctx, "running", 10*time.Second))
	require.NoError(t, c.RecordSnapshot(ctx, "running", 70*time.Second))
	require.NoError(t, c.RecordSnapshot(ctx, "stopping", 130*time.Second))

	snapshots, err := c.Snapshots(ctx, 2)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	require.Equal(t, "stopping", snapshots[0].Status)
	require.Equal(t, 130.0, snapshots[0].UptimeSeconds)
	require.Equal(t, "running", snapshots[1].Status)
	require.Greater(t, snapshots[0].ID, snapshots[1].ID)
}

func TestCatalog_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), CatalogFileName)
	ctx := context.Background()

	c, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, c.SetInfo(ctx, "version", "6.4"))
	require.NoError(t, c.Close())

	c2, err := Open(dbPath)
	require.NoError(t, err)
	defer c2.Close()

	value, ok, err := c2.Info(ctx, "version")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "6.4", value)
}
