package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/voltgrid/vdm/internal/metrics"
	"github.com/voltgrid/vdm/internal/server/handlers"
)

type fakeDaemon struct {
	startTime time.Time
}

func (f *fakeDaemon) GetStatus() string       { return "running" }
func (f *fakeDaemon) GetStartTime() time.Time { return f.startTime }
func (f *fakeDaemon) GetVersion() string      { return "6.4" }
func (f *fakeDaemon) GetStatePath() string    { return "/home/u/.vdm" }
func (f *fakeDaemon) VerbNames() []string     { return []string{"start"} }

func startTestServer(t *testing.T) *Server {
	t.Helper()
	start := time.Now()
	rec := metrics.NewRecorder(nil, start)
	s := New(Config{Bind: "127.0.0.1:0"}, &fakeDaemon{startTime: start}, rec)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop(ctx)
	})
	return s
}

func get(t *testing.T, s *Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://%s%s", s.Addr(), path))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_ServesHealth(t *testing.T) {
	s := startTestServer(t)

	resp := get(t, s, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var health handlers.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, "6.4", health.Version)
}

func TestServer_ServesStatusAndVersion(t *testing.T) {
	s := startTestServer(t)

	resp := get(t, s, "/api/1.0/status")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status handlers.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.Equal(t, "/home/u/.vdm", status.StatePath)
	require.Equal(t, []string{"start"}, status.Verbs)

	resp = get(t, s, "/api/1.0/version")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ServesMetrics(t *testing.T) {
	s := startTestServer(t)

	// Generate one observed request first.
	_ = get(t, s, "/health")

	resp := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_BindFailure(t *testing.T) {
	first := startTestServer(t)

	second := New(Config{Bind: first.Addr()}, &fakeDaemon{startTime: time.Now()}, nil)
	err := second.Start(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "bind")
}

func TestServer_StopUnblocksClients(t *testing.T) {
	s := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	_, err := http.Get(fmt.Sprintf("http://%s/health", s.Addr()))
	require.Error(t, err)
}
