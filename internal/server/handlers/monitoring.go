// Package handlers provides HTTP handlers for the management API's
// monitoring and introspection endpoints.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	vdmerrors "github.com/voltgrid/vdm/internal/errors"
)

// DaemonInterface defines the daemon methods needed by the monitoring
// handlers.
type DaemonInterface interface {
	GetStatus() string
	GetStartTime() time.Time
	GetVersion() string
	GetStatePath() string
	VerbNames() []string
}

// MonitoringHandlers contains monitoring-related HTTP handlers.
type MonitoringHandlers struct {
	daemon       DaemonInterface
	errorAdapter *vdmerrors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance.
func NewMonitoringHandlers(daemon DaemonInterface) *MonitoringHandlers {
	return &MonitoringHandlers{
		daemon:       daemon,
		errorAdapter: vdmerrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HealthResponse is the payload of the health check endpoint.
type HealthResponse struct {
	Status       string    `json:"status"`
	DaemonStatus string    `json:"daemon_status"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
	Uptime       float64   `json:"uptime_seconds"`
}

// StatusResponse is the payload of the status endpoint.
type StatusResponse struct {
	Status    string    `json:"status"`
	StatePath string    `json:"state_path"`
	StartTime time.Time `json:"start_time"`
	Uptime    float64   `json:"uptime_seconds"`
	Verbs     []string  `json:"verbs"`
}

// VersionResponse is the payload of the version endpoint.
type VersionResponse struct {
	Version string `json:"version"`
}

// HandleHealthCheck handles the health check endpoint.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}

	health := &HealthResponse{
		Status:       "healthy",
		DaemonStatus: h.daemon.GetStatus(),
		Timestamp:    time.Now().UTC(),
		Version:      h.daemon.GetVersion(),
		Uptime:       time.Since(h.daemon.GetStartTime()).Seconds(),
	}
	h.writeJSON(w, r, health)
}

// HandleStatus reports the daemon's runtime state.
func (h *MonitoringHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}

	status := &StatusResponse{
		Status:    h.daemon.GetStatus(),
		StatePath: h.daemon.GetStatePath(),
		StartTime: h.daemon.GetStartTime().UTC(),
		Uptime:    time.Since(h.daemon.GetStartTime()).Seconds(),
		Verbs:     h.daemon.VerbNames(),
	}
	h.writeJSON(w, r, status)
}

// HandleVersion reports the resolved runtime version.
func (h *MonitoringHandlers) HandleVersion(w http.ResponseWriter, r *http.Request) {
	if !h.requireGet(w, r) {
		return
	}
	h.writeJSON(w, r, &VersionResponse{Version: h.daemon.GetVersion()})
}

func (h *MonitoringHandlers) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	err := vdmerrors.ValidationError("invalid HTTP method").
		WithContext("method", r.Method).
		WithContext("allowed_method", http.MethodGet)
	h.errorAdapter.WriteErrorResponse(w, r, err)
	return false
}

func (h *MonitoringHandlers) writeJSON(w http.ResponseWriter, r *http.Request, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to write response", "path", r.URL.Path, "error", err)
	}
}
