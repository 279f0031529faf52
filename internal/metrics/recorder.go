// Package metrics exposes Prometheus instrumentation for the daemon.
package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// Recorder registers and updates the daemon's Prometheus metrics.
type Recorder struct {
	registry  *prom.Registry
	requests  *prom.CounterVec
	duration  *prom.HistogramVec
	snapshots prom.Counter
	uptime    prom.GaugeFunc
}

// NewRecorder constructs and registers the daemon metrics on reg.
// A nil registry gets a fresh one.
func NewRecorder(reg *prom.Registry, startTime time.Time) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{registry: reg}
	r.requests = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "vdm",
		Name:      "http_requests_total",
		Help:      "HTTP requests by path and status code",
	}, []string{"path", "status"})
	r.duration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "vdm",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by path",
		Buckets:   prom.DefBuckets,
	}, []string{"path"})
	r.snapshots = prom.NewCounter(prom.CounterOpts{
		Namespace: "vdm",
		Name:      "state_snapshots_total",
		Help:      "State snapshots recorded in the catalog",
	})
	r.uptime = prom.NewGaugeFunc(prom.GaugeOpts{
		Namespace: "vdm",
		Name:      "uptime_seconds",
		Help:      "Seconds since the daemon started",
	}, func() float64 {
		return time.Since(startTime).Seconds()
	})
	reg.MustRegister(r.requests, r.duration, r.snapshots, r.uptime)
	return r
}

// Registry returns the underlying registry for the /metrics handler.
func (r *Recorder) Registry() *prom.Registry {
	return r.registry
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(path string, status int, d time.Duration) {
	r.requests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	r.duration.WithLabelValues(path).Observe(d.Seconds())
}

// SnapshotTaken counts one successful state snapshot.
func (r *Recorder) SnapshotTaken() {
	r.snapshots.Inc()
}
