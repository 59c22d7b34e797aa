// Package metrics provides Prometheus counters for folder scans and the
// session caches.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the counters of one application session. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	folderScans     prometheus.Counter
	folderCacheHits prometheus.Counter
	iconExtractions prometheus.Counter
	iconCacheHits   prometheus.Counter
	scanDiscards    prometheus.Counter
	scanErrors      prometheus.Counter
}

// New registers the session counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		folderScans: factory.NewCounter(prometheus.CounterOpts{
			Name: "quicklaunch_folder_scans_total",
			Help: "Folder listings read from disk",
		}),
		folderCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "quicklaunch_folder_cache_hits_total",
			Help: "Folder listings served from the content cache",
		}),
		iconExtractions: factory.NewCounter(prometheus.CounterOpts{
			Name: "quicklaunch_icon_extractions_total",
			Help: "Icon extraction attempts",
		}),
		iconCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "quicklaunch_icon_cache_hits_total",
			Help: "Icons served from the icon cache",
		}),
		scanDiscards: factory.NewCounter(prometheus.CounterOpts{
			Name: "quicklaunch_scan_results_discarded_total",
			Help: "Scan results dropped because their menu was torn down",
		}),
		scanErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "quicklaunch_scan_errors_total",
			Help: "Folder menu builds that failed",
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) FolderScanned() {
	if m != nil {
		m.folderScans.Inc()
	}
}

func (m *Metrics) FolderCacheHit() {
	if m != nil {
		m.folderCacheHits.Inc()
	}
}

func (m *Metrics) IconExtracted() {
	if m != nil {
		m.iconExtractions.Inc()
	}
}

func (m *Metrics) IconCacheHit() {
	if m != nil {
		m.iconCacheHits.Inc()
	}
}

func (m *Metrics) ScanDiscarded() {
	if m != nil {
		m.scanDiscards.Inc()
	}
}

func (m *Metrics) ScanFailed() {
	if m != nil {
		m.scanErrors.Inc()
	}
}

// Counters exposes the raw collectors for assertions.
func (m *Metrics) Counters() map[string]prometheus.Counter {
	if m == nil {
		return nil
	}
	return map[string]prometheus.Counter{
		"folder_scans":      m.folderScans,
		"folder_cache_hits": m.folderCacheHits,
		"icon_extractions":  m.iconExtractions,
		"icon_cache_hits":   m.iconCacheHits,
		"scan_discards":     m.scanDiscards,
		"scan_errors":       m.scanErrors,
	}
}

// Handler returns the HTTP handler serving this session's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
