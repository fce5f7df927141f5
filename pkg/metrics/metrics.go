// Package metrics exposes Prometheus collectors for crawl runs.
//
// Every Metrics value owns its registry, so several crawlers (or tests) can
// coexist in one process. All methods are safe to call on a nil *Metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors updated during a crawl
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  prometheus.Histogram
	pagesTotal       prometheus.Counter
	recordsTotal     prometheus.Counter
	skippedTotal     prometheus.Counter
	checkpointWrites *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
}

// New registers a fresh set of collectors on a private registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sinacrawler_requests_total",
			Help: "Feed API requests, labeled by HTTP status code (0 for transport errors).",
		}, []string{"code"}),
		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sinacrawler_request_duration_seconds",
			Help:    "Histogram of feed API request latencies.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		pagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sinacrawler_pages_total",
			Help: "Feed pages fetched and decoded.",
		}),
		recordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sinacrawler_records_total",
			Help: "Records appended to run logs.",
		}),
		skippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "sinacrawler_items_skipped_total",
			Help: "Feed items skipped because they carry no author id.",
		}),
		checkpointWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sinacrawler_checkpoint_writes_total",
			Help: "Checkpoint store writes, labeled by status.",
		}, []string{"status"}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sinacrawler_runs_total",
			Help: "Completed crawl runs, labeled by outcome.",
		}, []string{"outcome"}),
	}
}

// ObserveRequest records one feed API round trip
func (m *Metrics) ObserveRequest(statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
	m.requestDuration.Observe(duration.Seconds())
}

// ObservePage records a decoded page and what was extracted from it
func (m *Metrics) ObservePage(records, skipped int) {
	if m == nil {
		return
	}
	m.pagesTotal.Inc()
	m.recordsTotal.Add(float64(records))
	m.skippedTotal.Add(float64(skipped))
}

// ObserveCheckpointWrite records a checkpoint flush attempt
func (m *Metrics) ObserveCheckpointWrite(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.checkpointWrites.WithLabelValues(status).Inc()
}

// ObserveRun records how a run ended
func (m *Metrics) ObserveRun(outcome string) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
