// Package metrics exposes Prometheus instrumentation for a setup run.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "seedmaster"

// Bootstrap attempt results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metrics holds the collectors of one run. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	providerPolls     prometheus.Counter
	bootstrapAttempts *prometheus.CounterVec
	phaseDuration     *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerPolls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_polls_total",
			Help:      "Total number of provider action polls",
		}),
		bootstrapAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bootstrap_attempts_total",
				Help:      "Total number of remote bootstrap attempts by result",
			},
			[]string{"result"},
		),
		phaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "phase_duration_seconds",
				Help:      "Duration of each setup phase in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 14), // 100ms to ~27m
			},
			[]string{"phase"},
		),
	}
	m.registry.MustRegister(m.providerPolls, m.bootstrapAttempts, m.phaseDuration)
	return m
}

// Registry returns the registry holding the run's collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPoll counts one provider action poll.
func (m *Metrics) RecordPoll() {
	if m == nil {
		return
	}
	m.providerPolls.Inc()
}

// RecordBootstrapAttempt counts one bootstrap attempt by its outcome.
func (m *Metrics) RecordBootstrapAttempt(err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.bootstrapAttempts.WithLabelValues(result).Inc()
}

// ObservePhase records how long a phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// Serve exposes the metrics on addr until the server is closed.
func (m *Metrics) Serve(addr string) (*http.Server, <-chan error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return srv, errCh
}
