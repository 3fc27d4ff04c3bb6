// Package telemetry exposes scheduler activity as prometheus metrics.
// It is a pure observer: everything is derived from scheduler events and
// the Stats snapshot, and none of it feeds back into scheduling.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billie-coop/switchyard/internal/logging"
	"github.com/billie-coop/switchyard/internal/queue"
)

// Metrics wires a scheduler into a dedicated prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	enqueued *prometheus.CounterVec
	outcomes *prometheus.CounterVec

	// waitTime is queue latency (enqueue to dequeue); processTime is the
	// agent run itself. Both come from the terminal event's timestamps.
	waitTime    *prometheus.HistogramVec
	processTime *prometheus.HistogramVec

	unsubs []func()
}

// New registers collectors for the given scheduler and subscribes to its
// lifecycle events. Call Close to detach.
func New(sched *queue.Scheduler) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		registry: reg,
		enqueued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "switchyard_enqueued_total",
			Help: "Requests admitted to the waiting list",
		}, []string{"agent", "priority"}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "switchyard_requests_total",
			Help: "Requests that reached a terminal state",
		}, []string{"agent", "status"}),
		waitTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "switchyard_wait_seconds",
			Help:    "Time spent waiting before being handed to the executor",
			Buckets: prometheus.DefBuckets,
		}, []string{"agent"}),
		processTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "switchyard_process_seconds",
			Help:    "Time spent running the agent",
			Buckets: prometheus.DefBuckets,
		}, []string{"agent"}),
	}

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "switchyard_queue_depth",
		Help: "Requests currently waiting",
	}, func() float64 {
		return float64(sched.Stats().QueueSize)
	})
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "switchyard_processing",
		Help: "Requests currently in flight",
	}, func() float64 {
		return float64(sched.Stats().Processing)
	})

	m.unsubs = append(m.unsubs,
		sched.OnEnqueue(func(r queue.Request) {
			m.enqueued.WithLabelValues(r.AgentID, r.Priority.String()).Inc()
		}),
		sched.OnProcess(func(r queue.Request) {
			m.outcomes.WithLabelValues(r.AgentID, string(r.Status)).Inc()
			m.waitTime.WithLabelValues(r.AgentID).Observe(r.StartedAt.Sub(r.EnqueuedAt).Seconds())
			m.processTime.WithLabelValues(r.AgentID).Observe(r.CompletedAt.Sub(r.StartedAt).Seconds())
		}),
		sched.OnCancel(func(r queue.Request) {
			m.outcomes.WithLabelValues(r.AgentID, string(r.Status)).Inc()
		}),
	)

	return m
}

// Handler serves the registry in prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs a metrics listener on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logging.Log.Info().Str("addr", addr).Msg("metrics listener started")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Log.Error().Err(err).Msg("metrics listener failed")
	}
}

// Close detaches from the scheduler's event channels.
func (m *Metrics) Close() {
	for _, unsub := range m.unsubs {
		unsub()
	}
	m.unsubs = nil
}
