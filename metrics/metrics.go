// Package metrics exposes Prometheus collectors for a connection engine.
//
// Every method is safe to call on a nil *Metrics, so components can take an
// optional *Metrics without checking for it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ircconn"

type Metrics struct {
	linesRead      prometheus.Counter
	linesWritten   *prometheus.CounterVec
	queueDepth     *prometheus.GaugeVec
	connectResults *prometheus.CounterVec
	connErrors     prometheus.Counter
	requeued       *prometheus.CounterVec
	lag            prometheus.Gauge
	state          prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration, which is handy in tests.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		linesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_read_total",
			Help:      "Lines decoded from the server.",
		}),
		linesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_written_total",
			Help:      "Lines written to the server, by priority.",
		}, []string{"priority"}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_depth",
			Help:      "Lines waiting in the outbound queue, by priority.",
		}, []string{"priority"}),
		connectResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connect_attempts_total",
			Help:      "Connection attempts, by result.",
		}, []string{"result"}),
		connErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_errors_total",
			Help:      "Connection error episodes reported to handlers.",
		}),
		requeued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requeued_total",
			Help:      "Lines put back on their queue after a failed write.",
		}, []string{"priority"}),
		lag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lag_seconds",
			Help:      "Round trip of the last heartbeat probe.",
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state",
			Help:      "Connection state (0 disconnected, 1 connecting, 2 connected, 3 registered, 4 error).",
		}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.linesRead,
		m.linesWritten,
		m.queueDepth,
		m.connectResults,
		m.connErrors,
		m.requeued,
		m.lag,
		m.state,
	}
}

func (m *Metrics) LineRead() {
	if m == nil {
		return
	}
	m.linesRead.Inc()
}

func (m *Metrics) LineWritten(priority string) {
	if m == nil {
		return
	}
	m.linesWritten.WithLabelValues(priority).Inc()
}

func (m *Metrics) QueueDepth(priority string, depth int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(priority).Set(float64(depth))
}

func (m *Metrics) ConnectAttempt(ok bool) {
	if m == nil {
		return
	}

	result := "failure"
	if ok {
		result = "success"
	}
	m.connectResults.WithLabelValues(result).Inc()
}

func (m *Metrics) ConnectionError() {
	if m == nil {
		return
	}
	m.connErrors.Inc()
}

func (m *Metrics) Requeued(priority string) {
	if m == nil {
		return
	}
	m.requeued.WithLabelValues(priority).Inc()
}

func (m *Metrics) Lag(seconds float64) {
	if m == nil {
		return
	}
	m.lag.Set(seconds)
}

func (m *Metrics) State(state int) {
	if m == nil {
		return
	}
	m.state.Set(float64(state))
}
