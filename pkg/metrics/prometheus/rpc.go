// Package prometheus provides a Prometheus-backed implementation of
// metrics.RPCMetrics.
package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/gbxremote/pkg/metrics"
)

// rpcMetrics is the Prometheus implementation of metrics.RPCMetrics.
type rpcMetrics struct {
	callsTotal        *prometheus.CounterVec
	callDuration      *prometheus.HistogramVec
	callsInFlight     *prometheus.GaugeVec
	callbacksTotal    *prometheus.CounterVec
	scriptCallbacks   *prometheus.CounterVec
	frameReadBytes    prometheus.Histogram
	frameWriteBytes   prometheus.Histogram
	pendingCalls      prometheus.Gauge
	timeoutsTotal     *prometheus.CounterVec
	decodeErrors      *prometheus.CounterVec
	connectionsOpened prometheus.Counter
	connectionsClosed *prometheus.CounterVec
}

// NewRPCMetrics creates a new Prometheus-backed RPCMetrics instance.
//
// Returns nil if metrics are not enabled (metrics.InitRegistry not called),
// so callers can pass the result straight through without a branch.
func NewRPCMetrics() metrics.RPCMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &rpcMetrics{
		callsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbxremote_calls_total",
				Help: "Total number of XML-RPC calls issued, by method and fault code.",
			},
			[]string{"method", "fault_code"},
		),
		callDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gbxremote_call_duration_ms",
				Help:    "Call round-trip duration in milliseconds.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
			[]string{"method"},
		),
		callsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gbxremote_calls_in_flight",
				Help: "Number of calls currently awaiting a response.",
			},
			[]string{"method"},
		),
		callbacksTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbxremote_callbacks_total",
				Help: "Total number of regular (non-script) callbacks dispatched, by wire method name.",
			},
			[]string{"method"},
		),
		scriptCallbacks: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbxremote_script_callbacks_total",
				Help: "Total number of ManiaPlanet.ModeScriptCallbackArray callbacks dispatched, by inner name and prompted state.",
			},
			[]string{"name", "prompted"},
		),
		frameReadBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gbxremote_frame_read_bytes",
				Help:    "Size of decoded inbound frame payloads.",
				Buckets: prometheus.ExponentialBuckets(32, 2, 16),
			},
		),
		frameWriteBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gbxremote_frame_write_bytes",
				Help:    "Size of encoded outbound frame payloads.",
				Buckets: prometheus.ExponentialBuckets(32, 2, 16),
			},
		),
		pendingCalls: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "gbxremote_pending_calls",
				Help: "Current size of the handle-keyed pending call table.",
			},
		),
		timeoutsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbxremote_timeouts_total",
				Help: "Total number of calls or trigger callbacks that exceeded their deadline, by method.",
			},
			[]string{"method"},
		),
		decodeErrors: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbxremote_decode_errors_total",
				Help: "Total number of frame or value decode failures, by stage.",
			},
			[]string{"stage"},
		),
		connectionsOpened: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "gbxremote_connections_opened_total",
				Help: "Total number of accepted dedicated server connections.",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "gbxremote_connections_closed_total",
				Help: "Total number of closed connections, by closure reason.",
			},
			[]string{"reason"},
		),
	}
}

func (m *rpcMetrics) RecordCall(method string, duration time.Duration, faultCode int) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(method, strconv.Itoa(faultCode)).Inc()
	m.callDuration.WithLabelValues(method).Observe(float64(duration.Microseconds()) / 1000.0)
}

func (m *rpcMetrics) RecordCallStart(method string) {
	if m == nil {
		return
	}
	m.callsInFlight.WithLabelValues(method).Inc()
}

func (m *rpcMetrics) RecordCallEnd(method string) {
	if m == nil {
		return
	}
	m.callsInFlight.WithLabelValues(method).Dec()
}

func (m *rpcMetrics) RecordCallback(method string) {
	if m == nil {
		return
	}
	m.callbacksTotal.WithLabelValues(method).Inc()
}

func (m *rpcMetrics) RecordScriptCallback(name string, prompted bool) {
	if m == nil {
		return
	}
	m.scriptCallbacks.WithLabelValues(name, strconv.FormatBool(prompted)).Inc()
}

func (m *rpcMetrics) RecordFrameRead(bytes int) {
	if m == nil {
		return
	}
	m.frameReadBytes.Observe(float64(bytes))
}

func (m *rpcMetrics) RecordFrameWrite(bytes int) {
	if m == nil {
		return
	}
	m.frameWriteBytes.Observe(float64(bytes))
}

func (m *rpcMetrics) SetPendingCalls(count int) {
	if m == nil {
		return
	}
	m.pendingCalls.Set(float64(count))
}

func (m *rpcMetrics) RecordTimeout(method string) {
	if m == nil {
		return
	}
	m.timeoutsTotal.WithLabelValues(method).Inc()
}

func (m *rpcMetrics) RecordDecodeError(stage string) {
	if m == nil {
		return
	}
	m.decodeErrors.WithLabelValues(stage).Inc()
}

func (m *rpcMetrics) RecordConnectionOpened() {
	if m == nil {
		return
	}
	m.connectionsOpened.Inc()
}

func (m *rpcMetrics) RecordConnectionClosed(reason string) {
	if m == nil {
		return
	}
	m.connectionsClosed.WithLabelValues(reason).Inc()
}
