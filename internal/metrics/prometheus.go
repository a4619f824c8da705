package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "homedash"

var (
	// MessagesReceived telemetry messages delivered by the bus
	MessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_messages_total",
			Help:      "Total number of telemetry messages received",
		},
	)

	// DecodeFailures messages dropped because the envelope was malformed
	DecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_decode_failures_total",
			Help:      "Total number of telemetry messages dropped as malformed",
		},
	)

	// CoercedFields fields defaulted to zero because they were not numeric
	CoercedFields = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_coerced_fields_total",
			Help:      "Total number of telemetry fields defaulted because they could not be parsed",
		},
		[]string{"metric"},
	)

	// SensorValue latest ingested value per metric
	SensorValue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_value",
			Help:      "Latest value reported per sensor metric",
		},
		[]string{"metric"},
	)

	// MotionEvents readings that reported motion
	MotionEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "motion_events_total",
			Help:      "Total number of readings that reported motion",
		},
	)

	// GasHazard 1 while the gas alert is raised
	GasHazard = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gas_hazard",
			Help:      "Whether the gas hazard alert is raised (1) or not (0)",
		},
	)

	// HistoryLength ticks currently held in the history
	HistoryLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "history_length",
			Help:      "Number of points currently held per metric history",
		},
	)

	// PollTicks dashboard refreshes
	PollTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_ticks_total",
			Help:      "Total number of dashboard refresh ticks",
		},
	)

	// CommandsDispatched actuator commands by action and outcome
	CommandsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_dispatched_total",
			Help:      "Total number of actuator commands dispatched",
		},
		[]string{"action", "status"},
	)

	// RequestsTotal HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration HTTP request latency
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// WebSocketClients connected live view clients
	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Number of connected live view clients",
		},
	)
)

// BoolToFloat converts a flag to a gauge value
func BoolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
