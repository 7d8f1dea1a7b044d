package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the relay's Prometheus instruments.
type Metrics struct {
	ActiveSessions prometheus.Gauge
	SessionsTotal  prometheus.Counter

	AudioBytesForwarded prometheus.Counter
	AudioFramesDropped  prometheus.Counter

	TurnsTotal     *prometheus.CounterVec // kind: final|partial
	ResponsesTotal *prometheus.CounterVec // character id

	UpstreamDials      prometheus.Counter
	UpstreamDialErrors prometheus.Counter
	UpstreamErrors     prometheus.Counter

	ClientMessageErrors prometheus.Counter
}

// New creates and registers all relay metrics on the given registerer.
// Tests pass a fresh prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "relay_active_sessions",
			Help: "Current number of connected client sessions",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_sessions_total",
			Help: "Total number of client sessions accepted",
		}),
		AudioBytesForwarded: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_audio_bytes_forwarded_total",
			Help: "Total audio bytes forwarded to the transcription service",
		}),
		AudioFramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_audio_frames_dropped_total",
			Help: "Total client audio frames dropped outside the listening state",
		}),
		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_turns_total",
			Help: "Total transcription turns received, by kind",
		}, []string{"kind"}),
		ResponsesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "relay_responses_total",
			Help: "Total character responses dispatched, by character",
		}, []string{"character"}),
		UpstreamDials: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_upstream_dials_total",
			Help: "Total upstream connection attempts",
		}),
		UpstreamDialErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_upstream_dial_errors_total",
			Help: "Total failed upstream connection attempts",
		}),
		UpstreamErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_upstream_errors_total",
			Help: "Total upstream errors after a session was established",
		}),
		ClientMessageErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "relay_client_message_errors_total",
			Help: "Total malformed or unexpected client messages",
		}),
	}
}
