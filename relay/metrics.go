package relay

import "github.com/prometheus/client_golang/prometheus"

const (
	kindChat      = "chat"
	kindSignaling = "signaling"
	kindUnknown   = "unknown"

	outcomeForwarded    = "forwarded"
	outcomeNotConnected = "not_connected"
	outcomeUnavailable  = "recipient_unavailable"
	outcomeProtocol     = "protocol_violation"
	outcomeUnknownUser  = "unknown_sender"
)

// Metrics counts relay traffic. A nil *Metrics is valid and records nothing.
type Metrics struct {
	frames   *prometheus.CounterVec
	sessions prometheus.Gauge
	rejected prometheus.Counter
}

// NewMetrics creates the relay collectors and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchrelay",
			Subsystem: "relay",
			Name:      "frames_total",
			Help:      "Inbound frames by kind and outcome.",
		}, []string{"kind", "outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchrelay",
			Subsystem: "relay",
			Name:      "sessions_active",
			Help:      "Sessions currently bound to a profile.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "matchrelay",
			Subsystem: "relay",
			Name:      "handshakes_rejected_total",
			Help:      "Handshakes whose identity did not resolve.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.frames, m.sessions, m.rejected)
	}
	return m
}

func (m *Metrics) frame(kind, outcome string) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}

func (m *Metrics) handshakeRejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}
