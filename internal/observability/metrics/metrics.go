package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for conversation turns.
type ConversationMetrics struct {
	turnsTotal    *prometheus.CounterVec
	modelLatency  prometheus.Histogram
	bookingsTotal *prometheus.CounterVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_ai",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Conversation turns processed, by outcome",
		}, []string{"outcome"}),
		modelLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "appointment_ai",
			Subsystem: "conversation",
			Name:      "model_latency_seconds",
			Help:      "Latency of language model completions",
			Buckets:   prometheus.DefBuckets,
		}),
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "appointment_ai",
			Subsystem: "booking",
			Name:      "commits_total",
			Help:      "Booking commit attempts, by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.modelLatency, m.bookingsTotal)
	return m
}

// Turn outcomes.
const (
	TurnReplied   = "replied"
	TurnOffered   = "booking_offered"
	TurnModelFail = "model_failed"
)

// Booking outcomes.
const (
	BookingCommitted   = "committed"
	BookingUnavailable = "unavailable"
	BookingFailed      = "failed"
)

func (m *ConversationMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *ConversationMetrics) ObserveModelLatency(seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.Observe(seconds)
}

func (m *ConversationMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}
