package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the visit lifecycle.
// Tracks requests by origin, transitions, gate validations and their latency.
type Metrics struct {
	VisitsCreated    *prometheus.CounterVec
	Transitions      *prometheus.CounterVec
	GateValidations  *prometheus.CounterVec
	GateValidateTime prometheus.Histogram
}

// New registers the visit metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VisitsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_visits_created_total",
			Help: "Visitor requests opened, by origin (guard or resident)",
		}, []string{"origin"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_visit_transitions_total",
			Help: "Visitor request transitions, by action and outcome",
		}, []string{"action", "outcome"}),
		GateValidations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_visit_gate_validations_total",
			Help: "Gate validate-visit calls, by result",
		}, []string{"result"}),
		GateValidateTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gatehouse_visit_gate_validation_duration_seconds",
			Help:    "Duration of gate validate-and-stamp (terminal critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementCreated(origin string) {
	m.VisitsCreated.WithLabelValues(origin).Inc()
}

// IncrementTransition records an approve, decline, checkin or checkout attempt.
func (m *Metrics) IncrementTransition(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.Transitions.WithLabelValues(action, outcome).Inc()
}

// ObserveGateValidation records the result and duration of a gate validation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveGateValidation(valid bool, start time.Time) {
	result := "denied"
	if valid {
		result = "admitted"
	}
	m.GateValidations.WithLabelValues(result).Inc()
	m.GateValidateTime.Observe(time.Since(start).Seconds())
}
