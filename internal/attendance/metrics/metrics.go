package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts guard check-ins and check-outs by outcome.
type Metrics struct {
	Punches *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Punches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_guard_attendance_total",
			Help: "Guard check-in and check-out attempts, by action and outcome",
		}, []string{"action", "outcome"}),
	}
}

func (m *Metrics) IncrementPunch(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.Punches.WithLabelValues(action, outcome).Inc()
}
