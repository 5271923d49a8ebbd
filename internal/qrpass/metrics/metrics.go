package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the QR pass engine: issued passes, scan outcomes, state
// transitions and code collisions.
type Metrics struct {
	PassesIssued   prometheus.Counter
	Scans          *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	CodeCollisions prometheus.Counter
	ScanLockBusy   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PassesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_qr_passes_issued_total",
			Help: "QR passes issued by residents",
		}),
		Scans: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_qr_scans_total",
			Help: "QR payload validations at the gate, by result",
		}, []string{"result"}),
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_qr_transitions_total",
			Help: "QR pass check-in and check-out attempts, by outcome",
		}, []string{"action", "outcome"}),
		CodeCollisions: f.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_qr_code_collisions_total",
			Help: "Generated QR codes rejected by the uniqueness constraint",
		}),
		ScanLockBusy: f.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_qr_scan_lock_busy_total",
			Help: "Check-ins turned away because another terminal held the scan lock",
		}),
	}
}

func (m *Metrics) IncrementIssued() { m.PassesIssued.Inc() }

func (m *Metrics) IncrementScan(valid bool) {
	result := "denied"
	if valid {
		result = "valid"
	}
	m.Scans.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementTransition(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.Transitions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) IncrementCollision() { m.CodeCollisions.Inc() }

func (m *Metrics) IncrementLockBusy() { m.ScanLockBusy.Inc() }
