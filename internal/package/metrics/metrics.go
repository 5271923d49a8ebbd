package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks parcels through the gate.
type Metrics struct {
	Registered    prometheus.Counter
	Deliveries    *prometheus.CounterVec
	OTPRejections prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Registered: f.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_packages_registered_total",
			Help: "Packages registered by residents",
		}),
		Deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gatehouse_packages_delivered_total",
			Help: "Packages handed over, by how the hand-over was confirmed",
		}, []string{"method"}),
		OTPRejections: f.NewCounter(prometheus.CounterOpts{
			Name: "gatehouse_package_otp_rejections_total",
			Help: "Delivery OTPs refused at the gate",
		}),
	}
}

func (m *Metrics) IncrementRegistered() { m.Registered.Inc() }

func (m *Metrics) IncrementDelivered(method string) { m.Deliveries.WithLabelValues(method).Inc() }

func (m *Metrics) IncrementOTPRejected() { m.OTPRejections.Inc() }
