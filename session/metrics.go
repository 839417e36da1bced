package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics about visits run by sessions
type Metrics struct {
	Visits *prometheus.CounterVec
	Active prometheus.Gauge
}

// NewMetrics registers with reg, a nil reg leaves them unregistered
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Visits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "visitkit",
			Name:      "visits_total",
			Help:      "Visits that reached a terminal state, by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "visitkit",
			Name:      "visits_active",
			Help:      "Visits started and not yet terminated.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Visits, m.Active)
	}
	return m
}
