package authz

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts gate decisions.
type Metrics struct {
	Decisions *prometheus.CounterVec
}

// NewMetrics creates the decision counter and registers it with reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "softdesk_authz_decisions_total",
				Help: "Authorization decisions by resource kind, action and outcome",
			},
			[]string{"kind", "action", "allowed", "reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Decisions)
	}
	return m
}

func (m *Metrics) observe(kind Kind, action Action, d Decision) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(string(kind), string(action), strconv.FormatBool(d.Allowed), string(d.Reason)).Inc()
}
