package auth

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

type Metrics struct {
	OperationsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the auth counters on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_operations_total",
				Help: "Total number of auth operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
	}

	reg.MustRegister(m.OperationsTotal)

	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}

	outcome := outcomeSuccess
	var authErr *Error
	switch {
	case err == nil:
	case errors.As(err, &authErr):
		outcome = outcomeRejected
	default:
		outcome = outcomeError
	}

	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}
