// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"secretchannel/internal/domain"
)

// Outcome labels for handshake operations.
const (
	OutcomeOK            = "ok"
	OutcomeMalformedKey  = "malformed_key"
	OutcomeBadSignature  = "bad_signature"
	OutcomeProtocolState = "protocol_state"
	OutcomeCrypto        = "crypto_error"
	OutcomeOther         = "error"
)

// Metrics groups the collectors so tests can use a private registry.
type Metrics struct {
	Operations *prometheus.CounterVec
	Phase      prometheus.Gauge
	Requests   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secretchannel",
			Name:      "handshake_operations_total",
			Help:      "Handshake operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		Phase: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "secretchannel",
			Name:      "handshake_phase",
			Help:      "Current handshake phase (0 initialized, 1 identity exchanged, 2 key exchanged).",
		}),
		Requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "secretchannel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.Operations, m.Phase, m.Requests)
	return m
}

// Observe records one handshake operation and the phase it left behind.
func (m *Metrics) Observe(op string, err error, phase domain.Phase) {
	m.Operations.WithLabelValues(op, Outcome(err)).Inc()
	m.Phase.Set(float64(phase))
}

// Outcome maps an operation error onto its metric label.
func Outcome(err error) string {
	var (
		malformed *domain.MalformedKeyError
		sig       *domain.SignatureVerificationError
		state     *domain.ProtocolStateError
		crypto    *domain.CryptoOperationError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &malformed):
		return OutcomeMalformedKey
	case errors.As(err, &sig):
		return OutcomeBadSignature
	case errors.As(err, &state):
		return OutcomeProtocolState
	case errors.As(err, &crypto):
		return OutcomeCrypto
	default:
		return OutcomeOther
	}
}
