package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var Observer = &Metrics{
	prometheus: NewPrometheusMetrics(),
}

func init() {
	prometheus.MustRegister(Observer.prometheus.Collectors()...)
}

type Metrics struct {
	prometheus Prometheus
}

// Prediction records a successful classification.
func (m *Metrics) Prediction(label, mode string, confidence float64) {
	m.prometheus.Predictions.WithLabelValues(label, mode).Inc()
	m.prometheus.Confidence.Observe(confidence)
}

// Error records a failed classification.
func (m *Metrics) Error(kind string) {
	m.prometheus.Errors.WithLabelValues(kind).Inc()
}

// Request records the duration of an http request.
func (m *Metrics) Request(path string, code int, seconds float64) {
	m.prometheus.Latency.WithLabelValues(path, strconv.Itoa(code)).Observe(seconds)
}
