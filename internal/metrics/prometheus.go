package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus holds the collectors of the service.
type Prometheus struct {
	Predictions *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Confidence  prometheus.Histogram
	Latency     *prometheus.HistogramVec
}

func NewPrometheusMetrics() Prometheus {
	return Prometheus{
		Predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "geotextile",
				Name:      "predictions",
			}, []string{"type", "mode"}),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "geotextile",
				Name:      "errors",
			}, []string{"kind"}),
		Confidence: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "geotextile",
				Name:      "confidence",
				Buckets:   prometheus.LinearBuckets(10, 10, 9),
			}),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "geotextile",
				Name:      "request_duration_seconds",
				Buckets:   prometheus.DefBuckets,
			}, []string{"path", "code"}),
	}
}

// Collectors lists all collectors for registration.
func (p Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.Predictions, p.Errors, p.Confidence, p.Latency}
}
