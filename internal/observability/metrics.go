package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service. A nil
// *Metrics is valid and records nothing, so tests can run the pipeline
// without touching the default registry.
type Metrics struct {
	MessagesProcessed *prometheus.CounterVec
	HandlerErrors     *prometheus.CounterVec
	BlockedMessages   *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		MessagesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Messages processed by classified intent and handler.",
		}, []string{"intent", "handler"}),
		HandlerErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_errors_total",
			Help:      "Handler results carrying an error indicator, by handler.",
		}, []string{"handler"}),
		BlockedMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocked_messages_total",
			Help:      "Messages rejected by the safety filter, by reason.",
		}, []string{"reason"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_duration_ms",
			Help:      "End-to-end message pipeline duration in milliseconds.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000},
		}),
	}
}

func (m *Metrics) RecordMessage(intent, handler string) {
	if m == nil {
		return
	}
	m.MessagesProcessed.WithLabelValues(intent, handler).Inc()
}

func (m *Metrics) RecordHandlerError(handler string) {
	if m == nil {
		return
	}
	m.HandlerErrors.WithLabelValues(handler).Inc()
}

func (m *Metrics) RecordBlocked(reason string) {
	if m == nil {
		return
	}
	m.BlockedMessages.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObservePipelineDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.PipelineDuration.Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
