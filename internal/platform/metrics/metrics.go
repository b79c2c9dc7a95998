package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	deliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pr_insights",
		Name:      "webhook_deliveries_total",
		Help:      "Entregas de webhook recibidas, por tipo de evento y resultado",
	}, []string{"event_type", "result"})

	aggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pr_insights",
		Name:      "timeline_aggregation_seconds",
		Help:      "Duración del armado del timeline por request",
		Buckets:   prometheus.DefBuckets,
	})

	aggregationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pr_insights",
		Name:      "timeline_aggregations_total",
		Help:      "Agregaciones de timeline por resultado",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(deliveriesTotal, aggregationDuration, aggregationTotal)
}

// CountDelivery registra una entrega ingestada: "stored", "duplicate",
// "rejected" o "error".
func CountDelivery(eventType, result string) {
	if eventType == "" {
		eventType = "unknown"
	}
	deliveriesTotal.WithLabelValues(eventType, result).Inc()
}

// ObserveAggregation registra duración y resultado de una agregación.
func ObserveAggregation(d time.Duration, err error) {
	aggregationDuration.Observe(d.Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	aggregationTotal.WithLabelValues(outcome).Inc()
}
