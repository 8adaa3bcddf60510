package metrics

import (
	"net/http"

	"floristeria-calendar-sync/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SyncMetrics exposes sync counters on the default Prometheus registry.
type SyncMetrics struct {
	syncRuns        *prometheus.CounterVec
	eventsProcessed *prometheus.CounterVec
	webhookHandled  *prometheus.CounterVec
}

// New registers and returns the sync metric collectors.
func New() *SyncMetrics {
	return &SyncMetrics{
		syncRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "calendar_sync_runs_total",
			Help: "Completed integration sync runs by outcome.",
		}, []string{"status"}),
		eventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "calendar_sync_events_total",
			Help: "Normalized events upserted, by result.",
		}, []string{"result"}),
		webhookHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "calendar_sync_webhooks_total",
			Help: "Order webhook deliveries processed, by upsert action.",
		}, []string{"action"}),
	}
}

// SyncRun counts one finished integration sync.
func (m *SyncMetrics) SyncRun(status domain.SyncStatus) {
	m.syncRuns.WithLabelValues(string(status)).Inc()
}

// EventProcessed counts one event upsert attempt.
func (m *SyncMetrics) EventProcessed(succeeded bool) {
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	m.eventsProcessed.WithLabelValues(result).Inc()
}

// WebhookHandled counts one processed webhook delivery.
func (m *SyncMetrics) WebhookHandled(action string) {
	m.webhookHandled.WithLabelValues(action).Inc()
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
