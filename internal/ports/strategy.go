package ports

import (
	"floristeria-calendar-sync/internal/domain"
)

// SourceStrategy turns one fetched payload into zero or more normalized
// events using the integration's mapping configuration. Strategies are
// pure: no I/O, no clock beyond date defaulting, and per-item problems
// degrade or skip rather than failing the whole payload.
type SourceStrategy interface {
	// Kind is the source kind this strategy handles. Dispatch is by this
	// tag only.
	Kind() domain.SourceKind

	// Extract maps the decoded payload into normalized events.
	Extract(payload any, integration *domain.Integration) ([]domain.NormalizedEvent, error)
}

// SyncMetrics records sync observability counters. A no-op implementation
// is acceptable anywhere metrics are not wired.
type SyncMetrics interface {
	SyncRun(status domain.SyncStatus)
	EventProcessed(succeeded bool)
	WebhookHandled(action string)
}
