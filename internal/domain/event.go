package domain

import (
	"encoding/json"
	"time"
)

// NormalizedEvent is the uniform intermediate record every source
// strategy produces. It lives only between extraction and the note
// upsert; the raw payload is retained inside the resulting note for
// debugging.
type NormalizedEvent struct {
	Date                time.Time
	Title               string
	Body                string
	Color               string
	Icon                string
	Priority            string
	SourceIntegrationID string
	// ExternalID keys the idempotent upsert when the source provides a
	// stable identifier (order id). Empty for generic sources, which key
	// on (integration, date, title) instead.
	ExternalID string
	RawPayload json.RawMessage
}

// SyncAttempt aggregates per-item results of one integration sync run.
type SyncAttempt struct {
	IntegrationID string
	StartedAt     time.Time
	Processed     int
	Succeeded     int
	Failed        int
	Errors        []string
}

// RecordSuccess counts one upserted event.
func (a *SyncAttempt) RecordSuccess() {
	a.Processed++
	a.Succeeded++
}

// RecordFailure counts one failed event and keeps its error for the
// integration's status message.
func (a *SyncAttempt) RecordFailure(err error) {
	a.Processed++
	a.Failed++
	if err != nil {
		a.Errors = append(a.Errors, err.Error())
	}
}

// Outcome collapses the counters into the persisted sync status. A run
// with no failures is a success even when it produced zero events.
func (a *SyncAttempt) Outcome() SyncStatus {
	switch {
	case a.Failed == 0:
		return SyncSuccess
	case a.Succeeded > 0:
		return SyncPartial
	default:
		return SyncError
	}
}
