package domain

import "time"

// Note priorities, lowest to highest.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// CalendarNote is the target entity shared with the calendar pages. The
// sync subsystem only ever writes notes attributed to the configured
// system actor; administrator-authored notes are untouched.
//
// Invariant: for a given (SourceIntegrationID, ExternalID) pair there is
// at most one note per date. Re-processing the same external event
// updates the existing note instead of duplicating it.
type CalendarNote struct {
	ID                  string
	Date                time.Time // calendar day, UTC midnight
	Title               string
	Content             string
	Color               string
	Priority            string
	SourceIntegrationID string
	ExternalID          string
	CreatedBy           string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// UpsertAction reports what an idempotent note write actually did.
type UpsertAction string

const (
	UpsertCreated UpsertAction = "created"
	UpsertUpdated UpsertAction = "updated"
)
