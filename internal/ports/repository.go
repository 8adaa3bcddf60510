package ports

import (
	"context"
	"time"

	"floristeria-calendar-sync/internal/domain"
)

// IntegrationRepository defines the interface for integration persistence.
type IntegrationRepository interface {
	// Create stores a new integration configuration.
	Create(ctx context.Context, integration *domain.Integration) error

	// GetByID retrieves one integration; (nil, nil) when absent.
	GetByID(ctx context.Context, id string) (*domain.Integration, error)

	// List returns all integrations in id order.
	List(ctx context.Context) ([]*domain.Integration, error)

	// ListEnabled returns enabled integrations in id order, the fixed
	// iteration order of a poll cycle.
	ListEnabled(ctx context.Context) ([]*domain.Integration, error)

	// Update overwrites an integration's configuration fields.
	Update(ctx context.Context, integration *domain.Integration) error

	// Delete removes an integration by id.
	Delete(ctx context.Context, id string) error

	// UpdateSyncStatus records the outcome of a sync attempt. This is the
	// only mutation the sync path performs on an integration.
	UpdateSyncStatus(ctx context.Context, id string, at time.Time, status domain.SyncStatus, lastError string) error
}

// NoteRepository defines the interface for calendar note persistence as
// seen by the sync subsystem. Upsert is the single write operation: the
// find-by-key and insert-or-update happen inside the store's own
// transaction boundary so a cancelled caller never observes a partially
// written note.
type NoteRepository interface {
	// Upsert inserts or updates the note keyed by (external id embedded in
	// the title, date) for commerce events, or (integration, date, title)
	// for generic events. Returns the action taken.
	Upsert(ctx context.Context, note *domain.CalendarNote) (domain.UpsertAction, error)

	// FindByDate returns the sync-owned notes for one calendar day.
	FindByDate(ctx context.Context, date time.Time) ([]*domain.CalendarNote, error)
}
