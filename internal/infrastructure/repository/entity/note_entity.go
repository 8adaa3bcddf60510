package entity

import (
	"time"

	"floristeria-calendar-sync/internal/domain"
)

// CalendarNoteDoc represents a calendar note in MongoDB.
type CalendarNoteDoc struct {
	ID                  string    `bson:"_id"`
	Date                time.Time `bson:"date"`
	Title               string    `bson:"title"`
	Content             string    `bson:"content,omitempty"`
	Color               string    `bson:"color"`
	Priority            string    `bson:"priority"`
	SourceIntegrationID string    `bson:"sourceIntegrationId,omitempty"`
	ExternalID          string    `bson:"externalId,omitempty"`
	CreatedBy           string    `bson:"createdBy"`
	CreatedAt           time.Time `bson:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *CalendarNoteDoc) ToDomain() *domain.CalendarNote {
	return &domain.CalendarNote{
		ID:                  d.ID,
		Date:                d.Date,
		Title:               d.Title,
		Content:             d.Content,
		Color:               d.Color,
		Priority:            d.Priority,
		SourceIntegrationID: d.SourceIntegrationID,
		ExternalID:          d.ExternalID,
		CreatedBy:           d.CreatedBy,
		CreatedAt:           d.CreatedAt,
		UpdatedAt:           d.UpdatedAt,
	}
}

// CalendarNoteDocFromDomain converts a domain entity to a MongoDB document.
func CalendarNoteDocFromDomain(note *domain.CalendarNote) *CalendarNoteDoc {
	return &CalendarNoteDoc{
		ID:                  note.ID,
		Date:                note.Date,
		Title:               note.Title,
		Content:             note.Content,
		Color:               note.Color,
		Priority:            note.Priority,
		SourceIntegrationID: note.SourceIntegrationID,
		ExternalID:          note.ExternalID,
		CreatedBy:           note.CreatedBy,
		CreatedAt:           note.CreatedAt,
		UpdatedAt:           note.UpdatedAt,
	}
}
