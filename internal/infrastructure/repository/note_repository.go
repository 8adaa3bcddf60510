package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"floristeria-calendar-sync/internal/domain"
	"floristeria-calendar-sync/internal/infrastructure/repository/entity"
	"floristeria-calendar-sync/internal/ports"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoNoteRepository implements NoteRepository using MongoDB. It shares
// the calendar_notes collection with the rest of the application but
// only ever touches sync-owned notes.
type MongoNoteRepository struct {
	collection *mongo.Collection
}

// NewMongoNoteRepository creates a new MongoDB calendar note repository.
func NewMongoNoteRepository(db *mongo.Database) ports.NoteRepository {
	r := &MongoNoteRepository{
		collection: db.Collection("calendar_notes"),
	}
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "externalId", Value: 1},
			{Key: "sourceIntegrationId", Value: 1},
		},
		Options: options.Index(),
	}
	_, _ = r.collection.Indexes().CreateOne(context.Background(), indexModel)
	return r
}

// upsertFilter selects the existing note this event would key to.
// Events with an external id match on it, with a title-fragment fallback
// for notes written before the field existed ("Order #<id> -" embedded
// in the title). Generic events key on (integration, date, title).
func upsertFilter(note *domain.CalendarNote) bson.M {
	if note.ExternalID != "" {
		titlePattern := fmt.Sprintf(`Order #%s -`, regexp.QuoteMeta(note.ExternalID))
		return bson.M{
			"date": note.Date,
			"$or": bson.A{
				bson.M{"externalId": note.ExternalID},
				bson.M{"title": primitive.Regex{Pattern: titlePattern}},
			},
		}
	}
	return bson.M{
		"date":                note.Date,
		"sourceIntegrationId": note.SourceIntegrationID,
		"title":               note.Title,
	}
}

// Upsert inserts or updates the note for its stable key in one write.
// Concurrent writers for the same key race find-then-write; last write
// wins, which is the documented consistency model.
func (r *MongoNoteRepository) Upsert(ctx context.Context, note *domain.CalendarNote) (domain.UpsertAction, error) {
	var existing entity.CalendarNoteDoc
	err := r.collection.FindOne(ctx, upsertFilter(note)).Decode(&existing)
	if err != nil && err != mongo.ErrNoDocuments {
		return "", fmt.Errorf("failed to find note: %w", err)
	}

	now := time.Now().UTC()
	if err == nil {
		update := bson.M{"$set": bson.M{
			"title":               note.Title,
			"content":             note.Content,
			"color":               note.Color,
			"priority":            note.Priority,
			"sourceIntegrationId": note.SourceIntegrationID,
			"externalId":          note.ExternalID,
			"updatedAt":           now,
		}}
		if _, err := r.collection.UpdateByID(ctx, existing.ID, update); err != nil {
			return "", fmt.Errorf("failed to update note: %w", err)
		}
		note.ID = existing.ID
		note.CreatedAt = existing.CreatedAt
		note.UpdatedAt = now
		return domain.UpsertUpdated, nil
	}

	doc := entity.CalendarNoteDocFromDomain(note)
	doc.ID = uuid.NewString()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create note: %w", err)
	}
	note.ID = doc.ID
	note.CreatedAt = now
	note.UpdatedAt = now
	return domain.UpsertCreated, nil
}

// FindByDate returns the sync-owned notes for one calendar day.
func (r *MongoNoteRepository) FindByDate(ctx context.Context, date time.Time) ([]*domain.CalendarNote, error) {
	filter := bson.M{
		"date": date,
		"$or": bson.A{
			bson.M{"sourceIntegrationId": bson.M{"$nin": bson.A{nil, ""}}},
			bson.M{"externalId": bson.M{"$nin": bson.A{nil, ""}}},
		},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer cursor.Close(ctx)

	var notes []*domain.CalendarNote
	for cursor.Next(ctx) {
		var doc entity.CalendarNoteDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode note: %w", err)
		}
		notes = append(notes, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}
