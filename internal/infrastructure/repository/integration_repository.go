package repository

import (
	"context"
	"fmt"
	"time"

	"floristeria-calendar-sync/internal/domain"
	"floristeria-calendar-sync/internal/infrastructure/repository/entity"
	"floristeria-calendar-sync/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoIntegrationRepository implements IntegrationRepository using MongoDB.
type MongoIntegrationRepository struct {
	collection *mongo.Collection
}

// NewMongoIntegrationRepository creates a new MongoDB integration repository.
func NewMongoIntegrationRepository(db *mongo.Database) ports.IntegrationRepository {
	r := &MongoIntegrationRepository{
		collection: db.Collection("integrations"),
	}
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "enabled", Value: 1}},
		Options: options.Index(),
	}
	_, _ = r.collection.Indexes().CreateOne(context.Background(), indexModel)
	return r
}

// Create stores a new integration.
func (r *MongoIntegrationRepository) Create(ctx context.Context, integration *domain.Integration) error {
	doc := entity.IntegrationDocFromDomain(integration)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	doc.UpdatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create integration: %w", err)
	}
	return nil
}

// GetByID retrieves an integration by its id.
func (r *MongoIntegrationRepository) GetByID(ctx context.Context, id string) (*domain.Integration, error) {
	var doc entity.IntegrationDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get integration: %w", err)
	}
	return doc.ToDomain(), nil
}

// List returns all integrations in id order.
func (r *MongoIntegrationRepository) List(ctx context.Context) ([]*domain.Integration, error) {
	return r.find(ctx, bson.M{})
}

// ListEnabled returns enabled integrations in id order. This fixes the
// iteration order of a poll cycle.
func (r *MongoIntegrationRepository) ListEnabled(ctx context.Context) ([]*domain.Integration, error) {
	return r.find(ctx, bson.M{"enabled": true})
}

func (r *MongoIntegrationRepository) find(ctx context.Context, filter bson.M) ([]*domain.Integration, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list integrations: %w", err)
	}
	defer cursor.Close(ctx)

	var integrations []*domain.Integration
	for cursor.Next(ctx) {
		var doc entity.IntegrationDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode integration: %w", err)
		}
		integrations = append(integrations, doc.ToDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate integrations: %w", err)
	}
	return integrations, nil
}

// Update overwrites an integration's configuration.
func (r *MongoIntegrationRepository) Update(ctx context.Context, integration *domain.Integration) error {
	doc := entity.IntegrationDocFromDomain(integration)
	doc.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return fmt.Errorf("failed to update integration: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrIntegrationNotFound
	}
	return nil
}

// Delete removes an integration by id.
func (r *MongoIntegrationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete integration: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrIntegrationNotFound
	}
	return nil
}

// UpdateSyncStatus records a sync attempt's outcome on the integration.
func (r *MongoIntegrationRepository) UpdateSyncStatus(ctx context.Context, id string, at time.Time, status domain.SyncStatus, lastError string) error {
	update := bson.M{"$set": bson.M{
		"lastSyncAt":     at,
		"lastSyncStatus": string(status),
		"lastError":      lastError,
	}}
	result, err := r.collection.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrIntegrationNotFound
	}
	return nil
}
