package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoSessionRepository persists in-flight OAuth sessions keyed by the
// random state value.
type MongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new MongoDB session repository.
func NewMongoSessionRepository(db *mongo.Database) ports.SessionRepository {
	return &MongoSessionRepository{
		collection: db.Collection("oauth_sessions"),
	}
}

// Create stores a session. The state value is the document key, so a
// colliding state fails rather than silently overwriting.
func (r *MongoSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Get retrieves a session by state. Expired sessions report absent.
func (r *MongoSessionRepository) Get(ctx context.Context, state string) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": state}).Decode(&session)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, nil
	}
	return &session, nil
}

// Delete removes a consumed session.
func (r *MongoSessionRepository) Delete(ctx context.Context, state string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": state}); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
