package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/infrastructure/repository/entity"
	"shopify-metrics-dashboard/internal/ports"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoAuditRepository implements the append-only audit sink using
// MongoDB. Events are inserted once; there is no update or delete path.
type MongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates a new MongoDB audit repository.
func NewMongoAuditRepository(db *mongo.Database) ports.AuditRepository {
	return &MongoAuditRepository{
		collection: db.Collection("audit_events"),
	}
}

// Append writes one immutable audit event.
func (r *MongoAuditRepository) Append(ctx context.Context, event *domain.AuditEvent) error {
	doc := entity.MongoAuditDocFromDomain(event)
	doc.ID = primitive.NewObjectID()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to append audit event: %w", err)
	}
	return nil
}
