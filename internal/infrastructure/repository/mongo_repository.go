package repository

import (
	"context"
	"fmt"
	"time"

	"shopify-metrics-dashboard/internal/domain"
	"shopify-metrics-dashboard/internal/infrastructure/repository/entity"
	"shopify-metrics-dashboard/internal/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoShopRepository implements ShopRepository using MongoDB.
type MongoShopRepository struct {
	collection *mongo.Collection
}

// NewMongoShopRepository creates a new MongoDB shop repository.
func NewMongoShopRepository(db *mongo.Database) ports.ShopRepository {
	return &MongoShopRepository{
		collection: db.Collection("shops"),
	}
}

// UpsertByDomain saves or updates a shop keyed by its unique domain.
// Reconnecting an existing store keeps the original id and createdAt
// and refreshes token, scope and updatedAt in place.
func (r *MongoShopRepository) UpsertByDomain(ctx context.Context, shop *domain.Shop) (*domain.Shop, error) {
	now := time.Now().UTC()

	filter := bson.M{"domain": shop.Domain}
	update := bson.M{
		"$set": bson.M{
			"accessToken": shop.AccessToken,
			"scope":       shop.Scope,
			"updatedAt":   now,
		},
		"$setOnInsert": bson.M{
			"domain":    shop.Domain,
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc entity.MongoShopDoc
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to upsert shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// GetByID retrieves a shop by its opaque identifier.
func (r *MongoShopRepository) GetByID(ctx context.Context, id string) (*domain.Shop, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc entity.MongoShopDoc
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return doc.ToDomain(), nil
}

// GetByDomain retrieves a shop by its canonical domain.
func (r *MongoShopRepository) GetByDomain(ctx context.Context, shopDomain string) (*domain.Shop, error) {
	var doc entity.MongoShopDoc
	err := r.collection.FindOne(ctx, bson.M{"domain": shopDomain}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	return doc.ToDomain(), nil
}
