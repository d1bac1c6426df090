package entity

import (
	"time"

	"shopify-metrics-dashboard/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MongoShopDoc represents a store connection in MongoDB.
type MongoShopDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Domain      string             `bson:"domain"`
	AccessToken string             `bson:"accessToken"`
	Scope       string             `bson:"scope"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// ToDomain converts the MongoDB document to a domain entity.
func (d *MongoShopDoc) ToDomain() *domain.Shop {
	return &domain.Shop{
		ID:          d.ID.Hex(),
		Domain:      d.Domain,
		AccessToken: d.AccessToken,
		Scope:       d.Scope,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// MongoShopDocFromDomain converts a domain entity to a MongoDB document.
func MongoShopDocFromDomain(shop *domain.Shop) *MongoShopDoc {
	doc := &MongoShopDoc{
		Domain:      shop.Domain,
		AccessToken: shop.AccessToken,
		Scope:       shop.Scope,
		CreatedAt:   shop.CreatedAt,
		UpdatedAt:   shop.UpdatedAt,
	}

	if shop.ID != "" {
		if objID, err := primitive.ObjectIDFromHex(shop.ID); err == nil {
			doc.ID = objID
		}
	}

	return doc
}

// MongoAuditDoc represents one append-only audit event in MongoDB.
type MongoAuditDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Actor     string             `bson:"actor"`
	Action    string             `bson:"action"`
	ShopID    string             `bson:"shopId,omitempty"`
	Meta      map[string]any     `bson:"meta,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// MongoAuditDocFromDomain converts a domain event to a MongoDB document.
func MongoAuditDocFromDomain(event *domain.AuditEvent) *MongoAuditDoc {
	return &MongoAuditDoc{
		Actor:     event.Actor,
		Action:    event.Action,
		ShopID:    event.ShopID,
		Meta:      event.Meta,
		CreatedAt: event.CreatedAt,
	}
}
