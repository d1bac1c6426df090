package domain

import "time"

// Session represents one in-flight OAuth round trip, keyed by the
// random state value embedded in the authorize redirect.
type Session struct {
	State     string    `json:"state" bson:"_id"`
	Shop      string    `json:"shop" bson:"shop"`
	Scopes    []string  `json:"scopes" bson:"scopes"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
