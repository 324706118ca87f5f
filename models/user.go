package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User records are created and authenticated elsewhere; this backend only
// reads them for membership and authorization checks.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
