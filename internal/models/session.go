package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the single active session per user, upserted on login. A newer
// login replaces the token, orphaning the previous one.
type Session struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	Token    string             `bson:"jwtToken" json:"-"`
	LastPing time.Time          `bson:"lastPing" json:"lastPing"`
}
