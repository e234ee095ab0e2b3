package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProfileImage is assigned on registration. It is shared by every new
// account and is never deleted from media storage.
const DefaultProfileImage = "https://res.cloudinary.com/pennitter/image/upload/defaults/defaultProfilePicture.jpg"

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"` // argon2id hash, never returned

	// Account lockout state. LockoutUntil is nil when the account is not
	// locked; a past timestamp counts as unlocked on the next check.
	LoginAttempts int        `bson:"loginAttempts" json:"-"`
	LockoutUntil  *time.Time `bson:"lockoutUntil" json:"-"`

	ProfileImage string `bson:"profileImage" json:"profileImage"`

	// Follows/Followers are mutual complements across the two affected
	// user documents, maintained by paired writes.
	Follows   []primitive.ObjectID `bson:"follows" json:"follows"`
	Followers []primitive.ObjectID `bson:"followers" json:"followers"`

	// PostIDs is ordered oldest-first in storage; reads reverse it.
	PostIDs       []primitive.ObjectID `bson:"postIds" json:"postIds"`
	HiddenPostIDs []primitive.ObjectID `bson:"hiddenPostIds" json:"hiddenPostIds"`
}

// UserSummary is the public projection of a user record.
type UserSummary struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Username     string             `bson:"username" json:"username"`
	ProfileImage string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
}
