package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Text        string             `bson:"text" json:"text"`
	MediaURL    string             `bson:"mediaUrl" json:"mediaUrl"`
	CreatedDate time.Time          `bson:"createdDate" json:"createdDate"`
	UpdatedDate *time.Time         `bson:"updatedDate" json:"updatedDate"`

	Likes    []primitive.ObjectID `bson:"likes" json:"likes"`
	HiddenBy []primitive.ObjectID `bson:"hiddenBy" json:"hiddenBy"`

	// CommentIDs holds every comment on the post, top-level and nested.
	// Invariant: it is exactly the set of comment documents whose parent
	// chain traces back to this post.
	CommentIDs []primitive.ObjectID `bson:"commentIds" json:"commentIds"`
}
