package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TopLevelParentID is the sentinel parent id for comments attached directly
// to a post rather than to another comment.
const TopLevelParentID = "-1"

// Comment documents form a forest per post, rooted at the sentinel.
// ParentCommentID is either TopLevelParentID or the hex id of another
// comment on the same post.
type Comment struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	ParentCommentID string             `bson:"parentCommentId" json:"parentCommentId"`
	Text            string             `bson:"text" json:"text"`
	CreatedDate     time.Time          `bson:"createdDate" json:"createdDate"`
	UpdatedDate     *time.Time         `bson:"updatedDate" json:"updatedDate"`
}
