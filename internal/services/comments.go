package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pennitter/pennitter-backend/internal/models"
)

// Comments manages the parent-pointer comment forest attached to posts.
type Comments struct {
	db    *mongo.Database
	posts *Posts
	now   func() time.Time
}

func NewComments(db *mongo.Database, posts *Posts) *Comments {
	return &Comments{db: db, posts: posts, now: time.Now}
}

// Create validates that the post exists and that parentCommentID is either
// the sentinel or a comment already on the post, then inserts the comment and
// registers its id on the post.
func (s *Comments) Create(ctx context.Context, userID, postID, parentCommentID, text string) (string, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", models.NewNotFoundError("User not found")
	}

	post, err := s.posts.ByID(ctx, postID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return "", models.NewNotFoundError("Post does not exist! Please refresh the page!")
		}
		return "", err
	}

	if parentCommentID != models.TopLevelParentID {
		found := false
		for _, id := range post.CommentIDs {
			if id.Hex() == parentCommentID {
				found = true
				break
			}
		}
		if !found {
			return "", models.NewNotFoundError("The Comment/Reply you are replying to does not exist! Please refresh the page!")
		}
	}

	comment := models.Comment{
		UserID:          uid,
		ParentCommentID: parentCommentID,
		Text:            text,
		CreatedDate:     s.now(),
		UpdatedDate:     nil,
	}
	result, err := s.db.Collection(commentsCollection).InsertOne(ctx, comment)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	commentID := result.InsertedID.(primitive.ObjectID)
	if err := s.posts.AddCommentID(ctx, postID, commentID); err != nil {
		return "", err
	}
	return commentID.Hex(), nil
}

// ByID loads a comment document.
func (s *Comments) ByID(ctx context.Context, id string) (*models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("Comment not found")
	}
	var comment models.Comment
	err = s.db.Collection(commentsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("Comment not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// Update replaces the comment text and stamps updatedDate, returning the
// updated document.
func (s *Comments) Update(ctx context.Context, id, text string) (*models.Comment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("Comment not found")
	}
	updated := s.now()
	var comment models.Comment
	err = s.db.Collection(commentsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"text": text, "updatedDate": updated}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("Comment not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

// CommentNode is the {id, parent} pair used for descendant computation.
type CommentNode struct {
	ID              primitive.ObjectID `bson:"_id"`
	ParentCommentID string             `bson:"parentCommentId"`
}

// DescendantIDs computes the full reply subtree below rootID over the given
// nodes. The walk is iterative over a children index, so reply depth is
// bounded only by memory, not the call stack.
func DescendantIDs(rootID string, nodes []CommentNode) []primitive.ObjectID {
	children := make(map[string][]CommentNode, len(nodes))
	for _, n := range nodes {
		children[n.ParentCommentID] = append(children[n.ParentCommentID], n)
	}

	var descendants []primitive.ObjectID
	stack := []string{rootID}
	for len(stack) > 0 {
		parent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, child := range children[parent] {
			descendants = append(descendants, child.ID)
			stack = append(stack, child.ID.Hex())
		}
	}
	return descendants
}

// DeleteSubtree deletes the comment and its entire reply subtree, removing
// each deleted id from the post's comment set. Ancestors and unrelated
// siblings are untouched.
func (s *Comments) DeleteSubtree(ctx context.Context, postID, commentID string) error {
	root, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return models.NewNotFoundError("Comment not found")
	}

	allIDs, err := s.posts.CommentIDs(ctx, postID)
	if err != nil {
		return err
	}

	cur, err := s.db.Collection(commentsCollection).Find(ctx,
		bson.M{"_id": bson.M{"$in": allIDs}},
		options.Find().SetProjection(bson.M{"_id": 1, "parentCommentId": 1}))
	if err != nil {
		return models.NewInternalError(err)
	}
	var nodes []CommentNode
	if err := cur.All(ctx, &nodes); err != nil {
		return models.NewInternalError(err)
	}

	doomed := DescendantIDs(commentID, nodes)
	doomed = append(doomed, root)

	for _, id := range doomed {
		if err := s.posts.RemoveCommentID(ctx, postID, id); err != nil {
			return err
		}
		if _, err := s.db.Collection(commentsCollection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return models.NewInternalError(err)
		}
	}
	return nil
}
