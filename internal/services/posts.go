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

// Posts provides accessors and mutations over the posts collection, including
// likes and the activity feed.
type Posts struct {
	db    *mongo.Database
	users *Users
	now   func() time.Time
}

func NewPosts(db *mongo.Database, users *Users) *Posts {
	return &Posts{db: db, users: users, now: time.Now}
}

// Create inserts a post and appends its id to the owner's post list.
func (s *Posts) Create(ctx context.Context, userID, text, mediaURL string) (string, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", models.NewNotFoundError("User not found")
	}

	post := models.Post{
		UserID:      uid,
		Text:        text,
		MediaURL:    mediaURL,
		CreatedDate: s.now(),
		UpdatedDate: nil,
		Likes:       []primitive.ObjectID{},
		HiddenBy:    []primitive.ObjectID{},
		CommentIDs:  []primitive.ObjectID{},
	}
	result, err := s.db.Collection(postsCollection).InsertOne(ctx, post)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	postID := result.InsertedID.(primitive.ObjectID)
	if err := s.users.AddPostID(ctx, userID, postID); err != nil {
		return "", err
	}
	return postID.Hex(), nil
}

// ByID loads a full post document.
func (s *Posts) ByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("Post not found")
	}
	var post models.Post
	err = s.db.Collection(postsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// MediaURL returns the post's media URL, which may be empty.
func (s *Posts) MediaURL(ctx context.Context, id string) (string, error) {
	post, err := s.ByID(ctx, id)
	if err != nil {
		return "", err
	}
	return post.MediaURL, nil
}

// Likes returns the ids of users who liked the post.
func (s *Posts) Likes(ctx context.Context, id string) ([]primitive.ObjectID, error) {
	post, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Likes == nil {
		return []primitive.ObjectID{}, nil
	}
	return post.Likes, nil
}

// CommentIDs returns every comment id on the post, top-level and nested.
func (s *Posts) CommentIDs(ctx context.Context, postID string) ([]primitive.ObjectID, error) {
	post, err := s.ByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.CommentIDs == nil {
		return []primitive.ObjectID{}, nil
	}
	return post.CommentIDs, nil
}

// CommentIDsByParent returns the post's direct children of parentCommentID
// (sentinel for top-level), oldest first.
func (s *Posts) CommentIDsByParent(ctx context.Context, postID, parentCommentID string) ([]primitive.ObjectID, error) {
	allIDs, err := s.CommentIDs(ctx, postID)
	if err != nil {
		return nil, err
	}

	cur, err := s.db.Collection(commentsCollection).Find(ctx,
		bson.M{"_id": bson.M{"$in": allIDs}, "parentCommentId": parentCommentID},
		options.Find().
			SetSort(bson.D{{Key: "createdDate", Value: 1}}).
			SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// ActivityFeedIDs returns post ids by the user and everyone they follow,
// newest first.
func (s *Posts) ActivityFeedIDs(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.NewNotFoundError("User not found")
	}

	var doc struct {
		Follows []primitive.ObjectID `bson:"follows"`
	}
	err = s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": uid},
		options.FindOne().SetProjection(bson.M{"follows": 1})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	authors := append([]primitive.ObjectID{uid}, doc.Follows...)
	cur, err := s.db.Collection(postsCollection).Find(ctx,
		bson.M{"userId": bson.M{"$in": authors}},
		options.Find().
			SetSort(bson.D{{Key: "createdDate", Value: -1}}).
			SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// Update sets the post's text and media URL and stamps updatedDate, returning
// the updated document.
func (s *Posts) Update(ctx context.Context, id, text, mediaURL string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("Post not found")
	}
	updated := s.now()
	var post models.Post
	err = s.db.Collection(postsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"text": text, "mediaUrl": mediaURL, "updatedDate": updated}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("Post not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// AddCommentID registers a comment id on the post.
func (s *Posts) AddCommentID(ctx context.Context, postID string, commentID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return models.NewNotFoundError("Post not found")
	}
	result, err := s.db.Collection(postsCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"commentIds": commentID}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("Post not found")
	}
	return nil
}

// RemoveCommentID unregisters a comment id from the post.
func (s *Posts) RemoveCommentID(ctx context.Context, postID string, commentID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return models.NewNotFoundError("Post not found")
	}
	result, err := s.db.Collection(postsCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"commentIds": commentID}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("Post not found")
	}
	return nil
}

// Delete removes the post, all of its comments, and the post id from the
// owner's list. Media objects are the caller's concern.
func (s *Posts) Delete(ctx context.Context, postID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return models.NewNotFoundError("Post not found")
	}

	commentIDs, err := s.CommentIDs(ctx, postID)
	if err != nil {
		return err
	}
	if len(commentIDs) > 0 {
		if _, err := s.db.Collection(commentsCollection).DeleteMany(ctx,
			bson.M{"_id": bson.M{"$in": commentIDs}}); err != nil {
			return models.NewInternalError(err)
		}
	}

	if err := s.users.RemovePostID(ctx, userID, oid); err != nil {
		return err
	}

	result, err := s.db.Collection(postsCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewInternalError(err)
	}
	if result.DeletedCount == 0 {
		return models.NewNotFoundError("Post not found")
	}
	return nil
}

// DeleteAllForUser deletes every post the user owns. No rollback on partial
// failure; each deletion is individually idempotent.
func (s *Posts) DeleteAllForUser(ctx context.Context, userID string) error {
	postIDs, err := s.users.PostIDs(ctx, userID)
	if err != nil {
		return err
	}
	for _, postID := range postIDs {
		if err := s.Delete(ctx, postID.Hex(), userID); err != nil {
			return err
		}
	}
	return nil
}

// Like adds the user to the post's likes and returns the updated set.
func (s *Posts) Like(ctx context.Context, postID, userID string) ([]primitive.ObjectID, error) {
	return s.updateLikes(ctx, postID, userID, "$addToSet", true)
}

// Unlike removes the user from the post's likes and returns the updated set.
func (s *Posts) Unlike(ctx context.Context, postID, userID string) ([]primitive.ObjectID, error) {
	return s.updateLikes(ctx, postID, userID, "$pull", false)
}

func (s *Posts) updateLikes(ctx context.Context, postID, userID, op string, missingIsError bool) ([]primitive.ObjectID, error) {
	pid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, models.NewNotFoundError("Post does not exist! Please refresh the page!")
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.NewNotFoundError("User not found")
	}

	var post models.Post
	err = s.db.Collection(postsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": pid},
		bson.M{op: bson.M{"likes": uid}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"likes": 1}),
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		if missingIsError {
			return nil, models.NewNotFoundError("Post does not exist! Please refresh the page!")
		}
		return []primitive.ObjectID{}, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if post.Likes == nil {
		return []primitive.ObjectID{}, nil
	}
	return post.Likes, nil
}

// RemoveUserFromAllLikes pulls the user out of every post's like set. Used
// when the account is deleted.
func (s *Posts) RemoveUserFromAllLikes(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	_, err = s.db.Collection(postsCollection).UpdateMany(ctx,
		bson.M{"likes": uid},
		bson.M{"$pull": bson.M{"likes": uid}})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
