package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pennitter/pennitter-backend/internal/models"
)

// Hidden maintains the paired user.hiddenPostIds / post.hiddenBy sets.
type Hidden struct {
	db *mongo.Database
}

func NewHidden(db *mongo.Database) *Hidden {
	return &Hidden{db: db}
}

// HiddenPostIDs returns the posts the user has hidden.
func (s *Hidden) HiddenPostIDs(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.NewNotFoundError("User not found")
	}
	var doc struct {
		HiddenPostIDs []primitive.ObjectID `bson:"hiddenPostIds"`
	}
	err = s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"hiddenPostIds": 1})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return []primitive.ObjectID{}, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if doc.HiddenPostIDs == nil {
		return []primitive.ObjectID{}, nil
	}
	return doc.HiddenPostIDs, nil
}

// Hide records userID hiding postID on both documents and returns the user's
// updated hidden set.
func (s *Hidden) Hide(ctx context.Context, userID, postID string) ([]primitive.ObjectID, error) {
	uid, pid, err := hexPair(userID, postID)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.Collection(usersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": uid},
		bson.M{"$addToSet": bson.M{"hiddenPostIds": pid}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"hiddenPostIds": 1}),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	result, err := s.db.Collection(postsCollection).UpdateOne(ctx,
		bson.M{"_id": pid},
		bson.M{"$addToSet": bson.M{"hiddenBy": uid}})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if result.MatchedCount == 0 {
		return nil, models.NewNotFoundError("Post does not exist! Please refresh the page!")
	}

	return user.HiddenPostIDs, nil
}

// Unhide is the symmetric removal.
func (s *Hidden) Unhide(ctx context.Context, userID, postID string) ([]primitive.ObjectID, error) {
	uid, pid, err := hexPair(userID, postID)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.Collection(usersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": uid},
		bson.M{"$pull": bson.M{"hiddenPostIds": pid}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"hiddenPostIds": 1}),
	).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return []primitive.ObjectID{}, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if _, err := s.db.Collection(postsCollection).UpdateOne(ctx,
		bson.M{"_id": pid},
		bson.M{"$pull": bson.M{"hiddenBy": uid}}); err != nil {
		return nil, models.NewInternalError(err)
	}

	if user.HiddenPostIDs == nil {
		return []primitive.ObjectID{}, nil
	}
	return user.HiddenPostIDs, nil
}

// RemoveUserFromAllHiddenBy pulls the user out of every post's hiddenBy set.
// Used when the account is deleted.
func (s *Hidden) RemoveUserFromAllHiddenBy(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	_, err = s.db.Collection(postsCollection).UpdateMany(ctx,
		bson.M{"hiddenBy": uid},
		bson.M{"$pull": bson.M{"hiddenBy": uid}})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func hexPair(userID, postID string) (primitive.ObjectID, primitive.ObjectID, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, models.NewNotFoundError("User not found")
	}
	pid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, models.NewNotFoundError("Post not found")
	}
	return uid, pid, nil
}
