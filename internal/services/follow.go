package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pennitter/pennitter-backend/internal/models"
)

// Follow maintains the follows/followers adjacency between user documents.
// The paired writes are two independent updates, not a transaction; $addToSet
// and $pull keep repeated calls idempotent.
type Follow struct {
	db *mongo.Database
}

func NewFollow(db *mongo.Database) *Follow {
	return &Follow{db: db}
}

// AllUsersExcept returns id, username and profile image of every user other
// than the given one.
func (s *Follow) AllUsersExcept(ctx context.Context, userID string) ([]models.UserSummary, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.NewNotFoundError("User not found")
	}
	cur, err := s.db.Collection(usersCollection).Find(ctx,
		bson.M{"_id": bson.M{"$ne": oid}},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "profileImage": 1}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	users := []models.UserSummary{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Follows returns the ids the user follows.
func (s *Follow) Follows(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	return s.adjacency(ctx, userID, "follows")
}

// Followers returns the ids following the user.
func (s *Follow) Followers(ctx context.Context, userID string) ([]primitive.ObjectID, error) {
	return s.adjacency(ctx, userID, "followers")
}

func (s *Follow) adjacency(ctx context.Context, userID, field string) ([]primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.NewNotFoundError("User not found")
	}
	var doc struct {
		Follows   []primitive.ObjectID `bson:"follows"`
		Followers []primitive.ObjectID `bson:"followers"`
	}
	err = s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{field: 1})).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return []primitive.ObjectID{}, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := doc.Follows
	if field == "followers" {
		ids = doc.Followers
	}
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	return ids, nil
}

// FollowUser adds target to the user's follows and the user to the target's
// followers.
func (s *Follow) FollowUser(ctx context.Context, userID, targetID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	tid, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return models.NewNotFoundError("User does not exist! Please refresh the page!")
	}

	count, err := s.db.Collection(usersCollection).CountDocuments(ctx, bson.M{"_id": tid})
	if err != nil {
		return models.NewInternalError(err)
	}
	if count == 0 {
		return models.NewNotFoundError("User does not exist! Please refresh the page!")
	}

	if _, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$addToSet": bson.M{"follows": tid}}); err != nil {
		return models.NewInternalError(err)
	}
	if _, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": tid},
		bson.M{"$addToSet": bson.M{"followers": uid}}); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UnfollowUser is the symmetric removal.
func (s *Follow) UnfollowUser(ctx context.Context, userID, targetID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	tid, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}

	if _, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": uid},
		bson.M{"$pull": bson.M{"follows": tid}}); err != nil {
		return models.NewInternalError(err)
	}
	if _, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": tid},
		bson.M{"$pull": bson.M{"followers": uid}}); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UnfollowAll removes the user from the followers list of everyone they
// follow. Used when the account is deleted.
func (s *Follow) UnfollowAll(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	follows, err := s.Follows(ctx, userID)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(usersCollection).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": follows}},
		bson.M{"$pull": bson.M{"followers": uid}})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// AllUnfollow removes the user from the follows list of everyone following
// them. Used when the account is deleted.
func (s *Follow) AllUnfollow(ctx context.Context, userID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	followers, err := s.Followers(ctx, userID)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(usersCollection).UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": followers}},
		bson.M{"$pull": bson.M{"follows": uid}})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
