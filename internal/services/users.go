package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pennitter/pennitter-backend/internal/models"
	"github.com/pennitter/pennitter-backend/pkg/utils"
)

const (
	usersCollection    = "users"
	postsCollection    = "posts"
	commentsCollection = "comments"
	sessionsCollection = "sessions"
)

// Users provides accessors over the users collection.
type Users struct {
	db *mongo.Database
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{db: db}
}

// Create registers a new user with default state and returns the new id.
// Username and email uniqueness is enforced case-insensitively.
func (s *Users) Create(ctx context.Context, username, email, password string) (string, error) {
	usernameTaken, emailTaken, err := s.UsernameEmailTaken(ctx, username, email, "")
	if err != nil {
		return "", err
	}
	if usernameTaken {
		return "", models.NewConflictError("Username already taken!")
	}
	if emailTaken {
		return "", models.NewConflictError("Email already taken!")
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	user := models.User{
		Username:      username,
		Email:         email,
		Password:      hashed,
		LoginAttempts: 0,
		LockoutUntil:  nil,
		ProfileImage:  models.DefaultProfileImage,
		Follows:       []primitive.ObjectID{},
		Followers:     []primitive.ObjectID{},
		PostIDs:       []primitive.ObjectID{},
		HiddenPostIDs: []primitive.ObjectID{},
	}
	result, err := s.db.Collection(usersCollection).InsertOne(ctx, user)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return result.InsertedID.(primitive.ObjectID).Hex(), nil
}

// UsernameEmailTaken reports whether the username or email is already in use
// by a user other than excludeID. Comparison is case-insensitive.
func (s *Users) UsernameEmailTaken(ctx context.Context, username, email, excludeID string) (bool, bool, error) {
	cur, err := s.db.Collection(usersCollection).Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1, "email": 1}))
	if err != nil {
		return false, false, models.NewInternalError(err)
	}

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return false, false, models.NewInternalError(err)
	}

	var usernameTaken, emailTaken bool
	for _, u := range users {
		if excludeID != "" && u.ID.Hex() == excludeID {
			continue
		}
		if strings.EqualFold(u.Username, username) {
			usernameTaken = true
		}
		if strings.EqualFold(u.Email, email) {
			emailTaken = true
		}
	}
	return usernameTaken, emailTaken, nil
}

// ByID loads a full user document.
func (s *Users) ByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.NewNotFoundError("User not found")
	}
	var user models.User
	err = s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// ProfileImage returns the user's profile image URL.
func (s *Users) ProfileImage(ctx context.Context, id string) (string, error) {
	user, err := s.ByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.ProfileImage, nil
}

// AllIDsUsernames returns every user's id and username.
func (s *Users) AllIDsUsernames(ctx context.Context) ([]models.UserSummary, error) {
	cur, err := s.db.Collection(usersCollection).Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1, "username": 1}))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	summaries := []models.UserSummary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, models.NewInternalError(err)
	}
	return summaries, nil
}

// UsernameEmail returns the username and email for a user id.
func (s *Users) UsernameEmail(ctx context.Context, id string) (username, email string, err error) {
	user, err := s.ByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return user.Username, user.Email, nil
}

// Summary returns the public projection of a user.
func (s *Users) Summary(ctx context.Context, id string) (*models.UserSummary, error) {
	user, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.UserSummary{ID: user.ID, Username: user.Username, ProfileImage: user.ProfileImage}, nil
}

// PostIDs returns the user's post ids, newest first.
func (s *Users) PostIDs(ctx context.Context, id string) ([]primitive.ObjectID, error) {
	user, err := s.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(user.PostIDs))
	for i := len(user.PostIDs) - 1; i >= 0; i-- {
		ids = append(ids, user.PostIDs[i])
	}
	return ids, nil
}

// UpdateProfile applies partial updates to username, email and profile image.
func (s *Users) UpdateProfile(ctx context.Context, id string, fields bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	result, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": oid}, bson.M{"$set": fields})
	if err != nil {
		return models.NewInternalError(err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("User not found")
	}
	return nil
}

// UpdatePassword verifies the current password and replaces it.
func (s *Users) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.ByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := utils.VerifyPassword(oldPassword, user.Password)
	if err != nil || !ok {
		return models.NewInvalidCredentialsError("Incorrect Current Password!")
	}

	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.UpdateProfile(ctx, id, bson.M{"password": hashed})
}

// AddPostID appends a post id to the user's ordered post list.
func (s *Users) AddPostID(ctx context.Context, userID string, postID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	_, err = s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$addToSet": bson.M{"postIds": postID}})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RemovePostID pulls a post id from the user's post list.
func (s *Users) RemovePostID(ctx context.Context, userID string, postID primitive.ObjectID) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	result, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"postIds": postID}})
	if err != nil {
		return models.NewInternalError(err)
	}
	if result.MatchedCount == 0 {
		return models.NewNotFoundError("User not found")
	}
	return nil
}

// Delete removes the user document. Dependent content is handled by the
// account cascade, not here.
func (s *Users) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.NewNotFoundError("User not found")
	}
	result, err := s.db.Collection(usersCollection).DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.NewInternalError(err)
	}
	if result.DeletedCount == 0 {
		return models.NewNotFoundError("User not found")
	}
	return nil
}
