package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pennitter/pennitter-backend/internal/models"
)

// testDB connects to the MongoDB named by MONGO_TEST_URI and returns a
// dropped-clean database. Tests that need a live server skip without it.
func testDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Disconnect(context.Background())
	})

	db := client.Database("pennitter_test")
	require.NoError(t, db.Drop(ctx))
	return db
}

func TestUsersCreateAndConflict(t *testing.T) {
	db := testDB(t)
	users := NewUsers(db)
	ctx := context.Background()

	id, err := users.Create(ctx, "alice", "alice@example.com", "pw123456")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	u, err := users.ByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, models.DefaultProfileImage, u.ProfileImage)
	assert.NotEqual(t, "pw123456", u.Password)

	// Same username, different case, still a conflict.
	_, err = users.Create(ctx, "ALICE", "other@example.com", "pw123456")
	assert.True(t, models.IsCode(err, models.CodeConflict))

	_, err = users.Create(ctx, "bob", "ALICE@example.com", "pw123456")
	assert.True(t, models.IsCode(err, models.CodeConflict))
}

func TestFollowMutuality(t *testing.T) {
	db := testDB(t)
	users := NewUsers(db)
	follow := NewFollow(db)
	ctx := context.Background()

	aliceID, err := users.Create(ctx, "alice", "alice@example.com", "pw123456")
	require.NoError(t, err)
	bobID, err := users.Create(ctx, "bob", "bob@example.com", "pw123456")
	require.NoError(t, err)

	require.NoError(t, follow.FollowUser(ctx, aliceID, bobID))

	follows, err := follow.Follows(ctx, aliceID)
	require.NoError(t, err)
	followers, err := follow.Followers(ctx, bobID)
	require.NoError(t, err)

	bobOID, _ := primitive.ObjectIDFromHex(bobID)
	aliceOID, _ := primitive.ObjectIDFromHex(aliceID)
	assert.Equal(t, []primitive.ObjectID{bobOID}, follows)
	assert.Equal(t, []primitive.ObjectID{aliceOID}, followers)

	// Re-following is idempotent.
	require.NoError(t, follow.FollowUser(ctx, aliceID, bobID))
	follows, err = follow.Follows(ctx, aliceID)
	require.NoError(t, err)
	assert.Len(t, follows, 1)

	require.NoError(t, follow.UnfollowUser(ctx, aliceID, bobID))
	follows, err = follow.Follows(ctx, aliceID)
	require.NoError(t, err)
	assert.Empty(t, follows)
	followers, err = follow.Followers(ctx, bobID)
	require.NoError(t, err)
	assert.Empty(t, followers)

	// Following someone who does not exist fails cleanly.
	err = follow.FollowUser(ctx, aliceID, primitive.NewObjectID().Hex())
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostLikesAndHiding(t *testing.T) {
	db := testDB(t)
	users := NewUsers(db)
	posts := NewPosts(db, users)
	hidden := NewHidden(db)
	ctx := context.Background()

	authorID, err := users.Create(ctx, "author", "author@example.com", "pw123456")
	require.NoError(t, err)
	readerID, err := users.Create(ctx, "reader", "reader@example.com", "pw123456")
	require.NoError(t, err)

	postID, err := posts.Create(ctx, authorID, "hello world", "")
	require.NoError(t, err)

	likes, err := posts.Like(ctx, postID, readerID)
	require.NoError(t, err)
	readerOID, _ := primitive.ObjectIDFromHex(readerID)
	assert.Equal(t, []primitive.ObjectID{readerOID}, likes)

	// Double-like stays a set.
	likes, err = posts.Like(ctx, postID, readerID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)

	likes, err = posts.Unlike(ctx, postID, readerID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	// Liking a deleted post is an error; unliking one is not.
	ghost := primitive.NewObjectID().Hex()
	_, err = posts.Like(ctx, ghost, readerID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	likes, err = posts.Unlike(ctx, ghost, readerID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	hiddenIDs, err := hidden.Hide(ctx, readerID, postID)
	require.NoError(t, err)
	postOID, _ := primitive.ObjectIDFromHex(postID)
	assert.Equal(t, []primitive.ObjectID{postOID}, hiddenIDs)

	p, err := posts.ByID(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{readerOID}, p.HiddenBy)

	hiddenIDs, err = hidden.Unhide(ctx, readerID, postID)
	require.NoError(t, err)
	assert.Empty(t, hiddenIDs)
}

func TestCommentSubtreeDeletion(t *testing.T) {
	db := testDB(t)
	users := NewUsers(db)
	posts := NewPosts(db, users)
	comments := NewComments(db, posts)
	ctx := context.Background()

	userID, err := users.Create(ctx, "author", "author@example.com", "pw123456")
	require.NoError(t, err)
	postID, err := posts.Create(ctx, userID, "discuss", "")
	require.NoError(t, err)

	top, err := comments.Create(ctx, userID, postID, models.TopLevelParentID, "top")
	require.NoError(t, err)
	reply, err := comments.Create(ctx, userID, postID, top, "reply")
	require.NoError(t, err)
	nested, err := comments.Create(ctx, userID, postID, reply, "nested")
	require.NoError(t, err)
	sibling, err := comments.Create(ctx, userID, postID, models.TopLevelParentID, "sibling")
	require.NoError(t, err)

	// Replying to a comment that is gone is rejected.
	_, err = comments.Create(ctx, userID, postID, primitive.NewObjectID().Hex(), "orphan")
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	require.NoError(t, comments.DeleteSubtree(ctx, postID, top))

	for _, id := range []string{top, reply, nested} {
		_, err := comments.ByID(ctx, id)
		assert.True(t, models.IsCode(err, models.CodeNotFound))
	}

	// The sibling branch survives and the post's comment list shrank.
	_, err = comments.ByID(ctx, sibling)
	require.NoError(t, err)
	ids, err := posts.CommentIDs(ctx, postID)
	require.NoError(t, err)
	siblingOID, _ := primitive.ObjectIDFromHex(sibling)
	assert.Equal(t, []primitive.ObjectID{siblingOID}, ids)
}

func TestAuthenticateLockoutAndSession(t *testing.T) {
	db := testDB(t)
	users := NewUsers(db)
	auth := NewAuth(db, "test-secret")
	now := time.Now()
	auth.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := users.Create(ctx, "alice", "alice@example.com", "pw123456")
	require.NoError(t, err)

	// Wrong password twice, then the third failure locks the account.
	for want := 1; want <= 2; want++ {
		_, attempts, err := auth.Authenticate(ctx, "alice", "wrong")
		assert.True(t, models.IsCode(err, models.CodeInvalidCredentials))
		assert.Equal(t, want, attempts)
	}
	_, attempts, err := auth.Authenticate(ctx, "alice", "wrong")
	assert.True(t, models.IsCode(err, models.CodeInvalidCredentials))
	assert.Equal(t, 3, attempts)

	// Even the right password bounces while locked.
	_, attempts, err = auth.Authenticate(ctx, "alice", "pw123456")
	assert.True(t, models.IsCode(err, models.CodeAccountLocked))
	assert.Equal(t, MaxFailedLoginAttempts, attempts)

	// After the lockout expires the login succeeds, by email too.
	now = now.Add(LockoutDuration + time.Second)
	result, _, err := auth.Authenticate(ctx, "alice@example.com", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "alice", result.Username)
	assert.NotEmpty(t, result.Token)

	userID, ok := auth.Verify(ctx, result.Token)
	assert.True(t, ok)
	assert.Equal(t, result.ID, userID)

	// A second login inside the freshness window is refused...
	_, attempts, err = auth.Authenticate(ctx, "alice", "pw123456")
	assert.True(t, models.IsCode(err, models.CodeActiveSession))
	assert.Equal(t, -1, attempts)

	// ...but reauthentication is the sanctioned path and rotates the token.
	renewed, _, err := auth.Reauthenticate(ctx, "alice", "pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, result.Token, renewed.Token)

	// The old token is superseded.
	_, ok = auth.Verify(ctx, result.Token)
	assert.False(t, ok)
	_, ok = auth.Verify(ctx, renewed.Token)
	assert.True(t, ok)
}

func TestAccountDeleteCascade(t *testing.T) {
	db := testDB(t)
	users := NewUsers(db)
	posts := NewPosts(db, users)
	comments := NewComments(db, posts)
	follow := NewFollow(db)
	hidden := NewHidden(db)
	auth := NewAuth(db, "test-secret")
	account := NewAccount(users, posts, follow, hidden, auth, UnconfiguredMediaStore{})
	ctx := context.Background()

	doomedID, err := users.Create(ctx, "doomed", "doomed@example.com", "pw123456")
	require.NoError(t, err)
	survivorID, err := users.Create(ctx, "survivor", "survivor@example.com", "pw123456")
	require.NoError(t, err)

	// Entangle the two accounts in every direction.
	require.NoError(t, follow.FollowUser(ctx, doomedID, survivorID))
	require.NoError(t, follow.FollowUser(ctx, survivorID, doomedID))

	doomedPost, err := posts.Create(ctx, doomedID, "goodbye", "")
	require.NoError(t, err)
	survivorPost, err := posts.Create(ctx, survivorID, "staying", "")
	require.NoError(t, err)

	_, err = posts.Like(ctx, survivorPost, doomedID)
	require.NoError(t, err)
	_, err = hidden.Hide(ctx, doomedID, survivorPost)
	require.NoError(t, err)
	_, err = comments.Create(ctx, survivorID, doomedPost, models.TopLevelParentID, "on doomed post")
	require.NoError(t, err)

	require.NoError(t, account.Delete(ctx, doomedID))

	_, err = users.ByID(ctx, doomedID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	_, err = posts.ByID(ctx, doomedPost)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	// No references to the deleted account linger on the survivor's side.
	followers, err := follow.Followers(ctx, survivorID)
	require.NoError(t, err)
	assert.Empty(t, followers)
	follows, err := follow.Follows(ctx, survivorID)
	require.NoError(t, err)
	assert.Empty(t, follows)

	p, err := posts.ByID(ctx, survivorPost)
	require.NoError(t, err)
	assert.Empty(t, p.Likes)
	assert.Empty(t, p.HiddenBy)

	// Comments under the deleted account's posts went with the posts.
	count, err := db.Collection(commentsCollection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, count)

	// Deleting an unknown account reports not found.
	err = account.Delete(ctx, primitive.NewObjectID().Hex())
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}
