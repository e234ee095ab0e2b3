package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pennitter/pennitter-backend/internal/models"
	"github.com/pennitter/pennitter-backend/pkg/utils"
)

const (
	// TokenTTL is the signed token lifetime.
	TokenTTL = 720 * time.Second
	// SessionFreshness is the sliding window within which a session's last
	// ping must fall for verification to succeed. It also serializes
	// logins per account: a fresh session blocks a second authentication.
	SessionFreshness = 15 * time.Second
	// ExpiryWarningWindow is how close to expiry a token must be before
	// the client is told to prompt for re-authentication.
	ExpiryWarningWindow = 120 * time.Second
)

// Claims carries the authenticated user id inside the signed token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
}

// AuthResult is the minimal identity returned on successful authentication.
type AuthResult struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Auth issues and verifies bearer tokens and maintains the single active
// session per user in the sessions collection.
type Auth struct {
	db     *mongo.Database
	secret []byte
	now    func() time.Time
}

func NewAuth(db *mongo.Database, secret string) *Auth {
	return &Auth{db: db, secret: []byte(secret), now: time.Now}
}

// Authenticate checks credentials and issues a session token. The int result
// is the failed-attempt count for credential failures (MaxFailedLoginAttempts
// while locked, -1 for an active-session conflict), mirroring what the API
// reports to the client.
func (s *Auth) Authenticate(ctx context.Context, usernameOrEmail, password string) (*AuthResult, int, error) {
	return s.authenticate(ctx, usernameOrEmail, password, false)
}

// Reauthenticate is Authenticate without the active-session freshness check,
// for callers that already hold a session they intend to renew.
func (s *Auth) Reauthenticate(ctx context.Context, usernameOrEmail, password string) (*AuthResult, int, error) {
	return s.authenticate(ctx, usernameOrEmail, password, true)
}

func (s *Auth) authenticate(ctx context.Context, usernameOrEmail, password string, reauth bool) (*AuthResult, int, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{
		"$or": []bson.M{
			{"username": usernameOrEmail},
			{"email": usernameOrEmail},
		},
	}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, 0, models.NewNotFoundError("User not found!")
	}
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	now := s.now()
	if IsLocked(&user, now) {
		return nil, MaxFailedLoginAttempts, models.NewAccountLockedError("Account locked out!")
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		attempts := RegisterLoginFailure(&user, now)
		if err := s.persistLockoutState(ctx, &user); err != nil {
			return nil, 0, models.NewInternalError(err)
		}
		return nil, attempts, models.NewInvalidCredentialsError("Invalid Credentials!")
	}

	if !reauth {
		var session models.Session
		err := s.db.Collection(sessionsCollection).FindOne(ctx, bson.M{"userId": user.ID}).Decode(&session)
		if err == nil && now.Sub(session.LastPing) < SessionFreshness {
			return nil, -1, models.NewActiveSessionError("Active Session already exists!")
		}
		if err != nil && err != mongo.ErrNoDocuments {
			return nil, 0, models.NewInternalError(err)
		}
	}

	token, err := s.signToken(user.ID.Hex(), now)
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	RegisterLoginSuccess(&user)
	if err := s.persistLockoutState(ctx, &user); err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	if err := s.upsertSession(ctx, user.ID, token, now); err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	return &AuthResult{Token: token, ID: user.ID.Hex(), Username: user.Username}, 0, nil
}

// Verify validates the token signature and expiry, then checks the persisted
// session: it must exist, have been pinged within the freshness window, and
// still hold this exact token (a newer login supersedes older tokens). On
// success the session's last-ping is refreshed.
func (s *Auth) Verify(ctx context.Context, token string) (string, bool) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", false
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return "", false
	}

	var session models.Session
	if err := s.db.Collection(sessionsCollection).FindOne(ctx, bson.M{"userId": userID}).Decode(&session); err != nil {
		return "", false
	}
	if s.now().Sub(session.LastPing) > SessionFreshness {
		return "", false
	}
	if session.Token != token {
		return "", false
	}

	// Best-effort; a failed refresh only shortens the freshness window.
	s.db.Collection(sessionsCollection).UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"lastPing": s.now()}},
	)

	return claims.UserID, true
}

// IsExpiringSoon reports whether the token's expiry falls within the warning
// window. The client uses it to prompt re-authentication before forced logout.
func (s *Auth) IsExpiringSoon(token string) (bool, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return false, err
	}
	if claims.ExpiresAt == nil {
		return false, nil
	}
	return claims.ExpiresAt.Time.Before(s.now().Add(ExpiryWarningWindow)), nil
}

// DeleteSession removes the user's session document, if any.
func (s *Auth) DeleteSession(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.db.Collection(sessionsCollection).DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

func (s *Auth) signToken(userID string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Auth) parseToken(token string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func (s *Auth) persistLockoutState(ctx context.Context, u *models.User) error {
	_, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"loginAttempts": u.LoginAttempts, "lockoutUntil": u.LockoutUntil}},
	)
	return err
}

func (s *Auth) upsertSession(ctx context.Context, userID primitive.ObjectID, token string, now time.Time) error {
	_, err := s.db.Collection(sessionsCollection).UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"jwtToken": token, "lastPing": now}},
		options.Update().SetUpsert(true),
	)
	return err
}
