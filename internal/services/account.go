package services

import (
	"context"
	"log"
)

// Account orchestrates the cross-collection cascade for account deletion.
type Account struct {
	users  *Users
	posts  *Posts
	follow *Follow
	hidden *Hidden
	auth   *Auth
	media  MediaStore
}

func NewAccount(users *Users, posts *Posts, follow *Follow, hidden *Hidden, auth *Auth, media MediaStore) *Account {
	return &Account{users: users, posts: posts, follow: follow, hidden: hidden, auth: auth, media: media}
}

// Delete removes the user and all dependent content and references, in order:
// post media objects, posts (with their comments), follow edges in both
// directions, likes, hiddenBy marks, profile media, session, and finally the
// user document. The steps run sequentially with no transaction; every step
// is individually idempotent, so a retried cascade converges. Media deletion
// is best-effort and never aborts the cascade.
func (s *Account) Delete(ctx context.Context, userID string) error {
	postIDs, err := s.users.PostIDs(ctx, userID)
	if err != nil {
		return err
	}
	for _, postID := range postIDs {
		mediaURL, err := s.posts.MediaURL(ctx, postID.Hex())
		if err != nil {
			continue
		}
		if mediaURL != "" {
			if err := s.media.Delete(ctx, mediaURL); err != nil {
				log.Printf("account delete: media cleanup failed for post %s: %v", postID.Hex(), err)
			}
		}
	}

	if err := s.posts.DeleteAllForUser(ctx, userID); err != nil {
		return err
	}
	if err := s.follow.UnfollowAll(ctx, userID); err != nil {
		return err
	}
	if err := s.follow.AllUnfollow(ctx, userID); err != nil {
		return err
	}
	if err := s.posts.RemoveUserFromAllLikes(ctx, userID); err != nil {
		return err
	}
	if err := s.hidden.RemoveUserFromAllHiddenBy(ctx, userID); err != nil {
		return err
	}

	profileImage, err := s.users.ProfileImage(ctx, userID)
	if err != nil {
		return err
	}
	if profileImage != "" {
		if err := s.media.Delete(ctx, profileImage); err != nil {
			log.Printf("account delete: profile image cleanup failed for user %s: %v", userID, err)
		}
	}

	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.auth.DeleteSession(ctx, user.ID); err != nil {
		log.Printf("account delete: session cleanup failed for user %s: %v", userID, err)
	}

	return s.users.Delete(ctx, userID)
}
