package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pennitter/pennitter-backend/internal/handlers"
	"github.com/pennitter/pennitter-backend/internal/middleware"
	"github.com/pennitter/pennitter-backend/internal/services"
)

func SetupRoutes(r *chi.Mux, h *handlers.Handler, auth *services.Auth) {
	// Public routes
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to our backend!!!"}`))
	})
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Invalid endpoint"}`))
	})
	r.Post("/register", h.Register)
	r.Post("/authenticate", h.Authenticate)
	// Conditionally public: does its own token check unless currentUserId
	// is the literal "empty" (pre-registration availability check).
	r.Get("/users/usernameOrEmailTaken/{username}/{email}/{currentUserId}", h.UsernameOrEmailTaken)

	// Everything else requires a verified session token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(auth))

		// Session routes
		r.Post("/reauthenticate", h.Reauthenticate)
		r.Get("/isTokenExpiration1Minute", h.TokenExpiringSoon)

		// User routes
		r.Get("/user-ids-usernames", h.GetAllIDsUsernames)
		r.Get("/users/{userId}/username-email", h.GetUsernameEmail)
		r.Get("/user/{userId}", h.GetUser)
		r.Put("/user/{userId}", h.UpdateUser)
		r.Delete("/user/{userId}", h.DeleteUser)
		r.Put("/user/{userId}/password", h.UpdatePassword)
		r.Get("/user/{userId}/profileimage", h.GetProfileImage)
		r.Put("/user/{userId}/profileimage", h.UploadProfileImage)
		r.Delete("/user/{userId}/profileimage", h.DeleteProfileImage)

		// Hidden post routes
		r.Get("/users/{userId}/hidden-posts", h.GetHiddenPosts)
		r.Put("/users/{userId}/hide-post/{postId}", h.HidePost)
		r.Put("/users/{userId}/unhide-post/{postId}", h.UnhidePost)

		// Follow routes
		r.Get("/users/exclude/{id}", h.GetUsersExcept)
		r.Get("/users/follows/{id}", h.GetFollows)
		r.Get("/users/followers/{id}", h.GetFollowers)
		r.Put("/follow/{userId}/{userIdToFollow}", h.FollowUser)
		r.Put("/unfollow/{userId}/{userIdToUnfollow}", h.UnfollowUser)

		// Comment routes
		r.Post("/comments", h.CreateComment)
		r.Get("/comments/{id}", h.GetComment)
		r.Put("/comments/{id}", h.UpdateComment)
		r.Delete("/post/{postId}/comments/{commentId}/all", h.DeleteCommentSubtree)
		r.Get("/posts/{postId}/comments/{commentId}/sorted", h.GetSortedChildComments)

		// Post routes
		r.Post("/posts", h.CreatePost)
		r.Get("/posts/user/{userId}", h.GetPostIDsByUser)
		r.Get("/posts/activity-feed/{userId}", h.GetActivityFeed)
		r.Get("/posts/{postId}", h.GetPost)
		r.Get("/posts/{postId}/mediaUrl", h.GetPostMediaURL)
		r.Get("/posts/{postId}/likes", h.GetPostLikes)
		r.Put("/posts/{postId}", h.UpdatePost)
		r.Delete("/user/{userId}/posts/{postId}", h.DeletePost)
		r.Put("/posts/{postId}/likedby/{userId}", h.LikePost)
		r.Put("/posts/{postId}/unlikedby/{userId}", h.UnlikePost)
	})
}
