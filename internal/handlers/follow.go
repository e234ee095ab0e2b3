package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetUsersExcept lists every account other than the given one, for the
// "who to follow" view.
func (h *Handler) GetUsersExcept(w http.ResponseWriter, r *http.Request) {
	users, err := h.Follow.AllUsersExcept(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetFollows lists the ids a user follows.
func (h *Handler) GetFollows(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Follow.Follows(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetFollowers lists the ids following a user.
func (h *Handler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Follow.Followers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// FollowUser adds the target to the user's follows and the user to the
// target's followers.
func (h *Handler) FollowUser(w http.ResponseWriter, r *http.Request) {
	err := h.Follow.FollowUser(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "userIdToFollow"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "User followed")
}

// UnfollowUser undoes FollowUser on both sides.
func (h *Handler) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	err := h.Follow.UnfollowUser(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "userIdToUnfollow"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "User unfollowed")
}
