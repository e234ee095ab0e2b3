package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/pennitter/pennitter-backend/internal/middleware"
	"github.com/pennitter/pennitter-backend/internal/models"
	"github.com/pennitter/pennitter-backend/pkg/utils"
)

const maxUploadSize = 32 << 20

// UsernameOrEmailTaken reports whether a username or email is already in
// use. Registration calls it before an account exists, so the route is
// public when currentUserId is the literal "empty"; profile edits pass a
// real id and must carry a valid token.
func (h *Handler) UsernameOrEmailTaken(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	email := chi.URLParam(r, "email")
	currentUserID := chi.URLParam(r, "currentUserId")

	excludeID := ""
	if currentUserID != "empty" {
		if _, ok := h.Auth.Verify(r.Context(), middleware.BearerToken(r)); !ok {
			writeMessage(w, http.StatusUnauthorized, "Failed Authentication")
			return
		}
		excludeID = currentUserID
	}

	usernameInDB, emailInDB, err := h.Users.UsernameEmailTaken(r.Context(), username, email, excludeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"usernameInDB": usernameInDB,
		"emailInDB":    emailInDB,
	})
}

// GetProfileImage returns the user's profile image URL as a JSON string.
func (h *Handler) GetProfileImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.Users.ProfileImage(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			writeMessage(w, http.StatusNotFound, "Profile Image not found")
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, image)
}

// UploadProfileImage stores a new profile image and swaps it into the user
// record. The previous image, when the client names one, is removed from
// media storage after the swap succeeds.
func (h *Handler) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Content-Type.")
		return
	}
	file, header, err := r.FormFile("File_0")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "File_0 is required")
		return
	}
	defer file.Close()

	url, err := h.Media.Upload(r.Context(), file, header.Filename)
	if err != nil {
		writeError(w, err)
		return
	}

	userID := chi.URLParam(r, "userId")
	if err := h.Users.UpdateProfile(r.Context(), userID, bson.M{"profileImage": url}); err != nil {
		writeError(w, err)
		return
	}

	if current := r.FormValue("currentProfileImage"); current != "" {
		if err := h.Media.Delete(r.Context(), current); err != nil {
			// The new image is already live; losing the old object is
			// recoverable by a cleanup sweep.
			writeJSON(w, http.StatusOK, url)
			return
		}
	}
	writeJSON(w, http.StatusOK, url)
}

// DeleteProfileImage removes the stored profile image object. The default
// image is shared across accounts and never deleted.
func (h *Handler) DeleteProfileImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.Users.ProfileImage(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	if image == "" {
		writeMessage(w, http.StatusNotFound, "Profile Image not found")
		return
	}
	if image == models.DefaultProfileImage {
		writeMessage(w, http.StatusOK, "No Profile Image to delete")
		return
	}
	if err := h.Media.Delete(r.Context(), image); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Profile Image deleted")
}

// GetAllIDsUsernames lists every account's id and username.
func (h *Handler) GetAllIDsUsernames(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.AllIDsUsernames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// GetUsernameEmail returns the username and email for one account.
func (h *Handler) GetUsernameEmail(w http.ResponseWriter, r *http.Request) {
	username, email, err := h.Users.UsernameEmail(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username": username,
		"email":    email,
	})
}

// GetUser returns the public projection of one account.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Users.Summary(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type updateUserRequest struct {
	ID           string  `json:"id"`
	Username     *string `json:"username"`
	Email        *string `json:"email"`
	ProfileImage *string `json:"profileImage"`
}

// UpdateUser applies a partial update to the profile fields.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	fields := bson.M{}
	if req.Username != nil {
		if err := utils.ValidateUsername(*req.Username); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		fields["username"] = *req.Username
	}
	if req.Email != nil {
		if err := utils.ValidateEmail(*req.Email); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		fields["email"] = *req.Email
	}
	if req.ProfileImage != nil {
		fields["profileImage"] = *req.ProfileImage
	}
	if len(fields) == 0 {
		writeMessage(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if err := h.Users.UpdateProfile(r.Context(), chi.URLParam(r, "userId"), fields); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "User updated")
}

type updatePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UpdatePassword replaces the password after verifying the current one.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req updatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		writeMessage(w, http.StatusBadRequest, "oldPassword and newPassword are required")
		return
	}
	if err := h.Users.UpdatePassword(r.Context(), chi.URLParam(r, "userId"), req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Password Updated!")
}

// DeleteUser removes the account and everything attached to it.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Account.Delete(r.Context(), chi.URLParam(r, "userId")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "User deleted")
}

// GetHiddenPosts lists the post ids a user has hidden.
func (h *Handler) GetHiddenPosts(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Hidden.HiddenPostIDs(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// HidePost hides a post from a user's feed and returns the updated list.
func (h *Handler) HidePost(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Hidden.Hide(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// UnhidePost undoes HidePost and returns the updated list.
func (h *Handler) UnhidePost(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Hidden.Unhide(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
