package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type postPayload struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	MediaURL string `json:"mediaUrl"`
}

// parsePostForm decodes the multipart form shared by post create and
// update: a "post" field holding the post JSON and an optional "File_0"
// media attachment.
func parsePostForm(r *http.Request) (*postPayload, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, err
	}
	var payload postPayload
	if err := json.Unmarshal([]byte(r.FormValue("post")), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CreatePost creates a post, uploading the media attachment first when one
// is present. Returns the new post id.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	payload, err := parsePostForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Content-Type.")
		return
	}
	userID := r.FormValue("userId")
	if userID == "" {
		writeMessage(w, http.StatusBadRequest, "userId is required")
		return
	}

	mediaURL := ""
	if file, header, ferr := r.FormFile("File_0"); ferr == nil {
		defer file.Close()
		mediaURL, err = h.Media.Upload(r.Context(), file, header.Filename)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	id, err := h.Posts.Create(r.Context(), userID, payload.Text, mediaURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

// GetPostIDsByUser lists a user's post ids, newest first.
func (h *Handler) GetPostIDsByUser(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Users.PostIDs(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetActivityFeed lists post ids from the user and everyone they follow,
// newest first.
func (h *Handler) GetActivityFeed(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Posts.ActivityFeedIDs(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

// GetPost returns one post by id.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Posts.ByID(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GetPostMediaURL returns the post's media URL as a JSON string, empty when
// the post has no media.
func (h *Handler) GetPostMediaURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.Posts.MediaURL(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, url)
}

// GetPostLikes lists the ids of users who liked the post.
func (h *Handler) GetPostLikes(w http.ResponseWriter, r *http.Request) {
	likes, err := h.Posts.Likes(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

// UpdatePost edits a post's text and media. A new File_0 replaces the
// current attachment, a removeMedia field drops it, and otherwise the
// attachment is left alone. Replaced or dropped media is deleted from
// storage after the record update succeeds.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	payload, err := parsePostForm(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid Content-Type.")
		return
	}
	postID := chi.URLParam(r, "postId")
	previousMedia := payload.MediaURL

	newMedia := previousMedia
	replacing := false
	if file, header, ferr := r.FormFile("File_0"); ferr == nil {
		defer file.Close()
		newMedia, err = h.Media.Upload(r.Context(), file, header.Filename)
		if err != nil {
			writeError(w, err)
			return
		}
		replacing = true
	} else if r.FormValue("removeMedia") != "" {
		newMedia = ""
		replacing = true
	}

	post, err := h.Posts.Update(r.Context(), postID, payload.Text, newMedia)
	if err != nil {
		writeError(w, err)
		return
	}

	if replacing && previousMedia != "" {
		if derr := h.Media.Delete(r.Context(), previousMedia); derr != nil {
			// Record already updated; the stale object can be swept later.
			writeJSON(w, http.StatusOK, post)
			return
		}
	}
	writeJSON(w, http.StatusOK, post)
}

// DeletePost removes a post, its comments and its media attachment.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	postID := chi.URLParam(r, "postId")

	mediaURL, err := h.Posts.MediaURL(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	if mediaURL != "" {
		// Best effort; the post removal below is what matters.
		_ = h.Media.Delete(r.Context(), mediaURL)
	}

	if err := h.Posts.Delete(r.Context(), postID, userID); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Post deleted")
}

// LikePost records a like and returns the updated like list.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	likes, err := h.Posts.Like(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

// UnlikePost removes a like and returns the updated like list.
func (h *Handler) UnlikePost(w http.ResponseWriter, r *http.Request) {
	likes, err := h.Posts.Unlike(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}
