package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createCommentRequest struct {
	UserID          string `json:"userId"`
	PostID          string `json:"postId"`
	ParentCommentID string `json:"parentCommentId"`
	Comment         struct {
		Text string `json:"text"`
	} `json:"comment"`
}

// CreateComment attaches a comment to a post, either top-level or as a
// reply to an existing comment. Returns the new comment id.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UserID == "" || req.PostID == "" || req.ParentCommentID == "" {
		writeMessage(w, http.StatusBadRequest, "userId, postId and parentCommentId are required")
		return
	}

	id, err := h.Comments.Create(r.Context(), req.UserID, req.PostID, req.ParentCommentID, req.Comment.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

// GetComment returns one comment by id.
func (h *Handler) GetComment(w http.ResponseWriter, r *http.Request) {
	comment, err := h.Comments.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

type updateCommentRequest struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// UpdateComment replaces the comment text and returns the updated comment.
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req updateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	comment, err := h.Comments.Update(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}

// DeleteCommentSubtree removes a comment together with every reply under
// it, keeping the post's comment id list consistent.
func (h *Handler) DeleteCommentSubtree(w http.ResponseWriter, r *http.Request) {
	err := h.Comments.DeleteSubtree(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Comment deleted")
}

// GetSortedChildComments lists the direct replies of a comment (or the
// top-level comments of a post) oldest first.
func (h *Handler) GetSortedChildComments(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Posts.CommentIDsByParent(r.Context(), chi.URLParam(r, "postId"), chi.URLParam(r, "commentId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
