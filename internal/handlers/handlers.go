package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/pennitter/pennitter-backend/internal/models"
	"github.com/pennitter/pennitter-backend/internal/services"
)

// Handler carries the service dependencies for every route. Dependencies are
// injected here instead of living as package globals.
type Handler struct {
	Users    *services.Users
	Auth     *services.Auth
	Posts    *services.Posts
	Comments *services.Comments
	Follow   *services.Follow
	Hidden   *services.Hidden
	Account  *services.Account
	Media    services.MediaStore
}

func New(users *services.Users, auth *services.Auth, posts *services.Posts,
	comments *services.Comments, follow *services.Follow, hidden *services.Hidden,
	account *services.Account, media services.MediaStore) *Handler {
	return &Handler{
		Users:    users,
		Auth:     auth,
		Posts:    posts,
		Comments: comments,
		Follow:   follow,
		Hidden:   hidden,
		Account:  account,
		Media:    media,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps the error taxonomy to HTTP statuses. The mapping is
// exhaustive over the defined codes; anything unrecognized is a 500.
func writeError(w http.ResponseWriter, err error) {
	var ae *models.AppError
	if !errors.As(err, &ae) {
		log.Printf("unexpected error: %v", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusInternalServerError
	switch ae.Code {
	case models.CodeNotFound:
		status = http.StatusNotFound
	case models.CodeInvalidCredentials, models.CodeAccountLocked,
		models.CodeActiveSession, models.CodeUnauthorized:
		status = http.StatusUnauthorized
	case models.CodeConflict:
		status = http.StatusConflict
	case models.CodeValidation:
		status = http.StatusBadRequest
	case models.CodeInternal:
		log.Printf("internal error: %v", ae)
	}
	writeMessage(w, status, ae.Message)
}
