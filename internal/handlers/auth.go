package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pennitter/pennitter-backend/internal/middleware"
	"github.com/pennitter/pennitter-backend/internal/models"
	"github.com/pennitter/pennitter-backend/internal/services"
	"github.com/pennitter/pennitter-backend/pkg/utils"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialsRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := h.Users.Create(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User created",
		"userId":  userID,
	})
}

// Authenticate exchanges credentials for a session token. Credential
// failures carry the running failed-attempt count so the client can warn
// the user before the lockout hits.
func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, false)
}

// Reauthenticate renews a session for a caller that already holds one, so
// the active-session check is skipped.
func (h *Handler) Reauthenticate(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, true)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, reauth bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.UsernameOrEmail == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "usernameOrEmail and password are required")
		return
	}

	var (
		result   *services.AuthResult
		attempts int
		err      error
	)
	if reauth {
		result, attempts, err = h.Auth.Reauthenticate(r.Context(), req.UsernameOrEmail, req.Password)
	} else {
		result, attempts, err = h.Auth.Authenticate(r.Context(), req.UsernameOrEmail, req.Password)
	}
	if err != nil {
		writeAuthError(w, err, attempts)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeAuthError includes the loginAttempts count on credential failures.
func writeAuthError(w http.ResponseWriter, err error, attempts int) {
	var ae *models.AppError
	if !errors.As(err, &ae) {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch ae.Code {
	case models.CodeNotFound:
		writeMessage(w, http.StatusNotFound, ae.Message)
	case models.CodeInvalidCredentials, models.CodeAccountLocked, models.CodeActiveSession:
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"message":       ae.Message,
			"loginAttempts": attempts,
		})
	default:
		writeMessage(w, http.StatusInternalServerError, ae.Message)
	}
}

// TokenExpiringSoon reports whether the caller's token is inside the expiry
// warning window. The route sits behind authentication, so a parse failure
// here means the token went bad between the middleware and this check.
func (h *Handler) TokenExpiringSoon(w http.ResponseWriter, r *http.Request) {
	soon, err := h.Auth.IsExpiringSoon(middleware.BearerToken(r))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, soon)
}
