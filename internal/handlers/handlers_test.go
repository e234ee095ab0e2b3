package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pennitter/pennitter-backend/internal/models"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", models.NewNotFoundError("User not found!"), http.StatusNotFound},
		{"invalid credentials", models.NewInvalidCredentialsError("Invalid Credentials!"), http.StatusUnauthorized},
		{"account locked", models.NewAccountLockedError("Account locked out!"), http.StatusUnauthorized},
		{"active session", models.NewActiveSessionError("Active Session already exists!"), http.StatusUnauthorized},
		{"conflict", models.NewConflictError("Username or email already in use"), http.StatusConflict},
		{"validation", models.NewValidationError("Username must be at least 3 characters"), http.StatusBadRequest},
		{"internal", models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestWriteAuthErrorIncludesLoginAttempts(t *testing.T) {
	w := httptest.NewRecorder()
	writeAuthError(w, models.NewInvalidCredentialsError("Invalid Credentials!"), 2)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Invalid Credentials!","loginAttempts":2}`, w.Body.String())

	w = httptest.NewRecorder()
	writeAuthError(w, models.NewActiveSessionError("Active Session already exists!"), -1)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Active Session already exists!","loginAttempts":-1}`, w.Body.String())

	// Unknown-account failures carry no attempt count.
	w = httptest.NewRecorder()
	writeAuthError(w, models.NewNotFoundError("User not found!"), 0)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"User not found!"}`, w.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	h := &Handler{}

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing fields", `{"username":"abc"}`},
		{"bad username", `{"username":"_x","email":"a@b.com","password":"pw"}`},
		{"bad email", `{"username":"abc","email":"nope","password":"pw"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()
			h.Register(w, r)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
