package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "penni_user1", false},
		{"minimum length", "abc", false},
		{"maximum length", "a2345678901234567890", false},
		{"too short", "ab", true},
		{"too long", "a23456789012345678901", true},
		{"leading underscore", "_user", true},
		{"spaces", "some user", true},
		{"punctuation", "user!", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.NoError(t, ValidateEmail("  padded@example.com  "))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
	assert.Error(t, ValidateEmail("two words@example.com"))
	assert.Error(t, ValidateEmail(""))
}
