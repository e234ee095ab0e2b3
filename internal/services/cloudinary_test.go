package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "versioned delivery URL",
			url:  "https://res.cloudinary.com/demo/image/upload/v1712345678/pennitter/abc_photo.jpg",
			want: "pennitter/abc_photo",
		},
		{
			name: "no version segment",
			url:  "https://res.cloudinary.com/demo/image/upload/pennitter/abc_photo.png",
			want: "pennitter/abc_photo",
		},
		{
			name: "no extension",
			url:  "https://res.cloudinary.com/demo/video/upload/v1/pennitter/clip",
			want: "pennitter/clip",
		},
		{
			name: "folder starting with v but not a version",
			url:  "https://res.cloudinary.com/demo/image/upload/vault/file.jpg",
			want: "vault/file",
		},
		{
			name: "not a cloudinary URL",
			url:  "https://example.com/some/image.jpg",
			want: "",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicIDFromURL(tt.url))
		})
	}
}
