package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"

	"github.com/pennitter/pennitter-backend/internal/models"
)

// MediaStore is the media storage collaborator: profile images and post media
// live outside the document store and are addressed by URL.
type MediaStore interface {
	Upload(ctx context.Context, file multipart.File, filename string) (string, error)
	Delete(ctx context.Context, mediaURL string) error
}

// UnconfiguredMediaStore stands in when media credentials are absent:
// uploads fail with a clear error and deletes are no-ops, so everything
// except media endpoints keeps working.
type UnconfiguredMediaStore struct{}

func (UnconfiguredMediaStore) Upload(ctx context.Context, file multipart.File, filename string) (string, error) {
	return "", fmt.Errorf("media storage is not configured")
}

func (UnconfiguredMediaStore) Delete(ctx context.Context, mediaURL string) error {
	return nil
}

type CloudinaryService struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryService(cloudName, apiKey, apiSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryService{cld: cld, folder: "pennitter"}, nil
}

// Upload stores the file under a unique public id derived from the original
// filename and returns the delivery URL.
func (s *CloudinaryService) Upload(ctx context.Context, file multipart.File, filename string) (string, error) {
	base := strings.TrimSuffix(filename, path.Ext(filename))
	publicID := uuid.NewString() + "_" + base

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       s.folder,
		PublicID:     publicID,
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	return result.SecureURL, nil
}

// Delete removes the object behind mediaURL. Empty URLs and the shared
// default profile image are left alone.
func (s *CloudinaryService) Delete(ctx context.Context, mediaURL string) error {
	if mediaURL == "" || mediaURL == models.DefaultProfileImage {
		return nil
	}
	publicID := PublicIDFromURL(mediaURL)
	if publicID == "" {
		return nil
	}
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	return err
}

// PublicIDFromURL extracts the Cloudinary public id from a delivery URL:
// the path after /upload/, minus the version segment and file extension.
func PublicIDFromURL(mediaURL string) string {
	idx := strings.Index(mediaURL, "/upload/")
	if idx == -1 {
		return ""
	}
	rest := mediaURL[idx+len("/upload/"):]

	parts := strings.Split(rest, "/")
	if len(parts) > 1 && isVersionSegment(parts[0]) {
		parts = parts[1:]
	}
	joined := strings.Join(parts, "/")
	return strings.TrimSuffix(joined, path.Ext(joined))
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
