// Package integration holds the clients of external collaborators: photo
// storage, the payment gateway and the text-generation API.
package integration

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// CloudinaryStore uploads room photos to Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore uploads into folder ("rooms" when empty).
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	if folder == "" {
		folder = "rooms"
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// Store uploads r and returns the secure URL.
func (s *CloudinaryStore) Store(ctx context.Context, _ string, r io.Reader) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload: %s", resp.Error.Message)
	}
	if resp.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload: empty url")
	}
	return resp.SecureURL, nil
}

// DiskStore writes photos under Dir and serves them from BaseURL. It backs
// local development when no Cloudinary account is configured.
type DiskStore struct {
	Dir     string
	BaseURL string
}

// Store copies r to a uniquely named file and returns its URL.
func (s *DiskStore) Store(_ context.Context, name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(name))
	file := uuid.NewString() + ext
	path := filepath.Join(s.Dir, file)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("store photo: %w", err)
	}
	return strings.TrimRight(s.BaseURL, "/") + "/" + file, nil
}
