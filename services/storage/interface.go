package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when deleting an asset Cloudinary does not know.
var ErrNotFound = errors.New("storage: asset not found")

// Asset identifies an uploaded listing image.
type Asset struct {
	PublicID  string `json:"publicId"`
	SecureURL string `json:"url"`
	Format    string `json:"format,omitempty"`
	Bytes     int    `json:"bytes,omitempty"`
}

// StorageService stores listing media.
type StorageService interface {
	Upload(ctx context.Context, file io.Reader, filename string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}
