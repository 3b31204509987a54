package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// uploadAPI is the part of the Cloudinary upload client the service uses.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
	Destroy(ctx context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error)
}

// CloudinaryStorage uploads listing images into a single Cloudinary folder.
type CloudinaryStorage struct {
	upload uploadAPI
	folder string
	logger *zap.Logger
}

// NewCloudinaryStorage connects to the Cloudinary account.
func NewCloudinaryStorage(cloudName, apiKey, apiSecret, folder string, logger *zap.Logger) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("storage: init cloudinary: %w", err)
	}
	return newCloudinaryStorage(&cld.Upload, folder, logger), nil
}

func newCloudinaryStorage(up uploadAPI, folder string, logger *zap.Logger) *CloudinaryStorage {
	return &CloudinaryStorage{upload: up, folder: folder, logger: logger}
}

// Upload streams file to Cloudinary. The public id is derived from filename
// and made unique by Cloudinary.
func (s *CloudinaryStorage) Upload(ctx context.Context, file io.Reader, filename string) (*Asset, error) {
	params := uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       publicIDFromFilename(filename),
		UniqueFilename: api.Bool(true),
		Overwrite:      api.Bool(false),
	}
	res, err := s.upload.Upload(ctx, file, params)
	if err != nil {
		return nil, fmt.Errorf("storage: upload: %w", err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("storage: upload: %s", res.Error.Message)
	}
	if res.PublicID == "" {
		return nil, fmt.Errorf("storage: upload: no public id returned")
	}

	s.logger.Info("asset uploaded", zap.String("publicId", res.PublicID), zap.Int("bytes", res.Bytes))
	return &Asset{
		PublicID:  res.PublicID,
		SecureURL: res.SecureURL,
		Format:    res.Format,
		Bytes:     res.Bytes,
	}, nil
}

// Delete removes the asset with publicID.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicID string) error {
	res, err := s.upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("storage: delete: %w", err)
	}
	if res.Error.Message != "" {
		return fmt.Errorf("storage: delete: %s", res.Error.Message)
	}
	if res.Result == "not found" {
		return ErrNotFound
	}
	s.logger.Info("asset deleted", zap.String("publicId", publicID))
	return nil
}

func publicIDFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, base)
	return base
}
