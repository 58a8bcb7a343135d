package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harborgoods/storefront-backend/pkg/config"
	pkgerrors "github.com/harborgoods/storefront-backend/pkg/errors"
	"github.com/harborgoods/storefront-backend/pkg/logger"
)

const objectPrefix = "media/images"

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadResult describes a stored object.
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Service defines the media behavior needed by the admin controllers.
type Service interface {
	UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*UploadResult, error)
}

type objectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	ObjectURL(key string) string
}

type service struct {
	store     objectStore
	uploadCfg config.UploadConfig
	logg      *logger.Logger
}

// ServiceParams bundles the dependencies required to build a media service.
type ServiceParams struct {
	Store        objectStore
	UploadConfig config.UploadConfig
	Logger       *logger.Logger
}

// NewService constructs a media service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		store:     params.Store,
		uploadCfg: params.UploadConfig,
		logg:      params.Logger,
	}, nil
}

// UploadImage stores an image under a unique object name and returns its
// public URL. Only image content types are accepted.
func (s *service) UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*UploadResult, error) {
	if body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file body is required")
	}
	ext, ok := allowedImageTypes[normalizeContentType(contentType)]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported content type %q", contentType))
	}
	if s.uploadCfg.MaxBytes > 0 && size > s.uploadCfg.MaxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds the %d byte limit", s.uploadCfg.MaxBytes))
	}
	if original := path.Ext(filename); original != "" {
		ext = strings.ToLower(original)
	}

	key := objectKey(ext)
	reader := body
	if s.uploadCfg.MaxBytes > 0 {
		// the declared size is client input; enforce the cap on the stream too
		reader = io.LimitReader(body, s.uploadCfg.MaxBytes)
	}
	if err := s.store.Upload(ctx, key, normalizeContentType(contentType), reader); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload object")
	}

	s.logg.Info(ctx, fmt.Sprintf("stored media object %s", key))
	return &UploadResult{
		Key: key,
		URL: s.store.ObjectURL(key),
	}, nil
}

func objectKey(ext string) string {
	now := time.Now().UTC()
	return fmt.Sprintf("%s/%s/%s%s", objectPrefix, now.Format("2006/01/02"), uuid.NewString(), ext)
}

func normalizeContentType(contentType string) string {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(normalized, ";"); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}
	return normalized
}
