package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"ajayblog/internal/middleware"
	"ajayblog/internal/models"
	"ajayblog/internal/observability"
	"ajayblog/internal/storage"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// DefaultMaxUploadBytes is the per-file ceiling when none is configured.
const DefaultMaxUploadBytes = 5 * 1024 * 1024

// ImageUpload is one file taken from a multipart request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Values are the format names image.DecodeConfig reports.
var allowedExtensions = map[string]string{
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".png":  "png",
	".gif":  "gif",
	".webp": "webp",
}

var allowedMediaTypes = map[string]string{
	"image/jpeg":  "jpeg",
	"image/jpg":   "jpeg",
	"image/pjpeg": "jpeg",
	"image/png":   "png",
	"image/gif":   "gif",
	"image/webp":  "webp",
}

// UploadService validates post images and writes them to a BlobStore.
type UploadService struct {
	store    storage.BlobStore
	maxBytes int64
}

func NewUploadService(store storage.BlobStore, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadService{store: store, maxBytes: maxBytes}
}

// MaxBytes returns the per-file size ceiling.
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// CheckSize rejects a declared size above the ceiling before the body is read.
func (s *UploadService) CheckSize(size int64) error {
	if size > s.maxBytes {
		return models.NewPayloadTooLargeError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}
	return nil
}

// Validate checks size, extension, declared media type and content. It
// writes nothing.
func (s *UploadService) Validate(u *ImageUpload) error {
	err := s.check(u)
	if err != nil {
		observability.UploadsTotal.WithLabelValues("rejected").Inc()
	}
	return err
}

func (s *UploadService) check(u *ImageUpload) error {
	if len(u.Content) == 0 {
		return models.NewValidationError("Uploaded file is empty")
	}
	if err := s.CheckSize(int64(len(u.Content))); err != nil {
		return err
	}

	extFamily, ok := allowedExtensions[strings.ToLower(filepath.Ext(u.Filename))]
	if !ok {
		return models.NewUnsupportedMediaError("Only image files are allowed (jpeg, jpg, png, gif, webp)")
	}

	mediaType, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil {
		return models.NewUnsupportedMediaError("Only image files are allowed (jpeg, jpg, png, gif, webp)")
	}
	typeFamily, ok := allowedMediaTypes[strings.ToLower(mediaType)]
	if !ok || typeFamily != extFamily {
		return models.NewUnsupportedMediaError("Only image files are allowed (jpeg, jpg, png, gif, webp)")
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(u.Content))
	if err != nil || format != typeFamily {
		return models.NewUnsupportedMediaError("File content is not a valid image of the declared type")
	}

	return nil
}

// Store validates u and writes it, returning its public reference path.
func (s *UploadService) Store(ctx context.Context, u *ImageUpload) (string, error) {
	if err := s.check(u); err != nil {
		return "", err
	}

	ref, err := s.store.Put(ctx, u.Filename, bytes.NewReader(u.Content))
	if err != nil {
		observability.UploadsTotal.WithLabelValues("failed").Inc()
		return "", models.NewInternalError(err)
	}

	observability.UploadsTotal.WithLabelValues("stored").Inc()
	observability.UploadBytes.Observe(float64(len(u.Content)))
	return ref, nil
}

// Discard removes a stored blob. Failures are logged, not returned, since
// callers use it on paths that are already reporting another outcome.
func (s *UploadService) Discard(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	if err := s.store.Remove(ctx, ref); err != nil {
		if errors.Is(err, storage.ErrInvalidRef) {
			return
		}
		middleware.Logger.WarnContext(ctx, "failed to remove uploaded image",
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
	}
}
