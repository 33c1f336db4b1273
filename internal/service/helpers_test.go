package service

import (
	"context"
	"errors"
	"testing"

	"ajayblog/internal/featureflags"
	"ajayblog/internal/models"
	"ajayblog/internal/repository"
	"ajayblog/internal/storage"
	"ajayblog/internal/testutil"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }

func validFields() PostFields {
	return PostFields{
		Title:    strPtr("Hello"),
		Excerpt:  strPtr("Short"),
		Content:  strPtr("Long body"),
		Category: strPtr("Go"),
	}
}

type postFixture struct {
	svc     *PostService
	repo    repository.PostRepository
	fs      afero.Fs
	uploads *UploadService
}

func newPostFixture(t *testing.T, flags string) *postFixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := storage.NewLocalStore(fs, "uploads", "/uploads")
	require.NoError(t, err)

	repo := repository.NewPostRepository(testutil.NewTestDB(t))
	uploads := NewUploadService(store, DefaultMaxUploadBytes)
	return &postFixture{
		svc:     NewPostService(repo, uploads, featureflags.NewManager(flags), "Ajay"),
		repo:    repo,
		fs:      fs,
		uploads: uploads,
	}
}

func (f *postFixture) uploadCount(t *testing.T) int {
	t.Helper()
	entries, err := afero.ReadDir(f.fs, "uploads")
	require.NoError(t, err)
	return len(entries)
}

func pngUpload() *ImageUpload {
	return &ImageUpload{Filename: "cover.png", ContentType: "image/png", Content: testutil.PNGBytes()}
}

// failingPostRepo wraps a real repository and fails writes on demand.
type failingPostRepo struct {
	repository.PostRepository
	failCreate bool
	failUpdate bool
}

var errStorageDown = errors.New("storage down")

func (r *failingPostRepo) Create(ctx context.Context, p *models.Post) error {
	if r.failCreate {
		return models.NewInternalError(errStorageDown)
	}
	return r.PostRepository.Create(ctx, p)
}

func (r *failingPostRepo) Update(ctx context.Context, p *models.Post) error {
	if r.failUpdate {
		return models.NewInternalError(errStorageDown)
	}
	return r.PostRepository.Update(ctx, p)
}
