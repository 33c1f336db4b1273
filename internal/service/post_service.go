// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"ajayblog/internal/featureflags"
	"ajayblog/internal/middleware"
	"ajayblog/internal/models"
	"ajayblog/internal/observability"
	"ajayblog/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultReadTime = 5
	wordsPerMinute  = 200
)

// ListPostsInput is a request-scoped listing query.
type ListPostsInput struct {
	Page      int
	Limit     int
	Category  string
	Published *bool
	Search    string
}

type PostService struct {
	posts         repository.PostRepository
	uploads       *UploadService
	flags         *featureflags.Manager
	defaultAuthor string
	now           func() time.Time
}

func NewPostService(posts repository.PostRepository, uploads *UploadService, flags *featureflags.Manager, defaultAuthor string) *PostService {
	if defaultAuthor == "" {
		defaultAuthor = "Ajay"
	}
	return &PostService{
		posts:         posts,
		uploads:       uploads,
		flags:         flags,
		defaultAuthor: defaultAuthor,
		now:           time.Now,
	}
}

// ListPosts returns one page of posts and the pagination envelope.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (*models.PostListResponse, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	switch {
	case limit == 0:
		limit = DefaultPageSize
	case limit < 1:
		limit = 1
	case limit > MaxPageSize:
		limit = MaxPageSize
	}

	result, err := s.posts.List(ctx, models.PostFilter{
		Category:  strings.TrimSpace(in.Category),
		Published: in.Published,
		Search:    strings.TrimSpace(in.Search),
	}, page, limit)
	if err != nil {
		return nil, err
	}

	return &models.PostListResponse{
		Blogs:       result.Items,
		TotalPages:  models.TotalPages(result.TotalCount, limit),
		CurrentPage: page,
		Total:       result.TotalCount,
	}, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) Categories(ctx context.Context) ([]string, error) {
	return s.posts.DistinctCategories(ctx)
}

// CreatePost validates fields and the optional image, stores the image, then
// inserts the post. The image is removed again if the insert fails.
func (s *PostService) CreatePost(ctx context.Context, in PostFields, upload *ImageUpload) (*models.Post, error) {
	post := &models.Post{
		Author:    s.defaultAuthor,
		Date:      s.now().UTC(),
		Published: true,
		Tags:      []string{},
	}

	for _, req := range []struct {
		name  string
		value *string
		dst   *string
	}{
		{"Title", in.Title, &post.Title},
		{"Excerpt", in.Excerpt, &post.Excerpt},
		{"Content", in.Content, &post.Content},
		{"Category", in.Category, &post.Category},
	} {
		if req.value == nil || strings.TrimSpace(*req.value) == "" {
			return nil, models.NewValidationError(req.name + " is required")
		}
		*req.dst = *req.value
	}

	s.applyOptional(post, in)
	if in.ReadTime == nil {
		post.ReadTime = s.defaultReadTime(post.Content)
	}

	if upload != nil {
		if err := s.uploads.Validate(upload); err != nil {
			return nil, err
		}
		ref, err := s.uploads.Store(ctx, upload)
		if err != nil {
			return nil, err
		}
		post.Image = ref
	}

	if err := s.posts.Create(ctx, post); err != nil {
		s.uploads.Discard(ctx, post.Image)
		return nil, err
	}

	observability.PostMutations.WithLabelValues("create").Inc()
	middleware.Logger.InfoContext(ctx, "post created", slog.String("post_id", post.ID))
	return post, nil
}

// UpdatePost overwrites only the fields present in in. The stored image is
// replaced only when upload is non-nil.
func (s *PostService) UpdatePost(ctx context.Context, id string, in PostFields, upload *ImageUpload) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for _, req := range []struct {
		name  string
		value *string
		dst   *string
	}{
		{"Title", in.Title, &post.Title},
		{"Excerpt", in.Excerpt, &post.Excerpt},
		{"Content", in.Content, &post.Content},
		{"Category", in.Category, &post.Category},
	} {
		if req.value == nil {
			continue
		}
		if strings.TrimSpace(*req.value) == "" {
			return nil, models.NewValidationError(req.name + " cannot be empty")
		}
		*req.dst = *req.value
	}

	s.applyOptional(post, in)

	if upload != nil {
		if err := s.uploads.Validate(upload); err != nil {
			return nil, err
		}
	}

	previousImage := post.Image
	if upload != nil {
		ref, err := s.uploads.Store(ctx, upload)
		if err != nil {
			return nil, err
		}
		post.Image = ref
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if upload != nil {
			s.uploads.Discard(ctx, post.Image)
		}
		return nil, err
	}

	if upload != nil && previousImage != "" && previousImage != post.Image {
		s.uploads.Discard(ctx, previousImage)
	}

	observability.PostMutations.WithLabelValues("update").Inc()
	middleware.Logger.InfoContext(ctx, "post updated", slog.String("post_id", post.ID))
	return post, nil
}

// DeletePost hard-deletes a post and then its stored image.
func (s *PostService) DeletePost(ctx context.Context, id string) error {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}

	s.uploads.Discard(ctx, post.Image)

	observability.PostMutations.WithLabelValues("delete").Inc()
	middleware.Logger.InfoContext(ctx, "post deleted", slog.String("post_id", id))
	return nil
}

func (s *PostService) applyOptional(post *models.Post, in PostFields) {
	if in.Author != nil {
		if author := strings.TrimSpace(*in.Author); author != "" {
			post.Author = author
		}
	}
	if in.Date != nil {
		post.Date = *in.Date
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if in.Tags != nil {
		post.Tags = *in.Tags
	}
	if in.ReadTime != nil {
		post.ReadTime = *in.ReadTime
	}
}

func (s *PostService) defaultReadTime(content string) int {
	if !s.flags.Enabled(featureflags.DerivedReadTime) {
		return DefaultReadTime
	}
	return EstimateReadTime(content)
}

// EstimateReadTime returns whole minutes at 200 words per minute, at least 1.
func EstimateReadTime(content string) int {
	words := len(strings.Fields(content))
	return int(math.Max(1, math.Ceil(float64(words)/wordsPerMinute)))
}
