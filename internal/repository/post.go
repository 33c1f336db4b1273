package repository

import (
	"context"
	"errors"

	"ajayblog/internal/models"
	"ajayblog/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// List returns one page of posts matching filter, newest first, plus the
	// total match count. Pages past the end yield no items.
	List(ctx context.Context, filter models.PostFilter, page, pageSize int) (*models.PostPage, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	// Update writes every column of post over the stored row.
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	DistinctCategories(ctx context.Context) ([]string, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// updatableColumns is every column a post update may overwrite.
var updatableColumns = []string{
	"title", "excerpt", "content", "category", "author", "date",
	"image", "published", "tags", "read_time", "updated_at", "search_text",
}

func (r *postRepository) applyFilter(q *gorm.DB, filter models.PostFilter) *gorm.DB {
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Published != nil {
		q = q.Where("published = ?", *filter.Published)
	}
	if pattern := models.SearchPattern(filter.Search); pattern != "" {
		q = q.Where(`search_text LIKE ? ESCAPE '\'`, pattern)
	}
	return q
}

func (r *postRepository) List(ctx context.Context, filter models.PostFilter, page, pageSize int) (*models.PostPage, error) {
	ctx, span := observability.StartSpan(ctx, "repository", "posts.list",
		attribute.Int("page", page),
		attribute.Int("page_size", pageSize),
	)
	var err error
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("list", "posts")()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	var total int64
	if err = r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).Count(&total).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	posts := make([]*models.Post, 0)
	if total > 0 && int64(page) <= total {
		err = r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "date"}, Desc: true}).
			Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
			Limit(pageSize).
			Offset((page - 1) * pageSize).
			Find(&posts).Error
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	return &models.PostPage{Items: posts, TotalCount: total}, nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "posts")()

	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Blog post already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()

	if post.Tags == nil {
		post.Tags = []string{}
	}
	post.IndexSearchText()

	res := r.db.WithContext(ctx).Model(post).Select(updatableColumns).Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog post", post.ID)
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer observability.TrackQuery("delete", "posts")()

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog post", id)
	}
	return nil
}

func (r *postRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	defer observability.TrackQuery("distinct_categories", "posts")()

	categories := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}
