package seed

import (
	"context"
	"fmt"
	"log/slog"

	"ajayblog/internal/middleware"
	"ajayblog/internal/models"
	"ajayblog/internal/repository"

	"gorm.io/gorm"
)

// Seeder writes generated or imported posts through the Post Repository.
type Seeder struct {
	db    *gorm.DB
	posts repository.PostRepository
}

// NewSeeder creates a Seeder bound to db.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, posts: repository.NewPostRepository(db)}
}

// ClearPosts deletes every post. Stored images are left on disk.
func (s *Seeder) ClearPosts(ctx context.Context) error {
	res := s.db.WithContext(ctx).Where("1 = 1").Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("clear posts: %w", res.Error)
	}
	middleware.Logger.InfoContext(ctx, "Cleared posts", slog.Int64("count", res.RowsAffected))
	return nil
}

// Insert persists posts one at a time and returns how many were written
// before the first failure.
func (s *Seeder) Insert(ctx context.Context, posts []*models.Post) (int, error) {
	for i, post := range posts {
		if err := s.posts.Create(ctx, post); err != nil {
			return i, fmt.Errorf("insert %q: %w", post.Title, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "Seeded posts", slog.Int("count", len(posts)))
	return len(posts), nil
}

// SeedRandom builds and inserts n posts from f.
func (s *Seeder) SeedRandom(ctx context.Context, f *Factory, n int) (int, error) {
	return s.Insert(ctx, f.BuildPosts(n))
}
