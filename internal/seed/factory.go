// Package seed creates demo and fixture data for the blog database. It is
// meant for development and testing only.
package seed

import (
	"strings"
	"time"

	"ajayblog/internal/models"
	"ajayblog/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var categories = []string{
	"Go", "Backend", "DevOps", "Travel", "Photography", "Books", "Life", "Cloud",
}

// Factory builds random posts. A fixed seed yields the same sequence of posts.
type Factory struct {
	faker   *gofakeit.Faker
	author  string
	now     time.Time
	maxDays int
}

// NewFactory returns a Factory. A zero seed picks a random one; author is
// used for every post unless an override replaces it.
func NewFactory(seed int64, author string) *Factory {
	return &Factory{
		faker:   gofakeit.New(seed),
		author:  author,
		now:     time.Now().UTC(),
		maxDays: 365,
	}
}

// BuildPost returns an unsaved post with realistic content spread over the
// past year. Roughly one in five is a draft.
func (f *Factory) BuildPost(overrides ...func(*models.Post)) *models.Post {
	content := f.faker.Paragraph(f.faker.Number(3, 8), 5, 14, "\n\n")

	tags := make([]string, 0, 3)
	seen := make(map[string]bool)
	for i := f.faker.Number(0, 3); i > 0; i-- {
		tag := strings.ToLower(f.faker.Word())
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}

	post := &models.Post{
		Title:     strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), "."),
		Excerpt:   f.faker.Sentence(16),
		Content:   content,
		Category:  f.faker.RandomString(categories),
		Author:    f.author,
		Date:      f.faker.DateRange(f.now.AddDate(0, 0, -f.maxDays), f.now).UTC(),
		Published: f.faker.Number(1, 5) != 1,
		Tags:      tags,
		ReadTime:  service.EstimateReadTime(content),
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildPosts returns n posts.
func (f *Factory) BuildPosts(n int) []*models.Post {
	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		posts = append(posts, f.BuildPost())
	}
	return posts
}
