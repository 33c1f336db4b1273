package seed

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"ajayblog/internal/models"
	"ajayblog/internal/service"

	"gopkg.in/yaml.v3"
)

// FixtureFile is the YAML document accepted by LoadFixtures:
//
//	posts:
//	  - title: Hello
//	    excerpt: First post
//	    content: ...
//	    category: Go
//	    tags: [intro, go]
//	    published: true
//	    date: 2025-01-02
type FixtureFile struct {
	Posts []FixturePost `yaml:"posts"`
}

// FixturePost mirrors the post fields an admin can set. Omitted optional
// fields take the same defaults as the create endpoint.
type FixturePost struct {
	Title     string   `yaml:"title"`
	Excerpt   string   `yaml:"excerpt"`
	Content   string   `yaml:"content"`
	Category  string   `yaml:"category"`
	Author    string   `yaml:"author"`
	Tags      []string `yaml:"tags"`
	Published *bool    `yaml:"published"`
	ReadTime  *int     `yaml:"readTime"`
	Date      string   `yaml:"date"`
	Image     string   `yaml:"image"`
}

var fixtureDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// LoadFixtures decodes a fixture document and converts it to unsaved posts.
// Unknown keys are rejected so typos do not silently drop data.
func LoadFixtures(r io.Reader, defaultAuthor string) ([]*models.Post, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file FixtureFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("fixture file is empty")
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	posts := make([]*models.Post, 0, len(file.Posts))
	for i, fp := range file.Posts {
		post, err := fp.toPost(defaultAuthor)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i+1, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (fp FixturePost) toPost(defaultAuthor string) (*models.Post, error) {
	required := []struct{ name, value string }{
		{"title", fp.Title},
		{"excerpt", fp.Excerpt},
		{"content", fp.Content},
		{"category", fp.Category},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return nil, fmt.Errorf("%s is required", field.name)
		}
	}

	post := &models.Post{
		Title:     fp.Title,
		Excerpt:   fp.Excerpt,
		Content:   fp.Content,
		Category:  fp.Category,
		Author:    fp.Author,
		Image:     fp.Image,
		Published: true,
		ReadTime:  service.DefaultReadTime,
		Date:      time.Now().UTC(),
		Tags:      []string{},
	}
	if strings.TrimSpace(post.Author) == "" {
		post.Author = defaultAuthor
	}
	if fp.Published != nil {
		post.Published = *fp.Published
	}
	if fp.ReadTime != nil {
		if *fp.ReadTime < 1 {
			return nil, errors.New("readTime must be a positive integer")
		}
		post.ReadTime = *fp.ReadTime
	}
	for _, tag := range fp.Tags {
		post.Tags = append(post.Tags, service.ParseTags(tag)...)
	}
	if fp.Date != "" {
		date, err := parseFixtureDate(fp.Date)
		if err != nil {
			return nil, err
		}
		post.Date = date
	}
	return post, nil
}

func parseFixtureDate(raw string) (time.Time, error) {
	for _, layout := range fixtureDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(raw)); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("date %q is not ISO-8601", raw)
}
