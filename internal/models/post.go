// Package models contains data structures for the blog's domain models.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a blog article. Category and tags are free-form strings; categories
// are derived from the posts themselves and have no table of their own.
type Post struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Title     string    `gorm:"not null" json:"title"`
	Excerpt   string    `gorm:"type:text;not null" json:"excerpt"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"not null;index" json:"category"`
	Author    string    `gorm:"not null" json:"author"`
	Date      time.Time `gorm:"not null;index" json:"date"`
	Image     string    `json:"image"`
	Published bool      `gorm:"not null;index" json:"published"`
	Tags      []string  `gorm:"type:text;serializer:json" json:"tags"`
	ReadTime  int       `gorm:"not null" json:"readTime"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// SearchText is the lower-cased search haystack; see IndexSearchText.
	SearchText string `gorm:"type:text;not null;default:''" json:"-"`
}

// BeforeCreate assigns the opaque identifier once, at insert time.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	p.IndexSearchText()
	return nil
}

// searchSeparator sits between fields in SearchText. SearchPattern strips it
// from terms so a match never spans two fields.
const searchSeparator = "\x1f"

// IndexSearchText rebuilds SearchText from title, content, excerpt, category
// and the raw tag values. Folding is done in Go so non-ASCII text compares the
// same way on every dialect.
func (p *Post) IndexSearchText() {
	parts := make([]string, 0, 4+len(p.Tags))
	parts = append(parts, p.Title, p.Content, p.Excerpt, p.Category)
	parts = append(parts, p.Tags...)
	p.SearchText = strings.ToLower(strings.Join(parts, searchSeparator))
}

// SearchPattern turns a search term into the LIKE pattern matched against
// SearchText, with LIKE wildcards escaped by backslash. It returns "" for a
// blank term.
func SearchPattern(term string) string {
	term = strings.TrimSpace(strings.ReplaceAll(term, searchSeparator, ""))
	if term == "" {
		return ""
	}
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(term))
	return "%" + escaped + "%"
}

// PostFilter narrows a list query. Nil/empty fields are not applied.
type PostFilter struct {
	Category  string
	Published *bool
	Search    string
}

// PostPage is one page of a filtered listing plus the unpaginated match count.
type PostPage struct {
	Items      []*Post
	TotalCount int64
}

// PostListResponse is the wire shape of GET /api/blogs.
type PostListResponse struct {
	Blogs       []*Post `json:"blogs"`
	TotalPages  int     `json:"totalPages"`
	CurrentPage int     `json:"currentPage"`
	Total       int64   `json:"total"`
}

// TotalPages returns ceil(total / pageSize).
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
