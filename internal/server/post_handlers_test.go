package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ajayblog/internal/models"
	"ajayblog/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createPost(t *testing.T, fields map[string]string, files ...filePart) models.Post {
	t.Helper()
	resp := e.doMultipart(t, http.MethodPost, "/api/blogs", e.token, fields, files...)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decode(t, resp, &post)
	return post
}

func (e *testEnv) listPosts(t *testing.T, query string) models.PostListResponse {
	t.Helper()
	resp := e.doJSON(t, http.MethodGet, "/api/blogs"+query, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var page models.PostListResponse
	decode(t, resp, &page)
	return page
}

func TestCreatePost_MultipartWithImage(t *testing.T) {
	env := newTestEnv(t, nil)

	post := env.createPost(t, postFields(), pngPart())
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "Ajay", post.Author)
	assert.True(t, post.Published)
	assert.Equal(t, 5, post.ReadTime)
	assert.Equal(t, []string{"a", "b", "c"}, post.Tags)
	require.True(t, strings.HasPrefix(post.Image, "/uploads/"))

	// The stored image is served back from its reference path.
	resp := env.doJSON(t, http.MethodGet, post.Image, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	served, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, testutil.PNGBytes(), served)

	resp = env.doJSON(t, http.MethodGet, "/api/blogs/"+post.ID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got map[string]any
	decode(t, resp, &got)
	assert.Equal(t, post.ID, got["_id"])
	assert.Equal(t, post.Image, got["image"])
	assert.Equal(t, float64(5), got["readTime"])
}

func TestCreatePost_JSONAndForm(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.doJSON(t, http.MethodPost, "/api/blogs", env.token, map[string]any{
		"title":     "From JSON",
		"excerpt":   "e",
		"content":   "c",
		"category":  "Go",
		"tags":      []string{"x", "y"},
		"published": false,
		"readTime":  8,
		"date":      "2025-06-01T12:00:00Z",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decode(t, resp, &post)
	assert.Equal(t, []string{"x", "y"}, post.Tags)
	assert.False(t, post.Published)
	assert.Equal(t, 8, post.ReadTime)
	assert.True(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Equal(post.Date))

	form := url.Values{"title": {"From form"}, "excerpt": {"e"}, "content": {"c"}, "category": {"Life"}}
	req := httptest.NewRequest(http.MethodPost, "/api/blogs", strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+env.token)
	resp = env.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &post)
	assert.Equal(t, "From form", post.Title)
	assert.Empty(t, post.Image)
}

func TestCreatePost_LenientJSON(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.doJSON(t, http.MethodPost, "/api/blogs", env.token, map[string]any{
		"title":    "Lenient",
		"excerpt":  "e",
		"content":  "c",
		"category": "Go",
		"readTime": "soon",
		"views":    3,
		"image":    map[string]any{},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post models.Post
	decode(t, resp, &post)
	assert.Equal(t, 5, post.ReadTime)
	assert.Empty(t, post.Image)

	// An unusable readTime on update keeps the stored value.
	resp = env.doJSON(t, http.MethodPut, "/api/blogs/"+post.ID, env.token, map[string]any{"readTime": -2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Post
	decode(t, resp, &updated)
	assert.Equal(t, 5, updated.ReadTime)
}

func TestCreatePost_Validation(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing title", func(f map[string]string) { delete(f, "title") }},
		{"blank excerpt", func(f map[string]string) { f["excerpt"] = "  " }},
		{"missing content", func(f map[string]string) { delete(f, "content") }},
		{"missing category", func(f map[string]string) { delete(f, "category") }},
		{"bad published", func(f map[string]string) { f["published"] = "maybe" }},
		{"bad date", func(f map[string]string) { f["date"] = "last tuesday" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := postFields()
			tt.mutate(fields)
			resp := env.doMultipart(t, http.MethodPost, "/api/blogs", env.token, fields)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, models.CodeValidation, decodeError(t, resp).Code)
		})
	}

	resp := env.doJSON(t, http.MethodPost, "/api/blogs", env.token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/blogs", strings.NewReader("{not json"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+env.token)
	resp = env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Zero(t, env.listPosts(t, "").Total)
}

func TestCreatePost_RejectedUploads(t *testing.T) {
	env := newTestEnv(t, nil)
	maxBytes := int(env.srv.uploads.MaxBytes())

	tests := []struct {
		name   string
		files  []filePart
		status int
		code   string
	}{
		{
			name:   "text file",
			files:  []filePart{{"image", "notes.txt", "text/plain", []byte("hello")}},
			status: http.StatusUnsupportedMediaType,
			code:   models.CodeUnsupportedMedia,
		},
		{
			name:   "image extension with text content",
			files:  []filePart{{"image", "fake.png", "image/png", []byte("<script>alert(1)</script>")}},
			status: http.StatusUnsupportedMediaType,
			code:   models.CodeUnsupportedMedia,
		},
		{
			name:   "over the size limit",
			files:  []filePart{{"image", "big.png", "image/png", testutil.OversizedPNG(maxBytes + 1)}},
			status: http.StatusRequestEntityTooLarge,
			code:   models.CodePayloadTooLarge,
		},
		{
			name:   "two images",
			files:  []filePart{pngPart(), pngPart()},
			status: http.StatusBadRequest,
			code:   models.CodeValidation,
		},
		{
			name:   "wrong field",
			files:  []filePart{{"photo", "cover.png", "image/png", testutil.PNGBytes()}},
			status: http.StatusBadRequest,
			code:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.doMultipart(t, http.MethodPost, "/api/blogs", env.token, postFields(), tt.files...)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Code)
		})
	}

	assert.Zero(t, env.listPosts(t, "").Total)
	assert.Equal(t, 0, env.uploadCount(t))
}

func TestCreatePost_BodyOverLimit(t *testing.T) {
	env := newTestEnv(t, nil)
	huge := bytes.Repeat([]byte("a"), int(env.srv.uploads.MaxBytes())+2*formOverheadBytes)

	resp := env.doMultipart(t, http.MethodPost, "/api/blogs", env.token, postFields(),
		filePart{"image", "huge.png", "image/png", huge})
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, models.CodePayloadTooLarge, decodeError(t, resp).Code)
}

func TestUpdatePost(t *testing.T) {
	env := newTestEnv(t, nil)
	fields := postFields()
	fields["published"] = "false"
	post := env.createPost(t, fields, pngPart())

	t.Run("partial JSON keeps absent fields", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodPut, "/api/blogs/"+post.ID, env.token, map[string]any{"title": "Renamed"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got models.Post
		decode(t, resp, &got)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, "Short", got.Excerpt)
		assert.False(t, got.Published)
		assert.Equal(t, []string{"a", "b", "c"}, got.Tags)
		assert.Equal(t, post.Image, got.Image)
	})

	t.Run("multipart replaces image", func(t *testing.T) {
		jpg := filePart{"image", "new.jpg", "image/jpeg", testutil.JPEGBytes()}
		resp := env.doMultipart(t, http.MethodPut, "/api/blogs/"+post.ID, env.token,
			map[string]string{"published": "true", "tags": ""}, jpg)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got models.Post
		decode(t, resp, &got)
		assert.True(t, got.Published)
		assert.Empty(t, got.Tags)
		assert.True(t, strings.HasSuffix(got.Image, "-new.jpg"))
		assert.Equal(t, 1, env.uploadCount(t))

		old := env.doJSON(t, http.MethodGet, post.Image, "", nil)
		assert.Equal(t, http.StatusNotFound, old.StatusCode)
	})

	t.Run("blank required field", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodPut, "/api/blogs/"+post.ID, env.token, map[string]any{"category": ""})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejected upload leaves post untouched", func(t *testing.T) {
		resp := env.doMultipart(t, http.MethodPut, "/api/blogs/"+post.ID, env.token,
			map[string]string{"title": "Should not stick"},
			filePart{"image", "x.gif", "image/gif", []byte("GIF89a-not-really")})
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)

		resp = env.doJSON(t, http.MethodGet, "/api/blogs/"+post.ID, "", nil)
		var got models.Post
		decode(t, resp, &got)
		assert.Equal(t, "Renamed", got.Title)
	})

	t.Run("unknown id", func(t *testing.T) {
		resp := env.doJSON(t, http.MethodPut, "/api/blogs/does-not-exist", env.token, map[string]any{"title": "x"})
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, models.CodeNotFound, decodeError(t, resp).Code)
	})
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t, nil)
	post := env.createPost(t, postFields(), pngPart())

	resp := env.doJSON(t, http.MethodDelete, "/api/blogs/"+post.ID, env.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "Blog post deleted successfully", body["message"])
	assert.Equal(t, 0, env.uploadCount(t))

	resp = env.doJSON(t, http.MethodGet, "/api/blogs/"+post.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.doJSON(t, http.MethodDelete, "/api/blogs/"+post.ID, env.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, models.CodeNotFound, decodeError(t, resp).Code)
}

func TestListPosts(t *testing.T) {
	env := newTestEnv(t, nil)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		fields := map[string]string{
			"title":    fmt.Sprintf("Post %02d", i),
			"excerpt":  "excerpt",
			"content":  "content",
			"category": []string{"Go", "Life"}[i%2],
			"date":     base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
		}
		if i == 3 {
			fields["content"] = "a rare Marmot appears"
		}
		if i >= 10 {
			fields["published"] = "false"
		}
		env.createPost(t, fields)
	}

	page := env.listPosts(t, "")
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
	require.Len(t, page.Blogs, 10)
	assert.Equal(t, "Post 11", page.Blogs[0].Title)
	for i := 1; i < len(page.Blogs); i++ {
		assert.False(t, page.Blogs[i].Date.After(page.Blogs[i-1].Date), "newest first")
	}

	page = env.listPosts(t, "?page=2")
	assert.Len(t, page.Blogs, 2)
	assert.Equal(t, 2, page.CurrentPage)

	page = env.listPosts(t, "?page=5&limit=5")
	assert.Empty(t, page.Blogs)
	assert.Equal(t, 3, page.TotalPages)

	page = env.listPosts(t, "?page=abc&limit=xyz")
	assert.Equal(t, 1, page.CurrentPage)
	assert.Len(t, page.Blogs, 10)

	page = env.listPosts(t, "?published=true")
	assert.Equal(t, int64(10), page.Total)

	page = env.listPosts(t, "?published=false")
	assert.Equal(t, int64(2), page.Total)

	page = env.listPosts(t, "?category=Life&published=true")
	assert.Equal(t, int64(5), page.Total)
	for _, p := range page.Blogs {
		assert.Equal(t, "Life", p.Category)
	}

	page = env.listPosts(t, "?search=marmot")
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "Post 03", page.Blogs[0].Title)

	page = env.listPosts(t, "?search=nothing-matches-this")
	assert.Zero(t, page.Total)
	assert.Equal(t, 0, page.TotalPages)
	assert.NotNil(t, page.Blogs)
}

func TestGetCategories(t *testing.T) {
	env := newTestEnv(t, nil)

	resp := env.doJSON(t, http.MethodGet, "/api/categories", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var categories []string
	decode(t, resp, &categories)
	assert.Empty(t, categories)

	for _, c := range []string{"Travel", "Go", "Travel"} {
		fields := postFields()
		fields["category"] = c
		env.createPost(t, fields)
	}

	resp = env.doJSON(t, http.MethodGet, "/api/categories", "", nil)
	decode(t, resp, &categories)
	assert.Equal(t, []string{"Go", "Travel"}, categories)
}
