package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"ajayblog/internal/featureflags"
	"ajayblog/internal/models"
	"ajayblog/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateDefaults(t *testing.T) {
	f := newPostFixture(t, "")
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return fixed }

	in := validFields()
	in.Title = strPtr("  Spaced title  ")
	post, err := f.svc.CreatePost(context.Background(), in, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "  Spaced title  ", post.Title, "fields echo input exactly")
	assert.Equal(t, "Ajay", post.Author)
	assert.Equal(t, fixed, post.Date)
	assert.True(t, post.Published)
	assert.Equal(t, DefaultReadTime, post.ReadTime)
	assert.Equal(t, []string{}, post.Tags)
	assert.Empty(t, post.Image)
}

func TestPostService_CreateRequiresFields(t *testing.T) {
	f := newPostFixture(t, "")

	for _, field := range []string{"Title", "Excerpt", "Content", "Category"} {
		for _, value := range []*string{nil, strPtr(""), strPtr("   ")} {
			in := validFields()
			switch field {
			case "Title":
				in.Title = value
			case "Excerpt":
				in.Excerpt = value
			case "Content":
				in.Content = value
			case "Category":
				in.Category = value
			}
			_, err := f.svc.CreatePost(context.Background(), in, nil)
			assert.True(t, models.HasCode(err, models.CodeValidation), field)
		}
	}

	list, err := f.svc.ListPosts(context.Background(), ListPostsInput{})
	require.NoError(t, err)
	assert.Zero(t, list.Total)
}

func TestPostService_CreateExplicitValues(t *testing.T) {
	f := newPostFixture(t, "")
	date := time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC)

	in := validFields()
	in.Author = strPtr("Guest")
	in.Published = boolPtr(false)
	tags := ParseTags("a, b, c")
	in.Tags = &tags
	in.ReadTime = intPtr(12)
	in.Date = &date

	post, err := f.svc.CreatePost(context.Background(), in, nil)
	require.NoError(t, err)

	got, err := f.svc.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Guest", got.Author)
	assert.False(t, got.Published)
	assert.Equal(t, []string{"a", "b", "c"}, got.Tags)
	assert.Equal(t, 12, got.ReadTime)
	assert.True(t, date.Equal(got.Date))
}

func TestPostService_DerivedReadTime(t *testing.T) {
	f := newPostFixture(t, featureflags.DerivedReadTime+"=on")

	in := validFields()
	in.Content = strPtr(strings.Repeat("word ", 401))
	post, err := f.svc.CreatePost(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, post.ReadTime)

	in.ReadTime = intPtr(9)
	post, err = f.svc.CreatePost(context.Background(), in, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, post.ReadTime, "explicit readTime wins")
}

func TestEstimateReadTime(t *testing.T) {
	assert.Equal(t, 1, EstimateReadTime(""))
	assert.Equal(t, 1, EstimateReadTime("one two"))
	assert.Equal(t, 1, EstimateReadTime(strings.Repeat("w ", 200)))
	assert.Equal(t, 2, EstimateReadTime(strings.Repeat("w ", 201)))
}

func TestPostService_CreateWithImage(t *testing.T) {
	f := newPostFixture(t, "")

	post, err := f.svc.CreatePost(context.Background(), validFields(), pngUpload())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(post.Image, "/uploads/"))
	assert.True(t, strings.HasSuffix(post.Image, "-cover.png"))
	assert.Equal(t, 1, f.uploadCount(t))
}

func TestPostService_RejectedUploadWritesNothing(t *testing.T) {
	f := newPostFixture(t, "")
	ctx := context.Background()

	bad := []*ImageUpload{
		{Filename: "notes.txt", ContentType: "text/plain", Content: []byte("hello")},
		{Filename: "huge.png", ContentType: "image/png", Content: testutil.OversizedPNG(DefaultMaxUploadBytes + 1)},
	}
	for _, up := range bad {
		_, err := f.svc.CreatePost(ctx, validFields(), up)
		assert.Error(t, err)
	}

	existing, err := f.svc.CreatePost(ctx, validFields(), nil)
	require.NoError(t, err)
	for _, up := range bad {
		in := PostFields{Title: strPtr("Should not stick")}
		_, err := f.svc.UpdatePost(ctx, existing.ID, in, up)
		assert.Error(t, err)
	}

	got, err := f.svc.GetPost(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)

	list, err := f.svc.ListPosts(ctx, ListPostsInput{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 0, f.uploadCount(t))
}

func TestPostService_BlobRemovedWhenWriteFails(t *testing.T) {
	f := newPostFixture(t, "")
	ctx := context.Background()
	failing := &failingPostRepo{PostRepository: f.repo}
	f.svc.posts = failing

	failing.failCreate = true
	_, err := f.svc.CreatePost(ctx, validFields(), pngUpload())
	assert.True(t, models.HasCode(err, models.CodeInternal))
	assert.Equal(t, 0, f.uploadCount(t))

	failing.failCreate = false
	post, err := f.svc.CreatePost(ctx, validFields(), pngUpload())
	require.NoError(t, err)
	assert.Equal(t, 1, f.uploadCount(t))

	failing.failUpdate = true
	_, err = f.svc.UpdatePost(ctx, post.ID, PostFields{}, pngUpload())
	assert.Error(t, err)
	assert.Equal(t, 1, f.uploadCount(t), "only the original image remains")

	got, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Image, got.Image)
}

func TestPostService_UpdatePartial(t *testing.T) {
	f := newPostFixture(t, "")
	ctx := context.Background()

	in := validFields()
	tags := []string{"x", "y"}
	in.Tags = &tags
	in.Published = boolPtr(false)
	post, err := f.svc.CreatePost(ctx, in, pngUpload())
	require.NoError(t, err)

	updated, err := f.svc.UpdatePost(ctx, post.ID, PostFields{Title: strPtr("New title")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	assert.Equal(t, "Short", updated.Excerpt)
	assert.False(t, updated.Published, "absent published keeps stored value")
	assert.Equal(t, []string{"x", "y"}, updated.Tags)
	assert.Equal(t, post.Image, updated.Image, "image kept without new upload")

	empty := []string{}
	updated, err = f.svc.UpdatePost(ctx, post.ID, PostFields{Tags: &empty, Published: boolPtr(true)}, nil)
	require.NoError(t, err)
	assert.Empty(t, updated.Tags)
	assert.True(t, updated.Published)

	_, err = f.svc.UpdatePost(ctx, post.ID, PostFields{Category: strPtr(" ")}, nil)
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestPostService_UpdateReplacesImage(t *testing.T) {
	f := newPostFixture(t, "")
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, validFields(), pngUpload())
	require.NoError(t, err)

	jpg := &ImageUpload{Filename: "new.jpg", ContentType: "image/jpeg", Content: testutil.JPEGBytes()}
	updated, err := f.svc.UpdatePost(ctx, post.ID, PostFields{}, jpg)
	require.NoError(t, err)
	assert.NotEqual(t, post.Image, updated.Image)
	assert.True(t, strings.HasSuffix(updated.Image, "-new.jpg"))
	assert.Equal(t, 1, f.uploadCount(t), "previous image is cleaned up")
}

func TestPostService_UpdateAndDeleteMissing(t *testing.T) {
	f := newPostFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.UpdatePost(ctx, "missing", validFields(), nil)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	err = f.svc.DeletePost(ctx, "missing")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostService_Delete(t *testing.T) {
	f := newPostFixture(t, "")
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, validFields(), pngUpload())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePost(ctx, post.ID))
	_, err = f.svc.GetPost(ctx, post.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.Equal(t, 0, f.uploadCount(t))

	err = f.svc.DeletePost(ctx, post.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostService_ListPagination(t *testing.T) {
	f := newPostFixture(t, "")
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		in := validFields()
		in.Title = strPtr(fmt.Sprintf("Post %d", i))
		d := base.Add(time.Duration(i) * time.Minute)
		in.Date = &d
		_, err := f.svc.CreatePost(ctx, in, nil)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		in        ListPostsInput
		wantItems int
		wantPages int
		wantPage  int
	}{
		{"defaults", ListPostsInput{}, 10, 3, 1},
		{"last page", ListPostsInput{Page: 3}, 5, 3, 3},
		{"past the end", ListPostsInput{Page: 9}, 0, 3, 9},
		{"page below one", ListPostsInput{Page: -2}, 10, 3, 1},
		{"exact division", ListPostsInput{Limit: 5, Page: 5}, 5, 5, 5},
		{"limit clamped high", ListPostsInput{Limit: 1000}, 25, 1, 1},
		{"limit clamped low", ListPostsInput{Limit: -4}, 1, 25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.svc.ListPosts(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, int64(25), res.Total)
			assert.Len(t, res.Blogs, tt.wantItems)
			assert.Equal(t, tt.wantPages, res.TotalPages)
			assert.Equal(t, tt.wantPage, res.CurrentPage)
		})
	}

	res, err := f.svc.ListPosts(ctx, ListPostsInput{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "Post 24", res.Blogs[0].Title, "newest first")
}

func TestPostService_ListEmpty(t *testing.T) {
	f := newPostFixture(t, "")
	res, err := f.svc.ListPosts(context.Background(), ListPostsInput{Search: "nothing"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Total)
	assert.Equal(t, 0, res.TotalPages)
	assert.NotNil(t, res.Blogs)
	assert.Empty(t, res.Blogs)
}

func TestPostService_Categories(t *testing.T) {
	f := newPostFixture(t, "")
	ctx := context.Background()

	for _, c := range []string{"Go", "Life", "Go"} {
		in := validFields()
		in.Category = strPtr(c)
		_, err := f.svc.CreatePost(ctx, in, nil)
		require.NoError(t, err)
	}

	cats, err := f.svc.Categories(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Go", "Life"}, cats)
}
