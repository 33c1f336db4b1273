package server

import (
	"github.com/gofiber/fiber/v2"
)

// ListPosts handles GET /api/blogs
// @Summary List blog posts
// @Description Newest first, with optional category, published and search filters
// @Tags blogs
// @Produce json
// @Param page query int false "1-based page number" default(1)
// @Param limit query int false "Page size (1-100)" default(10)
// @Param category query string false "Exact category"
// @Param published query string false "\"true\" for published posts, anything else for drafts"
// @Param search query string false "Case-insensitive substring over title, excerpt, content, category and tags"
// @Success 200 {object} models.PostListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /blogs [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	result, err := s.postService.ListPosts(c.UserContext(), parseListQuery(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(result)
}

// GetPost handles GET /api/blogs/:id
// @Summary Get a blog post
// @Tags blogs
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	post, err := s.postService.GetPost(c.UserContext(), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/blogs
// @Summary Create a blog post
// @Description Multipart form with an optional "image" file, or a JSON body
// @Tags blogs
// @Accept multipart/form-data,json
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param excerpt formData string true "Excerpt"
// @Param content formData string true "Content"
// @Param category formData string true "Category"
// @Param author formData string false "Author"
// @Param tags formData string false "Comma-separated tags"
// @Param readTime formData int false "Read time in minutes"
// @Param published formData string false "Boolean-like flag"
// @Param date formData string false "ISO-8601 date"
// @Param image formData file false "Cover image (jpeg, png, gif, webp)"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Failure 415 {object} models.ErrorResponse
// @Router /blogs [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	fields, upload, err := s.readPostRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), fields, upload)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/blogs/:id
// @Summary Update a blog post
// @Description Only the fields present are changed. The image is replaced only when a new one is uploaded.
// @Tags blogs
// @Accept multipart/form-data,json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	fields, upload, err := s.readPostRequest(c)
	if err != nil {
		return s.respondError(c, err)
	}

	post, err := s.postService.UpdatePost(c.UserContext(), c.Params("id"), fields, upload)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/blogs/:id
// @Summary Delete a blog post
// @Tags blogs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	if err := s.postService.DeletePost(c.UserContext(), c.Params("id")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Blog post deleted successfully"})
}

// GetCategories handles GET /api/categories
// @Summary List categories
// @Description Distinct categories across all posts, sorted
// @Tags blogs
// @Produce json
// @Success 200 {array} string
// @Router /categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	categories, err := s.postService.Categories(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(categories)
}
