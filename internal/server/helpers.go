package server

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"ajayblog/internal/middleware"
	"ajayblog/internal/models"
	"ajayblog/internal/service"

	"github.com/gofiber/fiber/v2"
)

var errRouteNotFound = &models.AppError{Code: models.CodeNotFound, Message: "Not found"}

// statusFor maps an error to its HTTP status. Errors outside the AppError
// taxonomy are internal.
func statusFor(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}

	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeUnsupportedMedia:
		return fiber.StatusUnsupportedMediaType
	case models.CodePayloadTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case models.CodeRateLimited:
		return fiber.StatusTooManyRequests
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Internal failures are
// logged with their cause, which the client never sees.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// parseListQuery reads page, limit and the filter options. Non-numeric page
// or limit values fall back to their defaults; clamping happens in the
// service.
func parseListQuery(c *fiber.Ctx) service.ListPostsInput {
	in := service.ListPostsInput{
		Page:     c.QueryInt("page", 1),
		Limit:    c.QueryInt("limit", service.DefaultPageSize),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	// Present with anything other than "true", including empty, means false.
	if c.Context().QueryArgs().Has("published") {
		published := c.Query("published") == "true"
		in.Published = &published
	}
	return in
}

// readPostRequest decodes post fields from a multipart, urlencoded or JSON
// body, plus the optional image from a multipart body.
func (s *Server) readPostRequest(c *fiber.Ctx) (service.PostFields, *service.ImageUpload, error) {
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))

	switch {
	case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
		form, err := c.MultipartForm()
		if err != nil {
			return service.PostFields{}, nil, models.NewValidationError("Invalid multipart form")
		}
		fields, err := service.FieldsFromForm(func(key string) (string, bool) {
			values, ok := form.Value[key]
			if !ok || len(values) == 0 {
				return "", false
			}
			return values[0], true
		})
		if err != nil {
			return service.PostFields{}, nil, err
		}
		upload, err := s.readImage(form.File)
		if err != nil {
			return service.PostFields{}, nil, err
		}
		return fields, upload, nil

	case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
		args := c.Request().PostArgs()
		fields, err := service.FieldsFromForm(func(key string) (string, bool) {
			if !args.Has(key) {
				return "", false
			}
			return string(args.Peek(key)), true
		})
		return fields, nil, err

	default:
		body := bytes.TrimSpace(c.Body())
		if len(body) == 0 {
			body = []byte("{}")
		}
		fields, err := service.FieldsFromJSON(body)
		return fields, nil, err
	}
}

// readImage returns the single file sent under the image field, or nil when
// none was sent.
func (s *Server) readImage(files map[string][]*multipart.FileHeader) (*service.ImageUpload, error) {
	for field := range files {
		if field != imageField {
			return nil, models.NewValidationError("Unexpected file field: " + field)
		}
	}

	headers := files[imageField]
	if len(headers) == 0 {
		return nil, nil
	}
	if len(headers) > 1 {
		return nil, models.NewValidationError("Only one image may be uploaded per request")
	}

	fh := headers[0]
	if err := s.uploads.CheckSize(fh.Size); err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(io.LimitReader(f, s.uploads.MaxBytes()+1))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	}, nil
}
