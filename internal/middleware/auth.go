package middleware

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"ajayblog/internal/auth"
	"ajayblog/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AdminRequired rejects requests without a valid bearer token before any
// handler runs. A missing header is 401; a present but invalid or expired
// token is 403.
func AdminRequired(tokens *auth.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Access token required"))
		}

		id, err := tokens.Verify(tokenString)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "Token expired"
			}
			Logger.DebugContext(c.UserContext(), "rejected admin token", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError(msg, err))
		}

		c.Locals(LocalsAdminID, id.AdminID)
		c.Locals(LocalsUsername, id.Username)
		c.SetUserContext(context.WithValue(c.UserContext(), AdminIDKey, id.AdminID))

		return c.Next()
	}
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
