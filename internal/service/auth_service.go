package service

import (
	"context"
	"log/slog"
	"strings"

	"ajayblog/internal/auth"
	"ajayblog/internal/middleware"
	"ajayblog/internal/models"
	"ajayblog/internal/observability"
	"ajayblog/internal/repository"
	"ajayblog/internal/validation"
)

// AuthService logs admins in and manages admin accounts.
type AuthService struct {
	admins repository.AdminRepository
	tokens *auth.TokenService
}

func NewAuthService(admins repository.AdminRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{admins: admins, tokens: tokens}
}

// Login checks credentials and issues a session token. Unknown users and
// wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		observability.LoginAttempts.WithLabelValues("invalid_request").Inc()
		return nil, models.NewValidationError("Username and password are required")
	}

	admin, err := s.admins.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		observability.LoginAttempts.WithLabelValues("error").Inc()
		return nil, err
	}
	if admin == nil || !auth.CheckPassword(admin.Password, password) {
		observability.LoginAttempts.WithLabelValues("rejected").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.tokens.Issue(auth.Identity{AdminID: admin.ID, Username: admin.Username})
	if err != nil {
		observability.LoginAttempts.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	observability.LoginAttempts.WithLabelValues("success").Inc()
	return &models.LoginResponse{
		Token:     token,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
		Admin:     admin.Identity(),
	}, nil
}

// CurrentAdmin loads the admin a verified token refers to.
func (s *AuthService) CurrentAdmin(ctx context.Context, adminID string) (*models.Admin, error) {
	return s.admins.GetByID(ctx, adminID)
}

// CreateAdmin validates and stores a new admin account.
func (s *AuthService) CreateAdmin(ctx context.Context, req models.CreateAdminRequest) (*models.Admin, error) {
	username := strings.TrimSpace(req.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var email *string
	if e := strings.ToLower(strings.TrimSpace(req.Email)); e != "" {
		if err := validation.ValidateEmail(e); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		email = &e
	}

	return s.createAdmin(ctx, username, req.Password, email)
}

// EnsureDefaultAdmin creates the bootstrap admin when no admin with that
// username exists. The password is not checked against the strength rules.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password, email string) (bool, error) {
	existing, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	var emailPtr *string
	if e := strings.ToLower(strings.TrimSpace(email)); e != "" {
		emailPtr = &e
	}

	if _, err := s.createAdmin(ctx, username, password, emailPtr); err != nil {
		// Another instance may have seeded it concurrently.
		if models.HasCode(err, models.CodeConflict) {
			return false, nil
		}
		return false, err
	}

	middleware.Logger.InfoContext(ctx, "Default admin created", slog.String("username", username))
	return true, nil
}

func (s *AuthService) createAdmin(ctx context.Context, username, password string, email *string) (*models.Admin, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	admin := &models.Admin{Username: username, Password: hash, Email: email}
	if err := s.admins.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// ListAdmins returns every admin account, oldest first.
func (s *AuthService) ListAdmins(ctx context.Context) ([]models.Admin, error) {
	return s.admins.List(ctx)
}
