package repository

import (
	"context"
	"errors"
	"strings"

	"ajayblog/internal/models"
	"ajayblog/internal/observability"

	"gorm.io/gorm"
)

// AdminRepository is the credential store for operator accounts.
type AdminRepository interface {
	// FindByUsername returns nil, nil when no admin has that username.
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	GetByID(ctx context.Context, id string) (*models.Admin, error)
	// Create inserts an admin whose Password is already hashed. Duplicate
	// usernames or emails fail with a CONFLICT AppError.
	Create(ctx context.Context, admin *models.Admin) error
	List(ctx context.Context) ([]models.Admin, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository returns a new AdminRepository implementation.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	defer observability.TrackQuery("find_by_username", "admins")()

	var admin models.Admin
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &admin, nil
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	defer observability.TrackQuery("get_by_id", "admins")()

	var admin models.Admin
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Admin", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &admin, nil
}

func (r *adminRepository) Create(ctx context.Context, admin *models.Admin) error {
	defer observability.TrackQuery("create", "admins")()

	if admin.Email != nil && strings.TrimSpace(*admin.Email) == "" {
		admin.Email = nil
	}

	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Admin with this username or email already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *adminRepository) List(ctx context.Context) ([]models.Admin, error) {
	defer observability.TrackQuery("list", "admins")()

	var admins []models.Admin
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&admins).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return admins, nil
}
