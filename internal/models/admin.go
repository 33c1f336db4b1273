package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin is an operator account allowed to mutate posts. Password holds the
// bcrypt hash and is never serialized.
type Admin struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null;size:64" json:"username"`
	Password  string    `gorm:"not null" json:"-"`
	Email     *string   `gorm:"uniqueIndex;size:255" json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns the identifier at insert time.
func (a *Admin) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AdminIdentity is the public projection of an Admin returned by login.
type AdminIdentity struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
}

// Identity projects the admin without its password hash.
func (a *Admin) Identity() AdminIdentity {
	return AdminIdentity{ID: a.ID, Username: a.Username, Email: a.Email}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token     string        `json:"token"`
	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int64         `json:"expiresIn"`
	Admin     AdminIdentity `json:"admin"`
}

// CreateAdminRequest is the body of POST /api/admin/admins.
type CreateAdminRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}
