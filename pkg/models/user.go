package models

import (
	"time"

	"github.com/jordanlanch/printfast/pkg/authz"
)

// User is a user account row
type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Role         authz.Role `db:"role"`
	IsActive     bool       `db:"is_active"`
	CreatedBy    *string    `db:"created_by"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// SessionUser is the compact identity returned by auth endpoints
type SessionUser struct {
	UserID    string     `json:"userId"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      authz.Role `json:"role"`
}

// UserResponse represents a user in responses
type UserResponse struct {
	UserID      string     `json:"userId"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        authz.Role `json:"role"`
	IsActive    bool       `json:"isActive"`
	CreatedBy   *string    `json:"createdBy"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ToSessionUser converts a user row to its compact identity
func (u *User) ToSessionUser() SessionUser {
	return SessionUser{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
	}
}

// ToResponse converts a user row to its detail payload
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		UserID:      u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		IsActive:    u.IsActive,
		CreatedBy:   u.CreatedBy,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// CreateUserRequest is sent by god/admin users to provision an account.
// The password is generated server-side and returned once.
type CreateUserRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	FirstName string     `json:"firstName" validate:"required,max=50"`
	LastName  string     `json:"lastName" validate:"required,max=50"`
	Role      authz.Role `json:"role" validate:"required,oneof=god_user admin_user vendor_user"`
}

// CreateUserResponse carries the generated password alongside the new account
type CreateUserResponse struct {
	User              UserResponse `json:"user"`
	GeneratedPassword string       `json:"generatedPassword"`
}

// UpdateUserRequest patches name and email of a user (or of the caller's own profile)
type UpdateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=50"`
	Email     *string `json:"email" validate:"omitempty,email"`
}

// UserListQuery holds list filters for users
type UserListQuery struct {
	ListQuery
	Role     string `query:"role" validate:"omitempty,oneof=god_user admin_user vendor_user"`
	IsActive *bool  `query:"-"`
}
