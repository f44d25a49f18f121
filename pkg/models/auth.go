package models

import "github.com/jordanlanch/printfast/pkg/authz"

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest represents a self-service registration request
type SignupRequest struct {
	Email           string     `json:"email" validate:"required,email"`
	Password        string     `json:"password" validate:"required,strongpassword"`
	ConfirmPassword string     `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string     `json:"firstName" validate:"required,max=50"`
	LastName        string     `json:"lastName" validate:"required,max=50"`
	Role            authz.Role `json:"role" validate:"required,oneof=god_user admin_user vendor_user"`
}

// ChangePasswordRequest represents a password change by the signed-in user
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,strongpassword"`
	ConfirmNewPassword string `json:"confirmNewPassword" validate:"required,eqfield=NewPassword"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	Token     string      `json:"token,omitempty"`
	ExpiresAt int64       `json:"expiresAt,omitempty"`
	User      SessionUser `json:"user"`
}

// PublicConfigResponse exposes the feature flags the login screen needs
type PublicConfigResponse struct {
	AllowAdminSignup        bool `json:"allowAdminSignup"`
	AllowSendGodCredentials bool `json:"allowSendGodCredentials"`
}
