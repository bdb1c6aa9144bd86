package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of user roles.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTeacher, RoleStudent, RoleAdmin:
		return true
	}
	return false
}

// User is an application profile. ExternalID is the identity-provider subject
// the profile is resolved from.
type User struct {
	ID             uuid.UUID   `json:"id"`
	ExternalID     string      `json:"external_id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Role           Role        `json:"role"`
	ProfilePicture string      `json:"profile_picture"`
	ClassIDs       []uuid.UUID `json:"class_ids"`
	PasswordHash   string      `json:"-"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
	LastLogin      *time.Time  `json:"last_login,omitempty"`
}

// Summary returns the short form used in auth responses.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserSummary is the public projection of a user.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  Role      `json:"role"`
}

// RegisterRequest covers both providers: local registration sends email and
// password, external registration sends the provider's id_token.
type RegisterRequest struct {
	Email    string `json:"email" binding:"omitempty,email,max=255"`
	Password string `json:"password" binding:"omitempty,min=6,max=128"`
	IDToken  string `json:"id_token" binding:"omitempty"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Role     Role   `json:"role" binding:"required,oneof=teacher student"`
}

// LoginRequest mirrors RegisterRequest: email+password or id_token.
type LoginRequest struct {
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"omitempty"`
	IDToken  string `json:"id_token" binding:"omitempty"`
}

// LoginResponse is returned after a successful login. Token is only set for
// locally issued tokens.
type LoginResponse struct {
	Token     string      `json:"token,omitempty"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
	User      UserSummary `json:"user"`
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email          *string `json:"email" binding:"omitempty,email,max=255"`
	ProfilePicture *string `json:"profile_picture" binding:"omitempty,max=512"`
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	PageQuery
	Role Role `form:"role" binding:"omitempty,oneof=teacher student admin"`
}
