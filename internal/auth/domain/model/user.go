package model

import (
	"strings"
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Platform roles. Workspace roles live in the workspace module.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account on the platform.
type User struct {
	ID           primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name         string               `json:"name" bson:"name"`
	Email        string               `json:"email" bson:"email"`
	PasswordHash string               `json:"-" bson:"passwordHash"`
	Avatar       string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Role         string               `json:"role" bson:"role"`
	Workspaces   []primitive.ObjectID `json:"workspaces" bson:"workspaces"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsAdmin reports whether the user carries the platform admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary is the public projection of a user embedded in other payloads.
type Summary struct {
	ID     primitive.ObjectID `json:"id" bson:"_id"`
	Name   string             `json:"name" bson:"name"`
	Email  string             `json:"email" bson:"email"`
	Avatar string             `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// ToSummary projects u to its public fields.
func (u *User) ToSummary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// ProfileUpdate carries the fields a user may change on themself.
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Avatar == nil
}

// NormalizeEmail lower-cases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	ErrUserNotFound       = apperrors.NewNotFoundError("user")
	ErrUserExists         = apperrors.NewConflictError("email is already registered")
	ErrInvalidCredentials = apperrors.NewAuthenticationError("invalid email or password")
	ErrWrongPassword      = apperrors.NewAuthenticationError("current password is incorrect")
	ErrSignupsDisabled    = apperrors.NewAuthorizationError("signups are currently disabled")
)
