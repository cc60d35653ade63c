package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SecureID is an encrypted credential stored for a project. Password holds
// ciphertext and never leaves the server except through the reveal call.
type SecureID struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Project   primitive.ObjectID `bson:"project"`
	Title     string             `bson:"title"`
	Username  string             `bson:"username"`
	Password  string             `bson:"password"`
	URL       string             `bson:"url"`
	Notes     string             `bson:"notes"`
	CreatedBy primitive.ObjectID `bson:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// SecureIDView is the listing shape; it only says whether a secret exists.
type SecureIDView struct {
	ID          primitive.ObjectID `json:"id"`
	Project     primitive.ObjectID `json:"project"`
	Title       string             `json:"title"`
	Username    string             `json:"username"`
	URL         string             `json:"url"`
	Notes       string             `json:"notes"`
	HasPassword bool               `json:"hasPassword"`
	CreatedBy   primitive.ObjectID `json:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// View strips the ciphertext.
func (s *SecureID) View() SecureIDView {
	return SecureIDView{
		ID:          s.ID,
		Project:     s.Project,
		Title:       s.Title,
		Username:    s.Username,
		URL:         s.URL,
		Notes:       s.Notes,
		HasPassword: s.Password != "",
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SecureIDInput is the create and PATCH body. A nil Password on update
// leaves the stored secret untouched; an empty one clears it.
type SecureIDInput struct {
	Title    *string `json:"title,omitempty"`
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
	URL      *string `json:"url,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// Revealed is the reveal response.
type Revealed struct {
	Password string `json:"password"`
}

var ErrSecureIDNotFound = apperrors.NewNotFoundError("secure id")
