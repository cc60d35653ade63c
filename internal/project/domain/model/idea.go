package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Idea statuses.
const (
	IdeaOpen     = "open"
	IdeaAccepted = "accepted"
	IdeaRejected = "rejected"
)

// ValidIdeaStatus reports whether s is a known idea status.
func ValidIdeaStatus(s string) bool {
	return s == IdeaOpen || s == IdeaAccepted || s == IdeaRejected
}

// Idea is a proposal members can vote on.
type Idea struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Project     primitive.ObjectID   `json:"project" bson:"project"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Status      string               `json:"status" bson:"status"`
	Votes       []primitive.ObjectID `json:"votes" bson:"votes"`
	CreatedBy   primitive.ObjectID   `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IdeaInput is the create and PATCH body.
type IdeaInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// VoteResult is returned by the vote toggle.
type VoteResult struct {
	Voted     bool `json:"voted"`
	VoteCount int  `json:"voteCount"`
}

var ErrIdeaNotFound = apperrors.NewNotFoundError("idea")
