package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses.
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationRevoked  = "revoked"
	InvitationExpired  = "expired"
)

// Invitation asks an email address to join a workspace.
type Invitation struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Workspace primitive.ObjectID `json:"workspace" bson:"workspace"`
	Email     string             `json:"email" bson:"email"`
	Role      string             `json:"role" bson:"role"`
	Token     string             `json:"token" bson:"token"`
	InvitedBy primitive.ObjectID `json:"invitedBy" bson:"invitedBy"`
	Status    string             `json:"status" bson:"status"`
	ExpiresAt time.Time          `json:"expiresAt" bson:"expiresAt"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// Expired reports whether the invitation is past its expiry at now.
func (i *Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

var (
	ErrInvitationNotFound    = apperrors.NewNotFoundError("invitation")
	ErrInvitationNotPending  = apperrors.NewConflictError("invitation is no longer pending")
	ErrInvitationExpired     = apperrors.NewGoneError("invitation has expired")
	ErrInvitationEmail       = apperrors.NewAuthorizationError("this invitation was sent to a different email address")
	ErrAlreadyMember         = apperrors.NewConflictError("user is already a member of this workspace")
	ErrInvitationOutstanding = apperrors.NewConflictError("an invitation for this email is already pending")
	ErrMemberLimit           = apperrors.NewAuthorizationError("member limit reached for the current plan")
)
