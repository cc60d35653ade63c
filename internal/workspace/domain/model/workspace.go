package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Workspace roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// ValidMemberRole reports whether role may be assigned to a non-owner.
func ValidMemberRole(role string) bool {
	return role == RoleAdmin || role == RoleMember
}

// Member is one entry of a workspace's member list.
type Member struct {
	User     primitive.ObjectID `json:"user" bson:"user"`
	Role     string             `json:"role" bson:"role"`
	JoinedAt time.Time          `json:"joinedAt" bson:"joinedAt"`
}

// Workspace is the tenant boundary: projects, messages and billing hang off it.
type Workspace struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description" bson:"description"`
	Owner        primitive.ObjectID `json:"owner" bson:"owner"`
	Members      []Member           `json:"members" bson:"members"`
	Subscription Subscription       `json:"subscription" bson:"subscription"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// MemberRole returns the role of userID, or "" when not a member.
func (w *Workspace) MemberRole(userID primitive.ObjectID) string {
	for _, m := range w.Members {
		if m.User == userID {
			return m.Role
		}
	}
	return ""
}

// IsMember reports whether userID belongs to the workspace.
func (w *Workspace) IsMember(userID primitive.ObjectID) bool {
	return w.MemberRole(userID) != ""
}

// HasRole reports whether userID holds one of roles.
func (w *Workspace) HasRole(userID primitive.ObjectID, roles ...string) bool {
	role := w.MemberRole(userID)
	if role == "" {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// CanManage reports whether userID is an owner or admin.
func (w *Workspace) CanManage(userID primitive.ObjectID) bool {
	return w.HasRole(userID, RoleOwner, RoleAdmin)
}

// MemberIDs lists the user ids of all members.
func (w *Workspace) MemberIDs() []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(w.Members))
	for _, m := range w.Members {
		ids = append(ids, m.User)
	}
	return ids
}

// Limits returns the limits of the workspace's current plan.
func (w *Workspace) Limits() PlanLimits {
	return LimitsFor(w.Subscription.Plan)
}

// WorkspaceUpdate carries the PATCH-able fields.
type WorkspaceUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// MemberView is a member joined with the user's public profile.
type MemberView struct {
	User     primitive.ObjectID `json:"user"`
	Name     string             `json:"name"`
	Email    string             `json:"email"`
	Avatar   string             `json:"avatar,omitempty"`
	Role     string             `json:"role"`
	JoinedAt time.Time          `json:"joinedAt"`
}

var (
	ErrWorkspaceNotFound = apperrors.NewNotFoundError("workspace")
	ErrNotMember         = apperrors.NewAuthorizationError("you are not a member of this workspace")
	ErrInsufficientRole  = apperrors.NewAuthorizationError("insufficient workspace role")
	ErrOwnerRequired     = apperrors.NewAuthorizationError("only the workspace owner can do this")
	ErrCannotRemoveOwner = apperrors.NewValidationError("the workspace owner cannot be removed")
	ErrCannotChangeOwner = apperrors.NewValidationError("the workspace owner's role cannot be changed")
	ErrMemberNotFound    = apperrors.NewNotFoundError("member")
)
