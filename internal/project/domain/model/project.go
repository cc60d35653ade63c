package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

// ValidProjectStatus reports whether s is a known project status.
func ValidProjectStatus(s string) bool {
	return s == ProjectActive || s == ProjectCompleted || s == ProjectArchived
}

// Project groups tasks, objectives, ideas, routines, secure ids and files
// inside a workspace.
type Project struct {
	ID                 primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Workspace          primitive.ObjectID   `json:"workspace" bson:"workspace"`
	Name               string               `json:"name" bson:"name"`
	Description        string               `json:"description" bson:"description"`
	Owner              primitive.ObjectID   `json:"owner" bson:"owner"`
	Members            []primitive.ObjectID `json:"members" bson:"members"`
	Status             string               `json:"status" bson:"status"`
	Color              string               `json:"color,omitempty" bson:"color,omitempty"`
	DueDate            *time.Time           `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	TaskCount          int64                `json:"taskCount" bson:"taskCount"`
	CompletedTaskCount int64                `json:"completedTaskCount" bson:"completedTaskCount"`
	CreatedAt          time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// IsMember reports whether userID is on the project.
func (p *Project) IsMember(userID primitive.ObjectID) bool {
	for _, m := range p.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// ProjectUpdate carries the PATCH-able fields.
type ProjectUpdate struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Color       *string    `json:"color,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	Workspace primitive.ObjectID
	Status    string
	// Member restricts the listing to projects userID belongs to; zero
	// means no restriction.
	Member primitive.ObjectID
}

var (
	ErrProjectNotFound     = apperrors.NewNotFoundError("project")
	ErrProjectAccess       = apperrors.NewAuthorizationError("you do not have access to this project")
	ErrProjectLimit        = apperrors.NewAuthorizationError("project limit reached for the current plan")
	ErrCannotRemoveOwner   = apperrors.NewValidationError("the project owner cannot be removed")
	ErrNotWorkspaceMember  = apperrors.NewValidationError("user is not a member of this workspace")
	ErrProjectDeleteDenied = apperrors.NewAuthorizationError("only the project owner or a workspace admin can delete this project")
)
