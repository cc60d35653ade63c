package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task statuses.
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidTaskStatus reports whether s is a known task status.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task is a unit of work inside a project.
type Task struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Project     primitive.ObjectID   `json:"project" bson:"project"`
	Workspace   primitive.ObjectID   `json:"workspace" bson:"workspace"`
	Title       string               `json:"title" bson:"title"`
	Description string               `json:"description" bson:"description"`
	Status      string               `json:"status" bson:"status"`
	Priority    string               `json:"priority" bson:"priority"`
	Assignees   []primitive.ObjectID `json:"assignees" bson:"assignees"`
	DueDate     *time.Time           `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Tags        []string             `json:"tags" bson:"tags"`
	CreatedBy   primitive.ObjectID   `json:"createdBy" bson:"createdBy"`
	CompletedAt *time.Time           `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	CreatedAt   time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt" bson:"updatedAt"`
}

// TaskUpdate carries the PATCH-able fields.
type TaskUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Assignees   *[]string  `json:"assignees,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Tags        *[]string  `json:"tags,omitempty"`
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	Project  primitive.ObjectID
	Status   string
	Priority string
	Assignee primitive.ObjectID
}

var (
	ErrTaskNotFound       = apperrors.NewNotFoundError("task")
	ErrAssigneeNotMember  = apperrors.NewValidationError("assignees must be project members")
	ErrConcurrentTaskEdit = apperrors.NewConflictError("task was modified concurrently, please retry")
)

// TaskChanges is a resolved task update ready for storage.
type TaskChanges struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Assignees   *[]primitive.ObjectID
	DueDate     *time.Time
	Tags        *[]string
	// CompletedAt is applied when SetCompletedAt is true; nil clears it.
	SetCompletedAt bool
	CompletedAt    *time.Time
}
