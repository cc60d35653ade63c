package model

import (
	"math"
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Objective statuses.
const (
	ObjectiveNotStarted = "not_started"
	ObjectiveInProgress = "in_progress"
	ObjectiveAchieved   = "achieved"
	ObjectiveMissed     = "missed"
)

// ValidObjectiveStatus reports whether s is a known objective status.
func ValidObjectiveStatus(s string) bool {
	switch s {
	case ObjectiveNotStarted, ObjectiveInProgress, ObjectiveAchieved, ObjectiveMissed:
		return true
	}
	return false
}

// KeyResult is a measurable target of an objective.
type KeyResult struct {
	Title   string  `json:"title" bson:"title"`
	Target  float64 `json:"target" bson:"target"`
	Current float64 `json:"current" bson:"current"`
}

// Objective is a goal tracked by its key results.
type Objective struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Project     primitive.ObjectID `json:"project" bson:"project"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Status      string             `json:"status" bson:"status"`
	Progress    int                `json:"progress" bson:"progress"`
	KeyResults  []KeyResult        `json:"keyResults" bson:"keyResults"`
	DueDate     *time.Time         `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ObjectiveInput is the create and PATCH body.
type ObjectiveInput struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Status      *string      `json:"status,omitempty"`
	Progress    *int         `json:"progress,omitempty"`
	KeyResults  *[]KeyResult `json:"keyResults,omitempty"`
	DueDate     *time.Time   `json:"dueDate,omitempty"`
}

// ComputeProgress is round(mean(min(current/target, 1)) * 100) over the key
// results. It returns false when there are none.
func ComputeProgress(krs []KeyResult) (int, bool) {
	if len(krs) == 0 {
		return 0, false
	}
	var sum float64
	for _, kr := range krs {
		ratio := kr.Current / kr.Target
		if ratio > 1 {
			ratio = 1
		}
		if ratio < 0 {
			ratio = 0
		}
		sum += ratio
	}
	return int(math.Round(sum / float64(len(krs)) * 100)), true
}

// ValidateKeyResults checks every key result has a title, target > 0 and
// current >= 0.
func ValidateKeyResults(krs []KeyResult) error {
	for i, kr := range krs {
		if kr.Title == "" {
			return apperrors.NewValidationError("key result title is required").WithDetail("index", i)
		}
		if kr.Target <= 0 || math.IsNaN(kr.Target) || math.IsInf(kr.Target, 0) {
			return apperrors.NewValidationError("key result target must be greater than 0").WithDetail("index", i)
		}
		if kr.Current < 0 || math.IsNaN(kr.Current) || math.IsInf(kr.Current, 0) {
			return apperrors.NewValidationError("key result current must be 0 or more").WithDetail("index", i)
		}
	}
	return nil
}

var ErrObjectiveNotFound = apperrors.NewNotFoundError("objective")
