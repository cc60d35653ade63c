package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Routine frequencies.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// ValidFrequency reports whether f is a known frequency.
func ValidFrequency(f string) bool {
	return f == FrequencyDaily || f == FrequencyWeekly || f == FrequencyMonthly
}

// Routine is a recurring activity with a completion streak.
type Routine struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Project         primitive.ObjectID `json:"project" bson:"project"`
	Title           string             `json:"title" bson:"title"`
	Description     string             `json:"description" bson:"description"`
	Frequency       string             `json:"frequency" bson:"frequency"`
	Streak          int                `json:"streak" bson:"streak"`
	LastCompletedAt *time.Time         `json:"lastCompletedAt,omitempty" bson:"lastCompletedAt,omitempty"`
	CreatedBy       primitive.ObjectID `json:"createdBy" bson:"createdBy"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// RoutineInput is the create and PATCH body.
type RoutineInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Frequency   *string `json:"frequency,omitempty"`
}

// PeriodStart truncates t (in UTC) to the start of its period: the day,
// the ISO week starting Monday, or the month.
func PeriodStart(frequency string, t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch frequency {
	case FrequencyWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case FrequencyMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// NextPeriodStart returns the start of the period following the one that
// contains t.
func NextPeriodStart(frequency string, t time.Time) time.Time {
	start := PeriodStart(frequency, t)
	switch frequency {
	case FrequencyWeekly:
		return start.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// NextStreak applies a completion at now. It fails with
// ErrRoutineAlreadyCompleted when the current period is already done.
func (r *Routine) NextStreak(now time.Time) (int, error) {
	if r.LastCompletedAt == nil {
		return 1, nil
	}
	last := PeriodStart(r.Frequency, *r.LastCompletedAt)
	current := PeriodStart(r.Frequency, now)
	switch {
	case !current.After(last):
		return 0, ErrRoutineAlreadyCompleted
	case current.Equal(NextPeriodStart(r.Frequency, *r.LastCompletedAt)):
		return r.Streak + 1, nil
	default:
		return 1, nil
	}
}

var (
	ErrRoutineNotFound         = apperrors.NewNotFoundError("routine")
	ErrRoutineAlreadyCompleted = apperrors.NewConflictError("routine already completed for this period")
)
