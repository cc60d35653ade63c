package model

import (
	"time"

	apperrors "edwin/internal/shared/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsID is the _id of the settings singleton.
const SettingsID = "global"

// MaxAnnouncementLength bounds the banner text.
const MaxAnnouncementLength = 500

// Log levels stored in system logs.
const (
	LevelError = "error"
	LevelFatal = "fatal"
	LevelPanic = "panic"
)

// SystemLog is a persisted error-level log entry.
type SystemLog struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Level     string                 `json:"level" bson:"level"`
	Message   string                 `json:"message" bson:"message"`
	Source    string                 `json:"source" bson:"source"`
	Fields    map[string]interface{} `json:"fields,omitempty" bson:"fields,omitempty"`
	CreatedAt time.Time              `json:"createdAt" bson:"createdAt"`
}

// GlobalSettings is the platform-wide configuration singleton.
type GlobalSettings struct {
	ID              string              `json:"-" bson:"_id"`
	MaintenanceMode bool                `json:"maintenanceMode" bson:"maintenanceMode"`
	AllowSignups    bool                `json:"allowSignups" bson:"allowSignups"`
	Announcement    string              `json:"announcement" bson:"announcement"`
	DefaultPlan     string              `json:"defaultPlan" bson:"defaultPlan"`
	UpdatedBy       *primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// DefaultSettings is used until an admin saves settings for the first time.
func DefaultSettings() *GlobalSettings {
	return &GlobalSettings{ID: SettingsID, AllowSignups: true, DefaultPlan: "free"}
}

// Public is the unauthenticated projection.
func (s *GlobalSettings) Public() PublicSettings {
	return PublicSettings{
		MaintenanceMode: s.MaintenanceMode,
		AllowSignups:    s.AllowSignups,
		Announcement:    s.Announcement,
	}
}

// PublicSettings is served at /api/settings/public.
type PublicSettings struct {
	MaintenanceMode bool   `json:"maintenanceMode"`
	AllowSignups    bool   `json:"allowSignups"`
	Announcement    string `json:"announcement"`
}

// SettingsUpdate is the body of PATCH /api/admin/settings.
type SettingsUpdate struct {
	MaintenanceMode *bool   `json:"maintenanceMode"`
	AllowSignups    *bool   `json:"allowSignups"`
	Announcement    *string `json:"announcement"`
	DefaultPlan     *string `json:"defaultPlan"`
}

// IsEmpty reports whether the update changes nothing.
func (u SettingsUpdate) IsEmpty() bool {
	return u.MaintenanceMode == nil && u.AllowSignups == nil && u.Announcement == nil && u.DefaultPlan == nil
}

// Apply copies the present fields onto s.
func (u SettingsUpdate) Apply(s *GlobalSettings) {
	if u.MaintenanceMode != nil {
		s.MaintenanceMode = *u.MaintenanceMode
	}
	if u.AllowSignups != nil {
		s.AllowSignups = *u.AllowSignups
	}
	if u.Announcement != nil {
		s.Announcement = *u.Announcement
	}
	if u.DefaultPlan != nil {
		s.DefaultPlan = *u.DefaultPlan
	}
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users            int64            `json:"users"`
	Workspaces       int64            `json:"workspaces"`
	Projects         int64            `json:"projects"`
	Tasks            int64            `json:"tasks"`
	PlanDistribution map[string]int64 `json:"planDistribution"`
}

var (
	ErrEmptySettingsUpdate = apperrors.NewValidationError("no settings to update")
	ErrInvalidDefaultPlan  = apperrors.NewValidationError("defaultPlan must be free, pro or enterprise")
	ErrAnnouncementTooLong = apperrors.NewValidationError("announcement is too long")
	ErrInvalidLogLevel     = apperrors.NewValidationError("level must be error, fatal or panic")
)
