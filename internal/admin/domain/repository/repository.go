package repository

import (
	"context"

	"edwin/internal/admin/domain/model"
	"edwin/internal/shared/pagination"
)

// SettingsRepository persists the settings singleton.
type SettingsRepository interface {
	// Get returns the stored settings, or the defaults when none are stored.
	Get(ctx context.Context) (*model.GlobalSettings, error)
	Save(ctx context.Context, s *model.GlobalSettings) error
}

// SettingsCache holds a copy of the settings in front of the repository.
type SettingsCache interface {
	// Get reports false on a miss.
	Get(ctx context.Context) (*model.GlobalSettings, bool, error)
	Set(ctx context.Context, s *model.GlobalSettings) error
	Invalidate(ctx context.Context) error
}

// LogRepository persists system logs.
type LogRepository interface {
	InsertMany(ctx context.Context, logs []*model.SystemLog) error
	List(ctx context.Context, level string, page pagination.Params) ([]*model.SystemLog, int64, error)
}
