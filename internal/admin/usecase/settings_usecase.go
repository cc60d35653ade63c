package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"edwin/internal/admin/domain/model"
	"edwin/internal/admin/domain/repository"
	"edwin/internal/shared/logger"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsUsecase serves the settings singleton through a cache. A cache
// outage degrades to reading MongoDB.
type SettingsUsecase struct {
	repo  repository.SettingsRepository
	cache repository.SettingsCache
	log   logger.Logger
}

// NewSettingsUsecase wires settings. cache may be nil.
func NewSettingsUsecase(repo repository.SettingsRepository, cache repository.SettingsCache, log logger.Logger) *SettingsUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &SettingsUsecase{repo: repo, cache: cache, log: log.WithComponent("settings")}
}

// Get returns the current settings.
func (uc *SettingsUsecase) Get(ctx context.Context) (*model.GlobalSettings, error) {
	if uc.cache != nil {
		s, ok, err := uc.cache.Get(ctx)
		if err != nil {
			uc.log.Warnf("settings cache read failed: %v", err)
		} else if ok {
			return s, nil
		}
	}
	s, err := uc.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Set(ctx, s); err != nil {
			uc.log.Warnf("settings cache write failed: %v", err)
		}
	}
	return s, nil
}

// Public returns the unauthenticated projection.
func (uc *SettingsUsecase) Public(ctx context.Context) (model.PublicSettings, error) {
	s, err := uc.Get(ctx)
	if err != nil {
		return model.PublicSettings{}, err
	}
	return s.Public(), nil
}

// Update applies a partial update and drops the cached copy.
func (uc *SettingsUsecase) Update(ctx context.Context, callerID primitive.ObjectID, update model.SettingsUpdate) (*model.GlobalSettings, error) {
	if update.IsEmpty() {
		return nil, model.ErrEmptySettingsUpdate
	}
	if update.DefaultPlan != nil {
		plan := strings.ToLower(strings.TrimSpace(*update.DefaultPlan))
		if !wsmodel.ValidPlan(plan) {
			return nil, model.ErrInvalidDefaultPlan
		}
		update.DefaultPlan = &plan
	}
	if update.Announcement != nil {
		text := strings.TrimSpace(*update.Announcement)
		if utf8.RuneCountInString(text) > model.MaxAnnouncementLength {
			return nil, model.ErrAnnouncementTooLong
		}
		update.Announcement = &text
	}

	s, err := uc.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	update.Apply(s)
	s.UpdatedBy = &callerID
	if err := uc.repo.Save(ctx, s); err != nil {
		return nil, err
	}
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Errorf("settings cache invalidation failed: %v", err)
		}
	}
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"maintenance":  s.MaintenanceMode,
		"allowSignups": s.AllowSignups,
		"defaultPlan":  s.DefaultPlan,
	}).Info("global settings updated")
	return s, nil
}

// SignupsAllowed implements the auth signup policy.
func (uc *SettingsUsecase) SignupsAllowed(ctx context.Context) (bool, error) {
	s, err := uc.Get(ctx)
	if err != nil {
		return false, err
	}
	return s.AllowSignups, nil
}

// DefaultPlan is the plan new workspaces start on. Errors fall back to free.
func (uc *SettingsUsecase) DefaultPlan(ctx context.Context) string {
	s, err := uc.Get(ctx)
	if err != nil || !wsmodel.ValidPlan(s.DefaultPlan) {
		return wsmodel.PlanFree
	}
	return s.DefaultPlan
}

// MaintenanceMode reports whether the platform is closed to non-admins.
// Errors keep the platform open.
func (uc *SettingsUsecase) MaintenanceMode(ctx context.Context) bool {
	s, err := uc.Get(ctx)
	if err != nil {
		uc.log.Warnf("maintenance check failed: %v", err)
		return false
	}
	return s.MaintenanceMode
}
