package usecase

import (
	"context"
	"strings"

	"edwin/internal/admin/domain/model"
	"edwin/internal/admin/domain/repository"
	"edwin/internal/shared/pagination"

	"golang.org/x/sync/errgroup"
)

// Counter counts the documents of one collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// PlanCounter groups workspaces by plan.
type PlanCounter interface {
	PlanDistribution(ctx context.Context) (map[string]int64, error)
}

// StatsSources are installed once the counted modules exist.
type StatsSources struct {
	Users      Counter
	Workspaces Counter
	Projects   Counter
	Tasks      Counter
	Plans      PlanCounter
}

// AdminUsecase serves the dashboard and the system log.
type AdminUsecase struct {
	logs    repository.LogRepository
	sources StatsSources
}

func NewAdminUsecase(logs repository.LogRepository) *AdminUsecase {
	return &AdminUsecase{logs: logs}
}

// SetStatsSources installs the counters. Missing ones count as zero.
func (uc *AdminUsecase) SetStatsSources(s StatsSources) { uc.sources = s }

// Stats runs the counts concurrently.
func (uc *AdminUsecase) Stats(ctx context.Context) (*model.Stats, error) {
	out := &model.Stats{PlanDistribution: map[string]int64{}}
	g, gctx := errgroup.WithContext(ctx)

	count := func(c Counter, dst *int64) {
		if c == nil {
			return
		}
		g.Go(func() error {
			n, err := c.Count(gctx)
			*dst = n
			return err
		})
	}
	count(uc.sources.Users, &out.Users)
	count(uc.sources.Workspaces, &out.Workspaces)
	count(uc.sources.Projects, &out.Projects)
	count(uc.sources.Tasks, &out.Tasks)
	if uc.sources.Plans != nil {
		g.Go(func() error {
			dist, err := uc.sources.Plans.PlanDistribution(gctx)
			if dist != nil {
				out.PlanDistribution = dist
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Logs lists system logs, newest first.
func (uc *AdminUsecase) Logs(ctx context.Context, level string, page pagination.Params) ([]*model.SystemLog, int64, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "", model.LevelError, model.LevelFatal, model.LevelPanic:
	default:
		return nil, 0, model.ErrInvalidLogLevel
	}
	return uc.logs.List(ctx, level, page)
}
