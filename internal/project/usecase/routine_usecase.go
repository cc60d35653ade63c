package usecase

import (
	"context"
	"time"

	"edwin/internal/project/domain/model"
	"edwin/internal/project/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineUsecase implements routine CRUD and streak tracking.
type RoutineUsecase struct {
	routines repository.RoutineRepository
	access   ProjectAccess
	now      func() time.Time
}

// NewRoutineUsecase wires the routine usecase.
func NewRoutineUsecase(routines repository.RoutineRepository, access ProjectAccess) *RoutineUsecase {
	return &RoutineUsecase{
		routines: routines,
		access:   access,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func validateRoutine(in *model.RoutineInput) error {
	if err := requireText("title", in.Title, maxTitle); err != nil {
		return err
	}
	if err := limitText("description", in.Description, maxDescription); err != nil {
		return err
	}
	return oneOf("frequency", in.Frequency, model.ValidFrequency)
}

// Create adds a routine with an empty streak.
func (uc *RoutineUsecase) Create(ctx context.Context, projectID, userID primitive.ObjectID, in model.RoutineInput) (*model.Routine, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if in.Title == nil {
		in.Title = new(string)
	}
	if in.Frequency == nil {
		in.Frequency = strPtr(model.FrequencyDaily)
	}
	if err := validateRoutine(&in); err != nil {
		return nil, err
	}
	rt := &model.Routine{
		Project:   projectID,
		Title:     *in.Title,
		Frequency: *in.Frequency,
		CreatedBy: userID,
	}
	if in.Description != nil {
		rt.Description = *in.Description
	}
	if err := uc.routines.Create(ctx, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

// List returns a project's routines.
func (uc *RoutineUsecase) List(ctx context.Context, projectID, userID primitive.ObjectID) ([]*model.Routine, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return uc.routines.ListByProject(ctx, projectID)
}

func (uc *RoutineUsecase) load(ctx context.Context, id, userID primitive.ObjectID) (*model.Routine, error) {
	rt, err := uc.routines.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.access.Access(ctx, rt.Project, userID); err != nil {
		return nil, err
	}
	return rt, nil
}

// Get returns one routine.
func (uc *RoutineUsecase) Get(ctx context.Context, id, userID primitive.ObjectID) (*model.Routine, error) {
	return uc.load(ctx, id, userID)
}

// Update merges the provided fields.
func (uc *RoutineUsecase) Update(ctx context.Context, id, userID primitive.ObjectID, in model.RoutineInput) (*model.Routine, error) {
	if _, err := uc.load(ctx, id, userID); err != nil {
		return nil, err
	}
	if err := validateRoutine(&in); err != nil {
		return nil, err
	}
	return uc.routines.Update(ctx, id, in)
}

// Complete records a completion for the current period and advances the
// streak. A second completion in the same period is a conflict.
func (uc *RoutineUsecase) Complete(ctx context.Context, id, userID primitive.ObjectID) (*model.Routine, error) {
	rt, err := uc.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	streak, err := rt.NextStreak(now)
	if err != nil {
		return nil, err
	}
	updated, ok, err := uc.routines.Complete(ctx, id, rt.LastCompletedAt, now, streak)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrRoutineAlreadyCompleted
	}
	return updated, nil
}

// Delete removes a routine.
func (uc *RoutineUsecase) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if _, err := uc.load(ctx, id, userID); err != nil {
		return err
	}
	return uc.routines.Delete(ctx, id)
}
