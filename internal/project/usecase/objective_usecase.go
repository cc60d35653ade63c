package usecase

import (
	"context"

	"edwin/internal/project/domain/model"
	"edwin/internal/project/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectiveUsecase implements objective CRUD with derived progress.
type ObjectiveUsecase struct {
	objectives repository.ObjectiveRepository
	access     ProjectAccess
}

// NewObjectiveUsecase wires the objective usecase.
func NewObjectiveUsecase(objectives repository.ObjectiveRepository, access ProjectAccess) *ObjectiveUsecase {
	return &ObjectiveUsecase{objectives: objectives, access: access}
}

// resolveProgress validates in and fixes up Progress. With key results the
// progress is derived from them; without, it must be given in [0,100].
func resolveProgress(in *model.ObjectiveInput, current []model.KeyResult) error {
	if err := requireText("title", in.Title, maxTitle); err != nil {
		return err
	}
	if err := limitText("description", in.Description, maxDescription); err != nil {
		return err
	}
	if err := oneOf("status", in.Status, model.ValidObjectiveStatus); err != nil {
		return err
	}

	krs := current
	if in.KeyResults != nil {
		if err := model.ValidateKeyResults(*in.KeyResults); err != nil {
			return err
		}
		krs = *in.KeyResults
	}
	if p, ok := model.ComputeProgress(krs); ok {
		in.Progress = &p
		return nil
	}
	if in.Progress != nil && (*in.Progress < 0 || *in.Progress > 100) {
		return fieldError("progress", "progress must be between 0 and 100")
	}
	return nil
}

// Create adds an objective to a project.
func (uc *ObjectiveUsecase) Create(ctx context.Context, projectID, userID primitive.ObjectID, in model.ObjectiveInput) (*model.Objective, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if in.Title == nil {
		in.Title = new(string)
	}
	if in.Status == nil {
		in.Status = strPtr(model.ObjectiveNotStarted)
	}
	if err := resolveProgress(&in, nil); err != nil {
		return nil, err
	}

	o := &model.Objective{
		Project:   projectID,
		Title:     *in.Title,
		Status:    *in.Status,
		DueDate:   in.DueDate,
		CreatedBy: userID,
	}
	if in.Description != nil {
		o.Description = *in.Description
	}
	if in.Progress != nil {
		o.Progress = *in.Progress
	}
	if in.KeyResults != nil {
		o.KeyResults = *in.KeyResults
	}
	if err := uc.objectives.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// List returns a project's objectives.
func (uc *ObjectiveUsecase) List(ctx context.Context, projectID, userID primitive.ObjectID) ([]*model.Objective, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return uc.objectives.ListByProject(ctx, projectID)
}

func (uc *ObjectiveUsecase) load(ctx context.Context, id, userID primitive.ObjectID) (*model.Objective, error) {
	o, err := uc.objectives.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.access.Access(ctx, o.Project, userID); err != nil {
		return nil, err
	}
	return o, nil
}

// Get returns one objective.
func (uc *ObjectiveUsecase) Get(ctx context.Context, id, userID primitive.ObjectID) (*model.Objective, error) {
	return uc.load(ctx, id, userID)
}

// Update merges the provided fields and recomputes progress.
func (uc *ObjectiveUsecase) Update(ctx context.Context, id, userID primitive.ObjectID, in model.ObjectiveInput) (*model.Objective, error) {
	o, err := uc.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := resolveProgress(&in, o.KeyResults); err != nil {
		return nil, err
	}
	return uc.objectives.Update(ctx, id, in)
}

// Delete removes an objective.
func (uc *ObjectiveUsecase) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if _, err := uc.load(ctx, id, userID); err != nil {
		return err
	}
	return uc.objectives.Delete(ctx, id)
}
