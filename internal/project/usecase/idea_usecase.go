package usecase

import (
	"context"

	"edwin/internal/project/domain/model"
	"edwin/internal/project/domain/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IdeaUsecase implements idea CRUD and voting.
type IdeaUsecase struct {
	ideas  repository.IdeaRepository
	access ProjectAccess
}

// NewIdeaUsecase wires the idea usecase.
func NewIdeaUsecase(ideas repository.IdeaRepository, access ProjectAccess) *IdeaUsecase {
	return &IdeaUsecase{ideas: ideas, access: access}
}

func validateIdea(in *model.IdeaInput) error {
	if err := requireText("title", in.Title, maxTitle); err != nil {
		return err
	}
	if err := limitText("description", in.Description, maxDescription); err != nil {
		return err
	}
	return oneOf("status", in.Status, model.ValidIdeaStatus)
}

// Create adds an idea with no votes.
func (uc *IdeaUsecase) Create(ctx context.Context, projectID, userID primitive.ObjectID, in model.IdeaInput) (*model.Idea, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if in.Title == nil {
		in.Title = new(string)
	}
	if in.Status == nil {
		in.Status = strPtr(model.IdeaOpen)
	}
	if err := validateIdea(&in); err != nil {
		return nil, err
	}
	idea := &model.Idea{
		Project:   projectID,
		Title:     *in.Title,
		Status:    *in.Status,
		Votes:     []primitive.ObjectID{},
		CreatedBy: userID,
	}
	if in.Description != nil {
		idea.Description = *in.Description
	}
	if err := uc.ideas.Create(ctx, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

// List returns a project's ideas.
func (uc *IdeaUsecase) List(ctx context.Context, projectID, userID primitive.ObjectID) ([]*model.Idea, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return uc.ideas.ListByProject(ctx, projectID)
}

func (uc *IdeaUsecase) load(ctx context.Context, id, userID primitive.ObjectID) (*model.Idea, error) {
	idea, err := uc.ideas.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := uc.access.Access(ctx, idea.Project, userID); err != nil {
		return nil, err
	}
	return idea, nil
}

// Get returns one idea.
func (uc *IdeaUsecase) Get(ctx context.Context, id, userID primitive.ObjectID) (*model.Idea, error) {
	return uc.load(ctx, id, userID)
}

// Update merges the provided fields.
func (uc *IdeaUsecase) Update(ctx context.Context, id, userID primitive.ObjectID, in model.IdeaInput) (*model.Idea, error) {
	if _, err := uc.load(ctx, id, userID); err != nil {
		return nil, err
	}
	if err := validateIdea(&in); err != nil {
		return nil, err
	}
	return uc.ideas.Update(ctx, id, in)
}

// Vote toggles the caller's vote.
func (uc *IdeaUsecase) Vote(ctx context.Context, id, userID primitive.ObjectID) (model.VoteResult, error) {
	if _, err := uc.load(ctx, id, userID); err != nil {
		return model.VoteResult{}, err
	}
	return uc.ideas.ToggleVote(ctx, id, userID)
}

// Delete removes an idea.
func (uc *IdeaUsecase) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	if _, err := uc.load(ctx, id, userID); err != nil {
		return err
	}
	return uc.ideas.Delete(ctx, id)
}
