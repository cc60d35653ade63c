package repository

import (
	"context"
	"time"

	"edwin/internal/project/domain/model"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectRepository persists projects and their denormalized task counters.
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Project, error)
	List(ctx context.Context, filter model.ProjectFilter, page pagination.Params) ([]*model.Project, int64, error)
	ListIDsByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]primitive.ObjectID, error)
	CountByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update model.ProjectUpdate) (*model.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddMember(ctx context.Context, id, userID primitive.ObjectID) (*model.Project, error)
	RemoveMember(ctx context.Context, id, userID primitive.ObjectID) (*model.Project, error)
	IncCounters(ctx context.Context, id primitive.ObjectID, tasks, completed int) error
	Count(ctx context.Context) (int64, error)
}

// TaskRepository persists tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Task, error)
	List(ctx context.Context, filter model.TaskFilter, page pagination.Params) ([]*model.Task, int64, error)
	// Update applies changes only while the task still has status fromStatus.
	Update(ctx context.Context, id primitive.ObjectID, fromStatus string, changes model.TaskChanges) (*model.Task, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*model.Task, error)
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error
	Count(ctx context.Context) (int64, error)
}

// ObjectiveRepository persists objectives.
type ObjectiveRepository interface {
	Create(ctx context.Context, o *model.Objective) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Objective, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*model.Objective, error)
	Update(ctx context.Context, id primitive.ObjectID, changes model.ObjectiveInput) (*model.Objective, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error
}

// IdeaRepository persists ideas and their votes.
type IdeaRepository interface {
	Create(ctx context.Context, i *model.Idea) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Idea, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*model.Idea, error)
	Update(ctx context.Context, id primitive.ObjectID, changes model.IdeaInput) (*model.Idea, error)
	// ToggleVote adds userID to the votes or removes it when present.
	ToggleVote(ctx context.Context, id, userID primitive.ObjectID) (model.VoteResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error
}

// RoutineRepository persists routines and their streaks.
type RoutineRepository interface {
	Create(ctx context.Context, r *model.Routine) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Routine, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*model.Routine, error)
	Update(ctx context.Context, id primitive.ObjectID, changes model.RoutineInput) (*model.Routine, error)
	// Complete records a completion only while lastCompletedAt still equals
	// previous. It reports false when another completion won the race.
	Complete(ctx context.Context, id primitive.ObjectID, previous *time.Time, at time.Time, streak int) (*model.Routine, bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error
}

// SecureIDRepository persists encrypted credentials.
type SecureIDRepository interface {
	Create(ctx context.Context, s *model.SecureID) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.SecureID, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]*model.SecureID, error)
	// Update stores changes; Password, when set, must already be ciphertext.
	Update(ctx context.Context, id primitive.ObjectID, changes model.SecureIDInput) (*model.SecureID, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error
}

// Cipher seals and opens secure id passwords.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
