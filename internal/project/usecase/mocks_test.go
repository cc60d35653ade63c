package usecase_test

import (
	"context"
	"time"

	"edwin/internal/project/domain/model"
	"edwin/internal/project/domain/repository"
	"edwin/internal/shared/pagination"
	wsmodel "edwin/internal/workspace/domain/model"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockWorkspaces struct{ mock.Mock }

func (m *mockWorkspaces) RequireMember(ctx context.Context, workspaceID, userID primitive.ObjectID) (*wsmodel.Workspace, error) {
	args := m.Called(ctx, workspaceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wsmodel.Workspace), args.Error(1)
}

type mockProjectRepo struct {
	mock.Mock
	repository.ProjectRepository
}

func (m *mockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockProjectRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *mockProjectRepo) List(ctx context.Context, filter model.ProjectFilter, page pagination.Params) ([]*model.Project, int64, error) {
	args := m.Called(ctx, filter, page)
	return args.Get(0).([]*model.Project), args.Get(1).(int64), args.Error(2)
}

func (m *mockProjectRepo) ListIDsByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

func (m *mockProjectRepo) CountByWorkspace(ctx context.Context, workspaceID primitive.ObjectID) (int64, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProjectRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProjectRepo) AddMember(ctx context.Context, id, userID primitive.ObjectID) (*model.Project, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *mockProjectRepo) RemoveMember(ctx context.Context, id, userID primitive.ObjectID) (*model.Project, error) {
	args := m.Called(ctx, id, userID)
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *mockProjectRepo) IncCounters(ctx context.Context, id primitive.ObjectID, tasks, completed int) error {
	return m.Called(ctx, id, tasks, completed).Error(0)
}

type mockTaskRepo struct {
	mock.Mock
	repository.TaskRepository
}

func (m *mockTaskRepo) Create(ctx context.Context, t *model.Task) error {
	args := m.Called(ctx, t)
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	return args.Error(0)
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockTaskRepo) Update(ctx context.Context, id primitive.ObjectID, fromStatus string, changes model.TaskChanges) (*model.Task, error) {
	args := m.Called(ctx, id, fromStatus, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id primitive.ObjectID) (*model.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *mockTaskRepo) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	return m.Called(ctx, projectID).Error(0)
}

type mockIdeaRepo struct {
	mock.Mock
	repository.IdeaRepository
}

func (m *mockIdeaRepo) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	return m.Called(ctx, projectID).Error(0)
}

type mockSecureIDRepo struct {
	mock.Mock
	repository.SecureIDRepository
}

func (m *mockSecureIDRepo) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	return m.Called(ctx, projectID).Error(0)
}

type mockRoutineRepo struct {
	mock.Mock
	repository.RoutineRepository
}

func (m *mockRoutineRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Routine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Routine), args.Error(1)
}

func (m *mockRoutineRepo) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	return m.Called(ctx, projectID).Error(0)
}

func (m *mockRoutineRepo) Complete(ctx context.Context, id primitive.ObjectID, previous *time.Time, at time.Time, streak int) (*model.Routine, bool, error) {
	args := m.Called(ctx, id, previous, at, streak)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Routine), args.Bool(1), args.Error(2)
}

type mockObjectiveRepo struct {
	mock.Mock
	repository.ObjectiveRepository
}

func (m *mockObjectiveRepo) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) error {
	return m.Called(ctx, projectID).Error(0)
}

func (m *mockObjectiveRepo) Create(ctx context.Context, o *model.Objective) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockObjectiveRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Objective, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Objective), args.Error(1)
}

func (m *mockObjectiveRepo) Update(ctx context.Context, id primitive.ObjectID, changes model.ObjectiveInput) (*model.Objective, error) {
	args := m.Called(ctx, id, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Objective), args.Error(1)
}

// memSecureIDs is an in-memory secure id store.
type memSecureIDs struct {
	repository.SecureIDRepository
	items map[primitive.ObjectID]*model.SecureID
}

func newMemSecureIDs() *memSecureIDs {
	return &memSecureIDs{items: map[primitive.ObjectID]*model.SecureID{}}
}

func (m *memSecureIDs) Create(_ context.Context, s *model.SecureID) error {
	s.ID = primitive.NewObjectID()
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *memSecureIDs) GetByID(_ context.Context, id primitive.ObjectID) (*model.SecureID, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, model.ErrSecureIDNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSecureIDs) Update(_ context.Context, id primitive.ObjectID, in model.SecureIDInput) (*model.SecureID, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, model.ErrSecureIDNotFound
	}
	if in.Password != nil {
		s.Password = *in.Password
	}
	if in.Title != nil {
		s.Title = *in.Title
	}
	cp := *s
	return &cp, nil
}

type recordingHook struct {
	deleted []primitive.ObjectID
	err     error
}

func (h *recordingHook) DeleteProjectData(_ context.Context, _, projectID primitive.ObjectID) error {
	h.deleted = append(h.deleted, projectID)
	return h.err
}
