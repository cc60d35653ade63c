package usecase

import (
	"context"
	"time"

	"edwin/internal/project/domain/model"
	"edwin/internal/project/domain/repository"
	"edwin/internal/shared/database"
	"edwin/internal/shared/logger"
	"edwin/internal/shared/pagination"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxTags = 20

// CreateTaskRequest is the body of POST /projects/:id/tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignees   []string   `json:"assignees"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        []string   `json:"tags"`
}

// TaskQuery is the parsed listing filter.
type TaskQuery struct {
	Status   string
	Priority string
	Assignee string
}

// TaskUsecase implements task CRUD and keeps the project's counters in step.
type TaskUsecase struct {
	projects repository.ProjectRepository
	tasks    repository.TaskRepository
	access   ProjectAccess
	log      logger.Logger
	now      func() time.Time
}

// NewTaskUsecase wires the task usecase.
func NewTaskUsecase(projects repository.ProjectRepository, tasks repository.TaskRepository, access ProjectAccess, log logger.Logger) *TaskUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &TaskUsecase{
		projects: projects,
		tasks:    tasks,
		access:   access,
		log:      log.WithComponent("task"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (uc *TaskUsecase) resolveAssignees(scope *Scope, raw []string) ([]primitive.ObjectID, error) {
	ids, err := database.ParseObjectIDs("assignees", raw)
	if err != nil {
		return nil, err
	}
	ids = database.UniqueIDs(ids)
	for _, id := range ids {
		if !scope.Project.IsMember(id) {
			return nil, model.ErrAssigneeNotMember
		}
	}
	return ids, nil
}

func validateTags(tags []string) error {
	if len(tags) > maxTags {
		return fieldError("tags", "at most 20 tags are allowed")
	}
	for _, t := range tags {
		if t == "" || len(t) > 50 {
			return fieldError("tags", "tags must be 1 to 50 characters")
		}
	}
	return nil
}

// Create adds a task and bumps the project's taskCount.
func (uc *TaskUsecase) Create(ctx context.Context, projectID, userID primitive.ObjectID, req CreateTaskRequest) (*model.Task, error) {
	scope, err := uc.access.Access(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = model.TaskTodo
	}
	if req.Priority == "" {
		req.Priority = model.PriorityMedium
	}
	if err := requireText("title", &req.Title, maxTitle); err != nil {
		return nil, err
	}
	if err := limitText("description", &req.Description, maxDescription); err != nil {
		return nil, err
	}
	if err := oneOf("status", &req.Status, model.ValidTaskStatus); err != nil {
		return nil, err
	}
	if err := oneOf("priority", &req.Priority, model.ValidPriority); err != nil {
		return nil, err
	}
	if err := validateTags(req.Tags); err != nil {
		return nil, err
	}
	assignees, err := uc.resolveAssignees(scope, req.Assignees)
	if err != nil {
		return nil, err
	}

	task := &model.Task{
		Project:     projectID,
		Workspace:   scope.Project.Workspace,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Assignees:   assignees,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
		CreatedBy:   userID,
	}
	completed := 0
	if task.Status == model.TaskDone {
		now := uc.now()
		task.CompletedAt = &now
		completed = 1
	}
	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	if err := uc.projects.IncCounters(ctx, projectID, 1, completed); err != nil {
		return nil, err
	}
	return task, nil
}

// List pages through a project's tasks, newest first.
func (uc *TaskUsecase) List(ctx context.Context, projectID, userID primitive.ObjectID, q TaskQuery, page pagination.Params) ([]*model.Task, int64, error) {
	if _, err := uc.access.Access(ctx, projectID, userID); err != nil {
		return nil, 0, err
	}
	filter := model.TaskFilter{Project: projectID, Status: q.Status, Priority: q.Priority}
	if q.Status != "" && !model.ValidTaskStatus(q.Status) {
		return nil, 0, fieldError("status", "invalid status")
	}
	if q.Priority != "" && !model.ValidPriority(q.Priority) {
		return nil, 0, fieldError("priority", "invalid priority")
	}
	if q.Assignee != "" {
		id, err := database.ParseObjectID("assignee", q.Assignee)
		if err != nil {
			return nil, 0, err
		}
		filter.Assignee = id
	}
	return uc.tasks.List(ctx, filter, page)
}

func (uc *TaskUsecase) load(ctx context.Context, taskID, userID primitive.ObjectID) (*model.Task, *Scope, error) {
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	scope, err := uc.access.Access(ctx, task.Project, userID)
	if err != nil {
		return nil, nil, err
	}
	return task, scope, nil
}

// Get returns one task.
func (uc *TaskUsecase) Get(ctx context.Context, taskID, userID primitive.ObjectID) (*model.Task, error) {
	task, _, err := uc.load(ctx, taskID, userID)
	return task, err
}

// Update merges the provided fields. Entering done stamps completedAt and
// increments completedTaskCount; leaving done reverses both.
func (uc *TaskUsecase) Update(ctx context.Context, taskID, userID primitive.ObjectID, update model.TaskUpdate) (*model.Task, error) {
	task, scope, err := uc.load(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if err := requireText("title", update.Title, maxTitle); err != nil {
		return nil, err
	}
	if err := limitText("description", update.Description, maxDescription); err != nil {
		return nil, err
	}
	if err := oneOf("status", update.Status, model.ValidTaskStatus); err != nil {
		return nil, err
	}
	if err := oneOf("priority", update.Priority, model.ValidPriority); err != nil {
		return nil, err
	}

	changes := model.TaskChanges{
		Title:       update.Title,
		Description: update.Description,
		Status:      update.Status,
		Priority:    update.Priority,
		DueDate:     update.DueDate,
		Tags:        update.Tags,
	}
	if update.Tags != nil {
		if err := validateTags(*update.Tags); err != nil {
			return nil, err
		}
	}
	if update.Assignees != nil {
		ids, err := uc.resolveAssignees(scope, *update.Assignees)
		if err != nil {
			return nil, err
		}
		changes.Assignees = &ids
	}

	delta := 0
	if update.Status != nil {
		wasDone, isDone := task.Status == model.TaskDone, *update.Status == model.TaskDone
		switch {
		case !wasDone && isDone:
			now := uc.now()
			changes.SetCompletedAt, changes.CompletedAt = true, &now
			delta = 1
		case wasDone && !isDone:
			changes.SetCompletedAt = true
			delta = -1
		}
	}

	updated, err := uc.tasks.Update(ctx, taskID, task.Status, changes)
	if err != nil {
		return nil, err
	}
	if delta != 0 {
		if err := uc.projects.IncCounters(ctx, task.Project, 0, delta); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// Delete removes a task and decrements the project's counters.
func (uc *TaskUsecase) Delete(ctx context.Context, taskID, userID primitive.ObjectID) error {
	if _, _, err := uc.load(ctx, taskID, userID); err != nil {
		return err
	}
	deleted, err := uc.tasks.Delete(ctx, taskID)
	if err != nil {
		return err
	}
	completed := 0
	if deleted.Status == model.TaskDone {
		completed = -1
	}
	return uc.projects.IncCounters(ctx, deleted.Project, -1, completed)
}
