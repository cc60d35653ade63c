package usecase

import (
	"context"
	"regexp"
	"time"

	"edwin/internal/project/domain/model"
	"edwin/internal/project/domain/repository"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"
	"edwin/internal/shared/pagination"
	wsmodel "edwin/internal/workspace/domain/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxProjectName = 100

var colorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CreateProjectRequest is the body of POST /workspaces/:id/projects.
type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	DueDate     *time.Time `json:"dueDate"`
}

// Scope is a project resolved for a caller together with its workspace.
type Scope struct {
	Project   *model.Project
	Workspace *wsmodel.Workspace
	Caller    primitive.ObjectID
}

// CanManage reports whether the caller owns the project or administers the
// workspace.
func (s *Scope) CanManage() bool {
	return s.Project.Owner == s.Caller || s.Workspace.CanManage(s.Caller)
}

// Repositories bundles the stores the project module writes to.
type Repositories struct {
	Projects   repository.ProjectRepository
	Tasks      repository.TaskRepository
	Objectives repository.ObjectiveRepository
	Ideas      repository.IdeaRepository
	Routines   repository.RoutineRepository
	SecureIDs  repository.SecureIDRepository
}

// ProjectUsecase implements project CRUD, membership and cascade deletion.
type ProjectUsecase struct {
	repos      Repositories
	workspaces WorkspaceAccess
	hooks      []DeletionHook
	log        logger.Logger
}

// NewProjectUsecase wires the project usecase.
func NewProjectUsecase(repos Repositories, workspaces WorkspaceAccess, log logger.Logger) *ProjectUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ProjectUsecase{repos: repos, workspaces: workspaces, log: log.WithComponent("project")}
}

// AddDeletionHook registers h to run before a project's own rows are removed.
func (uc *ProjectUsecase) AddDeletionHook(h DeletionHook) {
	uc.hooks = append(uc.hooks, h)
}

// Access loads a project for userID. The caller must belong to the
// workspace and either be a project member or a workspace owner or admin.
func (uc *ProjectUsecase) Access(ctx context.Context, projectID, userID primitive.ObjectID) (*Scope, error) {
	p, err := uc.repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ws, err := uc.workspaces.RequireMember(ctx, p.Workspace, userID)
	if err != nil {
		if apperrors.IsAuthorization(err) {
			return nil, model.ErrProjectAccess
		}
		return nil, err
	}
	if !p.IsMember(userID) && !ws.CanManage(userID) {
		return nil, model.ErrProjectAccess
	}
	return &Scope{Project: p, Workspace: ws, Caller: userID}, nil
}

func validateProject(update *model.ProjectUpdate) error {
	if err := requireText("name", update.Name, maxProjectName); err != nil {
		return err
	}
	if err := limitText("description", update.Description, maxDescription); err != nil {
		return err
	}
	if err := oneOf("status", update.Status, model.ValidProjectStatus); err != nil {
		return err
	}
	if update.Color != nil && *update.Color != "" && !colorPattern.MatchString(*update.Color) {
		return fieldError("color", "color must be a hex value such as #3b82f6")
	}
	return nil
}

// Create adds a project to the workspace, enforcing the plan's project
// limit. The creator becomes owner and first member.
func (uc *ProjectUsecase) Create(ctx context.Context, workspaceID, userID primitive.ObjectID, req CreateProjectRequest) (*model.Project, error) {
	ws, err := uc.workspaces.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}
	fields := model.ProjectUpdate{Name: &req.Name, Description: &req.Description, Color: &req.Color}
	if err := validateProject(&fields); err != nil {
		return nil, err
	}
	count, err := uc.repos.Projects.CountByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !ws.Limits().AllowsProjects(int(count), 1) {
		return nil, model.ErrProjectLimit
	}

	p := &model.Project{
		Workspace:   workspaceID,
		Name:        req.Name,
		Description: req.Description,
		Owner:       userID,
		Members:     []primitive.ObjectID{userID},
		Status:      model.ProjectActive,
		Color:       req.Color,
		DueDate:     req.DueDate,
	}
	if err := uc.repos.Projects.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{
		"workspace": workspaceID.Hex(),
		"project":   p.ID.Hex(),
	}).Info("project created")
	return p, nil
}

// List pages through a workspace's projects. Plain members only see the
// projects they belong to.
func (uc *ProjectUsecase) List(ctx context.Context, workspaceID, userID primitive.ObjectID, status string, page pagination.Params) ([]*model.Project, int64, error) {
	ws, err := uc.workspaces.RequireMember(ctx, workspaceID, userID)
	if err != nil {
		return nil, 0, err
	}
	if status != "" && !model.ValidProjectStatus(status) {
		return nil, 0, fieldError("status", "invalid status")
	}
	filter := model.ProjectFilter{Workspace: workspaceID, Status: status}
	if !ws.CanManage(userID) {
		filter.Member = userID
	}
	return uc.repos.Projects.List(ctx, filter, page)
}

// Get returns a project the caller can access.
func (uc *ProjectUsecase) Get(ctx context.Context, projectID, userID primitive.ObjectID) (*model.Project, error) {
	scope, err := uc.Access(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	return scope.Project, nil
}

// Update merges the provided fields.
func (uc *ProjectUsecase) Update(ctx context.Context, projectID, userID primitive.ObjectID, update model.ProjectUpdate) (*model.Project, error) {
	if _, err := uc.Access(ctx, projectID, userID); err != nil {
		return nil, err
	}
	if err := validateProject(&update); err != nil {
		return nil, err
	}
	return uc.repos.Projects.Update(ctx, projectID, update)
}

// Delete removes the project and everything under it.
func (uc *ProjectUsecase) Delete(ctx context.Context, projectID, userID primitive.ObjectID) error {
	scope, err := uc.Access(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !scope.CanManage() {
		return model.ErrProjectDeleteDenied
	}
	return uc.cascade(ctx, scope.Project.Workspace, projectID)
}

// AddMember adds a workspace member to the project.
func (uc *ProjectUsecase) AddMember(ctx context.Context, projectID, callerID, targetID primitive.ObjectID) (*model.Project, error) {
	scope, err := uc.Access(ctx, projectID, callerID)
	if err != nil {
		return nil, err
	}
	if !scope.CanManage() {
		return nil, model.ErrProjectAccess
	}
	if !scope.Workspace.IsMember(targetID) {
		return nil, model.ErrNotWorkspaceMember
	}
	return uc.repos.Projects.AddMember(ctx, projectID, targetID)
}

// RemoveMember removes targetID. Managers may remove anyone but the owner;
// members may remove themselves.
func (uc *ProjectUsecase) RemoveMember(ctx context.Context, projectID, callerID, targetID primitive.ObjectID) (*model.Project, error) {
	scope, err := uc.Access(ctx, projectID, callerID)
	if err != nil {
		return nil, err
	}
	if targetID == scope.Project.Owner {
		return nil, model.ErrCannotRemoveOwner
	}
	if targetID != callerID && !scope.CanManage() {
		return nil, model.ErrProjectAccess
	}
	return uc.repos.Projects.RemoveMember(ctx, projectID, targetID)
}

// DeleteWorkspaceProjects cascades every project of a workspace.
func (uc *ProjectUsecase) DeleteWorkspaceProjects(ctx context.Context, workspaceID primitive.ObjectID) error {
	ids, err := uc.repos.Projects.ListIDsByWorkspace(ctx, workspaceID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := uc.cascade(ctx, workspaceID, id); err != nil {
			return err
		}
	}
	return nil
}

func (uc *ProjectUsecase) cascade(ctx context.Context, workspaceID, projectID primitive.ObjectID) error {
	for _, h := range uc.hooks {
		if err := h.DeleteProjectData(ctx, workspaceID, projectID); err != nil {
			return apperrors.WrapError(err, "failed to delete project data")
		}
	}
	children := []func(context.Context, primitive.ObjectID) error{
		uc.repos.Tasks.DeleteByProject,
		uc.repos.Objectives.DeleteByProject,
		uc.repos.Ideas.DeleteByProject,
		uc.repos.Routines.DeleteByProject,
		uc.repos.SecureIDs.DeleteByProject,
	}
	for _, del := range children {
		if err := del(ctx, projectID); err != nil {
			return err
		}
	}
	if err := uc.repos.Projects.Delete(ctx, projectID); err != nil {
		return err
	}
	uc.log.WithContext(ctx).WithFields(map[string]interface{}{"project": projectID.Hex()}).Info("project deleted")
	return nil
}
