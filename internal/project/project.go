package project

import (
	"context"
	"fmt"

	projecthttp "edwin/internal/project/adapter/http"
	"edwin/internal/project/adapter/persistence/mongodb"
	"edwin/internal/project/adapter/security"
	"edwin/internal/project/domain/repository"
	"edwin/internal/project/usecase"
	"edwin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProjectModule bundles projects and their nested entities.
type ProjectModule struct {
	repos    usecase.Repositories
	projects *usecase.ProjectUsecase
	handler  *projecthttp.ProjectHandler
}

// NewProjectModule creates the module. secureIDKey is the 32-byte key that
// seals stored credentials.
func NewProjectModule(
	ctx context.Context,
	db *mongo.Database,
	secureIDKey []byte,
	workspaces usecase.WorkspaceAccess,
	log logger.Logger,
) (*ProjectModule, error) {
	repos, err := newRepositories(ctx, db)
	if err != nil {
		return nil, err
	}
	cipher, err := security.NewXChaChaCipher(secureIDKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create secure id cipher: %w", err)
	}

	projects := usecase.NewProjectUsecase(repos, workspaces, log)
	handler := projecthttp.NewProjectHandler(projecthttp.Usecases{
		Projects:   projects,
		Tasks:      usecase.NewTaskUsecase(repos.Projects, repos.Tasks, projects, log),
		Objectives: usecase.NewObjectiveUsecase(repos.Objectives, projects),
		Ideas:      usecase.NewIdeaUsecase(repos.Ideas, projects),
		Routines:   usecase.NewRoutineUsecase(repos.Routines, projects),
		SecureIDs:  usecase.NewSecureIDUsecase(repos.SecureIDs, cipher, projects, log),
	})

	return &ProjectModule{repos: repos, projects: projects, handler: handler}, nil
}

func newRepositories(ctx context.Context, db *mongo.Database) (usecase.Repositories, error) {
	var (
		repos usecase.Repositories
		err   error
	)
	if repos.Projects, err = mongodb.NewMongoProjectRepository(ctx, db); err != nil {
		return repos, fmt.Errorf("failed to create project repository: %w", err)
	}
	if repos.Tasks, err = mongodb.NewMongoTaskRepository(ctx, db); err != nil {
		return repos, fmt.Errorf("failed to create task repository: %w", err)
	}
	if repos.Objectives, err = mongodb.NewMongoObjectiveRepository(ctx, db); err != nil {
		return repos, fmt.Errorf("failed to create objective repository: %w", err)
	}
	if repos.Ideas, err = mongodb.NewMongoIdeaRepository(ctx, db); err != nil {
		return repos, fmt.Errorf("failed to create idea repository: %w", err)
	}
	if repos.Routines, err = mongodb.NewMongoRoutineRepository(ctx, db); err != nil {
		return repos, fmt.Errorf("failed to create routine repository: %w", err)
	}
	if repos.SecureIDs, err = mongodb.NewMongoSecureIDRepository(ctx, db); err != nil {
		return repos, fmt.Errorf("failed to create secure id repository: %w", err)
	}
	return repos, nil
}

// RegisterRoutes mounts the module on an authenticated router.
func (m *ProjectModule) RegisterRoutes(api fiber.Router) {
	m.handler.RegisterRoutes(api)
}

// Projects exposes access checks, the workspace cascade and deletion hooks.
func (m *ProjectModule) Projects() *usecase.ProjectUsecase { return m.projects }

// Repository exposes project counts to admin stats.
func (m *ProjectModule) Repository() repository.ProjectRepository { return m.repos.Projects }

// Tasks exposes task counts to admin stats.
func (m *ProjectModule) Tasks() repository.TaskRepository { return m.repos.Tasks }
