package workspace

import (
	"context"
	"fmt"
	"time"

	"edwin/internal/shared/eventbus"
	"edwin/internal/shared/logger"
	workspacehttp "edwin/internal/workspace/adapter/http"
	"edwin/internal/workspace/adapter/persistence/mongodb"
	"edwin/internal/workspace/domain/repository"
	"edwin/internal/workspace/usecase"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// Config carries the settings the workspace module reads.
type Config struct {
	InvitationTTL time.Duration
	PublicURL     string
}

// WorkspaceModule bundles workspaces, membership and invitations.
type WorkspaceModule struct {
	repository  repository.WorkspaceRepository
	workspaces  *usecase.WorkspaceUsecase
	invitations *usecase.InvitationUsecase
	handler     *workspacehttp.WorkspaceHandler
}

// NewWorkspaceModule creates the module.
func NewWorkspaceModule(
	ctx context.Context,
	db *mongo.Database,
	cfg Config,
	users usecase.UserStore,
	bus eventbus.EventBusInterface,
	log logger.Logger,
) (*WorkspaceModule, error) {
	wsRepo, err := mongodb.NewMongoWorkspaceRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace repository: %w", err)
	}
	invRepo, err := mongodb.NewMongoInvitationRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation repository: %w", err)
	}

	wsUC := usecase.NewWorkspaceUsecase(wsRepo, invRepo, users, bus, log)
	invUC := usecase.NewInvitationUsecase(wsUC, invRepo, cfg.InvitationTTL, cfg.PublicURL, log)

	return &WorkspaceModule{
		repository:  wsRepo,
		workspaces:  wsUC,
		invitations: invUC,
		handler:     workspacehttp.NewWorkspaceHandler(wsUC, invUC),
	}, nil
}

// RegisterRoutes mounts the module on an authenticated router.
func (m *WorkspaceModule) RegisterRoutes(api fiber.Router) {
	m.handler.RegisterRoutes(api)
}

// Workspaces exposes membership checks to other modules.
func (m *WorkspaceModule) Workspaces() *usecase.WorkspaceUsecase { return m.workspaces }

// Invitations exposes the invitation usecase so the mailer can attach.
func (m *WorkspaceModule) Invitations() *usecase.InvitationUsecase { return m.invitations }

// Repository exposes counts and plan distribution to admin stats.
func (m *WorkspaceModule) Repository() repository.WorkspaceRepository { return m.repository }
