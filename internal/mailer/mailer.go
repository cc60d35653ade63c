package mailer

import (
	"context"
	"fmt"

	"edwin/internal/mailer/adapter/audience"
	mailerhttp "edwin/internal/mailer/adapter/http"
	"edwin/internal/mailer/adapter/persistence/mongodb"
	"edwin/internal/mailer/domain/repository"
	"edwin/internal/mailer/usecase"
	"edwin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// MailerModule owns templates, campaigns and transactional mail.
type MailerModule struct {
	usecase *usecase.MailerUsecase
	handler *mailerhttp.MailerHandler
}

// NewMailerModule wires the module. sender is the SMTP or log-only sender.
func NewMailerModule(
	ctx context.Context,
	db *mongo.Database,
	sender repository.Sender,
	users usecase.UserDirectory,
	workspaces usecase.WorkspaceDirectory,
	appName string,
	log logger.Logger,
) (*MailerModule, error) {
	templates, err := mongodb.NewMongoTemplateRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create template repository: %w", err)
	}
	campaigns, err := mongodb.NewMongoCampaignRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create campaign repository: %w", err)
	}
	logs, err := mongodb.NewMongoSendLogRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create send log repository: %w", err)
	}
	compiler, err := audience.NewCompiler()
	if err != nil {
		return nil, err
	}

	uc := usecase.NewMailerUsecase(templates, campaigns, logs, sender, users, workspaces, compiler, appName, log)
	return &MailerModule{usecase: uc, handler: mailerhttp.NewMailerHandler(uc)}, nil
}

// RegisterAdminRoutes mounts the module on the admin-only router.
func (m *MailerModule) RegisterAdminRoutes(admin fiber.Router) {
	m.handler.RegisterRoutes(admin)
}

// Usecase is installed as the welcome and invitation notifier.
func (m *MailerModule) Usecase() *usecase.MailerUsecase { return m.usecase }
