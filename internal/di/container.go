package di

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"edwin/internal/admin"
	adminusecase "edwin/internal/admin/usecase"
	"edwin/internal/auth"
	"edwin/internal/billing"
	billingusecase "edwin/internal/billing/usecase"
	"edwin/internal/config"
	"edwin/internal/drive"
	"edwin/internal/drive/adapter/storage"
	"edwin/internal/mailer"
	"edwin/internal/mailer/adapter/sender"
	mailerrepo "edwin/internal/mailer/domain/repository"
	"edwin/internal/messaging"
	"edwin/internal/project"
	"edwin/internal/shared/eventbus"
	"edwin/internal/shared/logger"
	"edwin/internal/workspace"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container owns the connections and every module, and wires the
// cross-module ports once all of them exist.
type Container struct {
	mu sync.RWMutex

	Config  *Config
	MongoDB *mongo.Database
	Redis   *redis.Client
	Blobs   *storage.MinioStore
	Logger  logger.Logger
	Bus     *eventbus.EventBus

	AuthModule      *auth.AuthModule
	AdminModule     *admin.AdminModule
	WorkspaceModule *workspace.WorkspaceModule
	MailerModule    *mailer.MailerModule
	ProjectModule   *project.ProjectModule
	DriveModule     *drive.DriveModule
	MessagingModule *messaging.MessagingModule
	BillingModule   *billing.BillingModule

	cancel context.CancelFunc
}

// Config is the loaded service configuration.
type Config = config.Config

// NewContainer builds every module in dependency order. redisClient may be
// nil, in which case settings caching, message fanout and webhook dedupe
// are disabled.
func NewContainer(ctx context.Context, cfg *Config, db *mongo.Database, redisClient *redis.Client, log logger.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		MongoDB: db,
		Redis:   redisClient,
		Logger:  log,
		Bus:     eventbus.NewEventBus(log),
	}

	var err error
	if c.AuthModule, err = auth.NewAuthModule(ctx, db, cfg.Auth, log); err != nil {
		return nil, fmt.Errorf("failed to create auth module: %w", err)
	}
	if c.AdminModule, err = admin.NewAdminModule(ctx, db, redisClient, log); err != nil {
		return nil, fmt.Errorf("failed to create admin module: %w", err)
	}

	c.WorkspaceModule, err = workspace.NewWorkspaceModule(ctx, db, workspace.Config{
		InvitationTTL: cfg.App.InvitationTTL,
		PublicURL:     cfg.App.PublicURL,
	}, c.AuthModule.Users(), c.Bus, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace module: %w", err)
	}

	c.MailerModule, err = mailer.NewMailerModule(ctx, db, newSender(cfg.SMTP, log), c.AuthModule.Users(), c.WorkspaceModule.Repository(), cfg.App.Name, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create mailer module: %w", err)
	}

	key, err := cfg.Security.Key()
	if err != nil {
		return nil, err
	}
	if c.ProjectModule, err = project.NewProjectModule(ctx, db, key, c.WorkspaceModule.Workspaces(), log); err != nil {
		return nil, fmt.Errorf("failed to create project module: %w", err)
	}

	c.Blobs, err = storage.NewMinioStore(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	c.DriveModule, err = drive.NewDriveModule(ctx, db, c.Blobs, c.ProjectModule.Projects(), cfg.Storage.MaxUploadSize, cfg.Storage.PresignTTL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive module: %w", err)
	}

	c.MessagingModule, err = messaging.NewMessagingModule(ctx, db, redisClient, c.WorkspaceModule.Workspaces(), c.Bus, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging module: %w", err)
	}

	c.BillingModule = billing.NewBillingModule(billing.Config{
		SecretKey:     cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		URLs: billingusecase.URLs{
			Success:      cfg.Stripe.SuccessURL,
			Cancel:       cfg.Stripe.CancelURL,
			PortalReturn: cfg.Stripe.PortalReturnURL,
		},
		DedupeTTL: billingusecase.DedupeTTL(cfg.Stripe.EventDedupeTTLHour),
	}, redisClient, c.WorkspaceModule.Workspaces().Subscriptions(), cfg.Stripe, log)

	c.wire()
	return c, nil
}

func newSender(cfg config.SMTPConfig, log logger.Logger) mailerrepo.Sender {
	if !cfg.Enabled() {
		log.Warn("SMTP_HOST not set, emails are logged instead of sent")
		return sender.NewLogSender(log)
	}
	return sender.NewSMTPSender(sender.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		FromName: cfg.FromName,
	}, log)
}

// wire installs the ports that would otherwise be import cycles.
func (c *Container) wire() {
	settings := c.AdminModule.Settings()
	notifier := c.MailerModule.Usecase()

	authUC := c.AuthModule.GetUsecase()
	authUC.SetSignupPolicy(settings)
	authUC.SetWelcomeNotifier(notifier)

	workspaces := c.WorkspaceModule.Workspaces()
	workspaces.SetDefaultPlan(settings.DefaultPlan)
	workspaces.SetProjectCleaner(c.ProjectModule.Projects())
	c.WorkspaceModule.Invitations().SetNotifier(notifier)

	c.ProjectModule.Projects().AddDeletionHook(c.DriveModule.Usecase())

	wsRepo := c.WorkspaceModule.Repository()
	c.AdminModule.Usecase().SetStatsSources(adminusecase.StatsSources{
		Users:      c.AuthModule.Users(),
		Workspaces: wsRepo,
		Projects:   c.ProjectModule.Repository(),
		Tasks:      c.ProjectModule.Tasks(),
		Plans:      wsRepo,
	})
}

// Start launches the background workers. They stop on Close.
func (c *Container) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, c.cancel = context.WithCancel(ctx)
	c.AdminModule.Start(ctx)
	c.MessagingModule.Start(ctx)
}

// RegisterRoutes mounts every module under api. Public routes and the
// socket endpoint go first; the rest sit behind Protect, and /admin
// additionally behind RequireAdmin.
func (c *Container) RegisterRoutes(api fiber.Router) {
	mw := c.AuthModule.GetMiddleware()

	c.AuthModule.RegisterRoutes(api)
	c.AdminModule.RegisterPublicRoutes(api)
	c.BillingModule.RegisterPublicRoutes(api)
	c.MessagingModule.RegisterSocketRoute(api, mw.ProtectSocket())

	adminGroup := api.Group("/admin", mw.Protect(), mw.RequireAdmin())
	c.AdminModule.RegisterAdminRoutes(adminGroup)
	c.MailerModule.RegisterAdminRoutes(adminGroup)

	protected := api.Group("", mw.Protect())
	c.WorkspaceModule.RegisterRoutes(protected)
	c.ProjectModule.RegisterRoutes(protected)
	c.DriveModule.RegisterRoutes(protected)
	c.MessagingModule.RegisterRoutes(protected)
	c.BillingModule.RegisterRoutes(protected)
}

// HealthCheck pings the database, the blob store and, when configured,
// Redis.
func (c *Container) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Ping(ctx, nil); err != nil {
			return fmt.Errorf("MongoDB health check failed: %w", err)
		}
	}
	if c.Blobs != nil {
		if err := c.Blobs.Ping(ctx); err != nil {
			return fmt.Errorf("storage health check failed: %w", err)
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis health check failed: %w", err)
		}
	}
	return nil
}

// Close stops the workers in reverse start order, flushes pending system
// logs and closes the connections.
func (c *Container) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.AdminModule != nil {
		c.AdminModule.Stop()
	}
	if c.AuthModule != nil {
		_ = c.AuthModule.Stop()
	}

	var errs []error
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if c.MongoDB != nil {
		if err := c.MongoDB.Client().Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to disconnect MongoDB: %w", err))
		}
	}
	return errors.Join(errs...)
}
