package admin

import (
	"context"
	"fmt"
	"time"

	"edwin/internal/admin/adapter/cache"
	adminhttp "edwin/internal/admin/adapter/http"
	"edwin/internal/admin/adapter/logsink"
	"edwin/internal/admin/adapter/persistence/mongodb"
	"edwin/internal/admin/domain/repository"
	"edwin/internal/admin/usecase"
	"edwin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const logRetention = 30 * 24 * time.Hour

// AdminModule owns global settings, the system log and the dashboard.
type AdminModule struct {
	settings *usecase.SettingsUsecase
	admin    *usecase.AdminUsecase
	handler  *adminhttp.AdminHandler
	sink     *logsink.Sink
	started  bool
}

// NewAdminModule wires the module and attaches the system log sink to log
// when the logger supports it. A nil redisClient disables the settings cache.
func NewAdminModule(ctx context.Context, db *mongo.Database, redisClient *redis.Client, log logger.Logger) (*AdminModule, error) {
	logs, err := mongodb.NewMongoLogRepository(ctx, db, logRetention)
	if err != nil {
		return nil, fmt.Errorf("failed to create system log repository: %w", err)
	}
	var settingsCache repository.SettingsCache
	if redisClient != nil {
		settingsCache = cache.NewRedisSettingsCache(redisClient, cache.DefaultTTL)
	}

	settings := usecase.NewSettingsUsecase(mongodb.NewMongoSettingsRepository(db), settingsCache, log)
	adminUC := usecase.NewAdminUsecase(logs)
	sink := logsink.New(logs, 0)
	if attacher, ok := log.(logger.SinkAttacher); ok {
		attacher.AttachSink(sink)
	}

	return &AdminModule{
		settings: settings,
		admin:    adminUC,
		handler:  adminhttp.NewAdminHandler(settings, adminUC),
		sink:     sink,
	}, nil
}

// Start runs the system log writer until ctx is done.
func (m *AdminModule) Start(ctx context.Context) {
	m.started = true
	go m.sink.Run(ctx)
}

// Stop waits for the system log writer to flush. Cancel Start's context first.
func (m *AdminModule) Stop() {
	if m.started {
		m.sink.Wait()
	}
}

// Maintenance is the maintenance-mode gate for /api.
func (m *AdminModule) Maintenance() fiber.Handler {
	return adminhttp.Maintenance(m.settings)
}

// RegisterPublicRoutes mounts the unauthenticated settings route.
func (m *AdminModule) RegisterPublicRoutes(api fiber.Router) {
	m.handler.RegisterPublicRoutes(api)
}

// RegisterAdminRoutes mounts the module on the admin-only router.
func (m *AdminModule) RegisterAdminRoutes(admin fiber.Router) {
	m.handler.RegisterRoutes(admin)
}

// Settings is the signup policy and default plan source.
func (m *AdminModule) Settings() *usecase.SettingsUsecase { return m.settings }

// Usecase receives the stats sources once the other modules exist.
func (m *AdminModule) Usecase() *usecase.AdminUsecase { return m.admin }
