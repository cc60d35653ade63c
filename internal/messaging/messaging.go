package messaging

import (
	"context"
	"fmt"

	messaginghttp "edwin/internal/messaging/adapter/http"
	"edwin/internal/messaging/adapter/persistence/mongodb"
	"edwin/internal/messaging/adapter/realtime"
	"edwin/internal/messaging/usecase"
	"edwin/internal/shared/eventbus"
	"edwin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// MessagingModule bundles messages, conversations and the socket hub.
type MessagingModule struct {
	usecase *usecase.MessagingUsecase
	hub     *realtime.Hub
	fanout  *realtime.RedisFanout
	handler *messaginghttp.MessagingHandler
	sockets *messaginghttp.SocketHandler
	log     logger.Logger
}

// NewMessagingModule creates the module. With a nil redisClient events are
// delivered to sockets on this instance only.
func NewMessagingModule(
	ctx context.Context,
	db *mongo.Database,
	redisClient *redis.Client,
	workspaces usecase.WorkspaceAccess,
	bus eventbus.EventBusInterface,
	log logger.Logger,
) (*MessagingModule, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	messages, err := mongodb.NewMongoMessageRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create message repository: %w", err)
	}
	conversations, err := mongodb.NewMongoConversationRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation repository: %w", err)
	}

	uc := usecase.NewMessagingUsecase(messages, conversations, workspaces, bus, log)
	hub := realtime.NewHub(log)
	m := &MessagingModule{
		usecase: uc,
		hub:     hub,
		handler: messaginghttp.NewMessagingHandler(uc),
		sockets: messaginghttp.NewSocketHandler(hub, log),
		log:     log.WithComponent("messaging"),
	}
	if redisClient != nil {
		m.fanout = realtime.NewRedisFanout(redisClient, realtime.DefaultChannel, log)
	}

	realtime.NewRelay(hub, m.fanout).Subscribe(bus)
	bus.Subscribe(eventbus.EventTypeMemberRemoved, uc.HandleMemberRemoved)
	return m, nil
}

// Start consumes the Redis channel until ctx is cancelled.
func (m *MessagingModule) Start(ctx context.Context) {
	if m.fanout == nil {
		return
	}
	go func() {
		if err := m.fanout.Run(ctx, m.hub.Deliver, nil); err != nil {
			m.log.Errorf("message fanout stopped: %v", err)
		}
	}()
}

// RegisterRoutes mounts the REST routes on an authenticated router.
func (m *MessagingModule) RegisterRoutes(api fiber.Router) {
	m.handler.RegisterRoutes(api)
}

// RegisterSocketRoute mounts GET /ws behind protect. It must be mounted
// before any router-wide Protect so the query token reaches protect.
func (m *MessagingModule) RegisterSocketRoute(api fiber.Router, protect fiber.Handler) {
	m.sockets.RegisterRoutes(api, protect)
}
