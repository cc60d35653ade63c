package billing

import (
	"time"

	billinghttp "edwin/internal/billing/adapter/http"
	billingredis "edwin/internal/billing/adapter/redis"
	"edwin/internal/billing/adapter/stripe"
	"edwin/internal/billing/domain/repository"
	"edwin/internal/billing/usecase"
	"edwin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Config is the provider setup.
type Config struct {
	SecretKey     string
	WebhookSecret string
	URLs          usecase.URLs
	DedupeTTL     time.Duration
}

// BillingModule connects workspaces to Stripe.
type BillingModule struct {
	usecase *usecase.BillingUsecase
	handler *billinghttp.BillingHandler
}

// NewBillingModule wires the module. Without a secret key checkout and the
// portal answer 503; without a webhook secret so does the webhook. A nil
// redisClient turns off event dedupe.
func NewBillingModule(
	cfg Config,
	redisClient *redis.Client,
	store usecase.SubscriptionStore,
	prices usecase.Prices,
	log logger.Logger,
) *BillingModule {
	var gateway repository.Gateway
	if cfg.SecretKey != "" {
		gateway = stripe.NewGateway(cfg.SecretKey)
	}
	var verifier repository.WebhookVerifier
	if cfg.WebhookSecret != "" {
		verifier = stripe.NewVerifier(cfg.WebhookSecret)
	}
	var dedupe repository.EventDeduper
	if redisClient != nil {
		dedupe = billingredis.NewEventDeduper(redisClient, cfg.DedupeTTL)
	}
	if gateway == nil {
		log.Warn("STRIPE_SECRET_KEY not set, billing checkout is disabled")
	}

	uc := usecase.NewBillingUsecase(gateway, verifier, dedupe, store, prices, cfg.URLs, log)
	return &BillingModule{usecase: uc, handler: billinghttp.NewBillingHandler(uc)}
}

// RegisterRoutes mounts checkout and the portal on an authenticated router.
func (m *BillingModule) RegisterRoutes(api fiber.Router) {
	m.handler.RegisterRoutes(api)
}

// RegisterPublicRoutes mounts the webhook.
func (m *BillingModule) RegisterPublicRoutes(api fiber.Router) {
	m.handler.RegisterPublicRoutes(api)
}
