package auth

import (
	"context"
	"fmt"

	authhttp "edwin/internal/auth/adapter/http"
	"edwin/internal/auth/adapter/persistence/mongodb"
	"edwin/internal/auth/adapter/security"
	"edwin/internal/auth/domain/repository"
	"edwin/internal/auth/usecase"
	"edwin/internal/config"
	"edwin/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// credentialRateLimit caps register and login calls per client per minute.
const credentialRateLimit = 20

// AuthModule represents the complete authentication module
type AuthModule struct {
	repository repository.UserRepository
	tokenSvc   repository.TokenService
	usecase    *usecase.AuthUsecase
	handler    *authhttp.AuthHTTPHandler
	middleware *authhttp.AuthMiddleware
}

// NewAuthModule creates a new authentication module instance
func NewAuthModule(ctx context.Context, db *mongo.Database, cfg config.AuthConfig, log logger.Logger) (*AuthModule, error) {
	userRepo, err := mongodb.NewMongoUserRepository(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("failed to create user repository: %w", err)
	}

	tokenSvc, err := security.NewJWTokenService(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, tokenSvc, log)

	return &AuthModule{
		repository: userRepo,
		tokenSvc:   tokenSvc,
		usecase:    authUsecase,
		handler:    authhttp.NewAuthHTTPHandler(authUsecase, credentialRateLimit),
		middleware: authhttp.NewAuthMiddleware(authUsecase),
	}, nil
}

// RegisterRoutes registers authentication routes under /api.
func (am *AuthModule) RegisterRoutes(api fiber.Router) {
	am.handler.SetupRoutes(api, am.middleware)
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() *usecase.AuthUsecase {
	return am.usecase
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}

// Users exposes the user repository to modules that maintain
// denormalized user fields.
func (am *AuthModule) Users() repository.UserRepository {
	return am.repository
}

// Stop performs cleanup when the module is shut down
func (am *AuthModule) Stop() error {
	return nil
}
