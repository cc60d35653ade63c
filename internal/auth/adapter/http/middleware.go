package http

import (
	"strings"
	"time"

	"edwin/internal/auth/domain/model"
	"edwin/internal/auth/usecase"
	"edwin/internal/shared/logger"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDLocal  = "requestid"
)

// AuthMiddleware provides authentication middleware for Fiber
type AuthMiddleware struct {
	usecase usecase.AuthUsecaseInterface
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface) *AuthMiddleware {
	return &AuthMiddleware{usecase: uc}
}

// CORS middleware with the configured origins.
func (m *AuthMiddleware) CORS(origins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Requested-With,X-Request-ID",
		ExposeHeaders: requestIDHeader,
		MaxAge:        86400,
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter allows max requests per minute per client address. c.IP()
// honours the proxy header only for requests from trusted proxies.
func (m *AuthMiddleware) RateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Fail(c, fiber.StatusTooManyRequests, "rate limit exceeded, please try again later")
		},
	})
}

// RequestID assigns an X-Request-ID to every request.
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     requestIDHeader,
		Generator:  uuid.NewString,
		ContextKey: requestIDLocal,
	})
}

// RequestContext copies the request id into the user context so loggers
// pick it up. Must run after RequestID.
func (m *AuthMiddleware) RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid, ok := c.Locals(requestIDLocal).(string); ok && rid != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), rid))
		}
		return c.Next()
	}
}

// AccessLog writes one line per request.
func (m *AuthMiddleware) AccessLog(log logger.Logger) fiber.Handler {
	log = log.WithComponent("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		entry := log.WithContext(c.UserContext()).WithFields(map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if status >= fiber.StatusInternalServerError {
			entry.Warn("request completed with server error")
		} else {
			entry.Info("request completed")
		}
		return err
	}
}

// Protect returns middleware that requires a bearer token in the
// Authorization header.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return m.protect(bearerToken)
}

// ProtectSocket is Protect for the websocket upgrade, where browsers cannot
// set headers: the token may also arrive as the token query parameter.
func (m *AuthMiddleware) ProtectSocket() fiber.Handler {
	return m.protect(socketToken)
}

func (m *AuthMiddleware) protect(extract func(*fiber.Ctx) (string, bool)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := extract(c)
		if !ok {
			return response.Fail(c, fiber.StatusUnauthorized, "authentication required")
		}

		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return response.Fail(c, fiber.StatusUnauthorized, "invalid token")
		}

		ctx := utils.WithUserID(c.UserContext(), claims.UserID)
		ctx = utils.WithUserEmail(ctx, claims.Email)
		ctx = utils.WithUserRole(ctx, claims.Role)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// OptionalAuth decodes a token when one is present and never rejects.
func (m *AuthMiddleware) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}
		claims, err := m.usecase.ValidateToken(c.UserContext(), token)
		if err != nil {
			return c.Next()
		}
		ctx := utils.WithUserID(c.UserContext(), claims.UserID)
		ctx = utils.WithUserEmail(ctx, claims.Email)
		ctx = utils.WithUserRole(ctx, claims.Role)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequireAdmin must run after Protect.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return m.RequireRole(model.RoleAdmin)
}

// RequireRole rejects callers without the platform role. Must run after Protect.
func (m *AuthMiddleware) RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !utils.HasUserID(c.UserContext()) {
			return response.Fail(c, fiber.StatusUnauthorized, "authentication required")
		}
		if utils.GetUserRoleOrDefault(c.UserContext(), "") != role {
			return response.Fail(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// bearerToken reads the token from the Authorization header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

func socketToken(c *fiber.Ctx) (string, bool) {
	if token, ok := bearerToken(c); ok {
		return token, true
	}
	token := c.Query("token")
	return token, token != ""
}
