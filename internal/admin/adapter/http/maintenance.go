package http

import (
	"context"
	"strings"

	authmodel "edwin/internal/auth/domain/model"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// MaintenanceSwitch reports whether maintenance mode is on.
type MaintenanceSwitch interface {
	MaintenanceMode(ctx context.Context) bool
}

// exempt paths stay reachable during maintenance.
var exempt = []string{
	"/api/auth/login",
	"/api/settings/public",
	"/api/billing/webhook",
}

func isExempt(path string) bool {
	path = strings.TrimSuffix(path, "/")
	if path == "/api/admin" || strings.HasPrefix(path, "/api/admin/") {
		return true
	}
	for _, p := range exempt {
		if path == p {
			return true
		}
	}
	return false
}

// Maintenance answers 503 on /api routes while maintenance mode is on,
// except for the exempt paths and platform admins. It must run after a
// middleware that decodes the caller's role when a token is present.
func Maintenance(sw MaintenanceSwitch) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if !strings.HasPrefix(path, "/api/") || isExempt(path) {
			return c.Next()
		}
		ctx := c.UserContext()
		if utils.GetUserRoleOrDefault(ctx, "") == authmodel.RoleAdmin {
			return c.Next()
		}
		if sw.MaintenanceMode(ctx) {
			c.Set(fiber.HeaderRetryAfter, "300")
			return response.Fail(c, fiber.StatusServiceUnavailable, "the platform is under maintenance")
		}
		return c.Next()
	}
}
