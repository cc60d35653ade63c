package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	adminhttp "edwin/internal/admin/adapter/http"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type switchFn func() bool

func (f switchFn) MaintenanceMode(context.Context) bool { return f() }

func TestMaintenance(t *testing.T) {
	on := true
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Test-Role"); role != "" {
			c.SetUserContext(utils.WithUserRole(c.UserContext(), role))
		}
		return c.Next()
	})
	app.Use(adminhttp.Maintenance(switchFn(func() bool { return on })))
	app.All("/*", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	tests := []struct {
		method string
		path   string
		role   string
		want   int
	}{
		{http.MethodGet, "/api/workspaces", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/workspaces", "user", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/workspaces", "admin", http.StatusOK},
		{http.MethodPost, "/api/auth/login", "", http.StatusOK},
		{http.MethodPost, "/api/auth/register", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/settings/public", "", http.StatusOK},
		{http.MethodPost, "/api/billing/webhook", "", http.StatusOK},
		{http.MethodGet, "/api/admin/stats", "", http.StatusOK},
		{http.MethodGet, "/api/administrator", "", http.StatusServiceUnavailable},
		{http.MethodGet, "/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		if tt.role != "" {
			req.Header.Set("X-Test-Role", tt.role)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, "%s %s as %q", tt.method, tt.path, tt.role)
	}

	on = false
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/workspaces", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
