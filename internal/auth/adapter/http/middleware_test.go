package http_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	authhttp "edwin/internal/auth/adapter/http"
	"edwin/internal/auth/domain/repository"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MiddlewareTestSuite struct {
	suite.Suite
	app        *fiber.App
	mockUC     *mockAuthUsecase
	middleware *authhttp.AuthMiddleware
}

func (suite *MiddlewareTestSuite) SetupTest() {
	suite.mockUC = &mockAuthUsecase{}
	suite.middleware = authhttp.NewAuthMiddleware(suite.mockUC)
	suite.app = fiber.New()

	suite.mockUC.On("ValidateToken", mock.Anything, "user-token").
		Return(&repository.Claims{UserID: "u1", Email: "u1@example.com", Role: "user"}, nil).Maybe()
	suite.mockUC.On("ValidateToken", mock.Anything, "admin-token").
		Return(&repository.Claims{UserID: "a1", Email: "a1@example.com", Role: "admin"}, nil).Maybe()
	suite.mockUC.On("ValidateToken", mock.Anything, "bad-token").
		Return(nil, errors.New("invalid token")).Maybe()
}

func (suite *MiddlewareTestSuite) get(path, token string) *http.Response {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	return resp
}

func (suite *MiddlewareTestSuite) TestProtect_PutsClaimsInContext() {
	suite.app.Get("/protected", suite.middleware.Protect(), func(c *fiber.Ctx) error {
		id, err := utils.GetUserIDFromContext(c.UserContext())
		if err != nil {
			return err
		}
		return c.SendString(id + "|" + utils.GetUserRoleOrDefault(c.UserContext(), ""))
	})

	resp := suite.get("/protected", "user-token")
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)

	assert.Equal(suite.T(), http.StatusUnauthorized, suite.get("/protected", "").StatusCode)
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.get("/protected", "bad-token").StatusCode)
}

func (suite *MiddlewareTestSuite) TestProtect_IgnoresQueryToken() {
	suite.app.Get("/api/auth/me", suite.middleware.Protect(), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	assert.Equal(suite.T(), http.StatusUnauthorized, suite.get("/api/auth/me?token=user-token", "").StatusCode)
	assert.Equal(suite.T(), http.StatusOK, suite.get("/api/auth/me", "user-token").StatusCode)
}

func (suite *MiddlewareTestSuite) TestOptionalAuth_IgnoresQueryToken() {
	suite.app.Get("/open", suite.middleware.OptionalAuth(), func(c *fiber.Ctx) error {
		return c.SendString(strconv.FormatBool(utils.HasUserID(c.UserContext())))
	})

	resp := suite.get("/open?token=user-token", "")
	body, err := io.ReadAll(resp.Body)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "false", string(body))
}

func (suite *MiddlewareTestSuite) TestProtectSocket_AcceptsQueryToken() {
	suite.app.Get("/ws", suite.middleware.ProtectSocket(), func(c *fiber.Ctx) error {
		id, err := utils.GetUserIDFromContext(c.UserContext())
		if err != nil {
			return err
		}
		return c.SendString(id)
	})

	resp := suite.get("/ws?token=user-token", "")
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "u1", string(body))

	assert.Equal(suite.T(), http.StatusOK, suite.get("/ws", "user-token").StatusCode)
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.get("/ws?token=bad-token", "").StatusCode)
	assert.Equal(suite.T(), http.StatusUnauthorized, suite.get("/ws", "").StatusCode)
}

func (suite *MiddlewareTestSuite) TestRateLimiter_KeysOnRemoteAddress() {
	suite.app.Get("/limited", suite.middleware.RateLimiter(2), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/limited", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i))
		resp, err := suite.app.Test(req)
		require.NoError(suite.T(), err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(suite.T(), []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses,
		"a rotating X-Forwarded-For does not reset the budget")
}

func (suite *MiddlewareTestSuite) TestRequireAdmin() {
	suite.app.Get("/admin", suite.middleware.Protect(), suite.middleware.RequireAdmin(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	assert.Equal(suite.T(), http.StatusForbidden, suite.get("/admin", "user-token").StatusCode)
	assert.Equal(suite.T(), http.StatusOK, suite.get("/admin", "admin-token").StatusCode)
}

func (suite *MiddlewareTestSuite) TestOptionalAuth_NeverRejects() {
	suite.app.Get("/open", suite.middleware.OptionalAuth(), func(c *fiber.Ctx) error {
		if utils.HasUserID(c.UserContext()) {
			return c.SendString("authenticated")
		}
		return c.SendString("anonymous")
	})

	assert.Equal(suite.T(), http.StatusOK, suite.get("/open", "bad-token").StatusCode)
	assert.Equal(suite.T(), http.StatusOK, suite.get("/open", "").StatusCode)
}

func (suite *MiddlewareTestSuite) TestRequestID_PropagatesToContext() {
	suite.app.Use(suite.middleware.RequestID(), suite.middleware.RequestContext())
	suite.app.Get("/rid", func(c *fiber.Ctx) error {
		rid, err := utils.GetRequestIDFromContext(c.UserContext())
		if err != nil {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendString(rid)
	})

	req := httptest.NewRequest("GET", "/rid", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "fixed-id", resp.Header.Get("X-Request-ID"))
}

func TestMiddlewareTestSuite(t *testing.T) {
	suite.Run(t, new(MiddlewareTestSuite))
}
