package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	authhttp "edwin/internal/auth/adapter/http"
	"edwin/internal/auth/domain/model"
	"edwin/internal/auth/domain/repository"
	"edwin/internal/auth/usecase"
	"edwin/internal/shared/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthHTTPTestSuite struct {
	suite.Suite
	app         *fiber.App
	mockUsecase *mockAuthUsecase
	userID      primitive.ObjectID
}

func (suite *AuthHTTPTestSuite) SetupTest() {
	suite.mockUsecase = &mockAuthUsecase{}
	suite.userID = primitive.NewObjectID()
	suite.app = fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler})

	handler := authhttp.NewAuthHTTPHandler(suite.mockUsecase, 0)
	handler.SetupRoutes(suite.app.Group("/api"), authhttp.NewAuthMiddleware(suite.mockUsecase))

	suite.mockUsecase.On("ValidateToken", mock.Anything, "good-token").Return(&repository.Claims{
		UserID: suite.userID.Hex(), Email: "ada@example.com", Role: model.RoleUser,
	}, nil).Maybe()
}

func (suite *AuthHTTPTestSuite) do(method, path string, body interface{}, token string) (*http.Response, response.Envelope) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(suite.T(), err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)

	var env response.Envelope
	require.NoError(suite.T(), json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (suite *AuthHTTPTestSuite) TestRegister_Created() {
	req := usecase.RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "password123"}
	suite.mockUsecase.On("Register", mock.Anything, req).Return(&usecase.AuthResponse{
		User:  &model.User{ID: suite.userID, Name: "Ada", Email: "ada@example.com"},
		Token: "jwt",
	}, nil)

	resp, env := suite.do("POST", "/api/auth/register", req, "")
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)
	assert.True(suite.T(), env.Success)
	data := env.Data.(map[string]interface{})
	assert.Equal(suite.T(), "jwt", data["token"])
	assert.NotContains(suite.T(), data["user"], "passwordHash")
}

func (suite *AuthHTTPTestSuite) TestRegister_Conflict() {
	suite.mockUsecase.On("Register", mock.Anything, mock.Anything).Return(nil, model.ErrUserExists)

	resp, env := suite.do("POST", "/api/auth/register", map[string]string{"email": "dup@example.com"}, "")
	assert.Equal(suite.T(), http.StatusConflict, resp.StatusCode)
	assert.False(suite.T(), env.Success)
	assert.Equal(suite.T(), "email is already registered", env.Error)
}

func (suite *AuthHTTPTestSuite) TestLogin_InvalidCredentials() {
	suite.mockUsecase.On("Login", mock.Anything, mock.Anything).Return(nil, model.ErrInvalidCredentials)

	resp, env := suite.do("POST", "/api/auth/login", map[string]string{"email": "a@b.co", "password": "x"}, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(suite.T(), "invalid email or password", env.Error)
}

func (suite *AuthHTTPTestSuite) TestLogin_MalformedBody() {
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := suite.app.Test(req)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), http.StatusBadRequest, resp.StatusCode)
}

func (suite *AuthHTTPTestSuite) TestMe_RequiresToken() {
	resp, env := suite.do("GET", "/api/auth/me", nil, "")
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
	assert.False(suite.T(), env.Success)
}

func (suite *AuthHTTPTestSuite) TestMe_ReturnsUser() {
	suite.mockUsecase.On("GetUserByID", mock.Anything, suite.userID.Hex()).
		Return(&model.User{ID: suite.userID, Name: "Ada", Email: "ada@example.com"}, nil)

	resp, env := suite.do("GET", "/api/auth/me", nil, "good-token")
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "Ada", env.Data.(map[string]interface{})["name"])
}

func (suite *AuthHTTPTestSuite) TestPatchMe_OnlyProvidedFields() {
	suite.mockUsecase.On("UpdateProfile", mock.Anything, suite.userID.Hex(), mock.MatchedBy(func(u model.ProfileUpdate) bool {
		return u.Name != nil && *u.Name == "Grace" && u.Avatar == nil
	})).Return(&model.User{ID: suite.userID, Name: "Grace"}, nil)

	resp, _ := suite.do("PATCH", "/api/auth/me", map[string]string{"name": "Grace"}, "good-token")
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	suite.mockUsecase.AssertExpectations(suite.T())
}

func (suite *AuthHTTPTestSuite) TestChangePassword_WrongCurrent() {
	suite.mockUsecase.On("ChangePassword", mock.Anything, suite.userID.Hex(), mock.Anything).Return(model.ErrWrongPassword)

	resp, _ := suite.do("POST", "/api/auth/change-password", map[string]string{
		"currentPassword": "nope", "newPassword": "whatever123",
	}, "good-token")
	assert.Equal(suite.T(), http.StatusUnauthorized, resp.StatusCode)
}

func (suite *AuthHTTPTestSuite) TestSearchUsers() {
	suite.mockUsecase.On("SearchUsers", mock.Anything, "ad").Return([]model.Summary{{ID: suite.userID, Name: "Ada"}}, nil)

	resp, env := suite.do("GET", "/api/users/search?q=ad", nil, "good-token")
	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Len(suite.T(), env.Data, 1)
}

func TestAuthHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(AuthHTTPTestSuite))
}
