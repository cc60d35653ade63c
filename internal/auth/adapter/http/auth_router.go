package http

import (
	"edwin/internal/auth/domain/model"
	"edwin/internal/auth/usecase"
	"edwin/internal/shared/response"
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase   usecase.AuthUsecaseInterface
	rateLimit int
}

// NewAuthHTTPHandler creates a new authentication HTTP handler. rateLimit
// caps credential requests per minute per client; zero disables it.
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, rateLimit int) *AuthHTTPHandler {
	return &AuthHTTPHandler{usecase: uc, rateLimit: rateLimit}
}

// SetupRoutes mounts /auth and /users under api.
func (h *AuthHTTPHandler) SetupRoutes(api fiber.Router, middleware *AuthMiddleware) {
	auth := api.Group("/auth")
	credentials := []fiber.Handler{}
	if h.rateLimit > 0 {
		credentials = append(credentials, middleware.RateLimiter(h.rateLimit))
	}
	auth.Post("/register", append(credentials, h.Register)...)
	auth.Post("/login", append(credentials, h.Login)...)

	auth.Get("/me", middleware.Protect(), h.GetCurrentUser)
	auth.Patch("/me", middleware.Protect(), h.UpdateCurrentUser)
	auth.Post("/change-password", middleware.Protect(), h.ChangePassword)

	api.Get("/users/search", middleware.Protect(), h.SearchUsers)
}

// Register handles user registration
func (h *AuthHTTPHandler) Register(c *fiber.Ctx) error {
	var req usecase.RegisterRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	resp, err := h.usecase.Register(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, resp)
}

// Login handles user login
func (h *AuthHTTPHandler) Login(c *fiber.Ctx) error {
	var req usecase.LoginRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	resp, err := h.usecase.Login(c.UserContext(), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, resp)
}

// GetCurrentUser returns current user information
func (h *AuthHTTPHandler) GetCurrentUser(c *fiber.Ctx) error {
	userID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.usecase.GetUserByID(c.UserContext(), userID.Hex())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, user)
}

// UpdateCurrentUser merges name and avatar into the caller's profile.
func (h *AuthHTTPHandler) UpdateCurrentUser(c *fiber.Ctx) error {
	userID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var update model.ProfileUpdate
	if err := utils.ParseBody(c, &update); err != nil {
		return response.Error(c, err)
	}

	user, err := h.usecase.UpdateProfile(c.UserContext(), userID.Hex(), update)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, user)
}

// ChangePassword handles password change
func (h *AuthHTTPHandler) ChangePassword(c *fiber.Ctx) error {
	userID, err := utils.CallerID(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req usecase.ChangePasswordRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return response.Error(c, err)
	}

	if err := h.usecase.ChangePassword(c.UserContext(), userID.Hex(), req); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, fiber.Map{"message": "password updated"})
}

// SearchUsers matches users by name or email prefix.
func (h *AuthHTTPHandler) SearchUsers(c *fiber.Ctx) error {
	users, err := h.usecase.SearchUsers(c.UserContext(), c.Query("q"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, users)
}
