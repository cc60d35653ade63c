package usecase

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"edwin/internal/auth/domain/model"
	"edwin/internal/auth/domain/repository"
	"edwin/internal/shared/database"
	apperrors "edwin/internal/shared/errors"
	"edwin/internal/shared/logger"

	"golang.org/x/crypto/bcrypt"
)

// Password validation constants
const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxNameLength     = 100

	// SearchLimit caps user search results.
	SearchLimit = 20
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// SignupPolicy decides whether new accounts may register.
type SignupPolicy interface {
	SignupsAllowed(ctx context.Context) (bool, error)
}

// WelcomeNotifier sends the welcome email after registration.
type WelcomeNotifier interface {
	SendWelcome(ctx context.Context, user *model.User) error
}

// AuthUsecaseInterface defines the contract for authentication use cases.
type AuthUsecaseInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
	SearchUsers(ctx context.Context, query string) ([]model.Summary, error)
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest carries the current and new password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// AuthUsecase implements the authentication logic.
type AuthUsecase struct {
	repo     repository.UserRepository
	tokenSvc repository.TokenService
	policy   SignupPolicy
	welcome  WelcomeNotifier
	log      logger.Logger
	cost     int
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(repo repository.UserRepository, tokenSvc repository.TokenService, log logger.Logger) *AuthUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthUsecase{
		repo:     repo,
		tokenSvc: tokenSvc,
		log:      log.WithComponent("auth"),
		cost:     bcrypt.DefaultCost,
	}
}

// SetSignupPolicy installs the policy consulted by Register.
func (uc *AuthUsecase) SetSignupPolicy(p SignupPolicy) { uc.policy = p }

// SetWelcomeNotifier installs the welcome email sender.
func (uc *AuthUsecase) SetWelcomeNotifier(n WelcomeNotifier) { uc.welcome = n }

// SetHashCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (uc *AuthUsecase) SetHashCost(cost int) { uc.cost = cost }

func validateEmail(email string) error {
	if email == "" {
		return apperrors.NewValidationError("email is required").WithDetail("field", "email")
	}
	if !emailRegex.MatchString(email) {
		return apperrors.NewValidationError("invalid email format").WithDetail("field", "email")
	}
	return nil
}

func validatePassword(field, password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength {
		return apperrors.NewValidationError("password must be at least 8 characters").WithDetail("field", field)
	}
	if n > maxPasswordLength {
		return apperrors.NewValidationError("password must be at most 128 characters").WithDetail("field", field)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return apperrors.NewValidationError("name is required").WithDetail("field", "name")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return apperrors.NewValidationError("name must be at most 100 characters").WithDetail("field", "name")
	}
	return nil
}

// Register creates an account and signs the caller in.
func (uc *AuthUsecase) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = model.NormalizeEmail(req.Email)

	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validatePassword("password", req.Password); err != nil {
		return nil, err
	}

	if uc.policy != nil {
		allowed, err := uc.policy.SignupsAllowed(ctx)
		if err != nil {
			return nil, apperrors.WrapError(err, "failed to read signup policy")
		}
		if !allowed {
			return nil, model.ErrSignupsDisabled
		}
	}

	hash, err := HashPassword(req.Password, uc.cost)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to hash password").WithCause(err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token").WithCause(err)
	}

	if uc.welcome != nil {
		if err := uc.welcome.SendWelcome(ctx, user); err != nil {
			uc.log.WithContext(ctx).Warnf("welcome email to %s failed: %v", user.Email, err)
		}
	}

	uc.log.WithContext(ctx).WithFields(map[string]interface{}{"user": user.ID.Hex()}).Info("user registered")
	return &AuthResponse{User: user, Token: token}, nil
}

// Login verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (uc *AuthUsecase) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := model.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("email and password are required")
	}

	user, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := CheckPassword(user.PasswordHash, req.Password); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	token, err := uc.tokenSvc.GenerateToken(ctx, user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to issue token").WithCause(err)
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// ValidateToken decodes a bearer token.
func (uc *AuthUsecase) ValidateToken(ctx context.Context, tokenString string) (*repository.Claims, error) {
	claims, err := uc.tokenSvc.ValidateToken(ctx, tokenString)
	if err != nil {
		return nil, apperrors.NewAuthenticationError("invalid token").WithCause(err)
	}
	return claims, nil
}

// GetUserByID loads a user by hex id.
func (uc *AuthUsecase) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	id, err := database.ParseObjectID("userId", userID)
	if err != nil {
		return nil, err
	}
	return uc.repo.GetByID(ctx, id)
}

// UpdateProfile merges name and avatar.
func (uc *AuthUsecase) UpdateProfile(ctx context.Context, userID string, update model.ProfileUpdate) (*model.User, error) {
	id, err := database.ParseObjectID("userId", userID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if update.IsEmpty() {
		return uc.repo.GetByID(ctx, id)
	}
	return uc.repo.UpdateProfile(ctx, id, update)
}

// ChangePassword replaces the password after checking the current one.
func (uc *AuthUsecase) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	id, err := database.ParseObjectID("userId", userID)
	if err != nil {
		return err
	}
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CheckPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return model.ErrWrongPassword
	}
	if err := validatePassword("newPassword", req.NewPassword); err != nil {
		return err
	}

	hash, err := HashPassword(req.NewPassword, uc.cost)
	if err != nil {
		return apperrors.NewInternalError("failed to hash password").WithCause(err)
	}
	return uc.repo.UpdatePassword(ctx, id, hash)
}

// SearchUsers finds users whose name or email starts with query.
func (uc *AuthUsecase) SearchUsers(ctx context.Context, query string) ([]model.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Summary{}, nil
	}
	users, err := uc.repo.Search(ctx, query, SearchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]model.Summary, 0, len(users))
	for _, u := range users {
		out = append(out, u.ToSummary())
	}
	return out, nil
}
