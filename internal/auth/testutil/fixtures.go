package testutil

import (
	"time"

	"edwin/internal/auth/domain/model"
	"edwin/internal/auth/usecase"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plain-text password of every fixture user.
const DefaultPassword = "password123"

// UserFixture provides test data for User model
type UserFixture struct{}

// NewUserFixture creates a new UserFixture instance
func NewUserFixture() *UserFixture {
	return &UserFixture{}
}

// ValidUser returns a valid user for testing
func (f *UserFixture) ValidUser() *model.User {
	return f.UserWithPassword("test@example.com", DefaultPassword)
}

// UserWithEmail returns a user with specific email
func (f *UserFixture) UserWithEmail(email string) *model.User {
	return f.UserWithPassword(email, DefaultPassword)
}

// UserWithPassword returns a user with specific password
func (f *UserFixture) UserWithPassword(email, password string) *model.User {
	hashedPassword, _ := usecase.HashPassword(password, bcrypt.MinCost)
	now := time.Now().UTC()
	return &model.User{
		ID:           primitive.NewObjectID(),
		Name:         "Test User",
		Email:        model.NormalizeEmail(email),
		PasswordHash: hashedPassword,
		Role:         model.RoleUser,
		Workspaces:   []primitive.ObjectID{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AdminUser returns a platform admin.
func (f *UserFixture) AdminUser() *model.User {
	u := f.UserWithEmail("admin@example.com")
	u.Name = "Admin"
	u.Role = model.RoleAdmin
	return u
}
