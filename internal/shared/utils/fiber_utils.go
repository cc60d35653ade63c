package utils

import (
	"edwin/internal/shared/database"
	apperrors "edwin/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CallerID returns the authenticated user's id from the request context.
func CallerID(c *fiber.Ctx) (primitive.ObjectID, error) {
	hex, err := GetUserIDFromContext(c.UserContext())
	if err != nil || hex == "" {
		return primitive.NilObjectID, apperrors.NewAuthenticationError("authentication required")
	}
	return database.ParseObjectID("userId", hex)
}

// CallerEmail returns the authenticated user's email.
func CallerEmail(c *fiber.Ctx) string {
	email, _ := GetUserEmailFromContext(c.UserContext())
	return email
}

// ParamID decodes the named route parameter as an ObjectID.
func ParamID(c *fiber.Ctx, name string) (primitive.ObjectID, error) {
	return database.ParseObjectID(name, c.Params(name))
}

// ParseBody decodes the JSON body into out, reporting failures as 400.
func ParseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid request body").WithCause(err)
	}
	return nil
}
