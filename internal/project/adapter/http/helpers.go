package http

import (
	"edwin/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// callerAndID resolves the authenticated caller and the :id route param.
func callerAndID(c *fiber.Ctx) (primitive.ObjectID, primitive.ObjectID, error) {
	callerID, err := utils.CallerID(c)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	id, err := utils.ParamID(c, "id")
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	return callerID, id, nil
}
