package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/models"
)

// ActorUser resolves the authenticated actor set by JWTMiddleware against the
// identity store. When it returns a nil user the response has already been
// written; handlers should return the accompanying error as-is.
func ActorUser(c *fiber.Ctx) (*models.User, error) {
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return nil, JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Status == models.StatusSuspended {
		return nil, JsonResponse(c, fiber.StatusForbidden, false, "Account is suspended!", nil)
	}

	return &user, nil
}
