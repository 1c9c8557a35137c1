package userRoutes

import (
	usersControllers "lms/controllers/users"
	"lms/middleware"
	userValidators "lms/validators/users"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/users")

	userGroup.Post("/", middleware.JWTMiddleware, userValidators.CreateUser(), usersControllers.CreateUser)
	userGroup.Get("/list", middleware.JWTMiddleware, userValidators.UserList(), usersControllers.ListUsers)
	userGroup.Get("/:id", middleware.JWTMiddleware, userValidators.UserID(), usersControllers.GetUser)
	userGroup.Patch("/:id", middleware.JWTMiddleware, userValidators.UserID(), userValidators.UpdateUser(), usersControllers.UpdateUser)
	userGroup.Delete("/:id", middleware.JWTMiddleware, userValidators.UserID(), usersControllers.DeleteUser)
}
