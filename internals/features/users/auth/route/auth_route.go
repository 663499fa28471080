package route

import (
	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/users/auth/controller"
	"admissions_backend/internals/features/users/auth/service"
	rateLimiter "admissions_backend/internals/middlewares"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

// AuthRoutes mounts /api/auth. protect is the AuthJWT handler.
func AuthRoutes(app *fiber.App, svc *service.AuthService, protect fiber.Handler) {
	ac := controller.NewAuthController(svc)

	baseAuth := app.Group("/api/auth")
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), ac.Login)
	baseAuth.Post("/google", rateLimiter.LoginRateLimiter(), ac.LoginGoogle)
	baseAuth.Post("/refresh", ac.Refresh)
	baseAuth.Post("/logout", ac.Logout)

	baseAuth.Get("/me", protect, ac.Me)
	baseAuth.Post("/change-password", protect, ac.ChangePassword)
}

// UserRoutes: staff account administration, admin only.
func UserRoutes(api fiber.Router, svc *service.AuthService) {
	uc := controller.NewUserController(svc)

	g := api.Group("/users",
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("users"), constants.AdminOnly...))
	g.Post("/", uc.Create)
	g.Get("/", uc.List)
	g.Get("/:id", uc.Get)
	g.Patch("/:id", uc.Update)
	g.Patch("/:id/deactivate", uc.Deactivate)
}
