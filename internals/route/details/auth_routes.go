package details

import (
	"github.com/gofiber/fiber/v2"

	authRoute "admissions_backend/internals/features/users/auth/route"
	authService "admissions_backend/internals/features/users/auth/service"
)

func AuthRoutes(app *fiber.App, svc *authService.AuthService, protect fiber.Handler) {
	authRoute.AuthRoutes(app, svc, protect)
}

func UserAdminRoutes(admin fiber.Router, svc *authService.AuthService) {
	authRoute.UserRoutes(admin, svc)
}
