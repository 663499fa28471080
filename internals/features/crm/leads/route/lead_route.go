package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/crm/leads/controller"
	"admissions_backend/internals/features/crm/leads/service"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

func LeadRoutes(api fiber.Router, db *gorm.DB) {
	h := controller.NewLeadHandler(service.New(db))
	frontOffice := authMiddleware.OnlyRoles(constants.RoleError("lead tracking", constants.FrontOffice), constants.FrontOffice...)

	api.Get("/enquiries/:id/follow-ups", frontOffice, h.ListFollowUps)
	api.Post("/enquiries/:id/follow-ups", frontOffice, h.CreateFollowUp)

	g := api.Group("/leads", frontOffice)
	g.Get("/options", h.Options)
	g.Get("/follow-ups", h.Due)
	g.Get("/dashboard", h.Dashboard)
}
