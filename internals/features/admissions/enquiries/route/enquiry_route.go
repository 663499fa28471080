package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/admissions/enquiries/controller"
	"admissions_backend/internals/features/admissions/enquiries/service"
	"admissions_backend/internals/middlewares"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

func EnquiryRoutes(api fiber.Router, db *gorm.DB) {
	h := controller.NewEnquiryHandler(service.New(db))
	frontOffice := authMiddleware.OnlyRoles(constants.RoleError("enquiries", constants.FrontOffice), constants.FrontOffice...)
	adminOnly := authMiddleware.OnlyRoles(constants.RoleErrorAdmin("deleting enquiries"), constants.AdminOnly...)

	api.Get("/enquiry-statuses", h.Statuses)

	g := api.Group("/enquiries")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Post("/", frontOffice, h.Create)
	g.Patch("/:id", frontOffice, h.Update)
	g.Put("/:id/academics", frontOffice, h.SaveAcademics)
	g.Patch("/:id/assign", frontOffice, h.Assign)
	g.Patch("/:id/status", frontOffice, h.ChangeStatus)
	g.Delete("/:id", adminOnly, h.Delete)
}

// PublicEnquiryRoutes is the website intake form; no auth, rate limited.
func PublicEnquiryRoutes(public fiber.Router, db *gorm.DB) {
	h := controller.NewEnquiryHandler(service.New(db))
	public.Post("/enquiries", middlewares.PublicFormRateLimiter(), h.CreatePublic)
}
