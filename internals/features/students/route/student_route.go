package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/students/controller"
	"admissions_backend/internals/features/students/service"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

// StudentRoutes: registrars admit and keep academic records, all staff can read.
func StudentRoutes(api fiber.Router, db *gorm.DB) {
	h := controller.NewStudentHandler(service.New(db))
	registrar := authMiddleware.OnlyRoles(constants.RoleError("student records", constants.DocumentVerifiers), constants.DocumentVerifiers...)

	api.Post("/enquiries/:id/admit", registrar, h.Admit)

	g := api.Group("/students")
	g.Get("/", h.List)
	g.Get("/:id", h.Get)
	g.Patch("/:id", registrar, h.Update)
	g.Patch("/:id/status", registrar, h.ChangeStatus)
	g.Get("/:id/records", h.Records)
	g.Put("/:id/records/:semester", registrar, h.UpsertRecord)
	g.Delete("/:id/records/:semester", registrar, h.DeleteRecord)
}
