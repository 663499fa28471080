package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/academics/courses/controller"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

// CourseRoutes: staff read, admin writes.
func CourseRoutes(api fiber.Router, db *gorm.DB) {
	h := controller.NewCourseHandler(db)
	adminOnly := authMiddleware.OnlyRoles(constants.RoleErrorAdmin("course setup"), constants.AdminOnly...)

	courses := api.Group("/courses")
	courses.Get("/", h.List)
	courses.Get("/:id", h.Get)
	courses.Get("/:id/semester-fees", h.GetSemesterFees)
	courses.Get("/:id/other-fees", h.GetOtherFees)

	courses.Post("/", adminOnly, h.Create)
	courses.Patch("/:id", adminOnly, h.Update)
	courses.Delete("/:id", adminOnly, h.Delete)
	courses.Put("/:id/semester-fees", adminOnly, h.UpsertSemesterFees)
	courses.Put("/:id/other-fees", adminOnly, h.UpsertOtherFees)

	api.Get("/other-fees", h.GetOtherFees)
	api.Put("/other-fees", adminOnly, h.UpsertOtherFees)
}
