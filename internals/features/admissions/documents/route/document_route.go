package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/admissions/documents/controller"
	"admissions_backend/internals/features/admissions/documents/service"
	"admissions_backend/internals/helpers/storage"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

// DocumentRoutes: counsellors and registrars upload, registrars verify.
func DocumentRoutes(api fiber.Router, db *gorm.DB, store storage.Store) {
	h := controller.NewDocumentHandler(service.New(db, store))

	uploaders := append(append([]string{}, constants.FrontOffice...), constants.RoleRegistrar)
	upload := authMiddleware.OnlyRoles(constants.RoleError("document uploads", uploaders), uploaders...)
	verify := authMiddleware.OnlyRoles(constants.RoleError("document verification", constants.DocumentVerifiers), constants.DocumentVerifiers...)

	enq := api.Group("/enquiries/:id/documents")
	enq.Get("/", h.List)
	enq.Get("/checklist", h.Checklist)
	enq.Post("/", upload, h.Upload)

	docs := api.Group("/documents")
	docs.Patch("/:doc_id/verify", verify, h.Verify)
	docs.Patch("/:doc_id/reject", verify, h.Reject)
	docs.Delete("/:doc_id", upload, h.Delete)
}
