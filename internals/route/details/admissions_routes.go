package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	courseRoute "admissions_backend/internals/features/academics/courses/route"
	documentRoute "admissions_backend/internals/features/admissions/documents/route"
	enquiryRoute "admissions_backend/internals/features/admissions/enquiries/route"
	leadRoute "admissions_backend/internals/features/crm/leads/route"
	studentRoute "admissions_backend/internals/features/students/route"
	"admissions_backend/internals/helpers/storage"
)

func AdmissionsPublicRoutes(public fiber.Router, db *gorm.DB) {
	enquiryRoute.PublicEnquiryRoutes(public, db)
}

// AdmissionsAdminRoutes covers the enquiry-to-student pipeline.
func AdmissionsAdminRoutes(admin fiber.Router, db *gorm.DB, store storage.Store) {
	courseRoute.CourseRoutes(admin, db)
	enquiryRoute.EnquiryRoutes(admin, db)
	documentRoute.DocumentRoutes(admin, db, store)
	leadRoute.LeadRoutes(admin, db)
	studentRoute.StudentRoutes(admin, db)
}
