package route

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"admissions_backend/internals/configs"
	"admissions_backend/internals/constants"
	docService "admissions_backend/internals/features/admissions/documents/service"
	"admissions_backend/internals/features/finance/student_fees/controller"
	"admissions_backend/internals/features/finance/student_fees/repository"
	"admissions_backend/internals/features/finance/student_fees/service"
	"admissions_backend/internals/helpers/mailer"
	"admissions_backend/internals/middlewares"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

// StudentFeeRoutes mounts the fee desk under an authenticated /api/a group.
func StudentFeeRoutes(api fiber.Router, db *gorm.DB, rdb *redis.Client, m mailer.Mailer) {
	var otp service.OTPStore
	if rdb != nil {
		otp = service.NewRedisOTPStore(rdb, configs.OTPTTL)
	}
	svc := service.NewFeeFormService(repository.New(db), otp, m)
	docs := docService.New(db, nil)
	svc.AfterFinalize = func(ctx context.Context, enquiryID uuid.UUID) error {
		_, err := docs.AdvanceIfReady(ctx, enquiryID)
		return err
	}
	h := controller.NewStudentFeeHandler(svc)

	feeDesk := authMiddleware.OnlyRoles(constants.RoleError("fee records", constants.FeeDesk), constants.FeeDesk...)

	api.Get("/fee-types", h.FeeTypes)
	api.Post("/fees/discount", h.Discount)

	enq := api.Group("/enquiries/:id/fees", feeDesk)
	enq.Get("/form", h.GetForm)
	enq.Post("/draft", h.SaveDraft)
	enq.Post("/otp", middlewares.OTPRateLimiter(), h.RequestOTP)
	enq.Post("/", h.Submit)

	api.Patch("/fee-drafts/:draft_id", feeDesk, h.UpdateDraft)

	fees := api.Group("/student-fees", feeDesk)
	fees.Get("/:id", h.GetFinal)
	fees.Patch("/:id", h.UpdateFinal)
}
