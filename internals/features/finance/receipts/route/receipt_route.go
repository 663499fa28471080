package route

import (
	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/constants"
	"admissions_backend/internals/features/finance/receipts/controller"
	"admissions_backend/internals/features/finance/receipts/service"
	authMiddleware "admissions_backend/internals/middlewares/auth"
)

func ReceiptRoutes(api fiber.Router, svc *service.ReceiptService) {
	h := controller.NewReceiptController(svc)
	feeDesk := authMiddleware.OnlyRoles(constants.RoleError("receipts", constants.FeeDesk), constants.FeeDesk...)

	api.Get("/payments/:payment_id/receipt.pdf", feeDesk, h.ReceiptPDF)
	api.Post("/payments/:payment_id/receipt/email", feeDesk, h.EmailReceipt)
	api.Get("/enquiries/:id/admission-form.pdf", h.AdmissionFormPDF)
}
