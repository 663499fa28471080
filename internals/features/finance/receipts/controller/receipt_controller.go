package controller

import (
	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/features/finance/receipts/service"
	helper "admissions_backend/internals/helpers"
)

type ReceiptController struct {
	Svc *service.ReceiptService
}

func NewReceiptController(svc *service.ReceiptService) *ReceiptController {
	return &ReceiptController{Svc: svc}
}

func sendPDF(c *fiber.Ctx, body []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(body)
}

// GET /api/a/payments/:payment_id/receipt.pdf
func (h *ReceiptController) ReceiptPDF(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "payment_id")
	if err != nil {
		return err
	}
	body, name, err := h.Svc.ReceiptPDF(c.UserContext(), id)
	if err != nil {
		return err
	}
	return sendPDF(c, body, name)
}

// POST /api/a/payments/:payment_id/receipt/email
func (h *ReceiptController) EmailReceipt(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "payment_id")
	if err != nil {
		return err
	}
	if err := h.Svc.Email(c.UserContext(), id); err != nil {
		return err
	}
	return helper.JsonOK(c, "receipt emailed", fiber.Map{"payment_id": id})
}

// GET /api/a/enquiries/:id/admission-form.pdf
func (h *ReceiptController) AdmissionFormPDF(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	body, name, err := h.Svc.AdmissionFormPDF(c.UserContext(), id)
	if err != nil {
		return err
	}
	return sendPDF(c, body, name)
}
