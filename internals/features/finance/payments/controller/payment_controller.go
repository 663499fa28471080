package controller

import (
	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/features/finance/payments/dto"
	"admissions_backend/internals/features/finance/payments/service"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

type PaymentController struct {
	Svc *service.PaymentService
}

func NewPaymentController(svc *service.PaymentService) *PaymentController {
	return &PaymentController{Svc: svc}
}

// POST /api/a/student-fees/:id/payments
func (h *PaymentController) Create(c *fiber.Ctx) error {
	feeID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreatePaymentRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	p, err := h.Svc.Record(c.UserContext(), feeID, req, helperAuth.GetUserIDPtr(c))
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "payment recorded", dto.FromModel(*p))
}

// GET /api/a/student-fees/:id/payments
func (h *PaymentController) ListForFee(c *fiber.Ctx) error {
	feeID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Svc.ListForFee(c.UserContext(), feeID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "payments", dto.FromModels(rows))
}

// GET /api/a/student-fees/:id/balance
func (h *PaymentController) Balance(c *fiber.Ctx) error {
	feeID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	bal, err := h.Svc.Balance(c.UserContext(), feeID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "fee balance", bal)
}

// GET /api/a/payments
func (h *PaymentController) List(c *fiber.Ctx) error {
	var q dto.ListPaymentQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := h.Svc.List(c.UserContext(), q, p)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "payments", dto.FromModels(rows), helper.BuildMeta(total, p))
}

// GET /api/a/payments/:payment_id
func (h *PaymentController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "payment_id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "payment", dto.FromModel(*p))
}

// PATCH /api/a/payments/:payment_id/confirm
func (h *PaymentController) Confirm(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "payment_id")
	if err != nil {
		return err
	}
	p, err := h.Svc.Confirm(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "payment confirmed", dto.FromModel(*p))
}

// PATCH /api/a/payments/:payment_id/cancel
func (h *PaymentController) Cancel(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "payment_id")
	if err != nil {
		return err
	}
	var req dto.CancelPaymentRequest
	if len(c.Body()) > 0 {
		if err := helper.BindAndValidate(c, &req); err != nil {
			return err
		}
	}
	p, err := h.Svc.Cancel(c.UserContext(), id, req.Reason)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "payment canceled", dto.FromModel(*p))
}

// POST /api/public/payments/midtrans/notification
func (h *PaymentController) MidtransWebhook(c *fiber.Ctx) error {
	var n service.Notification
	if err := c.BodyParser(&n); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid payload: "+err.Error())
	}
	p, err := h.Svc.HandleNotification(c.UserContext(), n)
	if err != nil {
		return err
	}
	if p == nil {
		return c.JSON(fiber.Map{"status": "ignored"})
	}
	return c.JSON(fiber.Map{
		"status":         "ok",
		"payment_id":     p.PaymentID,
		"payment_status": p.PaymentStatus,
	})
}
