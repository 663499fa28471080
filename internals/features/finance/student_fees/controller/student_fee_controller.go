package controller

import (
	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/features/finance/student_fees/dto"
	"admissions_backend/internals/features/finance/student_fees/service"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

type StudentFeeHandler struct {
	Svc *service.FeeFormService
}

func NewStudentFeeHandler(svc *service.FeeFormService) *StudentFeeHandler {
	return &StudentFeeHandler{Svc: svc}
}

// GET /api/a/enquiries/:id/fees/form
func (h *StudentFeeHandler) GetForm(c *fiber.Ctx) error {
	enquiryID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	form, err := h.Svc.Hydrate(c.UserContext(), enquiryID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "fee form loaded", form)
}

// POST /api/a/enquiries/:id/fees/draft
func (h *StudentFeeHandler) SaveDraft(c *fiber.Ctx) error {
	enquiryID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.SaveDraftRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}

	draft, err := h.Svc.SaveDraft(c.UserContext(), enquiryID, req.DraftID, req.FeeForm, helperAuth.GetUserIDPtr(c))
	if err != nil {
		return err
	}
	if draft == nil {
		return helper.JsonOK(c, "nothing to save", nil)
	}
	return helper.JsonOK(c, "draft saved", dto.FromDraft(draft))
}

// PATCH /api/a/fee-drafts/:draft_id
func (h *StudentFeeHandler) UpdateDraft(c *fiber.Ctx) error {
	draftID, err := helper.ParseUUIDParam(c, "draft_id")
	if err != nil {
		return err
	}
	var req dto.SaveDraftRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}

	draft, err := h.Svc.UpdateDraft(c.UserContext(), draftID, req.FeeForm, helperAuth.GetUserIDPtr(c))
	if err != nil {
		return err
	}
	if draft == nil {
		return helper.JsonOK(c, "nothing to save", nil)
	}
	return helper.JsonUpdated(c, "draft updated", dto.FromDraft(draft))
}

// POST /api/a/enquiries/:id/fees
func (h *StudentFeeHandler) Submit(c *fiber.Ctx) error {
	enquiryID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.SubmitFeesRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}

	rec, err := h.Svc.Submit(c.UserContext(), enquiryID, req.FeeForm, req.OtpCode, helperAuth.GetUserIDPtr(c))
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "fees finalised", dto.FromStudentFee(rec))
}

// PATCH /api/a/student-fees/:id
func (h *StudentFeeHandler) UpdateFinal(c *fiber.Ctx) error {
	feeID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateFeesRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}

	rec, err := h.Svc.UpdateFinal(c.UserContext(), feeID, req.FeeForm)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "fees updated", dto.FromStudentFee(rec))
}

// GET /api/a/student-fees/:id
func (h *StudentFeeHandler) GetFinal(c *fiber.Ctx) error {
	feeID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rec, err := h.Svc.GetFinal(c.UserContext(), feeID)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "fee record loaded", dto.FromStudentFee(rec))
}

// POST /api/a/enquiries/:id/fees/otp
func (h *StudentFeeHandler) RequestOTP(c *fiber.Ctx) error {
	enquiryID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.RequestOTPRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}

	sent, err := h.Svc.RequestOTP(c.UserContext(), enquiryID, req.Target)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "confirmation code sent", sent)
}

// POST /api/a/fees/discount
func (h *StudentFeeHandler) Discount(c *fiber.Ctx) error {
	var req dto.DiscountRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	return helper.JsonOK(c, "ok", dto.DiscountResponse{
		Original:        req.Original,
		Final:           req.Final,
		DiscountPercent: service.DiscountPercent(req.Original, req.Final),
	})
}

// GET /api/a/fee-types
func (h *StudentFeeHandler) FeeTypes(c *fiber.Ctx) error {
	return helper.JsonOK(c, "ok", dto.FeeTypes())
}
