package controller

import (
	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/features/admissions/enquiries/dto"
	"admissions_backend/internals/features/admissions/enquiries/model"
	"admissions_backend/internals/features/admissions/enquiries/service"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

type EnquiryHandler struct {
	Svc *service.EnquiryService
}

func NewEnquiryHandler(svc *service.EnquiryService) *EnquiryHandler {
	return &EnquiryHandler{Svc: svc}
}

// POST /api/a/enquiries
func (h *EnquiryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateEnquiryRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.Svc.Create(c.UserContext(), req, helperAuth.GetUserIDPtr(c))
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "enquiry created", dto.FromModel(*m))
}

// POST /api/public/enquiries
func (h *EnquiryHandler) CreatePublic(c *fiber.Ctx) error {
	var req dto.PublicEnquiryRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.Svc.Create(c.UserContext(), req.AsCreate(), nil)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "thank you, our team will contact you", fiber.Map{
		"enquiry_no": m.EnquiryNo,
	})
}

// GET /api/a/enquiries
func (h *EnquiryHandler) List(c *fiber.Ctx) error {
	var q dto.ListEnquiryQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := h.Svc.List(c.UserContext(), q, p)
	if err != nil {
		return err
	}
	out := make([]dto.EnquiryResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromModel(r))
	}
	return helper.JsonList(c, "enquiries", out, helper.BuildMeta(total, p))
}

// GET /api/a/enquiries/:id
func (h *EnquiryHandler) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	m, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "enquiry", dto.FromModel(*m))
}

// PATCH /api/a/enquiries/:id
func (h *EnquiryHandler) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateEnquiryRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.Svc.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "enquiry updated", dto.FromModel(*m))
}

// PUT /api/a/enquiries/:id/academics
func (h *EnquiryHandler) SaveAcademics(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AcademicsRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.Svc.SaveAcademics(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "academic details saved", dto.FromModel(*m))
}

// PATCH /api/a/enquiries/:id/assign
func (h *EnquiryHandler) Assign(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.Svc.Assign(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "assignment updated", dto.FromModel(*m))
}

// PATCH /api/a/enquiries/:id/status
func (h *EnquiryHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.StatusRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.Svc.ChangeStatus(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "status changed", dto.FromModel(*m))
}

// GET /api/a/enquiry-statuses
func (h *EnquiryHandler) Statuses(c *fiber.Ctx) error {
	return helper.JsonOK(c, "enquiry statuses", fiber.Map{
		"statuses": model.AllEnquiryStatuses,
		"sources":  model.EnquirySources,
	})
}

// DELETE /api/a/enquiries/:id
func (h *EnquiryHandler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return helper.JsonDeleted(c, "enquiry deleted", fiber.Map{"enquiry_id": id})
}
