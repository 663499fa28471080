package controller

import (
	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/features/crm/leads/dto"
	"admissions_backend/internals/features/crm/leads/model"
	"admissions_backend/internals/features/crm/leads/service"
	helper "admissions_backend/internals/helpers"
	helperAuth "admissions_backend/internals/helpers/auth"
)

type LeadHandler struct {
	Svc *service.LeadService
}

func NewLeadHandler(svc *service.LeadService) *LeadHandler {
	return &LeadHandler{Svc: svc}
}

// POST /api/a/enquiries/:id/follow-ups
func (h *LeadHandler) CreateFollowUp(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateFollowUpRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	f, err := h.Svc.Create(c.UserContext(), id, req, helperAuth.GetUserIDPtr(c), helperAuth.GetUserName(c))
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "follow-up logged", f)
}

// GET /api/a/enquiries/:id/follow-ups
func (h *LeadHandler) ListFollowUps(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	rows, err := h.Svc.List(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "follow-ups", rows)
}

// GET /api/a/leads/follow-ups?scope=today|overdue|upcoming
func (h *LeadHandler) Due(c *fiber.Ctx) error {
	var q dto.DueQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "next_at", "asc", helper.DefaultOpts)
	rows, total, err := h.Svc.Due(c.UserContext(), q, p)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "follow-ups", rows, helper.BuildMeta(total, p))
}

// GET /api/a/leads/dashboard
func (h *LeadHandler) Dashboard(c *fiber.Ctx) error {
	var q dto.DashboardQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return err
	}
	out, err := h.Svc.Dashboard(c.UserContext(), q)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "lead dashboard", out)
}

// GET /api/a/leads/options
func (h *LeadHandler) Options(c *fiber.Ctx) error {
	return helper.JsonOK(c, "follow-up options", fiber.Map{
		"channels": model.FollowUpChannels,
		"outcomes": model.FollowUpOutcomes,
	})
}
