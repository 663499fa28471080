package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"admissions_backend/internals/features/students/dto"
	"admissions_backend/internals/features/students/model"
	"admissions_backend/internals/features/students/service"
	helper "admissions_backend/internals/helpers"
)

type StudentHandler struct {
	Svc *service.StudentService
}

func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{Svc: svc}
}

func semesterParam(c *fiber.Ctx) (int, error) {
	n, err := strconv.Atoi(c.Params("semester"))
	if err != nil || n < 1 {
		return 0, helper.NewValidationError(map[string][]string{"semester": {"semester must be a positive number"}})
	}
	return n, nil
}

// POST /api/a/enquiries/:id/admit
func (h *StudentHandler) Admit(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	st, err := h.Svc.Admit(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "student admitted", dto.FromModel(*st))
}

// GET /api/a/students
func (h *StudentHandler) List(c *fiber.Ctx) error {
	var q dto.ListStudentQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := h.Svc.List(c.UserContext(), q, p)
	if err != nil {
		return err
	}
	return helper.JsonList(c, "students", dto.FromModels(rows), helper.BuildMeta(total, p))
}

// GET /api/a/students/:id
func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.Svc.Detail(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "student", out)
}

// PATCH /api/a/students/:id
func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateStudentRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	st, err := h.Svc.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "student updated", dto.FromModel(*st))
}

// PATCH /api/a/students/:id/status
func (h *StudentHandler) ChangeStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.StudentStatusRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	st, err := h.Svc.ChangeStatus(c.UserContext(), id, model.StudentStatus(req.Status))
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "student status updated", dto.FromModel(*st))
}

// GET /api/a/students/:id/records
func (h *StudentHandler) Records(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.Svc.Get(c.UserContext(), id); err != nil {
		return err
	}
	rows, err := h.Svc.Records(c.UserContext(), id)
	if err != nil {
		return err
	}
	cgpa, credits := service.CGPA(rows)
	return helper.JsonOK(c, "academic records", fiber.Map{
		"academic_records": rows,
		"cgpa":             cgpa,
		"total_credits":    credits,
	})
}

// PUT /api/a/students/:id/records/:semester
func (h *StudentHandler) UpsertRecord(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	sem, err := semesterParam(c)
	if err != nil {
		return err
	}
	var req dto.AcademicRecordRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	rec, err := h.Svc.UpsertRecord(c.UserContext(), id, sem, req)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "academic record saved", rec)
}

// DELETE /api/a/students/:id/records/:semester
func (h *StudentHandler) DeleteRecord(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	sem, err := semesterParam(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteRecord(c.UserContext(), id, sem); err != nil {
		return err
	}
	return helper.JsonDeleted(c, "academic record deleted", fiber.Map{"semester": sem})
}
