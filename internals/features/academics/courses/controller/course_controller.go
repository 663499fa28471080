package controller

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"admissions_backend/internals/features/academics/courses/dto"
	"admissions_backend/internals/features/academics/courses/model"
	feeModel "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
)

type CourseHandler struct {
	DB *gorm.DB
}

func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{DB: db}
}

func (h *CourseHandler) findCourse(c *fiber.Ctx, id uuid.UUID) (*model.CourseModel, error) {
	var m model.CourseModel
	if err := h.DB.WithContext(c.UserContext()).Where("course_id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrNotFound, "course not found")
		}
		return nil, errors.Wrap(err, "load course")
	}
	return &m, nil
}

func duplicateCode(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(helper.ErrConflict, "course code already exists")
	}
	return err
}

// ===================== COURSES =====================

// POST /api/a/courses
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	m := req.ToModel()
	if err := h.DB.WithContext(c.UserContext()).Create(m).Error; err != nil {
		return duplicateCode(errors.Wrap(err, "create course"))
	}
	return helper.JsonCreated(c, "course created", dto.FromCourse(*m))
}

// GET /api/a/courses
func (h *CourseHandler) List(c *fiber.Ctx) error {
	var q dto.ListCourseQuery
	if err := helper.BindQuery(c, &q); err != nil {
		return err
	}
	p := helper.ParseFiber(c, "code", "asc", helper.DefaultOpts)
	order, err := p.SafeOrderClause(map[string]string{
		"code":       "course_code",
		"name":       "course_name",
		"created_at": "course_created_at",
	}, "code")
	if err != nil {
		return err
	}

	tx := h.DB.WithContext(c.UserContext()).Model(&model.CourseModel{})
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("course_code ILIKE ? OR course_name ILIKE ? OR course_department ILIKE ?", like, like, like)
	}
	if q.IsActive != nil {
		tx = tx.Where("course_is_active = ?", *q.IsActive)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return errors.Wrap(err, "count courses")
	}
	var rows []model.CourseModel
	if err := tx.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return errors.Wrap(err, "list courses")
	}

	out := make([]dto.CourseResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.FromCourse(r))
	}
	return helper.JsonList(c, "ok", out, helper.BuildMeta(total, p))
}

// GET /api/a/courses/:id
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	m, err := h.findCourse(c, id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "ok", dto.FromCourse(*m))
}

// PATCH /api/a/courses/:id
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCourseRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	m, err := h.findCourse(c, id)
	if err != nil {
		return err
	}
	changes := req.Changes()
	if len(changes) == 0 {
		return helper.JsonOK(c, "nothing to update", dto.FromCourse(*m))
	}
	if err := h.DB.WithContext(c.UserContext()).Model(m).Updates(changes).Error; err != nil {
		return duplicateCode(errors.Wrap(err, "update course"))
	}
	m, err = h.findCourse(c, id)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "course updated", dto.FromCourse(*m))
}

// DELETE /api/a/courses/:id (soft)
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var inUse int64
	if err := h.DB.WithContext(c.UserContext()).Table("enquiries").
		Where("enquiry_course_id = ? AND enquiry_deleted_at IS NULL", id).
		Count(&inUse).Error; err != nil {
		return errors.Wrap(err, "count enquiries")
	}
	if inUse > 0 {
		return errors.Wrapf(helper.ErrConflict, "course has %d enquiries; deactivate it instead", inUse)
	}
	res := h.DB.WithContext(c.UserContext()).Where("course_id = ?", id).Delete(&model.CourseModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete course")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(helper.ErrNotFound, "course not found")
	}
	return helper.JsonDeleted(c, "course deleted", fiber.Map{"course_id": id})
}

// ===================== SEMESTER FEES =====================

// PUT /api/a/courses/:id/semester-fees
func (h *CourseHandler) UpsertSemesterFees(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpsertSemesterFeesRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}
	course, err := h.findCourse(c, id)
	if err != nil {
		return err
	}

	ve := &helper.ValidationError{}
	rows := make([]model.CourseSemesterFeeModel, 0, len(req.Items))
	seen := map[int16]bool{}
	for i, it := range req.Items {
		if it.Semester > course.CourseTotalSemesters {
			ve.Add(fmt.Sprintf("items.%d.semester", i), fmt.Sprintf("course has %d semesters", course.CourseTotalSemesters))
		}
		if seen[it.Semester] {
			ve.Add(fmt.Sprintf("items.%d.semester", i), "semester listed twice")
		}
		seen[it.Semester] = true
		if it.Amount.IsNegative() {
			ve.Add(fmt.Sprintf("items.%d.amount", i), "amount cannot be negative")
		}
		rows = append(rows, model.CourseSemesterFeeModel{
			CourseSemesterFeeCourseID: id,
			CourseSemesterFeeSession:  req.Session,
			CourseSemesterFeeSemester: it.Semester,
			CourseSemesterFeeAmount:   it.Amount.Round(2),
		})
	}
	if ve.HasErrors() {
		return ve
	}

	err = h.DB.WithContext(c.UserContext()).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "course_semester_fee_course_id"},
			{Name: "course_semester_fee_session"},
			{Name: "course_semester_fee_semester"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"course_semester_fee_amount", "course_semester_fee_updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return errors.Wrap(err, "upsert semester fees")
	}
	return h.semesterFees(c, id, req.Session, "semester fees saved")
}

// GET /api/a/courses/:id/semester-fees?session=2025-26
func (h *CourseHandler) GetSemesterFees(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	session := strings.TrimSpace(c.Query("session"))
	if !helper.IsAcademicSession(session) {
		return helper.NewValidationError(map[string][]string{"session": {"session must look like 2024-25"}})
	}
	if _, err := h.findCourse(c, id); err != nil {
		return err
	}
	return h.semesterFees(c, id, session, "ok")
}

func (h *CourseHandler) semesterFees(c *fiber.Ctx, courseID uuid.UUID, session, msg string) error {
	var rows []model.CourseSemesterFeeModel
	if err := h.DB.WithContext(c.UserContext()).
		Where("course_semester_fee_course_id = ? AND course_semester_fee_session = ?", courseID, session).
		Order("course_semester_fee_semester ASC").
		Find(&rows).Error; err != nil {
		return errors.Wrap(err, "load semester fees")
	}
	items := make([]dto.SemesterFeeResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.SemesterFeeResponse{Semester: r.CourseSemesterFeeSemester, Amount: r.CourseSemesterFeeAmount})
	}
	return helper.JsonOK(c, msg, dto.ScheduleResponse[dto.SemesterFeeResponse]{CourseID: &courseID, Session: session, Items: items})
}

// ===================== OTHER FEES =====================

// PUT /api/a/courses/:id/other-fees and PUT /api/a/other-fees (all courses)
func (h *CourseHandler) UpsertOtherFees(c *fiber.Ctx) error {
	var courseID *uuid.UUID
	if c.Params("id") != "" {
		id, err := helper.ParseUUIDParam(c, "id")
		if err != nil {
			return err
		}
		if _, err := h.findCourse(c, id); err != nil {
			return err
		}
		courseID = &id
	}

	var req dto.UpsertOtherFeesRequest
	if err := helper.BindAndValidate(c, &req); err != nil {
		return err
	}

	ve := &helper.ValidationError{}
	seen := map[feeModel.FeeType]bool{}
	types := make([]feeModel.FeeType, len(req.Items))
	for i, it := range req.Items {
		ft, ok := feeModel.ParseFeeType(it.FeeType)
		if !ok || ft == feeModel.FeeTypeSem1 {
			ve.Add(fmt.Sprintf("items.%d.fee_type", i), "unknown fee type")
		}
		if seen[ft] {
			ve.Add(fmt.Sprintf("items.%d.fee_type", i), "fee type listed twice")
		}
		seen[ft] = true
		types[i] = ft
		if it.Amount.IsNegative() {
			ve.Add(fmt.Sprintf("items.%d.amount", i), "amount cannot be negative")
		}
	}
	if ve.HasErrors() {
		return ve
	}

	err := h.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		for i, it := range req.Items {
			if err := tx.Exec(`
				INSERT INTO other_fee_schedules
				  (other_fee_schedule_course_id, other_fee_schedule_session, other_fee_schedule_fee_type,
				   other_fee_schedule_amount, other_fee_schedule_is_optional)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT (COALESCE(other_fee_schedule_course_id, '00000000-0000-0000-0000-000000000000'::uuid),
				             other_fee_schedule_session, other_fee_schedule_fee_type)
				DO UPDATE SET other_fee_schedule_amount = EXCLUDED.other_fee_schedule_amount,
				              other_fee_schedule_is_optional = EXCLUDED.other_fee_schedule_is_optional,
				              other_fee_schedule_updated_at = NOW()`,
				courseID, req.Session, string(types[i]), it.Amount.Round(2), it.IsOptional).Error; err != nil {
				return errors.Wrapf(err, "upsert %s", types[i])
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return h.otherFees(c, courseID, req.Session, "other fees saved")
}

// GET /api/a/courses/:id/other-fees?session= and GET /api/a/other-fees?session=
func (h *CourseHandler) GetOtherFees(c *fiber.Ctx) error {
	var courseID *uuid.UUID
	if c.Params("id") != "" {
		id, err := helper.ParseUUIDParam(c, "id")
		if err != nil {
			return err
		}
		courseID = &id
	}
	session := strings.TrimSpace(c.Query("session"))
	if !helper.IsAcademicSession(session) {
		return helper.NewValidationError(map[string][]string{"session": {"session must look like 2024-25"}})
	}
	return h.otherFees(c, courseID, session, "ok")
}

// otherFees lists the effective schedule: course rows override session-wide rows.
func (h *CourseHandler) otherFees(c *fiber.Ctx, courseID *uuid.UUID, session, msg string) error {
	tx := h.DB.WithContext(c.UserContext()).Where("other_fee_schedule_session = ?", session)
	if courseID != nil {
		tx = tx.Where("other_fee_schedule_course_id = ? OR other_fee_schedule_course_id IS NULL", *courseID)
	} else {
		tx = tx.Where("other_fee_schedule_course_id IS NULL")
	}
	var rows []model.OtherFeeScheduleModel
	if err := tx.Order("other_fee_schedule_course_id NULLS FIRST, other_fee_schedule_fee_type ASC").Find(&rows).Error; err != nil {
		return errors.Wrap(err, "load other fees")
	}

	index := map[string]int{}
	items := make([]dto.OtherFeeResponse, 0, len(rows))
	for _, r := range rows {
		ft := feeModel.FeeType(r.OtherFeeScheduleFeeType)
		item := dto.OtherFeeResponse{
			FeeType:    r.OtherFeeScheduleFeeType,
			Label:      feeModel.DisplayLabel(ft),
			Schedule:   feeModel.ScheduleLabel(ft),
			Amount:     r.OtherFeeScheduleAmount,
			IsOptional: r.OtherFeeScheduleIsOptional,
			IsGlobal:   r.OtherFeeScheduleCourseID == nil,
		}
		if i, ok := index[item.FeeType]; ok {
			items[i] = item
			continue
		}
		index[item.FeeType] = len(items)
		items = append(items, item)
	}
	return helper.JsonOK(c, msg, dto.ScheduleResponse[dto.OtherFeeResponse]{CourseID: courseID, Session: session, Items: items})
}
