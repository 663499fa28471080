package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"admissions_backend/internals/features/academics/courses/model"
)

/* =========================================================
   COURSE
========================================================= */

type CreateCourseRequest struct {
	CourseCode           string  `json:"course_code" validate:"required,notblank,max=20"`
	CourseName           string  `json:"course_name" validate:"required,notblank,max=160"`
	CourseDepartment     *string `json:"course_department" validate:"omitempty,max=120"`
	CourseDurationYears  int16   `json:"course_duration_years" validate:"required,min=1,max=6"`
	CourseTotalSemesters int16   `json:"course_total_semesters" validate:"required,min=1,max=12"`
	CourseIsActive       *bool   `json:"course_is_active"`
}

func (r CreateCourseRequest) ToModel() *model.CourseModel {
	m := &model.CourseModel{
		CourseCode:           strings.ToUpper(strings.TrimSpace(r.CourseCode)),
		CourseName:           strings.TrimSpace(r.CourseName),
		CourseDepartment:     r.CourseDepartment,
		CourseDurationYears:  r.CourseDurationYears,
		CourseTotalSemesters: r.CourseTotalSemesters,
		CourseIsActive:       true,
	}
	if r.CourseIsActive != nil {
		m.CourseIsActive = *r.CourseIsActive
	}
	return m
}

type UpdateCourseRequest struct {
	CourseCode           *string `json:"course_code" validate:"omitempty,notblank,max=20"`
	CourseName           *string `json:"course_name" validate:"omitempty,notblank,max=160"`
	CourseDepartment     *string `json:"course_department" validate:"omitempty,max=120"`
	CourseDurationYears  *int16  `json:"course_duration_years" validate:"omitempty,min=1,max=6"`
	CourseTotalSemesters *int16  `json:"course_total_semesters" validate:"omitempty,min=1,max=12"`
	CourseIsActive       *bool   `json:"course_is_active"`
}

// Changes returns the column map for a partial update.
func (r UpdateCourseRequest) Changes() map[string]any {
	m := map[string]any{}
	if r.CourseCode != nil {
		m["course_code"] = strings.ToUpper(strings.TrimSpace(*r.CourseCode))
	}
	if r.CourseName != nil {
		m["course_name"] = strings.TrimSpace(*r.CourseName)
	}
	if r.CourseDepartment != nil {
		m["course_department"] = strings.TrimSpace(*r.CourseDepartment)
	}
	if r.CourseDurationYears != nil {
		m["course_duration_years"] = *r.CourseDurationYears
	}
	if r.CourseTotalSemesters != nil {
		m["course_total_semesters"] = *r.CourseTotalSemesters
	}
	if r.CourseIsActive != nil {
		m["course_is_active"] = *r.CourseIsActive
	}
	return m
}

type ListCourseQuery struct {
	Q        string `query:"q" validate:"omitempty,max=80"`
	IsActive *bool  `query:"is_active"`
}

type CourseResponse struct {
	CourseID             uuid.UUID `json:"course_id"`
	CourseCode           string    `json:"course_code"`
	CourseName           string    `json:"course_name"`
	CourseDepartment     *string   `json:"course_department,omitempty"`
	CourseDurationYears  int16     `json:"course_duration_years"`
	CourseTotalSemesters int16     `json:"course_total_semesters"`
	CourseIsActive       bool      `json:"course_is_active"`
	CourseCreatedAt      time.Time `json:"course_created_at"`
	CourseUpdatedAt      time.Time `json:"course_updated_at"`
}

func FromCourse(m model.CourseModel) CourseResponse {
	return CourseResponse{
		CourseID:             m.CourseID,
		CourseCode:           m.CourseCode,
		CourseName:           m.CourseName,
		CourseDepartment:     m.CourseDepartment,
		CourseDurationYears:  m.CourseDurationYears,
		CourseTotalSemesters: m.CourseTotalSemesters,
		CourseIsActive:       m.CourseIsActive,
		CourseCreatedAt:      m.CourseCreatedAt,
		CourseUpdatedAt:      m.CourseUpdatedAt,
	}
}

/* =========================================================
   FEE SCHEDULES
========================================================= */

type SemesterFeeItem struct {
	Semester int16           `json:"semester" validate:"required,min=1,max=12"`
	Amount   decimal.Decimal `json:"amount"`
}

type UpsertSemesterFeesRequest struct {
	Session string            `json:"session" validate:"required,session"`
	Items   []SemesterFeeItem `json:"items" validate:"required,min=1,dive"`
}

type OtherFeeItem struct {
	FeeType    string          `json:"fee_type" validate:"required,notblank,max=30"`
	Amount     decimal.Decimal `json:"amount"`
	IsOptional bool            `json:"is_optional"`
}

type UpsertOtherFeesRequest struct {
	Session string         `json:"session" validate:"required,session"`
	Items   []OtherFeeItem `json:"items" validate:"required,min=1,dive"`
}

type SemesterFeeResponse struct {
	Semester int16           `json:"semester"`
	Amount   decimal.Decimal `json:"amount"`
}

type OtherFeeResponse struct {
	FeeType    string          `json:"fee_type"`
	Label      string          `json:"label"`
	Schedule   string          `json:"schedule"`
	Amount     decimal.Decimal `json:"amount"`
	IsOptional bool            `json:"is_optional"`
	IsGlobal   bool            `json:"is_global"`
}

type ScheduleResponse[T any] struct {
	CourseID *uuid.UUID `json:"course_id,omitempty"`
	Session  string     `json:"session"`
	Items    []T        `json:"items"`
}
