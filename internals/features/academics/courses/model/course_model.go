package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- MODEL courses -----------------------------------------------------------
type CourseModel struct {
	CourseID             uuid.UUID `json:"course_id" gorm:"column:course_id;type:uuid;default:gen_random_uuid();primaryKey"`
	CourseCode           string    `json:"course_code" gorm:"column:course_code;type:varchar(20);not null"`
	CourseName           string    `json:"course_name" gorm:"column:course_name;type:varchar(160);not null"`
	CourseDepartment     *string   `json:"course_department,omitempty" gorm:"column:course_department;type:varchar(120)"`
	CourseDurationYears  int16     `json:"course_duration_years" gorm:"column:course_duration_years;type:smallint;not null;default:3"`
	CourseTotalSemesters int16     `json:"course_total_semesters" gorm:"column:course_total_semesters;type:smallint;not null;default:6"`
	CourseIsActive       bool      `json:"course_is_active" gorm:"column:course_is_active;not null;default:true"`

	CourseCreatedAt time.Time      `json:"course_created_at" gorm:"column:course_created_at;type:timestamptz;not null;autoCreateTime"`
	CourseUpdatedAt time.Time      `json:"course_updated_at" gorm:"column:course_updated_at;type:timestamptz;not null;autoUpdateTime"`
	CourseDeletedAt gorm.DeletedAt `json:"course_deleted_at,omitempty" gorm:"column:course_deleted_at;type:timestamptz;index"`
}

func (CourseModel) TableName() string { return "courses" }

// --- MODEL course_semester_fees ----------------------------------------------
type CourseSemesterFeeModel struct {
	CourseSemesterFeeID       uuid.UUID       `json:"course_semester_fee_id" gorm:"column:course_semester_fee_id;type:uuid;default:gen_random_uuid();primaryKey"`
	CourseSemesterFeeCourseID uuid.UUID       `json:"course_semester_fee_course_id" gorm:"column:course_semester_fee_course_id;type:uuid;not null"`
	CourseSemesterFeeSession  string          `json:"course_semester_fee_session" gorm:"column:course_semester_fee_session;type:varchar(9);not null"`
	CourseSemesterFeeSemester int16           `json:"course_semester_fee_semester" gorm:"column:course_semester_fee_semester;type:smallint;not null"`
	CourseSemesterFeeAmount   decimal.Decimal `json:"course_semester_fee_amount" gorm:"column:course_semester_fee_amount;type:numeric(12,2);not null"`

	CourseSemesterFeeCreatedAt time.Time `json:"course_semester_fee_created_at" gorm:"column:course_semester_fee_created_at;type:timestamptz;not null;autoCreateTime"`
	CourseSemesterFeeUpdatedAt time.Time `json:"course_semester_fee_updated_at" gorm:"column:course_semester_fee_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (CourseSemesterFeeModel) TableName() string { return "course_semester_fees" }

// --- MODEL other_fee_schedules -----------------------------------------------
// A row with a nil course applies to every course of the session.
type OtherFeeScheduleModel struct {
	OtherFeeScheduleID         uuid.UUID       `json:"other_fee_schedule_id" gorm:"column:other_fee_schedule_id;type:uuid;default:gen_random_uuid();primaryKey"`
	OtherFeeScheduleCourseID   *uuid.UUID      `json:"other_fee_schedule_course_id,omitempty" gorm:"column:other_fee_schedule_course_id;type:uuid"`
	OtherFeeScheduleSession    string          `json:"other_fee_schedule_session" gorm:"column:other_fee_schedule_session;type:varchar(9);not null"`
	OtherFeeScheduleFeeType    string          `json:"other_fee_schedule_fee_type" gorm:"column:other_fee_schedule_fee_type;type:varchar(30);not null"`
	OtherFeeScheduleAmount     decimal.Decimal `json:"other_fee_schedule_amount" gorm:"column:other_fee_schedule_amount;type:numeric(12,2);not null"`
	OtherFeeScheduleIsOptional bool            `json:"other_fee_schedule_is_optional" gorm:"column:other_fee_schedule_is_optional;not null;default:false"`

	OtherFeeScheduleCreatedAt time.Time `json:"other_fee_schedule_created_at" gorm:"column:other_fee_schedule_created_at;type:timestamptz;not null;autoCreateTime"`
	OtherFeeScheduleUpdatedAt time.Time `json:"other_fee_schedule_updated_at" gorm:"column:other_fee_schedule_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (OtherFeeScheduleModel) TableName() string { return "other_fee_schedules" }
