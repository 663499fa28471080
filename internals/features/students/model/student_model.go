package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- ENUM student_status -----------------------------------------------------
type StudentStatus string

const (
	StudentStatusActive  StudentStatus = "active"
	StudentStatusAlumni  StudentStatus = "alumni"
	StudentStatusDropped StudentStatus = "dropped"
)

// CanMoveTo: alumni is final; dropped students may be re-activated.
func (s StudentStatus) CanMoveTo(to StudentStatus) bool {
	if s == to || s == StudentStatusAlumni {
		return false
	}
	switch to {
	case StudentStatusActive, StudentStatusAlumni, StudentStatusDropped:
		return !(s == StudentStatusDropped && to == StudentStatusAlumni)
	}
	return false
}

// --- MODEL students ----------------------------------------------------------
type StudentModel struct {
	StudentID              uuid.UUID     `json:"student_id" gorm:"column:student_id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudentEnquiryID       uuid.UUID     `json:"student_enquiry_id" gorm:"column:student_enquiry_id;type:uuid;not null;uniqueIndex"`
	StudentEnrollmentNo    string        `json:"student_enrollment_no" gorm:"column:student_enrollment_no;type:varchar(40);not null;uniqueIndex"`
	StudentName            string        `json:"student_name" gorm:"column:student_name;type:varchar(160);not null"`
	StudentGender          *string       `json:"student_gender,omitempty" gorm:"column:student_gender;type:varchar(10)"`
	StudentDOB             *time.Time    `json:"student_dob,omitempty" gorm:"column:student_dob;type:date"`
	StudentPhone           *string       `json:"student_phone,omitempty" gorm:"column:student_phone;type:varchar(20)"`
	StudentEmail           *string       `json:"student_email,omitempty" gorm:"column:student_email;type:varchar(160)"`
	StudentFatherName      *string       `json:"student_father_name,omitempty" gorm:"column:student_father_name;type:varchar(160)"`
	StudentCourseID        uuid.UUID     `json:"student_course_id" gorm:"column:student_course_id;type:uuid;not null"`
	StudentSession         string        `json:"student_session" gorm:"column:student_session;type:varchar(9);not null"`
	StudentAdmissionYear   int16         `json:"student_admission_year" gorm:"column:student_admission_year;type:smallint;not null"`
	StudentCurrentSemester int16         `json:"student_current_semester" gorm:"column:student_current_semester;type:smallint;not null;default:1"`
	StudentStatus          StudentStatus `json:"student_status" gorm:"column:student_status;type:varchar(20);not null;default:'active'"`
	StudentPhotoURL        *string       `json:"student_photo_url,omitempty" gorm:"column:student_photo_url;type:text"`

	StudentCreatedAt time.Time      `json:"student_created_at" gorm:"column:student_created_at;type:timestamptz;not null;autoCreateTime"`
	StudentUpdatedAt time.Time      `json:"student_updated_at" gorm:"column:student_updated_at;type:timestamptz;not null;autoUpdateTime"`
	StudentDeletedAt gorm.DeletedAt `json:"-" gorm:"column:student_deleted_at;type:timestamptz;index"`
}

func (StudentModel) TableName() string { return "students" }

// --- MODEL academic_records --------------------------------------------------
type AcademicResult string

const (
	AcademicResultPass AcademicResult = "pass"
	AcademicResultFail AcademicResult = "fail"
	AcademicResultATKT AcademicResult = "atkt"
)

type AcademicRecordModel struct {
	AcademicRecordID        uuid.UUID       `json:"academic_record_id" gorm:"column:academic_record_id;type:uuid;default:gen_random_uuid();primaryKey"`
	AcademicRecordStudentID uuid.UUID       `json:"academic_record_student_id" gorm:"column:academic_record_student_id;type:uuid;not null"`
	AcademicRecordSemester  int16           `json:"academic_record_semester" gorm:"column:academic_record_semester;type:smallint;not null"`
	AcademicRecordSGPA      decimal.Decimal `json:"academic_record_sgpa" gorm:"column:academic_record_sgpa;type:numeric(4,2);not null"`
	AcademicRecordCredits   int16           `json:"academic_record_credits" gorm:"column:academic_record_credits;type:smallint;not null"`
	AcademicRecordResult    AcademicResult  `json:"academic_record_result" gorm:"column:academic_record_result;type:varchar(10);not null"`
	AcademicRecordRemarks   *string         `json:"academic_record_remarks,omitempty" gorm:"column:academic_record_remarks;type:text"`

	AcademicRecordCreatedAt time.Time `json:"academic_record_created_at" gorm:"column:academic_record_created_at;type:timestamptz;not null;autoCreateTime"`
	AcademicRecordUpdatedAt time.Time `json:"academic_record_updated_at" gorm:"column:academic_record_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (AcademicRecordModel) TableName() string { return "academic_records" }
