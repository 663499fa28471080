package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// --- ENUM enquiry status -----------------------------------------------------
type EnquiryStatus string

const (
	EnquiryStatusNew               EnquiryStatus = "new"
	EnquiryStatusContacted         EnquiryStatus = "contacted"
	EnquiryStatusInProgress        EnquiryStatus = "in_progress"
	EnquiryStatusFeesFinalized     EnquiryStatus = "fees_finalized"
	EnquiryStatusDocumentsVerified EnquiryStatus = "documents_verified"
	EnquiryStatusAdmitted          EnquiryStatus = "admitted"
	EnquiryStatusDropped           EnquiryStatus = "dropped"
	EnquiryStatusRejected          EnquiryStatus = "rejected"
)

var AllEnquiryStatuses = []EnquiryStatus{
	EnquiryStatusNew, EnquiryStatusContacted, EnquiryStatusInProgress,
	EnquiryStatusFeesFinalized, EnquiryStatusDocumentsVerified, EnquiryStatusAdmitted,
	EnquiryStatusDropped, EnquiryStatusRejected,
}

// forward moves only; dropped/rejected are handled in CanTransition.
var forward = map[EnquiryStatus][]EnquiryStatus{
	EnquiryStatusNew:               {EnquiryStatusContacted, EnquiryStatusInProgress},
	EnquiryStatusContacted:         {EnquiryStatusInProgress},
	EnquiryStatusInProgress:        {EnquiryStatusFeesFinalized},
	EnquiryStatusFeesFinalized:     {EnquiryStatusDocumentsVerified},
	EnquiryStatusDocumentsVerified: {EnquiryStatusAdmitted},
}

func (s EnquiryStatus) IsTerminal() bool {
	return s == EnquiryStatusAdmitted || s == EnquiryStatusDropped || s == EnquiryStatusRejected
}

func (s EnquiryStatus) Valid() bool {
	for _, x := range AllEnquiryStatuses {
		if x == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether from -> to is allowed.
// Any non-terminal status may be dropped or rejected.
func CanTransition(from, to EnquiryStatus) bool {
	if from.IsTerminal() || from == to {
		return false
	}
	if to == EnquiryStatusDropped || to == EnquiryStatusRejected {
		return true
	}
	for _, next := range forward[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StageFor is the form stage an enquiry in status s is working on.
func StageFor(s EnquiryStatus) int16 {
	switch s {
	case EnquiryStatusFeesFinalized:
		return 4
	case EnquiryStatusDocumentsVerified, EnquiryStatusAdmitted:
		return 5
	default:
		return 1
	}
}

// --- ENUM enquiry source -----------------------------------------------------
var EnquirySources = []string{"walk_in", "phone", "website", "social_media", "referral", "newspaper", "education_fair", "other"}

// --- JSON parts --------------------------------------------------------------
type Qualification struct {
	Exam          string   `json:"exam" validate:"required,max=60"`
	Board         string   `json:"board" validate:"required,max=120"`
	Institution   string   `json:"institution,omitempty" validate:"omitempty,max=160"`
	PassingYear   int      `json:"passing_year" validate:"required,min=1980,max=2100"`
	Percentage    *float64 `json:"percentage,omitempty" validate:"omitempty,min=0,max=100"`
	Subjects      string   `json:"subjects,omitempty" validate:"omitempty,max=255"`
	RollNo        string   `json:"roll_no,omitempty" validate:"omitempty,max=40"`
	ResultAwaited bool     `json:"result_awaited"`
}

type EntranceExam struct {
	Name   string   `json:"name" validate:"required,max=60"`
	RollNo string   `json:"roll_no,omitempty" validate:"omitempty,max=40"`
	Score  *float64 `json:"score,omitempty"`
	Rank   *int     `json:"rank,omitempty" validate:"omitempty,min=1"`
	Year   int      `json:"year" validate:"required,min=1980,max=2100"`
}

// --- MODEL enquiries ---------------------------------------------------------
type EnquiryModel struct {
	EnquiryID          uuid.UUID  `json:"enquiry_id" gorm:"column:enquiry_id;type:uuid;default:gen_random_uuid();primaryKey"`
	EnquiryNo          string     `json:"enquiry_no" gorm:"column:enquiry_no;type:varchar(40);not null;uniqueIndex"`
	EnquirySession     string     `json:"enquiry_session" gorm:"column:enquiry_session;type:varchar(9);not null"`
	EnquiryStudentName string     `json:"enquiry_student_name" gorm:"column:enquiry_student_name;type:varchar(160);not null"`
	EnquiryGender      *string    `json:"enquiry_gender,omitempty" gorm:"column:enquiry_gender;type:varchar(10)"`
	EnquiryDOB         *time.Time `json:"enquiry_dob,omitempty" gorm:"column:enquiry_dob;type:date"`
	EnquiryPhone       string     `json:"enquiry_phone" gorm:"column:enquiry_phone;type:varchar(20);not null"`
	EnquiryEmail       *string    `json:"enquiry_email,omitempty" gorm:"column:enquiry_email;type:varchar(160)"`
	EnquiryFatherName  *string    `json:"enquiry_father_name,omitempty" gorm:"column:enquiry_father_name;type:varchar(160)"`
	EnquiryFatherPhone *string    `json:"enquiry_father_phone,omitempty" gorm:"column:enquiry_father_phone;type:varchar(20)"`
	EnquiryFatherEmail *string    `json:"enquiry_father_email,omitempty" gorm:"column:enquiry_father_email;type:varchar(160)"`
	EnquiryMotherName  *string    `json:"enquiry_mother_name,omitempty" gorm:"column:enquiry_mother_name;type:varchar(160)"`
	EnquiryAddress     *string    `json:"enquiry_address,omitempty" gorm:"column:enquiry_address;type:text"`
	EnquiryCity        *string    `json:"enquiry_city,omitempty" gorm:"column:enquiry_city;type:varchar(80)"`
	EnquiryState       *string    `json:"enquiry_state,omitempty" gorm:"column:enquiry_state;type:varchar(80)"`
	EnquiryPincode     *string    `json:"enquiry_pincode,omitempty" gorm:"column:enquiry_pincode;type:varchar(10)"`

	EnquiryCourseID uuid.UUID     `json:"enquiry_course_id" gorm:"column:enquiry_course_id;type:uuid;not null"`
	EnquirySource   string        `json:"enquiry_source" gorm:"column:enquiry_source;type:varchar(30);not null;default:'walk_in'"`
	EnquiryStatus   EnquiryStatus `json:"enquiry_status" gorm:"column:enquiry_status;type:varchar(30);not null;default:'new'"`
	EnquiryStage    int16         `json:"enquiry_stage" gorm:"column:enquiry_stage;type:smallint;not null;default:1"`

	EnquiryCounsellors pq.StringArray `json:"enquiry_counsellors" gorm:"column:enquiry_counsellors;type:text[];not null;default:'{}'"`
	EnquiryTelecallers pq.StringArray `json:"enquiry_telecallers" gorm:"column:enquiry_telecallers;type:text[];not null;default:'{}'"`

	EnquiryQualifications datatypes.JSONType[[]Qualification] `json:"enquiry_qualifications" gorm:"column:enquiry_qualifications;type:jsonb;not null"`
	EnquiryEntranceExams  datatypes.JSONType[[]EntranceExam]  `json:"enquiry_entrance_exams" gorm:"column:enquiry_entrance_exams;type:jsonb;not null"`

	EnquiryRemarks         *string    `json:"enquiry_remarks,omitempty" gorm:"column:enquiry_remarks;type:text"`
	EnquiryStatusReason    *string    `json:"enquiry_status_reason,omitempty" gorm:"column:enquiry_status_reason;type:text"`
	EnquiryIsCold          bool       `json:"enquiry_is_cold" gorm:"column:enquiry_is_cold;not null;default:false"`
	EnquiryLastContactedAt *time.Time `json:"enquiry_last_contacted_at,omitempty" gorm:"column:enquiry_last_contacted_at;type:timestamptz"`
	EnquiryCreatedBy       *uuid.UUID `json:"enquiry_created_by,omitempty" gorm:"column:enquiry_created_by;type:uuid"`

	EnquiryCreatedAt time.Time      `json:"enquiry_created_at" gorm:"column:enquiry_created_at;type:timestamptz;not null;autoCreateTime"`
	EnquiryUpdatedAt time.Time      `json:"enquiry_updated_at" gorm:"column:enquiry_updated_at;type:timestamptz;not null;autoUpdateTime"`
	EnquiryDeletedAt gorm.DeletedAt `json:"enquiry_deleted_at,omitempty" gorm:"column:enquiry_deleted_at;type:timestamptz;index"`
}

func (EnquiryModel) TableName() string { return "enquiries" }
