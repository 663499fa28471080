package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"admissions_backend/internals/features/students/model"
)

type ListStudentQuery struct {
	Status   string `query:"status" validate:"omitempty,oneof=active alumni dropped"`
	CourseID string `query:"course_id" validate:"omitempty,uuid"`
	Session  string `query:"session" validate:"omitempty,session"`
	Semester int    `query:"semester" validate:"omitempty,min=1,max=12"`
	Q        string `query:"q" validate:"omitempty,max=80"`
}

type UpdateStudentRequest struct {
	StudentPhone           *string `json:"student_phone" validate:"omitempty,mobile"`
	StudentEmail           *string `json:"student_email" validate:"omitempty,email,max=160"`
	StudentFatherName      *string `json:"student_father_name" validate:"omitempty,max=160"`
	StudentCurrentSemester *int16  `json:"student_current_semester" validate:"omitempty,min=1,max=12"`
}

// Changes lists the columns to write; empty strings clear optional text.
func (r UpdateStudentRequest) Changes() map[string]any {
	out := map[string]any{}
	setText := func(col string, v *string, lower bool) {
		if v == nil {
			return
		}
		t := strings.TrimSpace(*v)
		if lower {
			t = strings.ToLower(t)
		}
		if t == "" {
			out[col] = nil
			return
		}
		out[col] = t
	}
	setText("student_phone", r.StudentPhone, false)
	setText("student_email", r.StudentEmail, true)
	setText("student_father_name", r.StudentFatherName, false)
	if r.StudentCurrentSemester != nil {
		out["student_current_semester"] = *r.StudentCurrentSemester
	}
	return out
}

type StudentStatusRequest struct {
	Status string `json:"student_status" validate:"required,oneof=active alumni dropped"`
}

type AcademicRecordRequest struct {
	SGPA    decimal.Decimal `json:"academic_record_sgpa"`
	Credits int16           `json:"academic_record_credits" validate:"required,min=1,max=60"`
	Result  string          `json:"academic_record_result" validate:"required,oneof=pass fail atkt"`
	Remarks *string         `json:"academic_record_remarks" validate:"omitempty,max=1000"`
}

type StudentResponse struct {
	StudentID              uuid.UUID           `json:"student_id"`
	StudentEnquiryID       uuid.UUID           `json:"student_enquiry_id"`
	StudentEnrollmentNo    string              `json:"student_enrollment_no"`
	StudentName            string              `json:"student_name"`
	StudentGender          *string             `json:"student_gender,omitempty"`
	StudentDOB             *string             `json:"student_dob,omitempty"`
	StudentPhone           *string             `json:"student_phone,omitempty"`
	StudentEmail           *string             `json:"student_email,omitempty"`
	StudentFatherName      *string             `json:"student_father_name,omitempty"`
	StudentCourseID        uuid.UUID           `json:"student_course_id"`
	StudentSession         string              `json:"student_session"`
	StudentAdmissionYear   int16               `json:"student_admission_year"`
	StudentCurrentSemester int16               `json:"student_current_semester"`
	StudentStatus          model.StudentStatus `json:"student_status"`
	StudentPhotoURL        *string             `json:"student_photo_url,omitempty"`
	StudentCreatedAt       time.Time           `json:"student_created_at"`
	StudentUpdatedAt       time.Time           `json:"student_updated_at"`
}

func FromModel(m model.StudentModel) StudentResponse {
	r := StudentResponse{
		StudentID:              m.StudentID,
		StudentEnquiryID:       m.StudentEnquiryID,
		StudentEnrollmentNo:    m.StudentEnrollmentNo,
		StudentName:            m.StudentName,
		StudentGender:          m.StudentGender,
		StudentPhone:           m.StudentPhone,
		StudentEmail:           m.StudentEmail,
		StudentFatherName:      m.StudentFatherName,
		StudentCourseID:        m.StudentCourseID,
		StudentSession:         m.StudentSession,
		StudentAdmissionYear:   m.StudentAdmissionYear,
		StudentCurrentSemester: m.StudentCurrentSemester,
		StudentStatus:          m.StudentStatus,
		StudentPhotoURL:        m.StudentPhotoURL,
		StudentCreatedAt:       m.StudentCreatedAt,
		StudentUpdatedAt:       m.StudentUpdatedAt,
	}
	if m.StudentDOB != nil {
		s := m.StudentDOB.Format("2006-01-02")
		r.StudentDOB = &s
	}
	return r
}

func FromModels(rows []model.StudentModel) []StudentResponse {
	out := make([]StudentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

type StudentDetailResponse struct {
	StudentResponse
	AcademicRecords []model.AcademicRecordModel `json:"academic_records"`
	CGPA            decimal.Decimal             `json:"cgpa"`
	TotalCredits    int                         `json:"total_credits"`
}
