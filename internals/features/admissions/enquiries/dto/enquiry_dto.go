package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"admissions_backend/internals/features/admissions/enquiries/model"
)

// ---------- Stage 1: basic info ----------

type CreateEnquiryRequest struct {
	EnquirySession     string    `json:"enquiry_session" validate:"required,session"`
	EnquiryStudentName string    `json:"enquiry_student_name" validate:"required,notblank,max=160"`
	EnquiryGender      *string   `json:"enquiry_gender" validate:"omitempty,oneof=male female other"`
	EnquiryDOB         *string   `json:"enquiry_dob" validate:"omitempty,datetime=2006-01-02"`
	EnquiryPhone       string    `json:"enquiry_phone" validate:"required,mobile"`
	EnquiryEmail       *string   `json:"enquiry_email" validate:"omitempty,email,max=160"`
	EnquiryFatherName  *string   `json:"enquiry_father_name" validate:"omitempty,max=160"`
	EnquiryFatherPhone *string   `json:"enquiry_father_phone" validate:"omitempty,mobile"`
	EnquiryFatherEmail *string   `json:"enquiry_father_email" validate:"omitempty,email,max=160"`
	EnquiryMotherName  *string   `json:"enquiry_mother_name" validate:"omitempty,max=160"`
	EnquiryAddress     *string   `json:"enquiry_address" validate:"omitempty,max=500"`
	EnquiryCity        *string   `json:"enquiry_city" validate:"omitempty,max=80"`
	EnquiryState       *string   `json:"enquiry_state" validate:"omitempty,max=80"`
	EnquiryPincode     *string   `json:"enquiry_pincode" validate:"omitempty,numeric,len=6"`
	EnquiryCourseID    uuid.UUID `json:"enquiry_course_id" validate:"required"`
	EnquirySource      string    `json:"enquiry_source" validate:"omitempty,oneof=walk_in phone website social_media referral newspaper education_fair other"`
	EnquiryRemarks     *string   `json:"enquiry_remarks" validate:"omitempty,max=2000"`
	EnquiryCounsellors []string  `json:"enquiry_counsellors" validate:"omitempty,dive,notblank,max=120"`
	EnquiryTelecallers []string  `json:"enquiry_telecallers" validate:"omitempty,dive,notblank,max=120"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func lowerPtr(s *string) *string {
	if t := trimPtr(s); t != nil {
		l := strings.ToLower(*t)
		return &l
	}
	return nil
}

func parseDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &t
}

func cleanNames(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r CreateEnquiryRequest) ToModel() *model.EnquiryModel {
	source := r.EnquirySource
	if source == "" {
		source = "walk_in"
	}
	return &model.EnquiryModel{
		EnquirySession:        r.EnquirySession,
		EnquiryStudentName:    strings.TrimSpace(r.EnquiryStudentName),
		EnquiryGender:         r.EnquiryGender,
		EnquiryDOB:            parseDate(r.EnquiryDOB),
		EnquiryPhone:          strings.ReplaceAll(r.EnquiryPhone, " ", ""),
		EnquiryEmail:          lowerPtr(r.EnquiryEmail),
		EnquiryFatherName:     trimPtr(r.EnquiryFatherName),
		EnquiryFatherPhone:    trimPtr(r.EnquiryFatherPhone),
		EnquiryFatherEmail:    lowerPtr(r.EnquiryFatherEmail),
		EnquiryMotherName:     trimPtr(r.EnquiryMotherName),
		EnquiryAddress:        trimPtr(r.EnquiryAddress),
		EnquiryCity:           trimPtr(r.EnquiryCity),
		EnquiryState:          trimPtr(r.EnquiryState),
		EnquiryPincode:        trimPtr(r.EnquiryPincode),
		EnquiryCourseID:       r.EnquiryCourseID,
		EnquirySource:         source,
		EnquiryStatus:         model.EnquiryStatusNew,
		EnquiryStage:          1,
		EnquiryCounsellors:    cleanNames(r.EnquiryCounsellors),
		EnquiryTelecallers:    cleanNames(r.EnquiryTelecallers),
		EnquiryQualifications: datatypes.NewJSONType([]model.Qualification{}),
		EnquiryEntranceExams:  datatypes.NewJSONType([]model.EntranceExam{}),
		EnquiryRemarks:        trimPtr(r.EnquiryRemarks),
	}
}

// PublicEnquiryRequest is the website form; source is forced to website.
type PublicEnquiryRequest struct {
	EnquirySession     string    `json:"enquiry_session" validate:"required,session"`
	EnquiryStudentName string    `json:"enquiry_student_name" validate:"required,notblank,max=160"`
	EnquiryPhone       string    `json:"enquiry_phone" validate:"required,mobile"`
	EnquiryEmail       *string   `json:"enquiry_email" validate:"omitempty,email,max=160"`
	EnquiryCity        *string   `json:"enquiry_city" validate:"omitempty,max=80"`
	EnquiryCourseID    uuid.UUID `json:"enquiry_course_id" validate:"required"`
	EnquiryRemarks     *string   `json:"enquiry_remarks" validate:"omitempty,max=1000"`
}

func (r PublicEnquiryRequest) AsCreate() CreateEnquiryRequest {
	return CreateEnquiryRequest{
		EnquirySession:     r.EnquirySession,
		EnquiryStudentName: r.EnquiryStudentName,
		EnquiryPhone:       r.EnquiryPhone,
		EnquiryEmail:       r.EnquiryEmail,
		EnquiryCity:        r.EnquiryCity,
		EnquiryCourseID:    r.EnquiryCourseID,
		EnquirySource:      "website",
		EnquiryRemarks:     r.EnquiryRemarks,
	}
}

type UpdateEnquiryRequest struct {
	EnquiryStudentName *string    `json:"enquiry_student_name" validate:"omitempty,notblank,max=160"`
	EnquiryGender      *string    `json:"enquiry_gender" validate:"omitempty,oneof=male female other"`
	EnquiryDOB         *string    `json:"enquiry_dob" validate:"omitempty,datetime=2006-01-02"`
	EnquiryPhone       *string    `json:"enquiry_phone" validate:"omitempty,mobile"`
	EnquiryEmail       *string    `json:"enquiry_email" validate:"omitempty,email,max=160"`
	EnquiryFatherName  *string    `json:"enquiry_father_name" validate:"omitempty,max=160"`
	EnquiryFatherPhone *string    `json:"enquiry_father_phone" validate:"omitempty,mobile"`
	EnquiryFatherEmail *string    `json:"enquiry_father_email" validate:"omitempty,email,max=160"`
	EnquiryMotherName  *string    `json:"enquiry_mother_name" validate:"omitempty,max=160"`
	EnquiryAddress     *string    `json:"enquiry_address" validate:"omitempty,max=500"`
	EnquiryCity        *string    `json:"enquiry_city" validate:"omitempty,max=80"`
	EnquiryState       *string    `json:"enquiry_state" validate:"omitempty,max=80"`
	EnquiryPincode     *string    `json:"enquiry_pincode" validate:"omitempty,numeric,len=6"`
	EnquiryCourseID    *uuid.UUID `json:"enquiry_course_id"`
	EnquirySource      *string    `json:"enquiry_source" validate:"omitempty,oneof=walk_in phone website social_media referral newspaper education_fair other"`
	EnquiryRemarks     *string    `json:"enquiry_remarks" validate:"omitempty,max=2000"`
}

// Changes maps set fields to columns. Blank optional strings clear the column.
func (r UpdateEnquiryRequest) Changes() map[string]any {
	m := map[string]any{}
	set := func(col string, v *string, lower bool) {
		if v == nil {
			return
		}
		if lower {
			m[col] = lowerPtr(v)
		} else {
			m[col] = trimPtr(v)
		}
	}
	if r.EnquiryStudentName != nil {
		m["enquiry_student_name"] = strings.TrimSpace(*r.EnquiryStudentName)
	}
	if r.EnquiryPhone != nil {
		m["enquiry_phone"] = strings.ReplaceAll(*r.EnquiryPhone, " ", "")
	}
	if r.EnquiryDOB != nil {
		m["enquiry_dob"] = parseDate(r.EnquiryDOB)
	}
	set("enquiry_gender", r.EnquiryGender, false)
	set("enquiry_email", r.EnquiryEmail, true)
	set("enquiry_father_name", r.EnquiryFatherName, false)
	set("enquiry_father_phone", r.EnquiryFatherPhone, false)
	set("enquiry_father_email", r.EnquiryFatherEmail, true)
	set("enquiry_mother_name", r.EnquiryMotherName, false)
	set("enquiry_address", r.EnquiryAddress, false)
	set("enquiry_city", r.EnquiryCity, false)
	set("enquiry_state", r.EnquiryState, false)
	set("enquiry_pincode", r.EnquiryPincode, false)
	set("enquiry_remarks", r.EnquiryRemarks, false)
	if r.EnquiryCourseID != nil {
		m["enquiry_course_id"] = *r.EnquiryCourseID
	}
	if r.EnquirySource != nil {
		m["enquiry_source"] = *r.EnquirySource
	}
	return m
}

// ---------- Stage 2: academics ----------

type AcademicsRequest struct {
	Qualifications []model.Qualification `json:"qualifications" validate:"omitempty,dive"`
	EntranceExams  []model.EntranceExam  `json:"entrance_exams" validate:"omitempty,dive"`
}

// ---------- assignment / status ----------

type AssignRequest struct {
	Counsellors *[]string `json:"counsellors" validate:"omitempty,dive,notblank,max=120"`
	Telecallers *[]string `json:"telecallers" validate:"omitempty,dive,notblank,max=120"`
}

type StatusRequest struct {
	Status string  `json:"status" validate:"required"`
	Reason *string `json:"reason" validate:"omitempty,max=1000"`
}

// ---------- list ----------

type ListEnquiryQuery struct {
	Status     string `query:"status"`
	Source     string `query:"source"`
	CourseID   string `query:"course_id" validate:"omitempty,uuid"`
	Session    string `query:"session" validate:"omitempty,session"`
	Counsellor string `query:"counsellor"`
	Telecaller string `query:"telecaller"`
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Q          string `query:"q" validate:"omitempty,max=80"`
	IsCold     *bool  `query:"is_cold"`
}

// ---------- responses ----------

type EnquiryResponse struct {
	EnquiryID              uuid.UUID             `json:"enquiry_id"`
	EnquiryNo              string                `json:"enquiry_no"`
	EnquirySession         string                `json:"enquiry_session"`
	EnquiryStudentName     string                `json:"enquiry_student_name"`
	EnquiryGender          *string               `json:"enquiry_gender,omitempty"`
	EnquiryDOB             *string               `json:"enquiry_dob,omitempty"`
	EnquiryPhone           string                `json:"enquiry_phone"`
	EnquiryEmail           *string               `json:"enquiry_email,omitempty"`
	EnquiryFatherName      *string               `json:"enquiry_father_name,omitempty"`
	EnquiryFatherPhone     *string               `json:"enquiry_father_phone,omitempty"`
	EnquiryFatherEmail     *string               `json:"enquiry_father_email,omitempty"`
	EnquiryMotherName      *string               `json:"enquiry_mother_name,omitempty"`
	EnquiryAddress         *string               `json:"enquiry_address,omitempty"`
	EnquiryCity            *string               `json:"enquiry_city,omitempty"`
	EnquiryState           *string               `json:"enquiry_state,omitempty"`
	EnquiryPincode         *string               `json:"enquiry_pincode,omitempty"`
	EnquiryCourseID        uuid.UUID             `json:"enquiry_course_id"`
	EnquirySource          string                `json:"enquiry_source"`
	EnquiryStatus          model.EnquiryStatus   `json:"enquiry_status"`
	EnquiryStage           int16                 `json:"enquiry_stage"`
	EnquiryCounsellors     []string              `json:"enquiry_counsellors"`
	EnquiryTelecallers     []string              `json:"enquiry_telecallers"`
	EnquiryQualifications  []model.Qualification `json:"enquiry_qualifications"`
	EnquiryEntranceExams   []model.EntranceExam  `json:"enquiry_entrance_exams"`
	EnquiryRemarks         *string               `json:"enquiry_remarks,omitempty"`
	EnquiryStatusReason    *string               `json:"enquiry_status_reason,omitempty"`
	EnquiryIsCold          bool                  `json:"enquiry_is_cold"`
	EnquiryLastContactedAt *time.Time            `json:"enquiry_last_contacted_at,omitempty"`
	EnquiryCreatedAt       time.Time             `json:"enquiry_created_at"`
	EnquiryUpdatedAt       time.Time             `json:"enquiry_updated_at"`
}

func FromModel(m model.EnquiryModel) EnquiryResponse {
	var dob *string
	if m.EnquiryDOB != nil {
		s := m.EnquiryDOB.Format("2006-01-02")
		dob = &s
	}
	quals := m.EnquiryQualifications.Data()
	if quals == nil {
		quals = []model.Qualification{}
	}
	exams := m.EnquiryEntranceExams.Data()
	if exams == nil {
		exams = []model.EntranceExam{}
	}
	return EnquiryResponse{
		EnquiryID:              m.EnquiryID,
		EnquiryNo:              m.EnquiryNo,
		EnquirySession:         m.EnquirySession,
		EnquiryStudentName:     m.EnquiryStudentName,
		EnquiryGender:          m.EnquiryGender,
		EnquiryDOB:             dob,
		EnquiryPhone:           m.EnquiryPhone,
		EnquiryEmail:           m.EnquiryEmail,
		EnquiryFatherName:      m.EnquiryFatherName,
		EnquiryFatherPhone:     m.EnquiryFatherPhone,
		EnquiryFatherEmail:     m.EnquiryFatherEmail,
		EnquiryMotherName:      m.EnquiryMotherName,
		EnquiryAddress:         m.EnquiryAddress,
		EnquiryCity:            m.EnquiryCity,
		EnquiryState:           m.EnquiryState,
		EnquiryPincode:         m.EnquiryPincode,
		EnquiryCourseID:        m.EnquiryCourseID,
		EnquirySource:          m.EnquirySource,
		EnquiryStatus:          m.EnquiryStatus,
		EnquiryStage:           m.EnquiryStage,
		EnquiryCounsellors:     append([]string{}, m.EnquiryCounsellors...),
		EnquiryTelecallers:     append([]string{}, m.EnquiryTelecallers...),
		EnquiryQualifications:  quals,
		EnquiryEntranceExams:   exams,
		EnquiryRemarks:         m.EnquiryRemarks,
		EnquiryStatusReason:    m.EnquiryStatusReason,
		EnquiryIsCold:          m.EnquiryIsCold,
		EnquiryLastContactedAt: m.EnquiryLastContactedAt,
		EnquiryCreatedAt:       m.EnquiryCreatedAt,
		EnquiryUpdatedAt:       m.EnquiryUpdatedAt,
	}
}
