package dto

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internals/features/admissions/enquiries/model"
	helper "admissions_backend/internals/helpers"
)

func strp(s string) *string { return &s }

func TestCreateEnquiryRequestValidation(t *testing.T) {
	fields := helper.ValidateStruct(CreateEnquiryRequest{
		EnquirySession:     "2025-27",
		EnquiryStudentName: "   ",
		EnquiryPhone:       "12345",
	})
	assert.Contains(t, fields, "enquiry_session")
	assert.Contains(t, fields, "enquiry_student_name")
	assert.Contains(t, fields, "enquiry_phone")
	assert.Contains(t, fields, "enquiry_course_id")
}

func TestCreateEnquiryToModel(t *testing.T) {
	course := uuid.New()
	req := CreateEnquiryRequest{
		EnquirySession:     "2025-26",
		EnquiryStudentName: "  Riya Sharma ",
		EnquiryPhone:       "98765 43210",
		EnquiryEmail:       strp(" Riya@Example.com "),
		EnquiryDOB:         strp("2006-04-12"),
		EnquiryCity:        strp("   "),
		EnquiryCourseID:    course,
		EnquiryCounsellors: []string{" Anil ", ""},
	}
	m := req.ToModel()

	assert.Equal(t, "Riya Sharma", m.EnquiryStudentName)
	assert.Equal(t, "9876543210", m.EnquiryPhone)
	require.NotNil(t, m.EnquiryEmail)
	assert.Equal(t, "riya@example.com", *m.EnquiryEmail)
	assert.Nil(t, m.EnquiryCity)
	require.NotNil(t, m.EnquiryDOB)
	assert.Equal(t, time.April, m.EnquiryDOB.Month())
	assert.Equal(t, "walk_in", m.EnquirySource)
	assert.Equal(t, model.EnquiryStatusNew, m.EnquiryStatus)
	assert.EqualValues(t, 1, m.EnquiryStage)
	assert.Equal(t, []string{"Anil"}, []string(m.EnquiryCounsellors))
	assert.NotNil(t, m.EnquiryTelecallers)
	assert.Empty(t, m.EnquiryQualifications.Data())
}

func TestPublicEnquiryForcesWebsiteSource(t *testing.T) {
	req := PublicEnquiryRequest{EnquirySession: "2025-26", EnquiryStudentName: "A", EnquiryPhone: "9876543210", EnquiryCourseID: uuid.New()}
	assert.Equal(t, "website", req.AsCreate().ToModel().EnquirySource)
}

func TestUpdateEnquiryChanges(t *testing.T) {
	changes := UpdateEnquiryRequest{
		EnquiryStudentName: strp(" Riya "),
		EnquiryEmail:       strp("A@B.COM"),
		EnquiryCity:        strp(""),
	}.Changes()

	assert.Equal(t, "Riya", changes["enquiry_student_name"])
	assert.Equal(t, "a@b.com", *(changes["enquiry_email"].(*string)))
	assert.Nil(t, changes["enquiry_city"].(*string))
	assert.NotContains(t, changes, "enquiry_phone")
	assert.Empty(t, UpdateEnquiryRequest{}.Changes())
}

func TestAcademicsValidation(t *testing.T) {
	fields := helper.ValidateStruct(AcademicsRequest{
		Qualifications: []model.Qualification{{Exam: "12th", Board: "CBSE", PassingYear: 1900}},
	})
	assert.Contains(t, fields, "qualifications.0.passing_year")
}

func TestFromModelNeverReturnsNilLists(t *testing.T) {
	r := FromModel(model.EnquiryModel{EnquiryNo: "ENQ/2025-26/0001"})
	assert.NotNil(t, r.EnquiryCounsellors)
	assert.NotNil(t, r.EnquiryQualifications)
	assert.NotNil(t, r.EnquiryEntranceExams)
	assert.Nil(t, r.EnquiryDOB)
}
