package service

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admissions_backend/internals/features/students/dto"
	"admissions_backend/internals/features/students/model"
	helper "admissions_backend/internals/helpers"
)

func rec(sgpa string, credits int16) model.AcademicRecordModel {
	return model.AcademicRecordModel{AcademicRecordSGPA: decimal.RequireFromString(sgpa), AcademicRecordCredits: credits}
}

func TestEnrollmentNo(t *testing.T) {
	assert.Equal(t, "BCA/2024/0007", EnrollmentNo(" bca ", 2024, 7))
	assert.Equal(t, "MBA/2025/12345", EnrollmentNo("MBA", 2025, 12345))
}

func TestAdmissionYear(t *testing.T) {
	at := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 2024, AdmissionYear("2024-25", at))
	assert.Equal(t, 2026, AdmissionYear("", at))
	assert.Equal(t, 2026, AdmissionYear("abcd-ef", at))
}

func TestCGPA(t *testing.T) {
	cgpa, credits := CGPA([]model.AcademicRecordModel{rec("8.00", 20), rec("9.00", 22), rec("7.50", 18)})
	// (160 + 198 + 135) / 60 = 8.2166..
	assert.Equal(t, 60, credits)
	assert.Equal(t, "8.22", cgpa.StringFixed(2))
}

func TestCGPAEmpty(t *testing.T) {
	cgpa, credits := CGPA(nil)
	assert.True(t, cgpa.IsZero())
	assert.Zero(t, credits)

	cgpa, credits = CGPA([]model.AcademicRecordModel{rec("9.00", 0)})
	assert.True(t, cgpa.IsZero())
	assert.Zero(t, credits)
}

func TestValidateRecord(t *testing.T) {
	ok := dto.AcademicRecordRequest{SGPA: decimal.RequireFromString("8.4"), Credits: 20, Result: "pass"}
	assert.NoError(t, ValidateRecord(1, 6, ok))
	assert.NoError(t, ValidateRecord(6, 6, ok))

	var ve *helper.ValidationError
	err := ValidateRecord(7, 6, ok)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "semester")

	bad := ok
	bad.SGPA = decimal.RequireFromString("10.5")
	err = ValidateRecord(1, 6, bad)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "academic_record_sgpa")

	bad.SGPA = decimal.RequireFromString("-1")
	assert.Error(t, ValidateRecord(1, 6, bad))
}

func TestStudentStatusMoves(t *testing.T) {
	assert.True(t, model.StudentStatusActive.CanMoveTo(model.StudentStatusAlumni))
	assert.True(t, model.StudentStatusActive.CanMoveTo(model.StudentStatusDropped))
	assert.True(t, model.StudentStatusDropped.CanMoveTo(model.StudentStatusActive))

	assert.False(t, model.StudentStatusDropped.CanMoveTo(model.StudentStatusAlumni))
	assert.False(t, model.StudentStatusAlumni.CanMoveTo(model.StudentStatusActive))
	assert.False(t, model.StudentStatusActive.CanMoveTo(model.StudentStatusActive))
	assert.False(t, model.StudentStatusActive.CanMoveTo("graduated"))
}

func TestUpdateChanges(t *testing.T) {
	empty, mail, sem := " ", " Asha@Example.COM ", int16(3)
	ch := dto.UpdateStudentRequest{StudentPhone: &empty, StudentEmail: &mail, StudentCurrentSemester: &sem}.Changes()
	assert.Nil(t, ch["student_phone"])
	assert.Contains(t, ch, "student_phone")
	assert.Equal(t, "asha@example.com", ch["student_email"])
	assert.Equal(t, int16(3), ch["student_current_semester"])
	assert.NotContains(t, ch, "student_father_name")
}
