package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
)

var f = model.Float

func TestDiscountPercent(t *testing.T) {
	cases := []struct {
		name            string
		original, final *float64
		want            int
	}{
		{"no discount", f(1000), f(1000), 0},
		{"half", f(1000), f(500), 50},
		{"zero original", f(0), f(500), 0},
		{"missing final", f(1000), nil, 100},
		{"missing original", nil, f(500), 0},
		{"final above original", f(1000), f(1500), 0},
		{"rounding", f(3000), f(2000), 33},
		{"negative final", f(1000), f(-200), 100},
		{"nan", f(math.NaN()), f(10), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DiscountPercent(tc.original, tc.final)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func prospectus(final, deposit *float64) model.FeeForm {
	return model.FeeForm{OtherFees: []model.FeeLineItem{
		{Type: model.FeeTypeProspectus, FinalFee: final, FeesDepositedTOA: deposit},
	}}
}

func TestValidateCustomFeeLogic(t *testing.T) {
	originals := []model.OriginalOtherFee{
		{Type: "Prospectus Fee", Amount: f(1000)},
		{Type: "TRANSPORT", Amount: f(5000)},
		{Type: "SEM1FEE", Amount: f(40000)},
	}

	t.Run("final above original", func(t *testing.T) {
		issues := ValidateCustomFeeLogic(prospectus(f(1200), nil), originals, nil)
		require.Len(t, issues, 1)
		assert.Equal(t, FeeIssue{Path: "otherFees.0.finalFee", Code: CodeFinalFeeExceedsOriginal}, issues[0])
		assert.False(t, issues.OK())
	})

	t.Run("deposit above final", func(t *testing.T) {
		issues := ValidateCustomFeeLogic(prospectus(f(800), f(900)), originals, nil)
		require.Len(t, issues, 1)
		assert.Equal(t, "otherFees.0.feesDepositedTOA", issues[0].Path)
		assert.Equal(t, CodeDepositExceedsFinalFee, issues[0].Code)
	})

	t.Run("deposit equal to final", func(t *testing.T) {
		assert.True(t, ValidateCustomFeeLogic(prospectus(f(800), f(800)), originals, nil).OK())
	})

	t.Run("deposit without final", func(t *testing.T) {
		issues := ValidateCustomFeeLogic(prospectus(nil, f(100)), originals, nil)
		require.Len(t, issues, 1)
		assert.Equal(t, CodeDepositWithoutFinalFee, issues[0].Code)
	})

	t.Run("zero deposit without final is fine", func(t *testing.T) {
		assert.True(t, ValidateCustomFeeLogic(prospectus(nil, f(0)), originals, nil).OK())
	})

	t.Run("matched by enum key", func(t *testing.T) {
		byKey := []model.OriginalOtherFee{{Type: "PROSPECTUS", Amount: f(1000)}}
		assert.False(t, ValidateCustomFeeLogic(prospectus(f(1001), nil), byKey, nil).OK())
	})

	t.Run("transport exempt", func(t *testing.T) {
		form := model.FeeForm{OtherFees: []model.FeeLineItem{{Type: model.FeeTypeTransport, FinalFee: f(9000)}}}
		assert.True(t, ValidateCustomFeeLogic(form, originals, nil).OK())
	})

	t.Run("hostel exempt even with a deposit", func(t *testing.T) {
		form := model.FeeForm{OtherFees: []model.FeeLineItem{{Type: model.FeeTypeHostel, FinalFee: f(90000), FeesDepositedTOA: f(1000)}}}
		assert.True(t, ValidateCustomFeeLogic(form, []model.OriginalOtherFee{{Type: "HOSTEL", Amount: f(1)}}, nil).OK())
	})

	t.Run("sem1 matched by raw type only", func(t *testing.T) {
		form := model.FeeForm{OtherFees: []model.FeeLineItem{{Type: model.FeeTypeSem1, FinalFee: f(45000)}}}
		assert.False(t, ValidateCustomFeeLogic(form, originals, nil).OK())

		labelOnly := []model.OriginalOtherFee{{Type: "Semester I Fee", Amount: f(40000)}}
		assert.True(t, ValidateCustomFeeLogic(form, labelOnly, nil).OK())
	})

	t.Run("no original skips the cap", func(t *testing.T) {
		form := model.FeeForm{OtherFees: []model.FeeLineItem{{Type: model.FeeTypeUniform, FinalFee: f(2500)}}}
		assert.True(t, ValidateCustomFeeLogic(form, originals, nil).OK())
	})

	t.Run("semester caps", func(t *testing.T) {
		form := model.FeeForm{SemWiseFees: []model.SemesterFee{{FinalFee: f(30000)}, {FinalFee: f(50000)}, {FinalFee: f(99999)}}}
		issues := ValidateCustomFeeLogic(form, nil, []float64{40000, 45000, math.NaN()})
		require.Len(t, issues, 1)
		assert.Equal(t, FeeIssue{Path: "semWiseFees.1.finalFee", Code: CodeSemFeeExceedsOriginal}, issues[0])
	})

	t.Run("semester data absent", func(t *testing.T) {
		form := model.FeeForm{SemWiseFees: []model.SemesterFee{{FinalFee: f(1e9)}}}
		assert.True(t, ValidateCustomFeeLogic(form, nil, nil).OK())
	})
}

func TestFeeIssuesAsError(t *testing.T) {
	assert.NoError(t, FeeIssues{}.AsError())

	err := FeeIssues{{Path: "otherFees.0.finalFee", Code: CodeFinalFeeExceedsOriginal}}.AsError()
	require.Error(t, err)
	var ve *helper.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"Final fee cannot exceed the original fee"}, ve.Fields["otherFees.0.finalFee"])
	assert.Equal(t, 422, helper.StatusOf(err))
}

func TestValidateFinalRecord(t *testing.T) {
	ok := model.FeeForm{
		OtherFees:         []model.FeeLineItem{{Type: model.FeeTypeProspectus, FinalFee: f(1000)}},
		SemWiseFees:       []model.SemesterFee{{FinalFee: f(1)}, {FinalFee: f(2)}},
		FeesClearanceDate: "01/07/2025",
		ConfirmationCheck: true,
	}
	assert.True(t, ValidateFinalRecord(ok, 2).OK())

	bad := model.FeeForm{
		OtherFees: []model.FeeLineItem{
			{Type: "LIBRARY", FinalFee: f(10)},
			{Type: model.FeeTypeUniform},
		},
		SemWiseFees:       []model.SemesterFee{{FinalFee: nil}},
		FeesClearanceDate: "not a date",
		OtpTarget:         "mother",
	}
	fields := ValidateFinalRecord(bad, 2).FieldMap()
	assert.Contains(t, fields, "otherFees.0.type")
	assert.Contains(t, fields, "otherFees.1.finalFee")
	assert.Contains(t, fields, "semWiseFees")
	assert.Contains(t, fields, "semWiseFees.0.finalFee")
	assert.Contains(t, fields, "feesClearanceDate")
	assert.Contains(t, fields, "otpTarget")
	assert.Contains(t, fields, "confirmationCheck")
}

func TestCleanDataForDraft(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, CleanDataForDraft(nil))
	})
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, CleanDataForDraft(&model.FeeForm{}))
	})
	t.Run("only a negative amount", func(t *testing.T) {
		form := &model.FeeForm{OtherFees: []model.FeeLineItem{{Type: model.FeeTypeBookBank, FinalFee: f(-5)}}}
		assert.Nil(t, CleanDataForDraft(form))
	})
	t.Run("whitespace only", func(t *testing.T) {
		form := &model.FeeForm{Counsellor: []string{" ", ""}, Remarks: "  "}
		assert.Nil(t, CleanDataForDraft(form))
	})

	t.Run("projection", func(t *testing.T) {
		remark := " waived half "
		form := &model.FeeForm{
			OtherFees: []model.FeeLineItem{
				{Type: model.FeeTypeProspectus, FinalFee: f(500), FeesDepositedTOA: f(200), Remarks: &remark},
				{Type: "", FinalFee: f(100)},
				{Type: model.FeeTypeUniform},
				{Type: model.FeeTypeExamFee, FinalFee: f(0), FeesDepositedTOA: f(math.NaN())},
			},
			SemWiseFees:       []model.SemesterFee{{FinalFee: nil}, {FinalFee: f(40000)}, {FinalFee: f(-1)}},
			FeesClearanceDate: "5/3/2025",
			Counsellor:        []string{"Asha", " "},
			Telecaller:        []string{""},
			Remarks:           " call after results ",
			ConfirmationCheck: true,
			OtpTarget:         "student",
		}
		got := CleanDataForDraft(form)
		require.NotNil(t, got)

		require.Len(t, got.OtherFees, 2)
		assert.Equal(t, model.FeeTypeProspectus, got.OtherFees[0].Type)
		assert.Equal(t, 500.0, *got.OtherFees[0].FinalFee)
		assert.Equal(t, 200.0, *got.OtherFees[0].FeesDepositedTOA)
		assert.Equal(t, "waived half", *got.OtherFees[0].Remarks)
		assert.Equal(t, model.FeeTypeExamFee, got.OtherFees[1].Type)
		assert.Nil(t, got.OtherFees[1].FeesDepositedTOA)

		require.Len(t, got.SemWiseFees, 1)
		assert.Equal(t, 2, got.SemWiseFees[0].Semester)
		assert.Equal(t, 40000.0, *got.SemWiseFees[0].FinalFee)

		assert.Equal(t, "05/03/2025", got.FeesClearanceDate)
		assert.Equal(t, []string{"Asha"}, got.Counsellor)
		assert.Empty(t, got.Telecaller)
		assert.Equal(t, "call after results", got.Remarks)
	})

	t.Run("bad date dropped", func(t *testing.T) {
		got := CleanDataForDraft(&model.FeeForm{FeesClearanceDate: "31/02/2025", Remarks: "x"})
		require.NotNil(t, got)
		assert.Empty(t, got.FeesClearanceDate)
	})
}

func TestParseClearanceDate(t *testing.T) {
	for _, in := range []string{"05/03/2025", "5/3/2025", "2025-03-05", "05-03-2025", "2025/03/05", "05 Mar 2025", "Mar 5, 2025"} {
		got, ok := ParseClearanceDate(in)
		require.True(t, ok, in)
		assert.Equal(t, "05/03/2025", got.Format(model.ClearanceDateLayout), in)
	}
	_, ok := ParseClearanceDate("")
	assert.False(t, ok)
	_, ok = ParseClearanceDate("yesterday")
	assert.False(t, ok)
}
