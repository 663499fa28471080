package service

import (
	"fmt"
	"strings"

	model "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
)

// Issue codes
const (
	CodeFinalFeeExceedsOriginal = "final_fee_exceeds_original"
	CodeDepositWithoutFinalFee  = "deposit_without_final_fee"
	CodeDepositExceedsFinalFee  = "deposit_exceeds_final_fee"
	CodeSemFeeExceedsOriginal   = "sem_fee_exceeds_original"

	CodeFinalFeeRequired     = "final_fee_required"
	CodeSemFeeCountMismatch  = "sem_fee_count_mismatch"
	CodeConfirmationRequired = "confirmation_required"
	CodeUnknownFeeType       = "unknown_fee_type"
	CodeAmountNegative       = "amount_negative"
	CodeInvalidDate          = "invalid_date"
	CodeInvalidOTPTarget     = "invalid_otp_target"
	CodeDuplicateFeeType     = "duplicate_fee_type"
)

var issueMessages = map[string]string{
	CodeFinalFeeExceedsOriginal: "Final fee cannot exceed the original fee",
	CodeDepositWithoutFinalFee:  "Set a final fee before recording a deposit",
	CodeDepositExceedsFinalFee:  "Deposit cannot exceed the final fee",
	CodeSemFeeExceedsOriginal:   "Semester fee cannot exceed the scheduled fee",
	CodeFinalFeeRequired:        "Final fee is required",
	CodeSemFeeCountMismatch:     "One fee is required for every semester of the course",
	CodeConfirmationRequired:    "Fee details must be confirmed",
	CodeUnknownFeeType:          "Unknown fee type",
	CodeAmountNegative:          "Amount cannot be negative",
	CodeInvalidDate:             "Date must be dd/MM/yyyy",
	CodeInvalidOTPTarget:        "OTP target must be student or father",
	CodeDuplicateFeeType:        "Fee type listed more than once",
}

// FeeIssue is one rule violation, addressed by form path ("otherFees.0.finalFee").
type FeeIssue struct {
	Path string `json:"path"`
	Code string `json:"code"`
}

func (i FeeIssue) Message() string {
	if m, ok := issueMessages[i.Code]; ok {
		return m
	}
	return i.Code
}

type FeeIssues []FeeIssue

func (is FeeIssues) OK() bool { return len(is) == 0 }

func (is FeeIssues) FieldMap() map[string][]string {
	if len(is) == 0 {
		return nil
	}
	out := make(map[string][]string, len(is))
	for _, i := range is {
		out[i.Path] = append(out[i.Path], i.Message())
	}
	return out
}

// AsError is nil when there are no issues.
func (is FeeIssues) AsError() error {
	if is.OK() {
		return nil
	}
	return helper.NewValidationError(is.FieldMap())
}

func (is *FeeIssues) add(path, code string) {
	*is = append(*is, FeeIssue{Path: path, Code: code})
}

// findOriginal resolves the scheduled amount for a line item. SEM1FEE matches
// the raw type only; other types match the display label or the enum key.
func findOriginal(t model.FeeType, originals []model.OriginalOtherFee) *float64 {
	label := model.DisplayLabel(t)
	for _, o := range originals {
		typ := strings.TrimSpace(o.Type)
		if t == model.FeeTypeSem1 {
			if typ == string(t) {
				return o.Amount
			}
			continue
		}
		if label != model.UnknownLabel && typ == label {
			return o.Amount
		}
		if strings.EqualFold(typ, string(t)) {
			return o.Amount
		}
	}
	return nil
}

// ValidateCustomFeeLogic checks the form against the schedules. It never
// fails on missing data: a rule is skipped when either side is not a number.
// semFeesData nil skips the semester checks.
func ValidateCustomFeeLogic(values model.FeeForm, otherFeesData []model.OriginalOtherFee, semFeesData []float64) FeeIssues {
	var issues FeeIssues

	for i, item := range values.OtherFees {
		final := item.FinalFee
		deposit := item.FeesDepositedTOA

		if !item.Type.ExemptFromOriginalCap() {
			orig := findOriginal(item.Type, otherFeesData)
			if model.IsNumber(final) && model.IsNumber(orig) && *final > *orig {
				issues.add(fmt.Sprintf("otherFees.%d.finalFee", i), CodeFinalFeeExceedsOriginal)
			}
		}

		if model.IsNumber(deposit) && *deposit > 0 {
			switch {
			case !model.IsNumber(final):
				issues.add(fmt.Sprintf("otherFees.%d.feesDepositedTOA", i), CodeDepositWithoutFinalFee)
			case *deposit > *final:
				issues.add(fmt.Sprintf("otherFees.%d.feesDepositedTOA", i), CodeDepositExceedsFinalFee)
			}
		}
	}

	if semFeesData != nil {
		for i, sem := range values.SemWiseFees {
			if i >= len(semFeesData) {
				break
			}
			orig := semFeesData[i]
			if model.IsNumber(sem.FinalFee) && model.IsNumber(&orig) && *sem.FinalFee > orig {
				issues.add(fmt.Sprintf("semWiseFees.%d.finalFee", i), CodeSemFeeExceedsOriginal)
			}
		}
	}

	return issues
}

// ValidateFinalRecord holds the extra rules a submitted record must meet:
// every line priced, one entry per semester, confirmation ticked.
func ValidateFinalRecord(form model.FeeForm, semesterCount int) FeeIssues {
	var issues FeeIssues
	seen := map[model.FeeType]bool{}

	for i, item := range form.OtherFees {
		if !item.Type.Valid() {
			issues.add(fmt.Sprintf("otherFees.%d.type", i), CodeUnknownFeeType)
		} else if seen[item.Type] {
			issues.add(fmt.Sprintf("otherFees.%d.type", i), CodeDuplicateFeeType)
		}
		seen[item.Type] = true

		switch {
		case !model.IsNumber(item.FinalFee):
			issues.add(fmt.Sprintf("otherFees.%d.finalFee", i), CodeFinalFeeRequired)
		case *item.FinalFee < 0:
			issues.add(fmt.Sprintf("otherFees.%d.finalFee", i), CodeAmountNegative)
		}
		if item.FeesDepositedTOA != nil && model.IsNumber(item.FeesDepositedTOA) && *item.FeesDepositedTOA < 0 {
			issues.add(fmt.Sprintf("otherFees.%d.feesDepositedTOA", i), CodeAmountNegative)
		}
	}

	if len(form.SemWiseFees) != semesterCount {
		issues.add("semWiseFees", CodeSemFeeCountMismatch)
	}
	for i, sem := range form.SemWiseFees {
		switch {
		case !model.IsNumber(sem.FinalFee):
			issues.add(fmt.Sprintf("semWiseFees.%d.finalFee", i), CodeFinalFeeRequired)
		case *sem.FinalFee < 0:
			issues.add(fmt.Sprintf("semWiseFees.%d.finalFee", i), CodeAmountNegative)
		}
	}

	if strings.TrimSpace(form.FeesClearanceDate) != "" {
		if _, ok := ParseClearanceDate(form.FeesClearanceDate); !ok {
			issues.add("feesClearanceDate", CodeInvalidDate)
		}
	}
	if form.OtpTarget != "" && !model.ValidOTPTarget(form.OtpTarget) {
		issues.add("otpTarget", CodeInvalidOTPTarget)
	}
	if !form.ConfirmationCheck {
		issues.add("confirmationCheck", CodeConfirmationRequired)
	}
	return issues
}
