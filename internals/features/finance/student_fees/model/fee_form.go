package model

import "math"

// FeeLineItem is one billable "other fee" category on the fee form.
type FeeLineItem struct {
	Type             FeeType  `json:"type"`
	FinalFee         *float64 `json:"finalFee,omitempty"`
	FeesDepositedTOA *float64 `json:"feesDepositedTOA,omitempty"`
	Remarks          *string  `json:"remarks,omitempty"`
}

// SemesterFee is positional: index 0 is semester 1. Drafts drop empty
// semesters, so their entries carry the semester number instead.
type SemesterFee struct {
	Semester int      `json:"semester,omitempty"`
	FinalFee *float64 `json:"finalFee,omitempty"`
}

// FeeForm is the editable fee state posted by the admissions desk.
type FeeForm struct {
	OtherFees         []FeeLineItem `json:"otherFees"`
	SemWiseFees       []SemesterFee `json:"semWiseFees"`
	FeesClearanceDate string        `json:"feesClearanceDate,omitempty"`
	Counsellor        []string      `json:"counsellor"`
	Telecaller        []string      `json:"telecaller"`
	Remarks           string        `json:"remarks,omitempty"`
	ConfirmationCheck bool          `json:"confirmationCheck"`
	OtpTarget         string        `json:"otpTarget,omitempty"`
}

// FeeDraftData is the trimmed payload persisted for a draft.
type FeeDraftData struct {
	OtherFees         []FeeLineItem `json:"otherFees,omitempty"`
	SemWiseFees       []SemesterFee `json:"semWiseFees,omitempty"`
	FeesClearanceDate string        `json:"feesClearanceDate,omitempty"`
	Counsellor        []string      `json:"counsellor,omitempty"`
	Telecaller        []string      `json:"telecaller,omitempty"`
	Remarks           string        `json:"remarks,omitempty"`
}

func (d FeeDraftData) IsEmpty() bool {
	return len(d.OtherFees) == 0 &&
		len(d.SemWiseFees) == 0 &&
		d.FeesClearanceDate == "" &&
		len(d.Counsellor) == 0 &&
		len(d.Telecaller) == 0 &&
		d.Remarks == ""
}

// AsForm lets a stored draft seed the editable form.
func (d FeeDraftData) AsForm() FeeForm {
	return FeeForm{
		OtherFees:         d.OtherFees,
		SemWiseFees:       d.SemWiseFees,
		FeesClearanceDate: d.FeesClearanceDate,
		Counsellor:        d.Counsellor,
		Telecaller:        d.Telecaller,
		Remarks:           d.Remarks,
	}
}

// OriginalOtherFee is one row of the other-fee schedule. Type holds either
// the enum key or the display label, depending on who wrote the schedule.
type OriginalOtherFee struct {
	Type     string   `json:"type"`
	Amount   *float64 `json:"amount"`
	Optional bool     `json:"optional,omitempty"`
}

// IsNumber reports a present, finite amount.
func IsNumber(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func Float(v float64) *float64 { return &v }
