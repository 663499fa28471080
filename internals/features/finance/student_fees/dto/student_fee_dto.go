package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	model "admissions_backend/internals/features/finance/student_fees/model"
)

/* =========================================================
   REQUESTS
========================================================= */

// SaveDraftRequest is the fee form plus an optional draft id.
// Amounts are numbers; a string amount fails body parsing (400).
type SaveDraftRequest struct {
	DraftID *uuid.UUID `json:"draftId,omitempty"`
	model.FeeForm
}

type SubmitFeesRequest struct {
	model.FeeForm
	OtpCode string `json:"otpCode,omitempty" validate:"omitempty,len=6,numeric"`
}

type UpdateFeesRequest struct {
	model.FeeForm
}

type RequestOTPRequest struct {
	Target string `json:"target" validate:"required,oneof=student father"`
}

type DiscountRequest struct {
	Original *float64 `json:"original"`
	Final    *float64 `json:"final"`
}

/* =========================================================
   RESPONSES
========================================================= */

type DiscountResponse struct {
	Original        *float64 `json:"original"`
	Final           *float64 `json:"final"`
	DiscountPercent int      `json:"discountPercent"`
}

type FeeTypeResponse struct {
	Type     model.FeeType `json:"type"`
	Label    string        `json:"label"`
	Schedule string        `json:"schedule"`
}

func FeeTypes() []FeeTypeResponse {
	out := make([]FeeTypeResponse, 0, len(model.AllFeeTypes))
	for _, t := range model.AllFeeTypes {
		out = append(out, FeeTypeResponse{Type: t, Label: model.DisplayLabel(t), Schedule: model.ScheduleLabel(t)})
	}
	return out
}

type EnquiryBrief struct {
	ID          uuid.UUID `json:"id"`
	EnquiryNo   string    `json:"enquiryNo"`
	StudentName string    `json:"studentName"`
	Session     string    `json:"session"`
	Status      string    `json:"status"`
}

type CourseBrief struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	TotalSemesters int       `json:"totalSemesters"`
}

// OtherFeeLine is a line item annotated for display.
type OtherFeeLine struct {
	Type             model.FeeType `json:"type"`
	Label            string        `json:"label"`
	Schedule         string        `json:"schedule"`
	Optional         bool          `json:"optional"`
	OriginalFee      *float64      `json:"originalFee"`
	FinalFee         *float64      `json:"finalFee"`
	FeesDepositedTOA *float64      `json:"feesDepositedTOA"`
	Remarks          *string       `json:"remarks,omitempty"`
	DiscountPercent  int           `json:"discountPercent"`
}

type SemesterLine struct {
	Semester        int      `json:"semester"`
	OriginalFee     *float64 `json:"originalFee"`
	FinalFee        *float64 `json:"finalFee"`
	DiscountPercent int      `json:"discountPercent"`
}

type FeeTotals struct {
	Original  decimal.Decimal `json:"original"`
	Final     decimal.Decimal `json:"final"`
	Deposited decimal.Decimal `json:"deposited"`
	Discount  decimal.Decimal `json:"discount"`
}

// Form sources
const (
	SourceFinal    = "final"
	SourceDraft    = "draft"
	SourceSchedule = "schedule"
)

type FeeFormResponse struct {
	Enquiry      EnquiryBrief `json:"enquiry"`
	Course       CourseBrief  `json:"course"`
	Source       string       `json:"source"`
	DraftID      *uuid.UUID   `json:"draftId,omitempty"`
	StudentFeeID *uuid.UUID   `json:"studentFeeId,omitempty"`

	OtherFees         []OtherFeeLine `json:"otherFees"`
	SemWiseFees       []SemesterLine `json:"semWiseFees"`
	FeesClearanceDate string         `json:"feesClearanceDate,omitempty"`
	Counsellor        []string       `json:"counsellor"`
	Telecaller        []string       `json:"telecaller"`
	Remarks           string         `json:"remarks,omitempty"`
	ConfirmationCheck bool           `json:"confirmationCheck"`
	OtpTarget         string         `json:"otpTarget,omitempty"`

	Totals FeeTotals `json:"totals"`
}

type DraftResponse struct {
	DraftID   uuid.UUID          `json:"draftId"`
	EnquiryID uuid.UUID          `json:"enquiryId"`
	Data      model.FeeDraftData `json:"data"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func FromDraft(m *model.StudentFeeDraftModel) DraftResponse {
	return DraftResponse{
		DraftID:   m.StudentFeeDraftID,
		EnquiryID: m.StudentFeeDraftEnquiryID,
		Data:      m.StudentFeeDraftData.Data(),
		UpdatedAt: m.StudentFeeDraftUpdatedAt,
	}
}

type StudentFeeResponse struct {
	ID                uuid.UUID           `json:"id"`
	EnquiryID         uuid.UUID           `json:"enquiryId"`
	OtherFees         []model.FeeLineItem `json:"otherFees"`
	SemWiseFees       []model.SemesterFee `json:"semWiseFees"`
	FeesClearanceDate string              `json:"feesClearanceDate,omitempty"`
	Counsellor        []string            `json:"counsellor"`
	Telecaller        []string            `json:"telecaller"`
	Remarks           string              `json:"remarks,omitempty"`
	ConfirmationCheck bool                `json:"confirmationCheck"`
	OtpTarget         string              `json:"otpTarget,omitempty"`
	OtpVerifiedAt     *time.Time          `json:"otpVerifiedAt,omitempty"`
	TotalAmount       decimal.Decimal     `json:"totalAmount"`
	TOAAmount         decimal.Decimal     `json:"toaAmount"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

func FromStudentFee(m *model.StudentFeeModel) StudentFeeResponse {
	f := m.Form()
	return StudentFeeResponse{
		ID:                m.StudentFeeID,
		EnquiryID:         m.StudentFeeEnquiryID,
		OtherFees:         f.OtherFees,
		SemWiseFees:       f.SemWiseFees,
		FeesClearanceDate: f.FeesClearanceDate,
		Counsellor:        f.Counsellor,
		Telecaller:        f.Telecaller,
		Remarks:           f.Remarks,
		ConfirmationCheck: f.ConfirmationCheck,
		OtpTarget:         f.OtpTarget,
		OtpVerifiedAt:     m.StudentFeeOTPVerifiedAt,
		TotalAmount:       m.StudentFeeTotalAmount,
		TOAAmount:         m.StudentFeeTOAAmount,
		CreatedAt:         m.StudentFeeCreatedAt,
		UpdatedAt:         m.StudentFeeUpdatedAt,
	}
}

type OTPSentResponse struct {
	Target      string `json:"target"`
	Destination string `json:"destination"`
	ExpiresIn   int    `json:"expiresInSeconds"`
}
