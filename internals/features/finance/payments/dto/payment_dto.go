package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"admissions_backend/internals/features/finance/payments/model"
)

type CreatePaymentRequest struct {
	FeeHead     string          `json:"payment_fee_head" validate:"required,max=30"`
	Semester    *int16          `json:"payment_semester" validate:"omitempty,min=1,max=12"`
	Amount      decimal.Decimal `json:"payment_amount"`
	Method      string          `json:"payment_method" validate:"required,oneof=cash cheque upi online"`
	ReferenceNo *string         `json:"payment_reference_no" validate:"omitempty,max=80"`
	Note        *string         `json:"payment_note" validate:"omitempty,max=1000"`
}

// Normalize upper-cases the head and trims text fields.
func (r *CreatePaymentRequest) Normalize() {
	r.FeeHead = strings.ToUpper(strings.TrimSpace(r.FeeHead))
	r.Method = strings.ToLower(strings.TrimSpace(r.Method))
	if r.ReferenceNo != nil {
		s := strings.TrimSpace(*r.ReferenceNo)
		if s == "" {
			r.ReferenceNo = nil
		} else {
			r.ReferenceNo = &s
		}
	}
}

type CancelPaymentRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

type ListPaymentQuery struct {
	Status    string `query:"status" validate:"omitempty,oneof=pending awaiting_callback paid partially_refunded refunded failed canceled expired"`
	Method    string `query:"method" validate:"omitempty,oneof=cash cheque upi online"`
	EnquiryID string `query:"enquiry_id" validate:"omitempty,uuid"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Q         string `query:"q" validate:"omitempty,max=80"`
}

type PaymentResponse struct {
	PaymentID        uuid.UUID           `json:"payment_id"`
	StudentFeeID     uuid.UUID           `json:"payment_student_fee_id"`
	EnquiryID        uuid.UUID           `json:"payment_enquiry_id"`
	FeeHead          string              `json:"payment_fee_head"`
	Semester         *int16              `json:"payment_semester,omitempty"`
	Amount           decimal.Decimal     `json:"payment_amount"`
	Method           model.PaymentMethod `json:"payment_method"`
	Status           model.PaymentStatus `json:"payment_status"`
	ExternalID       *string             `json:"payment_external_id,omitempty"`
	GatewayReference *string             `json:"payment_gateway_reference,omitempty"`
	SnapToken        *string             `json:"payment_snap_token,omitempty"`
	RedirectURL      *string             `json:"payment_redirect_url,omitempty"`
	ReferenceNo      *string             `json:"payment_reference_no,omitempty"`
	ReceiptNo        *string             `json:"payment_receipt_no,omitempty"`
	ReceiptURL       *string             `json:"payment_receipt_url,omitempty"`
	Note             *string             `json:"payment_note,omitempty"`
	PaidAt           *time.Time          `json:"payment_paid_at,omitempty"`
	CanceledAt       *time.Time          `json:"payment_canceled_at,omitempty"`
	CreatedAt        time.Time           `json:"payment_created_at"`
}

func FromModel(m model.PaymentModel) PaymentResponse {
	return PaymentResponse{
		PaymentID:        m.PaymentID,
		StudentFeeID:     m.PaymentStudentFeeID,
		EnquiryID:        m.PaymentEnquiryID,
		FeeHead:          m.PaymentFeeHead,
		Semester:         m.PaymentSemester,
		Amount:           m.PaymentAmount,
		Method:           m.PaymentMethod,
		Status:           m.PaymentStatus,
		ExternalID:       m.PaymentExternalID,
		GatewayReference: m.PaymentGatewayReference,
		SnapToken:        m.PaymentSnapToken,
		RedirectURL:      m.PaymentRedirectURL,
		ReferenceNo:      m.PaymentReferenceNo,
		ReceiptNo:        m.PaymentReceiptNo,
		ReceiptURL:       m.PaymentReceiptURL,
		Note:             m.PaymentNote,
		PaidAt:           m.PaymentPaidAt,
		CanceledAt:       m.PaymentCanceledAt,
		CreatedAt:        m.PaymentCreatedAt,
	}
}

func FromModels(rows []model.PaymentModel) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}

// BalanceResponse summarises one final fee record.
type BalanceResponse struct {
	StudentFeeID uuid.UUID       `json:"student_fee_id"`
	EnquiryID    uuid.UUID       `json:"enquiry_id"`
	TotalFees    decimal.Decimal `json:"total_fees"`
	DepositedTOA decimal.Decimal `json:"deposited_toa"`
	Paid         decimal.Decimal `json:"paid"`
	Pending      decimal.Decimal `json:"pending"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}
