package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentStatus string
type PaymentMethod string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusAwaitingCallback  PaymentStatus = "awaiting_callback"
	PaymentStatusPaid              PaymentStatus = "paid"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusCanceled          PaymentStatus = "canceled"
	PaymentStatusExpired           PaymentStatus = "expired"
)

// IsFinal: no gateway notification may move the payment out of these.
func (s PaymentStatus) IsFinal() bool {
	switch s {
	case PaymentStatusRefunded, PaymentStatusCanceled, PaymentStatusExpired, PaymentStatusFailed:
		return true
	}
	return false
}

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCheque PaymentMethod = "cheque"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodOnline PaymentMethod = "online"
)

// FeeHeadSemester marks a semester instalment; other heads are fee type keys.
const FeeHeadSemester = "SEMESTER"

type PaymentModel struct {
	PaymentID               uuid.UUID       `json:"payment_id" gorm:"column:payment_id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentStudentFeeID     uuid.UUID       `json:"payment_student_fee_id" gorm:"column:payment_student_fee_id;type:uuid;not null"`
	PaymentEnquiryID        uuid.UUID       `json:"payment_enquiry_id" gorm:"column:payment_enquiry_id;type:uuid;not null"`
	PaymentFeeHead          string          `json:"payment_fee_head" gorm:"column:payment_fee_head;type:varchar(30);not null"`
	PaymentSemester         *int16          `json:"payment_semester,omitempty" gorm:"column:payment_semester;type:smallint"`
	PaymentAmount           decimal.Decimal `json:"payment_amount" gorm:"column:payment_amount;type:numeric(12,2);not null"`
	PaymentMethod           PaymentMethod   `json:"payment_method" gorm:"column:payment_method;type:varchar(20);not null"`
	PaymentStatus           PaymentStatus   `json:"payment_status" gorm:"column:payment_status;type:varchar(30);not null;default:'pending'"`
	PaymentExternalID       *string         `json:"payment_external_id,omitempty" gorm:"column:payment_external_id;type:varchar(80)"`
	PaymentGatewayReference *string         `json:"payment_gateway_reference,omitempty" gorm:"column:payment_gateway_reference;type:varchar(120)"`
	PaymentSnapToken        *string         `json:"payment_snap_token,omitempty" gorm:"column:payment_snap_token;type:text"`
	PaymentRedirectURL      *string         `json:"payment_redirect_url,omitempty" gorm:"column:payment_redirect_url;type:text"`
	PaymentReferenceNo      *string         `json:"payment_reference_no,omitempty" gorm:"column:payment_reference_no;type:varchar(80)"`
	PaymentReceiptNo        *string         `json:"payment_receipt_no,omitempty" gorm:"column:payment_receipt_no;type:varchar(40)"`
	PaymentReceiptURL       *string         `json:"payment_receipt_url,omitempty" gorm:"column:payment_receipt_url;type:text"`
	PaymentNote             *string         `json:"payment_note,omitempty" gorm:"column:payment_note;type:text"`

	PaymentPaidAt     *time.Time `json:"payment_paid_at,omitempty" gorm:"column:payment_paid_at;type:timestamptz"`
	PaymentCanceledAt *time.Time `json:"payment_canceled_at,omitempty" gorm:"column:payment_canceled_at;type:timestamptz"`
	PaymentFailedAt   *time.Time `json:"payment_failed_at,omitempty" gorm:"column:payment_failed_at;type:timestamptz"`
	PaymentRefundedAt *time.Time `json:"payment_refunded_at,omitempty" gorm:"column:payment_refunded_at;type:timestamptz"`

	PaymentCreatedBy *uuid.UUID     `json:"payment_created_by,omitempty" gorm:"column:payment_created_by;type:uuid"`
	PaymentCreatedAt time.Time      `json:"payment_created_at" gorm:"column:payment_created_at;type:timestamptz;not null;autoCreateTime"`
	PaymentUpdatedAt time.Time      `json:"payment_updated_at" gorm:"column:payment_updated_at;type:timestamptz;not null;autoUpdateTime"`
	PaymentDeletedAt gorm.DeletedAt `json:"-" gorm:"column:payment_deleted_at;type:timestamptz;index"`
}

func (PaymentModel) TableName() string { return "payments" }
