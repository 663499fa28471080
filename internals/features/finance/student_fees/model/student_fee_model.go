package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// --- MODEL student_fee_drafts ------------------------------------------------
// At most one open (not superseded) draft per enquiry.
type StudentFeeDraftModel struct {
	StudentFeeDraftID           uuid.UUID                        `json:"student_fee_draft_id" gorm:"column:student_fee_draft_id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudentFeeDraftEnquiryID    uuid.UUID                        `json:"student_fee_draft_enquiry_id" gorm:"column:student_fee_draft_enquiry_id;type:uuid;not null"`
	StudentFeeDraftData         datatypes.JSONType[FeeDraftData] `json:"student_fee_draft_data" gorm:"column:student_fee_draft_data;type:jsonb;not null"`
	StudentFeeDraftSupersededAt *time.Time                       `json:"student_fee_draft_superseded_at,omitempty" gorm:"column:student_fee_draft_superseded_at;type:timestamptz"`
	StudentFeeDraftCreatedBy    *uuid.UUID                       `json:"student_fee_draft_created_by,omitempty" gorm:"column:student_fee_draft_created_by;type:uuid"`

	StudentFeeDraftCreatedAt time.Time `json:"student_fee_draft_created_at" gorm:"column:student_fee_draft_created_at;type:timestamptz;not null;autoCreateTime"`
	StudentFeeDraftUpdatedAt time.Time `json:"student_fee_draft_updated_at" gorm:"column:student_fee_draft_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (StudentFeeDraftModel) TableName() string { return "student_fee_drafts" }

func (d StudentFeeDraftModel) IsOpen() bool { return d.StudentFeeDraftSupersededAt == nil }

// --- MODEL student_fees ------------------------------------------------------
type StudentFeeModel struct {
	StudentFeeID                uuid.UUID                         `json:"student_fee_id" gorm:"column:student_fee_id;type:uuid;default:gen_random_uuid();primaryKey"`
	StudentFeeEnquiryID         uuid.UUID                         `json:"student_fee_enquiry_id" gorm:"column:student_fee_enquiry_id;type:uuid;not null"`
	StudentFeeOtherFees         datatypes.JSONType[[]FeeLineItem] `json:"student_fee_other_fees" gorm:"column:student_fee_other_fees;type:jsonb;not null"`
	StudentFeeSemWiseFees       datatypes.JSONType[[]SemesterFee] `json:"student_fee_sem_wise_fees" gorm:"column:student_fee_sem_wise_fees;type:jsonb;not null"`
	StudentFeeClearanceDate     *time.Time                        `json:"student_fee_clearance_date,omitempty" gorm:"column:student_fee_clearance_date;type:date"`
	StudentFeeCounsellors       pq.StringArray                    `json:"student_fee_counsellors" gorm:"column:student_fee_counsellors;type:text[];not null;default:'{}'"`
	StudentFeeTelecallers       pq.StringArray                    `json:"student_fee_telecallers" gorm:"column:student_fee_telecallers;type:text[];not null;default:'{}'"`
	StudentFeeRemarks           *string                           `json:"student_fee_remarks,omitempty" gorm:"column:student_fee_remarks;type:text"`
	StudentFeeConfirmationCheck bool                              `json:"student_fee_confirmation_check" gorm:"column:student_fee_confirmation_check;not null"`
	StudentFeeOTPTarget         *string                           `json:"student_fee_otp_target,omitempty" gorm:"column:student_fee_otp_target;type:varchar(20)"`
	StudentFeeOTPVerifiedAt     *time.Time                        `json:"student_fee_otp_verified_at,omitempty" gorm:"column:student_fee_otp_verified_at;type:timestamptz"`

	// denormalised sums of the fee lines
	StudentFeeTotalAmount decimal.Decimal `json:"student_fee_total_amount" gorm:"column:student_fee_total_amount;type:numeric(12,2);not null"`
	StudentFeeTOAAmount   decimal.Decimal `json:"student_fee_toa_amount" gorm:"column:student_fee_toa_amount;type:numeric(12,2);not null"`

	StudentFeeCreatedBy *uuid.UUID     `json:"student_fee_created_by,omitempty" gorm:"column:student_fee_created_by;type:uuid"`
	StudentFeeCreatedAt time.Time      `json:"student_fee_created_at" gorm:"column:student_fee_created_at;type:timestamptz;not null;autoCreateTime"`
	StudentFeeUpdatedAt time.Time      `json:"student_fee_updated_at" gorm:"column:student_fee_updated_at;type:timestamptz;not null;autoUpdateTime"`
	StudentFeeDeletedAt gorm.DeletedAt `json:"student_fee_deleted_at,omitempty" gorm:"column:student_fee_deleted_at;type:timestamptz;index"`
}

func (StudentFeeModel) TableName() string { return "student_fees" }

// Form rebuilds the editable form from a final record.
func (m StudentFeeModel) Form() FeeForm {
	f := FeeForm{
		OtherFees:         m.StudentFeeOtherFees.Data(),
		SemWiseFees:       m.StudentFeeSemWiseFees.Data(),
		Counsellor:        []string(m.StudentFeeCounsellors),
		Telecaller:        []string(m.StudentFeeTelecallers),
		ConfirmationCheck: m.StudentFeeConfirmationCheck,
	}
	if m.StudentFeeClearanceDate != nil {
		f.FeesClearanceDate = m.StudentFeeClearanceDate.Format(ClearanceDateLayout)
	}
	if m.StudentFeeRemarks != nil {
		f.Remarks = *m.StudentFeeRemarks
	}
	if m.StudentFeeOTPTarget != nil {
		f.OtpTarget = *m.StudentFeeOTPTarget
	}
	return f
}

// ClearanceDateLayout is dd/MM/yyyy.
const ClearanceDateLayout = "02/01/2006"

// OTP targets
const (
	OTPTargetStudent = "student"
	OTPTargetFather  = "father"
)

func ValidOTPTarget(s string) bool { return s == OTPTargetStudent || s == OTPTargetFather }
