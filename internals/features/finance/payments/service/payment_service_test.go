package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"admissions_backend/internals/features/finance/payments/dto"
	"admissions_backend/internals/features/finance/payments/model"
	feeModel "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
)

func feeRecord(total, toa string, semesters int, others ...feeModel.FeeType) *feeModel.StudentFeeModel {
	sems := make([]feeModel.SemesterFee, semesters)
	for i := range sems {
		sems[i] = feeModel.SemesterFee{FinalFee: feeModel.Float(50000)}
	}
	items := make([]feeModel.FeeLineItem, 0, len(others))
	for _, t := range others {
		items = append(items, feeModel.FeeLineItem{Type: t, FinalFee: feeModel.Float(1000)})
	}
	return &feeModel.StudentFeeModel{
		StudentFeeID:          uuid.New(),
		StudentFeeEnquiryID:   uuid.New(),
		StudentFeeOtherFees:   datatypes.NewJSONType(items),
		StudentFeeSemWiseFees: datatypes.NewJSONType(sems),
		StudentFeeTotalAmount: decimal.RequireFromString(total),
		StudentFeeTOAAmount:   decimal.RequireFromString(toa),
	}
}

func pay(amount string, st model.PaymentStatus) model.PaymentModel {
	return model.PaymentModel{PaymentAmount: decimal.RequireFromString(amount), PaymentStatus: st}
}

func sem(n int16) *int16 { return &n }

func TestReceiptNo(t *testing.T) {
	at := time.Date(2024, 7, 3, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "RCPT/202407/00012", ReceiptNo(at, 12))
}

func TestComputeBalance(t *testing.T) {
	rec := feeRecord("100000", "5000", 2)
	bal := ComputeBalance(rec, []model.PaymentModel{
		pay("20000", model.PaymentStatusPaid),
		pay("10000", model.PaymentStatusPending),
		pay("3000", model.PaymentStatusAwaitingCallback),
		pay("7000", model.PaymentStatusCanceled),
		pay("1000", model.PaymentStatusFailed),
	})
	assert.True(t, bal.Paid.Equal(decimal.NewFromInt(20000)))
	assert.True(t, bal.Pending.Equal(decimal.NewFromInt(13000)))
	assert.True(t, bal.Outstanding.Equal(decimal.NewFromInt(75000)), bal.Outstanding.String())
	assert.Equal(t, rec.StudentFeeID, bal.StudentFeeID)
}

func TestComputeBalanceNeverNegative(t *testing.T) {
	rec := feeRecord("1000", "500", 1)
	bal := ComputeBalance(rec, []model.PaymentModel{pay("900", model.PaymentStatusPaid)})
	assert.True(t, bal.Outstanding.IsZero())
}

func TestValidateHead(t *testing.T) {
	rec := feeRecord("100000", "0", 2, feeModel.FeeTypeHostel)

	assert.NoError(t, ValidateHead(rec, model.FeeHeadSemester, sem(2)))
	assert.NoError(t, ValidateHead(rec, "HOSTEL", nil))
	assert.NoError(t, ValidateHead(rec, "Hostel Fee", nil))

	var ve *helper.ValidationError
	err := ValidateHead(rec, model.FeeHeadSemester, nil)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "payment_semester")

	err = ValidateHead(rec, model.FeeHeadSemester, sem(3))
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "payment_semester")

	err = ValidateHead(rec, "TRANSPORT", nil)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "payment_fee_head")

	err = ValidateHead(rec, "LIBRARY", nil)
	require.True(t, errors.As(err, &ve))
}

func TestSignature(t *testing.T) {
	n := Notification{OrderID: "ADM-1", StatusCode: "200", GrossAmount: "50000.00"}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "server-key")
	assert.Len(t, n.SignatureKey, 128)
	assert.True(t, VerifySignature(n, "server-key"))
	assert.False(t, VerifySignature(n, "other-key"))

	n.GrossAmount = "1.00"
	assert.False(t, VerifySignature(n, "server-key"))

	assert.False(t, VerifySignature(Notification{OrderID: "x"}, "server-key"))
	assert.False(t, VerifySignature(n, ""))
}

func TestMapMidtransStatus(t *testing.T) {
	now := time.Now()
	cur := model.PaymentStatusPending

	cases := []struct {
		ts, fraud string
		want      model.PaymentStatus
		paidAt    bool
	}{
		{"capture", "accept", model.PaymentStatusPaid, true},
		{"capture", "", model.PaymentStatusPaid, true},
		{"capture", "challenge", model.PaymentStatusAwaitingCallback, false},
		{"capture", "deny", model.PaymentStatusFailed, false},
		{"settlement", "", model.PaymentStatusPaid, true},
		{"SETTLEMENT", "", model.PaymentStatusPaid, true},
		{"pending", "", model.PaymentStatusPending, false},
		{"deny", "", model.PaymentStatusFailed, false},
		{"failure", "", model.PaymentStatusFailed, false},
		{"cancel", "", model.PaymentStatusCanceled, false},
		{"expire", "", model.PaymentStatusExpired, false},
		{"refund", "", model.PaymentStatusRefunded, false},
		{"partial_refund", "", model.PaymentStatusPartiallyRefunded, false},
		{"authorize", "", cur, false},
	}
	for _, c := range cases {
		got, f := MapMidtransStatus(cur, c.ts, c.fraud, now)
		assert.Equal(t, c.want, got, c.ts+"/"+c.fraud)
		assert.Equal(t, c.paidAt, f.PaidAt != nil, c.ts+"/"+c.fraud)
	}
}

func TestAllowedGatewayMove(t *testing.T) {
	assert.True(t, allowedGatewayMove(model.PaymentStatusPending, model.PaymentStatusPaid))
	assert.True(t, allowedGatewayMove(model.PaymentStatusAwaitingCallback, model.PaymentStatusFailed))
	assert.True(t, allowedGatewayMove(model.PaymentStatusPaid, model.PaymentStatusRefunded))
	assert.True(t, allowedGatewayMove(model.PaymentStatusPartiallyRefunded, model.PaymentStatusRefunded))

	assert.False(t, allowedGatewayMove(model.PaymentStatusPaid, model.PaymentStatusPaid))
	assert.False(t, allowedGatewayMove(model.PaymentStatusPaid, model.PaymentStatusCanceled))
	assert.False(t, allowedGatewayMove(model.PaymentStatusExpired, model.PaymentStatusPaid))
	assert.False(t, allowedGatewayMove(model.PaymentStatusRefunded, model.PaymentStatusPaid))
	assert.False(t, allowedGatewayMove(model.PaymentStatusCanceled, model.PaymentStatusPending))
}

func TestRecordRejectsBeforeTouchingDB(t *testing.T) {
	svc := New(nil, nil, "")
	fee := uuid.New()

	_, err := svc.Record(context.Background(), fee, dto.CreatePaymentRequest{
		FeeHead: "semester", Amount: decimal.Zero, Method: "cash",
	}, nil)
	var ve *helper.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "payment_amount")

	_, err = svc.Record(context.Background(), fee, dto.CreatePaymentRequest{
		FeeHead: "semester", Amount: decimal.NewFromInt(10), Method: "cheque",
	}, nil)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "payment_reference_no")

	_, err = svc.Record(context.Background(), fee, dto.CreatePaymentRequest{
		FeeHead: "semester", Amount: decimal.NewFromInt(10), Method: "online",
	}, nil)
	assert.True(t, errors.Is(err, helper.ErrUnavailable))
}

func TestHandleNotificationRejectsBadSignature(t *testing.T) {
	svc := New(nil, nil, "server-key")
	p, err := svc.HandleNotification(context.Background(), Notification{
		OrderID: "ADM-1", StatusCode: "200", GrossAmount: "10.00", SignatureKey: "deadbeef",
	})
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, helper.ErrUnauthorized))
}

func TestSplitName(t *testing.T) {
	f, l := splitName("  Asha  Rani Verma ")
	assert.Equal(t, "Asha", f)
	assert.Equal(t, "Rani Verma", l)
	f, l = splitName("Ravi")
	assert.Equal(t, "Ravi", f)
	assert.Empty(t, l)
}
