package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	"admissions_backend/internals/features/finance/payments/dto"
	"admissions_backend/internals/features/finance/payments/model"
	feeModel "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/logger"
)

type PaymentService struct {
	DB        *gorm.DB
	Gateway   Gateway
	ServerKey string
	Now       func() time.Time

	// OnPaid runs after a payment becomes paid and is committed.
	OnPaid func(ctx context.Context, paymentID uuid.UUID)
}

func New(db *gorm.DB, gw Gateway, serverKey string) *PaymentService {
	return &PaymentService{DB: db, Gateway: gw, ServerKey: serverKey, Now: time.Now}
}

// ReceiptNo renders RCPT/<yyyymm>/<seq>.
func ReceiptNo(at time.Time, seq int64) string {
	return helper.FormatSequence("RCPT", at.Format("200601"), seq, 5)
}

// ValidateHead checks the fee head against the final record: a semester
// instalment needs a semester the course has, other heads must be on the record.
func ValidateHead(rec *feeModel.StudentFeeModel, head string, semester *int16) error {
	ve := &helper.ValidationError{}
	if head == model.FeeHeadSemester {
		sems := rec.StudentFeeSemWiseFees.Data()
		if semester == nil {
			ve.Add("payment_semester", "semester is required for semester fees")
		} else if int(*semester) < 1 || int(*semester) > len(sems) {
			ve.Add("payment_semester", "semester is not part of this fee record")
		}
	} else {
		t, ok := feeModel.ParseFeeType(head)
		found := false
		if ok {
			for _, it := range rec.StudentFeeOtherFees.Data() {
				if feeModel.FeeType(strings.ToUpper(string(it.Type))) == t {
					found = true
					break
				}
			}
		}
		if !found {
			ve.Add("payment_fee_head", "fee head is not part of this fee record")
		}
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// ComputeBalance sums payments against a fee record. TOA deposits count as paid
// up front; outstanding never goes below zero.
func ComputeBalance(rec *feeModel.StudentFeeModel, payments []model.PaymentModel) dto.BalanceResponse {
	paid, pending := decimal.Zero, decimal.Zero
	for _, p := range payments {
		switch p.PaymentStatus {
		case model.PaymentStatusPaid:
			paid = paid.Add(p.PaymentAmount)
		case model.PaymentStatusPending, model.PaymentStatusAwaitingCallback:
			pending = pending.Add(p.PaymentAmount)
		}
	}
	outstanding := rec.StudentFeeTotalAmount.Sub(rec.StudentFeeTOAAmount).Sub(paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return dto.BalanceResponse{
		StudentFeeID: rec.StudentFeeID,
		EnquiryID:    rec.StudentFeeEnquiryID,
		TotalFees:    rec.StudentFeeTotalAmount,
		DepositedTOA: rec.StudentFeeTOAAmount,
		Paid:         paid,
		Pending:      pending,
		Outstanding:  outstanding,
	}
}

func (s *PaymentService) loadFee(tx *gorm.DB, id uuid.UUID, lock bool) (*feeModel.StudentFeeModel, error) {
	var rec feeModel.StudentFeeModel
	q := tx.Where("student_fee_id = ?", id)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrNotFound, "fee record not found")
		}
		return nil, errors.Wrap(err, "load fee record")
	}
	return &rec, nil
}

func (s *PaymentService) paymentsFor(tx *gorm.DB, studentFeeID uuid.UUID) ([]model.PaymentModel, error) {
	var rows []model.PaymentModel
	if err := tx.Where("payment_student_fee_id = ?", studentFeeID).
		Order("payment_created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	return rows, nil
}

func (s *PaymentService) get(tx *gorm.DB, id uuid.UUID) (*model.PaymentModel, error) {
	var p model.PaymentModel
	if err := tx.Where("payment_id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrNotFound, "payment not found")
		}
		return nil, errors.Wrap(err, "load payment")
	}
	return &p, nil
}

func assignReceipt(tx *gorm.DB, p *model.PaymentModel, at time.Time) error {
	if p.PaymentReceiptNo != nil {
		return nil
	}
	seq, err := helper.NextSequence(tx, "receipt:"+at.Format("200601"))
	if err != nil {
		return err
	}
	no := ReceiptNo(at, seq)
	p.PaymentReceiptNo = &no
	return nil
}

// Record takes a counter or online payment against a final fee record.
// Cash and UPI are paid at once; cheques wait for Confirm; online opens a Snap page.
func (s *PaymentService) Record(ctx context.Context, studentFeeID uuid.UUID, req dto.CreatePaymentRequest, actor *uuid.UUID) (*model.PaymentModel, error) {
	req.Normalize()
	if !req.Amount.IsPositive() {
		return nil, helper.NewValidationError(map[string][]string{"payment_amount": {"amount must be greater than zero"}})
	}
	method := model.PaymentMethod(req.Method)
	if method == model.PaymentMethodCheque && req.ReferenceNo == nil {
		return nil, helper.NewValidationError(map[string][]string{"payment_reference_no": {"cheque number is required"}})
	}
	if method == model.PaymentMethodOnline && s.Gateway == nil {
		return nil, errors.Wrap(helper.ErrUnavailable, "online payments are not configured")
	}

	now := s.Now()
	var (
		p   *model.PaymentModel
		enq enquiryModel.EnquiryModel
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.loadFee(tx, studentFeeID, true)
		if err != nil {
			return err
		}
		if err := tx.Where("enquiry_id = ?", rec.StudentFeeEnquiryID).Take(&enq).Error; err != nil {
			return errors.Wrap(err, "load enquiry")
		}
		if enq.EnquiryStatus == enquiryModel.EnquiryStatusDropped || enq.EnquiryStatus == enquiryModel.EnquiryStatusRejected {
			return errors.Wrapf(helper.ErrInvalidTransition, "enquiry is %s", enq.EnquiryStatus)
		}
		if err := ValidateHead(rec, req.FeeHead, req.Semester); err != nil {
			return err
		}
		existing, err := s.paymentsFor(tx, studentFeeID)
		if err != nil {
			return err
		}
		bal := ComputeBalance(rec, existing)
		if req.Amount.GreaterThan(bal.Outstanding) {
			return helper.NewValidationError(map[string][]string{
				"payment_amount": {"amount exceeds outstanding balance of " + helper.FormatINR(bal.Outstanding)},
			})
		}

		semester := req.Semester
		if req.FeeHead != model.FeeHeadSemester {
			semester = nil
		}
		p = &model.PaymentModel{
			PaymentStudentFeeID: studentFeeID,
			PaymentEnquiryID:    rec.StudentFeeEnquiryID,
			PaymentFeeHead:      req.FeeHead,
			PaymentSemester:     semester,
			PaymentAmount:       req.Amount.Round(2),
			PaymentMethod:       method,
			PaymentStatus:       model.PaymentStatusPending,
			PaymentReferenceNo:  req.ReferenceNo,
			PaymentNote:         req.Note,
			PaymentCreatedBy:    actor,
		}
		switch method {
		case model.PaymentMethodCash, model.PaymentMethodUPI:
			p.PaymentStatus = model.PaymentStatusPaid
			p.PaymentPaidAt = &now
			if err := assignReceipt(tx, p, now); err != nil {
				return err
			}
		case model.PaymentMethodOnline:
			ext := "ADM-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:20])
			p.PaymentExternalID = &ext
		}
		return tx.Create(p).Error
	})
	if err != nil {
		return nil, err
	}

	if method == model.PaymentMethodOnline {
		if err := s.openCheckout(ctx, p, &enq); err != nil {
			return nil, err
		}
	}
	logger.Info("payment recorded",
		zap.String("payment_id", p.PaymentID.String()),
		zap.String("method", string(p.PaymentMethod)),
		zap.String("status", string(p.PaymentStatus)),
		zap.String("amount", p.PaymentAmount.StringFixed(2)),
	)
	if p.PaymentStatus == model.PaymentStatusPaid {
		s.paid(p.PaymentID)
	}
	return p, nil
}

func (s *PaymentService) openCheckout(ctx context.Context, p *model.PaymentModel, enq *enquiryModel.EnquiryModel) error {
	in := Checkout{
		OrderID:     *p.PaymentExternalID,
		Amount:      p.PaymentAmount.Ceil().IntPart(),
		ItemName:    enq.EnquiryNo + " " + p.PaymentFeeHead,
		Category:    "ADMISSION",
		StudentName: enq.EnquiryStudentName,
		Phone:       enq.EnquiryPhone,
	}
	if enq.EnquiryEmail != nil {
		in.Email = *enq.EnquiryEmail
	}
	token, url, err := s.Gateway.CreateTransaction(ctx, in)
	db := s.DB.WithContext(ctx).Model(p)
	if err != nil {
		now := s.Now()
		p.PaymentStatus = model.PaymentStatusFailed
		p.PaymentFailedAt = &now
		_ = db.Updates(map[string]any{"payment_status": p.PaymentStatus, "payment_failed_at": now}).Error
		return errors.Wrap(helper.ErrUnavailable, "payment gateway: "+err.Error())
	}
	p.PaymentSnapToken = &token
	p.PaymentRedirectURL = &url
	if err := db.Updates(map[string]any{"payment_snap_token": token, "payment_redirect_url": url}).Error; err != nil {
		return errors.Wrap(err, "save checkout")
	}
	return nil
}

// Confirm marks a pending counter payment (cheque cleared) as paid.
func (s *PaymentService) Confirm(ctx context.Context, id uuid.UUID) (*model.PaymentModel, error) {
	var p *model.PaymentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		p, err = s.get(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id)
		if err != nil {
			return err
		}
		if p.PaymentMethod == model.PaymentMethodOnline {
			return errors.Wrap(helper.ErrConflict, "online payments are confirmed by the gateway")
		}
		if p.PaymentStatus != model.PaymentStatusPending {
			return errors.Wrapf(helper.ErrInvalidTransition, "payment is %s", p.PaymentStatus)
		}
		now := s.Now()
		p.PaymentStatus = model.PaymentStatusPaid
		p.PaymentPaidAt = &now
		if err := assignReceipt(tx, p, now); err != nil {
			return err
		}
		return tx.Model(p).Updates(map[string]any{
			"payment_status":     p.PaymentStatus,
			"payment_paid_at":    now,
			"payment_receipt_no": p.PaymentReceiptNo,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	s.paid(p.PaymentID)
	return p, nil
}

func (s *PaymentService) Cancel(ctx context.Context, id uuid.UUID, reason *string) (*model.PaymentModel, error) {
	tx := s.DB.WithContext(ctx)
	p, err := s.get(tx, id)
	if err != nil {
		return nil, err
	}
	if p.PaymentStatus != model.PaymentStatusPending && p.PaymentStatus != model.PaymentStatusAwaitingCallback {
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "payment is %s", p.PaymentStatus)
	}
	now := s.Now()
	changes := map[string]any{"payment_status": model.PaymentStatusCanceled, "payment_canceled_at": now}
	if reason != nil && strings.TrimSpace(*reason) != "" {
		changes["payment_note"] = strings.TrimSpace(*reason)
	}
	res := tx.Model(&model.PaymentModel{}).
		Where("payment_id = ? AND payment_status = ?", id, p.PaymentStatus).
		Updates(changes)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "cancel payment")
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrap(helper.ErrConflict, "payment changed meanwhile")
	}
	return s.get(tx, id)
}

// HandleNotification applies a Midtrans notification. Unknown orders are logged
// and ignored so the gateway stops retrying.
func (s *PaymentService) HandleNotification(ctx context.Context, n Notification) (*model.PaymentModel, error) {
	if !VerifySignature(n, s.ServerKey) {
		return nil, errors.Wrap(helper.ErrUnauthorized, "invalid signature")
	}
	db := s.DB.WithContext(ctx)
	ev := s.logEvent(db, n)

	var (
		p          model.PaymentModel
		becamePaid bool
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("payment_external_id = ?", n.OrderID).
			Take(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errIgnored("payment not found")
		}
		if err != nil {
			return err
		}
		if gross, perr := decimal.NewFromString(n.GrossAmount); perr == nil && !gross.Equal(p.PaymentAmount.Ceil()) && !gross.Equal(p.PaymentAmount) {
			return errIgnored("gross amount mismatch")
		}

		now := s.Now()
		next, fields := MapMidtransStatus(p.PaymentStatus, n.TransactionStatus, n.FraudStatus, now)
		if !allowedGatewayMove(p.PaymentStatus, next) {
			return errIgnored("status " + string(p.PaymentStatus) + " -> " + string(next) + " not applied")
		}

		changes := map[string]any{"payment_status": next}
		if n.TransactionID != "" {
			changes["payment_gateway_reference"] = n.TransactionID
		}
		if fields.PaidAt != nil {
			changes["payment_paid_at"] = *fields.PaidAt
		}
		if fields.CanceledAt != nil {
			changes["payment_canceled_at"] = *fields.CanceledAt
		}
		if fields.FailedAt != nil {
			changes["payment_failed_at"] = *fields.FailedAt
		}
		if fields.RefundedAt != nil {
			changes["payment_refunded_at"] = *fields.RefundedAt
		}
		if next == model.PaymentStatusPaid {
			if err := assignReceipt(tx, &p, now); err != nil {
				return err
			}
			changes["payment_receipt_no"] = p.PaymentReceiptNo
			becamePaid = true
		}
		if err := tx.Model(&p).Updates(changes).Error; err != nil {
			return err
		}
		p.PaymentStatus = next
		return nil
	})

	var ign ignoredError
	switch {
	case errors.As(err, &ign):
		s.finishEvent(db, ev, nil, model.GatewayEventStatusIgnored, ign.reason)
		logger.Warn("midtrans notification ignored", zap.String("order_id", n.OrderID), zap.String("reason", ign.reason))
		return nil, nil
	case err != nil:
		s.finishEvent(db, ev, nil, model.GatewayEventStatusFailed, err.Error())
		return nil, errors.Wrap(err, "apply notification")
	}
	s.finishEvent(db, ev, &p.PaymentID, model.GatewayEventStatusProcessed, "")
	if becamePaid {
		s.paid(p.PaymentID)
	}
	return &p, nil
}

type ignoredError struct{ reason string }

func (e ignoredError) Error() string { return e.reason }

func errIgnored(reason string) error { return ignoredError{reason: reason} }

// allowedGatewayMove: final statuses stay put, paid may only be refunded.
func allowedGatewayMove(from, to model.PaymentStatus) bool {
	if from == to || from.IsFinal() {
		return false
	}
	if from == model.PaymentStatusPaid || from == model.PaymentStatusPartiallyRefunded {
		return to == model.PaymentStatusRefunded || to == model.PaymentStatusPartiallyRefunded
	}
	return true
}

func (s *PaymentService) logEvent(db *gorm.DB, n Notification) *model.PaymentGatewayEventModel {
	payload, _ := json.Marshal(n)
	ev := &model.PaymentGatewayEventModel{
		PaymentGatewayEventProvider:    model.GatewayProviderMidtrans,
		PaymentGatewayEventType:        strPtr(n.TransactionStatus),
		PaymentGatewayEventExternalID:  strPtr(n.OrderID),
		PaymentGatewayEventExternalRef: strPtr(n.TransactionID),
		PaymentGatewayEventPayload:     datatypes.JSON(payload),
		PaymentGatewayEventSignature:   strPtr(n.SignatureKey),
		PaymentGatewayEventStatus:      model.GatewayEventStatusReceived,
	}
	if err := db.Create(ev).Error; err != nil {
		logger.Warn("log gateway event", zap.Error(err))
		return nil
	}
	return ev
}

func (s *PaymentService) finishEvent(db *gorm.DB, ev *model.PaymentGatewayEventModel, paymentID *uuid.UUID, status model.GatewayEventStatus, msg string) {
	if ev == nil {
		return
	}
	changes := map[string]any{
		"payment_gateway_event_status":       status,
		"payment_gateway_event_processed_at": s.Now(),
		"payment_gateway_event_error":        strPtr(msg),
	}
	if paymentID != nil {
		changes["payment_gateway_event_payment_id"] = *paymentID
	}
	if err := db.Model(ev).Updates(changes).Error; err != nil {
		logger.Warn("update gateway event", zap.Error(err))
	}
}

func (s *PaymentService) paid(id uuid.UUID) {
	if s.OnPaid == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.OnPaid(ctx, id)
	}()
}

func (s *PaymentService) Get(ctx context.Context, id uuid.UUID) (*model.PaymentModel, error) {
	return s.get(s.DB.WithContext(ctx), id)
}

func (s *PaymentService) ListForFee(ctx context.Context, studentFeeID uuid.UUID) ([]model.PaymentModel, error) {
	db := s.DB.WithContext(ctx)
	if _, err := s.loadFee(db, studentFeeID, false); err != nil {
		return nil, err
	}
	return s.paymentsFor(db, studentFeeID)
}

func (s *PaymentService) Balance(ctx context.Context, studentFeeID uuid.UUID) (*dto.BalanceResponse, error) {
	db := s.DB.WithContext(ctx)
	rec, err := s.loadFee(db, studentFeeID, false)
	if err != nil {
		return nil, err
	}
	rows, err := s.paymentsFor(db, studentFeeID)
	if err != nil {
		return nil, err
	}
	bal := ComputeBalance(rec, rows)
	return &bal, nil
}

var paymentSort = map[string]string{
	"created_at": "payment_created_at",
	"paid_at":    "payment_paid_at",
	"amount":     "payment_amount",
}

func (s *PaymentService) List(ctx context.Context, q dto.ListPaymentQuery, p helper.Params) ([]model.PaymentModel, int64, error) {
	order, err := p.SafeOrderClause(paymentSort, "created_at")
	if err != nil {
		return nil, 0, err
	}
	tx := s.DB.WithContext(ctx).Model(&model.PaymentModel{})
	if q.Status != "" {
		tx = tx.Where("payment_status = ?", q.Status)
	}
	if q.Method != "" {
		tx = tx.Where("payment_method = ?", q.Method)
	}
	if q.EnquiryID != "" {
		tx = tx.Where("payment_enquiry_id = ?", q.EnquiryID)
	}
	if q.From != "" {
		tx = tx.Where("payment_created_at >= ?::date", q.From)
	}
	if q.To != "" {
		tx = tx.Where("payment_created_at < (?::date + INTERVAL '1 day')", q.To)
	}
	if term := strings.TrimSpace(q.Q); term != "" {
		like := "%" + term + "%"
		tx = tx.Where("payment_receipt_no ILIKE ? OR payment_reference_no ILIKE ? OR payment_external_id ILIKE ?", like, like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count payments")
	}
	var rows []model.PaymentModel
	if err := tx.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list payments")
	}
	return rows, total, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
