package service

import (
	"context"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"admissions_backend/internals/configs"
	courseModel "admissions_backend/internals/features/academics/courses/model"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	"admissions_backend/internals/features/finance/student_fees/dto"
	model "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/helpers/mailer"
	"admissions_backend/internals/logger"
)

// Repository is the persistence the fee form needs. Lookups by id return a
// wrapped helper.ErrNotFound; Find* "by enquiry" return (nil, nil) when absent.
type Repository interface {
	GetEnquiry(ctx context.Context, id uuid.UUID) (*enquiryModel.EnquiryModel, error)
	GetCourse(ctx context.Context, id uuid.UUID) (*courseModel.CourseModel, error)
	// SemesterSchedule has one entry per semester; NaN marks an unscheduled one.
	SemesterSchedule(ctx context.Context, courseID uuid.UUID, session string, semesters int) ([]float64, error)
	OtherFeeSchedule(ctx context.Context, courseID uuid.UUID, session string) ([]model.OriginalOtherFee, error)

	FindOpenDraft(ctx context.Context, enquiryID uuid.UUID) (*model.StudentFeeDraftModel, error)
	FindDraft(ctx context.Context, draftID uuid.UUID) (*model.StudentFeeDraftModel, error)
	SaveDraft(ctx context.Context, d *model.StudentFeeDraftModel) error

	FindFinalByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*model.StudentFeeModel, error)
	FindFinal(ctx context.Context, id uuid.UUID) (*model.StudentFeeModel, error)
	// Finalize creates rec, supersedes the open draft and moves the enquiry
	// to fees_finalized in one transaction.
	Finalize(ctx context.Context, rec *model.StudentFeeModel) error
	UpdateFinal(ctx context.Context, rec *model.StudentFeeModel) error
}

type FeeFormService struct {
	Repo       Repository
	OTP        OTPStore
	Mail       mailer.Mailer
	RequireOTP bool
	OTPTTL     time.Duration
	Now        func() time.Time

	// AfterFinalize runs once the final record is committed. Its error is logged only.
	AfterFinalize func(ctx context.Context, enquiryID uuid.UUID) error
}

func NewFeeFormService(repo Repository, otp OTPStore, m mailer.Mailer) *FeeFormService {
	return &FeeFormService{
		Repo:       repo,
		OTP:        otp,
		Mail:       m,
		RequireOTP: configs.FeeOTPRequired,
		OTPTTL:     configs.OTPTTL,
		Now:        time.Now,
	}
}

// statuses from which fees may still be finalised
var feeOpenStatuses = map[enquiryModel.EnquiryStatus]bool{
	enquiryModel.EnquiryStatusNew:        true,
	enquiryModel.EnquiryStatusContacted:  true,
	enquiryModel.EnquiryStatusInProgress: true,
}

type schedules struct {
	enquiry *enquiryModel.EnquiryModel
	course  *courseModel.CourseModel
	sem     []float64
	other   []model.OriginalOtherFee
}

func (s *FeeFormService) load(ctx context.Context, enquiryID uuid.UUID) (*schedules, error) {
	enq, err := s.Repo.GetEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	course, err := s.Repo.GetCourse(ctx, enq.EnquiryCourseID)
	if err != nil {
		return nil, err
	}
	sem, err := s.Repo.SemesterSchedule(ctx, course.CourseID, enq.EnquirySession, int(course.CourseTotalSemesters))
	if err != nil {
		return nil, err
	}
	other, err := s.Repo.OtherFeeSchedule(ctx, course.CourseID, enq.EnquirySession)
	if err != nil {
		return nil, err
	}
	return &schedules{enquiry: enq, course: course, sem: sem, other: other}, nil
}

/* =========================================================
   HYDRATE
========================================================= */

// Hydrate builds the form the desk edits: schedule defaults overlaid with
// the final record, else the open draft.
func (s *FeeFormService) Hydrate(ctx context.Context, enquiryID uuid.UUID) (*dto.FeeFormResponse, error) {
	sc, err := s.load(ctx, enquiryID)
	if err != nil {
		return nil, err
	}

	resp := &dto.FeeFormResponse{
		Enquiry: dto.EnquiryBrief{
			ID:          sc.enquiry.EnquiryID,
			EnquiryNo:   sc.enquiry.EnquiryNo,
			StudentName: sc.enquiry.EnquiryStudentName,
			Session:     sc.enquiry.EnquirySession,
			Status:      string(sc.enquiry.EnquiryStatus),
		},
		Course: dto.CourseBrief{
			ID:             sc.course.CourseID,
			Code:           sc.course.CourseCode,
			Name:           sc.course.CourseName,
			TotalSemesters: int(sc.course.CourseTotalSemesters),
		},
		Source: dto.SourceSchedule,
	}

	var form model.FeeForm
	final, err := s.Repo.FindFinalByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	if final != nil {
		form = final.Form()
		resp.Source = dto.SourceFinal
		resp.StudentFeeID = &final.StudentFeeID
	} else {
		draft, err := s.Repo.FindOpenDraft(ctx, enquiryID)
		if err != nil {
			return nil, err
		}
		if draft != nil {
			form = draft.StudentFeeDraftData.Data().AsForm()
			resp.Source = dto.SourceDraft
			resp.DraftID = &draft.StudentFeeDraftID
		}
	}

	resp.OtherFees = mergeOtherFees(sc.other, form.OtherFees)
	resp.SemWiseFees = mergeSemesters(sc.sem, form.SemWiseFees)
	resp.FeesClearanceDate = form.FeesClearanceDate
	resp.Counsellor = firstNonEmpty(form.Counsellor, sc.enquiry.EnquiryCounsellors)
	resp.Telecaller = firstNonEmpty(form.Telecaller, sc.enquiry.EnquiryTelecallers)
	resp.Remarks = form.Remarks
	resp.ConfirmationCheck = form.ConfirmationCheck
	resp.OtpTarget = form.OtpTarget
	resp.Totals = totalsOf(resp.OtherFees, resp.SemWiseFees)
	return resp, nil
}

func mergeOtherFees(schedule []model.OriginalOtherFee, existing []model.FeeLineItem) []dto.OtherFeeLine {
	byType := map[model.FeeType]model.FeeLineItem{}
	for _, it := range existing {
		byType[it.Type] = it
	}

	out := make([]dto.OtherFeeLine, 0, len(schedule)+len(existing))
	used := map[model.FeeType]bool{}
	for _, o := range schedule {
		t, ok := model.ParseFeeType(o.Type)
		if !ok {
			t = model.FeeType(strings.TrimSpace(o.Type))
		}
		if used[t] {
			continue
		}
		used[t] = true

		line := dto.OtherFeeLine{
			Type:        t,
			Label:       model.DisplayLabel(t),
			Schedule:    model.ScheduleLabel(t),
			Optional:    o.Optional,
			OriginalFee: copyNum(o.Amount),
		}
		if !o.Optional {
			line.FinalFee = copyNum(o.Amount)
		}
		if it, ok := byType[t]; ok {
			if it.FinalFee != nil {
				line.FinalFee = copyNum(it.FinalFee)
			}
			line.FeesDepositedTOA = copyNum(it.FeesDepositedTOA)
			line.Remarks = it.Remarks
		}
		line.DiscountPercent = DiscountPercent(line.OriginalFee, line.FinalFee)
		out = append(out, line)
	}

	for _, it := range existing {
		if used[it.Type] {
			continue
		}
		used[it.Type] = true
		out = append(out, dto.OtherFeeLine{
			Type:             it.Type,
			Label:            model.DisplayLabel(it.Type),
			Schedule:         model.ScheduleLabel(it.Type),
			FinalFee:         copyNum(it.FinalFee),
			FeesDepositedTOA: copyNum(it.FeesDepositedTOA),
			Remarks:          it.Remarks,
		})
	}
	return out
}

// semesterFinals indexes saved semester fees by semester number. Numbered
// entries (drafts) go by their number, the rest by position.
func semesterFinals(existing []model.SemesterFee) map[int]*float64 {
	out := make(map[int]*float64, len(existing))
	for i, sf := range existing {
		if sf.FinalFee == nil {
			continue
		}
		n := sf.Semester
		if n <= 0 {
			n = i + 1
		}
		out[n] = sf.FinalFee
	}
	return out
}

func mergeSemesters(schedule []float64, existing []model.SemesterFee) []dto.SemesterLine {
	finals := semesterFinals(existing)
	out := make([]dto.SemesterLine, 0, len(schedule))
	for i, amt := range schedule {
		line := dto.SemesterLine{Semester: i + 1}
		if !math.IsNaN(amt) {
			line.OriginalFee = model.Float(amt)
			line.FinalFee = model.Float(amt)
		}
		if v, ok := finals[i+1]; ok {
			line.FinalFee = copyNum(v)
		}
		line.DiscountPercent = DiscountPercent(line.OriginalFee, line.FinalFee)
		out = append(out, line)
	}
	return out
}

func totalsOf(other []dto.OtherFeeLine, sems []dto.SemesterLine) dto.FeeTotals {
	var t dto.FeeTotals
	add := func(acc *decimal.Decimal, v *float64) {
		if model.IsNumber(v) {
			*acc = acc.Add(decimal.NewFromFloat(*v))
		}
	}
	for _, l := range other {
		add(&t.Original, l.OriginalFee)
		add(&t.Final, l.FinalFee)
		add(&t.Deposited, l.FeesDepositedTOA)
	}
	for _, l := range sems {
		add(&t.Original, l.OriginalFee)
		add(&t.Final, l.FinalFee)
	}
	t.Discount = t.Original.Sub(t.Final)
	if t.Discount.IsNegative() {
		t.Discount = decimal.Zero
	}
	return t
}

func copyNum(v *float64) *float64 {
	if !model.IsNumber(v) {
		return nil
	}
	return model.Float(*v)
}

func firstNonEmpty(a []string, b []string) []string {
	if a = nonEmpty(a); len(a) > 0 {
		return a
	}
	if b = nonEmpty(b); len(b) > 0 {
		return b
	}
	return []string{}
}

/* =========================================================
   DRAFTS
========================================================= */

// SaveDraft validates and stores a cleaned draft. A nil draft with a nil
// error means there was nothing worth saving.
func (s *FeeFormService) SaveDraft(ctx context.Context, enquiryID uuid.UUID, draftID *uuid.UUID, form model.FeeForm, actor *uuid.UUID) (*model.StudentFeeDraftModel, error) {
	sc, err := s.load(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	final, err := s.Repo.FindFinalByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	if final != nil {
		return nil, errors.Wrap(helper.ErrConflict, "fees already finalised for this enquiry")
	}

	if err := ValidateCustomFeeLogic(form, sc.other, sc.sem).AsError(); err != nil {
		return nil, err
	}
	cleaned := CleanDataForDraft(&form)
	if cleaned == nil {
		return nil, nil
	}

	var draft *model.StudentFeeDraftModel
	if draftID != nil {
		draft, err = s.Repo.FindDraft(ctx, *draftID)
		if err != nil {
			return nil, err
		}
		if draft.StudentFeeDraftEnquiryID != enquiryID {
			return nil, errors.Wrap(helper.ErrNotFound, "draft not found for this enquiry")
		}
		if !draft.IsOpen() {
			return nil, errors.Wrap(helper.ErrConflict, "draft already superseded")
		}
	} else {
		draft, err = s.Repo.FindOpenDraft(ctx, enquiryID)
		if err != nil {
			return nil, err
		}
	}
	if draft == nil {
		draft = &model.StudentFeeDraftModel{
			StudentFeeDraftEnquiryID: enquiryID,
			StudentFeeDraftCreatedBy: actor,
		}
	}
	draft.StudentFeeDraftData = datatypes.NewJSONType(*cleaned)

	if err := s.Repo.SaveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// UpdateDraft saves into an existing draft addressed by id.
func (s *FeeFormService) UpdateDraft(ctx context.Context, draftID uuid.UUID, form model.FeeForm, actor *uuid.UUID) (*model.StudentFeeDraftModel, error) {
	draft, err := s.Repo.FindDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return s.SaveDraft(ctx, draft.StudentFeeDraftEnquiryID, &draftID, form, actor)
}

/* =========================================================
   FINAL RECORD
========================================================= */

func (s *FeeFormService) validateFinal(sc *schedules, form model.FeeForm) error {
	issues := ValidateCustomFeeLogic(form, sc.other, sc.sem)
	issues = append(issues, ValidateFinalRecord(form, int(sc.course.CourseTotalSemesters))...)
	return issues.AsError()
}

func (s *FeeFormService) checkOTP(ctx context.Context, enquiryID uuid.UUID, form model.FeeForm, code string) (*time.Time, error) {
	if !s.RequireOTP && form.OtpTarget == "" {
		return nil, nil
	}
	if form.OtpTarget == "" {
		return nil, helper.NewValidationError(map[string][]string{"otpTarget": {"OTP target is required"}})
	}
	if strings.TrimSpace(code) == "" {
		return nil, helper.NewValidationError(map[string][]string{"otpCode": {"OTP code is required"}})
	}
	if s.OTP == nil {
		return nil, errors.Wrap(helper.ErrUnavailable, "otp store not configured")
	}
	ok, err := s.OTP.Verify(ctx, enquiryID, form.OtpTarget, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, helper.NewValidationError(map[string][]string{"otpCode": {"Invalid or expired code"}})
	}
	at := s.Now()
	return &at, nil
}

// applyForm copies the submitted form onto rec and recomputes the sums.
func applyForm(rec *model.StudentFeeModel, form model.FeeForm) {
	other := make([]model.FeeLineItem, 0, len(form.OtherFees))
	total := decimal.Zero
	toa := decimal.Zero
	for _, it := range form.OtherFees {
		line := model.FeeLineItem{Type: it.Type, FinalFee: copyNum(it.FinalFee), FeesDepositedTOA: copyNum(it.FeesDepositedTOA)}
		if it.Remarks != nil && strings.TrimSpace(*it.Remarks) != "" {
			r := strings.TrimSpace(*it.Remarks)
			line.Remarks = &r
		}
		if line.FinalFee != nil {
			total = total.Add(decimal.NewFromFloat(*line.FinalFee))
		}
		if line.FeesDepositedTOA != nil {
			toa = toa.Add(decimal.NewFromFloat(*line.FeesDepositedTOA))
		}
		other = append(other, line)
	}
	sems := make([]model.SemesterFee, 0, len(form.SemWiseFees))
	for _, sf := range form.SemWiseFees {
		v := copyNum(sf.FinalFee)
		if v != nil {
			total = total.Add(decimal.NewFromFloat(*v))
		}
		sems = append(sems, model.SemesterFee{FinalFee: v})
	}

	rec.StudentFeeOtherFees = datatypes.NewJSONType(other)
	rec.StudentFeeSemWiseFees = datatypes.NewJSONType(sems)
	rec.StudentFeeTotalAmount = total.Round(2)
	rec.StudentFeeTOAAmount = toa.Round(2)
	rec.StudentFeeClearanceDate = nil
	if t, ok := ParseClearanceDate(form.FeesClearanceDate); ok {
		rec.StudentFeeClearanceDate = &t
	}
	rec.StudentFeeCounsellors = append([]string{}, nonEmpty(form.Counsellor)...)
	rec.StudentFeeTelecallers = append([]string{}, nonEmpty(form.Telecaller)...)
	rec.StudentFeeRemarks = nil
	if r := strings.TrimSpace(form.Remarks); r != "" {
		rec.StudentFeeRemarks = &r
	}
	rec.StudentFeeConfirmationCheck = form.ConfirmationCheck
	rec.StudentFeeOTPTarget = nil
	if form.OtpTarget != "" {
		t := form.OtpTarget
		rec.StudentFeeOTPTarget = &t
	}
}

// Submit turns the form into the enquiry's final fee record.
func (s *FeeFormService) Submit(ctx context.Context, enquiryID uuid.UUID, form model.FeeForm, otpCode string, actor *uuid.UUID) (*model.StudentFeeModel, error) {
	sc, err := s.load(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	if !feeOpenStatuses[sc.enquiry.EnquiryStatus] {
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "enquiry is %s", sc.enquiry.EnquiryStatus)
	}
	existing, err := s.Repo.FindFinalByEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Wrap(helper.ErrConflict, "fees already finalised for this enquiry")
	}
	if err := s.validateFinal(sc, form); err != nil {
		return nil, err
	}
	verifiedAt, err := s.checkOTP(ctx, enquiryID, form, otpCode)
	if err != nil {
		return nil, err
	}

	rec := &model.StudentFeeModel{
		StudentFeeEnquiryID:     enquiryID,
		StudentFeeOTPVerifiedAt: verifiedAt,
		StudentFeeCreatedBy:     actor,
	}
	applyForm(rec, form)
	if err := s.Repo.Finalize(ctx, rec); err != nil {
		return nil, err
	}

	logger.Info("fees finalised",
		zap.String("enquiry_id", enquiryID.String()),
		zap.String("student_fee_id", rec.StudentFeeID.String()),
		zap.String("total", rec.StudentFeeTotalAmount.StringFixed(2)),
	)
	if s.AfterFinalize != nil {
		if err := s.AfterFinalize(ctx, enquiryID); err != nil {
			logger.Warn("after finalize hook", zap.String("enquiry_id", enquiryID.String()), zap.Error(err))
		}
	}
	return rec, nil
}

// UpdateFinal replaces the fee lines of a final record under the same rules.
func (s *FeeFormService) UpdateFinal(ctx context.Context, feeID uuid.UUID, form model.FeeForm) (*model.StudentFeeModel, error) {
	rec, err := s.Repo.FindFinal(ctx, feeID)
	if err != nil {
		return nil, err
	}
	sc, err := s.load(ctx, rec.StudentFeeEnquiryID)
	if err != nil {
		return nil, err
	}
	switch sc.enquiry.EnquiryStatus {
	case enquiryModel.EnquiryStatusDropped, enquiryModel.EnquiryStatusRejected:
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "enquiry is %s", sc.enquiry.EnquiryStatus)
	}
	if err := s.validateFinal(sc, form); err != nil {
		return nil, err
	}

	verifiedAt := rec.StudentFeeOTPVerifiedAt
	applyForm(rec, form)
	rec.StudentFeeOTPVerifiedAt = verifiedAt
	if err := s.Repo.UpdateFinal(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *FeeFormService) GetFinal(ctx context.Context, feeID uuid.UUID) (*model.StudentFeeModel, error) {
	return s.Repo.FindFinal(ctx, feeID)
}

/* =========================================================
   OTP
========================================================= */

// RequestOTP mails a fresh confirmation code to the student or father.
func (s *FeeFormService) RequestOTP(ctx context.Context, enquiryID uuid.UUID, target string) (*dto.OTPSentResponse, error) {
	if !model.ValidOTPTarget(target) {
		return nil, helper.NewValidationError(map[string][]string{"target": {"target must be student or father"}})
	}
	if s.OTP == nil || s.Mail == nil {
		return nil, errors.Wrap(helper.ErrUnavailable, "otp delivery not configured")
	}
	enq, err := s.Repo.GetEnquiry(ctx, enquiryID)
	if err != nil {
		return nil, err
	}

	name := enq.EnquiryStudentName
	email := enq.EnquiryEmail
	if target == model.OTPTargetFather {
		email = enq.EnquiryFatherEmail
		if enq.EnquiryFatherName != nil {
			name = *enq.EnquiryFatherName
		}
	}
	if email == nil || strings.TrimSpace(*email) == "" {
		return nil, errors.Wrapf(helper.ErrInvalidInput, "no %s email on file", target)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(*email))
	if err != nil {
		return nil, errors.Wrapf(helper.ErrInvalidInput, "invalid %s email", target)
	}
	addr.Name = name

	code, err := s.OTP.Issue(ctx, enquiryID, target)
	if err != nil {
		return nil, err
	}
	ttl := s.OTPTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	minutes := int(ttl.Minutes())
	msg := mailer.Message{
		To:      []mail.Address{*addr},
		Subject: "Fee confirmation code",
		Text: "Your fee confirmation code for enquiry " + enq.EnquiryNo + " is " + code +
			". It expires in " + strconv.Itoa(minutes) + " minutes.",
	}
	if err := s.Mail.Send(ctx, msg); err != nil {
		return nil, errors.Wrap(err, "send otp")
	}
	return &dto.OTPSentResponse{
		Target:      target,
		Destination: MaskEmail(addr.Address),
		ExpiresIn:   int(ttl.Seconds()),
	}, nil
}

// MaskEmail keeps the first letter of the local part: "r****@mail.com".
func MaskEmail(addr string) string {
	at := strings.LastIndex(addr, "@")
	if at <= 0 {
		return "****"
	}
	return addr[:1] + strings.Repeat("*", 4) + addr[at:]
}

