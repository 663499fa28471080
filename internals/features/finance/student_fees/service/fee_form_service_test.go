package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	courseModel "admissions_backend/internals/features/academics/courses/model"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	"admissions_backend/internals/features/finance/student_fees/dto"
	model "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/helpers/mailer"
)

/* ---------- in-memory repository ---------- */

type memRepo struct {
	enquiries map[uuid.UUID]*enquiryModel.EnquiryModel
	courses   map[uuid.UUID]*courseModel.CourseModel
	sem       []float64
	other     []model.OriginalOtherFee
	drafts    map[uuid.UUID]*model.StudentFeeDraftModel
	finals    map[uuid.UUID]*model.StudentFeeModel
	saves     int
}

func newMemRepo() *memRepo {
	return &memRepo{
		enquiries: map[uuid.UUID]*enquiryModel.EnquiryModel{},
		courses:   map[uuid.UUID]*courseModel.CourseModel{},
		drafts:    map[uuid.UUID]*model.StudentFeeDraftModel{},
		finals:    map[uuid.UUID]*model.StudentFeeModel{},
	}
}

func (r *memRepo) GetEnquiry(_ context.Context, id uuid.UUID) (*enquiryModel.EnquiryModel, error) {
	if e, ok := r.enquiries[id]; ok {
		return e, nil
	}
	return nil, errors.Wrap(helper.ErrNotFound, "enquiry")
}

func (r *memRepo) GetCourse(_ context.Context, id uuid.UUID) (*courseModel.CourseModel, error) {
	if c, ok := r.courses[id]; ok {
		return c, nil
	}
	return nil, errors.Wrap(helper.ErrNotFound, "course")
}

func (r *memRepo) SemesterSchedule(context.Context, uuid.UUID, string, int) ([]float64, error) {
	return r.sem, nil
}

func (r *memRepo) OtherFeeSchedule(context.Context, uuid.UUID, string) ([]model.OriginalOtherFee, error) {
	return r.other, nil
}

func (r *memRepo) FindOpenDraft(_ context.Context, enquiryID uuid.UUID) (*model.StudentFeeDraftModel, error) {
	for _, d := range r.drafts {
		if d.StudentFeeDraftEnquiryID == enquiryID && d.IsOpen() {
			return d, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindDraft(_ context.Context, id uuid.UUID) (*model.StudentFeeDraftModel, error) {
	if d, ok := r.drafts[id]; ok {
		return d, nil
	}
	return nil, errors.Wrap(helper.ErrNotFound, "draft")
}

func (r *memRepo) SaveDraft(_ context.Context, d *model.StudentFeeDraftModel) error {
	r.saves++
	if d.StudentFeeDraftID == uuid.Nil {
		d.StudentFeeDraftID = uuid.New()
	}
	r.drafts[d.StudentFeeDraftID] = d
	return nil
}

func (r *memRepo) FindFinalByEnquiry(_ context.Context, enquiryID uuid.UUID) (*model.StudentFeeModel, error) {
	for _, f := range r.finals {
		if f.StudentFeeEnquiryID == enquiryID {
			return f, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindFinal(_ context.Context, id uuid.UUID) (*model.StudentFeeModel, error) {
	if f, ok := r.finals[id]; ok {
		return f, nil
	}
	return nil, errors.Wrap(helper.ErrNotFound, "student fee")
}

func (r *memRepo) Finalize(ctx context.Context, rec *model.StudentFeeModel) error {
	rec.StudentFeeID = uuid.New()
	r.finals[rec.StudentFeeID] = rec
	if d, _ := r.FindOpenDraft(ctx, rec.StudentFeeEnquiryID); d != nil {
		now := time.Now()
		d.StudentFeeDraftSupersededAt = &now
	}
	e := r.enquiries[rec.StudentFeeEnquiryID]
	e.EnquiryStatus = enquiryModel.EnquiryStatusFeesFinalized
	e.EnquiryStage = 4
	return nil
}

func (r *memRepo) UpdateFinal(_ context.Context, rec *model.StudentFeeModel) error {
	r.finals[rec.StudentFeeID] = rec
	return nil
}

/* ---------- fake OTP store ---------- */

type fakeOTP struct {
	code   string
	issued []string
}

func (o *fakeOTP) Issue(_ context.Context, _ uuid.UUID, target string) (string, error) {
	o.issued = append(o.issued, target)
	return o.code, nil
}

func (o *fakeOTP) Verify(_ context.Context, _ uuid.UUID, _ string, code string) (bool, error) {
	return code == o.code, nil
}

/* ---------- fixtures ---------- */

type fixture struct {
	svc     *FeeFormService
	repo    *memRepo
	otp     *fakeOTP
	mail    *mailer.Memory
	enquiry *enquiryModel.EnquiryModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newMemRepo()
	course := &courseModel.CourseModel{CourseID: uuid.New(), CourseCode: "BCA", CourseName: "Bachelor of Computer Applications", CourseTotalSemesters: 2}
	repo.courses[course.CourseID] = course

	email := "riya@example.com"
	father := "Mahesh Sharma"
	enq := &enquiryModel.EnquiryModel{
		EnquiryID:          uuid.New(),
		EnquiryNo:          "ENQ/2025-26/0001",
		EnquirySession:     "2025-26",
		EnquiryStudentName: "Riya Sharma",
		EnquiryEmail:       &email,
		EnquiryFatherName:  &father,
		EnquiryCourseID:    course.CourseID,
		EnquiryStatus:      enquiryModel.EnquiryStatusInProgress,
		EnquiryCounsellors: []string{"Asha"},
	}
	repo.enquiries[enq.EnquiryID] = enq
	repo.sem = []float64{40000, math.NaN()}
	repo.other = []model.OriginalOtherFee{
		{Type: "Prospectus Fee", Amount: f(1000)},
		{Type: "TRANSPORT", Amount: f(6000), Optional: true},
	}

	otp := &fakeOTP{code: "123456"}
	mail := &mailer.Memory{}
	svc := &FeeFormService{Repo: repo, OTP: otp, Mail: mail, OTPTTL: 5 * time.Minute, Now: time.Now}
	return &fixture{svc: svc, repo: repo, otp: otp, mail: mail, enquiry: enq}
}

func validForm() model.FeeForm {
	return model.FeeForm{
		OtherFees: []model.FeeLineItem{
			{Type: model.FeeTypeProspectus, FinalFee: f(800), FeesDepositedTOA: f(800)},
			{Type: model.FeeTypeTransport, FinalFee: f(7000)},
		},
		SemWiseFees:       []model.SemesterFee{{FinalFee: f(35000)}, {FinalFee: f(42000)}},
		FeesClearanceDate: "2025-07-01",
		Counsellor:        []string{"Asha"},
		ConfirmationCheck: true,
	}
}

/* ---------- tests ---------- */

func TestHydrate_FromSchedule(t *testing.T) {
	fx := newFixture(t)
	got, err := fx.svc.Hydrate(context.Background(), fx.enquiry.EnquiryID)
	require.NoError(t, err)

	assert.Equal(t, dto.SourceSchedule, got.Source)
	assert.Equal(t, "BCA", got.Course.Code)
	require.Len(t, got.OtherFees, 2)

	p := got.OtherFees[0]
	assert.Equal(t, model.FeeTypeProspectus, p.Type)
	assert.Equal(t, "Prospectus Fee", p.Label)
	assert.Equal(t, model.ScheduleOneTime, p.Schedule)
	assert.Equal(t, 1000.0, *p.FinalFee)
	assert.Equal(t, 0, p.DiscountPercent)

	tr := got.OtherFees[1]
	assert.True(t, tr.Optional)
	assert.Nil(t, tr.FinalFee)

	require.Len(t, got.SemWiseFees, 2)
	assert.Equal(t, 40000.0, *got.SemWiseFees[0].FinalFee)
	assert.Nil(t, got.SemWiseFees[1].OriginalFee)
	assert.Equal(t, []string{"Asha"}, got.Counsellor)
	assert.Equal(t, "41000", got.Totals.Final.String())
}

func TestHydrate_DraftOverridesSchedule(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{
		OtherFees:  []model.FeeLineItem{{Type: model.FeeTypeProspectus, FinalFee: f(500)}, {Type: model.FeeTypeUniform, FinalFee: f(1500)}},
		Telecaller: []string{"Vikram"},
	}, nil)
	require.NoError(t, err)

	got, err := fx.svc.Hydrate(ctx, fx.enquiry.EnquiryID)
	require.NoError(t, err)
	assert.Equal(t, dto.SourceDraft, got.Source)
	require.NotNil(t, got.DraftID)
	require.Len(t, got.OtherFees, 3)
	assert.Equal(t, 500.0, *got.OtherFees[0].FinalFee)
	assert.Equal(t, 50, got.OtherFees[0].DiscountPercent)
	assert.Equal(t, model.FeeTypeUniform, got.OtherFees[2].Type)
	assert.Nil(t, got.OtherFees[2].OriginalFee)
	assert.Equal(t, []string{"Vikram"}, got.Telecaller)
}

func TestHydrate_DraftKeepsSemesterNumber(t *testing.T) {
	fx := newFixture(t)
	fx.repo.sem = []float64{40000, 60000}
	ctx := context.Background()
	_, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{
		SemWiseFees: []model.SemesterFee{{FinalFee: nil}, {FinalFee: f(50000)}},
	}, nil)
	require.NoError(t, err)

	got, err := fx.svc.Hydrate(ctx, fx.enquiry.EnquiryID)
	require.NoError(t, err)
	require.Len(t, got.SemWiseFees, 2)
	assert.Equal(t, 40000.0, *got.SemWiseFees[0].FinalFee)
	assert.Equal(t, 50000.0, *got.SemWiseFees[1].FinalFee)
	assert.Equal(t, 60000.0, *got.SemWiseFees[1].OriginalFee)
}

func TestMergeSemesters_Positional(t *testing.T) {
	got := mergeSemesters([]float64{40000, 60000}, []model.SemesterFee{{FinalFee: f(30000)}, {FinalFee: f(45000)}})
	require.Len(t, got, 2)
	assert.Equal(t, 30000.0, *got[0].FinalFee)
	assert.Equal(t, 45000.0, *got[1].FinalFee)
	assert.Equal(t, 25, got[1].DiscountPercent)
}

func TestSaveDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing to save", func(t *testing.T) {
		fx := newFixture(t)
		d, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{}, nil)
		require.NoError(t, err)
		assert.Nil(t, d)
		assert.Zero(t, fx.repo.saves)
	})

	t.Run("validation gates the write", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{
			OtherFees: []model.FeeLineItem{{Type: model.FeeTypeProspectus, FinalFee: f(1200)}},
		}, nil)
		var ve *helper.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "otherFees.0.finalFee")
		assert.Zero(t, fx.repo.saves)
	})

	t.Run("second save updates the open draft", func(t *testing.T) {
		fx := newFixture(t)
		first, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{Remarks: "first"}, nil)
		require.NoError(t, err)
		second, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{Remarks: "second"}, nil)
		require.NoError(t, err)
		assert.Equal(t, first.StudentFeeDraftID, second.StudentFeeDraftID)
		assert.Len(t, fx.repo.drafts, 1)
		assert.Equal(t, "second", second.StudentFeeDraftData.Data().Remarks)
	})

	t.Run("draft of another enquiry", func(t *testing.T) {
		fx := newFixture(t)
		other := &model.StudentFeeDraftModel{StudentFeeDraftID: uuid.New(), StudentFeeDraftEnquiryID: uuid.New()}
		fx.repo.drafts[other.StudentFeeDraftID] = other
		_, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, &other.StudentFeeDraftID, model.FeeForm{Remarks: "x"}, nil)
		assert.ErrorIs(t, err, helper.ErrNotFound)
	})

	t.Run("refused after final", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, validForm(), "", nil)
		require.NoError(t, err)
		_, err = fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{Remarks: "late"}, nil)
		assert.ErrorIs(t, err, helper.ErrConflict)
		assert.Equal(t, 409, helper.StatusOf(err))
	})
}

func TestUpdateDraft(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	d, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{Remarks: "v1"}, nil)
	require.NoError(t, err)

	got, err := fx.svc.UpdateDraft(ctx, d.StudentFeeDraftID, model.FeeForm{Remarks: "v2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.StudentFeeDraftData.Data().Remarks)

	_, err = fx.svc.UpdateDraft(ctx, uuid.New(), model.FeeForm{Remarks: "v3"}, nil)
	assert.ErrorIs(t, err, helper.ErrNotFound)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("finalises and supersedes the draft", func(t *testing.T) {
		fx := newFixture(t)
		d, err := fx.svc.SaveDraft(ctx, fx.enquiry.EnquiryID, nil, model.FeeForm{Remarks: "wip"}, nil)
		require.NoError(t, err)

		rec, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, validForm(), "", nil)
		require.NoError(t, err)
		assert.Equal(t, "84800", rec.StudentFeeTotalAmount.String())
		assert.Equal(t, "800", rec.StudentFeeTOAAmount.String())
		require.NotNil(t, rec.StudentFeeClearanceDate)
		assert.Equal(t, "01/07/2025", rec.StudentFeeClearanceDate.Format(model.ClearanceDateLayout))
		assert.False(t, d.IsOpen())
		assert.Equal(t, enquiryModel.EnquiryStatusFeesFinalized, fx.enquiry.EnquiryStatus)
	})

	t.Run("final record checks", func(t *testing.T) {
		fx := newFixture(t)
		form := validForm()
		form.ConfirmationCheck = false
		form.SemWiseFees = form.SemWiseFees[:1]
		_, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, form, "", nil)
		var ve *helper.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "confirmationCheck")
		assert.Contains(t, ve.Fields, "semWiseFees")
		assert.Empty(t, fx.repo.finals)
	})

	t.Run("semester cap", func(t *testing.T) {
		fx := newFixture(t)
		form := validForm()
		form.SemWiseFees[0].FinalFee = f(45000)
		_, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, form, "", nil)
		var ve *helper.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "semWiseFees.0.finalFee")
	})

	t.Run("wrong status", func(t *testing.T) {
		fx := newFixture(t)
		fx.enquiry.EnquiryStatus = enquiryModel.EnquiryStatusDropped
		_, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, validForm(), "", nil)
		assert.ErrorIs(t, err, helper.ErrInvalidTransition)
	})

	t.Run("otp required", func(t *testing.T) {
		fx := newFixture(t)
		fx.svc.RequireOTP = true
		form := validForm()
		form.OtpTarget = "student"

		_, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, form, "999999", nil)
		var ve *helper.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "otpCode")

		rec, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, form, "123456", nil)
		require.NoError(t, err)
		assert.NotNil(t, rec.StudentFeeOTPVerifiedAt)
		assert.Equal(t, "student", *rec.StudentFeeOTPTarget)
	})

	t.Run("otp required without target", func(t *testing.T) {
		fx := newFixture(t)
		fx.svc.RequireOTP = true
		_, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, validForm(), "123456", nil)
		var ve *helper.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Contains(t, ve.Fields, "otpTarget")
	})
}

func TestUpdateFinal(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	rec, err := fx.svc.Submit(ctx, fx.enquiry.EnquiryID, validForm(), "", nil)
	require.NoError(t, err)

	form := validForm()
	form.OtherFees[0].FinalFee = f(1000)
	form.Remarks = "revised"
	got, err := fx.svc.UpdateFinal(ctx, rec.StudentFeeID, form)
	require.NoError(t, err)
	assert.Equal(t, "85000", got.StudentFeeTotalAmount.String())
	assert.Equal(t, "revised", *got.StudentFeeRemarks)

	form.OtherFees[0].FinalFee = f(1001)
	_, err = fx.svc.UpdateFinal(ctx, rec.StudentFeeID, form)
	assert.Equal(t, 422, helper.StatusOf(err))

	fx.enquiry.EnquiryStatus = enquiryModel.EnquiryStatusRejected
	_, err = fx.svc.UpdateFinal(ctx, rec.StudentFeeID, validForm())
	assert.ErrorIs(t, err, helper.ErrInvalidTransition)
}

func TestRequestOTP(t *testing.T) {
	ctx := context.Background()

	t.Run("student email", func(t *testing.T) {
		fx := newFixture(t)
		got, err := fx.svc.RequestOTP(ctx, fx.enquiry.EnquiryID, "student")
		require.NoError(t, err)
		assert.Equal(t, "r****@example.com", got.Destination)
		assert.Equal(t, 300, got.ExpiresIn)

		msg, err := fx.mail.Last()
		require.NoError(t, err)
		assert.Equal(t, "riya@example.com", msg.To[0].Address)
		assert.Contains(t, msg.Text, "123456")
		assert.Contains(t, msg.Text, "ENQ/2025-26/0001")
	})

	t.Run("father without email", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.RequestOTP(ctx, fx.enquiry.EnquiryID, "father")
		assert.ErrorIs(t, err, helper.ErrInvalidInput)
		assert.Empty(t, fx.otp.issued)
	})

	t.Run("bad target", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.svc.RequestOTP(ctx, fx.enquiry.EnquiryID, "mother")
		assert.Equal(t, 422, helper.StatusOf(err))
	})
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a****@b.in", MaskEmail("abc@b.in"))
	assert.Equal(t, "****", MaskEmail("nope"))
}
