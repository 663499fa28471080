package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	courseModel "admissions_backend/internals/features/academics/courses/model"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	model "admissions_backend/internals/features/finance/student_fees/model"
	"admissions_backend/internals/features/finance/student_fees/service"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/helpers/mailer"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) GetEnquiry(ctx context.Context, id uuid.UUID) (*enquiryModel.EnquiryModel, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*enquiryModel.EnquiryModel)
	return e, args.Error(1)
}

func (m *mockRepo) GetCourse(ctx context.Context, id uuid.UUID) (*courseModel.CourseModel, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*courseModel.CourseModel)
	return c, args.Error(1)
}

func (m *mockRepo) SemesterSchedule(ctx context.Context, courseID uuid.UUID, session string, n int) ([]float64, error) {
	args := m.Called(ctx, courseID, session, n)
	s, _ := args.Get(0).([]float64)
	return s, args.Error(1)
}

func (m *mockRepo) OtherFeeSchedule(ctx context.Context, courseID uuid.UUID, session string) ([]model.OriginalOtherFee, error) {
	args := m.Called(ctx, courseID, session)
	s, _ := args.Get(0).([]model.OriginalOtherFee)
	return s, args.Error(1)
}

func (m *mockRepo) FindOpenDraft(ctx context.Context, enquiryID uuid.UUID) (*model.StudentFeeDraftModel, error) {
	args := m.Called(ctx, enquiryID)
	d, _ := args.Get(0).(*model.StudentFeeDraftModel)
	return d, args.Error(1)
}

func (m *mockRepo) FindDraft(ctx context.Context, id uuid.UUID) (*model.StudentFeeDraftModel, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*model.StudentFeeDraftModel)
	return d, args.Error(1)
}

func (m *mockRepo) SaveDraft(ctx context.Context, d *model.StudentFeeDraftModel) error {
	return m.Called(ctx, d).Error(0)
}

func (m *mockRepo) FindFinalByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*model.StudentFeeModel, error) {
	args := m.Called(ctx, enquiryID)
	r, _ := args.Get(0).(*model.StudentFeeModel)
	return r, args.Error(1)
}

func (m *mockRepo) FindFinal(ctx context.Context, id uuid.UUID) (*model.StudentFeeModel, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(*model.StudentFeeModel)
	return r, args.Error(1)
}

func (m *mockRepo) Finalize(ctx context.Context, rec *model.StudentFeeModel) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *mockRepo) UpdateFinal(ctx context.Context, rec *model.StudentFeeModel) error {
	return m.Called(ctx, rec).Error(0)
}

type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

func newTestApp(repo *mockRepo) *fiber.App {
	svc := &service.FeeFormService{Repo: repo, Mail: &mailer.Memory{}}
	h := NewStudentFeeHandler(svc)

	app := fiber.New(fiber.Config{ErrorHandler: helper.FiberErrorHandler})
	app.Get("/fee-types", h.FeeTypes)
	app.Post("/fees/discount", h.Discount)
	app.Get("/enquiries/:id/fees/form", h.GetForm)
	app.Post("/enquiries/:id/fees/draft", h.SaveDraft)
	app.Get("/student-fees/:id", h.GetFinal)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	var env envelope
	raw, _ := io.ReadAll(res.Body)
	_ = json.Unmarshal(raw, &env)
	return res.StatusCode, env
}

func stubSchedules(repo *mockRepo, enquiryID uuid.UUID) {
	course := &courseModel.CourseModel{CourseID: uuid.New(), CourseCode: "BBA", CourseTotalSemesters: 1}
	repo.On("GetEnquiry", mock.Anything, enquiryID).Return(&enquiryModel.EnquiryModel{
		EnquiryID: enquiryID, EnquirySession: "2025-26", EnquiryCourseID: course.CourseID,
		EnquiryStatus: enquiryModel.EnquiryStatusContacted,
	}, nil)
	repo.On("GetCourse", mock.Anything, course.CourseID).Return(course, nil)
	repo.On("SemesterSchedule", mock.Anything, course.CourseID, "2025-26", 1).Return([]float64{30000}, nil)
	repo.On("OtherFeeSchedule", mock.Anything, course.CourseID, "2025-26").Return([]model.OriginalOtherFee{
		{Type: "PROSPECTUS", Amount: model.Float(1000)},
	}, nil)
	repo.On("FindFinalByEnquiry", mock.Anything, enquiryID).Return(nil, nil)
}

func TestFeeTypes(t *testing.T) {
	status, env := do(t, newTestApp(&mockRepo{}), "GET", "/fee-types", "")
	require.Equal(t, fiber.StatusOK, status)
	var types []map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &types))
	assert.Len(t, types, len(model.AllFeeTypes))
	assert.Equal(t, "SEM1FEE", types[0]["type"])
	assert.Equal(t, "Sem-wise", types[0]["schedule"])
}

func TestDiscount(t *testing.T) {
	app := newTestApp(&mockRepo{})
	status, env := do(t, app, "POST", "/fees/discount", `{"original":1000,"final":750}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"original":1000,"final":750,"discountPercent":25}`, string(env.Data))

	status, _ = do(t, app, "POST", "/fees/discount", `{"original":"1000"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestGetForm(t *testing.T) {
	t.Run("bad id", func(t *testing.T) {
		status, _ := do(t, newTestApp(&mockRepo{}), "GET", "/enquiries/nope/fees/form", "")
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("unknown enquiry", func(t *testing.T) {
		repo := &mockRepo{}
		id := uuid.New()
		repo.On("GetEnquiry", mock.Anything, id).Return(nil, errors.Wrap(helper.ErrNotFound, "enquiry not found"))
		status, env := do(t, newTestApp(repo), "GET", "/enquiries/"+id.String()+"/fees/form", "")
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.False(t, env.Success)
	})

	t.Run("from schedule", func(t *testing.T) {
		repo := &mockRepo{}
		id := uuid.New()
		stubSchedules(repo, id)
		repo.On("FindOpenDraft", mock.Anything, id).Return(nil, nil)

		status, env := do(t, newTestApp(repo), "GET", "/enquiries/"+id.String()+"/fees/form", "")
		require.Equal(t, fiber.StatusOK, status)
		var form struct {
			Source    string `json:"source"`
			OtherFees []struct {
				Type     string  `json:"type"`
				Label    string  `json:"label"`
				FinalFee float64 `json:"finalFee"`
			} `json:"otherFees"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &form))
		assert.Equal(t, "schedule", form.Source)
		require.Len(t, form.OtherFees, 1)
		assert.Equal(t, "Prospectus Fee", form.OtherFees[0].Label)
		assert.Equal(t, 1000.0, form.OtherFees[0].FinalFee)
		repo.AssertExpectations(t)
	})
}

func TestSaveDraftEndpoint(t *testing.T) {
	t.Run("validation errors keyed by form path", func(t *testing.T) {
		repo := &mockRepo{}
		id := uuid.New()
		stubSchedules(repo, id)

		body := `{"otherFees":[{"type":"PROSPECTUS","finalFee":800,"feesDepositedTOA":900}]}`
		status, env := do(t, newTestApp(repo), "POST", "/enquiries/"+id.String()+"/fees/draft", body)
		require.Equal(t, fiber.StatusUnprocessableEntity, status)
		assert.Contains(t, env.Errors, "otherFees.0.feesDepositedTOA")
		repo.AssertNotCalled(t, "SaveDraft", mock.Anything, mock.Anything)
	})

	t.Run("nothing to save", func(t *testing.T) {
		repo := &mockRepo{}
		id := uuid.New()
		stubSchedules(repo, id)

		status, env := do(t, newTestApp(repo), "POST", "/enquiries/"+id.String()+"/fees/draft", `{"remarks":"  "}`)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "nothing to save", env.Message)
		repo.AssertNotCalled(t, "SaveDraft", mock.Anything, mock.Anything)
	})

	t.Run("creates a draft", func(t *testing.T) {
		repo := &mockRepo{}
		id := uuid.New()
		stubSchedules(repo, id)
		repo.On("FindOpenDraft", mock.Anything, id).Return(nil, nil)
		repo.On("SaveDraft", mock.Anything, mock.MatchedBy(func(d *model.StudentFeeDraftModel) bool {
			return d.StudentFeeDraftEnquiryID == id && len(d.StudentFeeDraftData.Data().OtherFees) == 1
		})).Return(nil)

		body := `{"otherFees":[{"type":"PROSPECTUS","finalFee":800,"feesDepositedTOA":800},{"type":"BOOKBANK","finalFee":-5}]}`
		status, env := do(t, newTestApp(repo), "POST", "/enquiries/"+id.String()+"/fees/draft", body)
		require.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "draft saved", env.Message)
		repo.AssertExpectations(t)
	})
}

func TestGetFinalNotFound(t *testing.T) {
	repo := &mockRepo{}
	id := uuid.New()
	repo.On("FindFinal", mock.Anything, id).Return(nil, errors.Wrap(helper.ErrNotFound, "student fee not found"))
	status, _ := do(t, newTestApp(repo), "GET", "/student-fees/"+id.String(), "")
	assert.Equal(t, fiber.StatusNotFound, status)
}
