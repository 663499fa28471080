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

	courseModel "admissions_backend/internals/features/academics/courses/model"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	payModel "admissions_backend/internals/features/finance/payments/model"
	feeModel "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
)

type fakeRenderer struct {
	html string
}

func (f *fakeRenderer) Render(_ context.Context, html string) ([]byte, error) {
	f.html = html
	return []byte("%PDF-1.4 fake"), nil
}

func str(s string) *string { return &s }

func fixtures() (payModel.PaymentModel, feeModel.StudentFeeModel, enquiryModel.EnquiryModel, courseModel.CourseModel) {
	paidAt := time.Date(2024, 7, 3, 11, 0, 0, 0, time.UTC)
	semester := int16(1)
	enq := enquiryModel.EnquiryModel{
		EnquiryID:          uuid.New(),
		EnquiryNo:          "ENQ/2024-25/0007",
		EnquirySession:     "2024-25",
		EnquiryStudentName: "Asha <Verma>",
		EnquiryPhone:       "9876543210",
		EnquiryEmail:       str("asha@example.com"),
		EnquiryFatherName:  str("Ramesh Verma"),
		EnquiryCity:        str("Lucknow"),
		EnquiryState:       str("Uttar Pradesh"),
		EnquiryQualifications: datatypes.NewJSONType([]enquiryModel.Qualification{
			{Exam: "12th", Board: "CBSE", PassingYear: 2024, Percentage: feeModel.Float(88.4)},
			{Exam: "Diploma", Board: "BTE", PassingYear: 2024, ResultAwaited: true},
		}),
		EnquiryEntranceExams: datatypes.NewJSONType([]enquiryModel.EntranceExam{}),
	}
	rec := feeModel.StudentFeeModel{
		StudentFeeID:        uuid.New(),
		StudentFeeEnquiryID: enq.EnquiryID,
		StudentFeeOtherFees: datatypes.NewJSONType([]feeModel.FeeLineItem{
			{Type: feeModel.FeeTypeHostel, FinalFee: feeModel.Float(30000), FeesDepositedTOA: feeModel.Float(5000)},
			{Type: feeModel.FeeTypeUniform},
		}),
		StudentFeeSemWiseFees: datatypes.NewJSONType([]feeModel.SemesterFee{
			{FinalFee: feeModel.Float(45000)}, {FinalFee: feeModel.Float(45000)},
		}),
		StudentFeeTotalAmount: decimal.NewFromInt(120000),
		StudentFeeTOAAmount:   decimal.NewFromInt(5000),
	}
	p := payModel.PaymentModel{
		PaymentID:           uuid.New(),
		PaymentStudentFeeID: rec.StudentFeeID,
		PaymentEnquiryID:    enq.EnquiryID,
		PaymentFeeHead:      payModel.FeeHeadSemester,
		PaymentSemester:     &semester,
		PaymentAmount:       decimal.RequireFromString("45000.50"),
		PaymentMethod:       payModel.PaymentMethodCheque,
		PaymentStatus:       payModel.PaymentStatusPaid,
		PaymentReferenceNo:  str("CHQ-001122"),
		PaymentReceiptNo:    str("RCPT/202407/00012"),
		PaymentPaidAt:       &paidAt,
	}
	course := courseModel.CourseModel{CourseCode: "BCA", CourseName: "Bachelor of Computer Applications"}
	return p, rec, enq, course
}

func TestFeeHeadLabel(t *testing.T) {
	two := int16(2)
	assert.Equal(t, "Semester 2 Fee", FeeHeadLabel(payModel.FeeHeadSemester, &two))
	assert.Equal(t, "Semester Fee", FeeHeadLabel(payModel.FeeHeadSemester, nil))
	assert.Equal(t, "Hostel Fee", FeeHeadLabel("HOSTEL", nil))
	assert.Equal(t, "MISC", FeeHeadLabel("MISC", nil))
}

func TestBuildReceiptData(t *testing.T) {
	p, rec, enq, course := fixtures()
	d := BuildReceiptData("City College", p, rec, enq, course, []payModel.PaymentModel{p})

	assert.Equal(t, "RCPT/202407/00012", d.ReceiptNo)
	assert.Equal(t, "03 Jul 2024", d.PaidOn)
	assert.Equal(t, "Semester 1 Fee", d.FeeHead)
	assert.Equal(t, "Cheque", d.Method)
	assert.Equal(t, "CHQ-001122", d.Reference)
	assert.Equal(t, "45,000.50", d.Amount)
	assert.Equal(t, "Forty Five Thousand Rupees and Fifty Paise Only", d.AmountInWords)
	assert.Equal(t, "1,20,000.00", d.TotalFees)
	assert.Equal(t, "45,000.50", d.PaidToDate)
	assert.Equal(t, "69,999.50", d.Outstanding)
	assert.Equal(t, "BCA Bachelor of Computer Applications", d.CourseName)
}

func TestRenderReceiptHTMLEscapes(t *testing.T) {
	p, rec, enq, course := fixtures()
	html, err := RenderReceiptHTML(BuildReceiptData("City College", p, rec, enq, course, nil))
	require.NoError(t, err)
	assert.Contains(t, html, "RCPT/202407/00012")
	assert.Contains(t, html, "Asha &lt;Verma&gt;")
	assert.NotContains(t, html, "Asha <Verma>")
}

func TestReceiptFilename(t *testing.T) {
	assert.Equal(t, "RCPT-202407-00012.pdf", ReceiptFilename("RCPT/202407/00012"))
}

func TestBuildAdmissionFormData(t *testing.T) {
	_, rec, enq, course := fixtures()

	d := BuildAdmissionFormData("City College", enq, course, nil)
	assert.False(t, d.HasFees)
	assert.Equal(t, "Lucknow, Uttar Pradesh", d.Address)
	require.Len(t, d.Qualifications, 2)
	assert.Equal(t, "88.40", d.Qualifications[0].Percentage)
	assert.Equal(t, "Awaited", d.Qualifications[1].Percentage)
	assert.Empty(t, d.EntranceExams)

	d = BuildAdmissionFormData("City College", enq, course, &rec)
	assert.True(t, d.HasFees)
	require.Len(t, d.OtherFees, 1)
	assert.Equal(t, "Hostel Fee", d.OtherFees[0].Label)
	assert.Equal(t, "5,000.00", d.OtherFees[0].Deposited)
	require.Len(t, d.SemesterFees, 2)
	assert.Equal(t, "Semester 2", d.SemesterFees[1].Label)
	assert.Equal(t, "1,20,000.00", d.TotalFees)
}

func TestRenderUsesRenderer(t *testing.T) {
	_, rec, enq, course := fixtures()
	fr := &fakeRenderer{}
	svc := &ReceiptService{PDF: fr}

	out, err := svc.render(context.Background(), "admission form", BuildAdmissionFormData("City College", enq, course, &rec))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(out))
	assert.Contains(t, fr.html, "ENQ/2024-25/0007")
	assert.Contains(t, fr.html, "Fee Structure")
}

func TestRenderWithoutRenderer(t *testing.T) {
	svc := &ReceiptService{}
	_, err := svc.render(context.Background(), "receipt", ReceiptData{})
	assert.True(t, errors.Is(err, helper.ErrUnavailable))
}
