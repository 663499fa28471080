package service

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	courseModel "admissions_backend/internals/features/academics/courses/model"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	payModel "admissions_backend/internals/features/finance/payments/model"
	payService "admissions_backend/internals/features/finance/payments/service"
	feeModel "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/helpers/mailer"
	"admissions_backend/internals/helpers/pdf"
	"admissions_backend/internals/helpers/storage"
	"admissions_backend/internals/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const dateLayout = "02 Jan 2006"

type ReceiptService struct {
	DB          *gorm.DB
	PDF         pdf.Renderer
	Store       storage.Store // optional
	Mail        mailer.Mailer // optional
	Institution string
	Now         func() time.Time
}

func New(db *gorm.DB, renderer pdf.Renderer, store storage.Store, m mailer.Mailer, institution string) *ReceiptService {
	return &ReceiptService{DB: db, PDF: renderer, Store: store, Mail: m, Institution: institution, Now: time.Now}
}

// ReceiptData is everything printed on a fee receipt, already formatted.
type ReceiptData struct {
	Institution   string
	ReceiptNo     string
	PaidOn        string
	EnquiryNo     string
	Session       string
	StudentName   string
	FatherName    string
	CourseName    string
	FeeHead       string
	Method        string
	Reference     string
	Amount        string
	AmountInWords string
	TotalFees     string
	DepositedTOA  string
	PaidToDate    string
	Outstanding   string
}

// FeeHeadLabel is the printable name of a payment head.
func FeeHeadLabel(head string, semester *int16) string {
	if head == payModel.FeeHeadSemester {
		if semester != nil {
			return "Semester " + strconv.Itoa(int(*semester)) + " Fee"
		}
		return "Semester Fee"
	}
	if t, ok := feeModel.ParseFeeType(head); ok {
		return feeModel.DisplayLabel(t)
	}
	return head
}

func methodLabel(m payModel.PaymentMethod) string {
	switch m {
	case payModel.PaymentMethodCash:
		return "Cash"
	case payModel.PaymentMethodCheque:
		return "Cheque"
	case payModel.PaymentMethodUPI:
		return "UPI"
	case payModel.PaymentMethodOnline:
		return "Online"
	}
	return string(m)
}

// BuildReceiptData formats one paid payment. all holds every payment on the fee record.
func BuildReceiptData(institution string, p payModel.PaymentModel, rec feeModel.StudentFeeModel, enq enquiryModel.EnquiryModel, course courseModel.CourseModel, all []payModel.PaymentModel) ReceiptData {
	bal := payService.ComputeBalance(&rec, all)
	d := ReceiptData{
		Institution:   institution,
		EnquiryNo:     enq.EnquiryNo,
		Session:       enq.EnquirySession,
		StudentName:   enq.EnquiryStudentName,
		FatherName:    deref(enq.EnquiryFatherName),
		CourseName:    strings.TrimSpace(course.CourseCode + " " + course.CourseName),
		FeeHead:       FeeHeadLabel(p.PaymentFeeHead, p.PaymentSemester),
		Method:        methodLabel(p.PaymentMethod),
		Amount:        helper.FormatINR(p.PaymentAmount),
		AmountInWords: helper.AmountInWords(p.PaymentAmount),
		TotalFees:     helper.FormatINR(bal.TotalFees),
		DepositedTOA:  helper.FormatINR(bal.DepositedTOA),
		PaidToDate:    helper.FormatINR(bal.Paid),
		Outstanding:   helper.FormatINR(bal.Outstanding),
	}
	if p.PaymentReceiptNo != nil {
		d.ReceiptNo = *p.PaymentReceiptNo
	}
	if p.PaymentPaidAt != nil {
		d.PaidOn = p.PaymentPaidAt.Format(dateLayout)
	}
	switch {
	case p.PaymentReferenceNo != nil:
		d.Reference = *p.PaymentReferenceNo
	case p.PaymentGatewayReference != nil:
		d.Reference = *p.PaymentGatewayReference
	}
	return d
}

func RenderReceiptHTML(d ReceiptData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "receipt.html", d); err != nil {
		return "", errors.Wrap(err, "render receipt")
	}
	return buf.String(), nil
}

type receiptBundle struct {
	payment payModel.PaymentModel
	enquiry enquiryModel.EnquiryModel
	data    ReceiptData
}

func (s *ReceiptService) loadReceipt(ctx context.Context, paymentID uuid.UUID) (*receiptBundle, error) {
	db := s.DB.WithContext(ctx)
	var b receiptBundle
	if err := db.Where("payment_id = ?", paymentID).Take(&b.payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrNotFound, "payment not found")
		}
		return nil, errors.Wrap(err, "load payment")
	}
	if b.payment.PaymentStatus != payModel.PaymentStatusPaid || b.payment.PaymentReceiptNo == nil {
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "payment is %s, no receipt yet", b.payment.PaymentStatus)
	}
	var rec feeModel.StudentFeeModel
	if err := db.Where("student_fee_id = ?", b.payment.PaymentStudentFeeID).Take(&rec).Error; err != nil {
		return nil, errors.Wrap(err, "load fee record")
	}
	if err := db.Unscoped().Where("enquiry_id = ?", b.payment.PaymentEnquiryID).Take(&b.enquiry).Error; err != nil {
		return nil, errors.Wrap(err, "load enquiry")
	}
	var course courseModel.CourseModel
	if err := db.Unscoped().Where("course_id = ?", b.enquiry.EnquiryCourseID).Take(&course).Error; err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	var all []payModel.PaymentModel
	if err := db.Where("payment_student_fee_id = ?", rec.StudentFeeID).Find(&all).Error; err != nil {
		return nil, errors.Wrap(err, "list payments")
	}
	b.data = BuildReceiptData(s.Institution, b.payment, rec, b.enquiry, course, all)
	return &b, nil
}

// ReceiptPDF renders the receipt of a paid payment.
func (s *ReceiptService) ReceiptPDF(ctx context.Context, paymentID uuid.UUID) ([]byte, string, error) {
	b, err := s.loadReceipt(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}
	out, err := s.render(ctx, "receipt", b.data)
	if err != nil {
		return nil, "", err
	}
	return out, ReceiptFilename(b.data.ReceiptNo), nil
}

// ReceiptFilename turns RCPT/202407/00012 into RCPT-202407-00012.pdf.
func ReceiptFilename(receiptNo string) string {
	return strings.ReplaceAll(receiptNo, "/", "-") + ".pdf"
}

func (s *ReceiptService) render(ctx context.Context, kind string, d any) ([]byte, error) {
	if s.PDF == nil {
		return nil, errors.Wrap(helper.ErrUnavailable, "pdf renderer is not configured")
	}
	var (
		html string
		err  error
	)
	switch v := d.(type) {
	case ReceiptData:
		html, err = RenderReceiptHTML(v)
	case AdmissionFormData:
		html, err = RenderAdmissionFormHTML(v)
	default:
		err = errors.Errorf("unknown document %s", kind)
	}
	if err != nil {
		return nil, err
	}
	out, err := s.PDF.Render(ctx, html)
	if err != nil {
		return nil, errors.Wrap(err, "render "+kind+" pdf")
	}
	return out, nil
}

// Deliver renders the receipt, stores it and mails it to the applicant.
// Runs after a payment is paid; storage and mail are each skipped when not configured.
func (s *ReceiptService) Deliver(ctx context.Context, paymentID uuid.UUID) error {
	b, err := s.loadReceipt(ctx, paymentID)
	if err != nil {
		return err
	}
	out, err := s.render(ctx, "receipt", b.data)
	if err != nil {
		return err
	}
	name := ReceiptFilename(b.data.ReceiptNo)

	if s.Store != nil {
		key := "receipts/" + b.payment.PaymentCreatedAt.Format("200601") + "/" + storage.SanitizeFilename(name)
		url, err := s.Store.Put(ctx, key, "application/pdf", out)
		if err != nil {
			return errors.Wrap(err, "upload receipt")
		}
		if err := s.DB.WithContext(ctx).Model(&payModel.PaymentModel{}).
			Where("payment_id = ?", paymentID).
			Update("payment_receipt_url", url).Error; err != nil {
			return errors.Wrap(err, "save receipt url")
		}
	}
	if err := s.mailReceipt(ctx, b, name, out); err != nil {
		return err
	}
	logger.Info("receipt delivered",
		zap.String("payment_id", paymentID.String()),
		zap.String("receipt_no", b.data.ReceiptNo),
	)
	return nil
}

// Email sends the receipt again, on request from the fee desk.
func (s *ReceiptService) Email(ctx context.Context, paymentID uuid.UUID) error {
	b, err := s.loadReceipt(ctx, paymentID)
	if err != nil {
		return err
	}
	if b.enquiry.EnquiryEmail == nil || strings.TrimSpace(*b.enquiry.EnquiryEmail) == "" {
		return helper.NewValidationError(map[string][]string{"enquiry_email": {"applicant has no email address"}})
	}
	if s.Mail == nil {
		return errors.Wrap(helper.ErrUnavailable, "mail is not configured")
	}
	out, err := s.render(ctx, "receipt", b.data)
	if err != nil {
		return err
	}
	return s.mailReceipt(ctx, b, ReceiptFilename(b.data.ReceiptNo), out)
}

func (s *ReceiptService) mailReceipt(ctx context.Context, b *receiptBundle, filename string, body []byte) error {
	if s.Mail == nil || b.enquiry.EnquiryEmail == nil || strings.TrimSpace(*b.enquiry.EnquiryEmail) == "" {
		return nil
	}
	msg := mailer.Message{
		To:      []mail.Address{{Name: b.enquiry.EnquiryStudentName, Address: strings.TrimSpace(*b.enquiry.EnquiryEmail)}},
		Subject: "Fee receipt " + b.data.ReceiptNo,
		Text: "Dear " + b.enquiry.EnquiryStudentName + ",\n\n" +
			"We have received INR " + b.data.Amount + " towards " + b.data.FeeHead + ".\n" +
			"Your receipt " + b.data.ReceiptNo + " is attached.\n",
		Attachments: []mailer.Attachment{{Filename: filename, ContentType: "application/pdf", Content: body}},
	}
	if err := s.Mail.Send(ctx, msg); err != nil {
		return errors.Wrap(err, "mail receipt")
	}
	return nil
}

// ===== admission form =====

type FeeRow struct {
	Label     string
	Final     string
	Deposited string
}

type QualificationRow struct {
	Exam        string
	Board       string
	Institution string
	PassingYear int
	Percentage  string
}

type EntranceRow struct {
	Name   string
	RollNo string
	Year   int
	Score  string
	Rank   string
}

type AdmissionFormData struct {
	Institution    string
	EnquiryNo      string
	Session        string
	StudentName    string
	Gender         string
	DOB            string
	Phone          string
	Email          string
	FatherName     string
	MotherName     string
	Address        string
	CourseName     string
	Qualifications []QualificationRow
	EntranceExams  []EntranceRow
	HasFees        bool
	OtherFees      []FeeRow
	SemesterFees   []FeeRow
	TotalFees      string
	DepositedTOA   string
}

// BuildAdmissionFormData formats an enquiry for print. rec is nil until fees are finalized.
func BuildAdmissionFormData(institution string, enq enquiryModel.EnquiryModel, course courseModel.CourseModel, rec *feeModel.StudentFeeModel) AdmissionFormData {
	d := AdmissionFormData{
		Institution: institution,
		EnquiryNo:   enq.EnquiryNo,
		Session:     enq.EnquirySession,
		StudentName: enq.EnquiryStudentName,
		Gender:      deref(enq.EnquiryGender),
		Phone:       enq.EnquiryPhone,
		Email:       deref(enq.EnquiryEmail),
		FatherName:  deref(enq.EnquiryFatherName),
		MotherName:  deref(enq.EnquiryMotherName),
		CourseName:  strings.TrimSpace(course.CourseCode + " " + course.CourseName),
	}
	if enq.EnquiryDOB != nil {
		d.DOB = enq.EnquiryDOB.Format(dateLayout)
	}
	var addr []string
	for _, p := range []*string{enq.EnquiryAddress, enq.EnquiryCity, enq.EnquiryState, enq.EnquiryPincode} {
		if v := strings.TrimSpace(deref(p)); v != "" {
			addr = append(addr, v)
		}
	}
	d.Address = strings.Join(addr, ", ")

	for _, q := range enq.EnquiryQualifications.Data() {
		row := QualificationRow{Exam: q.Exam, Board: q.Board, Institution: q.Institution, PassingYear: q.PassingYear}
		if q.ResultAwaited {
			row.Percentage = "Awaited"
		} else if q.Percentage != nil {
			row.Percentage = strconv.FormatFloat(*q.Percentage, 'f', 2, 64)
		}
		d.Qualifications = append(d.Qualifications, row)
	}
	for _, e := range enq.EnquiryEntranceExams.Data() {
		row := EntranceRow{Name: e.Name, RollNo: e.RollNo, Year: e.Year}
		if e.Score != nil {
			row.Score = strconv.FormatFloat(*e.Score, 'f', -1, 64)
		}
		if e.Rank != nil {
			row.Rank = strconv.Itoa(*e.Rank)
		}
		d.EntranceExams = append(d.EntranceExams, row)
	}

	if rec == nil {
		return d
	}
	d.HasFees = true
	for _, it := range rec.StudentFeeOtherFees.Data() {
		if !feeModel.IsNumber(it.FinalFee) {
			continue
		}
		row := FeeRow{Label: feeModel.DisplayLabel(it.Type), Final: helper.FormatINR(decimal.NewFromFloat(*it.FinalFee))}
		if feeModel.IsNumber(it.FeesDepositedTOA) {
			row.Deposited = helper.FormatINR(decimal.NewFromFloat(*it.FeesDepositedTOA))
		}
		d.OtherFees = append(d.OtherFees, row)
	}
	for i, sf := range rec.StudentFeeSemWiseFees.Data() {
		if !feeModel.IsNumber(sf.FinalFee) {
			continue
		}
		d.SemesterFees = append(d.SemesterFees, FeeRow{
			Label: "Semester " + strconv.Itoa(i+1),
			Final: helper.FormatINR(decimal.NewFromFloat(*sf.FinalFee)),
		})
	}
	d.TotalFees = helper.FormatINR(rec.StudentFeeTotalAmount)
	d.DepositedTOA = helper.FormatINR(rec.StudentFeeTOAAmount)
	return d
}

func RenderAdmissionFormHTML(d AdmissionFormData) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "admission_form.html", d); err != nil {
		return "", errors.Wrap(err, "render admission form")
	}
	return buf.String(), nil
}

// AdmissionFormPDF prints an enquiry with its final fee structure when one exists.
func (s *ReceiptService) AdmissionFormPDF(ctx context.Context, enquiryID uuid.UUID) ([]byte, string, error) {
	db := s.DB.WithContext(ctx)
	var enq enquiryModel.EnquiryModel
	if err := db.Where("enquiry_id = ?", enquiryID).Take(&enq).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", errors.Wrap(helper.ErrNotFound, "enquiry not found")
		}
		return nil, "", errors.Wrap(err, "load enquiry")
	}
	var course courseModel.CourseModel
	if err := db.Unscoped().Where("course_id = ?", enq.EnquiryCourseID).Take(&course).Error; err != nil {
		return nil, "", errors.Wrap(err, "load course")
	}
	var rec *feeModel.StudentFeeModel
	var row feeModel.StudentFeeModel
	err := db.Where("student_fee_enquiry_id = ?", enquiryID).Order("student_fee_created_at DESC").Take(&row).Error
	switch {
	case err == nil:
		rec = &row
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, "", errors.Wrap(err, "load fee record")
	}
	out, err := s.render(ctx, "admission form", BuildAdmissionFormData(s.Institution, enq, course, rec))
	if err != nil {
		return nil, "", err
	}
	return out, "ADMISSION-" + strings.ReplaceAll(enq.EnquiryNo, "/", "-") + ".pdf", nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
