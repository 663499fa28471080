package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	courseModel "admissions_backend/internals/features/academics/courses/model"
	docModel "admissions_backend/internals/features/admissions/documents/model"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	enquiryService "admissions_backend/internals/features/admissions/enquiries/service"
	feeModel "admissions_backend/internals/features/finance/student_fees/model"
	"admissions_backend/internals/features/students/dto"
	"admissions_backend/internals/features/students/model"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/logger"
)

type StudentService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func New(db *gorm.DB) *StudentService { return &StudentService{DB: db, Now: time.Now} }

// EnrollmentNo renders <COURSE>/<YEAR>/<seq4>.
func EnrollmentNo(courseCode string, year int, seq int64) string {
	return helper.FormatSequence(strings.ToUpper(strings.TrimSpace(courseCode)), strconv.Itoa(year), seq, 4)
}

// AdmissionYear is the first year of an academic session ("2024-25" -> 2024).
// Sessions that do not parse fall back to the admission date.
func AdmissionYear(session string, at time.Time) int {
	if len(session) >= 4 {
		if y, err := strconv.Atoi(session[:4]); err == nil && y >= 1980 {
			return y
		}
	}
	return at.Year()
}

// CGPA is the credit-weighted mean of SGPA, two decimals. No credits yields zero.
func CGPA(records []model.AcademicRecordModel) (decimal.Decimal, int) {
	weighted := decimal.Zero
	credits := 0
	for _, r := range records {
		if r.AcademicRecordCredits <= 0 {
			continue
		}
		c := decimal.NewFromInt(int64(r.AcademicRecordCredits))
		weighted = weighted.Add(r.AcademicRecordSGPA.Mul(c))
		credits += int(r.AcademicRecordCredits)
	}
	if credits == 0 {
		return decimal.Zero, 0
	}
	return weighted.Div(decimal.NewFromInt(int64(credits))).Round(2), credits
}

// Admit turns a documents_verified enquiry with a final fee record into a student.
func (s *StudentService) Admit(ctx context.Context, enquiryID uuid.UUID) (*model.StudentModel, error) {
	now := s.Now()
	var st *model.StudentModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enq enquiryModel.EnquiryModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("enquiry_id = ?", enquiryID).Take(&enq).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(helper.ErrNotFound, "enquiry not found")
			}
			return errors.Wrap(err, "load enquiry")
		}
		if enq.EnquiryStatus == enquiryModel.EnquiryStatusAdmitted {
			return errors.Wrap(helper.ErrConflict, "enquiry is already admitted")
		}
		if enq.EnquiryStatus != enquiryModel.EnquiryStatusDocumentsVerified {
			return errors.Wrapf(helper.ErrInvalidTransition, "enquiry is %s, documents must be verified first", enq.EnquiryStatus)
		}

		var fees int64
		if err := tx.Model(&feeModel.StudentFeeModel{}).
			Where("student_fee_enquiry_id = ?", enquiryID).Count(&fees).Error; err != nil {
			return errors.Wrap(err, "check fee record")
		}
		if fees == 0 {
			return errors.Wrap(helper.ErrInvalidTransition, "fees are not finalized")
		}

		var course courseModel.CourseModel
		if err := tx.Where("course_id = ?", enq.EnquiryCourseID).Take(&course).Error; err != nil {
			return errors.Wrap(err, "load course")
		}

		year := AdmissionYear(enq.EnquirySession, now)
		code := strings.ToUpper(strings.TrimSpace(course.CourseCode))
		seq, err := helper.NextSequence(tx, "enrollment:"+code+":"+strconv.Itoa(year))
		if err != nil {
			return err
		}

		st = &model.StudentModel{
			StudentEnquiryID:       enq.EnquiryID,
			StudentEnrollmentNo:    EnrollmentNo(code, year, seq),
			StudentName:            enq.EnquiryStudentName,
			StudentGender:          enq.EnquiryGender,
			StudentDOB:             enq.EnquiryDOB,
			StudentPhone:           &enq.EnquiryPhone,
			StudentEmail:           enq.EnquiryEmail,
			StudentFatherName:      enq.EnquiryFatherName,
			StudentCourseID:        enq.EnquiryCourseID,
			StudentSession:         enq.EnquirySession,
			StudentAdmissionYear:   int16(year),
			StudentCurrentSemester: 1,
			StudentStatus:          model.StudentStatusActive,
		}
		var photo docModel.EnquiryDocumentModel
		err = tx.Where("enquiry_document_enquiry_id = ? AND enquiry_document_kind = ? AND enquiry_document_status = ?",
			enquiryID, docModel.DocumentKindPhoto, docModel.DocumentStatusVerified).
			Order("enquiry_document_created_at DESC").
			Take(&photo).Error
		switch {
		case err == nil:
			st.StudentPhotoURL = &photo.EnquiryDocumentFileURL
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return errors.Wrap(err, "load photo")
		}

		if err := tx.Create(st).Error; err != nil {
			return errors.Wrap(err, "create student")
		}
		ok, err := enquiryService.Advance(tx, enquiryID, enquiryModel.EnquiryStatusDocumentsVerified, enquiryModel.EnquiryStatusAdmitted)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrap(helper.ErrConflict, "enquiry changed meanwhile")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("student admitted",
		zap.String("student_id", st.StudentID.String()),
		zap.String("enquiry_id", enquiryID.String()),
		zap.String("enrollment_no", st.StudentEnrollmentNo),
	)
	return st, nil
}

func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (*model.StudentModel, error) {
	var m model.StudentModel
	if err := s.DB.WithContext(ctx).Where("student_id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrNotFound, "student not found")
		}
		return nil, errors.Wrap(err, "load student")
	}
	return &m, nil
}

func (s *StudentService) Detail(ctx context.Context, id uuid.UUID) (*dto.StudentDetailResponse, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	recs, err := s.Records(ctx, id)
	if err != nil {
		return nil, err
	}
	cgpa, credits := CGPA(recs)
	return &dto.StudentDetailResponse{
		StudentResponse: dto.FromModel(*m),
		AcademicRecords: recs,
		CGPA:            cgpa,
		TotalCredits:    credits,
	}, nil
}

var studentSort = map[string]string{
	"created_at":    "student_created_at",
	"name":          "student_name",
	"enrollment_no": "student_enrollment_no",
	"semester":      "student_current_semester",
}

func (s *StudentService) List(ctx context.Context, q dto.ListStudentQuery, p helper.Params) ([]model.StudentModel, int64, error) {
	order, err := p.SafeOrderClause(studentSort, "created_at")
	if err != nil {
		return nil, 0, err
	}
	tx := s.DB.WithContext(ctx).Model(&model.StudentModel{})
	if q.Status != "" {
		tx = tx.Where("student_status = ?", q.Status)
	}
	if q.CourseID != "" {
		tx = tx.Where("student_course_id = ?", q.CourseID)
	}
	if q.Session != "" {
		tx = tx.Where("student_session = ?", q.Session)
	}
	if q.Semester > 0 {
		tx = tx.Where("student_current_semester = ?", q.Semester)
	}
	if term := strings.TrimSpace(q.Q); term != "" {
		like := "%" + term + "%"
		tx = tx.Where("student_name ILIKE ? OR student_enrollment_no ILIKE ? OR student_phone ILIKE ? OR student_email ILIKE ?",
			like, like, like, like)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count students")
	}
	var rows []model.StudentModel
	if err := tx.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list students")
	}
	return rows, total, nil
}

func (s *StudentService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateStudentRequest) (*model.StudentModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := req.Changes()
	if len(changes) == 0 {
		return m, nil
	}
	if sem, ok := changes["student_current_semester"].(int16); ok {
		var course courseModel.CourseModel
		if err := s.DB.WithContext(ctx).Unscoped().Where("course_id = ?", m.StudentCourseID).Take(&course).Error; err != nil {
			return nil, errors.Wrap(err, "load course")
		}
		if sem > course.CourseTotalSemesters {
			return nil, helper.NewValidationError(map[string][]string{
				"student_current_semester": {"course has only " + strconv.Itoa(int(course.CourseTotalSemesters)) + " semesters"},
			})
		}
	}
	if err := s.DB.WithContext(ctx).Model(m).Updates(changes).Error; err != nil {
		return nil, errors.Wrap(err, "update student")
	}
	return s.Get(ctx, id)
}

func (s *StudentService) ChangeStatus(ctx context.Context, id uuid.UUID, to model.StudentStatus) (*model.StudentModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.StudentStatus.CanMoveTo(to) {
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "%s -> %s", m.StudentStatus, to)
	}
	res := s.DB.WithContext(ctx).Model(&model.StudentModel{}).
		Where("student_id = ? AND student_status = ?", id, m.StudentStatus).
		Update("student_status", to)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "change student status")
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrap(helper.ErrConflict, "student changed meanwhile")
	}
	logger.Info("student status changed",
		zap.String("student_id", id.String()),
		zap.String("from", string(m.StudentStatus)),
		zap.String("to", string(to)),
	)
	return s.Get(ctx, id)
}

func (s *StudentService) Records(ctx context.Context, studentID uuid.UUID) ([]model.AcademicRecordModel, error) {
	rows := []model.AcademicRecordModel{}
	if err := s.DB.WithContext(ctx).
		Where("academic_record_student_id = ?", studentID).
		Order("academic_record_semester ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list academic records")
	}
	return rows, nil
}

// ValidateRecord checks a semester result against the course length.
func ValidateRecord(semester int, totalSemesters int16, req dto.AcademicRecordRequest) error {
	ve := &helper.ValidationError{}
	if semester < 1 || semester > int(totalSemesters) {
		ve.Add("semester", "semester must be between 1 and "+strconv.Itoa(int(totalSemesters)))
	}
	if req.SGPA.IsNegative() || req.SGPA.GreaterThan(decimal.NewFromInt(10)) {
		ve.Add("academic_record_sgpa", "sgpa must be between 0 and 10")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// UpsertRecord writes one semester result; a second write for the same semester replaces it.
func (s *StudentService) UpsertRecord(ctx context.Context, studentID uuid.UUID, semester int, req dto.AcademicRecordRequest) (*model.AcademicRecordModel, error) {
	st, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}
	var course courseModel.CourseModel
	db := s.DB.WithContext(ctx)
	if err := db.Unscoped().Where("course_id = ?", st.StudentCourseID).Take(&course).Error; err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	if err := ValidateRecord(semester, course.CourseTotalSemesters, req); err != nil {
		return nil, err
	}
	var remarks *string
	if req.Remarks != nil {
		if t := strings.TrimSpace(*req.Remarks); t != "" {
			remarks = &t
		}
	}
	rec := &model.AcademicRecordModel{
		AcademicRecordStudentID: studentID,
		AcademicRecordSemester:  int16(semester),
		AcademicRecordSGPA:      req.SGPA.Round(2),
		AcademicRecordCredits:   req.Credits,
		AcademicRecordResult:    model.AcademicResult(req.Result),
		AcademicRecordRemarks:   remarks,
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "academic_record_student_id"}, {Name: "academic_record_semester"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"academic_record_sgpa", "academic_record_credits", "academic_record_result",
			"academic_record_remarks", "academic_record_updated_at",
		}),
	}).Create(rec).Error; err != nil {
		return nil, errors.Wrap(err, "save academic record")
	}

	var saved model.AcademicRecordModel
	if err := db.Where("academic_record_student_id = ? AND academic_record_semester = ?", studentID, semester).
		Take(&saved).Error; err != nil {
		return nil, errors.Wrap(err, "reload academic record")
	}
	return &saved, nil
}

func (s *StudentService) DeleteRecord(ctx context.Context, studentID uuid.UUID, semester int) error {
	res := s.DB.WithContext(ctx).
		Where("academic_record_student_id = ? AND academic_record_semester = ?", studentID, semester).
		Delete(&model.AcademicRecordModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete academic record")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(helper.ErrNotFound, "academic record not found")
	}
	return nil
}
