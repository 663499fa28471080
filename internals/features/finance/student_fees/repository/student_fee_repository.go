package repository

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	courseModel "admissions_backend/internals/features/academics/courses/model"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	model "admissions_backend/internals/features/finance/student_fees/model"
	helper "admissions_backend/internals/helpers"
)

type StudentFeeRepository struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *StudentFeeRepository {
	return &StudentFeeRepository{DB: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(helper.ErrNotFound, what+" not found")
	}
	return errors.Wrap(err, "load "+what)
}

/* ====================== LOOKUPS ====================== */

func (r *StudentFeeRepository) GetEnquiry(ctx context.Context, id uuid.UUID) (*enquiryModel.EnquiryModel, error) {
	var m enquiryModel.EnquiryModel
	if err := r.DB.WithContext(ctx).Where("enquiry_id = ?", id).Take(&m).Error; err != nil {
		return nil, notFound(err, "enquiry")
	}
	return &m, nil
}

func (r *StudentFeeRepository) GetCourse(ctx context.Context, id uuid.UUID) (*courseModel.CourseModel, error) {
	var m courseModel.CourseModel
	if err := r.DB.WithContext(ctx).Where("course_id = ?", id).Take(&m).Error; err != nil {
		return nil, notFound(err, "course")
	}
	return &m, nil
}

// SemesterSchedule returns one amount per semester, NaN where none is scheduled.
func (r *StudentFeeRepository) SemesterSchedule(ctx context.Context, courseID uuid.UUID, session string, semesters int) ([]float64, error) {
	var rows []courseModel.CourseSemesterFeeModel
	if err := r.DB.WithContext(ctx).
		Where("course_semester_fee_course_id = ? AND course_semester_fee_session = ?", courseID, session).
		Order("course_semester_fee_semester ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load semester schedule")
	}

	out := make([]float64, semesters)
	for i := range out {
		out[i] = math.NaN()
	}
	for _, row := range rows {
		i := int(row.CourseSemesterFeeSemester) - 1
		if i < 0 || i >= semesters {
			continue
		}
		out[i] = row.CourseSemesterFeeAmount.InexactFloat64()
	}
	return out, nil
}

// OtherFeeSchedule merges session-wide rows with course rows; the course row wins.
func (r *StudentFeeRepository) OtherFeeSchedule(ctx context.Context, courseID uuid.UUID, session string) ([]model.OriginalOtherFee, error) {
	var rows []courseModel.OtherFeeScheduleModel
	if err := r.DB.WithContext(ctx).
		Where("other_fee_schedule_session = ?", session).
		Where("other_fee_schedule_course_id = ? OR other_fee_schedule_course_id IS NULL", courseID).
		Order("other_fee_schedule_course_id NULLS FIRST, other_fee_schedule_fee_type ASC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load other fee schedule")
	}

	index := map[string]int{}
	var out []model.OriginalOtherFee
	for _, row := range rows {
		amt := row.OtherFeeScheduleAmount.InexactFloat64()
		item := model.OriginalOtherFee{
			Type:     row.OtherFeeScheduleFeeType,
			Amount:   &amt,
			Optional: row.OtherFeeScheduleIsOptional,
		}
		if i, ok := index[row.OtherFeeScheduleFeeType]; ok {
			out[i] = item
			continue
		}
		index[row.OtherFeeScheduleFeeType] = len(out)
		out = append(out, item)
	}
	return out, nil
}

/* ====================== DRAFTS ====================== */

func (r *StudentFeeRepository) FindOpenDraft(ctx context.Context, enquiryID uuid.UUID) (*model.StudentFeeDraftModel, error) {
	var rows []model.StudentFeeDraftModel
	if err := r.DB.WithContext(ctx).
		Where("student_fee_draft_enquiry_id = ? AND student_fee_draft_superseded_at IS NULL", enquiryID).
		Limit(1).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load open draft")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *StudentFeeRepository) FindDraft(ctx context.Context, draftID uuid.UUID) (*model.StudentFeeDraftModel, error) {
	var m model.StudentFeeDraftModel
	if err := r.DB.WithContext(ctx).Where("student_fee_draft_id = ?", draftID).Take(&m).Error; err != nil {
		return nil, notFound(err, "draft")
	}
	return &m, nil
}

func (r *StudentFeeRepository) SaveDraft(ctx context.Context, d *model.StudentFeeDraftModel) error {
	db := r.DB.WithContext(ctx)
	if d.StudentFeeDraftID == uuid.Nil {
		if err := db.Create(d).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.Wrap(helper.ErrConflict, "an open draft already exists")
			}
			return errors.Wrap(err, "create draft")
		}
		return nil
	}
	res := db.Model(d).
		Where("student_fee_draft_superseded_at IS NULL").
		Updates(map[string]any{
			"student_fee_draft_data":       d.StudentFeeDraftData,
			"student_fee_draft_updated_at": time.Now(),
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update draft")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(helper.ErrConflict, "draft already superseded")
	}
	return nil
}

/* ====================== FINAL RECORDS ====================== */

func (r *StudentFeeRepository) FindFinalByEnquiry(ctx context.Context, enquiryID uuid.UUID) (*model.StudentFeeModel, error) {
	var rows []model.StudentFeeModel
	if err := r.DB.WithContext(ctx).
		Where("student_fee_enquiry_id = ?", enquiryID).
		Limit(1).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "load student fee")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *StudentFeeRepository) FindFinal(ctx context.Context, id uuid.UUID) (*model.StudentFeeModel, error) {
	var m model.StudentFeeModel
	if err := r.DB.WithContext(ctx).Where("student_fee_id = ?", id).Take(&m).Error; err != nil {
		return nil, notFound(err, "student fee")
	}
	return &m, nil
}

// statuses an enquiry may be finalised from
var finalizableStatuses = []string{
	string(enquiryModel.EnquiryStatusNew),
	string(enquiryModel.EnquiryStatusContacted),
	string(enquiryModel.EnquiryStatusInProgress),
}

func (r *StudentFeeRepository) Finalize(ctx context.Context, rec *model.StudentFeeModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errors.Wrap(helper.ErrConflict, "fees already finalised for this enquiry")
			}
			return errors.Wrap(err, "create student fee")
		}

		if err := tx.Model(&model.StudentFeeDraftModel{}).
			Where("student_fee_draft_enquiry_id = ? AND student_fee_draft_superseded_at IS NULL", rec.StudentFeeEnquiryID).
			Update("student_fee_draft_superseded_at", time.Now()).Error; err != nil {
			return errors.Wrap(err, "supersede draft")
		}

		res := tx.Exec(`
			UPDATE enquiries
			   SET enquiry_status = ?,
			       enquiry_stage = GREATEST(enquiry_stage, 4),
			       enquiry_updated_at = NOW()
			 WHERE enquiry_id = ?
			   AND enquiry_deleted_at IS NULL
			   AND enquiry_status IN ?`,
			string(enquiryModel.EnquiryStatusFeesFinalized), rec.StudentFeeEnquiryID, finalizableStatuses)
		if res.Error != nil {
			return errors.Wrap(res.Error, "advance enquiry")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(helper.ErrInvalidTransition, "enquiry can no longer take fees")
		}
		return nil
	})
}

func (r *StudentFeeRepository) UpdateFinal(ctx context.Context, rec *model.StudentFeeModel) error {
	res := r.DB.WithContext(ctx).Model(rec).
		Select(
			"student_fee_other_fees", "student_fee_sem_wise_fees", "student_fee_clearance_date",
			"student_fee_counsellors", "student_fee_telecallers", "student_fee_remarks",
			"student_fee_confirmation_check", "student_fee_otp_target", "student_fee_otp_verified_at",
			"student_fee_total_amount", "student_fee_toa_amount", "student_fee_updated_at",
		).
		Updates(rec)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update student fee")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(helper.ErrNotFound, "student fee not found")
	}
	return nil
}
