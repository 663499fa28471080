package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"admissions_backend/internals/features/admissions/enquiries/dto"
	"admissions_backend/internals/features/admissions/enquiries/model"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/logger"
)

type EnquiryService struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *EnquiryService { return &EnquiryService{DB: db} }

// statuses staff may set by hand; the rest follow from fees, documents and admission.
var manualTargets = map[model.EnquiryStatus]bool{
	model.EnquiryStatusContacted:  true,
	model.EnquiryStatusInProgress: true,
	model.EnquiryStatusDropped:    true,
	model.EnquiryStatusRejected:   true,
}

// EnquiryNo renders ENQ/<session>/<seq>.
func EnquiryNo(session string, seq int64) string {
	return helper.FormatSequence("ENQ", session, seq, 4)
}

func (s *EnquiryService) ensureCourse(tx *gorm.DB, courseID uuid.UUID) error {
	var active bool
	err := tx.Table("courses").
		Select("course_is_active").
		Where("course_id = ? AND course_deleted_at IS NULL", courseID).
		Take(&active).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return helper.NewValidationError(map[string][]string{"enquiry_course_id": {"course not found"}})
	}
	if err != nil {
		return errors.Wrap(err, "load course")
	}
	if !active {
		return helper.NewValidationError(map[string][]string{"enquiry_course_id": {"course is not open for admission"}})
	}
	return nil
}

func (s *EnquiryService) Create(ctx context.Context, req dto.CreateEnquiryRequest, actor *uuid.UUID) (*model.EnquiryModel, error) {
	m := req.ToModel()
	m.EnquiryCreatedBy = actor

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ensureCourse(tx, m.EnquiryCourseID); err != nil {
			return err
		}
		seq, err := helper.NextSequence(tx, "enquiry:"+m.EnquirySession)
		if err != nil {
			return err
		}
		m.EnquiryNo = EnquiryNo(m.EnquirySession, seq)
		if err := tx.Create(m).Error; err != nil {
			return errors.Wrap(err, "create enquiry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("enquiry created", zap.String("enquiry_no", m.EnquiryNo), zap.String("source", m.EnquirySource))
	return m, nil
}

func (s *EnquiryService) Get(ctx context.Context, id uuid.UUID) (*model.EnquiryModel, error) {
	var m model.EnquiryModel
	if err := s.DB.WithContext(ctx).Where("enquiry_id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(helper.ErrNotFound, "enquiry not found")
		}
		return nil, errors.Wrap(err, "load enquiry")
	}
	return &m, nil
}

var sortColumns = map[string]string{
	"created_at":   "enquiry_created_at",
	"updated_at":   "enquiry_updated_at",
	"student_name": "enquiry_student_name",
	"enquiry_no":   "enquiry_no",
	"stage":        "enquiry_stage",
}

// ApplyFilters narrows an enquiries query; shared with the CRM dashboard.
func ApplyFilters(tx *gorm.DB, q dto.ListEnquiryQuery) (*gorm.DB, error) {
	ve := &helper.ValidationError{}
	if q.Status != "" {
		var statuses []string
		for _, st := range strings.Split(q.Status, ",") {
			st = strings.TrimSpace(st)
			if !model.EnquiryStatus(st).Valid() {
				ve.Add("status", "unknown status "+st)
				continue
			}
			statuses = append(statuses, st)
		}
		if len(statuses) > 0 {
			tx = tx.Where("enquiry_status IN ?", statuses)
		}
	}
	if q.Source != "" {
		tx = tx.Where("enquiry_source = ?", q.Source)
	}
	if q.CourseID != "" {
		tx = tx.Where("enquiry_course_id = ?", q.CourseID)
	}
	if q.Session != "" {
		tx = tx.Where("enquiry_session = ?", q.Session)
	}
	if q.Counsellor != "" {
		tx = tx.Where("? = ANY(enquiry_counsellors)", q.Counsellor)
	}
	if q.Telecaller != "" {
		tx = tx.Where("? = ANY(enquiry_telecallers)", q.Telecaller)
	}
	if q.From != "" {
		tx = tx.Where("enquiry_created_at >= ?::date", q.From)
	}
	if q.To != "" {
		tx = tx.Where("enquiry_created_at < (?::date + INTERVAL '1 day')", q.To)
	}
	if q.IsCold != nil {
		tx = tx.Where("enquiry_is_cold = ?", *q.IsCold)
	}
	if s := strings.TrimSpace(q.Q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("enquiry_student_name ILIKE ? OR enquiry_no ILIKE ? OR enquiry_phone ILIKE ? OR enquiry_email ILIKE ?", like, like, like, like)
	}
	if ve.HasErrors() {
		return nil, ve
	}
	return tx, nil
}

func (s *EnquiryService) List(ctx context.Context, q dto.ListEnquiryQuery, p helper.Params) ([]model.EnquiryModel, int64, error) {
	order, err := p.SafeOrderClause(sortColumns, "created_at")
	if err != nil {
		return nil, 0, err
	}
	tx, err := ApplyFilters(s.DB.WithContext(ctx).Model(&model.EnquiryModel{}), q)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count enquiries")
	}
	var rows []model.EnquiryModel
	if err := tx.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list enquiries")
	}
	return rows, total, nil
}

func (s *EnquiryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateEnquiryRequest) (*model.EnquiryModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.EnquiryStatus.IsTerminal() {
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "enquiry is %s", m.EnquiryStatus)
	}
	changes := req.Changes()
	if len(changes) == 0 {
		return m, nil
	}
	if req.EnquiryCourseID != nil && *req.EnquiryCourseID != m.EnquiryCourseID {
		if m.EnquiryStatus != model.EnquiryStatusNew && m.EnquiryStatus != model.EnquiryStatusContacted && m.EnquiryStatus != model.EnquiryStatusInProgress {
			return nil, errors.Wrap(helper.ErrConflict, "course cannot change after fees are finalised")
		}
		if err := s.ensureCourse(s.DB.WithContext(ctx), *req.EnquiryCourseID); err != nil {
			return nil, err
		}
	}
	if err := s.DB.WithContext(ctx).Model(m).Updates(changes).Error; err != nil {
		return nil, errors.Wrap(err, "update enquiry")
	}
	return s.Get(ctx, id)
}

// SaveAcademics replaces the stage 2 lists and moves the stage forward.
func (s *EnquiryService) SaveAcademics(ctx context.Context, id uuid.UUID, req dto.AcademicsRequest) (*model.EnquiryModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.EnquiryStatus.IsTerminal() {
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "enquiry is %s", m.EnquiryStatus)
	}
	quals := req.Qualifications
	if quals == nil {
		quals = []model.Qualification{}
	}
	exams := req.EntranceExams
	if exams == nil {
		exams = []model.EntranceExam{}
	}
	if err := s.DB.WithContext(ctx).Model(m).Updates(map[string]any{
		"enquiry_qualifications": datatypes.NewJSONType(quals),
		"enquiry_entrance_exams": datatypes.NewJSONType(exams),
		"enquiry_stage":          gorm.Expr("GREATEST(enquiry_stage, 2)"),
	}).Error; err != nil {
		return nil, errors.Wrap(err, "save academics")
	}
	return s.Get(ctx, id)
}

func (s *EnquiryService) Assign(ctx context.Context, id uuid.UUID, req dto.AssignRequest) (*model.EnquiryModel, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]any{}
	if req.Counsellors != nil {
		changes["enquiry_counsellors"] = cleanList(*req.Counsellors)
	}
	if req.Telecallers != nil {
		changes["enquiry_telecallers"] = cleanList(*req.Telecallers)
	}
	if len(changes) == 0 {
		return m, nil
	}
	if err := s.DB.WithContext(ctx).Model(m).Updates(changes).Error; err != nil {
		return nil, errors.Wrap(err, "assign enquiry")
	}
	return s.Get(ctx, id)
}

func cleanList(in []string) pq.StringArray {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return pq.StringArray(out)
}

// ChangeStatus applies a manual status change. The update is conditional on
// the status read, so a concurrent change makes it fail with a conflict.
func (s *EnquiryService) ChangeStatus(ctx context.Context, id uuid.UUID, req dto.StatusRequest) (*model.EnquiryModel, error) {
	to := model.EnquiryStatus(strings.TrimSpace(req.Status))
	if !to.Valid() {
		return nil, helper.NewValidationError(map[string][]string{"status": {"unknown status"}})
	}
	if !manualTargets[to] {
		return nil, helper.NewValidationError(map[string][]string{"status": {fmt.Sprintf("%s is set by the system", to)}})
	}
	if (to == model.EnquiryStatusDropped || to == model.EnquiryStatusRejected) && (req.Reason == nil || strings.TrimSpace(*req.Reason) == "") {
		return nil, helper.NewValidationError(map[string][]string{"reason": {"reason is required"}})
	}

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(m.EnquiryStatus, to) {
		return nil, errors.Wrapf(helper.ErrInvalidTransition, "%s -> %s", m.EnquiryStatus, to)
	}

	changes := map[string]any{"enquiry_status": string(to)}
	if req.Reason != nil {
		changes["enquiry_status_reason"] = strings.TrimSpace(*req.Reason)
	}
	if to == model.EnquiryStatusContacted {
		changes["enquiry_last_contacted_at"] = time.Now()
		changes["enquiry_is_cold"] = false
	}
	res := s.DB.WithContext(ctx).Model(&model.EnquiryModel{}).
		Where("enquiry_id = ? AND enquiry_status = ?", id, string(m.EnquiryStatus)).
		Updates(changes)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "change status")
	}
	if res.RowsAffected == 0 {
		return nil, errors.Wrap(helper.ErrConflict, "enquiry changed meanwhile, reload and retry")
	}
	logger.Info("enquiry status changed",
		zap.String("enquiry_id", id.String()),
		zap.String("from", string(m.EnquiryStatus)),
		zap.String("to", string(to)),
	)
	return s.Get(ctx, id)
}

// Advance moves an enquiry along a system transition (documents, admission).
// It is a no-op error-free call when the enquiry is already past from.
func Advance(tx *gorm.DB, id uuid.UUID, from, to model.EnquiryStatus) (bool, error) {
	if !model.CanTransition(from, to) {
		return false, errors.Wrapf(helper.ErrInvalidTransition, "%s -> %s", from, to)
	}
	res := tx.Model(&model.EnquiryModel{}).
		Where("enquiry_id = ? AND enquiry_status = ?", id, string(from)).
		Updates(map[string]any{
			"enquiry_status": string(to),
			"enquiry_stage":  gorm.Expr("GREATEST(enquiry_stage, ?)", model.StageFor(to)),
		})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "advance enquiry")
	}
	return res.RowsAffected > 0, nil
}

func (s *EnquiryService) Delete(ctx context.Context, id uuid.UUID) error {
	m, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.EnquiryStatus != model.EnquiryStatusNew && m.EnquiryStatus != model.EnquiryStatusContacted {
		return errors.Wrap(helper.ErrConflict, "only new or contacted enquiries can be deleted")
	}
	if err := s.DB.WithContext(ctx).Delete(m).Error; err != nil {
		return errors.Wrap(err, "delete enquiry")
	}
	return nil
}

// TouchContacted stamps the last contact and clears the cold flag.
func TouchContacted(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	return tx.Model(&model.EnquiryModel{}).
		Where("enquiry_id = ?", id).
		Updates(map[string]any{"enquiry_last_contacted_at": at, "enquiry_is_cold": false}).Error
}
