package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"admissions_backend/internals/configs"
	enquiryModel "admissions_backend/internals/features/admissions/enquiries/model"
	enquiryService "admissions_backend/internals/features/admissions/enquiries/service"
	"admissions_backend/internals/features/crm/leads/dto"
	"admissions_backend/internals/features/crm/leads/model"
	helper "admissions_backend/internals/helpers"
	"admissions_backend/internals/logger"
)

type LeadService struct {
	DB       *gorm.DB
	Now      func() time.Time
	Location *time.Location
}

func New(db *gorm.DB) *LeadService {
	return &LeadService{DB: db, Now: time.Now, Location: configs.Location()}
}

// leadStatuses are the statuses still worked by the front office.
var leadStatuses = []string{
	string(enquiryModel.EnquiryStatusNew),
	string(enquiryModel.EnquiryStatusContacted),
	string(enquiryModel.EnquiryStatusInProgress),
}

// DayBounds returns [start of day, start of next day) for now in loc.
func DayBounds(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	start := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ConversionRate is admitted/total rounded to four places; zero when there are no leads.
func ConversionRate(admitted, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(admitted)/float64(total)*10000) / 10000
}

// ColdCutoff is the moment before which an untouched lead turns cold.
func ColdCutoff(now time.Time, days int) time.Time {
	if days <= 0 {
		days = 1
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// ValidateFollowUp checks the timestamps of a follow-up against now.
func ValidateFollowUp(req dto.CreateFollowUpRequest, now time.Time) error {
	ve := &helper.ValidationError{}
	if req.NextAt != nil && !req.NextAt.After(now) {
		ve.Add("lead_follow_up_next_at", "next follow-up must be in the future")
	}
	if req.ContactedAt != nil && req.ContactedAt.After(now.Add(time.Minute)) {
		ve.Add("contacted_at", "contact time cannot be in the future")
	}
	if req.Outcome == model.OutcomeCallBack && req.NextAt == nil {
		ve.Add("lead_follow_up_next_at", "call back needs a next follow-up time")
	}
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// Create logs a contact attempt. Earlier open follow-ups are closed, the cold
// flag is cleared, and a new enquiry that was reached becomes contacted.
func (s *LeadService) Create(ctx context.Context, enquiryID uuid.UUID, req dto.CreateFollowUpRequest, actor *uuid.UUID, actorName string) (*model.LeadFollowUpModel, error) {
	now := s.Now()
	if err := ValidateFollowUp(req, now); err != nil {
		return nil, err
	}
	at := now
	if req.ContactedAt != nil {
		at = *req.ContactedAt
	}

	var f *model.LeadFollowUpModel
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enq enquiryModel.EnquiryModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("enquiry_id = ?", enquiryID).Take(&enq).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.Wrap(helper.ErrNotFound, "enquiry not found")
			}
			return errors.Wrap(err, "load enquiry")
		}
		if enq.EnquiryStatus.IsTerminal() {
			return errors.Wrapf(helper.ErrInvalidTransition, "enquiry is %s", enq.EnquiryStatus)
		}

		if err := tx.Model(&model.LeadFollowUpModel{}).
			Where("lead_follow_up_enquiry_id = ? AND lead_follow_up_closed_at IS NULL", enquiryID).
			Update("lead_follow_up_closed_at", now).Error; err != nil {
			return errors.Wrap(err, "close open follow-ups")
		}

		f = &model.LeadFollowUpModel{
			LeadFollowUpEnquiryID: enquiryID,
			LeadFollowUpChannel:   req.Channel,
			LeadFollowUpNote:      trimPtr(req.Note),
			LeadFollowUpOutcome:   req.Outcome,
			LeadFollowUpNextAt:    req.NextAt,
			LeadFollowUpCreatedBy: actor,
		}
		if name := strings.TrimSpace(actorName); name != "" {
			f.LeadFollowUpCreatedByName = &name
		}
		if err := tx.Create(f).Error; err != nil {
			return errors.Wrap(err, "create follow-up")
		}

		if !model.Reached(req.Outcome) {
			return tx.Model(&enquiryModel.EnquiryModel{}).
				Where("enquiry_id = ?", enquiryID).
				Update("enquiry_is_cold", false).Error
		}
		if err := enquiryService.TouchContacted(tx, enquiryID, at); err != nil {
			return errors.Wrap(err, "touch enquiry")
		}
		if enq.EnquiryStatus == enquiryModel.EnquiryStatusNew {
			if _, err := enquiryService.Advance(tx, enquiryID, enquiryModel.EnquiryStatusNew, enquiryModel.EnquiryStatusContacted); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("follow-up logged",
		zap.String("enquiry_id", enquiryID.String()),
		zap.String("channel", req.Channel),
		zap.String("outcome", req.Outcome),
	)
	return f, nil
}

func (s *LeadService) List(ctx context.Context, enquiryID uuid.UUID) ([]model.LeadFollowUpModel, error) {
	db := s.DB.WithContext(ctx)
	var n int64
	if err := db.Model(&enquiryModel.EnquiryModel{}).Where("enquiry_id = ?", enquiryID).Count(&n).Error; err != nil {
		return nil, errors.Wrap(err, "check enquiry")
	}
	if n == 0 {
		return nil, errors.Wrap(helper.ErrNotFound, "enquiry not found")
	}
	rows := []model.LeadFollowUpModel{}
	if err := db.Where("lead_follow_up_enquiry_id = ?", enquiryID).
		Order("lead_follow_up_created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list follow-ups")
	}
	return rows, nil
}

func (s *LeadService) openFollowUps(db *gorm.DB) *gorm.DB {
	return db.Table("lead_follow_ups f").
		Joins("JOIN enquiries e ON e.enquiry_id = f.lead_follow_up_enquiry_id").
		Where("f.lead_follow_up_closed_at IS NULL AND f.lead_follow_up_next_at IS NOT NULL").
		Where("e.enquiry_deleted_at IS NULL AND e.enquiry_status IN ?", leadStatuses)
}

// Due lists open follow-ups: today, overdue (before today) or upcoming (after today).
func (s *LeadService) Due(ctx context.Context, q dto.DueQuery, p helper.Params) ([]dto.DueFollowUp, int64, error) {
	start, end := DayBounds(s.Now(), s.Location)
	tx := s.openFollowUps(s.DB.WithContext(ctx))
	switch q.Scope {
	case "overdue":
		tx = tx.Where("f.lead_follow_up_next_at < ?", start)
	case "upcoming":
		tx = tx.Where("f.lead_follow_up_next_at >= ?", end)
	default:
		tx = tx.Where("f.lead_follow_up_next_at >= ? AND f.lead_follow_up_next_at < ?", start, end)
	}
	if c := strings.TrimSpace(q.Counsellor); c != "" {
		tx = tx.Where("LOWER(?) = ANY(SELECT LOWER(x) FROM unnest(e.enquiry_counsellors) x)", c)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count follow-ups")
	}
	rows := []dto.DueFollowUp{}
	err := tx.Select(`f.lead_follow_up_id, e.enquiry_id, e.enquiry_no, e.enquiry_student_name,
		e.enquiry_phone, e.enquiry_status, f.lead_follow_up_channel, f.lead_follow_up_outcome,
		f.lead_follow_up_next_at, f.lead_follow_up_note, f.lead_follow_up_created_by_name AS lead_follow_up_by_name`).
		Order("f.lead_follow_up_next_at ASC").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list follow-ups")
	}
	return rows, total, nil
}

func (s *LeadService) Dashboard(ctx context.Context, q dto.DashboardQuery) (*dto.DashboardResponse, error) {
	db := s.DB.WithContext(ctx)
	base := func() *gorm.DB {
		tx := db.Model(&enquiryModel.EnquiryModel{})
		if q.CourseID != "" {
			tx = tx.Where("enquiry_course_id = ?", q.CourseID)
		}
		if q.Session != "" {
			tx = tx.Where("enquiry_session = ?", q.Session)
		}
		if q.From != "" {
			tx = tx.Where("enquiry_created_at >= ?::date", q.From)
		}
		if q.To != "" {
			tx = tx.Where("enquiry_created_at < (?::date + INTERVAL '1 day')", q.To)
		}
		return tx
	}
	buckets := func(expr string) ([]dto.Bucket, error) {
		out := []dto.Bucket{}
		err := base().Select(expr + " AS key, COUNT(*) AS count").Group("1").Order("count DESC, key ASC").Scan(&out).Error
		return out, err
	}

	out := &dto.DashboardResponse{}
	if err := base().Count(&out.Total).Error; err != nil {
		return nil, errors.Wrap(err, "count enquiries")
	}
	if err := base().Where("enquiry_status = ?", enquiryModel.EnquiryStatusAdmitted).Count(&out.Admitted).Error; err != nil {
		return nil, errors.Wrap(err, "count admitted")
	}
	if err := base().Where("enquiry_is_cold").Count(&out.Cold).Error; err != nil {
		return nil, errors.Wrap(err, "count cold")
	}
	out.ConversionRate = ConversionRate(out.Admitted, out.Total)

	var err error
	if out.ByStatus, err = buckets("enquiry_status"); err != nil {
		return nil, errors.Wrap(err, "group by status")
	}
	if out.BySource, err = buckets("enquiry_source"); err != nil {
		return nil, errors.Wrap(err, "group by source")
	}
	if out.ByCounsellor, err = buckets("unnest(enquiry_counsellors)"); err != nil {
		return nil, errors.Wrap(err, "group by counsellor")
	}
	if out.ByTelecaller, err = buckets("unnest(enquiry_telecallers)"); err != nil {
		return nil, errors.Wrap(err, "group by telecaller")
	}

	start, end := DayBounds(s.Now(), s.Location)
	if err := s.openFollowUps(db).
		Where("f.lead_follow_up_next_at >= ? AND f.lead_follow_up_next_at < ?", start, end).
		Count(&out.FollowUpsToday).Error; err != nil {
		return nil, errors.Wrap(err, "count today's follow-ups")
	}
	if err := s.openFollowUps(db).
		Where("f.lead_follow_up_next_at < ?", start).
		Count(&out.FollowUpsOverdue).Error; err != nil {
		return nil, errors.Wrap(err, "count overdue follow-ups")
	}
	return out, nil
}

// SweepCold flags leads with no follow-up or contact since the cutoff.
func (s *LeadService) SweepCold(ctx context.Context, days int) (int64, error) {
	cutoff := ColdCutoff(s.Now(), days)
	res := s.DB.WithContext(ctx).Exec(`
		UPDATE enquiries e
		   SET enquiry_is_cold = TRUE, enquiry_updated_at = NOW()
		 WHERE e.enquiry_deleted_at IS NULL
		   AND NOT e.enquiry_is_cold
		   AND e.enquiry_status IN ?
		   AND e.enquiry_created_at < ?
		   AND (e.enquiry_last_contacted_at IS NULL OR e.enquiry_last_contacted_at < ?)
		   AND NOT EXISTS (
		     SELECT 1 FROM lead_follow_ups f
		      WHERE f.lead_follow_up_enquiry_id = e.enquiry_id
		        AND f.lead_follow_up_created_at >= ?
		   )`, leadStatuses, cutoff, cutoff, cutoff)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "sweep cold leads")
	}
	if res.RowsAffected > 0 {
		logger.Info("leads marked cold", zap.Int64("count", res.RowsAffected), zap.Int("after_days", days))
	}
	return res.RowsAffected, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
