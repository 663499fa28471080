package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateFollowUpRequest struct {
	Channel     string     `json:"lead_follow_up_channel" validate:"required,oneof=call whatsapp sms email visit"`
	Note        *string    `json:"lead_follow_up_note" validate:"omitempty,max=2000"`
	Outcome     string     `json:"lead_follow_up_outcome" validate:"required,oneof=interested call_back no_answer visit_planned not_interested wrong_number"`
	NextAt      *time.Time `json:"lead_follow_up_next_at"`
	ContactedAt *time.Time `json:"contacted_at"`
}

type DueQuery struct {
	Scope      string `query:"scope" validate:"omitempty,oneof=today overdue upcoming"`
	Counsellor string `query:"counsellor" validate:"omitempty,max=120"`
}

type DashboardQuery struct {
	CourseID string `query:"course_id" validate:"omitempty,uuid"`
	Session  string `query:"session" validate:"omitempty,session"`
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// DueFollowUp is an open follow-up joined with its enquiry.
type DueFollowUp struct {
	LeadFollowUpID      uuid.UUID `json:"lead_follow_up_id"`
	EnquiryID           uuid.UUID `json:"enquiry_id"`
	EnquiryNo           string    `json:"enquiry_no"`
	EnquiryStudentName  string    `json:"enquiry_student_name"`
	EnquiryPhone        string    `json:"enquiry_phone"`
	EnquiryStatus       string    `json:"enquiry_status"`
	LeadFollowUpChannel string    `json:"lead_follow_up_channel"`
	LeadFollowUpOutcome string    `json:"lead_follow_up_outcome"`
	LeadFollowUpNextAt  time.Time `json:"lead_follow_up_next_at"`
	LeadFollowUpNote    *string   `json:"lead_follow_up_note,omitempty"`
	LeadFollowUpByName  *string   `json:"lead_follow_up_created_by_name,omitempty"`
}

type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type DashboardResponse struct {
	Total            int64    `json:"total"`
	Admitted         int64    `json:"admitted"`
	Cold             int64    `json:"cold"`
	ConversionRate   float64  `json:"conversion_rate"`
	ByStatus         []Bucket `json:"by_status"`
	BySource         []Bucket `json:"by_source"`
	ByCounsellor     []Bucket `json:"by_counsellor"`
	ByTelecaller     []Bucket `json:"by_telecaller"`
	FollowUpsToday   int64    `json:"follow_ups_today"`
	FollowUpsOverdue int64    `json:"follow_ups_overdue"`
}
