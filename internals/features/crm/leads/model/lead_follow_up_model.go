package model

import (
	"time"

	"github.com/google/uuid"
)

var FollowUpChannels = []string{"call", "whatsapp", "sms", "email", "visit"}

// Outcomes a counsellor can log after a contact attempt.
const (
	OutcomeInterested    = "interested"
	OutcomeCallBack      = "call_back"
	OutcomeNoAnswer      = "no_answer"
	OutcomeVisitPlanned  = "visit_planned"
	OutcomeNotInterested = "not_interested"
	OutcomeWrongNumber   = "wrong_number"
)

var FollowUpOutcomes = []string{
	OutcomeInterested, OutcomeCallBack, OutcomeNoAnswer,
	OutcomeVisitPlanned, OutcomeNotInterested, OutcomeWrongNumber,
}

// Reached reports whether the outcome means someone actually answered.
func Reached(outcome string) bool {
	return outcome != OutcomeNoAnswer && outcome != OutcomeWrongNumber
}

type LeadFollowUpModel struct {
	LeadFollowUpID            uuid.UUID  `json:"lead_follow_up_id" gorm:"column:lead_follow_up_id;type:uuid;default:gen_random_uuid();primaryKey"`
	LeadFollowUpEnquiryID     uuid.UUID  `json:"lead_follow_up_enquiry_id" gorm:"column:lead_follow_up_enquiry_id;type:uuid;not null"`
	LeadFollowUpChannel       string     `json:"lead_follow_up_channel" gorm:"column:lead_follow_up_channel;type:varchar(20);not null"`
	LeadFollowUpNote          *string    `json:"lead_follow_up_note,omitempty" gorm:"column:lead_follow_up_note;type:text"`
	LeadFollowUpOutcome       string     `json:"lead_follow_up_outcome" gorm:"column:lead_follow_up_outcome;type:varchar(30);not null"`
	LeadFollowUpNextAt        *time.Time `json:"lead_follow_up_next_at,omitempty" gorm:"column:lead_follow_up_next_at;type:timestamptz"`
	LeadFollowUpClosedAt      *time.Time `json:"lead_follow_up_closed_at,omitempty" gorm:"column:lead_follow_up_closed_at;type:timestamptz"`
	LeadFollowUpCreatedBy     *uuid.UUID `json:"lead_follow_up_created_by,omitempty" gorm:"column:lead_follow_up_created_by;type:uuid"`
	LeadFollowUpCreatedByName *string    `json:"lead_follow_up_created_by_name,omitempty" gorm:"column:lead_follow_up_created_by_name;type:varchar(120)"`

	LeadFollowUpCreatedAt time.Time `json:"lead_follow_up_created_at" gorm:"column:lead_follow_up_created_at;type:timestamptz;not null;autoCreateTime"`
	LeadFollowUpUpdatedAt time.Time `json:"lead_follow_up_updated_at" gorm:"column:lead_follow_up_updated_at;type:timestamptz;not null;autoUpdateTime"`
}

func (LeadFollowUpModel) TableName() string { return "lead_follow_ups" }
