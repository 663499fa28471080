package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GatewayEventStatus string

const (
	GatewayEventStatusReceived  GatewayEventStatus = "received"
	GatewayEventStatusProcessed GatewayEventStatus = "processed"
	GatewayEventStatusIgnored   GatewayEventStatus = "ignored"
	GatewayEventStatusFailed    GatewayEventStatus = "failed"
)

const GatewayProviderMidtrans = "midtrans"

// PaymentGatewayEventModel logs every gateway callback, one row per notification.
type PaymentGatewayEventModel struct {
	PaymentGatewayEventID          uuid.UUID          `json:"payment_gateway_event_id" gorm:"column:payment_gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey"`
	PaymentGatewayEventPaymentID   *uuid.UUID         `json:"payment_gateway_event_payment_id,omitempty" gorm:"column:payment_gateway_event_payment_id;type:uuid"`
	PaymentGatewayEventProvider    string             `json:"payment_gateway_event_provider" gorm:"column:payment_gateway_event_provider;type:varchar(30);not null"`
	PaymentGatewayEventType        *string            `json:"payment_gateway_event_type,omitempty" gorm:"column:payment_gateway_event_type;type:varchar(40)"`
	PaymentGatewayEventExternalID  *string            `json:"payment_gateway_event_external_id,omitempty" gorm:"column:payment_gateway_event_external_id;type:varchar(80)"`
	PaymentGatewayEventExternalRef *string            `json:"payment_gateway_event_external_ref,omitempty" gorm:"column:payment_gateway_event_external_ref;type:varchar(120)"`
	PaymentGatewayEventPayload     datatypes.JSON     `json:"payment_gateway_event_payload,omitempty" gorm:"column:payment_gateway_event_payload;type:jsonb"`
	PaymentGatewayEventSignature   *string            `json:"-" gorm:"column:payment_gateway_event_signature;type:text"`
	PaymentGatewayEventStatus      GatewayEventStatus `json:"payment_gateway_event_status" gorm:"column:payment_gateway_event_status;type:varchar(20);not null;default:'received'"`
	PaymentGatewayEventError       *string            `json:"payment_gateway_event_error,omitempty" gorm:"column:payment_gateway_event_error;type:text"`
	PaymentGatewayEventProcessedAt *time.Time         `json:"payment_gateway_event_processed_at,omitempty" gorm:"column:payment_gateway_event_processed_at;type:timestamptz"`
	PaymentGatewayEventCreatedAt   time.Time          `json:"payment_gateway_event_created_at" gorm:"column:payment_gateway_event_created_at;type:timestamptz;not null;autoCreateTime"`
}

func (PaymentGatewayEventModel) TableName() string { return "payment_gateway_events" }
