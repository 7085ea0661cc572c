package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Тип события аудита.
type EventType string

const (
	EventTypeRequestCreated    EventType = "request_created"
	EventTypeRequestAssigned   EventType = "request_assigned"
	EventTypeRequestCancelled  EventType = "request_cancelled"
	EventTypeDecisionApplied   EventType = "decision_applied"
	EventTypeRequestCompleted  EventType = "request_completed"
)

// status_events — журнал переходов. Строка пишется в той же транзакции,
// что и сам переход; публикация наружу идёт уже после коммита.
type StatusEvent struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	ServiceRequestID uuid.UUID  `gorm:"type:uuid;not null;index"`
	AssignRequestID  *uuid.UUID `gorm:"type:uuid;index"`

	OldStatus string `gorm:"type:varchar(32)"`
	NewStatus string `gorm:"type:varchar(32);not null"`

	// Произвольные детали перехода (актор, причина и т.п.).
	Payload datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
}
