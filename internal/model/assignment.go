package model

import (
	"time"

	"github.com/google/uuid"
)

// assign_requests — привязка заявки к конкретному исполнителю.
// На одну заявку не бывает двух назначений: ServiceRequestID уникален.
type AssignRequest struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	ServiceRequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProfessionalID   uuid.UUID `gorm:"type:uuid;not null;index"`

	Status AssignmentStatus `gorm:"type:varchar(32);not null;index"`

	AssignedAt  time.Time  `gorm:"not null;default:now()"`
	DecidedAt   *time.Time `gorm:"type:timestamp with time zone"`
	CompletedAt *time.Time `gorm:"type:timestamp with time zone"`

	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Та же схема оптимистической блокировки, что и у ServiceRequest.
	Version int64 `gorm:"not null;default:0"`

	ServiceRequest *ServiceRequest `gorm:"foreignKey:ServiceRequestID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Professional   *Professional   `gorm:"foreignKey:ProfessionalID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
