package model

import (
	"time"

	"github.com/google/uuid"
)

// Статус проверки анкеты исполнителя. Проставляется администратором
// вне этого сервиса; движок подбора только читает его.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// professionals — справочник исполнителей.
type Professional struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index"`

	Rating     float64 `gorm:"not null;default:5"`
	Experience float64 `gorm:"not null;default:0"`

	// Флаг доступности переключает сам исполнитель; подбор его только читает.
	Available bool `gorm:"not null;default:true;index"`

	Verification VerificationStatus `gorm:"type:varchar(32);not null;default:'pending';index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Location *Location `gorm:"foreignKey:LocationID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// Matchable — исполнитель пригоден для подбора.
func (p *Professional) Matchable() bool {
	return p.Available && p.Verification == VerificationVerified
}
