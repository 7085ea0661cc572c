package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// service_requests — заявка пользователя на одну услугу.
type ServiceRequest struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	ServiceID  uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index"`

	// Заполняется только после подбора: инвариант "professional задан
	// тогда и только тогда, когда статус assigned/accepted/completed".
	ProfessionalID *uuid.UUID `gorm:"type:uuid;index"`

	Status RequestStatus `gorm:"type:varchar(32);not null;index"`

	TotalPrice float64 `gorm:"not null;default:0"`
	Remarks    string  `gorm:"type:text"`

	CreatedAt   time.Time  `gorm:"not null;default:now()"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()"`
	CompletedAt *time.Time `gorm:"type:timestamp with time zone"`

	// Оптимистическая блокировка: каждый переход выполняется как
	// UPDATE ... WHERE id = ? AND version = ?.
	Version int64 `gorm:"not null;default:0"`

	// Суррогат правила "не больше одной активной заявки на пару
	// (пользователь, услуга)": пока заявка активна, здесь "user/service"
	// под уникальным индексом; на терминальном переходе поле обнуляется.
	// NULL в уникальный индекс не попадает.
	ActiveKey *string `gorm:"type:varchar(80);uniqueIndex"`

	User         *User         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Service      *Service      `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Location     *Location     `gorm:"foreignKey:LocationID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Professional *Professional `gorm:"foreignKey:ProfessionalID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// ActiveKeyFor собирает значение ActiveKey для активной заявки.
func ActiveKeyFor(userID, serviceID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", userID, serviceID)
}
