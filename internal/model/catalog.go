package model

import (
	"time"

	"github.com/google/uuid"
)

// locations — города, в которых доступна платформа.
type Location struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	City  string `gorm:"type:varchar(255);not null;uniqueIndex"`
	State string `gorm:"type:varchar(255);not null"`

	Active bool `gorm:"not null;default:true;index"`
}

// categories — виды услуг верхнего уровня (сантехника, уборка и т.п.).
type Category struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string `gorm:"type:text"`

	Active bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

// services
type Service struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CategoryID uuid.UUID `gorm:"type:uuid;not null;index"`

	Name        string  `gorm:"type:varchar(255);not null"`
	Description string  `gorm:"type:text"`
	BasePrice   float64 `gorm:"not null;default:0"`

	Active bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// service_locations — карта активности категории в городе.
// Услуга доступна пользователю, только если для её категории и города
// пользователя есть активная запись.
type ServiceLocation struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CategoryID uuid.UUID `gorm:"type:uuid;not null;index:idx_service_locations_pair"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index:idx_service_locations_pair"`

	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Location *Location `gorm:"foreignKey:LocationID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
