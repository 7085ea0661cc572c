package model

import (
	"time"

	"github.com/google/uuid"
)

// users
type User struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	Name   string `gorm:"type:varchar(255);not null"`
	Email  string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Mobile string `gorm:"type:varchar(32);uniqueIndex"`

	Active bool `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	// Навигационные поля (опционально)
	Addresses    []UserAddress `gorm:"foreignKey:UserID"`
	Professional *Professional `gorm:"foreignKey:UserID"`
}

// user_addresses — адреса пользователя; первый по дате создания
// считается адресом по умолчанию.
type UserAddress struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	LocationID uuid.UUID `gorm:"type:uuid;not null;index"`

	Address string `gorm:"type:varchar(255);not null"`
	Pincode string `gorm:"type:varchar(16)"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Location *Location `gorm:"foreignKey:LocationID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}
