package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
)

// UserRepository — доступ к пользователям и их адресам. Регистрация и
// управление профилем живут в отдельном identity-сервисе; здесь только
// чтение, нужное движку бронирования.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// DefaultAddress — адрес по умолчанию (первый по дате создания).
	// Отсутствие адреса — это (nil, nil).
	DefaultAddress(ctx context.Context, userID uuid.UUID) (*model.UserAddress, error)
}

type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormUserRepository) DefaultAddress(ctx context.Context, userID uuid.UUID) (*model.UserAddress, error) {
	var addr model.UserAddress
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		First(&addr).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &addr, nil
}
