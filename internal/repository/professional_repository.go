package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
)

// ProfessionalRepository — справочник исполнителей (только чтение
// со стороны движка подбора).
type ProfessionalRepository interface {
	// FindAvailable возвращает первого пригодного исполнителя в городе.
	// categoryID == uuid.Nil — подбор без фильтра по категории.
	// Отсутствие кандидата — это (nil, nil), не ошибка.
	FindAvailable(ctx context.Context, locationID, categoryID uuid.UUID) (*model.Professional, error)
	// DisplayName возвращает имя пользователя, стоящего за исполнителем.
	DisplayName(ctx context.Context, id uuid.UUID) (string, error)
}

type GormProfessionalRepository struct {
	db *gorm.DB
}

func NewGormProfessionalRepository(db *gorm.DB) *GormProfessionalRepository {
	return &GormProfessionalRepository{db: db}
}

func (r *GormProfessionalRepository) FindAvailable(
	ctx context.Context,
	locationID, categoryID uuid.UUID,
) (*model.Professional, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Professional{}).
		Where("location_id = ?", locationID).
		Where("available = ?", true).
		Where("verification = ?", model.VerificationVerified)

	if categoryID != uuid.Nil {
		q = q.Where("category_id = ?", categoryID)
	}

	// Детерминированный порядок: при одинаковом снимке справочника
	// повторный подбор вернёт того же исполнителя.
	var p model.Professional
	err := q.Order("rating DESC").
		Order("created_at ASC").
		Order("id ASC").
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormProfessionalRepository) DisplayName(ctx context.Context, id uuid.UUID) (string, error) {
	var name string
	err := r.db.WithContext(ctx).
		Table("users").
		Select("users.name").
		Joins("JOIN professionals ON professionals.user_id = users.id").
		Where("professionals.id = ?", id).
		Scan(&name).Error
	if err != nil {
		return "", err
	}
	return name, nil
}
