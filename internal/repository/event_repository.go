package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
)

// EventRepository — чтение журнала переходов. Запись события идёт
// в транзакции перехода, не через репозиторий.
type EventRepository interface {
	// События одной заявки в порядке записи.
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.StatusEvent, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.StatusEvent, error) {
	var events []model.StatusEvent
	err := r.db.WithContext(ctx).
		Where("service_request_id = ?", requestID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
