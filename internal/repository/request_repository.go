package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
)

// RequestRepository — чтение заявок. Записи идут через транзакции
// сервисов ядра, не через репозиторий.
type RequestRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.ServiceRequest, error)
	// HasActive — есть ли активная заявка на пару (пользователь, услуга).
	HasActive(ctx context.Context, userID, serviceID uuid.UUID) (bool, error)
	// Список заявок пользователя, свежие первыми.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.ServiceRequest, int64, error)
}

// Реализация на GORM.
type GormRequestRepository struct {
	db *gorm.DB
}

func NewGormRequestRepository(db *gorm.DB) *GormRequestRepository {
	return &GormRequestRepository{db: db}
}

func (r *GormRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormRequestRepository) GetByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *GormRequestRepository) HasActive(ctx context.Context, userID, serviceID uuid.UUID) (bool, error) {
	key := model.ActiveKeyFor(userID, serviceID)
	var req model.ServiceRequest
	err := r.db.WithContext(ctx).
		Select("id").
		Where("active_key = ?", key).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *GormRequestRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]model.ServiceRequest, int64, error) {
	var (
		requests []model.ServiceRequest
		total    int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.ServiceRequest{}).
		Where("user_id = ?", userID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}
