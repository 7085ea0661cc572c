package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
)

// AssignmentRepository — чтение назначений; записи идут через
// транзакции сервисов ядра.
type AssignmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.AssignRequest, error)
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*model.AssignRequest, error)
	// Список назначений исполнителя, свежие первыми.
	ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]model.AssignRequest, int64, error)
}

type GormAssignmentRepository struct {
	db *gorm.DB
}

func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

func (r *GormAssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.AssignRequest, error) {
	var asg model.AssignRequest
	if err := r.db.WithContext(ctx).First(&asg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &asg, nil
}

func (r *GormAssignmentRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*model.AssignRequest, error) {
	var asg model.AssignRequest
	if err := r.db.WithContext(ctx).First(&asg, "service_request_id = ?", requestID).Error; err != nil {
		return nil, err
	}
	return &asg, nil
}

func (r *GormAssignmentRepository) ListByProfessional(
	ctx context.Context,
	professionalID uuid.UUID,
	limit, offset int,
) ([]model.AssignRequest, int64, error) {
	var (
		assignments []model.AssignRequest
		total       int64
	)

	q := r.db.WithContext(ctx).
		Model(&model.AssignRequest{}).
		Where("professional_id = ?", professionalID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Order("assigned_at DESC").Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}
