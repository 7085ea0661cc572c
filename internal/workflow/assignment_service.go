package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
	"github.com/homeserve/booking-core/internal/notify"
	"github.com/homeserve/booking-core/internal/repository"
)

// AssignmentService — реестр назначений: решения исполнителя
// (accept / reject / complete) и их зеркалирование на заявку.
type AssignmentService struct {
	requests    repository.RequestRepository
	assignments repository.AssignmentRepository

	sync      *Synchronizer
	publisher notify.Publisher
	retry     RetryPolicy
}

func NewAssignmentService(
	requests repository.RequestRepository,
	assignments repository.AssignmentRepository,
	sync *Synchronizer,
	publisher notify.Publisher,
	retry RetryPolicy,
) *AssignmentService {
	return &AssignmentService{
		requests:    requests,
		assignments: assignments,
		sync:        sync,
		publisher:   publisher,
		retry:       retry,
	}
}

// ApplyDecision применяет решение исполнителя к назначению и атомарно
// зеркалит его на родительскую заявку. Проигранная оптимистическая
// проверка (например, гонка с другим решением) повторяется со свежего
// чтения; если после перечитывания переход уже невозможен, наружу
// уходит честная ошибка перехода, а не тихий успех.
func (s *AssignmentService) ApplyDecision(
	ctx context.Context,
	assignmentID, professionalID uuid.UUID,
	decision model.AssignmentStatus,
) (*model.AssignRequest, error) {
	switch decision {
	case model.AssignmentStatusAccepted, model.AssignmentStatusRejected, model.AssignmentStatusCompleted:
	default:
		return nil, newErr(KindValidation, "decision must be accepted, rejected or completed")
	}
	if assignmentID == uuid.Nil || professionalID == uuid.Nil {
		return nil, newErr(KindValidation, "assignment id and professional id are required")
	}

	var (
		updated   *model.AssignRequest
		requestID uuid.UUID
		userID    uuid.UUID
	)
	err := withRetry(ctx, s.retry, func() error {
		asg, err := s.assignments.GetByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newErr(KindNotFound, "assignment not found")
			}
			return mapStoreError(err)
		}

		// Авторизация — до открытия транзакции.
		if asg.ProfessionalID != professionalID {
			return newErr(KindUnauthorized, "assignment belongs to another professional")
		}

		if asg.Status.Terminal() {
			return ErrAlreadyTerminal
		}
		if decision == model.AssignmentStatusCompleted && asg.Status != model.AssignmentStatusAccepted {
			return newErr(KindTransition, "completion must follow acceptance")
		}

		req, err := s.requests.GetByID(ctx, asg.ServiceRequestID)
		if err != nil {
			return mapStoreError(err)
		}

		eventType := model.EventTypeDecisionApplied
		if decision == model.AssignmentStatusCompleted {
			eventType = model.EventTypeRequestCompleted
		}

		if err := s.sync.ApplyJoint(ctx, req, asg, decision, eventType, map[string]any{
			"professional_id": professionalID.String(),
			"decision":        string(decision),
		}); err != nil {
			return err
		}

		now := time.Now().UTC()
		asg.Status = decision
		switch decision {
		case model.AssignmentStatusAccepted, model.AssignmentStatusRejected:
			asg.DecidedAt = &now
		case model.AssignmentStatusCompleted:
			asg.CompletedAt = &now
		}

		updated = asg
		requestID = req.ID
		userID = req.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.RequestStatusChanged(ctx, notify.StatusChanged{
		RequestID:  requestID,
		UserID:     userID,
		NewStatus:  string(decision.RequestStatusOf()),
		OccurredAt: time.Now().UTC(),
	})

	return updated, nil
}

// ListProfessionalAssignments — назначения исполнителя, свежие первыми.
func (s *AssignmentService) ListProfessionalAssignments(
	ctx context.Context,
	professionalID uuid.UUID,
	limit, offset int,
) ([]model.AssignRequest, int64, error) {
	assignments, total, err := s.assignments.ListByProfessional(ctx, professionalID, limit, offset)
	if err != nil {
		return nil, 0, mapStoreError(err)
	}
	return assignments, total, nil
}
