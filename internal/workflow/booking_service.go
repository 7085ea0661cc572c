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

// BookingInput — параметры новой заявки.
type BookingInput struct {
	ServiceID  uuid.UUID
	TotalPrice float64
	Remarks    string
}

// BookingSnapshot — совместный снимок заявки и её назначения.
type BookingSnapshot struct {
	Request          *model.ServiceRequest
	Assignment       *model.AssignRequest
	ProfessionalName string
}

// BookingService — реестр заявок: создание, отмена, чтение.
type BookingService struct {
	db *gorm.DB

	requests      repository.RequestRepository
	assignments   repository.AssignmentRepository
	users         repository.UserRepository
	catalog       repository.CatalogRepository
	professionals repository.ProfessionalRepository
	events        repository.EventRepository

	matcher   *Matcher
	sync      *Synchronizer
	publisher notify.Publisher
	retry     RetryPolicy
}

func NewBookingService(
	db *gorm.DB,
	requests repository.RequestRepository,
	assignments repository.AssignmentRepository,
	users repository.UserRepository,
	catalog repository.CatalogRepository,
	professionals repository.ProfessionalRepository,
	events repository.EventRepository,
	matcher *Matcher,
	sync *Synchronizer,
	publisher notify.Publisher,
	retry RetryPolicy,
) *BookingService {
	return &BookingService{
		db:            db,
		requests:      requests,
		assignments:   assignments,
		users:         users,
		catalog:       catalog,
		professionals: professionals,
		events:        events,
		matcher:       matcher,
		sync:          sync,
		publisher:     publisher,
		retry:         retry,
	}
}

// CreateRequest создаёт заявку. Если подбор нашёл исполнителя, заявка
// сразу assigned и парное назначение создаётся в той же транзакции;
// иначе заявка остаётся pending.
func (s *BookingService) CreateRequest(ctx context.Context, userID uuid.UUID, in BookingInput) (*BookingSnapshot, error) {
	// Валидация и авторизация — до открытия транзакции.
	if in.ServiceID == uuid.Nil {
		return nil, newErr(KindValidation, "service id is required")
	}
	if in.TotalPrice <= 0 {
		return nil, newErr(KindValidation, "total price must be positive")
	}

	if _, err := validateBookingActor(ctx, s.users, userID); err != nil {
		return nil, err
	}

	addr, err := s.users.DefaultAddress(ctx, userID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if addr == nil {
		return nil, ErrAddressRequired
	}

	svc, err := s.catalog.GetService(ctx, in.ServiceID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	active, err := s.catalog.IsServiceActiveInLocation(ctx, svc.CategoryID, addr.LocationID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if !active {
		return nil, ErrServiceUnavailable
	}

	// Быстрая проверка дубля; настоящий арбитр гонки — уникальный
	// индекс по active_key при вставке.
	hasActive, err := s.requests.HasActive(ctx, userID, in.ServiceID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	if hasActive {
		return nil, ErrDuplicateActiveBooking
	}

	var snap *BookingSnapshot
	err = withRetry(ctx, s.retry, func() error {
		snap = nil

		// Подбор читает справочник без резервирования; проигравшая
		// гонку заявка просто останется pending.
		candidate, err := s.matcher.Match(ctx, addr.LocationID, svc.CategoryID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		activeKey := model.ActiveKeyFor(userID, in.ServiceID)
		req := &model.ServiceRequest{
			ID:         uuid.New(),
			UserID:     userID,
			ServiceID:  in.ServiceID,
			LocationID: addr.LocationID,
			Status:     model.RequestStatusPending,
			TotalPrice: in.TotalPrice,
			Remarks:    in.Remarks,
			CreatedAt:  now,
			UpdatedAt:  now,
			ActiveKey:  &activeKey,
		}

		var asg *model.AssignRequest
		if candidate != nil {
			req.Status = model.RequestStatusAssigned
			req.ProfessionalID = &candidate.ID
			asg = &model.AssignRequest{
				ID:               uuid.New(),
				ServiceRequestID: req.ID,
				ProfessionalID:   candidate.ID,
				Status:           model.AssignmentStatusAssigned,
				AssignedAt:       now,
				UpdatedAt:        now,
			}
		}

		txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(req).Error; err != nil {
				return err
			}
			if asg != nil {
				if err := tx.Create(asg).Error; err != nil {
					return err
				}
			}

			eventType := model.EventTypeRequestCreated
			if asg != nil {
				eventType = model.EventTypeRequestAssigned
			}
			return appendEvent(tx, &model.StatusEvent{
				EventType:        eventType,
				ServiceRequestID: req.ID,
				AssignRequestID:  assignmentIDOrNil(asg),
				NewStatus:        string(req.Status),
			}, map[string]any{"user_id": userID.String()})
		})
		if txErr != nil {
			return mapStoreError(txErr)
		}

		snap = &BookingSnapshot{Request: req, Assignment: asg}
		if candidate != nil {
			if name, err := s.professionals.DisplayName(ctx, candidate.ID); err == nil {
				snap.ProfessionalName = name
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.RequestStatusChanged(ctx, notify.StatusChanged{
		RequestID:  snap.Request.ID,
		UserID:     userID,
		NewStatus:  string(snap.Request.Status),
		OccurredAt: snap.Request.CreatedAt,
	})

	return snap, nil
}

// CancelRequest — пользовательская отмена. Легальна только из pending:
// после коммита assigned отмена обязана падать с TransitionError,
// а не тихо проходить. Повторная отмена — тоже ошибка, не успех.
func (s *BookingService) CancelRequest(ctx context.Context, requestID, userID uuid.UUID) (*model.ServiceRequest, error) {
	if requestID == uuid.Nil || userID == uuid.Nil {
		return nil, newErr(KindValidation, "request id and user id are required")
	}

	var cancelled *model.ServiceRequest
	err := withRetry(ctx, s.retry, func() error {
		req, err := s.requests.GetByIDForUser(ctx, requestID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newErr(KindNotFound, "booking not found")
			}
			return mapStoreError(err)
		}

		if err := s.sync.ApplyRequest(ctx, req, model.RequestStatusCancelled,
			model.EventTypeRequestCancelled,
			map[string]any{"user_id": userID.String()},
		); err != nil {
			return err
		}

		req.Status = model.RequestStatusCancelled
		req.ActiveKey = nil
		cancelled = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.RequestStatusChanged(ctx, notify.StatusChanged{
		RequestID:  cancelled.ID,
		UserID:     userID,
		NewStatus:  string(cancelled.Status),
		OccurredAt: time.Now().UTC(),
	})

	return cancelled, nil
}

// GetRequest возвращает совместный снимок заявки и назначения.
func (s *BookingService) GetRequest(ctx context.Context, requestID, userID uuid.UUID) (*BookingSnapshot, error) {
	req, err := s.requests.GetByIDForUser(ctx, requestID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newErr(KindNotFound, "booking not found")
		}
		return nil, mapStoreError(err)
	}

	snap := &BookingSnapshot{Request: req}

	asg, err := s.assignments.GetByRequestID(ctx, req.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mapStoreError(err)
	}
	if asg != nil && err == nil {
		snap.Assignment = asg
		if name, err := s.professionals.DisplayName(ctx, asg.ProfessionalID); err == nil {
			snap.ProfessionalName = name
		}
	}

	return snap, nil
}

// ListUserRequests — заявки пользователя, свежие первыми.
func (s *BookingService) ListUserRequests(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]model.ServiceRequest, int64, error) {
	requests, total, err := s.requests.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, mapStoreError(err)
	}
	return requests, total, nil
}

// RequestHistory — журнал смен статуса заявки в порядке записи.
// Доступен только владельцу заявки.
func (s *BookingService) RequestHistory(ctx context.Context, requestID, userID uuid.UUID) ([]model.StatusEvent, error) {
	if _, err := s.requests.GetByIDForUser(ctx, requestID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newErr(KindNotFound, "booking not found")
		}
		return nil, mapStoreError(err)
	}

	events, err := s.events.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return events, nil
}

func assignmentIDOrNil(asg *model.AssignRequest) *uuid.UUID {
	if asg == nil {
		return nil
	}
	return &asg.ID
}
