package workflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
)

// Synchronizer применяет переход статуса как одну атомарную единицу:
// строки ServiceRequest и AssignRequest коммитятся вместе или никак.
// Вместо row-level блокировок используется оптимистическая проверка
// версии: UPDATE ... WHERE id = ? AND version = ?. Ноль затронутых
// строк означает, что сущность изменили между нашим чтением и записью —
// вызывающий обязан повторить операцию с чтения, не только запись.
type Synchronizer struct {
	db *gorm.DB
}

func NewSynchronizer(db *gorm.DB) *Synchronizer {
	return &Synchronizer{db: db}
}

// ApplyJoint зеркалит решение исполнителя на оба объекта. req и asg —
// снимки, прочитанные вызывающим; их версии входят в условие записи.
func (s *Synchronizer) ApplyJoint(
	ctx context.Context,
	req *model.ServiceRequest,
	asg *model.AssignRequest,
	decision model.AssignmentStatus,
	eventType model.EventType,
	payload map[string]any,
) error {
	if !asg.Status.CanTransition(decision) {
		return newErr(KindTransition, "assignment cannot move from "+string(asg.Status)+" to "+string(decision))
	}
	mirrored := decision.RequestStatusOf()
	if !req.Status.CanTransition(mirrored) {
		return newErr(KindTransition, "request cannot move from "+string(req.Status)+" to "+string(mirrored))
	}

	now := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		asgUpdates := map[string]any{
			"status":     decision,
			"version":    asg.Version + 1,
			"updated_at": now,
		}
		switch decision {
		case model.AssignmentStatusAccepted, model.AssignmentStatusRejected:
			asgUpdates["decided_at"] = now
		case model.AssignmentStatusCompleted:
			asgUpdates["completed_at"] = now
		}

		res := tx.Model(&model.AssignRequest{}).
			Where("id = ? AND version = ?", asg.ID, asg.Version).
			Updates(asgUpdates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSyncConflict
		}

		reqUpdates := map[string]any{
			"status":     mirrored,
			"version":    req.Version + 1,
			"updated_at": now,
		}
		if mirrored == model.RequestStatusCompleted {
			reqUpdates["completed_at"] = now
		}
		if mirrored == model.RequestStatusRejected {
			// инвариант: professional задан только в assigned/accepted/completed
			reqUpdates["professional_id"] = nil
		}
		if mirrored.Terminal() {
			reqUpdates["active_key"] = nil
		}

		res = tx.Model(&model.ServiceRequest{}).
			Where("id = ? AND version = ?", req.ID, req.Version).
			Updates(reqUpdates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSyncConflict
		}

		return appendEvent(tx, &model.StatusEvent{
			EventType:        eventType,
			ServiceRequestID: req.ID,
			AssignRequestID:  &asg.ID,
			OldStatus:        string(req.Status),
			NewStatus:        string(mirrored),
		}, payload)
	})
	if err != nil {
		if e, ok := err.(*Error); ok {
			return e
		}
		return mapStoreError(err)
	}
	return nil
}

// ApplyRequest применяет переход, затрагивающий только заявку
// (пользовательская отмена pending-заявки).
func (s *Synchronizer) ApplyRequest(
	ctx context.Context,
	req *model.ServiceRequest,
	newStatus model.RequestStatus,
	eventType model.EventType,
	payload map[string]any,
) error {
	if !req.Status.CanTransition(newStatus) {
		return newErr(KindTransition, "request cannot move from "+string(req.Status)+" to "+string(newStatus))
	}

	now := time.Now().UTC()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":     newStatus,
			"version":    req.Version + 1,
			"updated_at": now,
		}
		if newStatus.Terminal() {
			updates["active_key"] = nil
		}

		res := tx.Model(&model.ServiceRequest{}).
			Where("id = ? AND version = ?", req.ID, req.Version).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSyncConflict
		}

		return appendEvent(tx, &model.StatusEvent{
			EventType:        eventType,
			ServiceRequestID: req.ID,
			OldStatus:        string(req.Status),
			NewStatus:        string(newStatus),
		}, payload)
	})
	if err != nil {
		if e, ok := err.(*Error); ok {
			return e
		}
		return mapStoreError(err)
	}
	return nil
}

func appendEvent(tx *gorm.DB, ev *model.StatusEvent, payload map[string]any) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		ev.Payload = raw
	}
	return tx.Create(ev).Error
}
