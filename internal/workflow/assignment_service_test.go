package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/homeserve/booking-core/internal/model"
)

// создаёт заявку с назначенным исполнителем и возвращает снимок + исполнителя
func (f *fixture) bookAssigned(t *testing.T) (*BookingSnapshot, model.Professional) {
	t.Helper()

	pro := f.seedProfessional(t, 5)
	snap, err := f.bookings.CreateRequest(context.Background(), f.user.ID, BookingInput{
		ServiceID:  f.service.ID,
		TotalPrice: 100,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if snap.Assignment == nil {
		t.Fatalf("precondition: expected assigned booking")
	}
	return snap, pro
}

func TestApplyDecision_AcceptMirrorsBothRows(t *testing.T) {
	f := newFixture(t, false)
	snap, pro := f.bookAssigned(t)

	updated, err := f.assignments.ApplyDecision(
		context.Background(), snap.Assignment.ID, pro.ID, model.AssignmentStatusAccepted)
	if err != nil {
		t.Fatalf("ApplyDecision: %v", err)
	}
	if updated.Status != model.AssignmentStatusAccepted {
		t.Fatalf("assignment status = %s, want accepted", updated.Status)
	}
	if updated.DecidedAt == nil {
		t.Fatalf("expected decided_at to be set")
	}

	var req model.ServiceRequest
	if err := f.db.First(&req, "id = ?", snap.Request.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if req.Status != model.RequestStatusAccepted {
		t.Fatalf("request status = %s, want accepted", req.Status)
	}
	if req.Version != snap.Request.Version+1 {
		t.Fatalf("request version = %d, want %d", req.Version, snap.Request.Version+1)
	}

	var asg model.AssignRequest
	if err := f.db.First(&asg, "id = ?", snap.Assignment.ID).Error; err != nil {
		t.Fatalf("load assignment: %v", err)
	}
	if asg.Version != snap.Assignment.Version+1 {
		t.Fatalf("assignment version = %d, want %d", asg.Version, snap.Assignment.Version+1)
	}

	var events int64
	if err := f.db.Model(&model.StatusEvent{}).
		Where("service_request_id = ? AND event_type = ?", req.ID, model.EventTypeDecisionApplied).
		Count(&events).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if events != 1 {
		t.Fatalf("decision events = %d, want 1", events)
	}
}

// Принятую работу можно завершить; обе стороны оказываются completed
// с отметками времени, active_key освобождается.
func TestApplyDecision_AcceptThenComplete(t *testing.T) {
	f := newFixture(t, false)
	snap, pro := f.bookAssigned(t)

	if _, err := f.assignments.ApplyDecision(
		context.Background(), snap.Assignment.ID, pro.ID, model.AssignmentStatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}
	updated, err := f.assignments.ApplyDecision(
		context.Background(), snap.Assignment.ID, pro.ID, model.AssignmentStatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if updated.Status != model.AssignmentStatusCompleted {
		t.Fatalf("assignment status = %s, want completed", updated.Status)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("expected assignment completed_at")
	}

	var req model.ServiceRequest
	if err := f.db.First(&req, "id = ?", snap.Request.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if req.Status != model.RequestStatusCompleted {
		t.Fatalf("request status = %s, want completed", req.Status)
	}
	if req.CompletedAt == nil {
		t.Fatalf("expected request completed_at")
	}
	if req.ActiveKey != nil {
		t.Fatalf("active_key = %v, want cleared", *req.ActiveKey)
	}
}

func TestApplyDecision_CompleteBeforeAcceptFails(t *testing.T) {
	f := newFixture(t, false)
	snap, pro := f.bookAssigned(t)

	_, err := f.assignments.ApplyDecision(
		context.Background(), snap.Assignment.ID, pro.ID, model.AssignmentStatusCompleted)
	if !errors.Is(err, ErrTransition) {
		t.Fatalf("err = %v, want transition error", err)
	}
}

func TestApplyDecision_RejectIsTerminal(t *testing.T) {
	f := newFixture(t, false)
	snap, pro := f.bookAssigned(t)

	updated, err := f.assignments.ApplyDecision(
		context.Background(), snap.Assignment.ID, pro.ID, model.AssignmentStatusRejected)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if updated.Status != model.AssignmentStatusRejected {
		t.Fatalf("assignment status = %s, want rejected", updated.Status)
	}

	var req model.ServiceRequest
	if err := f.db.First(&req, "id = ?", snap.Request.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if req.Status != model.RequestStatusRejected {
		t.Fatalf("request status = %s, want rejected", req.Status)
	}
	if req.ActiveKey != nil {
		t.Fatalf("active_key = %v, want cleared", *req.ActiveKey)
	}
	// Отклонённая заявка не ссылается на исполнителя.
	if req.ProfessionalID != nil {
		t.Fatalf("professional_id = %s, want cleared", *req.ProfessionalID)
	}

	// Повторное решение по терминальному назначению — конфликт.
	_, err = f.assignments.ApplyDecision(
		context.Background(), snap.Assignment.ID, pro.ID, model.AssignmentStatusAccepted)
	if !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("err = %v, want already terminal", err)
	}
}

func TestApplyDecision_ForeignProfessionalUnauthorized(t *testing.T) {
	f := newFixture(t, false)
	snap, _ := f.bookAssigned(t)

	_, err := f.assignments.ApplyDecision(
		context.Background(), snap.Assignment.ID, uuid.New(), model.AssignmentStatusAccepted)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}

	// Чужое решение ничего не меняет.
	var asg model.AssignRequest
	if err := f.db.First(&asg, "id = ?", snap.Assignment.ID).Error; err != nil {
		t.Fatalf("load assignment: %v", err)
	}
	if asg.Status != model.AssignmentStatusAssigned {
		t.Fatalf("assignment status = %s, want assigned", asg.Status)
	}
}

func TestApplyDecision_ValidatesInput(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.assignments.ApplyDecision(
		context.Background(), uuid.New(), uuid.New(), model.AssignmentStatus("assigned"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}

	_, err = f.assignments.ApplyDecision(
		context.Background(), uuid.New(), uuid.New(), model.AssignmentStatusAccepted)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

// ApplyJoint по устаревшему снимку обязан вернуть конфликт
// синхронизации, не перезаписывая чужое обновление.
func TestSynchronizer_StaleSnapshotConflicts(t *testing.T) {
	f := newFixture(t, false)
	snap, _ := f.bookAssigned(t)

	// Кто-то успел поднять версию назначения после нашего чтения.
	if err := f.db.Model(&model.AssignRequest{}).
		Where("id = ?", snap.Assignment.ID).
		Update("version", snap.Assignment.Version+1).Error; err != nil {
		t.Fatalf("bump version: %v", err)
	}

	err := f.sync.ApplyJoint(
		context.Background(), snap.Request, snap.Assignment,
		model.AssignmentStatusAccepted, model.EventTypeDecisionApplied, nil)
	if !errors.Is(err, ErrSyncConflict) {
		t.Fatalf("err = %v, want sync conflict", err)
	}

	// Транзакция откатилась целиком: заявка не сдвинулась.
	var req model.ServiceRequest
	if err := f.db.First(&req, "id = ?", snap.Request.ID).Error; err != nil {
		t.Fatalf("load request: %v", err)
	}
	if req.Status != model.RequestStatusAssigned {
		t.Fatalf("request status = %s, want assigned", req.Status)
	}
}

func TestListProfessionalAssignments(t *testing.T) {
	f := newFixture(t, false)
	snap, pro := f.bookAssigned(t)

	items, total, err := f.assignments.ListProfessionalAssignments(context.Background(), pro.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListProfessionalAssignments: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("got %d/%d assignments, want 1/1", len(items), total)
	}
	if items[0].ID != snap.Assignment.ID {
		t.Fatalf("assignment id = %s, want %s", items[0].ID, snap.Assignment.ID)
	}

	_, total, err = f.assignments.ListProfessionalAssignments(context.Background(), uuid.New(), 10, 0)
	if err != nil {
		t.Fatalf("empty list: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
}
