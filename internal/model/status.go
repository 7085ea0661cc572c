package model

// Статусы заявки пользователя (ServiceRequest).
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAssigned  RequestStatus = "assigned"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// Статусы назначения (AssignRequest). Узкое подмножество: назначение
// не бывает pending или cancelled — оно либо привязано к исполнителю,
// либо его нет вовсе.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusAccepted  AssignmentStatus = "accepted"
	AssignmentStatusRejected  AssignmentStatus = "rejected"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// Таблица допустимых переходов заявки.
var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestStatusPending:  {RequestStatusAssigned, RequestStatusCancelled},
	RequestStatusAssigned: {RequestStatusAccepted, RequestStatusRejected},
	RequestStatusAccepted: {RequestStatusCompleted},
}

// Таблица допустимых переходов назначения.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusAssigned: {AssignmentStatusAccepted, AssignmentStatusRejected},
	AssignmentStatusAccepted: {AssignmentStatusCompleted},
}

// CanTransition сообщает, допустим ли переход заявки из текущего статуса в to.
func (s RequestStatus) CanTransition(to RequestStatus) bool {
	for _, next := range requestTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal — из терминального статуса переходов нет.
func (s RequestStatus) Terminal() bool {
	return len(requestTransitions[s]) == 0
}

// Active — заявка активна, пока занимает слот "одна активная заявка
// на пару (пользователь, услуга)".
func (s RequestStatus) Active() bool {
	switch s {
	case RequestStatusPending, RequestStatusAssigned, RequestStatusAccepted:
		return true
	}
	return false
}

func (s AssignmentStatus) CanTransition(to AssignmentStatus) bool {
	for _, next := range assignmentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s AssignmentStatus) Terminal() bool {
	return len(assignmentTransitions[s]) == 0
}

// RequestStatusOf проецирует статус назначения на статус родительской заявки.
// Проекция тождественная по значению, но типы остаются раздельными.
func (s AssignmentStatus) RequestStatusOf() RequestStatus {
	return RequestStatus(s)
}
