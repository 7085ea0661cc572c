package workflow

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Kind — машиночитаемый класс ошибки движка.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindTransition   Kind = "TRANSITION"
	KindTransient    Kind = "TRANSIENT"
	KindInternal     Kind = "INTERNAL"
)

// Error — доменная ошибка: стабильный Kind плюс сообщение для человека.
type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// Is позволяет сравнивать через errors.Is с ошибкой того же Kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func wrapErr(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, err: err}
}

// Заготовки для errors.Is по классу.
var (
	ErrValidation   = newErr(KindValidation, "validation failed")
	ErrNotFound     = newErr(KindNotFound, "not found")
	ErrConflict     = newErr(KindConflict, "conflict")
	ErrUnauthorized = newErr(KindUnauthorized, "unauthorized")
	ErrTransition   = newErr(KindTransition, "invalid transition")
	ErrTransient    = newErr(KindTransient, "transient store error")
	ErrInternal     = newErr(KindInternal, "internal error")
)

// Конкретные ошибки доменных контрактов.
var (
	ErrDuplicateActiveBooking = newErr(KindConflict, "an active booking for this service already exists")
	ErrServiceNotFound        = newErr(KindNotFound, "service not found")
	ErrAddressRequired        = newErr(KindValidation, "user has no registered address")
	ErrServiceUnavailable     = newErr(KindValidation, "service is not available in your location")
	ErrAlreadyTerminal        = newErr(KindConflict, "assignment is already in a terminal status")
	ErrSyncConflict           = newErr(KindConflict, "concurrent update detected, retry from a fresh read")
)

// KindOf возвращает класс произвольной ошибки.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// mapStoreError переводит ошибку хранилища в доменную.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return wrapErr(KindNotFound, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		// единственный уникальный индекс на пути записи — ActiveKey
		return wrapErr(KindConflict, "an active booking for this service already exists", err)
	case isTransientStoreError(err):
		return wrapErr(KindTransient, "storage temporarily unavailable", err)
	default:
		// детали интеграционных ошибок — в лог, наружу общий сбой
		return wrapErr(KindInternal, "storage failure", err)
	}
}
