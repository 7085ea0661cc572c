package httpapi

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homeserve/booking-core/internal/workflow"
)

// respondError переводит доменную ошибку в HTTP-ответ со стабильным
// машиночитаемым kind и человекочитаемым сообщением.
func respondError(c echo.Context, err error) error {
	kind := workflow.KindOf(err)

	message := "internal error"
	var domain *workflow.Error
	if errors.As(err, &domain) {
		message = domain.Message
	}

	status := http.StatusInternalServerError
	switch kind {
	case workflow.KindValidation:
		status = http.StatusBadRequest
	case workflow.KindNotFound:
		status = http.StatusNotFound
	case workflow.KindConflict:
		status = http.StatusConflict
	case workflow.KindUnauthorized:
		status = http.StatusForbidden
	case workflow.KindTransition:
		status = http.StatusUnprocessableEntity
	case workflow.KindTransient:
		status = http.StatusServiceUnavailable
		c.Response().Header().Set("Retry-After", "1")
	case workflow.KindInternal:
		// детали — только в лог
		log.Printf("httpapi: internal error: %v", err)
		message = "internal error"
	}

	return c.JSON(status, echo.Map{
		"error":   string(kind),
		"message": message,
	})
}
