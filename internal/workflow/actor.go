package workflow

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
	"github.com/homeserve/booking-core/internal/repository"
)

// validateBookingActor:
//   - проверяет корректность идентификатора;
//   - вытаскивает пользователя из хранилища;
//   - проверяет, что профиль активен.
//
// Выполняется до открытия транзакции бронирования.
func validateBookingActor(
	ctx context.Context,
	users repository.UserRepository,
	userID uuid.UUID,
) (*model.User, error) {
	if userID == uuid.Nil {
		return nil, newErr(KindValidation, "user id is required")
	}

	u, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newErr(KindUnauthorized, "unknown user")
		}
		return nil, mapStoreError(err)
	}

	if !u.Active {
		return nil, newErr(KindUnauthorized, "user profile is not active")
	}

	return u, nil
}
