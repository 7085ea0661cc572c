package workflow

import (
	"context"

	"github.com/google/uuid"

	"github.com/homeserve/booking-core/internal/model"
	"github.com/homeserve/booking-core/internal/repository"
)

// Matcher подбирает исполнителя под заявку. Подбор — рекомендация,
// не резервирование: исполнитель не блокируется на время чтения, и две
// одновременные заявки могут честно конкурировать за одного кандидата —
// выигрывает та транзакция, что закоммитится первой.
type Matcher struct {
	professionals repository.ProfessionalRepository

	// Исторически подбор идёт только по городу; фильтр по категории —
	// опциональное ужесточение, включаемое конфигом.
	matchByCategory bool
}

func NewMatcher(professionals repository.ProfessionalRepository, matchByCategory bool) *Matcher {
	return &Matcher{
		professionals:   professionals,
		matchByCategory: matchByCategory,
	}
}

// Match возвращает кандидата или nil. Отсутствие кандидата не ошибка:
// заявка просто останется pending.
func (m *Matcher) Match(ctx context.Context, locationID, categoryID uuid.UUID) (*model.Professional, error) {
	filterCategory := uuid.Nil
	if m.matchByCategory {
		filterCategory = categoryID
	}

	p, err := m.professionals.FindAvailable(ctx, locationID, filterCategory)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return p, nil
}
