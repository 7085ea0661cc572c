package workflow

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/homeserve/booking-core/internal/model"
	"github.com/homeserve/booking-core/internal/repository"
)

func newMatcher(f *fixture, matchByCategory bool) *Matcher {
	return NewMatcher(repository.NewGormProfessionalRepository(f.db), matchByCategory)
}

func TestMatcher_PicksHighestRatedDeterministically(t *testing.T) {
	f := newFixture(t, false)
	f.seedProfessional(t, 3)
	best := f.seedProfessional(t, 5)

	m := newMatcher(f, false)

	// Повторный подбор по тому же снимку справочника возвращает
	// того же кандидата.
	for i := 0; i < 3; i++ {
		got, err := m.Match(context.Background(), f.location.ID, f.category.ID)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		if got == nil || got.ID != best.ID {
			t.Fatalf("candidate = %v, want %s", got, best.ID)
		}
	}
}

func TestMatcher_SkipsUnavailableAndUnverified(t *testing.T) {
	f := newFixture(t, false)

	busy := f.seedProfessional(t, 5)
	if err := f.db.Model(&model.Professional{}).Where("id = ?", busy.ID).
		Update("available", false).Error; err != nil {
		t.Fatalf("make unavailable: %v", err)
	}
	unverified := f.seedProfessional(t, 5)
	if err := f.db.Model(&model.Professional{}).Where("id = ?", unverified.ID).
		Update("verification", model.VerificationPending).Error; err != nil {
		t.Fatalf("make unverified: %v", err)
	}
	eligible := f.seedProfessional(t, 2)

	m := newMatcher(f, false)
	got, err := m.Match(context.Background(), f.location.ID, f.category.ID)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got == nil || got.ID != eligible.ID {
		t.Fatalf("candidate = %v, want %s", got, eligible.ID)
	}
}

func TestMatcher_NoCandidateIsNotAnError(t *testing.T) {
	f := newFixture(t, false)

	m := newMatcher(f, false)
	got, err := m.Match(context.Background(), f.location.ID, f.category.ID)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got != nil {
		t.Fatalf("candidate = %s, want nil", got.ID)
	}

	// Исполнитель из другого города не подходит.
	f.seedProfessional(t, 5)
	got, err = m.Match(context.Background(), uuid.New(), f.category.ID)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got != nil {
		t.Fatalf("candidate = %s, want nil for foreign location", got.ID)
	}
}

// По умолчанию подбор идёт только по городу; фильтр по категории
// включается отдельно и отсекает исполнителей чужих категорий.
func TestMatcher_CategoryToggle(t *testing.T) {
	f := newFixture(t, false)

	other := f.seedProfessional(t, 5)
	if err := f.db.Model(&model.Professional{}).Where("id = ?", other.ID).
		Update("category_id", uuid.New()).Error; err != nil {
		t.Fatalf("move category: %v", err)
	}

	loose := newMatcher(f, false)
	got, err := loose.Match(context.Background(), f.location.ID, f.category.ID)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got == nil || got.ID != other.ID {
		t.Fatalf("location-only match = %v, want %s", got, other.ID)
	}

	strict := newMatcher(f, true)
	got, err = strict.Match(context.Background(), f.location.ID, f.category.ID)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if got != nil {
		t.Fatalf("category match = %s, want nil", got.ID)
	}
}
