package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/homeserve/booking-core/internal/model"
	"github.com/homeserve/booking-core/internal/notify"
	"github.com/homeserve/booking-core/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Minimal schema for the workflow logic (sqlite-friendly).
	schema := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			mobile TEXT,
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE user_addresses (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			location_id TEXT NOT NULL,
			address TEXT NOT NULL,
			pincode TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE locations (
			id TEXT PRIMARY KEY,
			city TEXT NOT NULL UNIQUE,
			state TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			description TEXT,
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE services (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			base_price REAL NOT NULL DEFAULT 0,
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE service_locations (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL,
			location_id TEXT NOT NULL,
			active BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE professionals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			category_id TEXT NOT NULL,
			location_id TEXT NOT NULL,
			rating REAL NOT NULL DEFAULT 5,
			experience REAL NOT NULL DEFAULT 0,
			available BOOLEAN NOT NULL DEFAULT 1,
			verification TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE service_requests (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			service_id TEXT NOT NULL,
			location_id TEXT NOT NULL,
			professional_id TEXT,
			status TEXT NOT NULL,
			total_price REAL NOT NULL DEFAULT 0,
			remarks TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			completed_at DATETIME,
			version INTEGER NOT NULL DEFAULT 0,
			active_key TEXT UNIQUE
		);`,
		`CREATE TABLE assign_requests (
			id TEXT PRIMARY KEY,
			service_request_id TEXT NOT NULL UNIQUE,
			professional_id TEXT NOT NULL,
			status TEXT NOT NULL,
			assigned_at DATETIME,
			decided_at DATETIME,
			completed_at DATETIME,
			updated_at DATETIME,
			version INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE status_events (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			service_request_id TEXT NOT NULL,
			assign_request_id TEXT,
			old_status TEXT,
			new_status TEXT NOT NULL,
			payload TEXT,
			created_at DATETIME
		);`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	return db
}

// fixture — общая обвязка сценарных тестов: каталог с одним городом,
// категорией и услугой плюс собранные сервисы ядра.
type fixture struct {
	db *gorm.DB

	user     model.User
	location model.Location
	category model.Category
	service  model.Service

	bookings    *BookingService
	assignments *AssignmentService
	sync        *Synchronizer
}

func newFixture(t *testing.T, matchByCategory bool) *fixture {
	t.Helper()

	db := openTestDB(t)

	f := &fixture{
		db: db,
		user: model.User{
			ID:     uuid.New(),
			Name:   "alice",
			Email:  "alice@example.com",
			Active: true,
		},
		location: model.Location{ID: uuid.New(), City: "Pune", State: "MH", Active: true},
		category: model.Category{ID: uuid.New(), Name: "plumbing", Active: true},
	}
	f.service = model.Service{
		ID:         uuid.New(),
		CategoryID: f.category.ID,
		Name:       "tap repair",
		BasePrice:  100,
		Active:     true,
	}

	for _, seed := range []any{
		&f.user, &f.location, &f.category, &f.service,
		&model.UserAddress{
			ID:         uuid.New(),
			UserID:     f.user.ID,
			LocationID: f.location.ID,
			Address:    "12 MG Road",
		},
		&model.ServiceLocation{
			ID:         uuid.New(),
			CategoryID: f.category.ID,
			LocationID: f.location.ID,
			Active:     true,
		},
	} {
		if err := db.Create(seed).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	requestRepo := repository.NewGormRequestRepository(db)
	assignmentRepo := repository.NewGormAssignmentRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	professionalRepo := repository.NewGormProfessionalRepository(db)
	catalogRepo := repository.NewGormCatalogRepository(db, nil, 0)
	eventRepo := repository.NewGormEventRepository(db)

	retry := RetryPolicy{Attempts: 2, Backoff: time.Millisecond}
	matcher := NewMatcher(professionalRepo, matchByCategory)
	f.sync = NewSynchronizer(db)
	f.bookings = NewBookingService(
		db, requestRepo, assignmentRepo, userRepo, catalogRepo, professionalRepo, eventRepo,
		matcher, f.sync, notify.NopPublisher{}, retry,
	)
	f.assignments = NewAssignmentService(requestRepo, assignmentRepo, f.sync, notify.NopPublisher{}, retry)

	return f
}

// seedProfessional создаёт проверенного доступного исполнителя в городе
// и категории фикстуры.
func (f *fixture) seedProfessional(t *testing.T, rating float64) model.Professional {
	t.Helper()

	u := model.User{
		ID:     uuid.New(),
		Name:   "pro-" + uuid.NewString()[:8],
		Email:  uuid.NewString() + "@example.com",
		Active: true,
	}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("seed professional user: %v", err)
	}

	p := model.Professional{
		ID:           uuid.New(),
		UserID:       u.ID,
		CategoryID:   f.category.ID,
		LocationID:   f.location.ID,
		Rating:       rating,
		Available:    true,
		Verification: model.VerificationVerified,
	}
	if err := f.db.Create(&p).Error; err != nil {
		t.Fatalf("seed professional: %v", err)
	}
	return p
}
