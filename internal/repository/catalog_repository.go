package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/homeserve/booking-core/internal/model"
)

// CatalogRepository — контракт каталога услуг, который потребляет движок
// бронирования. Пишет в каталог административный контур, не мы.
type CatalogRepository interface {
	// GetService возвращает активную услугу. Неизвестный или выключенный
	// id — это (nil, nil).
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
	// IsServiceActiveInLocation — активна ли категория в городе.
	IsServiceActiveInLocation(ctx context.Context, categoryID, locationID uuid.UUID) (bool, error)
	ListLocations(ctx context.Context) ([]model.Location, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
}

// Реализация на GORM с read-through кэшем в Redis. rdb == nil выключает
// кэш целиком (так работают тесты).
type GormCatalogRepository struct {
	db  *gorm.DB
	rdb *redis.Client
	ttl time.Duration
}

func NewGormCatalogRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) *GormCatalogRepository {
	return &GormCatalogRepository{db: db, rdb: rdb, ttl: ttl}
}

func (r *GormCatalogRepository) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	key := fmt.Sprintf("catalog:service:%s", id)

	var cached model.Service
	if ok := r.cacheGet(ctx, key, &cached); ok {
		return &cached, nil
	}

	var s model.Service
	err := r.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	r.cacheSet(ctx, key, &s)
	return &s, nil
}

func (r *GormCatalogRepository) IsServiceActiveInLocation(
	ctx context.Context,
	categoryID, locationID uuid.UUID,
) (bool, error) {
	key := fmt.Sprintf("catalog:svcloc:%s:%s", categoryID, locationID)

	var cached bool
	if ok := r.cacheGet(ctx, key, &cached); ok {
		return cached, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ServiceLocation{}).
		Where("category_id = ? AND location_id = ? AND active = ?", categoryID, locationID, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	active := count > 0
	r.cacheSet(ctx, key, active)
	return active, nil
}

func (r *GormCatalogRepository) ListLocations(ctx context.Context) ([]model.Location, error) {
	const key = "catalog:locations"

	var cached []model.Location
	if ok := r.cacheGet(ctx, key, &cached); ok {
		return cached, nil
	}

	var locations []model.Location
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("city ASC").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, key, locations)
	return locations, nil
}

func (r *GormCatalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	const key = "catalog:categories"

	var cached []model.Category
	if ok := r.cacheGet(ctx, key, &cached); ok {
		return cached, nil
	}

	var categories []model.Category
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}

	r.cacheSet(ctx, key, categories)
	return categories, nil
}

// cacheGet возвращает true при попадании. Ошибки Redis не фатальны:
// промахнулись — сходим в БД.
func (r *GormCatalogRepository) cacheGet(ctx context.Context, key string, dst any) bool {
	if r.rdb == nil {
		return false
	}
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		// redis.Nil — обычный промах, остальное тоже не повод падать
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (r *GormCatalogRepository) cacheSet(ctx context.Context, key string, v any) {
	if r.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = r.rdb.Set(ctx, key, raw, r.ttl).Err()
}
