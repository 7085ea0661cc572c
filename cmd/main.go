package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/homeserve/booking-core/internal/config"
	"github.com/homeserve/booking-core/internal/db"
	"github.com/homeserve/booking-core/internal/httpapi"
	"github.com/homeserve/booking-core/internal/model"
	"github.com/homeserve/booking-core/internal/notify"
	"github.com/homeserve/booking-core/internal/repository"
	"github.com/homeserve/booking-core/internal/workflow"
)

func main() {
	// 1. Конфиг из env (+ .env в разработке).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2. Подключаемся к БД через GORM.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		log.Fatalf("init db: %v", err)
	}

	// 3. Миграции моделей.
	if err := model.AutoMigrate(gormDB); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("sql DB: %v", err)
	}
	defer sqlDB.Close()

	// 4. Redis для кэша справочников (опционален).
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	// 5. Репозитории (реализации на GORM).
	requestRepo := repository.NewGormRequestRepository(gormDB)
	assignmentRepo := repository.NewGormAssignmentRepository(gormDB)
	userRepo := repository.NewGormUserRepository(gormDB)
	professionalRepo := repository.NewGormProfessionalRepository(gormDB)
	catalogRepo := repository.NewGormCatalogRepository(gormDB, rdb, cfg.CatalogCacheTTL)
	eventRepo := repository.NewGormEventRepository(gormDB)

	// 6. Исходящие события.
	publisher := notify.NewKafkaPublisher(cfg.KafkaBroker, cfg.KafkaTopic)
	defer publisher.Close()

	// 7. Ядро workflow.
	retry := workflow.RetryPolicy{Attempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
	matcher := workflow.NewMatcher(professionalRepo, cfg.MatchByCategory)
	sync := workflow.NewSynchronizer(gormDB)
	bookingSvc := workflow.NewBookingService(
		gormDB, requestRepo, assignmentRepo, userRepo, catalogRepo, professionalRepo, eventRepo,
		matcher, sync, publisher, retry,
	)
	assignmentSvc := workflow.NewAssignmentService(requestRepo, assignmentRepo, sync, publisher, retry)

	// 8. HTTP-сервер.
	handlers := httpapi.NewHandlers(bookingSvc, assignmentSvc, catalogRepo)
	e := httpapi.NewServer(handlers, cfg.JWTSecret)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil {
			log.Printf("http server: %v", err)
		}
	}()
	log.Printf("booking core listening on %s", cfg.HTTPAddr)

	// 9. Грейсфул-шатдаун по сигналу.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down http server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
