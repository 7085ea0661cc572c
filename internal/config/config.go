package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // минут
}

// Config — вся конфигурация сервиса из окружения.
type Config struct {
	DB DBConfig

	HTTPAddr  string
	JWTSecret string

	KafkaBroker string
	KafkaTopic  string

	RedisAddr       string
	CatalogCacheTTL time.Duration

	// Подбор по категории выключен по умолчанию: исторически движок
	// подбирает только по городу, категория — опциональное ужесточение.
	MatchByCategory bool

	// Границы внутренних повторов при конфликтах/транзиентных ошибках.
	RetryAttempts int
	RetryBackoff  time.Duration
}

// Load читает .env (если есть) и собирает конфиг из окружения.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env опционален; в контейнере всё придёт из env

	cfg := &Config{
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "postgres"),
			User:            getEnv("DB_USER", "booking"),
			Password:        getEnv("DB_PASSWORD", "booking"),
			Name:            getEnv("DB_NAME", "booking_db"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			Port:            getEnvInt("DB_PORT", 5432),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
		},

		HTTPAddr:  getEnv("HTTP_ADDR", ":8080"),
		JWTSecret: getEnv("JWT_SECRET", ""),

		KafkaBroker: getEnv("KAFKA_BROKER", "kafka:9092"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "booking.status-changed"),

		RedisAddr:       getEnv("REDIS_ADDR", ""),
		CatalogCacheTTL: time.Duration(getEnvInt("CATALOG_CACHE_TTL_SEC", 300)) * time.Second,

		MatchByCategory: getEnvBool("MATCH_BY_CATEGORY", false),

		RetryAttempts: getEnvInt("STORE_RETRY_ATTEMPTS", 3),
		RetryBackoff:  time.Duration(getEnvInt("STORE_RETRY_BACKOFF_MS", 50)) * time.Millisecond,
	}

	// минимальная валидация
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("invalid config: JWT_SECRET must not be empty")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
