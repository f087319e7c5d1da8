package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	HTTPAddr        string
	LogLevel        string
	PartnerBaseURL  string
	PartnerAPIKey   string
	SubmitTimeout   time.Duration
	CatalogCacheTTL time.Duration
	ReceiptBaseURL  string
	KafkaBrokers    []string
	OrderTopic      string
	SessionIdleTTL  time.Duration
	MaxSessions     int
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8081"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		PartnerBaseURL:  getEnv("PARTNER_BASE_URL", "https://uat.onebanc.ai"),
		PartnerAPIKey:   os.Getenv("PARTNER_API_KEY"),
		SubmitTimeout:   getDuration("SUBMIT_TIMEOUT", 30*time.Second),
		CatalogCacheTTL: getDuration("CATALOG_CACHE_TTL", 5*time.Minute),
		ReceiptBaseURL:  getEnv("RECEIPT_BASE_URL", "http://localhost:8081"),
		KafkaBrokers:    splitCSV(getEnv("KAFKA_BROKER", "localhost:9092")),
		OrderTopic:      getEnv("ORDER_TOPIC", "order-events"),
		SessionIdleTTL:  getDuration("SESSION_IDLE_TTL", 30*time.Minute),
		MaxSessions:     getInt("MAX_SESSIONS", 10000),
	}
}

func NewLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	return cfg.Build()
}

func MustInitPostgres(logger *zap.Logger) *sql.DB {
	connStr := "host=" + getEnv("DB_HOST", "localhost") + " port=" + getEnv("DB_PORT", "5432") +
		" user=" + os.Getenv("DB_USER") + " password=" + os.Getenv("DB_PASSWORD") +
		" dbname=" + getEnv("DB_NAME", "orders") + " sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err = db.Ping(); err != nil {
		logger.Fatal("failed to ping database", zap.Error(err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_HOST", "localhost") + ":" + getEnv("REDIS_PORT", "6379"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	return client
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func getInt(key string, defaultValue int) int {
	parsed, err := strconv.Atoi(os.Getenv(key))
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
