package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mechanix/shop-reports/internal/messaging/kafka"
	"github.com/mechanix/shop-reports/internal/platform/database/mongodb"
	"github.com/mechanix/shop-reports/internal/platform/database/postgres"
	"github.com/mechanix/shop-reports/internal/platform/database/redis"
)

// APIConfig holds all configuration for the API service
type APIConfig struct {
	Server        ServerConfig         `json:"server"`
	Database      postgres.Config      `json:"database"`
	ReportStore   mongodb.Config       `json:"report_store"`
	Cache         redis.Config         `json:"cache"`
	CacheTTL      time.Duration        `json:"cache_ttl"`
	Producer      kafka.ProducerConfig `json:"producer"`
	Brokers       []string             `json:"brokers"`
	RateLimit     RateLimitConfig      `json:"rate_limit"`
	CORSOrigins   []string             `json:"cors_origins"`
	Observability ObservabilityConfig  `json:"observability"`
}

// AggregatorConfig holds all configuration for the aggregator service
type AggregatorConfig struct {
	Database      postgres.Config      `json:"database"`
	ReportStore   mongodb.Config       `json:"report_store"`
	Consumer      kafka.ConsumerConfig `json:"consumer"`
	Brokers       []string             `json:"brokers"`
	Observability ObservabilityConfig  `json:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// RateLimitConfig holds request throttling configuration
type RateLimitConfig struct {
	Window time.Duration `json:"window"`
	Max    int           `json:"max"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	ServiceName    string `json:"service_name"`
	ServiceVersion string `json:"service_version"`
	LogLevel       string `json:"log_level"`
	OTELEndpoint   string `json:"otel_endpoint"`
	Environment    string `json:"environment"`
}

// Production reports whether the service runs in production mode.
func (o ObservabilityConfig) Production() bool {
	return o.Environment == "production"
}

// LoadAPI loads the API service configuration from environment variables
func LoadAPI() (*APIConfig, error) {
	brokers := getEnvAsSlice("KAFKA_BROKERS", "localhost:9092")

	producer := kafka.DefaultProducerConfig()
	producer.Brokers = brokers

	return &APIConfig{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", "30s"),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", "30s"),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", "120s"),
		},
		Database:    loadDatabase(),
		ReportStore: loadReportStore(),
		Cache:       loadCache(),
		CacheTTL:    time.Duration(getEnvAsInt("REPORTS_CACHE_TTL_SECONDS", 600)) * time.Second,
		Producer:    producer,
		Brokers:     brokers,
		RateLimit: RateLimitConfig{
			Window: getEnvAsDuration("RATE_LIMIT_WINDOW", "1m"),
			Max:    getEnvAsInt("RATE_LIMIT_MAX", 100),
		},
		CORSOrigins: getEnvAsSlice("ALLOWED_ORIGINS", "*"),
		Observability: ObservabilityConfig{
			ServiceName:    getEnv("SERVICE_NAME", "shop-reports-api"),
			ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			OTELEndpoint:   getEnv("OTEL_ENDPOINT", ""),
			Environment:    getEnv("ENVIRONMENT", "development"),
		},
	}, nil
}

// LoadAggregator loads the aggregator service configuration from environment variables
func LoadAggregator() (*AggregatorConfig, error) {
	brokers := getEnvAsSlice("KAFKA_BROKERS", "localhost:9092")

	consumer := kafka.DefaultConsumerConfig()
	consumer.Brokers = brokers

	return &AggregatorConfig{
		Database:    loadDatabase(),
		ReportStore: loadReportStore(),
		Consumer:    consumer,
		Brokers:     brokers,
		Observability: ObservabilityConfig{
			ServiceName:    getEnv("SERVICE_NAME", "shop-reports-aggregator"),
			ServiceVersion: getEnv("SERVICE_VERSION", "1.0.0"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			OTELEndpoint:   getEnv("OTEL_ENDPOINT", ""),
			Environment:    getEnv("ENVIRONMENT", "development"),
		},
	}, nil
}

func loadDatabase() postgres.Config {
	cfg := postgres.DefaultConfig()
	cfg.Host = getEnv("DB_HOST", cfg.Host)
	cfg.Port = getEnvAsInt("DB_PORT", cfg.Port)
	cfg.User = getEnv("DB_USER", cfg.User)
	cfg.Password = getEnv("DB_PASSWORD", cfg.Password)
	cfg.DBName = getEnv("DB_NAME", cfg.DBName)
	cfg.SSLMode = getEnv("DB_SSL_MODE", cfg.SSLMode)
	return cfg
}

func loadReportStore() mongodb.Config {
	cfg := mongodb.DefaultConfig()
	cfg.URI = getEnv("MONGO_URI", cfg.URI)
	cfg.Database = getEnv("MONGO_DATABASE", cfg.Database)
	return cfg
}

func loadCache() redis.Config {
	cfg := redis.DefaultConfig()
	cfg.Host = getEnv("REDIS_HOST", cfg.Host)
	cfg.Port = getEnvAsInt("REDIS_PORT", cfg.Port)
	cfg.Password = getEnv("REDIS_PASSWORD", cfg.Password)
	cfg.DB = getEnvAsInt("REDIS_DB", cfg.DB)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsSlice(key string, defaultValue string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return strings.Split(defaultValue, ",")
}
