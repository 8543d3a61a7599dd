package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env     string
	Server  ServerConfig
	Redis   RedisConfig
	Session SessionConfig
	JWT     JWTConfig
	Log     LogConfig
	Kafka   KafkaConfig
	Booking BookingConfig
}

type ServerConfig struct {
	HTTPPort     int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
}

// SessionConfig carries the scheduling windows of the session lifecycle.
// JoinWindow is how long before the scheduled start the join control
// unlocks, ActiveWindow is the full duration of a session, GracePeriod is
// how long after the start both participants have to show up before the
// session counts as abandoned, and CancelNotice is the minimum advance
// notice for a penalty-free cancellation.
type SessionConfig struct {
	JoinWindow   time.Duration
	ActiveWindow time.Duration
	GracePeriod  time.Duration
	CancelNotice time.Duration
	TickInterval time.Duration
	SnapshotTTL  time.Duration
	Timezone     string
}

type KafkaConfig struct {
	Brokers              []string
	ProducerRetryMax     int
	ProducerRequiredAcks int
	Enabled              bool
	ConsumerGroupID      string
}

// BookingConfig points at the booking system of record and the presence
// endpoint of the video room infrastructure.
type BookingConfig struct {
	BaseURL     string
	PresenceURL string
	APIKey      string
	Timeout     time.Duration
}

type JWTConfig struct {
	Secret string
	Expiry time.Duration
}

type LogConfig struct {
	Level    string
	Mode     string
	Encoding string
}

func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("ENV", "development"),
		Server: ServerConfig{
			HTTPPort:     getEnvAsInt("SERVER_HTTP_PORT", 8086),
			ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			MaxRetries:   getEnvAsInt("REDIS_MAX_RETRIES", 3),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Session: SessionConfig{
			JoinWindow:   getEnvAsDuration("SESSION_JOIN_WINDOW", 10*time.Minute),
			ActiveWindow: getEnvAsDuration("SESSION_ACTIVE_WINDOW", 50*time.Minute),
			GracePeriod:  getEnvAsDuration("SESSION_GRACE_PERIOD", 10*time.Minute),
			CancelNotice: getEnvAsDuration("SESSION_CANCEL_NOTICE", 24*time.Hour),
			TickInterval: getEnvAsDuration("SESSION_TICK_INTERVAL", 1*time.Second),
			SnapshotTTL:  getEnvAsDuration("SESSION_SNAPSHOT_TTL", 2*time.Hour),
			Timezone:     getEnv("SESSION_TIMEZONE", "America/Sao_Paulo"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "jwt-secret"),
			Expiry: getEnvAsDuration("JWT_EXPIRY", 50*time.Minute),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Mode:     getEnv("LOG_MODE", "development"),
			Encoding: getEnv("LOG_ENCODING", "console"),
		},
		Kafka: KafkaConfig{
			Brokers:              getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			ProducerRetryMax:     getEnvAsInt("KAFKA_PRODUCER_RETRY_MAX", 3),
			ProducerRequiredAcks: getEnvAsInt("KAFKA_PRODUCER_REQUIRED_ACKS", 1),
			Enabled:              getEnvAsBool("KAFKA_ENABLED", true),
			ConsumerGroupID:      getEnv("KAFKA_CONSUMER_GROUP_ID", "session-lifecycle-service"),
		},
		Booking: BookingConfig{
			BaseURL:     getEnv("BOOKING_BASE_URL", "http://localhost:3333"),
			PresenceURL: getEnv("BOOKING_PRESENCE_URL", "http://localhost:3334"),
			APIKey:      getEnv("BOOKING_API_KEY", ""),
			Timeout:     getEnvAsDuration("BOOKING_TIMEOUT", 10*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.HTTPPort)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.Session.JoinWindow <= 0 || c.Session.ActiveWindow <= 0 {
		return fmt.Errorf("session windows must be positive")
	}

	if c.Session.GracePeriod > c.Session.ActiveWindow {
		return fmt.Errorf("grace period cannot exceed the active window")
	}

	if _, err := time.LoadLocation(c.Session.Timezone); err != nil {
		return fmt.Errorf("invalid session timezone %q: %w", c.Session.Timezone, err)
	}

	if c.Booking.BaseURL == "" {
		return fmt.Errorf("booking base URL is required")
	}

	if c.JWT.Secret == "" || c.JWT.Secret == "jwt-secret" {
		if c.Env == "production" {
			return fmt.Errorf("JWT secret must be set in production")
		}
	}

	return nil
}

// Location resolves the configured session timezone. Validate guarantees
// the name is loadable; UTC is the fallback for hand-built configs.
func (c SessionConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	// Split by comma
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
