package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8086, cfg.Server.HTTPPort)
	assert.Equal(t, 10*time.Minute, cfg.Session.JoinWindow)
	assert.Equal(t, 50*time.Minute, cfg.Session.ActiveWindow)
	assert.Equal(t, 10*time.Minute, cfg.Session.GracePeriod)
	assert.Equal(t, 24*time.Hour, cfg.Session.CancelNotice)
	assert.Equal(t, time.Second, cfg.Session.TickInterval)
	assert.Equal(t, "America/Sao_Paulo", cfg.Session.Timezone)
	assert.Equal(t, 50*time.Minute, cfg.JWT.Expiry)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "session-lifecycle-service", cfg.Kafka.ConsumerGroupID)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SESSION_JOIN_WINDOW", "15m")
	t.Setenv("SESSION_TIMEZONE", "UTC")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 15*time.Minute, cfg.Session.JoinWindow)
	assert.Equal(t, "UTC", cfg.Session.Timezone)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Env:    "development",
			Server: ServerConfig{HTTPPort: 8086},
			Redis:  RedisConfig{Addr: "localhost:6379"},
			Session: SessionConfig{
				JoinWindow:   10 * time.Minute,
				ActiveWindow: 50 * time.Minute,
				GracePeriod:  10 * time.Minute,
				Timezone:     "America/Sao_Paulo",
			},
			JWT:     JWTConfig{Secret: "test-secret"},
			Booking: BookingConfig{BaseURL: "http://localhost:3333"},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := valid()
		cfg.Server.HTTPPort = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing redis address", func(t *testing.T) {
		cfg := valid()
		cfg.Redis.Addr = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive windows", func(t *testing.T) {
		cfg := valid()
		cfg.Session.ActiveWindow = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("grace period longer than the session", func(t *testing.T) {
		cfg := valid()
		cfg.Session.GracePeriod = time.Hour
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad timezone", func(t *testing.T) {
		cfg := valid()
		cfg.Session.Timezone = "Mars/Olympus"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing booking base URL", func(t *testing.T) {
		cfg := valid()
		cfg.Booking.BaseURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("default JWT secret rejected in production", func(t *testing.T) {
		cfg := valid()
		cfg.Env = "production"
		cfg.JWT.Secret = "jwt-secret"
		assert.Error(t, cfg.Validate())
	})
}

func TestSessionConfigLocation(t *testing.T) {
	loc := SessionConfig{Timezone: "America/Sao_Paulo"}.Location()
	assert.Equal(t, "America/Sao_Paulo", loc.String())

	// Hand-built configs without a timezone resolve to UTC.
	assert.Equal(t, time.UTC, SessionConfig{Timezone: "bogus"}.Location())
}
