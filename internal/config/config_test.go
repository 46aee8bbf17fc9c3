package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/somas?sslmode=disable")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"SERVER_ADDRESS", "MIGRATIONS_PATH", "LOG_LEVEL", "REMINDER_CRON", "NOTIFIER", "LOCAL_TIMEZONE", "APP_ENV"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "./migrations", cfg.MigrationsPath)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.Equal(t, "*/5 * * * *", cfg.ReminderCron)
	assert.Equal(t, NotifierLog, cfg.Notifier)
	assert.Equal(t, "UTC", cfg.Location.String())
	assert.True(t, cfg.Development())
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")
	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")

	t.Setenv("DATABASE_URL", "postgres://localhost/somas")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.EqualError(t, err, "JWT_SECRET is required")
}

func TestLoadNotifierSettings(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFIER", "mqtt")
	t.Setenv("MQTT_BROKER_URL", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MQTT_BROKER_URL", "tcp://localhost:1883")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, NotifierMQTT, cfg.Notifier)

	t.Setenv("NOTIFIER", "pigeon")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFIER", "")

	t.Setenv("REMINDER_CRON", "every five minutes")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("REMINDER_CRON", "")
	t.Setenv("LOCAL_TIMEZONE", "Mars/Olympus")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("LOCAL_TIMEZONE", "America/Toronto")
	t.Setenv("APP_ENV", "production")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "America/Toronto", cfg.Location.String())
	assert.False(t, cfg.Development())
}
