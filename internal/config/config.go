package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	NotifierLog  = "log"
	NotifierMQTT = "mqtt"
	NotifierNATS = "nats"
)

// Config holds environment-based settings
type Config struct {
	Environment    string
	DatabaseURL    string
	MigrationsPath string
	JWTSecret      string
	ServerAddress  string
	LogLevel       zerolog.Level

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	// reminders
	ReminderCron  string
	Notifier      string
	MQTTBrokerURL string
	NATSURL       string
	Location      *time.Location
}

// Development reports whether logs should be human readable.
func (c *Config) Development() bool {
	return c.Environment == "" || c.Environment == "development"
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	jwt := os.Getenv("JWT_SECRET")
	if jwt == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	level, err := zerolog.ParseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	schedule := getenv("REMINDER_CRON", "*/5 * * * *")
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("REMINDER_CRON: %w", err)
	}

	loc, err := time.LoadLocation(getenv("LOCAL_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("LOCAL_TIMEZONE: %w", err)
	}

	cfg := &Config{
		Environment:    getenv("APP_ENV", "development"),
		DatabaseURL:    dbURL,
		MigrationsPath: getenv("MIGRATIONS_PATH", "./migrations"),
		JWTSecret:      jwt,
		ServerAddress:  getenv("SERVER_ADDRESS", ":8080"),
		LogLevel:       level,
		RedisAddress:   os.Getenv("REDIS_ADDRESS"),
		RedisUsername:  os.Getenv("REDIS_USERNAME"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		ReminderCron:   schedule,
		Notifier:       strings.ToLower(getenv("NOTIFIER", NotifierLog)),
		MQTTBrokerURL:  os.Getenv("MQTT_BROKER_URL"),
		NATSURL:        os.Getenv("NATS_URL"),
		Location:       loc,
	}

	switch cfg.Notifier {
	case NotifierLog:
	case NotifierMQTT:
		if cfg.MQTTBrokerURL == "" {
			return nil, fmt.Errorf("MQTT_BROKER_URL is required when NOTIFIER=mqtt")
		}
	case NotifierNATS:
		if cfg.NATSURL == "" {
			return nil, fmt.Errorf("NATS_URL is required when NOTIFIER=nats")
		}
	default:
		return nil, fmt.Errorf("NOTIFIER must be one of log, mqtt, nats")
	}
	return cfg, nil
}
