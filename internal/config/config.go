package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Dispatch DispatchConfig
	Reminder ReminderConfig
	Channels ChannelsConfig
	DB       DatabaseConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type DispatchConfig struct {
	Workers     int
	TaskTimeout time.Duration
}

type ReminderConfig struct {
	Interval time.Duration
}

type ChannelsConfig struct {
	EmailEnabled bool
	SMSEnabled   bool
}

type DatabaseConfig struct {
	Path     string
	SeedDemo bool
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Dispatch: DispatchConfig{
			Workers:     getEnvInt("DISPATCH_WORKERS", 10),
			TaskTimeout: getEnvDuration("DISPATCH_TASK_TIMEOUT", 30*time.Second),
		},
		Reminder: ReminderConfig{
			Interval: getEnvDuration("REMINDER_INTERVAL", 5*time.Minute),
		},
		Channels: ChannelsConfig{
			EmailEnabled: getEnvBool("EMAIL_CHANNEL_ENABLED", false),
			SMSEnabled:   getEnvBool("SMS_CHANNEL_ENABLED", false),
		},
		DB: DatabaseConfig{
			Path:     getEnv("DB_PATH", "./data/alerthub.db"),
			SeedDemo: getEnvBool("SEED_DEMO_DATA", false),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Dispatch.Workers < 1 {
		return fmt.Errorf("dispatch workers must be at least 1")
	}
	if c.Reminder.Interval < time.Minute {
		return fmt.Errorf("reminder interval must be at least 1 minute")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
