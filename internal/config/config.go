// Package config loads the coordinator's runtime configuration from
// environment variables, applying a default for each one that is unset.
// It reads no command-line flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything main needs to wire the coordinator together.
type Config struct {
	// HTTPAddr is where the REST API listens.
	HTTPAddr string
	// MetricsAddr is where /metrics, /health, /ready and /live are served,
	// kept on a separate port from the API the way warren's manager does.
	MetricsAddr string

	// DatabaseURL is the Postgres DSN shared by the store and the River
	// job queue.
	DatabaseURL string

	// LogLevel and LogJSON mirror warren's --log-level/--log-json flags.
	LogLevel string
	LogJSON  bool

	// PollInterval is how often the status poller job is triggered.
	PollInterval time.Duration
	// HealthSweepInterval is how often a health_check job is enqueued
	// per registered task service.
	HealthSweepInterval time.Duration

	// TaskTimeout is spec §6's TASK_TIMEOUT: how long a task may sit
	// without reaching a poll-terminal state, measured from its most
	// recent Event, before the status poller forces its release to
	// cancel (spec §4.5 step 3).
	TaskTimeout time.Duration

	// WebhookURL, if set, receives a POST of every journaled Event.
	WebhookURL string
}

// Load reads Config from the environment, applying the same defaults a
// developer running the binary locally would expect.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPAddr:            getEnv("COORDINATOR_HTTP_ADDR", ":8080"),
		MetricsAddr:         getEnv("COORDINATOR_METRICS_ADDR", ":9090"),
		DatabaseURL:         getEnv("COORDINATOR_DATABASE_URL", "postgres://localhost:5432/coordinator?sslmode=disable"),
		LogLevel:            getEnv("COORDINATOR_LOG_LEVEL", "info"),
		LogJSON:             getEnvBool("COORDINATOR_LOG_JSON", false),
		PollInterval:        getEnvDuration("COORDINATOR_POLL_INTERVAL", 10*time.Second),
		HealthSweepInterval: getEnvDuration("COORDINATOR_HEALTH_SWEEP_INTERVAL", 30*time.Second),
		TaskTimeout:         getEnvSeconds("TASK_TIMEOUT", 30*time.Minute),
		WebhookURL:          os.Getenv("COORDINATOR_WEBHOOK_URL"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("config: COORDINATOR_DATABASE_URL must not be empty")
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getEnvSeconds reads key as a plain integer count of seconds, per spec
// §6's "TASK_TIMEOUT — seconds of task inactivity before forced cancel".
func getEnvSeconds(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
