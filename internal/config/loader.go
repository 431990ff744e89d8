package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "opbridge.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "OPBRIDGE_PORT")

	setString(&cfg.Webhook.Secret, "OPBRIDGE_WEBHOOK_SECRET")
	setBool(&cfg.Webhook.VerifySignatures, "OPBRIDGE_WEBHOOK_VERIFY")

	setString(&cfg.OpenProject.URL, "OPBRIDGE_OPENPROJECT_URL")
	setString(&cfg.OpenProject.APIKey, "OPBRIDGE_OPENPROJECT_API_KEY")
	setInt(&cfg.OpenProject.StatusID, "OPBRIDGE_STATUS_ID")
	setString(&cfg.OpenProject.StatusName, "OPBRIDGE_STATUS_NAME")
	setInt(&cfg.OpenProject.TypeID, "OPBRIDGE_TYPE_ID")
	setString(&cfg.OpenProject.TypeName, "OPBRIDGE_TYPE_NAME")
	setInt(&cfg.OpenProject.StatusThreshold, "OPBRIDGE_STATUS_THRESHOLD")
	setDuration(&cfg.OpenProject.Timeout, "OPBRIDGE_OPENPROJECT_TIMEOUT")

	setString(&cfg.Chat.WebhookURL, "OPBRIDGE_CHAT_WEBHOOK_URL")
	setString(&cfg.Chat.SummaryURL, "OPBRIDGE_CHAT_SUMMARY_URL")
	setString(&cfg.Chat.ReminderURL, "OPBRIDGE_CHAT_REMINDER_URL")

	setString(&cfg.Schedule.SummaryTimes, "OPBRIDGE_SUMMARY_TIMES")
	setString(&cfg.Schedule.ReminderTimes, "OPBRIDGE_REMINDER_TIMES")

	setString(&cfg.Logging.Level, "OPBRIDGE_LOG_LEVEL")
	setString(&cfg.Logging.Service, "OPBRIDGE_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "OPBRIDGE_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "OPBRIDGE_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "OPBRIDGE_BREAKER_TIMEOUT")

	setBool(&cfg.Telemetry.Enabled, "OPBRIDGE_OTEL_ENABLED")
	setString(&cfg.Telemetry.OTLPEndpoint, "OPBRIDGE_OTLP_ENDPOINT")
}

// SummaryWebhookURL returns the summary-specific chat URL, falling back to
// the general one.
func (c *Chat) SummaryWebhookURL() string {
	if c.SummaryURL != "" {
		return c.SummaryURL
	}
	return c.WebhookURL
}

// ReminderWebhookURL returns the reminder-specific chat URL, falling back to
// the general one.
func (c *Chat) ReminderWebhookURL() string {
	if c.ReminderURL != "" {
		return c.ReminderURL
	}
	return c.WebhookURL
}

// validate checks that required fields are set. Collaborator URLs and
// credentials are deliberately not required here: a missing one degrades the
// affected operation at runtime instead of refusing to start.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.OpenProject.StatusThreshold < 0 {
		return errors.New("openproject.status_threshold must be >= 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
