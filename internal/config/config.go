// Package config provides hierarchical configuration loading for OpBridge.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the relay.
type Config struct {
	Server      Server      `yaml:"server"`
	Webhook     Webhook     `yaml:"webhook"`
	OpenProject OpenProject `yaml:"openproject"`
	Chat        Chat        `yaml:"chat"`
	Schedule    Schedule    `yaml:"schedule"`
	Logging     Logging     `yaml:"logging"`
	Breaker     Breaker     `yaml:"breaker"`
	Telemetry   Telemetry   `yaml:"telemetry"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port string `yaml:"port"`
}

// Webhook holds inbound webhook verification configuration.
type Webhook struct {
	Secret           string `yaml:"secret"`
	VerifySignatures bool   `yaml:"verify_signatures"`
}

// OpenProject holds the work-tracking API configuration.
type OpenProject struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`

	// StatusID / TypeID short-circuit the name lookup when set.
	StatusID   int    `yaml:"status_id"`
	StatusName string `yaml:"status_name"`
	TypeID     int    `yaml:"type_id"`
	TypeName   string `yaml:"type_name"`

	// StatusThreshold encodes the instance convention that status ids
	// strictly greater than it are terminal/visible. Instance-specific;
	// breaks if the remote renumbers its statuses.
	StatusThreshold int `yaml:"status_threshold"`

	Timeout time.Duration `yaml:"timeout"`
}

// Chat holds the outbound chat webhook URLs. SummaryURL and ReminderURL fall
// back to WebhookURL when empty.
type Chat struct {
	WebhookURL  string `yaml:"webhook_url"`
	SummaryURL  string `yaml:"summary_url"`
	ReminderURL string `yaml:"reminder_url"`
}

// Schedule holds the comma/whitespace-separated HH:MM lists per job family.
type Schedule struct {
	SummaryTimes  string `yaml:"summary_times"`
	ReminderTimes string `yaml:"reminder_times"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration for outbound OpenProject calls.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Telemetry holds OpenTelemetry export configuration.
type Telemetry struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: Server{
			Port: "8080",
		},
		Webhook: Webhook{
			VerifySignatures: true,
		},
		OpenProject: OpenProject{
			StatusName:      "Developed",
			TypeName:        "Task",
			StatusThreshold: 8,
			Timeout:         10 * time.Second,
		},
		Schedule: Schedule{
			SummaryTimes:  "09:00",
			ReminderTimes: "09:30",
		},
		Logging: Logging{
			Level:   "info",
			Service: "opbridge",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Telemetry: Telemetry{
			OTLPEndpoint: "localhost:4317",
		},
	}
}
