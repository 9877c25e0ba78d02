package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	yaml "go.yaml.in/yaml/v3"
)

// DefaultAPIURL is the generation backend's entry point when api.url is
// omitted.
const DefaultAPIURL = "http://localhost:8080/api/generate"

// DefaultIntervalHours spaces jobs one day apart when the config omits an
// interval and no cron schedule is set.
const DefaultIntervalHours = 24.0

// ValidationError marks a config problem the operator has to fix; the
// process must not attempt any job when one is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

// IsValidationError reports whether err (or anything it wraps) is a config
// validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Load reads, strictly decodes, normalizes, and validates the config file.
// Unknown keys are rejected so typos surface immediately instead of
// silently disabling a feature.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.API.URL) == "" {
		c.API.URL = DefaultAPIURL
	}
	if c.GenerationIntervalHours == 0 && strings.TrimSpace(c.Schedule) == "" {
		c.GenerationIntervalHours = DefaultIntervalHours
	}
	if strings.TrimSpace(c.TopicSelectionMode) == "" {
		c.TopicSelectionMode = "sequential"
	}

	// Drop blank topic entries; an all-blank list fails validation below.
	topics := c.VideoTopics[:0]
	for _, t := range c.VideoTopics {
		if s := strings.TrimSpace(t); s != "" {
			topics = append(topics, s)
		}
	}
	c.VideoTopics = topics
}

// Validate checks everything the scheduling core trusts to be correct.
func (c *Config) Validate() error {
	if c.GenerationIntervalHours < 0 {
		return &ValidationError{Field: "generation_interval_hours", Msg: "must be > 0"}
	}
	if strings.TrimSpace(c.Schedule) == "" && c.GenerationIntervalHours <= 0 {
		return &ValidationError{Field: "generation_interval_hours", Msg: "must be > 0"}
	}

	switch strings.ToLower(strings.TrimSpace(c.TopicSelectionMode)) {
	case "sequential", "random":
	default:
		return &ValidationError{
			Field: "topic_selection_mode",
			Msg:   fmt.Sprintf("unknown mode %q (want sequential or random)", c.TopicSelectionMode),
		}
	}

	if s := strings.TrimSpace(c.Schedule); s != "" {
		if _, err := ParseSchedule(s); err != nil {
			return &ValidationError{Field: "schedule", Msg: err.Error()}
		}
	}

	if _, err := ParseDurationField("api.job_timeout", c.API.JobTimeout); err != nil {
		return &ValidationError{Field: "api.job_timeout", Msg: err.Error()}
	}

	if c.Notify.Telegram.Enabled {
		if strings.TrimSpace(c.Notify.Telegram.Token) == "" {
			return &ValidationError{Field: "notify.telegram.token", Msg: "required when telegram notify is enabled"}
		}
		if c.Notify.Telegram.ChatID == 0 {
			return &ValidationError{Field: "notify.telegram.chat_id", Msg: "required when telegram notify is enabled"}
		}
	}

	return nil
}

// Interval converts generation_interval_hours to a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.GenerationIntervalHours * float64(time.Hour))
}

// JobTimeout returns api.job_timeout with its default applied.
func (c *Config) JobTimeout(def time.Duration) (time.Duration, error) {
	return ParseDurationOrDefault("api.job_timeout", c.API.JobTimeout, def)
}

// ParseSchedule parses a cron expression in the standard 5-field syntax or
// a @descriptor ("@daily", "@every 6h").
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return sched, nil
}
