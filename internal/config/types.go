package config

// Config mirrors automation_config.yaml.
//
// All durations are Go duration strings (e.g. "30m", "1h"). The file is
// loaded once at startup and is immutable for the process lifetime; editing
// it requires a restart (the daemon logs a reminder when the file changes
// on disk).
type Config struct {
	// Enabled is the master switch. When false the process exits cleanly
	// without dispatching anything.
	Enabled bool `yaml:"enabled"`

	// GenerationIntervalHours spaces job starts in daemon mode. Fractions
	// are allowed (0.5 = every 30 minutes).
	GenerationIntervalHours float64 `yaml:"generation_interval_hours"`

	// Schedule is an optional cron expression (5-field, or a descriptor
	// like "@daily"). When set it overrides the interval in daemon mode.
	Schedule string `yaml:"schedule,omitempty"`

	// TopicSelectionMode is "sequential" (default) or "random".
	TopicSelectionMode string `yaml:"topic_selection_mode"`

	VideoTopics []string `yaml:"video_topics"`

	API           APIConfig     `yaml:"api"`
	VideoSettings VideoSettings `yaml:"video_settings"`
	Logging       LoggingConfig `yaml:"logging"`
	Notify        NotifyConfig  `yaml:"notify,omitempty"`
}

// APIConfig locates the generation backend.
type APIConfig struct {
	URL string `yaml:"url,omitempty"` // default: http://localhost:8080/api/generate

	// JobTimeout bounds one generate-and-upload cycle. Default: "1h".
	JobTimeout string `yaml:"job_timeout,omitempty"`
}

// VideoSettings are passed through to the backend unmodified.
type VideoSettings struct {
	AIModel               string `yaml:"ai_model"`
	Voice                 string `yaml:"voice"`
	ParagraphNumber       int    `yaml:"paragraph_number"`
	AutomateYoutubeUpload bool   `yaml:"automate_youtube_upload"`
	UseMusic              bool   `yaml:"use_music"`
	ZipURL                string `yaml:"zip_url,omitempty"`
	Threads               int    `yaml:"threads"`
	SubtitlesPosition     string `yaml:"subtitles_position,omitempty"`
	SubtitlesColor        string `yaml:"subtitles_color,omitempty"`
	CustomPrompt          string `yaml:"custom_prompt,omitempty"`
}

type LoggingConfig struct {
	Level   string      `yaml:"level,omitempty"`
	Console bool        `yaml:"console"`
	File    LoggingFile `yaml:"file"`
}

type LoggingFile struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// NotifyConfig controls optional push notifications for job outcomes.
type NotifyConfig struct {
	Telegram TelegramNotify `yaml:"telegram,omitempty"`
}

type TelegramNotify struct {
	Enabled    bool   `yaml:"enabled"`
	Token      string `yaml:"token,omitempty"`
	ChatID     int64  `yaml:"chat_id,omitempty"`
	RatePerSec int    `yaml:"rate_per_sec,omitempty"`

	// OnlyFailures suppresses notifications for successful jobs.
	OnlyFailures bool `yaml:"only_failures,omitempty"`
}
