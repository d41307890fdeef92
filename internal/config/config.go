package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	LLM        LLMConfig        `mapstructure:"llm"        validate:"required"`
	Task       TaskConfig       `mapstructure:"task"       validate:"required"`
	Generation GenerationConfig `mapstructure:"generation"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig contains the credentials and tuning knobs of the text
// generation providers.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	GroqAPIKey   string `mapstructure:"groq_api_key"   validate:"required"`
	GroqBaseURL  string `mapstructure:"groq_base_url"  validate:"required,url"`

	// MaxRetries and RetryDelaySeconds control the transport-level retry of
	// the Gemini client, beneath the dispatcher's own fallback loop.
	MaxRetries        int `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// TaskConfig contains the background task runner settings.
type TaskConfig struct {
	WorkerCount         int `mapstructure:"worker_count"           validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size"             validate:"required,gt=0"`
	StuckTaskAgeMinutes int `mapstructure:"stuck_task_age_minutes" validate:"required,gt=0"`
}

// GenerationConfig contains dispatcher settings. ShuffleSeed pins the
// provider permutation for reproducible runs; zero means seed from the
// clock.
type GenerationConfig struct {
	ShuffleSeed int64 `mapstructure:"shuffle_seed"`
}
