package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Storage       StorageConfig
	Transcription TranscriptionConfig
	LLM           LLMConfig
	Pipeline      PipelineConfig
	JWT           JWTConfig
	Log           LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver      string `envconfig:"DB_DRIVER" default:"postgres"` // "postgres" or "sqlite"
	Host        string `envconfig:"DB_HOST" default:"localhost"`
	Port        string `envconfig:"DB_PORT" default:"5432"`
	User        string `envconfig:"DB_USER" default:"postgres"`
	Password    string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name        string `envconfig:"DB_NAME" default:"meeting_insights"`
	SSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"DB_MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
	SQLitePath  string `envconfig:"DB_SQLITE_PATH" default:"meeting-insights.db"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled     bool          `envconfig:"REDIS_ENABLED" default:"false"`
	Host        string        `envconfig:"REDIS_HOST" default:"localhost"`
	Port        string        `envconfig:"REDIS_PORT" default:"6379"`
	Password    string        `envconfig:"REDIS_PASSWORD"`
	DB          int           `envconfig:"REDIS_DB" default:"0"`
	ProgressTTL time.Duration `envconfig:"REDIS_PROGRESS_TTL" default:"24h"`
}

// StorageConfig holds media storage configuration
type StorageConfig struct {
	Type            string `envconfig:"STORAGE_TYPE" default:"local"` // "local" or "minio"
	LocalDir        string `envconfig:"STORAGE_LOCAL_DIR" default:"./uploads"`
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-insights"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
	MaxUploadMB     int64  `envconfig:"STORAGE_MAX_UPLOAD_MB" default:"500"`
}

// TranscriptionConfig holds speech-to-text configuration.
// An empty APIKey selects the mock transcriber.
type TranscriptionConfig struct {
	APIKey         string        `envconfig:"ASSEMBLYAI_API_KEY"`
	BaseURL        string        `envconfig:"ASSEMBLYAI_BASE_URL"`
	LanguageCode   string        `envconfig:"ASSEMBLYAI_LANGUAGE_CODE" default:"en"`
	PollAttempts   int           `envconfig:"ASSEMBLYAI_POLL_ATTEMPTS" default:"60"`
	PollInterval   time.Duration `envconfig:"ASSEMBLYAI_POLL_INTERVAL" default:"10s"`
	FallbackToMock bool          `envconfig:"ASSEMBLYAI_FALLBACK_TO_MOCK" default:"true"`
	FFProbePath    string        `envconfig:"ASSEMBLYAI_FFPROBE_PATH" default:"ffprobe"`
}

// LLMConfig holds language model configuration.
// An empty APIKey selects the mock generators.
type LLMConfig struct {
	Provider       string        `envconfig:"LLM_PROVIDER" default:"openai"` // "openai", "groq" or "gemini"
	APIKey         string        `envconfig:"LLM_API_KEY"`
	Model          string        `envconfig:"LLM_MODEL"`
	BaseURL        string        `envconfig:"LLM_BASE_URL"`
	ResponseFormat string        `envconfig:"LLM_RESPONSE_FORMAT" default:"json_schema"` // "json_schema" or "json_object"
	MaxTokens      int           `envconfig:"LLM_MAX_TOKENS" default:"2000"`
	Temperature    float64       `envconfig:"LLM_TEMPERATURE" default:"0.3"`
	RateLimit      float64       `envconfig:"LLM_RATE_LIMIT" default:"2"` // requests per second, 0 disables
	RateBurst      int           `envconfig:"LLM_RATE_BURST" default:"1"`
	RequestTimeout time.Duration `envconfig:"LLM_REQUEST_TIMEOUT" default:"60s"`
	MaxElapsedTime time.Duration `envconfig:"LLM_MAX_ELAPSED_TIME" default:"30s"`
}

// PipelineConfig holds processing pipeline configuration
type PipelineConfig struct {
	Workers        int           `envconfig:"PIPELINE_WORKERS" default:"4"`
	QueueSize      int           `envconfig:"PIPELINE_QUEUE_SIZE" default:"64"`
	SweeperEnabled bool          `envconfig:"PIPELINE_SWEEPER_ENABLED" default:"true"`
	StaleAfter     time.Duration `envconfig:"PIPELINE_STALE_AFTER" default:"30m"`
	SweepInterval  time.Duration `envconfig:"PIPELINE_SWEEP_INTERVAL" default:"5m"`
}

// JWTConfig holds bearer token configuration
type JWTConfig struct {
	Enabled bool          `envconfig:"JWT_ENABLED" default:"false"`
	Secret  string        `envconfig:"JWT_ACCESS_SECRET"`
	Expiry  time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"24h"`
	Issuer  string        `envconfig:"JWT_ISSUER" default:"meeting-insights"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	File       string `envconfig:"LOG_FILE"`
	MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"100"`
	MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"3"`
	MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"7"`
	Compress   bool   `envconfig:"LOG_COMPRESS" default:"true"`
}

// Load loads configuration from a .env file and environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}
	return Process()
}

// Process reads configuration from the environment only
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	cfg.applyVendorKeys()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyVendorKeys falls back to the vendor-conventional variable names
func (c *Config) applyVendorKeys() {
	if c.LLM.APIKey != "" {
		return
	}
	switch c.LLM.Provider {
	case "openai":
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	case "groq":
		c.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	case "gemini":
		c.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	switch c.Storage.Type {
	case "local", "minio":
	default:
		return fmt.Errorf("STORAGE_TYPE must be local or minio, got %q", c.Storage.Type)
	}
	switch c.LLM.Provider {
	case "openai", "groq", "gemini":
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai, groq or gemini, got %q", c.LLM.Provider)
	}
	switch c.LLM.ResponseFormat {
	case "json_schema", "json_object":
	default:
		return fmt.Errorf("LLM_RESPONSE_FORMAT must be json_schema or json_object, got %q", c.LLM.ResponseFormat)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0,2]")
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}
	if c.Transcription.PollAttempts <= 0 || c.Transcription.PollInterval <= 0 {
		return fmt.Errorf("ASSEMBLYAI_POLL_ATTEMPTS and ASSEMBLYAI_POLL_INTERVAL must be positive")
	}
	if c.Pipeline.Workers <= 0 || c.Pipeline.QueueSize <= 0 {
		return fmt.Errorf("PIPELINE_WORKERS and PIPELINE_QUEUE_SIZE must be positive")
	}
	if c.JWT.Enabled && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required when JWT_ENABLED=true")
	}
	return nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
