package config

import (
	"fmt"
	"log"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/gommon/bytes"
)

// Provider names
const (
	ProviderHTTP       = "http"
	ProviderAssemblyAI = "assemblyai"
	ProviderGroq       = "groq"

	defaultJWTSecret = "your-access-secret-change-in-production"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Transcription TranscriptionConfig `envconfig:"TRANSCRIPTION"`
	Summarization SummarizationConfig `envconfig:"SUMMARIZATION"`
	Assembly      AssemblyAIConfig    `envconfig:"ASSEMBLYAI"`
	Groq          GroqConfig          `envconfig:"GROQ"`
	Trello        TrelloConfig        `envconfig:"TRELLO"`
	Firebase      FirebaseConfig      `envconfig:"FIREBASE"`
	JWT           JWTConfig           `envconfig:"JWT"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Session       SessionConfig       `envconfig:"SESSION"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
	MaxUploadSize   string   `envconfig:"MAX_UPLOAD_SIZE" default:"500M"`
}

// TranscriptionConfig selects and configures the transcription backend
type TranscriptionConfig struct {
	Provider string        `envconfig:"TRANSCRIPTION_PROVIDER" default:"http"`
	BaseURL  string        `envconfig:"TRANSCRIPTION_BASE_URL" default:"https://backend-meet-102983651606.europe-west1.run.app"`
	Timeout  time.Duration `envconfig:"TRANSCRIPTION_TIMEOUT" default:"10m"`
}

// SummarizationConfig selects and configures the summarization backend
type SummarizationConfig struct {
	Provider string        `envconfig:"SUMMARIZATION_PROVIDER" default:"http"`
	BaseURL  string        `envconfig:"SUMMARIZATION_BASE_URL" default:"https://summarization-s3g3.onrender.com"`
	Timeout  time.Duration `envconfig:"SUMMARIZATION_TIMEOUT" default:"2m"`
}

// AssemblyAIConfig holds AssemblyAI configuration
type AssemblyAIConfig struct {
	APIKey       string        `envconfig:"ASSEMBLYAI_API_KEY"`
	PollInterval time.Duration `envconfig:"ASSEMBLYAI_POLL_INTERVAL" default:"3s"`
	MaxWait      time.Duration `envconfig:"ASSEMBLYAI_MAX_WAIT" default:"15m"`
}

// GroqConfig holds Groq configuration
type GroqConfig struct {
	APIKey  string `envconfig:"GROQ_API_KEY"`
	BaseURL string `envconfig:"GROQ_API_URL" default:"https://api.groq.com"`
	Model   string `envconfig:"GROQ_MODEL" default:"llama-3.1-70b-versatile"`
}

// TrelloConfig holds the default task-board credentials seeded into each session
type TrelloConfig struct {
	APIKey  string        `envconfig:"TRELLO_API_KEY"`
	Token   string        `envconfig:"TRELLO_TOKEN"`
	BaseURL string        `envconfig:"TRELLO_BASE_URL" default:"https://api.trello.com/1"`
	Timeout time.Duration `envconfig:"TRELLO_TIMEOUT" default:"30s"`
}

// FirebaseConfig holds Firebase Identity Toolkit configuration
type FirebaseConfig struct {
	APIKey  string `envconfig:"FIREBASE_API_KEY"`
	BaseURL string `envconfig:"FIREBASE_BASE_URL" default:"https://identitytoolkit.googleapis.com/v1"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string        `envconfig:"JWT_ACCESS_SECRET" default:"your-access-secret-change-in-production"`
	AccessExpiry time.Duration `envconfig:"JWT_ACCESS_EXPIRY" default:"12h"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled   bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host      string `envconfig:"REDIS_HOST" default:"localhost"`
	Port      string `envconfig:"REDIS_PORT" default:"6379"`
	Password  string `envconfig:"REDIS_PASSWORD"`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"minutes360:"`
}

// SessionConfig holds pipeline session settings
type SessionConfig struct {
	IdleTimeout   time.Duration `envconfig:"SESSION_IDLE_TIMEOUT" default:"2h"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"5m"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Transcription.Provider {
	case ProviderHTTP:
		if c.Transcription.BaseURL == "" {
			return fmt.Errorf("TRANSCRIPTION_BASE_URL is required")
		}
	case ProviderAssemblyAI:
		if c.Assembly.APIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_API_KEY is required when TRANSCRIPTION_PROVIDER=assemblyai")
		}
	default:
		return fmt.Errorf("unknown TRANSCRIPTION_PROVIDER %q", c.Transcription.Provider)
	}

	switch c.Summarization.Provider {
	case ProviderHTTP:
		if c.Summarization.BaseURL == "" {
			return fmt.Errorf("SUMMARIZATION_BASE_URL is required")
		}
	case ProviderGroq:
		if c.Groq.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when SUMMARIZATION_PROVIDER=groq")
		}
	default:
		return fmt.Errorf("unknown SUMMARIZATION_PROVIDER %q", c.Summarization.Provider)
	}

	if c.Firebase.APIKey == "" {
		return fmt.Errorf("FIREBASE_API_KEY is required")
	}
	if _, err := c.Server.MaxUploadBytes(); err != nil {
		return err
	}
	if c.IsProduction() && c.JWT.AccessSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_ACCESS_SECRET must be changed in production")
	}
	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr returns the Redis address
func (c *RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// ListenAddr returns the HTTP listen address
func (c *ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// MaxUploadBytes parses MaxUploadSize ("500M", "1G") into bytes
func (c *ServerConfig) MaxUploadBytes() (int64, error) {
	if c.MaxUploadSize == "" {
		return 0, nil
	}
	n, err := bytes.Parse(c.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("invalid MAX_UPLOAD_SIZE %q: %w", c.MaxUploadSize, err)
	}
	return n, nil
}
