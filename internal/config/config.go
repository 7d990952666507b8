// Package config loads the service configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode `mapstructure:"VSP_MODE"`

	Port string `mapstructure:"VSP_PORT"`

	GCPProjectID string `mapstructure:"VSP_GCP_PROJECT"`
	GCPLocation  string `mapstructure:"VSP_GCP_LOCATION"`
	ModelName    string `mapstructure:"VSP_MODEL_NAME"`
	// GenAIAPIKey selects the Gemini Developer API; when empty Vertex AI is used.
	GenAIAPIKey string `mapstructure:"VSP_GENAI_API_KEY"`

	StorageBackend string `mapstructure:"VSP_STORAGE_BACKEND"` // "memory" o "firestore"
	UseMockLLM     bool   `mapstructure:"VSP_USE_MOCK_LLM"`    // true = use mock even on GCP

	GeoPrimaryURL  string `mapstructure:"VSP_GEO_PRIMARY_URL"`
	GeoFallbackURL string `mapstructure:"VSP_GEO_FALLBACK_URL"`

	GeoTimeout        time.Duration `mapstructure:"VSP_GEO_TIMEOUT"`
	TelemetryTimeout  time.Duration `mapstructure:"VSP_TELEMETRY_TIMEOUT"`
	GenerationTimeout time.Duration `mapstructure:"VSP_GENERATION_TIMEOUT"`
	SuspenseDelay     time.Duration `mapstructure:"VSP_SUSPENSE_DELAY"`

	GirlfriendName string `mapstructure:"VSP_GIRLFRIEND_NAME"`
	SenderName     string `mapstructure:"VSP_SENDER_NAME"`

	OTLPEndpoint string `mapstructure:"VSP_OTLP_ENDPOINT"`
	LogLevel     string `mapstructure:"VSP_LOG_LEVEL"`
}

// Load reads .env (if present), then the environment, and validates the result.
// Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // missing .env is fine

	v.AutomaticEnv()

	v.SetDefault("VSP_MODE", string(ModeLocal))
	v.SetDefault("VSP_PORT", "8080")
	v.SetDefault("VSP_GCP_PROJECT", "")
	v.SetDefault("VSP_GCP_LOCATION", "us-central1")
	v.SetDefault("VSP_MODEL_NAME", "gemini-2.5-flash")
	v.SetDefault("VSP_GENAI_API_KEY", "")
	v.SetDefault("VSP_STORAGE_BACKEND", "memory")
	v.SetDefault("VSP_GEO_PRIMARY_URL", "https://ipapi.co")
	v.SetDefault("VSP_GEO_FALLBACK_URL", "https://api.ipify.org?format=json")
	v.SetDefault("VSP_GEO_TIMEOUT", "5s")
	v.SetDefault("VSP_TELEMETRY_TIMEOUT", "5s")
	v.SetDefault("VSP_GENERATION_TIMEOUT", "30s")
	v.SetDefault("VSP_SUSPENSE_DELAY", "4500ms")
	v.SetDefault("VSP_GIRLFRIEND_NAME", "Khushbooo")
	v.SetDefault("VSP_SENDER_NAME", "Pankaj")
	v.SetDefault("VSP_OTLP_ENDPOINT", "")
	v.SetDefault("VSP_LOG_LEVEL", "info")

	// The mock LLM is the default only in local mode.
	mode := Mode(strings.ToLower(v.GetString("VSP_MODE")))
	v.SetDefault("VSP_USE_MOCK_LLM", mode != ModeGCP)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	switch Mode(strings.ToLower(string(cfg.Mode))) {
	case ModeGCP:
		cfg.Mode = ModeGCP
	default:
		cfg.Mode = ModeLocal
	}
	cfg.StorageBackend = strings.ToLower(strings.TrimSpace(cfg.StorageBackend))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return errors.New("config: VSP_PORT must be set")
	}
	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return errors.New("config: VSP_GCP_PROJECT must be set in gcp mode")
	}
	switch c.StorageBackend {
	case "memory":
	case "firestore":
		if c.GCPProjectID == "" {
			return errors.New("config: VSP_GCP_PROJECT is required for the firestore backend")
		}
	default:
		return errors.New("config: VSP_STORAGE_BACKEND must be memory or firestore")
	}
	if !c.UseMockLLM && c.GenAIAPIKey == "" && c.GCPProjectID == "" {
		return errors.New("config: VSP_GENAI_API_KEY or VSP_GCP_PROJECT is required unless VSP_USE_MOCK_LLM is set")
	}
	if c.SuspenseDelay <= 0 {
		return errors.New("config: VSP_SUSPENSE_DELAY must be positive")
	}
	if c.GirlfriendName == "" {
		return errors.New("config: VSP_GIRLFRIEND_NAME must be set")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
