package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the Piel Sana web server.
type Config struct {
	Server          ServerConfig
	Backend         BackendConfig
	Upload          UploadConfig
	Database        DatabaseConfig
	Redis           RedisConfig
	Recommendations RecommendationsConfig
	Conditions      ConditionsConfig
	Admin           AdminConfig
}

type ServerConfig struct {
	Port        int
	Env         string
	CORSOrigins []string
}

// BackendConfig locates the external analysis service.
type BackendConfig struct {
	BaseURL       string
	LegacyBaseURL string
	Timeout       time.Duration
}

type UploadConfig struct {
	MaxBytes           int64
	RateLimitPerMinute int
}

// DatabaseConfig is optional; an empty URL disables curated conditions.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional; an empty URL disables caching and rate limiting.
type RedisConfig struct {
	URL string
}

type RecommendationsConfig struct {
	Provider string
	Timeout  time.Duration
	CacheTTL time.Duration
	OpenAI   OpenAIConfig
}

// OpenAIConfig configures the direct OpenAI provider. BaseURL is optional
// and points at an OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type ConditionsConfig struct {
	Remote   bool
	CacheTTL time.Duration
}

type AdminConfig struct {
	APIKeyHash string
}

var validProviders = map[string]bool{
	"backend": true,
	"openai":  true,
}

// Load reads configuration from environment variables and returns a validated Config.
// Returns an error with a descriptive message if any value is invalid.
func Load() (*Config, error) {
	baseURL := envString("ANALYSIS_API_URL", os.Getenv("VITE_API_URL"))
	cfg := &Config{
		Server: ServerConfig{
			Port:        envInt("PIELSANA_PORT", 8080),
			Env:         envString("PIELSANA_ENV", "development"),
			CORSOrigins: envList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Backend: BackendConfig{
			BaseURL:       strings.TrimRight(baseURL, "/"),
			LegacyBaseURL: strings.TrimRight(envString("LEGACY_API_URL", baseURL), "/"),
			Timeout:       envDuration("ANALYSIS_TIMEOUT", 60*time.Second),
		},
		Upload: UploadConfig{
			MaxBytes:           int64(envInt("UPLOAD_MAX_BYTES", 10<<20)),
			RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 30),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Recommendations: RecommendationsConfig{
			Provider: envString("RECOMMENDATIONS_PROVIDER", "backend"),
			Timeout:  envDurationSecs("RECOMMENDATIONS_TIMEOUT_SECS", 30*time.Second),
			CacheTTL: envDuration("RECOMMENDATIONS_CACHE_TTL", 24*time.Hour),
			OpenAI: OpenAIConfig{
				APIKey:  os.Getenv("OPENAI_API_KEY"),
				Model:   envString("OPENAI_MODEL", "gpt-4o-mini"),
				BaseURL: os.Getenv("OPENAI_BASE_URL"),
			},
		},
		Conditions: ConditionsConfig{
			Remote:   envBool("CONDITIONS_REMOTE", true),
			CacheTTL: envDuration("CONDITIONS_CACHE_TTL", time.Hour),
		},
		Admin: AdminConfig{
			APIKeyHash: os.Getenv("ADMIN_API_KEY_HASH"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PIELSANA_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if err := checkURL("ANALYSIS_API_URL", c.Backend.BaseURL); err != nil {
		return err
	}
	if err := checkURL("LEGACY_API_URL", c.Backend.LegacyBaseURL); err != nil {
		return err
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Upload.MaxBytes)
	}
	if !validProviders[c.Recommendations.Provider] {
		return fmt.Errorf("RECOMMENDATIONS_PROVIDER must be one of backend, openai; got %q", c.Recommendations.Provider)
	}
	if c.Recommendations.Provider == "openai" && c.Recommendations.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required when RECOMMENDATIONS_PROVIDER is openai")
	}
	if err := checkURL("OPENAI_BASE_URL", c.Recommendations.OpenAI.BaseURL); err != nil {
		return err
	}
	if c.Admin.APIKeyHash != "" && !strings.HasPrefix(c.Admin.APIKeyHash, "$2") {
		return fmt.Errorf("ADMIN_API_KEY_HASH must be a bcrypt hash")
	}
	return nil
}

// checkURL accepts an empty value: the backend origin may be left unset, in
// which case outbound calls fail and pages degrade to error messages.
func checkURL(key, v string) error {
	if v == "" {
		return nil
	}
	if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
		return fmt.Errorf("%s must start with http:// or https://, got %q", key, v)
	}
	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func envList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

func envDurationSecs(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}
