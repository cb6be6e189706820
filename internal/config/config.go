package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for idea-engine
type Config struct {
	Server   ServerConfig
	LLM      LLMConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Website  WebsiteConfig
	Tokens   TokensConfig
	Prompts  PromptsConfig
	LogLevel string
	Debug    bool
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// LLMConfig holds configuration for the upstream model API
type LLMConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DatabaseConfig holds optional PostgreSQL configuration.
// An empty DSN disables analysis persistence.
type DatabaseConfig struct {
	DSN           string
	MaxOpenConns  int
	MaxIdleConns  int
	MigrationsDir string
}

// Enabled reports whether persistence is configured
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != ""
}

// RedisConfig holds optional Redis cache backend configuration.
// An empty address falls back to the in-memory cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// Enabled reports whether the Redis backend is configured
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

// CacheConfig bounds the analysis memoization cache
type CacheConfig struct {
	TTL      time.Duration
	Capacity int
}

// WebsiteConfig bounds the website content extractor
type WebsiteConfig struct {
	CharBudget int
	MaxPages   int
	Timeout    time.Duration
}

// TokensConfig configures the token usage estimator
type TokensConfig struct {
	HighUsageThreshold int
}

// PromptsConfig holds prompt template configuration
type PromptsConfig struct {
	Dir string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		LLM: LLMConfig{
			APIKey:    getEnv("LLM_API_KEY", ""),
			BaseURL:   getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			Model:     getEnv("LLM_MODEL", "gpt-4o-mini"),
			MaxTokens: getEnvAsInt("LLM_MAX_TOKENS", 4096),
			Timeout:   getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			DSN:           getEnv("DATABASE_DSN", ""),
			MaxOpenConns:  getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
			MigrationsDir: getEnv("DATABASE_MIGRATIONS_DIR", "./migrations"),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTL:      getEnvAsDuration("CACHE_TTL", 1*time.Hour),
			Capacity: getEnvAsInt("CACHE_CAPACITY", 1000),
		},
		Website: WebsiteConfig{
			CharBudget: getEnvAsInt("WEBSITE_CHAR_BUDGET", 10000),
			MaxPages:   getEnvAsInt("WEBSITE_MAX_PAGES", 5),
			Timeout:    getEnvAsDuration("WEBSITE_TIMEOUT", 30*time.Second),
		},
		Tokens: TokensConfig{
			HighUsageThreshold: getEnvAsInt("TOKEN_HIGH_USAGE_THRESHOLD", 8000),
		},
		Prompts: PromptsConfig{
			Dir: getEnv("PROMPTS_DIR", "./prompts"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Debug:    getEnvAsBool("DEBUG", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("LLM_MODEL must not be empty")
	}

	if c.Cache.Capacity < 1 {
		return fmt.Errorf("invalid cache capacity: %d", c.Cache.Capacity)
	}

	if c.Website.CharBudget < 1 {
		return fmt.Errorf("invalid website char budget: %d", c.Website.CharBudget)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
