package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// InferenceConfig holds the runtime-tunable inference thresholds
type InferenceConfig struct {
	// SemanticThreshold is the minimum lexical similarity for a semantic edge
	SemanticThreshold float64 `yaml:"semantic_threshold"`
	// MentionStrength is the fixed strength of mention-derived edges
	MentionStrength float64 `yaml:"mention_strength"`
	// TemporalWindowHours bounds temporal-proximity scoring
	TemporalWindowHours float64 `yaml:"temporal_window_hours"`
	// ScanIntervalMs is the minimum spacing between per-note passes in a
	// batch scan
	ScanIntervalMs int `yaml:"scan_interval_ms"`
}

// AssistantConfig holds upstream backend client configuration
type AssistantConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	PageSize       int    `yaml:"page_size"`
	MaxPages       int    `yaml:"max_pages"`
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"server_address"`
	Environment   string `yaml:"environment"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableCORS    bool `yaml:"enable_cors"`

	// Upstream assistant backend
	Assistant AssistantConfig `yaml:"assistant"`

	// Inference thresholds; hot-reloadable via the config watcher
	Inference InferenceConfig `yaml:"inference"`
}

// LoadConfig loads configuration from defaults, an optional YAML file
// (CONFIG_FILE), and environment variables, in increasing priority
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		ServerAddress: ":8080",
		Environment:   "development",
		LogLevel:      "info",
		EnableMetrics: true,
		EnableCORS:    true,
		Assistant: AssistantConfig{
			BaseURL:        "http://localhost:9000",
			TimeoutSeconds: 15,
			PageSize:       100,
			MaxPages:       50,
		},
		Inference: InferenceConfig{
			SemanticThreshold:   0.1,
			MentionStrength:     0.5,
			TemporalWindowHours: 24,
			ScanIntervalMs:      100,
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.ServerAddress = getEnv("SERVER_ADDRESS", cfg.ServerAddress)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.EnableMetrics = getEnvBool("ENABLE_METRICS", cfg.EnableMetrics)
	cfg.EnableCORS = getEnvBool("ENABLE_CORS", cfg.EnableCORS)

	cfg.Assistant.BaseURL = getEnv("ASSISTANT_API_URL", cfg.Assistant.BaseURL)
	cfg.Assistant.TimeoutSeconds = getEnvInt("ASSISTANT_API_TIMEOUT", cfg.Assistant.TimeoutSeconds)
	cfg.Assistant.PageSize = getEnvInt("ASSISTANT_PAGE_SIZE", cfg.Assistant.PageSize)
	cfg.Assistant.MaxPages = getEnvInt("ASSISTANT_MAX_PAGES", cfg.Assistant.MaxPages)

	cfg.Inference.SemanticThreshold = getEnvFloat("SEMANTIC_THRESHOLD", cfg.Inference.SemanticThreshold)
	cfg.Inference.MentionStrength = getEnvFloat("MENTION_STRENGTH", cfg.Inference.MentionStrength)
	cfg.Inference.TemporalWindowHours = getEnvFloat("TEMPORAL_WINDOW_HOURS", cfg.Inference.TemporalWindowHours)
	cfg.Inference.ScanIntervalMs = getEnvInt("SCAN_INTERVAL_MS", cfg.Inference.ScanIntervalMs)
}

// Validate checks if all required configuration is present and sane
func (c *Config) Validate() error {
	if c.Assistant.BaseURL == "" {
		return fmt.Errorf("ASSISTANT_API_URL is required")
	}
	if c.Inference.SemanticThreshold < 0 || c.Inference.SemanticThreshold > 1 {
		return fmt.Errorf("semantic threshold must be between 0 and 1")
	}
	if c.Inference.MentionStrength < 0 || c.Inference.MentionStrength > 1 {
		return fmt.Errorf("mention strength must be between 0 and 1")
	}
	if c.Inference.TemporalWindowHours <= 0 {
		return fmt.Errorf("temporal window must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
