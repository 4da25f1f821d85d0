// ABOUTME: Centralized configuration for the Trip Cortex services
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the policy retrieval pipeline.
// It is constructed once at process start and passed by reference; there is
// no process-wide mutable cache.
type Config struct {
	// Storage settings
	DBPath string

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Retrieval settings
	VectorDimension     int
	SimilarityThreshold float64 // inclusion threshold for retrieval
	ConfidenceThreshold float64 // stricter tier for the confidence assessor
	TopK                int
	IndexCutover        int // chunk count above which the ANN index is used

	// Authentication
	ClerkSecretKey string

	// Environment
	Environment string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		DBPath:              getEnv("CORTEX_DB_PATH", ""),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		ChatModel:           getEnv("CORTEX_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:      getEnv("CORTEX_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		VectorDimension:     getEnvInt("VECTOR_DIMENSION", 1024),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.65),
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.80),
		TopK:                getEnvInt("RETRIEVAL_TOP_K", 5),
		IndexCutover:        getEnvInt("INDEX_CUTOVER", 1000),
		ClerkSecretKey:      os.Getenv("CLERK_SECRET_KEY"),
		Environment:         getEnv("ENVIRONMENT", "local"),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be 0-1, got %f", c.SimilarityThreshold)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be 0-1, got %f", c.ConfidenceThreshold)
	}
	if c.ConfidenceThreshold < c.SimilarityThreshold {
		return fmt.Errorf("CONFIDENCE_THRESHOLD (%f) must not be below SIMILARITY_THRESHOLD (%f)",
			c.ConfidenceThreshold, c.SimilarityThreshold)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("RETRIEVAL_TOP_K must be positive, got %d", c.TopK)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
