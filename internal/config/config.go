package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	// HTTP
	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	// Relational store
	DBPath string

	// Qdrant
	QdrantURL                 string
	PostsCollection           string
	CommentsCollection        string
	UsersCollection           string
	RecommendationsCollection string
	VectorSize                int
	SparseVocabSize           int
	ReadyProbeTimeout         time.Duration

	// Embedding providers
	OpenAIAPIKey        string
	OpenAIModel         string
	PrimaryEmbeddingURL string
	PrimaryEmbeddingKey string
	PrimaryModel        string
	LocalEmbeddingURL   string
	LocalModel          string
	PreferLocalFirst    bool
	EmbedBudget         time.Duration
	EmbedAttemptTimeout time.Duration
	MaxRetries          int
	BatchSize           int

	// Ranking knobs. Hand-tuned defaults carried over from the product; kept
	// overridable rather than inlined so they can be re-tuned without a deploy.
	DiversityCategoryWeight float64
	DiversityAuthorWeight   float64
	DiversityTopicWeight    float64
	TopicOverlapThreshold   float64
	TimeDecayFactor         float64
	DiversityBonusWeight    float64
	SerendipityBonusWeight  float64
	RRFConstant             float64
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it is loaded
// automatically; variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up to find a .env next to go.mod (project root)
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		DBPath: getEnv("DB_PATH", "./data/discourse-ai.db"),

		QdrantURL:                 getEnv("QDRANT_URL", "http://localhost:6333"),
		PostsCollection:           getEnv("QDRANT_POSTS_COLLECTION", "posts"),
		CommentsCollection:        getEnv("QDRANT_COMMENTS_COLLECTION", "comments"),
		UsersCollection:           getEnv("QDRANT_USERS_COLLECTION", "users"),
		RecommendationsCollection: getEnv("QDRANT_RECOMMENDATIONS_COLLECTION", "recommendations"),

		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		PrimaryEmbeddingURL: getEnv("EMBEDDING_BASE_URL", ""),
		PrimaryEmbeddingKey: getEnv("EMBEDDING_API_KEY", "dummy-key"),
		PrimaryModel:        getEnv("EMBEDDING_MODEL_NAME", "bge-m3"),
		LocalEmbeddingURL:   getEnv("LOCAL_EMBEDDING_BASE_URL", ""),
		LocalModel:          getEnv("LOCAL_EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	// Vector size must match the output dimension of the embedding models in use.
	// If it changes, the Qdrant collections must be recreated.
	if cfg.VectorSize, err = getEnvInt("QDRANT_VECTOR_SIZE", 1024); err != nil {
		return nil, err
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	if cfg.SparseVocabSize, err = getEnvInt("SPARSE_VOCAB_SIZE", 30000); err != nil {
		return nil, err
	}
	if cfg.SparseVocabSize <= 0 {
		return nil, fmt.Errorf("SPARSE_VOCAB_SIZE must be greater than 0")
	}

	cfg.PreferLocalFirst = getEnvBool("PREFER_LOCAL_EMBEDDINGS", false)
	if cfg.MaxRetries, err = getEnvInt("EMBEDDING_MAX_RETRIES", 5); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = getEnvInt("EMBEDDING_BATCH_SIZE", 64); err != nil {
		return nil, err
	}

	cfg.ReadyProbeTimeout = getEnvDuration("QDRANT_READY_TIMEOUT", 500*time.Millisecond)
	cfg.EmbedBudget = getEnvDuration("EMBEDDING_BUDGET", 15*time.Second)
	cfg.EmbedAttemptTimeout = getEnvDuration("EMBEDDING_ATTEMPT_TIMEOUT", 5*time.Second)

	if cfg.DiversityCategoryWeight, err = getEnvFloat("DIVERSITY_CATEGORY_WEIGHT", 0.4); err != nil {
		return nil, err
	}
	if cfg.DiversityAuthorWeight, err = getEnvFloat("DIVERSITY_AUTHOR_WEIGHT", 0.3); err != nil {
		return nil, err
	}
	if cfg.DiversityTopicWeight, err = getEnvFloat("DIVERSITY_TOPIC_WEIGHT", 0.3); err != nil {
		return nil, err
	}
	if cfg.TopicOverlapThreshold, err = getEnvFloat("TOPIC_OVERLAP_THRESHOLD", 0.5); err != nil {
		return nil, err
	}
	if cfg.TimeDecayFactor, err = getEnvFloat("TIME_DECAY_FACTOR", 0.95); err != nil {
		return nil, err
	}
	if cfg.DiversityBonusWeight, err = getEnvFloat("DIVERSITY_BONUS_WEIGHT", 0.1); err != nil {
		return nil, err
	}
	if cfg.SerendipityBonusWeight, err = getEnvFloat("SERENDIPITY_BONUS_WEIGHT", 0.05); err != nil {
		return nil, err
	}
	if cfg.RRFConstant, err = getEnvFloat("RRF_K", 60); err != nil {
		return nil, err
	}

	// Create the data directory for the SQLite file if it doesn't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// HasRemoteEmbeddings reports whether at least one network embedding provider
// is configured. When false, every embedding request uses the deterministic
// content-derived fallback.
func (c *Config) HasRemoteEmbeddings() bool {
	return c.OpenAIAPIKey != "" || c.PrimaryEmbeddingURL != "" || c.LocalEmbeddingURL != ""
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q (expected debug, info, warn, or error)", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid number: %w", key, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
