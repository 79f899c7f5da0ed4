package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"helpcenter-sync/internal/chunking"
)

// State store backends.
const (
	StateBackendFile   = "file"
	StateBackendSQLite = "sqlite"
	StateBackendGCS    = "gcs"
)

// Vector index backends.
const (
	IndexBackendOpenAI = "openai"
	IndexBackendQdrant = "qdrant"
)

// Config holds all configuration for the application.
type Config struct {
	HelpCenterURL    string `toml:"helpcenter_url"`
	HelpCenterLocale string `toml:"helpcenter_locale"`
	ArticleLimit     int    `toml:"article_limit"`

	DocDir   string `toml:"doc_dir"`
	ChunkDir string `toml:"chunk_dir"`

	StateBackend       string `toml:"state_backend"`
	StatePath          string `toml:"state_path"`
	DBPath             string `toml:"db_path"`
	GCSBucket          string `toml:"gcs_bucket"`
	GCSObject          string `toml:"gcs_object"`
	GCSCredentialsFile string `toml:"gcs_credentials_file"`

	IndexBackend    string        `toml:"index_backend"`
	OpenAIBaseURL   string        `toml:"openai_base_url"`
	OpenAIAPIKey    string        `toml:"openai_api_key"`
	VectorStoreName string        `toml:"vector_store_name"`
	DeleteOldFiles  bool          `toml:"delete_old_files"`
	PollInterval    time.Duration `toml:"poll_interval"`
	// UploadConcurrency bounds concurrent chunk file uploads per article.
	UploadConcurrency int `toml:"upload_concurrency"`

	QdrantURL          string `toml:"qdrant_url"`
	QdrantVectorSize   int    `toml:"qdrant_vector_size"`
	EmbeddingBaseURL   string `toml:"embedding_base_url"`
	EmbeddingModelName string `toml:"embedding_model_name"`
	EmbeddingAPIKey    string `toml:"embedding_api_key"`

	Chunking chunking.Options `toml:"chunking"`

	RefreshInterval time.Duration `toml:"refresh_interval"`
	APIPort         string        `toml:"api_port"`
	LogLevel        string        `toml:"log_level"`
	LogFormat       string        `toml:"log_format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		HelpCenterURL:      "https://support.optisigns.com",
		HelpCenterLocale:   "en-us",
		ArticleLimit:       30,
		DocDir:             "data/md",
		ChunkDir:           "data/chunks",
		StateBackend:       StateBackendFile,
		StatePath:          "data/state.json",
		DBPath:             "data/helpcenter-sync.db",
		GCSObject:          "state.json",
		IndexBackend:       IndexBackendOpenAI,
		OpenAIBaseURL:      "https://api.openai.com/v1",
		VectorStoreName:    "optisigns-kb",
		DeleteOldFiles:     true,
		PollInterval:       2 * time.Second,
		UploadConcurrency:  4,
		QdrantURL:          "http://localhost:6333",
		EmbeddingBaseURL:   "http://localhost:8081",
		EmbeddingModelName: "granite-embedding-278m-multilingual",
		Chunking:           chunking.DefaultOptions(),
		RefreshInterval:    24 * time.Hour,
		APIPort:            "9000",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load reads configuration and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read assembles configuration without validating backend requirements.
// A .env file in the working directory or one of its parents is loaded first;
// variables already set in the environment take precedence over it. The TOML
// file named by CONFIG_FILE, if any, overrides defaults, and environment
// variables override both.
func Read() (*Config, error) {
	loadDotEnv()

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (c *Config) applyEnv() error {
	c.HelpCenterURL = getEnv("HELPCENTER_URL", c.HelpCenterURL)
	c.HelpCenterLocale = getEnv("HELPCENTER_LOCALE", c.HelpCenterLocale)
	c.DocDir = getEnv("DOC_DIR", c.DocDir)
	c.ChunkDir = getEnv("CHUNK_DIR", c.ChunkDir)
	c.StateBackend = strings.ToLower(getEnv("STATE_BACKEND", c.StateBackend))
	c.StatePath = getEnv("STATE_PATH", c.StatePath)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.GCSBucket = getEnv("GCS_BUCKET", c.GCSBucket)
	c.GCSObject = getEnv("GCS_OBJECT", c.GCSObject)
	c.GCSCredentialsFile = getEnv("GCS_CREDENTIALS_FILE", c.GCSCredentialsFile)
	c.IndexBackend = strings.ToLower(getEnv("INDEX_BACKEND", c.IndexBackend))
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.VectorStoreName = getEnv("VECTOR_STORE_NAME", c.VectorStoreName)
	c.QdrantURL = getEnv("QDRANT_URL", c.QdrantURL)
	c.EmbeddingBaseURL = getEnv("EMBEDDING_BASE_URL", c.EmbeddingBaseURL)
	c.EmbeddingModelName = getEnv("EMBEDDING_MODEL_NAME", c.EmbeddingModelName)
	c.EmbeddingAPIKey = getEnv("EMBEDDING_API_KEY", c.EmbeddingAPIKey)
	c.APIPort = getEnv("API_PORT", c.APIPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", c.LogFormat))

	var err error
	if c.ArticleLimit, err = getEnvInt("ARTICLE_LIMIT", c.ArticleLimit); err != nil {
		return err
	}
	if c.UploadConcurrency, err = getEnvInt("UPLOAD_CONCURRENCY", c.UploadConcurrency); err != nil {
		return err
	}
	if c.QdrantVectorSize, err = getEnvInt("QDRANT_VECTOR_SIZE", c.QdrantVectorSize); err != nil {
		return err
	}
	if c.Chunking.TargetChars, err = getEnvInt("CHUNK_TARGET_CHARS", c.Chunking.TargetChars); err != nil {
		return err
	}
	if c.Chunking.MaxChars, err = getEnvInt("CHUNK_MAX_CHARS", c.Chunking.MaxChars); err != nil {
		return err
	}
	if c.Chunking.OverlapChars, err = getEnvInt("CHUNK_OVERLAP_CHARS", c.Chunking.OverlapChars); err != nil {
		return err
	}
	if c.Chunking.IncludeTOCChunk, err = getEnvBool("CHUNK_INCLUDE_TOC", c.Chunking.IncludeTOCChunk); err != nil {
		return err
	}
	if c.DeleteOldFiles, err = getEnvBool("DELETE_OLD_FILES", c.DeleteOldFiles); err != nil {
		return err
	}
	if c.PollInterval, err = getEnvDuration("POLL_INTERVAL", c.PollInterval); err != nil {
		return err
	}
	if c.RefreshInterval, err = getEnvDuration("REFRESH_INTERVAL", c.RefreshInterval); err != nil {
		return err
	}
	return nil
}

// Validate checks backend selection, backend requirements and chunk sizing.
func (c *Config) Validate() error {
	if err := c.Chunking.Validate(); err != nil {
		return fmt.Errorf("invalid chunking options: %w", err)
	}
	if c.ArticleLimit <= 0 {
		return fmt.Errorf("ARTICLE_LIMIT must be greater than 0")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be greater than 0")
	}
	if c.UploadConcurrency <= 0 {
		return fmt.Errorf("UPLOAD_CONCURRENCY must be greater than 0")
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be greater than 0")
	}

	switch c.StateBackend {
	case StateBackendFile, StateBackendSQLite:
	case StateBackendGCS:
		if c.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs state backend")
		}
	default:
		return fmt.Errorf("unknown STATE_BACKEND %q", c.StateBackend)
	}

	switch c.IndexBackend {
	case IndexBackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai index backend")
		}
	case IndexBackendQdrant:
		if c.QdrantVectorSize <= 0 {
			return fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0 for the qdrant index backend")
		}
	default:
		return fmt.Errorf("unknown INDEX_BACKEND %q", c.IndexBackend)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
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

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 2s or 24h: %w", key, err)
	}
	return d, nil
}
