package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// CorpusConfig locates the labeled CSV dataset.
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// HashingEmbedderConfig configures the local feature-hashing embedder.
type HashingEmbedderConfig struct {
	Dimension int `yaml:"dimension"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type    string                 `yaml:"type"`
	Hashing *HashingEmbedderConfig `yaml:"hashing,omitempty"`
	OpenAI  *OpenAIEmbedderConfig  `yaml:"openai,omitempty"`
}

// RedisCacheConfig contains connection details for a Redis cache store.
type RedisCacheConfig struct {
	URL string `yaml:"url"`
}

// SQLiteCacheConfig points at the SQLite database file.
type SQLiteCacheConfig struct {
	Path string `yaml:"path"`
}

// PostgresCacheConfig contains the Postgres connection string.
type PostgresCacheConfig struct {
	DSN string `yaml:"dsn"`
}

// CacheConfig selects and configures where embeddings are persisted.
type CacheConfig struct {
	Type     string               `yaml:"type"`
	Prefix   string               `yaml:"prefix"`
	Dir      string               `yaml:"dir"`
	Redis    *RedisCacheConfig    `yaml:"redis,omitempty"`
	SQLite   *SQLiteCacheConfig   `yaml:"sqlite,omitempty"`
	Postgres *PostgresCacheConfig `yaml:"postgres,omitempty"`
}

// RetrievalConfig tunes similarity queries and index builds.
type RetrievalConfig struct {
	TopK      int `yaml:"top_k"`
	BatchSize int `yaml:"batch_size"`
}

// SeverityConfig configures the severity scorer. An empty endpoint selects
// the rule-based scorer.
type SeverityConfig struct {
	Endpoint    string `yaml:"endpoint"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Cache     CacheConfig     `yaml:"cache"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Severity  SeverityConfig  `yaml:"severity"`
	Log       LogConfig       `yaml:"log"`
}

// Environment variables that override file values.
const (
	EnvCorpus   = "CASERAG_CORPUS"
	EnvCacheDir = "CASERAG_CACHE_DIR"
	EnvRedisURL = "CASERAG_REDIS_URL"
)

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyEnvOverrides(&cfg)
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/caserag/config.yaml.
// If neither exists, it writes defaults to ~/.config/caserag/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnvOverrides(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "caserag", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Corpus:    CorpusConfig{Path: "500_Reddit_users_posts_labels.csv"},
		Embedder:  EmbedderConfig{Type: "hashing", Hashing: &HashingEmbedderConfig{Dimension: 512}},
		Cache:     CacheConfig{Type: "file", Dir: ".caserag-cache"},
		Retrieval: RetrievalConfig{TopK: 3, BatchSize: 64},
		Severity:  SeverityConfig{TimeoutSecs: 10},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
	return cfg
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv(EnvCorpus); v != "" {
		cfg.Corpus.Path = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		if cfg.Cache.Redis == nil {
			cfg.Cache.Redis = &RedisCacheConfig{}
		}
		cfg.Cache.Redis.URL = v
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Corpus.Path == "" {
		cfg.Corpus.Path = def.Corpus.Path
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Type == "hashing" {
		if cfg.Embedder.Hashing == nil {
			cfg.Embedder.Hashing = &HashingEmbedderConfig{}
		}
		if cfg.Embedder.Hashing.Dimension == 0 {
			cfg.Embedder.Hashing.Dimension = def.Embedder.Hashing.Dimension
		}
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = def.Cache.Type
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = def.Cache.Dir
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = def.Retrieval.TopK
	}
	if cfg.Retrieval.BatchSize <= 0 {
		cfg.Retrieval.BatchSize = def.Retrieval.BatchSize
	}
	if cfg.Severity.TimeoutSecs == 0 {
		cfg.Severity.TimeoutSecs = def.Severity.TimeoutSecs
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
}
