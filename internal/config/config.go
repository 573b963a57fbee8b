package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP API surface.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection details.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig contains Redis connection details. An empty Addr selects the
// Postgres task queue fallback.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// QdrantConfig contains connection details for the vector index.
// An empty URL disables semantic search.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key"`
	Collection  string `yaml:"collection"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbeddingConfig selects and configures the embedding provider.
// An empty API key disables embedding and semantic search.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	TokenBudget int `yaml:"token_budget"`
}

// SearchConfig configures ranking defaults.
type SearchConfig struct {
	DefaultAlpha    float64 `yaml:"default_alpha"`
	CandidateFactor int     `yaml:"candidate_factor"`
}

// WorkerConfig configures the background embed workers.
type WorkerConfig struct {
	Concurrency        int `yaml:"concurrency"`
	DequeueTimeoutSecs int `yaml:"dequeue_timeout_secs"`
}

// AuthConfig holds the tenant token secret.
type AuthConfig struct {
	JWTSecretEnv string `yaml:"jwt_secret_env"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	// Mode selects what this process runs: "api", "worker" or "all"
	Mode string `yaml:"mode"`

	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Search    SearchConfig    `yaml:"search"`
	Worker    WorkerConfig    `yaml:"worker"`
	Auth      AuthConfig      `yaml:"auth"`
}

// Load reads a config from the given path. A missing file returns defaults;
// environment variables override the file either way.
func Load(path string) (*AppConfig, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

// EmbeddingAPIKey reads the provider API key from the configured env var
func (c *AppConfig) EmbeddingAPIKey() string {
	return os.Getenv(c.Embedding.APIKeyEnv)
}

// JWTSecret reads the tenant token secret from the configured env var
func (c *AppConfig) JWTSecret() string {
	return os.Getenv(c.Auth.JWTSecretEnv)
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Mode: "all",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Qdrant: QdrantConfig{
			Collection:  "meridian_chunks",
			TimeoutSecs: 15,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Chunker: ChunkerConfig{
			TokenBudget: 1200,
		},
		Search: SearchConfig{
			DefaultAlpha:    0.5,
			CandidateFactor: 2,
		},
		Worker: WorkerConfig{
			Concurrency:        4,
			DequeueTimeoutSecs: 5,
		},
		Auth: AuthConfig{
			JWTSecretEnv: "MERIDIAN_JWT_SECRET",
		},
	}
}

// applyEnvOverrides lets deployment environments override the file without
// editing it. Only connection-level settings are overridable this way.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("MERIDIAN_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("MERIDIAN_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("QDRANT_URL"); v != "" {
		cfg.Qdrant.URL = v
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		cfg.Qdrant.APIKey = v
	}
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Mode == "" {
		cfg.Mode = "all"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "meridian_chunks"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Chunker.TokenBudget <= 0 {
		cfg.Chunker.TokenBudget = 1200
	}
	if cfg.Search.DefaultAlpha <= 0 || cfg.Search.DefaultAlpha > 1 {
		cfg.Search.DefaultAlpha = 0.5
	}
	if cfg.Search.CandidateFactor <= 0 {
		cfg.Search.CandidateFactor = 2
	}
	if cfg.Worker.Concurrency <= 0 {
		cfg.Worker.Concurrency = 4
	}
	if cfg.Worker.DequeueTimeoutSecs <= 0 {
		cfg.Worker.DequeueTimeoutSecs = 5
	}
	if cfg.Auth.JWTSecretEnv == "" {
		cfg.Auth.JWTSecretEnv = "MERIDIAN_JWT_SECRET"
	}
}
