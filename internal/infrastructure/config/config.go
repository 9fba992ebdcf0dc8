// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for biblio configuration.
	DefaultConfigDir = ".biblio"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite file name inside the config dir.
	DefaultDatabaseFile = "biblio.db"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Redis    RedisConfig    `yaml:"redis,omitempty"`
	Kafka    KafkaConfig    `yaml:"kafka,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Mutation MutationConfig `yaml:"mutation,omitempty"`
	Search   SearchConfig   `yaml:"search,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite revision store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Relative paths are
	// resolved against the config directory.
	Path string `yaml:"path,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant search index.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
	// BaseURL points at an OpenAI-compatible endpoint. Empty uses OpenAI.
	BaseURL string `yaml:"base_url,omitempty"`
}

// RedisConfig holds configuration for the state cache. An empty Addr
// disables caching.
type RedisConfig struct {
	Addr      string        `yaml:"addr,omitempty"`
	Password  string        `yaml:"password,omitempty"`
	DB        int           `yaml:"db,omitempty"`
	KeyPrefix string        `yaml:"key_prefix,omitempty"`
	StateTTL  time.Duration `yaml:"state_ttl,omitempty"`
}

// KafkaConfig holds configuration for revision events. No brokers disables
// publishing.
type KafkaConfig struct {
	Brokers  []string `yaml:"brokers,omitempty"`
	Topic    string   `yaml:"topic,omitempty"`
	ClientID string   `yaml:"client_id,omitempty"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// MutationConfig tunes the mutation coordinator.
type MutationConfig struct {
	MaxAttempts int `yaml:"max_attempts,omitempty"`
}

// SearchConfig tunes indexing and search.
type SearchConfig struct {
	DefaultLimit      int     `yaml:"default_limit,omitempty"`
	Concurrency       int     `yaml:"concurrency,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

// MetricsConfig holds configuration for exporting metrics. An empty
// PushgatewayURL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url,omitempty"`
	Job            string `yaml:"job,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		SQLite: SQLiteConfig{
			Path: DefaultDatabaseFile,
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "biblio_entities",
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Redis: RedisConfig{
			KeyPrefix: "biblio:",
			StateTTL:  10 * time.Minute,
		},
		Kafka: KafkaConfig{
			Topic:    "biblio.revisions",
			ClientID: "biblio-core",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Mutation: MutationConfig{
			MaxAttempts: 3,
		},
		Search: SearchConfig{
			DefaultLimit: 10,
			Concurrency:  4,
		},
		Metrics: MetricsConfig{
			Job: "biblio",
		},
	}
}

// Load loads configuration from the .biblio directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'biblio init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	if cfg.SQLite.Path != ":memory:" && !filepath.IsAbs(cfg.SQLite.Path) {
		cfg.SQLite.Path = filepath.Join(ConfigDir(basePath), cfg.SQLite.Path)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Embedder.APIKey == "" {
		c.Embedder.APIKey = key
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" && c.Qdrant.APIKey == "" {
		c.Qdrant.APIKey = key
	}
	if level := os.Getenv("BIBLIO_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if addr := os.Getenv("BIBLIO_REDIS_ADDR"); addr != "" {
		c.Redis.Addr = addr
	}
	if brokers := os.Getenv("BIBLIO_KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
	if url := os.Getenv("BIBLIO_PUSHGATEWAY_URL"); url != "" {
		c.Metrics.PushgatewayURL = url
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ConfigDir returns the path to the .biblio config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}
