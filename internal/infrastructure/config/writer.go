package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# Biblio-Core Configuration

sqlite:
  path: biblio.db

qdrant:
  host: localhost
  port: 6334
  collection: biblio_entities
  # api_key: your-api-key (or set QDRANT_API_KEY env var)

embedder:
  provider: openai
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY env var)
  # base_url: http://localhost:8080/v1

redis:
  # addr: localhost:6379 (or set BIBLIO_REDIS_ADDR env var)
  key_prefix: "biblio:"
  state_ttl: 10m

kafka:
  # brokers: [localhost:9092] (or set BIBLIO_KAFKA_BROKERS env var)
  topic: biblio.revisions
  client_id: biblio-core

log:
  level: info
  format: text

mutation:
  max_attempts: 3

search:
  default_limit: 10
  concurrency: 4
  # requests_per_second: 5

metrics:
  # pushgateway_url: http://localhost:9091 (or set BIBLIO_PUSHGATEWAY_URL env var)
  job: biblio
`

// WriteDefault creates the .biblio directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Exists checks if a biblio config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
