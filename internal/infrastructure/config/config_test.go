package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "QDRANT_API_KEY", "BIBLIO_LOG_LEVEL", "BIBLIO_REDIS_ADDR", "BIBLIO_KAFKA_BROKERS", "BIBLIO_PUSHGATEWAY_URL"} {
		t.Setenv(key, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultDatabaseFile, cfg.SQLite.Path)
	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, "localhost", cfg.Qdrant.Host)
	assert.Equal(t, 6334, cfg.Qdrant.Port)
	assert.Equal(t, "biblio_entities", cfg.Qdrant.Collection)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.Mutation.MaxAttempts)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "biblio", cfg.Metrics.Job)
}

func TestConfigDir(t *testing.T) {
	result := ConfigDir("/home/user/project")
	assert.Equal(t, "/home/user/project/.biblio", result)
}

func TestConfigFilePath(t *testing.T) {
	result := ConfigFilePath("/home/user/project")
	assert.Equal(t, "/home/user/project/.biblio/config.yaml", result)
}

func TestLoad_DefaultFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))
	assert.True(t, Exists(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, DefaultConfigDir, DefaultDatabaseFile), cfg.SQLite.Path)
	assert.Equal(t, "biblio:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 10*time.Minute, cfg.Redis.StateTTL)
	assert.Equal(t, "biblio.revisions", cfg.Kafka.Topic)
	assert.Equal(t, 4, cfg.Search.Concurrency)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	content := `
sqlite:
  path: /var/lib/biblio/biblio.db
redis:
  addr: cache:6379
  state_ttl: 30s
kafka:
  brokers: [k1:9092, k2:9092]
mutation:
  max_attempts: 5
`
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/biblio/biblio.db", cfg.SQLite.Path)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.StateTTL)
	assert.Equal(t, "biblio:", cfg.Redis.KeyPrefix, "unset keys keep their default")
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 5, cfg.Mutation.MaxAttempts)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("QDRANT_API_KEY", "qd-test")
	t.Setenv("BIBLIO_LOG_LEVEL", "debug")
	t.Setenv("BIBLIO_REDIS_ADDR", "localhost:6380")
	t.Setenv("BIBLIO_KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("BIBLIO_PUSHGATEWAY_URL", "http://localhost:9091")

	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Embedder.APIKey)
	assert.Equal(t, "qd-test", cfg.Qdrant.APIKey)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://localhost:9091", cfg.Metrics.PushgatewayURL)
	assert.Equal(t, "biblio", cfg.Metrics.Job)
}

func TestLoad_FileKeyWinsOverEnvKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	dir := t.TempDir()
	require.NoError(t, Write(dir, &Config{Embedder: EmbedderConfig{APIKey: "sk-file"}}))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", cfg.Embedder.APIKey)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)

	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "biblio init")

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte("sqlite: [unclosed"), 0644))
	_, err = Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))
	err := WriteDefault(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}
