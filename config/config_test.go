package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mediakg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://example.org/multimedia#", cfg.Graph.Namespace)
	assert.Equal(t, "turtle", cfg.Graph.Format)
	assert.True(t, cfg.AI.Enabled)
	assert.Equal(t, 3, cfg.Ingest.Retry.Attempts)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
store:
  in_memory: true
graph:
  namespace: http://example.com/media/
  format: nt
ai:
  host: http://models:8080
  vision_host: http://vision:9000
  vision_model: llava
  min_confidence: 0.7
ingest:
  workers: 8
  retry:
    attempts: 5
    base: 50ms
    max: 2s
search:
  max_hits: 25
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Store.InMemory)
	assert.Equal(t, "http://example.com/media/", cfg.Graph.Namespace)
	assert.Equal(t, "ex", cfg.Graph.Prefix, "unset keys keep defaults")
	assert.Equal(t, 8, cfg.Ingest.Workers)
	assert.Equal(t, 50*time.Millisecond, cfg.Ingest.Retry.Base)
	assert.Equal(t, 2*time.Second, cfg.Ingest.Retry.Max)
	assert.Equal(t, 25, cfg.Search.MaxHits)

	aiCfg := cfg.AIConfig()
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://models:8080/v1", aiCfg.EmbeddingHost)
	assert.Equal(t, "http://models:8080/v1", aiCfg.ExtractorHost)
	assert.Equal(t, "http://vision:9000/v1", aiCfg.VisionHost)
	assert.Equal(t, "llava", aiCfg.VisionModel)
	assert.Equal(t, 0.7, aiCfg.MinConfidence)
	assert.Equal(t, "embeddinggemma", aiCfg.EmbeddingModel)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeConfig(t, "log_level: [unclosed"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "log_level: loud"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"ai disabled skips ai checks", func(c *Config) {
			c.AI.Enabled = false
			c.AI.EmbeddingModel = ""
			c.AI.MinConfidence = 4
		}, ""},
		{"missing store path", func(c *Config) { c.Store.Path = "" }, "store.path"},
		{"bad namespace", func(c *Config) { c.Graph.Namespace = "example.org" }, "graph.namespace"},
		{"bad format", func(c *Config) { c.Graph.Format = "rdfxml" }, "graph.format"},
		{"empty snapshot", func(c *Config) { c.Graph.Snapshot = "" }, "graph.snapshot"},
		{"no workers", func(c *Config) { c.Ingest.Workers = 0 }, "ingest.workers"},
		{"no attempts", func(c *Config) { c.Ingest.Retry.Attempts = 0 }, "ingest.retry.attempts"},
		{"no hits", func(c *Config) { c.Search.MaxHits = 0 }, "search.max_hits"},
		{"similarity range", func(c *Config) { c.Search.MinSimilarity = 2 }, "search.min_similarity"},
		{"ai confidence", func(c *Config) { c.AI.MinConfidence = 1.5 }, "MinConfidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Ingest.Retry.Base = 75 * time.Millisecond

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "base: 75ms")

	loaded, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
