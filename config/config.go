// Package config loads the YAML configuration file used by the mediakg
// command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/graph"
	"github.com/poiesic/mediakg/ontology"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the complete file configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Store    Store  `yaml:"store"`
	Graph    Graph  `yaml:"graph"`
	AI       AI     `yaml:"ai"`
	Ingest   Ingest `yaml:"ingest"`
	Search   Search `yaml:"search"`
}

// Store locates the Badger database.
type Store struct {
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// Graph configures the knowledge graph and its serialized output.
type Graph struct {
	Namespace  string `yaml:"namespace"`
	Prefix     string `yaml:"prefix"`
	Snapshot   string `yaml:"snapshot"`
	Output     string `yaml:"output"`
	Format     string `yaml:"format"`
	Permissive bool   `yaml:"permissive"`
}

// AI configures the model services. Host, when set, applies to every
// service without its own host.
type AI struct {
	Enabled        bool    `yaml:"enabled"`
	Host           string  `yaml:"host"`
	EmbeddingHost  string  `yaml:"embedding_host"`
	ExtractorHost  string  `yaml:"extractor_host"`
	VisionHost     string  `yaml:"vision_host"`
	Token          string  `yaml:"token"`
	EmbeddingModel string  `yaml:"embedding_model"`
	ExtractorModel string  `yaml:"extractor_model"`
	VisionModel    string  `yaml:"vision_model"`
	MinConfidence  float64 `yaml:"min_confidence"`
}

// Ingest configures the ingestion pipeline.
type Ingest struct {
	Workers     int   `yaml:"workers"`
	Checkpoints bool  `yaml:"checkpoints"`
	Retry       Retry `yaml:"retry"`
}

// Retry configures collaborator retries.
type Retry struct {
	Attempts int           `yaml:"attempts"`
	Base     time.Duration `yaml:"base"`
	Max      time.Duration `yaml:"max"`
}

// Search configures similarity search.
type Search struct {
	MinSimilarity float32 `yaml:"min_similarity"`
	MaxHits       int     `yaml:"max_hits"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	defaults := ai.DefaultConfig()
	return &Config{
		LogLevel: "info",
		Store:    Store{Path: DefaultStorePath()},
		Graph: Graph{
			Namespace: ontology.DefaultNamespace,
			Prefix:    ontology.DefaultPrefix,
			Snapshot:  "default",
			Output:    "knowledge_graph.ttl",
			Format:    string(graph.FormatTurtle),
		},
		AI: AI{
			Enabled:        true,
			Host:           defaults.EmbeddingHost,
			Token:          defaults.Token,
			EmbeddingModel: defaults.EmbeddingModel,
			ExtractorModel: defaults.ExtractorModel,
			MinConfidence:  defaults.MinConfidence,
		},
		Ingest: Ingest{
			Workers:     4,
			Checkpoints: true,
			Retry:       Retry{Attempts: 3, Base: 200 * time.Millisecond, Max: 5 * time.Second},
		},
		Search: Search{MinSimilarity: 0.6, MaxHits: 10},
	}
}

// DefaultStorePath is ~/.mediakg/db, or .mediakg/db when the home
// directory is unknown.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".mediakg", "db")
	}
	return filepath.Join(home, ".mediakg", "db")
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Marshal returns the YAML form of c.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("%w: store.path is required unless store.in_memory is set", ErrInvalid)
	}
	if _, err := ontology.NewNamespace(c.Graph.Namespace); err != nil {
		return fmt.Errorf("%w: graph.namespace: %v", ErrInvalid, err)
	}
	if _, err := graph.ParseFormat(c.Graph.Format); err != nil {
		return fmt.Errorf("%w: graph.format: %v", ErrInvalid, err)
	}
	if c.Graph.Snapshot == "" {
		return fmt.Errorf("%w: graph.snapshot is required", ErrInvalid)
	}
	if c.Ingest.Workers < 1 {
		return fmt.Errorf("%w: ingest.workers must be positive", ErrInvalid)
	}
	if c.Ingest.Retry.Attempts < 1 {
		return fmt.Errorf("%w: ingest.retry.attempts must be positive", ErrInvalid)
	}
	if c.Search.MaxHits < 1 {
		return fmt.Errorf("%w: search.max_hits must be positive", ErrInvalid)
	}
	if c.Search.MinSimilarity < -1 || c.Search.MinSimilarity > 1 {
		return fmt.Errorf("%w: search.min_similarity must be between -1 and 1", ErrInvalid)
	}
	if c.AI.Enabled {
		if err := c.AIConfig().Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

// AIConfig converts the ai section into an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	a := c.AI
	opts := []ai.ConfigOption{
		ai.WithToken(a.Token),
		ai.WithVisionModel(a.VisionModel),
		ai.WithMinConfidence(a.MinConfidence),
	}
	if a.Host != "" {
		opts = append(opts, ai.WithHost(a.Host))
	}
	for _, o := range []struct {
		value string
		opt   func(string) ai.ConfigOption
	}{
		{a.EmbeddingHost, ai.WithEmbeddingHost},
		{a.ExtractorHost, ai.WithExtractorHost},
		{a.VisionHost, ai.WithVisionHost},
		{a.EmbeddingModel, ai.WithEmbeddingModel},
		{a.ExtractorModel, ai.WithExtractorModel},
	} {
		if o.value != "" {
			opts = append(opts, o.opt(o.value))
		}
	}
	return ai.NewConfig(opts...)
}
