// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mediakg ties the knowledge-graph store, its durable repositories
// and the model services together.
//
// A KnowledgeBase owns one graph, restored from a named snapshot when one
// exists, and hands out ingestion pipelines and searchers bound to it.
package mediakg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/ai/openai"
	"github.com/poiesic/mediakg/graph"
	"github.com/poiesic/mediakg/ingestion"
	"github.com/poiesic/mediakg/reembed"
	"github.com/poiesic/mediakg/search"
	"github.com/poiesic/mediakg/storage"
	"github.com/poiesic/mediakg/storage/badger"
)

// DefaultSnapshot is the snapshot name used when none is configured.
const DefaultSnapshot = "default"

type KnowledgeBase struct {
	repos    *badger.Repositories
	graph    *graph.Graph
	provider ai.AIProvider
	model    string
	snapshot string
	logger   *slog.Logger
}

// Option configures a KnowledgeBase.
type Option func(*options)

type options struct {
	aiConfig  *ai.Config
	provider  ai.AIProvider
	noAI      bool
	inMemory  bool
	snapshot  string
	graphOpts []graph.Option
	logger    *slog.Logger
}

// WithAIConfig sets the configuration for the OpenAI-compatible provider.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = cfg
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The knowledge base takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithoutAI disables model services. Ingestion still classifies and
// probes files; search is unavailable.
func WithoutAI() Option {
	return func(o *options) {
		o.noAI = true
	}
}

// WithInMemory keeps the repositories in memory. The path is ignored.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithSnapshot sets the name the graph is restored from and saved to.
func WithSnapshot(name string) Option {
	return func(o *options) {
		o.snapshot = name
	}
}

// WithGraphOptions passes options to the graph, such as its namespace.
// They apply only when no snapshot exists yet.
func WithGraphOptions(opts ...graph.Option) Option {
	return func(o *options) {
		o.graphOpts = append(o.graphOpts, opts...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open opens the repositories at path, restores the graph snapshot or
// creates a graph with the ontology declared, and builds the model
// provider.
func Open(ctx context.Context, path string, opts ...Option) (*KnowledgeBase, error) {
	// Apply options
	o := &options{
		aiConfig: ai.DefaultConfig(), // Default if not provided
		snapshot: DefaultSnapshot,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger.With("component", "mediakg")

	repos, err := badger.OpenRepositories(path, o.inMemory)
	if err != nil {
		return nil, err
	}

	g, err := restoreGraph(ctx, repos.Graphs, o.snapshot, append([]graph.Option{graph.WithLogger(o.logger)}, o.graphOpts...))
	if err != nil {
		repos.Close()
		return nil, err
	}

	provider, model := o.provider, ""
	if provider == nil && !o.noAI {
		provider, err = openai.NewProvider(o.aiConfig)
		if err != nil {
			repos.Close()
			return nil, err
		}
		model = o.aiConfig.EmbeddingModel
	}

	kb := &KnowledgeBase{
		repos:    repos,
		graph:    g,
		provider: provider,
		model:    model,
		snapshot: o.snapshot,
		logger:   logger,
	}
	logger.Info("knowledge base opened", "path", path, "snapshot", o.snapshot, "triples", g.Len(), "ai", provider != nil)
	return kb, nil
}

func restoreGraph(ctx context.Context, graphs storage.GraphRepository, name string, opts []graph.Option) (*graph.Graph, error) {
	info, triples, err := graphs.LoadGraph(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		g, err := graph.New(opts...)
		if err != nil {
			return nil, err
		}
		g.DeclareOntology()
		return g, nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore snapshot %q: %w", name, err)
	}
	return graph.FromTriples(triples, append(opts, graph.WithNamespace(info.Namespace))...)
}

// Close closes the provider and the repositories. The graph is not saved.
func (kb *KnowledgeBase) Close() error {
	// Close AI provider first
	if kb.provider != nil {
		if err := kb.provider.Close(); err != nil {
			kb.logger.Error("error closing AI provider", "err", err)
		}
	}

	if err := kb.repos.Close(); err != nil {
		kb.logger.Error("error closing repositories", "err", err)
		return err
	}
	return nil
}

// Graph returns the knowledge graph.
func (kb *KnowledgeBase) Graph() *graph.Graph {
	return kb.graph
}

func (kb *KnowledgeBase) Features() storage.FeatureRepository {
	return kb.repos.Features
}

func (kb *KnowledgeBase) Checkpoints() storage.CheckpointRepository {
	return kb.repos.Checkpoints
}

func (kb *KnowledgeBase) Snapshots() storage.GraphRepository {
	return kb.repos.Graphs
}

// Provider returns the model provider, or nil when AI is disabled.
func (kb *KnowledgeBase) Provider() ai.AIProvider {
	return kb.provider
}

// NewIngestionPipeline returns a pipeline bound to the graph with
// checkpoints, feature storage and the provider wired in. opts are
// applied after those.
func (kb *KnowledgeBase) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	base := []ingestion.Option{
		ingestion.WithLogger(kb.logger),
		ingestion.WithCheckpoints(kb.repos.Checkpoints),
		ingestion.WithFeatures(kb.repos.Features),
		ingestion.WithModelName(kb.model),
	}
	if kb.provider != nil {
		base = append(base, ingestion.WithProvider(kb.provider))
	}
	return ingestion.NewPipeline(kb.graph, append(base, opts...)...)
}

// NewSearcher returns a searcher over the graph. It fails with
// search.ErrAIProviderRequired when AI is disabled.
func (kb *KnowledgeBase) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	if kb.provider == nil {
		return nil, search.ErrAIProviderRequired
	}
	return search.NewSearcher(kb.graph, kb.repos.Features, kb.provider,
		append([]search.Option{search.WithLogger(kb.logger)}, opts...)...)
}

// NewReembedder returns a reembedder that rewrites the graph's features
// with the provider's embedder. It fails with search.ErrAIProviderRequired
// when AI is disabled.
func (kb *KnowledgeBase) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if kb.provider == nil {
		return nil, search.ErrAIProviderRequired
	}
	return reembed.NewReembedder(kb.graph, kb.repos.Features, kb.provider.Embedder(), kb.model, config, progress)
}

// Save stores the graph under the snapshot name.
func (kb *KnowledgeBase) Save(ctx context.Context) (*storage.GraphInfo, error) {
	info, err := kb.repos.Graphs.SaveGraph(ctx, kb.snapshot, kb.graph.Namespace().IRI(), kb.graph.Triples())
	if err != nil {
		return nil, err
	}
	kb.logger.Info("snapshot saved", "snapshot", info.Name, "triples", info.Triples)
	return info, nil
}

// Export serializes the graph to path. An empty format is chosen from
// the file extension.
func (kb *KnowledgeBase) Export(path string, format graph.Format) error {
	return kb.graph.Serialize(path, format)
}
