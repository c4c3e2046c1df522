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

package reembed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/graph"
	"github.com/poiesic/mediakg/ingestion"
	"github.com/poiesic/mediakg/storage"
)

var (
	ErrGraphRequired    = errors.New("graph is required")
	ErrFeaturesRequired = errors.New("feature repository is required")
	ErrEmbedderRequired = errors.New("embedder is required")
	// ErrEmbeddingMismatch is returned when the embedder answers a batch
	// with the wrong number of vectors.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")
)

// Config holds configuration for the re-embedding run.
type Config struct {
	// BatchSize is the number of captions sent to the embedder at once.
	BatchSize int

	// ReportInterval is how often to report progress, in features.
	ReportInterval int

	// Backoff governs retries of failed embedding calls.
	Backoff ingestion.Backoff
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      32,
		ReportInterval: 100,
		Backoff:        ingestion.DefaultBackoff,
	}
}

// Reembedder re-embeds the captions behind every feature referenced by a
// graph.
type Reembedder struct {
	graph    *graph.Graph
	features storage.FeatureRepository
	embedder ai.Embedder
	model    string
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewReembedder creates a reembedder. model is recorded on every
// rewritten feature. progress may be nil.
func NewReembedder(g *graph.Graph, features storage.FeatureRepository, embedder ai.Embedder, model string, config *Config, progress io.Writer) (*Reembedder, error) {
	switch {
	case g == nil:
		return nil, ErrGraphRequired
	case features == nil:
		return nil, ErrFeaturesRequired
	case embedder == nil:
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		graph:    g,
		features: features,
		embedder: embedder,
		model:    model,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "reembed"),
	}, nil
}

// Run re-embeds every captioned feature and returns how many were
// rewritten. Features are written batch by batch, so a failed run leaves
// earlier batches updated.
func (r *Reembedder) Run(ctx context.Context) (int, error) {
	targets := collectTargets(r.graph)
	if len(targets) == 0 {
		fmt.Fprintf(r.progress, "No captioned features found in graph\n")
		return 0, nil
	}

	fmt.Fprintf(r.progress, "Re-embedding %d features (batch size: %d)\n", len(targets), r.config.BatchSize)
	tracker := ingestion.NewCountTracker(r.progress, "Re-embedded", "features", len(targets), r.config.ReportInterval)

	done := 0
	for batch := range slices.Chunk(targets, r.config.BatchSize) {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := r.process(ctx, batch); err != nil {
			return done, fmt.Errorf("failed to process batch: %w", err)
		}
		done += len(batch)
		tracker.Add(len(batch))
	}
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Re-embedding complete. Processed %d features in %v\n", done, elapsed.Round(time.Millisecond))
	r.logger.Info("features re-embedded", "count", done, "model", r.model)
	return done, nil
}

func (r *Reembedder) process(ctx context.Context, batch []target) error {
	texts := make([]string, len(batch))
	for i, t := range batch {
		texts[i] = t.caption
	}

	var embeddings [][]float32
	err := r.config.Backoff.Do(ctx, r.logger, func(ctx context.Context) error {
		var err error
		embeddings, err = r.embedder.EmbedTexts(ctx, texts)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(batch), len(embeddings))
	}

	features := make([]*core.Feature, len(batch))
	for i, t := range batch {
		if len(embeddings[i]) == 0 {
			return fmt.Errorf("empty embedding for %s: %w", t.entityID, storage.ErrInvalidQuery)
		}
		ai.Normalize(embeddings[i])
		features[i] = &core.Feature{
			ID:     t.featureID,
			Source: t.entityID,
			Model:  r.model,
			Vector: embeddings[i],
		}
	}

	if _, err := r.features.AddFeatures(ctx, features...); err != nil {
		return fmt.Errorf("failed to update features: %w", err)
	}
	return nil
}
