package ingestion

import (
	"context"
	"log/slog"

	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/storage"
)

// embeddingProcessor embeds a file's caption, stores the vector and
// records its feature id on the job.
type embeddingProcessor struct {
	embedder ai.Embedder
	features storage.FeatureRepository
	model    string
	backoff  Backoff
	metrics  *pipelineMetrics
	logger   *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

func newEmbeddingProcessor(embedder ai.Embedder, features storage.FeatureRepository, model string, backoff Backoff, metrics *pipelineMetrics, logger *slog.Logger) *embeddingProcessor {
	return &embeddingProcessor{
		embedder: embedder,
		features: features,
		model:    model,
		backoff:  backoff,
		metrics:  metrics,
		logger:   logger.With("processor", "embeddings"),
	}
}

func (ep *embeddingProcessor) name() string { return "embedding" }

func (ep *embeddingProcessor) process(ctx context.Context, job *fileJob) error {
	caption := job.caption()
	if caption == "" {
		return nil
	}
	if _, ok := job.metadata[core.KeyFeatureID]; ok {
		return nil
	}

	var vector []float32
	err := ep.backoff.Do(ctx, ep.logger, func(ctx context.Context) error {
		var err error
		vector, err = ep.embedder.EmbedText(ctx, caption)
		return err
	})
	if err != nil {
		return err
	}

	id, err := storeFeature(ctx, ep.features, job.entityID, ep.model, vector)
	if err != nil {
		return err
	}
	ep.metrics.featureStored()
	job.metadata[core.KeyFeatureID] = id
	return nil
}

// storeFeature saves vector for entityID and returns its feature id.
// An empty vector is a permanent failure.
func storeFeature(ctx context.Context, features storage.FeatureRepository, entityID, model string, vector []float32) (string, error) {
	if len(vector) == 0 {
		return "", Permanent(storage.ErrInvalidQuery)
	}
	added, err := features.AddFeatures(ctx, &core.Feature{
		Source: entityID,
		Model:  model,
		Vector: vector,
	})
	if err != nil {
		return "", err
	}
	return added[0].ID, nil
}
