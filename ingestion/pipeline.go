package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/classify"
	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/graph"
	"github.com/poiesic/mediakg/mapper"
	"github.com/poiesic/mediakg/ontology"
	"github.com/poiesic/mediakg/probe"
	"github.com/poiesic/mediakg/prompt"
	"github.com/poiesic/mediakg/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline ingests files and prompts into a graph. Directory ingestion
// runs files concurrently on a worker pool.
type Pipeline struct {
	graph         *graph.Graph
	classifier    *classify.Classifier
	prober        *probe.Prober
	checkpoints   storage.CheckpointRepository
	features      storage.FeatureRepository
	provider      ai.AIProvider
	processors    []processor
	prompts       *prompt.Processor
	pool          *ants.Pool
	backoff       Backoff
	registerer    prometheus.Registerer
	metrics       *pipelineMetrics
	progress      io.Writer
	minConfidence float64
	model         string
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for directory ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithProvider enables the model-backed steps: caption embedding, video
// detection and prompt processing. Embedding requires WithFeatures.
func WithProvider(provider ai.AIProvider) Option {
	return func(p *Pipeline) error {
		p.provider = provider
		return nil
	}
}

// WithFeatures sets where embeddings are stored.
func WithFeatures(features storage.FeatureRepository) Option {
	return func(p *Pipeline) error {
		p.features = features
		return nil
	}
}

// WithCheckpoints enables skipping files unchanged since their last
// ingestion.
func WithCheckpoints(checkpoints storage.CheckpointRepository) Option {
	return func(p *Pipeline) error {
		p.checkpoints = checkpoints
		return nil
	}
}

// WithClassifier replaces the default classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(p *Pipeline) error {
		p.classifier = c
		return nil
	}
}

// WithProber replaces the default prober.
func WithProber(pr *probe.Prober) Option {
	return func(p *Pipeline) error {
		p.prober = pr
		return nil
	}
}

// WithBackoff sets the retry policy for collaborator calls.
func WithBackoff(b Backoff) Option {
	return func(p *Pipeline) error {
		if b.Attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.backoff = b
		return nil
	}
}

// WithMetrics registers pipeline metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *Pipeline) error {
		p.registerer = reg
		return nil
	}
}

// WithProgress reports directory progress to w.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithMinConfidence sets the detection confidence used for captions.
// Default is 0.5.
func WithMinConfidence(min float64) Option {
	return func(p *Pipeline) error {
		p.minConfidence = min
		return nil
	}
}

// WithModelName records the embedding model on stored features.
func WithModelName(model string) Option {
	return func(p *Pipeline) error {
		p.model = model
		return nil
	}
}

// NewPipeline creates a pipeline that adds entities to g.
func NewPipeline(g *graph.Graph, opts ...Option) (*Pipeline, error) {
	if g == nil {
		return nil, ErrGraphRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		graph:         g,
		pool:          pool,
		backoff:       DefaultBackoff,
		minConfidence: 0.5,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	base := p.logger
	p.logger = base.With("component", "ingestion")
	if p.classifier == nil {
		p.classifier = classify.New(classify.WithLogger(base))
	}
	if p.prober == nil {
		p.prober = probe.New(probe.WithLogger(base))
	}

	p.metrics, err = newMetrics(p.registerer)
	if err != nil {
		p.Release()
		return nil, err
	}

	if p.provider != nil {
		if p.features == nil {
			p.Release()
			return nil, ErrFeatureRepositoryRequired
		}
		if detector := p.provider.ObjectDetector(); detector != nil {
			p.processors = append(p.processors, newDetectionProcessor(detector, p.minConfidence, p.backoff, p.logger))
		}
		p.processors = append(p.processors,
			newEmbeddingProcessor(p.provider.Embedder(), p.features, p.model, p.backoff, p.metrics, p.logger))
		p.prompts = prompt.NewProcessor(p.provider.KeywordExtractor(), p.provider.Embedder(), prompt.WithLogger(base))
	} else {
		p.prompts = prompt.NewProcessor(nil, nil, prompt.WithLogger(base))
	}

	if !g.Declared() {
		p.logger.Warn("graph ontology not declared")
	}
	return p, nil
}

// Result describes the ingestion of one file.
type Result struct {
	Path       string
	EntityID   string
	Kind       core.Kind
	Confidence float64
	Triples    int
	Skipped    bool
	// Warnings are non-fatal problems, such as an unknown kind or a
	// failed enrichment step.
	Warnings []error
}

// IngestFile classifies, probes and enriches the file at path and adds
// it to the graph. A file with a checkpoint matching its size and
// modification time, whose entity is still in the graph, is skipped.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Result, error) {
	began := time.Now()
	p.metrics.start()

	res, err := p.ingestFile(ctx, path)

	outcome, triples, kind := outcomeFailed, 0, core.Kind("")
	if res != nil {
		kind, triples = res.Kind, res.Triples
	}
	switch {
	case err != nil:
		p.logger.Warn("file ingestion failed", "path", path, "err", err)
	case res.Skipped:
		outcome = outcomeSkipped
	default:
		outcome = outcomeIngested
	}
	p.metrics.finish(kind, outcome, triples, began)
	return res, err
}

func (p *Pipeline) ingestFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	var previous *core.Checkpoint
	if p.checkpoints != nil {
		previous, err = p.checkpoints.LoadCheckpoint(ctx, abs)
		if err != nil {
			return nil, err
		}
		if previous != nil && previous.Unchanged(info.Size(), info.ModTime()) {
			if class, ok := p.graph.ClassOf(previous.EntityID); ok {
				p.logger.Debug("file unchanged, skipping", "path", abs, "entity", previous.EntityID)
				return &Result{Path: abs, EntityID: previous.EntityID, Kind: ontology.KindForClass(class), Skipped: true}, nil
			}
		}
	}

	classification, err := p.classifier.Classify(abs)
	if err != nil {
		return nil, err
	}

	metadata, err := p.prober.Probe(abs, classification.Kind)
	if err != nil {
		return nil, err
	}

	entityID := core.NewEntityID(idPrefix(classification.Kind))
	if previous != nil && previous.EntityID != "" {
		entityID = previous.EntityID
	}

	res := &Result{
		Path:       abs,
		EntityID:   entityID,
		Kind:       classification.Kind,
		Confidence: classification.Confidence,
	}

	job := &fileJob{path: abs, entityID: entityID, kind: classification.Kind, metadata: metadata}
	for _, proc := range p.processors {
		if err := proc.process(ctx, job); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.logger.Error("processor failed", "processor", proc.name(), "path", abs, "err", err)
			p.metrics.collaboratorFailed(proc.name())
			res.Warnings = append(res.Warnings, fmt.Errorf("%s: %w", proc.name(), err))
		}
	}

	entry, err := mapper.Map(p.graph.Namespace(), entityID, job.kind, job.metadata)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		if _, err := p.graph.Replace(entry); err != nil {
			return nil, err
		}
	} else if err := p.graph.AddEntry(entry); err != nil {
		return nil, err
	}
	res.Triples = len(entry.Triples)
	res.Warnings = append(res.Warnings, entry.Warnings...)

	if p.checkpoints != nil {
		cp := &core.Checkpoint{Path: abs, Size: info.Size(), ModTime: info.ModTime(), EntityID: entityID}
		if err := p.checkpoints.SaveCheckpoint(ctx, cp); err != nil {
			p.logger.Warn("failed to save checkpoint", "path", abs, "err", err)
		}
	}

	p.logger.Info("file ingested", "path", abs, "entity", entityID, "kind", job.kind, "triples", res.Triples)
	return res, nil
}

// PromptResult describes the ingestion of one prompt.
type PromptResult struct {
	EntityID  string
	FeatureID string
	Triples   int
	Prompt    *prompt.Result
}

// IngestPrompt processes text and records it as a TextFile entity whose
// caption is the normalized prompt. When an embedding was produced it is
// stored and referenced through hasFeatureID.
func (p *Pipeline) IngestPrompt(ctx context.Context, text string) (*PromptResult, error) {
	began := time.Now()
	p.metrics.start()

	res, err := p.ingestPrompt(ctx, text)
	if err != nil {
		p.metrics.finish(core.KindText, outcomeFailed, 0, began)
		return nil, err
	}
	p.metrics.finish(core.KindText, outcomeIngested, res.Triples, began)
	return res, nil
}

func (p *Pipeline) ingestPrompt(ctx context.Context, text string) (*PromptResult, error) {
	processed, err := p.prompts.Process(ctx, text)
	if err != nil {
		return nil, err
	}

	entityID := core.NewEntityID(core.PromptIDPrefix)
	metadata := core.Metadata{core.KeyCaption: processed.Text}
	res := &PromptResult{EntityID: entityID, Prompt: processed}

	if len(processed.Vector) > 0 && p.features != nil {
		err := p.backoff.Do(ctx, p.logger, func(ctx context.Context) error {
			var err error
			res.FeatureID, err = storeFeature(ctx, p.features, entityID, p.model, processed.Vector)
			return err
		})
		if err != nil {
			p.logger.Error("failed to store prompt embedding", "err", err)
			p.metrics.collaboratorFailed("embedding")
		} else {
			p.metrics.featureStored()
			metadata[core.KeyFeatureID] = res.FeatureID
		}
	}

	entry, err := mapper.Map(p.graph.Namespace(), entityID, core.KindText, metadata)
	if err != nil {
		return nil, err
	}
	if err := p.graph.AddEntry(entry); err != nil {
		return nil, err
	}
	res.Triples = len(entry.Triples)
	return res, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

func idPrefix(kind core.Kind) string {
	switch kind {
	case core.KindImage:
		return "img"
	case core.KindVideo:
		return "vid"
	case core.KindAudio:
		return "aud"
	case core.KindText:
		return "txt"
	}
	return "m"
}
