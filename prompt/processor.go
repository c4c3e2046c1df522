// Package prompt turns free-text prompts into normalized text, keyword
// tags and an embedding.
package prompt

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/mediakg/ai"
)

// ErrEmptyPrompt is returned when a prompt is empty after normalization.
var ErrEmptyPrompt = errors.New("prompt is empty")

// Result is the outcome of processing one prompt. A collaborator that
// failed leaves its part empty and records the error.
type Result struct {
	Text       string
	Keywords   ai.Keywords
	Vector     []float32
	KeywordErr error
	EmbedErr   error
}

// Processor runs normalization, keyword extraction and embedding.
type Processor struct {
	extractor ai.KeywordExtractor
	embedder  ai.Embedder
	logger    *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// NewProcessor creates a Processor. Either collaborator may be nil, in
// which case that step is skipped.
func NewProcessor(extractor ai.KeywordExtractor, embedder ai.Embedder, opts ...Option) *Processor {
	p := &Processor{
		extractor: extractor,
		embedder:  embedder,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "prompt")
	return p
}

// Process normalizes text and runs both collaborators on the result.
// Only an empty prompt or a cancelled context fails the call.
func (p *Processor) Process(ctx context.Context, text string) (*Result, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return nil, ErrEmptyPrompt
	}
	p.logger.Info("processing prompt", "text", normalized)

	result := &Result{Text: normalized}

	if p.extractor != nil {
		keywords, err := p.extractor.ExtractKeywords(ctx, normalized)
		if err != nil {
			p.logger.Error("keyword extraction failed", "err", err)
			result.KeywordErr = err
		} else {
			result.Keywords = keywords
			p.logger.Debug("keywords extracted", "keywords", keywords.String())
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.embedder != nil {
		vector, err := p.embedder.EmbedText(ctx, normalized)
		if err != nil {
			p.logger.Error("embedding failed", "err", err)
			result.EmbedErr = err
		} else {
			result.Vector = vector
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
