package search

import (
	"context"
	"log/slog"
	"maps"
	"sort"
	"strings"

	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/graph"
	"github.com/poiesic/mediakg/ontology"
	"github.com/poiesic/mediakg/prompt"
	"github.com/poiesic/mediakg/storage"
)

// DefaultMinSimilarity is the cosine similarity a feature must reach to
// count as a semantic match.
const DefaultMinSimilarity float32 = 0.60

// Hit is one search result.
type Hit struct {
	EntityID   string
	Class      ontology.Class
	Score      float32
	Similarity float32
	Caption    string
	FileName   string
}

// Searcher provides hybrid semantic and kind search over graph entities.
type Searcher struct {
	graph         *graph.Graph
	features      storage.FeatureRepository
	embedder      ai.Embedder
	extractor     ai.KeywordExtractor
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity sets the semantic match threshold.
// Default is DefaultMinSimilarity.
func WithMinSimilarity(min float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = min
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	g *graph.Graph,
	features storage.FeatureRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if g == nil {
		return nil, ErrGraphRequired
	}
	if features == nil {
		return nil, ErrFeatureRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		graph:         g,
		features:      features,
		embedder:      provider.Embedder(),
		extractor:     provider.KeywordExtractor(),
		minSimilarity: DefaultMinSimilarity,
		logger:        slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Find searches for entities matching the query.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) Find(ctx context.Context, query string, maxHits int) ([]*Hit, error) {
	return s.FindWithMonitor(ctx, query, maxHits, nil)
}

// FindWithMonitor searches for entities matching the query with monitoring.
// The monitor receives callbacks at each stage of the search process.
// Returns up to maxHits results, ranked by relevance score.
func (s *Searcher) FindWithMonitor(ctx context.Context, query string, maxHits int, monitor SearchMonitor) ([]*Hit, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query = prompt.Normalize(query)
	if query == "" {
		return nil, prompt.ErrEmptyPrompt
	}
	if maxHits <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	monitor.Start(query)

	// 1. Perform semantic search
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := s.features.FindSimilar(ctx, embedding, s.minSimilarity, maxHits)
	if err != nil {
		s.logger.Error("error querying for similar features", "err", err)
		return nil, err
	}
	monitor.AfterSemanticSearch(matches)

	// An entity reachable through several features keeps its best score.
	semanticScores := make(map[string]float32)
	for _, match := range matches {
		for _, id := range s.graph.SubjectsWithFeature(match.Feature.ID) {
			if isPrompt(id) {
				continue
			}
			if score, ok := semanticScores[id]; !ok || match.Score > score {
				semanticScores[id] = match.Score
			}
		}
	}

	// 2. Extract the media kind from the query
	kindSet := make(map[string]bool)
	keywords, err := s.extractor.ExtractKeywords(ctx, query)
	if err != nil {
		// Kind matching is a refinement; semantic hits still stand.
		s.logger.Warn("error extracting keywords from query", "err", err)
	} else {
		monitor.AfterKeywordExtraction(keywords)
		if class, ok := ontology.ClassForKind(core.ParseKind(keywords.Type())); ok {
			for _, id := range s.graph.EntitiesOfClass(class) {
				if !isPrompt(id) {
					kindSet[id] = true
				}
			}
			monitor.AfterKindSearch(class, maps.Keys(kindSet))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 3. Score candidates
	hits := make([]*Hit, 0, len(semanticScores))
	seen := make(map[string]bool, len(semanticScores)+len(kindSet))
	for id, similarity := range semanticScores {
		seen[id] = true
		hit := s.describe(id)
		hit.Similarity = similarity
		if kindSet[id] {
			// In both: boost by 1.5x, weighted by similarity score
			hit.Score = 1.5 * similarity
			monitor.SemanticAndKindHit(hit)
		} else {
			hit.Score = similarity
			monitor.SemanticHit(hit)
		}
		if containsAllQueryWords(query, hit.Caption, hit.FileName) {
			hit.Score += 0.3
		}
		hits = append(hits, hit)
	}

	// Entities of the right kind without a semantic match count only when
	// their caption or file name mentions every query word.
	for id := range kindSet {
		if seen[id] {
			continue
		}
		hit := s.describe(id)
		if !containsAllQueryWords(query, hit.Caption, hit.FileName) {
			continue
		}
		hit.Score = 1.2
		monitor.KindHit(hit)
		hits = append(hits, hit)
	}

	// Sort by score descending, then id for stable output
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].EntityID < hits[j].EntityID
	})
	if len(hits) > maxHits {
		hits = hits[:maxHits]
	}
	monitor.Finish(hits)

	return hits, nil
}

func (s *Searcher) describe(id string) *Hit {
	hit := &Hit{EntityID: id}
	hit.Class, _ = s.graph.ClassOf(id)
	hit.Caption, _ = s.graph.Value(id, core.KeyCaption)
	hit.FileName, _ = s.graph.Value(id, core.KeyFileName)
	return hit
}

func isPrompt(id string) bool {
	return strings.HasPrefix(id, core.PromptIDPrefix+"_")
}
