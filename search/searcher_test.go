package search

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"slices"
	"testing"

	"github.com/poiesic/mediakg/ai"
	"github.com/poiesic/mediakg/ai/mock"
	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/graph"
	"github.com/poiesic/mediakg/ontology"
	"github.com/poiesic/mediakg/prompt"
	"github.com/poiesic/mediakg/storage"
	"github.com/poiesic/mediakg/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	graph    *graph.Graph
	repos    *badger.Repositories
	provider *mock.MockProvider
}

// newFixture embeds every query as the unit vector along the first axis.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	g, err := graph.New()
	require.NoError(t, err)
	g.DeclareOntology()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { repos.Close() })

	provider := mock.NewMockProvider()
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	return &fixture{graph: g, repos: repos, provider: provider}
}

func (f *fixture) add(t *testing.T, id string, kind core.Kind, md core.Metadata, vector []float32) {
	t.Helper()
	if md == nil {
		md = core.Metadata{}
	}
	if vector != nil {
		added, err := f.repos.Features.AddFeatures(context.Background(), &core.Feature{Source: id, Vector: vector})
		require.NoError(t, err)
		md[core.KeyFeatureID] = added[0].ID
	}
	require.NoError(t, f.graph.Add(id, kind, md))
}

func (f *fixture) searcher(t *testing.T, opts ...Option) *Searcher {
	t.Helper()
	s, err := NewSearcher(f.graph, f.repos.Features, f.provider, opts...)
	require.NoError(t, err)
	return s
}

func ids(hits []*Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.EntityID
	}
	return out
}

func TestNewSearcher(t *testing.T) {
	f := newFixture(t)

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSearcher(f.graph, f.repos.Features, f.provider)
		require.NoError(t, err)
		assert.Equal(t, DefaultMinSimilarity, s.minSimilarity)
	})

	t.Run("with options", func(t *testing.T) {
		s, err := NewSearcher(f.graph, f.repos.Features, f.provider, WithLogger(slog.Default()), WithMinSimilarity(0.2))
		require.NoError(t, err)
		assert.Equal(t, float32(0.2), s.minSimilarity)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		s, err := NewSearcher(f.graph, f.repos.Features, f.provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, s.logger)
	})

	t.Run("nil graph", func(t *testing.T) {
		_, err := NewSearcher(nil, f.repos.Features, f.provider)
		assert.Equal(t, ErrGraphRequired, err)
	})

	t.Run("nil feature repository", func(t *testing.T) {
		_, err := NewSearcher(f.graph, nil, f.provider)
		assert.Equal(t, ErrFeatureRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(f.graph, f.repos.Features, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestFind_EmptyGraph(t *testing.T) {
	f := newFixture(t)
	hits, err := f.searcher(t).Find(context.Background(), "photo of a dog", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestFind_InvalidQuery(t *testing.T) {
	f := newFixture(t)
	s := f.searcher(t)

	_, err := s.Find(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, prompt.ErrEmptyPrompt)

	_, err = s.Find(context.Background(), "rain", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFind_SemanticOnly(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a1", core.KindAudio, nil, []float32{1, 0})
	f.add(t, "a2", core.KindAudio, nil, []float32{0.8, 0.6})
	f.add(t, "a3", core.KindAudio, nil, []float32{0, 1})

	hits, err := f.searcher(t).Find(context.Background(), "rain sounds", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"a1", "a2"}, ids(hits))
	assert.InDelta(t, 1.0, hits[0].Score, 0.0001)
	assert.InDelta(t, 0.8, hits[1].Similarity, 0.0001)
	assert.Equal(t, ontology.ClassAudio, hits[0].Class)
}

func TestFind_HybridAndVerbatim(t *testing.T) {
	f := newFixture(t)
	f.add(t, "i1", core.KindImage, core.Metadata{core.KeyCaption: "rain on glass"}, []float32{1, 0})
	f.add(t, "i2", core.KindImage, core.Metadata{core.KeyCaption: "sunny beach"}, []float32{0.8, 0.6})
	f.add(t, "v1", core.KindVideo, core.Metadata{core.KeyCaption: "rain storm"}, []float32{1, 0})

	hits, err := f.searcher(t).Find(context.Background(), "photo of rain", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"i1", "v1", "i2"}, ids(hits))

	// kind and semantic, plus verbatim
	assert.InDelta(t, 1.8, hits[0].Score, 0.0001)
	assert.Equal(t, "rain on glass", hits[0].Caption)
	// semantic plus verbatim
	assert.InDelta(t, 1.3, hits[1].Score, 0.0001)
	// kind and semantic only
	assert.InDelta(t, 1.2, hits[2].Score, 0.0001)
}

func TestFind_KindOnlyNeedsVerbatimMatch(t *testing.T) {
	f := newFixture(t)
	f.add(t, "i1", core.KindImage, core.Metadata{core.KeyFileName: "red_car.png"}, nil)
	f.add(t, "i2", core.KindImage, core.Metadata{core.KeyFileName: "blue_bike.png"}, nil)
	f.add(t, "t1", core.KindText, core.Metadata{core.KeyFileName: "red_car.txt"}, nil)

	hits, err := f.searcher(t).Find(context.Background(), "picture of a red car", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"i1"}, ids(hits))
	assert.InDelta(t, 1.2, hits[0].Score, 0.0001)
	assert.Zero(t, hits[0].Similarity)
}

func TestFind_SkipsPrompts(t *testing.T) {
	f := newFixture(t)
	f.add(t, "prompt_1", core.KindText, core.Metadata{core.KeyCaption: "rain"}, []float32{1, 0})
	f.add(t, "t1", core.KindText, core.Metadata{core.KeyCaption: "rain"}, []float32{0.6, 0.8})

	hits, err := f.searcher(t, WithMinSimilarity(0.5)).Find(context.Background(), "rain", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, ids(hits))
}

func TestFind_WithMaxHits(t *testing.T) {
	f := newFixture(t)
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		f.add(t, id, core.KindAudio, nil, []float32{1, 0})
	}

	hits, err := f.searcher(t).Find(context.Background(), "birdsong", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestFind_ExtractorFailureKeepsSemanticHits(t *testing.T) {
	f := newFixture(t)
	f.add(t, "i1", core.KindImage, nil, []float32{1, 0})
	f.provider.GetMockExtractor().ExtractKeywordsFunc = func(ctx context.Context, text string) (ai.Keywords, error) {
		return nil, errors.New("extractor down")
	}

	hits, err := f.searcher(t).Find(context.Background(), "photo of a lake", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"i1"}, ids(hits))
	assert.InDelta(t, 1.0, hits[0].Score, 0.0001)
}

func TestFind_EmbedderFailure(t *testing.T) {
	f := newFixture(t)
	embedErr := errors.New("embedder down")
	f.provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, embedErr
	}

	_, err := f.searcher(t).Find(context.Background(), "anything", 10)
	assert.ErrorIs(t, err, embedErr)
}

func TestFindWithMonitor(t *testing.T) {
	f := newFixture(t)
	f.add(t, "i1", core.KindImage, core.Metadata{core.KeyCaption: "a lake"}, []float32{1, 0})
	f.add(t, "a1", core.KindAudio, nil, []float32{1, 0})
	f.add(t, "i2", core.KindImage, core.Metadata{core.KeyCaption: "lake at dawn"}, nil)

	monitor := &testMonitor{}
	hits, err := f.searcher(t).FindWithMonitor(context.Background(), "photo of a  lake", 10, monitor)
	require.NoError(t, err)

	assert.Equal(t, "photo of a lake", monitor.query)
	assert.Len(t, monitor.matches, 1)
	assert.Equal(t, "image", monitor.keywords.Type())
	assert.Equal(t, ontology.ClassImage, monitor.class)
	assert.Equal(t, []string{"i1", "i2"}, monitor.kindIDs)
	assert.Equal(t, []string{"i1"}, monitor.both)
	assert.Equal(t, []string{"a1"}, monitor.semantic)
	assert.Equal(t, []string{"i2"}, monitor.kindOnly)
	assert.Equal(t, ids(hits), monitor.finished)
}

// testMonitor is a simple test implementation of SearchMonitor
type testMonitor struct {
	query    string
	matches  []*core.FeatureMatch
	keywords ai.Keywords
	class    ontology.Class
	kindIDs  []string
	both     []string
	semantic []string
	kindOnly []string
	finished []string
}

func (m *testMonitor) Start(query string) { m.query = query }

func (m *testMonitor) AfterSemanticSearch(matches []*core.FeatureMatch) { m.matches = matches }

func (m *testMonitor) AfterKeywordExtraction(keywords ai.Keywords) { m.keywords = keywords }

func (m *testMonitor) AfterKindSearch(class ontology.Class, entityIDs iter.Seq[string]) {
	m.class = class
	m.kindIDs = slices.Sorted(entityIDs)
}

func (m *testMonitor) SemanticAndKindHit(hit *Hit) { m.both = append(m.both, hit.EntityID) }

func (m *testMonitor) SemanticHit(hit *Hit) { m.semantic = append(m.semantic, hit.EntityID) }

func (m *testMonitor) KindHit(hit *Hit) { m.kindOnly = append(m.kindOnly, hit.EntityID) }

func (m *testMonitor) Finish(hits []*Hit) { m.finished = ids(hits) }

func TestContainsAllQueryWords(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		documents []string
		expected  bool
	}{
		{"caption match", "red car", []string{"a red car parked"}, true},
		{"file name split", "red car", []string{"", "red_car.jpg"}, true},
		{"across documents", "red car", []string{"red", "car.png"}, true},
		{"missing word", "red truck", []string{"a red car"}, false},
		{"only stop words", "a photo of the", []string{"anything"}, false},
		{"case insensitive", "Lake DAWN", []string{"lake at dawn"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsAllQueryWords(tt.query, tt.documents...))
		})
	}
}
