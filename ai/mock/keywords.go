package mock

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/poiesic/mediakg/ai"
)

// MockKeywordExtractor is a test double for ai.KeywordExtractor.
type MockKeywordExtractor struct {
	// ExtractKeywordsFunc is called by ExtractKeywords if set.
	ExtractKeywordsFunc func(ctx context.Context, text string) (ai.Keywords, error)

	callCount atomic.Int64
}

var _ ai.KeywordExtractor = (*MockKeywordExtractor)(nil)

// NewMockKeywordExtractor creates a mock keyword extractor with default behavior.
func NewMockKeywordExtractor() *MockKeywordExtractor {
	return &MockKeywordExtractor{}
}

// ExtractKeywords returns the first media type word found in text as the
// type tag, defaulting to "text".
func (m *MockKeywordExtractor) ExtractKeywords(ctx context.Context, text string) (ai.Keywords, error) {
	m.callCount.Add(1)

	if m.ExtractKeywordsFunc != nil {
		return m.ExtractKeywordsFunc(ctx, text)
	}

	kind := "text"
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		switch word {
		case "image", "photo", "picture":
			kind = "image"
		case "audio", "song", "recording":
			kind = "audio"
		case "video", "clip", "footage":
			kind = "video"
		default:
			continue
		}
		break
	}
	return ai.Keywords{ai.KeyType: kind}, nil
}

// CallCount returns the number of times ExtractKeywords was called.
func (m *MockKeywordExtractor) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom function.
func (m *MockKeywordExtractor) Reset() {
	m.callCount.Store(0)
	m.ExtractKeywordsFunc = nil
}
