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

package mock

import (
	"sync/atomic"

	"github.com/poiesic/mediakg/ai"
)

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder  *MockEmbedder
	extractor *MockKeywordExtractor
	detector  *MockDetector
	closed    atomic.Bool
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns the concrete type so tests can reach the underlying mocks.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockKeywordExtractor(), NewMockDetector())
}

// NewMockProviderWithServices creates a mock provider with custom mock
// services. A nil detector makes ObjectDetector return nil.
func NewMockProviderWithServices(embedder *MockEmbedder, extractor *MockKeywordExtractor, detector *MockDetector) *MockProvider {
	return &MockProvider{
		embedder:  embedder,
		extractor: extractor,
		detector:  detector,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// KeywordExtractor returns the mock keyword extractor.
func (p *MockProvider) KeywordExtractor() ai.KeywordExtractor {
	return p.extractor
}

// ObjectDetector returns the mock detector, or nil if none was given.
func (p *MockProvider) ObjectDetector() ai.ObjectDetector {
	if p.detector == nil {
		return nil
	}
	return p.detector
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	return p.closed.Load()
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockExtractor returns the underlying mock extractor for test assertions.
func (p *MockProvider) GetMockExtractor() *MockKeywordExtractor {
	return p.extractor
}

// GetMockDetector returns the underlying mock detector for test assertions.
func (p *MockProvider) GetMockDetector() *MockDetector {
	return p.detector
}
