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

package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/mediakg/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrMissingType is returned when the model omits the required type key.
var ErrMissingType = errors.New("keyword response has no type")

// KeywordExtractor implements ai.KeywordExtractor using OpenAI-compatible chat APIs.
type KeywordExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// newKeywordExtractor is an internal constructor that returns the concrete type.
func newKeywordExtractor(config *ai.Config) (*KeywordExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken(config.Token),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &KeywordExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewKeywordExtractor creates a new keyword extractor using the provided configuration.
//
// Returns ai.KeywordExtractor interface to enforce abstraction.
func NewKeywordExtractor(config *ai.Config) (ai.KeywordExtractor, error) {
	return newKeywordExtractor(config)
}

// ExtractKeywords asks the model for the prompt's tags.
func (e *KeywordExtractor) ExtractKeywords(ctx context.Context, text string) (ai.Keywords, error) {
	content := []llms.MessageContent{
		textMessage(llms.ChatMessageTypeSystem, buildKeywordPrompt()),
		textMessage(llms.ChatMessageTypeHuman, "Input: "+text+"\nOutput:"),
	}

	var raw map[string]any
	if err := generateJSON(ctx, e.client, content, &raw, e.logger); err != nil {
		return nil, err
	}

	keywords := flattenKeywords(raw).Clean()
	if keywords.Type() == "" {
		return nil, ErrMissingType
	}

	e.logger.Debug("extracted keywords", "keys", len(keywords))
	return keywords, nil
}

// flattenKeywords converts decoded JSON values to strings. Lists are
// joined with ", "; nested objects are dropped.
func flattenKeywords(raw map[string]any) ai.Keywords {
	out := make(ai.Keywords, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			out[key] = v
		case float64, bool:
			out[key] = fmt.Sprint(v)
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					parts = append(parts, strings.TrimSpace(s))
				}
			}
			out[key] = strings.Join(parts, ", ")
		}
	}
	return out
}
