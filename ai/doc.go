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

// Package ai provides abstractions for the model-backed collaborators used
// during ingestion.
//
// The package is designed around four interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - KeywordExtractor: Extracts structured tags from a prompt
//   - ObjectDetector: Finds objects in video frames
//   - AIProvider: Aggregates the services and owns their lifecycle
//
// Collaborators are constructed explicitly and injected; nothing is created
// at import time.
//
// # Implementation Packages
//
//   - ai/openai: Implementation using OpenAI-compatible APIs via langchaingo
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors in ai/openai return interface types. Mock
// constructors return concrete types so tests can inject behavior and
// check call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "a dog on the beach")
//	tags, err := provider.KeywordExtractor().ExtractKeywords(ctx, "a dog on the beach")
//
// Detections from an ObjectDetector are turned into a caption with
// Summarize.
package ai
