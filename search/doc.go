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

// Package search finds graph entities that match a free-text query.
//
// The Searcher combines three signals:
//   - Semantic similarity between the query embedding and stored features
//   - The media kind extracted from the query, matched against entity classes
//   - Verbatim keyword matching against captions and file names, with
//     stop-word filtering
//
// Entities recorded from prompts are never returned.
package search
