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

// Package storage defines the persistence interfaces behind mediakg.
//
// The in-memory graph is the source of truth for a session. Storage keeps
// what must outlive one: named graph snapshots, the feature vectors that
// graph entities reference through hasFeatureID, and per-file ingestion
// checkpoints used to skip unchanged files on re-ingest.
//
// # Repositories
//
//   - GraphRepository: named snapshots of a graph's triples
//   - FeatureRepository: feature vectors and similarity search
//   - CheckpointRepository: ingestion checkpoints keyed by file path
//
// The badger subpackage implements all three on a single BadgerDB:
//
//	repos, err := badger.OpenRepositories("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repos.Close()
//
// Tests use badger.NewMemoryRepositories.
//
// # Encoding
//
// Values are encoded with mus-go primitives. Decoders reject truncated and
// trailing data.
//
// All repository implementations are safe for concurrent use.
package storage
