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

// Package graph provides the in-memory knowledge graph store.
//
// A Graph is a set of RDF triples bound to one namespace. Entities are added
// through the metadata mapper and committed as a unit; identical triples are
// stored once. The ontology must be declared before entities are added
// unless the graph was created with WithPermissive.
//
// # Serialization
//
// Graphs serialize to Turtle or N-Triples. Serialize writes atomically
// through a temporary file and rename. Load and Read parse the same formats
// back, canonicalizing numeric literals, so that
//
//	g.Serialize(path, graph.FormatTurtle)
//	h, _ := graph.Load(path)
//	g.Equal(h) // true
//
// The reader understands prefix and base directives in both @-form and
// SPARQL form, prefixed names, the "a" keyword, short and long quoted
// literals, language tags, datatypes, bare numbers and booleans, predicate
// and object lists, labelled and anonymous blank nodes, and comments.
// Collections are rejected.
//
// # Concurrency
//
// All methods are safe for concurrent use. Ingestion workers either share
// one graph or build shards that are combined with Merge.
package graph
