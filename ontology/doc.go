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

// Package ontology holds the fixed vocabulary of the multimedia knowledge graph.
//
// The registry defines seven OWL classes and thirteen datatype properties. The
// concrete classes (Image, Video, Audio, TextFile, Thumbnail, FeatureVector) are
// declared as rdfs:subClassOf the abstract MultimediaFile root. Every property
// carries an rdfs:range naming the XSD datatype its values are coerced to.
//
// Declaration is idempotent: Declare adds each triple through a set-semantics
// TripleAdder, so declaring twice leaves the graph unchanged.
//
//	ns := ontology.MustNamespace("http://example.org/multimedia#")
//	ontology.Declare(g, ns)
package ontology
