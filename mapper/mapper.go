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

// Package mapper turns a raw metadata mapping and a classification kind into
// the typed triples describing one knowledge-graph entity.
//
// Mapping is pure. It performs no I/O and never touches a graph; the graph
// store commits the returned Entry as a unit, so a coercion failure on any
// field leaves nothing of the entity behind.
package mapper

import (
	"slices"

	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/ontology"
)

// Entry is the validated description of one entity.
type Entry struct {
	EntityID string
	Subject  string
	Class    ontology.Class

	// Triples holds the class assertion first, then one triple per present
	// field in registry order.
	Triples []core.Triple

	// Warnings holds non-fatal problems, currently *core.InvalidKindWarning.
	Warnings []error

	// Ignored lists metadata keys that have no registered property, sorted.
	Ignored []string
}

// Map builds the entry for entityID.
//
// The kind selects the class; unknown kinds fall back to the root class with
// an InvalidKindWarning. Each registered metadata key produces one triple
// when present and non-nil. Values are coerced to the property datatype and
// the first failure is returned as a *core.CoercionError.
func Map(ns ontology.Namespace, entityID string, kind core.Kind, md core.Metadata) (*Entry, error) {
	subject, err := ns.Entity(entityID)
	if err != nil {
		return nil, err
	}

	class, ok := ontology.ClassForKind(kind)
	entry := &Entry{
		EntityID: entityID,
		Subject:  subject,
		Class:    class,
		Triples:  []core.Triple{core.NewTriple(subject, core.RDFType, core.IRI(ns.Class(class)))},
	}
	if !ok {
		entry.Warnings = append(entry.Warnings, &core.InvalidKindWarning{EntityID: entityID, Kind: kind})
	}

	for _, prop := range ontology.Properties() {
		raw, present := md[prop.Key]
		if !present || absent(raw) {
			continue
		}
		lexical, err := lexicalFor(raw, prop.Datatype)
		if err != nil {
			return nil, &core.CoercionError{
				EntityID: entityID,
				Field:    prop.Key,
				Value:    raw,
				Datatype: prop.Datatype,
				Err:      err,
			}
		}
		entry.Triples = append(entry.Triples,
			core.NewTriple(subject, ns.Property(prop), core.Literal(lexical, prop.Datatype)))
	}

	for key := range md {
		if _, ok := ontology.PropertyForKey(key); !ok {
			entry.Ignored = append(entry.Ignored, key)
		}
	}
	slices.Sort(entry.Ignored)

	return entry, nil
}
