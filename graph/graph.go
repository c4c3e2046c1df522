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

package graph

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/mapper"
	"github.com/poiesic/mediakg/ontology"
)

// Graph is an in-memory set of typed triples bound to one namespace.
// It is safe for concurrent use.
type Graph struct {
	mu         sync.RWMutex
	ns         ontology.Namespace
	prefix     string
	triples    map[core.Triple]struct{}
	classes    map[string]string // subject IRI -> class IRI
	declared   bool
	permissive bool
	logger     *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph) error

// WithLogger sets the logger for the graph.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Graph) error {
		g.logger = logger
		return nil
	}
}

// WithNamespace sets the namespace. Load and Read use it instead of the one
// recovered from the input.
func WithNamespace(iri string) Option {
	return func(g *Graph) error {
		ns, err := ontology.NewNamespace(iri)
		if err != nil {
			return err
		}
		g.ns = ns
		return nil
	}
}

// WithPrefix sets the Turtle prefix bound to the namespace. Default "ex".
func WithPrefix(prefix string) Option {
	return func(g *Graph) error {
		if !validPrefix(prefix) {
			return fmt.Errorf("invalid turtle prefix %q", prefix)
		}
		g.prefix = prefix
		return nil
	}
}

// WithPermissive allows entities to be added before the ontology is declared.
func WithPermissive() Option {
	return func(g *Graph) error {
		g.permissive = true
		return nil
	}
}

// New creates an empty graph. Without WithNamespace the graph uses
// ontology.DefaultNamespace.
func New(opts ...Option) (*Graph, error) {
	g := &Graph{
		prefix:  ontology.DefaultPrefix,
		triples: make(map[core.Triple]struct{}),
		classes: make(map[string]string),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	if g.ns.IsZero() {
		g.ns = ontology.Default()
	}
	g.logger = g.logger.With("component", "graph")
	return g, nil
}

// Namespace returns the namespace entities are minted in.
func (g *Graph) Namespace() ontology.Namespace { return g.ns }

// Prefix returns the Turtle prefix bound to the namespace.
func (g *Graph) Prefix() string { return g.prefix }

// DeclareOntology asserts the ontology into the graph and returns the number
// of new triples. It is idempotent.
func (g *Graph) DeclareOntology() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	added := ontology.Declare(adderFunc(g.addLocked), g.ns)
	g.declared = true
	if added > 0 {
		g.logger.Debug("ontology declared", "namespace", g.ns.IRI(), "triples", added)
	}
	return added
}

// Declared reports whether the ontology has been declared.
func (g *Graph) Declared() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.declared
}

// AddTriple inserts a raw triple and reports whether it was new. No
// ontology checks are applied.
func (g *Graph) AddTriple(t core.Triple) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addLocked(t)
}

// Add maps metadata to the entity's triples and commits them as a unit.
// Mapper errors are returned unchanged and leave the graph untouched.
func (g *Graph) Add(entityID string, kind core.Kind, metadata core.Metadata) error {
	entry, err := mapper.Map(g.ns, entityID, kind, metadata)
	if err != nil {
		return err
	}
	return g.AddEntry(entry)
}

// AddEntry commits an entry produced by mapper.Map for this graph's namespace.
func (g *Graph) AddEntry(entry *mapper.Entry) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.declared && !g.permissive {
		return &core.NotDeclaredError{Namespace: g.ns.IRI()}
	}
	return g.addEntryLocked(entry)
}

// Replace removes every triple of the entry's entity and commits the entry
// under one write lock, so readers see either the old or the new entity.
// It returns how many triples were removed. The entry may change the
// entity's class.
func (g *Graph) Replace(entry *mapper.Entry) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.declared && !g.permissive {
		return 0, &core.NotDeclaredError{Namespace: g.ns.IRI()}
	}
	removed := g.removeLocked(entry.Subject)
	return removed, g.addEntryLocked(entry)
}

// addEntryLocked must be called with the write lock held.
func (g *Graph) addEntryLocked(entry *mapper.Entry) error {
	classIRI := g.ns.Class(entry.Class)
	if existing, ok := g.classes[entry.Subject]; ok && existing != classIRI {
		return fmt.Errorf("%w: %s is %s, not %s", core.ErrReclassification, entry.EntityID, existing, classIRI)
	}

	added := 0
	for _, t := range entry.Triples {
		if g.addLocked(t) {
			added++
		}
	}

	for _, w := range entry.Warnings {
		g.logger.Warn("entity typed as root class", "entity", entry.EntityID, "error", w)
	}
	if len(entry.Ignored) > 0 {
		g.logger.Debug("ignored unknown metadata keys", "entity", entry.EntityID, "keys", entry.Ignored)
	}
	g.logger.Debug("entity added", "entity", entry.EntityID, "class", entry.Class, "triples", added)
	return nil
}

// addLocked must be called with the write lock held.
func (g *Graph) addLocked(t core.Triple) bool {
	if _, ok := g.triples[t]; ok {
		return false
	}
	g.triples[t] = struct{}{}
	g.indexLocked(t)
	return true
}

func (g *Graph) indexLocked(t core.Triple) {
	if t.Predicate.Value != core.RDFType || !t.Object.IsIRI() || !t.Subject.IsIRI() {
		return
	}
	local, ok := g.ns.Local(t.Object.Value)
	if !ok || !ontology.IsClass(ontology.Class(local)) {
		return
	}
	if _, seen := g.classes[t.Subject.Value]; !seen {
		g.classes[t.Subject.Value] = t.Object.Value
	}
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}

// Has reports whether t is in the graph.
func (g *Graph) Has(t core.Triple) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.triples[t]
	return ok
}

// Triples returns every triple in a stable order.
func (g *Graph) Triples() []core.Triple {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sortedLocked()
}

func (g *Graph) sortedLocked() []core.Triple {
	out := make([]core.Triple, 0, len(g.triples))
	for t := range g.triples {
		out = append(out, t)
	}
	slices.SortFunc(out, core.Compare)
	return out
}

// Describe returns the triples whose subject is the entity, sorted.
func (g *Graph) Describe(entityID string) []core.Triple {
	subject := g.ns.Term(entityID)

	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []core.Triple
	for t := range g.triples {
		if t.Subject.IsIRI() && t.Subject.Value == subject {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, core.Compare)
	return out
}

// ClassOf returns the class asserted for an entity.
func (g *Graph) ClassOf(entityID string) (ontology.Class, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	classIRI, ok := g.classes[g.ns.Term(entityID)]
	if !ok {
		return "", false
	}
	local, _ := g.ns.Local(classIRI)
	return ontology.Class(local), true
}

// Value returns the lexical value of the property fed by a metadata key
// for an entity. When several values are asserted the smallest is
// returned.
func (g *Graph) Value(entityID, key string) (string, bool) {
	prop, ok := ontology.PropertyForKey(key)
	if !ok {
		return "", false
	}
	subject := g.ns.Term(entityID)
	predicate := g.ns.Property(prop)

	g.mu.RLock()
	defer g.mu.RUnlock()

	var (
		value string
		found bool
	)
	for t := range g.triples {
		if t.Subject.Value != subject || t.Predicate.Value != predicate || !t.Object.IsLiteral() {
			continue
		}
		if !found || t.Object.Value < value {
			value, found = t.Object.Value, true
		}
	}
	return value, found
}

// EntitiesOfClass returns the ids of entities typed as class, or as any of
// its subclasses, sorted.
func (g *Graph) EntitiesOfClass(class ontology.Class) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for subject, classIRI := range g.classes {
		local, _ := g.ns.Local(classIRI)
		if !ontology.IsSubClassOf(ontology.Class(local), class) {
			continue
		}
		if id, ok := g.ns.Local(subject); ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// SubjectsWithFeature returns the ids of entities whose hasFeatureID equals
// featureID, sorted.
func (g *Graph) SubjectsWithFeature(featureID string) []string {
	prop, _ := ontology.PropertyForKey(core.KeyFeatureID)
	predicate := g.ns.Property(prop)

	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for t := range g.triples {
		if t.Predicate.Value != predicate || !t.Object.IsLiteral() || t.Object.Value != featureID {
			continue
		}
		if id, ok := g.ns.Local(t.Subject.Value); ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Remove deletes every triple whose subject is the entity and returns how
// many were removed. Callers use it to correct an entity before re-adding it.
func (g *Graph) Remove(entityID string) int {
	subject := g.ns.Term(entityID)

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := g.removeLocked(subject)
	if removed > 0 {
		g.logger.Debug("entity removed", "entity", entityID, "triples", removed)
	}
	return removed
}

// removeLocked must be called with the write lock held.
func (g *Graph) removeLocked(subject string) int {
	removed := 0
	for t := range g.triples {
		if t.Subject.IsIRI() && t.Subject.Value == subject {
			delete(g.triples, t)
			removed++
		}
	}
	delete(g.classes, subject)
	return removed
}

// Merge adds every triple of other and returns how many were new. Both
// graphs must share a namespace.
func (g *Graph) Merge(other *Graph) (int, error) {
	if other == g {
		return 0, nil
	}
	if other.ns != g.ns {
		return 0, fmt.Errorf("%w: cannot merge %s into %s", core.ErrInvalidNamespace, other.ns, g.ns)
	}
	incoming := other.Triples()
	otherDeclared := other.Declared()

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, t := range incoming {
		if !t.Subject.IsIRI() || t.Predicate.Value != core.RDFType {
			continue
		}
		if existing, ok := g.classes[t.Subject.Value]; ok {
			local, isNS := g.ns.Local(t.Object.Value)
			if isNS && ontology.IsClass(ontology.Class(local)) && existing != t.Object.Value {
				return 0, fmt.Errorf("%w: %s", core.ErrReclassification, t.Subject.Value)
			}
		}
	}

	added := 0
	for _, t := range incoming {
		if g.addLocked(t) {
			added++
		}
	}
	g.declared = g.declared || otherDeclared
	return added, nil
}

// Equal reports whether both graphs hold the same triple set.
func (g *Graph) Equal(other *Graph) bool {
	if other == g {
		return true
	}
	a := g.Triples()
	b := other.Triples()
	return slices.Equal(a, b)
}

type adderFunc func(core.Triple) bool

func (f adderFunc) AddTriple(t core.Triple) bool { return f(t) }

var _ ontology.TripleAdder = (*Graph)(nil)
