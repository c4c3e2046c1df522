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
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/ontology"
)

// Encode writes every triple to w in the given format.
func (g *Graph) Encode(w io.Writer, format Format) error {
	g.mu.RLock()
	triples := g.sortedLocked()
	g.mu.RUnlock()

	switch format {
	case FormatTurtle:
		return writeTurtle(w, triples, g.prefixes())
	case FormatNTriples:
		return writeNTriples(w, triples)
	}
	return fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
}

// Serialize writes the whole graph to path. An empty format is chosen from
// the file extension.
//
// The file is written to a temporary sibling, synced and renamed into
// place, so a failed write leaves any previous file intact. Failures are
// returned as *core.SerializationError; the in-memory graph is never
// modified.
func (g *Graph) Serialize(path string, format Format) (err error) {
	if format == "" {
		format = FormatFromPath(path)
	}
	if format != FormatTurtle && format != FormatNTriples {
		return &core.SerializationError{Path: path, Op: "encode", Err: fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)}
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return &core.SerializationError{Path: path, Op: "create", Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = g.Encode(tmp, format); err != nil {
		return &core.SerializationError{Path: path, Op: "write", Err: err}
	}
	if err = tmp.Sync(); err != nil {
		return &core.SerializationError{Path: path, Op: "sync", Err: err}
	}
	if err = tmp.Chmod(0o644); err != nil {
		return &core.SerializationError{Path: path, Op: "chmod", Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &core.SerializationError{Path: path, Op: "close", Err: err}
	}
	if err = os.Rename(tmpName, path); err != nil {
		return &core.SerializationError{Path: path, Op: "rename", Err: err}
	}
	syncDir(dir)

	g.logger.Info("graph serialized", "path", path, "format", format, "triples", g.Len())
	return nil
}

// syncDir persists the rename. Not every platform supports fsync on a
// directory, so errors are ignored.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	d.Sync()
	d.Close()
}

// Load reads a graph file. The format comes from the file extension.
func Load(path string, opts ...Option) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}
	defer f.Close()

	g, err := Read(f, FormatFromPath(path), opts...)
	if err != nil {
		return nil, fmt.Errorf("load graph %s: %w", path, err)
	}
	return g, nil
}

// Read parses serialized triples into a new graph.
//
// Unless WithNamespace is given, the namespace is recovered from the graph
// prefix binding, then from the declared MultimediaFile class, and finally
// defaults to ontology.DefaultNamespace. The graph counts as declared when
// every ontology triple for that namespace is present.
func Read(r io.Reader, format Format, opts ...Option) (*Graph, error) {
	if format != FormatTurtle && format != FormatNTriples {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var triples []core.Triple
	p := newParser(string(data), format, func(t core.Triple) {
		triples = append(triples, t)
	})
	if err := p.parse(); err != nil {
		return nil, err
	}

	var explicit bool
	opts = append(opts, func(g *Graph) error {
		explicit = !g.ns.IsZero()
		return nil
	})
	g, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if !explicit {
		g.ns = recoverNamespace(p.prefixes[g.prefix], triples)
	}

	g.fill(triples)
	g.logger.Debug("graph read", "format", format, "namespace", g.ns.IRI(), "triples", len(triples), "declared", g.Declared())
	return g, nil
}

// FromTriples builds a graph holding triples, such as a stored snapshot.
// Like Read, the graph counts as declared when every ontology triple for
// its namespace is present.
func FromTriples(triples []core.Triple, opts ...Option) (*Graph, error) {
	g, err := New(opts...)
	if err != nil {
		return nil, err
	}
	g.fill(triples)
	return g, nil
}

func (g *Graph) fill(triples []core.Triple) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, t := range triples {
		g.addLocked(t)
	}
	g.declared = ontology.IsDeclared(func(t core.Triple) bool {
		_, ok := g.triples[t]
		return ok
	}, g.ns)
}

func recoverNamespace(bound string, triples []core.Triple) ontology.Namespace {
	if ns, err := ontology.NewNamespace(bound); err == nil {
		return ns
	}
	root := string(ontology.RootClass)
	for _, t := range triples {
		if t.Predicate.Value != core.RDFType || t.Object.Value != core.OWLClass {
			continue
		}
		if iri, ok := strings.CutSuffix(t.Subject.Value, root); ok {
			if ns, err := ontology.NewNamespace(iri); err == nil {
				return ns
			}
		}
	}
	return ontology.Default()
}
