package graph

import (
	"bufio"
	"io"
	"regexp"
	"slices"
	"strings"

	"github.com/poiesic/mediakg/core"
)

type prefixBinding struct {
	name string
	iri  string
}

var (
	integerLexical = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalLexical = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
)

func (g *Graph) prefixes() []prefixBinding {
	all := []prefixBinding{
		{name: g.prefix, iri: g.ns.IRI()},
		{name: "owl", iri: core.OWLNamespace},
		{name: "rdf", iri: core.RDFNamespace},
		{name: "rdfs", iri: core.RDFSNamespace},
		{name: "xsd", iri: core.XSDNamespace},
	}
	// the graph prefix shadows a standard one of the same name
	seen := make(map[string]bool, len(all))
	out := all[:0]
	for _, p := range all {
		if !seen[p.name] {
			seen[p.name] = true
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b prefixBinding) int { return strings.Compare(a.name, b.name) })
	return out
}

func validPrefix(p string) bool {
	if p == "" || strings.HasSuffix(p, ".") {
		return false
	}
	for i, r := range p {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func validLocal(l string) bool {
	if l == "" {
		return false
	}
	for i, r := range l {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		case i > 0 && r == '-':
		default:
			return false
		}
	}
	return true
}

type turtleWriter struct {
	w        *bufio.Writer
	prefixes []prefixBinding
}

func (tw *turtleWriter) iri(v string) string {
	best := -1
	for i, p := range tw.prefixes {
		if strings.HasPrefix(v, p.iri) && validLocal(v[len(p.iri):]) {
			if best < 0 || len(p.iri) > len(tw.prefixes[best].iri) {
				best = i
			}
		}
	}
	if best < 0 {
		return "<" + core.EscapeIRI(v) + ">"
	}
	p := tw.prefixes[best]
	return p.name + ":" + v[len(p.iri):]
}

func (tw *turtleWriter) term(t core.Term) string {
	switch t.Kind {
	case core.TermIRI:
		return tw.iri(t.Value)
	case core.TermBlank:
		return "_:" + t.Value
	}

	switch {
	case t.Lang != "":
		return `"` + core.EscapeString(t.Value) + `"@` + t.Lang
	case t.Datatype == core.XSDInteger && integerLexical.MatchString(t.Value):
		return t.Value
	case t.Datatype == core.XSDDecimal && decimalLexical.MatchString(t.Value):
		return t.Value
	case t.Datatype == core.XSDBoolean && (t.Value == "true" || t.Value == "false"):
		return t.Value
	case t.Datatype == "" || t.Datatype == core.XSDString:
		return `"` + core.EscapeString(t.Value) + `"`
	}
	return `"` + core.EscapeString(t.Value) + `"^^` + tw.iri(t.Datatype)
}

func (tw *turtleWriter) predicate(t core.Term) string {
	if t.Value == core.RDFType {
		return "a"
	}
	return tw.iri(t.Value)
}

// writeTurtle emits prefix directives followed by one block per subject.
// triples must be sorted with core.Compare.
func writeTurtle(w io.Writer, triples []core.Triple, prefixes []prefixBinding) error {
	tw := &turtleWriter{w: bufio.NewWriter(w), prefixes: prefixes}

	for _, p := range prefixes {
		tw.w.WriteString("@prefix " + p.name + ": <" + core.EscapeIRI(p.iri) + "> .\n")
	}

	for start := 0; start < len(triples); {
		end := start + 1
		for end < len(triples) && triples[end].Subject == triples[start].Subject {
			end++
		}
		tw.writeSubject(triples[start:end])
		start = end
	}

	return tw.w.Flush()
}

func (tw *turtleWriter) writeSubject(block []core.Triple) {
	// rdf:type first, otherwise keep sorted order
	ordered := make([]core.Triple, 0, len(block))
	for _, t := range block {
		if t.Predicate.Value == core.RDFType {
			ordered = append(ordered, t)
		}
	}
	for _, t := range block {
		if t.Predicate.Value != core.RDFType {
			ordered = append(ordered, t)
		}
	}

	tw.w.WriteString("\n" + tw.term(ordered[0].Subject))
	for i, t := range ordered {
		switch {
		case i == 0:
			tw.w.WriteString(" " + tw.predicate(t.Predicate) + " ")
		case t.Predicate == ordered[i-1].Predicate:
			tw.w.WriteString(",\n        ")
		default:
			tw.w.WriteString(" ;\n    " + tw.predicate(t.Predicate) + " ")
		}
		tw.w.WriteString(tw.term(t.Object))
	}
	tw.w.WriteString(" .\n")
}

// writeNTriples emits one statement per line.
func writeNTriples(w io.Writer, triples []core.Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		bw.WriteString(t.String())
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
