package ontology

import "github.com/poiesic/mediakg/core"

// TripleAdder is the minimal graph surface Declare needs. AddTriple must
// have set semantics and report whether the triple was new.
type TripleAdder interface {
	AddTriple(t core.Triple) bool
}

// Triples returns the ontology declaration for ns: an owl:Class assertion
// per class, rdfs:subClassOf for each concrete class, and an
// owl:DatatypeProperty assertion plus rdfs:range per property.
func Triples(ns Namespace) []core.Triple {
	out := make([]core.Triple, 0, len(classes)*2+len(properties)*2)
	for _, c := range classes {
		iri := ns.Class(c)
		out = append(out, core.NewTriple(iri, core.RDFType, core.IRI(core.OWLClass)))
		if c != RootClass {
			out = append(out, core.NewTriple(iri, core.RDFSSubClassOf, core.IRI(ns.Class(RootClass))))
		}
	}
	for _, p := range properties {
		iri := ns.Property(p)
		out = append(out,
			core.NewTriple(iri, core.RDFType, core.IRI(core.OWLDatatypeProp)),
			core.NewTriple(iri, core.RDFSRange, core.IRI(p.Datatype)),
		)
	}
	return out
}

// Declare asserts the ontology for ns into g and returns how many triples
// were new. Calling it again on the same graph adds nothing.
func Declare(g TripleAdder, ns Namespace) int {
	added := 0
	for _, t := range Triples(ns) {
		if g.AddTriple(t) {
			added++
		}
	}
	return added
}

// IsDeclared reports whether every ontology triple for ns is present
// according to has.
func IsDeclared(has func(core.Triple) bool, ns Namespace) bool {
	for _, t := range Triples(ns) {
		if !has(t) {
			return false
		}
	}
	return true
}
