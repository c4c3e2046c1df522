package ontology

import (
	"fmt"

	"github.com/poiesic/mediakg/core"
)

const (
	// DefaultNamespace is used when a graph is created without an explicit namespace.
	DefaultNamespace = "http://example.org/multimedia#"

	// DefaultPrefix is the Turtle prefix bound to the graph namespace.
	DefaultPrefix = "ex"
)

// Namespace is the IRI prefix for all minted class, property and entity
// identifiers of one graph. The zero value is not usable; use NewNamespace.
type Namespace struct {
	iri string
}

// NewNamespace validates iri and returns it as a Namespace.
func NewNamespace(iri string) (Namespace, error) {
	if err := core.ValidateNamespace(iri); err != nil {
		return Namespace{}, err
	}
	return Namespace{iri: iri}, nil
}

// MustNamespace is like NewNamespace but panics on an invalid iri.
func MustNamespace(iri string) Namespace {
	ns, err := NewNamespace(iri)
	if err != nil {
		panic(err)
	}
	return ns
}

// Default returns the namespace bound to DefaultNamespace.
func Default() Namespace {
	return Namespace{iri: DefaultNamespace}
}

// IRI returns the namespace IRI.
func (n Namespace) IRI() string { return n.iri }

func (n Namespace) String() string { return n.iri }

// IsZero reports whether n was never initialized.
func (n Namespace) IsZero() bool { return n.iri == "" }

// Term returns the full IRI for a local name in this namespace.
func (n Namespace) Term(local string) string { return n.iri + local }

// Class returns the IRI of a registered class.
func (n Namespace) Class(c Class) string { return n.iri + string(c) }

// Property returns the IRI of a registered property.
func (n Namespace) Property(p Property) string { return n.iri + p.Name }

// Entity returns the subject IRI for an entity id.
func (n Namespace) Entity(entityID string) (string, error) {
	if err := core.ValidateEntityID(entityID); err != nil {
		return "", err
	}
	return n.iri + entityID, nil
}

// Local strips the namespace from iri. The second result is false when iri
// is not in this namespace.
func (n Namespace) Local(iri string) (string, bool) {
	if n.iri == "" || len(iri) <= len(n.iri) || iri[:len(n.iri)] != n.iri {
		return "", false
	}
	return iri[len(n.iri):], true
}

// Contains reports whether iri is minted in this namespace.
func (n Namespace) Contains(iri string) bool {
	_, ok := n.Local(iri)
	return ok
}

// GoString keeps %#v output readable in test failures.
func (n Namespace) GoString() string {
	return fmt.Sprintf("ontology.Namespace(%q)", n.iri)
}
