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

package core

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// ErrCoercion indicates a metadata value could not be converted to the
	// datatype its property declares.
	ErrCoercion = errors.New("metadata coercion failed")

	// ErrSerialization indicates the graph could not be written to disk.
	ErrSerialization = errors.New("graph serialization failed")

	// ErrNotDeclared indicates an entity was added before the ontology was declared.
	ErrNotDeclared = errors.New("ontology not declared")

	// ErrInvalidKind indicates a classification kind outside the known set.
	ErrInvalidKind = errors.New("invalid classification kind")

	// ErrReclassification indicates an existing entity was re-added with a different class.
	ErrReclassification = errors.New("entity class cannot change")

	// ErrInvalidEntityID indicates an entity id that cannot form a subject IRI.
	ErrInvalidEntityID = errors.New("invalid entity id")

	// ErrInvalidNamespace indicates a namespace that is not an absolute IRI
	// ending in '#' or '/'.
	ErrInvalidNamespace = errors.New("invalid namespace")

	// ErrUnsupportedFormat indicates an unknown serialization format.
	ErrUnsupportedFormat = errors.New("unsupported serialization format")

	// ErrSyntax indicates malformed Turtle or N-Triples input.
	ErrSyntax = errors.New("syntax error")
)

// CoercionError reports a metadata field whose value does not fit the
// datatype declared for its property.
type CoercionError struct {
	EntityID string
	Field    string
	Value    any
	Datatype string
	Err      error
}

func (e *CoercionError) Error() string {
	msg := fmt.Sprintf("%s: entity %q field %q: cannot coerce %v (%T) to %s",
		ErrCoercion, e.EntityID, e.Field, e.Value, e.Value, e.Datatype)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CoercionError) Is(target error) bool { return target == ErrCoercion }

func (e *CoercionError) Unwrap() error { return e.Err }

// SerializationError wraps an I/O failure while writing a graph.
type SerializationError struct {
	Path string
	Op   string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrSerialization, e.Op, e.Path, e.Err)
}

func (e *SerializationError) Is(target error) bool { return target == ErrSerialization }

func (e *SerializationError) Unwrap() error { return e.Err }

// NotDeclaredError is returned when entities are added to a graph whose
// ontology has not been declared.
type NotDeclaredError struct {
	Namespace string
}

func (e *NotDeclaredError) Error() string {
	return fmt.Sprintf("%s: namespace %s", ErrNotDeclared, e.Namespace)
}

func (e *NotDeclaredError) Unwrap() error { return ErrNotDeclared }

// InvalidKindWarning is non-fatal: the entity is still created, typed as the
// root class.
type InvalidKindWarning struct {
	EntityID string
	Kind     Kind
}

func (w *InvalidKindWarning) Error() string {
	return fmt.Sprintf("%s %q for entity %q, using root class", ErrInvalidKind, string(w.Kind), w.EntityID)
}

func (w *InvalidKindWarning) Unwrap() error { return ErrInvalidKind }

// SyntaxError locates a parse failure in serialized graph input.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", ErrSyntax, e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }
