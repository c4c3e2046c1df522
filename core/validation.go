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
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// ValidateNamespace checks that ns can prefix minted identifiers.
//
// Validation rules:
//   - must parse as an absolute IRI with a scheme
//   - must end in '#' or '/'
//   - must not contain whitespace or angle brackets
func ValidateNamespace(ns string) error {
	if ns == "" {
		return fmt.Errorf("%w: empty", ErrInvalidNamespace)
	}
	if strings.ContainsAny(ns, "<> \t\n\r\"") {
		return fmt.Errorf("%w: %q contains illegal characters", ErrInvalidNamespace, ns)
	}
	u, err := url.Parse(ns)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNamespace, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("%w: %q is not absolute", ErrInvalidNamespace, ns)
	}
	if !strings.HasSuffix(ns, "#") && !strings.HasSuffix(ns, "/") {
		return fmt.Errorf("%w: %q must end in '#' or '/'", ErrInvalidNamespace, ns)
	}
	return nil
}

// ValidateEntityID checks that id can be appended to a namespace to form a
// subject IRI. Ids are opaque but must be non-empty and free of whitespace,
// control characters and IRI delimiters.
func ValidateEntityID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidEntityID)
	}
	for _, r := range id {
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune("<>\"{}|^`\\#", r) {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidEntityID, id, r)
		}
	}
	return nil
}

// ValidateURIRef reports whether s parses as a URI reference. Used for
// xsd:anyURI values such as file paths.
func ValidateURIRef(s string) error {
	if strings.ContainsAny(s, "\n\r") {
		return fmt.Errorf("contains line break")
	}
	if _, err := url.Parse(s); err != nil {
		return err
	}
	return nil
}
