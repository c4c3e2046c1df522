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

package ontology

import (
	"slices"

	"github.com/poiesic/mediakg/core"
)

// Class is the local name of a registered entity class.
type Class string

const (
	ClassMultimediaFile Class = "MultimediaFile"
	ClassImage          Class = "Image"
	ClassVideo          Class = "Video"
	ClassAudio          Class = "Audio"
	ClassTextFile       Class = "TextFile"
	ClassThumbnail      Class = "Thumbnail"
	ClassFeatureVector  Class = "FeatureVector"
)

// RootClass is the abstract parent of every concrete class.
const RootClass = ClassMultimediaFile

var classes = []Class{
	ClassMultimediaFile,
	ClassImage,
	ClassVideo,
	ClassAudio,
	ClassTextFile,
	ClassThumbnail,
	ClassFeatureVector,
}

var kindClasses = map[core.Kind]Class{
	core.KindImage: ClassImage,
	core.KindVideo: ClassVideo,
	core.KindAudio: ClassAudio,
	core.KindText:  ClassTextFile,
}

// Property describes a registered datatype property and the metadata key
// that feeds it.
type Property struct {
	// Name is the local name, e.g. "hasWidth".
	Name string

	// Key is the raw metadata key, e.g. "width".
	Key string

	// Datatype is the XSD datatype IRI of the property's range.
	Datatype string
}

// Numeric reports whether values must be coerced to a non-negative number.
func (p Property) Numeric() bool {
	return p.Datatype == core.XSDInteger || p.Datatype == core.XSDDecimal
}

var properties = []Property{
	{Name: "hasFileURI", Key: core.KeyFilePath, Datatype: core.XSDAnyURI},
	{Name: "hasFileName", Key: core.KeyFileName, Datatype: core.XSDString},
	{Name: "hasFormat", Key: core.KeyFormat, Datatype: core.XSDString},
	{Name: "hasSizeBytes", Key: core.KeySize, Datatype: core.XSDInteger},
	{Name: "hasWidth", Key: core.KeyWidth, Datatype: core.XSDInteger},
	{Name: "hasHeight", Key: core.KeyHeight, Datatype: core.XSDInteger},
	{Name: "hasDurationSeconds", Key: core.KeyDuration, Datatype: core.XSDDecimal},
	{Name: "hasFrameRate", Key: core.KeyFrameRate, Datatype: core.XSDDecimal},
	{Name: "hasSampleRate", Key: core.KeySampleRate, Datatype: core.XSDInteger},
	{Name: "hasChannels", Key: core.KeyChannels, Datatype: core.XSDInteger},
	{Name: "hasCaption", Key: core.KeyCaption, Datatype: core.XSDString},
	{Name: "hasFeatureID", Key: core.KeyFeatureID, Datatype: core.XSDString},
	{Name: "hasThumbURI", Key: core.KeyThumbPath, Datatype: core.XSDAnyURI},
}

var propertiesByKey = func() map[string]Property {
	m := make(map[string]Property, len(properties))
	for _, p := range properties {
		m[p.Key] = p
	}
	return m
}()

// Classes returns every registered class, root first.
func Classes() []Class { return slices.Clone(classes) }

// Properties returns every registered datatype property in metadata key order.
func Properties() []Property { return slices.Clone(properties) }

// PropertyForKey returns the property fed by a metadata key.
func PropertyForKey(key string) (Property, bool) {
	p, ok := propertiesByKey[key]
	return p, ok
}

// ClassForKind resolves a classification kind to its class. Unknown kinds
// resolve to RootClass with ok=false.
func ClassForKind(kind core.Kind) (Class, bool) {
	if c, ok := kindClasses[kind]; ok {
		return c, true
	}
	return RootClass, false
}

// IsClass reports whether c is registered.
func IsClass(c Class) bool { return slices.Contains(classes, c) }

// IsSubClassOf reports whether class is parent or one of its subclasses.
// The hierarchy is one level deep.
func IsSubClassOf(class, parent Class) bool {
	if !IsClass(class) || !IsClass(parent) {
		return false
	}
	return class == parent || parent == RootClass
}

// KindForClass is the inverse of ClassForKind. Classes with no media kind
// return core.KindOther.
func KindForClass(c Class) core.Kind {
	for kind, class := range kindClasses {
		if class == c {
			return kind
		}
	}
	return core.KindOther
}
