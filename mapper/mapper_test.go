package mapper

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/ontology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ns = ontology.Default()

func objectFor(t *testing.T, e *Entry, propName string) (core.Term, bool) {
	t.Helper()
	for _, tr := range e.Triples {
		if tr.Predicate.Value == ns.Term(propName) {
			return tr.Object, true
		}
	}
	return core.Term{}, false
}

func TestMap_ExampleImage(t *testing.T) {
	md := core.Metadata{
		"file_path": "http://x/img1.jpg",
		"file_name": "image1.jpg",
		"format":    "JPEG",
		"size":      204800,
		"width":     1920,
		"height":    1080,
		"caption":   "An example image",
	}

	e, err := Map(ns, "example_image_1", core.KindImage, md)
	require.NoError(t, err)

	// one class assertion plus one triple per present field
	assert.Len(t, e.Triples, 1+len(md))
	assert.Equal(t, ontology.ClassImage, e.Class)
	assert.Equal(t, core.NewTriple(ns.Term("example_image_1"), core.RDFType, core.IRI(ns.Class(ontology.ClassImage))), e.Triples[0])
	assert.Empty(t, e.Warnings)
	assert.Empty(t, e.Ignored)

	for _, absentProp := range []string{"hasDurationSeconds", "hasFrameRate", "hasSampleRate", "hasChannels", "hasFeatureID", "hasThumbURI"} {
		_, ok := objectFor(t, e, absentProp)
		assert.False(t, ok, absentProp)
	}

	size, ok := objectFor(t, e, "hasSizeBytes")
	require.True(t, ok)
	assert.Equal(t, core.Literal("204800", core.XSDInteger), size)

	uri, ok := objectFor(t, e, "hasFileURI")
	require.True(t, ok)
	assert.Equal(t, core.XSDAnyURI, uri.Datatype)
}

func TestMap_OmitsAbsentAndNil(t *testing.T) {
	var nilInt *int
	e, err := Map(ns, "a1", core.KindAudio, core.Metadata{
		"duration":    nil,
		"channels":    nilInt,
		"sample_rate": 44100,
	})
	require.NoError(t, err)
	assert.Len(t, e.Triples, 2)

	_, ok := objectFor(t, e, "hasDurationSeconds")
	assert.False(t, ok)
	_, ok = objectFor(t, e, "hasChannels")
	assert.False(t, ok)
}

func TestMap_ClassResolution(t *testing.T) {
	tests := []struct {
		kind    core.Kind
		class   ontology.Class
		warning bool
	}{
		{core.KindImage, ontology.ClassImage, false},
		{core.KindVideo, ontology.ClassVideo, false},
		{core.KindAudio, ontology.ClassAudio, false},
		{core.KindText, ontology.ClassTextFile, false},
		{core.KindOther, ontology.ClassMultimediaFile, true},
		{core.Kind(""), ontology.ClassMultimediaFile, true},
		{core.Kind("zip"), ontology.ClassMultimediaFile, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			e, err := Map(ns, "e1", tt.kind, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.class, e.Class)
			require.Len(t, e.Triples, 1)
			assert.Equal(t, ns.Class(tt.class), e.Triples[0].Object.Value)

			if tt.warning {
				require.Len(t, e.Warnings, 1)
				assert.ErrorIs(t, e.Warnings[0], core.ErrInvalidKind)
			} else {
				assert.Empty(t, e.Warnings)
			}
		})
	}
}

func TestMap_IntegerCoercion(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr error
	}{
		{"int", 204800, "204800", nil},
		{"uint8", uint8(3), "3", nil},
		{"int64 pointer", ptr(int64(7)), "7", nil},
		{"numeric string", "204800", "204800", nil},
		{"padded string", " 0042 ", "42", nil},
		{"integral float", 1920.0, "1920", nil},
		{"integral float string", "1080.0", "1080", nil},
		{"json number", json.Number("640"), "640", nil},
		{"non-numeric string", "abc", "", errNotNumeric},
		{"negative int", -1, "", errNegative},
		{"negative string", "-5", "", errNegative},
		{"fractional float", 1.5, "", errFractional},
		{"nan", math.NaN(), "", errNotFinite},
		{"inf", math.Inf(1), "", errNotFinite},
		{"bool", true, "", errUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Map(ns, "img", core.KindImage, core.Metadata{"size": tt.value})
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, e)
				assert.ErrorIs(t, err, core.ErrCoercion)
				assert.ErrorIs(t, err, tt.wantErr)

				var ce *core.CoercionError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, "img", ce.EntityID)
				assert.Equal(t, "size", ce.Field)
				assert.Equal(t, core.XSDInteger, ce.Datatype)
				return
			}
			require.NoError(t, err)
			obj, ok := objectFor(t, e, "hasSizeBytes")
			require.True(t, ok)
			assert.Equal(t, tt.want, obj.Value)
			assert.Equal(t, core.XSDInteger, obj.Datatype)
		})
	}
}

func TestMap_DecimalCoercion(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    string
		wantErr error
	}{
		{"float", 12.5, "12.5", nil},
		{"int", 30, "30.0", nil},
		{"string", "29.970", "29.97", nil},
		{"string beyond float precision", "29.970029970029970029970", "29.97002997002997002997", nil},
		{"negative string", "-1.5", "", errNegative},
		{"float32", float32(0.5), "0.5", nil},
		{"json number", json.Number("2"), "2.0", nil},
		{"negative", -0.1, "", errNegative},
		{"garbage", "fast", "", errNotNumeric},
		{"nan string", "NaN", "", errNotFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Map(ns, "vid", core.KindVideo, core.Metadata{"framerate": tt.value})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, core.ErrCoercion)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			obj, ok := objectFor(t, e, "hasFrameRate")
			require.True(t, ok)
			assert.Equal(t, tt.want, obj.Value)
			assert.Equal(t, core.XSDDecimal, obj.Datatype)
		})
	}
}

func TestMap_StringsAndURIs(t *testing.T) {
	e, err := Map(ns, "t1", core.KindText, core.Metadata{
		"format":     42,
		"caption":    "line one\nline two",
		"thumb_path": "/thumbs/t1.png",
	})
	require.NoError(t, err)

	format, _ := objectFor(t, e, "hasFormat")
	assert.Equal(t, core.Literal("42", core.XSDString), format)

	thumb, _ := objectFor(t, e, "hasThumbURI")
	assert.Equal(t, core.Literal("/thumbs/t1.png", core.XSDAnyURI), thumb)

	_, err = Map(ns, "t1", core.KindText, core.Metadata{"file_path": "http://x/%zz"})
	assert.ErrorIs(t, err, core.ErrCoercion)
}

func TestMap_AllOrNothing(t *testing.T) {
	e, err := Map(ns, "img", core.KindImage, core.Metadata{
		"file_name": "ok.jpg",
		"width":     100,
		"height":    "tall",
	})
	assert.Nil(t, e)
	assert.ErrorIs(t, err, core.ErrCoercion)
}

func TestMap_IgnoresUnknownKeys(t *testing.T) {
	e, err := Map(ns, "img", core.KindImage, core.Metadata{
		"width": 10,
		"exif":  "...",
		"album": "summer",
	})
	require.NoError(t, err)
	assert.Len(t, e.Triples, 2)
	assert.Equal(t, []string{"album", "exif"}, e.Ignored)
}

func TestMap_InvalidEntityID(t *testing.T) {
	_, err := Map(ns, "", core.KindImage, nil)
	assert.ErrorIs(t, err, core.ErrInvalidEntityID)

	_, err = Map(ns, "two words", core.KindImage, nil)
	assert.ErrorIs(t, err, core.ErrInvalidEntityID)
}

func ptr[T any](v T) *T { return &v }
