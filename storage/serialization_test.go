package storage

import (
	"testing"
	"time"

	"github.com/poiesic/mediakg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripleEncoding(t *testing.T) {
	triples := []core.Triple{
		core.NewTriple("http://example.org/multimedia#img", core.RDFType, core.IRI("http://example.org/multimedia#Image")),
		core.NewTriple("http://example.org/multimedia#img", "http://example.org/multimedia#hasCaption", core.LangLiteral("un chat", "fr")),
		{Subject: core.Blank("b1"), Predicate: core.IRI("http://x/p"), Object: core.Literal("42", core.XSDInteger)},
	}

	for _, tr := range triples {
		decoded, err := UnmarshalTriple(MarshalTriple(tr))
		require.NoError(t, err)
		assert.Equal(t, tr, decoded)
	}
}

func TestUnmarshalTriple_Invalid(t *testing.T) {
	valid := MarshalTriple(core.NewTriple("http://x/s", "http://x/p", core.Literal("o", "")))

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated", valid[:len(valid)-3]},
		{"trailing bytes", append(append([]byte{}, valid...), 0x01)},
		{"unknown term kind", append([]byte{0x09}, valid[1:]...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalTriple(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
		})
	}
}

func TestFeatureEncoding(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	vector := []float32{0.25, -1.5, 3.0e-7, 0}
	f := &core.Feature{
		ID:         core.FeatureID(vector),
		Source:     "img_1",
		Model:      "embeddinggemma",
		Vector:     vector,
		InsertedAt: now,
	}

	decoded, err := UnmarshalFeature(MarshalFeature(f))
	require.NoError(t, err)
	assert.Equal(t, f, decoded)

	empty, err := UnmarshalFeature(MarshalFeature(&core.Feature{ID: "fv_0"}))
	require.NoError(t, err)
	assert.Empty(t, empty.Vector)
	assert.True(t, empty.InsertedAt.IsZero())
}

func TestUnmarshalFeature_OversizedLength(t *testing.T) {
	e := &encoder{}
	e.string("fv_x")
	e.string("")
	e.string("")
	e.uint64(1 << 40)

	_, err := UnmarshalFeature(e.buf)
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestGraphInfoEncoding(t *testing.T) {
	info := &GraphInfo{
		Name:       "catalogue",
		Namespace:  "http://example.org/multimedia#",
		Triples:    123,
		Generation: 7,
		SavedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	decoded, err := UnmarshalGraphInfo(MarshalGraphInfo(info))
	require.NoError(t, err)
	assert.Equal(t, info, decoded)
}

func TestCheckpointEncoding(t *testing.T) {
	c := &core.Checkpoint{
		Path:      "/media/photos/cat.jpg",
		Size:      204800,
		ModTime:   time.Date(2024, 12, 24, 8, 30, 0, 123000, time.UTC),
		EntityID:  "img_0a1b",
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	decoded, err := UnmarshalCheckpoint(MarshalCheckpoint(c))
	require.NoError(t, err)
	assert.Equal(t, c, decoded)
	assert.True(t, decoded.Unchanged(204800, c.ModTime))
	assert.False(t, decoded.Unchanged(204801, c.ModTime))
}
