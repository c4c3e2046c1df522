package core

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// FeatureID derives the opaque feature reference for an embedding vector.
// Equal vectors always produce the same reference.
func FeatureID(vector []float32) string {
	h, _ := blake2b.New(16, nil)
	buf := make([]byte, 4)
	for _, v := range vector {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
		h.Write(buf)
	}
	return "fv_" + hex.EncodeToString(h.Sum(nil))
}

// NewEntityID returns a short unique entity id of the form prefix_<hex>.
// An empty prefix defaults to "m".
func NewEntityID(prefix string) string {
	if prefix == "" {
		prefix = "m"
	}
	u := uuid.New()
	return prefix + "_" + hex.EncodeToString(u[:])
}

// PromptIDPrefix prefixes the ids of entities recorded from prompts.
const PromptIDPrefix = "prompt"

// Kind is the coarse category a classifier assigns to an input.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindAudio Kind = "audio"
	KindText  Kind = "text"
	KindOther Kind = "other"
)

// ParseKind lowercases and trims s. Unrecognized values are returned as-is;
// the mapper decides how to treat them.
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// Known reports whether k is one of the four concrete media kinds.
func (k Kind) Known() bool {
	switch k {
	case KindImage, KindVideo, KindAudio, KindText:
		return true
	}
	return false
}

// Classification is the result of file-type classification.
type Classification struct {
	Kind       Kind
	Confidence float64
	MIME       string // detected MIME type, if any
}

// Metadata keys recognized by the mapper. All are optional.
const (
	KeyFilePath   = "file_path"
	KeyFileName   = "file_name"
	KeyFormat     = "format"
	KeySize       = "size"
	KeyWidth      = "width"
	KeyHeight     = "height"
	KeyDuration   = "duration"
	KeyFrameRate  = "framerate"
	KeySampleRate = "sample_rate"
	KeyChannels   = "channels"
	KeyCaption    = "caption"
	KeyFeatureID  = "feature_id"
	KeyThumbPath  = "thumb_path"
)

// Metadata is a raw per-file metadata mapping. Values may be strings,
// Go numeric types or json.Number; nil values count as absent.
type Metadata map[string]any

// Set stores v under key unless v is nil.
func (m Metadata) Set(key string, v any) {
	if v == nil {
		return
	}
	m[key] = v
}

// Clone returns a shallow copy of m.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Feature is a stored embedding vector. Entities reference it through the
// hasFeatureID property.
type Feature struct {
	ID         string // FeatureID of Vector
	Source     string // entity id the vector was extracted for
	Model      string
	Vector     []float32
	InsertedAt time.Time
}

// FeatureMatch is a feature returned by similarity search.
type FeatureMatch struct {
	Feature *Feature
	Score   float32
}

// Checkpoint records that a file was ingested, so unchanged files are
// skipped on the next run.
type Checkpoint struct {
	Path      string
	Size      int64
	ModTime   time.Time
	EntityID  string
	UpdatedAt time.Time
}

// Unchanged reports whether a file with the given size and modification
// time matches the checkpoint.
func (c *Checkpoint) Unchanged(size int64, modTime time.Time) bool {
	return c != nil && c.Size == size && c.ModTime.UnixMicro() == modTime.UnixMicro()
}
