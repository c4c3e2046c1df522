package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/poiesic/mediakg/storage"
)

// Key prefixes for different data types
const (
	graphTriplePrefix = "kgtrip"
	graphMetaPrefix   = "kgmeta"
	featurePrefix     = "featrec"
	checkpointPrefix  = "ingchk"
)

func validateGraphName(name string) error {
	if name == "" || strings.ContainsAny(name, ":\x00") {
		return fmt.Errorf("%w: %q", storage.ErrInvalidGraphName, name)
	}
	return nil
}

// makeGraphTriplePrefix generates the prefix shared by all triples of a graph.
// Format: prefix:name:
func makeGraphTriplePrefix(name string) []byte {
	return []byte(graphTriplePrefix + ":" + name + ":")
}

// makeGraphGenerationPrefix generates the prefix of one saved generation
// of a graph.
// Format: prefix:name:generation
func makeGraphGenerationPrefix(name string, generation uint64) []byte {
	prefix := makeGraphTriplePrefix(name)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], generation)
	return buf
}

// makeGraphTripleKey generates a key for the seq'th triple of a generation.
// Format: prefix:name:generation:seq
func makeGraphTripleKey(name string, generation, seq uint64) []byte {
	prefix := makeGraphGenerationPrefix(name, generation)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// makeGraphMetaKey generates the key for a graph's snapshot metadata.
func makeGraphMetaKey(name string) []byte {
	return []byte(graphMetaPrefix + ":" + name)
}

// makeFeatureKey generates a key for a feature by ID.
func makeFeatureKey(id string) []byte {
	return []byte(featurePrefix + ":" + id)
}

// makeCheckpointKey generates a key for a file's ingestion checkpoint.
func makeCheckpointKey(path string) []byte {
	return []byte(checkpointPrefix + ":" + path)
}
