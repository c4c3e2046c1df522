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

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/mediakg/core"
)

// Records are encoded as a flat sequence of MUS primitives: strings are
// length-prefixed, integers are varints and timestamps are Unix
// microseconds.

type encoder struct {
	buf []byte
}

func (e *encoder) string(s string) {
	start := len(e.buf)
	e.buf = append(e.buf, make([]byte, ord.String.Size(s))...)
	ord.String.Marshal(s, e.buf[start:])
}

func (e *encoder) uint64(v uint64) {
	start := len(e.buf)
	e.buf = append(e.buf, make([]byte, varint.Uint64.Size(v))...)
	varint.Uint64.Marshal(v, e.buf[start:])
}

func (e *encoder) int64(v int64) {
	start := len(e.buf)
	e.buf = append(e.buf, make([]byte, varint.Int64.Size(v))...)
	varint.Int64.Marshal(v, e.buf[start:])
}

func (e *encoder) time(t time.Time) {
	if t.IsZero() {
		e.int64(0)
		return
	}
	e.int64(t.UnixMicro())
}

func (e *encoder) float32(v float32) {
	start := len(e.buf)
	e.buf = append(e.buf, make([]byte, raw.Float32.Size(v))...)
	raw.Float32.Marshal(v, e.buf[start:])
}

func (e *encoder) term(t core.Term) {
	e.uint64(uint64(t.Kind))
	e.string(t.Value)
	e.string(t.Datatype)
	e.string(t.Lang)
}

type decoder struct {
	data []byte
	err  error
}

func (d *decoder) advance(n int, err error) {
	if err != nil {
		d.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
		return
	}
	d.data = d.data[n:]
}

func (d *decoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.data)
	d.advance(n, err)
	return v
}

func (d *decoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.data)
	d.advance(n, err)
	return v
}

func (d *decoder) int64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.data)
	d.advance(n, err)
	return v
}

func (d *decoder) time() time.Time {
	micros := d.int64()
	if micros == 0 {
		return time.Time{}
	}
	return time.UnixMicro(micros).UTC()
}

func (d *decoder) float32() float32 {
	if d.err != nil {
		return 0
	}
	v, n, err := raw.Float32.Unmarshal(d.data)
	d.advance(n, err)
	return v
}

// count reads a length prefix, rejecting values larger than the remaining
// input could hold.
func (d *decoder) count(minElemSize int) int {
	n := d.uint64()
	if d.err == nil && n > uint64(len(d.data)/max(minElemSize, 1)) {
		d.err = fmt.Errorf("%w: %w: length %d", ErrSerializationFailed, ErrTruncatedData, n)
		return 0
	}
	return int(n)
}

func (d *decoder) term() core.Term {
	kind := d.uint64()
	t := core.Term{
		Kind:     core.TermKind(kind),
		Value:    d.string(),
		Datatype: d.string(),
		Lang:     d.string(),
	}
	if d.err == nil && (t.Kind < core.TermIRI || t.Kind > core.TermBlank) {
		d.err = fmt.Errorf("%w: unknown term kind %d", ErrSerializationFailed, kind)
	}
	return t
}

func (d *decoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if len(d.data) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrSerializationFailed, len(d.data))
	}
	return nil
}

// MarshalTriple serializes a Triple to bytes.
func MarshalTriple(t core.Triple) []byte {
	e := &encoder{}
	e.term(t.Subject)
	e.term(t.Predicate)
	e.term(t.Object)
	return e.buf
}

// UnmarshalTriple deserializes a Triple from bytes.
func UnmarshalTriple(data []byte) (core.Triple, error) {
	d := &decoder{data: data}
	t := core.Triple{Subject: d.term(), Predicate: d.term(), Object: d.term()}
	if err := d.finish(); err != nil {
		return core.Triple{}, err
	}
	return t, nil
}

// MarshalGraphInfo serializes snapshot metadata to bytes.
func MarshalGraphInfo(info *GraphInfo) []byte {
	e := &encoder{}
	e.string(info.Name)
	e.string(info.Namespace)
	e.uint64(uint64(info.Triples))
	e.uint64(info.Generation)
	e.time(info.SavedAt)
	return e.buf
}

// UnmarshalGraphInfo deserializes snapshot metadata from bytes.
func UnmarshalGraphInfo(data []byte) (*GraphInfo, error) {
	d := &decoder{data: data}
	info := &GraphInfo{
		Name:       d.string(),
		Namespace:  d.string(),
		Triples:    int(d.uint64()),
		Generation: d.uint64(),
		SavedAt:    d.time(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return info, nil
}

// MarshalFeature serializes a Feature to bytes.
func MarshalFeature(f *core.Feature) []byte {
	e := &encoder{buf: make([]byte, 0, 64+4*len(f.Vector))}
	e.string(f.ID)
	e.string(f.Source)
	e.string(f.Model)
	e.uint64(uint64(len(f.Vector)))
	for _, v := range f.Vector {
		e.float32(v)
	}
	e.time(f.InsertedAt)
	return e.buf
}

// UnmarshalFeature deserializes a Feature from bytes.
func UnmarshalFeature(data []byte) (*core.Feature, error) {
	d := &decoder{data: data}
	f := &core.Feature{
		ID:     d.string(),
		Source: d.string(),
		Model:  d.string(),
	}
	if n := d.count(4); n > 0 {
		f.Vector = make([]float32, n)
		for i := range f.Vector {
			f.Vector[i] = d.float32()
		}
	}
	f.InsertedAt = d.time()
	if err := d.finish(); err != nil {
		return nil, err
	}
	return f, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(c *core.Checkpoint) []byte {
	e := &encoder{}
	e.string(c.Path)
	e.int64(c.Size)
	e.time(c.ModTime)
	e.string(c.EntityID)
	e.time(c.UpdatedAt)
	return e.buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	d := &decoder{data: data}
	c := &core.Checkpoint{
		Path:      d.string(),
		Size:      d.int64(),
		ModTime:   d.time(),
		EntityID:  d.string(),
		UpdatedAt: d.time(),
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return c, nil
}
