package ontology

import (
	"testing"

	"github.com/poiesic/mediakg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setAdder map[core.Triple]struct{}

func (s setAdder) AddTriple(t core.Triple) bool {
	if _, ok := s[t]; ok {
		return false
	}
	s[t] = struct{}{}
	return true
}

func (s setAdder) has(t core.Triple) bool {
	_, ok := s[t]
	return ok
}

func TestNewNamespace(t *testing.T) {
	ns, err := NewNamespace("http://example.org/multimedia#")
	require.NoError(t, err)
	assert.Equal(t, "http://example.org/multimedia#Image", ns.Class(ClassImage))
	assert.Equal(t, "http://example.org/multimedia#hasWidth", ns.Term("hasWidth"))

	_, err = NewNamespace("not a namespace")
	assert.ErrorIs(t, err, core.ErrInvalidNamespace)

	assert.Panics(t, func() { MustNamespace("") })
	assert.True(t, Namespace{}.IsZero())
	assert.Equal(t, DefaultNamespace, Default().IRI())
}

func TestNamespace_EntityAndLocal(t *testing.T) {
	ns := Default()

	iri, err := ns.Entity("example_image_1")
	require.NoError(t, err)
	assert.Equal(t, DefaultNamespace+"example_image_1", iri)

	local, ok := ns.Local(iri)
	assert.True(t, ok)
	assert.Equal(t, "example_image_1", local)

	_, ok = ns.Local("http://other.org/x")
	assert.False(t, ok)
	assert.False(t, ns.Contains(DefaultNamespace))

	_, err = ns.Entity("bad id")
	assert.ErrorIs(t, err, core.ErrInvalidEntityID)
}

func TestRegistry(t *testing.T) {
	assert.Len(t, Classes(), 7)
	assert.Len(t, Properties(), 13)
	assert.Equal(t, RootClass, Classes()[0])

	p, ok := PropertyForKey("duration")
	require.True(t, ok)
	assert.Equal(t, "hasDurationSeconds", p.Name)
	assert.Equal(t, core.XSDDecimal, p.Datatype)
	assert.True(t, p.Numeric())

	p, ok = PropertyForKey("file_path")
	require.True(t, ok)
	assert.Equal(t, core.XSDAnyURI, p.Datatype)
	assert.False(t, p.Numeric())

	_, ok = PropertyForKey("exif")
	assert.False(t, ok)
}

func TestClassForKind(t *testing.T) {
	tests := []struct {
		kind core.Kind
		want Class
		ok   bool
	}{
		{core.KindImage, ClassImage, true},
		{core.KindVideo, ClassVideo, true},
		{core.KindAudio, ClassAudio, true},
		{core.KindText, ClassTextFile, true},
		{core.KindOther, ClassMultimediaFile, false},
		{core.Kind(""), ClassMultimediaFile, false},
		{core.Kind("archive"), ClassMultimediaFile, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			c, ok := ClassForKind(tt.kind)
			assert.Equal(t, tt.want, c)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestKindForClass(t *testing.T) {
	assert.Equal(t, core.KindImage, KindForClass(ClassImage))
	assert.Equal(t, core.KindText, KindForClass(ClassTextFile))
	assert.Equal(t, core.KindOther, KindForClass(ClassMultimediaFile))
	assert.Equal(t, core.KindOther, KindForClass(ClassThumbnail))
}

func TestIsSubClassOf(t *testing.T) {
	assert.True(t, IsSubClassOf(ClassImage, ClassMultimediaFile))
	assert.True(t, IsSubClassOf(ClassImage, ClassImage))
	assert.True(t, IsSubClassOf(ClassMultimediaFile, ClassMultimediaFile))
	assert.False(t, IsSubClassOf(ClassImage, ClassVideo))
	assert.False(t, IsSubClassOf(ClassMultimediaFile, ClassImage))
	assert.False(t, IsSubClassOf(Class("Spreadsheet"), ClassMultimediaFile))
}

func TestDeclare(t *testing.T) {
	ns := Default()
	g := setAdder{}

	added := Declare(g, ns)
	assert.Equal(t, 7+6+13*2, added)
	assert.Len(t, g, added)
	assert.True(t, IsDeclared(g.has, ns))

	assert.True(t, g.has(core.NewTriple(ns.Class(ClassVideo), core.RDFType, core.IRI(core.OWLClass))))
	assert.True(t, g.has(core.NewTriple(ns.Class(ClassVideo), core.RDFSSubClassOf, core.IRI(ns.Class(ClassMultimediaFile)))))
	assert.False(t, g.has(core.NewTriple(ns.Class(ClassMultimediaFile), core.RDFSSubClassOf, core.IRI(ns.Class(ClassMultimediaFile)))))
	assert.True(t, g.has(core.NewTriple(ns.Term("hasFrameRate"), core.RDFType, core.IRI(core.OWLDatatypeProp))))
	assert.True(t, g.has(core.NewTriple(ns.Term("hasFrameRate"), core.RDFSRange, core.IRI(core.XSDDecimal))))
}

func TestDeclare_Idempotent(t *testing.T) {
	ns := Default()
	g := setAdder{}

	first := Declare(g, ns)
	snapshot := len(g)
	second := Declare(g, ns)

	assert.Positive(t, first)
	assert.Zero(t, second)
	assert.Len(t, g, snapshot)
}

func TestIsDeclared_OtherNamespace(t *testing.T) {
	g := setAdder{}
	Declare(g, Default())
	assert.False(t, IsDeclared(g.has, MustNamespace("http://other.org/kg/")))
}
