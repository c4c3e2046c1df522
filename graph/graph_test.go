package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/poiesic/mediakg/core"
	"github.com/poiesic/mediakg/mapper"
	"github.com/poiesic/mediakg/ontology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDeclared(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	g, err := New(opts...)
	require.NoError(t, err)
	g.DeclareOntology()
	return g
}

func exampleImage() core.Metadata {
	return core.Metadata{
		"file_path": "http://x/img1.jpg",
		"file_name": "image1.jpg",
		"format":    "JPEG",
		"size":      204800,
		"width":     1920,
		"height":    1080,
		"caption":   "An example image",
	}
}

func TestNew_Options(t *testing.T) {
	g, err := New()
	require.NoError(t, err)
	assert.Equal(t, ontology.DefaultNamespace, g.Namespace().IRI())
	assert.Equal(t, "ex", g.Prefix())
	assert.False(t, g.Declared())

	g, err = New(WithNamespace("https://kg.example.com/media/"), WithPrefix("media"))
	require.NoError(t, err)
	assert.Equal(t, "https://kg.example.com/media/", g.Namespace().IRI())
	assert.Equal(t, "media", g.Prefix())

	_, err = New(WithNamespace("relative#"))
	assert.ErrorIs(t, err, core.ErrInvalidNamespace)

	_, err = New(WithPrefix("1bad"))
	assert.Error(t, err)
}

func TestAdd_RequiresDeclaredOntology(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	err = g.Add("img", core.KindImage, nil)
	assert.ErrorIs(t, err, core.ErrNotDeclared)
	var nd *core.NotDeclaredError
	assert.ErrorAs(t, err, &nd)
	assert.Zero(t, g.Len())

	p, err := New(WithPermissive())
	require.NoError(t, err)
	require.NoError(t, p.Add("img", core.KindImage, nil))
	assert.Equal(t, 1, p.Len())
}

func TestDeclareOntology_Idempotent(t *testing.T) {
	g, err := New()
	require.NoError(t, err)

	first := g.DeclareOntology()
	before := g.Triples()
	second := g.DeclareOntology()

	assert.Equal(t, first, g.Len())
	assert.Zero(t, second)
	assert.Equal(t, before, g.Triples())
	assert.True(t, g.Declared())
}

func TestExampleImageScenario(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("example_image_1", core.KindImage, exampleImage()))

	path := filepath.Join(t.TempDir(), "out.ttl")
	require.NoError(t, g.Serialize(path, FormatTurtle))

	loaded, err := Load(path)
	require.NoError(t, err)

	described := loaded.Describe("example_image_1")
	assert.Len(t, described, 8)
	for _, tr := range described {
		for _, absent := range []string{"hasDurationSeconds", "hasFrameRate", "hasSampleRate", "hasChannels", "hasFeatureID", "hasThumbURI"} {
			assert.NotEqual(t, g.Namespace().Term(absent), tr.Predicate.Value)
		}
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "@prefix ex: <http://example.org/multimedia#> .")
	assert.Contains(t, out, "ex:example_image_1 a ex:Image ;")
	assert.Contains(t, out, "ex:hasSizeBytes 204800")
	assert.Contains(t, out, `ex:hasFileURI "http://x/img1.jpg"^^xsd:anyURI`)
}

func TestAdd_NumericCoercion(t *testing.T) {
	g := newDeclared(t)
	base := g.Len()

	require.NoError(t, g.Add("img1", core.KindImage, core.Metadata{"size": "204800"}))
	assert.True(t, g.Has(core.NewTriple(g.Namespace().Term("img1"), g.Namespace().Term("hasSizeBytes"), core.Literal("204800", core.XSDInteger))))

	err := g.Add("img2", core.KindImage, core.Metadata{"file_name": "b.jpg", "size": "abc"})
	assert.ErrorIs(t, err, core.ErrCoercion)
	assert.Empty(t, g.Describe("img2"))
	assert.Equal(t, base+2, g.Len())
}

func TestAdd_SetSemanticsAndAppend(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("v1", core.KindVideo, core.Metadata{"caption": "first"}))
	n := g.Len()

	require.NoError(t, g.Add("v1", core.KindVideo, core.Metadata{"caption": "first"}))
	assert.Equal(t, n, g.Len())

	require.NoError(t, g.Add("v1", core.KindVideo, core.Metadata{"caption": "second"}))
	assert.Equal(t, n+1, g.Len())
	assert.Len(t, g.Describe("v1"), 3)
}

func TestAdd_Reclassification(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("e1", core.KindImage, nil))

	err := g.Add("e1", core.KindAudio, core.Metadata{"channels": 2})
	assert.ErrorIs(t, err, core.ErrReclassification)
	assert.Len(t, g.Describe("e1"), 1)

	class, ok := g.ClassOf("e1")
	require.True(t, ok)
	assert.Equal(t, ontology.ClassImage, class)

	assert.Equal(t, 1, g.Remove("e1"))
	require.NoError(t, g.Add("e1", core.KindAudio, core.Metadata{"channels": 2}))
	class, _ = g.ClassOf("e1")
	assert.Equal(t, ontology.ClassAudio, class)
}

func TestAdd_UnknownKindFallsBackToRoot(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("x", core.Kind("archive"), nil))

	class, ok := g.ClassOf("x")
	require.True(t, ok)
	assert.Equal(t, ontology.ClassMultimediaFile, class)
}

func TestQueries(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("a1", core.KindAudio, core.Metadata{"feature_id": "fv_1"}))
	require.NoError(t, g.Add("i1", core.KindImage, core.Metadata{"feature_id": "fv_2"}))
	require.NoError(t, g.Add("i2", core.KindImage, core.Metadata{"feature_id": "fv_2"}))
	require.NoError(t, g.Add("t1", core.KindText, nil))

	assert.Equal(t, []string{"i1", "i2"}, g.EntitiesOfClass(ontology.ClassImage))
	assert.Equal(t, []string{"a1", "i1", "i2", "t1"}, g.EntitiesOfClass(ontology.ClassMultimediaFile))
	assert.Empty(t, g.EntitiesOfClass(ontology.ClassThumbnail))

	assert.Equal(t, []string{"i1", "i2"}, g.SubjectsWithFeature("fv_2"))
	assert.Equal(t, []string{"a1"}, g.SubjectsWithFeature("fv_1"))
	assert.Empty(t, g.SubjectsWithFeature("fv_3"))

	_, ok := g.ClassOf("missing")
	assert.False(t, ok)

	v, ok := g.Value("i1", core.KeyFeatureID)
	assert.True(t, ok)
	assert.Equal(t, "fv_2", v)
	_, ok = g.Value("t1", core.KeyFeatureID)
	assert.False(t, ok)
	_, ok = g.Value("i1", "exif")
	assert.False(t, ok)
}

func TestMerge(t *testing.T) {
	a := newDeclared(t)
	b := newDeclared(t)
	require.NoError(t, a.Add("a1", core.KindAudio, nil))
	require.NoError(t, b.Add("b1", core.KindVideo, nil))

	added, err := a.Merge(b)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, []string{"a1", "b1"}, a.EntitiesOfClass(ontology.ClassMultimediaFile))

	c := newDeclared(t)
	require.NoError(t, c.Add("a1", core.KindImage, nil))
	_, err = a.Merge(c)
	assert.ErrorIs(t, err, core.ErrReclassification)

	other := newDeclared(t, WithNamespace("http://other.org/kg#"))
	_, err = a.Merge(other)
	assert.ErrorIs(t, err, core.ErrInvalidNamespace)
}

func TestConcurrentAdd(t *testing.T) {
	g := newDeclared(t)
	base := g.Len()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := "e" + strings.Repeat("x", i)
			assert.NoError(t, g.Add(id, core.KindText, core.Metadata{"size": i}))
		}()
	}
	wg.Wait()

	assert.Equal(t, base+100, g.Len())
}

func TestReplace(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("img_1", core.KindImage, exampleImage()))
	base := g.Len()

	entry, err := mapper.Map(g.Namespace(), "img_1", core.KindImage, core.Metadata{"width": 640})
	require.NoError(t, err)
	removed, err := g.Replace(entry)
	require.NoError(t, err)
	assert.Equal(t, 8, removed)
	assert.Equal(t, base-8+2, g.Len())
	width, ok := g.Value("img_1", core.KeyWidth)
	require.True(t, ok)
	assert.Equal(t, "640", width)
	_, ok = g.Value("img_1", core.KeyCaption)
	assert.False(t, ok)

	entry, err = mapper.Map(g.Namespace(), "img_1", core.KindVideo, nil)
	require.NoError(t, err)
	_, err = g.Replace(entry)
	require.NoError(t, err)
	class, ok := g.ClassOf("img_1")
	require.True(t, ok)
	assert.Equal(t, ontology.ClassVideo, class)

	undeclared, err := New()
	require.NoError(t, err)
	_, err = undeclared.Replace(entry)
	assert.ErrorIs(t, err, core.ErrNotDeclared)
	assert.Zero(t, undeclared.Len())
}

func TestReplace_ReadersNeverSeeGap(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("img_1", core.KindImage, exampleImage()))

	var (
		wg      sync.WaitGroup
		missing atomic.Int64
		stop    = make(chan struct{})
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, ok := g.ClassOf("img_1"); !ok {
				missing.Add(1)
			}
		}
	}()

	for i := range 200 {
		entry, err := mapper.Map(g.Namespace(), "img_1", core.KindImage, core.Metadata{"width": i})
		require.NoError(t, err)
		_, err = g.Replace(entry)
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()

	assert.Zero(t, missing.Load())
}

func TestRoundTrip(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("example_image_1", core.KindImage, exampleImage()))
	require.NoError(t, g.Add("clip", core.KindVideo, core.Metadata{
		"duration":  12.5,
		"framerate": "29.970",
		"caption":   "Quote \" backslash \\ newline\n tab\t unicode é 日本",
		"file_path": "file:///media/my clip.mp4",
	}))
	require.NoError(t, g.Add("odd", core.Kind("archive"), core.Metadata{"thumb_path": "thumbs/odd.png", "feature_id": "fv_abc"}))
	g.AddTriple(core.Triple{Subject: core.Blank("b0"), Predicate: core.IRI(core.RDFSNamespace + "label"), Object: core.LangLiteral("étiquette", "fr")})
	g.AddTriple(core.NewTriple(g.Namespace().Term("clip"), core.RDFSNamespace+"seeAlso", core.Blank("b0")))
	g.AddTriple(core.NewTriple("http://other.org/x.y", core.RDFSNamespace+"comment", core.Literal("1", core.XSDBoolean)))

	for _, format := range []Format{FormatTurtle, FormatNTriples} {
		t.Run(string(format), func(t *testing.T) {
			ext := ".ttl"
			if format == FormatNTriples {
				ext = ".nt"
			}
			path := filepath.Join(t.TempDir(), "graph"+ext)
			require.NoError(t, g.Serialize(path, ""))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, g.Triples(), loaded.Triples())
			assert.True(t, g.Equal(loaded))
			assert.True(t, loaded.Declared())
			assert.Equal(t, g.Namespace(), loaded.Namespace())
		})
	}
}

func TestFromTriples(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("example_image_1", core.KindImage, exampleImage()))

	rebuilt, err := FromTriples(g.Triples(), WithNamespace(g.Namespace().IRI()))
	require.NoError(t, err)
	assert.True(t, g.Equal(rebuilt))
	assert.True(t, rebuilt.Declared())
	class, ok := rebuilt.ClassOf("example_image_1")
	require.True(t, ok)
	assert.Equal(t, ontology.ClassImage, class)

	partial, err := FromTriples(g.Describe("example_image_1"))
	require.NoError(t, err)
	assert.False(t, partial.Declared())
}

func TestRoundTrip_CustomNamespace(t *testing.T) {
	g := newDeclared(t, WithNamespace("https://kg.example.com/media/"), WithPrefix("media"))
	require.NoError(t, g.Add("s1", core.KindAudio, core.Metadata{"sample_rate": 48000}))

	var buf bytes.Buffer
	require.NoError(t, g.Encode(&buf, FormatTurtle))
	assert.Contains(t, buf.String(), "@prefix media: <https://kg.example.com/media/> .")

	// without the prefix option the namespace comes from the declared root class
	loaded, err := Read(&buf, FormatTurtle)
	require.NoError(t, err)
	assert.Equal(t, "https://kg.example.com/media/", loaded.Namespace().IRI())
	assert.True(t, loaded.Equal(g))

	class, ok := loaded.ClassOf("s1")
	require.True(t, ok)
	assert.Equal(t, ontology.ClassAudio, class)
}

func TestSerialize_Failure(t *testing.T) {
	g := newDeclared(t)
	require.NoError(t, g.Add("img", core.KindImage, exampleImage()))
	before := g.Triples()

	path := filepath.Join(t.TempDir(), "missing", "out.ttl")
	err := g.Serialize(path, FormatTurtle)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSerialization)

	var se *core.SerializationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "create", se.Op)
	assert.Equal(t, before, g.Triples())

	err = g.Serialize(filepath.Join(t.TempDir(), "out.xml"), Format("rdfxml"))
	assert.ErrorIs(t, err, core.ErrSerialization)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestSerialize_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kg.ttl")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	g := newDeclared(t)
	require.NoError(t, g.Serialize(path, FormatTurtle))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "kg.ttl", entries[0].Name())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, loaded.Equal(g))
}
