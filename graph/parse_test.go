package graph

import (
	"strings"
	"testing"

	"github.com/poiesic/mediakg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handWritten = `# media catalogue
@prefix ex: <http://example.org/multimedia#> .
PREFIX xsd: <http://www.w3.org/2001/XMLSchema#>
@base <http://example.org/files/> .

ex:clip1 a ex:Video ;
    ex:hasFileURI <clip1.mp4> ;       # resolved against base
    ex:hasDurationSeconds 12.50 ;
    ex:hasFrameRate "25"^^xsd:decimal ;
    ex:hasCaption "one", 'two', """multi
line""" ;
    ex:hasWidth +0640 ;
    .

[] ex:hasCaption "anonymous"@EN-gb .
_:n1 ex:hasSizeBytes 10 .
`

func parseString(t *testing.T, src string, format Format) []core.Triple {
	t.Helper()
	g, err := Read(strings.NewReader(src), format, WithPermissive())
	require.NoError(t, err)
	return g.Triples()
}

func TestRead_HandWrittenTurtle(t *testing.T) {
	triples := parseString(t, handWritten, FormatTurtle)

	ex := "http://example.org/multimedia#"
	clip := ex + "clip1"
	want := []core.Triple{
		core.NewTriple(clip, core.RDFType, core.IRI(ex+"Video")),
		core.NewTriple(clip, ex+"hasFileURI", core.IRI("http://example.org/files/clip1.mp4")),
		core.NewTriple(clip, ex+"hasDurationSeconds", core.Literal("12.5", core.XSDDecimal)),
		core.NewTriple(clip, ex+"hasFrameRate", core.Literal("25.0", core.XSDDecimal)),
		core.NewTriple(clip, ex+"hasCaption", core.Literal("one", "")),
		core.NewTriple(clip, ex+"hasCaption", core.Literal("two", "")),
		core.NewTriple(clip, ex+"hasCaption", core.Literal("multi\nline", "")),
		core.NewTriple(clip, ex+"hasWidth", core.Literal("640", core.XSDInteger)),
		{Subject: core.Blank("anon1"), Predicate: core.IRI(ex + "hasCaption"), Object: core.LangLiteral("anonymous", "en-gb")},
		{Subject: core.Blank("n1"), Predicate: core.IRI(ex + "hasSizeBytes"), Object: core.Literal("10", core.XSDInteger)},
	}
	assert.ElementsMatch(t, want, triples)
}

func TestRead_NumbersAndBooleans(t *testing.T) {
	src := `@prefix : <http://x/#> .
:s :p 1, -2, 3.25, .5, 1e3, 2.5E-1, true, false .`
	triples := parseString(t, src, FormatTurtle)

	var objects []core.Term
	for _, tr := range triples {
		objects = append(objects, tr.Object)
	}
	assert.ElementsMatch(t, []core.Term{
		core.Literal("1", core.XSDInteger),
		core.Literal("-2", core.XSDInteger),
		core.Literal("3.25", core.XSDDecimal),
		core.Literal("0.5", core.XSDDecimal),
		core.Literal("1E+03", core.XSDDouble),
		core.Literal("2.5E-01", core.XSDDouble),
		core.Literal("true", core.XSDBoolean),
		core.Literal("false", core.XSDBoolean),
	}, objects)
}

func TestRead_Escapes(t *testing.T) {
	src := `<http://x/s> <http://x/p> "tab\there \"q\" é \U0001F600" .
<http://x/s\u0020t> <http://x/p> "x" .`
	triples := parseString(t, src, FormatNTriples)
	require.Len(t, triples, 2)
	assert.Equal(t, "tab\there \"q\" é 😀", triples[0].Object.Value)
	assert.Equal(t, "http://x/s t", triples[1].Subject.Value)
}

func TestRead_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		format Format
		line   int
	}{
		{"missing dot", "<http://x/s> <http://x/p> <http://x/o>", FormatTurtle, 1},
		{"undefined prefix", "\n\nfoo:s foo:p foo:o .", FormatTurtle, 3},
		{"unterminated string", `<http://x/s> <http://x/p> "abc .`, FormatTurtle, 1},
		{"line break in short string", "<http://x/s> <http://x/p> \"a\nb\" .", FormatTurtle, 1},
		{"collection", "@prefix : <http://x/#> .\n:s :p (1 2) .", FormatTurtle, 2},
		{"directive in ntriples", "@prefix : <http://x/#> .", FormatNTriples, 1},
		{"bad escape", `<http://x/s> <http://x/p> "\q" .`, FormatTurtle, 1},
		{"literal subject", `"s" <http://x/p> <http://x/o> .`, FormatTurtle, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.src), tt.format)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrSyntax)

			var se *core.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.line, se.Line)
		})
	}
}

func TestRead_UnsupportedFormat(t *testing.T) {
	_, err := Read(strings.NewReader(""), Format("jsonld"))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestRead_EmptyInput(t *testing.T) {
	g, err := Read(strings.NewReader("# nothing here\n"), FormatTurtle)
	require.NoError(t, err)
	assert.Zero(t, g.Len())
	assert.False(t, g.Declared())
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"turtle": FormatTurtle, "TTL": FormatTurtle, "owl": FormatTurtle,
		"ntriples": FormatNTriples, "N-Triples": FormatNTriples, "nt": FormatNTriples,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("rdfxml")
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	assert.Equal(t, FormatNTriples, FormatFromPath("/tmp/kg.NT"))
	assert.Equal(t, FormatTurtle, FormatFromPath("multimedia_kg.owl"))
	assert.Equal(t, FormatTurtle, FormatFromPath("kg.ttl"))
}
