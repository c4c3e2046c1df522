package core

import (
	"math/big"
	"strconv"
	"strings"
)

// Well-known vocabulary IRIs.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"

	RDFType          = RDFNamespace + "type"
	RDFLangString    = RDFNamespace + "langString"
	RDFSSubClassOf   = RDFSNamespace + "subClassOf"
	RDFSRange        = RDFSNamespace + "range"
	OWLClass         = OWLNamespace + "Class"
	OWLDatatypeProp  = OWLNamespace + "DatatypeProperty"
	XSDString        = XSDNamespace + "string"
	XSDAnyURI        = XSDNamespace + "anyURI"
	XSDInteger       = XSDNamespace + "integer"
	XSDDecimal       = XSDNamespace + "decimal"
	XSDDouble        = XSDNamespace + "double"
	XSDBoolean       = XSDNamespace + "boolean"
	XSDNonNegInteger = XSDNamespace + "nonNegativeInteger"
)

// TermKind distinguishes the three RDF term shapes.
type TermKind uint8

const (
	TermIRI TermKind = iota + 1
	TermLiteral
	TermBlank
)

// Term is an RDF term. Terms are comparable and usable as map keys.
type Term struct {
	Kind     TermKind
	Value    string // IRI, lexical form or blank node label
	Datatype string // literals only
	Lang     string // literals only
}

// IRI returns an IRI term.
func IRI(v string) Term {
	return Term{Kind: TermIRI, Value: v}
}

// Blank returns a blank node term with the given label.
func Blank(label string) Term {
	return Term{Kind: TermBlank, Value: label}
}

// Literal returns a typed literal with its lexical form canonicalized for
// the numeric and boolean XSD datatypes. An empty datatype means xsd:string.
func Literal(lexical, datatype string) Term {
	if datatype == "" {
		datatype = XSDString
	}
	return Term{Kind: TermLiteral, Value: CanonicalLexical(lexical, datatype), Datatype: datatype}
}

// LangLiteral returns a language-tagged string literal.
func LangLiteral(lexical, lang string) Term {
	return Term{Kind: TermLiteral, Value: lexical, Datatype: RDFLangString, Lang: strings.ToLower(lang)}
}

func (t Term) IsIRI() bool     { return t.Kind == TermIRI }
func (t Term) IsLiteral() bool { return t.Kind == TermLiteral }
func (t Term) IsBlank() bool   { return t.Kind == TermBlank }

// String renders the term in N-Triples syntax.
func (t Term) String() string {
	switch t.Kind {
	case TermIRI:
		return "<" + EscapeIRI(t.Value) + ">"
	case TermBlank:
		return "_:" + t.Value
	case TermLiteral:
		s := `"` + EscapeString(t.Value) + `"`
		if t.Lang != "" {
			return s + "@" + t.Lang
		}
		if t.Datatype != "" && t.Datatype != XSDString {
			return s + "^^<" + EscapeIRI(t.Datatype) + ">"
		}
		return s
	}
	return ""
}

// Triple is a single (subject, predicate, object) statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple builds a triple with IRI subject and predicate.
func NewTriple(subject, predicate string, object Term) Triple {
	return Triple{Subject: IRI(subject), Predicate: IRI(predicate), Object: object}
}

// String renders the triple as one N-Triples statement without the newline.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// Compare orders triples by subject, predicate then object, using their
// N-Triples rendering. It is suitable for slices.SortFunc.
func Compare(a, b Triple) int {
	if c := compareTerm(a.Subject, b.Subject); c != 0 {
		return c
	}
	if c := compareTerm(a.Predicate, b.Predicate); c != 0 {
		return c
	}
	return compareTerm(a.Object, b.Object)
}

func compareTerm(a, b Term) int {
	if a.Kind != b.Kind {
		if a.Kind < b.Kind {
			return -1
		}
		return 1
	}
	if c := strings.Compare(a.Value, b.Value); c != 0 {
		return c
	}
	if c := strings.Compare(a.Datatype, b.Datatype); c != 0 {
		return c
	}
	return strings.Compare(a.Lang, b.Lang)
}

// CanonicalLexical normalizes the lexical form of numeric and boolean
// literals so that equal values compare equal after a serialization round
// trip. Ill-typed values are returned unchanged.
func CanonicalLexical(lexical, datatype string) string {
	switch datatype {
	case XSDInteger, XSDNonNegInteger:
		var n big.Int
		if _, ok := n.SetString(strings.TrimPrefix(strings.TrimSpace(lexical), "+"), 10); ok {
			return n.String()
		}
	case XSDDecimal:
		if d, ok := DecimalLexical(lexical); ok {
			return d
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(lexical), 64); err == nil {
			return FormatDecimal(f)
		}
	case XSDDouble:
		if f, err := strconv.ParseFloat(strings.TrimSpace(lexical), 64); err == nil {
			return strconv.FormatFloat(f, 'E', -1, 64)
		}
	case XSDBoolean:
		switch strings.TrimSpace(lexical) {
		case "true", "1":
			return "true"
		case "false", "0":
			return "false"
		}
	}
	return lexical
}

// FormatDecimal renders f as an xsd:decimal lexical form, always with a
// fractional part.
func FormatDecimal(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// DecimalLexical canonicalizes a plain decimal numeral such as "-012.50"
// without going through floating point, so every digit is kept. ok is false
// for anything but an optional sign, digits and at most one point.
func DecimalLexical(s string) (string, bool) {
	s = strings.TrimSpace(s)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return "", false
	}
	for _, part := range []string{whole, frac} {
		for i := 0; i < len(part); i++ {
			if part[i] < '0' || part[i] > '9' {
				return "", false
			}
		}
	}

	whole = strings.TrimLeft(whole, "0")
	frac = strings.TrimRight(frac, "0")
	if whole == "" && frac == "" {
		return "0.0", true
	}
	if whole == "" {
		whole = "0"
	}
	if frac == "" {
		frac = "0"
	}
	if negative {
		return "-" + whole + "." + frac, true
	}
	return whole + "." + frac, true
}

// EscapeString escapes a literal lexical form for N-Triples and Turtle.
func EscapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r\t\b\f") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeIRI escapes the characters that may not appear between angle brackets.
func EscapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ ") {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\', ' ':
			b.WriteString(`\u00`)
			b.WriteString(strconv.FormatInt(int64(r)>>4, 16))
			b.WriteString(strings.ToUpper(strconv.FormatInt(int64(r)&0xF, 16)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
