package graph

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/mediakg/core"
)

// parser reads the Turtle subset the writer produces plus the common
// hand-written forms: SPARQL-style directives, long strings, anonymous
// blank nodes and bare literals. N-Triples is read by the same parser with
// directives disabled.
type parser struct {
	src      string
	pos      int
	line     int
	ntriples bool
	prefixes map[string]string
	base     *url.URL
	anon     int
	emit     func(core.Triple)
}

func newParser(src string, format Format, emit func(core.Triple)) *parser {
	return &parser{
		src:      src,
		line:     1,
		ntriples: format == FormatNTriples,
		prefixes: make(map[string]string),
		emit:     emit,
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &core.SyntaxError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) peekAt(off int) byte {
	if p.pos+off >= len(p.src) {
		return 0
	}
	return p.src[p.pos+off]
}

func (p *parser) skipWS() {
	for !p.eof() {
		switch c := p.src[p.pos]; c {
		case ' ', '\t', '\r':
			p.pos++
		case '\n':
			p.line++
			p.pos++
		case '#':
			for !p.eof() && p.src[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *parser) expect(c byte) error {
	p.skipWS()
	if p.peek() != c {
		return p.errorf("expected %q, found %s", c, p.found())
	}
	p.pos++
	return nil
}

func (p *parser) found() string {
	if p.eof() {
		return "end of input"
	}
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])
	return strconv.QuoteRune(r)
}

// keyword reports whether the input continues with word (case-insensitive
// when fold is set) followed by a delimiter, consuming it if so.
func (p *parser) keyword(word string, fold bool) bool {
	end := p.pos + len(word)
	if end > len(p.src) {
		return false
	}
	got := p.src[p.pos:end]
	if fold && !strings.EqualFold(got, word) || !fold && got != word {
		return false
	}
	if end < len(p.src) && !isDelimiter(p.src[end]) {
		return false
	}
	p.pos = end
	return true
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '<', '"', '\'', '[', ']', '(', ')', ';', ',', '.', '#':
		return true
	}
	return false
}

func (p *parser) parse() error {
	for {
		p.skipWS()
		if p.eof() {
			return nil
		}
		if err := p.statement(); err != nil {
			return err
		}
	}
}

func (p *parser) statement() error {
	if !p.ntriples {
		switch {
		case p.peek() == '@':
			p.pos++
			switch {
			case p.keyword("prefix", false):
				if err := p.prefixDirective(); err != nil {
					return err
				}
			case p.keyword("base", false):
				if err := p.baseDirective(); err != nil {
					return err
				}
			default:
				return p.errorf("unknown directive")
			}
			return p.expect('.')
		case p.keyword("PREFIX", true):
			return p.prefixDirective()
		case p.keyword("BASE", true):
			return p.baseDirective()
		}
	}

	if err := p.triples(); err != nil {
		return err
	}
	return p.expect('.')
}

func (p *parser) prefixDirective() error {
	p.skipWS()
	start := p.pos
	for !p.eof() && p.peek() != ':' {
		if !isNameByte(p.peek()) {
			return p.errorf("invalid prefix name")
		}
		p.pos++
	}
	name := p.src[start:p.pos]
	if err := p.expect(':'); err != nil {
		return err
	}
	p.skipWS()
	iri, err := p.iriRef()
	if err != nil {
		return err
	}
	p.prefixes[name] = iri
	return nil
}

func (p *parser) baseDirective() error {
	p.skipWS()
	iri, err := p.iriRef()
	if err != nil {
		return err
	}
	u, err := url.Parse(iri)
	if err != nil {
		return p.errorf("invalid base IRI: %v", err)
	}
	p.base = u
	return nil
}

func (p *parser) triples() error {
	p.skipWS()
	if p.peek() == '[' {
		subject, err := p.blankPropertyList()
		if err != nil {
			return err
		}
		p.skipWS()
		if p.peek() == '.' {
			return nil
		}
		return p.predicateObjectList(subject)
	}

	subject, err := p.subject()
	if err != nil {
		return err
	}
	return p.predicateObjectList(subject)
}

func (p *parser) subject() (core.Term, error) {
	p.skipWS()
	switch p.peek() {
	case '_':
		return p.blankLabel()
	case '(':
		return core.Term{}, p.errorf("collections are not supported")
	}
	iri, err := p.iri()
	if err != nil {
		return core.Term{}, err
	}
	return core.IRI(iri), nil
}

func (p *parser) predicateObjectList(subject core.Term) error {
	for {
		p.skipWS()
		predicate, err := p.verb()
		if err != nil {
			return err
		}
		if err := p.objectList(subject, predicate); err != nil {
			return err
		}

		p.skipWS()
		if p.peek() != ';' {
			return nil
		}
		for p.peek() == ';' {
			p.pos++
			p.skipWS()
		}
		if c := p.peek(); c == '.' || c == ']' || p.eof() {
			return nil
		}
	}
}

func (p *parser) objectList(subject, predicate core.Term) error {
	for {
		object, err := p.object()
		if err != nil {
			return err
		}
		p.emit(core.Triple{Subject: subject, Predicate: predicate, Object: object})

		p.skipWS()
		if p.peek() != ',' {
			return nil
		}
		p.pos++
	}
}

func (p *parser) verb() (core.Term, error) {
	if p.keyword("a", false) {
		return core.IRI(core.RDFType), nil
	}
	iri, err := p.iri()
	if err != nil {
		return core.Term{}, err
	}
	return core.IRI(iri), nil
}

func (p *parser) object() (core.Term, error) {
	p.skipWS()
	switch c := p.peek(); {
	case c == '<':
		iri, err := p.iriRef()
		return core.IRI(iri), err
	case c == '_':
		return p.blankLabel()
	case c == '[':
		return p.blankPropertyList()
	case c == '"' || c == '\'':
		return p.literal()
	case c == '+' || c == '-' || c == '.' || c >= '0' && c <= '9':
		return p.number()
	case c == '(':
		return core.Term{}, p.errorf("collections are not supported")
	case c == 0:
		return core.Term{}, p.errorf("unexpected end of input")
	}

	if p.keyword("true", false) {
		return core.Literal("true", core.XSDBoolean), nil
	}
	if p.keyword("false", false) {
		return core.Literal("false", core.XSDBoolean), nil
	}
	iri, err := p.prefixedName()
	return core.IRI(iri), err
}

func (p *parser) iri() (string, error) {
	p.skipWS()
	if p.peek() == '<' {
		return p.iriRef()
	}
	return p.prefixedName()
}

func (p *parser) iriRef() (string, error) {
	if p.peek() != '<' {
		return "", p.errorf("expected IRI, found %s", p.found())
	}
	p.pos++

	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated IRI")
		}
		c := p.src[p.pos]
		switch c {
		case '>':
			p.pos++
			return p.resolve(b.String())
		case '\n', ' ', '<', '"':
			return "", p.errorf("invalid character %q in IRI", c)
		case '\\':
			r, err := p.unicodeEscape()
			if err != nil {
				return "", err
			}
			b.WriteRune(r)
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) resolve(iri string) (string, error) {
	if p.base == nil {
		return iri, nil
	}
	ref, err := url.Parse(iri)
	if err != nil {
		return "", p.errorf("invalid IRI %q: %v", iri, err)
	}
	if ref.IsAbs() {
		return iri, nil
	}
	return p.base.ResolveReference(ref).String(), nil
}

// unicodeEscape reads \uXXXX or \UXXXXXXXX at the current position.
func (p *parser) unicodeEscape() (rune, error) {
	if p.peekAt(1) != 'u' && p.peekAt(1) != 'U' {
		return 0, p.errorf("invalid escape")
	}
	n := 4
	if p.peekAt(1) == 'U' {
		n = 8
	}
	start := p.pos + 2
	if start+n > len(p.src) {
		return 0, p.errorf("truncated unicode escape")
	}
	v, err := strconv.ParseUint(p.src[start:start+n], 16, 32)
	if err != nil {
		return 0, p.errorf("invalid unicode escape")
	}
	p.pos = start + n
	return rune(v), nil
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '.' || c >= 0x80
}

func (p *parser) prefixedName() (string, error) {
	start := p.pos
	for !p.eof() && isNameByte(p.peek()) {
		p.pos++
	}
	if p.peek() != ':' {
		p.pos = start
		return "", p.errorf("expected IRI or prefixed name, found %s", p.found())
	}
	prefix := p.src[start:p.pos]
	p.pos++

	ns, ok := p.prefixes[prefix]
	if !ok {
		return "", p.errorf("undefined prefix %q", prefix)
	}

	var local strings.Builder
	for !p.eof() {
		c := p.peek()
		switch {
		case isNameByte(c) || c == ':' || c == '%':
			local.WriteByte(c)
			p.pos++
		case c == '\\' && p.pos+1 < len(p.src):
			local.WriteByte(p.src[p.pos+1])
			p.pos += 2
		default:
			return p.finishLocal(ns, local.String())
		}
	}
	return p.finishLocal(ns, local.String())
}

// finishLocal gives back trailing dots, which terminate the statement.
func (p *parser) finishLocal(ns, local string) (string, error) {
	for strings.HasSuffix(local, ".") {
		local = local[:len(local)-1]
		p.pos--
	}
	return ns + local, nil
}

func (p *parser) blankLabel() (core.Term, error) {
	if p.peekAt(1) != ':' {
		return core.Term{}, p.errorf("expected blank node label")
	}
	p.pos += 2
	start := p.pos
	for !p.eof() && isNameByte(p.peek()) {
		p.pos++
	}
	for p.pos > start && p.src[p.pos-1] == '.' {
		p.pos--
	}
	if p.pos == start {
		return core.Term{}, p.errorf("empty blank node label")
	}
	return core.Blank(p.src[start:p.pos]), nil
}

func (p *parser) blankPropertyList() (core.Term, error) {
	p.pos++ // '['
	p.anon++
	node := core.Blank("anon" + strconv.Itoa(p.anon))

	p.skipWS()
	if p.peek() != ']' {
		if err := p.predicateObjectList(node); err != nil {
			return core.Term{}, err
		}
	}
	if err := p.expect(']'); err != nil {
		return core.Term{}, err
	}
	return node, nil
}

func (p *parser) literal() (core.Term, error) {
	lexical, err := p.quoted()
	if err != nil {
		return core.Term{}, err
	}

	switch {
	case p.peek() == '@':
		p.pos++
		start := p.pos
		for !p.eof() {
			c := p.peek()
			if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' {
				p.pos++
				continue
			}
			break
		}
		if p.pos == start {
			return core.Term{}, p.errorf("empty language tag")
		}
		return core.LangLiteral(lexical, p.src[start:p.pos]), nil
	case p.peek() == '^' && p.peekAt(1) == '^':
		p.pos += 2
		datatype, err := p.iri()
		if err != nil {
			return core.Term{}, err
		}
		return core.Literal(lexical, datatype), nil
	}
	return core.Literal(lexical, core.XSDString), nil
}

func (p *parser) quoted() (string, error) {
	q := p.peek()
	long := p.peekAt(1) == q && p.peekAt(2) == q
	if long {
		p.pos += 3
	} else {
		p.pos++
	}

	var b strings.Builder
	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}
		c := p.src[p.pos]
		switch {
		case c == q && !long:
			p.pos++
			return b.String(), nil
		case c == q && long && p.peekAt(1) == q && p.peekAt(2) == q:
			p.pos += 3
			return b.String(), nil
		case c == '\n':
			if !long {
				return "", p.errorf("line break in string")
			}
			p.line++
			b.WriteByte(c)
			p.pos++
		case c == '\\':
			if err := p.stringEscape(&b); err != nil {
				return "", err
			}
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
}

func (p *parser) stringEscape(b *strings.Builder) error {
	var r byte
	switch p.peekAt(1) {
	case 't':
		r = '\t'
	case 'b':
		r = '\b'
	case 'n':
		r = '\n'
	case 'r':
		r = '\r'
	case 'f':
		r = '\f'
	case '"':
		r = '"'
	case '\'':
		r = '\''
	case '\\':
		r = '\\'
	case 'u', 'U':
		u, err := p.unicodeEscape()
		if err != nil {
			return err
		}
		b.WriteRune(u)
		return nil
	default:
		return p.errorf("invalid string escape")
	}
	b.WriteByte(r)
	p.pos += 2
	return nil
}

func (p *parser) number() (core.Term, error) {
	start := p.pos
	if c := p.peek(); c == '+' || c == '-' {
		p.pos++
	}
	digits := p.digits()

	datatype := core.XSDInteger
	if p.peek() == '.' && isDigit(p.peekAt(1)) {
		p.pos++
		digits += p.digits()
		datatype = core.XSDDecimal
	}
	if digits == 0 {
		p.pos = start
		return core.Term{}, p.errorf("invalid number")
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if p.digits() == 0 {
			return core.Term{}, p.errorf("invalid exponent")
		}
		datatype = core.XSDDouble
	}
	return core.Literal(p.src[start:p.pos], datatype), nil
}

func (p *parser) digits() int {
	n := 0
	for isDigit(p.peek()) {
		p.pos++
		n++
	}
	return n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
