package parser

import (
	"fmt"
	"io"
	"text/scanner"
)

// ParseError describes a syntax error in annotations.
type ParseError struct {
	err error
	pos scanner.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.pos.Line, e.pos.Column, e.err)
}

func (e *ParseError) Underlying() error {
	return e.err
}

func (e *ParseError) Pos() scanner.Position {
	return e.pos
}

// ParseAnnotations parses the annotations in r, one per line:
//
//	@Name
//	@pkg.Name{Key: value, ...}
//	@Name(value)
//
// Blank lines between annotations are allowed. An annotation spans several
// lines when a line ends with a rune that leaves it open, such as '{' or ','.
func ParseAnnotations(filename string, r io.Reader) ([]Annotation, *ParseError) {
	p := parser{l: newLexer(filename, r)}
	p.advance()
	var res []Annotation
	for {
		for p.cur.kind == tokEOL {
			p.advance()
		}
		if p.cur.kind == tokEOF {
			break
		}
		a, err := p.annotation()
		if err == nil {
			err = p.endOfAnnotation()
		}
		if err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	if p.l.err != nil {
		return nil, &ParseError{err: p.l.err, pos: p.l.lastPos}
	}
	return res, nil
}

type parser struct {
	l     *lexer
	cur   tok
	depth int // number of enclosing braces and parentheses
}

func (p *parser) advance() {
	p.cur = p.l.next()
	for p.depth > 0 && p.cur.kind == tokEOL {
		p.cur = p.l.next()
	}
}

func (p *parser) errorf(format string, args ...interface{}) *ParseError {
	if p.l.err != nil {
		return &ParseError{err: p.l.err, pos: p.l.lastPos}
	}
	return &ParseError{err: fmt.Errorf(format, args...), pos: p.cur.pos}
}

func (p *parser) unexpected(expecting string) *ParseError {
	return p.errorf("syntax error: unexpected %v, expecting %s", p.cur, expecting)
}

func (p *parser) isPunct(r rune) bool {
	return p.cur.kind == tokPunct && p.cur.r == r
}

func (p *parser) expect(r rune) (scanner.Position, *ParseError) {
	if !p.isPunct(r) {
		return scanner.Position{}, p.unexpected(fmt.Sprintf("%q", string(r)))
	}
	pos := p.cur.pos
	p.advance()
	return pos, nil
}

func (p *parser) endOfAnnotation() *ParseError {
	switch p.cur.kind {
	case tokEOL:
		p.advance()
		return nil
	case tokEOF:
		if p.l.err != nil {
			return p.errorf("")
		}
		return nil
	}
	return p.unexpected("end-of-line")
}

func (p *parser) annotation() (Annotation, *ParseError) {
	pos, err := p.expect('@')
	if err != nil {
		return Annotation{}, err
	}
	id, err := p.identifier()
	if err != nil {
		return Annotation{}, err
	}
	a := Annotation{Type: id, Pos: pos}
	switch {
	case p.isPunct('{'):
		a.Value, err = p.aggregate()
	case p.isPunct('('):
		p.depth++
		p.advance()
		a.Value, err = p.value()
		if err == nil {
			p.depth--
			_, err = p.expect(')')
		}
	}
	if err != nil {
		return Annotation{}, err
	}
	return a, nil
}

func (p *parser) identifier() (Identifier, *ParseError) {
	if p.cur.kind != tokIdent {
		return Identifier{}, p.unexpected("identifier")
	}
	id := Identifier{Name: p.cur.text, Pos: p.cur.pos}
	p.advance()
	if p.isPunct('.') {
		p.advance()
		if p.cur.kind != tokIdent {
			return Identifier{}, p.unexpected("identifier")
		}
		id.PackageAlias = id.Name
		id.Name = p.cur.text
		p.advance()
	}
	return id, nil
}

func (p *parser) aggregate() (ExpressionNode, *ParseError) {
	p.depth++
	pos, err := p.expect('{')
	if err != nil {
		return nil, err
	}
	agg := AggregateNode{pos: pos}
	for !p.isPunct('}') {
		e, err := p.element()
		if err != nil {
			return nil, err
		}
		agg.Contents = append(agg.Contents, e)
		if !p.isPunct(',') {
			break
		}
		p.advance()
	}
	p.depth--
	if _, err := p.expect('}'); err != nil {
		return nil, err
	}
	return agg, nil
}

func (p *parser) element() (Element, *ParseError) {
	v, err := p.value()
	if err != nil {
		return Element{}, err
	}
	if !p.isPunct(':') {
		return Element{Value: v}, nil
	}
	p.advance()
	val, err := p.value()
	if err != nil {
		return Element{}, err
	}
	return Element{Key: v, HasKey: true, Value: val}, nil
}

func (p *parser) value() (ExpressionNode, *ParseError) {
	switch p.cur.kind {
	case tokInt, tokFloat, tokRune, tokString, tokTrue, tokFalse, tokNil:
		n := LiteralNode{Val: p.cur.literal(), pos: p.cur.pos}
		p.advance()
		return n, nil
	case tokIdent:
		id, err := p.identifier()
		if err != nil {
			return nil, err
		}
		return RefNode{Ident: id}, nil
	case tokPunct:
		switch p.cur.r {
		case '{':
			return p.aggregate()
		case '-':
			pos := p.cur.pos
			p.advance()
			if p.cur.kind != tokInt && p.cur.kind != tokFloat {
				return nil, p.unexpected("number")
			}
			n := NegationNode{Value: LiteralNode{Val: p.cur.literal(), pos: p.cur.pos}, pos: pos}
			p.advance()
			return n, nil
		}
	}
	return nil, p.unexpected("value")
}
