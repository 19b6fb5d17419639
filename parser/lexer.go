package parser

import (
	"errors"
	"fmt"
	"go/constant"
	"go/token"
	"io"
	"text/scanner"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokEOL
	tokIdent
	tokInt
	tokFloat
	tokRune
	tokString
	tokNil
	tokTrue
	tokFalse
	tokPunct
)

var tokenNames = map[tokenKind]string{
	tokEOF:    "end-of-input",
	tokEOL:    "end-of-line",
	tokIdent:  "identifier",
	tokInt:    "int literal",
	tokFloat:  "float literal",
	tokRune:   "rune literal",
	tokString: "string literal",
	tokNil:    `"nil"`,
	tokTrue:   `"true"`,
	tokFalse:  `"false"`,
}

type tok struct {
	kind tokenKind
	r    rune // the punctuation, for tokPunct
	text string
	pos  scanner.Position
}

func (t tok) String() string {
	if t.kind == tokPunct {
		return fmt.Sprintf("%q", string(t.r))
	}
	return tokenNames[t.kind]
}

var keywords = map[string]tokenKind{
	"nil":   tokNil,
	"true":  tokTrue,
	"false": tokFalse,
}

// trailingRunes are the runes after which a newline does not end an
// annotation.
var trailingRunes = map[rune]struct{}{
	',': {},
	'.': {},
	'{': {},
	'(': {},
	':': {},
	'-': {},
	'@': {},
}

type lexer struct {
	err      error
	lastRune rune
	lastPos  scanner.Position
	s        scanner.Scanner
}

func newLexer(filename string, r io.Reader) *lexer {
	var l lexer
	l.s.Init(r)
	l.s.Filename = filename
	l.s.Mode = l.s.Mode &^ (scanner.ScanComments | scanner.SkipComments)
	l.s.Whitespace = 0
	l.s.Error = func(s *scanner.Scanner, msg string) {
		l.err = errors.New(msg)
	}
	return &l
}

// next returns the next token. Once an error is reported, the lexer returns
// tokEOF and l.err is set.
func (l *lexer) next() tok {
	for {
		// whitespace is handled here so that the start position of every
		// token is known; the scanner only tracks end positions
		pos := l.s.Pos()
		r := l.s.Scan()
		text := l.s.TokenText()
		if l.err != nil {
			return tok{kind: tokEOF, pos: pos}
		}
		if r == scanner.EOF {
			return tok{kind: tokEOF, pos: pos}
		}
		if r == ' ' || r == '\t' || r == '\r' {
			continue
		}
		if r == '\n' {
			if _, ok := trailingRunes[l.lastRune]; ok {
				continue
			}
		}
		l.lastRune = r
		l.lastPos = pos

		t := tok{r: r, text: text, pos: pos}
		switch r {
		case scanner.Ident:
			t.kind = tokIdent
			if k, ok := keywords[text]; ok {
				t.kind = k
			}
		case scanner.Int:
			t.kind = tokInt
		case scanner.Float:
			t.kind = tokFloat
		case scanner.Char:
			t.kind = tokRune
		case scanner.String, scanner.RawString:
			t.kind = tokString
		case '\n':
			t.kind = tokEOL
		default:
			t.kind = tokPunct
		}
		return t
	}
}

// literal returns the constant value of a literal token.
func (t tok) literal() constant.Value {
	switch t.kind {
	case tokInt:
		return constant.MakeFromLiteral(t.text, token.INT, 0)
	case tokFloat:
		return constant.MakeFromLiteral(t.text, token.FLOAT, 0)
	case tokRune:
		return constant.MakeFromLiteral(t.text, token.CHAR, 0)
	case tokString:
		return constant.MakeFromLiteral(t.text, token.STRING, 0)
	case tokTrue:
		return constant.MakeBool(true)
	case tokFalse:
		return constant.MakeBool(false)
	}
	return nil
}
