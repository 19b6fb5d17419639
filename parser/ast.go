package parser

import (
	"fmt"
	"go/constant"
	"text/scanner"
)

// ExpressionNode is a node in the AST for annotation values: literals,
// references to identifiers, negated numbers and aggregate values.
type ExpressionNode interface {
	Pos() scanner.Position
}

// LiteralNode is an expression node that represents a literal value, such as a
// number, boolean, or string.
type LiteralNode struct {
	Val constant.Value // nil if literal nil
	pos scanner.Position
}

func (n LiteralNode) Pos() scanner.Position {
	return n.pos
}

// RefNode is an expression node that is a reference to an identifier, which is
// expected to resolve to a constant.
type RefNode struct {
	Ident Identifier
}

func (n RefNode) Pos() scanner.Position {
	return n.Ident.Pos
}

// NegationNode is an expression node that represents a numeric value preceded
// by a unary minus.
type NegationNode struct {
	Value ExpressionNode
	pos   scanner.Position
}

func (n NegationNode) Pos() scanner.Position {
	return n.pos
}

// AggregateNode is an expression node that represents an aggregate value, which
// could be a slice/array, a map, or a struct value.
type AggregateNode struct {
	Contents []Element
	pos      scanner.Position
}

func (n AggregateNode) Pos() scanner.Position {
	return n.pos
}

// Identifier is an AST node that refers to an identifier, possibly qualified
// with a package name/alias.
type Identifier struct {
	PackageAlias string
	Name         string
	Pos          scanner.Position
}

func (id Identifier) String() string {
	if id.PackageAlias == "" {
		return id.Name
	}
	return fmt.Sprintf("%s.%s", id.PackageAlias, id.Name)
}

// Element is an AST node for a component of an aggregate value. Aggregates that
// represent slices do not have keys. Aggregates that represent structs or maps
// have keys.
type Element struct {
	Key    ExpressionNode
	HasKey bool
	Value  ExpressionNode
}

func (e Element) Pos() scanner.Position {
	if e.HasKey {
		return e.Key.Pos()
	}
	return e.Value.Pos()
}

// Annotation is a fully parsed annotation. It identifies the annotation type
// and has an optional value: nil when the annotation is used without one, an
// AggregateNode for the @Name{...} form and any expression for the
// @Name(...) form.
type Annotation struct {
	Type  Identifier
	Value ExpressionNode
	Pos   scanner.Position
}
