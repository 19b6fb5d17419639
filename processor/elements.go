package processor

import (
	"errors"
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"reflect"
	"sort"

	"github.com/aerisconsulting/catadioptre"
	"github.com/aerisconsulting/catadioptre/parser"
)

// ElementKind is the kind of an annotated element.
type ElementKind int

const (
	// Field is a field of a struct type.
	Field ElementKind = iota
	// Method is a method of a named type, or of an interface type.
	Method
)

func (k ElementKind) String() string {
	switch k {
	case Field:
		return "field"
	case Method:
		return "method"
	}
	return fmt.Sprintf("ElementKind(%d)", int(k))
}

// AnnotatedElement is a field or a method annotated with catadioptre.Testable.
type AnnotatedElement struct {
	// The actual source element: a *types.Var for a field, a *types.Func for a
	// method.
	Obj types.Object
	// The element's name/identifier in the source AST.
	Ident *ast.Ident
	// The AST for the file in which this element is defined.
	File *ast.File
	Kind ElementKind
	// The type declaring the element: the struct type of a field, the
	// receiver base type of a method or the interface type of an interface
	// method.
	Parent *types.TypeName
	// The value of the annotation, with the unspecified switches set.
	Testable catadioptre.Testable
	// The location of the element identifier.
	Pos token.Position

	// The processor context for the package in which this element is defined.
	Context *Context
}

// Field returns the element as a struct field, or nil if it is a method.
func (e *AnnotatedElement) Field() *types.Var {
	v, _ := e.Obj.(*types.Var)
	return v
}

// Method returns the element as a method, or nil if it is a field.
func (e *AnnotatedElement) Method() *types.Func {
	f, _ := e.Obj.(*types.Func)
	return f
}

// GetDeclaringFilename gets the name of the file that declared this element.
func (e *AnnotatedElement) GetDeclaringFilename() string {
	return e.Pos.Filename
}

func (e *AnnotatedElement) String() string {
	return fmt.Sprintf("%s %s of %s", e.Kind, e.Obj.Name(), e.Parent.Name())
}

// DeclaringType is a type declaring annotated elements.
type DeclaringType struct {
	Obj *types.TypeName
	Pos token.Position
	// The annotated elements, in the order they are encountered in the
	// sources.
	Members []*AnnotatedElement
}

// Named returns the declared type.
func (t *DeclaringType) Named() *types.Named {
	n, _ := t.Obj.Type().(*types.Named)
	return n
}

// IsInterface reports whether the declared type is an interface.
func (t *DeclaringType) IsInterface() bool {
	return types.IsInterface(t.Obj.Type())
}

func sortDeclaringTypes(dts []*DeclaringType) {
	sort.SliceStable(dts, func(i, j int) bool {
		pi, pj := dts[i].Pos, dts[j].Pos
		if pi.Filename != pj.Filename {
			return pi.Filename < pj.Filename
		}
		return pi.Offset < pj.Offset
	})
}

// reifyTestable returns the catadioptre.Testable value that a describes. A
// bare annotation sets every switch. The struct form only accepts boolean
// literals for the fields of catadioptre.Testable.
func reifyTestable(a parser.Annotation, adjuster posAdjuster) (catadioptre.Testable, error) {
	t := catadioptre.DefaultTestable()
	if a.Value == nil {
		return t, nil
	}
	agg, ok := a.Value.(parser.AggregateNode)
	if !ok {
		return t, NewErrorWithPosition(adjuster.adjustPosition(a.Value.Pos()),
			errors.New("Testable must be given a struct value, such as @Testable{Setter: false}"))
	}
	if err := reifyStruct(reflect.ValueOf(&t).Elem(), agg, adjuster); err != nil {
		return t, err
	}
	return t, nil
}

func reifyStruct(target reflect.Value, agg parser.AggregateNode, adjuster posAdjuster) error {
	seen := map[string]struct{}{}
	for _, e := range agg.Contents {
		pos := adjuster.adjustPosition(e.Pos())
		if !e.HasKey {
			return NewErrorWithPosition(pos, errors.New("struct values must name their fields"))
		}
		ref, ok := e.Key.(parser.RefNode)
		if !ok || ref.Ident.PackageAlias != "" {
			return NewErrorWithPosition(pos, errors.New("struct field name must be an identifier"))
		}
		name := ref.Ident.Name
		index, err := findField(name, target.Type())
		if err != nil {
			return NewErrorWithPosition(pos, err)
		}
		if _, ok := seen[name]; ok {
			return NewErrorWithPosition(pos, fmt.Errorf("field %s is set more than once", name))
		}
		seen[name] = struct{}{}

		field := target.Field(index)
		lit, ok := e.Value.(parser.LiteralNode)
		if !ok || lit.Val == nil || field.Kind() != reflect.Bool || lit.Val.Kind() != constant.Bool {
			return NewErrorWithPosition(adjuster.adjustPosition(e.Value.Pos()),
				fmt.Errorf("value of field %s must be a %s literal", name, field.Type()))
		}
		field.SetBool(constant.BoolVal(lit.Val))
	}
	return nil
}

func findField(name string, target reflect.Type) (int, error) {
	for i := 0; i < target.NumField(); i++ {
		if target.Field(i).Name == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s has no field named %q", target.Name(), name)
}
