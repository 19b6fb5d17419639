package generator

import (
	"go/types"

	"github.com/aerisconsulting/catadioptre/processor"
)

// Visibility is how widely a type can be referenced from the package of an
// annotated element.
type Visibility int

const (
	// Hidden types cannot be named from the generated file: types declared in
	// a function, or unexported types of another package.
	Hidden Visibility = iota
	// Package types can be named from the declaring package only.
	Package
	// Public types can be named from any package.
	Public
)

func (v Visibility) String() string {
	switch v {
	case Hidden:
		return "hidden"
	case Package:
		return "package"
	default:
		return "public"
	}
}

// LowestVisibility returns the lowest visibility among the type declaring e
// and all the types its proxies have to name: the type of a field, or the
// parameter and result types of a method.
func LowestVisibility(e *processor.AnnotatedElement) Visibility {
	c := visibilityChecker{pkg: e.Parent.Pkg(), visiting: map[*types.TypeParam]bool{}}
	v := c.typeName(e.Parent)
	if v == Hidden {
		return v
	}
	if n, ok := e.Parent.Type().(*types.Named); ok {
		v = min(v, c.typeParams(n.TypeParams()))
	}
	switch obj := e.Obj.(type) {
	case *types.Var:
		v = min(v, c.check(obj.Type()))
	case *types.Func:
		sig := obj.Type().(*types.Signature)
		v = min(v, c.typeParams(sig.RecvTypeParams()))
		v = min(v, c.check(sig.Results()))
		v = min(v, c.check(sig.Params()))
	}
	return v
}

// CanExposePublicly reports whether every type the proxies of e name is
// public.
func CanExposePublicly(e *processor.AnnotatedElement) bool {
	return LowestVisibility(e) == Public
}

type visibilityChecker struct {
	pkg      *types.Package
	visiting map[*types.TypeParam]bool
}

func (c *visibilityChecker) typeName(obj *types.TypeName) Visibility {
	switch {
	case obj.Pkg() == nil:
		// predeclared
		return Public
	case obj.Parent() != nil && obj.Parent() != obj.Pkg().Scope():
		return Hidden
	case obj.Exported():
		return Public
	}
	return c.member(obj)
}

// member returns the visibility of an unexported object.
func (c *visibilityChecker) member(obj types.Object) Visibility {
	if obj.Pkg() == c.pkg || (obj.Pkg() != nil && c.pkg != nil && obj.Pkg().Path() == c.pkg.Path()) {
		return Package
	}
	return Hidden
}

func (c *visibilityChecker) typeParams(tps *types.TypeParamList) Visibility {
	v := Public
	for i := 0; i < tps.Len(); i++ {
		v = min(v, c.check(tps.At(i)))
	}
	return v
}

func (c *visibilityChecker) check(t types.Type) Visibility {
	switch t := t.(type) {
	case nil:
		return Public
	case *types.Basic:
		return Public
	case *types.Pointer:
		return c.check(t.Elem())
	case *types.Slice:
		return c.check(t.Elem())
	case *types.Array:
		return c.check(t.Elem())
	case *types.Chan:
		return c.check(t.Elem())
	case *types.Map:
		return min(c.check(t.Key()), c.check(t.Elem()))
	case *types.Named:
		v := c.typeName(t.Obj())
		args := t.TypeArgs()
		for i := 0; i < args.Len() && v != Hidden; i++ {
			v = min(v, c.check(args.At(i)))
		}
		return v
	case *types.Alias:
		return min(c.typeName(t.Obj()), c.check(types.Unalias(t)))
	case *types.TypeParam:
		if c.visiting[t] {
			return Public
		}
		c.visiting[t] = true
		return c.check(t.Constraint())
	case *types.Interface:
		v := Public
		for i := 0; i < t.NumEmbeddeds() && v != Hidden; i++ {
			v = min(v, c.check(t.EmbeddedType(i)))
		}
		for i := 0; i < t.NumExplicitMethods() && v != Hidden; i++ {
			m := t.ExplicitMethod(i)
			if !m.Exported() {
				v = min(v, c.member(m))
			}
			v = min(v, c.check(m.Type()))
		}
		return v
	case *types.Union:
		v := Public
		for i := 0; i < t.Len() && v != Hidden; i++ {
			v = min(v, c.check(t.Term(i).Type()))
		}
		return v
	case *types.Struct:
		v := Public
		for i := 0; i < t.NumFields() && v != Hidden; i++ {
			f := t.Field(i)
			if !f.Exported() {
				v = min(v, c.member(f))
			}
			v = min(v, c.check(f.Type()))
		}
		return v
	case *types.Signature:
		return min(c.check(t.Params()), c.check(t.Results()))
	case *types.Tuple:
		v := Public
		for i := 0; i < t.Len() && v != Hidden; i++ {
			v = min(v, c.check(t.At(i).Type()))
		}
		return v
	}
	return Public
}
