package catadioptre

import (
	"fmt"
	"reflect"
)

// Argument is a value passed to Invoke or ExecuteInvisible along with the
// type used to match it against the parameters of the candidate methods.
//
// Plain values are matched using their dynamic type. An Argument is needed
// when that type is not the one to match: a nil value has no type at all, and
// a value may have to present itself as an interface or a slice of interfaces
// to select a particular method.
type Argument struct {
	value any
	typ   reflect.Type
}

// OfNotNil returns an argument matched using the dynamic type of value. It
// panics if value is nil.
func OfNotNil(value any) Argument {
	if value == nil {
		panic("catadioptre: OfNotNil cannot infer the type of a nil value, use OfNil instead")
	}
	return Argument{value: value, typ: reflect.TypeOf(value)}
}

// OfNil returns a nil argument of type t.
func OfNil(t reflect.Type) Argument {
	if t == nil {
		panic("catadioptre: OfNil requires a type")
	}
	return Argument{typ: t}
}

// NilOf returns a nil argument of type T.
func NilOf[T any]() Argument {
	return OfNil(typeOf[T]())
}

// Typed returns an argument matched as type T, whatever the dynamic type of
// value is. Generated proxies pass every parameter this way.
func Typed[T any](value T) Argument {
	return Argument{value: value, typ: typeOf[T]()}
}

// OfVarargs builds a slice of elem holding values and returns it as an
// argument of the slice type. It is matched against a variadic parameter of
// element type elem, or against a parameter of a slice type the slice is
// assignable to. Nil values are stored as zero values. It panics when a value
// cannot be stored in the slice.
func OfVarargs(elem reflect.Type, values ...any) Argument {
	slice := reflect.MakeSlice(reflect.SliceOf(elem), len(values), len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(elem) {
			panic(fmt.Sprintf("catadioptre: value %d of type %s cannot be used as %s", i, rv.Type(), elem))
		}
		slice.Index(i).Set(rv)
	}
	return Argument{value: slice.Interface(), typ: slice.Type()}
}

// VarargsOf is the generic form of OfVarargs.
func VarargsOf[T any](values ...T) Argument {
	if values == nil {
		values = []T{}
	}
	return Argument{value: values, typ: reflect.TypeOf(values)}
}

// Value returns the value of the argument, which may be nil.
func (a Argument) Value() any {
	return a.value
}

// Type returns the type the argument is matched as.
func (a Argument) Type() reflect.Type {
	return a.typ
}

func (a Argument) String() string {
	return fmt.Sprintf("Argument(value: %v, type: %v)", a.value, a.typ)
}

// reflectValue returns the argument as a value of type t, which the type of
// the argument is assignable to.
func (a Argument) reflectValue(t reflect.Type) reflect.Value {
	if a.value == nil {
		return reflect.Zero(t)
	}
	v := reflect.ValueOf(a.value)
	if v.Type() != t && v.Type().AssignableTo(t) {
		conv := reflect.New(t).Elem()
		conv.Set(v)
		return conv
	}
	return v
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
