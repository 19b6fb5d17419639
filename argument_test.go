package catadioptre

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestOfNotNil(t *testing.T) {
	a := OfNotNil(12)
	if a.Type() != reflect.TypeOf(0) {
		t.Errorf("expecting type int; got %v", a.Type())
	}
	if a.Value() != 12 {
		t.Errorf("expecting value 12; got %v", a.Value())
	}
	if s := a.String(); s != "Argument(value: 12, type: int)" {
		t.Errorf("unexpected string %q", s)
	}
}

func TestOfNotNilPanicsOnNil(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expecting a panic")
		}
	}()
	OfNotNil(nil)
}

func TestOfNil(t *testing.T) {
	a := OfNil(reflect.TypeOf(""))
	if a.Value() != nil {
		t.Errorf("expecting nil value; got %v", a.Value())
	}
	if a.Type().Kind() != reflect.String {
		t.Errorf("expecting type string; got %v", a.Type())
	}
	if b := NilOf[fmt.Stringer](); b.Type() != reflect.TypeOf((*fmt.Stringer)(nil)).Elem() {
		t.Errorf("expecting type fmt.Stringer; got %v", b.Type())
	}
}

func TestTyped(t *testing.T) {
	var s fmt.Stringer = reflect.TypeOf(0)
	a := Typed(s)
	if a.Type() != reflect.TypeOf((*fmt.Stringer)(nil)).Elem() {
		t.Errorf("expecting the static type; got %v", a.Type())
	}
	if v := a.reflectValue(a.Type()); v.Type() != a.Type() {
		t.Errorf("expecting a value of type %v; got %v", a.Type(), v.Type())
	}
}

func TestOfVarargs(t *testing.T) {
	a := OfVarargs(reflect.TypeOf((*int)(nil)), nil, new(int))
	if a.Type() != reflect.TypeOf([]*int{}) {
		t.Errorf("expecting type []*int; got %v", a.Type())
	}
	values := a.Value().([]*int)
	if len(values) != 2 || values[0] != nil || values[1] == nil {
		t.Errorf("unexpected values %v", values)
	}

	if diff := cmp.Diff([]string{}, VarargsOf[string]().Value()); diff != "" {
		t.Errorf("unexpected empty varargs (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, VarargsOf("a", "b").Value()); diff != "" {
		t.Errorf("unexpected varargs (-want +got):\n%s", diff)
	}
}

func TestOfVarargsPanicsOnWrongType(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expecting a panic")
		}
	}()
	OfVarargs(reflect.TypeOf(0), "one")
}
