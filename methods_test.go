package catadioptre

import (
	"container/list"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExecuteInvisible(t *testing.T) {
	intType := reflect.TypeOf(0)
	values := list.New()
	values.PushBack(1)
	values.PushBack(3)
	values.PushBack(6)

	testCases := []struct {
		name   string
		method string
		args   []interface{}
		want   float64
	}{
		{
			name:   "arguments",
			method: "divide",
			args:   []interface{}{10, 2},
			want:   5,
		},
		{
			name:   "variable arguments",
			method: "divideSum",
			args:   []interface{}{2, OfVarargs(intType, 1, 3, 6)},
			want:   5,
		},
		{
			name:   "generic variable arguments",
			method: "divideSum",
			args:   []interface{}{2, VarargsOf(1, 3, 6)},
			want:   5,
		},
		{
			name:   "close signature",
			method: "divideSum",
			args:   []interface{}{2, values},
			want:   5,
		},
		{
			name:   "nil argument",
			method: "divideSum",
			args:   []interface{}{2, NilOf[*list.List]()},
			want:   0,
		},
		{
			name:   "close signature from parent with variable arguments",
			method: "divideSum",
			args:   []interface{}{2.5, OfVarargs(reflect.TypeOf((*interface{})(nil)).Elem(), 1, 3, 6)},
			want:   4,
		},
		{
			name:   "inherited with arguments",
			method: "inheritedDivide",
			args:   []interface{}{10, 2},
			want:   5,
		},
		{
			name:   "inherited with variable arguments",
			method: "inheritedDivideSum",
			args:   []interface{}{2, OfVarargs(intType, 1, 3, 6)},
			want:   5,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExecuteInvisible[float64](newReflectionObject(), tc.method, tc.args...)
			if err != nil {
				t.Fatalf("failed to execute %s: %v", tc.method, err)
			}
			if got != tc.want {
				t.Errorf("expecting %v; got %v", tc.want, got)
			}
		})
	}
}

func TestExecuteInvisibleWithoutArgument(t *testing.T) {
	obj := newReflectionObject()

	value := MustExecuteInvisible[*int](obj, "returnValue")
	if *value != 123 {
		t.Errorf("expecting 123; got %d", *value)
	}
	inherited := MustExecuteInvisible[*int](obj, "returnInheritedValue")
	if *inherited != 789 {
		t.Errorf("expecting 789; got %d", *inherited)
	}
	exported := MustExecuteInvisible[*int](obj, "Value")
	if *exported != 123 {
		t.Errorf("expecting 123 from the exported method; got %d", *exported)
	}
}

func TestExecuteInvisibleThroughInterface(t *testing.T) {
	area, err := ExecuteInvisible[float64](square{side: 3}, "area")
	if err != nil {
		t.Fatalf("failed to execute area: %v", err)
	}
	if area != 9 {
		t.Errorf("expecting 9; got %v", area)
	}
}

func TestInvoke(t *testing.T) {
	results, err := Invoke(newReflectionObject(), "divide", Typed(9), Typed(3))
	if err != nil {
		t.Fatalf("failed to invoke divide: %v", err)
	}
	if diff := cmp.Diff([]interface{}{3.0}, results); diff != "" {
		t.Errorf("unexpected results (-want +got):\n%s", diff)
	}
}

func TestInvokeWithoutResult(t *testing.T) {
	results, err := Invoke(square{side: 2}, "area")
	if err != nil {
		t.Fatalf("failed to invoke area: %v", err)
	}
	if Result[float64](results, 0) != 4 {
		t.Errorf("expecting 4; got %v", results)
	}
	if Result[string](results, 1) != "" {
		t.Error("expecting a missing result to be the zero value")
	}
}

func TestExecuteInvisibleWithNilArgument(t *testing.T) {
	_, err := ExecuteInvisible[float64](newReflectionObject(), "divide", nil, 2)
	if err == nil {
		t.Fatal("expecting an error")
	}
	if !strings.Contains(err.Error(), "argument 0 is nil (null)") || !strings.Contains(err.Error(), "OfNil") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestExecuteInvisibleWithUnknownSignature(t *testing.T) {
	testCases := []struct {
		name   string
		method string
		args   []interface{}
	}{
		{name: "unknown name", method: "other"},
		{name: "wrong count", method: "divide", args: []interface{}{10}},
		{name: "wrong types", method: "divide", args: []interface{}{"10", 2}},
		{name: "no implicit conversion", method: "divide", args: []interface{}{10.0, 2}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExecuteInvisible[float64](newReflectionObject(), tc.method, tc.args...)
			if !errors.Is(err, ErrNoSuchMethod) {
				t.Fatalf("expecting ErrNoSuchMethod; got %v", err)
			}
			if !strings.Contains(err.Error(), "method "+tc.method) {
				t.Errorf("expecting the message to name %s: %v", tc.method, err)
			}
		})
	}
}

func TestExecuteInvisibleReturnsOriginalCause(t *testing.T) {
	_, err := ExecuteInvisible[interface{}](newReflectionObject(), "throwException")

	var cause *OriginalCauseError
	if !errors.As(err, &cause) {
		t.Fatalf("expecting an OriginalCauseError; got %v", err)
	}
	if cause.Cause() != errBoom {
		t.Errorf("expecting the cause to be errBoom; got %v", cause.Cause())
	}
	if !errors.Is(err, errBoom) {
		t.Error("expecting the error to wrap errBoom")
	}
	if cause.Method != "throwException" {
		t.Errorf("expecting method throwException; got %s", cause.Method)
	}
}

func TestMustExecuteInvisiblePanicsWithOriginalCause(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, errBoom) {
			t.Errorf("expecting a panic wrapping errBoom; got %v", r)
		}
	}()
	MustExecuteInvisible[interface{}](newReflectionObject(), "throwException")
}

func TestRegisterMethodIsIdempotent(t *testing.T) {
	before := len(candidatesAt(reflect.New(reflect.TypeOf(reflectionObject{})).Elem()))
	RegisterMethod("divide", (*reflectionObject).divide)
	after := len(candidatesAt(reflect.New(reflect.TypeOf(reflectionObject{})).Elem()))
	if before != after {
		t.Errorf("expecting %d candidates; got %d", before, after)
	}
}

func TestRegisterMethodRejectsNonMethods(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expecting a panic")
		}
	}()
	RegisterMethod("nothing", func() {})
}

func TestInvokeOnCopy(t *testing.T) {
	c := counter{n: 3}
	if total := MustExecuteInvisible[int](c, "current"); total != 3 {
		t.Errorf("expecting 3 from the value receiver; got %d", total)
	}
	if total := MustExecuteInvisible[int](c, "Total"); total != 3 {
		t.Errorf("expecting 3 from the exported value receiver; got %d", total)
	}

	_, err := Invoke(c, "inc")
	if err == nil || !strings.Contains(err.Error(), "pointer receiver") {
		t.Errorf("expecting the pointer receiver to be rejected; got %v", err)
	}

	MustInvoke(&c, "inc")
	if c.n != 4 {
		t.Errorf("expecting 4; got %d", c.n)
	}

	// the embedded counter is shared by the copies of the holder
	holder := counterHolder{counter: &c}
	MustInvoke(holder, "inc")
	if c.n != 5 {
		t.Errorf("expecting 5; got %d", c.n)
	}
}

func TestInvokeSelectsShallowestMethod(t *testing.T) {
	s := newShadowing()
	if x := MustExecuteInvisible[int](s, "get"); x != 2 {
		t.Errorf("expecting the method of the nearer struct; got %d", x)
	}
}
