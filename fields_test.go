package catadioptre

import (
	"errors"
	"strings"
	"testing"
)

func TestGetField(t *testing.T) {
	obj := newReflectionObject()

	value, err := GetField[*int](obj, "value")
	if err != nil {
		t.Fatalf("failed to get field: %v", err)
	}
	if *value != 123 {
		t.Errorf("expecting 123; got %d", *value)
	}

	inherited, err := GetField[*int](obj, "inheritedValue")
	if err != nil {
		t.Fatalf("failed to get inherited field: %v", err)
	}
	if *inherited != 789 {
		t.Errorf("expecting 789; got %d", *inherited)
	}

	// a copy of the struct can be read too
	if v := MustGetField[*int](*obj, "value"); *v != 123 {
		t.Errorf("expecting 123 from a copy; got %d", *v)
	}
}

func TestGetFieldWithUnknownName(t *testing.T) {
	_, err := GetField[int](newReflectionObject(), "other")
	if !errors.Is(err, ErrNoSuchField) {
		t.Fatalf("expecting ErrNoSuchField; got %v", err)
	}
	if !strings.Contains(err.Error(), "field other was not found") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestGetFieldWithWrongType(t *testing.T) {
	if _, err := GetField[string](newReflectionObject(), "value"); err == nil {
		t.Fatal("expecting an error when reading a *int as a string")
	}
}

func TestSetField(t *testing.T) {
	obj := newReflectionObject()
	newValue, newInherited := 456, 987

	result, err := SetField(obj, "value", &newValue)
	if err != nil {
		t.Fatalf("failed to set field: %v", err)
	}
	if result != obj {
		t.Error("expecting the instance to be returned")
	}
	MustSetField(result, "inheritedValue", &newInherited)

	if *obj.value != 456 {
		t.Errorf("expecting 456; got %d", *obj.value)
	}
	if *obj.inheritedValue != 987 {
		t.Errorf("expecting 987; got %d", *obj.inheritedValue)
	}
}

func TestSetFieldToNil(t *testing.T) {
	obj := newReflectionObject()

	MustSetField(obj, "value", nil)
	MustClearField(obj, "inheritedValue")

	if obj.value != nil {
		t.Errorf("expecting value to be nil; got %d", *obj.value)
	}
	if obj.inheritedValue != nil {
		t.Errorf("expecting inheritedValue to be nil; got %d", *obj.inheritedValue)
	}
	if v := MustGetField[*int](obj, "value"); v != nil {
		t.Errorf("expecting to read nil; got %d", *v)
	}
}

func TestSetFieldErrors(t *testing.T) {
	testCases := []struct {
		name     string
		instance interface{}
		field    string
		value    interface{}
		message  string
	}{
		{
			name:     "struct value",
			instance: *newReflectionObject(),
			field:    "value",
			message:  "pass a pointer to it",
		},
		{
			name:     "nil pointer",
			instance: (*reflectionObject)(nil),
			field:    "value",
			message:  "instance is a nil *catadioptre.reflectionObject",
		},
		{
			name:     "unknown field",
			instance: newReflectionObject(),
			field:    "other",
			message:  "field other was not found",
		},
		{
			name:     "not assignable",
			instance: newReflectionObject(),
			field:    "value",
			value:    "text",
			message:  "value of type string cannot be assigned to field value of type *int",
		},
		{
			name:     "not a struct",
			instance: new(int),
			field:    "value",
			message:  "is not a struct",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SetField(tc.instance, tc.field, tc.value)
			if err == nil {
				t.Fatal("expecting an error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Errorf("expecting message to contain %q; got %q", tc.message, err.Error())
			}
		})
	}
}

func TestMustSetFieldPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expecting a panic")
		}
	}()
	MustSetField(newReflectionObject(), "other", 1)
}

type selfEmbedding struct {
	*selfEmbedding
	name string
}

func TestFieldInCyclicEmbedding(t *testing.T) {
	s := &selfEmbedding{name: "loop"}
	s.selfEmbedding = s

	if name := MustGetField[string](s, "name"); name != "loop" {
		t.Errorf("expecting loop; got %s", name)
	}
	if _, err := GetField[string](s, "other"); !errors.Is(err, ErrNoSuchField) {
		t.Errorf("expecting ErrNoSuchField; got %v", err)
	}
}

func TestFieldShadowedByShallowerField(t *testing.T) {
	s := newShadowing()
	if x := MustGetField[int](s, "x"); x != 2 {
		t.Errorf("expecting the field of the nearer struct; got %d", x)
	}
	MustSetField(s, "x", 3)
	if s.nearer.x != 3 || s.deepest.x != 1 {
		t.Errorf("expecting only the nearer field to be set; got %d and %d", s.nearer.x, s.deepest.x)
	}
}
