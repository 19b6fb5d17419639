package catadioptre

import "reflect"

// SetField assigns value to the field called name of the struct instance
// points to, and returns instance so that calls can be chained:
//
//    catadioptre.SetField(catadioptre.MustSetField(c, "a", 1), "b", 2)
//
// The field is searched in the struct, then in its embedded structs, breadth
// first, so a field shadows the fields of the same name embedded deeper. A nil
// value assigns the zero value of the field type. Other values
// must be assignable to the field type.
func SetField[T any](instance T, name string, value interface{}) (T, error) {
	s, err := structOf(instance, true)
	if err != nil {
		return instance, err
	}
	f, err := findField(s, name)
	if err != nil {
		return instance, err
	}
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return instance, nil
	}
	v := reflect.ValueOf(value)
	if !v.Type().AssignableTo(f.Type()) {
		return instance, newError(nil, "value of type %s cannot be assigned to field %s of type %s", v.Type(), name, f.Type())
	}
	f.Set(v)
	return instance, nil
}

// GetField returns the value of the field called name of instance, which is
// either a struct or a pointer to one. The field is searched like in SetField.
// A nil field value is returned as the zero value of R.
func GetField[R any](instance interface{}, name string) (R, error) {
	var zero R
	s, err := structOf(instance, false)
	if err != nil {
		return zero, err
	}
	f, err := findField(s, name)
	if err != nil {
		return zero, err
	}
	v := f.Interface()
	if v == nil {
		return zero, nil
	}
	r, ok := v.(R)
	if !ok {
		return zero, newError(nil, "field %s of type %s cannot be read as %s", name, f.Type(), typeOf[R]())
	}
	return r, nil
}

// ClearField resets the field called name of the struct instance points to,
// to the zero value of its type, and returns instance.
func ClearField[T any](instance T, name string) (T, error) {
	return SetField(instance, name, nil)
}

// MustSetField is like SetField but panics if the field cannot be set.
func MustSetField[T any](instance T, name string, value interface{}) T {
	instance, err := SetField(instance, name, value)
	if err != nil {
		panic(err)
	}
	return instance
}

// MustGetField is like GetField but panics if the field cannot be read.
func MustGetField[R any](instance interface{}, name string) R {
	r, err := GetField[R](instance, name)
	if err != nil {
		panic(err)
	}
	return r
}

// MustClearField is like ClearField but panics if the field cannot be set.
func MustClearField[T any](instance T, name string) T {
	return MustSetField(instance, name, nil)
}

func findField(s reflect.Value, name string) (reflect.Value, error) {
	var found reflect.Value
	walk(s, func(level reflect.Value, _ bool) bool {
		if level.Kind() != reflect.Struct {
			return false
		}
		for i := 0; i < level.NumField(); i++ {
			if level.Type().Field(i).Name == name {
				found = accessible(level.Field(i))
				return true
			}
		}
		return false
	})
	if !found.IsValid() {
		return found, newError(ErrNoSuchField, "field %s was not found in %s", name, s.Type())
	}
	return found, nil
}
