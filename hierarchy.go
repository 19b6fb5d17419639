package catadioptre

import (
	"reflect"
	"unsafe"
)

// walk visits v and then the values embedded in it, breadth first: every
// value embedded at one depth is visited, in declaration order, before the
// values embedded deeper, so that the shallowest match wins like in a Go
// selector. It stops when visit returns true and reports whether it did. Nil
// embedded pointers and embedded interfaces are not visited.
//
// shared tells visit whether level was reached through an embedded pointer,
// in which case it is not part of the memory of v.
//
// v must be addressable; so are all the visited values.
func walk(v reflect.Value, visit func(level reflect.Value, shared bool) bool) bool {
	seen := map[visitKey]struct{}{}
	current := []embedded{{value: v}}
	for len(current) > 0 {
		var next []embedded
		for _, e := range current {
			key := visitKey{t: e.value.Type(), p: e.value.UnsafeAddr()}
			if _, ok := seen[key]; ok {
				// a struct embedding a pointer to its own type
				continue
			}
			seen[key] = struct{}{}

			if visit(e.value, e.shared) {
				return true
			}
			next = append(next, embeddedIn(e)...)
		}
		current = next
	}
	return false
}

type embedded struct {
	value  reflect.Value
	shared bool
}

type visitKey struct {
	t reflect.Type
	p uintptr
}

// embeddedIn returns the values embedded directly in e.
func embeddedIn(e embedded) []embedded {
	v := e.value
	if v.Kind() != reflect.Struct {
		return nil
	}
	var res []embedded
	for i := 0; i < v.NumField(); i++ {
		if !v.Type().Field(i).Anonymous {
			continue
		}
		f := accessible(v.Field(i))
		shared := e.shared
		switch f.Kind() {
		case reflect.Interface:
			continue
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			f = f.Elem()
			shared = true
		}
		res = append(res, embedded{value: f, shared: shared})
	}
	return res
}

// accessible returns a value for the addressable field f that can be read,
// written and passed to calls even when f is unexported.
func accessible(f reflect.Value) reflect.Value {
	if f.CanInterface() && f.CanSet() {
		return f
	}
	return reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
}

// structOf returns the addressable struct that instance is or points to. When
// instance is not a pointer, writable must be false and a copy is returned.
func structOf(instance interface{}, writable bool) (reflect.Value, error) {
	v, err := receiverOf(instance, writable)
	if err != nil {
		return reflect.Value{}, err
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, newError(nil, "instance of type %T is not a struct nor a pointer to a struct", instance)
	}
	return v, nil
}

// receiverOf returns the addressable value that instance points to, or an
// addressable copy of instance when it is not a pointer and writable is false.
func receiverOf(instance interface{}, writable bool) (reflect.Value, error) {
	if instance == nil {
		return reflect.Value{}, newError(nil, "instance is nil")
	}
	v := reflect.ValueOf(instance)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, newError(nil, "instance is a nil %T", instance)
		}
		return v.Elem(), nil
	}
	if writable {
		return reflect.Value{}, newError(nil, "instance of type %T cannot be modified, pass a pointer to it", instance)
	}
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp, nil
}
