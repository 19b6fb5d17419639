package catadioptre

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var (
	registryLock sync.RWMutex
	registry     = map[reflect.Type][]registeredMethod{}
)

type registeredMethod struct {
	name string
	fn   reflect.Value
}

// RegisterMethod makes method callable by name through Invoke and
// ExecuteInvisible. The method must be given as a method expression, such as
// (*Calculator).divide, so that its first parameter is the receiver. This is
// how unexported methods, which cannot be found with reflection, are located.
// Generated companions register every annotated method.
//
// Several functions may be registered under one name for one receiver type:
// they are candidates in registration order. Registering the same function
// type twice under one name has no effect. It panics if method is not a
// function with at least one parameter.
func RegisterMethod(name string, method interface{}) {
	fn := reflect.ValueOf(method)
	if fn.Kind() != reflect.Func || fn.IsNil() || fn.Type().NumIn() == 0 {
		panic(fmt.Sprintf("catadioptre: cannot register %s: %T is not a method expression", name, method))
	}
	recv := fn.Type().In(0)
	if recv.Kind() == reflect.Ptr {
		recv = recv.Elem()
	}

	registryLock.Lock()
	defer registryLock.Unlock()
	for _, m := range registry[recv] {
		if m.name == name && m.fn.Type() == fn.Type() {
			return
		}
	}
	registry[recv] = append(registry[recv], registeredMethod{name: name, fn: fn})
}

// candidatesAt returns the methods callable on level: the ones registered for
// its type, its exported methods, and the ones registered for interfaces it
// implements.
func candidatesAt(level reflect.Value) []registeredMethod {
	t := level.Type()
	pt := reflect.PtrTo(t)

	registryLock.RLock()
	methods := append([]registeredMethod(nil), registry[t]...)
	var ifaces []reflect.Type
	for recv := range registry {
		if recv.Kind() == reflect.Interface && pt.Implements(recv) {
			ifaces = append(ifaces, recv)
		}
	}
	sort.Slice(ifaces, func(i, j int) bool {
		return ifaces[i].String() < ifaces[j].String()
	})
	var inherited []registeredMethod
	for _, recv := range ifaces {
		inherited = append(inherited, registry[recv]...)
	}
	registryLock.RUnlock()

	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		if vm, ok := t.MethodByName(m.Name); ok {
			// value receiver
			m = vm
		}
		methods = append(methods, registeredMethod{name: m.Name, fn: m.Func})
	}
	return append(methods, inherited...)
}

// Invoke calls the method called name on instance with the given arguments
// and returns its results.
//
// Each argument is either an Argument or a non-nil value, which is matched
// using its dynamic type. A bare nil argument is rejected since no type can be
// inferred from it.
//
// The method is searched in instance, then in its embedded structs, breadth
// first. At each level, the first method whose name matches, whose number of
// parameters is the number of arguments and whose parameter types are
// assignable from the argument types is selected. No attempt is made to select
// the most specific method. A variadic parameter is matched by a slice
// argument, as built by OfVarargs or VarargsOf.
//
// When instance is not a pointer, methods are called on a copy of it: a method
// with a pointer receiver is then rejected with an error, unless it belongs to
// a struct embedded through a pointer.
//
// If the method panics, the returned error is an *OriginalCauseError holding
// the panic value.
func Invoke(instance interface{}, name string, args ...interface{}) ([]interface{}, error) {
	arguments, err := normalize(args)
	if err != nil {
		return nil, err
	}
	base, err := receiverOf(instance, false)
	if err != nil {
		return nil, err
	}
	copied := reflect.ValueOf(instance).Kind() != reflect.Ptr

	var fn, recv reflect.Value
	var onCopy reflect.Type
	walk(base, func(level reflect.Value, shared bool) bool {
		for _, m := range candidatesAt(level) {
			if m.name != name || !matches(m.fn.Type(), arguments) {
				continue
			}
			in := m.fn.Type().In(0)
			if copied && !shared {
				if level.Type().AssignableTo(in) {
					fn, recv = m.fn, level
					return true
				}
				if level.Addr().Type().AssignableTo(in) {
					onCopy = level.Type()
					return true
				}
				continue
			}
			if r, ok := receiverFor(in, level); ok {
				fn, recv = m.fn, r
				return true
			}
		}
		return false
	})
	if onCopy != nil {
		return nil, newError(nil, "method %s of %s has a pointer receiver and would modify a copy of instance of type %T, pass a pointer to it",
			name, onCopy, instance)
	}
	if !fn.IsValid() {
		types := make([]string, len(arguments))
		for i, a := range arguments {
			types[i] = a.String()
		}
		return nil, newError(ErrNoSuchMethod, "method %s with arguments [%s] was not found in %s",
			name, strings.Join(types, ", "), base.Type())
	}
	return call(name, fn, recv, arguments)
}

// ExecuteInvisible calls the method called name like Invoke and returns its
// first result, or the zero value of R if the method has no result or returns
// nil.
func ExecuteInvisible[R any](instance interface{}, name string, args ...interface{}) (R, error) {
	var zero R
	results, err := Invoke(instance, name, args...)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 || results[0] == nil {
		return zero, nil
	}
	r, ok := results[0].(R)
	if !ok {
		return zero, newError(nil, "result of method %s of type %T cannot be returned as %s", name, results[0], typeOf[R]())
	}
	return r, nil
}

// MustInvoke is like Invoke but panics on error.
func MustInvoke(instance interface{}, name string, args ...interface{}) []interface{} {
	results, err := Invoke(instance, name, args...)
	if err != nil {
		panic(err)
	}
	return results
}

// MustExecuteInvisible is like ExecuteInvisible but panics on error.
func MustExecuteInvisible[R any](instance interface{}, name string, args ...interface{}) R {
	r, err := ExecuteInvisible[R](instance, name, args...)
	if err != nil {
		panic(err)
	}
	return r
}

// Result returns results[i] as a T. Missing and nil results are returned as the
// zero value of T.
func Result[T any](results []interface{}, i int) T {
	var zero T
	if i >= len(results) || results[i] == nil {
		return zero
	}
	return results[i].(T)
}

func normalize(args []interface{}) ([]Argument, error) {
	arguments := make([]Argument, len(args))
	for i, arg := range args {
		switch arg := arg.(type) {
		case Argument:
			arguments[i] = arg
		case nil:
			return nil, newError(nil, "argument %d is nil (null) and its type cannot be detected, use OfNil or NilOf instead", i)
		default:
			arguments[i] = OfNotNil(arg)
		}
	}
	return arguments, nil
}

func matches(fn reflect.Type, arguments []Argument) bool {
	if fn.NumIn()-1 != len(arguments) {
		return false
	}
	for i, a := range arguments {
		if !a.typ.AssignableTo(fn.In(i + 1)) {
			return false
		}
	}
	return true
}

// receiverFor returns level, or its address, as a value of type t.
func receiverFor(t reflect.Type, level reflect.Value) (reflect.Value, bool) {
	if addr := level.Addr(); addr.Type().AssignableTo(t) {
		return addr, true
	}
	if level.Type().AssignableTo(t) {
		return level, true
	}
	return reflect.Value{}, false
}

func call(name string, fn, recv reflect.Value, arguments []Argument) (results []interface{}, err error) {
	ft := fn.Type()
	in := make([]reflect.Value, 0, len(arguments)+1)
	in = append(in, recv)
	for i, a := range arguments {
		in = append(in, a.reflectValue(ft.In(i+1)))
	}

	defer func() {
		if r := recover(); r != nil {
			results = nil
			err = &OriginalCauseError{Method: name, cause: r}
		}
	}()

	var out []reflect.Value
	if ft.IsVariadic() {
		out = fn.CallSlice(in)
	} else {
		out = fn.Call(in)
	}
	results = make([]interface{}, len(out))
	for i, o := range out {
		results[i] = o.Interface()
	}
	return results, nil
}
