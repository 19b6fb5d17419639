package catadioptre

// Testable marks a struct field or a method for which test proxies should be
// generated. It is not used as a Go value in code under test; it is written as
// the last paragraph of the member's doc comment:
//
//    // @catadioptre.Testable{Clearer: false}
//
// The unqualified form, @Testable, is accepted too. Switches that are not
// mentioned default to true.
//
// Methods ignore all switches: exactly one proxy, invoking the method, is
// generated for an annotated method.
type Testable struct {
	// Getter enables the proxy that reads the field.
	Getter bool
	// Setter enables the proxy that assigns the field and returns the instance.
	Setter bool
	// Clearer enables the proxy that resets the field to its zero value and
	// returns the instance.
	Clearer bool
}

// DefaultTestable returns the value of an annotation without any explicit
// switch.
func DefaultTestable() Testable {
	return Testable{Getter: true, Setter: true, Clearer: true}
}

// ProxyCount is the number of field proxies enabled by t.
func (t Testable) ProxyCount() int {
	n := 0
	for _, on := range []bool{t.Getter, t.Setter, t.Clearer} {
		if on {
			n++
		}
	}
	return n
}
