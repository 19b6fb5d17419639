// Package catadioptre gives tests access to the unexported fields and methods
// of the types they exercise, without exporting those members from the code
// under test.
//
// There are two halves to the package. The first is a marker, Testable, that
// is written as an annotation in the doc comment of a struct field or a method:
//
//    type Calculator struct {
//        // @catadioptre.Testable
//        value *int
//    }
//
//    // @catadioptre.Testable
//    func (c *Calculator) divide(value float64, divider int) float64 {
//        ...
//    }
//
// Running the catadioptre command (typically from a go:generate directive) on
// the package creates, for every type declaring annotated members, a companion
// file named testable_<type>_test.go. The companion holds one generic proxy
// function per operation: TestableCalculatorValue, TestableCalculatorSetValue,
// TestableCalculatorClearValue and TestableCalculatorDivide in the example
// above. Since the companion is a _test.go file, the proxies are only compiled
// into test binaries and are usable from both internal and external (_test
// suffixed) test packages.
//
// The second half is the runtime used by the generated proxies, which can also
// be called directly: GetField, SetField and ClearField read and write fields by
// name, and Invoke and ExecuteInvisible call methods by name and arguments.
// Fields are located in the struct itself and then in its embedded structs,
// breadth first, like Go selectors. Methods are resolved the same way, among the methods made known
// with RegisterMethod (the generated companions register every annotated
// method) and the exported methods of each level.
//
// Arguments whose runtime type is not enough to select the expected method,
// including nil values, are passed as Argument values built with OfNil, NilOf,
// OfVarargs, VarargsOf or Typed.
package catadioptre
