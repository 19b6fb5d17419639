// Package processor loads Go packages and finds the fields and methods
// annotated with catadioptre.Testable, then hands them to processors.
//
// A Processor is a function invoked once per package:
//
//	func(ctx *processor.Context, output processor.OutputFactory) error
//
// The Context gives access to the loaded package (syntax trees and type
// information) and to the annotated elements, grouped by the type that
// declares them. Processors create their files through the OutputFactory,
// using paths returned by Context.OutputPath.
//
// # Annotations
//
// Annotations are written in doc comments, starting at the first line that
// begins with '@':
//
//	type Calculator struct {
//		// value is the last result.
//		//
//		// @catadioptre.Testable{Clearer: false}
//		value *int
//	}
//
// The annotation may be written @Testable, @catadioptre.Testable or use the
// name under which the file imports github.com/aerisconsulting/catadioptre.
// Other annotations are ignored. Testable is accepted on the fields of
// package-level struct types, on the methods of package-level types and on the
// methods of package-level interfaces. Anywhere else it is an error, reported
// with its source position as an *ErrorWithPosition.
//
// # Invocation
//
// A Config describes the packages to process, the processors to invoke and the
// OutputFactory to write with. Its Execute method loads the packages with
// golang.org/x/tools/go/packages, resolves the output directory of every
// package, extracts the annotations and then invokes the processors one
// package at a time. Process and ProcessAll are shortcuts building a Config
// with typical values; ProcessAll invokes the processors registered with
// RegisterProcessor.
package processor
