// Command catadioptre generates the companion files exposing the members
// annotated with catadioptre.Testable to tests. It is typically run by go
// generate:
//
//	//go:generate go run github.com/aerisconsulting/catadioptre/cmd/catadioptre .
//
// Usage:
//
//	catadioptre [flags] packages...
//
// The flags are:
//
//	-config file
//		YAML file holding the options below, by their flag names
//	-include_tests
//		also process the _test.go files
//	-output_dir dir
//		write the files under dir/<package path> instead of next to the sources
//	-prefix name
//		prefix of the generated functions and files (default Testable)
//	-package_scoped
//		generate unexported functions for members using unexported types
//	-no_test_suffix
//		name the files without the _test suffix
//	-watch
//		generate again each time a source file changes
//	-v
//		log the details of the processing
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/aerisconsulting/catadioptre/generator"
	"github.com/aerisconsulting/catadioptre/processor"
)

func main() {
	cfg, patterns, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	processor.RegisterProcessor("catadioptre", generator.Processor(cfg.Options))

	if err := run(cfg, patterns); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if cfg.Watch {
		if err := watch(cfg, patterns); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}
}

func run(cfg config, patterns []string) error {
	return processor.ProcessAll(patterns, cfg.IncludeTests, cfg.OutputDir)
}
