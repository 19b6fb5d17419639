package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aerisconsulting/catadioptre/generator"
)

// config holds the options of a run, read from the YAML file given with
// -config and from the flags, which take precedence.
type config struct {
	IncludeTests bool   `yaml:"include_tests"`
	OutputDir    string `yaml:"output_dir"`
	Verbose      bool   `yaml:"verbose"`
	Watch        bool   `yaml:"watch"`

	generator.Options `yaml:",inline"`
}

func defaultConfig() config {
	return config{Options: generator.DefaultOptions()}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing YAML config %s: %w", path, err)
	}
	return cfg, nil
}

// parseArgs returns the configuration and the package patterns given by args.
func parseArgs(args []string, stderr io.Writer) (config, []string, error) {
	fs := flag.NewFlagSet("catadioptre", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Path of a YAML file holding the options. Flags override its values.")
	includeTests := fs.Bool("include_tests", false, "Indicates whether to process test files.")
	outputDir := fs.String("output_dir", "", "Indicates the root directory where generated files are written."+
		" Files are created under sub-directories named after the package paths."+
		" When blank, files are written next to the sources of their package.")
	prefix := fs.String("prefix", generator.DefaultPrefix, "Prefix of the generated functions and files.")
	packageScoped := fs.Bool("package_scoped", false, "Generates unexported functions for members using types"+
		" that are not exported, instead of skipping them.")
	noTestSuffix := fs.Bool("no_test_suffix", false, "Generates files without the _test suffix, so that they are"+
		" compiled with the package.")
	watch := fs.Bool("watch", false, "Generates again each time a source file of the packages changes.")
	verbose := fs.Bool("v", false, "Logs the details of the processing.")
	if err := fs.Parse(args); err != nil {
		return config{}, nil, err
	}
	if fs.NArg() == 0 {
		return config{}, nil, errors.New("must supply at least one package pattern")
	}

	cfg := defaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = loadConfig(*configFile); err != nil {
			return config{}, nil, err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "include_tests":
			cfg.IncludeTests = *includeTests
		case "output_dir":
			cfg.OutputDir = *outputDir
		case "prefix":
			cfg.Prefix = *prefix
		case "package_scoped":
			cfg.PackageScoped = *packageScoped
		case "no_test_suffix":
			cfg.NoTestSuffix = *noTestSuffix
		case "watch":
			cfg.Watch = *watch
		case "v":
			cfg.Verbose = *verbose
		}
	})

	if cfg.OutputDir != "" {
		if _, err := os.Stat(cfg.OutputDir); os.IsNotExist(err) {
			return config{}, nil, fmt.Errorf("specified directory, %s, does not exist", cfg.OutputDir)
		} else if err != nil {
			return config{}, nil, fmt.Errorf("failed to check specified directory, %s: %w", cfg.OutputDir, err)
		}
	}
	return cfg, fs.Args(), nil
}
