package processor

import (
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/go/packages"
)

// ErrorWithPosition is an error that has source position information associated
// with it. The position indicates the location in a source file where the error
// was encountered.
type ErrorWithPosition struct {
	err error
	pos token.Position
}

// Error implements the error interface. It includes position information in the
// returned message.
func (e *ErrorWithPosition) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.pos.Filename, e.pos.Line, e.pos.Column, e.err.Error())
}

// Underlying returns the underlying error.
func (e *ErrorWithPosition) Underlying() error {
	return e.err
}

// Unwrap returns the underlying error.
func (e *ErrorWithPosition) Unwrap() error {
	return e.err
}

// Pos returns the location in source where the underlying error was
// encountered.
func (e *ErrorWithPosition) Pos() token.Position {
	return e.pos
}

// NewErrorWithPosition returns the given error, but associates it with the
// given source code location.
func NewErrorWithPosition(pos token.Position, err error) *ErrorWithPosition {
	return &ErrorWithPosition{err: err, pos: pos}
}

// OutputFactory is a function that creates a writer to an output for the
// given file path. Output factories typically use os.OpenFile to create files
// but this function allows the behavior to be customized.
type OutputFactory func(path string) (io.WriteCloser, error)

// Processor is a function that acts on annotations and is invoked from the
// catadioptre tool. Processors generate code based on the annotated elements
// of one package, creating files with the given factory and the paths
// returned by Context.OutputPath.
type Processor func(ctx *Context, output OutputFactory) error

// ProcessAll invokes all registered Processor instances to process the
// packages matched by the given patterns. If outputDir is blank, the output of
// a package goes to the directory holding its sources.
func ProcessAll(patterns []string, includeTests bool, outputDir string) error {
	return Process(patterns, includeTests, outputDir, AllRegisteredProcessors()...)
}

// Process invokes the given processors to process the packages matched by the
// given patterns.
func Process(patterns []string, includeTests bool, outputDir string, procs ...Processor) error {
	cfg := Config{
		Patterns:      patterns,
		IncludeTests:  includeTests,
		OutputDir:     outputDir,
		Processors:    procs,
		OutputFactory: DefaultOutputFactory(),
	}
	return cfg.Execute()
}

// DefaultOutputFactory returns the default OutputFactory used by Process and
// ProcessAll. The directory of the path is created if necessary, then
// os.OpenFile is used to open the file for writing (creating the file if
// necessary, truncating it if it already exists).
func DefaultOutputFactory() OutputFactory {
	return func(path string) (io.WriteCloser, error) {
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			return nil, fmt.Errorf("could not create output directory %s: %w", filepath.Dir(path), err)
		}
		return os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0666)
	}
}

// OutputToDirectory returns an OutputFactory that writes every file directly
// in dir, whatever the directory of the requested path.
func OutputToDirectory(dir string) OutputFactory {
	def := DefaultOutputFactory()
	return func(path string) (io.WriteCloser, error) {
		return def(filepath.Join(dir, filepath.Base(path)))
	}
}

// determineOutputDir returns the directory where the output for pkg goes: the
// directory of its sources, or <root>/<import path> when root is not blank.
func determineOutputDir(root string, pkg *packages.Package) (string, error) {
	if root != "" {
		return filepath.Join(root, filepath.FromSlash(pkg.PkgPath)), nil
	}
	files := pkg.GoFiles
	if len(files) == 0 {
		files = pkg.CompiledGoFiles
	}
	if len(files) == 0 {
		return "", fmt.Errorf("could not determine output directory for package %q: it has no Go file", pkg.PkgPath)
	}
	dir := filepath.Dir(files[0])
	if goroot := os.Getenv("GOROOT"); goroot != "" && strings.HasPrefix(dir, filepath.Join(goroot, "src")+string(filepath.Separator)) {
		return "", fmt.Errorf("cannot generate output for package %q because it is in GOROOT", pkg.PkgPath)
	}
	return dir, nil
}

// Config represents the configuration for running one or more Processors.
// Callers should configure the exported fields and then call the Execute
// method to actually invoke the processors.
type Config struct {
	// Patterns select the packages to process, like the arguments of go build.
	Patterns []string
	// Dir is the directory in which patterns are resolved. Blank means the
	// current directory.
	Dir string
	// IncludeTests also processes the _test.go files of the packages.
	IncludeTests bool
	// OutputDir is the root of the generated files. Blank means the directory
	// of each package.
	OutputDir     string
	Processors    []Processor
	OutputFactory OutputFactory
	// Log receives the diagnostics. When nil, the standard logrus logger is
	// used.
	Log log.FieldLogger
}

// Execute loads the configured packages and invokes the configured processors
// for each of them, writing outputs using the configured OutputFactory. The
// output directory of every package is resolved before any processor runs, so
// nothing is written when one of them cannot be determined. A failing
// processor does not prevent the other processors and packages from being
// processed; all the errors are returned joined.
func (cfg *Config) Execute() error {
	logger := cfg.Log
	if logger == nil {
		logger = log.StandardLogger()
	}
	output := cfg.OutputFactory
	if output == nil {
		output = DefaultOutputFactory()
	}

	pkgs, err := load(cfg.Dir, cfg.IncludeTests, cfg.Patterns)
	if err != nil {
		return err
	}

	contexts := make([]*Context, 0, len(pkgs))
	for _, pkg := range pkgs {
		dir, err := determineOutputDir(cfg.OutputDir, pkg)
		if err != nil {
			return err
		}
		ctx, err := NewContext(pkg, logger)
		if err != nil {
			return err
		}
		ctx.OutputDir = dir
		contexts = append(contexts, ctx)
	}

	var errs []error
	for _, ctx := range contexts {
		ctx.Log.Debugf("processing package %s: %d annotated element(s)", ctx.Package.PkgPath, ctx.NumElements())
		for _, proc := range cfg.Processors {
			if err := proc(ctx, output); err != nil {
				ctx.Log.Errorf("processing package %s failed: %v", ctx.Package.PkgPath, err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports

func load(dir string, includeTests bool, patterns []string) ([]*packages.Package, error) {
	conf := &packages.Config{
		Mode:  loadMode,
		Dir:   dir,
		Tests: includeTests,
	}
	pkgs, err := packages.Load(conf, patterns...)
	if err != nil {
		return nil, err
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, errors.New("errors while loading packages")
	}
	if !includeTests {
		return pkgs, nil
	}

	// With tests, a package is listed once alone and once with its test
	// files, along with the generated test main; only the most complete
	// variant of each is kept.
	var res []*packages.Package
	index := map[string]int{}
	for _, pkg := range pkgs {
		if pkg.Name == "main" && strings.HasSuffix(pkg.ID, ".test") {
			continue
		}
		i, ok := index[pkg.PkgPath]
		switch {
		case !ok:
			index[pkg.PkgPath] = len(res)
			res = append(res, pkg)
		case len(pkg.GoFiles) > len(res[i].GoFiles):
			res[i] = pkg
		}
	}
	return res, nil
}
