package generator

import (
	"go/ast"
	"go/importer"
	goparser "go/parser"
	"go/token"
	"go/types"
	"io"
	"testing"

	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/go/packages"

	"github.com/aerisconsulting/catadioptre/processor"
)

// loadContext type-checks source as the single file of the package
// example.com/calc and returns its processor context.
func loadContext(t *testing.T, source string, logger log.FieldLogger) *processor.Context {
	t.Helper()
	fset := token.NewFileSet()
	f, err := goparser.ParseFile(fset, "calc.go", source, goparser.ParseComments)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	info := &types.Info{
		Defs:  map[*ast.Ident]types.Object{},
		Uses:  map[*ast.Ident]types.Object{},
		Types: map[ast.Expr]types.TypeAndValue{},
	}
	conf := types.Config{Importer: importer.ForCompiler(fset, "source", nil)}
	pkg, err := conf.Check("example.com/calc", fset, []*ast.File{f}, info)
	if err != nil {
		t.Fatalf("failed to type-check: %v", err)
	}
	ctx, err := processor.NewContext(&packages.Package{
		ID:        pkg.Path(),
		Name:      pkg.Name(),
		PkgPath:   pkg.Path(),
		GoFiles:   []string{"calc.go"},
		Fset:      fset,
		Syntax:    []*ast.File{f},
		Types:     pkg,
		TypesInfo: info,
	}, logger)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	return ctx
}

func quietLogger() log.FieldLogger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}
