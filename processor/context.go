package processor

import (
	"bytes"
	"errors"
	"go/ast"
	"go/token"
	"go/types"
	"path"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"text/scanner"

	log "github.com/sirupsen/logrus"
	"golang.org/x/tools/go/packages"

	"github.com/aerisconsulting/catadioptre"
	"github.com/aerisconsulting/catadioptre/parser"
)

var testablePkg, testableName string

func init() {
	rt := reflect.TypeOf(catadioptre.Testable{})
	testablePkg, testableName = rt.PkgPath(), rt.Name()
}

// Context represents the environment for an annotation processor. It represents
// a single package (for which the processors were invoked). It provides access
// to the elements of the package that are annotated with catadioptre.Testable.
type Context struct {
	// Package holds all information about the package being processed. It
	// provides access to the ASTs of files in the package as well as the
	// results of type analysis, to allow for introspection of package elements.
	Package *packages.Package
	// Log is where processors report diagnostics.
	Log log.FieldLogger
	// OutputDir is the directory where files generated for the package go.
	OutputDir string

	allElements []*AnnotatedElement
	byObject    map[types.Object]*AnnotatedElement
	byKind      map[ElementKind][]*AnnotatedElement
	declaring   []*DeclaringType
	processed   map[*ast.CommentGroup]struct{}
}

// NewContext extracts the annotated elements of pkg, which must have been
// loaded with its syntax and type information. It returns an error when an
// annotation is malformed or misplaced.
func NewContext(pkg *packages.Package, logger log.FieldLogger) (*Context, error) {
	if logger == nil {
		logger = log.StandardLogger()
	}
	ctx := &Context{
		Package:   pkg,
		Log:       logger.WithField("package", pkg.PkgPath),
		byObject:  map[types.Object]*AnnotatedElement{},
		byKind:    map[ElementKind][]*AnnotatedElement{},
		processed: map[*ast.CommentGroup]struct{}{},
	}
	if err := ctx.computeAllAnnotations(); err != nil {
		return nil, err
	}
	return ctx, nil
}

// Fset returns the file set of the positions in the package.
func (c *Context) Fset() *token.FileSet {
	return c.Package.Fset
}

// OutputPath returns the path of the generated file with the given name.
func (c *Context) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}

// NumElements returns the number of annotated elements in the package.
func (c *Context) NumElements() int {
	return len(c.allElements)
}

// GetElement returns the annotated element at the given index. The given index
// must be greater than or equal to zero and less than c.NumElements().
func (c *Context) GetElement(index int) *AnnotatedElement {
	return c.allElements[index]
}

// ElementsOfKind returns a slice of annotated elements of the given kind.
func (c *Context) ElementsOfKind(k ElementKind) []*AnnotatedElement {
	return c.byKind[k]
}

// ElementOf returns the annotated element for obj, or nil if it is not
// annotated.
func (c *Context) ElementOf(obj types.Object) *AnnotatedElement {
	return c.byObject[obj]
}

// DeclaringTypes returns the types declaring at least one annotated element,
// in the order they are first encountered in the sources.
func (c *Context) DeclaringTypes() []*DeclaringType {
	return c.declaring
}

func (c *Context) computeAllAnnotations() error {
	// methods may be declared before their type, so types are registered as
	// they are encountered and sorted by declaration afterwards
	for _, file := range c.Package.Syntax {
		if err := c.computeAnnotationsFromFile(file); err != nil {
			return err
		}
	}
	sortDeclaringTypes(c.declaring)
	return nil
}

func (c *Context) computeAnnotationsFromFile(file *ast.File) error {
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}
			for _, s := range decl.Specs {
				spec := s.(*ast.TypeSpec)
				if err := c.computeAnnotationsFromType(file, spec); err != nil {
					return err
				}
			}
		case *ast.FuncDecl:
			if decl.Recv == nil {
				continue
			}
			obj, ok := c.Package.TypesInfo.Defs[decl.Name].(*types.Func)
			if !ok {
				continue
			}
			recv := receiverTypeName(obj)
			if recv == nil {
				continue
			}
			if err := c.computeAnnotationsFromElement(file, Method, decl.Name, obj, decl.Doc, recv); err != nil {
				return err
			}
		}
	}

	// anything else carrying a Testable annotation is misplaced
	var err error
	ast.Inspect(file, func(node ast.Node) bool {
		if err != nil {
			return false
		}
		var doc *ast.CommentGroup
		switch node := node.(type) {
		case *ast.TypeSpec:
			doc = node.Doc
		case *ast.ValueSpec:
			doc = node.Doc
		case *ast.GenDecl:
			doc = node.Doc
		case *ast.FuncDecl:
			doc = node.Doc
		case *ast.Field:
			doc = node.Doc
		case *ast.File:
			doc = node.Doc
		}
		if doc == nil {
			return true
		}
		if _, ok := c.processed[doc]; ok {
			return true
		}
		c.processed[doc] = struct{}{}
		annos, adjuster, perr := c.parseAnnotations(doc)
		if perr != nil {
			// not an element annotations can apply to, so the comment is
			// not required to hold well-formed annotations
			return true
		}
		for _, a := range annos {
			if c.isTestable(file, a.Type) {
				err = NewErrorWithPosition(adjuster.adjustPosition(a.Pos),
					errors.New("Testable can only be used on fields of top-level struct types and on methods of top-level types"))
				return false
			}
		}
		return true
	})
	return err
}

func (c *Context) computeAnnotationsFromType(file *ast.File, spec *ast.TypeSpec) error {
	typeName, ok := c.Package.TypesInfo.Defs[spec.Name].(*types.TypeName)
	if !ok {
		return nil
	}
	switch t := spec.Type.(type) {
	case *ast.StructType:
		if t.Fields == nil {
			return nil
		}
		for _, fld := range t.Fields.List {
			names := fld.Names
			if names == nil {
				// embedded field
				names = []*ast.Ident{embeddedName(fld.Type)}
			}
			for _, n := range names {
				if n == nil {
					continue
				}
				obj := c.Package.TypesInfo.Defs[n]
				if obj == nil {
					continue
				}
				if err := c.computeAnnotationsFromElement(file, Field, n, obj, fld.Doc, typeName); err != nil {
					return err
				}
			}
		}
	case *ast.InterfaceType:
		if t.Methods == nil {
			return nil
		}
		for _, m := range t.Methods.List {
			for _, n := range m.Names {
				obj := c.Package.TypesInfo.Defs[n]
				if obj == nil {
					continue
				}
				if err := c.computeAnnotationsFromElement(file, Method, n, obj, m.Doc, typeName); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Context) computeAnnotationsFromElement(file *ast.File, kind ElementKind, id *ast.Ident, obj types.Object, doc *ast.CommentGroup, parent *types.TypeName) error {
	if c.ElementOf(obj) != nil {
		// already processed this one
		return nil
	}
	if doc == nil {
		return nil
	}
	c.processed[doc] = struct{}{}
	annos, adjuster, perr := c.parseAnnotations(doc)
	if perr != nil {
		return perr
	}

	var found *parser.Annotation
	for i, a := range annos {
		if !c.isTestable(file, a.Type) {
			continue
		}
		if found != nil {
			return NewErrorWithPosition(adjuster.adjustPosition(a.Pos),
				errors.New("annotation type Testable appears more than once but cannot be repeated"))
		}
		found = &annos[i]
	}
	if found == nil {
		return nil
	}
	testable, err := reifyTestable(*found, adjuster)
	if err != nil {
		return err
	}

	ae := &AnnotatedElement{
		Context:  c,
		Obj:      obj,
		Ident:    id,
		File:     file,
		Kind:     kind,
		Parent:   parent,
		Testable: testable,
		Pos:      c.Fset().Position(id.Pos()),
	}
	c.byObject[obj] = ae
	c.allElements = append(c.allElements, ae)
	c.byKind[kind] = append(c.byKind[kind], ae)
	dt := c.declaringType(parent)
	dt.Members = append(dt.Members, ae)
	return nil
}

func (c *Context) declaringType(obj *types.TypeName) *DeclaringType {
	for _, dt := range c.declaring {
		if dt.Obj == obj {
			return dt
		}
	}
	dt := &DeclaringType{Obj: obj, Pos: c.Fset().Position(obj.Pos())}
	c.declaring = append(c.declaring, dt)
	return dt
}

// parseAnnotations parses the annotations in doc. The returned adjuster
// translates positions in the annotations into positions in the file.
func (c *Context) parseAnnotations(doc *ast.CommentGroup) ([]parser.Annotation, posAdjuster, *ErrorWithPosition) {
	buf, adjuster := c.extractAnnotations(doc)
	if buf == nil {
		return nil, nil, nil
	}
	text := buf.String()
	annos, err := parser.ParseAnnotations("", buf)
	if err != nil {
		if !mentionsTestable(text) {
			// prose or annotations of other tools
			return nil, nil, nil
		}
		return nil, nil, NewErrorWithPosition(adjuster.adjustPosition(err.Pos()), err.Underlying())
	}
	return annos, adjuster, nil
}

// isTestable reports whether id names catadioptre.Testable in file: either
// unqualified, qualified with "catadioptre" or with the name under which the
// file imports the catadioptre package.
func (c *Context) isTestable(file *ast.File, id parser.Identifier) bool {
	if id.Name != testableName {
		return false
	}
	if id.PackageAlias == "" || id.PackageAlias == path.Base(testablePkg) {
		return true
	}
	for _, imp := range file.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != testablePkg {
			continue
		}
		if imp.Name != nil && imp.Name.Name == id.PackageAlias {
			return true
		}
	}
	return false
}

// docLine is a line of a doc comment without its comment markers, along with
// the position of its first character.
type docLine struct {
	text string
	pos  token.Position
}

func (c *Context) docLines(doc *ast.CommentGroup) []docLine {
	var lines []docLine
	for _, l := range doc.List {
		txt := l.Text
		if strings.HasPrefix(txt, "/*") {
			txt = strings.TrimSuffix(txt[2:], "*/")
		} else {
			txt = strings.TrimPrefix(txt, "//")
		}
		pos := c.Fset().Position(l.Slash)
		pos.Offset += 2
		pos.Column += 2
		for _, line := range strings.Split(txt, "\n") {
			lines = append(lines, docLine{text: line, pos: pos})
			pos.Offset += len(line) + 1
			pos.Line++
			pos.Column = 1
		}
	}
	return lines
}

// extractAnnotations returns the paragraph of doc that starts with its first
// line beginning with '@', up to the next blank line.
func (c *Context) extractAnnotations(doc *ast.CommentGroup) (*bytes.Buffer, posAdjuster) {
	if doc == nil {
		return nil, nil
	}
	lines := c.docLines(doc)
	first := -1
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l.text), "@") {
			first = i
			break
		}
	}
	if first < 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	var adjuster posAdjuster
	var last docLine
	for _, l := range lines[first:] {
		if strings.TrimSpace(l.text) == "" {
			break
		}
		adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: l.pos})
		buf.WriteString(l.text)
		buf.WriteByte('\n')
		last = l
	}
	// end of input
	end := last.pos
	end.Offset += len(last.text)
	end.Column += len(last.text)
	adjuster = append(adjuster, posAdj{outOffset: buf.Len(), inPos: end})
	return &buf, adjuster
}

// mentionsTestable reports whether an annotation in text may be Testable.
func mentionsTestable(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "@") {
			continue
		}
		name := line[1:]
		if i := strings.IndexAny(name, "{( \t"); i >= 0 {
			name = name[:i]
		}
		if name == testableName || strings.HasSuffix(name, "."+testableName) {
			return true
		}
	}
	return false
}

type posAdj struct {
	outOffset int
	inPos     token.Position
}

type posAdjuster []posAdj

func (a posAdjuster) adjustPosition(pos scanner.Position) token.Position {
	if pos.Line < 1 || pos.Line > len(a) {
		return token.Position{}
	}
	el := a[pos.Line-1]
	var tok token.Position
	tok.Filename = el.inPos.Filename
	tok.Line = el.inPos.Line
	tok.Column = el.inPos.Column + pos.Column - 1
	tok.Offset = el.inPos.Offset + (pos.Offset - el.outOffset)
	return tok
}

// receiverTypeName returns the named type of the receiver of method m.
func receiverTypeName(m *types.Func) *types.TypeName {
	recv := m.Type().(*types.Signature).Recv()
	if recv == nil {
		return nil
	}
	t := recv.Type()
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	if n, ok := t.(*types.Named); ok {
		return n.Obj()
	}
	return nil
}

func embeddedName(expr ast.Expr) *ast.Ident {
	switch e := expr.(type) {
	case *ast.Ident:
		return e
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	}
	return nil
}
