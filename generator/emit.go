package generator

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"golang.org/x/tools/imports"
)

const header = "// Code generated by catadioptre. DO NOT EDIT."

var companionTemplate = template.Must(template.New("companion").Parse(`{{.Header}}

package {{.Package}}
{{with .Imports}}
import (
{{- range .}}
{{if .}}	{{.}}{{end}}
{{- end}}
)
{{end}}
{{- with .Registrations}}
func init() {
{{- range .}}
	{{.}}
{{- end}}
}
{{end}}
{{- range .Proxies}}
// {{.Doc}}
func {{.Signature}} {
{{- range .Body}}
	{{.}}
{{- end}}
}
{{end}}`))

// Companion is the generated file of a declaring type.
type Companion struct {
	// FileName is the base name of the file.
	FileName string
	// TypeName is the name of the declaring type.
	TypeName      string
	Package       string
	Imports       []string
	Registrations []string
	Proxies       []*ProxySpec
}

// Source renders the companion as formatted Go source.
func (c *Companion) Source() ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*Companion
		Header string
	}{c, header}
	if err := companionTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering companion of %s: %w", c.TypeName, err)
	}
	src, err := imports.Process(c.FileName, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting companion of %s: %w\n%s", c.TypeName, err, buf.Bytes())
	}
	return src, nil
}

// importLines returns the import specs of b in gofmt order: standard library
// packages first, then a blank line and the others. A blank string stands
// for the blank line.
func (b *companionBuilder) importLines() []string {
	var std, others []string
	for _, spec := range b.imports.ImportSpecs() {
		line := fmt.Sprintf("%q", spec.ImportPath)
		if spec.PackageAlias != "" && spec.PackageAlias != lastElement(spec.ImportPath) {
			line = spec.PackageAlias + " " + line
		}
		first := strings.SplitN(spec.ImportPath, "/", 2)[0]
		if strings.Contains(first, ".") {
			others = append(others, line)
		} else {
			std = append(std, line)
		}
	}
	byPath := func(lines []string) {
		sort.Slice(lines, func(i, j int) bool {
			return unquotedPath(lines[i]) < unquotedPath(lines[j])
		})
	}
	byPath(std)
	byPath(others)
	if len(std) > 0 && len(others) > 0 {
		std = append(std, "")
	}
	return append(std, others...)
}

func unquotedPath(line string) string {
	return line[strings.Index(line, `"`):]
}

func lastElement(importPath string) string {
	return importPath[strings.LastIndex(importPath, "/")+1:]
}

// snakeCase converts a Go identifier to snake case: HTTPServer becomes
// http_server.
func snakeCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				sb.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
