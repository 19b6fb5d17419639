package generator

import (
	"fmt"
	"go/types"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jhump/gopoet"
	log "github.com/sirupsen/logrus"

	"github.com/aerisconsulting/catadioptre/processor"
)

const runtimePkgPath = "github.com/aerisconsulting/catadioptre"

// ProxyKind is the kind of a generated proxy function.
type ProxyKind int

const (
	// Getter returns the value of a field.
	Getter ProxyKind = iota
	// Setter assigns a field and returns the instance.
	Setter
	// Clearer assigns the zero value to a field and returns the instance.
	Clearer
	// Invoker calls a method and returns its results.
	Invoker
)

func (k ProxyKind) String() string {
	switch k {
	case Getter:
		return "getter"
	case Setter:
		return "setter"
	case Clearer:
		return "clearer"
	case Invoker:
		return "invoker"
	}
	return fmt.Sprintf("ProxyKind(%d)", int(k))
}

// ProxySpec is a generated function giving access to an annotated member.
type ProxySpec struct {
	Kind ProxyKind
	Name string
	// Member is the name of the field or method.
	Member string
	Doc    string
	// TypeParams are the declarations of the type parameters: the ones of the
	// declaring type, then the one of the instance.
	TypeParams []string
	Params     []string
	Results    []string
	Body       []string
}

// Signature returns the function signature, without the func keyword.
func (p *ProxySpec) Signature() string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	if len(p.TypeParams) > 0 {
		sb.WriteString("[" + strings.Join(p.TypeParams, ", ") + "]")
	}
	sb.WriteString("(" + strings.Join(p.Params, ", ") + ")")
	switch len(p.Results) {
	case 0:
	case 1:
		sb.WriteString(" " + p.Results[0])
	default:
		sb.WriteString(" (" + strings.Join(p.Results, ", ") + ")")
	}
	return sb.String()
}

// companionBuilder accumulates the proxies of one declaring type.
type companionBuilder struct {
	opts    Options
	log     log.FieldLogger
	pkg     *types.Package
	dt      *processor.DeclaringType
	imports *gopoet.Imports
	// rt qualifies the symbols of the runtime package, "catadioptre." unless
	// the companion belongs to that package
	rt            string
	registrations []string
	proxies       []*ProxySpec
	names         map[string]bool
	// qualifiers are the names the imported packages are referenced with
	qualifiers map[string]bool
}

func newCompanionBuilder(opts Options, logger log.FieldLogger, pkg *types.Package, dt *processor.DeclaringType) *companionBuilder {
	b := &companionBuilder{
		opts:    opts,
		log:     logger,
		pkg:     pkg,
		dt:      dt,
		imports:    gopoet.NewImportsFor(pkg.Path()),
		names:      map[string]bool{},
		qualifiers: map[string]bool{},
	}
	if alias := b.alias(gopoet.NewPackage(runtimePkgPath)); alias != "" {
		b.rt = alias + "."
	}
	return b
}

func (b *companionBuilder) alias(p gopoet.Package) string {
	if p.ImportPath == b.pkg.Path() {
		return ""
	}
	q := strings.TrimSuffix(b.imports.RegisterImportForPackage(p), ".")
	if q != "" {
		b.qualifiers[q] = true
	}
	return q
}

// reserved returns the identifiers a proxy cannot declare: the qualifiers of
// the imported packages, which must have been registered already.
func (b *companionBuilder) reserved() map[string]bool {
	res := map[string]bool{}
	for q := range b.qualifiers {
		res[q] = true
	}
	return res
}

func (b *companionBuilder) qualifier(p *types.Package) string {
	if p == b.pkg || p.Path() == b.pkg.Path() {
		return ""
	}
	return b.alias(gopoet.PackageForGoType(p))
}

func (b *companionBuilder) typeString(t types.Type) string {
	return types.TypeString(t, b.qualifier)
}

// proxyName returns the name of a proxy for member: prefix, type name, verb
// and member name, exported unless scoped.
func (b *companionBuilder) proxyName(verb, member string, scoped bool) string {
	name := b.opts.prefix() + upperFirst(b.dt.Obj.Name()) + verb + upperFirst(member)
	if scoped {
		return lowerFirst(name)
	}
	return upperFirst(name)
}

// add records p unless a proxy already has its name.
func (b *companionBuilder) add(p *ProxySpec) {
	if b.names[p.Name] {
		b.log.WithFields(log.Fields{
			"type":   b.dt.Obj.Name(),
			"member": p.Member,
			"proxy":  p.Name,
		}).Warnf("a proxy named %s already exists, the %s of %s is skipped", p.Name, p.Kind, p.Member)
		return
	}
	b.names[p.Name] = true
	b.proxies = append(b.proxies, p)
}

// selfType returns the declarations of the type parameters of a proxy, the
// name of the instance type parameter and the expression of the declaring
// type, instantiated with the given type parameters.
func (b *companionBuilder) selfType(tps *types.TypeParamList, used map[string]bool) (decls []string, self, target string) {
	var names []string
	for i := 0; i < tps.Len(); i++ {
		tp := tps.At(i)
		name := tp.Obj().Name()
		if name == "_" {
			name = unique("T", used)
		}
		names = append(names, name)
		used[name] = true
		decls = append(decls, name+" "+b.typeString(tp.Constraint()))
	}
	target = b.dt.Obj.Name()
	if len(names) > 0 {
		target += "[" + strings.Join(names, ", ") + "]"
	}
	self = unique("I", used)
	if b.dt.IsInterface() {
		decls = append(decls, self+" "+target)
	} else {
		decls = append(decls, self+" ~*"+target)
	}
	return decls, self, target
}

// registerConstraints registers the imports needed by the constraints of tps.
func (b *companionBuilder) registerConstraints(tps *types.TypeParamList) {
	for i := 0; i < tps.Len(); i++ {
		b.typeString(tps.At(i).Constraint())
	}
}

func (b *companionBuilder) addField(e *processor.AnnotatedElement, scoped bool) {
	field := e.Field()
	name := field.Name()
	var tps *types.TypeParamList
	if n := b.dt.Named(); n != nil {
		tps = n.TypeParams()
	}
	fieldType := b.typeString(field.Type())
	b.registerConstraints(tps)
	used := b.reserved()
	decls, self, _ := b.selfType(tps, used)
	instance := unique("instance", used)
	lit := strconv.Quote(name)

	if e.Testable.Getter {
		p := b.proxyName("", name, scoped)
		b.add(&ProxySpec{
			Kind:       Getter,
			Name:       p,
			Member:     name,
			Doc:        fmt.Sprintf("%s returns the field %s of %s.", p, name, instance),
			TypeParams: decls,
			Params:     []string{instance + " " + self},
			Results:    []string{fieldType},
			Body:       []string{fmt.Sprintf("return %sMustGetField[%s](%s, %s)", b.rt, fieldType, instance, lit)},
		})
	}
	if e.Testable.Setter {
		p := b.proxyName("Set", name, scoped)
		value := unique("value", used)
		b.add(&ProxySpec{
			Kind:       Setter,
			Name:       p,
			Member:     name,
			Doc:        fmt.Sprintf("%s sets the field %s of %s and returns %s.", p, name, instance, instance),
			TypeParams: decls,
			Params:     []string{instance + " " + self, value + " " + fieldType},
			Results:    []string{self},
			Body:       []string{fmt.Sprintf("return %sMustSetField(%s, %s, %s)", b.rt, instance, lit, value)},
		})
	}
	if e.Testable.Clearer {
		p := b.proxyName("Clear", name, scoped)
		b.add(&ProxySpec{
			Kind:       Clearer,
			Name:       p,
			Member:     name,
			Doc:        fmt.Sprintf("%s sets the field %s of %s to its zero value and returns %s.", p, name, instance, instance),
			TypeParams: decls,
			Params:     []string{instance + " " + self},
			Results:    []string{self},
			Body:       []string{fmt.Sprintf("return %sMustClearField(%s, %s)", b.rt, instance, lit)},
		})
	}
}

func (b *companionBuilder) addMethod(e *processor.AnnotatedElement, scoped bool) {
	method := e.Method()
	name := method.Name()
	sig := method.Type().(*types.Signature)

	tps := sig.RecvTypeParams()
	if b.dt.IsInterface() {
		if n := b.dt.Named(); n != nil {
			tps = n.TypeParams()
		}
	}

	// the types are written first so that every qualifier they need is known
	var paramTypes, results []string
	for i := 0; i < sig.Params().Len(); i++ {
		t := sig.Params().At(i).Type()
		if sig.Variadic() && i == sig.Params().Len()-1 {
			paramTypes = append(paramTypes, "..."+b.typeString(t.(*types.Slice).Elem()))
		} else {
			paramTypes = append(paramTypes, b.typeString(t))
		}
	}
	for i := 0; i < sig.Results().Len(); i++ {
		results = append(results, b.typeString(sig.Results().At(i).Type()))
	}
	b.registerConstraints(tps)

	// parameters keep their names, the generated identifiers avoid them
	reserved := b.reserved()
	for i := 0; i < tps.Len(); i++ {
		reserved[tps.At(i).Obj().Name()] = true
	}
	used := map[string]bool{}
	var params, args []string
	for i, ts := range paramTypes {
		pn := sig.Params().At(i).Name()
		if pn == "" || pn == "_" || reserved[pn] || used[pn] {
			pn = unique(fmt.Sprintf("p%d", i), used)
		}
		used[pn] = true
		params = append(params, pn+" "+ts)
		args = append(args, fmt.Sprintf("%sTyped(%s)", b.rt, pn))
	}
	for n := range reserved {
		used[n] = true
	}

	decls, self, target := b.selfType(tps, used)
	instance := unique("instance", used)
	params = append([]string{instance + " " + self}, params...)

	call := strings.Join(append([]string{instance, strconv.Quote(name)}, args...), ", ")
	var body []string
	registration := fmt.Sprintf("%sRegisterMethod(%s, %s)", b.rt, strconv.Quote(name), methodExpr(target, name, b.dt.IsInterface(), sig))
	if tps.Len() > 0 {
		// a generic method expression needs the type arguments of the call
		body = append(body, registration)
	} else {
		b.registrations = append(b.registrations, registration)
	}
	switch len(results) {
	case 0:
		body = append(body, fmt.Sprintf("%sMustInvoke(%s)", b.rt, call))
	case 1:
		body = append(body, fmt.Sprintf("return %sMustExecuteInvisible[%s](%s)", b.rt, results[0], call))
	default:
		res := unique("results", used)
		body = append(body, fmt.Sprintf("%s := %sMustInvoke(%s)", res, b.rt, call))
		var values []string
		for i, r := range results {
			values = append(values, fmt.Sprintf("%sResult[%s](%s, %d)", b.rt, r, res, i))
		}
		body = append(body, "return "+strings.Join(values, ", "))
	}

	p := b.proxyName("", name, scoped)
	b.add(&ProxySpec{
		Kind:       Invoker,
		Name:       p,
		Member:     name,
		Doc:        fmt.Sprintf("%s calls the method %s of %s.", p, name, instance),
		TypeParams: decls,
		Params:     params,
		Results:    results,
		Body:       body,
	})
}

// methodExpr returns the method expression of the method called name of
// target, with the receiver the method is declared with.
func methodExpr(target, name string, isInterface bool, sig *types.Signature) string {
	if isInterface {
		return target + "." + name
	}
	if _, ok := sig.Recv().Type().(*types.Pointer); ok {
		return "(*" + target + ")." + name
	}
	return target + "." + name
}

func unique(base string, used map[string]bool) string {
	name := base
	for i := 1; used[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	used[name] = true
	return name
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
