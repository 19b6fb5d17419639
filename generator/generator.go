// Package generator produces the companion files of the types declaring
// members annotated with catadioptre.Testable.
//
// The companion of a type T is a file named testable_<t>_test.go in the
// package of T. For every annotated field f it holds a getter
// TestableTF, a setter TestableTSetF and a clearer TestableTClearF, as
// enabled by the annotation. For every annotated method m it holds a
// function TestableTM calling it. All of them take the instance as first
// argument and rely on the reflective functions of the catadioptre package.
package generator

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/aerisconsulting/catadioptre/processor"
)

// DefaultPrefix starts the names of the generated functions and files.
const DefaultPrefix = "Testable"

// Options control the generated companions.
type Options struct {
	// Prefix starts the names of the proxies. Blank means DefaultPrefix.
	Prefix string `yaml:"prefix"`
	// PackageScoped generates unexported proxies for the members whose
	// types cannot all be named outside of their package, instead of
	// skipping them.
	PackageScoped bool `yaml:"package_scoped"`
	// NoTestSuffix names the companions without the _test suffix, making
	// them part of the package proper.
	NoTestSuffix bool `yaml:"no_test_suffix"`
}

// DefaultOptions returns the options used when none is configured.
func DefaultOptions() Options {
	return Options{Prefix: DefaultPrefix}
}

// LoadOptions reads options from the YAML file at path, on top of the
// defaults.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("reading options file: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	return opts, nil
}

func (o Options) prefix() string {
	if o.Prefix == "" {
		return DefaultPrefix
	}
	return o.Prefix
}

// FilePrefix returns the start of the names of the companions.
func (o Options) FilePrefix() string {
	return snakeCase(o.prefix()) + "_"
}

// FileName returns the name of the companion of the type called typeName.
func (o Options) FileName(typeName string) string {
	name := o.FilePrefix() + snakeCase(typeName)
	if o.NoTestSuffix {
		return name + ".go"
	}
	return name + "_test.go"
}

// Companions returns the companions of the declaring types of ctx. Types
// whose members all fail the visibility check get no companion.
func Companions(ctx *processor.Context, opts Options) []*Companion {
	var res []*Companion
	for _, dt := range ctx.DeclaringTypes() {
		if c := companion(ctx, opts, dt); c != nil {
			res = append(res, c)
		}
	}
	return res
}

func companion(ctx *processor.Context, opts Options, dt *processor.DeclaringType) *Companion {
	b := newCompanionBuilder(opts, ctx.Log, ctx.Package.Types, dt)
	for _, m := range dt.Members {
		scoped := false
		switch v := LowestVisibility(m); {
		case v == Public:
		case v == Package && opts.PackageScoped:
			scoped = true
		default:
			ctx.Log.WithFields(log.Fields{
				"type":       dt.Obj.Name(),
				"member":     m.Obj.Name(),
				"visibility": v,
				"file":       m.GetDeclaringFilename(),
				"position":   m.Pos,
			}).Warnf("the %s cannot be exposed by a companion, no proxy is generated", m)
			continue
		}
		if m.Kind == processor.Field && m.Testable.ProxyCount() == 0 {
			ctx.Log.WithFields(log.Fields{
				"type":     dt.Obj.Name(),
				"member":   m.Obj.Name(),
				"file":     m.GetDeclaringFilename(),
				"position": m.Pos,
			}).Warnf("the %s disables every proxy, none is generated", m)
			continue
		}
		switch m.Kind {
		case processor.Field:
			b.addField(m, scoped)
		case processor.Method:
			b.addMethod(m, scoped)
		}
	}
	if len(b.proxies) == 0 {
		return nil
	}
	return &Companion{
		FileName:      opts.FileName(dt.Obj.Name()),
		TypeName:      dt.Obj.Name(),
		Package:       ctx.Package.Types.Name(),
		Imports:       b.importLines(),
		Registrations: b.registrations,
		Proxies:       b.proxies,
	}
}

// Processor returns the processor writing the companions of every package.
// A companion that cannot be written is logged and does not prevent the
// others from being written; the processor then returns all the errors.
func Processor(opts Options) processor.Processor {
	return func(ctx *processor.Context, output processor.OutputFactory) error {
		var errs []error
		for _, c := range Companions(ctx, opts) {
			if err := write(ctx, c, output); err != nil {
				ctx.Log.WithField("type", c.TypeName).Errorf("companion %s could not be written: %v", c.FileName, err)
				errs = append(errs, err)
				continue
			}
			ctx.Log.WithField("type", c.TypeName).Debugf("wrote %s with %d proxies", c.FileName, len(c.Proxies))
		}
		return errors.Join(errs...)
	}
}

func write(ctx *processor.Context, c *Companion, output processor.OutputFactory) (err error) {
	src, err := c.Source()
	if err != nil {
		return err
	}
	w, err := output(ctx.OutputPath(c.FileName))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = w.Write(src)
	return err
}
