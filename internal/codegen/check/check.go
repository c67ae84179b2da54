// Package check provides a code generator that validates everything the
// bytecode patcher depends on (nested forms, their bound classes, component
// classes and the target class file) without modifying any class file.
package check

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbind/pkg/classfile"
	"github.com/goliatone/go-formbind/pkg/classpath"
	"github.com/goliatone/go-formbind/pkg/codegen"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/nested"
)

// Options configures the generator.
type Options struct {
	// Naming is used to look up component classes.
	Naming classpath.Naming
	// PlatformPrefixes lists class name prefixes provided by the runtime
	// itself; component classes under them are not looked up.
	PlatformPrefixes []string
}

// DefaultPlatformPrefixes covers the packages shipped with the runtime.
var DefaultPlatformPrefixes = []string{"java.", "javax.", "com.intellij.uiDesigner.core."}

// Generator implements codegen.Generator.
type Generator struct {
	naming   classpath.Naming
	platform []string
}

var _ codegen.Generator = (*Generator)(nil)

// New constructs a Generator.
func New(options Options) *Generator {
	platform := options.PlatformPrefixes
	if platform == nil {
		platform = DefaultPlatformPrefixes
	}
	return &Generator{naming: options.Naming, platform: platform}
}

// Generate validates the request and reports what a patcher would reject.
func (g *Generator) Generate(ctx context.Context, req codegen.Request) (codegen.Report, error) {
	var report codegen.Report
	if req.Descriptor == nil {
		return report, errors.New("check: descriptor is nil")
	}
	if req.Nested == nil {
		return report, errors.New("check: nested resolver is nil")
	}
	if req.Policy != classfile.PolicyFor(req.Version) {
		report.Warn("", fmt.Sprintf("stack policy %s does not match class file version %s", req.Policy, req.Version))
	}
	if req.Descriptor.Root == nil {
		report.Warn("", "form has no root container")
		return report, nil
	}

	var walkErr error
	req.Descriptor.Root.Walk(func(c *form.Component) {
		if walkErr != nil {
			return
		}
		if c.IsNested() {
			walkErr = g.checkNested(ctx, req, c, &report)
			return
		}
		g.checkComponentClass(req, c, &report)
	})
	if walkErr != nil {
		return report, walkErr
	}
	return report, nil
}

func (g *Generator) checkNested(ctx context.Context, req codegen.Request, c *form.Component, report *codegen.Report) error {
	descriptor, err := req.Nested.Resolve(ctx, c.NestedForm)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errors.Is(err, nested.ErrNotFound) {
			report.Fail(c.ID, "Cannot load nested form: "+c.NestedForm)
			return nil
		}
		report.Fail(c.ID, fmt.Sprintf("Cannot load nested form %s: %v", c.NestedForm, err))
		return nil
	}
	if descriptor.Path == req.Descriptor.Path {
		report.Fail(c.ID, "Form cannot be nested in itself: "+c.NestedForm)
		return nil
	}
	// Failures are recorded by the resolver against the root form.
	req.Nested.ResolveBoundClass(ctx, descriptor)
	return nil
}

func (g *Generator) checkComponentClass(req codegen.Request, c *form.Component, report *codegen.Report) {
	if c.Class == "" || g.isPlatform(c.Class) {
		return
	}
	if _, ok := g.naming.Search(c.Class, req.Locations.Exists); ok {
		return
	}
	report.Warn(c.ID, fmt.Sprintf("class %s not found on the classpath", c.Class))
}

func (g *Generator) isPlatform(className string) bool {
	for _, prefix := range g.platform {
		if strings.HasPrefix(className, prefix) {
			return true
		}
	}
	return false
}
