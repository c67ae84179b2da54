// Package codegen defines the contract between the binding engine and the
// code generator that patches class files. The engine prepares a Request
// and hands the generator a NestedResolver capability; the generator reports
// back warnings and errors.
package codegen

import (
	"context"

	"github.com/goliatone/go-formbind/pkg/classfile"
	"github.com/goliatone/go-formbind/pkg/classpath"
	"github.com/goliatone/go-formbind/pkg/form"
)

// NestedResolver resolves nested form references for the form currently
// being generated.
type NestedResolver interface {
	// Resolve returns the descriptor a nested form reference points to.
	// Missing references return an error matching nested.ErrNotFound.
	Resolve(ctx context.Context, reference string) (*form.Descriptor, error)
	// ResolveBoundClass returns the compiled name of the class a nested
	// descriptor binds to, e.g. "pkg.Outer$Inner".
	ResolveBoundClass(ctx context.Context, descriptor *form.Descriptor) string
}

// Request carries everything a generator needs for one form.
type Request struct {
	Descriptor *form.Descriptor
	Locations  *classpath.Set
	Nested     NestedResolver
	// Artifact is the class file to patch.
	Artifact string
	Version  classfile.Version
	Policy   classfile.StackPolicy
}

// Message is a single generator diagnostic. Component is the id of the
// component it concerns, when any.
type Message struct {
	Component string
	Text      string
}

func (m Message) String() string {
	if m.Component == "" {
		return m.Text
	}
	return m.Component + ": " + m.Text
}

// Report collects generator diagnostics for one form.
type Report struct {
	Warnings []Message
	Errors   []Message
}

// Warn appends a warning.
func (r *Report) Warn(component, text string) {
	r.Warnings = append(r.Warnings, Message{Component: component, Text: text})
}

// Fail appends an error.
func (r *Report) Fail(component, text string) {
	r.Errors = append(r.Errors, Message{Component: component, Text: text})
}

// Generator patches a class file so it builds the form's UI. A returned
// error aborts the whole pass; form level problems belong in the Report.
type Generator interface {
	Generate(ctx context.Context, req Request) (Report, error)
}

// GeneratorFunc adapts a function into a Generator.
type GeneratorFunc func(ctx context.Context, req Request) (Report, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (Report, error) {
	return f(ctx, req)
}
