package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formbind/internal/codegen/check"
	formparser "github.com/goliatone/go-formbind/internal/form/parser"
	"github.com/goliatone/go-formbind/pkg/classpath"
	"github.com/goliatone/go-formbind/pkg/codegen"
	"github.com/goliatone/go-formbind/pkg/diag"
	"github.com/goliatone/go-formbind/pkg/form"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithParser injects a custom form parser.
func WithParser(parser form.Parser) Option {
	return func(o *Orchestrator) {
		o.parser = parser
	}
}

// WithGenerator injects the code generator forms are handed to.
func WithGenerator(generator codegen.Generator) Option {
	return func(o *Orchestrator) {
		o.generator = generator
	}
}

// WithLogger sets the logger diagnostics are mirrored to.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithFileSystem sets the filesystem used for roots, class files and
// classpath archives. Defaults to the operating system.
func WithFileSystem(fsys afero.Fs) Option {
	return func(o *Orchestrator) {
		o.fs = fsys
	}
}

// WithNaming overrides the class naming convention.
func WithNaming(naming classpath.Naming) Option {
	return func(o *Orchestrator) {
		o.naming = naming
	}
}

// WithCopyDescriptors toggles copying processed form files into the output
// root. Enabled by default.
func WithCopyDescriptors(enabled bool) Option {
	return func(o *Orchestrator) {
		o.copyDescriptors = enabled
	}
}

// Orchestrator drives binding passes. It only holds configuration; every
// call to Run creates its own pass state, so independent runs never share a
// registry or cache.
type Orchestrator struct {
	parser          form.Parser
	generator       codegen.Generator
	logger          logrus.FieldLogger
	fs              afero.Fs
	naming          classpath.Naming
	copyDescriptors bool
}

// New constructs an Orchestrator applying any provided options. Missing
// collaborators fall back to the GUI designer XML parser and the check
// generator.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		naming:          classpath.DefaultNaming,
		copyDescriptors: true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.parser == nil {
		o.parser = formparser.New(formparser.Options{})
	}
	if o.generator == nil {
		o.generator = check.New(check.Options{Naming: o.naming})
	}
	if o.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		o.logger = logger
	}
	if o.fs == nil {
		o.fs = afero.NewOsFs()
	}
}

// Request describes one pass.
type Request struct {
	// SourceRoot holds the form files; Descriptors are relative to it.
	SourceRoot string
	// OutputRoot holds the compiled classes of the current build.
	OutputRoot string
	// Classpath lists dependency directories and archives in lookup order.
	Classpath []string
	// Descriptors are the candidate form paths, relative to SourceRoot.
	Descriptors []string
}

// Run executes one pass over req.Descriptors. Form level problems are
// recorded in the returned report and do not stop the pass; check
// report.Failed() for the overall outcome. A non-nil error means the pass
// was aborted, either by the context or by an I/O failure it cannot reason
// about; the report then holds what was recorded up to that point.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*diag.Report, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.SourceRoot == "" {
		return nil, errors.New("orchestrator: source root is required")
	}
	if req.OutputRoot == "" {
		return nil, errors.New("orchestrator: output root is required")
	}

	report := &diag.Report{}
	if len(req.Descriptors) == 0 {
		o.logger.Debug("No form files to process")
		return report, nil
	}

	p := newPass(o, req, report)
	defer p.close()

	bound, err := p.bind(ctx)
	if err != nil {
		return report, err
	}
	if err := p.patch(ctx, bound); err != nil {
		return report, err
	}

	o.logger.WithFields(logrus.Fields{
		"forms":    len(req.Descriptors),
		"bound":    report.Bound(),
		"errors":   len(report.Errors()),
		"warnings": len(report.Warnings()),
	}).Debug("Form pass finished")
	return report, nil
}

// ErrFailed is returned by Check when a report holds errors.
var ErrFailed = errors.New("there were errors processing forms")

// Check turns a failed report into ErrFailed.
func Check(report *diag.Report) error {
	if report != nil && report.Failed() {
		return fmt.Errorf("orchestrator: %w (%d errors)", ErrFailed, len(report.Errors()))
	}
	return nil
}
