package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formbind/pkg/artifact"
	"github.com/goliatone/go-formbind/pkg/binding"
	"github.com/goliatone/go-formbind/pkg/classfile"
	"github.com/goliatone/go-formbind/pkg/classpath"
	"github.com/goliatone/go-formbind/pkg/codegen"
	"github.com/goliatone/go-formbind/pkg/diag"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/nested"
)

// pass owns every piece of mutable state of one Run. It is created and
// discarded by Run and never shared.
type pass struct {
	o         *Orchestrator
	req       Request
	report    *diag.Report
	sourceLoc classpath.Location
	set       *classpath.Set
	registry  *binding.Registry
	scanned   *nested.Scanned
	locator   *artifact.Locator
}

func newPass(o *Orchestrator, req Request, report *diag.Report) *pass {
	return &pass{
		o:         o,
		req:       req,
		report:    report,
		sourceLoc: classpath.NewDirLocation(o.fs, req.SourceRoot),
		set: classpath.Build(req.SourceRoot, req.OutputRoot, req.Classpath,
			classpath.WithFileSystem(o.fs),
			classpath.WithLogger(o.logger),
		),
		registry: binding.NewRegistry(),
		scanned:  nested.NewScanned(),
		locator:  artifact.NewLocator(o.fs, req.OutputRoot, o.naming),
	}
}

func (p *pass) close() {
	if err := p.set.Close(); err != nil {
		p.o.logger.WithError(err).Warn("Error closing classpath entries")
	}
}

// bind parses every candidate and registers the bound classes. Forms are
// only patched once every candidate is bound, so a class claimed twice is
// skipped for both of its forms.
func (p *pass) bind(ctx context.Context) ([]*form.Descriptor, error) {
	var bound []*form.Descriptor
	for _, candidate := range p.req.Descriptors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := form.CleanName(candidate)
		if name == "" {
			p.fail(candidate, fmt.Errorf("orchestrator: form path %s is outside the source root", candidate))
			continue
		}
		log := p.o.logger.WithField("form", name)
		log.Debug("Processing form")

		descriptor, err := p.o.parser.Parse(ctx, classpath.SourceFor(p.sourceLoc, name))
		if err != nil {
			switch {
			case errors.Is(err, form.ErrAlienFile):
				p.warn(name, "Skipping non-form file")
				log.WithError(err).Debug("Not a form file")
			case isAbort(err):
				return nil, fmt.Errorf("orchestrator: error processing form file %s: %w", name, err)
			default:
				p.fail(name, err)
			}
			continue
		}
		if descriptor == nil {
			p.fail(name, fmt.Errorf("orchestrator: parser returned no descriptor for %s", name))
			continue
		}
		if descriptor.Path == "" {
			descriptor.Path = name
		}
		p.scanned.Add(descriptor)

		if !descriptor.Bound() {
			log.Debug("Form not bound, skipping")
			continue
		}
		if err := p.registry.Register(descriptor.BoundClass, name); err != nil {
			p.fail(name, err)
			continue
		}
		bound = append(bound, descriptor)
	}
	return bound, nil
}

// patch locates, reads and generates every bound form in candidate order.
func (p *pass) patch(ctx context.Context, bound []*form.Descriptor) error {
	for _, descriptor := range bound {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.patchOne(ctx, descriptor); err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) patchOne(ctx context.Context, descriptor *form.Descriptor) error {
	name := descriptor.Path
	log := p.o.logger.WithFields(logrus.Fields{"form": name, "class": descriptor.BoundClass})

	if p.registry.Conflicted(descriptor.BoundClass) {
		log.Debug("Class is bound to more than one form, skipping")
		return nil
	}

	classFile, err := p.locator.Locate(descriptor.BoundClass)
	if err != nil {
		p.fail(name, err)
		return nil
	}

	version, err := classfile.ReadVersion(p.o.fs, classFile)
	if err != nil {
		var formatErr *classfile.FormatError
		if errors.As(err, &formatErr) {
			p.fail(name, err)
			return nil
		}
		return fmt.Errorf("orchestrator: I/O error processing %s: %w", classFile, err)
	}
	policy := classfile.PolicyFor(version)
	log = log.WithFields(logrus.Fields{"artifact": classFile, "version": version.String()})

	resolver := nested.NewResolver(descriptor, p.set, p.o.parser, p.scanned,
		nested.WithNaming(p.o.naming),
		nested.WithLogger(log),
	)
	result, err := p.o.generator.Generate(ctx, codegen.Request{
		Descriptor: descriptor,
		Locations:  p.set,
		Nested:     resolver,
		Artifact:   classFile,
		Version:    version,
		Policy:     policy,
	})
	if err != nil {
		for _, resolveErr := range resolver.Errors() {
			p.fail(name, resolveErr)
		}
		return fmt.Errorf("orchestrator: error processing form file %s: %w", name, err)
	}

	for _, warning := range result.Warnings {
		p.warn(name, warning.String())
	}
	for _, msg := range result.Errors {
		p.fail(name, errors.New(msg.String()))
	}
	resolveErrs := resolver.Errors()
	for _, resolveErr := range resolveErrs {
		p.fail(name, resolveErr)
	}
	if len(result.Errors) == 0 && len(resolveErrs) == 0 {
		p.report.MarkBound()
		log.WithField("policy", policy.String()).Debug("Form bound")
	}

	if p.o.copyDescriptors {
		if err := p.copyDescriptor(name); err != nil {
			return fmt.Errorf("orchestrator: copy form file %s: %w", name, err)
		}
	}
	return nil
}

func (p *pass) copyDescriptor(name string) error {
	src := filepath.Join(p.req.SourceRoot, filepath.FromSlash(name))
	dst := filepath.Join(p.req.OutputRoot, filepath.FromSlash(name))
	p.o.logger.WithFields(logrus.Fields{"form": name, "destination": dst}).Debug("Copying form file")

	in, err := p.o.fs.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	if err := p.o.fs.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := p.o.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func (p *pass) warn(path, message string) {
	entry := p.report.Warn(path, message)
	p.o.logger.WithField("form", path).Warn(entry.Message)
}

func (p *pass) fail(path string, err error) {
	entry := p.report.Error(path, err)
	p.o.logger.WithField("form", path).Error(entry.Message)
}

// isAbort reports failures that indicate the filesystem itself misbehaves,
// as opposed to a malformed form file.
func isAbort(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pathErr *fs.PathError
	return errors.As(err, &pathErr)
}
