package nested

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-formbind/pkg/classpath"
	"github.com/goliatone/go-formbind/pkg/codegen"
	"github.com/goliatone/go-formbind/pkg/form"
)

var (
	// ErrNotFound matches references no location can serve.
	ErrNotFound = errors.New("nested: form not found")
	// ErrUnresolved matches every ResolutionError.
	ErrUnresolved = errors.New("nested: class not resolvable")
)

// ResolutionError reports a nested form whose bound class cannot be matched
// to any class on the classpath. It is recorded against the root form.
type ResolutionError struct {
	Root      string
	Reference string
	Class     string
}

func (e *ResolutionError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("nested form %s is not bound to a class", e.Reference)
	}
	return fmt.Sprintf("cannot resolve class %s of nested form %s", e.Class, e.Reference)
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrUnresolved
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithNaming overrides the class naming convention.
func WithNaming(naming classpath.Naming) Option {
	return func(r *Resolver) {
		r.naming = naming
	}
}

// WithLogger sets the logger used for cache traces.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver resolves nested form references while one root form is being
// generated. Each root gets its own Resolver so cached lookups never leak
// between roots; parsed top level forms are shared through Scanned.
type Resolver struct {
	root    *form.Descriptor
	set     *classpath.Set
	parser  form.Parser
	scanned *Scanned
	naming  classpath.Naming
	logger  logrus.FieldLogger

	cache map[string]*form.Descriptor
	errs  []error
}

var _ codegen.NestedResolver = (*Resolver)(nil)

// NewResolver creates a Resolver bound to root.
func NewResolver(root *form.Descriptor, set *classpath.Set, parser form.Parser, scanned *Scanned, options ...Option) *Resolver {
	r := &Resolver{
		root:    root,
		set:     set,
		parser:  parser,
		scanned: scanned,
		naming:  classpath.DefaultNaming,
		cache:   make(map[string]*form.Descriptor),
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.logger == nil {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		r.logger = logger
	}
	return r
}

// Resolve returns the descriptor for a nested form reference. Lookups go
// through the root's cache, then the forms already scanned by the pass, then
// the location set. Misses are cached; parse failures are not.
func (r *Resolver) Resolve(ctx context.Context, reference string) (*form.Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref := form.CleanName(reference)
	if ref == "" {
		if strings.TrimSpace(reference) == "" {
			return nil, fmt.Errorf("%w: empty reference", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %s is outside every location root", ErrNotFound, reference)
	}

	if cached, ok := r.cache[ref]; ok {
		if cached == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return cached, nil
	}

	if scanned, ok := r.scanned.Get(ref); ok {
		r.logger.WithField("nested", ref).Debug("Reusing scanned form")
		r.cache[ref] = scanned
		return scanned, nil
	}

	if r.parser == nil {
		return nil, errors.New("nested: parser is nil")
	}
	src, ok := r.set.Source(ref)
	if !ok {
		r.cache[ref] = nil
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	descriptor, err := r.parser.Parse(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("nested: load %s: %w", src.Location(), err)
	}
	if descriptor == nil {
		return nil, fmt.Errorf("nested: parser returned no descriptor for %s", src.Location())
	}
	if descriptor.Path == "" {
		descriptor.Path = ref
	}
	r.logger.WithFields(logrus.Fields{"nested": ref, "location": src.Location()}).Debug("Loaded nested form")
	r.cache[ref] = descriptor
	return descriptor, nil
}

// ResolveBoundClass returns the compiled spelling of the class descriptor
// binds to, peeling trailing segments into inner declarations until a class
// exists on the location set. When nothing matches, a ResolutionError is
// recorded against the root form and the bound class is returned unchanged.
func (r *Resolver) ResolveBoundClass(ctx context.Context, descriptor *form.Descriptor) string {
	if descriptor == nil {
		return ""
	}
	if !descriptor.Bound() {
		r.fail(&ResolutionError{Root: r.rootPath(), Reference: descriptor.Path})
		return ""
	}
	if resource, ok := r.naming.Search(descriptor.BoundClass, r.set.Exists); ok {
		return r.naming.BinaryName(resource)
	}
	r.fail(&ResolutionError{Root: r.rootPath(), Reference: descriptor.Path, Class: descriptor.BoundClass})
	return descriptor.BoundClass
}

// Errors returns the resolution errors recorded for the root form.
func (r *Resolver) Errors() []error {
	return append([]error(nil), r.errs...)
}

// Root returns the form the resolver is bound to.
func (r *Resolver) Root() *form.Descriptor {
	return r.root
}

func (r *Resolver) fail(err *ResolutionError) {
	r.errs = append(r.errs, err)
}

func (r *Resolver) rootPath() string {
	if r.root == nil {
		return ""
	}
	return r.root.Path
}
