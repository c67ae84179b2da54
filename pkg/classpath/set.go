package classpath

import (
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formbind/pkg/form"
)

// Option customises Build.
type Option func(*buildOptions)

type buildOptions struct {
	fs     afero.Fs
	logger logrus.FieldLogger
}

// WithFileSystem sets the filesystem roots and archives are read from.
// Defaults to the operating system.
func WithFileSystem(fsys afero.Fs) Option {
	return func(o *buildOptions) {
		o.fs = fsys
	}
}

// WithLogger sets the logger used to report inert classpath entries.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// Set is an ordered sequence of Locations. Lookups return the first
// location holding the resource. A Set is not safe for concurrent use.
type Set struct {
	locations []Location
}

// Build assembles the location set for one pass: the source root (so form
// files resolve as resources), the output root (so classes compiled by the
// current build win over dependencies) and then every dependency in order.
// Directories become directory locations; anything else is treated as an
// archive and opened lazily, so unreadable entries never fail the build.
func Build(sourceRoot, outputRoot string, dependencies []string, options ...Option) *Set {
	cfg := buildOptions{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.fs == nil {
		cfg.fs = afero.NewOsFs()
	}
	if cfg.logger == nil {
		cfg.logger = discardLogger()
	}

	set := &Set{}
	for _, root := range []string{sourceRoot, outputRoot} {
		if strings.TrimSpace(root) == "" {
			continue
		}
		set.locations = append(set.locations, NewDirLocation(cfg.fs, root))
	}
	for _, dep := range dependencies {
		if strings.TrimSpace(dep) == "" {
			continue
		}
		if isDir, _ := afero.IsDir(cfg.fs, dep); isDir {
			set.locations = append(set.locations, NewDirLocation(cfg.fs, dep))
			continue
		}
		set.locations = append(set.locations, NewArchiveLocation(cfg.fs, dep, cfg.logger))
	}
	return set
}

// NewSet wraps already constructed locations.
func NewSet(locations ...Location) *Set {
	return &Set{locations: append([]Location(nil), locations...)}
}

// Locations returns the locations in lookup order.
func (s *Set) Locations() []Location {
	if s == nil {
		return nil
	}
	return append([]Location(nil), s.locations...)
}

// Find returns the first location holding name.
func (s *Set) Find(name string) (Location, bool) {
	if s == nil {
		return nil, false
	}
	for _, loc := range s.locations {
		if loc.Exists(name) {
			return loc, true
		}
	}
	return nil, false
}

// Exists reports whether any location holds name.
func (s *Set) Exists(name string) bool {
	_, ok := s.Find(name)
	return ok
}

// Open opens name from the first location holding it.
func (s *Set) Open(name string) (io.ReadCloser, error) {
	loc, ok := s.Find(name)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return loc.Open(name)
}

// Source returns a form.Source for name bound to the first location holding
// it.
func (s *Set) Source(name string) (form.Source, bool) {
	name = form.CleanName(name)
	loc, ok := s.Find(name)
	if !ok {
		return nil, false
	}
	return SourceFor(loc, name), true
}

// SourceFor binds a resource of loc into a form.Source.
func SourceFor(loc Location, name string) form.Source {
	name = form.CleanName(name)
	location := loc.Root() + "/" + name
	if loc.Kind() == form.SourceKindArchive {
		location = loc.Root() + "!/" + name
	}
	return form.NewSource(loc.Kind(), name, location, func() (io.ReadCloser, error) {
		return loc.Open(name)
	})
}

// Close releases archive handles held by the set.
func (s *Set) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, loc := range s.locations {
		if err := loc.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
