package classpath

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formbind/pkg/form"
)

// Location is a read-only root searchable by slash separated resource path.
type Location interface {
	Kind() form.SourceKind
	// Root is the directory or archive path backing the location.
	Root() string
	Exists(name string) bool
	// Open returns an error matching fs.ErrNotExist when the resource is
	// absent.
	Open(name string) (io.ReadCloser, error)
	Close() error
}

type dirLocation struct {
	fs   afero.Fs
	root string
}

// NewDirLocation returns a Location serving files below root.
func NewDirLocation(fsys afero.Fs, root string) Location {
	return &dirLocation{fs: fsys, root: root}
}

func (l *dirLocation) Kind() form.SourceKind {
	return form.SourceKindDir
}

func (l *dirLocation) Root() string {
	return l.root
}

func (l *dirLocation) path(name string) string {
	return filepath.Join(l.root, filepath.FromSlash(form.CleanName(name)))
}

func (l *dirLocation) Exists(name string) bool {
	if form.CleanName(name) == "" {
		return false
	}
	info, err := l.fs.Stat(l.path(name))
	return err == nil && info.Mode().IsRegular()
}

func (l *dirLocation) Open(name string) (io.ReadCloser, error) {
	if !l.Exists(name) {
		return nil, &fs.PathError{Op: "open", Path: l.path(name), Err: fs.ErrNotExist}
	}
	return l.fs.Open(l.path(name))
}

func (l *dirLocation) Close() error {
	return nil
}

// archiveLocation serves entries of a zip or jar file. The archive is opened
// on first use; an archive that cannot be opened stays empty.
type archiveLocation struct {
	fs     afero.Fs
	path   string
	logger logrus.FieldLogger

	opened  bool
	file    afero.File
	entries map[string]*zip.File
}

// NewArchiveLocation returns a Location serving the entries of the zip
// archive at path. Nothing is read until the first lookup.
func NewArchiveLocation(fsys afero.Fs, path string, logger logrus.FieldLogger) Location {
	if logger == nil {
		logger = discardLogger()
	}
	return &archiveLocation{fs: fsys, path: path, logger: logger}
}

func (l *archiveLocation) Kind() form.SourceKind {
	return form.SourceKindArchive
}

func (l *archiveLocation) Root() string {
	return l.path
}

func (l *archiveLocation) load() {
	if l.opened {
		return
	}
	l.opened = true
	if err := l.index(); err != nil {
		l.logger.WithError(err).WithField("archive", l.path).Debug("Classpath entry is not readable, ignoring")
		l.entries = nil
	}
}

func (l *archiveLocation) index() error {
	file, err := l.fs.Open(l.path)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return err
	}
	if info.IsDir() {
		_ = file.Close()
		return fmt.Errorf("classpath: %s is a directory", l.path)
	}
	reader, err := zip.NewReader(file, info.Size())
	if err != nil {
		_ = file.Close()
		return err
	}
	entries := make(map[string]*zip.File, len(reader.File))
	for _, entry := range reader.File {
		if strings.HasSuffix(entry.Name, "/") {
			continue
		}
		name := form.CleanName(entry.Name)
		if name == "" {
			continue
		}
		if _, exists := entries[name]; exists {
			continue
		}
		entries[name] = entry
	}
	l.file = file
	l.entries = entries
	return nil
}

func (l *archiveLocation) Exists(name string) bool {
	l.load()
	_, ok := l.entries[form.CleanName(name)]
	return ok
}

func (l *archiveLocation) Open(name string) (io.ReadCloser, error) {
	l.load()
	entry, ok := l.entries[form.CleanName(name)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: l.path + "!/" + form.CleanName(name), Err: fs.ErrNotExist}
	}
	return entry.Open()
}

func (l *archiveLocation) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.entries = nil
	return err
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
