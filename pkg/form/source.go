package form

import (
	"errors"
	"io"
	"path"
	"strings"
)

// Source identifies where a form descriptor lives so parsers can read it
// without knowing whether it sits in a directory or inside an archive.
type Source interface {
	Kind() SourceKind
	// Name is the slash separated resource path relative to the location root.
	Name() string
	// Location is a human readable origin used in diagnostics.
	Location() string
	Open() (io.ReadCloser, error)
}

// SourceKind enumerates the location modalities.
type SourceKind string

const (
	SourceKindDir     SourceKind = "dir"
	SourceKindArchive SourceKind = "archive"
)

// OpenFunc opens the underlying resource. Callers close the returned reader.
type OpenFunc func() (io.ReadCloser, error)

type source struct {
	kind     SourceKind
	name     string
	location string
	open     OpenFunc
}

func (s source) Kind() SourceKind {
	return s.kind
}

func (s source) Name() string {
	return s.name
}

func (s source) Location() string {
	return s.location
}

func (s source) Open() (io.ReadCloser, error) {
	if s.open == nil {
		return nil, errors.New("form: source has no opener")
	}
	return s.open()
}

// NewSource wraps an opener into a Source. The name is normalised with
// CleanName.
func NewSource(kind SourceKind, name, location string, open OpenFunc) Source {
	return source{kind: kind, name: CleanName(name), location: location, open: open}
}

// CleanName normalises a resource path: backslashes become slashes, the
// leading slash is dropped and dot segments are collapsed. A name that
// climbs above its root yields "".
func CleanName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return ""
	}
	name = path.Clean(name)
	if name == ".." || strings.HasPrefix(name, "../") {
		return ""
	}
	return name
}
