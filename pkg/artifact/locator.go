// Package artifact locates the compiled class file a form binds to inside
// the build output directory.
package artifact

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/goliatone/go-formbind/pkg/classpath"
)

// ErrNotFound matches every NotFoundError.
var ErrNotFound = errors.New("artifact: class file not found")

// NotFoundError reports that no candidate path exists for a class.
type NotFoundError struct {
	Class      string
	Candidates []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Cannot find class file for %s", e.Class)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Locator finds class files below an output root.
type Locator struct {
	fs     afero.Fs
	root   string
	naming classpath.Naming
}

// NewLocator returns a Locator searching root on fsys. A nil fsys uses the
// operating system.
func NewLocator(fsys afero.Fs, root string, naming classpath.Naming) *Locator {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Locator{fs: fsys, root: root, naming: naming}
}

// Locate returns the path of the class file for className. The direct path
// is tried first, then each inner declaration mangling in turn; the first
// regular file found wins.
func (l *Locator) Locate(className string) (string, error) {
	var found string
	_, ok := l.naming.Search(className, func(resource string) bool {
		candidate := filepath.Join(l.root, filepath.FromSlash(resource))
		info, err := l.fs.Stat(candidate)
		if err != nil || !info.Mode().IsRegular() {
			return false
		}
		found = candidate
		return true
	})
	if !ok {
		return "", &NotFoundError{Class: className, Candidates: l.naming.Candidates(className)}
	}
	return found, nil
}
