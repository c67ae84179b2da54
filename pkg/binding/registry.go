// Package binding enforces that every class is bound to at most one form
// during a pass.
package binding

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrConflict matches every ConflictError.
var ErrConflict = errors.New("binding: class bound more than once")

// ConflictError reports a second form claiming an already bound class.
type ConflictError struct {
	Class    string
	Existing string
	Claimant string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is bound to both %s and %s", e.Class, e.Claimant, e.Existing)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Binding pairs a class with the form that claimed it.
type Binding struct {
	Class string
	Form  string
}

// Registry maps class names to the form path that first claimed them. It
// is owned by a single pass and is not safe for concurrent use.
type Registry struct {
	bindings   map[string]string
	conflicted map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings:   make(map[string]string),
		conflicted: make(map[string]struct{}),
	}
}

// Register records that descriptorPath binds className. A class that is
// already registered keeps its first form; the call returns a ConflictError
// and marks the class as conflicted.
func (r *Registry) Register(className, descriptorPath string) error {
	className = strings.TrimSpace(className)
	if className == "" {
		return errors.New("binding: class name is required")
	}
	if existing, ok := r.bindings[className]; ok {
		r.conflicted[className] = struct{}{}
		return &ConflictError{Class: className, Existing: existing, Claimant: descriptorPath}
	}
	r.bindings[className] = descriptorPath
	return nil
}

// Lookup returns the form registered for className.
func (r *Registry) Lookup(className string) (string, bool) {
	path, ok := r.bindings[className]
	return path, ok
}

// Conflicted reports whether more than one form claimed className.
func (r *Registry) Conflicted(className string) bool {
	_, ok := r.conflicted[className]
	return ok
}

// Len returns the number of bound classes.
func (r *Registry) Len() int {
	return len(r.bindings)
}

// Bindings returns all bindings sorted by class name.
func (r *Registry) Bindings() []Binding {
	out := make([]Binding, 0, len(r.bindings))
	for class, path := range r.bindings {
		out = append(out, Binding{Class: class, Form: path})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Class < out[j].Class
	})
	return out
}
