// Package form defines the in-memory model of a GUI designer form file and
// the parser contract used to produce it. The component tree only carries
// what the binding engine reads. Concrete parsers live under internal/form.
package form
