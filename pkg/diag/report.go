// Package diag collects the warnings and errors produced while binding forms
// during one pass. Every entry carries the path of the form being processed
// when it was detected.
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Severity classifies an Entry.
type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a single diagnostic.
type Entry struct {
	Severity Severity
	// Path is the form path the entry belongs to; empty for pass level
	// entries.
	Path    string
	Message string
	// Err is the underlying error for error entries, when one exists.
	Err error
}

func (e Entry) String() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// Report accumulates entries for one pass. The zero value is ready to use.
type Report struct {
	entries []Entry
	bound   int
}

// Warn records a warning for path.
func (r *Report) Warn(path, message string) Entry {
	entry := Entry{Severity: SeverityWarning, Path: path, Message: strings.TrimSpace(message)}
	r.entries = append(r.entries, entry)
	return entry
}

// Warnf records a formatted warning for path.
func (r *Report) Warnf(path, format string, args ...any) Entry {
	return r.Warn(path, fmt.Sprintf(format, args...))
}

// Error records err against path.
func (r *Report) Error(path string, err error) Entry {
	if err == nil {
		err = errors.New("unknown error")
	}
	entry := Entry{Severity: SeverityError, Path: path, Message: err.Error(), Err: err}
	r.entries = append(r.entries, entry)
	return entry
}

// Errorf records a formatted error message against path.
func (r *Report) Errorf(path, format string, args ...any) Entry {
	return r.Error(path, fmt.Errorf(format, args...))
}

// MarkBound counts a form that was bound without errors.
func (r *Report) MarkBound() {
	r.bound++
}

// Bound returns the number of forms bound without errors.
func (r *Report) Bound() int {
	return r.bound
}

// Failed reports whether any error was recorded.
func (r *Report) Failed() bool {
	for _, entry := range r.entries {
		if entry.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Entries returns every entry in recording order.
func (r *Report) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// Errors returns the error entries.
func (r *Report) Errors() []Entry {
	return r.filter(func(e Entry) bool { return e.Severity == SeverityError })
}

// Warnings returns the warning entries.
func (r *Report) Warnings() []Entry {
	return r.filter(func(e Entry) bool { return e.Severity == SeverityWarning })
}

// ForPath returns the entries recorded for path.
func (r *Report) ForPath(path string) []Entry {
	return r.filter(func(e Entry) bool { return e.Path == path })
}

func (r *Report) filter(keep func(Entry) bool) []Entry {
	var out []Entry
	for _, entry := range r.entries {
		if keep(entry) {
			out = append(out, entry)
		}
	}
	return out
}
