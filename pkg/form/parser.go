package form

import (
	"context"
	"errors"
	"fmt"
)

// ErrAlienFile reports that a file matched the candidate patterns but is not
// a form descriptor. Callers treat it as a soft skip.
var ErrAlienFile = errors.New("form: not a form file")

// Parser turns a form source into a Descriptor. Implementations must close
// every reader they open, including on failure.
type Parser interface {
	Parse(ctx context.Context, src Source) (*Descriptor, error)
}

// ParserFunc adapts a function into a Parser.
type ParserFunc func(ctx context.Context, src Source) (*Descriptor, error)

// Parse calls f.
func (f ParserFunc) Parse(ctx context.Context, src Source) (*Descriptor, error) {
	return f(ctx, src)
}

// ParseError wraps a failure to read or decode a descriptor.
type ParseError struct {
	Location string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("form: parse %s: %v", e.Location, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
