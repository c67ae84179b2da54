package nested

import "github.com/goliatone/go-formbind/pkg/form"

// Scanned holds the descriptors a pass has already parsed as top level
// units, keyed by resource path. It is shared by every Resolver of a pass so
// a form referenced both directly and as a nested form is parsed once. Not
// safe for concurrent use.
type Scanned struct {
	descriptors map[string]*form.Descriptor
}

// NewScanned creates an empty set.
func NewScanned() *Scanned {
	return &Scanned{descriptors: make(map[string]*form.Descriptor)}
}

// Add records a parsed descriptor under its path. The first descriptor
// stored for a path is kept.
func (s *Scanned) Add(descriptor *form.Descriptor) {
	if s == nil || descriptor == nil {
		return
	}
	key := form.CleanName(descriptor.Path)
	if _, exists := s.descriptors[key]; exists {
		return
	}
	s.descriptors[key] = descriptor
}

// Get returns the descriptor stored for path.
func (s *Scanned) Get(path string) (*form.Descriptor, bool) {
	if s == nil {
		return nil, false
	}
	descriptor, ok := s.descriptors[form.CleanName(path)]
	return descriptor, ok
}

// Len returns the number of stored descriptors.
func (s *Scanned) Len() int {
	if s == nil {
		return 0
	}
	return len(s.descriptors)
}
