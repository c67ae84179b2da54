package form

// Descriptor is a parsed form file. It is immutable once returned by a
// Parser and shared by pointer for the lifetime of one pass.
type Descriptor struct {
	// Path is the resource path relative to the root it was loaded from.
	Path string
	// BoundClass is the dotted qualified name of the class the form binds
	// to. Empty means the form is unbound.
	BoundClass string
	// Version is the descriptor format version declared by the file.
	Version string
	// Root is the top level container of the component tree.
	Root *Component
}

// Bound reports whether the descriptor names a class to bind to.
func (d *Descriptor) Bound() bool {
	return d != nil && d.BoundClass != ""
}

// NestedReferences returns the resource paths of nested forms embedded in
// the descriptor, in document order and without duplicates.
func (d *Descriptor) NestedReferences() []string {
	if d == nil || d.Root == nil {
		return nil
	}
	var (
		out  []string
		seen = make(map[string]struct{})
	)
	d.Root.Walk(func(c *Component) {
		if c.NestedForm == "" {
			return
		}
		ref := CleanName(c.NestedForm)
		if ref == "" {
			ref = c.NestedForm
		}
		if _, ok := seen[ref]; ok {
			return
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	})
	return out
}

// Component is a node of the form's UI tree.
type Component struct {
	Kind       string
	ID         string
	Class      string
	Binding    string
	NestedForm string
	Children   []*Component
}

// Walk visits the component and its descendants depth first.
func (c *Component) Walk(fn func(*Component)) {
	if c == nil {
		return
	}
	fn(c)
	for _, child := range c.Children {
		child.Walk(fn)
	}
}

// IsNested reports whether the component embeds another form.
func (c *Component) IsNested() bool {
	return c != nil && c.NestedForm != ""
}
