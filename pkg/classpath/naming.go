package classpath

import "strings"

const (
	defaultExtension      = ".class"
	defaultInnerSeparator = "$"
)

// Naming describes how qualified class names map onto artifact resource
// paths. The zero value uses ".class" and "$".
type Naming struct {
	// Extension is appended to every candidate path.
	Extension string
	// InnerSeparator joins an enclosing declaration and its inner
	// declaration in compiled names.
	InnerSeparator string
}

// DefaultNaming is the JVM convention.
var DefaultNaming = Naming{Extension: defaultExtension, InnerSeparator: defaultInnerSeparator}

func (n Naming) withDefaults() Naming {
	if n.Extension == "" {
		n.Extension = defaultExtension
	}
	if n.InnerSeparator == "" {
		n.InnerSeparator = defaultInnerSeparator
	}
	return n
}

// ResourceName returns the direct resource path for a qualified name, without
// any inner declaration mangling.
func (n Naming) ResourceName(className string) string {
	n = n.withDefaults()
	return strings.ReplaceAll(className, ".", "/") + n.Extension
}

// Candidates returns the resource paths a qualified name may compile to, in
// probing order. The first entry is the direct path; each following entry
// rejoins the rightmost remaining path segment to its parent with the inner
// separator. The sequence has one entry per dot separated segment.
//
// "pkg.Outer.Inner" yields pkg/Outer/Inner.class, pkg/Outer$Inner.class and
// pkg$Outer$Inner.class.
func (n Naming) Candidates(className string) []string {
	className = strings.TrimSpace(className)
	if className == "" {
		return nil
	}
	n = n.withDefaults()

	name := strings.ReplaceAll(className, ".", "/")
	out := make([]string, 0, strings.Count(name, "/")+1)
	out = append(out, name+n.Extension)
	for {
		pos := strings.LastIndex(name, "/")
		if pos < 0 {
			return out
		}
		name = name[:pos] + n.InnerSeparator + name[pos+1:]
		out = append(out, name+n.Extension)
	}
}

// Search walks Candidates and returns the first one accepted by exists.
// The first match along the sequence wins even if later candidates would
// also match.
func (n Naming) Search(className string, exists func(resource string) bool) (string, bool) {
	for _, candidate := range n.Candidates(className) {
		if exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// BinaryName converts a candidate resource path back into the compiled
// class name, e.g. "pkg/Outer$Inner.class" becomes "pkg.Outer$Inner".
func (n Naming) BinaryName(resource string) string {
	n = n.withDefaults()
	resource = strings.TrimSuffix(resource, n.Extension)
	return strings.ReplaceAll(resource, "/", ".")
}
