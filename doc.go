// Package formbind binds GUI designer form files to the compiled classes
// they describe. A pass parses every form below a source directory, checks
// that each class is claimed by a single form, finds the class file in the
// build output (including inner classes such as Outer$Inner), probes its
// format version and hands everything to a code generator together with a
// resolver for nested forms.
//
// Most callers only need Compile; the orchestrator package exposes the
// building blocks for custom parsers and generators.
package formbind
