// Package nested resolves references from one form to another ("nested
// forms") on behalf of the code generator. A Resolver is scoped to one root
// form: it caches what it resolves for that root, reuses forms the pass has
// already parsed, and falls back to loading form resources from the
// classpath. It also disambiguates the compiled name of a nested form's
// bound class, which may be an inner declaration.
package nested
