// Package classpath models the ordered set of directories and archives a
// build pass searches for class files and form resources, together with the
// naming rules that map qualified class names (including inner declarations)
// onto resource paths.
package classpath
