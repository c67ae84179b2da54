// Package classfile probes compiled class files for their format version
// without reading more than the fixed size header.
package classfile
