// Package testsupport builds in-memory source trees, class files and
// archives for tests. Helpers fail the test on setup errors to keep the
// scenarios concise.
package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/spf13/afero"

	"github.com/goliatone/go-formbind/pkg/classfile"
)

// Java8 is the version of a class file compiled for Java 8.
var Java8 = classfile.Version{Major: 52}

// Java5 predates stack map frames.
var Java5 = classfile.Version{Major: 49}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// ClassBytes returns a class file with a valid header for v followed by a
// few filler bytes standing in for the constant pool.
func ClassBytes(v classfile.Version) []byte {
	return append(classfile.EncodeHeader(v), 0x00, 0x01, 0x02, 0x03)
}

// WriteFile writes data to name, creating parent directories.
func WriteFile(t *testing.T, fsys afero.Fs, name string, data []byte) {
	t.Helper()

	if err := fsys.MkdirAll(path.Dir(name), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path.Dir(name), err)
	}
	if err := afero.WriteFile(fsys, name, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// WriteClass writes a class file for resource (e.g. "pkg/Foo.class") below
// root.
func WriteClass(t *testing.T, fsys afero.Fs, root, resource string, v classfile.Version) string {
	t.Helper()

	name := path.Join(root, resource)
	WriteFile(t, fsys, name, ClassBytes(v))
	return name
}

// WriteForm writes form XML to name below root.
func WriteForm(t *testing.T, fsys afero.Fs, root, name, xml string) string {
	t.Helper()

	full := path.Join(root, name)
	WriteFile(t, fsys, full, []byte(xml))
	return full
}

// ArchiveBytes builds a zip archive holding entries.
func ArchiveBytes(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range sortedKeys(entries) {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("archive entry %s: %v", name, err)
		}
		if _, err := f.Write(entries[name]); err != nil {
			t.Fatalf("archive write %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("archive close: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive writes a zip archive holding entries to name.
func WriteArchive(t *testing.T, fsys afero.Fs, name string, entries map[string][]byte) string {
	t.Helper()

	WriteFile(t, fsys, name, ArchiveBytes(t, entries))
	return name
}

// Component describes a child of the generated root panel.
type Component struct {
	ID         string
	Class      string
	NestedForm string
}

// FormXML renders a GUI designer form bound to class. An empty class
// produces an unbound form.
func FormXML(class string, children ...Component) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<form xmlns="http://www.intellij.com/uidesigner/form/" version="1"`)
	if class != "" {
		fmt.Fprintf(&b, ` bind-to-class=%q`, class)
	}
	b.WriteString(">\n")
	b.WriteString(`  <grid id="root" binding="panel" layout-manager="GridLayoutManager">` + "\n")
	b.WriteString("    <children>\n")
	for _, child := range children {
		if child.NestedForm != "" {
			fmt.Fprintf(&b, `      <nested-form id=%q form-file=%q binding="%s"/>`+"\n", child.ID, child.NestedForm, child.ID)
			continue
		}
		fmt.Fprintf(&b, `      <component id=%q class=%q binding="%s"/>`+"\n", child.ID, child.Class, child.ID)
	}
	b.WriteString("    </children>\n")
	b.WriteString("  </grid>\n")
	b.WriteString("</form>\n")
	return b.String()
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
