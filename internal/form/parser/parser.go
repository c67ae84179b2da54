// Package parser reads GUI designer form files (XML documents rooted at a
// <form> element in the uidesigner namespace) into form.Descriptor values.
package parser

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-formbind/pkg/form"
)

// Namespace is the XML namespace of GUI designer form files.
const Namespace = "http://www.intellij.com/uidesigner/form/"

const (
	rootElement       = "form"
	nestedFormElement = "nested-form"
)

// Options configures the parser.
type Options struct {
	// Namespace overrides the expected root namespace. Empty uses Namespace.
	Namespace string
	// AllowMissingNamespace accepts <form> roots without any namespace.
	AllowMissingNamespace bool
}

// Parser implements form.Parser for GUI designer XML.
type Parser struct {
	namespace    string
	allowMissing bool
}

var _ form.Parser = (*Parser)(nil)

// New constructs a Parser.
func New(options Options) *Parser {
	ns := options.Namespace
	if ns == "" {
		ns = Namespace
	}
	return &Parser{namespace: ns, allowMissing: options.AllowMissingNamespace}
}

type element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []element  `xml:",any"`
}

func (e element) attr(name string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

// Parse reads src and returns its descriptor. Documents whose root is not a
// form element return an error matching form.ErrAlienFile.
func (p *Parser) Parse(ctx context.Context, src form.Source) (*form.Descriptor, error) {
	if src == nil {
		return nil, errors.New("form parser: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := src.Open()
	if err != nil {
		return nil, &form.ParseError{Location: src.Location(), Err: err}
	}
	defer func() {
		_ = reader.Close()
	}()

	var root element
	decoder := xml.NewDecoder(reader)
	if err := decoder.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &form.ParseError{Location: src.Location(), Err: fmt.Errorf("%w: empty document", form.ErrAlienFile)}
		}
		return nil, &form.ParseError{Location: src.Location(), Err: err}
	}

	if !p.isFormRoot(root.XMLName) {
		return nil, &form.ParseError{
			Location: src.Location(),
			Err:      fmt.Errorf("%w: root element <%s>", form.ErrAlienFile, root.XMLName.Local),
		}
	}

	descriptor := &form.Descriptor{
		Path:       src.Name(),
		BoundClass: root.attr("bind-to-class"),
		Version:    root.attr("version"),
	}
	for _, child := range root.Children {
		if child.attr("id") == "" {
			continue
		}
		descriptor.Root = component(child)
		break
	}
	return descriptor, nil
}

func (p *Parser) isFormRoot(name xml.Name) bool {
	if name.Local != rootElement {
		return false
	}
	if name.Space == p.namespace {
		return true
	}
	return name.Space == "" && p.allowMissing
}

func component(el element) *form.Component {
	c := &form.Component{
		Kind:    el.XMLName.Local,
		ID:      el.attr("id"),
		Class:   el.attr("class"),
		Binding: el.attr("binding"),
	}
	if c.Kind == nestedFormElement {
		c.NestedForm = el.attr("form-file")
	}
	collectChildren(el, c)
	return c
}

// collectChildren attaches every descendant element carrying an id to
// parent, looking through wrapper elements such as <children>.
func collectChildren(el element, parent *form.Component) {
	for _, child := range el.Children {
		if child.attr("id") != "" {
			parent.Children = append(parent.Children, component(child))
			continue
		}
		collectChildren(child, parent)
	}
}
