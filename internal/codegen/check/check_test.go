package check

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formbind/pkg/classfile"
	"github.com/goliatone/go-formbind/pkg/classpath"
	"github.com/goliatone/go-formbind/pkg/codegen"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/nested"
	"github.com/goliatone/go-formbind/pkg/testsupport"
)

type stubResolver struct {
	forms    map[string]*form.Descriptor
	failures map[string]error
	resolved []string
}

func (s *stubResolver) Resolve(_ context.Context, reference string) (*form.Descriptor, error) {
	if err, ok := s.failures[reference]; ok {
		return nil, err
	}
	if d, ok := s.forms[reference]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", nested.ErrNotFound, reference)
}

func (s *stubResolver) ResolveBoundClass(_ context.Context, d *form.Descriptor) string {
	s.resolved = append(s.resolved, d.BoundClass)
	return d.BoundClass
}

func request(root *form.Component, resolver codegen.NestedResolver, set *classpath.Set) codegen.Request {
	return codegen.Request{
		Descriptor: &form.Descriptor{Path: "ui/Main.form", BoundClass: "ui.Main", Root: root},
		Locations:  set,
		Nested:     resolver,
		Artifact:   "/out/ui/Main.class",
		Version:    testsupport.Java8,
		Policy:     classfile.ComputeFrames,
	}
}

func TestGenerate_NestedForms(t *testing.T) {
	resolver := &stubResolver{
		forms: map[string]*form.Descriptor{
			"ui/Header.form": {Path: "ui/Header.form", BoundClass: "ui.Header"},
			"ui/Main.form":   {Path: "ui/Main.form", BoundClass: "ui.Main"},
		},
		failures: map[string]error{"ui/Broken.form": errors.New("unexpected EOF")},
	}
	root := &form.Component{Kind: "grid", ID: "root", Children: []*form.Component{
		{Kind: "nested-form", ID: "header", NestedForm: "ui/Header.form"},
		{Kind: "nested-form", ID: "missing", NestedForm: "ui/Missing.form"},
		{Kind: "nested-form", ID: "self", NestedForm: "ui/Main.form"},
		{Kind: "nested-form", ID: "broken", NestedForm: "ui/Broken.form"},
	}}

	report, err := New(Options{}).Generate(context.Background(), request(root, resolver, classpath.NewSet()))
	require.NoError(t, err)
	require.Empty(t, report.Warnings)
	require.Equal(t, []codegen.Message{
		{Component: "missing", Text: "Cannot load nested form: ui/Missing.form"},
		{Component: "self", Text: "Form cannot be nested in itself: ui/Main.form"},
		{Component: "broken", Text: "Cannot load nested form ui/Broken.form: unexpected EOF"},
	}, report.Errors)
	require.Equal(t, []string{"ui.Header"}, resolver.resolved)
}

func TestGenerate_ComponentClasses(t *testing.T) {
	fsys := afero.NewMemMapFs()
	testsupport.WriteClass(t, fsys, "/out", "ui/Fancy$Button.class", testsupport.Java8)
	set := classpath.Build("/src", "/out", nil, classpath.WithFileSystem(fsys))

	root := &form.Component{Kind: "grid", ID: "root", Children: []*form.Component{
		{Kind: "component", ID: "label", Class: "javax.swing.JLabel"},
		{Kind: "component", ID: "fancy", Class: "ui.Fancy.Button"},
		{Kind: "component", ID: "ghost", Class: "ui.Ghost"},
	}}

	report, err := New(Options{}).Generate(context.Background(), request(root, &stubResolver{}, set))
	require.NoError(t, err)
	require.Empty(t, report.Errors)
	require.Equal(t, []codegen.Message{
		{Component: "ghost", Text: "class ui.Ghost not found on the classpath"},
	}, report.Warnings)
}

func TestGenerate_PolicyMismatchAndEmptyForm(t *testing.T) {
	req := request(nil, &stubResolver{}, classpath.NewSet())
	req.Version = testsupport.Java5

	report, err := New(Options{}).Generate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, report.Warnings, 2)
	require.Equal(t, "stack policy compute-frames does not match class file version 49.0", report.Warnings[0].Text)
	require.Equal(t, "form has no root container", report.Warnings[1].Text)
}

func TestGenerate_CanceledContextAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resolver := &stubResolver{failures: map[string]error{"ui/Header.form": context.Canceled}}
	root := &form.Component{Kind: "grid", ID: "root", Children: []*form.Component{
		{Kind: "nested-form", ID: "header", NestedForm: "ui/Header.form"},
	}}

	_, err := New(Options{}).Generate(ctx, request(root, resolver, classpath.NewSet()))
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerate_RequiresDescriptorAndResolver(t *testing.T) {
	_, err := New(Options{}).Generate(context.Background(), codegen.Request{})
	require.Error(t, err)

	req := request(nil, nil, classpath.NewSet())
	req.Nested = nil
	_, err = New(Options{}).Generate(context.Background(), req)
	require.Error(t, err)
}
