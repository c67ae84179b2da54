package orchestrator

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"

	formparser "github.com/goliatone/go-formbind/internal/form/parser"
	"github.com/goliatone/go-formbind/pkg/classfile"
	"github.com/goliatone/go-formbind/pkg/codegen"
	"github.com/goliatone/go-formbind/pkg/diag"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/testsupport"
)

type recordingGenerator struct {
	requests []codegen.Request
	inner    codegen.Generator
}

func (g *recordingGenerator) Generate(ctx context.Context, req codegen.Request) (codegen.Report, error) {
	g.requests = append(g.requests, req)
	if g.inner == nil {
		return codegen.Report{}, nil
	}
	return g.inner.Generate(ctx, req)
}

type countingParser struct {
	inner form.Parser
	calls map[string]int
}

func (p *countingParser) Parse(ctx context.Context, src form.Source) (*form.Descriptor, error) {
	p.calls[src.Name()]++
	return p.inner.Parse(ctx, src)
}

type fixture struct {
	fs        afero.Fs
	logger    *logrus.Logger
	hook      *test.Hook
	generator *recordingGenerator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return &fixture{
		fs:        afero.NewMemMapFs(),
		logger:    logger,
		hook:      hook,
		generator: &recordingGenerator{},
	}
}

func (f *fixture) form(t *testing.T, name, class string, children ...testsupport.Component) {
	t.Helper()
	testsupport.WriteForm(t, f.fs, "/src", name, testsupport.FormXML(class, children...))
}

func (f *fixture) class(t *testing.T, resource string, v classfile.Version) {
	t.Helper()
	testsupport.WriteClass(t, f.fs, "/out", resource, v)
}

func (f *fixture) run(t *testing.T, descriptors []string, options ...Option) (*diag.Report, error) {
	t.Helper()
	opts := []Option{
		WithFileSystem(f.fs),
		WithLogger(f.logger),
		WithGenerator(f.generator),
	}
	opts = append(opts, options...)
	return New(opts...).Run(testsupport.Context(), Request{
		SourceRoot:  "/src",
		OutputRoot:  "/out",
		Descriptors: descriptors,
	})
}

func (f *fixture) exists(t *testing.T, name string) bool {
	t.Helper()
	ok, err := afero.Exists(f.fs, name)
	if err != nil {
		t.Fatalf("stat %s: %v", name, err)
	}
	return ok
}

func messages(entries []diag.Entry) []string {
	var out []string
	for _, entry := range entries {
		out = append(out, entry.String())
	}
	return out
}

func TestRun_BindsAndCopiesForm(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	f.form(t, "ui/Free.form", "")
	f.class(t, "ui/Main.class", testsupport.Java8)

	report, err := f.run(t, []string{"ui/Free.form", "ui/Main.form"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Failed() || len(report.Warnings()) != 0 {
		t.Fatalf("unexpected diagnostics %v", messages(report.Entries()))
	}
	if report.Bound() != 1 || len(f.generator.requests) != 1 {
		t.Fatalf("expected one bound form, got %d (%d generator calls)", report.Bound(), len(f.generator.requests))
	}

	req := f.generator.requests[0]
	if req.Descriptor.Path != "ui/Main.form" || req.Descriptor.BoundClass != "ui.Main" {
		t.Fatalf("unexpected descriptor %+v", req.Descriptor)
	}
	if want := filepath.Join("/out", "ui", "Main.class"); req.Artifact != want {
		t.Fatalf("artifact = %q, want %q", req.Artifact, want)
	}
	if req.Version != testsupport.Java8 || req.Policy != classfile.ComputeFrames {
		t.Fatalf("unexpected version %s policy %s", req.Version, req.Policy)
	}
	if req.Nested == nil || req.Locations == nil {
		t.Fatalf("generator must receive a resolver and the location set")
	}

	if !f.exists(t, "/out/ui/Main.form") {
		t.Fatalf("bound form was not copied to the output root")
	}
	if f.exists(t, "/out/ui/Free.form") {
		t.Fatalf("unbound form must not be copied")
	}
	if err := Check(report); err != nil {
		t.Fatalf("check: %v", err)
	}
}

func TestRun_OldClassFileUsesComputeMaxs(t *testing.T) {
	f := newFixture(t)
	f.form(t, "Legacy.form", "Legacy")
	f.class(t, "Legacy.class", testsupport.Java5)

	if _, err := f.run(t, []string{"Legacy.form"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := f.generator.requests[0].Policy; got != classfile.ComputeMaxs {
		t.Fatalf("policy = %s, want compute-maxs", got)
	}
}

func TestRun_DuplicateBindingPatchesNeither(t *testing.T) {
	f := newFixture(t)
	f.form(t, "a/A.form", "pkg.Foo")
	f.form(t, "b/B.form", "pkg.Foo")
	f.class(t, "pkg/Foo.class", testsupport.Java8)

	report, err := f.run(t, []string{"a/A.form", "b/B.form"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"b/B.form: pkg.Foo is bound to both b/B.form and a/A.form"}
	if diff := cmp.Diff(want, messages(report.Errors())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if report.Bound() != 0 || len(f.generator.requests) != 0 {
		t.Fatalf("neither form may be patched, got %d generator calls", len(f.generator.requests))
	}
	if f.exists(t, "/out/a/A.form") || f.exists(t, "/out/b/B.form") {
		t.Fatalf("conflicting forms must not be copied")
	}
	if err := Check(report); !errors.Is(err, ErrFailed) {
		t.Fatalf("expected ErrFailed, got %v", err)
	}
}

func TestRun_InnerClassArtifact(t *testing.T) {
	f := newFixture(t)
	f.form(t, "pkg/Dialog.form", "pkg.Outer.Dialog")
	f.class(t, "pkg/Outer$Dialog.class", testsupport.Java8)

	report, err := f.run(t, []string{"pkg/Dialog.form"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Failed() {
		t.Fatalf("unexpected errors %v", messages(report.Errors()))
	}
	if got := filepath.Base(f.generator.requests[0].Artifact); got != "Outer$Dialog.class" {
		t.Fatalf("artifact = %q", got)
	}
}

func TestRun_MissingClassFile(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	f.form(t, "ui/Other.form", "ui.Other")
	f.class(t, "ui/Other.class", testsupport.Java8)

	report, err := f.run(t, []string{"ui/Main.form", "ui/Other.form"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"ui/Main.form: Cannot find class file for ui.Main"}
	if diff := cmp.Diff(want, messages(report.Errors())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if report.Bound() != 1 {
		t.Fatalf("the pass must continue after a missing class, bound %d", report.Bound())
	}
	if f.exists(t, "/out/ui/Main.form") {
		t.Fatalf("failed form must not be copied")
	}
}

func TestRun_NotAClassFile(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	testsupport.WriteFile(t, f.fs, "/out/ui/Main.class", []byte("PK\x03\x04garbage"))

	report, err := f.run(t, []string{"ui/Main.form"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	errs := report.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %v", messages(errs))
	}
	var formatErr *classfile.FormatError
	if !errors.As(errs[0].Err, &formatErr) {
		t.Fatalf("expected FormatError, got %v", errs[0].Err)
	}
}

func TestRun_TruncatedClassFileAborts(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	testsupport.WriteFile(t, f.fs, "/out/ui/Main.class", []byte{0xCA, 0xFE})

	report, err := f.run(t, []string{"ui/Main.form"})
	var ioErr *classfile.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected aborting IOError, got %v", err)
	}
	if report == nil || report.Bound() != 0 {
		t.Fatalf("expected partial report without bound forms")
	}
}

func TestRun_AlienAndMalformedFiles(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteForm(t, f.fs, "/src", "notes.form", "<notes/>")
	testsupport.WriteForm(t, f.fs, "/src", "broken.form", `<form xmlns="http://www.intellij.com/uidesigner/form/">`)
	f.form(t, "ui/Main.form", "ui.Main")
	f.class(t, "ui/Main.class", testsupport.Java8)

	report, err := f.run(t, []string{"notes.form", "broken.form", "ui/Main.form"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"notes.form: Skipping non-form file"}, messages(report.Warnings())); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	errs := report.Errors()
	if len(errs) != 1 || errs[0].Path != "broken.form" {
		t.Fatalf("expected one error for broken.form, got %v", messages(errs))
	}
	if report.Bound() != 1 {
		t.Fatalf("expected the valid form to be bound")
	}

	var warned bool
	for _, entry := range f.hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Data["form"] == "notes.form" {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected a logged warning carrying the form field")
	}
}

func TestRun_MissingCandidateAborts(t *testing.T) {
	f := newFixture(t)
	_, err := f.run(t, []string{"ui/Gone.form"})
	if err == nil {
		t.Fatalf("expected the pass to abort")
	}
}

func TestRun_NestedFormsShareScannedDescriptors(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main",
		testsupport.Component{ID: "header", NestedForm: "ui/Header.form"},
		testsupport.Component{ID: "footer", NestedForm: "ui/Footer.form"},
	)
	f.form(t, "ui/Header.form", "ui.Main.Header")
	testsupport.WriteArchive(t, f.fs, "/lib/widgets.jar", map[string][]byte{
		"ui/Footer.form":       []byte(testsupport.FormXML("widgets.Footer")),
		"widgets/Footer.class": testsupport.ClassBytes(testsupport.Java8),
	})
	f.class(t, "ui/Main.class", testsupport.Java8)
	f.class(t, "ui/Main$Header.class", testsupport.Java8)

	parser := &countingParser{inner: formparser.New(formparser.Options{}), calls: map[string]int{}}

	report, err := New(
		WithFileSystem(f.fs),
		WithLogger(f.logger),
		WithParser(parser),
	).Run(testsupport.Context(), Request{
		SourceRoot:  "/src",
		OutputRoot:  "/out",
		Classpath:   []string{"/lib/widgets.jar"},
		Descriptors: []string{"ui/Main.form", "ui/Header.form"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Failed() {
		t.Fatalf("unexpected errors %v", messages(report.Errors()))
	}
	if report.Bound() != 2 {
		t.Fatalf("expected both top level forms bound, got %d", report.Bound())
	}
	want := map[string]int{"ui/Main.form": 1, "ui/Header.form": 1, "ui/Footer.form": 1}
	if diff := cmp.Diff(want, parser.calls); diff != "" {
		t.Fatalf("parse counts mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_NestedFailuresAreReportedOnRoot(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main",
		testsupport.Component{ID: "missing", NestedForm: "ui/Missing.form"},
		testsupport.Component{ID: "ghost", NestedForm: "ui/Ghost.form"},
	)
	f.form(t, "ui/Ghost.form", "ui.Ghost")
	f.class(t, "ui/Main.class", testsupport.Java8)

	report, err := New(WithFileSystem(f.fs), WithLogger(f.logger)).Run(testsupport.Context(), Request{
		SourceRoot:  "/src",
		OutputRoot:  "/out",
		Descriptors: []string{"ui/Main.form"},
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{
		"ui/Main.form: missing: Cannot load nested form: ui/Missing.form",
		"ui/Main.form: cannot resolve class ui.Ghost of nested form ui/Ghost.form",
	}
	if diff := cmp.Diff(want, messages(report.Errors())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if report.Bound() != 0 {
		t.Fatalf("a form with nested failures must not count as bound, got %d", report.Bound())
	}
}

func TestRun_GeneratorErrorAborts(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	f.class(t, "ui/Main.class", testsupport.Java8)
	boom := errors.New("boom")

	_, err := f.run(t, []string{"ui/Main.form"}, WithGenerator(codegen.GeneratorFunc(func(context.Context, codegen.Request) (codegen.Report, error) {
		return codegen.Report{}, boom
	})))
	if !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
}

func TestRun_GeneratorAbortKeepsResolutionErrors(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	f.class(t, "ui/Main.class", testsupport.Java8)
	boom := errors.New("boom")

	report, err := f.run(t, []string{"ui/Main.form"}, WithGenerator(codegen.GeneratorFunc(func(ctx context.Context, req codegen.Request) (codegen.Report, error) {
		req.Nested.ResolveBoundClass(ctx, &form.Descriptor{Path: "ui/Ghost.form", BoundClass: "ui.Ghost"})
		return codegen.Report{}, boom
	})))
	if !errors.Is(err, boom) {
		t.Fatalf("expected generator error, got %v", err)
	}
	want := []string{"ui/Main.form: cannot resolve class ui.Ghost of nested form ui/Ghost.form"}
	if diff := cmp.Diff(want, messages(report.Errors())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if report.Bound() != 0 {
		t.Fatalf("an aborted form must not count as bound, got %d", report.Bound())
	}
}

func TestRun_GeneratorDiagnostics(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	f.class(t, "ui/Main.class", testsupport.Java8)

	report, err := f.run(t, []string{"ui/Main.form"}, WithGenerator(codegen.GeneratorFunc(func(context.Context, codegen.Request) (codegen.Report, error) {
		var r codegen.Report
		r.Warn("label", "text is empty")
		r.Fail("button", "binding field is missing")
		return r, nil
	})))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if diff := cmp.Diff([]string{"ui/Main.form: label: text is empty"}, messages(report.Warnings())); diff != "" {
		t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ui/Main.form: button: binding field is missing"}, messages(report.Errors())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if report.Bound() != 0 {
		t.Fatalf("a form with generator errors must not count as bound, got %d", report.Bound())
	}
}

func TestRun_ParserWithoutDescriptor(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	f.class(t, "ui/Main.class", testsupport.Java8)

	report, err := f.run(t, []string{"ui/Main.form"}, WithParser(form.ParserFunc(func(context.Context, form.Source) (*form.Descriptor, error) {
		return nil, nil
	})))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"ui/Main.form: orchestrator: parser returned no descriptor for ui/Main.form"}
	if diff := cmp.Diff(want, messages(report.Errors())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if report.Bound() != 0 || len(f.generator.requests) != 0 {
		t.Fatalf("expected nothing bound, got %d (%d generator calls)", report.Bound(), len(f.generator.requests))
	}
}

func TestRun_CandidateOutsideSourceRoot(t *testing.T) {
	f := newFixture(t)
	testsupport.WriteForm(t, f.fs, "/", "Escape.form", testsupport.FormXML("x.Escape"))
	f.form(t, "ui/Main.form", "ui.Main")
	f.class(t, "ui/Main.class", testsupport.Java8)

	report, err := f.run(t, []string{"../Escape.form", "ui/Main.form"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"../Escape.form: orchestrator: form path ../Escape.form is outside the source root"}
	if diff := cmp.Diff(want, messages(report.Errors())); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if report.Bound() != 1 {
		t.Fatalf("the pass must continue past the rejected path, bound %d", report.Bound())
	}
	if len(f.generator.requests) != 1 || f.generator.requests[0].Descriptor.Path != "ui/Main.form" {
		t.Fatalf("only ui/Main.form may reach the generator, got %d requests", len(f.generator.requests))
	}
}

func TestRun_CopyDisabled(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	f.class(t, "ui/Main.class", testsupport.Java8)

	if _, err := f.run(t, []string{"ui/Main.form"}, WithCopyDescriptors(false)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.exists(t, "/out/ui/Main.form") {
		t.Fatalf("form must not be copied when copying is disabled")
	}
}

func TestRun_Validation(t *testing.T) {
	o := New(WithFileSystem(afero.NewMemMapFs()))

	report, err := o.Run(testsupport.Context(), Request{SourceRoot: "/src", OutputRoot: "/out"})
	if err != nil || report == nil || len(report.Entries()) != 0 {
		t.Fatalf("empty pass should succeed with an empty report, got %v", err)
	}
	if _, err := o.Run(testsupport.Context(), Request{OutputRoot: "/out"}); err == nil {
		t.Fatalf("expected error for missing source root")
	}
	if _, err := o.Run(testsupport.Context(), Request{SourceRoot: "/src"}); err == nil {
		t.Fatalf("expected error for missing output root")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Run(ctx, Request{SourceRoot: "/src", OutputRoot: "/out", Descriptors: []string{"a.form"}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRun_IndependentPasses(t *testing.T) {
	f := newFixture(t)
	f.form(t, "ui/Main.form", "ui.Main")
	f.class(t, "ui/Main.class", testsupport.Java8)
	o := New(WithFileSystem(f.fs), WithGenerator(f.generator))
	req := Request{SourceRoot: "/src", OutputRoot: "/out", Descriptors: []string{"ui/Main.form"}}

	for i := 0; i < 2; i++ {
		report, err := o.Run(testsupport.Context(), req)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if report.Failed() {
			t.Fatalf("run %d must not see bindings of an earlier run: %v", i, messages(report.Errors()))
		}
	}
}
