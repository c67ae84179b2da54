package formbind

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/goliatone/go-formbind/internal/codegen/check"
	formparser "github.com/goliatone/go-formbind/internal/form/parser"
	"github.com/goliatone/go-formbind/pkg/classpath"
	"github.com/goliatone/go-formbind/pkg/codegen"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/diag"
	"github.com/goliatone/go-formbind/pkg/form"
	"github.com/goliatone/go-formbind/pkg/orchestrator"
	"github.com/goliatone/go-formbind/pkg/scan"
)

// Report aliases diag.Report for callers that only import the root package.
type Report = diag.Report

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewParser constructs the GUI designer XML parser while keeping the
// concrete type hidden from consumers.
func NewParser() form.Parser {
	return formparser.New(formparser.Options{})
}

// NewCheckGenerator constructs the generator that validates bindings and
// nested forms without patching class files.
func NewCheckGenerator(naming classpath.Naming) codegen.Generator {
	return check.New(check.Options{Naming: naming})
}

// Compile scans cfg.SourceDir for form files and runs one pass over them.
// The fsys argument is used for scanning; pass nil for the operating system.
// The returned error is non-nil when the pass was aborted; inspect the
// report for form level failures.
func Compile(ctx context.Context, fsys afero.Fs, cfg config.Config, options ...orchestrator.Option) (*diag.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	files, err := scan.Files(fsys, cfg.SourceDir, cfg.Includes, cfg.Excludes)
	if err != nil {
		return nil, fmt.Errorf("formbind: %w", err)
	}

	opts := []orchestrator.Option{
		orchestrator.WithFileSystem(fsys),
		orchestrator.WithCopyDescriptors(cfg.CopyEnabled()),
	}
	opts = append(opts, options...)

	return orchestrator.New(opts...).Run(ctx, orchestrator.Request{
		SourceRoot:  cfg.SourceDir,
		OutputRoot:  cfg.OutputDir,
		Classpath:   cfg.Classpath,
		Descriptors: files,
	})
}
