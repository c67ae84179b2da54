package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/goliatone/go-formbind/pkg/config"
)

// ErrAborted signals the user aborted input (e.g., Ctrl+C).
var ErrAborted = errors.New("cli: aborted")

// InputConfig configures a basic text input prompt.
type InputConfig struct {
	Message string
	Default string
	Help    string
}

// ConfirmConfig configures a yes/no prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// PromptDriver abstracts the terminal so the init wizard can be tested
// without one.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
}

// NewSurveyDriver returns the interactive terminal driver.
func NewSurveyDriver() PromptDriver {
	return surveyDriver{}
}

type surveyDriver struct{}

func (surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	prompt := &survey.Confirm{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

// AskConfig walks the user through the settings of a pass, starting from
// base. List answers are comma separated.
func AskConfig(ctx context.Context, driver PromptDriver, base config.Config) (config.Config, error) {
	cfg := base

	var err error
	if cfg.SourceDir, err = driver.Input(ctx, InputConfig{
		Message: "Form source directory",
		Default: base.SourceDir,
	}); err != nil {
		return config.Config{}, err
	}
	if cfg.OutputDir, err = driver.Input(ctx, InputConfig{
		Message: "Compiled classes directory",
		Default: base.OutputDir,
	}); err != nil {
		return config.Config{}, err
	}

	classpath, err := driver.Input(ctx, InputConfig{
		Message: "Classpath entries",
		Default: strings.Join(base.Classpath, ","),
		Help:    "Directories and jar archives, comma separated, in lookup order.",
	})
	if err != nil {
		return config.Config{}, err
	}
	cfg.Classpath = splitList(classpath)

	includes, err := driver.Input(ctx, InputConfig{
		Message: "Form file patterns",
		Default: strings.Join(base.Includes, ","),
		Help:    "Glob patterns relative to the source directory, comma separated.",
	})
	if err != nil {
		return config.Config{}, err
	}
	if list := splitList(includes); len(list) > 0 {
		cfg.Includes = list
	}

	copyForms, err := driver.Confirm(ctx, ConfirmConfig{
		Message: "Copy form files next to the compiled classes?",
		Default: base.CopyEnabled(),
	})
	if err != nil {
		return config.Config{}, err
	}
	cfg.CopyFormFiles = &copyForms

	return cfg, cfg.Validate()
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
