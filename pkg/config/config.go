// Package config loads formbind settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mstoykov/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbind/pkg/scan"
)

// DefaultFileName is the configuration file looked up in the working
// directory.
const DefaultFileName = "formbind.yaml"

// Config holds the settings of one pass.
type Config struct {
	// SourceDir holds the form files.
	SourceDir string `yaml:"sourceDir" envconfig:"FORMBIND_SOURCE_DIR"`
	// OutputDir holds the compiled classes and receives copied forms.
	OutputDir string `yaml:"outputDir" envconfig:"FORMBIND_OUTPUT_DIR"`
	// Classpath lists dependency directories and archives in lookup order.
	Classpath []string `yaml:"classpath,omitempty" envconfig:"FORMBIND_CLASSPATH"`
	Includes  []string `yaml:"includes,omitempty" envconfig:"FORMBIND_INCLUDES"`
	Excludes  []string `yaml:"excludes,omitempty" envconfig:"FORMBIND_EXCLUDES"`
	// CopyFormFiles copies bound form files into OutputDir. Nil means true.
	CopyFormFiles *bool `yaml:"copyFormFiles,omitempty" envconfig:"FORMBIND_COPY_FORM_FILES"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		SourceDir: "src/main/java",
		OutputDir: "target/classes",
		Includes:  append([]string(nil), scan.DefaultIncludes...),
	}
}

// CopyEnabled reports whether form files are copied.
func (c Config) CopyEnabled() bool {
	return c.CopyFormFiles == nil || *c.CopyFormFiles
}

// Validate checks that the required directories are set.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.SourceDir) == "" {
		errs = append(errs, errors.New("config: sourceDir is required"))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("config: outputDir is required"))
	}
	return errors.Join(errs...)
}

// Parse decodes YAML data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if len(cfg.Includes) == 0 {
		cfg.Includes = append([]string(nil), scan.DefaultIncludes...)
	}
	return cfg, nil
}

// Load reads path over the defaults. A missing file is not an error when
// optional is set.
func Load(path string, optional bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays FORMBIND_* variables found through lookup. A nil lookup
// reads the process environment.
func ApplyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := Config{}
	if err := envconfig.Process("", &env, lookup); err != nil {
		return cfg, fmt.Errorf("config: environment: %w", err)
	}
	return cfg.Apply(env), nil
}

// Apply returns c with every field set in other taking precedence.
func (c Config) Apply(other Config) Config {
	if other.SourceDir != "" {
		c.SourceDir = other.SourceDir
	}
	if other.OutputDir != "" {
		c.OutputDir = other.OutputDir
	}
	if len(other.Classpath) > 0 {
		c.Classpath = append([]string(nil), other.Classpath...)
	}
	if len(other.Includes) > 0 {
		c.Includes = append([]string(nil), other.Includes...)
	}
	if len(other.Excludes) > 0 {
		c.Excludes = append([]string(nil), other.Excludes...)
	}
	if other.CopyFormFiles != nil {
		enabled := *other.CopyFormFiles
		c.CopyFormFiles = &enabled
	}
	return c
}

// Marshal renders c as YAML.
func Marshal(c Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: marshal: %w", err)
	}
	return data, nil
}
