package main

import (
	"errors"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/goliatone/go-formbind"
	"github.com/goliatone/go-formbind/internal/cli"
	"github.com/goliatone/go-formbind/pkg/config"
	"github.com/goliatone/go-formbind/pkg/orchestrator"
)

type compileFlags struct {
	sourceDir string
	outputDir string
	classpath []string
	includes  []string
	excludes  []string
	noCopy    bool
}

func newCompileCommand(global *globalFlags, stdout, stderr io.Writer) *cobra.Command {
	flags := &compileFlags{}
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Bind every form below the source directory to its class",
		Long: `Scans the source directory for form files, binds each form to the class
named by its bind-to-class attribute, locates the class file in the output
directory and checks nested forms against the classpath.

Settings are read from formbind.yaml, then FORMBIND_* environment variables,
then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global.configPath, cmd.Flags(), flags)
			if err != nil {
				return cli.WithExitCode(err, cli.InvalidConfig)
			}

			logger, err := cli.NewLogger(stderr, cli.LoggerOptions{
				Verbose: global.verbose,
				Format:  global.logFormat,
				NoColor: global.noColor,
			})
			if err != nil {
				return cli.WithExitCode(err, cli.InvalidConfig)
			}
			logger.WithField("source", cfg.SourceDir).Debug("Compiling forms")

			report, err := formbind.Compile(cmd.Context(), nil, cfg, orchestrator.WithLogger(logger))
			if err != nil {
				return &cli.ExitError{Code: cli.PassAborted, Err: err}
			}
			cli.PrintSummary(stdout, report, global.noColor)
			if err := orchestrator.Check(report); err != nil {
				return &cli.ExitError{Code: cli.PassFailed, Err: err, Hint: "see the errors reported above for each form"}
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&flags.sourceDir, "source", "s", "", "directory holding the form files")
	fs.StringVarP(&flags.outputDir, "output", "o", "", "directory holding the compiled classes")
	fs.StringSliceVar(&flags.classpath, "classpath", nil, "dependency directories and archives, in lookup order")
	fs.StringSliceVar(&flags.includes, "include", nil, "glob patterns selecting form files (default **/*.form)")
	fs.StringSliceVar(&flags.excludes, "exclude", nil, "glob patterns excluding form files")
	fs.BoolVar(&flags.noCopy, "no-copy", false, "do not copy form files into the output directory")
	must(cobra.MarkFlagDirname(fs, "source"))
	must(cobra.MarkFlagDirname(fs, "output"))
	return cmd
}

// loadConfig layers the config file, the environment and the changed flags.
func loadConfig(path string, fs *pflag.FlagSet, flags *compileFlags) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load(config.DefaultFileName, true)
	} else {
		cfg, err = config.Load(path, false)
	}
	if err != nil {
		return config.Config{}, err
	}
	if cfg, err = config.ApplyEnv(cfg, nil); err != nil {
		return config.Config{}, err
	}

	override := config.Config{}
	if fs.Changed("source") {
		override.SourceDir = flags.sourceDir
	}
	if fs.Changed("output") {
		override.OutputDir = flags.outputDir
	}
	if fs.Changed("classpath") {
		override.Classpath = flags.classpath
	}
	if fs.Changed("include") {
		override.Includes = flags.includes
	}
	if fs.Changed("exclude") {
		override.Excludes = flags.excludes
	}
	if fs.Changed("no-copy") {
		enabled := !flags.noCopy
		override.CopyFormFiles = &enabled
	}
	cfg = cfg.Apply(override)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func must(err error) {
	if err != nil {
		panic(errors.Join(errors.New("formbind: flag setup"), err))
	}
}
