package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbind/internal/cli"
)

// version is set at build time.
var version = "dev"

type globalFlags struct {
	configPath string
	verbose    bool
	logFormat  string
	noColor    bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fields := logrus.Fields{}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) && exitErr.Hint != "" {
		fields["hint"] = exitErr.Hint
	}
	fallback := logrus.New()
	fallback.SetOutput(stderr)
	fallback.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	fallback.WithFields(fields).Error(err)
	return int(cli.CodeOf(err))
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "formbind",
		Short:         "Bind GUI designer forms to compiled classes",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", fmt.Sprintf("config file (default %q when present)", "formbind.yaml"))
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "text", "log output format: text, json or raw")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newCompileCommand(flags, stdout, stderr),
		newInitCommand(flags, stdout),
		newVersionCommand(stdout),
	)
	return root
}
