package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbind/internal/cli"
	"github.com/goliatone/go-formbind/pkg/config"
)

// promptDriver is replaced in tests.
var promptDriver = cli.NewSurveyDriver

func newInitCommand(global *globalFlags, stdout io.Writer) *cobra.Command {
	var (
		force        bool
		defaultsOnly bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a formbind.yaml for the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := global.configPath
			if path == "" {
				path = config.DefaultFileName
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return &cli.ExitError{
						Code: cli.InvalidConfig,
						Err:  fmt.Errorf("%s already exists", path),
						Hint: "pass --force to overwrite it",
					}
				}
			}

			cfg := config.Default()
			if !defaultsOnly {
				var err error
				cfg, err = cli.AskConfig(cmd.Context(), promptDriver(), cfg)
				if errors.Is(err, cli.ErrAborted) {
					return nil
				}
				if err != nil {
					return cli.WithExitCode(err, cli.InvalidConfig)
				}
			}

			data, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(stdout, "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	cmd.Flags().BoolVarP(&defaultsOnly, "yes", "y", false, "write the defaults without prompting")
	return cmd
}
