package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shpitdev/site-email-crawler/internal/app"
)

const (
	exitRunFailed = 1
	exitUsage     = 2
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(err error) error { return &exitError{code: exitUsage, err: err} }
func runErr(err error) error   { return &exitError{code: exitRunFailed, err: err} }

type globalFlags struct {
	configFile string
	envFile    string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "emailcrawl",
		Short:         "Find contact email addresses on business websites",
		Long:          "emailcrawl reads a JSON, YAML or CSV list of businesses, visits each website and its contact, about and team pages, and writes the list back with an email field added.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&g.configFile, "config", "", "config file (default ./emailcrawl.yaml when present)")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", "", "dotenv file (default ./.env when present)")

	root.AddCommand(newRunCmd(&g))
	root.AddCommand(newVersionCmd())
	return root
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	code := exitUsage
	var ee *exitError
	if errors.As(err, &ee) {
		code = ee.code
	}
	_, _ = fmt.Fprintf(stderr, "error: %s\n", app.ErrorString(err))
	return code
}
