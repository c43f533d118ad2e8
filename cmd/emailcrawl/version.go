package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shpitdev/site-email-crawler/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "emailcrawl %s\n", version.Current)
			return err
		},
	}
}
