package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root 'taxsite' command with its subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "taxsite",
		Short:         "Contact form and checkout API for the business website",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newPreviewCmd(),
	)

	return rootCmd
}
