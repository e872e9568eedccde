// Package cmd wires configuration, storage and HTTP server into the command line entry points
package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command; running it without a subcommand starts the server
func NewRootCmd() *cobra.Command {
	serveCmd := NewServeCmd()

	rootCmd := &cobra.Command{
		Use:   "newsllater",
		Short: "Generate weekly newsletters from source documents with Claude",
		Long: `newsllater - Newsletter Generator

Builds a newsletter for a target audience and a weekly pain point from
uploaded documents (PDF, DOCX, TXT, MD) and pasted text, and keeps the
generated history with its extracted framework.

Examples:
  # Start the API server (default command)
  newsllater

  # Start on a custom port
  newsllater serve --port 8080

  # Create or update the schema and seed default settings
  newsllater migrate`,
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(NewMigrateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
