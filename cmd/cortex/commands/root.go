// ABOUTME: Root CLI command with global flags shared by all subcommands
// ABOUTME: Wires up ingest, search, validate, policies, mcp, and version
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with all subcommands registered
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cortex",
		Short: "Policy-grounded corporate travel booking",
		Long: `Trip Cortex - policy-grounded travel booking

Ingests company travel policy documents, retrieves the passages
relevant to a booking request, and turns requests into validated
booking plans that cite the policy text they rely on.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto, table, json)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewValidateCmd())
	cmd.AddCommand(NewPoliciesCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
