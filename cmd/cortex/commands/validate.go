// ABOUTME: CLI command to validate a booking plan JSON file
// ABOUTME: Prints every field violation, not just the first
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tripcortex/trip-cortex/internal/core"
	"github.com/tripcortex/trip-cortex/internal/models"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <plan.json>",
		Short: "Validate a booking plan",
		Long: `Validate a booking plan JSON file against the plan contract.

All violations are collected and reported together. The command exits
non-zero when the plan is invalid.

Examples:
  cortex validate plan.json
  cortex validate --format json plan.json`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading plan: %w", err)
	}

	var plan models.BookingPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return fmt.Errorf("parsing plan JSON: %w", err)
	}

	outcome := core.ValidatePlan(plan)

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else if outcome.Valid {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "Plan is valid")
		}
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Plan is invalid (%d violations):\n", len(outcome.Violations))
		for _, v := range outcome.Violations {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", v.Field, v.Reason)
		}
	}

	if !outcome.Valid {
		return fmt.Errorf("plan failed validation")
	}
	return nil
}
