// ABOUTME: CLI commands to list, show, and delete ingested policy documents
// ABOUTME: Delete cascades to the policy's chunks and the in-process index
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tripcortex/trip-cortex/internal/config"
)

// NewPoliciesCmd creates the policies command group
func NewPoliciesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "Manage ingested policy documents",
	}

	cmd.AddCommand(newPoliciesListCmd())
	cmd.AddCommand(newPoliciesShowCmd())
	cmd.AddCommand(newPoliciesDeleteCmd())

	return cmd
}

func newPoliciesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingested policy documents",
		Args:  cobra.NoArgs,
		RunE:  runPoliciesList,
	}
}

func newPoliciesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <policy-id>",
		Short: "Show a policy document and its chunks",
		Args:  cobra.ExactArgs(1),
		RunE:  runPoliciesShow,
	}
}

func newPoliciesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <policy-id>",
		Short: "Delete a policy document and all of its chunks",
		Args:  cobra.ExactArgs(1),
		RunE:  runPoliciesDelete,
	}
}

func runPoliciesList(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close()

	policies, err := store.ListPolicies()
	if err != nil {
		return fmt.Errorf("listing policies: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(policies, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(policies) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No policies ingested yet")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tFILE\tSTATUS\tCHUNKS\tINGESTED\n")
	fmt.Fprintf(w, "--\t----\t------\t------\t--------\n")
	for _, p := range policies {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", p.ID, truncate(p.FileName, 30), p.Status, p.TotalChunks, formatTime(p.CreatedAt))
	}
	return w.Flush()
}

func runPoliciesShow(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close()

	policy, err := store.GetPolicy(args[0])
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}
	if policy == nil {
		return fmt.Errorf("no policy with ID %q", args[0])
	}

	chunks, err := store.GetPolicyChunks(policy.ID)
	if err != nil {
		return fmt.Errorf("loading chunks: %w", err)
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"policy": policy,
			"chunks": chunks,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Policy:  %s\n", policy.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "File:    %s\n", policy.FileName)
	fmt.Fprintf(cmd.OutOrStdout(), "Status:  %s\n", policy.Status)
	if policy.ErrorMessage != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Error:   %s\n", policy.ErrorMessage)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Chunks:  %d\n\n", len(chunks))

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ORDER\tTYPE\tSECTION\tPREVIEW\n")
	for _, c := range chunks {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ReadingOrder, c.ContentType, truncate(c.SectionTitle, 30), truncate(c.ContentText, 50))
	}
	return w.Flush()
}

func runPoliciesDelete(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close()

	policy, err := store.GetPolicy(args[0])
	if err != nil {
		return fmt.Errorf("loading policy: %w", err)
	}
	if policy == nil {
		return fmt.Errorf("no policy with ID %q", args[0])
	}

	if err := store.DeletePolicy(policy.ID); err != nil {
		return fmt.Errorf("deleting policy: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted policy %s (%s)\n", policy.ID, policy.FileName)
	}
	return nil
}
