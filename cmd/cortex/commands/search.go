// ABOUTME: CLI command to search policy chunks for a question
// ABOUTME: Embeds the query, retrieves by similarity, and reports a confidence tier
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tripcortex/trip-cortex/internal/config"
	"github.com/tripcortex/trip-cortex/internal/core"
	"github.com/tripcortex/trip-cortex/internal/llm"
)

var (
	searchTopK int
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the travel policy",
		Long: `Search ingested policy documents for passages relevant to a question.

Results are ranked by cosine similarity and graded into a confidence
tier (no_match, low_confidence, confident).

Examples:
  cortex search "can I fly business class to Europe?"
  cortex search --top-k 3 "advance booking requirements"
  cortex search --format json "baggage reimbursement"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchTopK, "top-k", 0, "Maximum results to return (default from config)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required to embed the query")
	}

	topK := cfg.TopK
	if searchTopK != 0 {
		if err := validatePositiveInt(searchTopK, "top-k"); err != nil {
			return err
		}
		topK = searchTopK
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close()
	store.SetIndexCutover(cfg.IndexCutover)

	client, err := llm.NewOpenAIClientFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initializing OpenAI client: %w", err)
	}

	embedding, err := client.GenerateEmbedding(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("embedding query: %w", err)
	}

	retriever := core.NewRetriever(store, cfg.SimilarityThreshold, topK)
	results, err := retriever.Search(cmd.Context(), embedding)
	if err != nil {
		return fmt.Errorf("searching policy: %w", err)
	}

	assessment := core.NewAssessor(cfg.ConfidenceThreshold).Assess(results)

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(assessment, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No policy content matched: %s\n", args[0])
		}
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Confidence: %s (top score %.2f)\n\n", assessment.Level, assessment.TopScore)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCORE\tSECTION\tPAGE\tPREVIEW\n")
	fmt.Fprintf(w, "-----\t-------\t----\t-------\n")
	for _, r := range results {
		section := r.SectionTitle
		if section == "" {
			section = "(no section)"
		}
		fmt.Fprintf(w, "%.3f\t%s\t%d\t%s\n", r.Similarity, truncate(section, 30), r.SourcePage, truncate(r.ContentText, 60))
	}
	return w.Flush()
}
