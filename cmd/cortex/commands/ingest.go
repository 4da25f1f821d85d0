// ABOUTME: CLI command to ingest a policy document into the chunk store
// ABOUTME: Chunks the document, embeds every chunk, and tracks ingestion status
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tripcortex/trip-cortex/internal/config"
	"github.com/tripcortex/trip-cortex/internal/core"
	"github.com/tripcortex/trip-cortex/internal/llm"
	"github.com/tripcortex/trip-cortex/internal/models"
	"github.com/tripcortex/trip-cortex/internal/storage"
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a policy document",
		Long: `Ingest a policy document into the chunk store.

The document is split into passages, each passage is embedded, and
the results become searchable policy chunks. Ingestion status is
tracked per document and visible via 'cortex policies list'.

Examples:
  cortex ingest travel-policy.md
  cortex ingest --quiet policies/2026-update.txt`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required to embed policy chunks")
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading document: %w", err)
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer store.Close()

	client, err := llm.NewOpenAIClientFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initializing OpenAI client: %w", err)
	}

	policy := &models.Policy{
		ID:        uuid.New().String(),
		SourceURI: path,
		FileName:  filepath.Base(path),
		Status:    models.PolicyStatusPending,
	}
	if err := store.SavePolicy(policy); err != nil {
		return fmt.Errorf("creating policy record: %w", err)
	}

	if err := ingestDocument(cmd.Context(), store, client, policy.ID, string(data)); err != nil {
		if updateErr := store.UpdatePolicyStatus(policy.ID, models.PolicyStatusFailed, err.Error()); updateErr != nil {
			return fmt.Errorf("ingestion failed (%v) and status update failed: %w", err, updateErr)
		}
		return fmt.Errorf("ingesting document: %w", err)
	}

	chunks, err := store.GetPolicyChunks(policy.ID)
	if err != nil {
		return fmt.Errorf("counting chunks: %w", err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Ingested %s: %d chunks (policy %s)\n", policy.FileName, len(chunks), policy.ID)
	}
	return nil
}

// ingestDocument runs the chunk-embed-store pipeline for one document
func ingestDocument(ctx context.Context, store *storage.Storage, embedder llm.EmbeddingProvider, policyID, text string) error {
	if err := store.UpdatePolicyStatus(policyID, models.PolicyStatusProcessing, ""); err != nil {
		return fmt.Errorf("marking policy as processing: %w", err)
	}

	chunker := core.NewChunker()
	chunks, err := chunker.ChunkDocument(policyID, text)
	if err != nil {
		return fmt.Errorf("chunking document: %w", err)
	}

	for i := range chunks {
		embedding, err := embedder.GenerateEmbedding(ctx, chunks[i].ContentText)
		if err != nil {
			return fmt.Errorf("embedding chunk %d: %w", i, err)
		}
		chunks[i].Embedding = embedding

		if err := store.SaveChunk(&chunks[i]); err != nil {
			return fmt.Errorf("storing chunk %d: %w", i, err)
		}
	}

	if err := store.SetPolicyChunkStats(policyID, 0, len(chunks)); err != nil {
		return fmt.Errorf("recording chunk stats: %w", err)
	}
	if err := store.UpdatePolicyStatus(policyID, models.PolicyStatusReady, ""); err != nil {
		return fmt.Errorf("marking policy as ready: %w", err)
	}
	return nil
}
