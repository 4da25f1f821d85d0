// ABOUTME: MCP command starts the Trip Cortex Model Context Protocol server
// ABOUTME: Exposes policy search and booking plan tools to LLM agents via stdio
package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tripcortex/trip-cortex/internal/auth"
	"github.com/tripcortex/trip-cortex/internal/config"
	"github.com/tripcortex/trip-cortex/internal/core"
	"github.com/tripcortex/trip-cortex/internal/llm"
	"github.com/tripcortex/trip-cortex/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs Trip Cortex as an MCP (Model Context Protocol) server over
stdio, exposing policy search, booking plan generation, and plan
validation as tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically launched by the agent host)
  cortex mcp

  # Configure in the agent host's MCP config:
  # {
  #   "mcpServers": {
  #     "trip-cortex": {
  #       "command": "cortex",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for the MCP server")
	}

	store, err := openStorage(cfg)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	store.SetIndexCutover(cfg.IndexCutover)

	client, err := llm.NewOpenAIClientFromConfig(cfg)
	if err != nil {
		store.Close()
		return fmt.Errorf("initializing OpenAI client: %w", err)
	}

	authProvider, err := auth.NewProvider(cfg)
	if err != nil {
		store.Close()
		return fmt.Errorf("initializing auth provider: %w", err)
	}

	retriever := core.NewRetriever(store, cfg.SimilarityThreshold, cfg.TopK)
	assessor := core.NewAssessor(cfg.ConfidenceThreshold)

	server := mcpserver.NewMCPServer(
		"Trip Cortex",
		"0.1.0",
	)
	mcp.RegisterTools(server, store, retriever, assessor, client, client, authProvider)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		log.Println("Trip Cortex MCP server starting on stdio...")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		if !quiet {
			log.Println("Shutdown signal received, gracefully shutting down...")
		}
		if err := store.Close(); err != nil {
			log.Printf("Warning: Error closing storage: %v", err)
		}
		if !quiet {
			log.Println("Shutdown complete")
		}
	case err := <-serverErr:
		store.Close()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
