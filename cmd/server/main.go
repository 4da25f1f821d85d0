// ABOUTME: Main entry point for the Trip Cortex MCP server with stdio transport
// ABOUTME: Initializes storage, retrieval pipeline, and MCP server with all tools
package main

import (
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/tripcortex/trip-cortex/internal/auth"
	"github.com/tripcortex/trip-cortex/internal/config"
	"github.com/tripcortex/trip-cortex/internal/core"
	"github.com/tripcortex/trip-cortex/internal/llm"
	"github.com/tripcortex/trip-cortex/internal/mcp"
	"github.com/tripcortex/trip-cortex/internal/storage"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.OpenAIKey == "" {
		log.Fatal("OPENAI_API_KEY is required")
	}

	var store *storage.Storage
	if cfg.DBPath != "" {
		store, err = storage.NewStorageWithPath(cfg.DBPath)
	} else {
		store, err = storage.NewStorage()
	}
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()
	store.SetIndexCutover(cfg.IndexCutover)

	client, err := llm.NewOpenAIClientFromConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OpenAI client: %v", err)
	}

	authProvider, err := auth.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize auth provider: %v", err)
	}

	retriever := core.NewRetriever(store, cfg.SimilarityThreshold, cfg.TopK)
	assessor := core.NewAssessor(cfg.ConfidenceThreshold)

	server := mcpserver.NewMCPServer(
		"Trip Cortex",
		"0.1.0",
	)
	mcp.RegisterTools(server, store, retriever, assessor, client, client, authProvider)

	log.Println("Trip Cortex MCP server starting on stdio...")
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
