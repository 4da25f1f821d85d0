// ABOUTME: MCP tool definitions and registration for the Trip Cortex server
// ABOUTME: Defines JSON schemas for the 5 policy and booking tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/tripcortex/trip-cortex/internal/auth"
	"github.com/tripcortex/trip-cortex/internal/core"
	"github.com/tripcortex/trip-cortex/internal/llm"
	"github.com/tripcortex/trip-cortex/internal/storage"
)

// sessionTokenSchema is the shared session_token argument accepted by every
// tool when an auth provider is configured
var sessionTokenSchema = map[string]interface{}{
	"type":        "string",
	"description": "Session token identifying the caller",
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, store *storage.Storage, retriever *core.Retriever, assessor *core.Assessor, embedder llm.EmbeddingProvider, planner llm.Planner, authProvider auth.Provider) *Handlers {
	handlers := &Handlers{
		storage:   store,
		retriever: retriever,
		assessor:  assessor,
		embedder:  embedder,
		planner:   planner,
		auth:      authProvider,
	}

	// 1. search_policy - semantic search over ingested policy chunks
	server.AddTool(mcp.Tool{
		Name:        "search_policy",
		Description: "Search the company travel policy for passages relevant to a question. Returns matching chunks with similarity scores and a confidence tier.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language policy question",
				},
				"session_token": sessionTokenSchema,
			},
			Required: []string{"query"},
		},
	}, handlers.SearchPolicy)

	// 2. plan_booking - full request-to-validated-plan pipeline
	server.AddTool(mcp.Tool{
		Name:        "plan_booking",
		Description: "Turn a travel booking request into a validated, policy-grounded booking plan. Refuses when no relevant policy exists.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"request": map[string]interface{}{
					"type":        "string",
					"description": "Natural-language booking request",
				},
				"session_token": sessionTokenSchema,
			},
			Required: []string{"request"},
		},
	}, handlers.PlanBooking)

	// 3. validate_plan - structural validation of an existing plan
	server.AddTool(mcp.Tool{
		Name:        "validate_plan",
		Description: "Validate a booking plan JSON object. Returns every field violation, not just the first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"plan": map[string]interface{}{
					"type":        "object",
					"description": "Booking plan object to validate",
				},
				"session_token": sessionTokenSchema,
			},
			Required: []string{"plan"},
		},
	}, handlers.ValidatePlan)

	// 4. list_policies - ingested policy documents and their status
	server.AddTool(mcp.Tool{
		Name:        "list_policies",
		Description: "List ingested policy documents with their ingestion status and chunk counts.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_token": sessionTokenSchema,
			},
		},
	}, handlers.ListPolicies)

	// 5. get_policy - one policy document with its chunks
	server.AddTool(mcp.Tool{
		Name:        "get_policy",
		Description: "Get a policy document by ID, including its chunks in reading order.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"policy_id": map[string]interface{}{
					"type":        "string",
					"description": "Policy document ID",
				},
				"session_token": sessionTokenSchema,
			},
			Required: []string{"policy_id"},
		},
	}, handlers.GetPolicy)

	return handlers
}
