// ABOUTME: MCP tool handler implementations for the Trip Cortex server
// ABOUTME: Maps pipeline failures to stable error codes with user-safe messages
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/tripcortex/trip-cortex/internal/auth"
	"github.com/tripcortex/trip-cortex/internal/core"
	"github.com/tripcortex/trip-cortex/internal/cortexerr"
	"github.com/tripcortex/trip-cortex/internal/llm"
	"github.com/tripcortex/trip-cortex/internal/models"
	"github.com/tripcortex/trip-cortex/internal/storage"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	storage   *storage.Storage
	retriever *core.Retriever
	assessor  *core.Assessor
	embedder  llm.EmbeddingProvider
	planner   llm.Planner
	auth      auth.Provider
}

// authorize verifies the caller's session token when an auth provider is
// configured. Without one (tests, trusted local setups) every call passes.
func (h *Handlers) authorize(ctx context.Context, request mcp.CallToolRequest) error {
	if h.auth == nil {
		return nil
	}
	token := request.GetString("session_token", "")
	if _, err := h.auth.VerifyToken(ctx, token); err != nil {
		return err
	}
	return nil
}

// SearchPolicy handles the search_policy tool
func (h *Handlers) SearchPolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.authorize(ctx, request); err != nil {
		return toolError(err), nil
	}

	query, err := request.RequireString("query")
	if err != nil {
		return toolError(cortexerr.New(cortexerr.CodeInvalidRequest, "query argument is required and must be a string")), nil
	}

	embedding, err := h.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return toolError(cortexerr.Wrap(cortexerr.CodeRetrievalFailed, "could not embed query", err)), nil
	}

	results, err := h.retriever.Search(ctx, embedding)
	if err != nil {
		return toolError(err), nil
	}

	assessment := h.assessor.Assess(results)

	return toolResult(map[string]interface{}{
		"level":     assessment.Level,
		"top_score": assessment.TopScore,
		"results":   resultsPayload(results),
	}), nil
}

// PlanBooking handles the plan_booking tool: embed, retrieve, assess, plan,
// validate. A no-match retrieval refuses the request rather than guessing.
func (h *Handlers) PlanBooking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.authorize(ctx, request); err != nil {
		return toolError(err), nil
	}

	bookingRequest, err := request.RequireString("request")
	if err != nil {
		return toolError(cortexerr.New(cortexerr.CodeInvalidRequest, "request argument is required and must be a string")), nil
	}

	embedding, err := h.embedder.GenerateEmbedding(ctx, bookingRequest)
	if err != nil {
		return toolError(cortexerr.Wrap(cortexerr.CodeRetrievalFailed, "could not embed request", err)), nil
	}

	results, err := h.retriever.Search(ctx, embedding)
	if err != nil {
		return toolError(err), nil
	}

	assessment := h.assessor.Assess(results)
	if assessment.Level == core.NoMatch {
		return toolError(cortexerr.New(cortexerr.CodeNoPolicyFound, "no policy content matched this request")), nil
	}

	plan, err := h.planner.GeneratePlan(ctx, bookingRequest, results)
	if err != nil {
		return toolError(cortexerr.Wrap(cortexerr.CodeReasoningFailed, "plan generation failed", err)), nil
	}

	// Citations always come from retrieval, not from the model, so the
	// reported similarity scores are the exact ones we computed.
	plan.PolicySources = sourcesFromResults(results)

	if assessment.Level == core.LowConfidence {
		reason := fmt.Sprintf("policy grounding is weak (top similarity %.2f)", assessment.TopScore)
		plan.PolicyConstraints = core.ConservativeConstraints(reason)
		plan.Warnings = append(plan.Warnings, "conservative constraints applied: "+reason)
	}

	outcome := core.ValidatePlan(*plan)
	if !outcome.Valid {
		log.Printf("plan validation failed with %d violations", len(outcome.Violations))
		return toolResult(map[string]interface{}{
			"code":       cortexerr.CodeValidationFailed,
			"message":    "the generated plan failed validation",
			"violations": outcome.Violations,
		}), nil
	}

	return toolResult(map[string]interface{}{
		"plan":      plan,
		"level":     assessment.Level,
		"top_score": assessment.TopScore,
	}), nil
}

// ValidatePlan handles the validate_plan tool
func (h *Handlers) ValidatePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.authorize(ctx, request); err != nil {
		return toolError(err), nil
	}

	raw, ok := request.GetArguments()["plan"]
	if !ok {
		return toolError(cortexerr.New(cortexerr.CodeInvalidRequest, "plan argument is required")), nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return toolError(cortexerr.Wrap(cortexerr.CodeInvalidRequest, "plan argument is not an object", err)), nil
	}

	var plan models.BookingPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return toolError(cortexerr.Wrap(cortexerr.CodeInvalidRequest, "plan does not match the booking plan shape", err)), nil
	}

	outcome := core.ValidatePlan(plan)
	return toolResult(outcome), nil
}

// ListPolicies handles the list_policies tool
func (h *Handlers) ListPolicies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.authorize(ctx, request); err != nil {
		return toolError(err), nil
	}

	policies, err := h.storage.ListPolicies()
	if err != nil {
		return toolError(cortexerr.Wrap(cortexerr.CodeInternalError, "could not list policies", err)), nil
	}

	return toolResult(map[string]interface{}{
		"policies": policies,
		"count":    len(policies),
	}), nil
}

// GetPolicy handles the get_policy tool
func (h *Handlers) GetPolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.authorize(ctx, request); err != nil {
		return toolError(err), nil
	}

	policyID, err := request.RequireString("policy_id")
	if err != nil {
		return toolError(cortexerr.New(cortexerr.CodeInvalidRequest, "policy_id argument is required and must be a string")), nil
	}

	policy, err := h.storage.GetPolicy(policyID)
	if err != nil {
		return toolError(cortexerr.Wrap(cortexerr.CodeInternalError, "could not load policy", err)), nil
	}
	if policy == nil {
		return toolError(cortexerr.New(cortexerr.CodeInvalidRequest, fmt.Sprintf("no policy with ID %q", policyID))), nil
	}

	chunks, err := h.storage.GetPolicyChunks(policyID)
	if err != nil {
		return toolError(cortexerr.Wrap(cortexerr.CodeInternalError, "could not load policy chunks", err)), nil
	}

	chunkViews := make([]map[string]interface{}, len(chunks))
	for i, c := range chunks {
		chunkViews[i] = map[string]interface{}{
			"id":            c.ID,
			"content_type":  c.ContentType,
			"content_text":  c.ContentText,
			"section_title": c.SectionTitle,
			"source_page":   c.SourcePage,
			"reading_order": c.ReadingOrder,
		}
	}

	return toolResult(map[string]interface{}{
		"policy": policy,
		"chunks": chunkViews,
	}), nil
}

// toolResult marshals a payload into a text tool result
func toolResult(payload interface{}) *mcp.CallToolResult {
	data, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError(`{"code":"INTERNAL_ERROR","message":"could not encode response"}`)
	}
	return mcp.NewToolResultText(string(data))
}

// toolError renders an error as a stable code plus user-safe message. The
// underlying cause is logged but never sent to the caller.
func toolError(err error) *mcp.CallToolResult {
	code := cortexerr.CodeOf(err)
	message := "an internal error occurred"

	var cerr *cortexerr.Error
	if errors.As(err, &cerr) {
		message = cerr.UserMessage()
	}
	log.Printf("tool error [%s]: %v", code, err)

	body, _ := json.Marshal(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	return mcp.NewToolResultError(string(body))
}

// resultsPayload projects retrieval results for the wire
func resultsPayload(results []models.PolicyChunkResult) []map[string]interface{} {
	out := make([]map[string]interface{}, len(results))
	for i, r := range results {
		out[i] = map[string]interface{}{
			"chunk_id":      r.ID,
			"content_text":  r.ContentText,
			"section_title": r.SectionTitle,
			"source_page":   r.SourcePage,
			"content_type":  r.ContentType,
			"similarity":    r.Similarity,
		}
	}
	return out
}

// sourcesFromResults turns retrieval results into plan citations
func sourcesFromResults(results []models.PolicyChunkResult) []models.PolicySource {
	sources := make([]models.PolicySource, len(results))
	for i, r := range results {
		sources[i] = models.PolicySource{
			ChunkID:         r.ID,
			SectionTitle:    r.SectionTitle,
			Page:            r.SourcePage,
			SimilarityScore: r.Similarity,
		}
	}
	return sources
}
