// ABOUTME: Assessor grades retrieval results into no-match, low-confidence, and confident tiers
// ABOUTME: Low-confidence outcomes degrade to conservative constraints instead of failing
package core

import (
	"github.com/tripcortex/trip-cortex/internal/models"
)

// ConfidenceLevel classifies how much trust downstream reasoning should
// place in a retrieval outcome.
type ConfidenceLevel string

const (
	// NoMatch means nothing cleared the similarity threshold.
	NoMatch ConfidenceLevel = "no_match"
	// LowConfidence means matches exist but the best one is weak; callers
	// should fall back to conservative policy constraints.
	LowConfidence ConfidenceLevel = "low_confidence"
	// Confident means the top match is strong enough to ground reasoning.
	Confident ConfidenceLevel = "confident"
)

// DefaultConfidenceThreshold separates low-confidence matches from confident
// ones. Results at or above this similarity are trusted as grounding.
const DefaultConfidenceThreshold = 0.80

// DefaultConservativeBudgetUSD is the spend ceiling applied when policy
// grounding is too weak to derive a real budget.
const DefaultConservativeBudgetUSD = 500.0

// Assessment is the graded outcome of a retrieval pass.
type Assessment struct {
	Level    ConfidenceLevel            `json:"level"`
	TopScore float64                    `json:"top_score"`
	Results  []models.PolicyChunkResult `json:"results"`
}

// Assessor tiers retrieval results by their top similarity score
type Assessor struct {
	confidenceThreshold float64
}

// NewAssessor creates an Assessor. Out-of-range thresholds fall back to the
// default.
func NewAssessor(confidenceThreshold float64) *Assessor {
	if confidenceThreshold <= 0 || confidenceThreshold > 1 {
		confidenceThreshold = DefaultConfidenceThreshold
	}
	return &Assessor{confidenceThreshold: confidenceThreshold}
}

// Assess grades a result set. Results are expected strongest-first, as the
// retriever returns them; the first entry decides the tier.
func (a *Assessor) Assess(results []models.PolicyChunkResult) Assessment {
	if len(results) == 0 {
		return Assessment{Level: NoMatch}
	}

	top := results[0].Similarity
	level := LowConfidence
	if top >= a.confidenceThreshold {
		level = Confident
	}

	return Assessment{
		Level:    level,
		TopScore: top,
		Results:  results,
	}
}

// ConservativeConstraints returns the strictest constraint set, used when
// grounding is absent or too weak to trust. Every booking under these
// constraints requires human approval.
func ConservativeConstraints(reason string) models.PolicyConstraints {
	if reason == "" {
		reason = "no reliable policy grounding found for this request"
	}
	return models.PolicyConstraints{
		MaxBudgetUSD:      DefaultConservativeBudgetUSD,
		RequiresApproval:  true,
		ApprovalReason:    reason,
		AdvanceBookingMet: false,
	}
}
