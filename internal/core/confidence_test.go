// ABOUTME: Tests for the confidence Assessor tiering and conservative constraint defaults
package core

import (
	"testing"

	"github.com/tripcortex/trip-cortex/internal/models"
)

func resultsWithTopScore(score float64) []models.PolicyChunkResult {
	return []models.PolicyChunkResult{
		{ID: "chunk-1", Similarity: score},
		{ID: "chunk-2", Similarity: score - 0.05},
	}
}

func TestAssessNoMatch(t *testing.T) {
	a := NewAssessor(0.80)

	got := a.Assess(nil)
	if got.Level != NoMatch {
		t.Errorf("got level %s, want %s", got.Level, NoMatch)
	}
	if got.TopScore != 0 {
		t.Errorf("got top score %.2f, want 0", got.TopScore)
	}
}

func TestAssessLowConfidence(t *testing.T) {
	a := NewAssessor(0.80)

	got := a.Assess(resultsWithTopScore(0.70))
	if got.Level != LowConfidence {
		t.Errorf("got level %s, want %s", got.Level, LowConfidence)
	}
	if got.TopScore != 0.70 {
		t.Errorf("got top score %.2f, want 0.70", got.TopScore)
	}
}

func TestAssessConfident(t *testing.T) {
	a := NewAssessor(0.80)

	got := a.Assess(resultsWithTopScore(0.91))
	if got.Level != Confident {
		t.Errorf("got level %s, want %s", got.Level, Confident)
	}
	if len(got.Results) != 2 {
		t.Errorf("got %d results, want 2", len(got.Results))
	}
}

func TestAssessThresholdBoundaryIsConfident(t *testing.T) {
	a := NewAssessor(0.80)

	got := a.Assess(resultsWithTopScore(0.80))
	if got.Level != Confident {
		t.Errorf("score equal to threshold: got level %s, want %s", got.Level, Confident)
	}
}

func TestNewAssessorRejectsBadThreshold(t *testing.T) {
	a := NewAssessor(1.5)

	got := a.Assess(resultsWithTopScore(0.85))
	if got.Level != Confident {
		t.Errorf("default threshold should apply: got level %s, want %s", got.Level, Confident)
	}
}

func TestConservativeConstraints(t *testing.T) {
	c := ConservativeConstraints("")

	if !c.RequiresApproval {
		t.Error("conservative constraints must require approval")
	}
	if c.ApprovalReason == "" {
		t.Error("conservative constraints must carry an approval reason")
	}
	if c.MaxBudgetUSD != DefaultConservativeBudgetUSD {
		t.Errorf("got budget %.2f, want %.2f", c.MaxBudgetUSD, DefaultConservativeBudgetUSD)
	}
	if c.AdvanceBookingMet {
		t.Error("conservative constraints must not assume advance booking was met")
	}
}

func TestConservativeConstraintsCustomReason(t *testing.T) {
	c := ConservativeConstraints("retrieval below confidence threshold")
	if c.ApprovalReason != "retrieval below confidence threshold" {
		t.Errorf("got reason %q", c.ApprovalReason)
	}
}
