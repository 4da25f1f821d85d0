// ABOUTME: Tests for the validate command using plan files on disk
package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validPlanJSON = `{
  "intent": "flight_booking",
  "confidence": 0.92,
  "parameters": {
    "origin": "HYD",
    "destination": "ORD",
    "departure_date": "2026-03-15",
    "return_date": "2026-03-22",
    "cabin_class": "economy",
    "passenger_count": 1
  },
  "policy_constraints": {
    "max_budget_usd": 500,
    "requires_approval": false
  },
  "policy_sources": [
    {"chunk_id": "chunk-1", "section_title": "International Travel", "page": 4, "similarity_score": 0.89}
  ],
  "reasoning_summary": "Economy round trip within budget."
}`

func writePlanFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write plan file: %v", err)
	}
	return path
}

func runValidateCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"validate"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCmdValidPlan(t *testing.T) {
	path := writePlanFile(t, validPlanJSON)

	out, err := runValidateCmd(t, path)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "Plan is valid") {
		t.Errorf("output = %q, want valid message", out)
	}
}

func TestValidateCmdInvalidPlan(t *testing.T) {
	bad := strings.Replace(validPlanJSON, `"confidence": 0.92`, `"confidence": 1.5`, 1)
	path := writePlanFile(t, bad)

	out, err := runValidateCmd(t, path)
	if err == nil {
		t.Fatal("invalid plan should exit with error")
	}
	if !strings.Contains(out, "confidence") {
		t.Errorf("output = %q, want confidence violation", out)
	}
}

func TestValidateCmdMissingFile(t *testing.T) {
	if _, err := runValidateCmd(t, filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestValidateCmdMalformedJSON(t *testing.T) {
	path := writePlanFile(t, "{not json")
	if _, err := runValidateCmd(t, path); err == nil {
		t.Error("malformed JSON should fail")
	}
}
