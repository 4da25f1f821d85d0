// ABOUTME: Validator checks booking plans structurally before they leave the pipeline
// ABOUTME: Collects every violation in one pass instead of stopping at the first
package core

import (
	"fmt"

	"github.com/tripcortex/trip-cortex/internal/models"
)

// Passenger count bounds per plan. Airlines cap a single reservation at
// nine seats.
const (
	MinPassengers = 1
	MaxPassengers = 9
)

// FieldViolation names one field that failed validation and why.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationOutcome is the result of checking a plan. Violations lists every
// failed field, not just the first.
type ValidationOutcome struct {
	Valid      bool             `json:"valid"`
	Violations []FieldViolation `json:"violations,omitempty"`
}

// ValidatePlan checks a booking plan against the wire contract. It never
// stops at the first problem: the outcome carries one violation per failed
// field so the caller can report them all at once.
func ValidatePlan(plan models.BookingPlan) ValidationOutcome {
	var violations []FieldViolation

	add := func(field, reason string) {
		violations = append(violations, FieldViolation{Field: field, Reason: reason})
	}

	if !plan.Intent.Valid() {
		add("intent", fmt.Sprintf("unknown intent %q", string(plan.Intent)))
	}

	if plan.Confidence < 0 || plan.Confidence > 1 {
		add("confidence", fmt.Sprintf("confidence %.2f is outside [0, 1]", plan.Confidence))
	}

	if l := len(plan.Parameters.Origin); l < 3 || l > 4 {
		add("parameters.origin", fmt.Sprintf("airport code %q must be 3 or 4 characters", plan.Parameters.Origin))
	}

	if l := len(plan.Parameters.Destination); l < 3 || l > 4 {
		add("parameters.destination", fmt.Sprintf("airport code %q must be 3 or 4 characters", plan.Parameters.Destination))
	}

	if plan.Parameters.DepartureDate.IsZero() {
		add("parameters.departure_date", "departure date is required")
	}

	if !plan.Parameters.ReturnDate.IsZero() && !plan.Parameters.ReturnDate.After(plan.Parameters.DepartureDate) {
		add("parameters.return_date", fmt.Sprintf("return date %s must be after departure date %s",
			plan.Parameters.ReturnDate, plan.Parameters.DepartureDate))
	}

	if !plan.Parameters.CabinClass.Valid() {
		add("parameters.cabin_class", fmt.Sprintf("unknown cabin class %q", string(plan.Parameters.CabinClass)))
	}

	if n := plan.Parameters.PassengerCount; n < MinPassengers || n > MaxPassengers {
		add("parameters.passenger_count", fmt.Sprintf("passenger count %d must be between %d and %d", n, MinPassengers, MaxPassengers))
	}

	if plan.PolicyConstraints.MaxBudgetUSD <= 0 {
		add("policy_constraints.max_budget_usd", fmt.Sprintf("budget %.2f must be positive", plan.PolicyConstraints.MaxBudgetUSD))
	}

	for i, src := range plan.PolicySources {
		if src.SimilarityScore < 0 || src.SimilarityScore > 1 {
			add(fmt.Sprintf("policy_sources[%d].similarity_score", i),
				fmt.Sprintf("similarity score %.2f is outside [0, 1]", src.SimilarityScore))
		}
	}

	return ValidationOutcome{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}
