// ABOUTME: Tests for booking plan wire types
// ABOUTME: Verifies JSON round-trips and enum helpers
package models

import (
	"encoding/json"
	"testing"
	"time"
)

const samplePlanJSON = `{
	"intent": "flight_booking",
	"confidence": 0.95,
	"parameters": {
		"origin": "HYD",
		"destination": "ORD",
		"departure_date": "2026-03-10",
		"return_date": "2026-03-12",
		"cabin_class": "economy",
		"passenger_count": 1
	},
	"policy_constraints": {
		"max_budget_usd": 500.0,
		"preferred_vendors": ["Delta", "United"],
		"advance_booking_met": true
	},
	"policy_sources": [
		{"chunk_id": "c1", "section_title": "Domestic Air Travel Policy", "page": 3, "similarity_score": 0.89}
	],
	"reasoning_summary": "Economy round trip within domestic budget.",
	"warnings": []
}`

func TestBookingPlanFromJSON(t *testing.T) {
	var plan BookingPlan
	if err := json.Unmarshal([]byte(samplePlanJSON), &plan); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if plan.Intent != IntentFlightBooking {
		t.Errorf("Intent = %v, want flight_booking", plan.Intent)
	}
	if plan.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", plan.Confidence)
	}
	if plan.Parameters.Origin != "HYD" || plan.Parameters.Destination != "ORD" {
		t.Errorf("route = %s-%s, want HYD-ORD", plan.Parameters.Origin, plan.Parameters.Destination)
	}
	if plan.Parameters.DepartureDate.String() != "2026-03-10" {
		t.Errorf("DepartureDate = %v, want 2026-03-10", plan.Parameters.DepartureDate)
	}
	if plan.Parameters.ReturnDate.String() != "2026-03-12" {
		t.Errorf("ReturnDate = %v, want 2026-03-12", plan.Parameters.ReturnDate)
	}
	if plan.Parameters.CabinClass != CabinEconomy {
		t.Errorf("CabinClass = %v, want economy", plan.Parameters.CabinClass)
	}
	if plan.PolicyConstraints.MaxBudgetUSD != 500.0 {
		t.Errorf("MaxBudgetUSD = %v, want 500.0", plan.PolicyConstraints.MaxBudgetUSD)
	}
	if len(plan.PolicyConstraints.PreferredVendors) != 2 {
		t.Errorf("PreferredVendors = %v, want 2 entries", plan.PolicyConstraints.PreferredVendors)
	}
	if len(plan.PolicySources) != 1 {
		t.Fatalf("PolicySources = %d entries, want 1", len(plan.PolicySources))
	}
	if plan.PolicySources[0].ChunkID != "c1" {
		t.Errorf("ChunkID = %v, want c1", plan.PolicySources[0].ChunkID)
	}
	if plan.PolicySources[0].SimilarityScore != 0.89 {
		t.Errorf("SimilarityScore = %v, want 0.89", plan.PolicySources[0].SimilarityScore)
	}
}

func TestBookingPlanRoundTrip(t *testing.T) {
	plan := BookingPlan{
		Intent:     IntentFlightSearch,
		Confidence: 0.7,
		Parameters: BookingParameters{
			Origin:         "SFO",
			Destination:    "JFK",
			DepartureDate:  NewDate(2026, time.April, 1),
			CabinClass:     CabinBusiness,
			PassengerCount: 2,
		},
		PolicyConstraints: PolicyConstraints{
			MaxBudgetUSD:      1200,
			PreferredVendors:  []string{"United"},
			AdvanceBookingMet: true,
			RequiresApproval:  true,
			ApprovalReason:    "business cabin requires manager approval",
		},
		PolicySources:    []PolicySource{},
		ReasoningSummary: "one-way business search",
		Warnings:         []string{"approval needed"},
	}

	data, err := json.Marshal(plan)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded BookingPlan
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if decoded.Parameters.Origin != "SFO" {
		t.Errorf("Origin = %v, want SFO", decoded.Parameters.Origin)
	}
	if !decoded.Parameters.ReturnDate.IsZero() {
		t.Errorf("ReturnDate = %v, want zero", decoded.Parameters.ReturnDate)
	}
	if !decoded.PolicyConstraints.RequiresApproval {
		t.Error("RequiresApproval = false, want true")
	}
}

func TestIntentValid(t *testing.T) {
	for _, intent := range []Intent{IntentFlightBooking, IntentFlightSearch, IntentPolicyQuery} {
		if !intent.Valid() {
			t.Errorf("Intent(%q).Valid() = false, want true", intent)
		}
	}
	if Intent("hotel_booking").Valid() {
		t.Error("Intent(hotel_booking).Valid() = true, want false")
	}
}

func TestCabinClassValid(t *testing.T) {
	for _, cabin := range []CabinClass{CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst} {
		if !cabin.Valid() {
			t.Errorf("CabinClass(%q).Valid() = false, want true", cabin)
		}
	}
	if CabinClass("coach").Valid() {
		t.Error("CabinClass(coach).Valid() = true, want false")
	}
}
