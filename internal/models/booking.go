// ABOUTME: Booking plan types produced by the reasoning step and checked by the validator
// ABOUTME: Field names and constraints follow the JSON wire contract exactly
package models

// Intent is the classified purpose of a booking plan
type Intent string

const (
	IntentFlightBooking Intent = "flight_booking"
	IntentFlightSearch  Intent = "flight_search"
	IntentPolicyQuery   Intent = "policy_query"
)

// Valid reports whether the intent is one of the enumerated values
func (i Intent) Valid() bool {
	switch i {
	case IntentFlightBooking, IntentFlightSearch, IntentPolicyQuery:
		return true
	}
	return false
}

// CabinClass is the requested cabin for a trip
type CabinClass string

const (
	CabinEconomy        CabinClass = "economy"
	CabinPremiumEconomy CabinClass = "premium_economy"
	CabinBusiness       CabinClass = "business"
	CabinFirst          CabinClass = "first"
)

// Valid reports whether the cabin class is one of the enumerated values
func (c CabinClass) Valid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

// BookingParameters describes the requested trip
type BookingParameters struct {
	Origin         string     `json:"origin"`
	Destination    string     `json:"destination"`
	DepartureDate  Date       `json:"departure_date"`
	ReturnDate     Date       `json:"return_date,omitempty"`
	CabinClass     CabinClass `json:"cabin_class"`
	TimePreference string     `json:"time_preference,omitempty"`
	PassengerCount int        `json:"passenger_count"`
}

// PolicyConstraints are the booking limits derived from retrieved policy
// content (or from conservative defaults when retrieval confidence is low)
type PolicyConstraints struct {
	MaxBudgetUSD               float64  `json:"max_budget_usd"`
	PreferredVendors           []string `json:"preferred_vendors"`
	AdvanceBookingDaysRequired int      `json:"advance_booking_days_required,omitempty"`
	AdvanceBookingMet          bool     `json:"advance_booking_met"`
	RequiresApproval           bool     `json:"requires_approval"`
	ApprovalReason             string   `json:"approval_reason,omitempty"`
}

// PolicySource cites the policy chunk that justified a constraint
type PolicySource struct {
	ChunkID         string  `json:"chunk_id"`
	SectionTitle    string  `json:"section_title"`
	Page            int     `json:"page"`
	SimilarityScore float64 `json:"similarity_score"`
}

// BookingPlan is the structured proposal produced by the reasoning step.
// It is built once per request, validated exactly once, and immutable
// after construction.
type BookingPlan struct {
	Intent            Intent            `json:"intent"`
	Confidence        float64           `json:"confidence"`
	Parameters        BookingParameters `json:"parameters"`
	PolicyConstraints PolicyConstraints `json:"policy_constraints"`
	PolicySources     []PolicySource    `json:"policy_sources"`
	ReasoningSummary  string            `json:"reasoning_summary"`
	Warnings          []string          `json:"warnings"`
	FallbackURL       string            `json:"fallback_url,omitempty"`
}
