// Package cba implements the v1 salary-matching rule engine: tax-apron-aware
// bounds on how much incoming salary a team may absorb for a given amount of
// outgoing salary. Matching "failures" are decisions, never errors.
package cba

// RuleVersion identifies the active rule set for audit trails and cache keys.
const RuleVersion = "cba_v1"

// League financial reference points for the 2025-26 season, in millions.
// Estimates; the engine only cares about their ordering.
const (
	SalaryCapM   = 153.0
	LuxuryTaxM   = 186.0
	FirstApronM  = 193.0
	SecondApronM = 205.0
)

// TaxState is a team's payroll bracket. Severity is strictly ordered:
// BelowTax < Tax < Apron1 < Apron2.
type TaxState string

const (
	BelowTax TaxState = "below_tax"
	Tax      TaxState = "tax"
	Apron1   TaxState = "apron_1"
	Apron2   TaxState = "apron_2"
)

// Reason codes appended by EvaluateSide. Multiple reasons may co-occur.
const (
	ReasonNoOutgoing         = "cannot_take_salary_without_outgoing"
	ReasonApron2Aggregation  = "second_apron_cannot_aggregate_multiple_outgoing"
	ReasonApron2TakeMore     = "second_apron_cannot_take_more_salary"
	ReasonIncomingExceedsMax = "incoming_exceeds_max_incoming"
)

// Warning codes are advisory only and never flip a decision.
const (
	WarnApron1Approximate = "first_apron_rules_are_approximate_v1"
	WarnApron2Approximate = "second_apron_rules_are_approximate_v1"
)

// TeamContext is a team's payroll state at evaluation time. State is always
// derived from PayrollM; never set it independently.
type TeamContext struct {
	TeamCode string   `json:"team_code"`
	PayrollM float64  `json:"payroll_m"`
	State    TaxState `json:"tax_state"`
}

// SideInput is one side of a proposed trade, aggregated over the selected
// roster subset. Constructed per simulation call.
type SideInput struct {
	TeamCode        string  `json:"team_code"`
	OutgoingSalaryM float64 `json:"outgoing_salary_m"`
	IncomingSalaryM float64 `json:"incoming_salary_m"`
	OutgoingPlayers int     `json:"outgoing_players"`
	IncomingPlayers int     `json:"incoming_players"`
}

// Decision is the engine's verdict for one side. Produced fresh per
// evaluation and always fully populated, pass or fail.
type Decision struct {
	OK            bool     `json:"ok"`
	MaxIncomingM  float64  `json:"max_incoming_m"`
	RuleVersion   string   `json:"rule_version"`
	Reasons       []string `json:"reasons"`
	Warnings      []string `json:"warnings"`
}

// TradeDecision bundles both sides' decisions. Both sides are always
// evaluated so display layers never see a half-empty result.
type TradeDecision struct {
	RuleVersion string   `json:"rule_version"`
	TeamA       Decision `json:"team_a"`
	TeamB       Decision `json:"team_b"`
	SalaryMatch bool     `json:"salary_match"`
}
