package cba

import "math"

// InferTaxState maps payroll to its bracket. Highest matching bracket wins;
// boundaries are inclusive on the bracket being entered.
func InferTaxState(payrollM float64) TaxState {
	switch {
	case payrollM >= SecondApronM:
		return Apron2
	case payrollM >= FirstApronM:
		return Apron1
	case payrollM >= LuxuryTaxM:
		return Tax
	default:
		return BelowTax
	}
}

// BuildContext derives a team's CBA context from its payroll.
func BuildContext(teamCode string, payrollM float64) TeamContext {
	if payrollM < 0 {
		payrollM = 0
	}
	return TeamContext{
		TeamCode: teamCode,
		PayrollM: round2(payrollM),
		State:    InferTaxState(payrollM),
	}
}

// tiered2023MaxIncoming is the below-tax matching ladder. Tier boundaries are
// inclusive on the lower bucket: outgoing of exactly 7.5 uses the 200% band,
// exactly 29 uses the +7.5 band.
func tiered2023MaxIncoming(outgoingM float64) float64 {
	outgoing := math.Max(0, outgoingM)
	switch {
	case outgoing <= 7.5:
		return round2(outgoing*2.0 + 0.25)
	case outgoing <= 29.0:
		return round2(outgoing + 7.5)
	default:
		return round2(outgoing*1.25 + 0.25)
	}
}

// strict125MaxIncoming is the 125% + $250K cap applied in the tax and first
// apron brackets.
func strict125MaxIncoming(outgoingM float64) float64 {
	return round2(math.Max(0, outgoingM)*1.25 + 0.25)
}

// apron2MaxIncoming is the second-apron regime: flat 110%, no dollar cushion.
func apron2MaxIncoming(outgoingM float64) float64 {
	return round2(math.Max(0, outgoingM) * 1.10)
}

// MaxIncomingSalary returns the incoming-salary ceiling for a side sending
// outgoingM under the given tax state, rounded to 2 decimal places. Tax and
// first-apron teams take the minimum of the tiered ladder and the strict
// 125% cap, so those brackets are never less restrictive than below-tax.
func MaxIncomingSalary(outgoingM float64, state TaxState) float64 {
	switch state {
	case BelowTax:
		return tiered2023MaxIncoming(outgoingM)
	case Tax, Apron1:
		return math.Min(tiered2023MaxIncoming(outgoingM), strict125MaxIncoming(outgoingM))
	default:
		return apron2MaxIncoming(outgoingM)
	}
}

// EvaluateSide decides one side of a trade. A side that sends nothing can
// receive nothing; otherwise every applicable reason is appended
// independently so a display layer sees all violations at once.
func EvaluateSide(side SideInput, ctx TeamContext) Decision {
	outgoing := math.Max(0, side.OutgoingSalaryM)
	incoming := math.Max(0, side.IncomingSalaryM)

	decision := Decision{
		RuleVersion: RuleVersion,
		Reasons:     []string{},
		Warnings:    []string{},
	}

	if outgoing == 0 {
		decision.OK = incoming == 0
		if !decision.OK {
			decision.Reasons = append(decision.Reasons, ReasonNoOutgoing)
		}
		return decision
	}

	maxIncoming := MaxIncomingSalary(outgoing, ctx.State)

	if ctx.State == Apron2 && side.OutgoingPlayers > 1 {
		decision.Reasons = append(decision.Reasons, ReasonApron2Aggregation)
	}
	if ctx.State == Apron2 && incoming > outgoing {
		decision.Reasons = append(decision.Reasons, ReasonApron2TakeMore)
	}
	if incoming > maxIncoming {
		decision.Reasons = append(decision.Reasons, ReasonIncomingExceedsMax)
	}

	if ctx.State == Apron1 {
		decision.Warnings = append(decision.Warnings, WarnApron1Approximate)
	}
	if ctx.State == Apron2 {
		decision.Warnings = append(decision.Warnings, WarnApron2Approximate)
	}

	decision.OK = len(decision.Reasons) == 0
	decision.MaxIncomingM = round2(maxIncoming)
	return decision
}

// EvaluateTrade evaluates both sides independently; there is no cross-side
// coupling beyond the caller mirroring outgoing/incoming figures. No
// short-circuit: both decisions are always populated.
func EvaluateTrade(sideA, sideB SideInput, ctxA, ctxB TeamContext) TradeDecision {
	decisionA := EvaluateSide(sideA, ctxA)
	decisionB := EvaluateSide(sideB, ctxB)
	return TradeDecision{
		RuleVersion: RuleVersion,
		TeamA:       decisionA,
		TeamB:       decisionB,
		SalaryMatch: decisionA.OK && decisionB.OK,
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
