package cba

import (
	"fmt"
	"math"
)

// Named rule variants kept for A/B comparison against historical trades.
// Selection is always explicit; there is no implicit default.
const (
	RuleSimple125  = "simple_125"  // flat 125% + $100K, no tiers
	RuleTiered2023 = "tiered_2023" // below-tax ladder, ignores apron context
	RuleCBAV1      = "cba_v1"      // full engine above
)

// LegacyMatchInput carries the optional knobs the full engine needs when
// selected through the legacy entry point.
type LegacyMatchInput struct {
	Context         *TeamContext
	OutgoingPlayers int
}

// LegacyIsSalaryMatch answers the single pass/fail question under a named
// rule variant. simple_125 and tiered_2023 intentionally ignore tax state;
// cba_v1 builds an unknown-team below-tax context when none is supplied.
func LegacyIsSalaryMatch(outgoingM, incomingM float64, rule string, opts LegacyMatchInput) (bool, error) {
	outgoing := math.Max(0, outgoingM)
	incoming := math.Max(0, incomingM)

	switch rule {
	case RuleSimple125:
		if outgoing == 0 {
			return incoming == 0, nil
		}
		return incoming <= round2(outgoing*1.25+0.1), nil
	case RuleTiered2023:
		if outgoing == 0 {
			return incoming == 0, nil
		}
		return incoming <= tiered2023MaxIncoming(outgoing), nil
	case RuleCBAV1:
		ctx := BuildContext("UNK", 0)
		if opts.Context != nil {
			ctx = *opts.Context
		}
		outgoingPlayers := opts.OutgoingPlayers
		if outgoingPlayers == 0 {
			outgoingPlayers = 1
		}
		decision := EvaluateSide(SideInput{
			TeamCode:        ctx.TeamCode,
			OutgoingSalaryM: outgoing,
			IncomingSalaryM: incoming,
			OutgoingPlayers: outgoingPlayers,
		}, ctx)
		return decision.OK, nil
	default:
		return false, fmt.Errorf("unknown salary-match rule: %q", rule)
	}
}
