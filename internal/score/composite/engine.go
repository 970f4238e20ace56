// Package composite blends the three module scores into the final trade
// value and runs trade simulations on top of it.
package composite

import (
	"fmt"
	"math"
	"sort"

	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/cba"
	"github.com/courtlab/capmatch/internal/domain/player"
	"github.com/courtlab/capmatch/internal/score/ranks"
)

// Ratios above this are treated as outliers and clipped before normalizing.
const contractRatioClip = 5.0

// Trade value tiers, descending.
const (
	TierUntouchable    = "UNTOUCHABLE"
	TierFranchise      = "FRANCHISE"
	TierAllStar        = "ALL_STAR"
	TierQualityStarter = "QUALITY_STARTER"
	TierRotation       = "ROTATION"
	TierTradeable      = "TRADEABLE"
)

// Engine computes TRADE_VALUE and simulates trades.
type Engine struct {
	cfg scoring.TradeValueConfig
}

func NewEngine(cfg scoring.TradeValueConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Calculate fills the normalized component scores, TRADE_VALUE,
// TRADE_VALUE_TIER and SURPLUS_VALUE_M, then sorts descending by trade
// value. Missing contract ratios (zero-salary players) normalize from 0.
func (e *Engine) Calculate(records []player.Record) []player.Record {
	n := len(records)
	if n == 0 {
		return records
	}

	perf := make([]float64, n)
	contractRatio := make([]float64, n)
	fit := make([]float64, n)
	for i, r := range records {
		perf[i] = r.ValueScoreAdj
		if r.ContractValueRatio != nil {
			contractRatio[i] = math.Min(*r.ContractValueRatio, contractRatioClip)
		}
		fit[i] = r.FitVersatility
	}

	perfNorm := normalize(perf)
	contractNorm := normalize(contractRatio)
	fitNorm := normalize(fit)

	w := e.cfg.Weights
	for i := range records {
		r := &records[i]
		r.PerfScoreNorm = perfNorm[i]
		r.ContractScoreNorm = contractNorm[i]
		r.FitScoreNorm = fitNorm[i]
		r.TradeValue = player.Round1(perfNorm[i]*w.Performance +
			contractNorm[i]*w.Contract +
			fitNorm[i]*w.Fit)
		r.TradeValueTier = e.ClassifyTier(r.TradeValue)
		r.SurplusValueM = r.SalarySurplusM
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TradeValue > records[j].TradeValue
	})
	return records
}

// normalize rescales to 0-100. A constant column is defined as 50 everywhere
// so a degenerate cohort cannot divide by zero.
func normalize(values []float64) []float64 {
	out := make([]float64, len(values))
	min, max := ranks.MinMax(values)
	if max == min {
		for i := range out {
			out[i] = 50
		}
		return out
	}
	for i, v := range values {
		out[i] = player.Round1((v - min) / (max - min) * 100)
	}
	return out
}

// ClassifyTier walks the descending tier ladder.
func (e *Engine) ClassifyTier(value float64) string {
	t := e.cfg.TierThresholds
	switch {
	case value >= t.Untouchable:
		return TierUntouchable
	case value >= t.Franchise:
		return TierFranchise
	case value >= t.AllStar:
		return TierAllStar
	case value >= t.QualityStarter:
		return TierQualityStarter
	case value >= t.Rotation:
		return TierRotation
	default:
		return TierTradeable
	}
}

// TargetFilter narrows the trade-target search.
type TargetFilter struct {
	BudgetM   float64
	Positions []string
	Style     string
	MaxAge    float64
	TopN      int
}

// TradeTargets returns the highest trade values under the filter.
func (e *Engine) TradeTargets(records []player.Record, f TargetFilter) []player.Record {
	topN := f.TopN
	if topN <= 0 {
		topN = 20
	}

	matches := make([]player.Record, 0)
	for _, r := range records {
		if r.SalaryM > f.BudgetM {
			continue
		}
		if len(f.Positions) > 0 && !overlaps(r.Positions, f.Positions) {
			continue
		}
		if f.Style != "" && r.PlayStyle != f.Style {
			continue
		}
		if f.MaxAge > 0 && r.Age > f.MaxAge {
			continue
		}
		matches = append(matches, r)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].TradeValue > matches[j].TradeValue
	})
	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}

func overlaps(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// ComparePlayers returns the named players sorted by trade value descending.
// Unknown names are skipped, the same membership semantics as packages.
func (e *Engine) ComparePlayers(records []player.Record, names []string) []player.Record {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := make([]player.Record, 0, len(names))
	for _, r := range records {
		if wanted[r.Name] {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TradeValue > out[j].TradeValue
	})
	return out
}

// TradeResult is the outcome of a two-sided trade simulation.
type TradeResult struct {
	TeamAPackage    player.Package     `json:"team_a_package"`
	TeamBPackage    player.Package     `json:"team_b_package"`
	SalaryMatch     bool               `json:"salary_match"`
	SalaryDiffM     float64            `json:"salary_diff_m"`
	ValueDifference float64            `json:"value_difference"`
	Verdict         string             `json:"verdict"`
	RuleVersion     string             `json:"rule_version"`
	CBADecision     *cba.TradeDecision `json:"cba_decision,omitempty"`
}

// SimulateOptions selects the matching rule and optional team contexts for
// the full CBA evaluation. Zero value means the legacy simple rule with no
// contexts.
type SimulateOptions struct {
	Rule     string
	ContextA *cba.TeamContext
	ContextB *cba.TeamContext
}

// SimulateTrade builds both packages and judges salary match and value
// balance. Names not present in the cohort are dropped silently; callers
// diff the package player lists against their request to surface that.
// When both contexts are provided the full rule engine runs too and its
// per-side decisions ride along in CBADecision.
func (e *Engine) SimulateTrade(records []player.Record, aGives, bGives []string, opts SimulateOptions) (TradeResult, error) {
	rule := opts.Rule
	if rule == "" {
		rule = cba.RuleSimple125
	}

	pkgA := player.BuildPackage(records, aGives)
	pkgB := player.BuildPackage(records, bGives)

	lower := math.Min(pkgA.TotalSalaryM, pkgB.TotalSalaryM)
	higher := math.Max(pkgA.TotalSalaryM, pkgB.TotalSalaryM)

	res := TradeResult{
		TeamAPackage: pkgA,
		TeamBPackage: pkgB,
		SalaryDiffM:  player.Round2(higher - lower),
		RuleVersion:  rule,
	}

	// Salary match per the selected rule, evaluated in both directions:
	// each side must be able to take back what the other sends out.
	aOK, err := cba.LegacyIsSalaryMatch(pkgA.TotalSalaryM, pkgB.TotalSalaryM, rule, cba.LegacyMatchInput{
		Context:         opts.ContextA,
		OutgoingPlayers: len(pkgA.Players),
	})
	if err != nil {
		return TradeResult{}, err
	}
	bOK, err := cba.LegacyIsSalaryMatch(pkgB.TotalSalaryM, pkgA.TotalSalaryM, rule, cba.LegacyMatchInput{
		Context:         opts.ContextB,
		OutgoingPlayers: len(pkgB.Players),
	})
	if err != nil {
		return TradeResult{}, err
	}
	res.SalaryMatch = aOK && bOK

	if opts.ContextA != nil && opts.ContextB != nil {
		decision := cba.EvaluateTrade(cba.SideInput{
			TeamCode:        opts.ContextA.TeamCode,
			OutgoingSalaryM: pkgA.TotalSalaryM,
			IncomingSalaryM: pkgB.TotalSalaryM,
			OutgoingPlayers: len(pkgA.Players),
			IncomingPlayers: len(pkgB.Players),
		}, cba.SideInput{
			TeamCode:        opts.ContextB.TeamCode,
			OutgoingSalaryM: pkgB.TotalSalaryM,
			IncomingSalaryM: pkgA.TotalSalaryM,
			OutgoingPlayers: len(pkgB.Players),
			IncomingPlayers: len(pkgA.Players),
		}, *opts.ContextA, *opts.ContextB)
		res.CBADecision = &decision
	}

	res.ValueDifference = player.Round1(pkgA.TotalTradeValue - pkgB.TotalTradeValue)
	res.Verdict = verdict(res.ValueDifference)
	return res, nil
}

func verdict(valueDiff float64) string {
	if math.Abs(valueDiff) < 5 {
		return "balanced"
	}
	side := "Team A"
	if valueDiff < 0 {
		side = "Team B"
	}
	return fmt.Sprintf("%s gives more value (%.1f)", side, math.Abs(valueDiff))
}

// TierDistribution counts records per tier in ladder order, including empty
// tiers, for report output.
func (e *Engine) TierDistribution(records []player.Record) []string {
	order := []string{TierUntouchable, TierFranchise, TierAllStar, TierQualityStarter, TierRotation, TierTradeable}
	counts := map[string]int{}
	for _, r := range records {
		counts[r.TradeValueTier]++
	}
	lines := make([]string, 0, len(order))
	for _, tier := range order {
		lines = append(lines, fmt.Sprintf("%-20s %3d", tier, counts[tier]))
	}
	return lines
}
