// Package salary maps the age-adjusted value score to an estimated market
// salary, then derives surplus and cap-relative classifications.
package salary

import (
	"math"

	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/cba"
	"github.com/courtlab/capmatch/internal/domain/player"
)

// Analyzer computes the salary block. SalaryCap is in dollars.
type Analyzer struct {
	SalaryCap float64
	cfg       scoring.SalaryModelConfig
}

// NewAnalyzer uses the league cap from the CBA constants.
func NewAnalyzer(cfg scoring.SalaryModelConfig) *Analyzer {
	return &Analyzer{SalaryCap: cba.SalaryCapM * 1e6, cfg: cfg}
}

// Analyze fills in CAP_PCT, SALARY_TIER, MARKET_VALUE_M, SALARY_SURPLUS_M
// and CONTRACT_VALUE_RATIO for every record in place.
func (a *Analyzer) Analyze(records []player.Record) []player.Record {
	for i := range records {
		r := &records[i]
		r.CapPct = round2(r.SalaryM * 1e6 / a.SalaryCap * 100)
		r.SalaryTier = a.classifyTier(r.SalaryM)
		r.MarketValueM = a.EstimateMarketValue(r.ValueScoreAdj, r.Age)
		r.SalarySurplusM = round2(r.MarketValueM - r.SalaryM)
		if r.SalaryM > 0 {
			ratio := round2(r.MarketValueM / r.SalaryM)
			r.ContractValueRatio = &ratio
		} else {
			r.ContractValueRatio = nil
		}
	}
	return records
}

// classifyTier walks the descending ladder; first matching rung wins.
func (a *Analyzer) classifyTier(salaryM float64) string {
	for _, tier := range a.cfg.SalaryTiers {
		if salaryM >= tier.MinSalaryM {
			return tier.Name
		}
	}
	return "MINIMUM"
}

// EstimateMarketValue runs the piecewise-linear score-to-dollars mapping and
// applies the exclusive first-match age discount. Segments are configured
// descending by threshold; a score inside a segment interpolates linearly
// toward the next threshold up (100 for the topmost). Below the lowest
// threshold the value scales toward the bottom segment's floor, never under
// $1M.
func (a *Analyzer) EstimateMarketValue(valueScore, age float64) float64 {
	segments := a.cfg.MarketSegments
	marketVal := 0.0

	matched := false
	for i, seg := range segments {
		if valueScore >= seg.Threshold {
			upper := 100.0
			if i > 0 {
				upper = segments[i-1].Threshold
			}
			span := upper - seg.Threshold
			if span <= 0 {
				span = 1
			}
			marketVal = seg.MinValueM + (valueScore-seg.Threshold)/span*(seg.MaxValueM-seg.MinValueM)
			matched = true
			break
		}
	}
	if !matched {
		lowest := segments[len(segments)-1]
		floor := lowest.Threshold
		if floor <= 0 {
			floor = 1
		}
		marketVal = math.Max(1.0, valueScore/floor*lowest.MinValueM)
	}

	for _, discount := range a.cfg.AgeDiscounts {
		if age >= discount.MinAge {
			marketVal *= discount.Multiplier
			break // discounts are exclusive, never stacked
		}
	}

	return round2(marketVal)
}

// TeamSummary is a per-team payroll aggregate, the raw material for a
// TeamContext when simulating against real rosters.
type TeamSummary struct {
	Team          string  `json:"team"`
	TotalSalaryM  float64 `json:"total_salary_m"`
	AvgSalaryM    float64 `json:"avg_salary_m"`
	MaxSalaryM    float64 `json:"max_salary_m"`
	NumPlayers    int     `json:"num_players"`
	TotalSurplusM float64 `json:"total_surplus_m"`
	CapUsagePct   float64 `json:"cap_usage_pct"`
	OverTax       bool    `json:"over_tax"`
}

// SummarizeTeams aggregates payroll per team code.
func (a *Analyzer) SummarizeTeams(records []player.Record) map[string]TeamSummary {
	out := make(map[string]TeamSummary)
	for _, r := range records {
		s := out[r.Team]
		s.Team = r.Team
		s.TotalSalaryM += r.SalaryM
		s.TotalSurplusM += r.SalarySurplusM
		s.NumPlayers++
		if r.SalaryM > s.MaxSalaryM {
			s.MaxSalaryM = r.SalaryM
		}
		out[r.Team] = s
	}
	for team, s := range out {
		s.TotalSalaryM = round2(s.TotalSalaryM)
		s.TotalSurplusM = round2(s.TotalSurplusM)
		if s.NumPlayers > 0 {
			s.AvgSalaryM = round2(s.TotalSalaryM / float64(s.NumPlayers))
		}
		s.CapUsagePct = round1(s.TotalSalaryM * 1e6 / a.SalaryCap * 100)
		s.OverTax = s.TotalSalaryM >= cba.LuxuryTaxM
		out[team] = s
	}
	return out
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
