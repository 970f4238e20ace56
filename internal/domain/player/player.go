// Package player defines the core roster types shared by every scoring stage.
package player

import "math"

// Record is one player-season row. Identity is (Name, Team); Team is a
// 3-letter uppercase code. The merge collaborator produces the raw fields;
// each scoring stage fills in its own derived block. After the pipeline
// completes a Record is treated as immutable.
type Record struct {
	Name string `json:"PLAYER_NAME"`
	Team string `json:"TEAM_ABBREVIATION"`
	Age  float64 `json:"AGE"`

	// Raw box-score and advanced inputs.
	GamesPlayed int     `json:"GP"`
	Minutes     float64 `json:"MIN"`
	Points      float64 `json:"PTS"`
	Rebounds    float64 `json:"REB"`
	Assists     float64 `json:"AST"`
	Steals      float64 `json:"STL"`
	Blocks      float64 `json:"BLK"`
	FGPct       float64 `json:"FG_PCT"`
	FG3Pct      float64 `json:"FG3_PCT"`
	FTPct       float64 `json:"FT_PCT"`
	TSPct       float64 `json:"TS_PCT"`
	UsagePct    float64 `json:"USG_PCT"`
	PIE         float64 `json:"PIE"`
	NetRating   float64 `json:"NET_RATING"`
	DefRating   float64 `json:"DEF_RATING"`
	Height      string  `json:"PLAYER_HEIGHT"`
	Salary      float64 `json:"SALARY"`
	SalaryM     float64 `json:"SALARY_M"`

	// Advanced stats stage.
	PERApprox       float64 `json:"PER_APPROX"`
	BPMApprox       float64 `json:"BPM_APPROX"`
	VORPApprox      float64 `json:"VORP_APPROX"`
	WinSharesApprox float64 `json:"WIN_SHARES_APPROX"`
	AgeCurveFactor  float64 `json:"AGE_CURVE_FACTOR"`
	ProjectedValue  float64 `json:"PROJECTED_VALUE"`
	ValueScore      float64 `json:"VALUE_SCORE"`
	AgeAdj          float64 `json:"AGE_ADJ"`
	ValueScoreAdj   float64 `json:"VALUE_SCORE_ADJ"`

	// Salary stage.
	CapPct             float64  `json:"CAP_PCT"`
	SalaryTier         string   `json:"SALARY_TIER"`
	MarketValueM       float64  `json:"MARKET_VALUE_M"`
	SalarySurplusM     float64  `json:"SALARY_SURPLUS_M"`
	ContractValueRatio *float64 `json:"CONTRACT_VALUE_RATIO"` // nil when salary is zero

	// Fit stage.
	PlayStyle       string   `json:"PLAY_STYLE"`
	OffensiveRole   string   `json:"OFFENSIVE_ROLE"`
	DefensiveRole   string   `json:"DEFENSIVE_ROLE"`
	Positions       []string `json:"POSITIONS"`
	PositionFlex    int      `json:"POSITION_FLEX"`
	FitVersatility  float64  `json:"FIT_VERSATILITY_SCORE"`

	// Contract stage.
	ContractType        string  `json:"CONTRACT_TYPE"`
	YearsRemaining      int     `json:"YEARS_REMAINING"`
	TotalContractValueM float64 `json:"TOTAL_CONTRACT_VALUE"`
	TradeRestrictions   string  `json:"TRADE_RESTRICTIONS"`
	TradeKickerLikely   bool    `json:"TRADE_KICKER_LIKELY"`
	ExtensionEligible   string  `json:"EXTENSION_ELIGIBLE"`
	ContractFlexibility float64 `json:"CONTRACT_FLEXIBILITY"`
	SalaryMatchMinM     float64 `json:"SALARY_MATCH_MIN"`
	SalaryMatchMaxM     float64 `json:"SALARY_MATCH_MAX"`

	// Trade value stage.
	PerfScoreNorm     float64 `json:"PERF_SCORE_NORM"`
	ContractScoreNorm float64 `json:"CONTRACT_SCORE_NORM"`
	FitScoreNorm      float64 `json:"FIT_SCORE_NORM"`
	TradeValue        float64 `json:"TRADE_VALUE"`
	TradeValueTier    string  `json:"TRADE_VALUE_TIER"`
	SurplusValueM     float64 `json:"SURPLUS_VALUE_M"`
}

// Package is one side's outgoing bundle with derived totals. It is computed
// on demand from enriched records and never persisted on its own.
type Package struct {
	Players         []string        `json:"players"`
	TotalSalaryM    float64         `json:"total_salary_m"`
	TotalTradeValue float64         `json:"total_trade_value"`
	TotalSurplusM   float64         `json:"total_surplus_m"`
	AvgAge          float64         `json:"avg_age"`
	Details         []PackageDetail `json:"details"`
}

// PackageDetail is the per-player line item inside a Package.
type PackageDetail struct {
	Name          string  `json:"PLAYER_NAME"`
	Age           float64 `json:"AGE"`
	SalaryM       float64 `json:"SALARY_M"`
	TradeValue    float64 `json:"TRADE_VALUE"`
	SurplusValueM float64 `json:"SURPLUS_VALUE_M"`
}

// BuildPackage aggregates the records whose names are in the requested list.
// Unknown names contribute nothing: membership filtering, not validation.
// The caller can diff Players against the request to detect drops.
func BuildPackage(records []Record, names []string) Package {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	pkg := Package{Players: []string{}, Details: []PackageDetail{}}
	ageSum := 0.0
	for _, r := range records {
		if !wanted[r.Name] {
			continue
		}
		pkg.Players = append(pkg.Players, r.Name)
		pkg.TotalSalaryM += r.SalaryM
		pkg.TotalTradeValue += r.TradeValue
		pkg.TotalSurplusM += r.SurplusValueM
		ageSum += r.Age
		pkg.Details = append(pkg.Details, PackageDetail{
			Name:          r.Name,
			Age:           r.Age,
			SalaryM:       r.SalaryM,
			TradeValue:    r.TradeValue,
			SurplusValueM: r.SurplusValueM,
		})
	}

	if n := len(pkg.Players); n > 0 {
		pkg.AvgAge = Round1(ageSum / float64(n))
	}
	pkg.TotalSalaryM = Round2(pkg.TotalSalaryM)
	pkg.TotalTradeValue = Round1(pkg.TotalTradeValue)
	pkg.TotalSurplusM = Round2(pkg.TotalSurplusM)
	return pkg
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }

// Round2 rounds to two decimal places.
func Round2(v float64) float64 { return math.Round(v*100) / 100 }
