// Package scoring loads and validates the weighted-scoring configuration.
// A config is identified by (name, content hash); the hash feeds commentary
// cache keys, so any semantic change must change it.
package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// ValidationError is returned for any structural or numeric config problem.
// Config errors are fatal at load time and never silently defaulted.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("scoring config: %s: %s", e.Field, e.Msg)
}

// Config is a named, versioned bundle of weight maps and threshold tables.
type Config struct {
	Name          string              `yaml:"name"`
	AdvancedStats AdvancedStatsConfig `yaml:"advanced_stats"`
	SalaryModel   SalaryModelConfig   `yaml:"salary_model"`
	FitModel      FitModelConfig      `yaml:"fit_model"`
	TradeValue    TradeValueConfig    `yaml:"trade_value"`
}

// AdvancedStatsConfig drives the VALUE_SCORE computation.
type AdvancedStatsConfig struct {
	LeagueAvg         map[string]float64 `yaml:"league_avg"`
	ValueScoreWeights ValueScoreWeights  `yaml:"value_score_weights"`
	AgeAdjustments    AgeAdjustments     `yaml:"age_adjustments"`
}

// ValueScoreWeights are percentile-rank blend weights; they must sum to 1.0.
type ValueScoreWeights struct {
	PIE        float64 `yaml:"pie"`
	PER        float64 `yaml:"per"`
	BPM        float64 `yaml:"bpm"`
	Production float64 `yaml:"production"`
	TS         float64 `yaml:"ts"`
	WS         float64 `yaml:"ws"`
}

// AgeAdjustments are flat point bonuses applied after the percentile blend.
// The age boundaries themselves (<23, <25, ≤28, ≤32) are fixed.
type AgeAdjustments struct {
	Young      float64 `yaml:"young"`      // age < 23
	Developing float64 `yaml:"developing"` // age < 25
	Prime      float64 `yaml:"prime"`      // age <= 28
	Veteran    float64 `yaml:"veteran"`    // age <= 32
	Aging      float64 `yaml:"aging"`      // older
}

// SalaryModelConfig drives tier classification and market-value estimation.
type SalaryModelConfig struct {
	SalaryTiers    []SalaryTier    `yaml:"salary_tiers"`
	MarketSegments []MarketSegment `yaml:"market_segments"`
	AgeDiscounts   []AgeDiscount   `yaml:"age_discounts"`
}

// SalaryTier is one rung of the descending salary ladder; first match wins.
type SalaryTier struct {
	Name       string  `yaml:"name"`
	MinSalaryM float64 `yaml:"min_salary_m"`
}

// MarketSegment is one piece of the piecewise-linear score-to-dollars map.
// A score in [Threshold, nextThreshold) interpolates MinValueM..MaxValueM.
type MarketSegment struct {
	Threshold float64 `yaml:"threshold"`
	MinValueM float64 `yaml:"min_value_m"`
	MaxValueM float64 `yaml:"max_value_m"`
}

// AgeDiscount multiplies estimated market value; evaluated descending by
// MinAge and only the first match applies.
type AgeDiscount struct {
	MinAge     float64 `yaml:"min_age"`
	Multiplier float64 `yaml:"multiplier"`
}

// FitModelConfig drives the versatility blend.
type FitModelConfig struct {
	VersatilityWeights VersatilityWeights `yaml:"versatility_weights"`
	DefenseRoleScores  DefenseRoleScores  `yaml:"defense_role_scores"`
}

// VersatilityWeights must sum to 1.0.
type VersatilityWeights struct {
	Position float64 `yaml:"position"`
	Defense  float64 `yaml:"defense"`
	Balance  float64 `yaml:"balance"`
}

// DefenseRoleScores are the three discrete defensive-role bands.
type DefenseRoleScores struct {
	Elite float64 `yaml:"elite"`
	Solid float64 `yaml:"solid"`
	Weak  float64 `yaml:"weak"`
}

// TradeValueConfig drives the final blend and tier cutoffs.
type TradeValueConfig struct {
	Weights        TradeValueWeights `yaml:"weights"`
	TierThresholds TierThresholds    `yaml:"tier_thresholds"`
}

// TradeValueWeights must sum to 1.0.
type TradeValueWeights struct {
	Performance float64 `yaml:"performance"`
	Contract    float64 `yaml:"contract"`
	Fit         float64 `yaml:"fit"`
}

// TierThresholds are the descending trade-value tier cutoffs. Anything below
// Rotation is TRADEABLE.
type TierThresholds struct {
	Untouchable    float64 `yaml:"untouchable"`
	Franchise      float64 `yaml:"franchise"`
	AllStar        float64 `yaml:"all_star"`
	QualityStarter float64 `yaml:"quality_starter"`
	Rotation       float64 `yaml:"rotation"`
}

// Hash is the first 12 hex chars of a sha256 over the canonical YAML
// serialization of the config. Struct marshalling is field-order stable, so
// repeated loads of the same file hash identically and any numeric change
// changes the hash.
func (c *Config) Hash() string {
	canonical, err := yaml.Marshal(c)
	if err != nil {
		// Marshalling a plain struct of scalars cannot fail in practice.
		return ""
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:12]
}

// Validate enforces the structural contract: required sections present,
// weight maps summing to exactly 1.0 within 6-decimal rounding, threshold
// tables ordered and non-empty.
func (c *Config) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Msg: "missing"}
	}

	if len(c.AdvancedStats.LeagueAvg) == 0 {
		return &ValidationError{Field: "advanced_stats.league_avg", Msg: "missing or empty"}
	}
	for _, key := range []string{"PTS", "REB", "AST", "STL", "BLK", "TS_PCT"} {
		if _, ok := c.AdvancedStats.LeagueAvg[key]; !ok {
			return &ValidationError{Field: "advanced_stats.league_avg", Msg: "missing key " + key}
		}
	}

	vw := c.AdvancedStats.ValueScoreWeights
	if err := checkWeightSum("advanced_stats.value_score_weights",
		vw.PIE, vw.PER, vw.BPM, vw.Production, vw.TS, vw.WS); err != nil {
		return err
	}

	if len(c.SalaryModel.SalaryTiers) == 0 {
		return &ValidationError{Field: "salary_model.salary_tiers", Msg: "missing or empty"}
	}
	if err := requireDescending("salary_model.salary_tiers", tierMins(c.SalaryModel.SalaryTiers)); err != nil {
		return err
	}
	if len(c.SalaryModel.MarketSegments) == 0 {
		return &ValidationError{Field: "salary_model.market_segments", Msg: "missing or empty"}
	}
	if err := requireDescending("salary_model.market_segments", segmentThresholds(c.SalaryModel.MarketSegments)); err != nil {
		return err
	}
	if err := requireDescending("salary_model.age_discounts", discountAges(c.SalaryModel.AgeDiscounts)); err != nil {
		return err
	}

	fw := c.FitModel.VersatilityWeights
	if err := checkWeightSum("fit_model.versatility_weights", fw.Position, fw.Defense, fw.Balance); err != nil {
		return err
	}

	tw := c.TradeValue.Weights
	if err := checkWeightSum("trade_value.weights", tw.Performance, tw.Contract, tw.Fit); err != nil {
		return err
	}

	tt := c.TradeValue.TierThresholds
	if err := requireDescending("trade_value.tier_thresholds",
		[]float64{tt.Untouchable, tt.Franchise, tt.AllStar, tt.QualityStarter, tt.Rotation}); err != nil {
		return err
	}

	return nil
}

func checkWeightSum(field string, weights ...float64) error {
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return &ValidationError{Field: field, Msg: "negative weight"}
		}
		sum += w
	}
	if math.Round(sum*1e6)/1e6 != 1.0 {
		return &ValidationError{Field: field, Msg: fmt.Sprintf("weights sum to %.6f, want 1.0", sum)}
	}
	return nil
}

func requireDescending(field string, values []float64) error {
	for i := 1; i < len(values); i++ {
		if values[i] >= values[i-1] {
			return &ValidationError{Field: field, Msg: "thresholds must be strictly descending"}
		}
	}
	return nil
}

func tierMins(tiers []SalaryTier) []float64 {
	out := make([]float64, len(tiers))
	for i, t := range tiers {
		out[i] = t.MinSalaryM
	}
	return out
}

func segmentThresholds(segments []MarketSegment) []float64 {
	out := make([]float64, len(segments))
	for i, s := range segments {
		out[i] = s.Threshold
	}
	return out
}

func discountAges(discounts []AgeDiscount) []float64 {
	out := make([]float64, len(discounts))
	for i, d := range discounts {
		out[i] = d.MinAge
	}
	return out
}
