package salary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/player"
)

func newAnalyzer() *Analyzer {
	return NewAnalyzer(scoring.Default().SalaryModel)
}

func TestMarketValueSegmentInterpolation(t *testing.T) {
	a := newAnalyzer()
	testCases := []struct {
		score float64
		want  float64
	}{
		{100, 51.0},  // top of the elite segment
		{90, 40.0},   // elite floor
		{80, 30.0},   // halfway through 70-90
		{70, 20.0},   // starter floor
		{60, 14.0},   // halfway through 50-70
		{50, 8.0},    // rotation floor
		{40, 5.5},    // halfway through 30-50
		{30, 3.0},    // fringe floor
		{20, 2.0},    // below all segments: 20/30 * 3
		{5, 1.0},     // hits the $1M floor
		{0, 1.0},
	}
	for _, tc := range testCases {
		assert.InDelta(t, tc.want, a.EstimateMarketValue(tc.score, 26), 1e-9, "score %.0f", tc.score)
	}
}

func TestMarketValueAgeDiscountsAreExclusive(t *testing.T) {
	a := newAnalyzer()
	// Score 70 maps to 20.0 before discounts.
	assert.InDelta(t, 20.0, a.EstimateMarketValue(70, 30), 1e-9, "no discount under 31")
	assert.InDelta(t, 19.0, a.EstimateMarketValue(70, 31), 1e-9)
	assert.InDelta(t, 17.0, a.EstimateMarketValue(70, 33), 1e-9)
	assert.InDelta(t, 14.0, a.EstimateMarketValue(70, 35), 1e-9)
	// 37-year-old still gets only the 0.70 multiplier, not 0.70*0.85*0.95.
	assert.InDelta(t, 14.0, a.EstimateMarketValue(70, 37), 1e-9)
}

func TestSalaryTierLadder(t *testing.T) {
	a := newAnalyzer()
	testCases := []struct {
		salaryM float64
		want    string
	}{
		{48.5, "SUPERMAX"}, {40, "SUPERMAX"},
		{39.99, "MAX"}, {30, "MAX"},
		{25, "NEAR_MAX"}, {20, "NEAR_MAX"},
		{12, "MID_LEVEL"}, {7, "ROLE_PLAYER"},
		{2.5, "MINIMUM_PLUS"}, {1.1, "MINIMUM"}, {0, "MINIMUM"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, a.classifyTier(tc.salaryM), "salary %.2f", tc.salaryM)
	}
}

func TestAnalyzeFillsSalaryBlock(t *testing.T) {
	records := []player.Record{
		{Name: "Bargain Star", Team: "AAA", Age: 24, SalaryM: 10, ValueScoreAdj: 90},
		{Name: "Overpaid Vet", Team: "AAA", Age: 34, SalaryM: 35, ValueScoreAdj: 55},
		{Name: "Two Way Guy", Team: "BBB", Age: 22, SalaryM: 0, ValueScoreAdj: 20},
	}
	out := newAnalyzer().Analyze(records)
	require.Len(t, out, 3)

	star := out[0]
	assert.InDelta(t, 10.0/153.0*100, star.CapPct, 0.01)
	assert.Equal(t, "MID_LEVEL", star.SalaryTier)
	assert.InDelta(t, 40.0, star.MarketValueM, 1e-9)
	assert.InDelta(t, 30.0, star.SalarySurplusM, 1e-9)
	require.NotNil(t, star.ContractValueRatio)
	assert.InDelta(t, 4.0, *star.ContractValueRatio, 1e-9)

	vet := out[1]
	// Score 55 -> 8 + 5/20*12 = 11, then the age-33 discount.
	assert.InDelta(t, 9.35, vet.MarketValueM, 1e-9)
	assert.Less(t, vet.SalarySurplusM, 0.0)

	twoWay := out[2]
	assert.Nil(t, twoWay.ContractValueRatio, "zero salary has no defined ratio")
	assert.Zero(t, twoWay.CapPct)
}

func TestSummarizeTeams(t *testing.T) {
	records := []player.Record{
		{Name: "A", Team: "TAX", SalaryM: 100, SalarySurplusM: -20},
		{Name: "B", Team: "TAX", SalaryM: 90, SalarySurplusM: 5},
		{Name: "C", Team: "CHP", SalaryM: 30, SalarySurplusM: 12},
	}
	sums := newAnalyzer().SummarizeTeams(records)
	require.Len(t, sums, 2)

	tax := sums["TAX"]
	assert.Equal(t, 2, tax.NumPlayers)
	assert.InDelta(t, 190.0, tax.TotalSalaryM, 1e-9)
	assert.InDelta(t, 95.0, tax.AvgSalaryM, 1e-9)
	assert.InDelta(t, 100.0, tax.MaxSalaryM, 1e-9)
	assert.InDelta(t, -15.0, tax.TotalSurplusM, 1e-9)
	assert.True(t, tax.OverTax)

	chp := sums["CHP"]
	assert.False(t, chp.OverTax)
	assert.InDelta(t, 30.0/153.0*100, chp.CapUsagePct, 0.1)
}
