package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtlab/capmatch/internal/domain/player"
)

func TestClassifyContract(t *testing.T) {
	a := NewAnalyzer()
	testCases := []struct {
		salaryM float64
		age     float64
		want    string
	}{
		{55, 30, TypeSupermax},   // >= 153*0.35 = 53.55
		{48, 30, TypeMax},        // >= 45.9
		{40, 30, TypeNearMax},    // >= 38.25
		{5, 22, TypeRookieScale}, // young, rookie-scale window
		{12, 23, TypeRookieExt},  // young but past the scale ceiling
		{12, 27, TypeMidLevel},   // same salary, too old for rookie deals
		{25, 29, TypeHighValue},
		{6, 28, TypeRolePlayer},
		{2.5, 30, TypeMinimum},
		{1.2, 23, TypeTwoWay},
		{0, 27, TypeUnknown},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, a.classifyContract(tc.salaryM, tc.age), "salary %.1f age %.0f", tc.salaryM, tc.age)
	}
}

func TestYearsRemaining(t *testing.T) {
	a := NewAnalyzer()
	assert.Equal(t, 3, a.estimateYearsRemaining(TypeRookieScale, 20), "one year in: 4-1")
	assert.Equal(t, 1, a.estimateYearsRemaining(TypeRookieScale, 24), "floor of one year")
	assert.Equal(t, 4, a.estimateYearsRemaining(TypeRookieExt, 24))
	assert.Equal(t, 4, a.estimateYearsRemaining(TypeSupermax, 29))
	assert.Equal(t, 2, a.estimateYearsRemaining(TypeSupermax, 33))
	assert.Equal(t, 3, a.estimateYearsRemaining(TypeMax, 28))
	assert.Equal(t, 2, a.estimateYearsRemaining(TypeMax, 32))
	assert.Equal(t, 3, a.estimateYearsRemaining(TypeHighValue, 30))
	assert.Equal(t, 2, a.estimateYearsRemaining(TypeMidLevel, 30))
	assert.Equal(t, 1, a.estimateYearsRemaining(TypeMinimum, 30))
}

func TestRestrictionsPipeJoined(t *testing.T) {
	a := NewAnalyzer()

	// Aging supermax star: NTC plus hard-to-match salary.
	got := a.assessRestrictions(TypeSupermax, 31, 55)
	assert.Equal(t, "NTC|HARD_TO_MATCH", got)

	// Young supermax: possible post-signing wait instead of an NTC.
	got = a.assessRestrictions(TypeSupermax, 26, 54)
	assert.Equal(t, "POSSIBLE_3MO_WAIT|HARD_TO_MATCH", got)

	assert.Equal(t, "ROOKIE_EXT_WAIT", a.assessRestrictions(TypeRookieExt, 24, 12))
	assert.Equal(t, "DIFFICULT_TO_MATCH", a.assessRestrictions(TypeHighValue, 29, 36))
	assert.Equal(t, RestrictNone, a.assessRestrictions(TypeRolePlayer, 27, 6))
}

func TestFlexibilityClamped(t *testing.T) {
	a := NewAnalyzer()

	// Cheap expiring deal: 50+25+20 caps at 95.
	assert.Equal(t, 95.0, a.flexibility(2, 1, RestrictNone))
	// Massive long NTC deal: 50-25-15-30-20 clamps at 0.
	assert.Equal(t, 0.0, a.flexibility(55, 4, "NTC|HARD_TO_MATCH"))
	// Mid-tier two-year deal.
	assert.Equal(t, 65.0, a.flexibility(12, 2, RestrictNone))
}

func TestAnalyzeFillsContractBlock(t *testing.T) {
	records := []player.Record{{Name: "Wing", Team: "AAA", Age: 27, SalaryM: 25}}
	out := NewAnalyzer().Analyze(records)
	require.Len(t, out, 1)
	r := out[0]

	assert.Equal(t, TypeHighValue, r.ContractType)
	assert.Equal(t, 3, r.YearsRemaining)
	assert.InDelta(t, 75.0, r.TotalContractValueM, 1e-9)
	assert.Equal(t, RestrictNone, r.TradeRestrictions)
	assert.False(t, r.TradeKickerLikely)
	assert.Equal(t, ExtNotYet, r.ExtensionEligible)
	assert.InDelta(t, 19.92, r.SalaryMatchMinM, 1e-9)
	assert.InDelta(t, 31.35, r.SalaryMatchMaxM, 1e-9)
}

func TestSalaryMatchRangeFloorsAtZero(t *testing.T) {
	out := NewAnalyzer().Analyze([]player.Record{{Name: "Min", SalaryM: 0.05}})
	require.Len(t, out, 1)
	assert.Zero(t, out[0].SalaryMatchMinM)
}

func TestTradeKicker(t *testing.T) {
	a := NewAnalyzer()
	assert.True(t, a.hasTradeKicker(TypeMax, 46))
	assert.True(t, a.hasTradeKicker(TypeNearMax, 39))
	assert.False(t, a.hasTradeKicker(TypeNearMax, 24), "below the 25M floor")
	assert.False(t, a.hasTradeKicker(TypeHighValue, 30))
}

func TestSalaryMatchingOptionsSingleFirst(t *testing.T) {
	a := NewAnalyzer()
	records := a.Analyze([]player.Record{
		{Name: "Fit A", Team: "AAA", Age: 27, SalaryM: 20},
		{Name: "Fit B", Team: "AAA", Age: 27, SalaryM: 22},
		{Name: "Too Small", Team: "AAA", Age: 27, SalaryM: 3},
		{Name: "Other Team", Team: "BBB", Age: 27, SalaryM: 21},
	})

	got := a.SalaryMatchingOptions(records, 20, "AAA", 10)
	require.NotEmpty(t, got)
	for _, opt := range got {
		assert.Equal(t, "SINGLE", opt.MatchType)
		assert.NotEqual(t, []string{"Other Team"}, opt.Players)
	}
	assert.Len(t, got, 2)
}

func TestSalaryMatchingOptionsComboFallback(t *testing.T) {
	a := NewAnalyzer()
	records := a.Analyze([]player.Record{
		{Name: "Half A", Team: "AAA", Age: 27, SalaryM: 15},
		{Name: "Half B", Team: "AAA", Age: 27, SalaryM: 16},
	})

	// Target 30: no single contract in [23.92, 37.6], but 15+16=31 fits.
	got := a.SalaryMatchingOptions(records, 30, "AAA", 10)
	require.NotEmpty(t, got)
	assert.Equal(t, "COMBO_2", got[0].MatchType)
	assert.InDelta(t, 31.0, got[0].CombinedSalaryM, 1e-9)
}

func TestDraftPickValue(t *testing.T) {
	assert.Equal(t, 55.0, DraftPickValue(1, "", 0))
	assert.Equal(t, 4.5, DraftPickValue(30, "", 0))
	assert.Equal(t, 0.3, DraftPickValue(58, "", 0))
	assert.Equal(t, 0.5, DraftPickValue(60, "", 0), "unlisted picks floor at 0.5")

	// Protections discount once, strongest clause wins.
	assert.Equal(t, 38.5, DraftPickValue(1, "TOP_3_PROTECTED", 0))
	assert.Equal(t, 44.0, DraftPickValue(1, "TOP_10", 0))

	// Two years out decays twice.
	assert.InDelta(t, player.Round1(55.0*0.81), DraftPickValue(1, "", 2), 1e-9)
}
