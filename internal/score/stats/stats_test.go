package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/player"
)

func basePlayer(name string) player.Record {
	return player.Record{
		Name: name, Team: "TST", Age: 26,
		GamesPlayed: 70, Minutes: 32,
		Points: 20, Rebounds: 6, Assists: 5, Steals: 1.2, Blocks: 0.6,
		FGPct: 0.48, FG3Pct: 0.37, TSPct: 0.58, UsagePct: 0.25,
		PIE: 0.12, NetRating: 3.5,
	}
}

func newAnalyzer() *Analyzer {
	return NewAnalyzer(scoring.Default().AdvancedStats)
}

func TestAnalyzeDropsBelowThresholds(t *testing.T) {
	fringe := basePlayer("Fringe Guy")
	fringe.GamesPlayed = 10
	benchwarmer := basePlayer("Benchwarmer")
	benchwarmer.Minutes = 8

	out := newAnalyzer().Analyze([]player.Record{basePlayer("Starter"), fringe, benchwarmer})
	require.Len(t, out, 1)
	assert.Equal(t, "Starter", out[0].Name)
}

func TestAnalyzeEmptyInputYieldsEmptyOutput(t *testing.T) {
	assert.Empty(t, newAnalyzer().Analyze(nil))

	fringe := basePlayer("Fringe Guy")
	fringe.GamesPlayed = 5
	assert.Empty(t, newAnalyzer().Analyze([]player.Record{fringe}))
}

func TestMedianPlayerPERIsFifteen(t *testing.T) {
	// Odd cohort: the median player's PER_APPROX must land on the league
	// anchor exactly.
	roster := []player.Record{basePlayer("Low"), basePlayer("Mid"), basePlayer("High")}
	roster[0].Points, roster[0].Assists = 8, 2
	roster[2].Points, roster[2].Assists = 30, 9

	out := newAnalyzer().Analyze(roster)
	require.Len(t, out, 3)

	var mid player.Record
	for _, r := range out {
		if r.Name == "Mid" {
			mid = r
		}
	}
	assert.InDelta(t, 15.0, mid.PERApprox, 0.01)
}

func TestBPMApproxUsesLeagueAnchors(t *testing.T) {
	avgGuy := basePlayer("League Average")
	avgGuy.NetRating = 0
	avgGuy.Points, avgGuy.Rebounds, avgGuy.Assists = 14.0, 4.5, 3.0
	avgGuy.Steals, avgGuy.Blocks, avgGuy.TSPct = 0.7, 0.4, 0.570

	out := newAnalyzer().Analyze([]player.Record{avgGuy})
	require.Len(t, out, 1)
	assert.InDelta(t, 0.0, out[0].BPMApprox, 1e-9)
}

func TestVORPAndWinSharesFormulas(t *testing.T) {
	r := basePlayer("Solo")
	out := newAnalyzer().Analyze([]player.Record{r})
	require.Len(t, out, 1)
	got := out[0]

	// Single-player cohort: PER normalizes to exactly 15.
	assert.InDelta(t, 15.0, got.PERApprox, 1e-9)

	wantVORP := (got.BPMApprox + 2.0) * (32.0 / 48.0) * 70.0 / 82.0
	assert.InDelta(t, wantVORP, got.VORPApprox, 0.01)

	wantWS := 15.0 * 32.0 * 70.0 / (48 * 82 * 15) * 10
	assert.InDelta(t, wantWS, got.WinSharesApprox, 0.01)
}

func TestWinSharesFlooredAtZero(t *testing.T) {
	bad := basePlayer("Negative Impact")
	bad.Points, bad.Rebounds, bad.Assists, bad.Steals, bad.Blocks = 1, 1, 0.5, 0.1, 0
	bad.FGPct, bad.TSPct, bad.NetRating = 0.30, 0.40, -15

	good := basePlayer("Anchor")
	out := newAnalyzer().Analyze([]player.Record{bad, good})
	require.Len(t, out, 2)
	for _, r := range out {
		assert.GreaterOrEqual(t, r.WinSharesApprox, 0.0)
	}
}

func TestAgeCurveFactor(t *testing.T) {
	assert.Equal(t, 1.00, AgeCurveFactor(26))
	assert.Equal(t, 1.00, AgeCurveFactor(27.4))
	assert.Equal(t, 0.72, AgeCurveFactor(19))
	assert.Equal(t, 0.72, AgeCurveFactor(17), "clamped up to 19")
	assert.Equal(t, 0.35, AgeCurveFactor(44), "clamped down to 40")
	assert.Equal(t, 1.0, AgeCurveFactor(0), "unknown age projects at full value")
}

func TestAgeAdjustmentBands(t *testing.T) {
	a := newAnalyzer()
	testCases := []struct {
		age  float64
		want float64
	}{
		{21, 5}, {22.9, 5}, {23, 3}, {24.5, 3},
		{25, 0}, {28, 0}, {28.5, -2}, {32, -2}, {33, -5}, {38, -5},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, a.ageAdjustment(tc.age), "age %.1f", tc.age)
	}
}

func TestValueScoreOrderingRespectsDominance(t *testing.T) {
	star := basePlayer("Star")
	star.Points, star.Rebounds, star.Assists = 31, 9, 8
	star.Steals, star.Blocks = 1.8, 1.0
	star.PIE, star.TSPct, star.NetRating = 0.18, 0.62, 9

	role := basePlayer("Role")
	role.Points, role.Rebounds, role.Assists = 9, 3, 2
	role.Steals, role.Blocks = 0.6, 0.2
	role.PIE, role.TSPct, role.NetRating = 0.07, 0.52, -3

	out := newAnalyzer().Analyze([]player.Record{role, star})
	require.Len(t, out, 2)

	byName := map[string]player.Record{out[0].Name: out[0], out[1].Name: out[1]}
	assert.Greater(t, byName["Star"].ValueScore, byName["Role"].ValueScore)
	assert.Greater(t, byName["Star"].ValueScoreAdj, byName["Role"].ValueScoreAdj)
}
