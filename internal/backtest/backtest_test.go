package backtest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtlab/capmatch/internal/config/scoring"
	"github.com/courtlab/capmatch/internal/domain/player"
	"github.com/courtlab/capmatch/internal/score/composite"
)

func TestReadTrades(t *testing.T) {
	csv := `trade_id,team_a_gives,team_b_gives,expected_winner
T1,Star|Glue Guy,Anchor,team_a
T2,Solo,,balanced
T3,Left, Right ,
`
	trades, err := ReadTrades(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, trades, 3)

	assert.Equal(t, []string{"Star", "Glue Guy"}, trades[0].AGives)
	assert.Equal(t, []string{"Anchor"}, trades[0].BGives)
	assert.Equal(t, "team_a", trades[0].ExpectedWinner)

	assert.Nil(t, trades[1].BGives, "empty side parses to no players")
	assert.Equal(t, WinnerBalanced, trades[2].ExpectedWinner, "missing winner defaults to balanced")
	assert.Equal(t, []string{"Right"}, trades[2].BGives, "names are trimmed")
}

func TestReadTradesRequiresColumns(t *testing.T) {
	_, err := ReadTrades(strings.NewReader("trade_id,team_a_gives\nT1,X\n"))
	assert.ErrorContains(t, err, "team_b_gives")
}

func TestPredictWinner(t *testing.T) {
	assert.Equal(t, WinnerBalanced, PredictWinner(4.9))
	assert.Equal(t, WinnerBalanced, PredictWinner(-4.9))
	assert.Equal(t, WinnerTeamB, PredictWinner(5.0), "side A sent more value, B won")
	assert.Equal(t, WinnerTeamA, PredictWinner(-5.0))
}

func TestRunScoresAccuracy(t *testing.T) {
	engine := composite.NewEngine(scoring.Default().TradeValue)
	ratio := func(v float64) *float64 { return &v }
	players := engine.Calculate([]player.Record{
		{Name: "Star", SalaryM: 40, ValueScoreAdj: 95, ContractValueRatio: ratio(1.2), FitVersatility: 80},
		{Name: "Mid", SalaryM: 20, ValueScoreAdj: 60, ContractValueRatio: ratio(1.5), FitVersatility: 55},
		{Name: "Anchor", SalaryM: 45, ValueScoreAdj: 40, ContractValueRatio: ratio(0.4), FitVersatility: 30},
	})

	trades := []HistoricalTrade{
		{TradeID: "T1", AGives: []string{"Star"}, BGives: []string{"Anchor"}, ExpectedWinner: WinnerTeamB},
		{TradeID: "T2", AGives: []string{"Mid"}, BGives: []string{"Mid"}, ExpectedWinner: WinnerTeamA},
	}

	res, err := Run(engine, players, trades)
	require.NoError(t, err)

	assert.Equal(t, 2, res.NumTrades)
	require.Len(t, res.Details, 2)

	// Star for Anchor: A clearly sends more value, so B is predicted.
	assert.Equal(t, WinnerTeamB, res.Details[0].PredictedWinner)
	assert.True(t, res.Details[0].Correct)

	// Identical packages are balanced; expected team_a is a miss.
	assert.Equal(t, WinnerBalanced, res.Details[1].PredictedWinner)
	assert.False(t, res.Details[1].Correct)

	assert.InDelta(t, 0.5, res.Accuracy, 1e-9)
}

func TestRunEmptyTrades(t *testing.T) {
	engine := composite.NewEngine(scoring.Default().TradeValue)
	res, err := Run(engine, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, res.NumTrades)
	assert.Zero(t, res.Accuracy)
}
